// Package lifecycle issues gift requests on behalf of a view and guarantees
// that only the most recently submitted request ever changes what the view
// shows.
//
// Each Submit cancels the previous request before starting a new one. Every
// outcome is checked against the current request under the controller lock,
// in the same critical section that applies it, so a superseded request can
// never overwrite newer state regardless of when its response arrives.
package lifecycle

import (
	"context"
	"log/slog"
	"sync"

	"gift-advisor/internal/domain"
)

// Listener receives a snapshot of the state after every change. Listeners
// run synchronously with the controller lock held: they must return quickly
// and must not call back into the Controller.
type Listener func(domain.UIState)

type subscription struct {
	id       uint64
	listener Listener
}

// Controller owns the single current request and the UIState derived from it.
type Controller struct {
	source domain.GiftSource
	logger *slog.Logger
	parent context.Context
	wg     sync.WaitGroup

	mu        sync.Mutex
	state     domain.UIState
	current   *Request
	nextGen   uint64
	disposed  bool
	subs      []subscription
	nextSubID uint64
}

// New creates a controller reading from source.
func New(source domain.GiftSource, logger *slog.Logger) *Controller {
	return NewWithContext(context.Background(), source, logger)
}

// NewWithContext creates a controller whose requests derive from parent.
// Cancelling parent aborts the in-flight request without changing state.
func NewWithContext(parent context.Context, source domain.GiftSource, logger *slog.Logger) *Controller {
	return &Controller{
		source: source,
		logger: logger,
		parent: parent,
	}
}

// Submit cancels the current request, if any, and starts a new one asking
// target about sub. It returns false without side effects for an empty
// submission or a disposed controller.
func (c *Controller) Submit(sub domain.Submission, target domain.Target) bool {
	if sub.IsEmpty() {
		return false
	}

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return false
	}
	prev := c.current
	c.nextGen++
	req := newRequest(c.parent, c.nextGen)
	c.current = req
	c.state = domain.UIState{Mode: domain.ModeLoading, Submission: sub, Target: target}
	c.notifyLocked()
	c.wg.Add(1)
	c.mu.Unlock()

	// prev is already stale, so any outcome it is delivering right now is
	// discarded; Cancel only has to stop the transfer.
	if prev != nil {
		prev.Cancel()
	}

	c.logger.Debug("request submitted",
		"member", string(sub),
		"target", target.String(),
		"generation", req.ID(),
		"request_id", req.CorrelationID(),
	)
	req.start(c.runner(sub, target), c.deliver, c.wg.Done)
	return true
}

// Dispose cancels the current request and detaches every listener. No
// listener is invoked after Dispose returns. Dispose is idempotent.
func (c *Controller) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	cur := c.current
	c.current = nil
	c.subs = nil
	c.mu.Unlock()

	if cur != nil {
		cur.Cancel()
	}
}

// Wait blocks until every request goroutine started by this controller has
// exited.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// State returns a snapshot of the current UI state.
func (c *Controller) State() domain.UIState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Subscribe registers l for state changes and returns the function that
// releases it. The release function is safe to call more than once.
func (c *Controller) Subscribe(l Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return func() {}
	}
	c.nextSubID++
	id := c.nextSubID
	c.subs = append(c.subs, subscription{id: id, listener: l})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

func (c *Controller) runner(sub domain.Submission, target domain.Target) RunFunc {
	if target == domain.TargetGiftIdeas {
		return listRunner(c.source, string(sub))
	}
	return streamRunner(c.source, string(sub), c.logger)
}

// deliver applies o if r is still current. It is called with r.mu held.
func (c *Controller) deliver(r *Request, o domain.Outcome) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed || c.current != r {
		return false
	}

	switch o.Kind {
	case domain.OutcomePartialText:
		c.state.Text += o.Text
	case domain.OutcomeCompleteText:
		if o.Text != "" {
			c.state.Text = o.Text
		}
		c.state.Mode = domain.ModeSuccess
	case domain.OutcomeCompleteItems:
		c.state.Items = o.Items
		c.state.Mode = domain.ModeSuccess
	case domain.OutcomeFailed:
		c.logger.Warn("gift request failed",
			"member", string(c.state.Submission),
			"target", c.state.Target.String(),
			"request_id", r.CorrelationID(),
			"code", string(domain.ErrorCodeOf(o.Err)),
			"error", o.Err,
		)
		c.state.Text = ""
		c.state.Items = nil
		c.state.Mode = domain.ModeError
		c.state.Err = domain.FetchErrorMessage
	default:
		// Pending carries nothing and Aborted is our own doing.
		return true
	}

	if o.Terminal() {
		c.current = nil
	}
	c.notifyLocked()
	return true
}

func (c *Controller) notifyLocked() {
	if len(c.subs) == 0 {
		return
	}
	snapshot := c.state.Clone()
	for _, s := range c.subs {
		c.call(s.listener, snapshot)
	}
}

func (c *Controller) call(l Listener, st domain.UIState) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("state listener panicked", "panic", r)
		}
	}()
	l(st)
}
