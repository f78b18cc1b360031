package lifecycle

import (
	"context"
	"sync"

	"gift-advisor/internal/domain"
)

// RunFunc performs the network work of one request. It reports intermediate
// outcomes through emit, which returns false once the request is no longer
// worth continuing, and returns the terminal outcome.
type RunFunc func(ctx context.Context, emit func(domain.Outcome) bool) domain.Outcome

// sinkFunc receives outcomes that survived cancellation. It returns false
// when the request has gone stale.
type sinkFunc func(r *Request, o domain.Outcome) bool

// Request is one cancellable network call. Delivery and cancellation are
// mutually exclusive: once Cancel returns, no outcome of r reaches the sink.
type Request struct {
	id     uint64
	corrID string
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	cancelled bool
	settled   bool
}

func newRequest(parent context.Context, id uint64) *Request {
	corrID := domain.NewRequestID()
	ctx, cancel := context.WithCancel(domain.ContextWithRequestID(parent, corrID))
	return &Request{
		id:     id,
		corrID: corrID,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// ID returns the generation number assigned by the controller.
func (r *Request) ID() uint64 { return r.id }

// CorrelationID returns the ULID sent to the server as X-Request-ID.
func (r *Request) CorrelationID() string { return r.corrID }

// Done is closed when the request goroutine has exited, or immediately if
// the request was cancelled before it started.
func (r *Request) Done() <-chan struct{} { return r.done }

// Cancelled reports whether Cancel has been called.
func (r *Request) Cancelled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled
}

// Cancel aborts the in-flight transfer and blocks any further delivery. It
// waits for a delivery already in progress to finish. Safe to call more than
// once.
func (r *Request) Cancel() {
	r.mu.Lock()
	if r.cancelled {
		r.mu.Unlock()
		return
	}
	r.cancelled = true
	r.mu.Unlock()
	r.cancel()
}

// start launches run on its own goroutine. A request cancelled before start
// never issues its network call. exit is called exactly once when the
// request is finished.
func (r *Request) start(run RunFunc, sink sinkFunc, exit func()) {
	r.mu.Lock()
	if r.cancelled {
		r.mu.Unlock()
		close(r.done)
		exit()
		return
	}
	r.mu.Unlock()

	go func() {
		defer exit()
		defer close(r.done)
		defer r.cancel()

		emit := func(o domain.Outcome) bool { return r.deliver(o, sink) }
		final := run(r.ctx, emit)
		r.deliver(final, sink)
	}()
}

func (r *Request) deliver(o domain.Outcome, sink sinkFunc) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelled || r.settled {
		return false
	}
	if o.Terminal() {
		r.settled = true
	}
	return sink(r, o)
}
