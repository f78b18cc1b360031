package gifts

import (
	"context"

	"gift-advisor/internal/domain"
)

// mailbox hands controller states to the UI goroutine. It holds at most one
// state: put never blocks and a newer state replaces an unread older one,
// so the controller's listener can run under its lock while the UI lags.
type mailbox struct {
	ch chan domain.UIState
}

func newMailbox() *mailbox {
	return &mailbox{ch: make(chan domain.UIState, 1)}
}

// put stores s, discarding any state not yet taken. It must have a single
// caller at a time; the controller serializes its listeners.
func (b *mailbox) put(s domain.UIState) {
	for {
		select {
		case b.ch <- s:
			return
		default:
		}
		select {
		case <-b.ch:
		default:
		}
	}
}

// pump forwards states to send until ctx is done.
func (b *mailbox) pump(ctx context.Context, send func(domain.UIState)) {
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-b.ch:
			send(s)
		}
	}
}
