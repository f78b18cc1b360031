package gifts

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gift-advisor/internal/domain"
)

func TestMailboxKeepsLatest(t *testing.T) {
	mb := newMailbox()
	mb.put(domain.UIState{Text: "a"})
	mb.put(domain.UIState{Text: "ab"})
	mb.put(domain.UIState{Text: "abc"})

	got := <-mb.ch
	assert.Equal(t, "abc", got.Text)
	select {
	case s := <-mb.ch:
		t.Fatalf("unexpected extra state %+v", s)
	default:
	}
}

func TestMailboxPutNeverBlocks(t *testing.T) {
	mb := newMailbox()
	done := make(chan struct{})
	go func() {
		for i := range 1000 {
			mb.put(domain.UIState{Text: string(rune('a' + i%26))})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("put blocked without a reader")
	}
}

func TestMailboxPumpDeliversFinalState(t *testing.T) {
	mb := newMailbox()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var seen []domain.UIState
	go mb.pump(ctx, func(s domain.UIState) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	for i := range 50 {
		mb.put(domain.UIState{Mode: domain.ModeLoading, Text: string(rune('a' + i%26))})
	}
	mb.put(domain.UIState{Mode: domain.ModeSuccess, Text: "done"})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0 && seen[len(seen)-1].Mode == domain.ModeSuccess
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "done", seen[len(seen)-1].Text)
}
