package client

import (
	"context"
	"fmt"
	"sync"
)

// limiter bounds how many delete requests a bulk operation has in flight at
// once, so clearing a large selection does not hammer the platform API.
type limiter struct {
	mu       sync.Mutex
	maxSlots int
	active   int
	waiters  []chan struct{} // FIFO queue of waiting requests
}

// newLimiter creates a limiter with the given number of slots.
func newLimiter(maxSlots int) *limiter {
	if maxSlots < 1 {
		maxSlots = 1
	}
	return &limiter{
		maxSlots: maxSlots,
	}
}

// acquire blocks until a slot is available, or ctx is cancelled.
// Returns nil on success, ctx.Err() if cancelled.
func (l *limiter) acquire(ctx context.Context) error {
	l.mu.Lock()

	if l.active < l.maxSlots {
		l.active++
		l.mu.Unlock()
		return nil
	}

	// No slot available; enqueue a waiter.
	ch := make(chan struct{}, 1)
	l.waiters = append(l.waiters, ch)
	l.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		// Remove ourselves from the waiters list to avoid a leak.
		l.mu.Lock()
		found := false
		for i, w := range l.waiters {
			if w == ch {
				l.waiters = append(l.waiters[:i], l.waiters[i+1:]...)
				found = true
				break
			}
		}
		l.mu.Unlock()
		if !found {
			// release() already removed us and sent a token. Return it.
			select {
			case <-ch:
				l.release()
			default:
			}
		}
		return fmt.Errorf("client: acquire slot: %w", ctx.Err())
	}
}

// release frees a slot. Must be called when a request settles.
func (l *limiter) release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.waiters) > 0 {
		next := l.waiters[0]
		l.waiters = l.waiters[1:]
		next <- struct{}{}
		return
	}

	if l.active <= 0 {
		return // programming error: release without matching acquire
	}
	l.active--
}
