package cart

import (
	"context"
	"sync"
)

// Badge is the cart item counter shown by navigation chrome.
//
// Update with an explicit count sets it directly; without one the badge
// recounts from a fresh cart fetch. Subscribers are called synchronously with
// every new value.
type Badge struct {
	mu          sync.Mutex
	count       int
	recount     func(ctx context.Context) (int, error)
	subscribers []func(int)
}

// NewBadge returns a badge that recounts with fn.
func NewBadge(fn func(ctx context.Context) (int, error)) *Badge {
	return &Badge{recount: fn}
}

// Count returns the last known count.
func (b *Badge) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Subscribe registers fn to receive every count change.
func (b *Badge) Subscribe(fn func(int)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, fn)
}

// Update sets the count to *explicit, or recounts when explicit is nil.
// A failed recount leaves the previous count in place.
func (b *Badge) Update(ctx context.Context, explicit *int) error {
	n := 0
	if explicit != nil {
		n = *explicit
	} else {
		if b.recount == nil {
			return nil
		}
		var err error
		if n, err = b.recount(ctx); err != nil {
			return err
		}
	}
	b.set(n)
	return nil
}

// Set is Update with an explicit count.
func (b *Badge) Set(n int) {
	b.set(n)
}

func (b *Badge) set(n int) {
	if n < 0 {
		n = 0
	}
	b.mu.Lock()
	b.count = n
	subs := append([]func(int){}, b.subscribers...)
	b.mu.Unlock()

	for _, fn := range subs {
		fn(n)
	}
}
