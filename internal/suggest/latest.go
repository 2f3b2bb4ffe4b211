package suggest

import (
	"context"
	"sync"
)

// Latest enforces last-request-wins per input field. Starting a request for
// a key cancels the one already in flight for the same key.
type Latest struct {
	mu     sync.Mutex
	seq    uint64
	active map[string]*Ticket
}

// Ticket identifies one request tracked by Latest.
type Ticket struct {
	latest *Latest
	key    string
	seq    uint64
	cancel context.CancelFunc
}

// NewLatest returns an empty tracker.
func NewLatest() *Latest {
	return &Latest{active: make(map[string]*Ticket)}
}

// Begin registers a request for key and returns a context that is canceled
// when a newer request for the same key begins. An empty key is not tracked.
// Callers must call Done on the ticket.
func (l *Latest) Begin(ctx context.Context, key string) (context.Context, *Ticket) {
	ctx, cancel := context.WithCancel(ctx)
	if key == "" {
		return ctx, &Ticket{cancel: cancel}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if prev, ok := l.active[key]; ok {
		prev.cancel()
	}
	l.seq++
	t := &Ticket{latest: l, key: key, seq: l.seq, cancel: cancel}
	l.active[key] = t
	return ctx, t
}

// Current reports whether no newer request for the same key has begun.
func (t *Ticket) Current() bool {
	if t.latest == nil {
		return true
	}
	t.latest.mu.Lock()
	defer t.latest.mu.Unlock()
	active, ok := t.latest.active[t.key]
	return ok && active.seq == t.seq
}

// Done releases the ticket.
func (t *Ticket) Done() {
	t.cancel()
	if t.latest == nil {
		return
	}
	t.latest.mu.Lock()
	defer t.latest.mu.Unlock()
	if active, ok := t.latest.active[t.key]; ok && active.seq == t.seq {
		delete(t.latest.active, t.key)
	}
}
