package audit

import (
	"context"
	"sync"
)

// DefaultMemoryCapacity is how many events a MemoryRepo retains.
const DefaultMemoryCapacity = 1024

// MemoryRepo retains the most recent events in process; older ones are dropped.
// Tests use it in place of Postgres.
type MemoryRepo struct {
	mu   sync.Mutex
	ring []Event
	next int
	full bool
}

// NewMemoryRepo returns a repo holding up to capacity events (DefaultMemoryCapacity if <= 0).
func NewMemoryRepo(capacity ...int) *MemoryRepo {
	n := DefaultMemoryCapacity
	if len(capacity) > 0 && capacity[0] > 0 {
		n = capacity[0]
	}
	return &MemoryRepo{ring: make([]Event, n)}
}

func (r *MemoryRepo) Append(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ring[r.next] = e
	r.next = (r.next + 1) % len(r.ring)
	if r.next == 0 {
		r.full = true
	}
	return nil
}

// Events returns retained events, oldest first.
func (r *MemoryRepo) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		return append([]Event(nil), r.ring[:r.next]...)
	}
	out := make([]Event, 0, len(r.ring))
	out = append(out, r.ring[r.next:]...)
	return append(out, r.ring[:r.next]...)
}
