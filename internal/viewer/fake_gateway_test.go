package viewer

import (
	"context"
	"sync"

	"github.com/D-ignite/webex-cdr/internal/calls"
)

type fakeGateway struct {
	mu sync.Mutex

	health    Health
	healthErr error
	people    []calls.Person
	usersErr  error

	byEntity  map[string][]calls.Raw
	errEntity map[string]error

	requests []CallsRequest
	userReqs int
}

func (f *fakeGateway) Health(ctx context.Context) (Health, error) {
	return f.health, f.healthErr
}

func (f *fakeGateway) Users(ctx context.Context, limit int) ([]calls.Person, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userReqs++
	return f.people, f.usersErr
}

func (f *fakeGateway) Calls(ctx context.Context, req CallsRequest) ([]calls.Raw, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	raws, err := f.byEntity[req.EntityID], f.errEntity[req.EntityID]
	f.mu.Unlock()
	return raws, err
}

func (f *fakeGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}
