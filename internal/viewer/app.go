package viewer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/D-ignite/webex-cdr/internal/calls"
	"github.com/D-ignite/webex-cdr/internal/reporting"
)

// State is the query lifecycle state.
//
//	idle -> validating -> rejected
//	                   -> fetching -> error | ready
//	ready -> ready (direction filter changes)
//
// SubmitQuery re-enters validating from any state.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateRejected   State = "rejected"
	StateFetching   State = "fetching"
	StateError      State = "error"
	StateReady      State = "ready"
)

// DirectionFilter selects which records are visible.
type DirectionFilter string

const (
	FilterAll      DirectionFilter = "all"
	FilterInbound  DirectionFilter = "inbound"
	FilterOutbound DirectionFilter = "outbound"
	FilterMissed   DirectionFilter = "missed"
)

func ParseDirectionFilter(s string) (DirectionFilter, error) {
	switch f := DirectionFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterInbound, FilterOutbound, FilterMissed:
		return f, nil
	default:
		return "", fmt.Errorf("unknown direction filter %q (want all, inbound, outbound or missed)", s)
	}
}

// Matches reports whether a record of direction d passes the filter.
func (f DirectionFilter) Matches(d calls.Direction) bool {
	if f == FilterAll || f == "" {
		return true
	}
	return string(f) == string(d)
}

// App is the presentation client's session state. It owns the entity roster and the
// active record set; every mutation goes through one of its methods.
type App struct {
	gw       Gateway
	policy   MergePolicy
	parallel int
	onChange func(from, to State)

	mu          sync.Mutex
	state       State
	seq         int
	entities    []calls.Person
	entitiesErr error
	records     []calls.Record
	failures    []EntityFailure
	filter      DirectionFilter
	err         error
}

type Option func(*App)

func WithMergePolicy(p MergePolicy) Option { return func(a *App) { a.policy = p } }

// WithParallelism bounds concurrent per-entity fetches; n <= 0 means one goroutine per entity.
func WithParallelism(n int) Option { return func(a *App) { a.parallel = n } }

// WithTransitionHook observes every state change. It is called with the App lock held.
func WithTransitionHook(fn func(from, to State)) Option {
	return func(a *App) { a.onChange = fn }
}

func NewApp(gw Gateway, opts ...Option) *App {
	a := &App{gw: gw, state: StateIdle, filter: FilterAll}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *App) setStateLocked(s State) {
	if a.onChange != nil {
		a.onChange(a.state, s)
	}
	a.state = s
}

// CheckHealth probes the gateway; callers run it before LoadEntities.
func (a *App) CheckHealth(ctx context.Context) (Health, error) {
	return a.gw.Health(ctx)
}

// LoadEntities fetches the roster. On failure the previous roster is kept and
// EntitiesErr reports the failure until a later call succeeds.
func (a *App) LoadEntities(ctx context.Context) error {
	people, err := a.gw.Users(ctx, DefaultLimit)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.entitiesErr = err
		return err
	}
	a.entities = people
	a.entitiesErr = nil
	return nil
}

func (a *App) Entities() []calls.Person {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]calls.Person(nil), a.entities...)
}

func (a *App) EntitiesErr() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.entitiesErr
}

// entityName resolves an id against the roster, falling back to calls.UnknownUser.
func (a *App) entityName(id string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, p := range a.entities {
		if p.ID == id {
			return p.Name()
		}
	}
	return calls.UnknownUser
}

// SubmitQuery validates in, fans out one fetch per entity and installs the merged result.
// A rejected query makes no network call. If a newer SubmitQuery starts before this one
// finishes, this one's result is discarded.
func (a *App) SubmitQuery(ctx context.Context, in QueryInput) error {
	a.mu.Lock()
	a.seq++
	seq := a.seq
	a.setStateLocked(StateValidating)

	q, err := in.Validate()
	if err != nil {
		a.err = err
		a.setStateLocked(StateRejected)
		a.mu.Unlock()
		return err
	}
	a.setStateLocked(StateFetching)
	a.mu.Unlock()

	records, failures, err := fetchMerged(ctx, a.gw, q, a.entityName, a.policy, a.parallel)

	a.mu.Lock()
	defer a.mu.Unlock()
	if seq != a.seq {
		return errors.New("viewer: superseded by a newer query")
	}
	if err != nil {
		a.err = err
		a.records = nil
		a.failures = nil
		a.setStateLocked(StateError)
		return err
	}
	a.err = nil
	a.records = records
	a.failures = failures
	a.setStateLocked(StateReady)
	return nil
}

// ApplyDirectionFilter changes the visible subset without any network call.
// In ready it is the ready -> ready self-loop; in other states it only stores the filter.
func (a *App) ApplyDirectionFilter(f DirectionFilter) error {
	f, err := ParseDirectionFilter(string(f))
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.filter = f
	if a.state == StateReady {
		a.setStateLocked(StateReady)
	}
	return nil
}

func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *App) Filter() DirectionFilter {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.filter
}

// Err is the last rejection or fetch error.
func (a *App) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Records is the full active dataset, newest first.
func (a *App) Records() []calls.Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]calls.Record(nil), a.records...)
}

// Visible is the active dataset narrowed by the direction filter.
func (a *App) Visible() []calls.Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]calls.Record, 0, len(a.records))
	for _, r := range a.records {
		if a.filter.Matches(r.Direction) {
			out = append(out, r)
		}
	}
	return out
}

// Stats aggregates the full dataset; the direction filter does not change it.
func (a *App) Stats() reporting.CallsSummary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return reporting.Summarize(a.records)
}

// Failures lists entities that failed under MergePartial in the last successful query.
func (a *App) Failures() []EntityFailure {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]EntityFailure(nil), a.failures...)
}
