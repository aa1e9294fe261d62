package telephony

import (
	"context"
	"time"

	"github.com/D-ignite/webex-cdr/internal/calls"
)

// Provider is the upstream telephony API as seen by the gateway.
//
// Rules:
// - Successful list responses are returned as the raw upstream body; the gateway
//   passes them through verbatim and never reshapes them.
// - Every call carries the configured bearer credential and the retry policy.
// - No state is kept across calls.
type Provider interface {
	Name() string
	HealthCheck(ctx context.Context) error

	// Me returns the identity the configured credential authenticates as.
	Me(ctx context.Context) (calls.Person, error)
	CallHistory(ctx context.Context, q CallHistoryQuery) ([]byte, error)
	People(ctx context.Context, q PeopleQuery) ([]byte, error)
}

const (
	// DefaultPageSize applies when the caller sends no limit.
	DefaultPageSize = 100
	// MaxPageSize is the largest page the upstream accepts in one request.
	MaxPageSize = 1000
)

// CallHistoryQuery is the upstream-facing form of a call-history request.
// Start and End are required; Max is already clamped to [1, MaxPageSize].
type CallHistoryQuery struct {
	Start    time.Time
	End      time.Time
	PersonID string
	Max      int
}

type PeopleQuery struct {
	Max int
}

// ClampPageSize coerces n into [1, MaxPageSize], mapping n <= 0 to DefaultPageSize.
func ClampPageSize(n int) int {
	switch {
	case n <= 0:
		return DefaultPageSize
	case n > MaxPageSize:
		return MaxPageSize
	default:
		return n
	}
}

// upstreamTimeLayout is the millisecond-precision UTC form the upstream expects.
const upstreamTimeLayout = "2006-01-02T15:04:05.000Z07:00"

func formatUpstreamTime(t time.Time) string {
	return t.UTC().Format(upstreamTimeLayout)
}
