package reporting

import "github.com/D-ignite/webex-cdr/internal/calls"

// CallsSummary is the aggregate view over the active call dataset.
// It is derived on demand and never persisted.
type CallsSummary struct {
	TotalCalls    int `json:"total_calls"`
	InboundCalls  int `json:"inbound_calls"`
	OutboundCalls int `json:"outbound_calls"`
	MissedCalls   int `json:"missed_calls"`
	UnknownCalls  int `json:"unknown_calls"`

	TotalDurationSeconds   int `json:"total_duration_seconds"`
	AverageDurationSeconds int `json:"average_duration_seconds"`

	// TimedCalls counts records that carried a duration.
	TimedCalls int `json:"timed_calls"`
}

// Count returns the per-direction count for d.
func (s CallsSummary) Count(d calls.Direction) int {
	switch d {
	case calls.DirectionInbound:
		return s.InboundCalls
	case calls.DirectionOutbound:
		return s.OutboundCalls
	case calls.DirectionMissed:
		return s.MissedCalls
	default:
		return s.UnknownCalls
	}
}
