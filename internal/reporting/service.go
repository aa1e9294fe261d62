package reporting

import "github.com/D-ignite/webex-cdr/internal/calls"

// Summarize aggregates records by their classified direction.
// Direction counts rely on Record.Direction, which calls.ClassifyDirection set,
// so these totals always agree with what the renderer shows per record.
func Summarize(records []calls.Record) CallsSummary {
	var out CallsSummary
	for _, r := range records {
		out.TotalCalls++
		switch r.Direction {
		case calls.DirectionInbound:
			out.InboundCalls++
		case calls.DirectionOutbound:
			out.OutboundCalls++
		case calls.DirectionMissed:
			out.MissedCalls++
		default:
			out.UnknownCalls++
		}
		if r.DurationSeconds != nil {
			out.TimedCalls++
			out.TotalDurationSeconds += *r.DurationSeconds
		}
	}
	if out.TimedCalls > 0 {
		out.AverageDurationSeconds = out.TotalDurationSeconds / out.TimedCalls
	}
	return out
}
