package calls

import "strings"

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
	DirectionMissed   Direction = "missed"
	DirectionUnknown  Direction = "unknown"
)

// Label is the human-facing name of a direction.
func (d Direction) Label() string {
	switch d {
	case DirectionInbound:
		return "Inbound"
	case DirectionOutbound:
		return "Outbound"
	case DirectionMissed:
		return "Missed"
	default:
		return "Unknown"
	}
}

// ClassifyDirection reconciles Type, CallType and Disposition into one direction.
// Missed always wins over inbound. Renderers and counters must both go through here.
func ClassifyDirection(r Raw) Direction {
	typ := strings.ToLower(strings.TrimSpace(r.Type))
	callType := strings.ToLower(strings.TrimSpace(r.CallType))
	disposition := strings.ToLower(strings.TrimSpace(r.Disposition))

	switch {
	case disposition == "missed" || typ == "missed":
		return DirectionMissed
	case typ == "received" || callType == "in":
		return DirectionInbound
	case typ == "placed" || callType == "out":
		return DirectionOutbound
	default:
		return DirectionUnknown
	}
}
