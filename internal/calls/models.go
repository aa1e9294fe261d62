package calls

import (
	"strings"
	"time"
)

// Raw is one upstream call-history item as the provider sends it.
//
// The schema has changed across API versions, so the same fact can arrive through
// different fields: direction via Type or CallType, the calling party via From,
// Number or CallerNumber. Raw keeps every variant; Normalize picks one.
type Raw struct {
	ID string `json:"id,omitempty"`

	// Type is the legacy enum: received, placed, missed.
	Type string `json:"type,omitempty"`
	// CallType is the current enum: in, out.
	CallType string `json:"callType,omitempty"`
	// Disposition carries "missed" on newer payloads.
	Disposition string `json:"disposition,omitempty"`

	Time      string `json:"time,omitempty"`
	StartTime string `json:"startTime,omitempty"`

	// Duration is in seconds; absent on unanswered calls.
	Duration *float64 `json:"duration,omitempty"`

	From         string `json:"from,omitempty"`
	Number       string `json:"number,omitempty"`
	CallerNumber string `json:"callerNumber,omitempty"`
	To           string `json:"to,omitempty"`
	CalledNumber string `json:"calledNumber,omitempty"`
	Name         string `json:"name,omitempty"`
	CallerName   string `json:"callerName,omitempty"`
}

// Page is the upstream list envelope shared by call history and people.
type Page[T any] struct {
	Items []T `json:"items"`
}

// Record is the normalized, display-ready call record.
type Record struct {
	ID        string    `json:"id,omitempty"`
	Direction Direction `json:"direction"`
	StartTime time.Time `json:"startTime"`

	// DurationSeconds is nil when the upstream did not report a duration.
	DurationSeconds *int `json:"durationSeconds,omitempty"`

	FromParty  string `json:"fromParty"`
	ToParty    string `json:"toParty"`
	CallerName string `json:"callerName,omitempty"`

	// EntityName is attached by the client after merge.
	EntityName string `json:"entityName,omitempty"`
}

// Person is an upstream user that can be selected as a call-history filter.
type Person struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName,omitempty"`
	FirstName   string   `json:"firstName,omitempty"`
	LastName    string   `json:"lastName,omitempty"`
	Emails      []string `json:"emails,omitempty"`
}

const UnknownUser = "Unknown User"

// Name is displayName, else "first last", else UnknownUser.
func (p Person) Name() string {
	if n := strings.TrimSpace(p.DisplayName); n != "" {
		return n
	}
	if n := strings.TrimSpace(p.FirstName + " " + p.LastName); n != "" {
		return n
	}
	return UnknownUser
}

// StartedAt parses Time, falling back to StartTime. The zero time means unparseable.
func (r Raw) StartedAt() time.Time {
	for _, s := range []string{r.Time, r.StartTime} {
		if s == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// DurationSeconds returns nil for an absent or negative duration.
func (r Raw) DurationSeconds() *int {
	if r.Duration == nil || *r.Duration < 0 {
		return nil
	}
	n := int(*r.Duration)
	return &n
}

// Normalize converts a raw item into a Record. EntityName is left empty.
func (r Raw) Normalize() Record {
	return Record{
		ID:              r.ID,
		Direction:       ClassifyDirection(r),
		StartTime:       r.StartedAt(),
		DurationSeconds: r.DurationSeconds(),
		FromParty:       firstNonEmpty(r.From, r.Number, r.CallerNumber),
		ToParty:         firstNonEmpty(r.To, r.CalledNumber),
		CallerName:      firstNonEmpty(r.Name, r.CallerName),
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
