package audit

import "time"

// Event is an immutable, append-only record of one gateway query.
//
// Invariants:
// - Events are never updated or deleted.
// - Only request metadata is stored. Call records and people never reach this table.
// - Recording is best-effort; a failed append never fails the request.
type Event struct {
	ID   string    `json:"id" db:"id"`
	Type EventType `json:"type" db:"type"`

	RequestID string `json:"request_id,omitempty" db:"request_id"`
	// Subject is the access-token subject when /api auth is enabled.
	Subject   string `json:"subject,omitempty" db:"subject"`
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	Route  string `json:"route" db:"route"`
	Status int    `json:"status" db:"status"`

	// Params is the JSON-encoded query filter (dates, user id, limit).
	Params     string `json:"params,omitempty" db:"params"`
	DurationMS int64  `json:"duration_ms" db:"duration_ms"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeCallsQuery  EventType = "calls_query"
	EventTypeUsersQuery  EventType = "users_query"
	EventTypeHealthProbe EventType = "health_probe"
)
