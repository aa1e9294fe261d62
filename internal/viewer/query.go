package viewer

import (
	"errors"
	"strings"
	"time"
)

const (
	DefaultLimit = 100
	// MaxLimit keeps per-entity pages well under the upstream maximum.
	MaxLimit = 200
)

const (
	MsgDatesRequired    = "Please select start and end dates"
	MsgEntitiesRequired = "Please select at least one user"
	MsgDateFormat       = "Please enter dates as YYYY-MM-DD"
	MsgDateOrder        = "End date must not be before start date"
)

// ErrValidation marks a query rejected locally, before any network call.
var ErrValidation = errors.New("viewer: invalid query")

// ValidationError carries the user-facing rejection message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string        { return e.Message }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// QueryInput is the raw filter form.
type QueryInput struct {
	// StartDate and EndDate are calendar dates, YYYY-MM-DD.
	StartDate string
	EndDate   string
	// Limit <= 0 means DefaultLimit.
	Limit     int
	EntityIDs []string
}

// Query is a validated QueryInput.
type Query struct {
	Start     time.Time
	End       time.Time
	Limit     int
	EntityIDs []string
}

// Validate widens the dates to full UTC days, clamps the limit into [1, MaxLimit]
// and de-duplicates entity ids, keeping first-seen order.
func (in QueryInput) Validate() (Query, error) {
	startRaw := strings.TrimSpace(in.StartDate)
	endRaw := strings.TrimSpace(in.EndDate)
	if startRaw == "" || endRaw == "" {
		return Query{}, &ValidationError{Message: MsgDatesRequired}
	}

	var ids []string
	seen := make(map[string]bool, len(in.EntityIDs))
	for _, id := range in.EntityIDs {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return Query{}, &ValidationError{Message: MsgEntitiesRequired}
	}

	start, err := time.Parse(time.DateOnly, startRaw)
	if err != nil {
		return Query{}, &ValidationError{Message: MsgDateFormat}
	}
	end, err := time.Parse(time.DateOnly, endRaw)
	if err != nil {
		return Query{}, &ValidationError{Message: MsgDateFormat}
	}
	if end.Before(start) {
		return Query{}, &ValidationError{Message: MsgDateOrder}
	}

	return Query{
		Start:     start,
		End:       end.Add(24*time.Hour - time.Millisecond),
		Limit:     clampLimit(in.Limit),
		EntityIDs: ids,
	}, nil
}

func clampLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultLimit
	case n > MaxLimit:
		return MaxLimit
	default:
		return n
	}
}
