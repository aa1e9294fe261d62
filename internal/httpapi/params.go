package httpapi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/D-ignite/webex-cdr/internal/telephony"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// callsParams is the query string of GET /api/calls.
type callsParams struct {
	StartDate string `form:"startDate" binding:"required"`
	EndDate   string `form:"endDate" binding:"required"`
	UserID    string `form:"userId" binding:"omitempty,max=512"`
	Limit     string `form:"limit"`
}

type usersParams struct {
	Limit string `form:"limit"`
}

const (
	msgDatesRequired = "Start date and end date are required"
	msgInvalidLimit  = "limit must be a positive integer"
	msgInvalidDate   = "startDate and endDate must be ISO-8601 dates (YYYY-MM-DD or RFC 3339)"
	msgInvalidRange  = "endDate must not be before startDate"
	msgInvalidQuery  = "Invalid query parameters"
)

// badRequest is a validation failure, reported before any upstream call.
type badRequest struct {
	msg     string
	details string
}

func (e *badRequest) Error() string { return e.msg }

// bindingError translates gin binding failures into a badRequest.
// A missing date always yields msgDatesRequired.
func bindingError(err error, t ut.Translator) *badRequest {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		var missing []string
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				missing = append(missing, fe.Field())
			}
		}
		if len(missing) > 0 {
			return &badRequest{msg: msgDatesRequired, details: "missing: " + strings.Join(missing, ", ")}
		}
		details := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			if t != nil {
				details = append(details, fe.Translate(t))
			} else {
				details = append(details, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
		}
		return &badRequest{msg: msgInvalidQuery, details: strings.Join(details, "; ")}
	}
	return &badRequest{msg: msgInvalidQuery, details: err.Error()}
}

// parseLimit applies the gateway limit rule: absent means DefaultPageSize,
// non-numeric or non-positive is rejected, values above MaxPageSize are capped.
func parseLimit(raw string) (int, *badRequest) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return telephony.DefaultPageSize, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, &badRequest{msg: msgInvalidLimit, details: fmt.Sprintf("got %q", raw)}
	}
	if n > telephony.MaxPageSize {
		n = telephony.MaxPageSize
	}
	return n, nil
}

// parseDate accepts a bare YYYY-MM-DD, widened to the start or end of that UTC day,
// or a full RFC 3339 timestamp which is used as given.
func parseDate(raw string, endOfDay bool) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		if endOfDay {
			return t.Add(24*time.Hour - time.Millisecond), true
		}
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func (p callsParams) toQuery() (telephony.CallHistoryQuery, *badRequest) {
	start, ok1 := parseDate(p.StartDate, false)
	end, ok2 := parseDate(p.EndDate, true)
	if !ok1 || !ok2 {
		return telephony.CallHistoryQuery{}, &badRequest{msg: msgInvalidDate, details: fmt.Sprintf("startDate=%q endDate=%q", p.StartDate, p.EndDate)}
	}
	if end.Before(start) {
		return telephony.CallHistoryQuery{}, &badRequest{msg: msgInvalidRange}
	}
	limit, bad := parseLimit(p.Limit)
	if bad != nil {
		return telephony.CallHistoryQuery{}, bad
	}
	return telephony.CallHistoryQuery{
		Start:    start,
		End:      end,
		PersonID: strings.TrimSpace(p.UserID),
		Max:      limit,
	}, nil
}
