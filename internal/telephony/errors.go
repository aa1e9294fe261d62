package telephony

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrMissingToken means no bearer credential is configured.
	ErrMissingToken = errors.New("telephony: WEBEX_TOKEN is not configured")
	// ErrUnreachable wraps transport-level failures (DNS, TLS, connection reset, timeout).
	ErrUnreachable = errors.New("telephony: upstream unreachable")
)

// StatusError is a non-2xx upstream response, captured after the retry loop ended.
type StatusError struct {
	Status     int
	Message    string
	TrackingID string
	// Attempts is how many requests were made, including the first.
	Attempts int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("telephony: upstream status %d: %s (attempts=%d)", e.Status, e.Message, e.Attempts)
}

func (e *StatusError) HTTPStatus() int { return e.Status }

// IsAuthFailure reports whether the upstream rejected the credential.
func (e *StatusError) IsAuthFailure() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// AsStatusError unwraps err into a *StatusError.
func AsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// upstreamErrorBody is the provider's error payload.
type upstreamErrorBody struct {
	Message string `json:"message"`
	Errors  []struct {
		Description string `json:"description"`
	} `json:"errors"`
	TrackingID string `json:"trackingId"`
}

func newStatusError(status int, body []byte, attempts int) *StatusError {
	se := &StatusError{Status: status, Attempts: attempts}

	var eb upstreamErrorBody
	if len(body) > 0 && json.Unmarshal(body, &eb) == nil {
		se.TrackingID = eb.TrackingID
		se.Message = strings.TrimSpace(eb.Message)
		if se.Message == "" && len(eb.Errors) > 0 {
			se.Message = strings.TrimSpace(eb.Errors[0].Description)
		}
	}
	if se.Message == "" {
		se.Message = http.StatusText(status)
	}
	if se.Message == "" {
		se.Message = "unexpected upstream status"
	}
	return se
}
