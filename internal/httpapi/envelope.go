package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/D-ignite/webex-cdr/internal/telephony"
	"github.com/D-ignite/webex-cdr/pkg/logger"

	"github.com/gin-gonic/gin"
)

// errorBody is the gateway failure envelope.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func abortBadRequest(c *gin.Context, bad *badRequest) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: bad.msg, Details: bad.details})
}

// abortUpstream maps an upstream failure onto the envelope.
// Upstream statuses are mirrored; the rest map to 5xx by cause.
func abortUpstream(c *gin.Context, fallback string, err error) {
	status, body := upstreamFailure(fallback, err)
	if status >= 500 {
		_ = c.Error(err)
	} else {
		logger.FromGin(c).Info("upstream rejected request", "status", status, "err", err)
	}
	c.AbortWithStatusJSON(status, body)
}

func upstreamFailure(fallback string, err error) (int, errorBody) {
	if se, ok := telephony.AsStatusError(err); ok {
		details := fmt.Sprintf("upstream returned %d %s after %d attempt(s)", se.Status, http.StatusText(se.Status), se.Attempts)
		if se.TrackingID != "" {
			details += "; trackingId " + se.TrackingID
		}
		return se.Status, errorBody{Error: se.Message, Details: details}
	}

	switch {
	case errors.Is(err, telephony.ErrMissingToken):
		return http.StatusServiceUnavailable, errorBody{Error: fallback, Details: "WEBEX_TOKEN is not configured on the gateway"}
	case errors.Is(err, telephony.ErrUnreachable):
		return http.StatusBadGateway, errorBody{Error: fallback, Details: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, errorBody{Error: fallback, Details: "upstream request timed out"}
	case errors.Is(err, context.Canceled):
		// nginx's "client closed request"
		return 499, errorBody{Error: fallback, Details: "request cancelled"}
	default:
		return http.StatusInternalServerError, errorBody{Error: fallback, Details: err.Error()}
	}
}
