package httpapi

import (
	"errors"
	"net/http"

	"github.com/D-ignite/webex-cdr/internal/telephony"
	"github.com/D-ignite/webex-cdr/pkg/logger"

	"github.com/gin-gonic/gin"
)

// APIVersion is reported by /api/health.
const APIVersion = "v1"

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: validate input, call the upstream provider, relay JSON.
type Handlers struct {
	Upstream telephony.Provider
}

// Calls proxies GET /api/calls to the upstream call-history endpoint.
// Validation failures are answered with 400 before any upstream call.
func (h Handlers) Calls(c *gin.Context) {
	var p callsParams
	if bad := bindQuery(c, &p); bad != nil {
		abortBadRequest(c, bad)
		return
	}
	q, bad := p.toQuery()
	if bad != nil {
		abortBadRequest(c, bad)
		return
	}

	body, err := h.Upstream.CallHistory(c.Request.Context(), q)
	if err != nil {
		abortUpstream(c, "Failed to fetch call history", err)
		return
	}
	c.Data(http.StatusOK, gin.MIMEJSON+"; charset=utf-8", body)
}

func (h Handlers) Users(c *gin.Context) {
	var p usersParams
	if bad := bindQuery(c, &p); bad != nil {
		abortBadRequest(c, bad)
		return
	}
	limit, bad := parseLimit(p.Limit)
	if bad != nil {
		abortBadRequest(c, bad)
		return
	}

	body, err := h.Upstream.People(c.Request.Context(), telephony.PeopleQuery{Max: limit})
	if err != nil {
		abortUpstream(c, "Failed to fetch users", err)
		return
	}
	c.Data(http.StatusOK, gin.MIMEJSON+"; charset=utf-8", body)
}

type healthAPI struct {
	Version         string `json:"version"`
	WebexConnection string `json:"webexConnection"`
	User            string `json:"user"`
}

type healthBody struct {
	Status     string     `json:"status"`
	API        *healthAPI `json:"api,omitempty"`
	Error      string     `json:"error,omitempty"`
	Details    string     `json:"details,omitempty"`
	Resolution string     `json:"resolution,omitempty"`
}

const (
	resolutionMissingToken = "Set WEBEX_TOKEN in the gateway environment and restart it."
	resolutionAuth         = "The Webex access token is invalid or expired. Generate a new token at https://developer.webex.com and update WEBEX_TOKEN."
	resolutionConnectivity = "Check network connectivity to the Webex API and try again."
)

// Health probes the upstream identity endpoint with the configured credential.
func (h Handlers) Health(c *gin.Context) {
	me, err := h.Upstream.Me(c.Request.Context())
	if err == nil {
		c.JSON(http.StatusOK, healthBody{
			Status: "healthy",
			API: &healthAPI{
				Version:         APIVersion,
				WebexConnection: "connected",
				User:            me.Name(),
			},
		})
		return
	}

	log := logger.FromGin(c)
	if errors.Is(err, telephony.ErrMissingToken) {
		log.Warn("health: token not configured")
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, healthBody{
			Status:     "unhealthy",
			Error:      "Webex token not configured",
			Details:    "WEBEX_TOKEN is empty",
			Resolution: resolutionMissingToken,
		})
		return
	}

	status, env := upstreamFailure("Failed to connect to Webex API", err)
	resolution := resolutionConnectivity
	if se, ok := telephony.AsStatusError(err); ok && se.IsAuthFailure() {
		resolution = resolutionAuth
	} else if status < 500 {
		// A non-auth 4xx from /people/me still means the gateway cannot serve requests.
		status = http.StatusServiceUnavailable
	}
	log.Warn("health: upstream probe failed", "status", status, "err", err)
	c.AbortWithStatusJSON(status, healthBody{
		Status:     "unhealthy",
		Error:      env.Error,
		Details:    env.Details,
		Resolution: resolution,
	})
}

// Liveness answers /healthz without touching the upstream.
func Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
