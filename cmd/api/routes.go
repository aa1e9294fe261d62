package main

import (
	"net/http"
	"strings"

	"github.com/D-ignite/webex-cdr/internal/audit"
	"github.com/D-ignite/webex-cdr/internal/auth"
	"github.com/D-ignite/webex-cdr/internal/httpapi"
	"github.com/D-ignite/webex-cdr/internal/telephony"

	"github.com/gin-gonic/gin"
)

// routeDeps are the collaborators registerRoutes wires into handlers.
// Optional ones are nil when their feature is disabled.
type routeDeps struct {
	Upstream telephony.Provider

	Auth     *auth.Manager
	Audit    *audit.Service
	Inflight httpapi.InflightLimiter

	Metrics   http.Handler
	StaticDir string
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, d routeDeps) {
	// public
	r.GET("/healthz", httpapi.Liveness)
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}

	h := httpapi.Handlers{Upstream: d.Upstream}

	api := r.Group("/api")
	api.Use(auth.RequireAccessToken(d.Auth))
	{
		callKeys := []string{"startDate", "endDate", "userId", "limit"}
		calls := []gin.HandlerFunc{
			httpapi.RecordQuery(d.Audit, audit.EventTypeCallsQuery, callKeys...),
			httpapi.LimitInflight(d.Inflight),
			h.Calls,
		}
		api.GET("/calls", calls...)
		api.GET("/cdr", calls...)

		api.GET("/users",
			httpapi.RecordQuery(d.Audit, audit.EventTypeUsersQuery, "limit"),
			httpapi.LimitInflight(d.Inflight),
			h.Users,
		)
		api.GET("/health",
			httpapi.RecordQuery(d.Audit, audit.EventTypeHealthProbe),
			h.Health,
		)
	}

	r.NoRoute(notFound(d.StaticDir))
}

// notFound serves the static front end for non-API paths when dir is set.
func notFound(dir string) gin.HandlerFunc {
	var files http.Handler
	if dir != "" {
		files = http.FileServer(http.Dir(dir))
	}
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if files == nil || path == "/api" || strings.HasPrefix(path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "details": path})
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	}
}
