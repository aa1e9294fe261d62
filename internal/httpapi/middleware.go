package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/D-ignite/webex-cdr/internal/audit"
	"github.com/D-ignite/webex-cdr/internal/auth"
	"github.com/D-ignite/webex-cdr/internal/metrics"
	"github.com/D-ignite/webex-cdr/pkg/logger"

	"github.com/gin-gonic/gin"
)

// InflightLimiter caps concurrent upstream-bound requests across gateway replicas.
type InflightLimiter interface {
	Acquire(ctx context.Context) (release func(), ok bool, err error)
}

// LimitInflight rejects with 429 when the shared cap is reached.
// If the limiter itself fails the request proceeds; the cap is advisory.
func LimitInflight(l InflightLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}
		release, ok, err := l.Acquire(c.Request.Context())
		if err != nil {
			logger.FromGin(c).Warn("inflight cap unavailable, proceeding", "err", err)
			c.Next()
			return
		}
		if !ok {
			metrics.ObserveInflightRejection()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorBody{
				Error:   "Too many requests in flight",
				Details: "the gateway's shared upstream concurrency cap is reached; retry shortly",
			})
			return
		}
		defer release()
		c.Next()
	}
}

const auditTimeout = 2 * time.Second

// RecordQuery appends one audit event per handled request, with the listed query keys as params.
// Failures are logged and never change the response.
func RecordQuery(svc *audit.Service, typ audit.EventType, keys ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if svc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		params := make(map[string]string, len(keys))
		for _, k := range keys {
			params[k] = c.Query(k)
		}
		subject, _ := auth.Subject(c.Request.Context())

		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), auditTimeout)
		defer cancel()

		err := svc.LogQuery(ctx, audit.Query{
			Type:      typ,
			RequestID: logger.RequestID(c),
			Subject:   subject,
			IPAddress: c.ClientIP(),
			Route:     c.FullPath(),
			Status:    c.Writer.Status(),
			Params:    params,
			Duration:  time.Since(start),
		})
		if err != nil {
			logger.FromGin(c).Warn("audit append failed", "err", err)
		}
	}
}
