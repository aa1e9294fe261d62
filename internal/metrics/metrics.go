package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "webex_cdr"

var (
	upstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream attempts, partitioned by endpoint and HTTP status (0 for transport failures).",
		},
		[]string{"endpoint", "status"},
	)

	upstreamRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_retries_total",
			Help:      "Upstream retries, partitioned by endpoint and reason.",
		},
		[]string{"endpoint", "reason"},
	)

	upstreamAttemptSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_attempt_seconds",
			Help:      "Latency of a single upstream attempt in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	inflightRejectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inflight_rejections_total",
			Help:      "Gateway requests rejected because the shared upstream in-flight cap was reached.",
		},
	)
)

// Register attaches gateway collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		upstreamRequestsTotal,
		upstreamRetriesTotal,
		upstreamAttemptSeconds,
		inflightRejectionsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveAttempt records one upstream attempt. status is 0 when no response arrived.
func ObserveAttempt(endpoint string, status int, latency time.Duration) {
	upstreamRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	if latency < 0 {
		latency = 0
	}
	upstreamAttemptSeconds.WithLabelValues(endpoint).Observe(latency.Seconds())
}

func ObserveRetry(endpoint, reason string) {
	upstreamRetriesTotal.WithLabelValues(endpoint, reason).Inc()
}

func ObserveInflightRejection() {
	inflightRejectionsTotal.Inc()
}
