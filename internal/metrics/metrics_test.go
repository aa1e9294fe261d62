package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue next
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestRegister_IsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := Register(reg); err != nil {
		t.Fatalf("second register: %v", err)
	}
}

func TestObserveAttempt_CountsByStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	labels := map[string]string{"endpoint": "people_me", "status": "429"}

	before := counterValue(t, reg, "webex_cdr_upstream_requests_total", labels)
	ObserveAttempt("people_me", 429, 10*time.Millisecond)
	ObserveAttempt("people_me", 429, -time.Second)
	after := counterValue(t, reg, "webex_cdr_upstream_requests_total", labels)

	if after-before != 2 {
		t.Fatalf("expected 2 new attempts, got %v", after-before)
	}
}

func TestObserveRetry(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	labels := map[string]string{"endpoint": "people", "reason": "rate_limited"}

	before := counterValue(t, reg, "webex_cdr_upstream_retries_total", labels)
	ObserveRetry("people", "rate_limited")
	if got := counterValue(t, reg, "webex_cdr_upstream_retries_total", labels); got-before != 1 {
		t.Fatalf("expected one retry, got %v", got-before)
	}
}
