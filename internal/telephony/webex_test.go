package telephony

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

type sleepRecorder struct {
	waits []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return nil
}

func newTestClient(t *testing.T, h http.HandlerFunc) (*WebexClient, *int32, *sleepRecorder) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	c := NewWebexClient(WebexOptions{BaseURL: srv.URL, Token: "test-token-123", Retry: DefaultRetryPolicy()})
	rec := &sleepRecorder{}
	c.sleep = rec.sleep
	return c, &hits, rec
}

func TestGet_RetriesRateLimitTwiceThenSurfaces(t *testing.T) {
	c, hits, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"Too many requests","trackingId":"T-1"}`))
	})

	_, err := c.People(context.Background(), PeopleQuery{Max: 10})
	se, ok := AsStatusError(err)
	if !ok {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Status != http.StatusTooManyRequests || se.Attempts != 3 {
		t.Fatalf("unexpected error: %+v", se)
	}
	if se.Message != "Too many requests" || se.TrackingID != "T-1" {
		t.Fatalf("expected upstream message and tracking id, got %+v", se)
	}
	if got := atomic.LoadInt32(hits); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
	if len(rec.waits) != 2 || rec.waits[0] != 2*time.Second || rec.waits[1] != 2*time.Second {
		t.Fatalf("expected two 2s waits, got %v", rec.waits)
	}
}

func TestGet_RetriesServerErrorWithShorterDelay(t *testing.T) {
	c, hits, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.People(context.Background(), PeopleQuery{})
	se, ok := AsStatusError(err)
	if !ok || se.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 StatusError, got %v", err)
	}
	if se.Message != "Service Unavailable" {
		t.Fatalf("expected status text fallback, got %q", se.Message)
	}
	if got := atomic.LoadInt32(hits); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
	for _, w := range rec.waits {
		if w != time.Second {
			t.Fatalf("expected 1s waits, got %v", rec.waits)
		}
	}
}

func TestGet_RecoversAfterTransientFailure(t *testing.T) {
	var n int32
	c, hits, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&n, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"items":[]}`))
	})

	body, err := c.People(context.Background(), PeopleQuery{})
	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if string(body) != `{"items":[]}` {
		t.Fatalf("expected body passed through, got %s", body)
	}
	if got := atomic.LoadInt32(hits); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestGet_ClientErrorsAreNotRetried(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound} {
		c, hits, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"errors":[{"description":"nope"}]}`))
		})

		_, err := c.People(context.Background(), PeopleQuery{})
		se, ok := AsStatusError(err)
		if !ok || se.Status != status || se.Attempts != 1 {
			t.Fatalf("status %d: unexpected error %v", status, err)
		}
		if se.Message != "nope" {
			t.Fatalf("status %d: expected errors[0].description, got %q", status, se.Message)
		}
		if got := atomic.LoadInt32(hits); got != 1 {
			t.Fatalf("status %d: expected 1 attempt, got %d", status, got)
		}
		if len(rec.waits) != 0 {
			t.Fatalf("status %d: expected no waits, got %v", status, rec.waits)
		}
	}
}

func TestGet_ZeroRetryBudget(t *testing.T) {
	c, hits, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	c.retry.MaxRetries = 0

	_, err := c.People(context.Background(), PeopleQuery{})
	if se, ok := AsStatusError(err); !ok || se.Attempts != 1 {
		t.Fatalf("expected single attempt, got %v", err)
	}
	if got := atomic.LoadInt32(hits); got != 1 {
		t.Fatalf("expected 1 attempt, got %d", got)
	}
}

func TestGet_MissingTokenMakesNoRequest(t *testing.T) {
	c, hits, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	c.token = ""

	if _, err := c.Me(context.Background()); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
	if got := atomic.LoadInt32(hits); got != 0 {
		t.Fatalf("expected no upstream contact, got %d", got)
	}
}

func TestGet_TransportErrorIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	c := NewWebexClient(WebexOptions{BaseURL: base, Token: "tok", Retry: DefaultRetryPolicy()})
	if _, err := c.People(context.Background(), PeopleQuery{}); !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
}

func TestGet_CancelledDuringBackoff(t *testing.T) {
	c, hits, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	c.sleep = func(ctx context.Context, d time.Duration) error { return context.Canceled }

	if _, err := c.People(context.Background(), PeopleQuery{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := atomic.LoadInt32(hits); got != 1 {
		t.Fatalf("expected 1 attempt, got %d", got)
	}
}

func TestCallHistory_MapsQueryToUpstreamParams(t *testing.T) {
	var got *http.Request
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		_, _ = w.Write([]byte(`{"items":[{"id":"1"}]}`))
	})

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 7, 23, 59, 59, 999_000_000, time.UTC)
	body, err := c.CallHistory(context.Background(), CallHistoryQuery{Start: start, End: end, PersonID: "p1", Max: 5000})
	if err != nil {
		t.Fatalf("call history: %v", err)
	}
	if string(body) != `{"items":[{"id":"1"}]}` {
		t.Fatalf("unexpected body %s", body)
	}

	if got.URL.Path != "/telephony/calls/history" {
		t.Fatalf("unexpected path %s", got.URL.Path)
	}
	q := got.URL.Query()
	if q.Get("startTime") != "2024-01-01T00:00:00.000Z" || q.Get("endTime") != "2024-01-07T23:59:59.999Z" {
		t.Fatalf("unexpected time params: %v", q)
	}
	if q.Get("personId") != "p1" || q.Get("max") != "1000" {
		t.Fatalf("unexpected params: %v", q)
	}
	if got.Header.Get("Authorization") != "Bearer test-token-123" {
		t.Fatalf("expected bearer token, got %q", got.Header.Get("Authorization"))
	}
}

func TestCallHistory_OmitsPersonWhenUnset(t *testing.T) {
	var q url.Values
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.Query()
		_, _ = w.Write([]byte(`{"items":[]}`))
	})

	now := time.Now()
	if _, err := c.CallHistory(context.Background(), CallHistoryQuery{Start: now, End: now}); err != nil {
		t.Fatalf("call history: %v", err)
	}
	if q.Get("max") != "100" || q.Has("personId") {
		t.Fatalf("unexpected query %v", q)
	}
}

func TestMe_DecodesIdentity(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/people/me" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id":"me","displayName":"Ada Lovelace","emails":["ada@example.com"]}`))
	})

	p, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if p.Name() != "Ada Lovelace" || len(p.Emails) != 1 {
		t.Fatalf("unexpected identity %+v", p)
	}
}

func TestClampPageSize(t *testing.T) {
	cases := map[int]int{-5: 100, 0: 100, 1: 1, 250: 250, 1000: 1000, 1001: 1000}
	for in, want := range cases {
		if got := ClampPageSize(in); got != want {
			t.Fatalf("ClampPageSize(%d)=%d, want %d", in, got, want)
		}
	}
}

func TestTokenPrefix(t *testing.T) {
	if got := tokenPrefix("abcdefghijkl"); got != "abcdef..." {
		t.Fatalf("unexpected prefix %q", got)
	}
	if got := tokenPrefix("abc"); got != "***" {
		t.Fatalf("short tokens must be fully masked, got %q", got)
	}
}
