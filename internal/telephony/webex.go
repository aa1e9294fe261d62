package telephony

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/D-ignite/webex-cdr/internal/calls"
	"github.com/D-ignite/webex-cdr/internal/metrics"
	"github.com/D-ignite/webex-cdr/pkg/logger"
)

const (
	defaultBaseURL = "https://webexapis.com/v1"
	defaultTimeout = 30 * time.Second

	// maxBodyBytes bounds how much of a response is buffered.
	maxBodyBytes = 16 << 20

	endpointCallHistory = "calls_history"
	endpointPeople      = "people"
	endpointMe          = "people_me"
)

// WebexOptions configures WebexClient.
type WebexOptions struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Retry   RetryPolicy

	// HTTPClient overrides the default client built from Timeout.
	HTTPClient *http.Client
}

// WebexClient talks to the Webex Calling REST API with a static bearer token.
type WebexClient struct {
	http    *http.Client
	baseURL string
	token   string
	retry   RetryPolicy

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

func NewWebexClient(o WebexOptions) *WebexClient {
	if o.BaseURL == "" {
		o.BaseURL = defaultBaseURL
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.Retry.MaxRetries < 0 {
		o.Retry.MaxRetries = 0
	}
	hc := o.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: o.Timeout}
	}
	return &WebexClient{
		http:    hc,
		baseURL: strings.TrimRight(o.BaseURL, "/"),
		token:   strings.TrimSpace(o.Token),
		retry:   o.Retry,
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

func (c *WebexClient) Name() string { return "webex" }

// HasToken reports whether a bearer credential is configured.
func (c *WebexClient) HasToken() bool { return c.token != "" }

func (c *WebexClient) HealthCheck(ctx context.Context) error {
	_, err := c.Me(ctx)
	return err
}

func (c *WebexClient) Me(ctx context.Context) (calls.Person, error) {
	body, err := c.get(ctx, endpointMe, "/people/me", nil)
	if err != nil {
		return calls.Person{}, err
	}
	var p calls.Person
	if err := json.Unmarshal(body, &p); err != nil {
		return calls.Person{}, fmt.Errorf("telephony: decode identity: %w", err)
	}
	return p, nil
}

func (c *WebexClient) CallHistory(ctx context.Context, q CallHistoryQuery) ([]byte, error) {
	if q.Start.IsZero() || q.End.IsZero() {
		return nil, errors.New("telephony: call history requires start and end")
	}
	params := url.Values{}
	params.Set("startTime", formatUpstreamTime(q.Start))
	params.Set("endTime", formatUpstreamTime(q.End))
	if q.PersonID != "" {
		params.Set("personId", q.PersonID)
	}
	params.Set("max", strconv.Itoa(ClampPageSize(q.Max)))
	return c.get(ctx, endpointCallHistory, "/telephony/calls/history", params)
}

func (c *WebexClient) People(ctx context.Context, q PeopleQuery) ([]byte, error) {
	params := url.Values{}
	params.Set("max", strconv.Itoa(ClampPageSize(q.Max)))
	return c.get(ctx, endpointPeople, "/people", params)
}

// get issues a GET with the bounded retry loop:
// 429 and 5xx are retried after a fixed delay until the budget is spent,
// other non-2xx statuses fail on the first attempt, transport errors are not retried.
func (c *WebexClient) get(ctx context.Context, endpoint, path string, params url.Values) ([]byte, error) {
	if c.token == "" {
		return nil, ErrMissingToken
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	log := logger.From(ctx).With("upstream", c.Name(), "endpoint", endpoint)

	var backoff time.Duration
	attempt := 0
	for {
		attempt++

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("telephony: build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			metrics.ObserveAttempt(endpoint, 0, lat)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			log.Warn("upstream transport error", "attempt", attempt, "latency_ms", lat.Milliseconds(), "err", err)
			return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		_ = resp.Body.Close()
		metrics.ObserveAttempt(endpoint, resp.StatusCode, lat)

		log.Debug("upstream response",
			"path", path,
			"status", resp.StatusCode,
			"attempt", attempt,
			"latency_ms", lat.Milliseconds(),
			"backoff_ms", backoff.Milliseconds(),
			"token", tokenPrefix(c.token),
		)

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if readErr != nil {
				return nil, fmt.Errorf("%w: read body: %v", ErrUnreachable, readErr)
			}
			return body, nil
		}

		serr := newStatusError(resp.StatusCode, body, attempt)
		wait, retryable := c.retry.Delay(resp.StatusCode)
		if !retryable || !c.retry.Allows(attempt) {
			if retryable {
				log.Warn("upstream retries exhausted", "status", resp.StatusCode, "attempts", attempt, "backoff_ms", backoff.Milliseconds())
			}
			return nil, serr
		}

		reason := retryReason(resp.StatusCode)
		metrics.ObserveRetry(endpoint, reason)
		log.Warn("upstream retrying", "status", resp.StatusCode, "reason", reason, "attempt", attempt, "retry_in_ms", wait.Milliseconds())

		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
		backoff += wait
	}
}

// tokenPrefix is the only part of the credential that may reach a log line.
func tokenPrefix(tok string) string {
	const n = 6
	if len(tok) <= n {
		return "***"
	}
	return tok[:n] + "..."
}
