package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/D-ignite/webex-cdr/internal/calls"
)

// DefaultClientTimeout covers the gateway's worst-case retry chain with margin.
const DefaultClientTimeout = 2 * time.Minute

const queryTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Gateway is what the presentation client needs from the API gateway.
type Gateway interface {
	Health(ctx context.Context) (Health, error)
	Users(ctx context.Context, limit int) ([]calls.Person, error)
	Calls(ctx context.Context, req CallsRequest) ([]calls.Raw, error)
}

// CallsRequest is one per-entity call-history fetch.
type CallsRequest struct {
	EntityID string
	Start    time.Time
	End      time.Time
	Limit    int
}

// Health is the /api/health body.
type Health struct {
	Status string `json:"status"`
	API    struct {
		Version         string `json:"version"`
		WebexConnection string `json:"webexConnection"`
		User            string `json:"user"`
	} `json:"api"`
	Error      string `json:"error,omitempty"`
	Details    string `json:"details,omitempty"`
	Resolution string `json:"resolution,omitempty"`
}

func (h Health) Healthy() bool { return h.Status == "healthy" }

// GatewayError is a non-2xx gateway response.
type GatewayError struct {
	Status     int
	Message    string
	Details    string
	Resolution string
}

func (e *GatewayError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("gateway %d: %s (%s)", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("gateway %d: %s", e.Status, e.Message)
}

type ClientOptions struct {
	BaseURL string
	// Token is sent as a bearer token when the gateway protects /api.
	Token   string
	Timeout time.Duration

	HTTPClient *http.Client
}

// GatewayClient calls the gateway's /api endpoints over HTTP.
type GatewayClient struct {
	http    *http.Client
	baseURL string
	token   string
}

func NewGatewayClient(o ClientOptions) *GatewayClient {
	if o.Timeout <= 0 {
		o.Timeout = DefaultClientTimeout
	}
	hc := o.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: o.Timeout}
	}
	return &GatewayClient{
		http:    hc,
		baseURL: strings.TrimRight(o.BaseURL, "/"),
		token:   o.Token,
	}
}

func (c *GatewayClient) Health(ctx context.Context) (Health, error) {
	var h Health
	status, body, err := c.get(ctx, "/api/health", nil)
	if err != nil {
		return h, err
	}
	if err := json.Unmarshal(body, &h); err != nil {
		return h, fmt.Errorf("decode health: %w", err)
	}
	if status != http.StatusOK || !h.Healthy() {
		msg := h.Error
		if msg == "" {
			msg = "API connection unhealthy"
		}
		return h, &GatewayError{Status: status, Message: msg, Details: h.Details, Resolution: h.Resolution}
	}
	return h, nil
}

func (c *GatewayClient) Users(ctx context.Context, limit int) ([]calls.Person, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var page calls.Page[calls.Person]
	if err := c.getJSON(ctx, "/api/users", params, "Failed to fetch users", &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (c *GatewayClient) Calls(ctx context.Context, req CallsRequest) ([]calls.Raw, error) {
	params := url.Values{}
	params.Set("startDate", req.Start.UTC().Format(queryTimeLayout))
	params.Set("endDate", req.End.UTC().Format(queryTimeLayout))
	if req.EntityID != "" {
		params.Set("userId", req.EntityID)
	}
	if req.Limit > 0 {
		params.Set("limit", strconv.Itoa(req.Limit))
	}
	var page calls.Page[calls.Raw]
	if err := c.getJSON(ctx, "/api/calls", params, "Failed to fetch call data", &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (c *GatewayClient) getJSON(ctx context.Context, path string, params url.Values, fallback string, out any) error {
	status, body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return decodeGatewayError(status, body, fallback)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *GatewayClient) get(ctx context.Context, path string, params url.Values) (int, []byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("gateway request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read %s: %w", path, err)
	}
	return resp.StatusCode, body, nil
}

func decodeGatewayError(status int, body []byte, fallback string) error {
	var env struct {
		Error      string `json:"error"`
		Details    string `json:"details"`
		Resolution string `json:"resolution"`
	}
	_ = json.Unmarshal(body, &env)
	if env.Error == "" {
		env.Error = fallback
	}
	return &GatewayError{Status: status, Message: env.Error, Details: env.Details, Resolution: env.Resolution}
}
