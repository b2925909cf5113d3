// Package api is the gateway to the course platform REST API. Every exported
// operation performs exactly one network call (or none, when short-circuited)
// and returns a Result envelope; no Go error or panic escapes an operation.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/R3E-Network/courseclient/internal/httputil"
	"github.com/R3E-Network/courseclient/internal/logging"
	"github.com/R3E-Network/courseclient/internal/metrics"
	"github.com/R3E-Network/courseclient/internal/tokenstore"
)

const (
	defaultTimeout       = 30 * time.Second
	maxResponseBodyBytes = 8 << 20
	maxErrorBodyBytes    = 64 << 10

	// RequestIDHeader carries a per-call id for server-side correlation.
	RequestIDHeader = "X-Request-ID"
)

// Config configures a Gateway.
type Config struct {
	// BaseURL is the API root, e.g. https://api.example.com/api.
	BaseURL string
	// Tokens supplies and persists the auth token.
	Tokens tokenstore.Store
	// HTTPClient executes requests. When nil a client with Timeout is used.
	HTTPClient *http.Client
	Timeout    time.Duration
	// RateLimit caps outgoing requests per second; zero disables limiting.
	RateLimit float64
	Burst     int
	UserAgent string
	Logger    *logging.Logger
}

// Gateway maps domain operations onto REST calls.
type Gateway struct {
	baseURL    string
	tokens     tokenstore.Store
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	logger     *logging.Logger
}

// New creates a gateway.
func New(cfg Config) (*Gateway, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("api: BaseURL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("api: BaseURL must be a valid URL")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("api: token store is required")
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Gateway{
		baseURL:    baseURL,
		tokens:     cfg.Tokens,
		httpClient: client,
		limiter:    limiter,
		userAgent:  cfg.UserAgent,
		logger:     logger,
	}, nil
}

// BaseURL returns the normalized API root.
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// Tokens returns the token store the gateway reads from.
func (g *Gateway) Tokens() tokenstore.Store {
	return g.tokens
}

// request describes one REST call.
type request struct {
	op       string
	method   string
	path     string
	query    url.Values
	body     any
	raw      []byte
	rawType  string
	auth     bool
	fallback string
	// pluck lists gjson paths tried, in order, against an object payload
	// to find the value to decode (e.g. "courses" in {"courses": [...]}).
	pluck []string
}

// response is a successful call's payload plus the raw status.
type response struct {
	status  int
	payload []byte
}

// invoke runs req and decodes the payload into T.
func invoke[T any](ctx context.Context, g *Gateway, req request) Result[T] {
	resp, apiErr := g.do(ctx, req)
	if apiErr != nil {
		return failWith[T](apiErr)
	}

	var out T
	if len(resp.payload) == 0 {
		return OK(out)
	}
	if err := decodePayload(resp.payload, &out); err != nil {
		apiErr := decodeError(req.op, resp.status, err, req.fallback)
		g.logger.WithContext(ctx).WithError(err).WithField("operation", req.op).Warn("decode response")
		return failWith[T](apiErr)
	}
	return OK(out)
}

// do executes req once. It returns the unwrapped payload of a 2xx response or
// a typed error for every other outcome.
func (g *Gateway) do(ctx context.Context, req request) (resp response, apiErr *Error) {
	done := metrics.CallStarted(req.op)
	start := time.Now()
	defer func() {
		done(apiErr == nil)
		var logErr error
		if apiErr != nil {
			logErr = apiErr
		}
		g.logger.LogCall(ctx, req.op, req.method, req.path, resp.status, time.Since(start), logErr)
	}()

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return resp, networkError(req.op, err, req.fallback)
		}
	}

	httpReq, err := g.newRequest(ctx, req)
	if err != nil {
		return resp, invalidError(req.op, err, req.fallback)
	}

	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return resp, networkError(req.op, err, req.fallback)
	}
	defer httpResp.Body.Close()
	resp.status = httpResp.StatusCode

	if !httputil.IsSuccess(httpResp.StatusCode) {
		body, _, readErr := httputil.ReadAllWithLimit(httpResp.Body, maxErrorBodyBytes)
		if readErr != nil {
			body = nil
		}
		return resp, statusError(req.op, httpResp.StatusCode, body, req.fallback)
	}

	body, err := httputil.ReadAllStrict(httpResp.Body, maxResponseBodyBytes)
	if err != nil {
		return resp, networkError(req.op, err, req.fallback)
	}

	payload, apiErr := unwrap(req, httpResp.StatusCode, body)
	if apiErr != nil {
		return resp, apiErr
	}
	resp.payload = payload
	return resp, nil
}

func (g *Gateway) newRequest(ctx context.Context, req request) (*http.Request, error) {
	endpoint := g.baseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	var (
		bodyReader  io.Reader
		contentType string
	)
	switch {
	case req.raw != nil:
		bodyReader = bytes.NewReader(req.raw)
		contentType = req.rawType
	case req.body != nil:
		data, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if g.userAgent != "" {
		httpReq.Header.Set("User-Agent", g.userAgent)
	}
	requestID := logging.TraceID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	httpReq.Header.Set(RequestIDHeader, requestID)

	// Absent tokens are not rejected locally; the server decides.
	if req.auth {
		if token, ok := g.tokens.Get(ctx); ok {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return httpReq, nil
}

// unwrap selects the payload to decode from a 2xx body. A body carrying
// success=false is treated as a server rejection. An object with both
// "success" and "data" yields its data; otherwise the whole body is used.
// Then the first matching pluck path, if any, narrows an object payload.
func unwrap(req request, status int, body []byte) ([]byte, *Error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(trimmed) {
		return nil, decodeError(req.op, status, fmt.Errorf("response is not valid JSON"), req.fallback)
	}

	root := gjson.ParseBytes(trimmed)
	payload := trimmed
	if root.IsObject() {
		success := root.Get("success")
		if success.Exists() && success.Type == gjson.False {
			return nil, &Error{
				Kind:    KindServer,
				Op:      req.op,
				Status:  status,
				Message: pickMessage(trimmed, "", req.fallback),
			}
		}
		if data := root.Get("data"); success.Exists() && data.Exists() {
			payload = []byte(data.Raw)
		}
	}

	if len(req.pluck) > 0 {
		inner := gjson.ParseBytes(payload)
		if inner.IsObject() {
			for _, path := range req.pluck {
				if v := inner.Get(path); v.Exists() {
					payload = []byte(v.Raw)
					break
				}
			}
		}
	}
	return payload, nil
}

// pageQuery encodes page/limit, omitting non-positive values.
func pageQuery(q PageQuery) url.Values {
	values := url.Values{}
	if q.Page > 0 {
		values.Set("page", fmt.Sprint(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", fmt.Sprint(q.Limit))
	}
	return values
}

func escape(segment string) string {
	return url.PathEscape(strings.TrimSpace(segment))
}
