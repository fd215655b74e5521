package gateway

import (
	"bytes"
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

	"github.com/dmitrijs2005/useradmin/internal/client/metrics"
	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/dmitrijs2005/useradmin/internal/logging"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	RequestIDHeader = "X-Request-ID"
	maxBodySize     = 10 << 20
)

// Gateway is the full admin API contract.
type Gateway interface {
	Register(ctx context.Context, r models.Registration) (string, error)
	Login(ctx context.Context, c models.Credentials) (*LoginResult, error)
	Profile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, p models.ProfileUpdate) (*ProfileResult, error)
	DeleteAccount(ctx context.Context) (string, error)
	ChangePassword(ctx context.Context, p models.PasswordChange) (string, error)
	ListUsers(ctx context.Context, q models.ListQuery) (*models.UserPage, error)
	DeleteUser(ctx context.Context, id string) error
	CreateUser(ctx context.Context, f models.UserFields) (*models.User, error)
	UpdateUser(ctx context.Context, id string, f models.UserFields) (*models.User, error)
}

// TokenSource yields the bearer token for the next request ("" for none).
type TokenSource interface {
	Token(ctx context.Context) string
}

type SessionExpiredFunc func(ctx context.Context, message string)

type HTTPClient struct {
	baseURL   *url.URL
	http      *http.Client
	tokens    TokenSource
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker
	metrics   *metrics.Gateway
	log       logging.Logger
	onExpired SessionExpiredFunc

	breakerTimeout  time.Duration
	breakerFailures uint32
}

type Option func(*HTTPClient)

func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.http = c }
}

func WithTimeout(d time.Duration) Option {
	return func(h *HTTPClient) { h.http.Timeout = d }
}

// WithRateLimit caps outbound requests; rps <= 0 disables the limiter.
func WithRateLimit(rps float64, burst int) Option {
	return func(h *HTTPClient) {
		if rps <= 0 {
			h.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		h.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithCircuitBreaker opens the circuit after failures consecutive transport
// or 5xx errors and probes again after timeout.
func WithCircuitBreaker(failures uint32, timeout time.Duration) Option {
	return func(h *HTTPClient) {
		h.breakerFailures = failures
		h.breakerTimeout = timeout
	}
}

func WithMetrics(m *metrics.Gateway) Option {
	return func(h *HTTPClient) { h.metrics = m }
}

func WithLogger(l logging.Logger) Option {
	return func(h *HTTPClient) { h.log = l }
}

func WithSessionExpiredHandler(fn SessionExpiredFunc) Option {
	return func(h *HTTPClient) { h.onExpired = fn }
}

func New(baseURL string, tokens TokenSource, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}

	h := &HTTPClient{
		baseURL:         u,
		http:            &http.Client{Timeout: 10 * time.Second},
		tokens:          tokens,
		log:             logging.Discard(),
		breakerFailures: 5,
		breakerTimeout:  30 * time.Second,
	}
	for _, o := range opts {
		o(h)
	}
	h.log = h.log.With("component", "gateway")
	h.breaker = h.newBreaker()
	return h, nil
}

// SetSessionExpiredHandler replaces the handler installed at construction.
// The App needs it because the handler and the client reference each other.
func (h *HTTPClient) SetSessionExpiredHandler(fn SessionExpiredFunc) {
	h.onExpired = fn
}

func (h *HTTPClient) newBreaker() *gobreaker.CircuitBreaker {
	const name = "admin-api"
	failures := h.breakerFailures
	if failures == 0 {
		failures = 5
	}
	h.metrics.SetBreakerState(name, int(gobreaker.StateClosed))

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     h.breakerTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ErrUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			h.log.Warn(context.Background(), "circuit breaker state changed", "from", from.String(), "to", to.String())
			h.metrics.SetBreakerState(name, int(to))
		},
	})
}

// request describes one API call. Either body (JSON) or form (raw payload
// with its content type) is set, never both.
type request struct {
	endpoint string
	method   string
	path     string
	query    url.Values
	body     any
	form     *formPayload
	signed   bool
}

type formPayload struct {
	contentType string
	data        []byte
}

// envelope is the part of every answer the client cares about regardless
// of the endpoint.
type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e envelope) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// do sends req and returns the raw 2xx body.
func (h *HTTPClient) do(ctx context.Context, req request) ([]byte, error) {
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	reqID := uuid.NewString()
	log := h.log.With("endpoint", req.endpoint, "request_id", reqID)
	start := time.Now()

	out, err := h.breaker.Execute(func() (interface{}, error) {
		return h.send(ctx, req, reqID)
	})

	status := "ok"
	var apiErr *APIError
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		status = "circuit_open"
		err = fmt.Errorf("%w: %v", ErrUnavailable, err)
	case errors.As(err, &apiErr):
		status = strconv.Itoa(apiErr.Status)
	case err != nil:
		status = "transport_error"
	}
	h.metrics.Observe(req.endpoint, status, time.Since(start))

	if err != nil {
		log.Warn(ctx, "api request failed", "status", status, "error", err)
		if apiErr != nil && apiErr.Expired {
			h.metrics.SessionExpired()
			if h.onExpired != nil {
				h.onExpired(ctx, apiErr.Message)
			}
		}
		return nil, err
	}

	log.Debug(ctx, "api request done", "elapsed", time.Since(start))
	return out.([]byte), nil
}

func (h *HTTPClient) send(ctx context.Context, req request, reqID string) ([]byte, error) {
	u := *h.baseURL
	u.Path = u.Path + req.path
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.form != nil:
		body = bytes.NewReader(req.form.data)
		contentType = req.form.contentType
	case req.body != nil:
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", req.endpoint, err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", req.endpoint, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, reqID)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.signed && h.tokens != nil {
		if token := h.tokens.Token(ctx); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := h.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}

	var env envelope
	_ = json.Unmarshal(data, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.text()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{
			Status:  resp.StatusCode,
			Message: msg,
			Expired: req.signed && tokenRejected(resp.StatusCode, msg),
		}
	}
	if env.Success != nil && !*env.Success {
		return nil, &APIError{Status: resp.StatusCode, Message: env.text()}
	}
	return data, nil
}
