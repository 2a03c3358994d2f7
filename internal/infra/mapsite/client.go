package mapsite

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const maxBodySize = 1 << 20

const (
	endpointSubscription = "subscription"
	endpointByHash       = "users_by_hash"
	endpointLink         = "link"
	endpointActivate     = "activate"
)

// Client talks to the map website API. It never retries; every call ends in
// exactly one of: success, ErrNotFound, ErrTransport.
type Client struct {
	baseURL      string
	platform     string
	httpClient   *http.Client
	readTimeout  time.Duration
	writeTimeout time.Duration
	limiter      *rate.Limiter
	tracer       trace.Tracer
	logger       *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithTimeouts(read, write time.Duration) Option {
	return func(c *Client) {
		c.readTimeout = read
		c.writeTimeout = write
	}
}

func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func NewClient(baseURL, platform string, opts ...Option) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid map website url %q: %w", baseURL, err)
	}
	if platform == "" {
		platform = "telegram"
	}

	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		platform:     platform,
		httpClient:   &http.Client{},
		readTimeout:  5 * time.Second,
		writeTimeout: 10 * time.Second,
		tracer:       otel.Tracer("anomonus-bot/mapsite"),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Platform returns the platform segment used in paths and body field names.
func (c *Client) Platform() string {
	return c.platform
}

// GetSubscription fetches the authoritative subscription state of a chat user.
func (c *Client) GetSubscription(ctx context.Context, userID int64) (*SubscriptionStatus, error) {
	path := fmt.Sprintf("/api/subscription/%s/%s", url.PathEscape(c.platform), strconv.FormatInt(userID, 10))

	body, err := c.do(ctx, endpointSubscription, http.MethodGet, path, nil, c.readTimeout, nil)
	if err != nil {
		return nil, err
	}

	status, err := decodeSubscriptionStatus(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return status, nil
}

// GetUserByHash looks up the website account owning a registration hash.
func (c *Client) GetUserByHash(ctx context.Context, hash string) (*UserByHash, error) {
	path := "/api/users/by-hash/" + url.PathEscape(hash)

	body, err := c.do(ctx, endpointByHash, http.MethodGet, path, nil, c.readTimeout, nil)
	if err != nil {
		return nil, err
	}

	user, err := decodeUserByHash(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return user, nil
}

// LinkAccount attaches a chat identity to a website account.
func (c *Client) LinkAccount(ctx context.Context, req LinkRequest) error {
	path := "/api/subscription/link-" + url.PathEscape(c.platform)

	_, err := c.do(ctx, endpointLink, http.MethodPost, path, encodeLinkRequest(c.platform, req), c.writeTimeout, nil)
	return err
}

// Activate asks the website to start or extend a subscription.
func (c *Client) Activate(ctx context.Context, req ActivateRequest) error {
	var headers http.Header
	if req.IdempotencyKey != "" {
		headers = http.Header{"Idempotency-Key": []string{req.IdempotencyKey}}
	}

	_, err := c.do(ctx, endpointActivate, http.MethodPost, "/api/subscription/activate", encodeActivateRequest(c.platform, req), c.writeTimeout, headers)
	return err
}

func (c *Client) do(
	ctx context.Context,
	endpoint, method, path string,
	payload []byte,
	timeout time.Duration,
	headers http.Header,
) (respBody []byte, err error) {
	ctx, span := c.tracer.Start(ctx, "mapsite."+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("mapsite.endpoint", endpoint),
		))
	started := time.Now()
	outcome := outcomeOK

	defer func() {
		requestsTotal.WithLabelValues(endpoint, outcome).Inc()
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
		if err != nil && outcome == outcomeError {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			outcome = outcomeError
			return nil, fmt.Errorf("%w: rate limiting: %w", ErrTransport, err)
		}
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		outcome = outcomeError
		return nil, fmt.Errorf("%w: build request: %w", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header[k] = v
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		outcome = outcomeError
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, endpoint, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		outcome = outcomeError
		return nil, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		outcome = outcomeNotFound
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, method, endpoint)
	default:
		outcome = outcomeError
		c.logger.Warn("Unexpected map website status",
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.StatusCode),
			slog.String("body", truncate(string(body), 200)))
		return nil, fmt.Errorf("%w: %s %s: status %d", ErrTransport, method, endpoint, resp.StatusCode)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
