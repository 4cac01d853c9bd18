// Package backendapi implements the backend port over the driving school's
// REST API. Every request carries the operator's bearer token; mutations also
// carry an idempotency key so a retried submission is not recorded twice.
package backendapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/SscSPs/caja_backoffice/internal/apperrors"
	"github.com/SscSPs/caja_backoffice/internal/core/ports/backend"
	"github.com/SscSPs/caja_backoffice/internal/core/session"
	"github.com/SscSPs/caja_backoffice/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IdempotencyKeyHeader is sent on every mutating request.
const IdempotencyKeyHeader = "X-Idempotency-Key"

const (
	defaultTimeout  = 30 * time.Second
	maxErrorBodyLen = 4096
)

// errNotFound marks a 404 so callers can decide what "missing" means for them.
var errNotFound = errors.New("backend: not found")

// Client talks to the backend REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	validate   *validator.Validate
	newKey     func() string
}

// Ensure Client implements the backend.Gateway interface
var _ backend.Gateway = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithIdempotencyKeys sets the generator for idempotency keys.
func WithIdempotencyKeys(fn func() string) Option {
	return func(c *Client) {
		c.newKey = fn
	}
}

// NewClient creates a backend client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		validate:   newValidator(),
		newKey:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Let min=0 and friends work on decimal amounts.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// request describes one backend call.
type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
}

func (r request) mutating() bool {
	return r.method != http.MethodGet && r.method != http.MethodHead
}

// send performs the call and returns the raw response on 2xx. Non-2xx
// responses are turned into errors and their body is closed.
func (c *Client) send(ctx context.Context, sess session.Context, r request) (*http.Response, error) {
	log := middleware.GetLoggerFromCtx(ctx)

	if sess.Token == "" {
		return nil, fmt.Errorf("%s: %w", r.op, session.ErrNoSession)
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var reader io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal: %w", r.op, err)
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, r.method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", r.op, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+sess.Token)
	httpReq.Header.Set("Accept", "application/json")
	if r.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if r.mutating() {
		httpReq.Header.Set(IdempotencyKeyHeader, c.newKey())
	}

	start := time.Now()
	log.Debug("backend request sent", slog.String("op", r.op), slog.String("method", r.method), slog.String("path", r.path))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Error("backend request failed", slog.String("op", r.op), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: send: %w", r.op, err)
	}

	log.Info("backend response received",
		slog.String("op", r.op),
		slog.Int("status", resp.StatusCode),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
	upstream := &apperrors.UpstreamError{
		StatusCode: resp.StatusCode,
		Message:    errorMessage(body, resp.StatusCode),
		Op:         r.op,
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %w", errNotFound, upstream)
	}
	return nil, upstream
}

// do performs the call and decodes and validates the JSON response into out.
func (c *Client) do(ctx context.Context, sess session.Context, r request, out any) error {
	resp, err := c.send(ctx, sess, r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: %w: decode: %v", r.op, apperrors.ErrBadUpstreamResponse, err)
	}
	if err := c.validate.Struct(out); err != nil {
		return fmt.Errorf("%s: %w: %v", r.op, apperrors.ErrBadUpstreamResponse, err)
	}
	return nil
}

// errorMessage extracts the server's own message from an error body.
func errorMessage(body []byte, status int) string {
	var e errorSchema
	if err := json.Unmarshal(body, &e); err == nil {
		for _, m := range []string{e.Detail, e.Message, e.Error, e.Mensaje} {
			if strings.TrimSpace(m) != "" {
				return m
			}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "<") {
		return text
	}
	return http.StatusText(status)
}

// amount renders a decimal as a bare JSON number.
func amount(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
