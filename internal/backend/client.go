// Package backend is the HTTP client for the board controller.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const (
	contentJSON = "application/json"
	contentForm = "application/x-www-form-urlencoded"
)

// HeaderProvider allows injecting per-request headers
type HeaderProvider func() map[string]string

type Client struct {
	baseURL string
	http    *fasthttp.Client
	headers HeaderProvider
	dialect Dialect
	logger  *zap.Logger

	defaultTimeout time.Duration
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.defaultTimeout = d
		}
	}
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(c *Client) { c.headers = h }
}

func WithDialect(d Dialect) Option {
	return func(c *Client) { c.dialect = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient builds a client. Calls are never retried: every control in the
// console maps to exactly one request.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		dialect:        DialectAPI,
		logger:         zap.NewNop(),
		defaultTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Dialect() Dialect { return c.dialect }

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) getJSON(ctx context.Context, op string, ep endpoint, out any) error {
	body, err := c.do(ctx, fasthttp.MethodGet, c.dialect.path(ep), "", nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return unexpected(op, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, op string, ep endpoint, in any) ([]byte, error) {
	var payload []byte
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal request: %w", op, err)
		}
		payload = raw
	}
	body, err := c.do(ctx, fasthttp.MethodPost, c.dialect.path(ep), contentJSON, payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return body, nil
}

func (c *Client) postForm(ctx context.Context, op string, ep endpoint, form url.Values) ([]byte, error) {
	body, err := c.do(ctx, fasthttp.MethodPost, c.dialect.path(ep), contentForm, []byte(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, payload []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	if contentType != "" {
		req.Header.SetContentType(contentType)
	}
	req.Header.Set("Accept", contentJSON)

	if c.headers != nil {
		for k, v := range c.headers() {
			if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
				req.Header.Set(k, v)
			}
		}
	}
	if payload != nil {
		req.SetBody(payload)
	}

	started := time.Now()
	err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
	if err != nil {
		c.logger.Debug("backend_request", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	status := resp.StatusCode()
	c.logger.Debug("backend_request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("took", time.Since(started)),
	)
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: status=%d body=%s", ErrTransport, status, truncate(string(resp.Body()), 512))
	}
	return append([]byte(nil), resp.Body()...), nil
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		clientDL := time.Now().Add(c.defaultTimeout)
		if dl.Before(clientDL) {
			return dl
		}
		return clientDL
	}
	return time.Now().Add(c.defaultTimeout)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
