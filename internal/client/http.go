package client

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
	"github.com/rs/zerolog"

	"github.com/digimonnaie/console/internal/logging"
)

const defaultTimeout = 30 * time.Second

// TokenSource supplies the bearer token for each request. An empty token
// means the request is sent unauthenticated.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource with a fixed value.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// Client makes REST calls to the DigiMonnaie backend.
type Client struct {
	baseURL string
	tokens  TokenSource
	client  *http.Client
	log     zerolog.Logger

	onUnauthorized func()
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.client = h }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.client.Timeout = d }
}

// WithUnauthorized registers fn to run when the backend answers 401 to a
// request that carried a bearer token.
func WithUnauthorized(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New creates a client targeting baseURL (e.g. "https://host/api").
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	if tokens == nil {
		tokens = StaticToken("")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		client:  &http.Client{Timeout: defaultTimeout},
		log:     logging.WithComponent("api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, "", out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding %s %s: %w", method, path, err)
	}
	return c.do(ctx, method, path, nil, bytes.NewReader(data), "application/json", out)
}

func (c *Client) sendForm(ctx context.Context, method, path string, fields []FormField, file *FilePart, out any) error {
	body, contentType, err := encodeMultipart(fields, file)
	if err != nil {
		return fmt.Errorf("encoding %s %s: %w", method, path, err)
	}
	return c.do(ctx, method, path, nil, body, contentType, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	tok := c.tokens.Token()
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Str("request_id", reqID).Msg("request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("request_id", reqID).
		Msg("request")

	if resp.StatusCode >= 300 {
		apiErr := decodeAPIError(method, path, resp)
		if tok != "" && c.onUnauthorized != nil && IsUnauthorized(apiErr) {
			c.log.Info().Str("path", path).Str("request_id", reqID).Msg("token rejected")
			c.onUnauthorized()
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}
