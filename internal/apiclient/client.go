// Package apiclient is the typed HTTP client for the portal API. It speaks the
// service's {status, message, data, error} envelope and turns failures into
// the domain error taxonomy.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"medunit-portal/internal/domain"
)

const (
	// DefaultTimeout bounds every request when no http.Client is supplied.
	DefaultTimeout = 30 * time.Second
	// DoctorsTTL is how long the doctor list is served from memory.
	DoctorsTTL = 2 * time.Minute

	doctorsKey = "doctors"
)

// TokenSource returns the bearer token for the next request, or "".
type TokenSource func() string

// Client talks to the portal API rooted at BaseURL (for example
// http://localhost:8080/api).
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSource
	cache   *cache.Cache
	log     zerolog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.token = ts }
}

// WithLogger attaches a logger for request tracing.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		token:   func() string { return "" },
		cache:   cache.New(DoctorsTTL, 2*DoctorsTTL),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetTokenSource swaps the token source after construction. The session
// store and the client refer to each other, so one side is wired late.
func (c *Client) SetTokenSource(ts TokenSource) { c.token = ts }

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// do sends body as JSON and decodes the envelope's data into out when out is
// not nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return &domain.RemoteError{Message: "could not reach the portal service", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.RemoteError{StatusCode: resp.StatusCode, Message: "could not read the response", Err: err}
	}
	c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).Msg("request done")

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode/100 != 2 {
		return statusError(resp.StatusCode, env, decodeErr == nil)
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if decodeErr != nil {
		return &domain.RemoteError{StatusCode: resp.StatusCode, Message: "unexpected response from the portal service", Err: decodeErr}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &domain.RemoteError{StatusCode: resp.StatusCode, Message: "unexpected response from the portal service", Err: err}
	}
	return nil
}

// statusError picks the best message the response offers: error, then
// message, then a generic fallback.
func statusError(code int, env envelope, decoded bool) error {
	msg := ""
	if decoded {
		msg = strings.TrimSpace(env.Error)
		if msg == "" {
			msg = strings.TrimSpace(env.Message)
		}
	}
	if msg == "" {
		msg = fmt.Sprintf("request failed: %s", strings.ToLower(http.StatusText(code)))
	}
	remote := &domain.RemoteError{StatusCode: code, Message: msg}
	switch code {
	case http.StatusUnauthorized:
		return &domain.AuthError{Reason: "not authenticated", Err: remote}
	case http.StatusForbidden:
		return &domain.AuthError{Reason: "not allowed", Err: remote}
	}
	return remote
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	var remote *domain.RemoteError
	return errors.As(err, &remote) && remote.StatusCode == http.StatusNotFound
}
