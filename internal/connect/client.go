package connect

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

	"github.com/connect-labs/ccli/internal/branding"
	"go.uber.org/zap"
)

// ErrNoAPIKey is returned when a request needs credentials and none are set.
var ErrNoAPIKey = errors.New("no API key configured")

// Client talks to the platform API.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	log        *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.httpClient = &http.Client{Timeout: d}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) {
		cl.log = l
	}
}

// New creates a Client for endpoint authenticated with apiKey.
func New(endpoint, apiKey string, opts ...Option) *Client {
	c := &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Status     string
	ErrorCode  string   `json:"error_code"`
	Errors     []string `json:"errors"`
}

func (e *APIError) Error() string {
	msg := e.Status
	if msg == "" {
		msg = fmt.Sprintf("%d", e.StatusCode)
	}
	if e.ErrorCode != "" {
		msg += ": " + e.ErrorCode
		if len(e.Errors) > 0 {
			msg += " - " + strings.Join(e.Errors, ", ")
		}
	}
	return msg
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	_, err := c.send(ctx, method, path, body, out)
	return err
}

// send performs the request and decodes a 2xx body into out. It returns the
// response headers.
func (c *Client) send(ctx context.Context, method, path string, body, out any) (http.Header, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	url := c.endpoint + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", apiKeyHeader(c.apiKey))
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", branding.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("api request", zap.String("method", method), zap.String("url", url))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	c.log.Debug("api response", zap.String("url", url), zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Status: resp.Status}
		// Error bodies are best effort; the status alone is still reported.
		_ = json.Unmarshal(data, apiErr)
		return nil, apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return resp.Header, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("parsing response of %s %s: %w", method, path, err)
	}
	return resp.Header, nil
}

// apiKeyHeader accepts keys given with or without the "ApiKey " scheme.
func apiKeyHeader(key string) string {
	if strings.HasPrefix(key, "ApiKey ") {
		return key
	}
	return "ApiKey " + key
}
