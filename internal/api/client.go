// ABOUTME: HTTP client for the backend REST API with per-request credential headers
// ABOUTME: Decodes JSON responses and maps non-2xx statuses to *Error

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kurek775/saladin/internal/credentials"
)

// DefaultPrefix is the path prefix of every REST route.
const DefaultPrefix = "/api"

// maxErrorBody bounds how much of a failed response is kept in Error.Body.
const maxErrorBody = 64 << 10

// ErrNotFound matches any *Error with status 404 under errors.Is.
var ErrNotFound = errors.New("not found")

// Error is a non-2xx response.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Body)
}

// Is reports whether e is a 404 when target is ErrNotFound.
func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Config for the REST client.
type Config struct {
	// BaseURL is the backend origin, e.g. "http://localhost:8000".
	BaseURL string
	// Prefix defaults to DefaultPrefix.
	Prefix      string
	Credentials credentials.Source
	HTTPClient  *http.Client
	Logger      *slog.Logger
}

// Client talks to the REST API.
type Client struct {
	base       string
	creds      credentials.Source
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a client.
func New(cfg Config) *Client {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		base:       strings.TrimSuffix(cfg.BaseURL, "/") + "/" + strings.Trim(prefix, "/"),
		creds:      cfg.Credentials,
		httpClient: httpClient,
		logger:     logger.With("component", "api"),
	}
}

// do sends a JSON request and decodes the response into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.creds != nil {
		h, err := c.creds.Headers()
		if err != nil {
			return fmt.Errorf("credentials: %w", err)
		}
		for k, vs := range h {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Error{StatusCode: resp.StatusCode, Body: string(text)}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}
