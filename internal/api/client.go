package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxErrorBody caps how much of a failed response is kept on the Error.
const maxErrorBody = 64 << 10

// Client calls the studio backend. It holds no per-user state; use WithJar
// to bind a request to a session's backend cookies.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// WithJar returns a copy of c whose requests send, and whose responses
// update, the cookies held by jar.
func (c *Client) WithJar(jar http.CookieJar) *Client {
	hc := *c.http
	hc.Jar = jar
	return &Client{baseURL: c.baseURL, http: &hc}
}

// BaseURL is the backend root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a GET and decodes a JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.Send(ctx, http.MethodGet, path, nil, out)
}

// Send issues a request with an optional JSON body and decodes a JSON
// response into out. A 204 or a non-JSON response leaves out untouched.
func (c *Client) Send(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, joinURL(c.baseURL, path), reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		slog.Debug("Backend returned error", "method", method, "path", path, "status", resp.StatusCode)
		return &Error{Status: resp.StatusCode, Body: string(text)}
	}

	if resp.StatusCode == http.StatusNoContent || out == nil || !isJSON(resp.Header.Get("Content-Type")) {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// joinURL appends path to base without doubling an /api segment when the
// base already ends in one.
func joinURL(base, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if strings.HasSuffix(base, "/api") && (path == "/api" || strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/api?")) {
		path = strings.TrimPrefix(path, "/api")
		if path == "" {
			path = "/"
		}
	}
	return base + path
}
