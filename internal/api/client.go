package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	DefaultTimeout = 30 * time.Second

	// logBodyLimit bounds the body excerpt written when a response fails.
	logBodyLimit = 200
)

// HTTPDoer is the transport used by Client. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the Mottu API client.
//
// Every request goes through Do, which resolves the URL against BaseURL and
// attaches the bearer token currently held by Session. Resource helpers are
// grouped into services (Motorcycles, Users, Areas, Auth) that walk the
// candidate path lists in Paths.
type Client struct {
	BaseURL    string
	Session    *Session
	HTTP       HTTPDoer
	UserAgent  string
	APIVersion string // sent as x-api-version on user endpoints
	Paths      PathSet
	Logger     *slog.Logger

	now func() time.Time
}

// New creates a client for baseURL that reads its token from session.
// A nil session is replaced by an empty one.
func New(baseURL string, session *Session) *Client {
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		baseTransport = &http.Transport{}
	}
	transport := baseTransport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12

	if session == nil {
		session = &Session{}
	}
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		Session:    session,
		APIVersion: DefaultAPIVersion,
		Paths:      DefaultPaths(),
		HTTP: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: transport,
		},
		now: time.Now,
	}
}

// RequestOptions controls a single call to Do.
type RequestOptions struct {
	// Method defaults to GET.
	Method string
	// Body is sent verbatim when it is []byte or json.RawMessage and
	// JSON-encoded otherwise. Nil means no body.
	Body any
	// Header values are copied onto the request before defaults are applied.
	Header http.Header
	// Timeout aborts this call alone when positive.
	Timeout time.Duration
}

// Response is a fully read HTTP response.
type Response struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// DecodeJSON unmarshals the body into v.
func (r *Response) DecodeJSON(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return fmt.Errorf("empty response body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("unexpected API response format (JSON decode failed): %w", err)
	}
	return nil
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *Client) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

// resolveURL prefixes relative paths with BaseURL.
func (c *Client) resolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if path != "" && path[0] != '/' {
		path = "/" + path
	}
	return strings.TrimSuffix(c.BaseURL, "/") + path
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		return data, nil
	}
}

// Do issues a single request. Non-2xx responses are returned, not turned into
// errors; only transport failures produce a *NetworkError.
func (c *Client) Do(ctx context.Context, path string, opts RequestOptions) (*Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	url := c.resolveURL(path)

	payload, err := encodeBody(opts.Body)
	if err != nil {
		return nil, err
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range opts.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if payload != nil && method != http.MethodGet && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if token := c.Session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if req.Header.Get("X-Request-Id") == "" {
		req.Header.Set("X-Request-Id", uuid.NewString())
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.logger().Debug("request failed", "method", method, "url", url, "error", err)
		return nil, &NetworkError{Method: method, URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger().Debug("failed to read response body", "method", method, "url", url, "error", err)
		body = nil
	}

	out := &Response{
		Method:     method,
		URL:        url,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}
	if !out.OK() {
		c.logger().Info("non-success response",
			"status", resp.StatusCode,
			"method", method,
			"url", url,
			"body", truncate(string(body), logBodyLimit),
		)
	} else {
		c.logger().Debug("request complete", "method", method, "url", url, "status", resp.StatusCode, "duration", time.Since(start))
	}
	return out, nil
}

// truncate shortens s to at most n runes, marking the cut.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "…"
}

// isContextDone reports whether err stems from ctx being cancelled by the caller
// rather than by a per-request timeout.
func isContextDone(ctx context.Context, err error) bool {
	return ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}
