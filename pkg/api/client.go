// Package api is the HTTP gateway of the ordersync client core.
//
// A single configured Client issues every REST call against the backend base
// address, attaches the current session token as a bearer credential, and
// normalizes failures into *api.Error values carrying the HTTP status and the
// server-supplied message. The gateway never mutates session or order state
// itself; callers own their state transitions. The one concession is an
// injectable OnUnauthorized hook, fired when any response comes back 401, so
// the session store can clear its credentials without the gateway importing
// it.
//
//	client := api.New(config.APIBaseURL())
//	resp, err := client.Get("/orders").Query("page", "1").Send()
//	var out ordersPage
//	err = resp.JSON(&out)
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	gohttp "net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ordersync/ordersync/pkg/metrics"
)

// genericMessage substitutes for failures where the server supplies no
// message of its own, including transport-level errors with no response.
const genericMessage = "request failed"

// TokenSource supplies the current session token. An empty string means
// unauthenticated and no Authorization header is attached.
type TokenSource interface {
	Token() string
}

// defaultTransport is the connection-pooled transport used in production.
// Tests can replace a Client's HTTPClient.Transport to inject mocks.
var defaultTransport = &gohttp.Transport{
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 50,
	IdleConnTimeout:     90 * time.Second,
}

// Client is the configured HTTP gateway.
type Client struct {
	base string
	// HTTPClient performs the actual requests. Exported so tests can swap
	// its Transport.
	HTTPClient *gohttp.Client

	mu             sync.RWMutex
	tokens         TokenSource
	onUnauthorized func()
}

// New creates a Client for the given base address, e.g.
// "http://localhost:5000/api".
func New(base string) *Client {
	return &Client{
		base:       strings.TrimRight(base, "/"),
		HTTPClient: &gohttp.Client{Transport: defaultTransport},
	}
}

// Base returns the configured base address.
func (c *Client) Base() string { return c.base }

// SetTokenSource wires the session token provider. Safe to call after
// construction; the session store passes itself in.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	c.tokens = ts
	c.mu.Unlock()
}

// OnUnauthorized registers a hook fired whenever a response has status 401.
// The hook runs before the error is returned to the caller.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// ── Request builder ──────────────────────────────────────────────────────────

// Request is a fluent request builder bound to its Client.
type Request struct {
	c           *Client
	method      string
	path        string
	query       url.Values
	headers     map[string]string
	body        io.Reader
	contentType string
	buildErr    error
	ctx         context.Context
}

// Get starts a GET request for path (relative to the base address).
func (c *Client) Get(path string) *Request { return c.newRequest(gohttp.MethodGet, path) }

// Post starts a POST request.
func (c *Client) Post(path string) *Request { return c.newRequest(gohttp.MethodPost, path) }

// Put starts a PUT request.
func (c *Client) Put(path string) *Request { return c.newRequest(gohttp.MethodPut, path) }

// Delete starts a DELETE request.
func (c *Client) Delete(path string) *Request { return c.newRequest(gohttp.MethodDelete, path) }

func (c *Client) newRequest(method, path string) *Request {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return &Request{
		c:       c,
		method:  method,
		path:    path,
		query:   url.Values{},
		headers: map[string]string{"Accept": "application/json"},
		ctx:     context.Background(),
	}
}

// Query adds a query parameter. Empty values are skipped so optional filters
// never appear in the request URL.
func (r *Request) Query(key, value string) *Request {
	if value != "" {
		r.query.Set(key, value)
	}
	return r
}

// QueryInt adds an integer query parameter.
func (r *Request) QueryInt(key string, value int) *Request {
	return r.Query(key, fmt.Sprintf("%d", value))
}

// Header sets a single request header.
func (r *Request) Header(key, value string) *Request {
	r.headers[key] = value
	return r
}

// Body sets a JSON request body marshalled from v.
func (r *Request) Body(v interface{}) *Request {
	b, err := json.Marshal(v)
	if err != nil {
		r.buildErr = fmt.Errorf("api: marshal body: %w", err)
		return r
	}
	r.body = bytes.NewReader(b)
	r.contentType = "application/json"
	return r
}

// Multipart sets a multipart/form-data body from the given fields plus an
// optional file part. Pass a nil file to send fields only.
func (r *Request) Multipart(fields map[string]string, fileField, fileName string, file io.Reader) *Request {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			r.buildErr = fmt.Errorf("api: multipart field %s: %w", k, err)
			return r
		}
	}
	if file != nil {
		part, err := w.CreateFormFile(fileField, fileName)
		if err != nil {
			r.buildErr = fmt.Errorf("api: multipart file: %w", err)
			return r
		}
		if _, err := io.Copy(part, file); err != nil {
			r.buildErr = fmt.Errorf("api: multipart copy: %w", err)
			return r
		}
	}
	if err := w.Close(); err != nil {
		r.buildErr = fmt.Errorf("api: multipart close: %w", err)
		return r
	}

	r.body = &buf
	r.contentType = w.FormDataContentType()
	return r
}

// WithContext sets a custom context for cancellation.
func (r *Request) WithContext(ctx context.Context) *Request {
	r.ctx = ctx
	return r
}

// ── Send ─────────────────────────────────────────────────────────────────────

// Send executes the request. A non-2xx response or transport failure is
// returned as a *Error; the raw status code is surfaced faithfully.
func (r *Request) Send() (*Response, error) {
	if r.buildErr != nil {
		return nil, r.buildErr
	}

	target := r.c.base + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := gohttp.NewRequestWithContext(r.ctx, r.method, target, r.body)
	if err != nil {
		return nil, fmt.Errorf("api: build request: %w", err)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if token := r.c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := r.c.HTTPClient.Do(req)
	if err != nil {
		// No response at all: normalize to the generic failure. Status 0
		// distinguishes transport errors from HTTP-level ones.
		metrics.ObserveAPIRequest(r.method, 0, start)
		return nil, &Error{Status: 0, Message: genericMessage, cause: err}
	}
	metrics.ObserveAPIRequest(r.method, resp.StatusCode, start)

	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, &Error{Status: resp.StatusCode, Message: genericMessage, cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode, Message: serverMessage(raw)}
		if resp.StatusCode == gohttp.StatusUnauthorized {
			r.c.fireUnauthorized()
		}
		return nil, apiErr
	}

	return &Response{StatusCode: resp.StatusCode, Headers: resp.Header, Raw: raw}, nil
}

func (c *Client) fireUnauthorized() {
	c.mu.RLock()
	fn := c.onUnauthorized
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// serverMessage extracts the "message" field from an error body, falling
// back to the generic message.
func serverMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return genericMessage
}

// ── Response ─────────────────────────────────────────────────────────────────

// Response wraps a successful (2xx) HTTP response.
type Response struct {
	StatusCode int
	Headers    gohttp.Header
	Raw        []byte
}

// JSON unmarshals the response body into dest.
func (r *Response) JSON(dest interface{}) error {
	if len(r.Raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}

// Text returns the response body as a string.
func (r *Response) Text() string { return string(r.Raw) }
