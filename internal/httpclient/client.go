// Package httpclient is the single gateway to the coaching backend. It
// attaches the session token, tags every call with a request ID and clears
// the session when the backend answers 401.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexanderramin/coach/internal/session"
	"github.com/google/uuid"
)

// RequestIDHeader carries a per-call UUID for correlating client and server logs.
const RequestIDHeader = "X-Request-ID"

// Client sends requests to the backend. It is safe for concurrent use.
type Client struct {
	baseURL  string
	http     *http.Client
	store    session.Store
	observer Observer
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for the backend at baseURL. The store is read on every
// call and cleared on 401.
func New(baseURL string, store session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		store:    store,
		observer: NoopObserver{},
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the session store the client reads from.
func (c *Client) Store() session.Store {
	return c.store
}

// Response is a fully read 2xx response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// IsArray reports whether the body is a JSON array.
func (r *Response) IsArray() bool {
	return firstByte(r.Body) == '['
}

// IsObject reports whether the body is a JSON object.
func (r *Response) IsObject() bool {
	return firstByte(r.Body) == '{'
}

func firstByte(b []byte) byte {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return 0
	}
	return b[0]
}

type request struct {
	query       url.Values
	headers     http.Header
	body        []byte
	contentType string
	skipAuth    bool
	err         error
}

// RequestOption configures a single call.
type RequestOption func(*request)

// WithQuery adds a query parameter. Values are URL-encoded.
func WithQuery(key, value string) RequestOption {
	return func(r *request) { r.query.Add(key, value) }
}

// WithJSON sends v as the JSON request body.
func WithJSON(v any) RequestOption {
	return func(r *request) {
		body, err := json.Marshal(v)
		if err != nil {
			r.err = fmt.Errorf("encoding request body: %w", err)
			return
		}
		r.body = body
		r.contentType = "application/json"
	}
}

// WithMultipart sends a multipart/form-data body with plain fields and one
// file part.
func WithMultipart(fields map[string]string, fileField, filename string, file io.Reader) RequestOption {
	return func(r *request) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		for k, v := range fields {
			if err := mw.WriteField(k, v); err != nil {
				r.err = fmt.Errorf("writing form field %s: %w", k, err)
				return
			}
		}
		part, err := mw.CreateFormFile(fileField, filename)
		if err != nil {
			r.err = fmt.Errorf("creating form file: %w", err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			r.err = fmt.Errorf("reading %s: %w", filename, err)
			return
		}
		if err := mw.Close(); err != nil {
			r.err = fmt.Errorf("closing multipart body: %w", err)
			return
		}
		r.body = buf.Bytes()
		r.contentType = mw.FormDataContentType()
	}
}

// WithHeader sets a request header. Explicit headers win over injected ones.
func WithHeader(key, value string) RequestOption {
	return func(r *request) { r.headers.Set(key, value) }
}

// WithBearer authenticates the call with an explicit token instead of the
// session token.
func WithBearer(token string) RequestOption {
	return WithHeader("Authorization", "Bearer "+token)
}

// SkipAuth prevents the session token from being attached.
func SkipAuth() RequestOption {
	return func(r *request) { r.skipAuth = true }
}

// Do performs one request. Non-2xx responses come back as *APIError; a 401
// also clears the session store before returning.
func (c *Client) Do(ctx context.Context, method, path string, opts ...RequestOption) (*Response, error) {
	req := &request{query: url.Values{}, headers: http.Header{}}
	for _, opt := range opts {
		opt(req)
	}
	if req.err != nil {
		return nil, req.err
	}

	target := c.baseURL + path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, v := range req.headers {
		httpReq.Header[k] = v
	}
	if req.contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	requestID := uuid.NewString()
	httpReq.Header.Set(RequestIDHeader, requestID)

	if !req.skipAuth && httpReq.Header.Get("Authorization") == "" {
		token, err := c.store.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading session token: %w", err)
		}
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, status, err := c.send(httpReq)
	c.observer.OnCallComplete(CallEvent{
		Method:    method,
		Path:      path,
		RequestID: requestID,
		Status:    status,
		LatencyMs: time.Since(start).Milliseconds(),
		Err:       err,
	})
	if err == nil {
		return resp, nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Unauthorized() {
		if clearErr := c.store.Clear(ctx); clearErr != nil {
			c.logger.Error("clearing session after 401", "error", clearErr)
		}
	}
	return nil, err
}

func (c *Client) send(req *http.Request) (*Response, int, error) {
	httpResp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, 0, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, ctxErr)
		}
		if isConnectionError(err) {
			return nil, 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return nil, 0, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, httpResp.StatusCode, fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, httpResp.StatusCode, newAPIError(httpResp.StatusCode, respBody)
	}
	return &Response{Status: httpResp.StatusCode, Header: httpResp.Header, Body: respBody}, httpResp.StatusCode, nil
}

func isConnectionError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
