// Package httpclient is the transport every detector, chunker, and
// generation client is built on: a thin wrapper around net/http adding a
// base URL, default headers, and an optional per-client rate limiter.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// DefaultHTTPClient is a shared HTTP client with sensible defaults.
var DefaultHTTPClient = &http.Client{
	Timeout: 60 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	},
}

// Client wraps an HTTP client with a base URL, default headers, and an
// optional outbound rate limiter.
type Client struct {
	client  *http.Client
	baseURL string
	headers map[string]string
	limiter *rate.Limiter
}

// Config configures a Client.
type Config struct {
	// BaseURL is prepended to every request path.
	BaseURL string

	// Headers are sent with every request unless overridden per-request.
	Headers map[string]string

	// Timeout bounds each request when HTTPClient is nil (default 60s).
	Timeout time.Duration

	// HTTPClient is the underlying client. DefaultHTTPClient is used
	// when nil.
	HTTPClient *http.Client

	// Limiter, when non-nil, is waited on before every outbound
	// request. Callers share one limiter per backend service.
	Limiter *rate.Limiter
}

// NewClient builds a Client from cfg.
func NewClient(cfg Config) *Client {
	client := cfg.HTTPClient
	if client == nil {
		if cfg.Timeout > 0 {
			client = &http.Client{
				Timeout: cfg.Timeout,
				Transport: &http.Transport{
					MaxIdleConns:        100,
					MaxIdleConnsPerHost: 10,
					IdleConnTimeout:     90 * time.Second,
				},
			}
		} else {
			client = DefaultHTTPClient
		}
	}

	return &Client{
		client:  client,
		baseURL: cfg.BaseURL,
		headers: cfg.Headers,
		limiter: cfg.Limiter,
	}
}

// Request is one outbound call.
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
	Body    interface{}
	Query   map[string]string

	// RawBody, when set, is sent verbatim instead of JSON-marshaling
	// Body. Used for streaming request uploads (e.g. NDJSON chunker
	// input) where the body is produced incrementally.
	RawBody io.Reader
}

// Response is a fully-buffered HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

func (c *Client) buildURL(path string, query map[string]string) string {
	u := c.baseURL + path
	if len(query) == 0 {
		return u
	}
	v := url.Values{}
	for k, val := range query {
		v.Set(k, val)
	}
	return u + "?" + v.Encode()
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	var bodyReader io.Reader
	switch {
	case req.RawBody != nil:
		bodyReader = req.RawBody
	case req.Body != nil:
		bodyBytes, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.buildURL(req.Path, req.Query), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create HTTP request: %w", err)
	}

	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	return httpReq, nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// Do performs req and buffers the response body.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}, nil
}

// DoJSON performs req and decodes a JSON body into result. Non-2xx
// responses are returned as *httpclient.StatusError rather than decoded.
func (c *Client) DoJSON(ctx context.Context, req Request, result interface{}) (*Response, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return resp, &StatusError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	if result != nil {
		if err := json.Unmarshal(resp.Body, result); err != nil {
			return resp, fmt.Errorf("decode JSON response: %w", err)
		}
	}
	return resp, nil
}

// DoStream performs req and returns the live *http.Response for the
// caller to stream from; the caller owns and must close the body.
func (c *Client) DoStream(ctx context.Context, req Request) (*http.Response, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		defer httpResp.Body.Close()
		errBody, _ := io.ReadAll(httpResp.Body)
		return nil, &StatusError{StatusCode: httpResp.StatusCode, Body: errBody}
	}

	return httpResp, nil
}

// PostJSON performs a POST with a JSON body and decodes the JSON response.
func (c *Client) PostJSON(ctx context.Context, path string, body, result interface{}, headers map[string]string) (*Response, error) {
	return c.DoJSON(ctx, Request{Method: http.MethodPost, Path: path, Body: body, Headers: headers}, result)
}

// StatusError is returned when a JSON call receives a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, string(e.Body))
}
