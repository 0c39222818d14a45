// Package http is the transport shared by every CDM API client. It validates
// the version and endpoint of each call, attaches either the authorization or
// the bare header set, applies a per-call timeout and turns failures into
// *cdm.APICallError values.
package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/cdm-client/internal/auth"
	"github.com/fivetwenty-io/cdm-client/internal/constants"
	"github.com/fivetwenty-io/cdm-client/pkg/cdm"
)

// Logger is the logging interface used by the transport.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Client issues calls against https://{node}/api/{version}{endpoint}.
type Client struct {
	baseURL    string
	authorizer auth.Authorizer
	httpClient *retryablehttp.Client
	logger     Logger
	debug      bool
	timeout    time.Duration
	versions   []cdm.APIVersion
}

// Option configures a Client.
type Option func(*Client)

// Request describes one API call.
type Request struct {
	Method  string
	Version cdm.APIVersion
	// Path is the endpoint below the version, e.g. "/cluster/me". It may
	// carry its own query string.
	Path    string
	Query   url.Values
	Body    interface{}
	// Headers are added to the call. The authorization header set always
	// takes precedence over an entry with the same name.
	Headers map[string]string
	// Timeout bounds this call and takes precedence over WithTimeout. Zero
	// uses the client timeout, then DefaultHTTPTimeout.
	Timeout time.Duration
	// SkipAuth sends the bare header set instead of the authorization headers.
	SkipAuth bool
}

// Response is a successful (or, alongside an error, failed) HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithRetryConfig enables transport retries for 5xx, 429 and connection errors.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithTimeout sets the timeout of requests that do not carry their own.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithAPIVersions restricts the accepted API versions.
func WithAPIVersions(versions ...cdm.APIVersion) Option {
	return func(c *Client) {
		c.versions = versions
	}
}

// WithInsecureSkipVerify disables certificate verification. CDM nodes ship
// with self-signed certificates until one is installed.
func WithInsecureSkipVerify(skip bool) Option {
	return func(c *Client) {
		if !skip {
			return
		}

		transport, ok := c.httpClient.HTTPClient.Transport.(*http.Transport)
		if !ok {
			return
		}

		transport = transport.Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- opt-in for self-signed appliance certificates
		c.httpClient.HTTPClient.Transport = transport
	}
}

// NewClient creates a transport for baseURL. authorizer may be nil when only
// SkipAuth requests are made.
func NewClient(baseURL string, authorizer auth.Authorizer, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	retryClient.RetryMax = 0
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:    NormalizeBaseURL(baseURL),
		authorizer: authorizer,
		httpClient: retryClient,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.logger != nil && client.debug && retryClient.RetryMax > 0 {
		retryClient.Logger = &leveledLogger{logger: client.logger}
	}

	return client
}

// NormalizeBaseURL turns a node address into a base URL, assuming https.
func NormalizeBaseURL(node string) string {
	node = strings.TrimSuffix(strings.TrimSpace(node), "/")
	if !strings.HasPrefix(node, "http://") && !strings.HasPrefix(node, "https://") {
		node = "https://" + node
	}

	return node
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL returns the full URL of an endpoint.
func (c *Client) URL(version cdm.APIVersion, path string, query url.Values) string {
	fullURL := c.baseURL + "/api/" + string(version) + path
	if len(query) > 0 {
		separator := "?"
		if strings.Contains(path, "?") {
			separator = "&"
		}

		fullURL += separator + query.Encode()
	}

	return fullURL
}

// Do performs the request.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	err := cdm.ValidateEndpoint(req.Version, req.Path, c.versions...)
	if err != nil {
		return nil, err
	}

	fullURL := c.URL(req.Version, req.Path, req.Query)

	headers, err := c.headers(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, fullURL, err)
	}

	var body []byte
	if req.Body != nil {
		body, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout(req))
	defer cancel()

	httpReq, err := retryablehttp.NewRequestWithContext(callCtx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	// Credentials and the client identifier cannot be replaced per request.
	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}

	c.logDebug("HTTP Request", map[string]interface{}{
		"method":        req.Method,
		"url":           fullURL,
		"authenticated": !req.SkipAuth,
	})

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if httpResp != nil {
			_ = httpResp.Body.Close()
		}

		return nil, &cdm.APICallError{Method: req.Method, URL: fullURL, Err: err}
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &cdm.APICallError{
			Method:     req.Method,
			URL:        fullURL,
			StatusCode: httpResp.StatusCode,
			Message:    "reading response body",
			Err:        err,
		}
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	c.logDebug("HTTP Response", map[string]interface{}{
		"method":      req.Method,
		"url":         fullURL,
		"status_code": httpResp.StatusCode,
	})

	if httpResp.StatusCode < http.StatusOK || httpResp.StatusCode >= http.StatusMultipleChoices {
		return resp, &cdm.APICallError{
			Method:     req.Method,
			URL:        fullURL,
			StatusCode: httpResp.StatusCode,
			Message:    errorMessage(httpResp.StatusCode, respBody),
		}
	}

	return resp, nil
}

// Get performs an authenticated GET.
func (c *Client) Get(ctx context.Context, version cdm.APIVersion, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Version: version, Path: path, Query: query})
}

// Post performs an authenticated POST.
func (c *Client) Post(ctx context.Context, version cdm.APIVersion, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Version: version, Path: path, Body: body})
}

// Put performs an authenticated PUT.
func (c *Client) Put(ctx context.Context, version cdm.APIVersion, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Version: version, Path: path, Body: body})
}

// Patch performs an authenticated PATCH.
func (c *Client) Patch(ctx context.Context, version cdm.APIVersion, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Version: version, Path: path, Body: body})
}

// Delete performs an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, version cdm.APIVersion, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Version: version, Path: path})
}

func (c *Client) headers(ctx context.Context, req *Request) (map[string]string, error) {
	if req.SkipAuth {
		return auth.BareHeaders(), nil
	}

	if c.authorizer == nil {
		return nil, cdm.ErrNotAuthenticated
	}

	headers, err := c.authorizer.Headers(ctx)
	if err != nil {
		return nil, fmt.Errorf("building authorization headers: %w", err)
	}

	return headers, nil
}

func (c *Client) callTimeout(req *Request) time.Duration {
	switch {
	case req.Timeout > 0:
		return req.Timeout
	case c.timeout > 0:
		return c.timeout
	default:
		return constants.DefaultHTTPTimeout
	}
}

func (c *Client) logDebug(msg string, fields map[string]interface{}) {
	if c.logger != nil && c.debug {
		c.logger.Debug(msg, fields)
	}
}

// errorMessage extracts the "message" field of a CDM error body, falling
// back to the raw body and then the status text.
func errorMessage(statusCode int, body []byte) string {
	var apiErr struct {
		Message   string `json:"message"`
		ErrorType string `json:"errorType"`
	}

	if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		return apiErr.Message
	}

	trimmed := string(bytes.TrimSpace(body))
	if trimmed != "" {
		return trimmed
	}

	return http.StatusText(statusCode)
}

// leveledLogger adapts Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, toFields(keysAndValues))
}

func toFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}

		fields[key] = keysAndValues[i+1]
	}

	return fields
}
