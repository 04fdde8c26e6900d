// Package http executes requests against the open platform and decodes the
// {code, msg, data} response envelope.
package http

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

	"github.com/hashicorp/go-retryablehttp"
	"github.com/larksuite/oapi-client/internal/auth"
	"github.com/larksuite/oapi-client/internal/constants"
	"github.com/larksuite/oapi-client/pkg/lark"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/larksuite/oapi-client/internal/http"

// Request is the request accepted by Do.
type Request = lark.Request

// Response is a decoded response. Code, Msg and Data come from the envelope
// when the body is a JSON object.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Code       int
	Msg        string
	Data       json.RawMessage
	LogID      string
	RequestID  string
}

// Client executes requests for one base URL.
type Client struct {
	baseURL      string
	httpClient   *retryablehttp.Client
	tokenManager auth.TokenManager
	logger       lark.Logger
	debug        bool
	userAgent    string
	interceptors *lark.InterceptorChain
	tracer       trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger lark.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDebug logs every request and response at debug level.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithRetryConfig enables retries of transient failures.
func WithRetryConfig(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = maxRetries
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithTimeout sets the timeout of a single attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.HTTPClient.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient.HTTPClient = httpClient
		}
	}
}

// WithInterceptors installs an interceptor chain.
func WithInterceptors(chain *lark.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// WithTracer sets the tracer used for request spans. The global tracer
// provider is used otherwise.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// NewClient creates a client for baseURL. tokenManager may be nil for
// unauthenticated requests.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil

	client := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   retryClient,
		tokenManager: tokenManager,
		logger:       lark.NopLogger{},
		userAgent:    constants.DefaultUserAgent,
		interceptors: lark.NewInterceptorChain(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if retryClient.RetryMax > 0 {
		retryClient.Logger = &retryLogger{logger: client.logger}
	}

	if client.tracer == nil {
		client.tracer = otel.Tracer(tracerName)
	}

	return client
}

// BaseURL returns the base URL requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do executes req. When the server answers with an error status or a
// non-zero envelope code the response is returned together with a
// *lark.APIError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, lark.ErrRequestRequired
	}

	path, err := FillPath(req.Path, req.PathParams)
	if err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, req.Method+" "+req.Path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.template", req.Path),
		),
	)
	defer span.End()

	resp, err := c.do(ctx, req, path)
	if resp != nil {
		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

		if resp.LogID != "" {
			span.SetAttributes(attribute.String("lark.log_id", resp.LogID))
		}
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return resp, err
}

func (c *Client) do(ctx context.Context, req *Request, path string) (*Response, error) {
	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	requestID := ulid.Make().String()

	intercepted := &lark.InterceptedRequest{
		Method:   req.Method,
		Path:     path,
		Headers:  make(http.Header),
		Body:     body,
		Metadata: map[string]interface{}{"request_id": requestID},
	}

	if c.tokenManager != nil {
		token, err := c.tokenManager.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting access token: %w", err)
		}

		intercepted.Headers.Set(constants.HeaderAuthorization, "Bearer "+token)
	}

	intercepted.Headers.Set(constants.HeaderAccept, "application/json")
	intercepted.Headers.Set(constants.HeaderUserAgent, c.userAgent)
	intercepted.Headers.Set(constants.HeaderRequestID, requestID)

	if body != nil {
		intercepted.Headers.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	}

	for key, value := range req.Headers {
		intercepted.Headers.Set(key, value)
	}

	if err := c.interceptors.ExecuteRequestInterceptors(ctx, intercepted); err != nil {
		// release anything acquired by earlier interceptors
		c.afterResponse(ctx, intercepted, &lark.InterceptedResponse{Error: err})

		return nil, err
	}

	fullURL := c.baseURL + path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	var rawBody interface{}
	if intercepted.Body != nil {
		rawBody = intercepted.Body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, rawBody)
	if err != nil {
		err = fmt.Errorf("creating request: %w", err)
		c.afterResponse(ctx, intercepted, &lark.InterceptedResponse{Error: err})

		return nil, err
	}

	httpReq.Header = intercepted.Headers
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	if c.debug {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method":     req.Method,
			"url":        fullURL,
			"request_id": requestID,
		})
	}

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		err = fmt.Errorf("executing %s %s: %w", req.Method, path, err)
		c.afterResponse(ctx, intercepted, &lark.InterceptedResponse{Error: err})

		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		err = fmt.Errorf("reading response body: %w", err)
		c.afterResponse(ctx, intercepted, &lark.InterceptedResponse{StatusCode: httpResp.StatusCode, Error: err})

		return nil, err
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
		LogID:      httpResp.Header.Get(constants.HeaderLogID),
		RequestID:  requestID,
	}

	if c.debug {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status":      resp.StatusCode,
			"duration_ms": time.Since(start).Milliseconds(),
			"log_id":      resp.LogID,
			"request_id":  requestID,
		})
	}

	respErr := decodeEnvelope(resp)
	c.afterResponse(ctx, intercepted, &lark.InterceptedResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
		Error:      respErr,
	})

	if respErr != nil {
		return resp, respErr
	}

	return resp, nil
}

func (c *Client) afterResponse(ctx context.Context, req *lark.InterceptedRequest, resp *lark.InterceptedResponse) {
	if err := c.interceptors.ExecuteResponseInterceptors(ctx, req, resp); err != nil {
		c.logger.Warn("Response interceptor failed", map[string]interface{}{
			"path":  req.Path,
			"error": err.Error(),
		})
	}
}

func encodeBody(body interface{}) ([]byte, error) {
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
			return nil, fmt.Errorf("encoding request body: %w", err)
		}

		return data, nil
	}
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// decodeEnvelope fills Code, Msg and Data and reports error responses.
func decodeEnvelope(resp *Response) error {
	trimmed := bytes.TrimSpace(resp.Body)

	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			if resp.StatusCode < http.StatusBadRequest {
				return fmt.Errorf("decoding response envelope: %w", err)
			}
		} else {
			resp.Code = env.Code
			resp.Msg = env.Msg
			resp.Data = env.Data
		}
	}

	if resp.StatusCode < http.StatusBadRequest && resp.Code == 0 {
		return nil
	}

	msg := resp.Msg
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	return &lark.APIError{
		StatusCode: resp.StatusCode,
		Code:       resp.Code,
		Msg:        msg,
		LogID:      resp.LogID,
		RequestID:  resp.RequestID,
	}
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post sends a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put sends a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch sends a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// retryLogger adapts lark.Logger to retryablehttp.LeveledLogger.
type retryLogger struct {
	logger lark.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, toFields(keysAndValues))
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, toFields(keysAndValues))
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, toFields(keysAndValues))
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, toFields(keysAndValues))
}

func toFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}

	return fields
}
