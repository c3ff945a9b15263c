package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/axin/httpclient/sse"
	"github.com/kbukum/axin/observability"
)

// Client is a configurable HTTP client with auth, interceptors and tracing.
type Client struct {
	httpClient   *http.Client
	streamClient *http.Client
	roundTripper http.RoundTripper
	config       Config

	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// New creates a new HTTP client with the given configuration.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{config: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.roundTripper == nil {
		c.roundTripper = http.DefaultTransport.(*http.Transport).Clone()
	}

	c.httpClient = &http.Client{
		Transport: c.roundTripper,
		Timeout:   cfg.Timeout,
	}
	// Streams stay open indefinitely; only the request context ends them.
	c.streamClient = &http.Client{
		Transport: c.roundTripper,
	}
	return c, nil
}

// Config returns the client configuration after defaults.
func (c *Client) Config() Config {
	return c.config
}

// Unwrap returns the underlying *http.Client for advanced use cases.
func (c *Client) Unwrap() *http.Client {
	return c.httpClient
}

// Do executes an HTTP request and returns the complete response. On a non-2xx
// status both the response and a classified *Error are returned.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	ctx, span := c.startSpan(ctx, req)
	defer span.End()

	resp, httpReq, err := c.send(ctx, c.httpClient, req)
	if err != nil {
		return nil, c.fail(span, httpReq, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(span, httpReq, NewTransportError(ctx, fmt.Errorf("read response body: %w", err)))
	}

	result := &Response{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Body:       body,
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if classErr := ClassifyStatusCode(resp.StatusCode, body); classErr != nil {
		return result, c.fail(span, httpReq, classErr)
	}
	return result, nil
}

// DoStream executes an HTTP request and returns a streaming response without
// a client timeout. The caller must close the returned StreamResponse; the
// stream ends when ctx is canceled.
func (c *Client) DoStream(ctx context.Context, req Request) (*StreamResponse, error) {
	spanCtx, span := c.startSpan(ctx, req)
	defer span.End()

	resp, httpReq, err := c.send(spanCtx, c.streamClient, req)
	if err != nil {
		return nil, c.fail(span, httpReq, err)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, c.fail(span, httpReq, ClassifyStatusCode(resp.StatusCode, body))
	}

	result := &StreamResponse{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		rawResp:    resp,
	}
	if isEventStream(resp.Header.Get("Content-Type")) {
		result.SSE = sse.NewReader(resp.Body)
	} else {
		result.Body = resp.Body
	}
	return result, nil
}

// send builds, intercepts and sends the request. The returned *http.Request
// is nil if building failed.
func (c *Client) send(ctx context.Context, hc *http.Client, req Request) (*http.Response, *http.Request, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	httpReq, err = c.interceptRequest(httpReq)
	if err != nil {
		return nil, nil, err
	}

	resp, err := hc.Do(httpReq)
	if err != nil {
		return nil, httpReq, NewTransportError(ctx, err)
	}

	resp, err = c.interceptResponse(resp)
	if err != nil {
		_ = resp.Body.Close()
		return nil, httpReq, err
	}
	return resp, httpReq, nil
}

func (c *Client) startSpan(ctx context.Context, req Request) (context.Context, trace.Span) {
	return observability.StartSpan(ctx, observability.SpanHTTPRequest,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String(observability.AttrEndpoint, c.resolveURL(req.Path)),
		),
	)
}

// fail records err on the span and runs the error interceptors.
func (c *Client) fail(span trace.Span, httpReq *http.Request, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return c.interceptError(httpReq, err)
}

func (c *Client) resolveURL(path string) string {
	if c.config.BaseURL == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// buildRequest constructs an *http.Request from the client config and request.
func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("encode body: %v", err))
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.resolveURL(req.Path), body)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("create request: %v", err))
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	for k, v := range c.config.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if body == nil {
		// A bodyless request has nothing to describe.
		httpReq.Header.Del("Content-Type")
	} else if httpReq.Header.Get("Content-Type") == "" && contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	auth := c.config.Auth
	if req.Auth != nil {
		auth = req.Auth
	}
	auth.apply(httpReq)

	return httpReq, nil
}

// encodeBody converts a body value into an io.Reader and content type.
func encodeBody(body any) (io.Reader, string, error) {
	if body == nil {
		return nil, "", nil
	}
	switch v := body.(type) {
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "text/plain", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

// flattenHeaders converts multi-value headers to single-value.
func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}
	return result
}
