package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/axin/httpclient"
	"github.com/kbukum/axin/httpclient/rest"
	"github.com/kbukum/axin/logger"
	"github.com/kbukum/axin/observability"
	"github.com/kbukum/axin/stream"
)

// Backend paths, relative to the base URL.
const (
	PathHealth                  = "/health"
	PathPlanChatSync            = "/ai/plan_app/chat/sync"
	PathPlanChatSSE             = "/ai/plan_app/chat/sse"
	PathPlanChatServerSentEvent = "/ai/plan_app/chat/server_sent_event"
	PathPlanChatEmitter         = "/ai/plan_app/chat/sse_emitter"
	PathManusChat               = "/ai/manus/chat"
)

// Query parameter names understood by the backend.
const (
	ParamMessage = "message"
	ParamChatID  = "chatId"
)

// HealthStatus is the backend's health report.
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service,omitempty"`
}

// Client is the backend gateway.
type Client struct {
	config    Config
	rest      *rest.Client
	transport *stream.HTTPTransport
	metrics   *observability.Metrics
	log       *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithMetrics records operation metrics for gateway calls.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a gateway client. A nil log uses the global "api" logger.
func New(cfg Config, log *logger.Logger, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.WithComponent("api")
	}

	c := &Client{config: cfg, log: log}
	for _, opt := range opts {
		opt(c)
	}

	rc, err := rest.New(httpclient.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Auth:    httpclient.BearerAuth(cfg.Token),
	},
		httpclient.WithRequestInterceptor(c.logRequest),
		httpclient.WithResponseInterceptor(httpclient.ResponseInterceptor{OnError: c.logError}),
	)
	if err != nil {
		return nil, err
	}
	c.rest = rc
	c.transport = stream.NewHTTPTransport(rc.HTTP())
	return c, nil
}

// Config returns the configuration after defaults.
func (c *Client) Config() Config { return c.config }

// REST returns the underlying REST client.
func (c *Client) REST() *rest.Client { return c.rest }

func (c *Client) logRequest(req *http.Request) (*http.Request, error) {
	c.log.Debug("API request", logger.Fields(
		"method", req.Method,
		logger.FieldEndpoint, req.URL.String(),
	))
	return req, nil
}

// logError reports the failure and hands it back unchanged.
func (c *Client) logError(req *http.Request, err error) error {
	fields := logger.Fields(logger.FieldError, err.Error())
	if req != nil {
		fields["method"] = req.Method
		fields[logger.FieldEndpoint] = req.URL.String()
	}
	c.log.Error("API request failed", fields)
	return err
}

// ChatSync sends message to the plan app and returns its whole reply.
func (c *Client) ChatSync(ctx context.Context, message, chatID string) (string, error) {
	ctx, op := observability.StartOperation(ctx, observability.SpanChatSync, c.metrics,
		attribute.String(observability.AttrChatID, chatID))

	reply, err := rest.GetText(ctx, c.rest, PathPlanChatSync, rest.WithQuery(map[string]string{
		ParamMessage: message,
		ParamChatID:  chatID,
	}))
	op.End(ctx, err)
	return reply, err
}

// Health fetches the backend health report.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	resp, err := rest.Get[HealthStatus](ctx, c.rest, PathHealth)
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// PlanChatSSEURL returns the plan app's raw text stream URL.
func (c *Client) PlanChatSSEURL(message, chatID string) string {
	return c.url(PathPlanChatSSE, planQuery(message, chatID))
}

// PlanChatServerSentEventURL returns the plan app's typed event stream URL.
func (c *Client) PlanChatServerSentEventURL(message, chatID string) string {
	return c.url(PathPlanChatServerSentEvent, planQuery(message, chatID))
}

// PlanChatEmitterURL returns the plan app's emitter stream URL.
func (c *Client) PlanChatEmitterURL(message, chatID string) string {
	return c.url(PathPlanChatEmitter, planQuery(message, chatID))
}

// ManusChatURL returns the manus agent's stream URL.
func (c *Client) ManusChatURL(message string) string {
	return c.url(PathManusChat, url.Values{ParamMessage: {message}})
}

// PlanChatStream returns an unconnected stream client for the plan app.
func (c *Client) PlanChatStream(message, chatID string, opts ...stream.Option) *stream.Client {
	return c.Stream(c.PlanChatSSEURL(message, chatID), opts...)
}

// ManusChatStream returns an unconnected stream client for the manus agent.
func (c *Client) ManusChatStream(message string, opts ...stream.Option) *stream.Client {
	return c.Stream(c.ManusChatURL(message), opts...)
}

// Stream returns an unconnected stream client for any endpoint, sharing the
// gateway's transport, auth and interceptors.
func (c *Client) Stream(endpoint string, opts ...stream.Option) *stream.Client {
	base := []stream.Option{
		stream.WithTransport(c.transport),
		stream.WithLogger(c.log.WithComponent("stream")),
	}
	return stream.New(endpoint, append(base, opts...)...)
}

func (c *Client) url(path string, query url.Values) string {
	return strings.TrimRight(c.config.BaseURL, "/") + path + "?" + query.Encode()
}

func planQuery(message, chatID string) url.Values {
	return url.Values{
		ParamMessage: {message},
		ParamChatID:  {chatID},
	}
}
