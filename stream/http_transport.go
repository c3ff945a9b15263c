package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/axin/httpclient"
	"github.com/kbukum/axin/observability"
)

// HTTPTransport opens Server-Sent Events connections over httpclient.
type HTTPTransport struct {
	client *httpclient.Client
}

var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a transport on client. A nil client gets a default
// one, so endpoints must then be absolute URLs.
func NewHTTPTransport(client *httpclient.Client) *HTTPTransport {
	if client == nil {
		// An empty config always validates.
		client, _ = httpclient.New(httpclient.Config{})
	}
	return &HTTPTransport{client: client}
}

// Open starts a GET request for endpoint in the background and returns at
// once in the Connecting state.
func (t *HTTPTransport) Open(endpoint string, cfg Config, sig Signals) Conn {
	ctx, cancel := context.WithCancel(context.Background())
	conn := &httpConn{
		state:  Connecting,
		cancel: cancel,
	}
	go conn.run(ctx, t.client, requestFor(endpoint, cfg), sig)
	return conn
}

func requestFor(endpoint string, cfg Config) httpclient.Request {
	headers := make(map[string]string, len(cfg.Headers)+3)
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	headers["Accept"] = "text/event-stream"
	headers["Cache-Control"] = "no-cache"
	if cfg.LastEventID != "" {
		headers["Last-Event-ID"] = cfg.LastEventID
	}
	return httpclient.Request{
		Method:  http.MethodGet,
		Path:    endpoint,
		Headers: headers,
	}
}

type httpConn struct {
	mu          sync.Mutex
	state       ReadyState
	closed      bool
	lastEventID string
	cancel      context.CancelFunc
}

func (c *httpConn) ReadyState() ReadyState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastEventID returns the last event id the server sent.
func (c *httpConn) LastEventID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastEventID
}

// Close cancels the request. It does not wait for the reading goroutine,
// since Close may be called from a listener running on that goroutine.
func (c *httpConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.state = Closed
	c.mu.Unlock()
	c.cancel()
	return nil
}

func (c *httpConn) run(ctx context.Context, client *httpclient.Client, req httpclient.Request, sig Signals) {
	defer c.cancel()

	// The connect span covers the handshake only, not the stream's lifetime.
	ctx, span := observability.StartSpan(ctx, observability.SpanStreamConnect,
		trace.WithAttributes(attribute.String(observability.AttrEndpoint, req.Path)))

	resp, err := client.DoStream(ctx, req)
	if err != nil {
		endSpan(span, err)
		c.fail(sig, err)
		return
	}
	defer func() { _ = resp.Close() }()

	if !resp.IsEventStream() {
		err := fmt.Errorf("%w: content type %q", ErrNotEventStream, resp.Headers["Content-Type"])
		endSpan(span, err)
		c.fail(sig, err)
		return
	}
	endSpan(span, nil)
	if !c.transition(Open) {
		return
	}
	if sig.Open != nil {
		sig.Open()
	}

	for {
		ev, err := resp.SSE.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = ErrStreamEnded
			} else {
				err = fmt.Errorf("stream: read: %w", err)
			}
			c.fail(sig, err)
			return
		}

		c.mu.Lock()
		closed := c.closed
		c.lastEventID = ev.ID
		c.mu.Unlock()
		if closed {
			return
		}

		msg := Message{Event: ev.Event, Data: ev.Data, ID: ev.ID}
		switch ev.Event {
		case "", string(KindMessage):
			if sig.Message != nil {
				sig.Message(msg)
			}
		default:
			if h, ok := sig.Named[ev.Event]; ok {
				h(msg)
			}
		}
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// transition moves to state unless the connection was closed.
func (c *httpConn) transition(state ReadyState) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.state = state
	return true
}

// fail moves to Closed and reports err, unless Close already ran.
func (c *httpConn) fail(sig Signals, err error) {
	if !c.transition(Closed) {
		return
	}
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	if sig.Error != nil {
		sig.Error(err)
	}
}
