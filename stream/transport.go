package stream

import "errors"

var (
	// ErrStreamEnded is reported when the server ends the stream.
	ErrStreamEnded = errors.New("stream: server ended the stream")
	// ErrNotEventStream is reported when the endpoint does not answer with
	// text/event-stream.
	ErrNotEventStream = errors.New("stream: response is not an event stream")
)

// Config is passed through to the transport on every connect. The client
// itself does not interpret it.
type Config struct {
	// Headers are extra request headers.
	Headers map[string]string `mapstructure:"headers"`
	// LastEventID is sent as Last-Event-ID when set.
	LastEventID string `mapstructure:"last_event_id"`
}

// Message is one event received from the server.
type Message struct {
	// Event is the event name, empty for unnamed events.
	Event string
	Data  string
	ID    string
}

// Signals are the callbacks a transport raises for one connection. A
// transport raises them from a single goroutine, in wire order.
type Signals struct {
	Open    func()
	Message func(Message)
	Error   func(error)
	// Named handles events whose name is a key. Other named events are
	// dropped.
	Named map[string]func(Message)
}

// Conn is one open push connection.
type Conn interface {
	ReadyState() ReadyState
	// Close stops the connection and releases its resources.
	Close() error
}

// Transport opens push connections. Open must not block on the network.
type Transport interface {
	Open(endpoint string, cfg Config, sig Signals) Conn
}
