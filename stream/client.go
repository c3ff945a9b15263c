package stream

import (
	"sync"

	"github.com/kbukum/axin/logger"
)

// Client relays one push connection to listeners. It is safe for concurrent
// use, and listeners may call back into the client.
type Client struct {
	endpoint  string
	config    Config
	transport Transport
	log       *logger.Logger

	mu        sync.Mutex
	conn      Conn
	gen       uint64
	listeners map[Kind][]*Listener
}

// Option configures a Client.
type Option func(*Client)

// WithConfig sets the configuration handed to the transport.
func WithConfig(cfg Config) Option {
	return func(c *Client) { c.config = cfg }
}

// WithTransport replaces the default HTTP transport.
func WithTransport(t Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a client for endpoint. It does not connect.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:  endpoint,
		listeners: make(map[Kind][]*Listener),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport(nil)
	}
	if c.log == nil {
		c.log = logger.WithComponent("stream")
	}
	return c
}

// Endpoint returns the connection target.
func (c *Client) Endpoint() string { return c.endpoint }

// Config returns the configuration handed to the transport.
func (c *Client) Config() Config { return c.config }

// Connect opens a connection, closing the current one first. Transport
// failures are reported to error listeners; Connect never retries.
func (c *Client) Connect() *Client {
	c.mu.Lock()
	old := c.conn
	c.conn = nil
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	if old != nil {
		c.closeConn(old)
	}

	c.log.Debug("Stream connecting", logger.Fields(logger.FieldEndpoint, c.endpoint))
	conn := c.transport.Open(c.endpoint, c.config, c.signals(gen))

	c.mu.Lock()
	if c.gen != gen {
		// Close or another Connect ran while opening.
		c.mu.Unlock()
		c.closeConn(conn)
		return c
	}
	c.conn = conn
	c.mu.Unlock()
	return c
}

// On appends l to the listeners of kind. A nil listener is ignored.
func (c *Client) On(kind Kind, l *Listener) *Client {
	if l == nil {
		return c
	}
	c.mu.Lock()
	c.listeners[kind] = append(c.listeners[kind], l)
	c.mu.Unlock()
	return c
}

// Handle registers fn under kind and returns its handle for Off.
func (c *Client) Handle(kind Kind, fn HandlerFunc) *Listener {
	l := NewListener(fn)
	c.On(kind, l)
	return l
}

// Off removes the first occurrence of l from the listeners of kind.
func (c *Client) Off(kind Kind, l *Listener) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	bucket := c.listeners[kind]
	for i, registered := range bucket {
		if registered == l {
			c.listeners[kind] = append(bucket[:i:i], bucket[i+1:]...)
			break
		}
	}
	return c
}

// Close closes the connection if there is one. Calling it again is a no-op.
func (c *Client) Close() *Client {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.gen++
	c.mu.Unlock()

	if conn != nil {
		c.closeConn(conn)
	}
	return c
}

// ReadyState returns the connection's state, or Closed without one.
func (c *Client) ReadyState() ReadyState {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return Closed
	}
	return conn.ReadyState()
}

// emit calls the listeners of kind in registration order and stops at the
// first error. Listeners added or removed meanwhile take effect on the next
// emission.
func (c *Client) emit(kind Kind, data any) error {
	c.mu.Lock()
	snapshot := append([]*Listener(nil), c.listeners[kind]...)
	c.mu.Unlock()

	for _, l := range snapshot {
		if err := l.call(data); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) signals(gen uint64) Signals {
	return Signals{
		Open:    func() { c.dispatch(gen, KindOpen, nil) },
		Message: func(m Message) { c.dispatch(gen, KindMessage, m.Data) },
		Error:   func(err error) { c.dispatch(gen, KindError, err) },
		Named: map[string]func(Message){
			string(KindClose): func(Message) { c.dispatch(gen, KindClose, nil) },
		},
	}
}

// dispatch emits a signal of connection gen unless that connection has been
// replaced or closed.
func (c *Client) dispatch(gen uint64, kind Kind, data any) {
	c.mu.Lock()
	live := c.gen == gen
	c.mu.Unlock()
	if !live {
		return
	}

	if err := c.emit(kind, data); err != nil {
		c.log.Warn("Stream listener failed", logger.Fields(
			logger.FieldEvent, string(kind),
			logger.FieldError, err.Error(),
		))
	}
}

func (c *Client) closeConn(conn Conn) {
	if err := conn.Close(); err != nil {
		c.log.Warn("Stream close failed", logger.Fields(
			logger.FieldEndpoint, c.endpoint,
			logger.FieldError, err.Error(),
		))
	}
}
