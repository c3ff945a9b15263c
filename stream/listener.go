package stream

// HandlerFunc receives the data of one emission. A non-nil error stops the
// remaining listeners of that emission.
type HandlerFunc func(data any) error

// Listener is a registered callback. Its pointer is its identity, so the
// same Listener can be registered several times and removed one at a time.
type Listener struct {
	fn HandlerFunc
}

// NewListener wraps fn in a Listener handle.
func NewListener(fn HandlerFunc) *Listener {
	return &Listener{fn: fn}
}

func (l *Listener) call(data any) error {
	return l.fn(data)
}
