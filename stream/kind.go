package stream

// Kind names a category of notification. Any string is a valid kind, but
// only the built-in kinds are emitted by the client.
type Kind string

// Built-in kinds.
const (
	KindOpen    Kind = "open"
	KindMessage Kind = "message"
	KindError   Kind = "error"
	KindClose   Kind = "close"
)
