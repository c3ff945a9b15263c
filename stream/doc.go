// Package stream relays one server-push connection to listener callbacks.
//
// A Client owns at most one connection to its endpoint. The connection's
// signals are fanned out to listeners registered per event kind:
//
//   - open: the connection was established, data is nil
//   - message: an unnamed event arrived, data is its payload string
//   - error: the transport failed, data is the error
//   - close: the server sent a named "close" event, data is nil
//
// Listeners for a kind run in registration order. Registering the same
// listener twice makes it fire twice, and Off removes one occurrence at a
// time. A listener that returns an error stops the remaining listeners of
// that emission.
//
// The client never reconnects, buffers or retries. A server "close" event
// only notifies listeners; the caller decides whether to Close:
//
//	c := stream.New(gateway.PlanChatSSEURL(msg, chatID))
//	c.Handle(stream.KindMessage, func(data any) error {
//	    fmt.Print(data)
//	    return nil
//	})
//	c.Handle(stream.KindClose, func(any) error {
//	    c.Close()
//	    return nil
//	})
//	c.Connect()
package stream
