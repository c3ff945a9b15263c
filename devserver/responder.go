package devserver

import (
	"context"
	"strings"
)

// App names the backend application a chat goes to.
type App string

const (
	AppPlan  App = "plan_app"
	AppManus App = "manus"
)

// Responder produces the reply to a chat message as ordered chunks. Streams
// send one event per chunk; the sync endpoint concatenates them.
type Responder interface {
	Reply(ctx context.Context, app App, message, chatID string) ([]string, error)
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(ctx context.Context, app App, message, chatID string) ([]string, error)

// Reply calls f.
func (f ResponderFunc) Reply(ctx context.Context, app App, message, chatID string) ([]string, error) {
	return f(ctx, app, message, chatID)
}

// EchoResponder repeats the message back. Plan replies are cut into chunks
// of ChunkSize runes; manus replies are one chunk per agent step.
type EchoResponder struct {
	ChunkSize int
}

const defaultChunkSize = 16

// Reply implements Responder.
func (r EchoResponder) Reply(ctx context.Context, app App, message, chatID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if app == AppManus {
		return []string{
			"Step 1: received task: " + message,
			"Step 2: no tools needed",
			"Step 3: finished",
		}, nil
	}

	reply := message
	if chatID != "" {
		reply = "[" + chatID + "] " + message
	}
	size := r.ChunkSize
	if size <= 0 {
		size = defaultChunkSize
	}
	return chunkRunes(reply, size), nil
}

func chunkRunes(s string, size int) []string {
	runes := []rune(s)
	chunks := make([]string, 0, len(runes)/size+1)
	for len(runes) > size {
		chunks = append(chunks, string(runes[:size]))
		runes = runes[size:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}

// joinReply assembles chunks into one reply.
func joinReply(chunks []string) string {
	return strings.Join(chunks, "")
}
