// Package sse reads the Server-Sent Events wire format.
package sse

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"
)

// Event is a single dispatched server-sent event.
type Event struct {
	// Event is the event type from "event:" lines. Empty means "message".
	Event string
	// Data is the payload. Multiple "data:" lines are joined with "\n".
	Data string
	// ID is the last event id in effect when the event was dispatched.
	ID string
	// Retry is the reconnection delay the server asked for, 0 if none.
	Retry time.Duration
}

// Reader reads server-sent events from a stream.
type Reader interface {
	// Next returns the next event. It returns io.EOF when the stream ends.
	Next() (*Event, error)
	// LastEventID returns the most recent id seen, even from blocks that
	// carried no data.
	LastEventID() string
	// Close releases the underlying stream.
	Close() error
}

type reader struct {
	buf    *bufio.Reader
	body   io.ReadCloser
	lastID string
	// skipLF is set after a CR so that a following LF is not read as a
	// second, empty line.
	skipLF bool
}

// NewReader creates an SSE reader from a readable stream.
func NewReader(body io.ReadCloser) Reader {
	return &reader{
		buf:  bufio.NewReader(body),
		body: body,
	}
}

// Next returns the next event. Blocks without data are not dispatched, and a
// final block without a trailing blank line is still returned.
func (r *reader) Next() (*Event, error) {
	var (
		event   Event
		data    strings.Builder
		hasData bool
	)

	for {
		line, err := r.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) && hasData {
				event.Data = data.String()
				event.ID = r.lastID
				return &event, nil
			}
			return nil, err
		}

		if line == "" {
			if hasData {
				event.Data = data.String()
				event.ID = r.lastID
				return &event, nil
			}
			event = Event{}
			continue
		}

		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value := parseSSELine(line)
		switch field {
		case "data":
			if hasData {
				data.WriteByte('\n')
			}
			data.WriteString(value)
			hasData = true
		case "event":
			event.Event = value
		case "id":
			if !strings.ContainsRune(value, 0) {
				r.lastID = value
			}
		case "retry":
			if ms, convErr := strconv.ParseUint(value, 10, 32); convErr == nil {
				event.Retry = time.Duration(ms) * time.Millisecond
			}
		}
	}
}

func (r *reader) LastEventID() string {
	return r.lastID
}

// Close releases the underlying stream.
func (r *reader) Close() error {
	return r.body.Close()
}

// readLine returns one line without its terminator. LF, CRLF and a lone CR
// all end a line.
func (r *reader) readLine() (string, error) {
	var sb strings.Builder
	for {
		b, err := r.buf.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && sb.Len() > 0 {
				return sb.String(), nil
			}
			return "", err
		}
		if r.skipLF {
			r.skipLF = false
			if b == '\n' {
				continue
			}
		}
		switch b {
		case '\n':
			return sb.String(), nil
		case '\r':
			r.skipLF = true
			return sb.String(), nil
		default:
			sb.WriteByte(b)
		}
	}
}

// parseSSELine splits a line into field and value. A line without a colon is
// a field with an empty value.
func parseSSELine(line string) (field, value string) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return line, ""
	}
	field = line[:idx]
	value = line[idx+1:]
	if value != "" && value[0] == ' ' {
		value = value[1:]
	}
	return field, value
}
