package sse

import (
	"io"
	"strings"
	"testing"
	"time"
)

type closeTracker struct {
	*strings.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func newBody(s string) *closeTracker {
	return &closeTracker{Reader: strings.NewReader(s)}
}

// readAll drains the reader and returns every dispatched event.
func readAll(t *testing.T, r Reader) []*Event {
	t.Helper()
	var events []*Event
	for {
		ev, err := r.Next()
		if err == io.EOF {
			return events
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		events = append(events, ev)
	}
}

func TestReader_Events(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Event
	}{
		{"single", "data: hello world\n\n", []Event{{Data: "hello world"}}},
		{"multiple", "data: first\n\ndata: second\n\n", []Event{{Data: "first"}, {Data: "second"}}},
		{"named", "event: close\ndata: bye\n\n", []Event{{Event: "close", Data: "bye"}}},
		{"multi-line data", "data: line1\ndata: line2\ndata: line3\n\n", []Event{{Data: "line1\nline2\nline3"}}},
		{"comments skipped", ": keepalive\ndata: hello\n\n: keepalive\n\n", []Event{{Data: "hello"}}},
		{"no space after colon", "data:no-space\n\n", []Event{{Data: "no-space"}}},
		{"only first space stripped", "data:  two\n\n", []Event{{Data: " two"}}},
		{"empty data line", "data\n\n", []Event{{Data: ""}}},
		{"crlf", "data: a\r\ndata: b\r\n\r\n", []Event{{Data: "a\nb"}}},
		{"bare cr", "data: a\rdata: b\r\rdata: c\r\r", []Event{{Data: "a\nb"}, {Data: "c"}}},
		{"trailing block without blank line", "data: trailing", []Event{{Data: "trailing"}}},
		{"block without data is dropped", "event: close\n\ndata: x\n\n", []Event{{Data: "x"}}},
		{"unknown field ignored", "foo: bar\ndata: x\n\n", []Event{{Data: "x"}}},
		{"retry", "retry: 3000\ndata: x\n\n", []Event{{Data: "x", Retry: 3 * time.Second}}},
		{"bad retry ignored", "retry: soon\ndata: x\n\n", []Event{{Data: "x"}}},
		{"empty stream", "", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewReader(newBody(tc.input))
			got := readAll(t, r)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d events, want %d: %+v", len(got), len(tc.want), got)
			}
			for i := range got {
				if *got[i] != tc.want[i] {
					t.Errorf("event %d = %+v, want %+v", i, *got[i], tc.want[i])
				}
			}
		})
	}
}

func TestReader_LastEventID(t *testing.T) {
	r := NewReader(newBody("id: 1\ndata: a\n\nid: 2\n\ndata: b\n\nid\ndata: c\n\n"))

	ev, err := r.Next()
	if err != nil || ev.ID != "1" {
		t.Fatalf("first event = %+v, %v", ev, err)
	}

	// The id-only block updates the id without dispatching.
	ev, err = r.Next()
	if err != nil || ev.Data != "b" || ev.ID != "2" {
		t.Fatalf("second event = %+v, %v", ev, err)
	}
	if r.LastEventID() != "2" {
		t.Errorf("LastEventID() = %q, want 2", r.LastEventID())
	}

	// An empty id resets it.
	ev, err = r.Next()
	if err != nil || ev.ID != "" {
		t.Fatalf("third event = %+v, %v", ev, err)
	}
}

func TestReader_IDWithNullIgnored(t *testing.T) {
	r := NewReader(newBody("id: 7\ndata: a\n\nid: x\x00y\ndata: b\n\n"))
	events := readAll(t, r)
	if len(events) != 2 || events[1].ID != "7" {
		t.Errorf("expected id 7 to survive, got %+v", events)
	}
}

func TestReader_Close(t *testing.T) {
	body := newBody("data: x\n\n")
	r := NewReader(body)
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !body.closed {
		t.Error("expected body to be closed")
	}
}

func TestParseSSELine(t *testing.T) {
	tests := []struct {
		line  string
		field string
		value string
	}{
		{"data: hello", "data", "hello"},
		{"data:hello", "data", "hello"},
		{"event: msg", "event", "msg"},
		{"id: 1", "id", "1"},
		{"retry: 3000", "retry", "3000"},
		{"data: a:b", "data", "a:b"},
		{"fieldonly", "fieldonly", ""},
	}
	for _, tt := range tests {
		f, v := parseSSELine(tt.line)
		if f != tt.field || v != tt.value {
			t.Errorf("parseSSELine(%q) = (%q, %q), want (%q, %q)", tt.line, f, v, tt.field, tt.value)
		}
	}
}
