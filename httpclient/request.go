package httpclient

import (
	"io"
	"mime"
	"net/http"

	"github.com/kbukum/axin/httpclient/sse"
)

// Request describes an outbound HTTP request.
type Request struct {
	Method string
	// Path is resolved against the client's BaseURL unless it is absolute.
	Path string
	// Headers are request-specific headers that override client defaults.
	Headers map[string]string
	Query   map[string]string
	// Body accepts io.Reader, []byte, string, or any value that will be
	// JSON-encoded.
	Body any
	// Auth overrides the client-level auth for this request.
	Auth *AuthConfig
}

// Response is the result of a buffered HTTP request.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError returns true if the status code is 4xx or 5xx.
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}

// StreamResponse wraps a streaming HTTP response. Exactly one of SSE and Body
// is set.
type StreamResponse struct {
	StatusCode int
	Headers    map[string]string
	// SSE reads text/event-stream responses.
	SSE sse.Reader
	// Body is the raw streaming body for any other content type.
	Body    io.ReadCloser
	rawResp *http.Response
}

// IsEventStream reports whether the response is a text/event-stream.
func (r *StreamResponse) IsEventStream() bool {
	return r.SSE != nil
}

// Close releases all resources associated with the stream.
func (r *StreamResponse) Close() error {
	if r.SSE != nil {
		return r.SSE.Close()
	}
	if r.Body != nil {
		return r.Body.Close()
	}
	if r.rawResp != nil && r.rawResp.Body != nil {
		return r.rawResp.Body.Close()
	}
	return nil
}

func isEventStream(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "text/event-stream"
}
