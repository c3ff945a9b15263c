package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL + "/api"}, opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestClient_Do_GET(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/api/ai/plan_app/chat/sync" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "" {
			t.Errorf("bodyless request should carry no Content-Type, got %q", r.Header.Get("Content-Type"))
		}
		fmt.Fprint(w, "plan ready")
	})

	resp, err := c.Do(context.Background(), Request{Path: "/ai/plan_app/chat/sync"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.IsSuccess() || resp.IsError() {
		t.Errorf("unexpected status %d", resp.StatusCode)
	}
	if string(resp.Body) != "plan ready" {
		t.Errorf("unexpected body %q", resp.Body)
	}
}

func TestClient_Do_POST_JSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", ct)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(body)
	})

	resp, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "echo",
		Body:   map[string]string{"message": "hi"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusCreated || !strings.Contains(string(resp.Body), `"message":"hi"`) {
		t.Errorf("unexpected response %d %s", resp.StatusCode, resp.Body)
	}
}

func TestClient_Do_Bodies(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		wantCT string
	}{
		{"string", "hello world", "text/plain"},
		{"bytes", []byte("raw bytes"), ""},
		{"reader", strings.NewReader("stream"), ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if ct := r.Header.Get("Content-Type"); ct != tc.wantCT {
					t.Errorf("Content-Type = %q, want %q", ct, tc.wantCT)
				}
			})
			if _, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/", Body: tc.body}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestClient_Do_HeadersQueryAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("default header missing")
		}
		if r.Header.Get("X-Trace") != "override" {
			t.Errorf("request header should override default, got %q", r.Header.Get("X-Trace"))
		}
		if r.URL.Query().Get("message") != "hello world" || r.URL.Query().Get("chatId") != "chat_1" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		if r.Header.Get("Authorization") != "Bearer per-request" {
			t.Errorf("expected per-request auth, got %q", r.Header.Get("Authorization"))
		}
	}))
	defer srv.Close()

	c, err := New(Config{
		BaseURL: srv.URL,
		Headers: map[string]string{"Accept": "application/json", "X-Trace": "default"},
		Auth:    BearerAuth("client-token"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = c.Do(context.Background(), Request{
		Path:    "/",
		Headers: map[string]string{"X-Trace": "override"},
		Query:   map[string]string{"message": "hello world", "chatId": "chat_1"},
		Auth:    BearerAuth("per-request"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Do_ErrorClassification(t *testing.T) {
	tests := []struct {
		code    int
		checker func(error) bool
	}{
		{401, IsAuth},
		{403, IsAuth},
		{404, IsNotFound},
		{429, IsRateLimit},
		{500, IsServerError},
		{503, IsServerError},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("HTTP_%d", tt.code), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte(`{"error":"test"}`))
			})

			resp, err := c.Do(context.Background(), Request{Path: "/"})
			if err == nil || !tt.checker(err) {
				t.Fatalf("error classification failed for HTTP %d: %v", tt.code, err)
			}
			if resp == nil || resp.StatusCode != tt.code {
				t.Fatalf("expected response with status %d, got %+v", tt.code, resp)
			}
		})
	}
}

func TestClient_Do_ContextDeadline(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Do(ctx, Request{Path: "/"})
	if !IsTimeout(err) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestClient_Do_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := New(Config{BaseURL: url})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Do(context.Background(), Request{Path: "/"}); !IsConnection(err) {
		t.Fatalf("expected connection error, got %v", err)
	}
}

func TestClient_Do_FullURL_IgnoresBaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/direct" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: "http://should-not-be-used.invalid"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Do(context.Background(), Request{Path: srv.URL + "/direct"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Interceptors(t *testing.T) {
	var order []string
	var observed error

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Step") != "second" {
			t.Errorf("interceptors ran out of order, X-Step=%q", r.Header.Get("X-Step"))
		}
		w.WriteHeader(http.StatusInternalServerError)
	},
		WithRequestInterceptor(func(req *http.Request) (*http.Request, error) {
			order = append(order, "req1")
			req.Header.Set("X-Step", "first")
			return req, nil
		}),
		WithRequestInterceptor(func(req *http.Request) (*http.Request, error) {
			order = append(order, "req2")
			req.Header.Set("X-Step", "second")
			return req, nil
		}),
		WithResponseInterceptor(ResponseInterceptor{
			OnResponse: func(resp *http.Response) (*http.Response, error) {
				order = append(order, "resp")
				return resp, nil
			},
			OnError: func(req *http.Request, err error) error {
				order = append(order, "err")
				if req == nil {
					t.Error("expected the failed request")
				}
				observed = err
				return err
			},
		}),
	)

	_, err := c.Do(context.Background(), Request{Path: "/"})
	if !IsServerError(err) {
		t.Fatalf("expected server error, got %v", err)
	}
	if observed != err {
		t.Error("pass-through OnError must return the error unchanged")
	}
	if got := strings.Join(order, ","); got != "req1,req2,resp,err" {
		t.Errorf("unexpected interceptor order %s", got)
	}
}

func TestClient_RequestInterceptorAborts(t *testing.T) {
	called := false
	abort := errors.New("blocked")
	c := newTestClient(t, func(http.ResponseWriter, *http.Request) { called = true },
		WithRequestInterceptor(func(*http.Request) (*http.Request, error) { return nil, abort }),
	)

	if _, err := c.Do(context.Background(), Request{Path: "/"}); !errors.Is(err, abort) {
		t.Fatalf("expected interceptor error, got %v", err)
	}
	if called {
		t.Error("request must not be sent after an interceptor error")
	}
}

func TestClient_TracingSpanAndPropagation(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
		_ = tp.Shutdown(context.Background())
	})

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("traceparent") == "" {
			t.Error("expected traceparent header")
		}
	})
	if _, err := c.Do(context.Background(), Request{Path: "/"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 || spans[0].Name != "http.request" {
		t.Fatalf("unexpected spans %+v", spans)
	}
}

func TestClient_DoStream_SSE(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
		fmt.Fprint(w, "data: hello\n\nevent: close\ndata: done\n\n")
	})

	stream, err := c.DoStream(context.Background(), Request{Path: "/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stream.Close()

	if !stream.IsEventStream() {
		t.Fatal("expected SSE reader")
	}
	ev, err := stream.SSE.Next()
	if err != nil || ev.Data != "hello" {
		t.Fatalf("first event = %+v, %v", ev, err)
	}
	ev, err = stream.SSE.Next()
	if err != nil || ev.Event != "close" {
		t.Fatalf("second event = %+v, %v", ev, err)
	}
}

func TestClient_DoStream_IgnoresClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.(http.Flusher).Flush()
		time.Sleep(100 * time.Millisecond)
		fmt.Fprint(w, "data: late\n\n")
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stream, err := c.DoStream(context.Background(), Request{Path: "/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stream.Close()

	if ev, err := stream.SSE.Next(); err != nil || ev.Data != "late" {
		t.Fatalf("expected late event, got %+v, %v", ev, err)
	}
}

func TestClient_DoStream_NonSSE(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "raw")
	})

	stream, err := c.DoStream(context.Background(), Request{Path: "/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stream.Close()

	if stream.IsEventStream() {
		t.Fatal("plain text must not be read as SSE")
	}
	body, _ := io.ReadAll(stream.Body)
	if string(body) != "raw" {
		t.Errorf("unexpected body %q", body)
	}
}

func TestClient_DoStream_ErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	if _, err := c.DoStream(context.Background(), Request{Path: "/"}); !IsAuth(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestClient_ConfigAndUnwrap(t *testing.T) {
	c, err := New(Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Unwrap() == nil || c.Unwrap().Timeout != 30*time.Second {
		t.Error("Unwrap should return the timeout-bound http.Client")
	}
	if c.Config().Timeout != 30*time.Second {
		t.Error("Config should report defaults")
	}

	if _, err := New(Config{BaseURL: "not a url"}); err == nil {
		t.Error("expected validation error")
	}
}
