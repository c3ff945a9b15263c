// Package httpclient is the base HTTP client used by the gateway and the
// event-stream transport.
//
// It resolves request paths against a base URL, applies default headers and
// auth, runs request and response interceptors, wraps every request in an
// OpenTelemetry span and classifies failures into *Error values. Requests are
// sent once; there is no retry.
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "http://localhost:8123/api",
//	    Auth:    httpclient.BearerAuth(token),
//	}, httpclient.WithResponseInterceptor(httpclient.ResponseInterceptor{
//	    OnError: func(req *http.Request, err error) error {
//	        log.Error("request failed", logger.ErrorFields(req.URL.Path, err))
//	        return err
//	    },
//	}))
//
// Subpackages:
//
//   - rest: JSON defaults with generic typed helpers
//   - sse: Server-Sent Events wire reader
package httpclient
