package httpclient

import "net/http"

// RequestInterceptor inspects or rewrites a request before it is sent.
// Returning an error aborts the request.
type RequestInterceptor func(req *http.Request) (*http.Request, error)

// ResponseInterceptor observes responses and failures. Either hook may be nil.
type ResponseInterceptor struct {
	// OnResponse runs on every response that arrived, before its status is
	// classified and before the body is read.
	OnResponse func(resp *http.Response) (*http.Response, error)
	// OnError runs on every failure. The returned error replaces err. req is
	// nil when the request could not be built.
	OnError func(req *http.Request, err error) error
}

// Option configures a Client.
type Option func(*Client)

// WithRequestInterceptor appends a request interceptor. Interceptors run in
// the order they were added.
func WithRequestInterceptor(fn RequestInterceptor) Option {
	return func(c *Client) {
		c.requestInterceptors = append(c.requestInterceptors, fn)
	}
}

// WithResponseInterceptor appends a response interceptor.
func WithResponseInterceptor(ri ResponseInterceptor) Option {
	return func(c *Client) {
		c.responseInterceptors = append(c.responseInterceptors, ri)
	}
}

// WithRoundTripper replaces the underlying transport.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.roundTripper = rt
	}
}

func (c *Client) interceptRequest(req *http.Request) (*http.Request, error) {
	for _, fn := range c.requestInterceptors {
		next, err := fn(req)
		if err != nil {
			return nil, err
		}
		if next != nil {
			req = next
		}
	}
	return req, nil
}

func (c *Client) interceptResponse(resp *http.Response) (*http.Response, error) {
	for _, ri := range c.responseInterceptors {
		if ri.OnResponse == nil {
			continue
		}
		next, err := ri.OnResponse(resp)
		if err != nil {
			return resp, err
		}
		if next != nil {
			resp = next
		}
	}
	return resp, nil
}

func (c *Client) interceptError(req *http.Request, err error) error {
	for _, ri := range c.responseInterceptors {
		if ri.OnError != nil {
			err = ri.OnError(req, err)
		}
	}
	return err
}
