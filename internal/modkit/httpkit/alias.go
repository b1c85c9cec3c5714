// Package httpkit re-exports the platform http seam for modules so they do
// not import internal/platform/net/http directly
package httpkit

import (
	"net/http"

	phttp "grantwise/internal/platform/net/http"
)

type (
	// Envelope is the response body of every endpoint
	Envelope = phttp.Envelope

	// Response is what return-style handlers produce
	Response = phttp.Response

	// Handler is the platform handler type
	Handler = phttp.Handler

	// Router is the platform router seam
	Router = phttp.Router
)

// OK returns a 200 response
func OK(data any) Response { return phttp.OK(data) }

// Error maps err to a status and error envelope
func Error(err error) Response { return phttp.Error(err) }

// WithHeaders returns resp with extra headers set
func WithHeaders(resp Response, kv map[string]string) Response {
	if resp.Header == nil {
		resp.Header = http.Header{}
	}
	for k, v := range kv {
		resp.Header.Set(k, v)
	}
	return resp
}

// Handle adapts a Response-returning function
func Handle(fn func(*http.Request) Response) Handler { return phttp.Handle(fn) }

// Call adapts a handler with no body; a returned Response passes through untouched
func Call(fn func(*http.Request) (any, error)) Handler {
	return phttp.Handle(func(r *http.Request) Response {
		out, err := fn(r)
		if err != nil {
			return phttp.Error(err)
		}
		if resp, ok := out.(Response); ok {
			return resp
		}
		return phttp.OK(out)
	})
}
