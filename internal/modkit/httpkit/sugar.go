package httpkit

import (
	"net/http"

	phttp "grantwise/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

// Get mounts a body-less handler under GET
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, Call(h))
}

// PostJSON mounts a handler whose body is bound and validated into T
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	phttp.PostJSON(r, path, h)
}

// Param returns the named path parameter
func Param(r *http.Request, name string) string { return chi.URLParam(r, name) }
