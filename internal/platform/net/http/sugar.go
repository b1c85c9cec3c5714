package http

import (
	"net/http"

	"grantwise/internal/platform/net/http/bind"
)

// PostJSON mounts a handler whose body is decoded and validated into T
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, Handle(func(req *http.Request) Response {
		in, err := bind.ParseJSON[T](req)
		if err != nil {
			return Error(err)
		}
		out, err := h(req, in)
		if err != nil {
			return Error(err)
		}
		return OK(out)
	}))
}
