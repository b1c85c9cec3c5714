package httpkit

import "net/http"

// MountUnder mounts a subrouter at prefix with per-module middleware.
// An empty prefix groups on r instead
func MountUnder(r Router, prefix string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	body := func(sub Router) {
		if len(mw) > 0 {
			sub.Use(mw...)
		}
		mount(sub)
	}
	if prefix == "" || prefix == "/" {
		r.Group(body)
		return
	}
	r.Route(prefix, body)
}
