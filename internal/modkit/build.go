package modkit

import (
	"net/http"

	"grantwise/internal/modkit/httpkit"
)

// Built is the resolved option set a module reads in its constructor
type Built struct {
	Name     string
	Prefix   string
	Mw       []func(http.Handler) http.Handler
	Ports    any
	Register func(httpkit.Router)
}

// Build applies opts over zero defaults
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	if c.register == nil {
		c.register = func(httpkit.Router) {}
	}
	return Built{
		Name:     c.name,
		Prefix:   c.prefix,
		Mw:       append([]func(http.Handler) http.Handler(nil), c.mw...),
		Ports:    c.ports,
		Register: c.register,
	}
}

// Mount routes b.Register (and extra) under b.Prefix with b.Mw applied
func (b Built) Mount(r httpkit.Router, extra func(httpkit.Router)) {
	httpkit.MountUnder(r, b.Prefix, b.Mw, func(sub httpkit.Router) {
		if extra != nil {
			extra(sub)
		}
		b.Register(sub)
	})
}
