// Package module defines the minimal module contract and typed port lookup
package module

import phttp "grantwise/internal/platform/net/http"

// Module is what the api composer mounts. It lives apart from modkit so a
// module can export its own ports type without an import cycle
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
