// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"time"

	"grantwise/internal/core/version"
	"grantwise/internal/modkit"
	"grantwise/internal/modkit/httpkit"
	metahttp "grantwise/internal/services/api/meta/http"
)

// Module implements the modkit.Module interface
type Module struct {
	deps      modkit.Deps
	built     modkit.Built
	ledger    metahttp.DegradedReporter
	startedAt time.Time
}

// New constructs a meta module. A DegradedReporter passed through
// modkit.WithPorts adds the quota store to readiness
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	ledger, _ := b.Ports.(metahttp.DegradedReporter)
	return &Module{deps: deps, built: b, ledger: ledger, startedAt: time.Now()}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	d := metahttp.Deps{
		ServiceName: version.Info().Service,
		StartedAt:   m.startedAt,
		Ledger:      m.ledger,
	}
	// keep untyped nils so absent backends read as skipped
	if m.deps.HasPG() {
		d.PG = m.deps.PG
	}
	if m.deps.HasCH() {
		d.CH = m.deps.CH
	}
	m.built.Mount(r, func(sub httpkit.Router) { metahttp.Register(sub, d) })
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.built.Name }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
