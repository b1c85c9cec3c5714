// Package module wires the quota ledger and its status routes
package module

import (
	"context"
	"net/http"

	"grantwise/internal/modkit"
	"grantwise/internal/modkit/httpkit"
	dom "grantwise/internal/services/quota/domain"
	quotahttp "grantwise/internal/services/quota/http"
	"grantwise/internal/services/quota/repo"
	"grantwise/internal/services/quota/service"
)

// Ports exposed by the quota module
type Ports struct {
	Ledger dom.LedgerPort
}

// Module implements modkit.Module
type Module struct {
	deps   modkit.Deps
	built  modkit.Built
	opts   Options
	ledger *service.Ledger
}

// New constructs the quota module. Without postgres the ledger runs on the
// local table alone
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("quota"),
		modkit.WithPrefix("/quota"),
	}, opts...)...)

	o := FromConfig(deps.Cfg)
	log := deps.Logger().With().Str("module", b.Name).Logger()
	ledger := service.New(deps.PG, repo.NewPG(), service.Config{
		StoreTimeout:  o.StoreTimeout,
		SweepInterval: o.SweepInterval,
	}, &log, deps.Metrics)

	return &Module{deps: deps, built: b, opts: o, ledger: ledger}
}

// Ledger returns the concrete ledger, for the sweeper and readiness
func (m *Module) Ledger() *service.Ledger { return m.ledger }

// Start prepares the counter table when enabled and runs the sweeper until
// ctx ends. Schema failures are logged; the ledger degrades on its own
func (m *Module) Start(ctx context.Context) {
	if m.deps.HasPG() && m.opts.EnsureSchema {
		if err := repo.EnsureSchema(ctx, m.deps.PG); err != nil {
			m.deps.Logger().Warn().Err(err).Msg("quota schema not ensured")
		}
	}
	go m.ledger.RunSweeper(ctx)
}

// Admission returns the admission middleware for a named class from the policy
func (m *Module) Admission(class string) func(http.Handler) http.Handler {
	rc, ok := m.deps.Policy.Class(class)
	if !ok {
		m.deps.Logger().Panic().Str("class", class).Msg("unknown rate class")
	}
	return quotahttp.Admission(m.ledger, class, rc)
}

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(sub httpkit.Router) {
		quotahttp.Register(sub, m.ledger, m.deps.Policy)
	})
}

// Name implements modkit.Module
func (m *Module) Name() string { return m.built.Name }

// Ports implements modkit.Module
func (m *Module) Ports() any { return Ports{Ledger: m.ledger} }
