// Package module wires the prediction orchestrator
package module

import (
	"grantwise/internal/adapters/oracle"
	"grantwise/internal/modkit"
	"grantwise/internal/modkit/httpkit"
	dom "grantwise/internal/services/predict/domain"
	predicthttp "grantwise/internal/services/predict/http"
	"grantwise/internal/services/predict/service"
)

// Ports exposed by the predict module
type Ports struct {
	Predictor dom.PredictorPort
}

// Module implements modkit.Module
type Module struct {
	built modkit.Built
	svc   *service.Orchestrator
}

// New constructs the module. The oracle is read from CORE_ORACLE_* unless an
// Oracle is injected through modkit.WithPorts
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("predict"),
		modkit.WithPrefix("/predict"),
	}, opts...)...)

	o, ok := b.Ports.(service.Oracle)
	if !ok {
		cfg := oracle.ConfigFromEnv(deps.Cfg)
		o = oracle.New(cfg)
		deps.Logger().Info().Bool("enabled", cfg.Enabled).Str("model", cfg.Model).
			Dur("timeout", cfg.Timeout).Msg("scoring oracle configured")
	}
	return &Module{built: b, svc: service.New(o, deps.Metrics)}
}

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(sub httpkit.Router) {
		predicthttp.Register(sub, m.svc)
	})
}

// Name implements modkit.Module
func (m *Module) Name() string { return m.built.Name }

// Ports implements modkit.Module
func (m *Module) Ports() any { return Ports{Predictor: m.svc} }
