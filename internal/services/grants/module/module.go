// Package module wires the catalog sources into the grant aggregator
package module

import (
	"context"
	"net/http"

	"grantwise/internal/adapters/catalog/featured"
	"grantwise/internal/adapters/catalog/feed"
	"grantwise/internal/adapters/catalog/grantsgov"
	"grantwise/internal/modkit"
	"grantwise/internal/modkit/httpkit"
	"grantwise/internal/modkit/repokit"
	dom "grantwise/internal/services/grants/domain"
	grantshttp "grantwise/internal/services/grants/http"
	"grantwise/internal/services/grants/repo"
	"grantwise/internal/services/grants/service"
)

// Ports exposed by the grants module
type Ports struct {
	Finder dom.FinderPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	built modkit.Built
	opts  Options
	svc   *service.Aggregator
	admit []func(http.Handler) http.Handler
}

// New constructs the module. Sources given through modkit.WithPorts replace
// the configured set
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("grants"),
		modkit.WithPrefix("/grants"),
	}, opts...)...)

	o := FromConfig(deps.Cfg)
	sources, ok := b.Ports.([]dom.Source)
	if !ok {
		sources = buildSources(deps, o)
	}
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.Name())
	}
	deps.Logger().Info().Strs("sources", names).Msg("grant catalog sources configured")

	return &Module{
		deps:  deps,
		built: b,
		opts:  o,
		svc:   service.New(sources, deps.Policy.TimeoutFor, deps.Metrics),
	}
}

// GuardSearch puts mw in front of POST /search alone. Middleware given
// through modkit.WithMiddlewares still covers every grants route
func (m *Module) GuardSearch(mw ...func(http.Handler) http.Handler) *Module {
	m.admit = append(m.admit, mw...)
	return m
}

// buildSources lists sources most authoritative first, since the first
// duplicate wins. The featured catalog goes last as the offline floor
func buildSources(deps modkit.Deps, o Options) []dom.Source {
	var out []dom.Source
	if o.Catalog && deps.HasPG() {
		out = append(out, repokit.MustBind(repo.NewCatalog(), deps.PG))
	}
	if o.Archive && deps.HasCH() {
		out = append(out, repo.NewArchive(deps.CH))
	}
	if o.GrantsGov {
		out = append(out, grantsgov.NewClient(grantsgov.Options{
			BaseURL:    o.GrantsGovURL,
			Rows:       o.GrantsGovRows,
			MaxRetries: o.GrantsGovRetries,
			RetryBase:  o.GrantsGovRetryGap,
		}))
	}
	for _, fs := range deps.Policy.Feeds {
		out = append(out, feed.New(feed.Config{Name: fs.Name, URL: fs.URL, Agency: fs.Agency, MaxAge: fs.MaxAge}, nil))
	}
	if o.Featured {
		src, err := featured.New()
		if err != nil {
			deps.Logger().Error().Err(err).Msg("featured catalog unreadable; skipped")
		} else {
			out = append(out, src)
		}
	}
	return out
}

// Start prepares the grants table when enabled
func (m *Module) Start(ctx context.Context) {
	if m.deps.HasPG() && m.opts.Catalog && m.opts.EnsureSchema {
		if err := repo.EnsureCatalogSchema(ctx, m.deps.PG); err != nil {
			m.deps.Logger().Warn().Err(err).Msg("grants schema not ensured")
		}
	}
}

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(sub httpkit.Router) {
		grantshttp.Register(sub, m.svc, m.admit...)
	})
}

// Name implements modkit.Module
func (m *Module) Name() string { return m.built.Name }

// Ports implements modkit.Module
func (m *Module) Ports() any { return Ports{Finder: m.svc} }
