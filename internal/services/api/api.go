// Package api assembles the HTTP API for the application
package api

import (
	"context"

	"grantwise/internal/platform/config"
	"grantwise/internal/platform/logger"
	"grantwise/internal/platform/metrics"
	phttp "grantwise/internal/platform/net/http"
	"grantwise/internal/platform/net/middleware"
	"grantwise/internal/platform/store"

	"grantwise/internal/modkit"
	"grantwise/internal/modkit/httpkit"
	"grantwise/internal/modkit/module"
	"grantwise/internal/modkit/swaggerkit"

	metahttp "grantwise/internal/services/api/meta/http"
	metamod "grantwise/internal/services/api/meta/module"
	grantsmod "grantwise/internal/services/grants/module"
	predictmod "grantwise/internal/services/predict/module"
	quotamod "grantwise/internal/services/quota/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Policy         config.Policy
	Store          *store.Store
	Logger         *logger.Logger
	Metrics        *metrics.Manager
	EnableSwagger  bool
	EnableProfiler bool

	// PredictClass and SearchClass name the rate classes in front of the
	// two expensive endpoints
	PredictClass string
	SearchClass  string
}

// API is the mounted application
type API struct {
	quota  *quotamod.Module
	grants *grantsmod.Module
}

// Start prepares schemas and runs background work until ctx ends
func (a *API) Start(ctx context.Context) {
	a.grants.Start(ctx)
	a.quota.Start(ctx)
}

// Mount mounts the API onto the given router
func Mount(r phttp.Router, opt Options) *API {
	deps := modkit.Deps{
		Log:     opt.Logger,
		Cfg:     opt.Config,
		Policy:  opt.Policy,
		Metrics: opt.Metrics,
	}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
		deps.CH = opt.Store.CH
	}
	if opt.PredictClass == "" {
		opt.PredictClass = config.ClassStandard
	}
	if opt.SearchClass == "" {
		opt.SearchClass = config.ClassStandard
	}

	// the ledger is built first; the other modules take its admission middleware
	quota := quotamod.New(deps)
	ledger := module.MustPortsOf[quotamod.Ports](quota).Ledger

	grants := grantsmod.New(deps).GuardSearch(quota.Admission(opt.SearchClass))
	mods := []module.Module{
		metamod.New(deps, modkit.WithPorts[metahttp.DegradedReporter](ledger)),
		quota,
		predictmod.New(deps, modkit.WithMiddlewares(quota.Admission(opt.PredictClass))),
		grants,
	}

	// root middleware has to be registered before any route
	r.Use(middleware.Heartbeat("/ping"))
	r.Handle("/metrics", opt.Metrics.Handler())
	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	httpkit.MountAPIV1(r, httpkit.CommonStack(httpkit.StackFromConfig(opt.Config.Prefix("CORE_API_"))), func(api httpkit.Router) {
		for _, m := range mods {
			m.MountRoutes(api)
		}
	})

	return &API{quota: quota, grants: grants}
}
