// @title         Grantwise API
// @version       0.1.0
// @description   Grant discovery and success prediction behind per-caller quotas

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grantwise/internal/platform/config"
	"grantwise/internal/platform/logger"
	"grantwise/internal/platform/metrics"
	phttp "grantwise/internal/platform/net/http"
	"grantwise/internal/platform/store"

	"grantwise/internal/services/api"
)

func main() {
	logger.Init(logger.FromEnv())
	l := logger.Get()

	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	policy, err := config.LoadPolicy(root.MayString("GRANTWISE_POLICY_FILE", ""))
	if err != nil {
		l.Fatal().Err(err).Msg("policy rejected")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// a missing database degrades quota to memory and drops the catalog source
	st, err := store.Open(ctx, store.ConfigFromEnv(root, "grantwise-api"), store.WithLogger(*l))
	if err != nil {
		l.Error().Err(err).Msg("store unavailable, continuing degraded")
	} else if err := st.Guard(ctx); err != nil {
		l.Warn().Err(err).Msg("store opened but not answering pings")
	}
	defer func() {
		if st == nil {
			return
		}
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	m := metrics.New(metrics.WithRuntime())
	srv := phttp.NewServer(apiCfg)

	app := api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Policy:         policy,
			Store:          st,
			Logger:         l,
			Metrics:        m,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
			PredictClass:   apiCfg.MayEnum("PREDICT_CLASS", config.ClassStandard, policy.ClassNames()...),
			SearchClass:    apiCfg.MayEnum("SEARCH_CLASS", config.ClassStandard, policy.ClassNames()...),
		},
	)
	app.Start(ctx)

	errc := make(chan error, 1)
	go func() { errc <- srv.Run() }()

	select {
	case err := <-errc:
		if err != nil {
			l.Fatal().Err(err).Msg("http server stopped")
		}
	case <-ctx.Done():
		l.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), apiCfg.MayDuration("SHUTDOWN_TIMEOUT", 15*time.Second))
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			l.Error().Err(err).Msg("shutdown")
		}
	}
}
