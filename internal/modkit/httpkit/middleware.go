package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"grantwise/internal/platform/config"
	"grantwise/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack; zero values fall back to defaults
type StackOptions struct {
	Identity    middleware.IdentityPort
	CORSOrigins []string
	Timeout     time.Duration
	SlowRequest time.Duration
}

// StackFromConfig reads CORS_ORIGINS, REQUEST_TIMEOUT and SLOW_REQUEST from cfg
func StackFromConfig(cfg config.Conf) StackOptions {
	return StackOptions{
		CORSOrigins: cfg.MayCSV("CORS_ORIGINS", []string{"*"}),
		Timeout:     cfg.MayDuration("REQUEST_TIMEOUT", 30*time.Second),
		SlowRequest: cfg.MayDuration("SLOW_REQUEST", 2*time.Second),
	}
}

// CommonStack returns the middleware every /api/v1 route runs behind. The
// timeout must exceed the slowest source timeout or aggregation is cut short
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	if o.Identity == nil {
		o.Identity = middleware.KeyOrIP
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.Identify(o.Identity),
		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: o.SlowRequest}),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.CORSOrigins}),
		middleware.Compress(flate.BestSpeed),
		middleware.Timeout(o.Timeout),
	}
}
