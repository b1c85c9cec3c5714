package module

import (
	"time"

	"grantwise/internal/platform/config"
)

// Options holds the ledger settings
type Options struct {
	StoreTimeout  time.Duration
	SweepInterval time.Duration
	EnsureSchema  bool
}

// FromConfig reads CORE_QUOTA_*
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_QUOTA_")
	return Options{
		StoreTimeout:  c.MayDuration("STORE_TIMEOUT", 500*time.Millisecond),
		SweepInterval: c.MayDuration("SWEEP_INTERVAL", time.Minute),
		EnsureSchema:  c.MayBool("ENSURE_SCHEMA", true),
	}
}
