package module

import (
	"time"

	"grantwise/internal/platform/config"
)

// Options selects and tunes the catalog sources
type Options struct {
	Featured bool

	// Catalog reads the postgres grants table when postgres is wired
	Catalog      bool
	EnsureSchema bool

	// Archive reads the clickhouse archive when clickhouse is wired
	Archive bool

	GrantsGov         bool
	GrantsGovURL      string
	GrantsGovRows     int
	GrantsGovRetries  int
	GrantsGovRetryGap time.Duration
}

// FromConfig reads CORE_CATALOG_*
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_CATALOG_")
	return Options{
		Featured:          c.MayBool("FEATURED_ENABLED", true),
		Catalog:           c.MayBool("PG_ENABLED", true),
		EnsureSchema:      c.MayBool("ENSURE_SCHEMA", true),
		Archive:           c.MayBool("CH_ENABLED", true),
		GrantsGov:         c.MayBool("GRANTSGOV_ENABLED", true),
		GrantsGovURL:      c.MayString("GRANTSGOV_BASE_URL", ""),
		GrantsGovRows:     c.MayInt("GRANTSGOV_ROWS", 50),
		GrantsGovRetries:  c.MayInt("GRANTSGOV_MAX_RETRIES", 2),
		GrantsGovRetryGap: c.MayDuration("GRANTSGOV_RETRY_BASE", 250*time.Millisecond),
	}
}
