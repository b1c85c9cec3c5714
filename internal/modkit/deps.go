// Package modkit provides module wiring and the shared deps bag
package modkit

import (
	"grantwise/internal/modkit/repokit"
	"grantwise/internal/platform/config"
	"grantwise/internal/platform/logger"
	"grantwise/internal/platform/metrics"
	"grantwise/internal/platform/store"
)

// Deps holds core dependencies passed to modules. PG and CH are nil when the
// store is disabled; modules must fall back rather than fail
type Deps struct {
	Log     *logger.Logger
	Cfg     config.Conf
	Policy  config.Policy
	PG      repokit.TxRunner
	CH      store.Clickhouse
	Metrics *metrics.Manager
}

// Logger returns Log or the process logger
func (d Deps) Logger() *logger.Logger {
	if d.Log != nil {
		return d.Log
	}
	return logger.Get()
}

// HasPG reports whether a postgres runner is wired
func (d Deps) HasPG() bool { return d.PG != nil }

// HasCH reports whether a clickhouse handle is wired
func (d Deps) HasCH() bool { return d.CH != nil }
