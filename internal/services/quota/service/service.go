// Package service implements the quota ledger: the postgres counter store is
// the source of truth, and any store failure falls back to a process-local
// table until the store answers again
package service

import (
	"context"
	"sync/atomic"
	"time"

	"grantwise/internal/core/quota"
	"grantwise/internal/modkit/repokit"
	perr "grantwise/internal/platform/errors"
	"grantwise/internal/platform/logger"
	"grantwise/internal/platform/metrics"
	dom "grantwise/internal/services/quota/domain"
	"grantwise/internal/services/quota/repo"
)

// Config tunes the ledger
type Config struct {
	// StoreTimeout bounds each counter-store call
	StoreTimeout time.Duration

	// SweepInterval is how often the local table and expired rows are swept
	SweepInterval time.Duration
}

// Ledger implements domain.LedgerPort
type Ledger struct {
	db      repokit.TxRunner
	binder  repokit.Binder[repo.Storage]
	local   *quota.Table
	cfg     Config
	log     *logger.Logger
	metrics *metrics.Manager
	now     func() time.Time

	degraded atomic.Bool
}

// New builds a ledger. A nil db runs purely on the local table, which reads
// as permanently degraded
func New(db repokit.TxRunner, binder repokit.Binder[repo.Storage], cfg Config, log *logger.Logger, m *metrics.Manager) *Ledger {
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 500 * time.Millisecond
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if log == nil {
		log = logger.Named("quota")
	}
	l := &Ledger{
		db:      db,
		binder:  binder,
		local:   quota.NewTable(),
		cfg:     cfg,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
	if db == nil {
		l.degraded.Store(true)
		m.SetDegraded(true)
	}
	return l
}

// WithClock swaps the time source, for tests
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// Degraded reports whether decisions currently come from the local table
func (l *Ledger) Degraded() bool { return l.degraded.Load() }

// Admit consumes one unit of id's quota when the window has room
func (l *Ledger) Admit(ctx context.Context, id string, limit int, window time.Duration) dom.Decision {
	now := l.now()
	if l.db != nil {
		d, err := l.withStore(ctx, func(ctx context.Context, s repo.Storage) (quota.Decision, error) {
			return s.Admit(ctx, id, limit, window, now)
		})
		if err == nil {
			l.healthy()
			l.metrics.QuotaDecision("store", d.Allowed)
			return toDomain(d, false)
		}
		l.degrade(err, "admit")
	}

	d := l.local.Admit(id, limit, window, now)
	l.metrics.QuotaDecision("local", d.Allowed)
	return toDomain(d, true)
}

// Status reports id's remaining quota without consuming any
func (l *Ledger) Status(ctx context.Context, id string, limit int, window time.Duration) dom.Decision {
	now := l.now()
	if l.db != nil {
		d, err := l.withStore(ctx, func(ctx context.Context, s repo.Storage) (quota.Decision, error) {
			e, ok, err := s.Get(ctx, id)
			if err != nil {
				return quota.Decision{}, err
			}
			return quota.Peek(e, ok, limit, window, now), nil
		})
		if err == nil {
			l.healthy()
			return toDomain(d, false)
		}
		l.degrade(err, "status")
	}
	return toDomain(l.local.Status(id, limit, window, now), true)
}

// Sweep drops closed windows from the local table and, when the store is
// reachable, from the counter table
func (l *Ledger) Sweep(ctx context.Context) {
	now := l.now()
	n := l.local.Sweep(now)
	l.metrics.SetLocalEntries(l.local.Len())

	var purged int64
	if l.db != nil {
		ctx, cancel := context.WithTimeout(ctx, l.cfg.StoreTimeout)
		defer cancel()
		var err error
		purged, err = repokit.MustBind(l.binder, l.db).Purge(ctx, now)
		if err != nil {
			l.log.Debug().Err(err).Msg("counter purge skipped")
		}
	}
	if n > 0 || purged > 0 {
		l.log.Debug().Int("local", n).Int64("store", purged).Msg("swept expired quota windows")
	}
}

// RunSweeper sweeps on cfg.SweepInterval until ctx is done
func (l *Ledger) RunSweeper(ctx context.Context) {
	t := time.NewTicker(l.cfg.SweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.Sweep(ctx)
		}
	}
}

func (l *Ledger) withStore(ctx context.Context, fn func(context.Context, repo.Storage) (quota.Decision, error)) (quota.Decision, error) {
	ctx, cancel := context.WithTimeout(ctx, l.cfg.StoreTimeout)
	defer cancel()
	d, err := fn(ctx, repokit.MustBind(l.binder, l.db))
	if err != nil {
		return quota.Decision{}, perr.FromPostgres(err, "quota store")
	}
	return d, nil
}

// degrade flips into local mode; only the transition is logged at warn
func (l *Ledger) degrade(err error, op string) {
	if l.degraded.CompareAndSwap(false, true) {
		l.metrics.SetDegraded(true)
		l.log.Warn().Err(err).Str("op", op).Str("class", perr.CodeOf(err).String()).
			Msg("quota store unavailable; enforcing limits from the local table")
		return
	}
	l.log.Debug().Err(err).Str("op", op).Msg("quota store still unavailable")
}

func (l *Ledger) healthy() {
	if l.degraded.CompareAndSwap(true, false) {
		l.metrics.SetDegraded(false)
		l.log.Info().Msg("quota store reachable again; local table no longer consulted")
	}
}

func toDomain(d quota.Decision, degraded bool) dom.Decision {
	return dom.Decision{
		Allowed:   d.Allowed,
		Limit:     d.Limit,
		Remaining: d.Remaining,
		ResetAt:   d.ResetAt,
		Degraded:  degraded,
	}
}
