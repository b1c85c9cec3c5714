// Package service implements the grant aggregator: a settle-all fan-out over
// every configured source, then dedupe and rank over whatever came back
package service

import (
	"cmp"
	"context"
	"fmt"
	"sync"
	"time"

	"grantwise/internal/core/ranking"
	perr "grantwise/internal/platform/errors"
	"grantwise/internal/platform/logger"
	"grantwise/internal/platform/metrics"
	"grantwise/internal/platform/validate"
	dom "grantwise/internal/services/grants/domain"
)

// DefaultTimeout bounds a source call when no timeout is configured for it
const DefaultTimeout = 12 * time.Second

// Aggregator implements domain.FinderPort
type Aggregator struct {
	sources    []dom.Source
	timeoutFor func(source string) time.Duration
	metrics    *metrics.Manager
	now        func() time.Time
}

// New builds an aggregator over sources in the given order. Order decides
// which duplicate survives, so list the most authoritative source first
func New(sources []dom.Source, timeoutFor func(string) time.Duration, m *metrics.Manager) *Aggregator {
	a := &Aggregator{sources: sources, metrics: m, now: time.Now}
	a.timeoutFor = func(name string) time.Duration {
		if timeoutFor != nil {
			if d := timeoutFor(name); d > 0 {
				return d
			}
		}
		return DefaultTimeout
	}
	return a
}

// WithClock swaps the time source used for ranking
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// Sources lists the configured sources and their timeouts
func (a *Aggregator) Sources() []dom.SourceInfo {
	out := make([]dom.SourceInfo, 0, len(a.sources))
	for _, s := range a.sources {
		out = append(out, dom.SourceInfo{Name: s.Name(), Timeout: a.timeoutFor(s.Name()).String()})
	}
	return out
}

// settled is one source call as a value: records or an error, never both
type settled struct {
	records []dom.Record
	err     error
	outcome dom.Outcome
}

// Find queries every source and merges the successes. Only invalid filters
// return an error; when every source fails the result is empty
func (a *Aggregator) Find(ctx context.Context, f dom.Filters) (dom.Result, error) {
	if err := validate.Struct(f); err != nil {
		return dom.Result{}, err
	}
	f = f.WithDefaults()

	// a caller going away does not cut the fan-out short; each branch has its own deadline
	base := context.WithoutCancel(ctx)

	results := make([]settled, len(a.sources))
	var wg sync.WaitGroup
	for i, src := range a.sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = a.fetch(base, src, f)
		}()
	}
	wg.Wait()

	log := logger.C(ctx)
	res := dom.Result{Records: []dom.Record{}, Outcomes: make([]dom.Outcome, 0, len(results))}
	var merged []dom.Record
	for _, r := range results {
		res.Outcomes = append(res.Outcomes, r.outcome)
		if r.err != nil {
			res.Degraded = true
			log.Warn().Err(r.err).Str("source", r.outcome.Source).Str("class", perr.CodeOf(r.err).String()).
				Int64("elapsed_ms", r.outcome.ElapsedMs).Msg("catalog source excluded")
			continue
		}
		merged = append(merged, r.records...)
	}

	merged = ranking.Dedupe(merged, func(r dom.Record) ranking.Key {
		return ranking.KeyOf(r.Title, r.Agency, r.AmountMin, r.AmountMax)
	})
	now := a.now()
	for i := range merged {
		merged[i].Score = ranking.Score(merged[i].SuccessRate, merged[i].Deadline, now)
	}
	ranking.Rank(merged, func(r dom.Record) float64 { return r.Score }, func(x, y dom.Record) int {
		return cmp.Or(cmp.Compare(x.Source, y.Source), cmp.Compare(x.ID, y.ID))
	})
	if len(merged) > f.Limit {
		merged = merged[:f.Limit]
	}
	if merged != nil {
		res.Records = merged
	}
	a.metrics.AggregateRecords(len(res.Records))
	return res, nil
}

// fetch runs one source under its own deadline and turns every failure,
// panics included, into an outcome. A source that ignores ctx is abandoned at
// the deadline; its goroutine finishes on its own
func (a *Aggregator) fetch(ctx context.Context, src dom.Source, f dom.Filters) settled {
	name := src.Name()
	ctx, cancel := context.WithTimeout(ctx, a.timeoutFor(name))
	defer cancel()
	start := time.Now()

	done := make(chan settled, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- settled{err: perr.Newf(perr.ErrorCodeUpstreamUnavailable, "source panicked: %v", p)}
			}
		}()
		recs, err := src.Fetch(ctx, f)
		done <- settled{records: recs, err: err}
	}()

	var s settled
	select {
	case s = <-done:
	case <-ctx.Done():
		s = settled{err: ctx.Err()}
	}
	if s.err != nil {
		s.records = nil
		s.err = perr.FromUpstream(s.err, fmt.Sprintf("source %s", name))
	}
	for i := range s.records {
		if s.records[i].Source == "" {
			s.records[i].Source = name
		}
	}

	elapsed := time.Since(start)
	s.outcome = dom.Outcome{Source: name, Status: dom.StatusSucceeded, Count: len(s.records), ElapsedMs: elapsed.Milliseconds()}
	if s.err != nil {
		s.outcome.Status = statusOf(s.err)
		s.outcome.Error = s.err.Error()
	}
	a.metrics.SourceFetch(name, string(s.outcome.Status), elapsed)
	return s
}

func statusOf(err error) dom.Status {
	if perr.IsCode(err, perr.ErrorCodeUpstreamTimeout) {
		return dom.StatusTimedOut
	}
	return dom.StatusFailed
}
