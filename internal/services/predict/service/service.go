// Package service runs the prediction pipeline: one oracle attempt, then the
// heuristic when the attempt did not yield a valid verdict
package service

import (
	"context"
	"time"

	"grantwise/internal/adapters/oracle"
	"grantwise/internal/core/scoring"
	perr "grantwise/internal/platform/errors"
	"grantwise/internal/platform/logger"
	"grantwise/internal/platform/metrics"
	"grantwise/internal/platform/validate"
	dom "grantwise/internal/services/predict/domain"

	"github.com/google/uuid"
)

// Oracle is the scoring oracle as the orchestrator sees it
type Oracle interface {
	Enabled() bool
	Score(ctx context.Context, r oracle.Request) (oracle.Verdict, error)
}

// Path labels which scorer produced an output
const (
	PathOracle    = "oracle"
	PathHeuristic = "heuristic"
)

// Orchestrator implements domain.PredictorPort
type Orchestrator struct {
	oracle  Oracle
	metrics *metrics.Manager
	now     func() time.Time
	newID   func() string
}

// New builds an orchestrator; a nil or disabled oracle means heuristic only
func New(o Oracle, m *metrics.Manager) *Orchestrator {
	return &Orchestrator{
		oracle:  o,
		metrics: m,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Predict validates in and scores it. It returns an error only for invalid input
func (s *Orchestrator) Predict(ctx context.Context, in dom.Input) (dom.Output, error) {
	if err := validate.Struct(in); err != nil {
		return dom.Output{}, err
	}
	p := in.Profile()

	out, ok := s.tryOracle(ctx, in, p)
	if !ok {
		out = fromHeuristic(scoring.Heuristic(p))
		s.metrics.Prediction(PathHeuristic)
	} else {
		s.metrics.Prediction(PathOracle)
	}

	out.ID = s.newID()
	out.OrganizationName = in.OrganizationName
	out.CreatedAt = s.now().UTC()
	return out, nil
}

// tryOracle is the single decision point: ok=false sends the caller to the heuristic
func (s *Orchestrator) tryOracle(ctx context.Context, in dom.Input, p scoring.Profile) (dom.Output, bool) {
	if s.oracle == nil || !s.oracle.Enabled() {
		return dom.Output{}, false
	}
	log := logger.C(ctx)

	v, err := s.oracle.Score(ctx, oracle.RequestFor(p, in.Proposal))
	if err != nil {
		class := perr.CodeOf(err).String()
		s.metrics.OracleFailure(class)
		log.Warn().Err(err).Str("class", class).Msg("oracle failed; using heuristic")
		return dom.Output{}, false
	}
	if !v.OK() {
		class := perr.ErrorCodeUpstreamShape.String()
		s.metrics.OracleFailure(class)
		log.Warn().Str("class", class).Str("reason", v.Reason()).Msg("oracle reply rejected; using heuristic")
		return dom.Output{}, false
	}

	o := v.Output()
	return dom.Output{
		Probability:     o.Probability,
		Confidence:      o.Confidence,
		Factors:         scoring.Factors(p),
		Recommendations: o.Recommendations,
		AIEnhanced:      true,
	}, true
}

func fromHeuristic(h scoring.Prediction) dom.Output {
	return dom.Output{
		Probability:     h.Probability,
		Confidence:      h.Confidence,
		Factors:         h.Factors,
		Recommendations: h.Recommendations,
		AIEnhanced:      false,
	}
}
