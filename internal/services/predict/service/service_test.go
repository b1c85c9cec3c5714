package service

import (
	"context"
	"reflect"
	"testing"
	"time"

	"grantwise/internal/adapters/oracle"
	"grantwise/internal/core/scoring"
	perr "grantwise/internal/platform/errors"
	dom "grantwise/internal/services/predict/domain"
)

type fakeOracle struct {
	enabled bool
	verdict oracle.Verdict
	err     error
	calls   int
	block   bool
}

func (f *fakeOracle) Enabled() bool { return f.enabled }

func (f *fakeOracle) Score(ctx context.Context, _ oracle.Request) (oracle.Verdict, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		return oracle.Verdict{}, perr.FromUpstream(ctx.Err(), "oracle call")
	}
	return f.verdict, f.err
}

var (
	strong = dom.Input{
		OrganizationType: "university", FundingAmount: 40000, ExperienceLevel: "expert",
		HasPartnership: true, HasPreviousGrants: true,
	}
	weak = dom.Input{
		OrganizationType: "individual", FundingAmount: 2_000_000, ExperienceLevel: "beginner",
	}
)

func newOrch(o Oracle) *Orchestrator {
	s := New(o, nil)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	s.newID = func() string { return "pred-1" }
	return s
}

func TestHeuristicScenarios(t *testing.T) {
	cases := []struct {
		name string
		in   dom.Input
		prob int
		conf scoring.Confidence
	}{
		{"strong university clamps to ceiling", strong, 95, scoring.ConfidenceMedium},
		{"weak individual", weak, 40, scoring.ConfidenceLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := newOrch(nil).Predict(context.Background(), tc.in)
			if err != nil {
				t.Fatalf("Predict: %v", err)
			}
			if out.Probability != tc.prob || out.Confidence != tc.conf || out.AIEnhanced {
				t.Fatalf("out = %+v", out)
			}
			if len(out.Recommendations) < 4 || out.ID != "pred-1" {
				t.Fatalf("out = %+v", out)
			}
		})
	}
}

func TestOracleFailuresFallBack(t *testing.T) {
	cases := []struct {
		name   string
		oracle *fakeOracle
		calls  int
	}{
		{"disabled", &fakeOracle{enabled: false}, 0},
		{"unavailable", &fakeOracle{enabled: true, err: perr.Newf(perr.ErrorCodeUpstreamUnavailable, "503")}, 1},
		{"timeout", &fakeOracle{enabled: true, err: perr.FromUpstream(context.DeadlineExceeded, "oracle")}, 1},
		{"bad shape", &fakeOracle{enabled: true, verdict: oracle.Invalid("3 recommendations")}, 1},
	}
	want, _ := newOrch(nil).Predict(context.Background(), weak)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := newOrch(tc.oracle).Predict(context.Background(), weak)
			if err != nil {
				t.Fatalf("Predict must not fail on oracle errors: %v", err)
			}
			if !reflect.DeepEqual(out, want) {
				t.Fatalf("fallback output differs:\n got %+v\nwant %+v", out, want)
			}
			if tc.oracle.calls != tc.calls {
				t.Fatalf("oracle calls = %d, want %d", tc.oracle.calls, tc.calls)
			}
		})
	}
}

func TestOracleSuccess(t *testing.T) {
	recs := []string{"a", "b", "c", "d"}
	o := &fakeOracle{enabled: true, verdict: oracle.Valid(oracle.Output{
		Probability: 77, Confidence: scoring.ConfidenceMedium, Recommendations: recs,
	})}
	in := weak
	in.OrganizationName = "Riverbend Arts Collective"

	out, err := newOrch(o).Predict(context.Background(), in)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if !out.AIEnhanced || out.Probability != 77 || !reflect.DeepEqual(out.Recommendations, recs) {
		t.Fatalf("out = %+v", out)
	}
	if out.OrganizationName != in.OrganizationName || len(out.Factors) != 5 {
		t.Fatalf("out = %+v", out)
	}
}

func TestSlowOracleBoundedByItsTimeout(t *testing.T) {
	o := &fakeOracle{enabled: true, block: true}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	out, err := newOrch(o).Predict(ctx, strong)
	if err != nil || out.AIEnhanced || out.Probability != 95 {
		t.Fatalf("out = %+v err = %v", out, err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("fallback was not bounded")
	}
}

func TestValidationIsTheOnlyError(t *testing.T) {
	cases := []struct {
		name string
		in   dom.Input
	}{
		{"unknown org type", dom.Input{OrganizationType: "guild", FundingAmount: 1, ExperienceLevel: "expert"}},
		{"zero amount", dom.Input{OrganizationType: "startup", ExperienceLevel: "expert"}},
		{"missing experience", dom.Input{OrganizationType: "startup", FundingAmount: 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := &fakeOracle{enabled: true}
			_, err := newOrch(o).Predict(context.Background(), tc.in)
			if perr.CodeOf(err) != perr.ErrorCodeValidation {
				t.Fatalf("err = %v, want validation", err)
			}
			if o.calls != 0 {
				t.Fatalf("oracle called for invalid input")
			}
		})
	}
}

func TestHeuristicIsDeterministic(t *testing.T) {
	s := newOrch(nil)
	a, _ := s.Predict(context.Background(), strong)
	b, _ := s.Predict(context.Background(), strong)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("heuristic not deterministic")
	}
}
