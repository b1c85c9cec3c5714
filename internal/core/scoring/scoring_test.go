package scoring

import (
	"math"
	"reflect"
	"testing"
)

func TestHeuristicScenarios(t *testing.T) {
	cases := []struct {
		name     string
		in       Profile
		wantProb int
		wantConf Confidence
	}{
		{
			name:     "strong university applicant clamps to ceiling",
			in:       Profile{OrgType: OrgUniversity, Amount: 40_000, Experience: ExpExpert, Partnership: true, PriorGrants: true},
			wantProb: 95,
			wantConf: ConfidenceMedium,
		},
		{
			name:     "individual beginner asking for millions",
			in:       Profile{OrgType: OrgIndividual, Amount: 2_000_000, Experience: ExpBeginner},
			wantProb: 40,
			wantConf: ConfidenceLow,
		},
		{
			name:     "mid tier amount",
			in:       Profile{OrgType: OrgNonprofit, Amount: 150_000, Experience: ExpIntermediate},
			wantProb: 65 + 8 + 8 + 5,
			wantConf: ConfidenceMedium,
		},
		{
			name:     "no amount adjustment between 200k and 500k",
			in:       Profile{OrgType: OrgCorporation, Amount: 300_000, Experience: ExpBeginner},
			wantProb: 65 + 3 - 5,
			wantConf: ConfidenceLow,
		},
		{
			name:     "500k exactly is not over 500k",
			in:       Profile{OrgType: OrgStartup, Amount: 500_000, Experience: ExpBeginner},
			wantProb: 65 + 5 - 5,
			wantConf: ConfidenceLow,
		},
		{
			name:     "just over 500k",
			in:       Profile{OrgType: OrgStartup, Amount: 500_001, Experience: ExpBeginner},
			wantProb: 65 + 5 - 5 - 8,
			wantConf: ConfidenceLow,
		},
		{
			name:     "70 is low, 71 is medium",
			in:       Profile{OrgType: OrgCorporation, Amount: 300_000, Experience: ExpBeginner, Partnership: true},
			wantProb: 70,
			wantConf: ConfidenceLow,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Heuristic(tc.in)
			if got.Probability != tc.wantProb {
				t.Fatalf("probability = %d, want %d", got.Probability, tc.wantProb)
			}
			if got.Confidence != tc.wantConf {
				t.Fatalf("confidence = %s, want %s", got.Confidence, tc.wantConf)
			}
		})
	}
}

func TestHeuristicFloor(t *testing.T) {
	// 65 - 5 - 5 - 15 = 40 is the lowest reachable sum; the floor still holds
	// for unknown enums that add nothing
	got := Heuristic(Profile{OrgType: "guild", Experience: "novice", Amount: 2_000_000})
	if got.Probability < MinProbability || got.Probability > MaxProbability {
		t.Fatalf("probability %d out of range", got.Probability)
	}
}

func TestHeuristicIsPure(t *testing.T) {
	in := Profile{OrgType: OrgNonprofit, Amount: 75_000, Experience: ExpExpert, PriorGrants: true}
	a, b := Heuristic(in), Heuristic(in)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same input, different output:\n%+v\n%+v", a, b)
	}

	a.Recommendations[0] = "mutated"
	a.Factors[FactorAmount] = 9
	c := Heuristic(in)
	if c.Recommendations[0] == "mutated" || c.Factors[FactorAmount] == 9 {
		t.Fatalf("outputs share backing storage")
	}
}

func TestHeuristicBreakdown(t *testing.T) {
	got := Heuristic(Profile{OrgType: OrgUniversity, Amount: 40_000, Experience: ExpExpert, Partnership: true, PriorGrants: true})
	if len(got.Recommendations) < 4 {
		t.Fatalf("recommendations = %d, want at least 4", len(got.Recommendations))
	}
	for name, v := range got.Factors {
		if v < 0 || v > 1 {
			t.Fatalf("factor %s = %v outside [0,1]", name, v)
		}
	}
	if got.Factors[FactorOrganization] != 1 || got.Factors[FactorExperience] != 1 || got.Factors[FactorAmount] != 1 {
		t.Fatalf("best-case factors should be 1: %v", got.Factors)
	}

	worst := Heuristic(Profile{OrgType: OrgIndividual, Amount: 2_000_000, Experience: ExpBeginner})
	if worst.Factors[FactorOrganization] != 0 || worst.Factors[FactorAmount] != 0 || worst.Factors[FactorPartnership] != 0 {
		t.Fatalf("worst-case factors should be 0: %v", worst.Factors)
	}
}

func TestClamp(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{-10, 25}, {0, 25}, {24.4, 25}, {25, 25}, {61.5, 62}, {95, 95}, {95.4, 95}, {130, 95}, {math.NaN(), 25}, {math.Inf(1), 95},
	}
	for _, tc := range cases {
		if got := Clamp(tc.in); got != tc.want {
			t.Fatalf("Clamp(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestDerive(t *testing.T) {
	cases := map[int]Confidence{25: ConfidenceLow, 70: ConfidenceLow, 71: ConfidenceMedium, 84: ConfidenceMedium, 85: ConfidenceHigh, 95: ConfidenceHigh}
	for p, want := range cases {
		if got := Derive(p); got != want {
			t.Fatalf("Derive(%d) = %s, want %s", p, got, want)
		}
	}
	if !ConfidenceHigh.Valid() || Confidence("certain").Valid() {
		t.Fatalf("Valid misreports bands")
	}
}
