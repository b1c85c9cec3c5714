// Package scoring is the deterministic fallback scorer: a pure map from an
// applicant profile to a probability, a factor breakdown and fixed advice
package scoring

import "math"

// OrgType is the applicant's organization kind
type OrgType string

// Organization kinds
const (
	OrgUniversity  OrgType = "university"
	OrgNonprofit   OrgType = "nonprofit"
	OrgStartup     OrgType = "startup"
	OrgCorporation OrgType = "corporation"
	OrgIndividual  OrgType = "individual"
)

// Experience is the applicant's grant-writing experience
type Experience string

// Experience levels
const (
	ExpBeginner     Experience = "beginner"
	ExpIntermediate Experience = "intermediate"
	ExpExpert       Experience = "expert"
)

// Confidence is the band attached to a probability
type Confidence string

// Confidence bands
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Valid reports whether c is one of the three bands
func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}
	return false
}

// Probability bounds shared by both scoring paths
const (
	MinProbability = 25
	MaxProbability = 95
	base           = 65
)

// Factor names used in breakdowns
const (
	FactorOrganization = "organization_type"
	FactorExperience   = "experience_level"
	FactorPartnership  = "partnership"
	FactorPriorGrants  = "previous_grants"
	FactorAmount       = "funding_amount"
)

// Profile is the scorer's input
type Profile struct {
	OrgType     OrgType
	Amount      float64
	Experience  Experience
	Partnership bool
	PriorGrants bool
}

// Prediction is the scorer's output
type Prediction struct {
	Probability     int
	Confidence      Confidence
	Factors         map[string]float64
	Recommendations []string
}

var orgAdjust = map[OrgType]int{
	OrgUniversity:  10,
	OrgNonprofit:   8,
	OrgStartup:     5,
	OrgCorporation: 3,
	OrgIndividual:  -5,
}

var expAdjust = map[Experience]int{
	ExpExpert:       15,
	ExpIntermediate: 8,
	ExpBeginner:     -5,
}

// amountAdjust applies exactly one tier; the larger thresholds win
func amountAdjust(amount float64) int {
	switch {
	case amount > 1_000_000:
		return -15
	case amount > 500_000:
		return -8
	case amount < 50_000:
		return 10
	case amount < 200_000:
		return 5
	}
	return 0
}

// advice is returned whole on every heuristic prediction
var advice = []string{
	"Align the project narrative explicitly with the funder's stated priorities and evaluation criteria",
	"Document organizational capacity: key staff, past outcomes and financial controls",
	"Add letters of support or a formal partner to show community and institutional backing",
	"Build a line-item budget whose totals tie directly to the activities and timeline",
	"Define measurable outcomes and an evaluation plan with a named data source for each",
}

// Advice returns a copy of the fixed recommendation catalog
func Advice() []string { return append([]string(nil), advice...) }

// Heuristic scores p. Unknown enum values contribute nothing
func Heuristic(p Profile) Prediction {
	org := orgAdjust[p.OrgType]
	exp := expAdjust[p.Experience]
	amt := amountAdjust(p.Amount)

	sum := base + org + exp + amt
	if p.Partnership {
		sum += 7
	}
	if p.PriorGrants {
		sum += 12
	}
	prob := Clamp(float64(sum))

	conf := ConfidenceLow
	if prob > 70 {
		conf = ConfidenceMedium
	}

	return Prediction{
		Probability:     prob,
		Confidence:      conf,
		Factors:         Factors(p),
		Recommendations: Advice(),
	}
}

// Factors is p's per-factor breakdown, each adjustment mapped onto [0, 1]
func Factors(p Profile) map[string]float64 {
	return map[string]float64{
		FactorOrganization: unit(orgAdjust[p.OrgType], -5, 10),
		FactorExperience:   unit(expAdjust[p.Experience], -5, 15),
		FactorPartnership:  flag(p.Partnership),
		FactorPriorGrants:  flag(p.PriorGrants),
		FactorAmount:       unit(amountAdjust(p.Amount), -15, 10),
	}
}

// Clamp rounds v and bounds it to [MinProbability, MaxProbability]. NaN maps to the floor
func Clamp(v float64) int {
	if math.IsNaN(v) {
		return MinProbability
	}
	r := math.Round(v)
	if r < MinProbability {
		return MinProbability
	}
	if r > MaxProbability {
		return MaxProbability
	}
	return int(r)
}

// Derive picks a band for an oracle reply that omitted one
func Derive(prob int) Confidence {
	switch {
	case prob >= 85:
		return ConfidenceHigh
	case prob > 70:
		return ConfidenceMedium
	}
	return ConfidenceLow
}

// unit maps an adjustment inside [lo, hi] onto [0, 1]
func unit(v, lo, hi int) float64 {
	return math.Round(float64(v-lo)/float64(hi-lo)*100) / 100
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
