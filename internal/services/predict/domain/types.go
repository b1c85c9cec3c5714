// Package domain holds prediction inputs, outputs and ports
package domain

import (
	"context"
	"time"

	"grantwise/internal/core/scoring"
)

// Input is one application to score
type Input struct {
	OrganizationName  string  `json:"organization_name,omitempty" validate:"omitempty,max=200"`
	OrganizationType  string  `json:"organization_type" validate:"required,oneof=university nonprofit startup corporation individual"`
	FundingAmount     float64 `json:"funding_amount" validate:"gt=0,lte=1000000000"`
	ExperienceLevel   string  `json:"experience_level" validate:"required,oneof=beginner intermediate expert"`
	HasPartnership    bool    `json:"has_partnership"`
	HasPreviousGrants bool    `json:"has_previous_grants"`

	// Proposal is an optional narrative excerpt; only the oracle reads it
	Proposal string `json:"proposal,omitempty" validate:"omitempty,max=20000"`
}

// Profile projects the scored fields
func (in Input) Profile() scoring.Profile {
	return scoring.Profile{
		OrgType:     scoring.OrgType(in.OrganizationType),
		Amount:      in.FundingAmount,
		Experience:  scoring.Experience(in.ExperienceLevel),
		Partnership: in.HasPartnership,
		PriorGrants: in.HasPreviousGrants,
	}
}

// Output is a prediction from either path
type Output struct {
	ID               string             `json:"id"`
	OrganizationName string             `json:"organization_name,omitempty"`
	Probability      int                `json:"probability"`
	Confidence       scoring.Confidence `json:"confidence"`
	Factors          map[string]float64 `json:"factors"`
	Recommendations  []string           `json:"recommendations"`
	AIEnhanced       bool               `json:"ai_enhanced"`
	CreatedAt        time.Time          `json:"created_at"`
}

// PredictorPort scores applications. The only error is a validation failure
type PredictorPort interface {
	Predict(ctx context.Context, in Input) (Output, error)
}
