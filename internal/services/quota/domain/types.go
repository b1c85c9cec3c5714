// Package domain holds the quota ledger's types and ports
package domain

import (
	"context"
	"time"
)

// Decision is what the ledger reports for one admission or status check
type Decision struct {
	Allowed   bool      `json:"allowed"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`

	// Degraded is set when the decision came from the process-local table
	Degraded bool `json:"degraded"`
}

// LedgerPort admits requests against fixed-window quotas. Neither method fails:
// a store outage degrades to the local table
type LedgerPort interface {
	Admit(ctx context.Context, id string, limit int, window time.Duration) Decision
	Status(ctx context.Context, id string, limit int, window time.Duration) Decision
	Degraded() bool
}
