// Package domain defines the grants catalog types shared by sources and the aggregator
package domain

import (
	"strings"
	"time"
)

// Limits on a search
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Filters narrow a catalog search. Zero fields do not filter
type Filters struct {
	Category  string  `json:"category,omitempty"   validate:"omitempty,max=100"`
	AmountMin float64 `json:"amount_min,omitempty" validate:"gte=0"`
	AmountMax float64 `json:"amount_max,omitempty" validate:"omitempty,gtefield=AmountMin"`
	Keywords  string  `json:"keywords,omitempty"   validate:"omitempty,max=200"`
	Limit     int     `json:"limit,omitempty"      validate:"omitempty,min=1,max=200"`
}

// WithDefaults fills Limit
func (f Filters) WithDefaults() Filters {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	f.Category = strings.TrimSpace(f.Category)
	f.Keywords = strings.TrimSpace(f.Keywords)
	return f
}

// Terms splits Keywords on commas and whitespace, lowercased
func (f Filters) Terms() []string {
	return strings.FieldsFunc(strings.ToLower(f.Keywords), func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

// Matches applies f to r for sources that cannot filter server side.
// Category is a case-insensitive equality, the amount filter keeps records
// whose range overlaps [AmountMin, AmountMax], and keywords match when any
// term appears in the title, description or keywords. Records without an
// amount are never excluded by the amount filter
func (f Filters) Matches(r Record) bool {
	if f.Category != "" && !strings.EqualFold(f.Category, r.Category) {
		return false
	}
	if r.HasAmount() {
		if f.AmountMin > 0 && r.upper() < f.AmountMin {
			return false
		}
		if f.AmountMax > 0 && r.AmountMin > f.AmountMax {
			return false
		}
	}
	terms := f.Terms()
	if len(terms) == 0 {
		return true
	}
	hay := strings.ToLower(r.Title + " " + r.Description + " " + r.Keywords)
	for _, t := range terms {
		if strings.Contains(hay, t) {
			return true
		}
	}
	return false
}

// Record is one funding opportunity as a source reports it
type Record struct {
	Source      string    `json:"source"`
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Agency      string    `json:"agency"`
	AmountMin   float64   `json:"amount_min"`
	AmountMax   float64   `json:"amount_max"`
	Deadline    time.Time `json:"deadline,omitzero"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	Keywords    string    `json:"keywords,omitempty"`
	Eligibility string    `json:"eligibility,omitempty"`
	URL         string    `json:"url,omitempty"`

	// SuccessRate is the historical award rate in percent
	SuccessRate float64 `json:"success_rate"`

	// Score is the relevance score assigned by ranking
	Score float64 `json:"score"`
}

// HasAmount reports whether the source gave any amount
func (r Record) HasAmount() bool { return r.AmountMin > 0 || r.AmountMax > 0 }

func (r Record) upper() float64 { return max(r.AmountMin, r.AmountMax) }

// Status is how one source call settled
type Status string

// Source outcomes
const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusTimedOut  Status = "timed_out"
)

// Outcome is per-source metadata returned with every search
type Outcome struct {
	Source    string `json:"source"`
	Status    Status `json:"status"`
	Count     int    `json:"count"`
	ElapsedMs int64  `json:"elapsed_ms"`
	Error     string `json:"error,omitempty"`
}

// Result is a ranked, deduplicated search result
type Result struct {
	Records  []Record  `json:"records"`
	Outcomes []Outcome `json:"outcomes"`

	// Degraded is true when at least one source did not succeed
	Degraded bool `json:"degraded"`
}

// SourceInfo describes a configured source
type SourceInfo struct {
	Name    string `json:"name"`
	Timeout string `json:"timeout"`
}
