// Package featured serves a curated catalog compiled into the binary. It is
// the one source that cannot fail on the network, so a search always has a floor
package featured

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"grantwise/internal/services/grants/domain"

	"gopkg.in/yaml.v3"
)

// Name is the source name reported in outcomes
const Name = "featured"

//go:embed featured.yaml
var catalog []byte

type entry struct {
	ID           string  `yaml:"id"`
	Title        string  `yaml:"title"`
	Agency       string  `yaml:"agency"`
	AmountMin    float64 `yaml:"amount_min"`
	AmountMax    float64 `yaml:"amount_max"`
	DeadlineDays int     `yaml:"deadline_days"`
	Category     string  `yaml:"category"`
	Description  string  `yaml:"description"`
	Keywords     string  `yaml:"keywords"`
	Eligibility  string  `yaml:"eligibility"`
	SuccessRate  float64 `yaml:"success_rate"`
	URL          string  `yaml:"url"`
}

// Source is the featured catalog
type Source struct {
	entries []entry
	now     func() time.Time
}

// New parses the embedded catalog
func New() (*Source, error) { return Parse(catalog) }

// Parse builds a Source from YAML, for tests and alternative catalogs
func Parse(b []byte) (*Source, error) {
	var es []entry
	if err := yaml.Unmarshal(b, &es); err != nil {
		return nil, fmt.Errorf("featured catalog: %w", err)
	}
	for i, e := range es {
		if e.ID == "" || e.Title == "" {
			return nil, fmt.Errorf("featured catalog: entry %d needs id and title", i)
		}
	}
	return &Source{entries: es, now: time.Now}, nil
}

// WithClock overrides the time deadlines are counted from
func (s *Source) WithClock(now func() time.Time) *Source {
	s.now = now
	return s
}

// Name implements domain.Source
func (s *Source) Name() string { return Name }

// Fetch implements domain.Source
func (s *Source) Fetch(ctx context.Context, f domain.Filters) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	out := make([]domain.Record, 0, len(s.entries))
	for _, e := range s.entries {
		r := domain.Record{
			Source:      Name,
			ID:          e.ID,
			Title:       e.Title,
			Agency:      e.Agency,
			AmountMin:   e.AmountMin,
			AmountMax:   e.AmountMax,
			Category:    e.Category,
			Description: e.Description,
			Keywords:    e.Keywords,
			Eligibility: e.Eligibility,
			SuccessRate: e.SuccessRate,
			URL:         e.URL,
		}
		if e.DeadlineDays > 0 {
			r.Deadline = today.AddDate(0, 0, e.DeadlineDays)
		}
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}
