package domain

import "context"

// Source is one external catalog. Fetch may fail; the aggregator isolates failures
type Source interface {
	Name() string
	Fetch(ctx context.Context, f Filters) ([]Record, error)
}

// FinderPort is the aggregator surface other modules consume
type FinderPort interface {
	Find(ctx context.Context, f Filters) (Result, error)
	Sources() []SourceInfo
}
