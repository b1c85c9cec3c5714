// Package repo holds the database-backed catalog sources: the postgres grants
// table and the clickhouse archive
package repo

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"grantwise/internal/modkit/repokit"
	perr "grantwise/internal/platform/errors"
	"grantwise/internal/services/grants/domain"
)

//go:embed schema_pg.sql
var catalogSchema string

// EnsureCatalogSchema creates the grants table when missing
func EnsureCatalogSchema(ctx context.Context, q repokit.Queryer) error {
	_, err := q.Exec(ctx, catalogSchema)
	return err
}

// CatalogName is the source name of the postgres catalog
const CatalogName = "catalog"

// Catalog reads the grants table
type Catalog struct {
	q   repokit.Queryer
	now func() time.Time
}

type catalogBinder struct{}

// NewCatalog returns the binder for the postgres catalog
func NewCatalog() repokit.Binder[*Catalog] { return catalogBinder{} }

// Bind implements repokit.Binder
func (catalogBinder) Bind(q repokit.Queryer) *Catalog { return &Catalog{q: q, now: time.Now} }

// WithClock swaps the time source used for the open-deadline cut
func (c *Catalog) WithClock(now func() time.Time) *Catalog {
	c.now = now
	return c
}

// Name implements domain.Source
func (c *Catalog) Name() string { return CatalogName }

// Fetch implements domain.Source. Open grants only (no deadline, or one not yet passed)
func (c *Catalog) Fetch(ctx context.Context, f domain.Filters) ([]domain.Record, error) {
	f = f.WithDefaults()

	var sb strings.Builder
	var args []any
	arg := func(v any) string { args = append(args, v); return fmt.Sprintf("$%d", len(args)) }

	sb.WriteString(`
		SELECT
			id::text, title, COALESCE(agency, ''),
			COALESCE(amount_min, 0)::float8, COALESCE(amount_max, 0)::float8,
			deadline,
			COALESCE(category, ''), COALESCE(description, ''), COALESCE(keywords, ''),
			COALESCE(eligibility, ''), COALESCE(url, ''),
			COALESCE(success_rate, 0)::float8
		FROM grants
		WHERE (deadline IS NULL OR deadline >= ` + arg(c.now().UTC().Truncate(24*time.Hour)) + `::date)
	`)
	if f.Category != "" {
		sb.WriteString("  AND lower(category) = lower(" + arg(f.Category) + ")\n")
	}
	noAmount := "(COALESCE(amount_min, 0) = 0 AND COALESCE(amount_max, 0) = 0)"
	if f.AmountMin > 0 {
		sb.WriteString("  AND (" + noAmount + " OR GREATEST(COALESCE(amount_min, 0), COALESCE(amount_max, 0)) >= " + arg(f.AmountMin) + ")\n")
	}
	if f.AmountMax > 0 {
		sb.WriteString("  AND COALESCE(amount_min, 0) <= " + arg(f.AmountMax) + "\n")
	}
	if terms := f.Terms(); len(terms) > 0 {
		pats := make([]string, len(terms))
		for i, t := range terms {
			pats[i] = "%" + likeEscape(t) + "%"
		}
		p := arg(pats)
		sb.WriteString("  AND (title ILIKE ANY(" + p + ") OR description ILIKE ANY(" + p + ") OR keywords ILIKE ANY(" + p + "))\n")
	}
	sb.WriteString("ORDER BY success_rate DESC NULLS LAST, id\nLIMIT " + arg(f.Limit))

	rows, err := c.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, perr.FromUpstream(err, "catalog query")
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var r domain.Record
		var deadline *time.Time
		if err := rows.Scan(
			&r.ID, &r.Title, &r.Agency, &r.AmountMin, &r.AmountMax, &deadline,
			&r.Category, &r.Description, &r.Keywords, &r.Eligibility, &r.URL, &r.SuccessRate,
		); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeUpstreamShape, "catalog scan")
		}
		if deadline != nil {
			r.Deadline = deadline.UTC()
		}
		r.Source = CatalogName
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.FromUpstream(err, "catalog rows")
	}
	return out, nil
}

func likeEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
