package repo

import (
	"context"
	"time"

	perr "grantwise/internal/platform/errors"
	"grantwise/internal/platform/store"
	"grantwise/internal/services/grants/domain"
)

// ArchiveName is the source name of the clickhouse archive
const ArchiveName = "archive"

// Archive reads grantwise.grants_archive, the bulk historical catalog keyed
// by (source, id): a ReplacingMergeTree on updated_at with the same columns as
// the postgres grants table, deadline as Nullable(Date)
type Archive struct {
	ch  store.Clickhouse
	now func() time.Time
}

// NewArchive wraps a clickhouse handle
func NewArchive(ch store.Clickhouse) *Archive { return &Archive{ch: ch, now: time.Now} }

// Name implements domain.Source
func (a *Archive) Name() string { return ArchiveName }

// Fetch implements domain.Source. Category, amount and deadline narrow in
// SQL; keywords are matched on the returned rows
func (a *Archive) Fetch(ctx context.Context, f domain.Filters) ([]domain.Record, error) {
	f = f.WithDefaults()
	today := a.now().UTC().Truncate(24 * time.Hour)

	// over-fetch so the keyword pass still has f.Limit candidates
	scan := f.Limit
	if len(f.Terms()) > 0 {
		scan = min(f.Limit*4, domain.MaxLimit*4)
	}

	rs, err := a.ch.Query(ctx, `
		SELECT
			source, id, title, agency, amount_min, amount_max, deadline,
			category, description, keywords, eligibility, url, success_rate
		FROM grantwise.grants_archive FINAL
		WHERE (deadline IS NULL OR deadline >= ?)
			AND (? = '' OR lower(category) = lower(?))
			AND (? = 0 OR (amount_min = 0 AND amount_max = 0) OR greatest(amount_min, amount_max) >= ?)
			AND (? = 0 OR amount_min <= ?)
		ORDER BY success_rate DESC, id
		LIMIT ?`,
		today,
		f.Category, f.Category,
		f.AmountMin, f.AmountMin,
		f.AmountMax, f.AmountMax,
		scan,
	)
	if err != nil {
		return nil, perr.FromUpstream(err, "archive query")
	}
	defer rs.Close()

	var out []domain.Record
	for rs.Next() {
		var r domain.Record
		var origin string
		var deadline *time.Time
		if err := rs.Scan(
			&origin, &r.ID, &r.Title, &r.Agency, &r.AmountMin, &r.AmountMax, &deadline,
			&r.Category, &r.Description, &r.Keywords, &r.Eligibility, &r.URL, &r.SuccessRate,
		); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeUpstreamShape, "archive scan")
		}
		if deadline != nil {
			r.Deadline = deadline.UTC()
		}
		r.Source = ArchiveName
		if origin != "" {
			r.ID = origin + ":" + r.ID
		}
		if !f.Matches(r) {
			continue
		}
		out = append(out, r)
		if len(out) == f.Limit {
			break
		}
	}
	if err := rs.Err(); err != nil {
		return nil, perr.FromUpstream(err, "archive rows")
	}
	return out, nil
}
