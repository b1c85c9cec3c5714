package repo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"grantwise/internal/modkit/repokit"
	perr "grantwise/internal/platform/errors"
	"grantwise/internal/services/grants/domain"
)

type fakeRows struct {
	data [][]any
	i    int
}

func (r *fakeRows) Next() bool        { r.i++; return r.i <= len(r.data) }
func (r *fakeRows) Err() error        { return nil }
func (r *fakeRows) Close()            {}
func (r *fakeRows) Columns() []string { return nil }
func (r *fakeRows) Scan(dst ...any) error {
	row := r.data[r.i-1]
	for i, d := range dst {
		switch p := d.(type) {
		case *string:
			*p = row[i].(string)
		case *float64:
			*p = row[i].(float64)
		case **time.Time:
			if t, ok := row[i].(time.Time); ok {
				*p = &t
			}
		default:
			return errors.New("unexpected scan target")
		}
	}
	return nil
}

type fakeQ struct {
	repokit.Queryer
	sql  string
	args []any
	rows *fakeRows
	err  error
}

func (q *fakeQ) Query(_ context.Context, sql string, args ...any) (repokit.Rows, error) {
	q.sql, q.args = sql, args
	if q.err != nil {
		return nil, q.err
	}
	return q.rows, nil
}

var today = time.Date(2026, 5, 10, 15, 30, 0, 0, time.UTC)

func TestCatalogFetchBuildsFilters(t *testing.T) {
	deadline := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	q := &fakeQ{rows: &fakeRows{data: [][]any{
		{"7d1c", "STEM Outreach", "NSF", 10000.0, 50000.0, deadline, "education", "", "stem", "", "https://x", 28.5},
		{"8e2d", "Open Call", "", 0.0, 0.0, nil, "", "", "", "", "", 0.0},
	}}}
	c := repokit.MustBind(NewCatalog(), repokit.Queryer(q)).WithClock(func() time.Time { return today })

	recs, err := c.Fetch(context.Background(), domain.Filters{
		Category: "Education", AmountMin: 5000, AmountMax: 60000, Keywords: "stem, 50%_off",
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(recs) != 2 || recs[0].Source != CatalogName || !recs[0].Deadline.Equal(deadline) || !recs[1].Deadline.IsZero() {
		t.Fatalf("recs = %+v", recs)
	}

	for _, frag := range []string{"lower(category) = lower($2)", ">= $3", "<= $4", "ILIKE ANY($5)", "LIMIT $6"} {
		if !strings.Contains(q.sql, frag) {
			t.Fatalf("sql missing %q:\n%s", frag, q.sql)
		}
	}
	if got := q.args[0].(time.Time); !got.Equal(time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("deadline cut = %v", got)
	}
	pats := q.args[4].([]string)
	if len(pats) != 2 || pats[0] != "%stem%" || pats[1] != `%50\%\_off%` {
		t.Fatalf("patterns = %q", pats)
	}
	if q.args[5] != domain.DefaultLimit {
		t.Fatalf("limit arg = %v", q.args[5])
	}
}

func TestCatalogFetchNoFilters(t *testing.T) {
	q := &fakeQ{rows: &fakeRows{}}
	c := repokit.MustBind(NewCatalog(), repokit.Queryer(q))
	if _, err := c.Fetch(context.Background(), domain.Filters{Limit: 7}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if strings.Contains(q.sql, "lower(category)") {
		t.Fatalf("unexpected category clause:\n%s", q.sql)
	}
	if len(q.args) != 2 || q.args[1] != 7 {
		t.Fatalf("args = %v", q.args)
	}
}

func TestCatalogFetchErrorIsUpstream(t *testing.T) {
	q := &fakeQ{err: context.DeadlineExceeded}
	c := repokit.MustBind(NewCatalog(), repokit.Queryer(q))
	_, err := c.Fetch(context.Background(), domain.Filters{})
	if perr.CodeOf(err) != perr.ErrorCodeUpstreamTimeout {
		t.Fatalf("err = %v", err)
	}
}
