package grantsgov

import (
	"context"
	"strings"
	"time"

	perr "grantwise/internal/platform/errors"
	"grantwise/internal/services/grants/domain"
)

// Name is the source name reported in outcomes
const Name = "grantsgov"

const (
	dateLayout = "01/02/2006"
	detailURL  = "https://www.grants.gov/search-results-detail/"
)

// Name implements domain.Source
func (c *Client) Name() string { return Name }

// Fetch implements domain.Source. search2 carries no award amounts, so
// amount filters are left to ranking; an unmapped category falls back to
// keyword search
func (c *Client) Fetch(ctx context.Context, f domain.Filters) ([]domain.Record, error) {
	req := searchRequest{
		Rows:        c.opts.Rows,
		Keyword:     f.Keywords,
		OppStatuses: "forecasted|posted",
	}
	cat := strings.ToLower(strings.TrimSpace(f.Category))
	if code, ok := categoryCodes[cat]; ok {
		req.FundingCategories = code
	} else if cat != "" {
		req.Keyword = strings.TrimSpace(f.Category + " " + f.Keywords)
	}

	var reply searchReply
	if err := c.post(ctx, "/search2", req, &reply); err != nil {
		return nil, err
	}
	if reply.ErrorCode != 0 {
		return nil, perr.Newf(perr.ErrorCodeUpstreamUnavailable, "grantsgov error %d: %s", reply.ErrorCode, reply.Msg)
	}
	if reply.Data == nil {
		return nil, perr.Shapef("grantsgov reply without data")
	}

	out := make([]domain.Record, 0, len(reply.Data.OppHits))
	for _, h := range reply.Data.OppHits {
		if h.ID == "" || h.Title == "" {
			continue
		}
		agency := h.Agency
		if agency == "" {
			agency = h.AgencyName
		}
		if agency == "" {
			agency = h.AgencyCode
		}
		r := domain.Record{
			Source:   Name,
			ID:       h.ID,
			Title:    h.Title,
			Agency:   agency,
			Keywords: h.Number,
			URL:      detailURL + h.ID,
		}
		if req.FundingCategories != "" {
			r.Category = f.Category
		}
		if d, err := time.Parse(dateLayout, h.CloseDate); err == nil {
			r.Deadline = d
		}
		out = append(out, r)
	}
	return out, nil
}
