// Package feed reads funding opportunities from RSS or Atom feeds, such as
// the Grants.gov new-opportunity feeds or a foundation's announcements
package feed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"grantwise/internal/core/version"
	perr "grantwise/internal/platform/errors"
	pstrings "grantwise/internal/platform/strings"
	"grantwise/internal/services/grants/domain"

	"github.com/mmcdole/gofeed"
)

// Config names one feed
type Config struct {
	// Name is reported in outcomes as "feed:<name>"
	Name string
	URL  string

	// Agency is used when items carry no author
	Agency string

	// MaxAge skips items published longer ago than this; 0 keeps all
	MaxAge time.Duration
}

// Source is one feed
type Source struct {
	cfg    Config
	parser *gofeed.Parser
	now    func() time.Time
}

// New builds a Source; hc may be nil
func New(cfg Config, hc *http.Client) *Source {
	p := gofeed.NewParser()
	p.UserAgent = version.UserAgent()
	if hc != nil {
		p.Client = hc
	}
	return &Source{cfg: cfg, parser: p, now: time.Now}
}

// Name implements domain.Source
func (s *Source) Name() string { return "feed:" + s.cfg.Name }

// Fetch implements domain.Source
func (s *Source) Fetch(ctx context.Context, f domain.Filters) ([]domain.Record, error) {
	fd, err := s.parser.ParseURLWithContext(s.cfg.URL, ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, perr.FromUpstream(ctx.Err(), "feed "+s.cfg.Name)
		}
		var hs gofeed.HTTPError
		if errors.As(err, &hs) {
			return nil, perr.Newf(perr.ErrorCodeUpstreamUnavailable, "feed %s: status %d", s.cfg.Name, hs.StatusCode)
		}
		if errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
			return nil, perr.Wrap(err, perr.ErrorCodeUpstreamShape, "feed "+s.cfg.Name)
		}
		return nil, perr.FromUpstream(err, "feed "+s.cfg.Name)
	}

	agency := s.cfg.Agency
	if agency == "" {
		agency = fd.Title
	}
	cutoff := time.Time{}
	if s.cfg.MaxAge > 0 {
		cutoff = s.now().Add(-s.cfg.MaxAge)
	}

	out := make([]domain.Record, 0, len(fd.Items))
	for _, it := range fd.Items {
		if it.Title == "" {
			continue
		}
		if pub := published(it); !cutoff.IsZero() && !pub.IsZero() && pub.Before(cutoff) {
			continue
		}
		desc := it.Description
		if desc == "" {
			desc = it.Content
		}
		r := domain.Record{
			Source:      s.Name(),
			ID:          itemID(it),
			Title:       strings.TrimSpace(it.Title),
			Agency:      agency,
			Description: pstrings.Clip(stripTags(desc), 500),
			Keywords:    strings.Join(it.Categories, ", "),
			URL:         it.Link,
		}
		if len(it.Authors) > 0 && it.Authors[0] != nil && it.Authors[0].Name != "" {
			r.Agency = it.Authors[0].Name
		}
		if len(it.Categories) > 0 {
			r.Category = it.Categories[0]
		}
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func published(it *gofeed.Item) time.Time {
	switch {
	case it.PublishedParsed != nil:
		return *it.PublishedParsed
	case it.UpdatedParsed != nil:
		return *it.UpdatedParsed
	}
	return time.Time{}
}

// itemID prefers the guid, then a digest of the link
func itemID(it *gofeed.Item) string {
	if it.GUID != "" {
		return it.GUID
	}
	h := sha256.Sum256([]byte(it.Link + "\x00" + it.Title))
	return hex.EncodeToString(h[:12])
}

func stripTags(s string) string {
	var b strings.Builder
	in := false
	for _, r := range s {
		switch {
		case r == '<':
			in = true
		case r == '>':
			in = false
		case !in:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
