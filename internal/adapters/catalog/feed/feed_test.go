package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	perr "grantwise/internal/platform/errors"
	"grantwise/internal/services/grants/domain"
)

const rss = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Community Foundation Opportunities</title>
    <link>https://example.org/grants</link>
    <item>
      <title>Neighborhood Arts Microgrant</title>
      <link>https://example.org/grants/arts</link>
      <guid>cf-arts-2026</guid>
      <category>Arts</category>
      <description>&lt;p&gt;Small awards for &lt;b&gt;community&lt;/b&gt; murals&lt;/p&gt;</description>
      <pubDate>Mon, 05 Jan 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Youth Robotics Fund</title>
      <link>https://example.org/grants/robotics</link>
      <category>Education</category>
      <description>Equipment for school robotics teams</description>
      <pubDate>Tue, 06 Jan 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Expired Call</title>
      <link>https://example.org/grants/old</link>
      <pubDate>Mon, 02 Jan 2023 10:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

func serveFeed(t *testing.T, status int, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestFetch(t *testing.T) {
	s := New(Config{Name: "community", URL: serveFeed(t, http.StatusOK, rss), MaxAge: 365 * 24 * time.Hour}, nil)
	s.now = func() time.Time { return time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC) }

	recs, err := s.Fetch(context.Background(), domain.Filters{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2 (old item skipped)", len(recs))
	}
	arts := recs[0]
	if arts.Source != "feed:community" || arts.ID != "cf-arts-2026" || arts.Category != "Arts" {
		t.Fatalf("record = %+v", arts)
	}
	if arts.Description != "Small awards for community murals" {
		t.Fatalf("description = %q", arts.Description)
	}
	if arts.Agency != "Community Foundation Opportunities" {
		t.Fatalf("agency = %q", arts.Agency)
	}
	if recs[1].ID == "" || recs[1].ID == recs[0].ID {
		t.Fatalf("guid-less item needs a stable id, got %q", recs[1].ID)
	}
}

func TestFetchFilters(t *testing.T) {
	s := New(Config{Name: "community", URL: serveFeed(t, http.StatusOK, rss)}, nil)
	recs, err := s.Fetch(context.Background(), domain.Filters{Keywords: "robotics"})
	if err != nil || len(recs) != 1 || recs[0].Title != "Youth Robotics Fund" {
		t.Fatalf("recs = %+v err = %v", recs, err)
	}
}

func TestFetchErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		code   perr.ErrorCode
	}{
		{"http status", http.StatusServiceUnavailable, "", perr.ErrorCodeUpstreamUnavailable},
		{"not a feed", http.StatusOK, "just text, no markup", perr.ErrorCodeUpstreamShape},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := New(Config{Name: "x", URL: serveFeed(t, tc.status, tc.body)}, nil)
			_, err := s.Fetch(context.Background(), domain.Filters{})
			if perr.CodeOf(err) != tc.code {
				t.Fatalf("err = %v, want %v", err, tc.code)
			}
		})
	}
}
