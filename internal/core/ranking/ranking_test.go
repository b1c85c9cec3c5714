package ranking

import (
	"strings"
	"testing"
	"time"
)

type grant struct {
	source, id, title, agency string
	amount                    float64
	rate                      float64
	deadline                  time.Time
}

func keyOf(g grant) Key { return KeyOf(g.title, g.agency, g.amount, g.amount) }

var now = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

func TestDedupeFirstWins(t *testing.T) {
	in := []grant{
		{source: "grantsgov", id: "a-1", title: "Rural Development Grant", agency: "USDA", amount: 500000},
		{source: "featured", id: "f-8", title: "rural development grant!", agency: " usda ", amount: 500000},
		{source: "feed", id: "r-3", title: "Rural Development Grant", agency: "USDA", amount: 250000},
		{source: "feed", id: "r-4", title: "Rural Development Grant", agency: "HUD", amount: 500000},
	}
	out := Dedupe(in, keyOf)
	if len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}
	if out[0].id != "a-1" || out[1].id != "r-3" || out[2].id != "r-4" {
		t.Fatalf("order/ids = %v %v %v", out[0].id, out[1].id, out[2].id)
	}
}

func TestDedupeAcrossLineBreaks(t *testing.T) {
	in := []grant{
		{source: "grantsgov", id: "g-1", title: "Rural Housing Grant", agency: "Department of Agriculture", amount: 5000},
		{source: "feed", id: "r-9", title: "Rural\nHousing Grant", agency: "Department\tof Agriculture", amount: 5000},
	}
	if keyOf(in[0]) != keyOf(in[1]) {
		t.Fatalf("keys differ: %+v vs %+v", keyOf(in[0]), keyOf(in[1]))
	}
	out := Dedupe(in, keyOf)
	if len(out) != 1 || out[0].id != "g-1" {
		t.Fatalf("out = %+v", out)
	}
}

func TestDedupeEmpty(t *testing.T) {
	if out := Dedupe[grant](nil, keyOf); len(out) != 0 {
		t.Fatalf("out = %v", out)
	}
}

func TestScore(t *testing.T) {
	cases := []struct {
		name     string
		rate     float64
		deadline time.Time
		want     float64
	}{
		{"no deadline", 30, time.Time{}, 60},
		{"past deadline", 30, now.Add(-48 * time.Hour), 60},
		{"ten days", 30, now.Add(10*24*time.Hour + time.Hour), 60 + 10*DeadlineWeight},
		{"partial day floors", 0, now.Add(23 * time.Hour), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Score(tc.rate, tc.deadline, now); got != tc.want {
				t.Fatalf("Score = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRank(t *testing.T) {
	items := []grant{
		{id: "low", rate: 15.3, deadline: now.AddDate(0, 0, 180)},
		{id: "high", rate: 32.5, deadline: now.AddDate(0, 0, 30)},
		{id: "tie-b", source: "b", rate: 20},
		{id: "tie-a", source: "a", rate: 20},
		{id: "soon", rate: 31.2, deadline: now.AddDate(0, 0, 1)},
	}
	score := func(g grant) float64 { return Score(g.rate, g.deadline, now) }
	tie := func(a, b grant) int { return strings.Compare(a.source+a.id, b.source+b.id) }

	Rank(items, score, tie)
	var got []string
	for _, it := range items {
		got = append(got, it.id)
	}
	want := "high,soon,tie-a,tie-b,low"
	if strings.Join(got, ",") != want {
		t.Fatalf("order = %v, want %s", got, want)
	}
}

func TestRankDeadlineBreaksEqualRates(t *testing.T) {
	items := []grant{
		{id: "closing", rate: 20, deadline: now.AddDate(0, 0, 2)},
		{id: "open", rate: 20, deadline: now.AddDate(0, 0, 90)},
	}
	Rank(items, func(g grant) float64 { return Score(g.rate, g.deadline, now) }, nil)
	if items[0].id != "open" {
		t.Fatalf("grant with more runway should rank first, got %s", items[0].id)
	}
}
