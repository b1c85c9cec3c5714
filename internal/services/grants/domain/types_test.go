package domain

import (
	"reflect"
	"testing"
)

func TestWithDefaults(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{0, DefaultLimit}, {-1, DefaultLimit}, {10, 10}, {500, MaxLimit},
	}
	for _, tc := range cases {
		if got := (Filters{Limit: tc.in}).WithDefaults().Limit; got != tc.want {
			t.Fatalf("limit %d -> %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestTerms(t *testing.T) {
	got := Filters{Keywords: "Clean Energy, solar\tbattery"}.Terms()
	want := []string{"clean", "energy", "solar", "battery"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Terms = %v", got)
	}
}

func TestMatches(t *testing.T) {
	r := Record{
		Title: "Clean Energy Innovation Fund", Category: "Energy",
		AmountMin: 500_000, AmountMax: 5_000_000,
		Keywords: "clean energy, solar, wind",
	}
	cases := []struct {
		name string
		f    Filters
		want bool
	}{
		{"no filters", Filters{}, true},
		{"category fold", Filters{Category: "energy"}, true},
		{"category miss", Filters{Category: "Arts"}, false},
		{"range overlaps", Filters{AmountMin: 1_000_000, AmountMax: 2_000_000}, true},
		{"range above", Filters{AmountMin: 6_000_000}, false},
		{"range below", Filters{AmountMax: 100_000}, false},
		{"keyword hit", Filters{Keywords: "arts, solar"}, true},
		{"keyword miss", Filters{Keywords: "theater"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.f.Matches(r); got != tc.want {
				t.Fatalf("Matches = %v, want %v", got, tc.want)
			}
		})
	}

	noAmount := Record{Title: "Open call"}
	if !(Filters{AmountMin: 1_000_000}).Matches(noAmount) {
		t.Fatalf("records without amounts should pass the amount filter")
	}
}
