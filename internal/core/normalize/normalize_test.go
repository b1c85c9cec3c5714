package normalize

import "testing"

func TestTitle(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"identity", "rural development grant", "rural development grant"},
		{"case", "Rural Development GRANT", "rural development grant"},
		{"punctuation", "SBIR: Phase I -- (2024)", "sbir phase i 2024"},
		{"spacing", "  Clean   Energy\tFund ", "clean energy fund"},
		{"line breaks", "Rural\nHousing\r\nGrant", "rural housing grant"},
		{"other controls", "Arts\x00 and\x07 Culture", "arts and culture"},
		{"accents", "Café Résumé Grant", "cafe resume grant"},
		{"fullwidth", "ＮＩＨ R01", "nih r01"},
		{"zero width", "Arts\u200b and Culture", "arts and culture"},
		{"invalid utf8", string([]byte{'a', 0xff, 'b'}), "ab"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Title(tc.in); got != tc.want {
				t.Fatalf("Title(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestAgency(t *testing.T) {
	if got := Agency("  Department  of Education "); got != "department of education" {
		t.Fatalf("Agency = %q", got)
	}
	if got := Agency("Department\tof\nAgriculture"); got != "department of agriculture" {
		t.Fatalf("Agency splits on control whitespace, got %q", got)
	}
	if got := Agency("U.S. EPA"); got != "u.s. epa" {
		t.Fatalf("Agency keeps punctuation, got %q", got)
	}
}

func TestTitleConcurrent(t *testing.T) {
	done := make(chan string, 8)
	for range 8 {
		go func() { done <- Title("Environmental Innovation Grant 2024") }()
	}
	for range 8 {
		if got := <-done; got != "environmental innovation grant 2024" {
			t.Fatalf("got %q", got)
		}
	}
}
