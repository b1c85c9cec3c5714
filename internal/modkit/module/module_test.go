package module

import (
	"strings"
	"testing"

	phttp "grantwise/internal/platform/net/http"
)

type scorer interface{ Score() int }

type fixedScorer int

func (f fixedScorer) Score() int { return int(f) }

type fakeModule struct {
	name  string
	ports any
}

func (m fakeModule) Name() string             { return m.name }
func (m fakeModule) Ports() any               { return m.ports }
func (m fakeModule) MountRoutes(phttp.Router) {}

func TestPortsOf(t *testing.T) {
	type bundle struct {
		Scorer scorer
		Count  int
	}
	type hidden struct {
		scorer scorer
	}

	cases := []struct {
		name   string
		ports  any
		want   int
		wantOK bool
	}{
		{"nil ports", nil, 0, false},
		{"direct", scorer(fixedScorer(42)), 42, true},
		{"struct field", bundle{Scorer: fixedScorer(7)}, 7, true},
		{"pointer to struct", &bundle{Scorer: fixedScorer(9)}, 9, true},
		{"unexported field ignored", hidden{scorer: fixedScorer(1)}, 0, false},
		{"not a struct", 12, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := PortsOf[scorer](fakeModule{name: tc.name, ports: tc.ports})
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && got.Score() != tc.want {
				t.Fatalf("score = %d, want %d", got.Score(), tc.want)
			}
		})
	}
}

func TestMustPortsOf(t *testing.T) {
	m := fakeModule{name: "predict", ports: scorer(fixedScorer(3))}
	if got := MustPortsOf[scorer](m).Score(); got != 3 {
		t.Fatalf("score = %d", got)
	}

	defer func() {
		r := recover()
		msg, _ := r.(string)
		if !strings.Contains(msg, "quota") {
			t.Fatalf("panic should name the module, got %v", r)
		}
	}()
	MustPortsOf[scorer](fakeModule{name: "quota"})
}
