package config

import (
	"testing"
	"time"

	kit "grantwise/internal/platform/testkit"
)

func TestPrefixAndKey(t *testing.T) {
	oracle := New().Prefix("CORE_").Prefix("ORACLE_")
	if got := oracle.Key("TIMEOUT"); got != "CORE_ORACLE_TIMEOUT" {
		t.Fatalf("Key() = %q", got)
	}
}

func TestMustString(t *testing.T) {
	c := New().Prefix("APP_")
	t.Setenv("APP_NAME", "  grantwise ")
	if got := c.MustString("NAME"); got != "grantwise" {
		t.Fatalf("MustString = %q", got)
	}
	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestMustURL(t *testing.T) {
	c := New().Prefix("U_")
	t.Setenv("U_OK", "https://api.openai.com/v1")
	if u := c.MustURL("OK"); u.Host != "api.openai.com" {
		t.Fatalf("MustURL host = %q", u.Host)
	}
	t.Setenv("U_REL", "/relative")
	kit.MustPanic(t, func() { _ = c.MustURL("REL") })
}

func TestMayAccessors(t *testing.T) {
	c := New().Prefix("M_")
	t.Setenv("M_INT", "42")
	t.Setenv("M_BADINT", "x")
	t.Setenv("M_F", "0.5")
	t.Setenv("M_B", "true")
	t.Setenv("M_D", "12s")
	t.Setenv("M_BADD", "soon")
	t.Setenv("M_PORT", "8080")
	t.Setenv("M_BADPORT", "70000")
	t.Setenv("M_CSV", " a, ,b ")
	t.Setenv("M_EMPTYCSV", " , ")

	if got := c.MayString("MISSING", "def"); got != "def" {
		t.Fatalf("MayString = %q", got)
	}
	if got := c.MayInt("INT", 1); got != 42 {
		t.Fatalf("MayInt = %d", got)
	}
	if got := c.MayInt("BADINT", 7); got != 7 {
		t.Fatalf("MayInt invalid = %d", got)
	}
	if got := c.MayFloat64("F", 0); got != 0.5 {
		t.Fatalf("MayFloat64 = %v", got)
	}
	if !c.MayBool("B", false) {
		t.Fatalf("MayBool want true")
	}
	if got := c.MayDuration("D", 0); got != 12*time.Second {
		t.Fatalf("MayDuration = %v", got)
	}
	if got := c.MayDuration("BADD", time.Second); got != time.Second {
		t.Fatalf("MayDuration invalid = %v", got)
	}
	if got := c.MayPort("PORT", ":4000"); got != ":8080" {
		t.Fatalf("MayPort = %q", got)
	}
	if got := c.MayPort("BADPORT", ":4000"); got != ":4000" {
		t.Fatalf("MayPort invalid = %q", got)
	}
	if got := c.MayCSV("CSV", nil); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("MayCSV = %#v", got)
	}
	if got := c.MayCSV("EMPTYCSV", []string{"d"}); len(got) != 1 || got[0] != "d" {
		t.Fatalf("MayCSV empty = %#v", got)
	}
}

func TestMayEnum(t *testing.T) {
	c := New().Prefix("E_")
	if got := c.MayEnum("MODE", "oracle", "oracle", "heuristic"); got != "oracle" {
		t.Fatalf("default = %q", got)
	}
	t.Setenv("E_MODE", "HEURISTIC")
	if got := c.MayEnum("MODE", "oracle", "oracle", "heuristic"); got != "heuristic" {
		t.Fatalf("enum = %q", got)
	}
	t.Setenv("E_MODE", "bogus")
	kit.MustPanic(t, func() { _ = c.MayEnum("MODE", "oracle", "oracle", "heuristic") })
}
