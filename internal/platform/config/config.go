// Package config reads service settings from environment variables through
// namespaced views, plus an optional YAML policy file (see policy.go)
package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"grantwise/internal/platform/logger"
)

// Conf is a prefixed view over the process environment, e.g. Prefix("CORE_ORACLE_")
type Conf struct{ prefix string }

// New returns the unprefixed root view
func New() Conf { return Conf{} }

// Prefix returns a child view; prefixes concatenate
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// Key returns the fully-qualified variable name for k
func (c Conf) Key(k string) string { return c.prefix + k }

func (c Conf) lookup(k string) string { return strings.TrimSpace(os.Getenv(c.Key(k))) }

// parsed runs parse on a present value; missing values yield def silently and
// malformed ones yield def with a warning naming the variable
func parsed[T any](c Conf, key string, def T, kind string, parse func(string) (T, error)) T {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.Key(key)).Str("value", s).Interface("default", def).
			Msgf("invalid %s; using default", kind)
		return def
	}
	return v
}

// MustString panics when key is unset or blank
func (c Conf) MustString(key string) string {
	v := c.lookup(key)
	if v == "" {
		logger.Get().Panic().Str("key", c.Key(key)).Msg("missing required env")
	}
	return v
}

// MustURL panics unless key holds an absolute URL
func (c Conf) MustURL(key string) *url.URL {
	s := c.MustString(key)
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() {
		logger.Get().Panic().Str("key", c.Key(key)).Str("value", s).Msg("invalid absolute URL")
	}
	return u
}

// MayString returns the value or def
func (c Conf) MayString(key, def string) string {
	if v := c.lookup(key); v != "" {
		return v
	}
	return def
}

// MayInt returns the value or def
func (c Conf) MayInt(key string, def int) int {
	return parsed(c, key, def, "int", strconv.Atoi)
}

// MayFloat64 returns the value or def
func (c Conf) MayFloat64(key string, def float64) float64 {
	return parsed(c, key, def, "float64", func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

// MayBool returns the value or def
func (c Conf) MayBool(key string, def bool) bool {
	return parsed(c, key, def, "bool", strconv.ParseBool)
}

// MayDuration returns the value or def (250ms, 12s, 15m)
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return parsed(c, key, def, "duration", time.ParseDuration)
}

// MayPort returns ":<port>" for a value in 1..65535, def otherwise
func (c Conf) MayPort(key, def string) string {
	return parsed(c, key, def, "port", func(s string) (string, error) {
		s = strings.TrimPrefix(s, ":")
		p, err := strconv.Atoi(s)
		if err != nil || p < 1 || p > 65535 {
			return "", strconv.ErrRange
		}
		return ":" + s, nil
	})
}

// MayCSV splits a comma-separated value, dropping blanks
func (c Conf) MayCSV(key string, def []string) []string {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	out := make([]string, 0, 4)
	for _, p := range strings.Split(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns the value when it is one of allowed (case-insensitive), def when unset; panics otherwise
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.MayString(key, def)
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return strings.ToLower(a)
		}
	}
	if v == def {
		return def
	}
	logger.Get().Panic().Str("key", c.Key(key)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return ""
}
