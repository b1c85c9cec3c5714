// Package raw reads environment variables during bootstrap. It must not import
// the logger, which itself is configured through this package
package raw

import (
	"os"
	"strconv"
	"strings"
)

// Conf is a prefixed environment view without logging
type Conf struct{ prefix string }

// New returns the unprefixed root view
func New() Conf { return Conf{} }

// Prefix returns a child view, e.g. Prefix("LOG_")
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) get(k string) string { return strings.TrimSpace(os.Getenv(c.prefix + k)) }

// Get returns the value or def
func (c Conf) Get(key, def string) string {
	if v := c.get(key); v != "" {
		return v
	}
	return def
}

// GetBool accepts 1/true/yes/on; any other non-empty value is false
func (c Conf) GetBool(key string, def bool) bool {
	v := strings.ToLower(c.get(key))
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// GetInt returns a non-negative integer or def
func (c Conf) GetInt(key string, def int) int {
	n, err := strconv.Atoi(c.get(key))
	if err != nil || n < 0 {
		return def
	}
	return n
}
