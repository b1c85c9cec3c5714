package config

import (
	"sort"
	"strings"
	"time"

	perr "grantwise/internal/platform/errors"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// PolicyEnvPrefix overlays the policy file, e.g.
// GRANTWISE_POLICY_CLASSES__STRICT__LIMIT=20 or GRANTWISE_POLICY_SOURCE_TIMEOUT=10s
const PolicyEnvPrefix = "GRANTWISE_POLICY_"

// RateClass is a named admission preset
type RateClass struct {
	Limit  int           `koanf:"limit"`
	Window time.Duration `koanf:"window"`
}

// FeedSource is one RSS or Atom catalog to search
type FeedSource struct {
	Name   string        `koanf:"name"`
	URL    string        `koanf:"url"`
	Agency string        `koanf:"agency"`
	MaxAge time.Duration `koanf:"max_age"`
}

// Policy is the tunable request policy: admission presets, catalog timeouts
// and the feed catalogs
type Policy struct {
	Classes        map[string]RateClass     `koanf:"classes"`
	SourceTimeout  time.Duration            `koanf:"source_timeout"`
	SourceTimeouts map[string]time.Duration `koanf:"source_timeouts"`
	Feeds          []FeedSource             `koanf:"feeds"`
}

// Built-in class names
const (
	ClassStrict   = "strict"
	ClassStandard = "standard"
	ClassUpload   = "upload"
	ClassAuth     = "auth"
)

// DefaultPolicy returns the stock presets
func DefaultPolicy() Policy {
	return Policy{
		Classes: map[string]RateClass{
			ClassStrict:   {Limit: 10, Window: time.Minute},
			ClassStandard: {Limit: 100, Window: time.Minute},
			ClassUpload:   {Limit: 5, Window: time.Minute},
			ClassAuth:     {Limit: 5, Window: 15 * time.Minute},
		},
		SourceTimeout:  12 * time.Second,
		SourceTimeouts: map[string]time.Duration{},
	}
}

// LoadPolicy layers defaults, the YAML file at path (skipped when empty), then
// GRANTWISE_POLICY_* env. Keys nest with "__" in env names
func LoadPolicy(path string) (Policy, error) {
	k := koanf.New(".")
	if err := seedDefaults(k, DefaultPolicy()); err != nil {
		return Policy{}, perr.Wrap(err, perr.ErrorCodeUnknown, "seed policy defaults")
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Policy{}, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "load policy %s", path)
		}
	}

	envProvider := env.Provider(PolicyEnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, PolicyEnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Policy{}, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "load policy env")
	}

	p := DefaultPolicy()
	if err := k.UnmarshalWithConf("", &p, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Policy{}, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "decode policy")
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// seedDefaults writes the stock presets into k key by key so a file or env
// layer that names one field of a class keeps the rest
func seedDefaults(k *koanf.Koanf, def Policy) error {
	for name, c := range def.Classes {
		if err := k.Set("classes."+name+".limit", c.Limit); err != nil {
			return err
		}
		if err := k.Set("classes."+name+".window", c.Window.String()); err != nil {
			return err
		}
	}
	return k.Set("source_timeout", def.SourceTimeout.String())
}

// Validate rejects presets that could never admit anything
func (p Policy) Validate() error {
	for name, c := range p.Classes {
		if c.Limit <= 0 {
			return perr.Validationf("classes."+name+".limit", "rate class %q needs a positive limit", name)
		}
		if c.Window <= 0 {
			return perr.Validationf("classes."+name+".window", "rate class %q needs a positive window", name)
		}
	}
	if p.SourceTimeout <= 0 {
		return perr.Validationf("source_timeout", "source timeout must be positive")
	}
	for i, f := range p.Feeds {
		if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.URL) == "" {
			return perr.Validationf("feeds", "feed %d needs a name and a url", i)
		}
	}
	return nil
}

// Class looks up a preset by name (case-insensitive)
func (p Policy) Class(name string) (RateClass, bool) {
	c, ok := p.Classes[strings.ToLower(name)]
	return c, ok
}

// ClassNames returns preset names in sorted order
func (p Policy) ClassNames() []string {
	out := make([]string, 0, len(p.Classes))
	for n := range p.Classes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// TimeoutFor returns the per-source override or the shared default
func (p Policy) TimeoutFor(source string) time.Duration {
	if d, ok := p.SourceTimeouts[strings.ToLower(source)]; ok && d > 0 {
		return d
	}
	return p.SourceTimeout
}
