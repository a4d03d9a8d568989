package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bianoble/assetpack/internal/asset"
	"github.com/bianoble/assetpack/internal/mirror"
	"github.com/bianoble/assetpack/internal/precompress"
)

// Config represents an assetpack.yaml configuration file.
type Config struct {
	Version int            `yaml:"version"`
	Base    string         `yaml:"base,omitempty"`
	Ledger  string         `yaml:"ledger,omitempty"`
	Bundles []Bundle       `yaml:"bundles"`
	Mirror  *mirror.Config `yaml:"mirror,omitempty"`

	// Dir is the absolute directory of the loaded file. Relative Base and
	// Ledger paths resolve against it.
	Dir string `yaml:"-"`
}

// Bundle is one output artifact built from the files of a single kind.
type Bundle struct {
	Name          string   `yaml:"name"`
	Kind          string   `yaml:"kind"`
	Files         []string `yaml:"files,omitempty"`
	Include       []string `yaml:"include,omitempty"`
	Version       *bool    `yaml:"version,omitempty"` // nil means true
	Compress      []string `yaml:"compress,omitempty"`
	SkipUnchanged bool     `yaml:"skip_unchanged,omitempty"`
}

// BasePath returns the absolute asset tree root.
func (c *Config) BasePath() string {
	return c.resolve(c.Base, ".")
}

// LedgerPath returns the absolute ledger file path.
func (c *Config) LedgerPath() string {
	return c.resolve(c.Ledger, DefaultLedgerName)
}

func (c *Config) resolve(p, fallback string) string {
	if p == "" {
		p = fallback
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.Dir, p)
}

// Select returns the bundles matching names, in config order. A name
// matches a bundle by "name" (every kind) or by "name.kind". No names
// selects everything.
func (c *Config) Select(names ...string) ([]Bundle, error) {
	if len(names) == 0 {
		return c.Bundles, nil
	}

	var out []Bundle
	matched := make(map[string]bool, len(names))
	for _, b := range c.Bundles {
		for _, n := range names {
			if b.Matches(n) {
				out = append(out, b)
				matched[n] = true
				break
			}
		}
	}
	var unknown []string
	for _, n := range names {
		if !matched[n] {
			unknown = append(unknown, n)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown bundle(s): %s", strings.Join(unknown, ", "))
	}
	return out, nil
}

// Matches reports whether selector names this bundle.
func (b Bundle) Matches(selector string) bool {
	if strings.EqualFold(selector, b.Name) {
		return true
	}
	return strings.EqualFold(selector, b.ID())
}

// ID is "name.kind", unique within a valid config.
func (b Bundle) ID() string {
	return b.Name + "." + strings.ToLower(b.Kind)
}

// AppendVersion reports whether artifacts carry the version stamp.
func (b Bundle) AppendVersion() bool {
	return b.Version == nil || *b.Version
}

// Request converts the bundle into a publish request.
func (b Bundle) Request() (asset.Request, error) {
	kind, err := asset.ParseKind(b.Kind)
	if err != nil {
		return asset.Request{}, err
	}
	return asset.Request{
		Kind:          kind,
		Files:         b.Files,
		Include:       b.Include,
		Name:          b.Name,
		AppendVersion: b.AppendVersion(),
	}, nil
}

// Encodings parses the compress list.
func (b Bundle) Encodings() ([]precompress.Encoding, error) {
	var encs []precompress.Encoding
	for _, c := range b.Compress {
		e, err := precompress.Parse(c)
		if err != nil {
			return nil, err
		}
		encs = append(encs, e)
	}
	return encs, nil
}
