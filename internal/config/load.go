package config

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bianoble/assetpack/internal/asset"
	"github.com/bianoble/assetpack/internal/precompress"
)

var bundleNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Load reads and validates an assetpack configuration file. Files ending
// in .json or .jsonc may carry comments and trailing commas.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg, err := Parse(data, isJSON(path))
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolving config directory: %w", err)
	}
	cfg.Dir = dir

	if errs := Validate(cfg); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return cfg, nil
}

// Parse decodes config bytes without validating them.
func Parse(data []byte, jsonInput bool) (*Config, error) {
	if jsonInput {
		data = jsonc.ToJSON(data)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func isJSON(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".json", ".jsonc":
		return true
	}
	return false
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks a Config for semantic correctness.
// Returns a list of validation error messages (empty if valid).
func Validate(cfg *Config) []string {
	var errs []string

	if cfg.Version != 1 {
		errs = append(errs, fmt.Sprintf("unsupported version %d — only version 1 is supported", cfg.Version))
	}

	if len(cfg.Bundles) == 0 {
		errs = append(errs, "at least one bundle is required")
	}

	seen := make(map[string]bool)
	for i, b := range cfg.Bundles {
		prefix := fmt.Sprintf("bundle[%d]", i)
		if b.Name != "" {
			prefix = fmt.Sprintf("bundle '%s'", b.Name)
		}

		switch {
		case b.Name == "":
			errs = append(errs, fmt.Sprintf("%s: 'name' is required", prefix))
		case !bundleNamePattern.MatchString(b.Name):
			errs = append(errs, fmt.Sprintf("%s: invalid name — use letters, digits and underscores only", prefix))
		}

		kind, err := asset.ParseKind(b.Kind)
		switch {
		case b.Kind == "":
			errs = append(errs, fmt.Sprintf("%s: 'kind' is required — must be one of: js, css", prefix))
		case err != nil:
			errs = append(errs, fmt.Sprintf("%s: %v", prefix, err))
		case b.Name != "":
			key := asset.LedgerKey(b.Name, kind)
			if seen[key] {
				errs = append(errs, fmt.Sprintf("%s: duplicate bundle for kind '%s'", prefix, kind))
			}
			seen[key] = true
		}

		if len(b.Files) > 0 && len(b.Include) > 0 {
			errs = append(errs, fmt.Sprintf("%s: 'files' and 'include' are mutually exclusive — use one or the other", prefix))
		}
		for _, f := range b.Files {
			if !isLocalName(f) {
				errs = append(errs, fmt.Sprintf("%s: file '%s' must be relative to the %s input directory", prefix, f, b.Kind))
			}
		}
		for _, c := range b.Compress {
			if _, err := precompress.Parse(c); err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", prefix, err))
			}
		}
	}

	if cfg.Mirror != nil {
		if err := cfg.Mirror.Validate(); err != nil {
			errs = append(errs, err.Error())
		}
	}

	return errs
}

// isLocalName reports whether name stays inside the directory it is joined
// to.
func isLocalName(name string) bool {
	if name == "" || path.IsAbs(name) || filepath.IsAbs(name) {
		return false
	}
	clean := path.Clean(filepath.ToSlash(name))
	return clean != ".." && !strings.HasPrefix(clean, "../")
}
