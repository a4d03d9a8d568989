package publish

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/bianoble/assetpack/internal/asset"
)

// resolveInputs returns the ordered input list for req. An explicit list
// is used as given. Otherwise every file in the input directory carrying
// the kind's extension is taken, filtered by the include patterns when
// present.
func (p *Publisher) resolveInputs(req asset.Request) ([]string, error) {
	if len(req.Files) > 0 {
		return req.Files, nil
	}

	names, err := p.Store.ListFiles(req.Kind.InputDir())
	if err != nil {
		return nil, err
	}

	var matching []string
	for _, name := range names {
		if req.Kind.Matches(name) {
			matching = append(matching, name)
		}
	}
	if len(req.Include) == 0 {
		return matching, nil
	}
	return filterPatterns(matching, req.Include)
}

// filterPatterns keeps names matching any pattern. Names are grouped by the
// first pattern they match, in pattern order, so "vendor-*.js" listed
// before "*.js" puts vendor files first.
func filterPatterns(names, patterns []string) ([]string, error) {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern %q", pattern)
		}
		for _, name := range names {
			if seen[name] {
				continue
			}
			if ok, _ := doublestar.Match(pattern, name); ok {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out, nil
}
