package minify

import (
	"fmt"

	"github.com/bianoble/assetpack/internal/asset"
)

// Func compacts a buffer.
type Func func(src []byte) []byte

// ForKind returns the compactor for an asset kind.
func ForKind(k asset.Kind) (Func, error) {
	switch k {
	case asset.JS:
		return JS, nil
	case asset.CSS:
		return CSS, nil
	default:
		return nil, fmt.Errorf("no compactor for asset kind %q", k)
	}
}
