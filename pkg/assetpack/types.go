package assetpack

import (
	"github.com/bianoble/assetpack/internal/aggregate"
	"github.com/bianoble/assetpack/internal/asset"
	"github.com/bianoble/assetpack/internal/precompress"
	"github.com/bianoble/assetpack/internal/publish"
)

// Type aliases re-export the internal types that appear in the public API.

type Kind = asset.Kind
type Request = asset.Request
type Result = publish.Result
type Stage = publish.Stage
type Error = publish.Error
type Source = aggregate.Source
type Encoding = precompress.Encoding
type PublishOptions = publish.Options
type Mirror = publish.Mirror

const (
	JS  = asset.JS
	CSS = asset.CSS

	Gzip   = precompress.Gzip
	Brotli = precompress.Brotli
)

// Failure kinds, matched with errors.Is against Result.Err.
var (
	ErrInvalidRequest = publish.ErrInvalidRequest
	ErrNoInput        = publish.ErrNoInput
	ErrEmptyResult    = publish.ErrEmptyResult
	ErrWrite          = publish.ErrWrite
	ErrMirror         = publish.ErrMirror
	ErrLedgerWrite    = publish.ErrLedgerWrite
	ErrCleanup        = publish.ErrCleanup
)

// BuildResult collects the outcome of publishing several bundles.
type BuildResult struct {
	Results []*Result
}

// Failed returns the results that did not complete.
func (b *BuildResult) Failed() []*Result {
	var out []*Result
	for _, r := range b.Results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// Version describes one ledger entry and the artifact it points at.
type Version struct {
	Key      string
	Value    string
	Bundle   string // "name.kind" of the configured bundle, if any
	Artifact string // path relative to the base directory, "" if unknown
	Exists   bool
	Size     int64
}
