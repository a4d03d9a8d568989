package publish

import (
	"context"

	"github.com/bianoble/assetpack/internal/aggregate"
	"github.com/bianoble/assetpack/internal/asset"
	"github.com/bianoble/assetpack/internal/precompress"
)

// Mirror receives copies of published files and deletes retired ones.
type Mirror interface {
	Put(ctx context.Context, name string, data []byte) error
	Delete(ctx context.Context, name string) error
}

// Options tunes one publish beyond the request itself.
type Options struct {
	// Compress lists the sidecar encodings written next to the artifact.
	Compress []precompress.Encoding

	// SkipUnchanged stops before writing when the artifact recorded in the
	// ledger already holds identical content.
	SkipUnchanged bool
}

// Result holds the outcome of a publish.
type Result struct {
	Bundle string
	Kind   asset.Kind

	// Stage is StageDone on success, StageFailed otherwise. FailedAt names
	// the stage that failed.
	Stage    Stage
	FailedAt Stage

	Inputs      []aggregate.Source
	InputBytes  int
	OutputBytes int
	Digest      string // BLAKE3 of the compacted output, hex

	Artifact string // path of the new artifact, relative to the store root
	Stamp    int64
	Sidecars []string
	Previous string   // ledger value replaced by Stamp, "" on first publish
	Removed  []string // retired files, relative to the store root

	Skipped bool // output identical to the current artifact; nothing written
	Err     error
}

// OK reports whether the publish reached StageDone.
func (r *Result) OK() bool {
	return r.Stage == StageDone
}
