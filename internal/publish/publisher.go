// Package publish runs the compaction pipeline for one bundle: resolve
// inputs, concatenate, compact, write a stamped artifact, record the stamp
// in the ledger and retire the previous artifact.
package publish

import (
	"context"
	"encoding/hex"
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/bianoble/assetpack/internal/aggregate"
	"github.com/bianoble/assetpack/internal/asset"
	"github.com/bianoble/assetpack/internal/ledger"
	"github.com/bianoble/assetpack/internal/logging"
	"github.com/bianoble/assetpack/internal/minify"
	"github.com/bianoble/assetpack/internal/precompress"
	"github.com/bianoble/assetpack/internal/store"
)

// Publisher publishes bundles. Publishes of distinct bundles may run
// concurrently only when Ledger serializes access to its medium; the
// ledger read-modify-write is not atomic across processes.
type Publisher struct {
	Store  store.Store
	Ledger *ledger.Ledger
	Mirror Mirror // optional
	Logger *zap.Logger
	Now    func() time.Time // defaults to time.Now

	// Verbose makes Run log failures at error level instead of debug.
	Verbose bool
}

// sidecarEncodings is every encoding whose stale sidecar is retired along
// with an old artifact, whatever the current options say.
var sidecarEncodings = []precompress.Encoding{precompress.Gzip, precompress.Brotli}

type upload struct {
	name string
	data []byte
}

// Publish runs one publish of req. On failure the returned *Error carries
// the failed stage and one of the Err* kinds; the Result is always non-nil
// and records how far the attempt got. A failed cleanup is reported after
// the new artifact and ledger entry are already in place.
func (p *Publisher) Publish(ctx context.Context, req asset.Request, opts Options) (*Result, error) {
	logger := logging.OrNop(p.Logger).With(
		zap.String("bundle", req.Name),
		zap.String("kind", string(req.Kind)),
	)
	res := &Result{Bundle: req.Name, Kind: req.Kind, Stage: StageIdle}

	fail := func(kind, err error) (*Result, error) {
		e := &Error{Bundle: req.Name, Stage: res.Stage, Kind: kind, Err: err}
		res.FailedAt = res.Stage
		res.Stage = StageFailed
		res.Err = e
		return res, e
	}

	if err := validateRequest(req); err != nil {
		return fail(ErrInvalidRequest, err)
	}

	// Resolve inputs.
	res.Stage = StageResolveInputs
	files, err := p.resolveInputs(req)
	if err != nil {
		return fail(ErrNoInput, err)
	}
	if len(files) == 0 {
		return fail(ErrNoInput, fmt.Errorf("no %s files in %s", req.Kind, req.Kind.InputDir()))
	}
	logger.Debug("resolved inputs", zap.Strings("files", files))

	// Aggregate.
	res.Stage = StageAggregate
	agg := &aggregate.Aggregator{Store: p.Store, Logger: logger}
	buf, sources := agg.Concat(req.Kind.InputDir(), files)
	res.Inputs = sources
	res.InputBytes = len(buf)

	// Compact.
	res.Stage = StageCompact
	compact, err := minify.ForKind(req.Kind)
	if err != nil {
		return fail(ErrInvalidRequest, err)
	}
	out := compact(buf)
	if len(out) == 0 {
		return fail(ErrEmptyResult, nil)
	}
	res.OutputBytes = len(out)
	res.Digest = digest(out)

	key := asset.LedgerKey(req.Name, req.Kind)
	if opts.SkipUnchanged && p.unchanged(key, req, res.Digest) {
		logger.Info("output unchanged, skipping", zap.String("digest", res.Digest))
		res.Skipped = true
		res.Stage = StageDone
		return res, nil
	}

	// Write artifact and sidecars.
	res.Stage = StageWriteArtifact
	if err := ctx.Err(); err != nil {
		return fail(ErrWrite, err)
	}
	stamp := p.now().Unix()
	name := asset.ArtifactName(req.Name, req.Kind, stamp, req.AppendVersion)
	artifact := path.Join(req.Kind.OutputDir(), name)
	if err := p.Store.WriteFile(artifact, out); err != nil {
		return fail(ErrWrite, fmt.Errorf("writing %s: %w", artifact, err))
	}
	res.Artifact = artifact
	res.Stamp = stamp
	uploads := []upload{{name: name, data: out}}

	for _, enc := range opts.Compress {
		data, err := precompress.Encode(enc, out)
		if err != nil {
			return fail(ErrWrite, err)
		}
		sidecar := artifact + enc.Ext()
		if err := p.Store.WriteFile(sidecar, data); err != nil {
			return fail(ErrWrite, fmt.Errorf("writing %s: %w", sidecar, err))
		}
		res.Sidecars = append(res.Sidecars, sidecar)
		uploads = append(uploads, upload{name: name + enc.Ext(), data: data})
	}

	// Mirror.
	if p.Mirror != nil {
		res.Stage = StageMirror
		for _, u := range uploads {
			if err := p.Mirror.Put(ctx, u.name, u.data); err != nil {
				return fail(ErrMirror, fmt.Errorf("uploading %s: %w", u.name, err))
			}
		}
		logger.Debug("mirrored artifact", zap.Int("files", len(uploads)))
	}

	// Record the new stamp.
	res.Stage = StageUpdateLedger
	stampValue := strconv.FormatInt(stamp, 10)
	change, err := p.Ledger.Update(key, stampValue)
	if err != nil {
		return fail(ErrLedgerWrite, err)
	}
	res.Previous = change.Old

	// Retire the previous artifact.
	res.Stage = StageCleanupOld
	switch {
	case !change.Found || change.Old == "":
		logger.Debug("no previous version recorded", zap.String("key", key))
	case !req.AppendVersion:
		logger.Debug("unversioned artifact, nothing to retire")
	case !ledger.IsStamp(change.Old):
		logger.Warn("previous ledger value is not a version stamp, nothing to retire",
			zap.String("key", key), zap.String("value", change.Old))
	case change.Old == stampValue:
		logger.Debug("previous version has the same stamp", zap.String("stamp", stampValue))
	default:
		if err := p.retire(ctx, logger, req, change.Old, opts, res); err != nil {
			return fail(ErrCleanup, err)
		}
	}

	res.Stage = StageDone
	logger.Info("published",
		zap.String("artifact", artifact),
		zap.Int64("stamp", stamp),
		zap.Int("input_bytes", res.InputBytes),
		zap.Int("output_bytes", res.OutputBytes),
	)
	return res, nil
}

// Run publishes req and logs a failure instead of returning it. The error
// stays available on Result.Err.
func (p *Publisher) Run(ctx context.Context, req asset.Request, opts Options) *Result {
	res, err := p.Publish(ctx, req, opts)
	if err != nil {
		level := zap.DebugLevel
		if p.Verbose {
			level = zap.ErrorLevel
		}
		logging.OrNop(p.Logger).Log(level, "publish failed",
			zap.String("bundle", req.Name),
			zap.String("kind", string(req.Kind)),
			zap.Stringer("stage", res.FailedAt),
			zap.Error(err),
		)
	}
	return res
}

// retire deletes the artifact named by the old ledger value. A missing old
// artifact is an error; stale sidecars and mirrored copies are removed on a
// best-effort basis.
func (p *Publisher) retire(ctx context.Context, logger *zap.Logger, req asset.Request, oldValue string, opts Options, res *Result) error {
	oldName := asset.ArtifactNameForValue(req.Name, req.Kind, oldValue)
	oldPath := path.Join(req.Kind.OutputDir(), oldName)

	if !p.Store.Exists(oldPath) {
		return fmt.Errorf("previous artifact %s not found", oldPath)
	}
	if err := p.Store.DeleteFile(oldPath); err != nil {
		return fmt.Errorf("deleting %s: %w", oldPath, err)
	}
	res.Removed = append(res.Removed, oldPath)
	logger.Info("removed previous artifact", zap.String("artifact", oldPath))

	for _, enc := range sidecarEncodings {
		sidecar := oldPath + enc.Ext()
		if !p.Store.Exists(sidecar) {
			continue
		}
		if err := p.Store.DeleteFile(sidecar); err != nil {
			logger.Warn("could not remove stale sidecar", zap.String("file", sidecar), zap.Error(err))
			continue
		}
		res.Removed = append(res.Removed, sidecar)
	}

	if p.Mirror != nil {
		remote := []string{oldName}
		for _, enc := range sidecarEncodings {
			remote = append(remote, oldName+enc.Ext())
		}
		for _, name := range remote {
			if err := p.Mirror.Delete(ctx, name); err != nil {
				logger.Warn("could not remove mirrored copy", zap.String("file", name), zap.Error(err))
			}
		}
	}
	return nil
}

// unchanged reports whether the artifact the ledger currently points at
// has the given digest. Any lookup failure counts as changed.
func (p *Publisher) unchanged(key string, req asset.Request, want string) bool {
	value, found, err := p.Ledger.Get(key)
	if err != nil || !found || value == "" {
		return false
	}
	name := asset.ArtifactNameForValue(req.Name, req.Kind, value)
	if !req.AppendVersion {
		name = asset.ArtifactName(req.Name, req.Kind, 0, false)
	}
	current, err := p.Store.ReadFile(path.Join(req.Kind.OutputDir(), name))
	if err != nil {
		return false
	}
	return digest(current) == want
}

func (p *Publisher) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func validateRequest(req asset.Request) error {
	if req.Name == "" {
		return fmt.Errorf("bundle name is required")
	}
	if _, err := asset.ParseKind(string(req.Kind)); err != nil {
		return err
	}
	if len(req.Files) > 0 && len(req.Include) > 0 {
		return fmt.Errorf("files and include are mutually exclusive")
	}
	return nil
}

func digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
