// Package assetpack provides the public Go library API for assetpack.
//
// assetpack concatenates and compacts JavaScript and CSS sources into
// versioned artifacts, records the current version of each bundle in a
// KEY=VALUE ledger and removes the artifact of the previous version.
//
// # Basic Usage
//
//	client, err := assetpack.New(ctx, assetpack.Options{
//	    ConfigPath: "assetpack.yaml",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Publish every configured bundle
//	build, err := client.Publish(ctx)
//
//	// Publish an ad-hoc bundle
//	res, err := client.PublishRequest(ctx, assetpack.Request{
//	    Kind: assetpack.JS, Name: "main", AppendVersion: true,
//	}, assetpack.PublishOptions{})
package assetpack

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bianoble/assetpack/internal/asset"
	"github.com/bianoble/assetpack/internal/config"
	"github.com/bianoble/assetpack/internal/ledger"
	"github.com/bianoble/assetpack/internal/logging"
	"github.com/bianoble/assetpack/internal/minify"
	"github.com/bianoble/assetpack/internal/mirror"
	"github.com/bianoble/assetpack/internal/publish"
	"github.com/bianoble/assetpack/internal/store"
	"github.com/bianoble/assetpack/internal/watch"
)

// Options configures an assetpack client.
type Options struct {
	// ConfigPath is the config file. If empty, the config is discovered
	// (ASSETPACK_CONFIG, then assetpack.yaml and friends in WorkDir); a
	// missing config then yields an empty one usable for ad-hoc requests.
	ConfigPath string

	// WorkDir is where discovery looks. Default: the current directory.
	WorkDir string

	// BaseDir overrides the config's base directory.
	BaseDir string

	// LedgerPath overrides the config's ledger path.
	LedgerPath string

	// Mirror overrides the configured S3 mirror.
	Mirror Mirror

	// NoMirror disables mirroring even when the config declares one.
	NoMirror bool

	// Verbose reports failed publishes through the logger at error level.
	Verbose bool

	Logger *zap.Logger
	Now    func() time.Time
}

// Client is the main entry point for the assetpack library.
type Client struct {
	cfg        *config.Config
	store      *store.FS
	ledger     *ledger.Ledger
	ledgerPath string
	publisher  *publish.Publisher
	logger     *zap.Logger
}

// New creates a Client, loading the configuration and, when one is
// configured, connecting the S3 mirror.
func New(ctx context.Context, opts Options) (*Client, error) {
	logger := logging.OrNop(opts.Logger)

	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	base := cfg.BasePath()
	if opts.BaseDir != "" {
		base = opts.BaseDir
	}
	ledgerPath := cfg.LedgerPath()
	if opts.LedgerPath != "" {
		ledgerPath = opts.LedgerPath
	}

	fs := store.NewFS(base)
	led := ledger.New(&ledger.File{Path: ledgerPath})
	pub := &publish.Publisher{
		Store:   fs,
		Ledger:  led,
		Logger:  logger,
		Now:     opts.Now,
		Verbose: opts.Verbose,
	}

	switch {
	case opts.NoMirror:
	case opts.Mirror != nil:
		pub.Mirror = opts.Mirror
	case cfg.Mirror != nil:
		m, err := mirror.NewS3(ctx, *cfg.Mirror)
		if err != nil {
			return nil, fmt.Errorf("initializing mirror: %w", err)
		}
		pub.Mirror = m
	}

	logger.Debug("client ready",
		zap.String("base", base),
		zap.String("ledger", ledgerPath),
		zap.Int("bundles", len(cfg.Bundles)),
		zap.Bool("mirror", pub.Mirror != nil),
	)

	return &Client{
		cfg:        cfg,
		store:      fs,
		ledger:     led,
		ledgerPath: ledgerPath,
		publisher:  pub,
		logger:     logger,
	}, nil
}

func loadConfig(opts Options) (*config.Config, error) {
	dir := opts.WorkDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving working directory: %w", err)
		}
		dir = wd
	}

	p, err := config.Discover(opts.ConfigPath, dir)
	if errors.Is(err, os.ErrNotExist) {
		return &config.Config{Version: 1, Dir: dir}, nil
	}
	if err != nil {
		return nil, err
	}
	return config.Load(p)
}

// Config returns the loaded configuration.
func (c *Client) Config() *config.Config {
	return c.cfg
}

// BaseDir returns the asset tree root.
func (c *Client) BaseDir() string {
	return c.store.Root
}

// LedgerPath returns the version ledger file.
func (c *Client) LedgerPath() string {
	return c.ledgerPath
}

// Mirrored reports whether publishes are copied to a remote mirror.
func (c *Client) Mirrored() bool {
	return c.publisher.Mirror != nil
}

// Publish publishes the named bundles ("name" or "name.kind"), or every
// configured bundle when none are named. Individual failures are logged
// and reported in the BuildResult; the error covers selection only.
func (c *Client) Publish(ctx context.Context, names ...string) (*BuildResult, error) {
	if len(c.cfg.Bundles) == 0 {
		return nil, errors.New("no bundles configured")
	}
	bundles, err := c.cfg.Select(names...)
	if err != nil {
		return nil, err
	}
	return c.publishBundles(ctx, bundles), nil
}

func (c *Client) publishBundles(ctx context.Context, bundles []config.Bundle) *BuildResult {
	build := &BuildResult{}
	for _, b := range bundles {
		req, err := b.Request()
		if err != nil {
			build.Results = append(build.Results, failed(b.Name, err))
			continue
		}
		encs, err := b.Encodings()
		if err != nil {
			build.Results = append(build.Results, failed(b.Name, err))
			continue
		}
		opts := PublishOptions{Compress: encs, SkipUnchanged: b.SkipUnchanged}
		build.Results = append(build.Results, c.publisher.Run(ctx, req, opts))
	}
	return build
}

func failed(name string, err error) *Result {
	e := &publish.Error{Bundle: name, Stage: publish.StageIdle, Kind: publish.ErrInvalidRequest, Err: err}
	return &Result{Bundle: name, Stage: publish.StageFailed, FailedAt: publish.StageIdle, Err: e}
}

// PublishRequest publishes an ad-hoc request that need not appear in the
// config.
func (c *Client) PublishRequest(ctx context.Context, req Request, opts PublishOptions) (*Result, error) {
	return c.publisher.Publish(ctx, req, opts)
}

// Versions lists the ledger entries with the artifact each one names.
func (c *Client) Versions() ([]Version, error) {
	entries, err := c.ledger.List()
	if err != nil {
		return nil, err
	}

	bundles := make(map[string]config.Bundle, len(c.cfg.Bundles))
	for _, b := range c.cfg.Bundles {
		if kind, err := asset.ParseKind(b.Kind); err == nil {
			bundles[asset.LedgerKey(b.Name, kind)] = b
		}
	}

	versions := make([]Version, 0, len(entries))
	for _, e := range entries {
		v := Version{Key: e.Key, Value: e.Value}
		name, kind, ok := splitKey(e.Key)
		appendVersion := true
		if b, found := bundles[e.Key]; found {
			v.Bundle = b.ID()
			appendVersion = b.AppendVersion()
		}
		if ok && ledger.IsStamp(e.Value) {
			file := asset.ArtifactNameForValue(name, kind, e.Value)
			if !appendVersion {
				file = asset.ArtifactName(name, kind, 0, false)
			}
			v.Artifact = path.Join(kind.OutputDir(), file)
			if data, err := c.store.ReadFile(v.Artifact); err == nil {
				v.Exists = true
				v.Size = int64(len(data))
			}
		}
		versions = append(versions, v)
	}
	return versions, nil
}

// splitKey reverses asset.LedgerKey.
func splitKey(key string) (string, asset.Kind, bool) {
	i := strings.LastIndexByte(key, '_')
	if i <= 0 {
		return "", "", false
	}
	kind, err := asset.ParseKind(key[i+1:])
	if err != nil {
		return "", "", false
	}
	return key[:i], kind, true
}

// InputDirs returns the input directories of the configured bundles.
func (c *Client) InputDirs() []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, b := range c.cfg.Bundles {
		kind, err := asset.ParseKind(b.Kind)
		if err != nil {
			continue
		}
		dir := c.store.Abs(kind.InputDir())
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// Watch republishes bundles whenever their input directory changes, until
// ctx is canceled. onBuild, if non-nil, receives each rebuild's result.
func (c *Client) Watch(ctx context.Context, debounce time.Duration, onBuild func(*BuildResult)) error {
	w := &watch.Watcher{
		Dirs:     c.InputDirs(),
		Debounce: debounce,
		Logger:   c.logger,
		OnChange: func(ctx context.Context, dirs []string) {
			changed := make(map[string]bool, len(dirs))
			for _, d := range dirs {
				changed[d] = true
			}
			var bundles []config.Bundle
			for _, b := range c.cfg.Bundles {
				kind, err := asset.ParseKind(b.Kind)
				if err == nil && changed[c.store.Abs(kind.InputDir())] {
					bundles = append(bundles, b)
				}
			}
			if len(bundles) == 0 {
				return
			}
			build := c.publishBundles(ctx, bundles)
			if onBuild != nil {
				onBuild(build)
			}
		},
	}
	return w.Run(ctx)
}

// Minify compacts src as the given kind without touching any files.
func Minify(kind Kind, src []byte) ([]byte, error) {
	fn, err := minify.ForKind(kind)
	if err != nil {
		return nil, err
	}
	return fn(src), nil
}

// MinifyJS compacts JavaScript source.
func MinifyJS(src []byte) []byte {
	return minify.JS(src)
}

// MinifyCSS compacts a stylesheet.
func MinifyCSS(src []byte) []byte {
	return minify.CSS(src)
}
