package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/bianoble/assetpack/internal/config"
	"github.com/bianoble/assetpack/internal/logging"
	"github.com/bianoble/assetpack/pkg/assetpack"
)

// newLogger builds the stderr logger. Human-readable runs only surface
// warnings and errors through it unless --verbose is set; the summary goes
// through info instead.
func newLogger() *zap.Logger {
	return logging.New(logging.Options{
		Verbose: verbose,
		Quiet:   quiet || (!verbose && !logJSON),
		JSON:    logJSON,
	})
}

// newClient creates the library client from the global flags.
func newClient(ctx context.Context, logger *zap.Logger) (*assetpack.Client, error) {
	client, err := assetpack.New(ctx, assetpack.Options{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		LedgerPath: ledgerPath,
		NoMirror:   noMirror,
		Verbose:    verbose,
		Logger:     logger,
	})
	if err != nil {
		if configPath != "" {
			return nil, fmt.Errorf("loading config %s: %w", configPath, err)
		}
		return nil, err
	}
	return client, nil
}

// strictMode reports whether failed publishes should fail the command.
func strictMode(flag bool) bool {
	return flag || config.EnvStrictEnabled()
}

// reportBuild prints one line per result and a summary, and returns the
// number of failures.
func reportBuild(build *assetpack.BuildResult) int {
	var published, skipped int
	for _, r := range build.Results {
		line := resultLine(r)
		switch {
		case !r.OK():
			info("%s", line)
		case r.Skipped:
			skipped++
			detail("%s", line)
		default:
			published++
			info("%s", line)
			for _, s := range r.Sidecars {
				detail("  + %s", s)
			}
			for _, s := range r.Removed {
				detail("  - %s", s)
			}
		}
	}
	failed := len(build.Failed())
	info("")
	info("Build complete: %d published, %d unchanged, %d failed.", published, skipped, failed)
	return failed
}

// resultLine formats a single publish outcome.
func resultLine(r *assetpack.Result) string {
	id := r.Bundle
	if r.Kind != "" {
		id += "." + string(r.Kind)
	}
	switch {
	case !r.OK():
		return fmt.Sprintf("  failed     %s  (%s: %v)", id, r.FailedAt, r.Err)
	case r.Skipped:
		return fmt.Sprintf("  unchanged  %s", id)
	default:
		return fmt.Sprintf("  published  %s  %s  %s → %s%s",
			id, r.Artifact,
			humanSize(int64(r.InputBytes)), humanSize(int64(r.OutputBytes)),
			savings(r.InputBytes, r.OutputBytes))
	}
}

// savings formats the size reduction, or "" when there is none to report.
func savings(in, out int) string {
	if in <= 0 || out >= in {
		return ""
	}
	return fmt.Sprintf(" (-%d%%)", (in-out)*100/in)
}

// humanSize formats a byte count using SI units.
func humanSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.Bytes(uint64(bytes))
}

// splitList splits comma-separated flag values, dropping empties.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// detail prints a line only in verbose mode.
func detail(format string, args ...any) {
	if verbose {
		fmt.Printf("  "+format+"\n", args...)
	}
}

// errorf prints an error message to stderr.
func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
