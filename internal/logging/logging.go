// Package logging builds the zap logger shared by the CLI and the
// publisher. Every entry carries the run_id of the invocation so the lines
// of one build can be told apart in CI output.
package logging

import (
	"io"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls logger construction.
type Options struct {
	Verbose bool      // debug level
	Quiet   bool      // warnings and errors only
	JSON    bool      // JSON lines instead of console text
	Output  io.Writer // defaults to os.Stderr
	RunID   string    // defaults to a random UUID
}

// New returns a logger for opts. Verbose wins over Quiet.
func New(opts Options) *zap.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		MessageKey:     "message",
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	var encoder zapcore.Encoder
	if opts.JSON {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.TimeKey = ""
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), Level(opts))
	return zap.New(core).With(zap.String("run_id", runID))
}

// Level maps the verbosity flags to a zap level.
func Level(opts Options) zapcore.Level {
	switch {
	case opts.Verbose:
		return zapcore.DebugLevel
	case opts.Quiet:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
