package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		opts Options
		want zapcore.Level
	}{
		{Options{}, zapcore.InfoLevel},
		{Options{Verbose: true}, zapcore.DebugLevel},
		{Options{Quiet: true}, zapcore.WarnLevel},
		{Options{Verbose: true, Quiet: true}, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		if got := Level(tt.opts); got != tt.want {
			t.Errorf("Level(%+v) = %v, want %v", tt.opts, got, tt.want)
		}
	}
}

func TestNewJSONCarriesRunID(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{JSON: true, Output: &buf, RunID: "run-1"})
	logger.Info("published", zap.String("artifact", "main-1.js"))

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decoding %q: %v", buf.String(), err)
	}
	if entry["run_id"] != "run-1" {
		t.Errorf("run_id = %v", entry["run_id"])
	}
	if entry["message"] != "published" || entry["artifact"] != "main-1.js" {
		t.Errorf("entry = %v", entry)
	}
}

func TestQuietDropsInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Quiet: true, Output: &buf})
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line leaked in quiet mode: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestDefaultRunIDGenerated(t *testing.T) {
	var buf bytes.Buffer
	New(Options{JSON: true, Output: &buf}).Info("x")
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatal(err)
	}
	if id, _ := entry["run_id"].(string); len(id) != 36 {
		t.Errorf("run_id = %q, want a UUID", id)
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Error("OrNop(nil) returned nil")
	}
	l := zap.NewExample()
	if OrNop(l) != l {
		t.Error("OrNop should return the given logger")
	}
}
