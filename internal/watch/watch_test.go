package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestRunReportsChangedDir(t *testing.T) {
	root := t.TempDir()
	jsDir := filepath.Join(root, "js")
	cssDir := filepath.Join(root, "css")
	for _, d := range []string{jsDir, cssDir} {
		if err := os.Mkdir(d, 0755); err != nil {
			t.Fatal(err)
		}
	}

	changes := make(chan []string, 4)
	w := &Watcher{
		Dirs:     []string{jsDir, cssDir, filepath.Join(root, "missing")},
		Debounce: 20 * time.Millisecond,
		OnChange: func(_ context.Context, dirs []string) { changes <- dirs },
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	for _, name := range []string{"a.js", "b.js"} {
		if err := os.WriteFile(filepath.Join(jsDir, name), []byte("var a;"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case dirs := <-changes:
		if len(dirs) != 1 || dirs[0] != jsDir {
			t.Errorf("dirs = %v, want [%s]", dirs, jsDir)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRunNoDirectories(t *testing.T) {
	w := &Watcher{
		Dirs:     []string{filepath.Join(t.TempDir(), "missing")},
		OnChange: func(context.Context, []string) {},
	}
	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected error when nothing can be watched")
	}
}

func TestRunRequiresCallback(t *testing.T) {
	if err := (&Watcher{Dirs: []string{t.TempDir()}}).Run(context.Background()); err == nil {
		t.Fatal("expected error without OnChange")
	}
}

func TestRelevant(t *testing.T) {
	tests := []struct {
		ev   fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: "/a/js/app.js", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/a/js/app.js", Op: fsnotify.Remove}, true},
		{fsnotify.Event{Name: "/a/js/app.js", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "/a/js/.assetpack-123.tmp", Op: fsnotify.Create}, false},
		{fsnotify.Event{Name: "/a/js/app.js~", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		if got := relevant(tt.ev); got != tt.want {
			t.Errorf("relevant(%v) = %v, want %v", tt.ev, got, tt.want)
		}
	}
}
