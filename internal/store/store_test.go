package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFSWriteReadExistsDelete(t *testing.T) {
	root := t.TempDir()
	s := NewFS(root)

	if s.Exists("livejs/main-1.js") {
		t.Fatal("file should not exist yet")
	}

	if err := s.WriteFile("livejs/main-1.js", []byte("var a=1;")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if !s.Exists("livejs/main-1.js") {
		t.Fatal("file should exist after write")
	}

	got, err := s.ReadFile("livejs/main-1.js")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "var a=1;" {
		t.Errorf("content = %q, want %q", got, "var a=1;")
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Join(root, "livejs"))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}

	if err := s.DeleteFile("livejs/main-1.js"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if s.Exists("livejs/main-1.js") {
		t.Error("file should be gone after delete")
	}
}

func TestFSWriteOverwrites(t *testing.T) {
	s := NewFS(t.TempDir())
	if err := s.WriteFile("a.css", []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteFile("a.css", []byte("two")); err != nil {
		t.Fatal(err)
	}
	got, _ := s.ReadFile("a.css")
	if string(got) != "two" {
		t.Errorf("content = %q, want %q", got, "two")
	}
}

func TestFSListFiles(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "js")
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"b.js", "a.js", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := NewFS(root).ListFiles("js")
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	want := []string{"a.js", "b.js", "notes.txt"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ListFiles = %v, want %v", got, want)
	}
}

func TestFSListMissingDir(t *testing.T) {
	if _, err := NewFS(t.TempDir()).ListFiles("css"); err == nil {
		t.Error("expected error listing a missing directory")
	}
}

func TestFSRejectsEscape(t *testing.T) {
	s := NewFS(t.TempDir())
	if err := s.WriteFile("../escape.js", []byte("x")); err == nil {
		t.Error("expected error writing outside the root")
	}
	if _, err := s.ReadFile("../../etc/passwd"); err == nil {
		t.Error("expected error reading outside the root")
	}
	if s.Exists("../") {
		t.Error("Exists should be false outside the root")
	}
}

func TestValidatePathSymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	if err := os.Symlink(outside, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	if _, err := ValidatePath(root, "link/file.js"); err == nil {
		t.Error("expected symlink escape to be rejected")
	}
}

func TestValidatePathInside(t *testing.T) {
	root := t.TempDir()
	got, err := ValidatePath(root, "js/app.js")
	if err != nil {
		t.Fatalf("ValidatePath: %v", err)
	}
	if !strings.HasSuffix(got, filepath.Join("js", "app.js")) {
		t.Errorf("resolved = %q", got)
	}
}

func TestFSAbs(t *testing.T) {
	root := t.TempDir()
	s := NewFS(root)
	if got, want := s.Abs("livejs/main.js"), filepath.Join(root, "livejs", "main.js"); got != want {
		t.Errorf("Abs = %q, want %q", got, want)
	}
}
