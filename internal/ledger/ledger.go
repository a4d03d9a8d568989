// Package ledger stores the current version stamp of every published bundle
// as KEY=VALUE lines in a flat text file.
//
// The format is shared with existing ledger files, so lookups and rewrites
// are textual: a rewrite replaces exactly one line and leaves every other
// line, including comments and unknown keys, byte-for-byte untouched.
package ledger

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
)

// Medium is the persisted text behind a ledger.
type Medium interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// Entry is one KEY=VALUE line.
type Entry struct {
	Key   string
	Value string
}

// Change records what an Update did to a key.
type Change struct {
	Key   string
	Old   string
	New   string
	Found bool // false when the key was absent before the update
}

var entryPattern = regexp.MustCompile(`(?m)^([A-Z0-9_]+)=([^\r\n]*)\r?$`)

func keyPattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(key) + `=([^\r\n]*)\r?$`)
}

// IsStamp reports whether value is a usable version stamp.
func IsStamp(value string) bool {
	if value == "" {
		return false
	}
	for _, c := range value {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Lookup returns the value recorded for key in text.
func Lookup(text, key string) (string, bool) {
	m := keyPattern(key).FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Set returns text with key set to value. The first line holding key is
// replaced in place; a missing key is appended as a new line.
func Set(text, key, value string) string {
	line := key + "=" + value
	loc := keyPattern(key).FindStringSubmatchIndex(text)
	if loc == nil {
		if text != "" && !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		return text + line + "\n"
	}
	// loc[3] is the end of the value; a trailing \r stays in place.
	return text[:loc[0]] + line + text[loc[3]:]
}

// Entries parses every KEY=VALUE line in text, in file order.
func Entries(text string) []Entry {
	var out []Entry
	for _, m := range entryPattern.FindAllStringSubmatch(text, -1) {
		out = append(out, Entry{Key: m[1], Value: m[2]})
	}
	return out
}

// Ledger performs read-modify-write cycles against a Medium. No lock is
// held between the read and the write; concurrent publishers for the same
// key must be serialized by the caller.
type Ledger struct {
	Medium Medium
}

// New returns a Ledger over m.
func New(m Medium) *Ledger {
	return &Ledger{Medium: m}
}

// Get returns the value recorded for key.
func (l *Ledger) Get(key string) (string, bool, error) {
	text, err := l.Medium.ReadAll()
	if err != nil {
		return "", false, fmt.Errorf("reading ledger: %w", err)
	}
	v, ok := Lookup(text, key)
	return v, ok, nil
}

// List returns all entries.
func (l *Ledger) List() ([]Entry, error) {
	text, err := l.Medium.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}
	return Entries(text), nil
}

// Update sets key to value as one logical transaction and reports the value
// it replaced.
func (l *Ledger) Update(key, value string) (Change, error) {
	change := Change{Key: key, New: value}

	text, err := l.Medium.ReadAll()
	if err != nil {
		return change, fmt.Errorf("reading ledger: %w", err)
	}
	change.Old, change.Found = Lookup(text, key)

	if err := l.Medium.WriteAll(Set(text, key, value)); err != nil {
		return change, fmt.Errorf("writing ledger: %w", err)
	}
	return change, nil
}

// File is a Medium backed by a single file. A missing file reads as empty.
type File struct {
	Path string
}

// Verify File implements Medium.
var _ Medium = (*File)(nil)

// ReadAll returns the file contents, or "" if the file does not exist.
func (f *File) ReadAll() (string, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading ledger %s: %w", f.Path, err)
	}
	return string(data), nil
}

// WriteAll replaces the file atomically using a temp file and rename.
func (f *File) WriteAll(text string) error {
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, []byte(text), 0644); err != nil {
		return fmt.Errorf("writing temp ledger %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.Path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming temp ledger to %s: %w", f.Path, err)
	}
	return nil
}

// Memory is an in-process Medium, used by tests and dry runs.
type Memory struct {
	mu       sync.Mutex
	Text     string
	ReadErr  error
	WriteErr error
}

// ReadAll returns the current text.
func (m *Memory) ReadAll() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return "", m.ReadErr
	}
	return m.Text, nil
}

// WriteAll replaces the text unless WriteErr is set.
func (m *Memory) WriteAll(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Text = text
	return nil
}

// Snapshot returns the current text.
func (m *Memory) Snapshot() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Text
}
