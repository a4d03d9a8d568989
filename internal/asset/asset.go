// Package asset defines the asset kinds assetpack knows how to publish and
// the naming rules shared by the publisher, the ledger and the CLI.
package asset

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// Kind selects the input and output directories, the extension filter and
// the compactor used for a bundle.
type Kind string

const (
	JS  Kind = "js"
	CSS Kind = "css"
)

// Kinds lists every supported kind in a stable order.
var Kinds = []Kind{JS, CSS}

// ParseKind accepts "js" or "css" in any case.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case JS:
		return JS, nil
	case CSS:
		return CSS, nil
	default:
		return "", fmt.Errorf("unknown asset kind %q — must be one of: js, css", s)
	}
}

// KindFromPath infers the kind from a file extension.
func KindFromPath(p string) (Kind, bool) {
	ext := strings.TrimPrefix(path.Ext(p), ".")
	k, err := ParseKind(ext)
	if err != nil {
		return "", false
	}
	return k, true
}

// Ext returns the extension including the leading dot.
func (k Kind) Ext() string {
	return "." + string(k)
}

// InputDir is the directory holding source files, relative to the asset base.
func (k Kind) InputDir() string {
	return string(k)
}

// OutputDir is the directory receiving published artifacts, relative to the
// asset base.
func (k Kind) OutputDir() string {
	return "live" + string(k)
}

// Matches reports whether name carries this kind's extension, ignoring case.
func (k Kind) Matches(name string) bool {
	return strings.EqualFold(path.Ext(name), k.Ext())
}

// Request describes one publish invocation. It is not mutated by the
// publisher.
type Request struct {
	Kind Kind

	// Files is the ordered list of input filenames, relative to the kind's
	// input directory. Empty means every file of the kind.
	Files []string

	// Include filters the listed input files with doublestar patterns when
	// Files is empty. Matches are concatenated in pattern order.
	Include []string

	// Name is the output base name.
	Name string

	// AppendVersion embeds the version stamp in the artifact filename.
	AppendVersion bool
}

// LedgerKey is the ledger key tracking the current version of a bundle.
func LedgerKey(name string, kind Kind) string {
	return strings.ToUpper(name + "_" + string(kind))
}

// ArtifactName builds the published filename for a bundle at a given stamp.
func ArtifactName(name string, kind Kind, stamp int64, appendVersion bool) string {
	return artifactName(name, kind, strconv.FormatInt(stamp, 10), appendVersion)
}

// ArtifactNameForValue builds the filename from a raw ledger value.
func ArtifactNameForValue(name string, kind Kind, value string) string {
	return artifactName(name, kind, value, true)
}

func artifactName(name string, kind Kind, stamp string, appendVersion bool) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(name))
	if appendVersion {
		b.WriteString("-")
		b.WriteString(stamp)
	}
	b.WriteString(kind.Ext())
	return b.String()
}
