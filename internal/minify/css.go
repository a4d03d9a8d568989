package minify

import (
	"bytes"
	"regexp"
)

var (
	cssComment = regexp.MustCompile(`(?s)/\*.*?\*/`)

	cssDeletable = []string{"\r", "\n", "\t", " "}
)

// CSS compacts a stylesheet: comments go, "property: value" loses its
// space, and line breaks, tabs and spaces are deleted outright.
//
// The transform is purely lexical. A string or url() containing "/*" is not
// protected, and space-separated values such as "0 auto" are fused.
func CSS(src []byte) []byte {
	out := cssComment.ReplaceAll(src, nil)
	out = bytes.ReplaceAll(out, []byte(": "), []byte(":"))
	for _, s := range cssDeletable {
		out = bytes.ReplaceAll(out, []byte(s), nil)
	}
	return out
}
