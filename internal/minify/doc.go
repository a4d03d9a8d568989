// Package minify compacts JavaScript and CSS source text.
//
// Both compactors are lexical: they never build a syntax tree and never
// validate their input. Output is empty only when the input held nothing
// but whitespace and comments.
package minify
