// Package precompress produces the .gz and .br siblings served next to a
// published artifact by web servers configured for static precompression.
package precompress

import (
	"bytes"
	"fmt"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
)

// Encoding identifies a sidecar format.
type Encoding string

const (
	Gzip   Encoding = "gzip"
	Brotli Encoding = "br"
)

// Parse accepts "gzip"/"gz" and "br"/"brotli".
func Parse(s string) (Encoding, error) {
	switch s {
	case "gzip", "gz":
		return Gzip, nil
	case "br", "brotli":
		return Brotli, nil
	default:
		return "", fmt.Errorf("unknown compression %q — must be one of: gzip, br", s)
	}
}

// Ext is the suffix appended to the artifact filename.
func (e Encoding) Ext() string {
	switch e {
	case Gzip:
		return ".gz"
	case Brotli:
		return ".br"
	}
	return ""
}

// Encode compresses data at the best level of the encoding. Artifacts are
// compressed once at build time, so speed is not a concern.
func Encode(e Encoding, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	switch e {
	case Gzip:
		w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
		if err != nil {
			return nil, fmt.Errorf("gzip writer: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
	case Brotli:
		w := brotli.NewWriterLevel(&buf, brotli.BestCompression)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("brotli: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("brotli: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported encoding %q", e)
	}
	return buf.Bytes(), nil
}
