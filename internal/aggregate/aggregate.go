// Package aggregate concatenates input files into one buffer.
package aggregate

import (
	"bytes"
	"path"

	"go.uber.org/zap"

	"github.com/bianoble/assetpack/internal/logging"
	"github.com/bianoble/assetpack/internal/store"
)

// Source records how one input file contributed to the buffer.
type Source struct {
	Name    string
	Bytes   int
	Skipped bool // true when the file could not be read
}

// Aggregator reads files through a Store.
type Aggregator struct {
	Store  store.Store
	Logger *zap.Logger
}

// Concat returns the contents of files, read from dir, joined in list order.
// An unreadable file contributes nothing. Line endings are left as read.
func (a *Aggregator) Concat(dir string, files []string) ([]byte, []Source) {
	logger := logging.OrNop(a.Logger)

	var buf bytes.Buffer
	sources := make([]Source, 0, len(files))
	for _, name := range files {
		data, err := a.Store.ReadFile(path.Join(dir, name))
		if err != nil {
			logger.Debug("skipping unreadable input", zap.String("file", name), zap.Error(err))
			sources = append(sources, Source{Name: name, Skipped: true})
			continue
		}
		buf.Write(data)
		sources = append(sources, Source{Name: name, Bytes: len(data)})
	}
	return buf.Bytes(), sources
}
