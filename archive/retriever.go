package archive

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"h2p/resource"
)

// Retriever serves local paths under archive path (archive treated as a
// directory) from archive content. Everything else goes to the next
// retriever.
type Retriever struct {
	archive *Archive
	next    resource.Retriever
	maxSize int64
}

// NewRetriever wraps next retriever, nil next means only archive content is
// available.
func NewRetriever(a *Archive, next resource.Retriever, maxSize int64) *Retriever {
	return &Retriever{archive: a, next: next, maxSize: maxSize}
}

// BaseFor returns base uri for document stored in archive under name, so
// that relative references resolve into the same archive directory.
func BaseFor(archive, name string) string {
	dir := filepath.Dir(filepath.FromSlash(name))
	return filepath.Join(archive, dir) + string(filepath.Separator)
}

// Retrieve implements resource.Retriever.
func (r *Retriever) Retrieve(ctx context.Context, uri string) ([]byte, error) {
	prefix := filepath.Clean(r.archive.Path) + string(filepath.Separator)
	if name, ok := strings.CutPrefix(filepath.Clean(uri), prefix); ok {
		data, err := r.archive.ReadFile(filepath.ToSlash(name), r.maxSize)
		if err != nil {
			return nil, fmt.Errorf("unable to read '%s' from archive '%s': %w", name, r.archive.Path, err)
		}
		return data, nil
	}
	if r.next == nil {
		return nil, fmt.Errorf("resource '%s' is outside of archive '%s'", uri, r.archive.Path)
	}
	return r.next.Retrieve(ctx, uri)
}
