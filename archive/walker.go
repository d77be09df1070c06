// Package archive builds Walk abstraction on top of "archive/zip" and serves
// resources stored inside archives.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/maruel/natural"
)

// Archive is zip file opened by Walk.
type Archive struct {
	Path string
	r    *zip.Reader
}

// Open opens file stored in archive, name uses forward slashes.
func (a *Archive) Open(name string) (fs.File, error) {
	return a.r.Open(strings.TrimPrefix(path.Clean(name), "/"))
}

// ReadFile reads whole file stored in archive. When limit is positive larger
// files are refused.
func (a *Archive) ReadFile(name string, limit int64) ([]byte, error) {
	f, err := a.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if limit > 0 {
		if fi, err := f.Stat(); err == nil && fi.Size() > limit {
			return nil, fmt.Errorf("'%s' has %d bytes, limit is %d", name, fi.Size(), limit)
		}
	}
	return io.ReadAll(f)
}

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. The archive argument is the opened archive, valid only
// during Walk. The file argument is the zip.File structure for file in
// archive which satisfies match condition. If an error is returned,
// processing stops.
type WalkFunc func(archive *Archive, file *zip.File) error

// Walk walks the all files in the archive which satisfy match condition in
// natural order of their names, calling walkFn for each item. Archives with
// path traversal components ("..") or absolute paths in entry names are
// refused to prevent Zip Slip attacks.
func Walk(archive, pattern string, walkFn WalkFunc) error {

	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	files := make([]*zip.File, 0, len(r.File))
	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if !f.FileInfo().IsDir() && strings.HasPrefix(name, pattern) {
			files = append(files, f)
		}
	}
	slices.SortStableFunc(files, func(a, b *zip.File) int {
		switch {
		case natural.Less(a.Name, b.Name):
			return -1
		case natural.Less(b.Name, a.Name):
			return 1
		}
		return 0
	})

	a := &Archive{Path: archive, r: &r.Reader}
	for _, f := range files {
		if err := walkFn(a, f); err != nil {
			return err
		}
	}
	return nil
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
