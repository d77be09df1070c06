// Package resource locates and loads external resources referenced by
// documents: images, style sheets and fonts.
package resource

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// UriResolver resolves references relative to document base. Base is either
// an absolute URL of any scheme or local file system path, empty base means
// current working directory.
type UriResolver struct {
	base  *url.URL
	dir   string
	local bool
}

// NewUriResolver creates resolver for base.
func NewUriResolver(base string) (*UriResolver, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("unable to get working directory: %w", err)
		}
		return &UriResolver{dir: wd, local: true}, nil
	}
	if isURL(base) {
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("unable to parse base uri '%s': %w", base, err)
		}
		return &UriResolver{base: u}, nil
	}

	dir := base
	if !strings.HasSuffix(base, "/") && !strings.HasSuffix(base, string(filepath.Separator)) {
		if fi, err := os.Stat(base); err != nil || !fi.IsDir() {
			// base points to document itself
			dir = filepath.Dir(base)
		}
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve base path '%s': %w", base, err)
	}
	return &UriResolver{dir: abs, local: true}, nil
}

// BaseURI returns base references are resolved against.
func (r *UriResolver) BaseURI() string {
	if r.local {
		return r.dir
	}
	return r.base.String()
}

// IsLocal reports whether base is local path rather than URL.
func (r *UriResolver) IsLocal() bool {
	return r.local
}

// Resolve resolves reference. Absolute URLs are returned as is, relative
// ones follow URL resolution rules when base is URL, or are appended to base
// directory (leading slashes dropped) when base is local path.
func (r *UriResolver) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return r.BaseURI(), nil
	}
	if isURL(ref) {
		return ref, nil
	}

	if !r.local {
		u, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("unable to parse reference '%s': %w", ref, err)
		}
		return r.base.ResolveReference(u).String(), nil
	}

	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	if p, err := url.PathUnescape(ref); err == nil {
		ref = p
	}
	if filepath.IsAbs(ref) && filepath.VolumeName(ref) != "" {
		return filepath.Clean(ref), nil
	}
	ref = strings.TrimLeft(ref, `/\`)
	return filepath.Join(r.dir, filepath.FromSlash(ref)), nil
}

// ResolveReference resolves ref against base without keeping resolver.
func ResolveReference(base, ref string) (string, error) {
	r, err := NewUriResolver(base)
	if err != nil {
		return "", err
	}
	return r.Resolve(ref)
}

// isURL reports whether s starts with a scheme. Single letter schemes are
// Windows drive letters.
func isURL(s string) bool {
	i := strings.IndexByte(s, ':')
	if i < 2 {
		return false
	}
	for j, c := range s[:i] {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case j > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}
