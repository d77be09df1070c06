package resource

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestUriResolver_URLBase(t *testing.T) {
	tests := []struct {
		base, ref, want string
	}{
		{"https://example.com/a/b", "/c", "https://example.com/c"},
		{"https://example.com/a/b", "c", "https://example.com/a/c"},
		{"https://example.com/a/b/", "../c.png?x=1", "https://example.com/a/c.png?x=1"},
		{"https://example.com/a/b", "http://other.org/x", "http://other.org/x"},
		{"file:///srv/site/index.html", "img/a.png", "file:///srv/site/img/a.png"},
		{"https://example.com/", "data:image/png;base64,AAAA", "data:image/png;base64,AAAA"},
	}
	for _, tt := range tests {
		r, err := NewUriResolver(tt.base)
		if err != nil {
			t.Fatalf("NewUriResolver(%q) error = %v", tt.base, err)
		}
		if r.IsLocal() {
			t.Errorf("%q must not be local", tt.base)
		}
		got, err := r.Resolve(tt.ref)
		if err != nil || got != tt.want {
			t.Errorf("Resolve(%q, %q) = %q, %v, want %q", tt.base, tt.ref, got, err, tt.want)
		}
	}
}

func TestUriResolver_LocalBase(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix paths")
	}
	tests := []struct {
		base, ref, want string
	}{
		{"/home/user/site/", "img/a.png", "/home/user/site/img/a.png"},
		{"/home/user/site/", "/img/a.png", "/home/user/site/img/a.png"},
		{"/home/user/site/", "../b.css", "/home/user/b.css"},
		{"/home/user/site/", "img/a%20b.png#frag", "/home/user/site/img/a b.png"},
	}
	for _, tt := range tests {
		got, err := ResolveReference(tt.base, tt.ref)
		if err != nil || got != tt.want {
			t.Errorf("ResolveReference(%q, %q) = %q, %v, want %q", tt.base, tt.ref, got, err, tt.want)
		}
	}
}

func TestUriResolver_DocumentAsBase(t *testing.T) {
	dir := t.TempDir()
	r, err := NewUriResolver(filepath.Join(dir, "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !r.IsLocal() || r.BaseURI() != dir {
		t.Errorf("BaseURI() = %q, want %q", r.BaseURI(), dir)
	}

	r, err = NewUriResolver(dir)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := r.Resolve("style.css")
	if got != filepath.Join(dir, "style.css") {
		t.Errorf("Resolve() = %q", got)
	}
}

func TestUriResolver_EmptyBase(t *testing.T) {
	r, err := NewUriResolver("")
	if err != nil {
		t.Fatal(err)
	}
	if !r.IsLocal() {
		t.Error("empty base must be working directory")
	}
}
