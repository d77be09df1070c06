package archive

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

type entry struct {
	name    string
	content string
}

func makeZip(t *testing.T, entries ...entry) string {
	t.Helper()
	zipPath := filepath.Join(t.TempDir(), "test.zip")
	zipFile, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer zipFile.Close()

	w := zip.NewWriter(zipFile)
	for _, e := range entries {
		fw, err := w.Create(e.name)
		if err != nil {
			t.Fatalf("Failed to create file %s in zip: %v", e.name, err)
		}
		if _, err := fw.Write([]byte(e.content)); err != nil {
			t.Fatalf("Failed to write content for %s: %v", e.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to finalize zip: %v", err)
	}
	return zipPath
}

func names(t *testing.T, zipPath, pattern string) []string {
	t.Helper()
	var visited []string
	err := Walk(zipPath, pattern, func(a *Archive, file *zip.File) error {
		if a.Path != zipPath {
			t.Errorf("archive = %s, want %s", a.Path, zipPath)
		}
		visited = append(visited, file.Name)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	return visited
}

func TestWalk(t *testing.T) {
	zipPath := makeZip(t,
		entry{"docs/readme.html", "readme content"},
		entry{"docs/guide.html", "guide content"},
		entry{"src/main.css", "main content"},
		entry{"src/print.css", "print content"},
		entry{"config.yml", "config content"},
	)

	tests := []struct {
		pattern string
		want    []string
	}{
		{"docs/", []string{"docs/guide.html", "docs/readme.html"}},
		{"src/", []string{"src/main.css", "src/print.css"}},
		{"nonexistent/", nil},
		{"", []string{"config.yml", "docs/guide.html", "docs/readme.html", "src/main.css", "src/print.css"}},
	}
	for _, tt := range tests {
		t.Run("prefix "+tt.pattern, func(t *testing.T) {
			if got := names(t, zipPath, tt.pattern); !slices.Equal(got, tt.want) {
				t.Errorf("visited %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("walkFn returns error", func(t *testing.T) {
		expectedErr := errors.New("test error")
		err := Walk(zipPath, "docs/", func(*Archive, *zip.File) error {
			return expectedErr
		})
		if err != expectedErr {
			t.Errorf("Walk() error = %v, want %v", err, expectedErr)
		}
	})
}

func TestWalk_NaturalOrder(t *testing.T) {
	zipPath := makeZip(t,
		entry{"ch10.html", ""},
		entry{"ch2.html", ""},
		entry{"ch1.html", ""},
		entry{"appendix/a.html", ""},
	)
	want := []string{"appendix/a.html", "ch1.html", "ch2.html", "ch10.html"}
	if got := names(t, zipPath, ""); !slices.Equal(got, want) {
		t.Errorf("visited %v, want %v", got, want)
	}
}

func TestWalk_InvalidArchive(t *testing.T) {
	t.Run("nonexistent file", func(t *testing.T) {
		err := Walk("/nonexistent/file.zip", "", func(*Archive, *zip.File) error { return nil })
		if err == nil {
			t.Error("Expected error for nonexistent file")
		}
	})

	t.Run("invalid zip file", func(t *testing.T) {
		invalidZip := filepath.Join(t.TempDir(), "invalid.zip")
		if err := os.WriteFile(invalidZip, []byte("not a zip file"), 0644); err != nil {
			t.Fatalf("Failed to create invalid zip: %v", err)
		}
		err := Walk(invalidZip, "", func(*Archive, *zip.File) error { return nil })
		if err == nil {
			t.Error("Expected error for invalid zip file")
		}
	})

	t.Run("unsafe entry", func(t *testing.T) {
		zipPath := makeZip(t, entry{"ok.html", ""}, entry{"../evil.html", ""})
		called := false
		err := Walk(zipPath, "", func(*Archive, *zip.File) error {
			called = true
			return nil
		})
		if err == nil {
			t.Error("Expected error for archive with path traversal")
		}
		if called {
			t.Error("walkFn must not be called for unsafe archive")
		}
	})
}

func TestWalk_WithDirectories(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "test.zip")
	zipFile, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	w := zip.NewWriter(zipFile)

	// directory entries are usually created by zip utilities
	dirHeader := &zip.FileHeader{Name: "mydir/"}
	dirHeader.SetMode(os.ModeDir | 0755)
	if _, err := w.CreateHeader(dirHeader); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	fw, err := w.Create("mydir/file.txt")
	if err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	fw.Write([]byte("content"))
	w.Close()
	zipFile.Close()

	if got := names(t, zipPath, "mydir/"); !slices.Equal(got, []string{"mydir/file.txt"}) {
		t.Errorf("visited %v, want file only", got)
	}
}

func TestWalk_EarlyTermination(t *testing.T) {
	var entries []entry
	for i := range 5 {
		entries = append(entries, entry{"files/file" + string(rune('0'+i)) + ".txt", "content"})
	}
	zipPath := makeZip(t, entries...)

	var visited int
	stopErr := errors.New("stop walking")
	err := Walk(zipPath, "files/", func(*Archive, *zip.File) error {
		visited++
		if visited == 2 {
			return stopErr
		}
		return nil
	})
	if err != stopErr {
		t.Errorf("Walk() error = %v, want %v", err, stopErr)
	}
	if visited != 2 {
		t.Errorf("visited %d files, want 2 (early termination)", visited)
	}
}

func TestArchive_ReadFile(t *testing.T) {
	zipPath := makeZip(t, entry{"book/index.html", "<p>x</p>"}, entry{"book/img/a.png", "0123456789"})

	err := Walk(zipPath, "book/index", func(a *Archive, file *zip.File) error {
		data, err := a.ReadFile("book/img/a.png", 0)
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if string(data) != "0123456789" {
			t.Errorf("ReadFile() = %q", data)
		}
		if _, err := a.ReadFile("book/img/a.png", 5); err == nil {
			t.Error("Expected size limit error")
		}
		if _, err := a.ReadFile("book/missing.png", 0); err == nil {
			t.Error("Expected error for missing file")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
}
