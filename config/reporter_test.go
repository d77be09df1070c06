package config

import (
	"archive/zip"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func readArchive(t *testing.T, path string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer zr.Close()

	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("unable to open %s: %v", f.Name, err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		out[f.Name] = string(data)
	}
	return out
}

func TestReport_Archive(t *testing.T) {
	dir := t.TempDir()
	conf := ReporterConfig{Destination: filepath.Join(dir, "report.zip")}

	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}

	src := filepath.Join(dir, "page.html")
	if err := os.WriteFile(src, []byte("<p>hello</p>"), 0644); err != nil {
		t.Fatal(err)
	}
	work := filepath.Join(dir, "work")
	if err := os.MkdirAll(filepath.Join(work, "css"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(work, "css", "resolved.css"), []byte("p{margin:0}"), 0644); err != nil {
		t.Fatal(err)
	}

	r.Store("source.html", src)
	r.StoreTemp("work", work)
	r.StoreData("tree.txt", []byte("Document"))
	r.StoreData("tree.txt", []byte("Document again"))
	r.Store("missing", filepath.Join(dir, "does-not-exist"))

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	files := readArchive(t, conf.Destination)
	if files["source.html"] != "<p>hello</p>" {
		t.Errorf("source.html = %q", files["source.html"])
	}
	if files["work/css/resolved.css"] != "p{margin:0}" {
		t.Errorf("directory content not archived: %v", slices.Sorted(maps.Keys(files)))
	}
	if files["tree.txt"] != "Document" {
		t.Errorf("tree.txt = %q", files["tree.txt"])
	}
	versioned := 0
	for name := range files {
		if strings.HasPrefix(name, "tree.txt-") {
			versioned++
		}
	}
	if versioned != 1 {
		t.Errorf("expected one versioned tree.txt entry, got %d", versioned)
	}
	if !strings.Contains(files["MANIFEST"], "source.html") {
		t.Errorf("MANIFEST does not list stored files:\n%s", files["MANIFEST"])
	}

	if _, err := os.Stat(work); !os.IsNotExist(err) {
		t.Error("temporary directory should be removed on Close")
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("stored file must not be removed: %v", err)
	}
}

func TestReport_Nil(t *testing.T) {
	var r *Report
	r.Store("a", "b")
	r.StoreTemp("a", "b")
	r.StoreData("a", nil)
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
	if r.Name() != "" {
		t.Error("Name of nil report should be empty")
	}
}

func TestReport_StoreConflict(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	r.Store("log", "/tmp/a.log")
	r.Store("log", "/tmp/a.log")

	defer func() {
		if recover() == nil {
			t.Error("expected panic when overwriting entry with different path")
		}
	}()
	r.Store("log", "/tmp/b.log")
}
