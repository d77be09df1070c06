package convert

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

func TestIsArchiveFile(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("non-zip extension", func(t *testing.T) {
		filePath := filepath.Join(tmpDir, "test.txt")
		writeFile(t, filePath, []byte("not a zip"))
		got, err := isArchiveFile(filePath)
		if err != nil || got {
			t.Errorf("isArchiveFile() = %v, %v, want false", got, err)
		}
	})

	t.Run("zip extension but invalid content", func(t *testing.T) {
		filePath := filepath.Join(tmpDir, "test.zip")
		writeFile(t, filePath, []byte("not a real zip file"))
		got, err := isArchiveFile(filePath)
		if err != nil || got {
			t.Errorf("isArchiveFile() = %v, %v, want false", got, err)
		}
	})

	t.Run("valid zip file", func(t *testing.T) {
		filePath := filepath.Join(tmpDir, "test2.ZIP")
		writeZip(t, filePath, zipEntry{"index.html", []byte(samplePage)})
		got, err := isArchiveFile(filePath)
		if err != nil || !got {
			t.Errorf("isArchiveFile() = %v, %v, want true", got, err)
		}
	})

	t.Run("valid zip with other extension", func(t *testing.T) {
		filePath := filepath.Join(tmpDir, "test.epub")
		writeZip(t, filePath, zipEntry{"index.html", []byte(samplePage)})
		got, err := isArchiveFile(filePath)
		if err != nil || got {
			t.Errorf("isArchiveFile() = %v, %v, want false", got, err)
		}
	})

	t.Run("non existent", func(t *testing.T) {
		if _, err := isArchiveFile("/nonexistent/file.zip"); err == nil {
			t.Error("Expected error for non-existent file, got nil")
		}
	})
}

func TestDetectEncoding(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want srcEncoding
	}{
		{"none", []byte("<html>"), encUnknown},
		{"empty", nil, encUnknown},
		{"utf8", []byte{0xEF, 0xBB, 0xBF, '<'}, encUTF8},
		{"utf16 be", []byte{0xFE, 0xFF, 0, '<'}, encUTF16BigEndian},
		{"utf16 le", []byte{0xFF, 0xFE, '<', 0}, encUTF16LittleEndian},
		{"utf32 be", []byte{0, 0, 0xFE, 0xFF}, encUTF32BigEndian},
		{"utf32 le", []byte{0xFF, 0xFE, 0, 0}, encUTF32LittleEndian},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectEncoding(tt.head); got != tt.want {
				t.Errorf("detectEncoding() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectReader(t *testing.T) {
	text := "<p>Grüße</p>"
	tests := []struct {
		name string
		data []byte
		enc  srcEncoding
	}{
		{"plain", []byte(text), encUnknown},
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, text...), encUTF8},
		{"utf16", encodeWithTransformer(t, []byte(text), unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()), encUTF16LittleEndian},
		{"utf32", encodeWithTransformer(t, []byte(text), utf32.UTF32(utf32.BigEndian, utf32.UseBOM).NewEncoder()), encUTF32BigEndian},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if enc := detectEncoding(tt.data); enc != tt.enc {
				t.Fatalf("detectEncoding() = %v, want %v", enc, tt.enc)
			}
			got, err := io.ReadAll(selectReader(bytes.NewReader(tt.data), tt.enc))
			if err != nil {
				t.Fatalf("read error = %v", err)
			}
			if string(got) != text {
				t.Errorf("selectReader() produced %q, want %q", got, text)
			}
		})
	}
}

func TestLooksLikeHTML(t *testing.T) {
	tests := []struct {
		head string
		want bool
	}{
		{"<!DOCTYPE html><html>", true},
		{"\n  <html lang=en>", true},
		{"<?xml version=\"1.0\"?><html>", true},
		{"<p>fragment</p>", true},
		{"<!-- comment -->", true},
		{"plain text", false},
		{"< not a tag", false},
		{"<", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := looksLikeHTML([]byte(tt.head)); got != tt.want {
			t.Errorf("looksLikeHTML(%q) = %v, want %v", tt.head, got, tt.want)
		}
	}
}

func TestIsHTMLFile(t *testing.T) {
	tmpDir := t.TempDir()
	utf16 := encodeWithTransformer(t, []byte(samplePage), unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder())
	tests := []struct {
		name    string
		file    string
		data    []byte
		want    bool
		wantEnc srcEncoding
	}{
		{"html", "a.html", []byte(samplePage), true, encUnknown},
		{"upper case extension", "b.HTM", []byte(samplePage), true, encUnknown},
		{"xhtml", "c.xhtml", []byte(`<?xml version="1.0"?><html xmlns="http://www.w3.org/1999/xhtml"/>`), true, encUnknown},
		{"utf16", "d.html", utf16, true, encUTF16BigEndian},
		{"long document", "e.html", []byte("<html>" + strings.Repeat("x", 3*sniffLen)), true, encUnknown},
		{"wrong extension", "f.txt", []byte(samplePage), false, encUnknown},
		{"not markup", "g.html", []byte("hello"), false, encUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.file)
			writeFile(t, path, tt.data)
			got, enc, err := isHTMLFile(path)
			if err != nil {
				t.Fatalf("isHTMLFile() error = %v", err)
			}
			if got != tt.want || enc != tt.wantEnc {
				t.Errorf("isHTMLFile() = %v, %v, want %v, %v", got, enc, tt.want, tt.wantEnc)
			}
		})
	}

	if _, _, err := isHTMLFile(filepath.Join(tmpDir, "missing.html")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestIsHTMLInArchive(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "a.zip")
	writeZip(t, zipPath,
		zipEntry{"doc.html", []byte(samplePage)},
		zipEntry{"img.png", pngBytes(t, 1, 1)},
		zipEntry{"text.htm", []byte("just text")},
	)
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	want := map[string]bool{"doc.html": true, "img.png": false, "text.htm": false}
	for _, f := range r.File {
		got, _, err := isHTMLInArchive(f)
		if err != nil {
			t.Fatalf("isHTMLInArchive(%s) error = %v", f.Name, err)
		}
		if got != want[f.Name] {
			t.Errorf("isHTMLInArchive(%s) = %v", f.Name, got)
		}
	}
}
