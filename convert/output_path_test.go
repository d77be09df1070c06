package convert

import (
	"path/filepath"
	"slices"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"h2p/common"
	"h2p/config"
	"h2p/layout"
	"h2p/state"
)

func setupTestEnvForOutputPath(t *testing.T, noDirs bool, transliterate bool, format common.OutputFmt, template string) *state.LocalEnv {
	t.Helper()
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Document.FileNameTransliterate = transliterate
	cfg.Document.OutputNameTemplate = template

	return &state.LocalEnv{
		Log:    logger,
		Cfg:    cfg,
		NoDirs: noDirs,
		Format: format,
	}
}

func testDocument() *layout.Document {
	doc := layout.NewDocument("test-doc-id")
	doc.Title = "Test Page"
	doc.Lang = "en"
	doc.Meta["author"] = "John Doe"
	doc.Meta["keywords"] = "css, print ,, layout"
	return doc
}

func TestBuildOutputPath(t *testing.T) {
	tests := []struct {
		name     string
		noDirs   bool
		format   common.OutputFmt
		template string
		src      string
		want     string
	}{
		{"no dirs", true, common.OutputFmtTree, "", "sub/page.html", filepath.Join("/out", "page.txt")},
		{"with dirs", false, common.OutputFmtTree, "", "sub/page.html", filepath.Join("/out", "sub", "page.txt")},
		{"xml", true, common.OutputFmtXml, "", "page.htm", filepath.Join("/out", "page.xml")},
		{"ion", true, common.OutputFmtIon, "", "page.htm", filepath.Join("/out", "page.ion")},
		{"ion binary", true, common.OutputFmtIonBinary, "", "page.htm", filepath.Join("/out", "page.10n")},
		{"template", true, common.OutputFmtXml, "{{ .Author }}/{{ .Title }}", "page.html", filepath.Join("/out", "John Doe", "Test Page.xml")},
		{"template keeps source dir", false, common.OutputFmtTree, "{{ .SourceFile }}-{{ .Language }}", "a/page.html", filepath.Join("/out", "a", "page-en.txt")},
		{"broken template falls back", true, common.OutputFmtTree, "{{ .Title ", "page.html", filepath.Join("/out", "page.txt")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnvForOutputPath(t, tt.noDirs, false, tt.format, tt.template)
			if got := buildOutputPath(testDocument(), filepath.FromSlash(tt.src), "/out", env); got != tt.want {
				t.Errorf("buildOutputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildOutputPath_Transliterate(t *testing.T) {
	env := setupTestEnvForOutputPath(t, true, true, common.OutputFmtTree, "")
	got := buildOutputPath(testDocument(), "Книга.html", "/out", env)
	if want := filepath.Join("/out", "kniga.txt"); got != want {
		t.Errorf("buildOutputPath() = %q, want %q", got, want)
	}
}

func TestBuildDefaultFileName(t *testing.T) {
	tests := []struct {
		name          string
		src           string
		transliterate bool
		format        common.OutputFmt
		expected      string
	}{
		{"simple tree", "page.html", false, common.OutputFmtTree, "page.txt"},
		{"with path", "path/to/page.html", false, common.OutputFmtXml, "page.xml"},
		{"hidden name", ".page.html", false, common.OutputFmtTree, "page.txt"},
		{"transliterate", "Книга.html", true, common.OutputFmtIon, "kniga.ion"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnvForOutputPath(t, true, tt.transliterate, tt.format, "")
			if result := buildDefaultFileName(tt.src, env); result != tt.expected {
				t.Errorf("buildDefaultFileName() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestSplitAndCleanPath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected []string
	}{
		{"simple path", "author/book", []string{"author", "book"}},
		{"single segment", "book", []string{"book"}},
		{"with trailing slash", "author/book/", []string{"author", "book"}},
		{"three levels", "genre/author/book", []string{"genre", "author", "book"}},
		{"parent references", "../x/./book", []string{"x", "book"}},
		{"empty path", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := splitAndCleanPath(filepath.FromSlash(tt.path)); !slices.Equal(result, tt.expected) {
				t.Errorf("splitAndCleanPath() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestCleanPathSegment(t *testing.T) {
	tests := []struct {
		name          string
		segment       string
		transliterate bool
		expected      string
	}{
		{"simple segment", "author", false, "author"},
		{"with spaces", "My Book", false, "My Book"},
		{"transliterate cyrillic", "Автор", true, "avtor"},
		{"only dots", "..", false, "_bad_file_name_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnvForOutputPath(t, true, tt.transliterate, common.OutputFmtTree, "")
			if result := cleanPathSegment(tt.segment, env); result != tt.expected {
				t.Errorf("cleanPathSegment() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestAssemblePathWithSubdirs(t *testing.T) {
	tests := []struct {
		name          string
		expandedName  string
		transliterate bool
		format        common.OutputFmt
		expected      string
	}{
		{"simple template", "author/book", false, common.OutputFmtTree, filepath.Join("/output", "author", "book.txt")},
		{"single level", "book", false, common.OutputFmtXml, filepath.Join("/output", "book.xml")},
		{"with transliterate", "Автор/Книга", true, common.OutputFmtTree, filepath.Join("/output", "avtor", "kniga.txt")},
		{"empty", "", false, common.OutputFmtTree, "/output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnvForOutputPath(t, true, tt.transliterate, tt.format, "")
			if result := assemblePathWithSubdirs("/output", filepath.FromSlash(tt.expandedName), env); result != tt.expected {
				t.Errorf("assemblePathWithSubdirs() = %q, want %q", result, tt.expected)
			}
		})
	}
}
