package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rupor-github/gencfg"

	"h2p/common"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}

	doc := cfg.Document
	if doc.LimitOfLayouts != 2 {
		t.Errorf("LimitOfLayouts = %d, want 2", doc.LimitOfLayouts)
	}
	if doc.Media.Type != common.MediaTypePrint {
		t.Errorf("Media.Type = %v, want print", doc.Media.Type)
	}
	if doc.Media.Width <= 0 || doc.Media.Height <= 0 {
		t.Errorf("Media dimensions must be positive, got %vx%v", doc.Media.Width, doc.Media.Height)
	}
	if doc.Resources.Timeout != 30*time.Second {
		t.Errorf("Resources.Timeout = %v, want 30s", doc.Resources.Timeout)
	}
	if got := doc.Outline.Levels["h3"]; got != 3 {
		t.Errorf("Outline level for h3 = %d, want 3", got)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	path := writeConfig(t, `version: 1
document:
  base_uri: https://example.com/docs/
  create_acroform: true
  limit_of_layouts: 4
  media:
    type: screen
    width: 1024
    orientation: landscape
  resources:
    allow_remote: false
    timeout: 5s
    auth_token: abc
logging:
  console:
    level: quiet
  components:
    css-parser: debug
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	doc := cfg.Document
	if doc.BaseURI != "https://example.com/docs/" {
		t.Errorf("BaseURI = %q", doc.BaseURI)
	}
	if !doc.CreateAcroForm {
		t.Error("Expected CreateAcroForm to be true")
	}
	if doc.LimitOfLayouts != 4 {
		t.Errorf("LimitOfLayouts = %d, want 4", doc.LimitOfLayouts)
	}
	if doc.Media.Type != common.MediaTypeScreen || doc.Media.Width != 1024 || doc.Media.Orientation != "landscape" {
		t.Errorf("Media = %+v", doc.Media)
	}
	// not overridden values come from template
	if doc.Media.Resolution != 300 {
		t.Errorf("Media.Resolution = %v, want default 300", doc.Media.Resolution)
	}
	if doc.Resources.AllowRemote || doc.Resources.Timeout != 5*time.Second {
		t.Errorf("Resources = %+v", doc.Resources)
	}
	if doc.Resources.AuthToken.Plain() != "abc" {
		t.Errorf("AuthToken was not loaded")
	}
	if cfg.Logging.ConsoleLogger.Level != "quiet" {
		t.Errorf("console level = %q, want quiet", cfg.Logging.ConsoleLogger.Level)
	}
	if cfg.Logging.Components["css-parser"] != "debug" {
		t.Errorf("components = %v", cfg.Logging.Components)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "version: 1\ndocument:\n  create_acroform: true\n  invalid indent\n"},
		{"unknown field", "version: 1\nunknown_field: value\n"},
		{"bad version", "version: 2\n"},
		{"bad media type", "version: 1\ndocument:\n  media:\n    type: hologram\n"},
		{"bad orientation", "version: 1\ndocument:\n  media:\n    orientation: diagonal\n"},
		{"zero layouts", "version: 1\ndocument:\n  limit_of_layouts: 0\n"},
		{"bad console level", "version: 1\nlogging:\n  console:\n    level: chatty\n"},
		{"bad component level", "version: 1\nlogging:\n  components:\n    fonts: chatty\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.content)); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	if _, err := LoadConfiguration("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {}

	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if _, err := unmarshalConfig(data, &Config{}, true); err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Document.Resources.AuthToken = "hunter2"
	cfg.Document.OutputNameTemplate = "{{ .Title }}"

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if strings.Contains(string(data), "hunter2") {
		t.Error("Dump() revealed secret")
	}

	cfg2, err := unmarshalConfig(data, &Config{}, false)
	if err != nil {
		t.Fatalf("Dumped config cannot be loaded: %v", err)
	}
	if cfg2.Document.Media.Type != cfg.Document.Media.Type {
		t.Errorf("Media.Type mismatch after dump/load: got %v, want %v", cfg2.Document.Media.Type, cfg.Document.Media.Type)
	}
	if cfg2.Document.Resources.Timeout != cfg.Document.Resources.Timeout {
		t.Errorf("Timeout mismatch after dump/load: got %v, want %v", cfg2.Document.Resources.Timeout, cfg.Document.Resources.Timeout)
	}
	if cfg2.Document.OutputNameTemplate != "{{ .Title }}" {
		t.Errorf("OutputNameTemplate = %q", cfg2.Document.OutputNameTemplate)
	}
}

func TestOutputFmt(t *testing.T) {
	tests := []struct {
		fmt  common.OutputFmt
		name string
		ext  string
	}{
		{common.OutputFmtTree, "tree", ".txt"},
		{common.OutputFmtXml, "xml", ".xml"},
		{common.OutputFmtIon, "ion", ".ion"},
		{common.OutputFmtIonBinary, "ion-binary", ".10n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fmt.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			if got := tt.fmt.Ext(); got != tt.ext {
				t.Errorf("Ext() = %q, want %q", got, tt.ext)
			}
			parsed, err := common.ParseOutputFmt(strings.ToUpper(tt.name))
			if err != nil || parsed != tt.fmt {
				t.Errorf("ParseOutputFmt(%q) = %v, %v", tt.name, parsed, err)
			}
		})
	}

	if got := common.OutputFmt(99).String(); got != "OutputFmt(99)" {
		t.Errorf("String() for unknown = %q", got)
	}
}
