package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"h2p/common"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	// OutlineConfig drives creation of document outline (bookmarks) from
	// heading tags. Levels maps tag name to outline nesting level.
	OutlineConfig struct {
		Enable bool           `yaml:"enable"`
		Levels map[string]int `yaml:"levels" validate:"dive,min=1,max=16"`
	}

	// MediaConfig describes device media queries are evaluated against.
	// Lengths are in CSS pixels, resolution in dpi.
	MediaConfig struct {
		Type        common.MediaType `yaml:"type"`
		Width       float64          `yaml:"width" validate:"gte=0"`
		Height      float64          `yaml:"height" validate:"gte=0"`
		Resolution  float64          `yaml:"resolution" validate:"gte=0"`
		Color       int              `yaml:"color" validate:"gte=0"`
		ColorIndex  int              `yaml:"color_index" validate:"gte=0"`
		Monochrome  int              `yaml:"monochrome" validate:"gte=0"`
		Orientation string           `yaml:"orientation" validate:"omitempty,oneof=portrait landscape"`
		Scan        string           `yaml:"scan" validate:"omitempty,oneof=progressive interlace"`
		Grid        bool             `yaml:"grid"`
	}

	FontsConfig struct {
		Directories []string `yaml:"directories" validate:"dive,required"`
		Default     string   `yaml:"default" validate:"required"`
	}

	ResourcesConfig struct {
		AllowRemote bool          `yaml:"allow_remote"`
		Timeout     time.Duration `yaml:"timeout" validate:"gte=0"`
		MaxSize     int64         `yaml:"max_size" validate:"gte=0"`
		UserAgent   string        `yaml:"user_agent"`
		AuthToken   SecretString  `yaml:"auth_token,omitempty"`
	}

	DocumentConfig struct {
		BaseURI               string          `yaml:"base_uri"`
		Charset               string          `yaml:"charset"`
		StylesheetPath        string          `yaml:"stylesheet_path" sanitize:"assure_file_access"`
		OutputNameTemplate    string          `yaml:"output_name_template"`
		FileNameTransliterate bool            `yaml:"file_name_transliterate"`
		CreateAcroForm        bool            `yaml:"create_acroform"`
		ImmediateFlush        bool            `yaml:"immediate_flush"`
		ContinuousContainer   bool            `yaml:"continuous_container"`
		LimitOfLayouts        int             `yaml:"limit_of_layouts" validate:"min=1,max=16"`
		Outline               OutlineConfig   `yaml:"outline"`
		Media                 MediaConfig     `yaml:"media"`
		Fonts                 FontsConfig     `yaml:"fonts"`
		Resources             ResourcesConfig `yaml:"resources"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Document  DocumentConfig `yaml:"document"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// only fields we defined are allowed
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template and
// validates the result.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

// Dump serializes configuration, secrets are masked.
func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
