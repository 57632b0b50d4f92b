package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

// badFileName replaces an expanded output name that cleaning left empty, so
// name templates always yield something writable.
const badFileName = "_bad_file_name_"

type (
	SiteConfig struct {
		// CanonicalURL is the absolute URL of the WordPress site being
		// bridged. Link classification treats URLs starting with it as
		// internal.
		CanonicalURL string `yaml:"canonical_url" validate:"required,url"`
	}

	ContentConfig struct {
		// Source selects where post block trees come from: a directory of
		// per-post JSON files or a WordPress WXR export.
		Source SourceKind `yaml:"source" validate:"gte=0"`
		Path   string     `yaml:"path" sanitize:"path_clean" validate:"required"`
	}

	MediaConfig struct {
		DatabasePath string `yaml:"database_path" sanitize:"path_clean" validate:"required,filepath"`
		// UploadsURL is prepended to relative attachment paths when the
		// store holds site-relative URLs.
		UploadsURL string `yaml:"uploads_url"`
	}

	ThemeConfig struct {
		StylesheetPath string `yaml:"stylesheet_path" sanitize:"path_clean" validate:"omitempty,filepath"`
		VariablesPath  string `yaml:"variables_path" sanitize:"path_clean" validate:"omitempty,filepath"`
		ScriptsDir     string `yaml:"scripts_dir" sanitize:"path_clean"`
	}

	RenderConfig struct {
		// MaxDepth bounds block tree nesting. Exceeding it is a content
		// validation failure, not a crash.
		MaxDepth int `yaml:"max_depth" validate:"min=1,max=1024"`
		// OutputNameTemplate names rendered output files. When empty the
		// post ID is used. Template values: PostID, Title, Slug.
		OutputNameTemplate string `yaml:"output_name_template"`
	}

	ServerConfig struct {
		Address  string `yaml:"address" validate:"required"`
		CacheTTL int    `yaml:"cache_ttl_seconds" validate:"min=0"`
	}

	Config struct {
		Version int           `yaml:"version" validate:"eq=1"`
		Site    SiteConfig    `yaml:"site"`
		Content ContentConfig `yaml:"content"`
		Media   MediaConfig   `yaml:"media"`
		Theme   ThemeConfig   `yaml:"theme"`
		Render  RenderConfig  `yaml:"render"`
		Server  ServerConfig  `yaml:"server"`
		Logging LoggingConfig `yaml:"logging"`
	}
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
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
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
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

	// overwrite cfg values with values from the file
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
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
