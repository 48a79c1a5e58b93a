package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/livefir/i18nprep"
	"github.com/livefir/i18nprep/internal/registry"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "I18NPREP_"

	// EnvFile is loaded, when present, before environment overrides apply.
	EnvFile = ".env"
)

// ConfigFileNames are searched in the working directory, in order.
var ConfigFileNames = []string{"i18nprep.yaml", "i18nprep.yml", "i18nprep.toml"}

// Config represents the i18nprep configuration
type Config struct {
	// Sources are the documents or glob patterns to process.
	Sources []string `yaml:"sources,omitempty" toml:"sources,omitempty" validate:"dive,required"`

	// OutDir receives the outputs; empty writes next to each input.
	OutDir string `yaml:"out_dir,omitempty" toml:"out_dir,omitempty"`

	// Preprocess holds the library options.
	Preprocess i18nprep.Options `yaml:"preprocess" toml:"preprocess"`

	// Precedence is the registry lookup policy: tag or wildcard.
	Precedence string `yaml:"precedence,omitempty" toml:"precedence,omitempty" validate:"omitempty,oneof=tag wildcard"`

	// RegistryFile seeds the registry and, in build mode, receives it.
	RegistryFile string `yaml:"registry_file,omitempty" toml:"registry_file,omitempty"`

	// Catalog is the SQLite file recording message keys per run.
	Catalog string `yaml:"catalog,omitempty" toml:"catalog,omitempty"`

	LogLevel  string `yaml:"log_level,omitempty" toml:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	LogFormat string `yaml:"log_format,omitempty" toml:"log_format,omitempty" validate:"omitempty,oneof=text json"`

	// Concurrency bounds parallel file processing; 0 uses GOMAXPROCS.
	Concurrency int `yaml:"concurrency,omitempty" toml:"concurrency,omitempty" validate:"gte=0"`
}

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	return &Config{
		Sources:    []string{},
		Preprocess: i18nprep.DefaultOptions(),
		Precedence: "tag",
		LogLevel:   "info",
		LogFormat:  "text",
	}
}

// FindConfigPath returns the first config file present in dir, or "".
func FindConfigPath(dir string) string {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadConfig reads the config file at path, applies the .env file and
// I18NPREP_* overrides and validates the result. An empty path returns
// the defaults with overrides applied.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := config.decode(path, data); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// .env is optional when variables come from the environment.
	if err := godotenv.Load(EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", EnvFile, err)
	}
	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if config.Preprocess.Marker == "" {
		config.Preprocess.Marker = i18nprep.DefaultOptions().Marker
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) decode(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, c)
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, c)
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
}

// SaveConfig writes the configuration to path as YAML or TOML.
func SaveConfig(config *Config, path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		data, err = toml.Marshal(config)
	default:
		data, err = yaml.Marshal(config)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from I18NPREP_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	boolean := func(name string, dst *bool) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = b
		return nil
	}
	integer := func(name string, dst *int) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = n
		return nil
	}
	list := func(name string, dst *[]string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = splitList(v)
		}
	}

	p := &c.Preprocess
	str("OUT_DIR", &c.OutDir)
	str("PRECEDENCE", &c.Precedence)
	str("REGISTRY_FILE", &c.RegistryFile)
	str("CATALOG", &c.Catalog)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	str("SOURCE_ROOT", &p.SourceRoot)
	str("MARKER", &p.Marker)
	list("SOURCES", &c.Sources)
	list("REGISTRY_SOURCES", &p.RegistrySourcePaths)

	return errors.Join(
		integer("CONCURRENCY", &c.Concurrency),
		integer("FORMAT_WIDTH", &p.FormatWidth),
		boolean("REWRITE", &p.RewriteBindings),
		boolean("FORCE", &p.ForceProcessing),
		boolean("EMBED", &p.EmbedBundles),
		boolean("MINIFY", &p.MinifyDocument),
		boolean("SUPPRESS_DOCUMENT", &p.SuppressDocumentOutput),
		boolean("SUPPRESS_BUNDLES", &p.SuppressBundleOutput),
	)
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// AddRegistrySource adds a repository document to the config
func (c *Config) AddRegistrySource(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", path)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	for _, p := range c.Preprocess.RegistrySourcePaths {
		if p == absPath {
			return fmt.Errorf("path already exists in config: %s", absPath)
		}
	}

	c.Preprocess.RegistrySourcePaths = append(c.Preprocess.RegistrySourcePaths, absPath)
	return nil
}

// RegistryPrecedence parses Precedence.
func (c *Config) RegistryPrecedence() registry.Precedence {
	p, _ := registry.ParsePrecedence(c.Precedence)
	return p
}

// ValidationError lists every invalid field.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid config: " + strings.Join(e.Fields, "; ")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate validates the configuration
func (c *Config) Validate() error {
	var fields []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
