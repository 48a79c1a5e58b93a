package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/livefir/i18nprep/internal/registry"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Preprocess.FormatWidth != 2 {
		t.Errorf("Expected format width 2, got %d", config.Preprocess.FormatWidth)
	}

	if config.Preprocess.SourceRoot != "app" {
		t.Errorf("Expected source root 'app', got '%s'", config.Preprocess.SourceRoot)
	}

	if config.Preprocess.Marker != "/i18n-behavior.html" {
		t.Errorf("Expected default marker, got '%s'", config.Preprocess.Marker)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Expected default config to validate: %v", err)
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "i18nprep.yaml")
	content := `sources:
  - app/elements/**/*.html
out_dir: dist
precedence: wildcard
preprocess:
  rewrite_bindings: true
  format_width: 4
  source_root: src
  embed_bundles: true
  registry_sources:
    - bower_components/i18n-behavior/i18n-attr-repo.html
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if !config.Preprocess.RewriteBindings || !config.Preprocess.EmbedBundles {
		t.Error("Expected rewrite and embed to be enabled")
	}
	if config.Preprocess.FormatWidth != 4 {
		t.Errorf("Expected format width 4, got %d", config.Preprocess.FormatWidth)
	}
	if config.Preprocess.SourceRoot != "src" {
		t.Errorf("Expected source root 'src', got '%s'", config.Preprocess.SourceRoot)
	}
	if config.Preprocess.Marker != "/i18n-behavior.html" {
		t.Errorf("Expected marker default to survive, got '%s'", config.Preprocess.Marker)
	}
	if len(config.Sources) != 1 || config.OutDir != "dist" {
		t.Errorf("Unexpected sources/out_dir: %v %q", config.Sources, config.OutDir)
	}
	if config.RegistryPrecedence() != registry.WildcardFirst {
		t.Error("Expected wildcard precedence")
	}
}

func TestLoadConfig_TOML(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "i18nprep.toml")
	content := `sources = ["index.html"]
catalog = "i18n.db"
log_level = "debug"

[preprocess]
rewrite_bindings = true
format_width = 0
force = true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Preprocess.FormatWidth != 0 {
		t.Errorf("Expected format width 0, got %d", config.Preprocess.FormatWidth)
	}
	if !config.Preprocess.ForceProcessing {
		t.Error("Expected force to be enabled")
	}
	if config.Catalog != "i18n.db" || config.LogLevel != "debug" {
		t.Errorf("Unexpected catalog/log level: %q %q", config.Catalog, config.LogLevel)
	}
	if config.Preprocess.SourceRoot != "app" {
		t.Errorf("Expected default source root, got '%s'", config.Preprocess.SourceRoot)
	}
}

func TestLoadConfig_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "i18nprep.ini")
	if err := os.WriteFile(path, []byte("x=1"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("I18NPREP_FORMAT_WIDTH", "8")

	env := "I18NPREP_REWRITE=true\nI18NPREP_SOURCES=a.html, b.html\n"
	if err := os.WriteFile(filepath.Join(dir, EnvFile), []byte(env), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("I18NPREP_REWRITE")
		os.Unsetenv("I18NPREP_SOURCES")
	})

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if !config.Preprocess.RewriteBindings {
		t.Error("Expected rewrite from .env")
	}
	if config.Preprocess.FormatWidth != 8 {
		t.Errorf("Expected format width 8 from environment, got %d", config.Preprocess.FormatWidth)
	}
	if len(config.Sources) != 2 || config.Sources[1] != "b.html" {
		t.Errorf("Expected two sources, got %v", config.Sources)
	}
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	env := map[string]string{
		"I18NPREP_FORCE":       "maybe",
		"I18NPREP_CONCURRENCY": "many",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	config := DefaultConfig()
	err := config.ApplyEnv(lookup)
	if err == nil {
		t.Fatal("Expected error for invalid values")
	}
	for _, name := range []string{"I18NPREP_FORCE", "I18NPREP_CONCURRENCY"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("Expected error to mention %s: %v", name, err)
		}
	}
}

func TestValidate(t *testing.T) {
	config := DefaultConfig()
	config.Precedence = "sideways"
	config.LogFormat = "xml"
	config.Preprocess.FormatWidth = -2

	err := config.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 3 {
		t.Errorf("Expected 3 invalid fields, got %v", verr.Fields)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, name := range []string{"out.yaml", "out.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			config := DefaultConfig()
			config.Sources = []string{"index.html"}
			config.Preprocess.RewriteBindings = true

			if err := SaveConfig(config, path); err != nil {
				t.Fatalf("Failed to save config: %v", err)
			}
			loaded, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("Failed to load config: %v", err)
			}
			if !loaded.Preprocess.RewriteBindings || loaded.Sources[0] != "index.html" {
				t.Errorf("Round trip lost values: %+v", loaded)
			}
		})
	}
}

func TestAddRegistrySource(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "repo.html")
	if err := os.WriteFile(path, []byte("<dom-module></dom-module>"), 0644); err != nil {
		t.Fatal(err)
	}
	config := DefaultConfig()

	if err := config.AddRegistrySource(path); err != nil {
		t.Fatalf("Failed to add registry source: %v", err)
	}
	if err := config.AddRegistrySource(path); err == nil {
		t.Error("Expected error for duplicate path")
	}
	if err := config.AddRegistrySource("/non/existent/repo.html"); err == nil {
		t.Error("Expected error for non-existent path")
	}
	if len(config.Preprocess.RegistrySourcePaths) != 1 {
		t.Errorf("Expected 1 registry source, got %d", len(config.Preprocess.RegistrySourcePaths))
	}
}
