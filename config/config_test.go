package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestValidationError(t *testing.T) {
	err := ValidationError{
		Field:   "test_field",
		Value:   "test_value",
		Message: "test message",
	}

	expectedError := "config validation error in field 'test_field': test message (value: test_value)"
	if err.Error() != expectedError {
		t.Errorf("Expected error message '%s', got '%s'", expectedError, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	emptyErrs := ValidationErrors{}
	if emptyErrs.Error() != "no validation errors" {
		t.Errorf("Expected 'no validation errors', got '%s'", emptyErrs.Error())
	}
	if emptyErrs.HasErrors() {
		t.Error("Expected HasErrors() to be false for empty errors")
	}

	errs := ValidationErrors{
		ValidationError{Field: "field1", Value: "value1", Message: "message1"},
		ValidationError{Field: "field2", Value: "value2", Message: "message2"},
	}
	if !errs.HasErrors() {
		t.Error("Expected HasErrors() to be true for non-empty errors")
	}
	errorMsg := errs.Error()
	if !strings.Contains(errorMsg, "field1") || !strings.Contains(errorMsg, "field2") {
		t.Errorf("Expected error message to contain both fields, got '%s'", errorMsg)
	}
}

func TestDefaultLoadOptions(t *testing.T) {
	options := DefaultLoadOptions()

	if options.Path != "apigen.yaml" {
		t.Errorf("Expected default path 'apigen.yaml', got '%s'", options.Path)
	}
	if !options.AllowMissing {
		t.Error("Expected AllowMissing to be true by default")
	}
	if !options.ValidateStructure || !options.ApplyDefaults {
		t.Error("Expected validation and defaults to be enabled by default")
	}
}

func quietOptions(path string) ConfigLoadOptions {
	return ConfigLoadOptions{
		Path:              path,
		AllowMissing:      true,
		ValidateStructure: true,
		ApplyDefaults:     true,
		Quiet:             true,
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "apigen.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadMissingUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apigen.yaml")
	config, err := NewConfigManager(quietOptions(path)).LoadConfig()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	defaults := DefaultConfig()
	if config.Target != defaults.Target || config.AccessLevel != defaults.AccessLevel {
		t.Errorf("Expected defaults, got %+v", config)
	}
	if config.Cache.Size != 256 || config.Watch.Debounce() != 300*time.Millisecond {
		t.Errorf("Unexpected cache or watch defaults: %+v", config)
	}
}

func TestLoadMissingNotAllowed(t *testing.T) {
	options := quietOptions(filepath.Join(t.TempDir(), "apigen.yaml"))
	options.AllowMissing = false

	_, err := NewConfigManager(options).LoadConfig()
	if err == nil || !strings.Contains(err.Error(), "configuration file not found") {
		t.Errorf("Expected a not found error, got %v", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
target: swift
access_level: internal
schemas_dir: Models
endpoints_dir: API
skip_endpoints: true
header:
  - Copyright Example
cache:
  size: 16
watch:
  debounce_ms: 50
preview:
  addr: ":9000"
`)
	config, err := NewConfigManager(quietOptions(path)).LoadConfig()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if config.AccessLevel != "internal" || config.SchemasDir != "Models" || config.EndpointsDir != "API" {
		t.Errorf("Unexpected config: %+v", config)
	}
	if !config.SkipEndpoints || len(config.Header) != 1 {
		t.Errorf("Unexpected config: %+v", config)
	}
	if config.Cache.Size != 16 || config.Watch.DebounceMS != 50 || config.Preview.Addr != ":9000" {
		t.Errorf("Unexpected config: %+v", config)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "target: [swift\n")
	_, err := NewConfigManager(quietOptions(path)).LoadConfig()
	if err == nil || !strings.Contains(err.Error(), "failed to parse configuration file") {
		t.Errorf("Expected a parse error, got %v", err)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(c *ProjectConfig)
		field string
	}{
		{"target", func(c *ProjectConfig) { c.Target = "kotlin" }, "target"},
		{"access level", func(c *ProjectConfig) { c.AccessLevel = "open" }, "access_level"},
		{"absolute dir", func(c *ProjectConfig) { c.SchemasDir = "/tmp/Schemas" }, "schemas_dir"},
		{"escaping dir", func(c *ProjectConfig) { c.EndpointsDir = "../API" }, "endpoints_dir"},
		{"same dirs", func(c *ProjectConfig) { c.EndpointsDir = c.SchemasDir }, "endpoints_dir"},
		{"negative cache", func(c *ProjectConfig) { c.Cache.Size = -1 }, "cache.size"},
		{"negative debounce", func(c *ProjectConfig) { c.Watch.DebounceMS = -5 }, "watch.debounce_ms"},
	}

	if errs := validateConfig(DefaultConfig()); errs.HasErrors() {
		t.Fatalf("Expected the default config to be valid, got %v", errs)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.edit(config)
			errs := validateConfig(config)
			if len(errs) != 1 || errs[0].Field != tt.field {
				t.Errorf("Expected one error for '%s', got %v", tt.field, errs)
			}
		})
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("APIGEN_ACCESS_LEVEL", "package")
	t.Setenv("APIGEN_CACHE_SIZE", "4")

	path := writeConfig(t, "access_level: internal\n")
	config, err := NewConfigManager(quietOptions(path)).LoadConfig()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if config.AccessLevel != "package" || config.Cache.Size != 4 {
		t.Errorf("Expected environment overrides, got %+v", config)
	}

	t.Setenv("APIGEN_CACHE_SIZE", "many")
	if _, err := NewConfigManager(quietOptions(path)).LoadConfig(); err == nil || !strings.Contains(err.Error(), "APIGEN_CACHE_SIZE") {
		t.Errorf("Expected an APIGEN_CACHE_SIZE error, got %v", err)
	}
}

func TestEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("APIGEN_PREVIEW_ADDR=localhost:7000\n"), 0644); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}
	// Registered so the variable set by godotenv is restored after the test.
	t.Setenv("APIGEN_PREVIEW_ADDR", "")
	os.Unsetenv("APIGEN_PREVIEW_ADDR")

	options := quietOptions(filepath.Join(dir, "apigen.yaml"))
	options.EnvFile = envFile
	config, err := NewConfigManager(options).LoadConfig()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if config.Preview.Addr != "localhost:7000" {
		t.Errorf("Expected 'localhost:7000', got '%s'", config.Preview.Addr)
	}
}

func TestSaveAndValidateConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apigen.yaml")
	config := DefaultConfig()
	config.AccessLevel = "internal"

	if err := Save(path, config); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := ValidateConfigFile(path); err != nil {
		t.Errorf("Expected a valid file, got %v", err)
	}
	if err := ValidateConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestGetConfigInfo(t *testing.T) {
	path := writeConfig(t, "skip_endpoints: true\n")
	info, err := GetConfigInfo(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !info.Exists || !info.SkipEndpoints || info.Target != "swift" {
		t.Errorf("Unexpected info: %+v", info)
	}

	summary := info.String()
	for _, part := range []string{"Configuration Summary", "Target: swift (public)", "Endpoints: skipped"} {
		if !strings.Contains(summary, part) {
			t.Errorf("Expected summary to contain '%s', got:\n%s", part, summary)
		}
	}
}
