package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/barisgit/apigen/internal/typegen/swift"
)

// DefaultPath is the configuration file looked up in the working directory.
const DefaultPath = "apigen.yaml"

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation error in field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return "no validation errors"
	}

	var messages []string
	for _, err := range errs {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

func (errs ValidationErrors) HasErrors() bool {
	return len(errs) > 0
}

// ConfigLoadOptions provides options for loading configuration
type ConfigLoadOptions struct {
	Path              string
	EnvFile           string
	AllowMissing      bool
	ValidateStructure bool
	ApplyDefaults     bool
	Quiet             bool
}

// DefaultLoadOptions returns sensible defaults for config loading
func DefaultLoadOptions() ConfigLoadOptions {
	return ConfigLoadOptions{
		Path:              DefaultPath,
		EnvFile:           ".env",
		AllowMissing:      true,
		ValidateStructure: true,
		ApplyDefaults:     true,
		Quiet:             false,
	}
}

// ConfigManager handles configuration loading, validation, and management
type ConfigManager struct {
	options ConfigLoadOptions
}

// NewConfigManager creates a new configuration manager
func NewConfigManager(options ConfigLoadOptions) *ConfigManager {
	return &ConfigManager{
		options: options,
	}
}

// LoadConfig loads and validates the configuration
func (cm *ConfigManager) LoadConfig() (*ProjectConfig, error) {
	return cm.LoadConfigFromPath(cm.options.Path)
}

// LoadConfigFromPath loads configuration from a specific path. Environment
// overrides are applied after the file and before defaults.
func (cm *ConfigManager) LoadConfigFromPath(path string) (*ProjectConfig, error) {
	if err := cm.loadEnvFile(); err != nil {
		return nil, err
	}

	var config ProjectConfig
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if !cm.options.AllowMissing {
			return nil, fmt.Errorf("configuration file not found: %s\n\nRun 'apigen init' to create one", path)
		}
		if !cm.options.Quiet {
			fmt.Printf("⚠️  Configuration file not found at %s, using defaults\n", path)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read configuration file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %s: %w\n\nPlease check your YAML syntax", path, err)
		}
	}

	if errs := applyEnv(&config); errs.HasErrors() {
		return nil, fmt.Errorf("invalid environment overrides:\n%s", formatValidationErrors(errs))
	}

	if cm.options.ApplyDefaults {
		applyDefaults(&config)
	}

	if cm.options.ValidateStructure {
		if errs := validateConfig(&config); errs.HasErrors() {
			return nil, fmt.Errorf("configuration validation failed:\n%s", formatValidationErrors(errs))
		}
	}

	return &config, nil
}

func (cm *ConfigManager) loadEnvFile() error {
	if cm.options.EnvFile == "" {
		return nil
	}
	if _, err := os.Stat(cm.options.EnvFile); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	// godotenv.Load never overrides variables already set in the process.
	if err := godotenv.Load(cm.options.EnvFile); err != nil {
		return fmt.Errorf("failed to load %s: %w", cm.options.EnvFile, err)
	}
	return nil
}

// applyEnv overlays APIGEN_* environment variables.
func applyEnv(config *ProjectConfig) ValidationErrors {
	var errs ValidationErrors

	strs := []struct {
		env string
		dst *string
	}{
		{"APIGEN_TARGET", &config.Target},
		{"APIGEN_ACCESS_LEVEL", &config.AccessLevel},
		{"APIGEN_SCHEMAS_DIR", &config.SchemasDir},
		{"APIGEN_ENDPOINTS_DIR", &config.EndpointsDir},
		{"APIGEN_PREVIEW_ADDR", &config.Preview.Addr},
	}
	for _, s := range strs {
		if v, ok := os.LookupEnv(s.env); ok && v != "" {
			*s.dst = v
		}
	}

	if v, ok := os.LookupEnv("APIGEN_CACHE_SIZE"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   "APIGEN_CACHE_SIZE",
				Value:   v,
				Message: "must be an integer",
			})
		} else {
			config.Cache.Size = n
		}
	}
	return errs
}

// validateConfig performs validation on the configuration
func validateConfig(config *ProjectConfig) ValidationErrors {
	var errors ValidationErrors

	if config.Target != "swift" {
		errors = append(errors, ValidationError{
			Field:   "target",
			Value:   config.Target,
			Message: "unsupported target, valid options are: swift",
		})
	}

	if !contains(swift.AccessLevels, config.AccessLevel) {
		errors = append(errors, ValidationError{
			Field:   "access_level",
			Value:   config.AccessLevel,
			Message: fmt.Sprintf("unsupported access level, valid options are: %s", strings.Join(swift.AccessLevels, ", ")),
		})
	}

	dirs := []struct {
		field string
		value string
	}{
		{"schemas_dir", config.SchemasDir},
		{"endpoints_dir", config.EndpointsDir},
	}
	for _, d := range dirs {
		if d.value == "" {
			errors = append(errors, ValidationError{Field: d.field, Value: d.value, Message: "directory cannot be empty"})
			continue
		}
		if filepath.IsAbs(d.value) || strings.HasPrefix(filepath.Clean(d.value), "..") {
			errors = append(errors, ValidationError{Field: d.field, Value: d.value, Message: "directory must be relative to the output directory"})
		}
	}
	if config.SchemasDir != "" && filepath.Clean(config.SchemasDir) == filepath.Clean(config.EndpointsDir) {
		errors = append(errors, ValidationError{
			Field:   "endpoints_dir",
			Value:   config.EndpointsDir,
			Message: "must differ from schemas_dir",
		})
	}

	if config.Cache.Size < 0 {
		errors = append(errors, ValidationError{
			Field:   "cache.size",
			Value:   config.Cache.Size,
			Message: "cache size cannot be negative",
		})
	}

	if config.Watch.DebounceMS < 0 {
		errors = append(errors, ValidationError{
			Field:   "watch.debounce_ms",
			Value:   config.Watch.DebounceMS,
			Message: "debounce cannot be negative",
		})
	}

	if config.Preview.Addr == "" {
		errors = append(errors, ValidationError{
			Field:   "preview.addr",
			Value:   config.Preview.Addr,
			Message: "preview address cannot be empty",
		})
	}

	return errors
}

// applyDefaults sets default values for missing configuration fields
func applyDefaults(config *ProjectConfig) {
	defaults := DefaultConfig()

	if config.Target == "" {
		config.Target = defaults.Target
	}
	if config.AccessLevel == "" {
		config.AccessLevel = defaults.AccessLevel
	}
	if config.SchemasDir == "" {
		config.SchemasDir = defaults.SchemasDir
	}
	if config.EndpointsDir == "" {
		config.EndpointsDir = defaults.EndpointsDir
	}
	if config.Cache.Size == 0 {
		config.Cache.Size = defaults.Cache.Size
	}
	if config.Watch.DebounceMS == 0 {
		config.Watch.DebounceMS = defaults.Watch.DebounceMS
	}
	if config.Preview.Addr == "" {
		config.Preview.Addr = defaults.Preview.Addr
	}
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *ProjectConfig {
	return &ProjectConfig{
		Target:       "swift",
		AccessLevel:  "public",
		SchemasDir:   "Schemas",
		EndpointsDir: "Endpoints",
		Cache:        CacheConfig{Size: 256},
		Watch:        WatchConfig{DebounceMS: 300},
		Preview:      PreviewConfig{Addr: "127.0.0.1:8787"},
	}
}

func formatValidationErrors(errors ValidationErrors) string {
	var lines []string
	for i, err := range errors {
		lines = append(lines, fmt.Sprintf("  %d. %s", i+1, err.Error()))
	}
	return strings.Join(lines, "\n")
}

// ValidateConfigFile validates a configuration file, failing when it is missing
func ValidateConfigFile(path string) error {
	cm := NewConfigManager(ConfigLoadOptions{
		Path:              path,
		AllowMissing:      false,
		ValidateStructure: true,
		ApplyDefaults:     true,
		Quiet:             true,
	})

	_, err := cm.LoadConfigFromPath(path)
	return err
}

// Save writes config to path as YAML.
func Save(path string, config *ProjectConfig) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write configuration file %s: %w", path, err)
	}
	return nil
}

// GetConfigInfo returns information about the configuration at path
func GetConfigInfo(path string) (*ConfigInfo, error) {
	options := DefaultLoadOptions()
	options.Quiet = true
	config, err := NewConfigManager(options).LoadConfigFromPath(path)
	if err != nil {
		return nil, err
	}

	absPath, _ := filepath.Abs(path)
	_, statErr := os.Stat(path)

	return &ConfigInfo{
		Path:          absPath,
		Exists:        statErr == nil,
		Target:        config.Target,
		AccessLevel:   config.AccessLevel,
		SchemasDir:    config.SchemasDir,
		EndpointsDir:  config.EndpointsDir,
		SkipEndpoints: config.SkipEndpoints,
		CacheSize:     config.Cache.Size,
		Debounce:      config.Watch.Debounce(),
		PreviewAddr:   config.Preview.Addr,
	}, nil
}

// ConfigInfo contains summary information about a configuration
type ConfigInfo struct {
	Path          string
	Exists        bool
	Target        string
	AccessLevel   string
	SchemasDir    string
	EndpointsDir  string
	SkipEndpoints bool
	CacheSize     int
	Debounce      time.Duration
	PreviewAddr   string
}

// String returns a formatted string representation of config info
func (info *ConfigInfo) String() string {
	var lines []string
	lines = append(lines, "📋 Configuration Summary")
	if info.Exists {
		lines = append(lines, fmt.Sprintf("   Path: %s", info.Path))
	} else {
		lines = append(lines, fmt.Sprintf("   Path: %s (not found, defaults)", info.Path))
	}
	lines = append(lines, fmt.Sprintf("   Target: %s (%s)", info.Target, info.AccessLevel))
	lines = append(lines, fmt.Sprintf("   Schemas: %s", info.SchemasDir))
	if info.SkipEndpoints {
		lines = append(lines, "   Endpoints: skipped")
	} else {
		lines = append(lines, fmt.Sprintf("   Endpoints: %s", info.EndpointsDir))
	}
	lines = append(lines, fmt.Sprintf("   Reference cache: %d", info.CacheSize))
	lines = append(lines, fmt.Sprintf("   Watch debounce: %v", info.Debounce))
	lines = append(lines, fmt.Sprintf("   Preview: %s", info.PreviewAddr))

	return strings.Join(lines, "\n")
}

// LoadConfig loads configuration using default options
func LoadConfig() (*ProjectConfig, error) {
	return NewConfigManager(DefaultLoadOptions()).LoadConfig()
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

type ProjectConfig struct {
	Target        string        `yaml:"target"`
	AccessLevel   string        `yaml:"access_level"`
	SchemasDir    string        `yaml:"schemas_dir"`
	EndpointsDir  string        `yaml:"endpoints_dir"`
	SkipEndpoints bool          `yaml:"skip_endpoints"`
	Header        []string      `yaml:"header,omitempty"`
	Cache         CacheConfig   `yaml:"cache"`
	Watch         WatchConfig   `yaml:"watch"`
	Preview       PreviewConfig `yaml:"preview"`
}

type CacheConfig struct {
	Size int `yaml:"size"` // Reference cache entries
}

type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms"`
}

// Debounce returns the debounce as a duration.
func (w WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMS) * time.Millisecond
}

type PreviewConfig struct {
	Addr string `yaml:"addr"`
}
