// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/jeranaias/lowchat/internal/model"
	"github.com/jeranaias/lowchat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete lowchat configuration.
type Config struct {
	Backend BackendConfig `toml:"backend" json:"backend"`
	Retry   RetryConfig   `toml:"retry" json:"retry"`
	Session SessionConfig `toml:"session" json:"session"`
	Render  RenderConfig  `toml:"render" json:"render"`
	UI      UIConfig      `toml:"ui" json:"ui"`
	Logging LoggingConfig `toml:"logging" json:"logging"`
}

// BackendConfig describes where the chat backend lives.
type BackendConfig struct {
	URL        string `toml:"url" json:"url"`
	ChatPath   string `toml:"chat_path" json:"chat_path"`
	HealthPath string `toml:"health_path" json:"health_path"`

	// Provider is the provider selected at startup
	Provider string `toml:"provider" json:"provider"`

	// Temperature is sent with each request when set (0.0-2.0)
	Temperature *float64 `toml:"temperature,omitempty" json:"temperature,omitempty"`

	// TimeoutSecs bounds each attempt; 0 means no explicit timeout
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// RetryConfig controls request retries.
type RetryConfig struct {
	MaxAttempts int `toml:"max_attempts" json:"max_attempts"`

	// BaseDelayMs is multiplied by the attempt number between retries
	BaseDelayMs int `toml:"base_delay_ms" json:"base_delay_ms"`

	// RequestsPerMinute paces requests client-side; 0 means unlimited
	RequestsPerMinute int `toml:"requests_per_minute" json:"requests_per_minute"`
}

// SessionConfig controls session id persistence.
type SessionConfig struct {
	Persist bool   `toml:"persist" json:"persist"`
	File    string `toml:"file" json:"file"`
}

// RenderConfig selects the sanitizer variant and the Markdown style.
type RenderConfig struct {
	AllowSpan  bool   `toml:"allow_span" json:"allow_span"`
	AllowClass bool   `toml:"allow_class" json:"allow_class"`
	Style      string `toml:"style" json:"style"`
}

// UIConfig holds terminal UI preferences.
type UIConfig struct {
	ConfirmReset bool   `toml:"confirm_reset" json:"confirm_reset"`
	ShowFlow     bool   `toml:"show_flow" json:"show_flow"`
	Theme        string `toml:"theme" json:"theme"`
	ExportDir    string `toml:"export_dir" json:"export_dir"`
}

// LoggingConfig controls the log file.
type LoggingConfig struct {
	Level string `toml:"level" json:"level"`
	File  string `toml:"file" json:"file"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:        "http://localhost:8000",
			ChatPath:   "/chat",
			HealthPath: "/health",
			Provider:   string(model.DefaultProvider),
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelayMs: 2000,
		},
		Session: SessionConfig{
			Persist: true,
		},
		Render: RenderConfig{
			Style: "auto",
		},
		UI: UIConfig{
			ConfirmReset: true,
			Theme:        "auto",
			ExportDir:    ".",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the lowchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".lowchat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ResolvePath returns the config file that Load would read: the TOML file if
// present, else the JSON file if present, else the TOML path.
func ResolvePath() (string, error) {
	tomlPath, err := ConfigPathTOML()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath, nil
	}
	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, err := os.Stat(jsonPath); err == nil {
			return jsonPath, nil
		}
	}
	return tomlPath, nil
}

// inConfigDir resolves name inside the config directory, falling back to
// the working directory.
func inConfigDir(name string) string {
	dir, err := ConfigDir()
	if err != nil {
		return name
	}
	return filepath.Join(dir, name)
}

// SessionPath returns the session file path.
func (c *Config) SessionPath() string {
	if c.Session.File != "" {
		return expandHome(c.Session.File)
	}
	return inConfigDir("session.json")
}

// LogPath returns the log file path.
func (c *Config) LogPath() string {
	if c.Logging.File != "" {
		return expandHome(c.Logging.File)
	}
	return inConfigDir("lowchat.log")
}

// HistoryPath returns the line-editor history file used by the chat command.
func (c *Config) HistoryPath() string {
	return inConfigDir("history")
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// Timeout returns the per-attempt timeout, zero when unset.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSecs) * time.Second
}

// BaseDelay returns the retry base delay.
func (c *Config) BaseDelay() time.Duration {
	return time.Duration(c.Retry.BaseDelayMs) * time.Millisecond
}

// Provider returns the configured provider, or the default when invalid.
func (c *Config) Provider() model.Provider {
	p, err := model.ParseProvider(c.Backend.Provider)
	if err != nil {
		return model.DefaultProvider
	}
	return p
}

// LogLevel returns the parsed log level, info when invalid.
func (c *Config) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level))
	if err != nil || c.Logging.Level == "" {
		return zerolog.InfoLevel
	}
	return level
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	var loadErr error

	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			cfg, err := LoadFromPath(tomlPath)
			if err == nil {
				return cfg, nil
			}
			loadErr = fmt.Errorf("failed to load TOML config: %w", err)
		}
	}

	if loadErr == nil {
		jsonPath, err := ConfigPathJSON()
		if err == nil {
			if _, statErr := os.Stat(jsonPath); statErr == nil {
				cfg, err := LoadFromPath(jsonPath)
				if err == nil {
					return cfg, nil
				}
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			}
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Return defaults (with any load error for informational purposes)
	return cfg, loadErr
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

// LoadFromPath loads configuration from a specific file path with env
// overrides and validation. Keys missing from the file keep their defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in values a file explicitly left empty.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Backend.URL == "" {
		cfg.Backend.URL = defaults.Backend.URL
	}
	if cfg.Backend.ChatPath == "" {
		cfg.Backend.ChatPath = defaults.Backend.ChatPath
	}
	if cfg.Backend.HealthPath == "" {
		cfg.Backend.HealthPath = defaults.Backend.HealthPath
	}
	if cfg.Backend.Provider == "" {
		cfg.Backend.Provider = defaults.Backend.Provider
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = defaults.Retry.MaxAttempts
	}
	if cfg.Render.Style == "" {
		cfg.Render.Style = defaults.Render.Style
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.UI.ExportDir == "" {
		cfg.UI.ExportDir = defaults.UI.ExportDir
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# lowchat configuration file\n")
	buf.WriteString("# Generated by lowchat - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration to a JSON file with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every field and returns all problems at once.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Backend
	if u, err := url.Parse(c.Backend.URL); err != nil || u.Host == "" {
		add("backend.url", "invalid URL '%s'", c.Backend.URL)
	} else if u.Scheme != "http" && u.Scheme != "https" {
		add("backend.url", "scheme must be http or https, got '%s'", u.Scheme)
	}
	if !strings.HasPrefix(c.Backend.ChatPath, "/") {
		add("backend.chat_path", "must start with '/', got '%s'", c.Backend.ChatPath)
	}
	if !strings.HasPrefix(c.Backend.HealthPath, "/") {
		add("backend.health_path", "must start with '/', got '%s'", c.Backend.HealthPath)
	}
	if _, err := model.ParseProvider(c.Backend.Provider); err != nil {
		add("backend.provider", "%v", err)
	}
	if t := c.Backend.Temperature; t != nil && (*t < 0 || *t > 2) {
		add("backend.temperature", "must be between 0.0 and 2.0, got %g", *t)
	}
	if c.Backend.TimeoutSecs < 0 {
		add("backend.timeout_secs", "must not be negative, got %d", c.Backend.TimeoutSecs)
	}

	// Retry
	if c.Retry.MaxAttempts < 1 || c.Retry.MaxAttempts > 10 {
		add("retry.max_attempts", "must be between 1 and 10, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.BaseDelayMs < 0 || c.Retry.BaseDelayMs > 60000 {
		add("retry.base_delay_ms", "must be between 0 and 60000, got %d", c.Retry.BaseDelayMs)
	}
	if c.Retry.RequestsPerMinute < 0 {
		add("retry.requests_per_minute", "must not be negative, got %d", c.Retry.RequestsPerMinute)
	}

	// UI
	validThemes := map[string]bool{"auto": true, "dark": true, "light": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		add("ui.theme", "invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme)
	}

	// Logging
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil {
		add("logging.level", "invalid level '%s'", c.Logging.Level)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported variables:
//   - LOWCHAT_URL: overrides backend.url
//   - LOWCHAT_PROVIDER: overrides backend.provider
//   - LOWCHAT_MAX_ATTEMPTS: overrides retry.max_attempts
//   - LOWCHAT_LOG_LEVEL: overrides logging.level
//   - LOWCHAT_SESSION_FILE: overrides session.file
func (c *Config) ApplyEnvOverrides() {
	if u := os.Getenv("LOWCHAT_URL"); u != "" {
		c.Backend.URL = u
	}
	if p := os.Getenv("LOWCHAT_PROVIDER"); p != "" {
		c.Backend.Provider = strings.ToLower(p)
	}
	if n := os.Getenv("LOWCHAT_MAX_ATTEMPTS"); n != "" {
		if v, err := strconv.Atoi(n); err == nil {
			c.Retry.MaxAttempts = v
		}
	}
	if level := os.Getenv("LOWCHAT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if f := os.Getenv("LOWCHAT_SESSION_FILE"); f != "" {
		c.Session.File = f
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "retry.max_attempts").
func (c *Config) Get(key string) (any, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	if field.Kind() == reflect.Pointer {
		if field.IsNil() {
			return nil, nil
		}
		return field.Elem().Interface(), nil
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "backend.url").
func (c *Config) Set(key string, value any) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from a value with type conversion.
// String input is parsed for numeric, boolean and pointer fields.
func setFieldValue(field reflect.Value, value any) error {
	if field.Kind() == reflect.Pointer {
		if s, ok := value.(string); ok && (s == "" || strings.EqualFold(s, "none")) {
			field.Set(reflect.Zero(field.Type()))
			return nil
		}
		elem := reflect.New(field.Type().Elem())
		if err := setFieldValue(elem.Elem(), value); err != nil {
			return err
		}
		field.Set(elem)
		return nil
	}

	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %w", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %w", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"backend.url",
		"backend.chat_path",
		"backend.health_path",
		"backend.provider",
		"backend.temperature",
		"backend.timeout_secs",
		"retry.max_attempts",
		"retry.base_delay_ms",
		"retry.requests_per_minute",
		"session.persist",
		"session.file",
		"render.allow_span",
		"render.allow_class",
		"render.style",
		"ui.confirm_reset",
		"ui.show_flow",
		"ui.theme",
		"ui.export_dir",
		"logging.level",
		"logging.file",
	}
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Backend.Temperature != nil {
		t := *c.Backend.Temperature
		clone.Backend.Temperature = &t
	}
	return &clone
}

// String returns the configuration as indented JSON.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
