// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for chatline.
//
// Configuration file locations (in order of precedence):
//   - ~/.chatline/config.toml
//   - ~/.chatline/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/chatline/internal/util"
)

// Default values shared between Default and SetDefaults.
const (
	DefaultGreeting = "Hello! How can I help you today?"
	DefaultFallback = "Sorry, an error occurred while connecting to the server. Please try again."
	DefaultAddr     = "127.0.0.1:8787"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete chatline configuration.
type Config struct {
	// General settings
	Version string `toml:"version" json:"version"`

	// Backend is the remote chat endpoint.
	Backend BackendConfig `toml:"backend" json:"backend"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Storage configuration
	Storage StorageConfig `toml:"storage" json:"storage"`

	// Log configuration
	Log LogConfig `toml:"log" json:"log"`

	// Server configures the local development backend.
	Server ServerConfig `toml:"server" json:"server"`
}

// BackendConfig contains chat backend settings.
type BackendConfig struct {
	// URL is the base URL; requests go to URL + "/api/chat".
	URL string `toml:"url" json:"url"`
	// TimeoutSecs is the per-request timeout.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// MaxRetries is the number of attempts for transient failures.
	MaxRetries int `toml:"max_retries" json:"max_retries"`
	// RatePerSec limits outgoing requests. 0 disables limiting.
	RatePerSec float64 `toml:"rate_per_sec" json:"rate_per_sec"`
	// Burst is the rate limiter burst size.
	Burst int `toml:"burst" json:"burst"`
}

// Timeout returns the request timeout as a duration.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSecs) * time.Second
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// Greeting is the first assistant message of a new conversation.
	Greeting string `toml:"greeting" json:"greeting"`
	// FallbackMessage replaces the assistant reply when an exchange fails.
	FallbackMessage string `toml:"fallback_message" json:"fallback_message"`
	// ShowTimestamps displays message times in the chat view
	ShowTimestamps bool `toml:"show_timestamps" json:"show_timestamps"`
	// Hyperlinks controls OSC 8 terminal links: "auto", "on", "off"
	Hyperlinks string `toml:"hyperlinks" json:"hyperlinks"`
	// Width caps the rendering width. 0 uses the terminal width.
	Width int `toml:"width" json:"width"`
}

// StorageConfig contains conversation history settings.
type StorageConfig struct {
	// Enabled turns on saving conversations to disk
	Enabled bool `toml:"enabled" json:"enabled"`
	// Path is the SQLite database file. Empty uses ~/.chatline/history.db
	Path string `toml:"path" json:"path"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// File is the log file. Empty uses ~/.chatline/chatline.log
	File string `toml:"file" json:"file"`
	// Verbose also logs request details
	Verbose bool `toml:"verbose" json:"verbose"`
}

// ServerConfig contains settings for the local development backend.
type ServerConfig struct {
	// Addr is the listen address
	Addr string `toml:"addr" json:"addr"`
	// AllowedOrigins lists CORS origins; empty allows localhost only
	AllowedOrigins []string `toml:"allowed_origins" json:"allowed_origins"`
	// RatePerSec is the per-client request limit
	RatePerSec float64 `toml:"rate_per_sec" json:"rate_per_sec"`
	// Burst is the per-client burst size
	Burst int `toml:"burst" json:"burst"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Backend: BackendConfig{
			URL:         "",
			TimeoutSecs: 60,
			MaxRetries:  3,
			RatePerSec:  2,
			Burst:       4,
		},

		UI: UIConfig{
			Theme:           "auto",
			Greeting:        DefaultGreeting,
			FallbackMessage: DefaultFallback,
			ShowTimestamps:  true,
			Hyperlinks:      "auto",
			Width:           0,
		},

		Storage: StorageConfig{
			Enabled: true,
			Path:    "",
		},

		Server: ServerConfig{
			Addr:       DefaultAddr,
			RatePerSec: 5,
			Burst:      10,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the chatline configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".chatline"), nil
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

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// StoragePath returns the configured database path or the default one.
func (c *Config) StoragePath() (string, error) {
	if c.Storage.Path != "" {
		return expandHome(c.Storage.Path)
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// LogPath returns the configured log file or the default one.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return expandHome(c.Log.File)
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "chatline.log"), nil
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: Config files should be 0600 (owner read/write only).
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}

	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	var loadErr error

	for _, pathFn := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := pathFn()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		cfg, err := LoadFromPath(path)
		if err == nil {
			return cfg, nil
		}
		// Keep looking; report the first failure if nothing loads.
		if loadErr == nil {
			loadErr = err
		}
	}

	cfg := Default()
	if err := cfg.finish(); err != nil {
		return nil, err
	}

	// Return defaults (with any load error for informational purposes)
	return cfg, loadErr
}

// LoadTOML loads configuration from a TOML file into cfg.
// SECURITY: Checks and fixes file permissions on load.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		fmt.Fprintf(os.Stderr, "Warning: unknown config keys in %s: %s\n", path, strings.Join(keys, ", "))
	}
	return nil
}

// LoadJSON loads configuration from a JSON file into cfg.
// SECURITY: Checks and fixes file permissions on load.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full validation.
// Missing keys keep their default values.
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

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finish applies environment overrides, migration, defaults and validation.
func (c *Config) finish() error {
	c.ApplyEnvOverrides()
	if err := c.Migrate(); err != nil {
		return fmt.Errorf("config migration failed: %w", err)
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
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

// SaveTOML saves the configuration to a TOML file.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# chatline configuration file\n")
	sb.WriteString("# Generated by chatline - edit with care\n")
	sb.WriteString("\n")

	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveJSON(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

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

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Backend
	if c.Backend.URL != "" {
		u, err := url.Parse(c.Backend.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "backend.url",
				Message: fmt.Sprintf("invalid URL '%s', must be an absolute http or https URL", c.Backend.URL),
			})
		}
	}
	if c.Backend.TimeoutSecs < 1 || c.Backend.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "backend.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 600, got %d", c.Backend.TimeoutSecs),
		})
	}
	if c.Backend.MaxRetries < 1 || c.Backend.MaxRetries > 10 {
		errs = append(errs, ValidationError{
			Field:   "backend.max_retries",
			Message: fmt.Sprintf("must be between 1 and 10, got %d", c.Backend.MaxRetries),
		})
	}
	if c.Backend.RatePerSec < 0 {
		errs = append(errs, ValidationError{
			Field:   "backend.rate_per_sec",
			Message: "must not be negative",
		})
	}

	// UI
	validThemes := map[string]bool{"auto": true, "dark": true, "light": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}
	validLinks := map[string]bool{"auto": true, "on": true, "off": true}
	if !validLinks[strings.ToLower(c.UI.Hyperlinks)] {
		errs = append(errs, ValidationError{
			Field:   "ui.hyperlinks",
			Message: fmt.Sprintf("invalid value '%s', must be one of: auto, on, off", c.UI.Hyperlinks),
		})
	}
	if c.UI.Width < 0 {
		errs = append(errs, ValidationError{
			Field:   "ui.width",
			Message: "must not be negative",
		})
	}

	// Server
	if c.Server.RatePerSec < 0 {
		errs = append(errs, ValidationError{
			Field:   "server.rate_per_sec",
			Message: "must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if c.Backend.TimeoutSecs == 0 {
		c.Backend.TimeoutSecs = d.Backend.TimeoutSecs
	}
	if c.Backend.MaxRetries == 0 {
		c.Backend.MaxRetries = d.Backend.MaxRetries
	}
	if c.Backend.Burst == 0 {
		c.Backend.Burst = d.Backend.Burst
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.UI.Greeting == "" {
		c.UI.Greeting = d.UI.Greeting
	}
	if c.UI.FallbackMessage == "" {
		c.UI.FallbackMessage = d.UI.FallbackMessage
	}
	if c.UI.Hyperlinks == "" {
		c.UI.Hyperlinks = d.UI.Hyperlinks
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.Burst == 0 {
		c.Server.Burst = d.Server.Burst
	}
}

// Migrate upgrades values written by older versions.
func (c *Config) Migrate() error {
	c.UI.Theme = strings.ToLower(strings.TrimSpace(c.UI.Theme))

	// Older files used booleans spelled out for hyperlinks.
	switch strings.ToLower(c.UI.Hyperlinks) {
	case "true", "yes", "1":
		c.UI.Hyperlinks = "on"
	case "false", "no", "0":
		c.UI.Hyperlinks = "off"
	}

	c.Backend.URL = strings.TrimSuffix(strings.TrimSpace(c.Backend.URL), "/")
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - CHATLINE_API_URL: overrides backend.url
//   - VITE_API_URL: overrides backend.url when CHATLINE_API_URL is unset
//   - CHATLINE_THEME: overrides ui.theme
//   - CHATLINE_LOG_FILE: overrides log.file
//   - CHATLINE_NO_STORAGE: set to "1" or "true" to disable history
func (c *Config) ApplyEnvOverrides() {
	if u := os.Getenv("CHATLINE_API_URL"); u != "" {
		c.Backend.URL = u
	} else if u := os.Getenv("VITE_API_URL"); u != "" {
		c.Backend.URL = u
	}

	if theme := os.Getenv("CHATLINE_THEME"); theme != "" {
		c.UI.Theme = theme
	}

	if file := os.Getenv("CHATLINE_LOG_FILE"); file != "" {
		c.Log.File = file
	}

	if v := os.Getenv("CHATLINE_NO_STORAGE"); v != "" {
		if v == "1" || strings.ToLower(v) == "true" {
			c.Storage.Enabled = false
		}
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "backend.url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "backend.url").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

// lookup resolves a dot-notation key to a struct field.
func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
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

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes" || lower == "on")
			return nil
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				var items []string
				for _, s := range strings.Split(strVal, ",") {
					if s = strings.TrimSpace(s); s != "" {
						items = append(items, s)
					}
				}
				field.Set(reflect.ValueOf(items))
				return nil
			}
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) && val.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"backend.url",
		"backend.timeout_secs",
		"backend.max_retries",
		"backend.rate_per_sec",
		"backend.burst",
		"ui.theme",
		"ui.greeting",
		"ui.fallback_message",
		"ui.show_timestamps",
		"ui.hyperlinks",
		"ui.width",
		"storage.enabled",
		"storage.path",
		"log.file",
		"log.verbose",
		"server.addr",
		"server.allowed_origins",
		"server.rate_per_sec",
		"server.burst",
	}
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Server.AllowedOrigins != nil {
		clone.Server.AllowedOrigins = append([]string(nil), c.Server.AllowedOrigins...)
	}
	return &clone
}

// String returns a string representation of the config for debugging.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	SetGlobal(cfg)
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
// This should only be used in tests to reset state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
