// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// isolateHome points the home directory at a temp dir and clears overrides.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("CHATLINE_API_URL", "")
	t.Setenv("VITE_API_URL", "")
	t.Setenv("CHATLINE_THEME", "")
	t.Setenv("CHATLINE_LOG_FILE", "")
	t.Setenv("CHATLINE_NO_STORAGE", "")
	return home
}

// =============================================================================
// DEFAULTS AND LOADING
// =============================================================================

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v, want nil", err)
	}
	if cfg.UI.Greeting != DefaultGreeting {
		t.Errorf("UI.Greeting = %q, want %q", cfg.UI.Greeting, DefaultGreeting)
	}
	if !cfg.Storage.Enabled {
		t.Error("Storage should be enabled by default")
	}
}

func TestLoad_NoFiles(t *testing.T) {
	isolateHome(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend.TimeoutSecs != 60 {
		t.Errorf("Backend.TimeoutSecs = %d, want 60", cfg.Backend.TimeoutSecs)
	}
}

func TestLoad_TOML(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, ".chatline")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	content := `
[backend]
url = "https://chat.example.com/"
max_retries = 2

[ui]
theme = "Light"
greeting = "¡Hola! ¿En qué puedo ayudarte hoy?"
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend.URL != "https://chat.example.com" {
		t.Errorf("Backend.URL = %q, want trailing slash trimmed", cfg.Backend.URL)
	}
	if cfg.Backend.MaxRetries != 2 {
		t.Errorf("Backend.MaxRetries = %d, want 2", cfg.Backend.MaxRetries)
	}
	if cfg.Backend.TimeoutSecs != 60 {
		t.Errorf("Backend.TimeoutSecs = %d, want default 60", cfg.Backend.TimeoutSecs)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("UI.Theme = %q, want %q", cfg.UI.Theme, "light")
	}
	if cfg.UI.Greeting != "¡Hola! ¿En qué puedo ayudarte hoy?" {
		t.Errorf("UI.Greeting = %q", cfg.UI.Greeting)
	}
	if !cfg.Storage.Enabled {
		t.Error("Storage.Enabled should keep its default when omitted")
	}

	info, err := os.Stat(filepath.Join(dir, "config.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 && os.PathSeparator == '/' {
		t.Errorf("config permissions = %o, want 600", perm)
	}
}

func TestLoad_InvalidFileFallsBackToDefaults(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, ".chatline")
	os.MkdirAll(dir, 0700)
	os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[ui]\ntheme = \"neon\"\n"), 0600)

	cfg, err := Load()
	if err == nil {
		t.Fatal("Load() should report the invalid file")
	}
	if cfg == nil || cfg.UI.Theme != "auto" {
		t.Errorf("Load() should still return defaults, got %+v", cfg)
	}
}

func TestLoadFromPath_JSON(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte(`{"backend":{"url":"http://localhost:3000"},"ui":{"hyperlinks":"false"}}`), 0600)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if cfg.Backend.URL != "http://localhost:3000" {
		t.Errorf("Backend.URL = %q", cfg.Backend.URL)
	}
	if cfg.UI.Hyperlinks != "off" {
		t.Errorf("UI.Hyperlinks = %q, want migrated to off", cfg.UI.Hyperlinks)
	}
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := Default()
	cfg.Backend.URL = "https://api.example.com"
	cfg.Server.AllowedOrigins = []string{"http://localhost:5173"}

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "# chatline configuration file") {
		t.Error("saved file should start with the header comment")
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if loaded.Backend.URL != cfg.Backend.URL {
		t.Errorf("Backend.URL = %q, want %q", loaded.Backend.URL, cfg.Backend.URL)
	}
	if len(loaded.Server.AllowedOrigins) != 1 {
		t.Errorf("AllowedOrigins = %v", loaded.Server.AllowedOrigins)
	}
}

// =============================================================================
// ENVIRONMENT
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	isolateHome(t)
	t.Setenv("VITE_API_URL", "http://vite.example")
	cfg := Default()
	cfg.ApplyEnvOverrides()
	if cfg.Backend.URL != "http://vite.example" {
		t.Errorf("VITE_API_URL not applied: %q", cfg.Backend.URL)
	}

	t.Setenv("CHATLINE_API_URL", "http://chatline.example")
	t.Setenv("CHATLINE_NO_STORAGE", "true")
	t.Setenv("CHATLINE_THEME", "dark")
	cfg = Default()
	cfg.ApplyEnvOverrides()
	if cfg.Backend.URL != "http://chatline.example" {
		t.Errorf("CHATLINE_API_URL should win, got %q", cfg.Backend.URL)
	}
	if cfg.Storage.Enabled {
		t.Error("CHATLINE_NO_STORAGE should disable storage")
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("UI.Theme = %q, want dark", cfg.UI.Theme)
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"relative url", func(c *Config) { c.Backend.URL = "/api" }, "backend.url"},
		{"ftp url", func(c *Config) { c.Backend.URL = "ftp://x" }, "backend.url"},
		{"zero timeout", func(c *Config) { c.Backend.TimeoutSecs = 0 }, "backend.timeout_secs"},
		{"too many retries", func(c *Config) { c.Backend.MaxRetries = 50 }, "backend.max_retries"},
		{"negative rate", func(c *Config) { c.Backend.RatePerSec = -1 }, "backend.rate_per_sec"},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"bad hyperlinks", func(c *Config) { c.UI.Hyperlinks = "maybe" }, "ui.hyperlinks"},
		{"negative width", func(c *Config) { c.UI.Width = -1 }, "ui.width"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.modify(cfg)
			err := cfg.Validate()
			var verrs ValidateErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("Validate() = %v, want ValidateErrors", err)
			}
			if verrs[0].Field != tc.field {
				t.Errorf("Field = %q, want %q", verrs[0].Field, tc.field)
			}
		})
	}
}

// =============================================================================
// GET / SET
// =============================================================================

func TestGetSet(t *testing.T) {
	cfg := Default()

	if err := cfg.Set("backend.url", "http://localhost:8787"); err != nil {
		t.Fatalf("Set(backend.url) error = %v", err)
	}
	if err := cfg.Set("backend.timeout_secs", "15"); err != nil {
		t.Fatalf("Set(timeout) error = %v", err)
	}
	if err := cfg.Set("ui.show_timestamps", "no"); err != nil {
		t.Fatalf("Set(show_timestamps) error = %v", err)
	}
	if err := cfg.Set("server.allowed_origins", "http://a, http://b"); err != nil {
		t.Fatalf("Set(allowed_origins) error = %v", err)
	}
	if err := cfg.Set("backend.rate_per_sec", "0.5"); err != nil {
		t.Fatalf("Set(rate) error = %v", err)
	}

	if v, _ := cfg.Get("backend.url"); v != "http://localhost:8787" {
		t.Errorf("Get(backend.url) = %v", v)
	}
	if v, _ := cfg.Get("backend.timeout_secs"); v != 15 {
		t.Errorf("Get(timeout_secs) = %v, want 15", v)
	}
	if cfg.UI.ShowTimestamps {
		t.Error("ShowTimestamps should be false")
	}
	if got := cfg.Server.AllowedOrigins; len(got) != 2 || got[1] != "http://b" {
		t.Errorf("AllowedOrigins = %v", got)
	}
	if cfg.Backend.RatePerSec != 0.5 {
		t.Errorf("RatePerSec = %v, want 0.5", cfg.Backend.RatePerSec)
	}

	if _, err := cfg.Get("backend.nope"); err == nil {
		t.Error("Get(unknown) should fail")
	}
	if err := cfg.Set("backend.timeout_secs", "abc"); err == nil {
		t.Error("Set(non-integer) should fail")
	}
	if _, err := cfg.Get(""); err == nil {
		t.Error("Get(\"\") should fail")
	}
}

func TestGetAllKeys_Resolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%q) error = %v", key, err)
		}
	}
}

func TestClone_Deep(t *testing.T) {
	cfg := Default()
	cfg.Server.AllowedOrigins = []string{"a"}
	clone := cfg.Clone()
	clone.Server.AllowedOrigins[0] = "b"
	if cfg.Server.AllowedOrigins[0] != "a" {
		t.Error("Clone should deep copy AllowedOrigins")
	}
}

func TestPaths(t *testing.T) {
	home := isolateHome(t)
	cfg := Default()

	p, err := cfg.StoragePath()
	if err != nil || p != filepath.Join(home, ".chatline", "history.db") {
		t.Errorf("StoragePath() = %q, %v", p, err)
	}

	cfg.Log.File = "~/logs/c.log"
	p, err = cfg.LogPath()
	if err != nil || p != filepath.Join(home, "logs", "c.log") {
		t.Errorf("LogPath() = %q, %v", p, err)
	}
}

// =============================================================================
// GLOBAL (CONCURRENCY)
// =============================================================================

// TestConfig_ConcurrentAccess tests that Global(), SetGlobal(), and ReloadGlobal()
// can be safely called concurrently without race conditions.
// Run with: go test -race -v ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	isolateHome(t)
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			SetGlobal(Default())
		}()
		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
		go func() {
			defer wg.Done()
			_ = ReloadGlobal()
		}()
	}
	wg.Wait()
}

func TestConfig_SetGlobalOverwrites(t *testing.T) {
	isolateHome(t)
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	_ = Global()
	custom := Default()
	custom.Version = "custom-version"
	SetGlobal(custom)

	if Global().Version != "custom-version" {
		t.Errorf("Global().Version = %q, want custom-version", Global().Version)
	}
}

// =============================================================================
// WATCH
// =============================================================================

func TestWatch_Reload(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := SaveTOML(Default(), path); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	err := Watch(ctx, path, func(cfg *Config, err error) {
		if err == nil {
			got <- cfg
		}
	})
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	cfg := Default()
	cfg.UI.Theme = "dark"
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-got:
		if c.UI.Theme != "dark" {
			t.Errorf("reloaded UI.Theme = %q, want dark", c.UI.Theme)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after config change")
	}
}
