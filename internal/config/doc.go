// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for chatline.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, validation and hot reload.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - BackendConfig: Chat backend URL, timeouts, retries and rate limit
//   - UIConfig: Theme, greeting, fallback text and rendering options
//   - StorageConfig: Conversation history database
//   - ServerConfig: Local development backend
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (CHATLINE_*, VITE_API_URL)
//   - ~/.chatline/config.toml
//   - ~/.chatline/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	url := cfg.Backend.URL
//	timeout := cfg.Backend.Timeout()
//
// Reload on change:
//
//	err := config.Watch(ctx, path, func(cfg *config.Config, err error) { ... })
package config
