// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration commands.
//
// Command: config [subcommand]
// Short:   Show or change settings
//
// Subcommands:
//   show (default)        Print the effective configuration as TOML
//   get <key>             Print one setting (dot notation)
//   set <key> <value>     Change one setting and save the file
//   path                  Print the config file path
//
// Examples:
//   chatline config
//   chatline config get backend.url
//   chatline config set backend.url http://localhost:8787
//   chatline config set ui.theme light
//
// Keys: run "chatline config show" to see every key.

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/chatline/internal/config"
)

func runConfig(a Args) error {
	switch a.Subcommand("show") {
	case "path":
		path, err := configPath(a)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.Stdout, path)
		return nil
	case "set":
		return configSet(a)
	}

	cfg, err := LoadConfig(a)
	if err != nil {
		return err
	}

	switch a.Subcommand("show") {
	case "get":
		key := a.Positional[1]
		value, err := cfg.Get(key)
		if err != nil {
			return usageErrorf("config get: %v (known keys: %s)", err, strings.Join(config.GetAllKeys(), ", "))
		}
		if a.JSON {
			return NewJSONResponse("config get", map[string]any{"key": key, "value": value}).Print(a.Stdout)
		}
		fmt.Fprintln(a.Stdout, formatValue(value))
		return nil

	default:
		if a.JSON {
			return NewJSONResponse("config show", cfg).Print(a.Stdout)
		}
		return toml.NewEncoder(a.Stdout).Encode(cfg)
	}
}

// configSet changes one key in the config file itself, not in the
// effective config, so environment overrides are not written back.
func configSet(a Args) error {
	key, value := a.Positional[1], a.Positional[2]

	path, err := configPath(a)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if _, statErr := os.Stat(path); statErr == nil {
		if err := loadFile(cfg, path); err != nil {
			return err
		}
	}

	if err := cfg.Set(key, value); err != nil {
		return usageErrorf("config set: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return usageErrorf("config set: %v", err)
	}

	if strings.HasSuffix(path, ".json") {
		err = config.SaveJSON(cfg, path)
	} else {
		err = config.SaveTOML(cfg, path)
	}
	if err != nil {
		return err
	}

	if a.JSON {
		return NewJSONResponse("config set", map[string]string{"key": key, "value": value, "path": path}).Print(a.Stdout)
	}
	fmt.Fprintf(a.Stdout, "Set %s = %s in %s\n", key, value, path)
	return nil
}

func configPath(a Args) (string, error) {
	if a.ConfigPath != "" {
		return a.ConfigPath, nil
	}
	return config.ConfigPathTOML()
}

func loadFile(cfg *config.Config, path string) error {
	if strings.HasSuffix(path, ".json") {
		return config.LoadJSON(cfg, path)
	}
	return config.LoadTOML(cfg, path)
}

func formatValue(v any) string {
	switch v := v.(type) {
	case []string:
		return strings.Join(v, ",")
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
