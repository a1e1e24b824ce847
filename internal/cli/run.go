// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// run.go - Command dispatch and shared setup.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatline/internal/backend"
	"github.com/jeranaias/chatline/internal/config"
	"github.com/jeranaias/chatline/internal/storage"
	"github.com/jeranaias/chatline/internal/ui/components"
	"github.com/jeranaias/chatline/internal/ui/styles"
)

// Run executes every command except CmdTUI, which main owns.
func Run(ctx context.Context, cmd Command, a Args) error {
	switch cmd {
	case CmdAsk:
		return runAsk(ctx, a)
	case CmdChat:
		return runChat(ctx, a)
	case CmdRender:
		return runRender(a)
	case CmdSessions:
		return runSessions(ctx, a)
	case CmdConfig:
		return runConfig(a)
	case CmdServe:
		return runServe(ctx, a)
	case CmdVersion:
		return runVersion(a)
	case CmdHelp:
		PrintUsage(a.Stdout)
		return nil
	}
	return fmt.Errorf("command %s cannot be run here", cmd)
}

func runVersion(a Args) error {
	if a.JSON {
		return NewJSONResponse("version", map[string]string{
			"version":    Version,
			"git_commit": GitCommit,
			"build_date": BuildDate,
		}).Print(a.Stdout)
	}
	PrintVersion(a.Stdout)
	return nil
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// LoadConfig loads the configuration named by --config, or the default
// files, then applies --api-url. A missing --config file yields defaults so
// "config set" can create it. A broken default file is reported on stderr
// and defaults are used.
func LoadConfig(a Args) (*config.Config, error) {
	var cfg *config.Config
	if a.ConfigPath != "" {
		if _, err := os.Stat(a.ConfigPath); errors.Is(err, os.ErrNotExist) {
			cfg = config.Default()
			cfg.ApplyEnvOverrides()
			cfg.SetDefaults()
		} else {
			loaded, err := config.LoadFromPath(a.ConfigPath)
			if err != nil {
				return nil, err
			}
			cfg = loaded
		}
	} else {
		loaded, err := config.Load()
		if err != nil {
			if loaded == nil {
				return nil, err
			}
			fmt.Fprintf(stderr(a), "Warning: %v (using defaults)\n", err)
		}
		cfg = loaded
	}

	if a.APIURL != "" {
		cfg.Backend.URL = a.APIURL
	}
	if a.Verbose {
		cfg.Log.Verbose = true
	}
	return cfg, nil
}

// NewExchanger builds the backend client and exchanger from cfg.
func NewExchanger(cfg *config.Config) *backend.Exchanger {
	client := backend.NewClient(cfg.Backend.URL).
		WithTimeout(cfg.Backend.Timeout()).
		WithMaxRetries(cfg.Backend.MaxRetries).
		WithRateLimit(cfg.Backend.RatePerSec, cfg.Backend.Burst).
		WithUserAgent("chatline/" + Version)
	if !client.IsConfigured() {
		log.Printf("BACKEND | url not configured, replies will use the fallback message")
	}
	return backend.NewExchanger(client).WithFallback(cfg.UI.FallbackMessage)
}

// OpenStore opens the history database. It returns nil without error when
// storage is disabled.
func OpenStore(cfg *config.Config) (*storage.Store, error) {
	if !cfg.Storage.Enabled {
		return nil, nil
	}
	path, err := cfg.StoragePath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve history path: %w", err)
	}
	return storage.Open(path)
}

// requireStore is OpenStore for commands that cannot work without history.
func requireStore(cfg *config.Config) (*storage.Store, error) {
	store, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("conversation history is disabled (storage.enabled = false)")
	}
	return store, nil
}

// newTheme builds a theme whose renderer targets w, so piped output and
// --no-color produce no escape sequences.
func newTheme(cfg *config.Config, a Args, w io.Writer) *styles.Theme {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(colorProfile(a.NoColor, w))
	mode, err := styles.ParseThemeMode(cfg.UI.Theme)
	if err != nil {
		log.Printf("CONFIG | %v", err)
	}
	return styles.NewThemeWithRenderer(mode, r)
}

// newMarkdownView builds a MarkdownView for output to w. Width 0 uses the
// configured width, then the terminal width.
func newMarkdownView(cfg *config.Config, a Args, w io.Writer) *components.MarkdownView {
	md := components.NewMarkdownView(newTheme(cfg, a, w))
	md.SetWidth(renderWidth(cfg, a, w))

	links := a.Links
	if links == "" {
		links = cfg.UI.Hyperlinks
	}
	mode, err := components.ParseHyperlinkMode(links)
	if err != nil {
		log.Printf("CONFIG | %v", err)
	}
	switch mode {
	case components.HyperlinksOn:
		md.SetHyperlinks(true)
	case components.HyperlinksOff:
		md.SetHyperlinks(false)
	default:
		md.SetHyperlinks(!a.NoColor && isTerminal(w) && mode.Enabled())
	}
	return md
}

func renderWidth(cfg *config.Config, a Args, w io.Writer) int {
	switch {
	case a.Width > 0:
		return a.Width
	case cfg.UI.Width > 0:
		return cfg.UI.Width
	case isTerminal(w):
		return terminalWidth(w)
	}
	return 0
}

func stderr(a Args) io.Writer {
	if a.Stderr != nil {
		return a.Stderr
	}
	return os.Stderr
}
