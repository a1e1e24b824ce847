// chatline - A terminal chat client that renders assistant replies as markdown.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/chatline/internal/cli"
	"github.com/jeranaias/chatline/internal/config"
	"github.com/jeranaias/chatline/internal/ui/chat"
	"github.com/jeranaias/chatline/internal/ui/components"
	"github.com/jeranaias/chatline/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args, err := cli.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'chatline --help' for usage.")
		os.Exit(cli.ExitCode(err))
	}

	if cmd == cli.CmdTUI {
		err = runTUI(args)
	} else {
		// Command output owns stdout and stderr; diagnostics only with -v.
		if !args.Verbose {
			log.SetOutput(io.Discard)
		}
		err = cli.Run(context.Background(), cmd, args)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.ExitCode(err))
	}
}

// =============================================================================
// LOGGING
// =============================================================================

// setupLogging sends the standard logger to the log file. The TUI owns the
// screen, so log lines never go to stderr. The returned func closes the file.
func setupLogging(cfg *config.Config) func() {
	path, err := cfg.LogPath()
	if err == nil {
		err = os.MkdirAll(filepath.Dir(path), 0700)
	}
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}

	// SECURITY: 0600 - log lines include backend URLs and thread IDs
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}

	log.SetOutput(f)
	return func() { f.Close() }
}

// =============================================================================
// TUI
// =============================================================================

func runTUI(args cli.Args) error {
	// USABILITY: the full-screen UI needs a terminal on both ends
	if !cli.IsTTY() || !cli.IsStdoutTTY() {
		return errors.New("the chat UI needs a terminal; use 'chatline ask' or 'chatline chat' for pipes")
	}

	cfg, err := cli.LoadConfig(args)
	if err != nil {
		return err
	}

	closeLog := setupLogging(cfg)
	defer closeLog()
	log.Printf("STARTUP | version=%s backend=%q", Version, cfg.Backend.URL)

	mode, err := styles.ParseThemeMode(cfg.UI.Theme)
	if err != nil {
		return err
	}
	renderer := lipgloss.DefaultRenderer()
	if args.NoColor || os.Getenv("NO_COLOR") != "" {
		renderer = lipgloss.NewRenderer(os.Stdout)
		renderer.SetColorProfile(termenv.Ascii)
	}
	theme := styles.NewThemeWithRenderer(mode, renderer)

	store, err := cli.OpenStore(cfg)
	if err != nil {
		// RELIABILITY: a broken history database never blocks chatting
		log.Printf("STORAGE | open failed err=%v", err)
		fmt.Fprintf(os.Stderr, "Warning: history unavailable: %v\n", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	linkMode, err := components.ParseHyperlinkMode(cfg.UI.Hyperlinks)
	if err != nil {
		return err
	}
	var hyperlinks bool
	switch linkMode {
	case components.HyperlinksOn:
		hyperlinks = true
	case components.HyperlinksAuto:
		hyperlinks = !args.NoColor && linkMode.Enabled()
	}

	m := chat.New(theme, cli.NewExchanger(cfg)).
		WithGreeting(cfg.UI.Greeting).
		WithBackendURL(cfg.Backend.URL).
		WithHyperlinks(hyperlinks).
		WithTimestamps(cfg.UI.ShowTimestamps)
	if store != nil {
		m = m.WithStore(store)
	}

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Enable mouse wheel scrolling
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watchConfig(ctx, args, p)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running chatline: %w", err)
	}
	return nil
}

// watchConfig forwards config file edits to the running program. Only
// settings that can change without a restart are sent.
func watchConfig(ctx context.Context, args cli.Args, p *tea.Program) {
	path := args.ConfigPath
	if path == "" {
		var err error
		if path, err = config.ConfigPathTOML(); err != nil {
			return
		}
	}
	if _, err := os.Stat(path); err != nil {
		return
	}

	err := config.Watch(ctx, path, func(cfg *config.Config, err error) {
		if err != nil {
			p.Send(chat.SettingsMsg{Err: err})
			return
		}
		p.Send(chat.SettingsMsg{ShowTimestamps: cfg.UI.ShowTimestamps, Greeting: cfg.UI.Greeting})
	})
	if err != nil {
		log.Printf("CONFIG | watch failed path=%s err=%v", path, err)
	}
}
