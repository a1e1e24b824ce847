// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing for chatline.
//
// CLI: Comprehensive help and examples for all commands
package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/pflag"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdRender
	CmdSessions
	CmdConfig
	CmdServe
	CmdVersion
	CmdHelp
)

var commandNames = map[string]Command{
	"tui":      CmdTUI,
	"ask":      CmdAsk,
	"chat":     CmdChat,
	"render":   CmdRender,
	"sessions": CmdSessions,
	"session":  CmdSessions,
	"config":   CmdConfig,
	"serve":    CmdServe,
	"version":  CmdVersion,
	"help":     CmdHelp,
}

// String returns the command name.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdAsk:
		return "ask"
	case CmdChat:
		return "chat"
	case CmdRender:
		return "render"
	case CmdSessions:
		return "sessions"
	case CmdConfig:
		return "config"
	case CmdServe:
		return "serve"
	case CmdVersion:
		return "version"
	default:
		return "help"
	}
}

// Args holds parsed command-line arguments.
type Args struct {
	// Global flags
	ConfigPath string
	APIURL     string
	Verbose    bool
	NoColor    bool

	// Command flags
	JSON   bool
	Thread string
	Format string
	Width  int
	Links  string
	Output string
	Limit  int
	Search string
	Addr   string

	// Positional holds the arguments after the command name.
	Positional []string

	// I/O streams; Parse sets them to the process streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Subcommand returns the first positional argument or def.
func (a Args) Subcommand(def string) string {
	if len(a.Positional) > 0 {
		return a.Positional[0]
	}
	return def
}

const usageText = `chatline - terminal chat client with inline markdown rendering

Usage:
  chatline [global flags] [command] [flags]

Commands:
  tui                       Full-screen chat (default)
  ask <message>             Send one message and print the reply
  chat                      Line-mode chat with input history
  render [file|-]           Render markdown-subset text
  sessions [list]           List saved conversations
  sessions show <id>        Print a saved conversation
  sessions delete <id>      Delete a saved conversation
  sessions export <id>      Export a conversation (html, md, json)
  config [show]             Print the effective configuration
  config get <key>          Print one setting
  config set <key> <value>  Change one setting and save
  config path               Print the config file path
  serve                     Run the local development backend
  version                   Print version information
  help                      Show this help

Global Flags:
  -c, --config PATH         Config file (default ~/.chatline/config.toml)
      --api-url URL         Backend base URL (overrides config and env)
  -v, --verbose             Also write logs to stderr
      --no-color            Disable colored output

Command Flags:
  ask:      -t, --thread ID, --json, -w, --width N, --links auto|on|off
  render:   -f, --format ansi|plain|html|tree|json, -w, --width N,
            --links auto|on|off
  sessions: -n, --limit N, -s, --search TEXT, --json,
            -f, --format html|md|json, -o, --output PATH
  config:   --json
  serve:    --addr HOST:PORT
  version:  --json

Examples:
  chatline --api-url http://localhost:8787
  chatline ask "What is **markdown**?"
  echo "- one\n- two" | chatline render --format tree
  chatline sessions export 3f2a --format html -o chat.html
  chatline serve --addr 127.0.0.1:8787

Environment:
  CHATLINE_API_URL, VITE_API_URL   Backend base URL
  CHATLINE_THEME                   auto, dark or light
  CHATLINE_NO_STORAGE              Set to 1 to disable history
  NO_COLOR                         Disable colored output
  OSC8                             1 forces, 0 disables terminal hyperlinks
`

// PrintUsage writes the usage text to w.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// PrintVersion writes version information to w.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "chatline %s\n", Version)
	fmt.Fprintf(w, "  Commit:  %s\n", GitCommit)
	fmt.Fprintf(w, "  Built:   %s\n", BuildDate)
	fmt.Fprintf(w, "  Go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// =============================================================================
// PARSING
// =============================================================================

// Parse parses argv (without the program name). Global flags may appear
// before or after the command name. A parse failure is a *UsageError.
func Parse(argv []string) (Command, Args, error) {
	args := Args{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}

	var showHelp, showVersion bool
	global := pflag.NewFlagSet("chatline", pflag.ContinueOnError)
	global.SetOutput(io.Discard)
	global.SetInterspersed(false)
	addGlobalFlags(global, &args)
	global.BoolVarP(&showHelp, "help", "h", false, "show help")
	global.BoolVar(&showVersion, "version", false, "show version")

	if err := global.Parse(argv); err != nil {
		return CmdHelp, args, usageErrorf("%v", err)
	}
	if showHelp {
		return CmdHelp, args, nil
	}
	if showVersion {
		return CmdVersion, args, nil
	}

	rest := global.Args()
	if len(rest) == 0 {
		return CmdTUI, args, nil
	}

	cmd, ok := commandNames[rest[0]]
	if !ok {
		return CmdHelp, args, usageErrorf("unknown command %q", rest[0])
	}

	fs := pflag.NewFlagSet(rest[0], pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	addGlobalFlags(fs, &args)
	fs.BoolVarP(&showHelp, "help", "h", false, "show help")
	addCommandFlags(cmd, fs, &args)

	if err := fs.Parse(rest[1:]); err != nil {
		return cmd, args, usageErrorf("%s: %v", cmd, err)
	}
	if showHelp {
		return CmdHelp, args, nil
	}
	args.Positional = fs.Args()

	if err := validateArgs(cmd, args); err != nil {
		return cmd, args, err
	}
	return cmd, args, nil
}

// addGlobalFlags registers the global flags on fs. Current values in a are
// used as defaults so a second flag set does not reset the first pass.
func addGlobalFlags(fs *pflag.FlagSet, a *Args) {
	fs.StringVarP(&a.ConfigPath, "config", "c", a.ConfigPath, "config file")
	fs.StringVar(&a.APIURL, "api-url", a.APIURL, "backend base URL")
	fs.BoolVarP(&a.Verbose, "verbose", "v", a.Verbose, "also log to stderr")
	fs.BoolVar(&a.NoColor, "no-color", a.NoColor, "disable colored output")
}

func addCommandFlags(cmd Command, fs *pflag.FlagSet, a *Args) {
	switch cmd {
	case CmdAsk:
		fs.StringVarP(&a.Thread, "thread", "t", "", "continue an existing backend thread")
		fs.BoolVar(&a.JSON, "json", false, "print the reply as JSON")
		fs.IntVarP(&a.Width, "width", "w", 0, "wrap width (0 = terminal width)")
		fs.StringVar(&a.Links, "links", "", "terminal hyperlinks: auto, on, off")
	case CmdRender:
		fs.StringVarP(&a.Format, "format", "f", "ansi", "output format: ansi, plain, html, tree, json")
		fs.IntVarP(&a.Width, "width", "w", 0, "wrap width (0 = terminal width)")
		fs.StringVar(&a.Links, "links", "", "terminal hyperlinks: auto, on, off")
	case CmdSessions:
		fs.IntVarP(&a.Limit, "limit", "n", 20, "maximum sessions to list")
		fs.StringVarP(&a.Search, "search", "s", "", "only list sessions containing TEXT")
		fs.BoolVar(&a.JSON, "json", false, "print as JSON")
		fs.StringVarP(&a.Format, "format", "f", "md", "export format: html, md, json")
		fs.StringVarP(&a.Output, "output", "o", "", "export file path")
	case CmdConfig, CmdVersion:
		fs.BoolVar(&a.JSON, "json", false, "print as JSON")
	case CmdServe:
		fs.StringVar(&a.Addr, "addr", "", "listen address (default from config)")
	}
}

var renderFormats = map[string]bool{"ansi": true, "plain": true, "html": true, "tree": true, "json": true}

func validateArgs(cmd Command, a Args) error {
	switch cmd {
	case CmdRender:
		if !renderFormats[a.Format] {
			return usageErrorf("render: unknown format %q (want ansi, plain, html, tree or json)", a.Format)
		}
		if len(a.Positional) > 1 {
			return usageErrorf("render: expected at most one file, got %d", len(a.Positional))
		}
	case CmdSessions:
		switch a.Subcommand("list") {
		case "list", "ls":
		case "show", "delete", "rm", "export":
			if len(a.Positional) != 2 {
				return usageErrorf("sessions %s: expected a session ID", a.Positional[0])
			}
		default:
			return usageErrorf("sessions: unknown subcommand %q", a.Positional[0])
		}
		if a.Limit < 0 {
			return usageErrorf("sessions: --limit must not be negative")
		}
	case CmdConfig:
		switch sub := a.Subcommand("show"); sub {
		case "show", "path":
		case "get":
			if len(a.Positional) != 2 {
				return usageErrorf("config get: expected a key")
			}
		case "set":
			if len(a.Positional) != 3 {
				return usageErrorf("config set: expected a key and a value")
			}
		default:
			return usageErrorf("config: unknown subcommand %q", sub)
		}
	}
	if a.Width < 0 {
		return usageErrorf("%s: --width must not be negative", cmd)
	}
	return nil
}
