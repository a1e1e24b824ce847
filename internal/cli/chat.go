// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-mode chat command.
//
// USABILITY: Markdown rendering and history for better CLI experience
//
// Command: chat
// Short:   Chat line by line without the full-screen interface
//
// Examples:
//   chatline chat
//   chatline chat --api-url http://localhost:8787
//   printf 'hi\nand you?\n' | chatline chat
//
// Interactive Commands (during chat):
//   /help, /h           Show available commands
//   /clear, /c          Start a new conversation
//   /thread             Show the backend thread ID
//   /quit, /q, /exit    Exit chat
//   Ctrl+C              Cancel the pending reply
//   Ctrl+D              Exit chat
//
// Input history lives in ~/.chatline/chat_history.

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/chatline/internal/backend"
	"github.com/jeranaias/chatline/internal/config"
	"github.com/jeranaias/chatline/internal/markdown"
	"github.com/jeranaias/chatline/internal/model"
	"github.com/jeranaias/chatline/internal/storage"
	"github.com/jeranaias/chatline/internal/ui/components"
	"github.com/jeranaias/chatline/internal/ui/styles"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// LineReader reads one line of input. io.EOF ends the session.
type LineReader interface {
	ReadInput(prompt string) (string, error)
}

// ChatCLI provides input history and line editing for interactive chat.
// USABILITY: Supports arrow keys for history navigation and line editing.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history to file with secure permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}

	// SECURITY: 0600 - owner read/write only
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// scanReader reads lines from a non-terminal input without prompting.
type scanReader struct {
	scanner *bufio.Scanner
}

func newScanReader(r io.Reader) *scanReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxStdinMessage)
	return &scanReader{scanner: s}
}

func (r *scanReader) ReadInput(string) (string, error) {
	if r.scanner.Scan() {
		return r.scanner.Text(), nil
	}
	if err := r.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// =============================================================================
// SESSION
// =============================================================================

type chatSession struct {
	conv      *model.Conversation
	exchanger *backend.Exchanger
	store     *storage.Store

	theme  *styles.Theme
	md     *components.MarkdownView
	styled bool
	width  int

	out    io.Writer
	errOut io.Writer
}

func runChat(ctx context.Context, a Args) error {
	cfg, err := LoadConfig(a)
	if err != nil {
		return err
	}

	store, err := OpenStore(cfg)
	if err != nil {
		fmt.Fprintf(stderr(a), "Warning: history unavailable: %v\n", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	var in LineReader
	if isTerminal(a.Stdin) {
		c := NewChatCLI()
		defer c.Close()
		in = c
	} else {
		in = newScanReader(a.Stdin)
	}

	s := &chatSession{
		conv:      model.NewConversation(cfg.UI.Greeting),
		exchanger: NewExchanger(cfg),
		store:     store,
		theme:     newTheme(cfg, a, a.Stdout),
		md:        newMarkdownView(cfg, a, a.Stdout),
		styled:    isTerminal(a.Stdout),
		width:     renderWidth(cfg, a, a.Stdout),
		out:       a.Stdout,
		errOut:    stderr(a),
	}
	return s.run(ctx, in)
}

func (s *chatSession) run(ctx context.Context, in LineReader) error {
	s.printGreeting()

	for {
		line, err := in.ReadInput("> ")
		if errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(s.out, s.theme.MutedStyle.Render("(type /quit or press Ctrl+D to exit)"))
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "/") {
			if s.handleCommand(trimmed) {
				return nil
			}
			continue
		}

		s.exchange(ctx, line)
	}
}

// handleCommand runs a slash command and reports whether to quit.
func (s *chatSession) handleCommand(cmd string) bool {
	switch strings.Fields(cmd)[0] {
	case "/quit", "/q", "/exit":
		return true
	case "/clear", "/c":
		s.conv.Clear()
		fmt.Fprintln(s.out, s.theme.SuccessStyle.Render("Conversation cleared."))
		s.printGreeting()
	case "/thread":
		if s.conv.ThreadID == "" {
			fmt.Fprintln(s.out, s.theme.MutedStyle.Render("No thread yet; the backend assigns one with the first reply."))
		} else {
			fmt.Fprintf(s.out, "thread: %s\n", s.conv.ThreadID)
		}
	case "/help", "/h":
		fmt.Fprintln(s.out, "Commands:")
		fmt.Fprintln(s.out, "  /help     Show this help")
		fmt.Fprintln(s.out, "  /clear    Start a new conversation")
		fmt.Fprintln(s.out, "  /thread   Show the backend thread ID")
		fmt.Fprintln(s.out, "  /quit     Exit")
	default:
		fmt.Fprintln(s.out, s.theme.WarningStyle.Render(fmt.Sprintf("Unknown command %q. Type /help for commands.", cmd)))
	}
	return false
}

// exchange sends one message. Ctrl+C cancels the pending reply only.
func (s *chatSession) exchange(ctx context.Context, text string) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	outcome, err := s.exchanger.Exchange(ctx, s.conv, text)
	if err != nil {
		return
	}
	s.printReply(outcome.Text, outcome.Failed())

	if s.store != nil {
		if err := s.store.Save(ctx, s.conv); err != nil {
			log.Printf("CHAT | save failed: %v", err)
			fmt.Fprintf(s.errOut, "Warning: could not save conversation: %v\n", err)
		}
	}
}

func (s *chatSession) printGreeting() {
	if s.conv.Greeting != "" {
		s.printReply(s.conv.Greeting, false)
	}
}

func (s *chatSession) printReply(text string, failed bool) {
	var out string
	if s.styled {
		out = s.md.RenderText(text)
		if failed {
			out = s.theme.ErrorStyle.Render(out)
		}
	} else {
		out = components.RenderPlain(markdown.Segment(text), s.width)
	}
	fmt.Fprintln(s.out, out)
	fmt.Fprintln(s.out)
}
