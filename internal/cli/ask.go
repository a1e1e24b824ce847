// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot message command.
//
// Command: ask
// Short:   Send one message and print the reply
//
// Examples:
//   chatline ask "What is **markdown**?"
//   echo "hello" | chatline ask
//   chatline ask --thread 3f2a9c1e "and after that?"
//   chatline ask --json "hi"
//
// Flags:
//   -t, --thread ID      Continue an existing backend thread
//   --json               Print {response, threadId} as JSON
//   -w, --width N        Wrap width (0 = terminal width)
//   --links MODE         Terminal hyperlinks: auto, on, off
//
// The reply is rendered with styles when stdout is a terminal and as plain
// text otherwise. A failed exchange prints the fallback message and exits 1.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jeranaias/chatline/internal/backend"
	"github.com/jeranaias/chatline/internal/config"
	"github.com/jeranaias/chatline/internal/markdown"
	"github.com/jeranaias/chatline/internal/model"
	"github.com/jeranaias/chatline/internal/ui/components"
)

// maxStdinMessage caps a message read from stdin.
const maxStdinMessage = 1 << 20

// askResult is the Data payload of ask --json.
type askResult struct {
	Response       string `json:"response"`
	ThreadID       string `json:"threadId,omitempty"`
	ConversationID string `json:"conversationId"`
	DurationMs     int64  `json:"durationMs"`
}

func runAsk(ctx context.Context, a Args) error {
	message, err := askMessage(a)
	if err != nil {
		return err
	}

	cfg, err := LoadConfig(a)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	conv := model.NewConversation("")
	conv.SetThreadID(a.Thread)

	outcome, err := NewExchanger(cfg).Exchange(ctx, conv, message)
	if errors.Is(err, backend.ErrEmptyInput) {
		return usageErrorf("ask: message is empty")
	}
	if err != nil {
		return err
	}

	saveConversation(ctx, cfg, conv, a)

	if a.JSON {
		result := askResult{
			Response:       outcome.Text,
			ThreadID:       conv.ThreadID,
			ConversationID: conv.ID,
			DurationMs:     outcome.Duration.Milliseconds(),
		}
		if outcome.Failed() {
			if err := NewJSONErrorResponse("ask", result, outcome.Err).Print(a.Stdout); err != nil {
				return err
			}
			return fmt.Errorf("%w: %v", ErrExchangeFailed, outcome.Err)
		}
		return NewJSONResponse("ask", result).Print(a.Stdout)
	}

	if isTerminal(a.Stdout) {
		md := newMarkdownView(cfg, a, a.Stdout)
		out := md.RenderText(outcome.Text)
		if outcome.Failed() {
			out = newTheme(cfg, a, a.Stdout).ErrorStyle.Render(out)
		}
		fmt.Fprintln(a.Stdout, out)
	} else {
		fmt.Fprintln(a.Stdout, components.RenderPlain(markdown.Segment(outcome.Text), renderWidth(cfg, a, a.Stdout)))
	}

	if outcome.Failed() {
		return fmt.Errorf("%w: %v", ErrExchangeFailed, outcome.Err)
	}
	if conv.ThreadID != "" && a.Verbose {
		fmt.Fprintf(stderr(a), "thread: %s\n", conv.ThreadID)
	}
	return nil
}

// askMessage joins the positional arguments or, when there are none and
// stdin is not a terminal, reads the message from stdin. One trailing
// newline from stdin is dropped; the rest is sent as typed.
func askMessage(a Args) (string, error) {
	if len(a.Positional) > 0 {
		return strings.Join(a.Positional, " "), nil
	}
	if a.Stdin == nil || isTerminal(a.Stdin) {
		return "", usageErrorf("ask: no message given")
	}

	data, err := io.ReadAll(io.LimitReader(a.Stdin, maxStdinMessage))
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	msg := strings.TrimSuffix(string(data), "\n")
	msg = strings.TrimSuffix(msg, "\r")
	if strings.TrimSpace(msg) == "" {
		return "", usageErrorf("ask: no message given")
	}
	return msg, nil
}

// saveConversation stores conv when history is enabled. Failures are
// reported on stderr and never fail the command.
func saveConversation(ctx context.Context, cfg *config.Config, conv *model.Conversation, a Args) {
	store, err := OpenStore(cfg)
	if err != nil {
		fmt.Fprintf(stderr(a), "Warning: history unavailable: %v\n", err)
		return
	}
	if store == nil {
		return
	}
	defer store.Close()

	if err := store.Save(ctx, conv); err != nil {
		fmt.Fprintf(stderr(a), "Warning: could not save conversation: %v\n", err)
	}
}
