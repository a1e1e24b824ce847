// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Turn is one user message within a thread.
type Turn struct {
	ThreadID string
	Message  string
	// Number counts turns within the thread, starting at 1.
	Number int
}

// Responder produces the assistant reply for a turn.
type Responder interface {
	Respond(ctx context.Context, turn Turn) (string, error)
}

// ResponderFunc adapts a function to the Responder interface.
type ResponderFunc func(ctx context.Context, turn Turn) (string, error)

// Respond calls f.
func (f ResponderFunc) Respond(ctx context.Context, turn Turn) (string, error) {
	return f(ctx, turn)
}

// EchoResponder quotes the message back with a few statistics, formatted
// with bold, italic, code, links and both list kinds.
type EchoResponder struct{}

// Respond builds the echo reply.
func (EchoResponder) Respond(ctx context.Context, turn Turn) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	lines := strings.Split(strings.TrimRight(turn.Message, "\n"), "\n")

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Echo** for turn *%d*:\n", turn.Number)
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString("Stats:\n")
	fmt.Fprintf(&sb, "- Characters: `%d`\n", utf8.RuneCountInString(turn.Message))
	fmt.Fprintf(&sb, "- Words: `%d`\n", len(strings.Fields(turn.Message)))
	fmt.Fprintf(&sb, "- Lines: `%d`\n", len(lines))
	if turn.Number == 1 {
		sb.WriteString("\n")
		sb.WriteString("Try these:\n")
		sb.WriteString("1. Wrap text in `**` for **bold**\n")
		sb.WriteString("2. Wrap text in `*` or `_` for _italic_\n")
		sb.WriteString("3. Links look like [CommonMark](https://commonmark.org/help/)\n")
	}
	fmt.Fprintf(&sb, "Thread `%s`", turn.ThreadID)
	return sb.String(), nil
}
