// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection for chatline commands.
//
// USABILITY: TTY detection for proper terminal handling
//
// Interactive terminals get styled output, piped output gets plain text
// and NO_COLOR is respected everywhere.

package cli

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

type fdHolder interface {
	Fd() uintptr
}

// isTerminal reports whether v is an *os.File (or anything with a file
// descriptor) attached to a terminal. Buffers used in tests are never
// terminals.
func isTerminal(v any) bool {
	f, ok := v.(fdHolder)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// IsTTY returns true if stdin is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY returns true if stdout is a terminal.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// =============================================================================
// TERMINAL WIDTH DETECTION
// =============================================================================

const (
	// DefaultTerminalWidth is the fallback width when detection fails
	DefaultTerminalWidth = 80

	// MinTerminalWidth is the minimum width we'll use for wrapping
	MinTerminalWidth = 40
)

// terminalWidth returns the width of the terminal behind w, or
// DefaultTerminalWidth when w is not a terminal.
func terminalWidth(w any) int {
	f, ok := w.(fdHolder)
	if !ok {
		return DefaultTerminalWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	return width
}

// =============================================================================
// COLOR DETECTION
// =============================================================================

// colorsEnabled reports whether styled output should be written to w.
// NO_COLOR and --no-color disable it; FORCE_COLOR enables it for pipes.
func colorsEnabled(noColor bool, w any) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	return isTerminal(w)
}

// colorProfile returns the termenv profile for output to w.
func colorProfile(noColor bool, w any) termenv.Profile {
	if !colorsEnabled(noColor, w) {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}
