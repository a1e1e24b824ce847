// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jeranaias/chatline/internal/ui/styles"
	"github.com/jeranaias/chatline/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT - Bottom status line with shortcuts
// =============================================================================

// Status represents the current exchange state.
type Status int

const (
	StatusReady Status = iota
	StatusSending
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusSending:
		return "Sending..."
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Icon returns an icon for the status.
// ACCESSIBILITY: Uses distinct shapes alongside colors for colorblind users
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusSending:
		return styles.StatusIndicators.Info
	case StatusError:
		return styles.StatusIndicators.Error
	default:
		return "?"
	}
}

// Shortcut is a key hint shown in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// DefaultShortcuts are the chat screen key hints.
var DefaultShortcuts = []Shortcut{
	{"enter", "send"},
	{"alt+enter", "newline"},
	{"pgup/pgdn", "scroll"},
	{"^L", "clear"},
	{"^S", "save"},
	{"esc", "quit"},
}

// StatusBar is the bottom status line.
type StatusBar struct {
	Status       Status
	Notice       string // Transient text, e.g. "Saved"
	MessageCount int
	Width        int
	Shortcuts    []Shortcut
	theme        *styles.Theme
}

// NewStatusBar creates a status bar in the ready state.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Status:    StatusReady,
		Width:     80,
		Shortcuts: DefaultShortcuts,
		theme:     theme,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetStatus sets the exchange state.
func (s *StatusBar) SetStatus(status Status) {
	s.Status = status
}

// SetNotice sets transient text shown after the status.
func (s *StatusBar) SetNotice(notice string) {
	s.Notice = notice
}

// View renders the status bar. Shortcuts are dropped from the right until
// the line fits.
func (s *StatusBar) View() string {
	inner := max(s.Width-2, 10) // StatusBar padding

	left := s.statusStyle().Render(s.Status.Icon() + " " + s.Status.String())
	if s.Notice != "" {
		left += "  " + s.theme.MutedStyle.Render(s.Notice)
	}
	if s.MessageCount > 0 {
		left += "  " + s.theme.MutedStyle.Render(humanize.Comma(int64(s.MessageCount))+" msgs")
	}
	leftWidth := util.StringWidth(s.plainLeft())

	shortcuts := s.Shortcuts
	var right string
	for len(shortcuts) > 0 {
		right = s.renderShortcuts(shortcuts)
		if leftWidth+2+s.shortcutsWidth(shortcuts) <= inner {
			break
		}
		shortcuts = shortcuts[:len(shortcuts)-1]
		right = ""
	}

	line := left
	if right != "" {
		gap := inner - leftWidth - s.shortcutsWidth(shortcuts)
		line += strings.Repeat(" ", max(gap, 1)) + right
	}
	return s.theme.StatusBar.Width(s.Width).MaxHeight(1).Render(line)
}

// plainLeft is the unstyled left section, used for measuring.
func (s *StatusBar) plainLeft() string {
	text := s.Status.Icon() + " " + s.Status.String()
	if s.Notice != "" {
		text += "  " + s.Notice
	}
	if s.MessageCount > 0 {
		text += "  " + humanize.Comma(int64(s.MessageCount)) + " msgs"
	}
	return text
}

func (s *StatusBar) renderShortcuts(shortcuts []Shortcut) string {
	parts := make([]string, 0, len(shortcuts))
	for _, sc := range shortcuts {
		parts = append(parts, s.theme.ShortcutKey.Render(sc.Key)+" "+s.theme.ShortcutDesc.Render(sc.Desc))
	}
	return strings.Join(parts, "  ")
}

func (s *StatusBar) shortcutsWidth(shortcuts []Shortcut) int {
	w := 0
	for i, sc := range shortcuts {
		if i > 0 {
			w += 2
		}
		w += util.StringWidth(sc.Key) + 1 + util.StringWidth(sc.Desc)
	}
	return w
}

// statusStyle returns the style for the current status.
// ACCESSIBILITY: High contrast colors with bold
func (s *StatusBar) statusStyle() lipgloss.Style {
	switch s.Status {
	case StatusSending:
		return s.theme.Renderer.NewStyle().Foreground(styles.InfoHighContrast).Bold(true)
	case StatusError:
		return s.theme.ErrorStyle
	default:
		return s.theme.SuccessStyle
	}
}
