// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jeranaias/chatline/internal/ui/styles"
	"github.com/jeranaias/chatline/internal/util"
)

// =============================================================================
// INPUT AREA COMPONENT - Multi-line message input with character counter
// =============================================================================

// DefaultPlaceholder is shown while the input is empty.
const DefaultPlaceholder = "Type your message here..."

// DefaultMaxChars bounds a single message.
const DefaultMaxChars = 4000

// Input heights in lines.
const (
	minInputHeight = 1
	maxInputHeight = 6
)

// InputArea is the message composer. Enter is left to the caller so it can
// submit; Alt+Enter (or Ctrl+J) inserts a newline.
type InputArea struct {
	input    textarea.Model
	maxChars int
	width    int
	theme    *styles.Theme
}

// NewInputArea creates a focused-ready InputArea.
func NewInputArea(theme *styles.Theme) *InputArea {
	ta := textarea.New()
	ta.Placeholder = DefaultPlaceholder
	ta.CharLimit = DefaultMaxChars
	ta.ShowLineNumbers = false
	ta.Prompt = "> "
	ta.SetHeight(minInputHeight)
	ta.SetWidth(70)

	ta.KeyMap.InsertNewline = key.NewBinding(
		key.WithKeys("alt+enter", "ctrl+j"),
		key.WithHelp("alt+enter", "newline"),
	)

	ta.FocusedStyle.Prompt = theme.InputPrompt
	ta.BlurredStyle.Prompt = theme.MutedStyle
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Placeholder = theme.MutedStyle.Italic(true)
	ta.BlurredStyle.Placeholder = theme.MutedStyle.Italic(true)

	return &InputArea{
		input:    ta,
		maxChars: DefaultMaxChars,
		width:    80,
		theme:    theme,
	}
}

// Focus focuses the input.
func (i *InputArea) Focus() tea.Cmd {
	return i.input.Focus()
}

// Blur removes focus from the input.
func (i *InputArea) Blur() {
	i.input.Blur()
}

// Focused returns whether the input is focused.
func (i *InputArea) Focused() bool {
	return i.input.Focused()
}

// SetWidth sets the outer width of the input area.
func (i *InputArea) SetWidth(width int) {
	i.width = width
	// Border and padding
	i.input.SetWidth(max(width-4, 20))
}

// SetPlaceholder sets the placeholder text.
func (i *InputArea) SetPlaceholder(placeholder string) {
	i.input.Placeholder = placeholder
}

// SetMaxChars sets the character limit; 0 removes it.
func (i *InputArea) SetMaxChars(n int) {
	i.maxChars = n
	i.input.CharLimit = n
}

// Value returns the raw input, untrimmed.
func (i *InputArea) Value() string {
	return i.input.Value()
}

// SetValue replaces the input.
func (i *InputArea) SetValue(value string) {
	i.input.SetValue(value)
	i.fitHeight()
}

// Reset clears the input.
func (i *InputArea) Reset() {
	i.input.Reset()
	i.fitHeight()
}

// Height returns the rendered height in lines, border and counter included.
func (i *InputArea) Height() int {
	return i.input.Height() + 3
}

// Update forwards the message to the textarea.
func (i *InputArea) Update(msg tea.Msg) (*InputArea, tea.Cmd) {
	var cmd tea.Cmd
	i.input, cmd = i.input.Update(msg)
	i.fitHeight()
	return i, cmd
}

// fitHeight grows the textarea with its content up to maxInputHeight.
func (i *InputArea) fitHeight() {
	h := min(max(i.input.LineCount(), minInputHeight), maxInputHeight)
	if h != i.input.Height() {
		i.input.SetHeight(h)
	}
}

// View renders the bordered input with a right-aligned counter below it.
func (i *InputArea) View() string {
	container := i.theme.InputContainer.Width(max(i.width-2, 10))
	if i.input.Focused() {
		container = container.BorderForeground(styles.Cyan)
	}

	counter := i.theme.Renderer.NewStyle().
		Width(max(i.width-2, 10)).
		Align(lipgloss.Right).
		Render(i.renderCharCounter(util.RuneLen(i.input.Value())))

	return lipgloss.JoinVertical(lipgloss.Left,
		container.Render(i.input.View()),
		counter,
	)
}

// renderCharCounter renders "n / max" colored by how close the input is to
// the limit.
func (i *InputArea) renderCharCounter(count int) string {
	if i.maxChars <= 0 {
		return i.theme.MutedStyle.Render(humanize.Comma(int64(count)) + " chars")
	}

	text := humanize.Comma(int64(count)) + " / " + humanize.Comma(int64(i.maxChars))
	percent := float64(count) / float64(i.maxChars) * 100

	// ACCESSIBILITY: Shape indicator alongside color near the limit
	switch {
	case percent >= 90:
		return i.theme.ErrorStyle.Render(text + " " + styles.StatusIndicators.Warning)
	case percent >= 75:
		return i.theme.WarningStyle.Render(text)
	default:
		return i.theme.MutedStyle.Render(text)
	}
}
