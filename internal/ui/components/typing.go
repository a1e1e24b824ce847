// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatline/internal/ui/styles"
)

// =============================================================================
// TYPING INDICATOR
// =============================================================================

// TypingIndicator shows that a reply is pending.
type TypingIndicator struct {
	spinner   spinner.Model
	message   string
	startTime time.Time
	isActive  bool
	theme     *styles.Theme
}

// NewTypingIndicator creates an inactive indicator.
func NewTypingIndicator(theme *styles.Theme) TypingIndicator {
	s := spinner.New()
	s.Spinner = styles.DotsSpinner.Spinner()
	s.Style = theme.Spinner
	return TypingIndicator{
		spinner: s,
		message: "Assistant is typing",
		theme:   theme,
	}
}

// SetMessage sets the text next to the spinner.
func (t *TypingIndicator) SetMessage(msg string) {
	t.message = msg
}

// Start activates the indicator and returns the first tick.
func (t *TypingIndicator) Start() tea.Cmd {
	t.isActive = true
	t.startTime = time.Now()
	return t.spinner.Tick
}

// Stop deactivates the indicator.
func (t *TypingIndicator) Stop() {
	t.isActive = false
}

// IsActive returns whether the indicator is showing.
func (t *TypingIndicator) IsActive() bool {
	return t.isActive
}

// Elapsed returns the time since Start, or zero when inactive.
func (t *TypingIndicator) Elapsed() time.Duration {
	if !t.isActive || t.startTime.IsZero() {
		return 0
	}
	return time.Since(t.startTime)
}

// Update advances the animation. Ticks are dropped while inactive so the
// spinner stops scheduling itself.
func (t TypingIndicator) Update(msg tea.Msg) (TypingIndicator, tea.Cmd) {
	if !t.isActive {
		return t, nil
	}
	var cmd tea.Cmd
	t.spinner, cmd = t.spinner.Update(msg)
	return t, cmd
}

// View renders the indicator, or "" when inactive.
func (t TypingIndicator) View() string {
	if !t.isActive {
		return ""
	}
	return t.theme.ThinkingText.Render(t.message) + " " + t.spinner.View()
}
