// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/lipgloss"
)

// View renders the chat screen top to bottom: header, messages, typing
// indicator, input, status bar and the optional help panel.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	parts := []string{
		m.header.View(),
		m.viewport.View(),
		m.typing.View(),
		m.input.View(),
		m.statusBar.View(),
	}
	if m.showHelp {
		parts = append(parts, m.help.View(m.keys))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
