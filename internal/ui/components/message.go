// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jeranaias/chatline/internal/model"
	"github.com/jeranaias/chatline/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// MessageBubble renders one chat message: a label line above a bordered
// bubble. User bubbles sit on the right, everything else on the left.
type MessageBubble struct {
	Message       *model.Message
	Width         int
	ShowTimestamp bool
	theme         *styles.Theme
	md            *MarkdownView
}

// NewMessageBubble creates a bubble rendering content through md.
func NewMessageBubble(msg *model.Message, theme *styles.Theme, md *MarkdownView) *MessageBubble {
	if msg == nil {
		msg = &model.Message{Role: model.RoleSystem}
	}
	return &MessageBubble{
		Message:       msg,
		Width:         80,
		ShowTimestamp: true,
		theme:         theme,
		md:            md,
	}
}

// SetWidth sets the available width.
func (b *MessageBubble) SetWidth(width int) {
	b.Width = width
}

// maxContentWidth is the widest a bubble's text may get, about three
// quarters of the screen.
func (b *MessageBubble) maxContentWidth() int {
	return max(b.Width*3/4-4, 10)
}

// View renders the bubble.
func (b *MessageBubble) View() string {
	content := b.renderContent()

	var bubbleStyle lipgloss.Style
	var label string
	switch {
	case b.Message.IsError:
		bubbleStyle = b.theme.ErrorBubble
		label = b.theme.ErrorStyle.Render(styles.StatusIndicators.Error + " " + b.Message.Role.DisplayName())
	case b.Message.Role == model.RoleUser:
		bubbleStyle = b.theme.UserBubble
		label = b.theme.UserLabel.Render(b.Message.Role.DisplayName())
	case b.Message.Role == model.RoleSystem:
		bubbleStyle = b.theme.SystemBubble
		label = b.theme.WarningStyle.Render(b.Message.Role.DisplayName())
	default:
		bubbleStyle = b.theme.AssistantBubble
		label = b.theme.AssistantLabel.Render(b.Message.Role.DisplayName())
	}

	if b.ShowTimestamp && !b.Message.Timestamp.IsZero() {
		label += " " + b.theme.Timestamp.Render(b.Message.Timestamp.Format("15:04"))
	}

	block := lipgloss.JoinVertical(lipgloss.Left, label, bubbleStyle.Render(content))
	if b.Message.Role == model.RoleUser {
		return b.theme.Renderer.PlaceHorizontal(b.Width, lipgloss.Right, block)
	}
	return block
}

// renderContent renders the message text through the markdown view.
func (b *MessageBubble) renderContent() string {
	if strings.TrimSpace(b.Message.Content) == "" {
		return "..."
	}

	if b.md == nil {
		return ansi.Wrap(b.Message.Content, b.maxContentWidth(), "")
	}
	saved := b.md.Width
	b.md.SetWidth(b.maxContentWidth())
	defer b.md.SetWidth(saved)
	return b.md.Render(b.Message.Document())
}

// =============================================================================
// MESSAGE LIST
// =============================================================================

// RenderMessages renders messages top to bottom with a blank line between
// bubbles.
func RenderMessages(msgs []*model.Message, theme *styles.Theme, md *MarkdownView, width int, showTimestamps bool) string {
	views := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		bubble := NewMessageBubble(msg, theme, md)
		bubble.SetWidth(width)
		bubble.ShowTimestamp = showTimestamps
		views = append(views, bubble.View())
	}
	return strings.Join(views, "\n\n")
}
