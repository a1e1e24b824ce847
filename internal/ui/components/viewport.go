// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatline/internal/model"
	"github.com/jeranaias/chatline/internal/ui/styles"
)

// =============================================================================
// CHAT VIEWPORT COMPONENT - Scrollable message list
// =============================================================================

// ChatViewport is the scrollable message area. Every content change jumps
// to the bottom so the newest message is visible.
type ChatViewport struct {
	viewport       viewport.Model
	messages       []*model.Message
	width          int
	height         int
	showTimestamps bool
	theme          *styles.Theme
	md             *MarkdownView
}

// NewChatViewport creates a viewport rendering messages through md.
func NewChatViewport(theme *styles.Theme, md *MarkdownView) *ChatViewport {
	vp := viewport.New(80, 20)
	vp.Style = theme.Renderer.NewStyle()
	// Keys are routed by the chat model; only the mouse wheel is handled here.
	vp.KeyMap = viewport.KeyMap{}
	vp.MouseWheelEnabled = true

	return &ChatViewport{
		viewport:       vp,
		width:          80,
		height:         20,
		showTimestamps: true,
		theme:          theme,
		md:             md,
	}
}

// SetSize updates the viewport dimensions and re-renders.
func (cv *ChatViewport) SetSize(width, height int) {
	cv.width = width
	cv.height = max(height, 1)
	cv.viewport.Width = width
	cv.viewport.Height = cv.height
	cv.refresh()
}

// SetShowTimestamps toggles timestamps on message labels.
func (cv *ChatViewport) SetShowTimestamps(show bool) {
	cv.showTimestamps = show
	cv.refresh()
}

// SetMessages replaces the displayed messages.
func (cv *ChatViewport) SetMessages(messages []*model.Message) {
	cv.messages = messages
	cv.refresh()
}

// Messages returns the displayed messages.
func (cv *ChatViewport) Messages() []*model.Message {
	return cv.messages
}

// refresh re-renders all bubbles and scrolls to the newest message.
func (cv *ChatViewport) refresh() {
	content := RenderMessages(cv.messages, cv.theme, cv.md, max(cv.width-1, 10), cv.showTimestamps)
	cv.viewport.SetContent(content)
	cv.viewport.GotoBottom()
}

// ScrollToBottom scrolls to the newest message.
func (cv *ChatViewport) ScrollToBottom() {
	cv.viewport.GotoBottom()
}

// ScrollToTop scrolls to the oldest message.
func (cv *ChatViewport) ScrollToTop() {
	cv.viewport.GotoTop()
}

// PageUp scrolls up by one page.
func (cv *ChatViewport) PageUp() {
	cv.viewport.ViewUp()
}

// PageDown scrolls down by one page.
func (cv *ChatViewport) PageDown() {
	cv.viewport.ViewDown()
}

// AtTop reports whether the first line is visible.
func (cv *ChatViewport) AtTop() bool {
	return cv.viewport.AtTop()
}

// AtBottom reports whether the last line is visible.
func (cv *ChatViewport) AtBottom() bool {
	return cv.viewport.AtBottom()
}

// ScrollPercent returns the scroll position in [0, 1].
func (cv *ChatViewport) ScrollPercent() float64 {
	return cv.viewport.ScrollPercent()
}

// TotalLines returns the rendered content height.
func (cv *ChatViewport) TotalLines() int {
	return cv.viewport.TotalLineCount()
}

// Update handles mouse wheel scrolling.
func (cv *ChatViewport) Update(msg tea.Msg) (*ChatViewport, tea.Cmd) {
	var cmd tea.Cmd
	cv.viewport, cmd = cv.viewport.Update(msg)
	return cv, cmd
}

// View renders the visible window.
func (cv *ChatViewport) View() string {
	return cv.viewport.View()
}
