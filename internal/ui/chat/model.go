// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatline/internal/backend"
	"github.com/jeranaias/chatline/internal/model"
	"github.com/jeranaias/chatline/internal/ui/components"
	"github.com/jeranaias/chatline/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat screen.
type State int

const (
	StateReady   State = iota // Ready for input
	StateSending              // Waiting for a reply
	StateError                // Last exchange failed
)

// Saver persists conversations. *storage.Store implements it.
type Saver interface {
	Save(ctx context.Context, conv *model.Conversation) error
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	state State

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// Components
	header    *components.Header
	viewport  *components.ChatViewport
	input     *components.InputArea
	typing    components.TypingIndicator
	statusBar *components.StatusBar
	md        *components.MarkdownView
	help      help.Model
	keys      KeyMap
	showHelp  bool

	// Conversation is only mutated inside Update.
	conversation *model.Conversation
	exchanger    *backend.Exchanger
	store        Saver
	greeting     string

	// seq numbers sends; a reply whose Seq differs is stale.
	seq       int
	cancelMgr *cancelManager

	noticeGen   int
	inputHeight int
}

// New creates the chat screen. Replies come from exchanger.
func New(theme *styles.Theme, exchanger *backend.Exchanger) Model {
	md := components.NewMarkdownView(theme)
	keys := DefaultKeyMap()

	h := help.New()
	h.Styles.ShortKey = theme.ShortcutKey
	h.Styles.ShortDesc = theme.ShortcutDesc
	h.Styles.FullKey = theme.ShortcutKey
	h.Styles.FullDesc = theme.ShortcutDesc
	h.ShowAll = true

	statusBar := components.NewStatusBar(theme)
	statusBar.Shortcuts = keys.Shortcuts()

	m := Model{
		state:        StateReady,
		theme:        theme,
		header:       components.NewHeader(theme),
		viewport:     components.NewChatViewport(theme, md),
		input:        components.NewInputArea(theme),
		typing:       components.NewTypingIndicator(theme),
		statusBar:    statusBar,
		md:           md,
		help:         h,
		keys:         keys,
		conversation: model.NewConversation(model.DefaultGreeting),
		exchanger:    exchanger,
		greeting:     model.DefaultGreeting,
		cancelMgr:    newCancelManager(),
	}
	m.input.Focus()
	m.syncConversation()
	return m
}

// =============================================================================
// BUILDER METHODS
// =============================================================================

// WithGreeting replaces the greeting of the current conversation. An empty
// greeting starts conversations with no messages.
func (m Model) WithGreeting(greeting string) Model {
	m.greeting = greeting
	if m.conversation.IsEmpty() && m.conversation.ThreadID == "" {
		m.conversation = model.NewConversation(greeting)
		m.syncConversation()
	}
	return m
}

// WithConversation resumes conv instead of starting a new one.
func (m Model) WithConversation(conv *model.Conversation) Model {
	if conv != nil {
		m.conversation = conv
		m.syncConversation()
	}
	return m
}

// WithStore enables saving after every exchange.
func (m Model) WithStore(store Saver) Model {
	m.store = store
	return m
}

// WithBackendURL sets the backend shown in the header.
func (m Model) WithBackendURL(url string) Model {
	m.header.SetBackend(url)
	return m
}

// WithHyperlinks enables OSC 8 hyperlinks in rendered links.
func (m Model) WithHyperlinks(enabled bool) Model {
	m.md.SetHyperlinks(enabled)
	m.syncConversation()
	return m
}

// WithTimestamps toggles timestamps on message labels.
func (m Model) WithTimestamps(show bool) Model {
	m.viewport.SetShowTimestamps(show)
	return m
}

// WithTitle sets the header title.
func (m Model) WithTitle(title string) Model {
	if title != "" {
		m.header.Title = title
	}
	return m
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return m.input.Focus()
}

// Conversation returns the conversation shown on screen.
func (m Model) Conversation() *model.Conversation {
	return m.conversation
}

// State returns the current exchange state.
func (m Model) State() State {
	return m.state
}

// IsSending reports whether a reply is pending.
func (m Model) IsSending() bool {
	return m.state == StateSending
}

// syncConversation pushes the conversation into the viewport, header and
// status bar. Called after every change to the message list.
func (m *Model) syncConversation() {
	m.viewport.SetMessages(m.conversation.Messages)
	m.header.SetThreadID(m.conversation.ThreadID)
	m.statusBar.MessageCount = m.conversation.MessageCount()
}
