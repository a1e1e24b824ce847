// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatline/internal/ui/components"
)

// saveTimeout bounds a single save.
const saveTimeout = 5 * time.Second

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case ReplyMsg:
		return m.handleReply(msg)

	case SavedMsg:
		return m.handleSaved(msg)

	case SettingsMsg:
		return m.handleSettings(msg)

	case noticeExpiredMsg:
		if msg.gen == m.noticeGen {
			m.statusBar.SetNotice("")
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.typing, cmd = m.typing.Update(msg)
		return m, cmd
	}

	// Cursor blink and anything else the textarea understands.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(m.width, m.height)

	m.header.SetWidth(m.width)
	m.input.SetWidth(m.width)
	m.statusBar.SetWidth(m.width)
	m.help.Width = m.width
	m.layout()
	return m, nil
}

// layout gives the viewport whatever height the fixed parts leave over.
func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	m.inputHeight = m.input.Height()

	reserved := lipgloss.Height(m.header.View()) +
		1 + // typing indicator line
		m.inputHeight +
		lipgloss.Height(m.statusBar.View())
	if m.showHelp {
		reserved += lipgloss.Height(m.help.View(m.keys))
	}
	m.viewport.SetSize(m.width, max(m.height-reserved, 1))
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancelMgr.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		return m.send()

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.PageUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.PageDown()
		return m, nil

	case key.Matches(msg, m.keys.Home):
		m.viewport.ScrollToTop()
		return m, nil

	case key.Matches(msg, m.keys.End):
		m.viewport.ScrollToBottom()
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		return m.clear()

	case key.Matches(msg, m.keys.Save):
		if m.store == nil {
			return m, m.notify("History disabled")
		}
		return m, m.saveCmd()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.layout()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Height() != m.inputHeight {
		m.layout()
	}
	return m, cmd
}

// =============================================================================
// EXCHANGE
// =============================================================================

// send appends the input as a user message and starts the exchange. Blank
// input and input typed while a reply is pending are ignored.
func (m Model) send() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	if m.state == StateSending || strings.TrimSpace(text) == "" {
		return m, nil
	}

	m.conversation.AddUserMessage(text)
	m.input.Reset()
	m.seq++
	m.state = StateSending
	m.statusBar.SetStatus(components.StatusSending)
	m.syncConversation()
	m.layout()

	return m, tea.Batch(m.typing.Start(), m.exchangeCmd(text))
}

// exchangeCmd runs the exchange off the Update loop. It captures only
// values so the conversation is never touched from the command goroutine.
func (m *Model) exchangeCmd(text string) tea.Cmd {
	seq := m.seq
	threadID := m.conversation.ThreadID
	exchanger := m.exchanger
	ctx := m.exchangeContext()

	return func() tea.Msg {
		return ReplyMsg{Seq: seq, Outcome: exchanger.Do(ctx, text, threadID)}
	}
}

// handleReply applies a finished exchange.
func (m Model) handleReply(msg ReplyMsg) (tea.Model, tea.Cmd) {
	if msg.Seq != m.seq {
		log.Printf("CHAT | dropped stale reply seq=%d current=%d", msg.Seq, m.seq)
		return m, nil
	}
	m.cancelMgr.cancel()
	m.typing.Stop()

	msg.Outcome.Apply(m.conversation)
	if msg.Outcome.Failed() {
		m.state = StateError
		m.statusBar.SetStatus(components.StatusError)
	} else {
		m.state = StateReady
		m.statusBar.SetStatus(components.StatusReady)
	}
	m.syncConversation()

	return m, m.saveCmd()
}

// clear abandons any pending reply and starts a new conversation.
func (m Model) clear() (tea.Model, tea.Cmd) {
	m.cancelMgr.cancel()
	m.seq++
	m.typing.Stop()
	m.state = StateReady
	m.statusBar.SetStatus(components.StatusReady)

	m.conversation.Clear()
	m.syncConversation()
	m.layout()
	return m, m.notify("Cleared")
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// saveCmd saves a snapshot of the conversation, or returns nil when no store
// is configured.
func (m Model) saveCmd() tea.Cmd {
	if m.store == nil {
		return nil
	}
	store := m.store
	snapshot := m.conversation.Clone()

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		return SavedMsg{ConversationID: snapshot.ID, Err: store.Save(ctx, snapshot)}
	}
}

func (m Model) handleSaved(msg SavedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		log.Printf("CHAT | save failed id=%s err=%v", msg.ConversationID, msg.Err)
		return m, m.notify("Save failed")
	}
	return m, m.notify("Saved")
}

// handleSettings applies a config reload. A broken file keeps the current
// settings.
func (m Model) handleSettings(msg SettingsMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		log.Printf("CHAT | config reload failed err=%v", msg.Err)
		return m, m.notify("Config error, keeping settings")
	}
	m.viewport.SetShowTimestamps(msg.ShowTimestamps)
	m.greeting = msg.Greeting
	m.conversation.Greeting = msg.Greeting
	return m, m.notify("Config reloaded")
}

// notify shows text in the status bar until it expires.
func (m *Model) notify(text string) tea.Cmd {
	m.noticeGen++
	m.statusBar.SetNotice(text)
	return expireNotice(m.noticeGen)
}
