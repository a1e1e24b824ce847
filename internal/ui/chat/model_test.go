// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatline/internal/backend"
	"github.com/jeranaias/chatline/internal/model"
	"github.com/jeranaias/chatline/internal/ui/styles"
)

// =============================================================================
// TEST DOUBLES
// =============================================================================

type fakeSender struct {
	mu      sync.Mutex
	threads []string
	reply   string
	err     error
}

func (f *fakeSender) Send(_ context.Context, message, threadID string) (*backend.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.threads = append(f.threads, threadID)
	if f.err != nil {
		return nil, f.err
	}
	return &backend.Reply{Response: f.reply + message, ThreadID: "thread-1"}, nil
}

type fakeStore struct {
	saved []*model.Conversation
	err   error
}

func (f *fakeStore) Save(_ context.Context, conv *model.Conversation) error {
	f.saved = append(f.saved, conv)
	return f.err
}

func newTestModel(t *testing.T, sender backend.Sender) Model {
	t.Helper()
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	theme := styles.NewThemeWithRenderer(styles.ThemeDark, r)

	ex := backend.NewExchanger(sender).WithLogger(log.New(io.Discard, "", 0))
	m := New(theme, ex).WithBackendURL("http://localhost:8787")
	return update(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func updateCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

// collect runs cmd and any batched commands, returning their messages.
// Only use on commands that return immediately.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func findReply(t *testing.T, msgs []tea.Msg) ReplyMsg {
	t.Helper()
	for _, msg := range msgs {
		if reply, ok := msg.(ReplyMsg); ok {
			return reply
		}
	}
	t.Fatalf("no ReplyMsg in %v", msgs)
	return ReplyMsg{}
}

var enter = tea.KeyMsg{Type: tea.KeyEnter}

// =============================================================================
// TESTS
// =============================================================================

func TestNew_StartsWithGreeting(t *testing.T) {
	m := newTestModel(t, &fakeSender{})

	conv := m.Conversation()
	require.Equal(t, 1, conv.MessageCount())
	assert.Equal(t, model.DefaultGreeting, conv.Messages[0].Content)

	view := m.View()
	assert.Contains(t, view, "Chat Assistant")
	assert.Contains(t, view, "new thread")
	assert.Contains(t, view, "message here...")
	assert.LessOrEqual(t, lipgloss.Height(view), 30)
}

func TestSend_BlankInputIgnored(t *testing.T) {
	m := newTestModel(t, &fakeSender{})

	m, cmd := updateCmd(t, m, enter)
	assert.Nil(t, cmd)

	m = typeText(t, m, "   ")
	m, cmd = updateCmd(t, m, enter)
	assert.Nil(t, cmd)
	assert.Equal(t, 1, m.Conversation().MessageCount())
	assert.False(t, m.IsSending())
}

func TestSend_ExchangeRoundTrip(t *testing.T) {
	sender := &fakeSender{reply: "echo: "}
	m := newTestModel(t, sender)

	m = typeText(t, m, "hello")
	m, cmd := updateCmd(t, m, enter)
	require.NotNil(t, cmd)
	assert.True(t, m.IsSending())
	assert.Equal(t, 2, m.Conversation().MessageCount())
	assert.Contains(t, m.View(), "Assistant is typing")

	// A second Enter while the reply is pending is ignored.
	m = typeText(t, m, "again")
	_, pending := updateCmd(t, m, enter)
	assert.Nil(t, pending)

	reply := findReply(t, collect(cmd))
	m = update(t, m, reply)

	conv := m.Conversation()
	require.Equal(t, 3, conv.MessageCount())
	last := conv.GetLastMessage()
	assert.Equal(t, model.RoleAssistant, last.Role)
	assert.Equal(t, "echo: hello", last.Content)
	assert.False(t, last.IsError)
	assert.Equal(t, "thread-1", conv.ThreadID)
	assert.Equal(t, StateReady, m.State())
	assert.NotContains(t, m.View(), "Assistant is typing")
	assert.Contains(t, m.View(), "thread thread-1")
	assert.Equal(t, "again", m.input.Value(), "text typed while sending stays in the input")

	// The next send carries the thread ID.
	m, cmd = updateCmd(t, m, enter)
	m = update(t, m, findReply(t, collect(cmd)))
	assert.Equal(t, []string{"", "thread-1"}, sender.threads)
	assert.Equal(t, 5, m.Conversation().MessageCount())
}

func TestSend_RawInputUntrimmed(t *testing.T) {
	sender := &fakeSender{}
	m := newTestModel(t, sender)

	m = typeText(t, m, "  spaced  ")
	m, cmd := updateCmd(t, m, enter)
	m = update(t, m, findReply(t, collect(cmd)))

	assert.Equal(t, "  spaced  ", m.Conversation().Messages[1].Content)
	assert.Equal(t, "  spaced  ", m.Conversation().GetLastMessage().Content)
}

func TestSend_FailureShowsFallback(t *testing.T) {
	m := newTestModel(t, &fakeSender{err: errors.New("connection refused")})

	m = typeText(t, m, "hello")
	m, cmd := updateCmd(t, m, enter)
	m = update(t, m, findReply(t, collect(cmd)))

	last := m.Conversation().GetLastMessage()
	assert.True(t, last.IsError)
	assert.Equal(t, backend.FallbackMessage, last.Content)
	assert.Equal(t, StateError, m.State())
	assert.Empty(t, m.Conversation().ThreadID)
	assert.Contains(t, m.View(), "[X]")
}

func TestClear_DropsPendingReply(t *testing.T) {
	m := newTestModel(t, &fakeSender{})

	m = typeText(t, m, "hello")
	m, cmd := updateCmd(t, m, enter)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})

	assert.False(t, m.IsSending())
	assert.Equal(t, 1, m.Conversation().MessageCount())

	m = update(t, m, findReply(t, collect(cmd)))
	assert.Equal(t, 1, m.Conversation().MessageCount(), "stale reply should be dropped")
	assert.Empty(t, m.Conversation().ThreadID)
}

func TestClear_StartsNewThread(t *testing.T) {
	m := newTestModel(t, &fakeSender{})

	m = typeText(t, m, "hello")
	m, cmd := updateCmd(t, m, enter)
	m = update(t, m, findReply(t, collect(cmd)))
	require.Equal(t, "thread-1", m.Conversation().ThreadID)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Empty(t, m.Conversation().ThreadID)
	assert.Contains(t, m.View(), "new thread")
	assert.Contains(t, m.View(), "Cleared")
}

func TestSave_AfterExchange(t *testing.T) {
	store := &fakeStore{}
	m := newTestModel(t, &fakeSender{})
	m = m.WithStore(store)

	m = typeText(t, m, "hello")
	m, cmd := updateCmd(t, m, enter)
	m, cmd = updateCmd(t, m, findReply(t, collect(cmd)))
	require.NotNil(t, cmd)

	saved, ok := cmd().(SavedMsg)
	require.True(t, ok)
	assert.NoError(t, saved.Err)
	require.Len(t, store.saved, 1)
	assert.Equal(t, 3, store.saved[0].MessageCount())
	assert.NotSame(t, m.Conversation(), store.saved[0], "store receives a snapshot")

	m = update(t, m, saved)
	assert.Contains(t, m.View(), "Saved")
}

func TestSave_AfterClearUsesNewConversation(t *testing.T) {
	store := &fakeStore{}
	m := newTestModel(t, &fakeSender{}).WithStore(store)

	exchange := func(text string) {
		t.Helper()
		m = typeText(t, m, text)
		var cmd tea.Cmd
		m, cmd = updateCmd(t, m, enter)
		m, cmd = updateCmd(t, m, findReply(t, collect(cmd)))
		require.NotNil(t, cmd)
		m = update(t, m, cmd())
	}

	exchange("first thread question")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	exchange("second thread question")

	require.Len(t, store.saved, 2)
	first, second := store.saved[0], store.saved[1]
	assert.NotEqual(t, first.ID, second.ID, "a cleared conversation is saved under a new ID")
	assert.Equal(t, "first thread question", first.Messages[1].Content)
	assert.Equal(t, "second thread question", second.Messages[1].Content)
}

func TestSave_Keys(t *testing.T) {
	m := newTestModel(t, &fakeSender{})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Contains(t, m.View(), "History disabled")

	store := &fakeStore{err: errors.New("disk full")}
	m = m.WithStore(store)
	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	m = update(t, m, cmd())
	assert.Contains(t, m.View(), "Save failed")
}

func TestNoticeExpires(t *testing.T) {
	m := newTestModel(t, &fakeSender{})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	gen := m.noticeGen

	m = update(t, m, noticeExpiredMsg{gen: gen - 1})
	assert.Contains(t, m.View(), "History disabled", "older expiry should not clear a newer notice")

	m = update(t, m, noticeExpiredMsg{gen: gen})
	assert.NotContains(t, m.View(), "History disabled")
}

func TestQuit(t *testing.T) {
	for _, k := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		m := newTestModel(t, &fakeSender{})
		_, cmd := updateCmd(t, m, tea.KeyMsg{Type: k})
		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
	}
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel(t, &fakeSender{})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyF1})

	view := m.View()
	assert.Contains(t, view, "page up")
	assert.LessOrEqual(t, lipgloss.Height(view), 30)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyF1})
	assert.NotContains(t, m.View(), "page up")
}

func TestWithConversation_Resumes(t *testing.T) {
	conv := model.NewConversation("")
	conv.AddUserMessage("earlier question")
	conv.AddAssistantMessage("earlier **answer**")
	conv.SetThreadID("abcdef123456")

	m := newTestModel(t, &fakeSender{}).WithConversation(conv)
	view := m.View()
	assert.Contains(t, view, "earlier answer")
	assert.Contains(t, view, "thread abcdef12")
	assert.True(t, strings.Contains(view, "earlier question"))
}

func TestWithGreeting(t *testing.T) {
	m := newTestModel(t, &fakeSender{}).WithGreeting("Hola")
	require.Equal(t, 1, m.Conversation().MessageCount())
	assert.Equal(t, "Hola", m.Conversation().Messages[0].Content)

	m = m.WithGreeting("")
	assert.Equal(t, 0, m.Conversation().MessageCount())
}

func TestSettingsReload(t *testing.T) {
	m := newTestModel(t, &fakeSender{})

	m = update(t, m, SettingsMsg{Err: errors.New("bad toml")})
	assert.Contains(t, m.View(), "Config error")

	m = update(t, m, SettingsMsg{ShowTimestamps: true, Greeting: "Welcome back"})
	assert.Contains(t, m.View(), "Config reloaded")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	require.Equal(t, 1, m.Conversation().MessageCount())
	assert.Equal(t, "Welcome back", m.Conversation().Messages[0].Content)
}
