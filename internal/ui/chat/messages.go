// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatline/internal/backend"
)

// =============================================================================
// EXCHANGE MESSAGES
// =============================================================================

// ReplyMsg carries the outcome of an exchange back to Update.
type ReplyMsg struct {
	// Seq identifies the send that produced this reply. Replies from a
	// send made before the last clear are dropped.
	Seq     int
	Outcome backend.Outcome
}

// =============================================================================
// PERSISTENCE MESSAGES
// =============================================================================

// SavedMsg reports the result of saving the conversation.
type SavedMsg struct {
	ConversationID string
	Err            error
}

// =============================================================================
// SETTINGS MESSAGES
// =============================================================================

// SettingsMsg applies settings reloaded from the config file while running.
// The greeting takes effect on the next clear.
type SettingsMsg struct {
	ShowTimestamps bool
	Greeting       string
	Err            error
}

// =============================================================================
// STATUS NOTICES
// =============================================================================

// noticeTTL is how long a status bar notice stays visible.
const noticeTTL = 3 * time.Second

// noticeExpiredMsg clears the notice with the given generation.
type noticeExpiredMsg struct {
	gen int
}

func expireNotice(gen int) tea.Cmd {
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{gen: gen}
	})
}
