// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the chat screen of the chatline TUI.

The Model is a Bubble Tea model combining the header, a scrollable message
viewport, the typing indicator, a multi-line input and the status bar.

# Exchange Flow

Pressing Enter with non-blank input appends the user message, starts the
typing indicator and returns a tea.Cmd that runs backend.Exchanger.Do off the
Update loop. The resulting ReplyMsg is applied to the conversation inside
Update, so the conversation is only ever mutated on the Bubble Tea goroutine.
When a store is configured the conversation is saved after every exchange.

# Keys

	Enter      send (ignored while blank or while a reply is pending)
	Alt+Enter  newline
	PgUp/PgDn  scroll
	Home/End   jump to top / bottom
	Ctrl+L     clear the conversation and start a new thread
	Ctrl+S     save the conversation
	F1         toggle help
	Ctrl+C/Esc quit
*/
package chat
