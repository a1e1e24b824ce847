// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the chatline command line.
//
// Parse turns argv into a Command and Args using pflag; Run executes every
// command except the full-screen TUI, which main starts itself.
//
// # Commands
//
//   - ask: one exchange, rendered for the terminal or as plain text
//   - chat: line-mode conversation with liner input history
//   - render: run text through the markdown core (ansi, plain, html, tree, json)
//   - sessions: list, show, delete and export saved conversations
//   - config: show, get, set and locate settings
//   - serve: local development backend
//
// # Exit Codes
//
//   - 0: success
//   - 1: error, including a failed exchange
//   - 2: invalid usage
package cli
