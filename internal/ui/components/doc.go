// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the UI components of the chatline TUI.

Each component is a small struct built on Bubble Tea and Lip Gloss that
renders with a shared *styles.Theme.

# Rendering

MarkdownView (markdown.go) - Renders a markdown.Document with terminal styling,
wrapping and optional OSC 8 hyperlinks.
RenderPlain (plain.go) - Renders a markdown.Document as wrapped plain text.
MessageBubble (message.go) - One chat message with its role label.

# Chat Screen

Header (header.go) - Title, backend host and current thread.
ChatViewport (viewport.go) - Scrollable message list.
TypingIndicator (typing.go) - Spinner shown while a reply is pending.
InputArea (input.go) - Multi-line composer with a character counter.
StatusBar (statusbar.go) - Exchange status and key hints.

# Usage

	theme := styles.NewTheme(styles.ThemeAuto)
	md := components.NewMarkdownView(theme)
	md.SetWidth(60)
	fmt.Println(md.RenderText("Hello **world**"))
*/
package components
