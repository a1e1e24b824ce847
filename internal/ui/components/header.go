// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"net/url"
	"strings"

	"github.com/jeranaias/chatline/internal/ui/styles"
	"github.com/jeranaias/chatline/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// DefaultTitle is the header title.
const DefaultTitle = "Chat Assistant"

// Header is the title bar showing the backend host and current thread.
type Header struct {
	Title    string
	Backend  string // Backend base URL
	ThreadID string // Empty until the backend assigns one
	Width    int
	theme    *styles.Theme
}

// NewHeader creates a header with the default title.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: DefaultTitle,
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetBackend sets the backend URL shown in the subtitle.
func (h *Header) SetBackend(backendURL string) {
	h.Backend = backendURL
}

// SetThreadID sets the thread shown in the subtitle.
func (h *Header) SetThreadID(id string) {
	h.ThreadID = id
}

// View renders the header on one line: title on the left, backend and
// thread on the right. The subtitle is dropped when it does not fit.
func (h *Header) View() string {
	width := max(h.Width, 20)
	inner := width - 2 // Header padding

	title := h.theme.HeaderTitle.Render(util.TruncateWidth(h.Title, inner))

	var parts []string
	if host := backendHost(h.Backend); host != "" {
		parts = append(parts, host)
	}
	if h.ThreadID != "" {
		parts = append(parts, "thread "+shortID(h.ThreadID))
	} else {
		parts = append(parts, "new thread")
	}
	subtitle := strings.Join(parts, " | ")

	gap := inner - util.StringWidth(h.Title) - util.StringWidth(subtitle)
	line := title
	if gap >= 2 {
		line += strings.Repeat(" ", gap) + h.theme.HeaderSubtitle.Render(subtitle)
	} else {
		line += strings.Repeat(" ", max(inner-util.StringWidth(h.Title), 0))
	}

	return h.theme.Header.Width(width).Render(line)
}

// backendHost returns the host part of a URL, or the input if it does not parse.
func backendHost(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}

// shortID shortens UUID-style IDs for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
