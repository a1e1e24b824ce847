// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/jeranaias/chatline/internal/markdown"
	"github.com/jeranaias/chatline/internal/ui/styles"
)

// =============================================================================
// HYPERLINK MODE
// =============================================================================

// HyperlinkMode controls OSC 8 hyperlink output.
type HyperlinkMode string

const (
	HyperlinksAuto HyperlinkMode = "auto"
	HyperlinksOn   HyperlinkMode = "on"
	HyperlinksOff  HyperlinkMode = "off"
)

// ParseHyperlinkMode parses "auto", "on" or "off". The empty string means auto.
func ParseHyperlinkMode(s string) (HyperlinkMode, error) {
	switch HyperlinkMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", HyperlinksAuto:
		return HyperlinksAuto, nil
	case HyperlinksOn:
		return HyperlinksOn, nil
	case HyperlinksOff:
		return HyperlinksOff, nil
	}
	return HyperlinksAuto, fmt.Errorf("unknown hyperlink mode %q: must be auto, on or off", s)
}

// Enabled resolves the mode, detecting terminal support for auto.
func (m HyperlinkMode) Enabled() bool {
	switch m {
	case HyperlinksOn:
		return true
	case HyperlinksOff:
		return false
	}
	return DetectHyperlinkSupport()
}

// DetectHyperlinkSupport reports whether the terminal likely renders OSC 8
// hyperlinks. OSC8=0 disables and OSC8=1 forces support.
func DetectHyperlinkSupport() bool {
	switch os.Getenv("OSC8") {
	case "0":
		return false
	case "1":
		return true
	}
	if os.Getenv("WT_SESSION") != "" || os.Getenv("DOMTERM") != "" {
		return true
	}
	switch os.Getenv("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm", "vscode", "ghostty":
		return true
	}
	if strings.Contains(strings.ToLower(os.Getenv("TERM")), "kitty") {
		return true
	}
	if vte := os.Getenv("VTE_VERSION"); vte != "" {
		if n, err := strconv.Atoi(vte); err == nil && n >= 5000 {
			return true
		}
	}
	return false
}

// =============================================================================
// MARKDOWN VIEW
// =============================================================================

// BulletGlyph prefixes unordered list items.
const BulletGlyph = "•"

// MarkdownView renders a parsed document for the terminal. It is the one
// place where node kinds map to presentation.
type MarkdownView struct {
	// Width wraps output at this many cells; 0 disables wrapping.
	Width int
	// Hyperlinks emits OSC 8 sequences for links instead of "text (url)".
	Hyperlinks bool

	theme *styles.Theme
}

// NewMarkdownView creates a view using theme's markdown styles.
func NewMarkdownView(theme *styles.Theme) *MarkdownView {
	return &MarkdownView{theme: theme}
}

// SetWidth sets the wrap width.
func (v *MarkdownView) SetWidth(width int) {
	v.Width = width
}

// SetHyperlinks enables or disables OSC 8 output.
func (v *MarkdownView) SetHyperlinks(enabled bool) {
	v.Hyperlinks = enabled
}

// RenderText segments and renders raw message text.
func (v *MarkdownView) RenderText(text string) string {
	return v.Render(markdown.Segment(text))
}

// Render renders the document. Paragraphs with a trailing break end their
// line, line breaks become empty lines and lists render one item per line
// with a hanging indent. Trailing newlines are trimmed.
func (v *MarkdownView) Render(doc markdown.Document) string {
	var sb strings.Builder
	for _, block := range doc {
		switch b := block.(type) {
		case markdown.Paragraph:
			sb.WriteString(v.wrap(v.renderInline(b.Inline), v.Width))
			if b.TrailingBreak {
				sb.WriteByte('\n')
			}
		case markdown.LineBreak:
			sb.WriteByte('\n')
		case markdown.List:
			for i, item := range b.Items {
				sb.WriteString(v.renderItem(b.Kind, i+1, item))
				sb.WriteByte('\n')
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// renderItem renders one list item with its marker and hanging indent.
func (v *MarkdownView) renderItem(kind markdown.ListKind, n int, item []markdown.Inline) string {
	var marker string
	var styled string
	if kind == markdown.Ordered {
		marker = strconv.Itoa(n) + "."
		styled = v.theme.ListNumber.Render(marker)
	} else {
		marker = BulletGlyph
		styled = v.theme.ListBullet.Render(marker)
	}

	indent := runewidth.StringWidth(marker) + 1
	width := 0
	if v.Width > 0 {
		width = max(v.Width-indent, 1)
	}

	lines := strings.Split(v.wrap(v.renderInline(item), width), "\n")
	pad := strings.Repeat(" ", indent)
	for i := range lines {
		if i == 0 {
			lines[i] = styled + " " + lines[i]
		} else {
			lines[i] = pad + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

// renderInline renders a run of inline nodes.
func (v *MarkdownView) renderInline(nodes []markdown.Inline) string {
	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(v.renderSpan(n))
	}
	return sb.String()
}

// renderSpan maps one inline node to styled text.
func (v *MarkdownView) renderSpan(n markdown.Inline) string {
	switch n := n.(type) {
	case markdown.Text:
		return string(n)
	case markdown.Emphasis:
		if n.Style == markdown.Bold {
			return v.theme.Bold.Render(n.Content)
		}
		return v.theme.Italic.Render(n.Content)
	case markdown.Code:
		return v.theme.Code.Render(string(n))
	case markdown.Link:
		if v.Hyperlinks {
			return termenv.Hyperlink(n.URL, v.theme.Link.Render(n.Text))
		}
		if n.URL == n.Text {
			return v.theme.Link.Render(n.Text)
		}
		return v.theme.Link.Render(n.Text) + " " + v.theme.LinkURL.Render("("+n.URL+")")
	}
	return n.Source()
}

// wrap word-wraps styled text, breaking overlong words. Escape sequences,
// OSC 8 hyperlinks included, take no width.
func (v *MarkdownView) wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return ansi.Wrap(s, width, "")
}
