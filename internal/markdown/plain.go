// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import (
	"fmt"
	"strconv"
	"strings"
)

// PlainText returns the inline content without markup. Links render as
// "text (url)".
func PlainText(nodes []Inline) string {
	var sb strings.Builder
	for _, n := range nodes {
		switch n := n.(type) {
		case Text:
			sb.WriteString(string(n))
		case Emphasis:
			sb.WriteString(n.Content)
		case Code:
			sb.WriteString(string(n))
		case Link:
			sb.WriteString(n.Text)
			if n.URL != n.Text {
				sb.WriteString(" (" + n.URL + ")")
			}
		}
	}
	return sb.String()
}

// PlainText returns the document as unstyled text. Bullet items are prefixed
// with "- " and numbered items with their position.
func (d Document) PlainText() string {
	var sb strings.Builder
	for _, b := range d {
		switch b := b.(type) {
		case Paragraph:
			sb.WriteString(PlainText(b.Inline))
			if b.TrailingBreak {
				sb.WriteByte('\n')
			}
		case LineBreak:
			sb.WriteByte('\n')
		case List:
			for i, item := range b.Items {
				if b.Kind == Ordered {
					sb.WriteString(strconv.Itoa(i+1) + ". ")
				} else {
					sb.WriteString("- ")
				}
				sb.WriteString(PlainText(item))
				sb.WriteByte('\n')
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Dump returns an indented, human-readable description of the tree.
// It is meant for debugging and the render command.
func (d Document) Dump() string {
	var sb strings.Builder
	for _, b := range d {
		switch b := b.(type) {
		case Paragraph:
			fmt.Fprintf(&sb, "Paragraph (break=%t)\n", b.TrailingBreak)
			dumpInline(&sb, b.Inline, "  ")
		case LineBreak:
			sb.WriteString("LineBreak\n")
		case List:
			fmt.Fprintf(&sb, "List (%s, %d items)\n", b.Kind, len(b.Items))
			for i, item := range b.Items {
				fmt.Fprintf(&sb, "  Item %d\n", i+1)
				dumpInline(&sb, item, "    ")
			}
		}
	}
	return sb.String()
}

func dumpInline(sb *strings.Builder, nodes []Inline, indent string) {
	for _, n := range nodes {
		switch n := n.(type) {
		case Text:
			fmt.Fprintf(sb, "%sText %q\n", indent, string(n))
		case Emphasis:
			fmt.Fprintf(sb, "%s%s %q\n", indent, titleCase(n.Style.String()), n.Content)
		case Code:
			fmt.Fprintf(sb, "%sCode %q\n", indent, string(n))
		case Link:
			fmt.Fprintf(sb, "%sLink %q -> %q\n", indent, n.Text, n.URL)
		}
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
