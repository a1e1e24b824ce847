// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/jeranaias/chatline/internal/markdown"
)

// RenderPlain renders the document without escape sequences, wrapped at
// width cells (0 disables wrapping). Bullets render as "-" so the output
// stays ASCII for pipes and logs.
func RenderPlain(doc markdown.Document, width int) string {
	var sb strings.Builder
	for _, block := range doc {
		switch b := block.(type) {
		case markdown.Paragraph:
			sb.WriteString(wrapPlain(markdown.PlainText(b.Inline), width))
			if b.TrailingBreak {
				sb.WriteByte('\n')
			}
		case markdown.LineBreak:
			sb.WriteByte('\n')
		case markdown.List:
			for i, item := range b.Items {
				marker := "-"
				if b.Kind == markdown.Ordered {
					marker = strconv.Itoa(i+1) + "."
				}
				sb.WriteString(hangingIndent(marker, markdown.PlainText(item), width))
				sb.WriteByte('\n')
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// wrapPlain word-wraps at width and hard-wraps words that still do not fit.
func wrapPlain(s string, width int) string {
	if width <= 0 {
		return s
	}
	return wrap.String(wordwrap.String(s, width), width)
}

// hangingIndent prefixes the first line with marker and aligns the
// remaining lines under the item text.
func hangingIndent(marker, text string, width int) string {
	w := runewidth.StringWidth(marker) + 1
	body := text
	if width > 0 {
		body = wrapPlain(text, max(width-w, 1))
	}

	first, rest, found := strings.Cut(body, "\n")
	out := marker + " " + first
	if found {
		out += "\n" + indent.String(rest, uint(w))
	}
	return out
}
