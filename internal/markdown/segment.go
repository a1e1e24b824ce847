// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import (
	"regexp"
	"strings"
	"unicode"
)

// space is the whitespace class around list markers: ASCII whitespace
// including \v, Unicode space separators, BOM and the line/paragraph
// separators. isSpace below must accept the same set.
const space = `[\s\v\p{Zs}\x{FEFF}\x{2028}\x{2029}]`

var (
	bulletPattern   = regexp.MustCompile(`^` + space + `*[-*]` + space + `+(.+)$`)
	numberedPattern = regexp.MustCompile(`^` + space + `*\d+\.` + space + `+(.+)$`)
)

// isSpace reports whether r is in the space class.
func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', '\uFEFF', '\u2028', '\u2029':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// isBlank reports whether line holds only space-class characters.
func isBlank(line string) bool {
	return strings.TrimFunc(line, isSpace) == ""
}

// listState accumulates consecutive list items of one kind.
type listState struct {
	active bool
	kind   ListKind
	items  [][]Inline
}

// add appends an item, flushing first if the list kind changes.
func (ls *listState) add(doc Document, kind ListKind, item string) Document {
	if ls.active && ls.kind != kind {
		doc = ls.flush(doc)
	}
	ls.active = true
	ls.kind = kind
	ls.items = append(ls.items, Tokenize(item))
	return doc
}

// flush emits the pending list, if any, and resets the state.
func (ls *listState) flush(doc Document) Document {
	if ls.active && len(ls.items) > 0 {
		doc = append(doc, List{Kind: ls.kind, Items: ls.items})
	}
	*ls = listState{}
	return doc
}

// Segment parses a message into block nodes.
//
// The text is split on "\n". Lines starting with "-" or "*" followed by
// whitespace are bullet items, lines starting with "N." followed by whitespace
// are numbered items (leading indentation is allowed for both). Consecutive
// items of the same kind form one List; a change of kind starts a new List.
// Any other non-blank line becomes a Paragraph with its full text (including
// leading whitespace) tokenized. A blank line becomes a LineBreak unless it is
// the last line. The last line never carries a trailing break.
//
// Segment never fails. Empty input returns an empty Document.
func Segment(text string) Document {
	lines := strings.Split(text, "\n")
	doc := Document{}
	var ls listState

	for i, line := range lines {
		last := i == len(lines)-1

		if m := bulletPattern.FindStringSubmatch(line); m != nil {
			doc = ls.add(doc, Unordered, m[1])
			continue
		}
		if m := numberedPattern.FindStringSubmatch(line); m != nil {
			doc = ls.add(doc, Ordered, m[1])
			continue
		}

		doc = ls.flush(doc)
		if !isBlank(line) {
			doc = append(doc, Paragraph{Inline: Tokenize(line), TrailingBreak: !last})
		} else if !last {
			doc = append(doc, LineBreak{})
		}
	}

	return ls.flush(doc)
}
