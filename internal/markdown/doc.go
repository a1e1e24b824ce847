// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markdown parses the small markdown subset used in chat messages
// into a render-ready document tree.
//
// Parsing happens in two stages. Segment splits a message into block nodes
// (paragraph lines, blank-line breaks and runs of bullet or numbered list
// items). Tokenize splits the text of a paragraph or list item into inline
// nodes (plain text, bold, italic, inline code and links).
//
// The supported subset is deliberately small: no headings, tables, quotes,
// nested lists, fenced code or escape sequences. Anything that is not
// recognized is kept as literal text, so parsing never fails.
//
// # Key Types
//
//   - Document: ordered sequence of Block values
//   - Block: Paragraph, LineBreak or List
//   - Inline: Text, Emphasis, Code or Link
//
// Both interfaces are sealed. Callers switch on the concrete type (or on
// Kind()) and should handle every case.
//
// # Usage
//
//	doc := markdown.Segment("Check **this** out\n\n- one\n- two")
//	for _, b := range doc {
//		switch b := b.(type) {
//		case markdown.Paragraph:
//			render(b.Inline)
//		case markdown.LineBreak:
//			blank()
//		case markdown.List:
//			renderList(b.Kind, b.Items)
//		}
//	}
//
// Segment and Tokenize are pure functions and safe for concurrent use.
package markdown
