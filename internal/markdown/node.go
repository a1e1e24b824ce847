// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import "strings"

// =============================================================================
// BLOCK NODES
// =============================================================================

// BlockKind identifies the concrete type of a Block.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockLineBreak
	BlockList
)

// String returns the name of the block kind.
func (k BlockKind) String() string {
	switch k {
	case BlockParagraph:
		return "paragraph"
	case BlockLineBreak:
		return "linebreak"
	case BlockList:
		return "list"
	default:
		return "unknown"
	}
}

// Block is a block-level node. The set of implementations is closed:
// Paragraph, LineBreak and List.
type Block interface {
	BlockKind() BlockKind
	block()
}

// Document is the parsed form of one message. It is owned by the caller and
// never modified by this package after it is returned.
type Document []Block

// Paragraph is a single non-blank source line.
type Paragraph struct {
	Inline []Inline
	// TrailingBreak is false only for the last line of the message.
	TrailingBreak bool
}

// LineBreak is a blank source line that is not the last line.
type LineBreak struct{}

// ListKind distinguishes bullet lists from numbered lists.
type ListKind int

const (
	Unordered ListKind = iota
	Ordered
)

// String returns the name of the list kind.
func (k ListKind) String() string {
	if k == Ordered {
		return "ordered"
	}
	return "unordered"
}

// List is a run of consecutive list-marker lines of the same kind.
// It always holds at least one item.
type List struct {
	Kind  ListKind
	Items [][]Inline
}

func (Paragraph) BlockKind() BlockKind { return BlockParagraph }
func (LineBreak) BlockKind() BlockKind { return BlockLineBreak }
func (List) BlockKind() BlockKind      { return BlockList }

func (Paragraph) block() {}
func (LineBreak) block() {}
func (List) block()      {}

// =============================================================================
// INLINE NODES
// =============================================================================

// InlineKind identifies the concrete type of an Inline.
type InlineKind int

const (
	InlineText InlineKind = iota
	InlineEmphasis
	InlineCode
	InlineLink
)

// String returns the name of the inline kind.
func (k InlineKind) String() string {
	switch k {
	case InlineText:
		return "text"
	case InlineEmphasis:
		return "emphasis"
	case InlineCode:
		return "code"
	case InlineLink:
		return "link"
	default:
		return "unknown"
	}
}

// Inline is an inline-level node. The set of implementations is closed:
// Text, Emphasis, Code and Link.
type Inline interface {
	Kind() InlineKind
	// Source returns the exact markup the node was parsed from.
	Source() string
	inline()
}

// Text is literal text.
type Text string

// Style is the style of an Emphasis node.
type Style int

const (
	Bold Style = iota
	Italic
)

// String returns the name of the style.
func (s Style) String() string {
	if s == Italic {
		return "italic"
	}
	return "bold"
}

// Emphasis is bold or italic text. Content is never empty.
type Emphasis struct {
	Style   Style
	Content string
	// Delim is the delimiter used in the source: "**", "*" or "_".
	Delim string
}

// Code is an inline code span. Its content is never empty.
type Code string

// Link is a markdown link. Text and URL are never empty.
type Link struct {
	Text string
	URL  string
}

func (Text) Kind() InlineKind     { return InlineText }
func (Emphasis) Kind() InlineKind { return InlineEmphasis }
func (Code) Kind() InlineKind     { return InlineCode }
func (Link) Kind() InlineKind     { return InlineLink }

func (t Text) Source() string { return string(t) }

func (e Emphasis) Source() string {
	d := e.Delim
	if d == "" {
		d = e.defaultDelim()
	}
	return d + e.Content + d
}

func (c Code) Source() string { return "`" + string(c) + "`" }
func (l Link) Source() string { return "[" + l.Text + "](" + l.URL + ")" }

func (Text) inline()     {}
func (Emphasis) inline() {}
func (Code) inline()     {}
func (Link) inline()     {}

func (e Emphasis) defaultDelim() string {
	if e.Style == Bold {
		return "**"
	}
	return "*"
}

// Source concatenates the source markup of nodes. For any string s,
// Source(Tokenize(s)...) == s.
func Source(nodes ...Inline) string {
	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(n.Source())
	}
	return sb.String()
}
