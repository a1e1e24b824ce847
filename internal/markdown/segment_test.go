// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(nodes ...Inline) []Inline { return nodes }

// =============================================================================
// SEGMENT TESTS
// =============================================================================

func TestSegment(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Document
	}{
		{
			name:  "empty input",
			input: "",
			want:  Document{},
		},
		{
			name:  "single line",
			input: "hello",
			want:  Document{Paragraph{Inline: item(Text("hello"))}},
		},
		{
			name:  "blank line between paragraphs",
			input: "a\n\nb",
			want: Document{
				Paragraph{Inline: item(Text("a")), TrailingBreak: true},
				LineBreak{},
				Paragraph{Inline: item(Text("b"))},
			},
		},
		{
			name:  "trailing newline",
			input: "a\n",
			want:  Document{Paragraph{Inline: item(Text("a")), TrailingBreak: true}},
		},
		{
			name:  "ordered list then paragraph",
			input: "1. first\n2. second\n\nDone",
			want: Document{
				List{Kind: Ordered, Items: [][]Inline{item(Text("first")), item(Text("second"))}},
				LineBreak{},
				Paragraph{Inline: item(Text("Done"))},
			},
		},
		{
			name:  "list kind switch",
			input: "- a\n1. b\n- c",
			want: Document{
				List{Kind: Unordered, Items: [][]Inline{item(Text("a"))}},
				List{Kind: Ordered, Items: [][]Inline{item(Text("b"))}},
				List{Kind: Unordered, Items: [][]Inline{item(Text("c"))}},
			},
		},
		{
			name:  "star and dash bullets share a list",
			input: "* a\n- b",
			want: Document{
				List{Kind: Unordered, Items: [][]Inline{item(Text("a")), item(Text("b"))}},
			},
		},
		{
			name:  "indented items",
			input: "  - a\n\t10. b",
			want: Document{
				List{Kind: Unordered, Items: [][]Inline{item(Text("a"))}},
				List{Kind: Ordered, Items: [][]Inline{item(Text("b"))}},
			},
		},
		{
			name:  "vertical tab after marker",
			input: "-\vitem",
			want: Document{
				List{Kind: Unordered, Items: [][]Inline{item(Text("item"))}},
			},
		},
		{
			name:  "byte order mark before marker",
			input: "\uFEFF- item\n\u20281. next",
			want: Document{
				List{Kind: Unordered, Items: [][]Inline{item(Text("item"))}},
				List{Kind: Ordered, Items: [][]Inline{item(Text("next"))}},
			},
		},
		{
			name:  "no-break space after number",
			input: "2.\u00a0two",
			want: Document{
				List{Kind: Ordered, Items: [][]Inline{item(Text("two"))}},
			},
		},
		{
			name:  "item text is tokenized",
			input: "- **bold** item",
			want: Document{
				List{Kind: Unordered, Items: [][]Inline{item(bold("bold"), Text(" item"))}},
			},
		},
		{
			name:  "paragraph keeps leading whitespace",
			input: "   indented",
			want:  Document{Paragraph{Inline: item(Text("   indented"))}},
		},
		{
			name:  "marker without text is a paragraph",
			input: "-\nnext",
			want: Document{
				Paragraph{Inline: item(Text("-")), TrailingBreak: true},
				Paragraph{Inline: item(Text("next"))},
			},
		},
		{
			name:  "marker without space is a paragraph",
			input: "-a",
			want:  Document{Paragraph{Inline: item(Text("-a"))}},
		},
		{
			name:  "bold line is not a bullet",
			input: "**bold** start",
			want:  Document{Paragraph{Inline: item(bold("bold"), Text(" start"))}},
		},
		{
			name:  "list ends at last line",
			input: "text\n- a\n- b",
			want: Document{
				Paragraph{Inline: item(Text("text")), TrailingBreak: true},
				List{Kind: Unordered, Items: [][]Inline{item(Text("a")), item(Text("b"))}},
			},
		},
		{
			name:  "byte order mark line is a break",
			input: "a\n\uFEFF\u2029\nb",
			want: Document{
				Paragraph{Inline: item(Text("a")), TrailingBreak: true},
				LineBreak{},
				Paragraph{Inline: item(Text("b"))},
			},
		},
		{
			name:  "next line is not space",
			input: "a\n\u0085",
			want: Document{
				Paragraph{Inline: item(Text("a")), TrailingBreak: true},
				Paragraph{Inline: item(Text("\u0085"))},
			},
		},
		{
			name:  "whitespace-only lines are breaks",
			input: "a\n   \nb",
			want: Document{
				Paragraph{Inline: item(Text("a")), TrailingBreak: true},
				LineBreak{},
				Paragraph{Inline: item(Text("b"))},
			},
		},
		{
			name:  "blank line closes list",
			input: "- a\n\n- b",
			want: Document{
				List{Kind: Unordered, Items: [][]Inline{item(Text("a"))}},
				LineBreak{},
				List{Kind: Unordered, Items: [][]Inline{item(Text("b"))}},
			},
		},
		{
			name:  "only newlines",
			input: "\n\n",
			want:  Document{LineBreak{}, LineBreak{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Segment(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSegment_SingleLineMatchesTokenize(t *testing.T) {
	lines := []string{
		"Check **this** out: [link](http://x.com) and `code`",
		"plain",
		"snake_case_name",
	}
	for _, line := range lines {
		doc := Segment(line)
		require.Len(t, doc, 1)
		p, ok := doc[0].(Paragraph)
		require.True(t, ok)
		assert.False(t, p.TrailingBreak)
		assert.Equal(t, Tokenize(line), p.Inline)
	}
}

func TestSegment_ItemCapturesAfterWhitespace(t *testing.T) {
	// The marker's whitespace run gives back one char so the item is never empty.
	doc := Segment("-  ")
	require.Len(t, doc, 1)
	l, ok := doc[0].(List)
	require.True(t, ok)
	assert.Equal(t, [][]Inline{item(Text(" "))}, l.Items)
}

func TestSegment_ListsNeverEmpty(t *testing.T) {
	doc := Segment("- a\n1. b\n\n* c\nplain\n2. d")
	for _, b := range doc {
		if l, ok := b.(List); ok {
			assert.NotEmpty(t, l.Items)
		}
	}
}

func TestSegment_LastBlockHasNoBreak(t *testing.T) {
	doc := Segment("one\ntwo\nthree")
	require.Len(t, doc, 3)
	assert.True(t, doc[0].(Paragraph).TrailingBreak)
	assert.True(t, doc[1].(Paragraph).TrailingBreak)
	assert.False(t, doc[2].(Paragraph).TrailingBreak)
}

func TestSegment_Kinds(t *testing.T) {
	doc := Segment("p\n\n- l")
	kinds := make([]BlockKind, len(doc))
	for i, b := range doc {
		kinds[i] = b.BlockKind()
	}
	assert.Equal(t, []BlockKind{BlockParagraph, BlockLineBreak, BlockList}, kinds)
	assert.Equal(t, Unordered, doc[2].(List).Kind, "List.Kind field is separate from BlockKind()")
}

// =============================================================================
// HELPER TESTS
// =============================================================================

func TestDocument_PlainText(t *testing.T) {
	doc := Segment("Hi **there**\n\n- one\n- [two](http://2)\n\n1. `x`\n2. _y_")
	want := "Hi there\n\n- one\n- two (http://2)\n\n1. x\n2. y"
	assert.Equal(t, want, doc.PlainText())
}

func TestDocument_Dump(t *testing.T) {
	got := Segment("a **b**\n- c").Dump()
	want := "Paragraph (break=true)\n" +
		"  Text \"a \"\n" +
		"  Bold \"b\"\n" +
		"List (unordered, 1 items)\n" +
		"  Item 1\n" +
		"    Text \"c\"\n"
	assert.Equal(t, want, got)
}

func TestDocument_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Segment("[a](b)\n\n1. *c*"))
	require.NoError(t, err)
	want := `[{"type":"paragraph","break":true,"inline":[{"type":"link","text":"a","url":"b"}]},` +
		`{"type":"linebreak"},` +
		`{"type":"list","kind":"ordered","items":[[{"type":"emphasis","style":"italic","text":"c"}]]}]`
	assert.JSONEq(t, want, string(data))
}

func TestDocument_MarshalJSONEmpty(t *testing.T) {
	data, err := json.Marshal(Segment(""))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
