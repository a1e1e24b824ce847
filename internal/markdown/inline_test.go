// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bold(s string) Emphasis      { return Emphasis{Style: Bold, Content: s, Delim: "**"} }
func italic(s string) Emphasis    { return Emphasis{Style: Italic, Content: s, Delim: "*"} }
func italicUnd(s string) Emphasis { return Emphasis{Style: Italic, Content: s, Delim: "_"} }

// =============================================================================
// TOKENIZE TESTS
// =============================================================================

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Inline
	}{
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
		{
			name:  "plain text",
			input: "just some words",
			want:  []Inline{Text("just some words")},
		},
		{
			name:  "mixed spans",
			input: "Check **this** out: [link](http://x.com) and `code`",
			want: []Inline{
				Text("Check "),
				bold("this"),
				Text(" out: "),
				Link{Text: "link", URL: "http://x.com"},
				Text(" and "),
				Code("code"),
			},
		},
		{
			name:  "bold wins tie with italic",
			input: "**x**",
			want:  []Inline{bold("x")},
		},
		{
			name:  "italic with star",
			input: "an *emphasized* word",
			want:  []Inline{Text("an "), italic("emphasized"), Text(" word")},
		},
		{
			name:  "italic with underscore",
			input: "_hi_ there",
			want:  []Inline{italicUnd("hi"), Text(" there")},
		},
		{
			name:  "leftmost wins over priority",
			input: "`a` **b**",
			want:  []Inline{Code("a"), Text(" "), bold("b")},
		},
		{
			name:  "unterminated bold stays literal",
			input: "a **b",
			want:  []Inline{Text("a **b")},
		},
		{
			name:  "empty delimiters are literal",
			input: "** and `` and __",
			want:  []Inline{Text("** and `` and __")},
		},
		{
			name:  "non greedy close",
			input: "**a** and **b**",
			want:  []Inline{bold("a"), Text(" and "), bold("b")},
		},
		{
			name:  "nested formatting not parsed",
			input: "**bold with `code` inside**",
			want:  []Inline{bold("bold with `code` inside")},
		},
		{
			name:  "code hides nothing after it",
			input: "`x` [go](https://go.dev)",
			want:  []Inline{Code("x"), Text(" "), Link{Text: "go", URL: "https://go.dev"}},
		},
		{
			name:  "link without url is literal",
			input: "[text]() end",
			want:  []Inline{Text("[text]() end")},
		},
		{
			name:  "unicode text",
			input: "¿Qué **tal**? 你好",
			want:  []Inline{Text("¿Qué "), bold("tal"), Text("? 你好")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

// snake_case identifiers are read as italic. This is a known limitation of
// the underscore delimiter and is kept for compatibility with existing
// message content.
func TestTokenize_SnakeCaseKnownLimitation(t *testing.T) {
	got := Tokenize("snake_case_name")
	assert.Equal(t, []Inline{Text("snake"), italicUnd("case"), Text("name")}, got)
}

func TestTokenize_SourceFidelity(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"Check **this** out: [link](http://x.com) and `code`",
		"***triple***",
		"a * b * c",
		"_a_ _b_ *c* **d** `e` [f](g)",
		"unclosed [link](http://x and `tick",
		"  leading space **kept**",
		"**a**b**c**",
		"mixed_under_scores and *stars*",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, in, Source(Tokenize(in)...))
		})
	}
}

func TestTokenize_NoDelimitersSingleText(t *testing.T) {
	in := "Hello, world. Nothing to see here!"
	got := Tokenize(in)
	require.Len(t, got, 1)
	assert.Equal(t, Text(in), got[0])
}

func TestTokenize_NoEmptyContent(t *testing.T) {
	for _, n := range Tokenize("**x** *y* _z_ `w` [a](b) plain") {
		switch n := n.(type) {
		case Text:
			assert.NotEmpty(t, string(n))
		case Emphasis:
			assert.NotEmpty(t, n.Content)
		case Code:
			assert.NotEmpty(t, string(n))
		case Link:
			assert.NotEmpty(t, n.Text)
			assert.NotEmpty(t, n.URL)
		}
	}
}

func TestTokenize_TripleStar(t *testing.T) {
	// Bold starts at 0 along with italic; bold wins and its lazy close is the
	// first "**" after at least one char.
	got := Tokenize("***x***")
	require.NotEmpty(t, got)
	assert.Equal(t, "***x***", Source(got...))
	e, ok := got[0].(Emphasis)
	require.True(t, ok)
	assert.Equal(t, Bold, e.Style)
	assert.Equal(t, "*x", e.Content)
}

func TestTokenize_Concurrent(t *testing.T) {
	in := strings.Repeat("a **b** `c` [d](e) ", 20)
	want := Tokenize(in)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, Tokenize(in))
		}()
	}
	wg.Wait()
}

func TestMatchers_Independent(t *testing.T) {
	tests := []struct {
		name  string
		find  matcher
		input string
		start int
		end   int
	}{
		{"bold", findBold, "x **b** y", 2, 7},
		{"italic star", findItalicStar, "x *i* y", 2, 5},
		{"italic underscore", findItalicUnderscore, "x _i_ y", 2, 5},
		{"code", findCode, "x `c` y", 2, 5},
		{"link", findLink, "x [t](u) y", 2, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Repeated calls give the same answer: no cursor carried over.
			for i := 0; i < 2; i++ {
				sp, ok := tt.find(tt.input)
				require.True(t, ok)
				assert.Equal(t, tt.start, sp.start)
				assert.Equal(t, tt.end, sp.end)
			}
		})
	}
}

func BenchmarkTokenize(b *testing.B) {
	line := strings.Repeat("some **bold** and `code` with a [link](http://example.com) ", 10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Tokenize(line)
	}
}
