// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import "regexp"

// =============================================================================
// INLINE PATTERNS
// =============================================================================

// Patterns are compiled once and only read afterwards. *regexp.Regexp is safe
// for concurrent use, so Tokenize holds no shared mutable state.
var (
	boldPattern       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicStarPattern = regexp.MustCompile(`\*(.+?)\*`)
	italicUndPattern  = regexp.MustCompile(`_(.+?)_`)
	codePattern       = regexp.MustCompile("`(.+?)`")
	linkPattern       = regexp.MustCompile(`\[(.+?)\]\((.+?)\)`)
)

// span is one pattern match inside the text being tokenized.
type span struct {
	start, end int
	node       Inline
}

// matcher reports the first match of one pattern in s.
type matcher func(s string) (span, bool)

// matchers in priority order. When two patterns match at the same offset the
// earlier entry wins, which is what keeps "**x**" bold instead of italic.
var matchers = []matcher{
	findBold,
	findItalicStar,
	findItalicUnderscore,
	findCode,
	findLink,
}

func findBold(s string) (span, bool) {
	return find(boldPattern, s, func(g []string) Inline {
		return Emphasis{Style: Bold, Content: g[1], Delim: "**"}
	})
}

func findItalicStar(s string) (span, bool) {
	return find(italicStarPattern, s, func(g []string) Inline {
		return Emphasis{Style: Italic, Content: g[1], Delim: "*"}
	})
}

func findItalicUnderscore(s string) (span, bool) {
	return find(italicUndPattern, s, func(g []string) Inline {
		return Emphasis{Style: Italic, Content: g[1], Delim: "_"}
	})
}

func findCode(s string) (span, bool) {
	return find(codePattern, s, func(g []string) Inline {
		return Code(g[1])
	})
}

func findLink(s string) (span, bool) {
	return find(linkPattern, s, func(g []string) Inline {
		return Link{Text: g[1], URL: g[2]}
	})
}

// find runs re against s and converts the first match with build.
// build receives the full match followed by its capture groups.
func find(re *regexp.Regexp, s string, build func(groups []string) Inline) (span, bool) {
	loc := re.FindStringSubmatchIndex(s)
	if loc == nil {
		return span{}, false
	}
	groups := make([]string, len(loc)/2)
	for i := range groups {
		if loc[2*i] >= 0 {
			groups[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return span{start: loc[0], end: loc[1], node: build(groups)}, true
}

// =============================================================================
// TOKENIZER
// =============================================================================

// Tokenize splits a single line of text into inline nodes.
//
// At each step every pattern is searched independently in the remaining text
// and the match with the smallest start offset is taken. Ties go to the
// pattern listed first (bold, italic with *, italic with _, code, link).
// Text before the match becomes a Text node and scanning resumes after it.
// Unterminated delimiters are left as literal text and nested formatting is
// not parsed.
//
// Concatenating the Source of every returned node yields text exactly.
// An empty string produces an empty (nil) slice.
func Tokenize(text string) []Inline {
	var nodes []Inline
	rest := text
	for rest != "" {
		best, ok := earliest(rest)
		if !ok {
			nodes = append(nodes, Text(rest))
			break
		}
		if best.start > 0 {
			nodes = append(nodes, Text(rest[:best.start]))
		}
		nodes = append(nodes, best.node)
		rest = rest[best.end:]
	}
	return nodes
}

// earliest returns the leftmost match among all matchers.
func earliest(s string) (span, bool) {
	var best span
	found := false
	for _, m := range matchers {
		sp, ok := m(s)
		if !ok {
			continue
		}
		// Strict comparison keeps the earlier matcher on ties.
		if !found || sp.start < best.start {
			best, found = sp, true
		}
	}
	return best, found
}
