// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import "encoding/json"

// jsonNode is the wire form of both block and inline nodes.
type jsonNode struct {
	Type   string       `json:"type"`
	Style  string       `json:"style,omitempty"`
	Text   string       `json:"text,omitempty"`
	URL    string       `json:"url,omitempty"`
	Break  bool         `json:"break,omitempty"`
	Kind   string       `json:"kind,omitempty"`
	Inline []jsonNode   `json:"inline,omitempty"`
	Items  [][]jsonNode `json:"items,omitempty"`
}

// MarshalJSON encodes the document as a list of typed nodes, e.g.
//
//	[{"type":"paragraph","inline":[{"type":"text","text":"hi"}]}]
func (d Document) MarshalJSON() ([]byte, error) {
	out := make([]jsonNode, 0, len(d))
	for _, b := range d {
		switch b := b.(type) {
		case Paragraph:
			out = append(out, jsonNode{Type: "paragraph", Break: b.TrailingBreak, Inline: inlineJSON(b.Inline)})
		case LineBreak:
			out = append(out, jsonNode{Type: "linebreak"})
		case List:
			items := make([][]jsonNode, len(b.Items))
			for i, item := range b.Items {
				items[i] = inlineJSON(item)
			}
			out = append(out, jsonNode{Type: "list", Kind: b.Kind.String(), Items: items})
		}
	}
	return json.Marshal(out)
}

func inlineJSON(nodes []Inline) []jsonNode {
	out := make([]jsonNode, 0, len(nodes))
	for _, n := range nodes {
		switch n := n.(type) {
		case Text:
			out = append(out, jsonNode{Type: "text", Text: string(n)})
		case Emphasis:
			out = append(out, jsonNode{Type: "emphasis", Style: n.Style.String(), Text: n.Content})
		case Code:
			out = append(out, jsonNode{Type: "code", Text: string(n)})
		case Link:
			out = append(out, jsonNode{Type: "link", Text: n.Text, URL: n.URL})
		}
	}
	return out
}
