// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// render.go - Render markdown-subset text without a backend.
//
// Command: render
// Short:   Render a file or stdin through the markdown core
//
// Examples:
//   chatline render reply.md
//   printf '**hi**\n- a\n- b' | chatline render
//   chatline render --format tree notes.md
//   chatline render -f html - < notes.md > notes.html
//
// Flags:
//   -f, --format FORMAT  ansi (default), plain, html, tree, json
//   -w, --width N        Wrap width for ansi and plain (0 = terminal width)
//   --links MODE         Terminal hyperlinks for ansi: auto, on, off

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeranaias/chatline/internal/export"
	"github.com/jeranaias/chatline/internal/markdown"
	"github.com/jeranaias/chatline/internal/ui/components"
)

func runRender(a Args) error {
	text, err := readRenderInput(a)
	if err != nil {
		return err
	}

	cfg, err := LoadConfig(a)
	if err != nil {
		return err
	}

	doc := markdown.Segment(text)

	var out string
	switch a.Format {
	case "plain":
		out = components.RenderPlain(doc, renderWidth(cfg, a, a.Stdout))
	case "html":
		out = export.Fragment(doc)
	case "tree":
		out = strings.TrimRight(doc.Dump(), "\n")
	case "json":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode document: %w", err)
		}
		out = string(data)
	default:
		out = newMarkdownView(cfg, a, a.Stdout).Render(doc)
	}

	if out == "" {
		return nil
	}
	_, err = fmt.Fprintln(a.Stdout, out)
	return err
}

// readRenderInput reads the named file, or stdin for "-" or no argument.
func readRenderInput(a Args) (string, error) {
	var r io.Reader
	switch name := a.Subcommand("-"); name {
	case "-":
		if a.Stdin == nil || isTerminal(a.Stdin) {
			return "", usageErrorf("render: no input (pass a file or pipe text to stdin)")
		}
		r = a.Stdin
	default:
		f, err := os.Open(name)
		if err != nil {
			return "", fmt.Errorf("failed to open %s: %w", name, err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, maxStdinMessage))
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}
