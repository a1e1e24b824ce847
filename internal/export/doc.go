// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes stored conversations to files.
//
// # Supported Formats
//
//   - HTML: standalone page; message bodies go through the markdown core
//   - Markdown: raw message content under role headings
//   - JSON: the conversation as stored
//
// # Usage
//
//	exp, err := export.ForFormat("html", nil)
//	if err != nil {
//	    return err
//	}
//	path, err := export.ExportToFile(conv, exp, "")
//
// Fragment renders a single parsed message as an HTML fragment and is used
// by the render command.
package export
