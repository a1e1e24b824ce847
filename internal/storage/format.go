// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jeranaias/chatline/internal/model"
	"github.com/jeranaias/chatline/internal/util"
)

// =============================================================================
// SESSION LIST FORMATTING
// =============================================================================

// FormatSessionList formats conversations as a table with relative update
// times measured from now.
func FormatSessionList(sessions []model.ConversationMeta, now time.Time) string {
	if len(sessions) == 0 {
		return "No sessions found."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-13s %-16s %5s  %s\n", "ID", "Updated", "Msgs", "Preview")
	sb.WriteString(strings.Repeat("-", 72) + "\n")

	for _, s := range sessions {
		id := s.ID
		id = strings.TrimPrefix(id, "conv_")
		if len(id) > 13 {
			id = id[:13]
		}
		updated := humanize.RelTime(s.UpdatedAt, now, "ago", "from now")
		fmt.Fprintf(&sb, "%-13s %-16s %5s  %s\n",
			id, updated, humanize.Comma(int64(s.MessageCount)), util.TruncateRunes(s.Preview, 34))
	}
	return sb.String()
}

// FormatSize returns a human-readable database size, e.g. "1.2 MB".
func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.Bytes(uint64(bytes))
}
