// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// sessions.go - Saved conversation commands.
//
// Command: sessions [subcommand]
// Short:   Manage saved conversations
// Aliases: session
//
// Subcommands:
//   list (default)      List saved conversations, newest first
//   show <id>           Print a conversation
//   delete <id>         Delete a conversation
//   export <id>         Export a conversation to html, md or json
//
// IDs may be abbreviated to any unique prefix, with or without "conv_".
//
// Examples:
//   chatline sessions
//   chatline sessions --search invoice --limit 5
//   chatline sessions show 3f2a
//   chatline sessions export 3f2a --format html -o chat.html
//
// Flags:
//   -n, --limit N        Maximum sessions to list (default 20)
//   -s, --search TEXT    Only list sessions whose messages contain TEXT
//   -f, --format FORMAT  Export format: html, md (default), json
//   -o, --output PATH    Export file (default: derived from the title)
//   --json               Print as JSON

package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jeranaias/chatline/internal/export"
	"github.com/jeranaias/chatline/internal/model"
	"github.com/jeranaias/chatline/internal/storage"
	"github.com/jeranaias/chatline/internal/ui/components"
	"github.com/jeranaias/chatline/internal/ui/styles"
)

func runSessions(ctx context.Context, a Args) error {
	cfg, err := LoadConfig(a)
	if err != nil {
		return err
	}
	store, err := requireStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	switch a.Subcommand("list") {
	case "show":
		return sessionsShow(ctx, store, a, newTheme(cfg, a, a.Stdout), newMarkdownView(cfg, a, a.Stdout))
	case "delete", "rm":
		return sessionsDelete(ctx, store, a)
	case "export":
		return sessionsExport(ctx, store, a)
	default:
		return sessionsList(ctx, store, a)
	}
}

// sessionID accepts IDs as listed, without the "conv_" prefix.
func sessionID(id string) string {
	id = strings.TrimSpace(id)
	if strings.HasPrefix(id, "conv_") {
		return id
	}
	return "conv_" + id
}

func sessionsList(ctx context.Context, store *storage.Store, a Args) error {
	var (
		metas []model.ConversationMeta
		err   error
	)
	if a.Search != "" {
		metas, err = store.Search(ctx, a.Search, a.Limit)
	} else {
		metas, err = store.List(ctx, a.Limit)
	}
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if a.JSON {
		if metas == nil {
			metas = []model.ConversationMeta{}
		}
		return NewJSONResponse("sessions list", metas).Print(a.Stdout)
	}

	fmt.Fprint(a.Stdout, storage.FormatSessionList(metas, time.Now()))
	if len(metas) == 0 {
		fmt.Fprintln(a.Stdout)
		return nil
	}

	total, err := store.Count(ctx)
	if err == nil && total > len(metas) && a.Search == "" {
		fmt.Fprintf(a.Stdout, "\nShowing %d of %s sessions. Use --limit to see more.\n", len(metas), humanize.Comma(int64(total)))
	}
	return nil
}

func sessionsShow(ctx context.Context, store *storage.Store, a Args, theme *styles.Theme, md *components.MarkdownView) error {
	id := a.Positional[1]
	conv, err := store.Load(ctx, sessionID(id))
	if err != nil {
		return sessionError(id, err)
	}

	if a.JSON {
		return NewJSONResponse("sessions show", conv).Print(a.Stdout)
	}

	fmt.Fprintln(a.Stdout, theme.HeaderTitle.Render(conv.GetTitle()))
	meta := fmt.Sprintf("%s  created %s  %s messages",
		conv.ID, humanize.Time(conv.CreatedAt), humanize.Comma(int64(conv.MessageCount())))
	if conv.ThreadID != "" {
		meta += "  thread " + conv.ThreadID
	}
	fmt.Fprintln(a.Stdout, theme.MutedStyle.Render(meta))
	fmt.Fprintln(a.Stdout)

	for _, msg := range conv.Messages {
		label := theme.AssistantLabel
		if msg.Role == model.RoleUser {
			label = theme.UserLabel
		}
		fmt.Fprintf(a.Stdout, "%s %s\n", label.Render(msg.Role.DisplayName()), theme.Timestamp.Render(msg.Timestamp.Format("2006-01-02 15:04")))

		body := md.RenderText(msg.Content)
		if msg.IsError {
			body = theme.ErrorStyle.Render(body)
		}
		fmt.Fprintln(a.Stdout, body)
		fmt.Fprintln(a.Stdout)
	}
	return nil
}

func sessionsDelete(ctx context.Context, store *storage.Store, a Args) error {
	id := a.Positional[1]
	if err := store.Delete(ctx, sessionID(id)); err != nil {
		return sessionError(id, err)
	}
	if a.JSON {
		return NewJSONResponse("sessions delete", map[string]string{"deleted": id}).Print(a.Stdout)
	}
	fmt.Fprintf(a.Stdout, "Deleted session %s\n", id)
	return nil
}

func sessionsExport(ctx context.Context, store *storage.Store, a Args) error {
	id := a.Positional[1]
	conv, err := store.Load(ctx, sessionID(id))
	if err != nil {
		return sessionError(id, err)
	}

	exp, err := export.ForFormat(a.Format, nil)
	if err != nil {
		return usageErrorf("sessions export: %v", err)
	}

	if a.Output == "-" {
		data, err := exp.Export(conv)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		_, err = a.Stdout.Write(data)
		return err
	}

	path, err := export.ExportToFile(conv, exp, a.Output)
	if err != nil {
		return err
	}
	if a.JSON {
		return NewJSONResponse("sessions export", map[string]string{"path": path, "mime_type": exp.MimeType()}).Print(a.Stdout)
	}
	fmt.Fprintf(a.Stdout, "Exported %s to %s\n", conv.GetTitle(), path)
	return nil
}
