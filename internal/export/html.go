// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/jeranaias/chatline/internal/markdown"
	"github.com/jeranaias/chatline/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports conversations to a standalone HTML page with embedded CSS.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a conversation to HTML format.
func (e *HTMLExporter) Export(conv *model.Conversation) ([]byte, error) {
	if err := validate(conv); err != nil {
		return nil, err
	}

	title := html.EscapeString(conv.GetTitle())
	theme := e.options.Theme
	if theme != "dark" {
		theme = "light"
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", title)
	sb.WriteString("    <meta name=\"generator\" content=\"chatline\">\n")
	sb.WriteString(css)
	sb.WriteString("</head>\n")
	fmt.Fprintf(&sb, "<body class=\"%s-theme\">\n", theme)
	sb.WriteString("    <div class=\"container\">\n")

	if e.options.IncludeMetadata {
		sb.WriteString(e.renderHeader(conv))
	}

	sb.WriteString("        <main class=\"conversation\">\n")
	for _, msg := range conv.Messages {
		sb.WriteString(e.renderMessage(msg))
	}
	sb.WriteString("        </main>\n")

	sb.WriteString("        <footer class=\"footer\">\n")
	fmt.Fprintf(&sb, "            <p>Exported from <strong>chatline</strong> on %s</p>\n",
		e.options.exportedAt().Format("January 2, 2006 at 3:04 PM"))
	sb.WriteString("        </footer>\n")
	sb.WriteString("    </div>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

func (e *HTMLExporter) renderHeader(conv *model.Conversation) string {
	var sb strings.Builder
	sb.WriteString("        <header class=\"header\">\n")
	fmt.Fprintf(&sb, "            <h1>%s</h1>\n", html.EscapeString(conv.GetTitle()))
	sb.WriteString("            <div class=\"metadata\">\n")
	if conv.ThreadID != "" {
		fmt.Fprintf(&sb, "                <span class=\"meta-item\"><strong>Thread:</strong> %s</span>\n", html.EscapeString(conv.ThreadID))
	}
	fmt.Fprintf(&sb, "                <span class=\"meta-item\"><strong>Created:</strong> %s</span>\n", formatTimestamp(conv.CreatedAt))
	fmt.Fprintf(&sb, "                <span class=\"meta-item\"><strong>Messages:</strong> %d</span>\n", len(conv.Messages))
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")
	return sb.String()
}

func (e *HTMLExporter) renderMessage(msg *model.Message) string {
	class := "message " + string(msg.Role)
	if msg.IsError {
		class += " error"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "            <div class=\"%s\">\n", html.EscapeString(class))
	sb.WriteString("                <div class=\"message-header\">\n")
	fmt.Fprintf(&sb, "                    <span class=\"role\">%s</span>\n", html.EscapeString(msg.Role.DisplayName()))
	if e.options.IncludeTimestamps && !msg.Timestamp.IsZero() {
		fmt.Fprintf(&sb, "                    <span class=\"timestamp\">%s</span>\n", formatShortTimestamp(msg.Timestamp))
	}
	sb.WriteString("                </div>\n")
	sb.WriteString("                <div class=\"message-content\">")
	sb.WriteString(Fragment(msg.Document()))
	sb.WriteString("</div>\n")
	sb.WriteString("            </div>\n")
	return sb.String()
}

// =============================================================================
// DOCUMENT RENDERING
// =============================================================================

// Fragment renders a parsed message as an HTML fragment. Each source line
// becomes a <span> followed by <br> unless it is the last line, blank lines
// become <br>, and lists use the Tailwind classes of the web client.
// All text and attribute values are escaped.
func Fragment(doc markdown.Document) string {
	var sb strings.Builder
	for _, b := range doc {
		switch b := b.(type) {
		case markdown.Paragraph:
			sb.WriteString("<span>")
			writeInline(&sb, b.Inline)
			if b.TrailingBreak {
				sb.WriteString("<br>")
			}
			sb.WriteString("</span>")
		case markdown.LineBreak:
			sb.WriteString("<br>")
		case markdown.List:
			tag, class := "ul", "list-disc my-2 ml-6"
			if b.Kind == markdown.Ordered {
				tag, class = "ol", "list-decimal my-2 ml-6"
			}
			fmt.Fprintf(&sb, "<%s class=\"%s\">", tag, class)
			for _, item := range b.Items {
				sb.WriteString("<li class=\"ml-4\">")
				writeInline(&sb, item)
				sb.WriteString("</li>")
			}
			fmt.Fprintf(&sb, "</%s>", tag)
		}
	}
	return sb.String()
}

func writeInline(sb *strings.Builder, nodes []markdown.Inline) {
	for _, n := range nodes {
		switch n := n.(type) {
		case markdown.Text:
			sb.WriteString(html.EscapeString(string(n)))
		case markdown.Emphasis:
			tag := "strong"
			if n.Style == markdown.Italic {
				tag = "em"
			}
			fmt.Fprintf(sb, "<%s>%s</%s>", tag, html.EscapeString(n.Content), tag)
		case markdown.Code:
			sb.WriteString("<code>" + html.EscapeString(string(n)) + "</code>")
		case markdown.Link:
			if !safeHref(n.URL) {
				sb.WriteString(html.EscapeString(n.Text))
				continue
			}
			fmt.Fprintf(sb, "<a href=\"%s\" target=\"_blank\" rel=\"noopener noreferrer\">%s</a>",
				html.EscapeString(n.URL), html.EscapeString(n.Text))
		}
	}
}

// SECURITY: Script-capable schemes are never emitted as href values.
// Such links degrade to their text.
func safeHref(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "javascript", "vbscript", "data":
		return false
	}
	return true
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

const css = `    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }

        .light-theme {
            --bg: #f9fafb;
            --panel: #ffffff;
            --text: #1f2937;
            --muted: #6b7280;
            --border: #e5e7eb;
            --user-bg: #2563eb;
            --user-text: #ffffff;
            --code-bg: #f3f4f6;
            --link: #2563eb;
            --error: #dc2626;
        }

        .dark-theme {
            --bg: #1a1b26;
            --panel: #24283b;
            --text: #c0caf5;
            --muted: #565f89;
            --border: #414868;
            --user-bg: #3d59a1;
            --user-text: #ffffff;
            --code-bg: #1a1b26;
            --link: #7aa2f7;
            --error: #f7768e;
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            background: var(--bg);
            color: var(--text);
            line-height: 1.5;
        }

        .container { max-width: 48rem; margin: 0 auto; padding: 1.5rem 1rem; }
        .header { border-bottom: 1px solid var(--border); padding-bottom: 1rem; margin-bottom: 1.5rem; }
        .header h1 { font-size: 1.25rem; font-weight: 600; }
        .metadata { color: var(--muted); font-size: 0.875rem; display: flex; gap: 1rem; margin-top: 0.5rem; }

        .conversation { display: flex; flex-direction: column; gap: 1rem; }
        .message { max-width: 42rem; padding: 0.75rem 1rem; border-radius: 0.5rem; border: 1px solid var(--border); background: var(--panel); }
        .message.user { align-self: flex-end; background: var(--user-bg); color: var(--user-text); border: none; }
        .message.assistant { align-self: flex-start; }
        .message.error { border-color: var(--error); }
        .message-header { font-size: 0.75rem; color: var(--muted); display: flex; gap: 0.5rem; margin-bottom: 0.25rem; }
        .message.user .message-header { color: var(--user-text); opacity: 0.8; }
        .message-content { white-space: pre-wrap; word-break: break-word; }

        .list-disc { list-style-type: disc; }
        .list-decimal { list-style-type: decimal; }
        .my-2 { margin-top: 0.5rem; margin-bottom: 0.5rem; }
        .ml-6 { margin-left: 1.5rem; }
        .ml-4 { margin-left: 1rem; }

        code { background: var(--code-bg); padding: 0.125rem 0.375rem; border-radius: 0.25rem; font-family: ui-monospace, monospace; font-size: 0.875rem; }
        a { color: var(--link); text-decoration: none; }
        a:hover { text-decoration: underline; }

        .footer { margin-top: 2rem; color: var(--muted); font-size: 0.75rem; text-align: center; }
    </style>
`
