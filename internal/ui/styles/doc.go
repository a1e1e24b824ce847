// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the chatline TUI.

All colors use Lip Gloss AdaptiveColor so one palette serves light and dark
terminals. A Theme binds the palette to a lipgloss.Renderer whose background
is detected (ThemeAuto) or forced (ThemeDark, ThemeLight).

# Color System (colors.go)

  - Purple - Assistant messages, list bullets
  - Cyan - Brand color, user highlights, ordered list numbers
  - Rose - Errors
  - Amber - System notices
  - Emerald - Success

Markdown tokens have their own colors:

	CodeFg, CodeBg - Inline code spans
	LinkColor      - Link text (also underlined)

# Theme System (theme.go)

	theme := styles.NewTheme(styles.ThemeAuto)
	bold := theme.Bold.Render("important")

# Spinners (animations.go)

	s := styles.DotsSpinner.Spinner() // bubbles spinner.Spinner
*/
package styles
