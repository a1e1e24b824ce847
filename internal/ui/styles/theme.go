// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// THEME MODE
// =============================================================================

// ThemeMode selects how adaptive colors resolve.
type ThemeMode string

const (
	// ThemeAuto detects the terminal background.
	ThemeAuto ThemeMode = "auto"
	// ThemeDark forces the dark palette.
	ThemeDark ThemeMode = "dark"
	// ThemeLight forces the light palette.
	ThemeLight ThemeMode = "light"
)

// ParseThemeMode parses "auto", "dark" or "light" (case-insensitive).
// The empty string means ThemeAuto.
func ParseThemeMode(s string) (ThemeMode, error) {
	switch ThemeMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ThemeAuto:
		return ThemeAuto, nil
	case ThemeDark:
		return ThemeDark, nil
	case ThemeLight:
		return ThemeLight, nil
	}
	return ThemeAuto, fmt.Errorf("unknown theme %q: must be auto, dark or light", s)
}

// =============================================================================
// THEME
// =============================================================================

// Theme holds all the styled components for the application.
type Theme struct {
	Mode         ThemeMode
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile
	Renderer     *lipgloss.Renderer

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION AND HEADER
	// ==========================================================================

	App            lipgloss.Style
	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	SystemBubble    lipgloss.Style
	ErrorBubble     lipgloss.Style
	UserLabel       lipgloss.Style
	AssistantLabel  lipgloss.Style
	Timestamp       lipgloss.Style

	// ==========================================================================
	// MARKDOWN
	// ==========================================================================

	Bold       lipgloss.Style
	Italic     lipgloss.Style
	Code       lipgloss.Style
	Link       lipgloss.Style
	LinkURL    lipgloss.Style
	ListBullet lipgloss.Style
	ListNumber lipgloss.Style

	// ==========================================================================
	// INPUT, SPINNER AND STATUS BAR
	// ==========================================================================

	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	Spinner        lipgloss.Style
	ThinkingText   lipgloss.Style
	StatusBar      lipgloss.Style
	ShortcutKey    lipgloss.Style
	ShortcutDesc   lipgloss.Style

	// ==========================================================================
	// ACCESSIBILITY: Status styles with high contrast
	// ==========================================================================

	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	MutedStyle   lipgloss.Style
}

// NewTheme creates a theme bound to the default renderer (stdout).
func NewTheme(mode ThemeMode) *Theme {
	return NewThemeWithRenderer(mode, lipgloss.DefaultRenderer())
}

// NewThemeWithRenderer creates a theme bound to r. ThemeDark and ThemeLight
// override the renderer's detected background.
func NewThemeWithRenderer(mode ThemeMode, r *lipgloss.Renderer) *Theme {
	switch mode {
	case ThemeDark:
		r.SetHasDarkBackground(true)
	case ThemeLight:
		r.SetHasDarkBackground(false)
	default:
		mode = ThemeAuto
	}

	profile := r.ColorProfile()
	t := &Theme{
		Mode:         mode,
		IsDark:       r.HasDarkBackground(),
		HasTrueColor: profile == termenv.TrueColor,
		ColorProfile: profile,
		Renderer:     r,
	}

	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	r := t.Renderer

	t.App = r.NewStyle()

	// Header
	t.Header = r.NewStyle().
		Background(SurfaceDim).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.HeaderTitle = r.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.HeaderSubtitle = r.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Message bubbles
	t.UserBubble = r.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1)

	t.AssistantBubble = r.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1)

	t.SystemBubble = r.NewStyle().
		Foreground(SystemBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(SystemBubbleBorder).
		Padding(0, 1)

	t.ErrorBubble = r.NewStyle().
		Foreground(ErrorBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ErrorBubbleBorder).
		Padding(0, 1)

	t.UserLabel = r.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.AssistantLabel = r.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.Timestamp = r.NewStyle().
		Foreground(TextMuted)

	// Markdown
	t.Bold = r.NewStyle().Bold(true)
	t.Italic = r.NewStyle().Italic(true)

	t.Code = r.NewStyle().
		Foreground(CodeFg).
		Background(CodeBg)

	// ACCESSIBILITY: Underline gives links a cue beyond color
	t.Link = r.NewStyle().
		Foreground(LinkColor).
		Underline(true)

	t.LinkURL = r.NewStyle().
		Foreground(TextMuted)

	t.ListBullet = r.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.ListNumber = r.NewStyle().
		Foreground(Cyan).
		Bold(true)

	// Input
	t.InputContainer = r.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = r.NewStyle().
		Foreground(Cyan).
		Bold(true)

	// Spinner
	t.Spinner = r.NewStyle().
		Foreground(Purple)

	t.ThinkingText = r.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Status bar
	t.StatusBar = r.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.ShortcutKey = r.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = r.NewStyle().
		Foreground(TextMuted)

	// Status
	t.SuccessStyle = r.NewStyle().
		Foreground(SuccessHighContrast).
		Bold(true)

	t.ErrorStyle = r.NewStyle().
		Foreground(ErrorHighContrast).
		Bold(true)

	t.WarningStyle = r.NewStyle().
		Foreground(WarningHighContrast).
		Bold(true)

	t.MutedStyle = r.NewStyle().
		Foreground(TextMuted)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
