// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// asciiRenderer returns a renderer that emits no escape sequences.
func asciiRenderer() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	return r
}

// =============================================================================
// THEME MODE TESTS
// =============================================================================

func TestParseThemeMode(t *testing.T) {
	tests := []struct {
		input   string
		want    ThemeMode
		wantErr bool
	}{
		{"", ThemeAuto, false},
		{"auto", ThemeAuto, false},
		{"Dark", ThemeDark, false},
		{" light ", ThemeLight, false},
		{"solarized", ThemeAuto, true},
	}
	for _, tc := range tests {
		got, err := ParseThemeMode(tc.input)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseThemeMode(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
		}
		if got != tc.want {
			t.Errorf("ParseThemeMode(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

// =============================================================================
// THEME CREATION TESTS
// =============================================================================

func TestNewThemeWithRenderer_ForcedModes(t *testing.T) {
	dark := NewThemeWithRenderer(ThemeDark, asciiRenderer())
	if !dark.IsDark || dark.Mode != ThemeDark {
		t.Errorf("dark theme: IsDark=%v Mode=%q", dark.IsDark, dark.Mode)
	}

	light := NewThemeWithRenderer(ThemeLight, asciiRenderer())
	if light.IsDark || light.Mode != ThemeLight {
		t.Errorf("light theme: IsDark=%v Mode=%q", light.IsDark, light.Mode)
	}

	unknown := NewThemeWithRenderer(ThemeMode("neon"), asciiRenderer())
	if unknown.Mode != ThemeAuto {
		t.Errorf("unknown mode should fall back to auto, got %q", unknown.Mode)
	}
}

func TestTheme_AsciiProfilePlainText(t *testing.T) {
	theme := NewThemeWithRenderer(ThemeDark, asciiRenderer())

	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Bold", theme.Bold},
		{"Italic", theme.Italic},
		{"Code", theme.Code},
		{"Link", theme.Link},
		{"ListBullet", theme.ListBullet},
		{"ListNumber", theme.ListNumber},
	}
	for _, s := range styles {
		if got := s.style.Render("x"); got != "x" {
			t.Errorf("%s.Render(\"x\") = %q with ascii profile, want \"x\"", s.name, got)
		}
	}
}

func TestTheme_BubblesHaveBorders(t *testing.T) {
	theme := NewThemeWithRenderer(ThemeDark, asciiRenderer())
	out := theme.UserBubble.Render("hi")
	if lines := strings.Split(out, "\n"); len(lines) != 3 {
		t.Errorf("UserBubble should render 3 lines (border, text, border), got %d: %q", len(lines), out)
	}
	if !strings.Contains(out, "hi") {
		t.Errorf("UserBubble lost content: %q", out)
	}
}

func TestTheme_GetLayoutMode(t *testing.T) {
	theme := NewThemeWithRenderer(ThemeAuto, asciiRenderer())
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{80, LayoutMedium},
		{120, LayoutWide},
	}
	for _, tc := range tests {
		theme.SetSize(tc.width, 24)
		if got := theme.GetLayoutMode(); got != tc.want {
			t.Errorf("width %d: GetLayoutMode() = %d, want %d", tc.width, got, tc.want)
		}
	}
}

// =============================================================================
// STATUS AND SPINNER TESTS
// =============================================================================

func TestRenderStatusIndicators(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"success", RenderSuccess("saved"), "[OK] saved"},
		{"error", RenderError("failed"), "[X] failed"},
		{"warning", RenderWarning("careful"), "[!] careful"},
		{"info", RenderInfo("note"), "[i] note"},
	}
	for _, tc := range tests {
		if !strings.Contains(tc.got, tc.want) {
			t.Errorf("%s: %q does not contain %q", tc.name, tc.got, tc.want)
		}
	}
}

func TestSpinnerConfig(t *testing.T) {
	s := DotsSpinner.Spinner()
	if len(s.Frames) != len(DotsSpinner.Frames) || s.FPS != DotsSpinner.Interval {
		t.Errorf("Spinner() = %+v", s)
	}
	if got := LineSpinner.Duration(); got != 400*time.Millisecond {
		t.Errorf("LineSpinner.Duration() = %v, want 400ms", got)
	}
}
