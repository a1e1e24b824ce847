// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// =============================================================================
// SPINNER CONFIGURATIONS
// =============================================================================

// SpinnerConfig holds the configuration for a spinner animation.
type SpinnerConfig struct {
	Frames   []string
	Interval time.Duration
}

// DotsSpinner - Classic three-dot animation, used for the typing indicator
var DotsSpinner = SpinnerConfig{
	Frames:   []string{".  ", ".. ", "...", " ..", "  .", "   "},
	Interval: 150 * time.Millisecond,
}

// LineSpinner - Simple line rotation
var LineSpinner = SpinnerConfig{
	Frames:   []string{"|", "/", "-", "\\"},
	Interval: 100 * time.Millisecond,
}

// Duration returns the total duration of one animation cycle.
func (s SpinnerConfig) Duration() time.Duration {
	return s.Interval * time.Duration(len(s.Frames))
}

// Spinner converts the configuration to a bubbles spinner.
func (s SpinnerConfig) Spinner() spinner.Spinner {
	return spinner.Spinner{Frames: s.Frames, FPS: s.Interval}
}
