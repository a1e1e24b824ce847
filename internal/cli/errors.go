// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error handling and exit codes for CLI commands.
//
// STANDARDIZED PATTERN:
//   - Commands return errors; they never print and return nil
//   - main prints "Error: ..." to stderr and exits with ExitCode(err)
//   - Invalid invocations are *UsageError (exit 2)

package cli

import (
	"errors"
	"fmt"

	"github.com/jeranaias/chatline/internal/storage"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError reports an invalid command line.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

func usageErrorf(format string, a ...any) error {
	return &UsageError{Message: fmt.Sprintf(format, a...)}
}

// ErrExchangeFailed is returned by ask when the backend exchange failed
// and the fallback message was printed instead of a reply.
var ErrExchangeFailed = errors.New("exchange failed")

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}
	return ExitGeneralError
}

// sessionError gives storage lookups a message that names the ID.
func sessionError(id string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("no session matches %q: %w", id, err)
	case errors.Is(err, storage.ErrAmbiguousID):
		return fmt.Errorf("%q matches several sessions, use more characters: %w", id, err)
	}
	return err
}
