// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_Basic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")
	data := []byte("hello, world!")

	if err := AtomicWriteFile(path, data, 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(content) != string(data) {
		t.Errorf("Content mismatch: got %q, want %q", string(content), string(data))
	}
}

func TestAtomicWriteFile_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "deep", "test.txt")

	if err := AtomicWriteFile(path, []byte("test data"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("File not created: %v", err)
	}
}

func TestAtomicWriteFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")

	if err := AtomicWriteFile(path, []byte("initial"), 0644); err != nil {
		t.Fatalf("First write failed: %v", err)
	}
	if err := AtomicWriteFile(path, []byte("updated"), 0644); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(content) != "updated" {
		t.Errorf("Content not updated: got %q", string(content))
	}

	// No temp files left behind
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}

func TestAtomicWriteFileWithDir_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on Windows")
	}
	dir := filepath.Join(t.TempDir(), "newdir")
	path := filepath.Join(dir, "test.txt")

	if err := AtomicWriteFileWithDir(path, []byte("test"), 0600, 0700); err != nil {
		t.Fatalf("AtomicWriteFileWithDir failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("File not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file perm = %o, want 600", perm)
	}
	dirInfo, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Dir not created: %v", err)
	}
	if perm := dirInfo.Mode().Perm(); perm&0077 != 0 {
		t.Errorf("dir perm = %o, want no group/other bits", perm)
	}
}

// =============================================================================
// STRING TESTS
// =============================================================================

func TestTruncateRunes(t *testing.T) {
	testCases := []struct {
		input    string
		maxRunes int
		expected string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 8, "hello..."},
		{"hello", 3, "hel"},
		{"hello", 0, ""},
		{"日本語テキスト", 5, "日本..."},
		{"ñandú", 4, "ñ..."},
	}

	for _, tc := range testCases {
		if got := TruncateRunes(tc.input, tc.maxRunes); got != tc.expected {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tc.input, tc.maxRunes, got, tc.expected)
		}
	}
}

func TestTruncateWidth(t *testing.T) {
	testCases := []struct {
		input    string
		maxWidth int
		expected string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 8, "hello..."},
		{"日本語", 6, "日本語"},
		{"日本語", 5, "日..."},
		{"hello", 2, "he"},
		{"hello", 0, ""},
	}

	for _, tc := range testCases {
		got := TruncateWidth(tc.input, tc.maxWidth)
		if got != tc.expected {
			t.Errorf("TruncateWidth(%q, %d) = %q, want %q", tc.input, tc.maxWidth, got, tc.expected)
		}
		if w := StringWidth(got); w > tc.maxWidth {
			t.Errorf("TruncateWidth(%q, %d) width = %d", tc.input, tc.maxWidth, w)
		}
	}
}

func TestStringWidth(t *testing.T) {
	testCases := []struct {
		input    string
		expected int
	}{
		{"hello", 5},
		{"", 0},
		{"日本語", 6},
		{"こんにちは", 10},
		{"hello世界", 9},
	}

	for _, tc := range testCases {
		if got := StringWidth(tc.input); got != tc.expected {
			t.Errorf("StringWidth(%q) = %d, want %d", tc.input, got, tc.expected)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 4); got != "ab  " {
		t.Errorf("PadRight(%q, 4) = %q", "ab", got)
	}
	if got := PadRight("日本", 5); got != "日本 " {
		t.Errorf("PadRight(%q, 5) = %q", "日本", got)
	}
	if got := PadRight("toolong", 3); got != "toolong" {
		t.Errorf("PadRight(%q, 3) = %q", "toolong", got)
	}
}

func TestRuneLen(t *testing.T) {
	if got := RuneLen("日本語"); got != 3 {
		t.Errorf("RuneLen() = %d, want 3", got)
	}
	if got := RuneLen(""); got != 0 {
		t.Errorf("RuneLen(\"\") = %d, want 0", got)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"a\n\nb", "a b"},
		{"  lead and trail  ", "lead and trail"},
		{"tabs\tand\r\nCRLF", "tabs and CRLF"},
		{"", ""},
	}
	for _, tc := range testCases {
		if got := CollapseWhitespace(tc.input); got != tc.expected {
			t.Errorf("CollapseWhitespace(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}
