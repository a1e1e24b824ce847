// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce collapses the burst of events editors produce on save.
const watchDebounce = 200 * time.Millisecond

// Watch reloads the config file at path whenever it changes and passes the
// result to onChange. A failed reload is reported with a nil config so the
// caller can keep the previous one.
//
// The parent directory is watched rather than the file itself, so atomic
// saves (write to temp, rename over) are seen. Watch returns after the
// watcher is set up; it stops when ctx is cancelled.
func Watch(ctx context.Context, path string, onChange func(*Config, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	go watchLoop(ctx, watcher, abs, onChange)
	return nil
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string, onChange func(*Config, error)) {
	defer watcher.Close()

	// Timer starts stopped; it is armed by the first relevant event.
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(watchDebounce)

		case <-timer.C:
			cfg, err := LoadFromPath(path)
			if err != nil {
				onChange(nil, err)
				continue
			}
			onChange(cfg, nil)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			onChange(nil, fmt.Errorf("watch error: %w", err))
		}
	}
}
