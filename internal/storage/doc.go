// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides conversation persistence for chatline.
//
// Conversations are stored in a single SQLite database (pure Go driver,
// no cgo) so a chat thread can be resumed later with its backend thread ID.
// Only raw message text is stored; rendering always happens on load.
//
// # Key Types
//
//   - Store: SQLite-backed conversation store
//
// # Usage
//
//	store, err := storage.Open(path)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	err = store.Save(ctx, conv)
//	metas, err := store.List(ctx, 20)
//	conv, err := store.Load(ctx, metas[0].ID)
package storage
