// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the chat message-exchange
// endpoint.
//
// The backend exposes a single operation: POST {base}/api/chat with a JSON
// body of {"message": "...", "threadId": "..." | null}. The reply carries the
// assistant text in "response" (or "message") and the thread ID assigned by
// the backend in "threadId".
//
// # Key Types
//
//   - Client: HTTP client with retries, backoff and client-side rate limiting
//   - Reply: decoded backend reply
//   - Exchanger: turns one user input into a conversation update, substituting
//     a fixed fallback message when anything goes wrong
//
// # Usage
//
//	client := backend.NewClient(cfg.Backend.URL).
//		WithTimeout(30 * time.Second).
//		WithMaxRetries(2)
//
//	ex := backend.NewExchanger(client)
//	outcome, err := ex.Exchange(ctx, conv, "Hello")
//	if err != nil {
//		// input was blank; nothing was sent
//	}
//	if outcome.Failed() {
//		// conv now ends with the fallback message
//	}
package backend
