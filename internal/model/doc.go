// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types used throughout the application
// for representing a chat thread with a remote assistant.
//
// # Key Types
//
//   - Conversation: A chat thread with its messages and backend thread ID
//   - Message: Single message with role, raw content and timestamp
//   - Role: Message role enumeration (user, assistant, system)
//
// Message content is stored raw. Message.Document parses it with the
// markdown package each time it is needed; parsed trees are never stored.
//
// # Usage
//
//	conv := model.NewConversation(model.DefaultGreeting)
//	conv.AddUserMessage("Hello!")
//	conv.SetThreadID(reply.ThreadID)
//	conv.AddAssistantMessage(reply.Text())
//
// A Conversation is not safe for concurrent mutation. The TUI only modifies
// it from its Update loop.
package model
