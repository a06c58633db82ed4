// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types used throughout the client for
// representing a chat session with the keywordschat assistant.
//
// # Key Types
//
//   - Conversation: container for a chat session with messages and metadata
//   - Message: single message with role, content, and timestamp
//   - Role: message role enumeration (user, assistant, system)
//
// # Usage
//
// Create a new conversation and add messages:
//
//	conv := model.NewConversation()
//	conv.AddUserMessage("find keywords for my bakery site")
//
// Stream an assistant reply:
//
//	msg := conv.AddAssistantMessage()
//	conv.AppendToLast(token)
//	conv.FinalizeLast()
package model
