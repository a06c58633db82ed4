// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the main chat view for the keywordschat TUI.
//
// The chat Model owns the application state: the active conversation, the
// results store behind the panel, the API client, and the persistence
// layers. Slash commands are parsed by the commands package and come back
// as typed messages that Update applies.
//
// # Key Types
//
//   - Model: the root Bubble Tea model
//   - KeyMap: chat-level keyboard bindings
//
// # Streaming
//
// Responses stream over SSE in a goroutine. Chunks cross into the Bubble
// Tea loop through a channel and a listen command, so all state mutation
// stays on the Update goroutine. Result payloads ride the same chunks and
// are dispatched into the results store as they arrive.
package chat
