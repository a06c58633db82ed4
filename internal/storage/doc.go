// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversations as JSON files, one per
// conversation, under the history directory.
//
// Each file holds the full transcript plus the structured results the
// assistant produced, so loading a conversation restores both the chat
// view and the results panel. Writes are atomic (temp file, fsync,
// rename) so a crash never leaves a truncated history file.
//
// # Key Types
//
//   - Store: the file-backed conversation store
//   - StoredConversation / StoredMessage / StoredResult: the JSON schema
//   - ConversationMeta: lightweight listing metadata
package storage
