// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package archive keeps a local SQLite archive of result entries across
// conversations.
//
// The panel only shows results from the current conversation; the archive
// lets users pull up an old keyword table or audit without reloading the
// conversation that produced it. Entries are stored with their rows and
// tabs serialized as JSON, searchable by title.
//
// # Key Types
//
//   - Archive: the SQLite-backed store
//   - ArchivedEntry: listing metadata for an archived result
//
// # Usage
//
//	arc, _ := archive.Open(path, 500)
//	defer arc.Close()
//	_ = arc.SaveEntry(ctx, convID, entry)
package archive
