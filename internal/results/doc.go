// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package results owns the accumulated result sets of one conversation and
// derives the tab layout the data panel renders.
//
// Every structured payload the assistant returns (keyword research, ranking
// reports, technical audits, arbitrary tables) becomes one Entry. Entries
// are immutable after insertion, ordered by insertion time, and live until
// the conversation is reset. After every mutation the store re-derives a
// label -> rows tab mapping and synchronously notifies subscribers.
//
// # Key Types
//
//   - Store: the conversation result store
//   - Entry: one accumulated result set (flat rows or named sub-tables)
//   - Record: one loosely-typed row (field name -> value, fields optional)
//
// # Usage
//
// Accumulate results and observe changes:
//
//	store := results.NewStore()
//	unsubscribe := store.Subscribe(func() { redraw() })
//	defer unsubscribe()
//
//	store.AddFlatResult(rows, "Keyword Research Results for example.com", results.KindKeywords, nil)
//
//	for _, label := range store.Labels() {
//	    render(label, store.Tabs()[label])
//	}
//
// The store is designed for a single-threaded, event-driven host: every
// operation runs to completion and notifies before the next event is
// processed. It never returns an error.
package results
