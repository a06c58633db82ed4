// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package panel renders the results panel: the tabbed view over the
// conversation's accumulated result sets.
//
// # Key Types
//
//   - Model: Bubble Tea model over a results.Store
//   - KeyMap: panel-scoped keyboard bindings
//
// # Usage
//
//	p := panel.New(store, theme)
//	p.SetSize(width, height)
//	view := p.View()
//
// The panel derives everything it shows from the store on Sync: tab labels,
// the flat view for a single entry, and the open/minimized flags. It never
// mutates the store except through the store's own visibility operations.
package panel
