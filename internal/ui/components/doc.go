// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the keywordschat
// TUI: the result table, the panel tab bars, the bottom status bar, and the
// streaming spinner.
//
// # Key Types
//
//   - Table: width-aware table renderer for result rows
//   - TabBar: top-level and sub-tab bars for the results panel
//   - StatusBar: bottom status bar with site, auth, and activity state
//   - Spinner: streaming/thinking indicator built on bubbles spinner
//
// # Usage
//
//	table := components.NewTable(theme)
//	table.SetColumns(columns.Layout(entry.Title, sample))
//	table.SetRows(entry.Rows)
//	view := table.View()
//
// Components render strings; state transitions stay in the owning model.
package components
