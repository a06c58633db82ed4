// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the TUI.
//
// Input starting with "/" is parsed into a command and arguments (quoted
// arguments supported) and dispatched through the Registry. Handlers
// return bubbletea commands that emit typed messages; the chat model
// applies them to application state.
//
// # Key Types
//
//   - Registry: command lookup by name or alias
//   - Parser: splits input into command and arguments
//   - Context: dependencies handlers may use (history store, archive)
package commands
