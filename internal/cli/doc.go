// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the plain-terminal REPL used when the TUI is
// disabled (--no-tui) or stdout is not a terminal.
//
// The REPL shares the slash command layer with the TUI: input goes
// through commands.Execute and the resulting messages are applied to the
// same conversation and results stores, just rendered as plain text
// instead of panels.
package cli
