// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the keywordschat client.
//
// This package contains common helper functions used throughout the
// application for string truncation, value formatting, and file operations.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe string truncation with ellipsis
//   - TruncateWidth: display-width aware truncation (CJK safe)
//   - PadWidth: display-width aware right padding
//
// Value Formatting:
//   - FormatCellValue: render a loosely-typed record field for display
//   - FormatCount: thousands-separated integer formatting
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
package util
