// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes result entries to CSV, JSON, and Markdown files.
//
// Column order follows the same layout rules the results panel uses, so
// an exported keyword table reads the same as the on-screen one. Tabbed
// entries (technical audits) export each section in turn: CSV adds a
// leading section column, Markdown renders one table per section.
//
// # Usage
//
//	path, err := export.ExportToFile(entry, export.NewCSVExporter(), nil)
package export
