// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"strings"

	"github.com/keywordschat/kwc-tui/internal/columns"
	"github.com/keywordschat/kwc-tui/internal/results"
	"github.com/keywordschat/kwc-tui/internal/util"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter renders a result entry as a Markdown document with one
// table per section.
type MarkdownExporter struct{}

// NewMarkdownExporter creates a Markdown exporter.
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{}
}

// FileExtension returns ".md".
func (e *MarkdownExporter) FileExtension() string { return ".md" }

// MimeType returns the Markdown MIME type.
func (e *MarkdownExporter) MimeType() string { return "text/markdown" }

// Export implements Exporter.
func (e *MarkdownExporter) Export(entry *results.Entry) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString("# " + entry.Title + "\n\n")
	if entry.SourceURL != "" {
		sb.WriteString("Source: " + entry.SourceURL + "\n\n")
	}

	cols := entryColumns(entry)
	if entry.IsTabbed() {
		for _, section := range entry.TabLabels() {
			sb.WriteString("## " + section + "\n\n")
			writeTable(&sb, cols, entry.Tabs[section])
			sb.WriteString("\n")
		}
	} else {
		writeTable(&sb, cols, entry.Rows)
	}

	return []byte(sb.String()), nil
}

// writeTable writes a Markdown table for the given rows. Pipes in cell
// values are escaped so they can't break the table structure.
func writeTable(sb *strings.Builder, cols []columns.Column, rows []results.Record) {
	if len(rows) == 0 {
		sb.WriteString("_No rows._\n")
		return
	}

	sb.WriteString("|")
	for _, col := range cols {
		sb.WriteString(" " + col.Label + " |")
	}
	sb.WriteString("\n|")
	for _, col := range cols {
		if col.Numeric {
			sb.WriteString(" ---: |")
		} else {
			sb.WriteString(" --- |")
		}
	}
	sb.WriteString("\n")

	for _, row := range rows {
		sb.WriteString("|")
		for _, col := range cols {
			cell := util.FormatCellValue(row[col.FieldID])
			cell = strings.ReplaceAll(cell, "|", "\\|")
			sb.WriteString(" " + cell + " |")
		}
		sb.WriteString("\n")
	}
}
