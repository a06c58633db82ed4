// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"encoding/csv"

	"github.com/keywordschat/kwc-tui/internal/results"
	"github.com/keywordschat/kwc-tui/internal/util"
)

// =============================================================================
// CSV EXPORTER
// =============================================================================

// CSVExporter renders a result entry as CSV. Numeric cells are written
// without digit grouping so spreadsheets parse them as numbers. Tabbed
// entries get a leading "section" column.
type CSVExporter struct{}

// NewCSVExporter creates a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// FileExtension returns ".csv".
func (e *CSVExporter) FileExtension() string { return ".csv" }

// MimeType returns the CSV MIME type.
func (e *CSVExporter) MimeType() string { return "text/csv" }

// Export implements Exporter.
func (e *CSVExporter) Export(entry *results.Entry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	cols := entryColumns(entry)

	header := make([]string, 0, len(cols)+1)
	if entry.IsTabbed() {
		header = append(header, "section")
	}
	for _, col := range cols {
		header = append(header, col.Label)
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	writeRow := func(section string, row results.Record) error {
		record := make([]string, 0, len(cols)+1)
		if entry.IsTabbed() {
			record = append(record, section)
		}
		for _, col := range cols {
			v := row[col.FieldID]
			if col.Numeric {
				record = append(record, util.FormatNumericValue(v))
			} else {
				record = append(record, util.FormatCellValue(v))
			}
		}
		return w.Write(record)
	}

	if entry.IsTabbed() {
		for _, section := range entry.TabLabels() {
			for _, row := range entry.Tabs[section] {
				if err := writeRow(section, row); err != nil {
					return nil, err
				}
			}
		}
	} else {
		for _, row := range entry.Rows {
			if err := writeRow("", row); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
