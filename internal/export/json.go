// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"

	"github.com/keywordschat/kwc-tui/internal/results"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter renders a result entry as pretty-printed JSON.
type JSONExporter struct{}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// FileExtension returns ".json".
func (e *JSONExporter) FileExtension() string { return ".json" }

// MimeType returns the JSON MIME type.
func (e *JSONExporter) MimeType() string { return "application/json" }

// jsonEntry is the exported JSON shape.
type jsonEntry struct {
	Title     string                      `json:"title"`
	Kind      string                      `json:"kind"`
	SourceURL string                      `json:"source_url,omitempty"`
	Rows      []results.Record            `json:"rows,omitempty"`
	Tabs      map[string][]results.Record `json:"tabs,omitempty"`
}

// Export implements Exporter.
func (e *JSONExporter) Export(entry *results.Entry) ([]byte, error) {
	return json.MarshalIndent(jsonEntry{
		Title:     entry.Title,
		Kind:      string(entry.Kind),
		SourceURL: entry.SourceURL,
		Rows:      entry.Rows,
		Tabs:      entry.Tabs,
	}, "", "  ")
}
