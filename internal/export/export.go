// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes result entries to CSV, JSON, and Markdown files.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/keywordschat/kwc-tui/internal/columns"
	"github.com/keywordschat/kwc-tui/internal/results"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a result entry to a target format.
type Exporter interface {
	// Export renders the entry and returns the file content.
	Export(entry *results.Entry) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g. ".csv").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// Options configures export behavior.
type Options struct {
	// OutputDir is where files are written. Default: current directory.
	OutputDir string
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{OutputDir: "."}
}

// ForFormat returns the exporter for a format name ("csv", "json", "md").
func ForFormat(format string) (Exporter, error) {
	switch format {
	case "csv":
		return NewCSVExporter(), nil
	case "json":
		return NewJSONExporter(), nil
	case "md", "markdown":
		return NewMarkdownExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// =============================================================================
// FILE EXPORT
// =============================================================================

// ExportToFile renders an entry and writes it next to a timestamped
// filename derived from its title. Returns the output path.
func ExportToFile(entry *results.Entry, exporter Exporter, opts *Options) (string, error) {
	if entry == nil {
		return "", errors.New("no result entry to export")
	}
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(entry)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s%s",
		sanitizeFilename(entry.Title), timestamp, exporter.FileExtension())

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	outputPath := filepath.Join(opts.OutputDir, filename)
	if err := os.WriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return outputPath, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// entryColumns returns the column layout for an entry, sampling the first
// row of the first section for tabbed entries.
func entryColumns(entry *results.Entry) []columns.Column {
	var sample results.Record
	if entry.IsTabbed() {
		for _, name := range entry.TabLabels() {
			if rows := entry.Tabs[name]; len(rows) > 0 {
				sample = rows[0]
				break
			}
		}
	} else if len(entry.Rows) > 0 {
		sample = entry.Rows[0]
	}
	return columns.Layout(entry.Title, sample)
}

// sanitizeFilename replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	maxLen := 50
	runes := []rune(s)
	if len(runes) > maxLen {
		runes = runes[:maxLen]
	}

	result := make([]rune, 0, len(runes))
	for _, r := range runes {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' ||
			r == '"' || r == '<' || r == '>' || r == '|':
			result = append(result, '-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			result = append(result, '_')
		case r < 32 || r == 127:
			result = append(result, '-')
		default:
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return "result"
	}
	return string(result)
}
