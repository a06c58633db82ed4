// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/keywordschat/kwc-tui/internal/results"
)

func keywordEntry() *results.Entry {
	return &results.Entry{
		ID:    "res_1",
		Title: "Keyword Research Results",
		Kind:  results.KindKeywords,
		Rows: []results.Record{
			{"keyword": "seo tools", "volume": float64(12400), "difficulty": float64(61), "cpc": 1.85, "intent": "commercial"},
			{"keyword": "best seo audit", "volume": float64(880), "difficulty": float64(34), "cpc": 0.92, "intent": "informational"},
		},
	}
}

func auditEntry() *results.Entry {
	return &results.Entry{
		ID:        "res_2",
		Title:     "Technical SEO Audit",
		Kind:      results.KindTechnicalAudit,
		SourceURL: "https://example.com",
		Tabs: map[string][]results.Record{
			"Crawl Errors": {{"issue": "404", "severity": "high", "page": "/old", "detail": "broken link"}},
			"Page Speed":   {{"issue": "slow LCP", "severity": "medium", "page": "/home", "detail": "4.2s"}},
		},
	}
}

// =============================================================================
// CSV TESTS
// =============================================================================

func TestCSVExporter_FlatEntry(t *testing.T) {
	out, err := NewCSVExporter().Export(keywordEntry())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d CSV rows", len(records))
	}
	if records[0][0] != "Keyword" || records[0][1] != "Volume" {
		t.Errorf("header = %v", records[0])
	}
	// Numeric cells are ungrouped so spreadsheets parse them
	if records[1][1] != "12400" {
		t.Errorf("volume cell = %q, want 12400", records[1][1])
	}
	if records[1][3] != "1.85" {
		t.Errorf("cpc cell = %q", records[1][3])
	}
}

func TestCSVExporter_TabbedEntryHasSectionColumn(t *testing.T) {
	out, err := NewCSVExporter().Export(auditEntry())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if records[0][0] != "section" {
		t.Errorf("header = %v", records[0])
	}
	// Sections in sorted order
	if records[1][0] != "Crawl Errors" || records[2][0] != "Page Speed" {
		t.Errorf("sections = %q, %q", records[1][0], records[2][0])
	}
	if records[1][1] != "404" {
		t.Errorf("issue cell = %q", records[1][1])
	}
}

// =============================================================================
// JSON TESTS
// =============================================================================

func TestJSONExporter(t *testing.T) {
	out, err := NewJSONExporter().Export(auditEntry())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var decoded struct {
		Title     string                      `json:"title"`
		Kind      string                      `json:"kind"`
		SourceURL string                      `json:"source_url"`
		Tabs      map[string][]map[string]any `json:"tabs"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Title != "Technical SEO Audit" || decoded.Kind != "technical_audit" {
		t.Errorf("decoded = %+v", decoded)
	}
	if len(decoded.Tabs) != 2 {
		t.Errorf("tabs = %v", decoded.Tabs)
	}
}

// =============================================================================
// MARKDOWN TESTS
// =============================================================================

func TestMarkdownExporter_FlatEntry(t *testing.T) {
	out, err := NewMarkdownExporter().Export(keywordEntry())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	text := string(out)

	if !strings.HasPrefix(text, "# Keyword Research Results") {
		t.Errorf("missing title heading:\n%s", text)
	}
	if !strings.Contains(text, "| Keyword |") {
		t.Errorf("missing table header:\n%s", text)
	}
	// Numeric columns right-aligned, display values grouped
	if !strings.Contains(text, " ---: |") {
		t.Errorf("missing numeric alignment:\n%s", text)
	}
	if !strings.Contains(text, "12,400") {
		t.Errorf("missing grouped volume:\n%s", text)
	}
}

func TestMarkdownExporter_TabbedEntrySections(t *testing.T) {
	out, err := NewMarkdownExporter().Export(auditEntry())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	text := string(out)

	if !strings.Contains(text, "## Crawl Errors") || !strings.Contains(text, "## Page Speed") {
		t.Errorf("missing section headings:\n%s", text)
	}
	if !strings.Contains(text, "Source: https://example.com") {
		t.Errorf("missing source line:\n%s", text)
	}
	// Sections in sorted order
	if strings.Index(text, "## Crawl Errors") > strings.Index(text, "## Page Speed") {
		t.Error("sections out of order")
	}
}

func TestMarkdownExporter_EscapesPipes(t *testing.T) {
	entry := &results.Entry{
		Title: "Custom",
		Kind:  results.KindData,
		Rows:  []results.Record{{"note": "a|b"}},
	}
	out, _ := NewMarkdownExporter().Export(entry)
	if !strings.Contains(string(out), `a\|b`) {
		t.Errorf("pipe not escaped:\n%s", out)
	}
}

// =============================================================================
// FILE EXPORT TESTS
// =============================================================================

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	path, err := ExportToFile(keywordEntry(), NewCSVExporter(), &Options{OutputDir: dir})
	if err != nil {
		t.Fatalf("ExportToFile failed: %v", err)
	}
	if !strings.HasSuffix(path, ".csv") {
		t.Errorf("path = %q", path)
	}
	if !strings.Contains(path, "Keyword_Research_Results") {
		t.Errorf("filename not derived from title: %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("exported file missing: %v", err)
	}
}

func TestForFormat(t *testing.T) {
	for _, format := range []string{"csv", "json", "md", "markdown"} {
		if _, err := ForFormat(format); err != nil {
			t.Errorf("ForFormat(%q) failed: %v", format, err)
		}
	}
	if _, err := ForFormat("xlsx"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Keyword Research Results", "Keyword_Research_Results"},
		{"a/b:c", "a-b-c"},
		{"", "result"},
	}
	for _, tc := range tests {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
