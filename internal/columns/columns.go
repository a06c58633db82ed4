// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package columns is the column-layout policy for result tables.
package columns

import (
	"sort"
	"strings"

	"github.com/keywordschat/kwc-tui/internal/results"
)

// =============================================================================
// COLUMN TYPE
// =============================================================================

// Column describes one table column.
type Column struct {
	// FieldID is the record field the column reads.
	FieldID string

	// Label is the display header.
	Label string

	// Numeric columns are right-aligned and formatted with digit grouping.
	Numeric bool

	// Sortable columns can be clicked/cycled for sorting by the renderer.
	Sortable bool
}

// =============================================================================
// LAYOUT RULES
// =============================================================================

// layoutRule maps a title predicate to a fixed column layout.
type layoutRule struct {
	matches func(title string) bool
	columns []Column
}

// layoutRules is evaluated in priority order; the first match wins.
// The fallback (columns synthesized from a sample record) applies when no
// rule matches.
var layoutRules = []layoutRule{
	{
		matches: titleHasPrefix("Keyword Research Results"),
		columns: []Column{
			{FieldID: "keyword", Label: "Keyword", Sortable: true},
			{FieldID: "volume", Label: "Volume", Numeric: true, Sortable: true},
			{FieldID: "difficulty", Label: "Difficulty", Numeric: true, Sortable: true},
			{FieldID: "cpc", Label: "CPC", Numeric: true, Sortable: true},
			{FieldID: "intent", Label: "Intent"},
		},
	},
	{
		matches: titleHasPrefix("Ranking Report"),
		columns: []Column{
			{FieldID: "keyword", Label: "Keyword", Sortable: true},
			{FieldID: "position", Label: "Position", Numeric: true, Sortable: true},
			{FieldID: "change", Label: "Change", Numeric: true, Sortable: true},
			{FieldID: "url", Label: "URL"},
		},
	},
	{
		matches: titleContainsAny("Technical SEO", "Audit"),
		columns: []Column{
			{FieldID: "issue", Label: "Issue", Sortable: true},
			{FieldID: "severity", Label: "Severity", Sortable: true},
			{FieldID: "page", Label: "Page"},
			{FieldID: "detail", Label: "Detail"},
		},
	},
}

func titleHasPrefix(prefix string) func(string) bool {
	return func(title string) bool { return strings.HasPrefix(title, prefix) }
}

func titleContainsAny(subs ...string) func(string) bool {
	return func(title string) bool {
		for _, sub := range subs {
			if strings.Contains(title, sub) {
				return true
			}
		}
		return false
	}
}

// =============================================================================
// PUBLIC API
// =============================================================================

// ForTitle returns the fixed layout for a recognized title, or ok=false.
func ForTitle(title string) ([]Column, bool) {
	for _, rule := range layoutRules {
		if rule.matches(title) {
			return rule.columns, true
		}
	}
	return nil, false
}

// ForRecord synthesizes a layout from a sample record: one column per field,
// in sorted field order so the result is deterministic. Numeric flags are
// inferred from the sample value's type.
func ForRecord(sample results.Record) []Column {
	if len(sample) == 0 {
		return nil
	}

	fields := make([]string, 0, len(sample))
	for field := range sample {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	cols := make([]Column, 0, len(fields))
	for _, field := range fields {
		cols = append(cols, Column{
			FieldID:  field,
			Label:    Humanize(field),
			Numeric:  isNumeric(sample[field]),
			Sortable: true,
		})
	}
	return cols
}

// Layout resolves the column layout for a result: the fixed layout for a
// recognized title, otherwise columns synthesized from the sample record.
func Layout(title string, sample results.Record) []Column {
	if cols, ok := ForTitle(title); ok {
		return cols
	}
	return ForRecord(sample)
}

// Humanize turns a snake_case field ID into a display label:
// "search_volume" -> "Search Volume".
func Humanize(fieldID string) string {
	words := strings.Split(fieldID, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		// Common SEO initialisms stay fully capitalized.
		switch word {
		case "url", "cpc", "seo", "id":
			words[i] = strings.ToUpper(word)
		default:
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

// isNumeric reports whether a sample value is a number.
// JSON-decoded records carry float64 for all numbers.
func isNumeric(v any) bool {
	switch v.(type) {
	case int, int32, int64, float32, float64:
		return true
	default:
		return false
	}
}
