// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package results owns the accumulated result sets of one conversation.
package results

import (
	"sort"
	"time"
)

// =============================================================================
// RECORD TYPE
// =============================================================================

// Record is one loosely-typed row of a result set.
//
// Fields are not guaranteed present across rows of the same result set.
// Consumers (column policy, rendering, export) must treat a missing field
// as an explicit "absent" case, never assume a uniform shape.
type Record map[string]any

// =============================================================================
// KIND TYPE
// =============================================================================

// Kind tags the shape of a result entry.
type Kind string

const (
	KindData           Kind = "data"            // Generic table, the default
	KindKeywords       Kind = "keywords"        // Keyword research result
	KindRankings       Kind = "rankings"        // Ranking report
	KindTechnicalAudit Kind = "technical_audit" // Multi-section site audit
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// =============================================================================
// ENTRY TYPE
// =============================================================================

// Entry is one accumulated result set within a conversation.
//
// An entry carries either non-empty Rows or non-empty Tabs, never both:
// flat results fill Rows, tabbed (audit-style) results fill Tabs and leave
// Rows empty. Entries are never mutated after insertion and are destroyed
// only by Store.Reset or store teardown; there is no per-entry deletion.
type Entry struct {
	// ID is unique for the lifetime of the store and never reused.
	// IDs are time-derived and monotonic, so they sort in insertion order.
	ID string

	// Title is the human-readable label supplied by the caller.
	Title string

	// Kind distinguishes result shapes. Defaults to KindData.
	Kind Kind

	// Rows holds the flat result rows. Empty for tabbed entries.
	Rows []Record

	// Tabs maps sub-label to rows for entries that contain multiple named
	// sub-tables (technical audits). Nil for flat entries. Sub-tab content
	// is renderer metadata: it is not flattened into the derived tab view.
	Tabs map[string][]Record

	// SourceURL is the audited URL. Set only for tabbed entries.
	SourceURL string

	// Metadata is opaque caller data. Unused by tab derivation.
	Metadata map[string]any

	// CreatedAt is the insertion timestamp.
	CreatedAt time.Time
}

// IsTabbed returns true if the entry carries named sub-tables.
func (e *Entry) IsTabbed() bool {
	return len(e.Tabs) > 0
}

// TabLabels returns the entry's sub-tab labels in sorted order.
// Map iteration order is not stable, so the renderer needs a fixed order.
func (e *Entry) TabLabels() []string {
	if len(e.Tabs) == 0 {
		return nil
	}
	labels := make([]string, 0, len(e.Tabs))
	for label := range e.Tabs {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// RowCount returns the number of rows, counting sub-table rows for tabbed
// entries.
func (e *Entry) RowCount() int {
	if e.IsTabbed() {
		total := 0
		for _, rows := range e.Tabs {
			total += len(rows)
		}
		return total
	}
	return len(e.Rows)
}
