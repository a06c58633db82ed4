// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package results owns the accumulated result sets of one conversation.
package results

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// =============================================================================
// LABEL POLICY
// =============================================================================

// maxVerbatimLabel is the longest title used verbatim as a tab label.
// Longer titles are cut to truncatedLabelLen runes plus an ellipsis.
const (
	maxVerbatimLabel  = 30
	truncatedLabelLen = 27
)

// labelRule maps a title predicate to a fixed tab label.
type labelRule struct {
	matches func(title string) bool
	label   string
}

// labelRules is the base-label policy, evaluated in priority order: the
// first matching rule wins. Kept as data so the precedence is an explicit
// contract rather than accidental clause ordering.
var labelRules = []labelRule{
	{hasPrefix("Keyword Research Results"), "Keywords"},
	{hasPrefix("Ranking Report"), "Rankings"},
	{hasPrefix("Technical SEO"), "Tech SEO"},
	{contains("Audit"), "Audit"},
}

func hasPrefix(prefix string) func(string) bool {
	return func(title string) bool { return strings.HasPrefix(title, prefix) }
}

func contains(sub string) func(string) bool {
	return func(title string) bool { return strings.Contains(title, sub) }
}

// BaseLabel derives the tab label for a title, before disambiguation.
//
// Titles matching a policy rule get that rule's fixed label. Unmatched
// titles are used verbatim, truncated to 27 runes plus "..." when longer
// than 30 runes.
func BaseLabel(title string) string {
	for _, rule := range labelRules {
		if rule.matches(title) {
			return rule.label
		}
	}
	if utf8.RuneCountInString(title) > maxVerbatimLabel {
		return string([]rune(title)[:truncatedLabelLen]) + "..."
	}
	return title
}

// deriveLabels computes the final label for every entry, in order.
//
// A final label equals the entry's base label unless that base label occurs
// more than once across the whole entry set, in which case " #<n>" is
// appended, where n is the entry's 1-based occurrence index for that base
// label in insertion order.
func deriveLabels(entries []*Entry) []string {
	totals := make(map[string]int, len(entries))
	for _, e := range entries {
		totals[BaseLabel(e.Title)]++
	}

	labels := make([]string, len(entries))
	running := make(map[string]int, len(totals))
	for i, e := range entries {
		base := BaseLabel(e.Title)
		running[base]++
		if totals[base] > 1 {
			labels[i] = base + " #" + strconv.Itoa(running[base])
		} else {
			labels[i] = base
		}
	}
	return labels
}
