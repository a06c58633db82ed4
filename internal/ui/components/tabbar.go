// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/keywordschat/kwc-tui/internal/ui/styles"
	"github.com/keywordschat/kwc-tui/internal/util"
)

// =============================================================================
// TAB BAR COMPONENT
// =============================================================================

// maxTabWidth caps a single tab label so one long title cannot push the
// rest of the bar off screen. Labels are already capped upstream but the
// " #n" suffix can extend them.
const maxTabWidth = 32

// TabBar renders a horizontal row of tab labels with one active. The same
// component serves the panel's top-level result tabs and the audit
// sub-tabs; the Sub flag switches the style pair.
type TabBar struct {
	theme  *styles.Theme
	labels []string
	active int
	width  int

	// Sub renders with the sub-tab styles (underline instead of fill).
	Sub bool
}

// NewTabBar creates a top-level tab bar.
func NewTabBar(theme *styles.Theme) *TabBar {
	return &TabBar{theme: theme, width: 80}
}

// NewSubTabBar creates a sub-tab bar for audit sections.
func NewSubTabBar(theme *styles.Theme) *TabBar {
	return &TabBar{theme: theme, width: 80, Sub: true}
}

// SetLabels replaces the labels and clamps the active index.
func (b *TabBar) SetLabels(labels []string) {
	b.labels = labels
	if b.active >= len(labels) {
		b.active = 0
	}
}

// SetWidth updates the available render width.
func (b *TabBar) SetWidth(width int) {
	b.width = width
}

// Labels returns the current labels.
func (b *TabBar) Labels() []string {
	return b.labels
}

// Active returns the active tab index.
func (b *TabBar) Active() int {
	return b.active
}

// ActiveLabel returns the active tab's label, or "" when empty.
func (b *TabBar) ActiveLabel() string {
	if b.active < 0 || b.active >= len(b.labels) {
		return ""
	}
	return b.labels[b.active]
}

// Select jumps to a tab by index. Out-of-range indexes are ignored.
func (b *TabBar) Select(index int) {
	if index < 0 || index >= len(b.labels) {
		return
	}
	b.active = index
}

// Next cycles forward, wrapping at the end.
func (b *TabBar) Next() {
	if len(b.labels) == 0 {
		return
	}
	b.active = (b.active + 1) % len(b.labels)
}

// Prev cycles backward, wrapping at the start.
func (b *TabBar) Prev() {
	if len(b.labels) == 0 {
		return
	}
	b.active = (b.active - 1 + len(b.labels)) % len(b.labels)
}

// View renders the bar. Returns "" when there are no labels.
func (b *TabBar) View() string {
	if len(b.labels) == 0 {
		return ""
	}

	activeStyle := b.theme.TabActive
	inactiveStyle := b.theme.TabInactive
	if b.Sub {
		activeStyle = b.theme.SubTabActive
		inactiveStyle = b.theme.SubTabInactive
	}

	parts := make([]string, 0, len(b.labels))
	for i, label := range b.labels {
		label = util.TruncateWidth(label, maxTabWidth)
		if i == b.active {
			parts = append(parts, activeStyle.Render(label))
		} else {
			parts = append(parts, inactiveStyle.Render(label))
		}
	}

	bar := strings.Join(parts, " ")
	if lipgloss.Width(bar) > b.width {
		bar = b.viewScrolled(parts)
	}
	return bar
}

// viewScrolled keeps the active tab visible when the full bar does not fit:
// drop leading tabs until it does, marking the cut with an ellipsis.
func (b *TabBar) viewScrolled(parts []string) string {
	start := 0
	for start < b.active {
		joined := strings.Join(parts[start:], " ")
		if lipgloss.Width(joined)+2 <= b.width {
			break
		}
		start++
	}
	bar := strings.Join(parts[start:], " ")
	if start > 0 {
		bar = b.theme.MutedText.Render("< ") + bar
	}
	return bar
}
