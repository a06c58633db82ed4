// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/keywordschat/kwc-tui/internal/columns"
	"github.com/keywordschat/kwc-tui/internal/results"
	"github.com/keywordschat/kwc-tui/internal/ui/styles"
	"github.com/keywordschat/kwc-tui/internal/util"
)

// =============================================================================
// TABLE COMPONENT
// =============================================================================

const (
	// DefaultMaxRows caps rendered rows when the owner does not set one.
	DefaultMaxRows = 200

	// columnGap is the padding between columns.
	columnGap = 2

	// minColumnWidth keeps narrow terminals from collapsing columns entirely.
	minColumnWidth = 4

	// maxColumnWidth caps any single column so one long cell cannot starve
	// the rest of the row.
	maxColumnWidth = 40
)

// Table renders result rows under a column layout. Column widths are
// content-derived and measured in display cells, not bytes, so CJK titles
// and URLs line up.
type Table struct {
	theme    *styles.Theme
	cols     []columns.Column
	rows     []results.Record
	width    int
	maxRows  int
	selected int
}

// NewTable creates a table with default sizing.
func NewTable(theme *styles.Theme) *Table {
	return &Table{
		theme:    theme,
		width:    80,
		maxRows:  DefaultMaxRows,
		selected: -1,
	}
}

// SetColumns replaces the column layout.
func (t *Table) SetColumns(cols []columns.Column) {
	t.cols = cols
}

// SetRows replaces the row data and clears the selection if it no longer
// points at a row.
func (t *Table) SetRows(rows []results.Record) {
	t.rows = rows
	if t.selected >= len(rows) {
		t.selected = -1
	}
}

// SetWidth updates the available render width.
func (t *Table) SetWidth(width int) {
	t.width = width
}

// SetMaxRows caps the number of rows rendered.
func (t *Table) SetMaxRows(n int) {
	if n > 0 {
		t.maxRows = n
	}
}

// Select moves the row highlight. Pass -1 to clear.
func (t *Table) Select(index int) {
	if index < -1 || index >= len(t.rows) {
		return
	}
	t.selected = index
}

// Selected returns the highlighted row index, or -1.
func (t *Table) Selected() int {
	return t.selected
}

// MoveSelection shifts the highlight by delta, clamped to the rendered rows.
func (t *Table) MoveSelection(delta int) {
	if len(t.rows) == 0 {
		return
	}
	next := t.selected + delta
	if next < 0 {
		next = 0
	}
	limit := len(t.rows)
	if limit > t.maxRows {
		limit = t.maxRows
	}
	if next >= limit {
		next = limit - 1
	}
	t.selected = next
}

// RowCount returns the number of rows held, before the render cap.
func (t *Table) RowCount() int {
	return len(t.rows)
}

// View renders the table: header, separator-free rows, and a footer when
// rows were cut by the cap.
func (t *Table) View() string {
	if len(t.cols) == 0 {
		return t.theme.MutedText.Render("No columns.")
	}
	if len(t.rows) == 0 {
		return t.theme.MutedText.Render("No rows.")
	}

	widths := t.columnWidths()

	var b strings.Builder
	b.WriteString(t.renderHeader(widths))
	b.WriteString("\n")

	shown := len(t.rows)
	if shown > t.maxRows {
		shown = t.maxRows
	}
	for i := 0; i < shown; i++ {
		b.WriteString(t.renderRow(i, widths))
		if i < shown-1 {
			b.WriteString("\n")
		}
	}

	if shown < len(t.rows) {
		b.WriteString("\n")
		footer := "showing " + util.IntToString(shown) + " of " +
			util.IntToString(len(t.rows)) + " rows"
		b.WriteString(t.theme.MutedText.Render(footer))
	}

	return b.String()
}

// columnWidths computes per-column display widths from headers and cell
// content, clamped to the available render width.
func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.cols))
	for i, col := range t.cols {
		widths[i] = runewidth.StringWidth(col.Label)
	}

	sample := len(t.rows)
	if sample > t.maxRows {
		sample = t.maxRows
	}
	for r := 0; r < sample; r++ {
		for i, col := range t.cols {
			cell := t.cellText(t.rows[r], col)
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	for i := range widths {
		if widths[i] < minColumnWidth {
			widths[i] = minColumnWidth
		}
		if widths[i] > maxColumnWidth {
			widths[i] = maxColumnWidth
		}
	}

	// Shrink widest columns first until the row fits the terminal.
	total := func() int {
		sum := columnGap * (len(widths) - 1)
		for _, w := range widths {
			sum += w
		}
		return sum
	}
	for total() > t.width {
		widest := 0
		for i, w := range widths {
			if w > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColumnWidth {
			break
		}
		widths[widest]--
	}

	return widths
}

func (t *Table) renderHeader(widths []int) string {
	cells := make([]string, len(t.cols))
	for i, col := range t.cols {
		label := util.TruncateWidth(col.Label, widths[i])
		if col.Numeric {
			cells[i] = util.PadWidthLeft(label, widths[i])
		} else {
			cells[i] = util.PadWidth(label, widths[i])
		}
	}
	return t.theme.TableHeader.Render(strings.Join(cells, gap()))
}

func (t *Table) renderRow(index int, widths []int) string {
	row := t.rows[index]
	cells := make([]string, len(t.cols))
	for i, col := range t.cols {
		text := util.TruncateWidth(t.cellText(row, col), widths[i])
		if col.Numeric {
			cells[i] = util.PadWidthLeft(text, widths[i])
		} else {
			cells[i] = util.PadWidth(text, widths[i])
		}
	}
	line := strings.Join(cells, gap())

	style := t.rowStyle(index, row)
	return style.Render(line)
}

// rowStyle picks the base row style, with metric coloring for known SEO
// fields on unselected rows.
func (t *Table) rowStyle(index int, row results.Record) lipgloss.Style {
	if index == t.selected {
		return t.theme.TableRowSelected
	}
	if severity, ok := row["severity"].(string); ok {
		return lipgloss.NewStyle().Foreground(styles.SeverityColor(strings.ToLower(severity)))
	}
	if index%2 == 1 {
		return t.theme.TableRowAlt
	}
	return t.theme.TableRow
}

// cellText formats one cell. Numeric columns keep grouping for on-screen
// display, unlike export.
func (t *Table) cellText(row results.Record, col columns.Column) string {
	v, ok := row[col.FieldID]
	if !ok {
		return ""
	}
	return util.FormatCellValue(v)
}

func gap() string {
	return strings.Repeat(" ", columnGap)
}
