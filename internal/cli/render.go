// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/keywordschat/kwc-tui/internal/archive"
	"github.com/keywordschat/kwc-tui/internal/columns"
	"github.com/keywordschat/kwc-tui/internal/commands"
	"github.com/keywordschat/kwc-tui/internal/results"
	"github.com/keywordschat/kwc-tui/internal/storage"
	"github.com/keywordschat/kwc-tui/internal/ui/styles"
	"github.com/keywordschat/kwc-tui/internal/util"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(styles.Teal)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(styles.TextSecondary)
	mutedStyle  = lipgloss.NewStyle().Foreground(styles.TextMuted)
	errorStyle  = lipgloss.NewStyle().Foreground(styles.Rose)
	brandStyle  = lipgloss.NewStyle().Bold(true).Foreground(styles.Indigo)
)

// =============================================================================
// TABLE RENDERING
// =============================================================================

const (
	tableGap     = 2
	tableColCap  = 40
	tableRowCap  = 50
	listPreviewW = 48
)

// renderEntry renders a result entry as plain text. Tabbed entries print
// every section in label order; flat entries print a single table.
func renderEntry(entry *results.Entry) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(entry.Title) + "\n")

	if entry.IsTabbed() {
		for _, label := range entry.TabLabels() {
			rows := entry.Tabs[label]
			b.WriteString("\n" + headerStyle.Render(label) + " " +
				mutedStyle.Render("("+util.IntToString(len(rows))+" rows)") + "\n")
			b.WriteString(renderTable(entry.Title, rows))
		}
	} else {
		b.WriteString(renderTable(entry.Title, entry.Rows))
	}

	if entry.SourceURL != "" {
		b.WriteString(mutedStyle.Render("source: "+entry.SourceURL) + "\n")
	}
	return b.String()
}

// renderTable renders rows as an aligned plain-text table.
func renderTable(title string, rows []results.Record) string {
	if len(rows) == 0 {
		return mutedStyle.Render("(no rows)") + "\n"
	}

	cols := columns.Layout(title, rows[0])
	shown := rows
	if len(shown) > tableRowCap {
		shown = shown[:tableRowCap]
	}

	widths := make([]int, len(cols))
	for i, col := range cols {
		widths[i] = runewidth.StringWidth(col.Label)
		for _, row := range shown {
			if w := runewidth.StringWidth(cellText(row, col.FieldID)); w > widths[i] {
				widths[i] = w
			}
		}
		if widths[i] > tableColCap {
			widths[i] = tableColCap
		}
	}

	var b strings.Builder
	gap := strings.Repeat(" ", tableGap)

	headerCells := make([]string, len(cols))
	for i, col := range cols {
		headerCells[i] = util.PadWidth(util.TruncateWidth(col.Label, widths[i]), widths[i])
	}
	b.WriteString(headerStyle.Render(strings.Join(headerCells, gap)) + "\n")

	for _, row := range shown {
		cells := make([]string, len(cols))
		for i, col := range cols {
			text := util.TruncateWidth(cellText(row, col.FieldID), widths[i])
			if col.Numeric {
				cells[i] = util.PadWidthLeft(text, widths[i])
			} else {
				cells[i] = util.PadWidth(text, widths[i])
			}
		}
		b.WriteString(strings.Join(cells, gap) + "\n")
	}

	if len(shown) < len(rows) {
		b.WriteString(mutedStyle.Render("showing "+util.IntToString(len(shown))+
			" of "+util.IntToString(len(rows))+" rows") + "\n")
	}
	return b.String()
}

func cellText(row results.Record, fieldID string) string {
	v, ok := row[fieldID]
	if !ok {
		return ""
	}
	return util.FormatCellValue(v)
}

// =============================================================================
// LISTINGS
// =============================================================================

// renderHistoryList formats the /history output. Entries are numbered from
// 1 so they can be loaded with "/load <number>".
func renderHistoryList(metas []storage.ConversationMeta) string {
	if len(metas) == 0 {
		return "No saved conversations yet. Use /save to keep one."
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Saved conversations:") + "\n")
	for i, meta := range metas {
		preview := util.TruncateWidth(meta.Preview, listPreviewW)
		b.WriteString("  " + util.IntToString(i+1) + ". " + meta.Title + "\n")
		b.WriteString("     " + mutedStyle.Render(
			meta.UpdatedAt.Format("2006-01-02 15:04")+"  "+
				util.IntToString(meta.MessageCount)+" messages  "+
				util.IntToString(meta.ResultCount)+" results") + "\n")
		if preview != "" {
			b.WriteString("     " + mutedStyle.Render(preview) + "\n")
		}
	}
	b.WriteString(mutedStyle.Render("Load one with /load <number> or /load <id>."))
	return b.String()
}

// renderArchiveList formats the /archive output for /recall.
func renderArchiveList(entries []archive.ArchivedEntry) string {
	if len(entries) == 0 {
		return "The result archive is empty."
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Archived results:") + "\n")
	for i, entry := range entries {
		b.WriteString("  " + util.IntToString(i+1) + ". " + entry.Title + " " +
			mutedStyle.Render("("+entry.Kind+", "+util.IntToString(entry.RowCount)+" rows, "+
				entry.CreatedAt.Format("2006-01-02")+")") + "\n")
	}
	b.WriteString(mutedStyle.Render("Recall one with /recall <number>."))
	return b.String()
}

// renderHelp builds the /help listing from the command registry.
func renderHelp(registry *commands.Registry) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Commands:") + "\n")

	byCategory := registry.ByCategory()
	for _, category := range []string{"General", "Conversation", "Results", "Account"} {
		cmds := byCategory[category]
		if len(cmds) == 0 {
			continue
		}
		b.WriteString("\n" + category + ":\n")
		for _, cmd := range cmds {
			b.WriteString("  " + util.PadWidth(cmd.Usage, 28) + cmd.Description + "\n")
		}
	}
	b.WriteString("\nAnything else is sent to keywordschat as a message.")
	return b.String()
}

// renderWelcome prints the startup banner.
func renderWelcome(site string) string {
	var b strings.Builder
	b.WriteString(brandStyle.Render("keywordschat") + " " + mutedStyle.Render("(plain terminal mode)") + "\n")
	if site != "" {
		b.WriteString("Site scope: " + site + "\n")
	}
	b.WriteString(mutedStyle.Render("Type /help for commands, /quit to exit."))
	return b.String()
}

// renderExitSummary prints the session recap on exit.
func renderExitSummary(messages, resultCount int) string {
	return mutedStyle.Render("Session ended. " +
		util.IntToString(messages) + " messages, " +
		util.IntToString(resultCount) + " results.")
}
