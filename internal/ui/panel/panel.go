// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panel

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/keywordschat/kwc-tui/internal/columns"
	"github.com/keywordschat/kwc-tui/internal/results"
	"github.com/keywordschat/kwc-tui/internal/ui/components"
	"github.com/keywordschat/kwc-tui/internal/ui/styles"
	"github.com/keywordschat/kwc-tui/internal/util"
)

// =============================================================================
// PANEL MODEL
// =============================================================================

// chromeHeight is the lines consumed by border, title, tab bars, and footer.
const chromeHeight = 7

// Model is the results panel. It reads the store on every Sync and renders
// the tabbed (or flat) view; visibility transitions go through the store so
// every subscriber sees them.
type Model struct {
	store   *results.Store
	theme   *styles.Theme
	keys    KeyMap
	tabs    *components.TabBar
	subTabs *components.TabBar
	table   *components.Table

	width  int
	height int

	// subTabPos remembers the selected section per entry ID so switching
	// tabs and coming back does not reset the section.
	subTabPos map[string]int
}

// New creates a panel over the given store.
func New(store *results.Store, theme *styles.Theme) *Model {
	m := &Model{
		store:     store,
		theme:     theme,
		keys:      DefaultKeyMap(),
		tabs:      components.NewTabBar(theme),
		subTabs:   components.NewSubTabBar(theme),
		table:     components.NewTable(theme),
		width:     80,
		height:    20,
		subTabPos: make(map[string]int),
	}
	m.Sync()
	return m
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	inner := width - 4
	if inner < 10 {
		inner = 10
	}
	m.tabs.SetWidth(inner)
	m.subTabs.SetWidth(inner)
	m.table.SetWidth(inner)

	rows := height - chromeHeight
	if rows < 3 {
		rows = 3
	}
	m.table.SetMaxRows(rows)
}

// SetMaxRows caps the rendered table rows independent of panel height.
func (m *Model) SetMaxRows(n int) {
	m.table.SetMaxRows(n)
}

// Sync refreshes the derived view from the store. Call after any store
// mutation; the store's synchronous notification makes this cheap to hook
// up via Subscribe.
func (m *Model) Sync() {
	m.tabs.SetLabels(m.store.Labels())
	m.refreshContent()
}

// ActiveEntry returns the entry behind the active tab, or nil.
func (m *Model) ActiveEntry() *results.Entry {
	entries := m.store.Entries()
	if len(entries) == 0 {
		return nil
	}
	idx := m.tabs.Active()
	if idx >= len(entries) {
		idx = len(entries) - 1
	}
	return entries[idx]
}

// refreshContent rebuilds sub-tabs and table rows for the active entry.
func (m *Model) refreshContent() {
	entry := m.ActiveEntry()
	if entry == nil {
		m.subTabs.SetLabels(nil)
		m.table.SetColumns(nil)
		m.table.SetRows(nil)
		return
	}

	var rows []results.Record
	if entry.IsTabbed() {
		labels := entry.TabLabels()
		m.subTabs.SetLabels(labels)
		if pos, ok := m.subTabPos[entry.ID]; ok {
			m.subTabs.Select(pos)
		}
		rows = entry.Tabs[m.subTabs.ActiveLabel()]
	} else {
		m.subTabs.SetLabels(nil)
		rows = entry.Rows
	}

	var sample results.Record
	if len(rows) > 0 {
		sample = rows[0]
	}
	m.table.SetColumns(columns.Layout(entry.Title, sample))
	m.table.SetRows(rows)
}

// =============================================================================
// NAVIGATION
// =============================================================================

// NextTab cycles to the next result tab.
func (m *Model) NextTab() {
	m.tabs.Next()
	m.refreshContent()
}

// PrevTab cycles to the previous result tab.
func (m *Model) PrevTab() {
	m.tabs.Prev()
	m.refreshContent()
}

// NextSubTab cycles the audit section forward. No-op on flat entries.
func (m *Model) NextSubTab() {
	m.cycleSubTab(func() { m.subTabs.Next() })
}

// PrevSubTab cycles the audit section backward. No-op on flat entries.
func (m *Model) PrevSubTab() {
	m.cycleSubTab(func() { m.subTabs.Prev() })
}

func (m *Model) cycleSubTab(move func()) {
	entry := m.ActiveEntry()
	if entry == nil || !entry.IsTabbed() {
		return
	}
	move()
	m.subTabPos[entry.ID] = m.subTabs.Active()
	rows := entry.Tabs[m.subTabs.ActiveLabel()]
	var sample results.Record
	if len(rows) > 0 {
		sample = rows[0]
	}
	m.table.SetColumns(columns.Layout(entry.Title, sample))
	m.table.SetRows(rows)
}

// Update handles panel-scoped key messages.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.NextTab):
		m.NextTab()
	case key.Matches(keyMsg, m.keys.PrevTab):
		m.PrevTab()
	case key.Matches(keyMsg, m.keys.NextSubTab):
		m.NextSubTab()
	case key.Matches(keyMsg, m.keys.PrevSubTab):
		m.PrevSubTab()
	case key.Matches(keyMsg, m.keys.RowDown):
		m.table.MoveSelection(1)
	case key.Matches(keyMsg, m.keys.RowUp):
		m.table.MoveSelection(-1)
	case key.Matches(keyMsg, m.keys.Minimize):
		m.store.Minimize()
		m.Sync()
	case key.Matches(keyMsg, m.keys.Close):
		m.store.Close()
		m.Sync()
	}
	return m, nil
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the panel. Closed or empty stores render nothing; a
// minimized panel renders a one-line restore hint.
func (m *Model) View() string {
	if m.store.IsEmpty() || !m.store.IsOpen() {
		return ""
	}
	if m.store.IsMinimized() {
		return m.viewMinimized()
	}
	return m.viewOpen()
}

func (m *Model) viewMinimized() string {
	count := m.store.Len()
	label := util.IntToString(count) + " result"
	if count != 1 {
		label += "s"
	}
	text := "Results (" + label + ") " +
		m.theme.ShortcutKey.Render("^P") + " restore"
	return m.theme.PanelMinimized.Width(m.width).Render(text)
}

func (m *Model) viewOpen() string {
	var b strings.Builder

	b.WriteString(m.theme.PanelTitle.Render("Results"))
	b.WriteString("\n")

	// Single entry renders flat: no top-level tab bar.
	if m.store.Len() > 1 {
		b.WriteString(m.tabs.View())
		b.WriteString("\n")
	}

	entry := m.ActiveEntry()
	if entry != nil && entry.IsTabbed() {
		b.WriteString(m.subTabs.View())
		b.WriteString("\n")
	}

	b.WriteString(m.table.View())

	if footer := m.footer(entry); footer != "" {
		b.WriteString("\n")
		b.WriteString(footer)
	}

	inner := m.width - 4
	if inner < 10 {
		inner = 10
	}
	return m.theme.PanelBorder.Width(inner).Render(b.String())
}

// footer renders the source URL and row count line.
func (m *Model) footer(entry *results.Entry) string {
	if entry == nil {
		return ""
	}
	parts := []string{}
	if entry.SourceURL != "" {
		parts = append(parts, "source: "+entry.SourceURL)
	}
	count := entry.RowCount()
	label := util.IntToString(count) + " row"
	if count != 1 {
		label += "s"
	}
	parts = append(parts, label)
	return m.theme.PanelFooter.Render(strings.Join(parts, "  "))
}

// Heights returns how many terminal lines the panel currently wants.
// The chat layout uses this to split the screen.
func (m *Model) Heights() int {
	if m.store.IsEmpty() || !m.store.IsOpen() {
		return 0
	}
	if m.store.IsMinimized() {
		return 1
	}
	return m.height
}
