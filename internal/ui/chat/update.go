// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/keywordschat/kwc-tui/internal/commands"
	"github.com/keywordschat/kwc-tui/internal/export"
	"github.com/keywordschat/kwc-tui/internal/model"
	"github.com/keywordschat/kwc-tui/internal/storage"
	"github.com/keywordschat/kwc-tui/internal/ui/components"
)

// Update is the single mutation point for all application state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case streamChunkMsg:
		return m.handleStreamChunk(msg)

	case streamDoneMsg:
		return m.finishStream(nil)

	case streamFailedMsg:
		return m.finishStream(msg.err)

	case clearStatusMsg:
		m.statusbar.ClearMessage()
		return m, nil

	case ConfigReloadedMsg:
		if msg.Config == nil {
			return m, nil
		}
		m.cfg = msg.Config
		m.panel.SetMaxRows(msg.Config.UI.MaxTableRows)
		m.layout()
		return m, m.setStatus("configuration reloaded", false)

	case archiveSavedMsg:
		if msg.err != nil {
			return m, m.setStatus("archive write failed: "+msg.err.Error(), true)
		}
		return m, nil
	}

	if cmd, handled := m.applyCommandMsg(msg); handled {
		return m, cmd
	}

	// Spinner ticks and other component messages.
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancelStream()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		if m.stream != nil {
			m.cancelStream()
			m.conversation.FinalizeLast()
			m.spinner.Stop()
			m.statusbar.SetStatus(components.StatusReady)
			m.refreshViewport()
			return m, m.setStatus("response cancelled", false)
		}
		if m.panelFocus {
			m.panelFocus = false
			m.input.Focus()
			return m, nil
		}
		return m, nil

	case key.Matches(msg, m.keys.TogglePanel):
		m.togglePanel()
		return m, nil

	case key.Matches(msg, m.keys.FocusPanel):
		if m.results.IsOpen() && !m.results.IsEmpty() {
			m.panelFocus = !m.panelFocus
			if m.panelFocus {
				m.input.Blur()
			} else {
				m.input.Focus()
			}
		}
		return m, nil
	}

	if m.panelFocus {
		_, cmd := m.panel.Update(msg)
		m.layout()
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		return m, m.handleSubmit()

	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown),
		key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// togglePanel cycles closed -> open and minimized -> restored.
func (m *Model) togglePanel() {
	switch {
	case !m.results.IsOpen():
		m.results.Reopen()
	case m.results.IsMinimized():
		m.results.Maximize()
	default:
		m.results.Close()
		m.panelFocus = false
		m.input.Focus()
	}
	m.layout()
}

// =============================================================================
// SUBMISSION
// =============================================================================

func (m *Model) handleSubmit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}

	if m.loginPending {
		m.input.Reset()
		return m.finishLogin(text)
	}

	if handled, cmd := commands.Execute(m.cmdCtx, m.registry, text); handled {
		m.input.Reset()
		return cmd
	}

	if m.stream != nil {
		return m.setStatus("a response is still streaming", true)
	}
	if m.client == nil || !m.client.IsConfigured() {
		return m.setStatus("not logged in, run /login first", true)
	}

	m.conversation.AddUserMessage(text)
	m.conversation.AddAssistantMessage()
	m.input.Reset()
	m.refreshViewport()
	m.statusbar.SetStatus(components.StatusStreaming)

	return tea.Batch(m.startStream(), m.spinner.Start())
}

// =============================================================================
// STREAM HANDLING
// =============================================================================

func (m *Model) handleStreamChunk(msg streamChunkMsg) (tea.Model, tea.Cmd) {
	if m.stream == nil {
		// Stream was cancelled; drop late chunks.
		return m, nil
	}

	cmds := []tea.Cmd{listenStream(m.stream)}

	if msg.chunk.Delta != "" {
		m.conversation.AppendToLast(msg.chunk.Delta)
		m.refreshViewport()
	}
	if len(msg.chunk.Results) > 0 {
		cmds = append(cmds, m.dispatchPayloads(msg.chunk.Results, m.conversation.GetLastMessage())...)
		m.layout()
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) finishStream(err error) (tea.Model, tea.Cmd) {
	m.stream = nil
	m.conversation.FinalizeLast()
	m.spinner.Stop()
	m.refreshViewport()

	if err != nil {
		m.statusbar.SetStatus(components.StatusError)
		return m, m.setStatus(err.Error(), true)
	}
	m.statusbar.SetStatus(components.StatusReady)
	return m, nil
}

// =============================================================================
// COMMAND MESSAGE HANDLING
// =============================================================================

// applyCommandMsg applies messages emitted by slash command handlers.
func (m *Model) applyCommandMsg(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case commands.ShowHelpMsg:
		m.conversation.AddSystemMessage(m.helpText())
		m.refreshViewport()
		return nil, true

	case commands.NewConversationMsg:
		m.cancelStream()
		m.conversation = model.NewConversation()
		m.results.Reset()
		m.statusbar.Site = ""
		m.layout()
		return m.setStatus("started a new conversation", false), true

	case commands.SaveConversationMsg:
		return m.saveConversation(), true

	case commands.LoadConversationMsg:
		return m.loadConversation(msg.Ref), true

	case commands.HistoryListMsg:
		if msg.Err != nil {
			return m.setStatus(msg.Err.Error(), true), true
		}
		m.conversation.AddSystemMessage(formatHistoryList(msg))
		m.refreshViewport()
		return nil, true

	case commands.SetSiteMsg:
		m.conversation.Site = msg.Site
		m.statusbar.Site = msg.Site
		return m.setStatus("site set to "+msg.Site, false), true

	case commands.ExportResultMsg:
		return m.exportActiveResult(msg.Format), true

	case commands.ArchiveListMsg:
		if msg.Err != nil {
			return m.setStatus(msg.Err.Error(), true), true
		}
		m.conversation.AddSystemMessage(formatArchiveList(msg))
		m.refreshViewport()
		return nil, true

	case commands.RecallResultMsg:
		return m.recallResult(msg), true

	case commands.PanelActionMsg:
		m.applyPanelAction(msg.Action)
		return nil, true

	case commands.LoginRequestMsg:
		m.loginPending = true
		m.input.EchoMode = textinput.EchoPassword
		m.input.Placeholder = tokenPlaceholder
		m.input.Reset()
		m.input.Focus()
		return m.setStatus("paste your API token and press Enter (empty to cancel)", false), true

	case commands.LogoutMsg:
		return m.logout(), true

	case commands.StatusMsg:
		return m.setStatus(msg.Text, msg.IsError), true
	}
	return nil, false
}

func (m *Model) applyPanelAction(action commands.PanelAction) {
	switch action {
	case commands.PanelToggle:
		m.togglePanel()
		return
	case commands.PanelMinimize:
		m.results.Minimize()
	case commands.PanelMaximize:
		m.results.Maximize()
	}
	m.layout()
}

// =============================================================================
// PERSISTENCE
// =============================================================================

func (m *Model) saveConversation() tea.Cmd {
	if m.history == nil {
		return m.setStatus("history is not available", true)
	}
	if m.conversation.IsEmpty() {
		return m.setStatus("nothing to save yet", true)
	}

	// Snapshot on the Update goroutine; only the disk write runs in the
	// background.
	snapshot := storage.Snapshot(m.conversation, m.results)
	store := m.history
	m.statusbar.SetStatus(components.StatusSaving)
	return func() tea.Msg {
		id, err := store.Save(snapshot)
		if err != nil {
			return commands.StatusMsg{Text: "save failed: " + err.Error(), IsError: true}
		}
		return commands.StatusMsg{Text: "saved as " + id}
	}
}

func (m *Model) loadConversation(ref string) tea.Cmd {
	if m.history == nil {
		return m.setStatus("history is not available", true)
	}

	// Numeric refs are 1-based positions in the /history listing.
	var stored *storage.StoredConversation
	var err error
	if index, convErr := strconv.Atoi(ref); convErr == nil {
		stored, err = m.history.LoadByIndex(index - 1)
	} else {
		stored, err = m.history.Load(ref)
	}
	if err != nil {
		return m.setStatus(err.Error(), true)
	}

	m.cancelStream()
	m.results.Reset()
	m.conversation = storage.Restore(stored, m.results)
	m.statusbar.Site = m.conversation.Site
	m.layout()
	return m.setStatus("loaded "+m.conversation.GetTitle(), false)
}

func (m *Model) exportActiveResult(format string) tea.Cmd {
	entry := m.panel.ActiveEntry()
	if entry == nil {
		return m.setStatus("no result to export", true)
	}
	exporter, err := export.ForFormat(format)
	if err != nil {
		return m.setStatus(err.Error(), true)
	}

	// Entries are immutable after insertion, safe to read off-loop.
	return func() tea.Msg {
		path, err := export.ExportToFile(entry, exporter, export.DefaultOptions())
		if err != nil {
			return commands.StatusMsg{Text: "export failed: " + err.Error(), IsError: true}
		}
		return commands.StatusMsg{Text: "exported to " + path}
	}
}

func (m *Model) recallResult(msg commands.RecallResultMsg) tea.Cmd {
	if msg.Err != nil {
		return m.setStatus(msg.Err.Error(), true)
	}
	entry := msg.Entry
	if entry.IsTabbed() {
		m.results.AddTabbedResult(entry.Tabs, entry.Title, entry.SourceURL)
	} else {
		m.results.AddFlatResult(entry.Rows, entry.Title, entry.Kind, entry.Metadata)
	}
	m.layout()
	return m.setStatus("recalled "+entry.Title, false)
}

// =============================================================================
// AUTH
// =============================================================================

func (m *Model) finishLogin(token string) tea.Cmd {
	m.loginPending = false
	m.input.EchoMode = textinput.EchoNormal
	m.input.Placeholder = inputPlaceholder

	if token == "" {
		return m.setStatus("login cancelled", false)
	}
	if m.keystore != nil {
		if err := m.keystore.SaveToken(token); err != nil {
			return m.setStatus("could not store token: "+err.Error(), true)
		}
	}
	m.client.SetToken(token)
	m.statusbar.AuthLabel = m.client.TokenFingerprint()
	return m.setStatus("logged in (key "+m.statusbar.AuthLabel+")", false)
}

func (m *Model) logout() tea.Cmd {
	if m.keystore != nil {
		if err := m.keystore.Clear(); err != nil {
			return m.setStatus("logout failed: "+err.Error(), true)
		}
	}
	m.client.SetToken("")
	m.statusbar.AuthLabel = ""
	return m.setStatus("logged out", false)
}

// =============================================================================
// FORMAT HELPERS
// =============================================================================

func formatHistoryList(msg commands.HistoryListMsg) string {
	if len(msg.Metas) == 0 {
		return "No saved conversations."
	}
	var b strings.Builder
	b.WriteString("Saved conversations:\n")
	for i, meta := range msg.Metas {
		b.WriteString(strconv.Itoa(i+1) + ". " + meta.Title + " (" + meta.ID + ")")
		if meta.Site != "" {
			b.WriteString(" - " + meta.Site)
		}
		b.WriteString("\n")
	}
	b.WriteString("Load one with /load <id or number>.")
	return b.String()
}

func formatArchiveList(msg commands.ArchiveListMsg) string {
	if len(msg.Entries) == 0 {
		return "The archive is empty."
	}
	var b strings.Builder
	b.WriteString("Archived results:\n")
	for _, e := range msg.Entries {
		b.WriteString(strconv.FormatInt(e.ID, 10) + ". " + e.Title +
			" (" + e.Kind + ", " + strconv.Itoa(e.RowCount) + " rows)\n")
	}
	b.WriteString("Recall one with /recall <number>.")
	return b.String()
}
