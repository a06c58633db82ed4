// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/keywordschat/kwc-tui/internal/model"
)

// =============================================================================
// VIEW RENDERING
// =============================================================================

// View renders the full screen: header, conversation, panel, input, and
// status bar.
func (m *Model) View() string {
	if !m.ready {
		return "Starting keywordschat..."
	}

	sections := []string{
		m.renderHeader(),
		m.viewport.View(),
	}

	if m.spinner.IsActive() {
		sections = append(sections, m.spinner.View())
	}
	if panelView := m.panel.View(); panelView != "" {
		sections = append(sections, panelView)
	}

	sections = append(sections,
		m.theme.InputContainer.Width(m.width-2).Render(m.input.View()),
		m.statusbar.View(),
	)

	return strings.Join(sections, "\n")
}

// renderHeader renders the top brand bar with the site scope.
func (m *Model) renderHeader() string {
	brand := m.theme.HeaderBrand.Render("keywordschat")
	right := ""
	if m.conversation.Site != "" {
		right = m.theme.HeaderSite.Render(m.conversation.Site)
	}

	gap := m.width - lipgloss.Width(brand) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Width(m.width).Render(brand + strings.Repeat(" ", gap) + right)
}

// refreshViewport re-renders the conversation into the viewport and keeps
// it pinned to the bottom.
func (m *Model) refreshViewport() {
	var b strings.Builder
	for i, msg := range m.conversation.GetHistory() {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.renderMessage(msg))
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// renderMessage renders one message with its role label and bubble style.
func (m *Model) renderMessage(msg *model.Message) string {
	label := m.theme.RoleLabel.Render(msg.Role.DisplayName()) + " " +
		m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))

	content := msg.GetDisplayContent()
	switch msg.Role {
	case model.RoleUser:
		return label + "\n" + m.theme.UserBubble.Render(content)

	case model.RoleAssistant:
		// Markdown rendering only once the stream settles; partial
		// markdown renders badly and reflows on every token.
		if !msg.IsStreaming && m.renderer != nil {
			if rendered, err := m.renderer.Render(content); err == nil {
				content = strings.TrimRight(rendered, "\n")
			}
		}
		return label + "\n" + m.theme.AssistantBubble.Render(content)

	case model.RoleSystem:
		return m.theme.SystemMessage.Render(content)

	default:
		return label + "\n" + content
	}
}

// helpText builds the /help listing from the command registry.
func (m *Model) helpText() string {
	var b strings.Builder
	b.WriteString("Commands:\n")

	byCategory := m.registry.ByCategory()
	for _, category := range []string{"General", "Conversation", "Results", "Account"} {
		cmds := byCategory[category]
		if len(cmds) == 0 {
			continue
		}
		b.WriteString("\n" + category + ":\n")
		for _, cmd := range cmds {
			b.WriteString("  " + cmd.Usage + " - " + cmd.Description + "\n")
		}
	}

	b.WriteString("\nKeys: Enter send, C-p toggle panel, C-t focus tabs, Esc cancel, C-c quit.")
	return b.String()
}
