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
// STATUS BAR COMPONENT
// =============================================================================

// Status represents the current application activity.
type Status int

const (
	StatusReady Status = iota
	StatusStreaming
	StatusThinking
	StatusSaving
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusStreaming:
		return "Streaming..."
	case StatusThinking:
		return "Thinking..."
	case StatusSaving:
		return "Saving..."
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Icon returns a shape indicator for the status.
// ACCESSIBILITY: distinct shapes alongside colors for colorblind users.
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusStreaming, StatusThinking:
		return "~"
	case StatusSaving:
		return styles.StatusIndicators.Info
	case StatusError:
		return styles.StatusIndicators.Error
	default:
		return "?"
	}
}

// StatusBar is the bottom status bar: site scope, auth state, result count,
// activity, and shortcut hints.
type StatusBar struct {
	Site          string // Active site scope, "" when unset
	AuthLabel     string // Token fingerprint, "" when logged out
	ResultCount   int    // Entries in the results store
	PanelOpen     bool
	Status        Status
	Message       string // Transient status text, replaces the hints
	MessageIsErr  bool
	Width         int
	ShowShortcuts bool
	theme         *styles.Theme
}

// NewStatusBar creates a status bar with defaults.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Status:        StatusReady,
		Width:         80,
		ShowShortcuts: true,
		theme:         theme,
	}
}

// SetWidth updates the bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetStatus updates the activity state.
func (s *StatusBar) SetStatus(status Status) {
	s.Status = status
}

// SetMessage shows a transient message in place of the shortcut hints.
func (s *StatusBar) SetMessage(text string, isErr bool) {
	s.Message = text
	s.MessageIsErr = isErr
}

// ClearMessage removes the transient message.
func (s *StatusBar) ClearMessage() {
	s.Message = ""
	s.MessageIsErr = false
}

// View renders the status bar.
func (s *StatusBar) View() string {
	if s.Width < 50 {
		return s.viewNarrow()
	}
	return s.viewWide()
}

// viewNarrow renders icon-only sections for small terminals.
func (s *StatusBar) viewNarrow() string {
	parts := []string{s.statusStyle().Render(s.Status.Icon())}

	if s.Site != "" {
		parts = append(parts, s.theme.HeaderSite.Render(util.TruncateWidth(s.Site, 20)))
	}
	if s.ResultCount > 0 {
		parts = append(parts, s.theme.MutedText.Render(util.IntToString(s.ResultCount)+" res"))
	}

	return s.barStyle().Render(strings.Join(parts, " | "))
}

// viewWide renders the full bar: left section with site and auth, right
// section with activity and hints.
func (s *StatusBar) viewWide() string {
	sep := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")

	left := []string{}
	if s.Site != "" {
		left = append(left, s.theme.MutedText.Render("site:")+" "+
			s.theme.HeaderSite.Render(s.Site))
	} else {
		left = append(left, s.theme.MutedText.Render("no site set"))
	}
	if s.AuthLabel != "" {
		left = append(left, s.theme.MutedText.Render("key:"+s.AuthLabel))
	} else {
		left = append(left, lipgloss.NewStyle().Foreground(styles.Amber).Render("not logged in"))
	}
	if s.ResultCount > 0 {
		label := util.IntToString(s.ResultCount) + " result"
		if s.ResultCount != 1 {
			label += "s"
		}
		if !s.PanelOpen {
			label += " (hidden)"
		}
		left = append(left, s.theme.MutedText.Render(label))
	}
	leftSection := strings.Join(left, sep)

	right := []string{s.statusStyle().Render(s.Status.Icon() + " " + s.Status.String())}
	switch {
	case s.Message != "":
		msgStyle := s.theme.MutedText
		if s.MessageIsErr {
			msgStyle = s.theme.ErrorText
		}
		right = append(right, msgStyle.Render(util.TruncateWidth(s.Message, s.Width/2)))
	case s.ShowShortcuts:
		right = append(right, s.renderShortcuts())
	}
	rightSection := strings.Join(right, " ")

	spacing := s.Width - lipgloss.Width(leftSection) - lipgloss.Width(rightSection) - 2
	if spacing < 1 {
		spacing = 1
	}

	return s.barStyle().Render(leftSection + strings.Repeat(" ", spacing) + rightSection)
}

func (s *StatusBar) renderShortcuts() string {
	shortcuts := []string{
		s.theme.ShortcutKey.Render("^T") + s.theme.ShortcutDesc.Render("tabs"),
		s.theme.ShortcutKey.Render("^P") + s.theme.ShortcutDesc.Render("panel"),
		s.theme.ShortcutKey.Render("^C") + s.theme.ShortcutDesc.Render("quit"),
	}
	return strings.Join(shortcuts, " ")
}

func (s *StatusBar) statusStyle() lipgloss.Style {
	switch s.Status {
	case StatusReady:
		return lipgloss.NewStyle().Foreground(styles.Emerald).Bold(true)
	case StatusStreaming, StatusThinking:
		return lipgloss.NewStyle().Foreground(styles.Teal).Bold(true)
	case StatusSaving:
		return lipgloss.NewStyle().Foreground(styles.Amber).Bold(true)
	case StatusError:
		return lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)
	default:
		return s.theme.MutedText
	}
}

func (s *StatusBar) barStyle() lipgloss.Style {
	if s.Status == StatusError {
		return s.theme.StatusError.Width(s.Width)
	}
	return s.theme.StatusBar.Width(s.Width)
}
