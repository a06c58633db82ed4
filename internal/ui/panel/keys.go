// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panel

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the keyboard bindings that act on the results panel.
// The owning model routes keys here only while the panel has focus.
type KeyMap struct {
	NextTab    key.Binding
	PrevTab    key.Binding
	NextSubTab key.Binding
	PrevSubTab key.Binding
	RowUp      key.Binding
	RowDown    key.Binding
	Minimize   key.Binding
	Close      key.Binding
}

// DefaultKeyMap returns the default panel bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "next result tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-Tab", "previous result tab"),
		),
		NextSubTab: key.NewBinding(
			key.WithKeys("right", "]"),
			key.WithHelp("right/]", "next section"),
		),
		PrevSubTab: key.NewBinding(
			key.WithKeys("left", "["),
			key.WithHelp("left/[", "previous section"),
		),
		RowUp: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "row up"),
		),
		RowDown: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "row down"),
		),
		Minimize: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "minimize panel"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "close panel"),
		),
	}
}

// ShortHelp returns the bindings for the short help line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.RowUp, k.RowDown, k.Close}
}

// FullHelp returns the bindings grouped for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.NextSubTab, k.PrevSubTab},
		{k.RowUp, k.RowDown},
		{k.Minimize, k.Close},
	}
}
