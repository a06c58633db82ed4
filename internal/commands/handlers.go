// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the TUI.
package commands

import (
	"context"
	"errors"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/keywordschat/kwc-tui/internal/archive"
	"github.com/keywordschat/kwc-tui/internal/results"
	"github.com/keywordschat/kwc-tui/internal/storage"
)

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// Handlers emit these messages; the chat model applies them.

// ShowHelpMsg triggers the help display.
type ShowHelpMsg struct{}

// NewConversationMsg starts a fresh conversation and resets the panel.
type NewConversationMsg struct{}

// SaveConversationMsg persists the current conversation.
type SaveConversationMsg struct{}

// LoadConversationMsg loads a conversation by ID or list index.
type LoadConversationMsg struct {
	Ref string
}

// HistoryListMsg carries a conversation listing.
type HistoryListMsg struct {
	Metas []storage.ConversationMeta
	Err   error
}

// SetSiteMsg scopes the conversation to a domain.
type SetSiteMsg struct {
	Site string
}

// ExportResultMsg exports the active result table.
type ExportResultMsg struct {
	Format string
}

// ArchiveListMsg carries an archive listing.
type ArchiveListMsg struct {
	Entries []archive.ArchivedEntry
	Err     error
}

// RecallResultMsg carries an archived entry to replay into the panel.
type RecallResultMsg struct {
	Entry *results.Entry
	Err   error
}

// PanelAction is a visibility operation on the results panel.
type PanelAction int

const (
	PanelToggle PanelAction = iota
	PanelMinimize
	PanelMaximize
)

// PanelActionMsg applies a visibility action to the results panel.
type PanelActionMsg struct {
	Action PanelAction
}

// LoginRequestMsg starts the interactive login flow.
type LoginRequestMsg struct{}

// LogoutMsg clears the stored API token.
type LogoutMsg struct{}

// StatusMsg shows a transient status line message.
type StatusMsg struct {
	Text    string
	IsError bool
}

// queryTimeout bounds history and archive lookups started by handlers.
const queryTimeout = 5 * time.Second

// =============================================================================
// HANDLERS
// =============================================================================

func handleHelp(_ *Context, _ []string) tea.Cmd {
	return func() tea.Msg { return ShowHelpMsg{} }
}

func handleQuit(_ *Context, _ []string) tea.Cmd {
	return tea.Quit
}

func handleNew(_ *Context, _ []string) tea.Cmd {
	return func() tea.Msg { return NewConversationMsg{} }
}

func handleSave(_ *Context, _ []string) tea.Cmd {
	return func() tea.Msg { return SaveConversationMsg{} }
}

func handleHistory(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		if ctx.History == nil {
			return HistoryListMsg{Err: errors.New("history is not available")}
		}
		var metas []storage.ConversationMeta
		var err error
		if len(args) > 0 {
			metas, err = ctx.History.Search(args[0])
		} else {
			metas, err = ctx.History.List()
		}
		return HistoryListMsg{Metas: metas, Err: err}
	}
}

func handleLoad(_ *Context, args []string) tea.Cmd {
	return func() tea.Msg { return LoadConversationMsg{Ref: args[0]} }
}

func handleDelete(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		if ctx.History == nil {
			return StatusMsg{Text: "history is not available", IsError: true}
		}
		if err := ctx.History.Delete(args[0]); err != nil {
			return StatusMsg{Text: "delete failed: " + err.Error(), IsError: true}
		}
		return StatusMsg{Text: "deleted " + args[0]}
	}
}

func handleSite(_ *Context, args []string) tea.Cmd {
	return func() tea.Msg { return SetSiteMsg{Site: args[0]} }
}

func handleExport(_ *Context, args []string) tea.Cmd {
	return func() tea.Msg { return ExportResultMsg{Format: args[0]} }
}

func handleArchive(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		if ctx.Archive == nil {
			return ArchiveListMsg{Err: errors.New("archive is disabled")}
		}
		qctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()

		var entries []archive.ArchivedEntry
		var err error
		if len(args) > 0 {
			entries, err = ctx.Archive.Search(qctx, args[0], 50)
		} else {
			entries, err = ctx.Archive.Recent(qctx, 50)
		}
		return ArchiveListMsg{Entries: entries, Err: err}
	}
}

func handleRecall(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		if ctx.Archive == nil {
			return RecallResultMsg{Err: errors.New("archive is disabled")}
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return RecallResultMsg{Err: errors.New("invalid archive entry ID: " + args[0])}
		}
		qctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()

		entry, err := ctx.Archive.LoadEntry(qctx, id)
		return RecallResultMsg{Entry: entry, Err: err}
	}
}

func handlePanel(_ *Context, _ []string) tea.Cmd {
	return func() tea.Msg { return PanelActionMsg{Action: PanelToggle} }
}

func handleMinimize(_ *Context, _ []string) tea.Cmd {
	return func() tea.Msg { return PanelActionMsg{Action: PanelMinimize} }
}

func handleMaximize(_ *Context, _ []string) tea.Cmd {
	return func() tea.Msg { return PanelActionMsg{Action: PanelMaximize} }
}

func handleLogin(_ *Context, _ []string) tea.Cmd {
	return func() tea.Msg { return LoginRequestMsg{} }
}

func handleLogout(_ *Context, _ []string) tea.Cmd {
	return func() tea.Msg { return LogoutMsg{} }
}

// =============================================================================
// EXECUTION
// =============================================================================

// Execute parses and runs a command line. The returned tea.Cmd is nil for
// non-commands; unknown commands and bad arguments yield a StatusMsg.
func Execute(ctx *Context, registry *Registry, input string) (handled bool, cmd tea.Cmd) {
	result := NewParser(registry).Parse(input)
	if !result.IsCommand {
		return false, nil
	}

	if result.Command == nil {
		name := result.CommandName
		return true, func() tea.Msg {
			return StatusMsg{Text: "unknown command: " + name + " (try /help)", IsError: true}
		}
	}

	if err := ValidateArgs(result.Command, result.Args); err != nil {
		msg := err.Error()
		return true, func() tea.Msg {
			return StatusMsg{Text: msg, IsError: true}
		}
	}

	return true, result.Command.Handler(ctx, result.Args)
}
