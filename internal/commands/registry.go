// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the TUI.
package commands

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/keywordschat/kwc-tui/internal/archive"
	"github.com/keywordschat/kwc-tui/internal/storage"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command represents a slash command that can be executed.
type Command struct {
	// Name is the primary command name (e.g. "/export")
	Name string

	// Aliases are alternative names (e.g. "/e")
	Aliases []string

	// Description is shown in help
	Description string

	// Usage shows argument syntax (e.g. "/export <csv|json|md>")
	Usage string

	// Args defines the expected arguments
	Args []ArgDef

	// Handler executes the command
	Handler func(ctx *Context, args []string) tea.Cmd

	// Category for grouping in help display
	Category string
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	Name        string
	Required    bool
	Type        ArgType
	Description string

	// Values for enum types
	Values []string
}

// ArgType indicates the kind of argument.
type ArgType int

const (
	ArgTypeString ArgType = iota // Free-form string
	ArgTypeEnum                  // One of predefined values
	ArgTypeNumber                // Numeric argument
)

// =============================================================================
// CONTEXT
// =============================================================================

// Context provides the dependencies command handlers may use. Fields can
// be nil when a subsystem is disabled (e.g. the archive).
type Context struct {
	// History is the conversation store.
	History *storage.Store

	// Archive is the cross-conversation result archive, nil when disabled.
	Archive *archive.Archive
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
	order    []string
}

// NewRegistry creates a registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	if _, exists := r.commands[cmd.Name]; !exists {
		r.order = append(r.order, cmd.Name)
	}
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands in registration order.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.order))
	for _, name := range r.order {
		cmds = append(cmds, r.commands[name])
	}
	return cmds
}

// ByCategory returns commands grouped by category.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.All() {
		category := cmd.Category
		if category == "" {
			category = "General"
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Show help and available commands",
		Category:    "General",
		Handler:     handleHelp,
	})

	r.Register(&Command{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Description: "Exit keywordschat",
		Category:    "General",
		Handler:     handleQuit,
	})

	// Conversation commands
	r.Register(&Command{
		Name:        "/new",
		Aliases:     []string{"/n"},
		Description: "Start a new conversation",
		Category:    "Conversation",
		Handler:     handleNew,
	})

	r.Register(&Command{
		Name:        "/save",
		Aliases:     []string{"/s"},
		Description: "Save the current conversation",
		Category:    "Conversation",
		Handler:     handleSave,
	})

	r.Register(&Command{
		Name:        "/history",
		Description: "List saved conversations",
		Usage:       "/history [query]",
		Args: []ArgDef{
			{Name: "query", Type: ArgTypeString, Description: "Filter by title or site"},
		},
		Category: "Conversation",
		Handler:  handleHistory,
	})

	r.Register(&Command{
		Name:        "/load",
		Aliases:     []string{"/l"},
		Description: "Load a saved conversation",
		Usage:       "/load <id|index>",
		Args: []ArgDef{
			{Name: "ref", Required: true, Type: ArgTypeString, Description: "Conversation ID or list index"},
		},
		Category: "Conversation",
		Handler:  handleLoad,
	})

	r.Register(&Command{
		Name:        "/delete",
		Description: "Delete a saved conversation",
		Usage:       "/delete <id>",
		Args: []ArgDef{
			{Name: "id", Required: true, Type: ArgTypeString, Description: "Conversation ID"},
		},
		Category: "Conversation",
		Handler:  handleDelete,
	})

	r.Register(&Command{
		Name:        "/site",
		Description: "Set the site this conversation is about",
		Usage:       "/site <domain>",
		Args: []ArgDef{
			{Name: "domain", Required: true, Type: ArgTypeString, Description: "Domain, e.g. example.com"},
		},
		Category: "Conversation",
		Handler:  handleSite,
	})

	// Results commands
	r.Register(&Command{
		Name:        "/export",
		Aliases:     []string{"/e"},
		Description: "Export the active result table",
		Usage:       "/export <csv|json|md>",
		Args: []ArgDef{
			{Name: "format", Required: true, Type: ArgTypeEnum,
				Values: []string{"csv", "json", "md"}, Description: "Output format"},
		},
		Category: "Results",
		Handler:  handleExport,
	})

	r.Register(&Command{
		Name:        "/archive",
		Description: "List archived results, optionally filtered",
		Usage:       "/archive [query]",
		Args: []ArgDef{
			{Name: "query", Type: ArgTypeString, Description: "Filter by title"},
		},
		Category: "Results",
		Handler:  handleArchive,
	})

	r.Register(&Command{
		Name:        "/recall",
		Description: "Reopen an archived result in the panel",
		Usage:       "/recall <id>",
		Args: []ArgDef{
			{Name: "id", Required: true, Type: ArgTypeNumber, Description: "Archive entry ID from /archive"},
		},
		Category: "Results",
		Handler:  handleRecall,
	})

	r.Register(&Command{
		Name:        "/panel",
		Aliases:     []string{"/p"},
		Description: "Toggle the results panel",
		Category:    "Results",
		Handler:     handlePanel,
	})

	r.Register(&Command{
		Name:        "/minimize",
		Aliases:     []string{"/min"},
		Description: "Minimize the results panel",
		Category:    "Results",
		Handler:     handleMinimize,
	})

	r.Register(&Command{
		Name:        "/maximize",
		Aliases:     []string{"/max"},
		Description: "Restore the minimized results panel",
		Category:    "Results",
		Handler:     handleMaximize,
	})

	// Account commands
	r.Register(&Command{
		Name:        "/login",
		Description: "Log in with an API token",
		Category:    "Account",
		Handler:     handleLogin,
	})

	r.Register(&Command{
		Name:        "/logout",
		Description: "Remove the stored API token",
		Category:    "Account",
		Handler:     handleLogout,
	})
}
