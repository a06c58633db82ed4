// keywordschat TUI - a terminal client for the keywordschat SEO assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/keywordschat/kwc-tui/internal/api"
	"github.com/keywordschat/kwc-tui/internal/archive"
	"github.com/keywordschat/kwc-tui/internal/auth"
	"github.com/keywordschat/kwc-tui/internal/cli"
	"github.com/keywordschat/kwc-tui/internal/config"
	"github.com/keywordschat/kwc-tui/internal/storage"
	"github.com/keywordschat/kwc-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.4.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (default: ~/.config/keywordschat)")
	noTUI := flag.Bool("no-tui", false, "run the plain terminal REPL instead of the TUI")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("keywordschat %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if err := run(*configPath, *noTUI); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, noTUI bool) error {
	// =========================================================================
	// CONFIGURATION
	// =========================================================================
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// =========================================================================
	// SERVICES
	// =========================================================================
	configDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	keystore, err := auth.NewKeystore(configDir)
	if err != nil {
		// SECURITY: a broken keystore disables token persistence but must
		// not block the session; config/env tokens still work.
		fmt.Fprintf(os.Stderr, "Warning: keystore unavailable: %v\n", err)
		keystore = nil
	}

	token := cfg.API.Key
	if keystore != nil && keystore.HasToken() {
		if stored, err := keystore.LoadToken(); err == nil {
			token = stored
		}
	}

	client := api.NewClient(token).
		WithBaseURL(cfg.API.BaseURL).
		WithTimeout(time.Duration(cfg.API.TimeoutSec) * time.Second).
		WithMaxRetries(cfg.API.MaxRetries).
		WithRateLimit(cfg.API.RateLimitPerMin)

	historyDir, err := cfg.HistoryDir()
	if err != nil {
		return err
	}
	history, err := storage.NewStore(historyDir)
	if err != nil {
		return fmt.Errorf("open conversation history: %w", err)
	}
	history.MaxConversations = cfg.History.MaxConversations

	var arc *archive.Archive
	if cfg.Archive.Enabled {
		archivePath, err := cfg.ArchivePath()
		if err == nil {
			arc, err = archive.Open(archivePath, cfg.Archive.MaxEntries)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: result archive unavailable: %v\n", err)
			arc = nil
		}
	}
	if arc != nil {
		defer arc.Close()
	}

	// =========================================================================
	// INTERFACE SELECTION
	// =========================================================================
	if noTUI || !term.IsTerminal(int(os.Stdout.Fd())) {
		repl := cli.New(cli.Options{
			Client:   client,
			Keystore: keystore,
			History:  history,
			Archive:  arc,
			Config:   cfg,
		})
		return repl.Run()
	}

	m := chat.New(chat.Options{
		Client:   client,
		Keystore: keystore,
		History:  history,
		Archive:  arc,
		Config:   cfg,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Live-reload config edits into the running program.
	watchPath := configPath
	if watchPath == "" {
		if defaultPath, err := config.ConfigPathTOML(); err == nil {
			watchPath = defaultPath
		}
	}
	if watchPath != "" {
		if watcher, err := config.Watch(watchPath, func(next *config.Config) {
			next.ApplyEnvOverrides()
			if next.Validate() == nil {
				p.Send(chat.ConfigReloadedMsg{Config: next})
			}
		}); err == nil {
			defer watcher.Close()
		}
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}
