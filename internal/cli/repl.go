// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/peterh/liner"

	"github.com/keywordschat/kwc-tui/internal/api"
	"github.com/keywordschat/kwc-tui/internal/archive"
	"github.com/keywordschat/kwc-tui/internal/auth"
	"github.com/keywordschat/kwc-tui/internal/commands"
	"github.com/keywordschat/kwc-tui/internal/config"
	"github.com/keywordschat/kwc-tui/internal/export"
	"github.com/keywordschat/kwc-tui/internal/model"
	"github.com/keywordschat/kwc-tui/internal/results"
	"github.com/keywordschat/kwc-tui/internal/storage"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	prompt          = "kwc> "
	historyFileName = "cli_history"
)

// =============================================================================
// REPL
// =============================================================================

// Options carries the wired dependencies into the REPL.
type Options struct {
	Client   *api.Client
	Keystore *auth.Keystore
	History  *storage.Store
	Archive  *archive.Archive // nil when the archive is disabled
	Config   *config.Config
	Out      io.Writer // defaults to os.Stdout
}

// REPL is the plain-terminal chat loop. It owns the same conversation and
// results state as the TUI but renders everything as scrollback text.
type REPL struct {
	conversation *model.Conversation
	results      *results.Store

	client   *api.Client
	keystore *auth.Keystore
	history  *storage.Store
	archive  *archive.Archive
	cfg      *config.Config

	registry *commands.Registry
	cmdCtx   *commands.Context

	line *liner.State
	out  io.Writer
	quit bool
}

// New creates the REPL with all dependencies wired.
func New(opts Options) *REPL {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &REPL{
		conversation: model.NewConversation(),
		results:      results.NewStore(),
		client:       opts.Client,
		keystore:     opts.Keystore,
		history:      opts.History,
		archive:      opts.Archive,
		cfg:          opts.Config,
		registry:     commands.NewRegistry(),
		cmdCtx: &commands.Context{
			History: opts.History,
			Archive: opts.Archive,
		},
		out: out,
	}
}

// Run starts the read-eval-print loop and blocks until /quit or EOF.
func (r *REPL) Run() error {
	r.line = liner.NewLiner()
	defer r.line.Close()
	r.line.SetCtrlCAborts(true)
	r.loadInputHistory()

	fmt.Fprintln(r.out, renderWelcome(r.conversation.Site))

	for !r.quit {
		input, err := r.line.Prompt(prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(r.out, mutedStyle.Render("(use /quit to exit)"))
				continue
			}
			// EOF and terminal errors both end the session.
			break
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		r.line.AppendHistory(input)

		if commands.IsCommand(input) {
			r.runCommand(input)
			continue
		}
		r.send(input)
	}

	r.saveInputHistory()
	fmt.Fprintln(r.out, renderExitSummary(len(r.conversation.Messages), r.results.Len()))
	return nil
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// inputHistoryPath returns the liner history file location.
func (r *REPL) inputHistoryPath() (string, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, historyFileName), nil
}

func (r *REPL) loadInputHistory() {
	path, err := r.inputHistoryPath()
	if err != nil {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	r.line.ReadHistory(f)
}

func (r *REPL) saveInputHistory() {
	path, err := r.inputHistoryPath()
	if err != nil {
		return
	}
	// SECURITY: prompts may contain site names and business context, so
	// the history file is user-only.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	r.line.WriteHistory(f)
}

// =============================================================================
// COMMAND DISPATCH
// =============================================================================

// runCommand routes a slash command through the shared command layer and
// applies the resulting messages.
func (r *REPL) runCommand(input string) {
	handled, cmd := commands.Execute(r.cmdCtx, r.registry, input)
	if !handled || cmd == nil {
		return
	}
	r.applyMsg(cmd())
}

// applyMsg applies one command message to the session state.
func (r *REPL) applyMsg(msg tea.Msg) {
	switch msg := msg.(type) {
	case tea.QuitMsg:
		r.quit = true

	case tea.BatchMsg:
		for _, cmd := range msg {
			if cmd != nil {
				r.applyMsg(cmd())
			}
		}

	case commands.ShowHelpMsg:
		fmt.Fprintln(r.out, renderHelp(r.registry))

	case commands.NewConversationMsg:
		r.conversation = model.NewConversation()
		r.results.Reset()
		fmt.Fprintln(r.out, "Started a new conversation.")

	case commands.SaveConversationMsg:
		r.saveConversation()

	case commands.LoadConversationMsg:
		r.loadConversation(msg.Ref)

	case commands.HistoryListMsg:
		if msg.Err != nil {
			fmt.Fprintln(r.out, errorStyle.Render("history: "+msg.Err.Error()))
			return
		}
		fmt.Fprintln(r.out, renderHistoryList(msg.Metas))

	case commands.SetSiteMsg:
		r.conversation.Site = msg.Site
		if msg.Site == "" {
			fmt.Fprintln(r.out, "Site scope cleared.")
		} else {
			fmt.Fprintln(r.out, "Site scope set to "+msg.Site+".")
		}

	case commands.ExportResultMsg:
		r.exportLastResult(msg.Format)

	case commands.ArchiveListMsg:
		if msg.Err != nil {
			fmt.Fprintln(r.out, errorStyle.Render("archive: "+msg.Err.Error()))
			return
		}
		fmt.Fprintln(r.out, renderArchiveList(msg.Entries))

	case commands.RecallResultMsg:
		r.recallResult(msg)

	case commands.PanelActionMsg:
		fmt.Fprintln(r.out, mutedStyle.Render("The results panel needs the TUI; tables print inline here."))

	case commands.LoginRequestMsg:
		r.login()

	case commands.LogoutMsg:
		r.logout()

	case commands.StatusMsg:
		if msg.IsError {
			fmt.Fprintln(r.out, errorStyle.Render(msg.Text))
		} else {
			fmt.Fprintln(r.out, msg.Text)
		}
	}
}

// =============================================================================
// PERSISTENCE
// =============================================================================

func (r *REPL) saveConversation() {
	if r.conversation.IsEmpty() {
		fmt.Fprintln(r.out, "Nothing to save yet.")
		return
	}
	snapshot := storage.Snapshot(r.conversation, r.results)
	id, err := r.history.Save(snapshot)
	if err != nil {
		fmt.Fprintln(r.out, errorStyle.Render("save failed: "+err.Error()))
		return
	}
	fmt.Fprintln(r.out, "Saved as "+id+".")
}

func (r *REPL) loadConversation(ref string) {
	var stored *storage.StoredConversation
	var err error
	if index, convErr := strconv.Atoi(ref); convErr == nil {
		// Listing numbers are 1-based.
		stored, err = r.history.LoadByIndex(index - 1)
	} else {
		stored, err = r.history.Load(ref)
	}
	if err != nil {
		fmt.Fprintln(r.out, errorStyle.Render("load failed: "+err.Error()))
		return
	}

	r.results.Reset()
	r.conversation = storage.Restore(stored, r.results)
	fmt.Fprintln(r.out, "Loaded "+stored.Title+" ("+
		strconv.Itoa(len(stored.Messages))+" messages).")
	for _, entry := range r.results.Entries() {
		fmt.Fprintln(r.out, renderEntry(entry))
	}
}

func (r *REPL) exportLastResult(format string) {
	entries := r.results.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(r.out, errorStyle.Render("no results to export"))
		return
	}
	exporter, err := export.ForFormat(format)
	if err != nil {
		fmt.Fprintln(r.out, errorStyle.Render(err.Error()))
		return
	}
	path, err := export.ExportToFile(entries[len(entries)-1], exporter, export.DefaultOptions())
	if err != nil {
		fmt.Fprintln(r.out, errorStyle.Render("export failed: "+err.Error()))
		return
	}
	fmt.Fprintln(r.out, "Exported to "+path+".")
}

func (r *REPL) recallResult(msg commands.RecallResultMsg) {
	if msg.Err != nil {
		fmt.Fprintln(r.out, errorStyle.Render("recall: "+msg.Err.Error()))
		return
	}
	entry := msg.Entry
	var entryID string
	if entry.IsTabbed() {
		entryID = r.results.AddTabbedResult(entry.Tabs, entry.Title, entry.SourceURL)
	} else {
		entryID = r.results.AddFlatResult(entry.Rows, entry.Title, entry.Kind, entry.Metadata)
	}
	fmt.Fprintln(r.out, renderEntry(r.results.Entry(entryID)))
}

// =============================================================================
// AUTH
// =============================================================================

func (r *REPL) login() {
	// liner restores the terminal between prompts, so the login flow can
	// read stdin directly for hidden token input and the 2FA code.
	withTOTP := r.keystore != nil && r.keystore.HasTOTPSecret()
	creds, err := auth.PromptLogin(os.Stdin, r.out, withTOTP)
	if err != nil {
		fmt.Fprintln(r.out, errorStyle.Render("login failed: "+err.Error()))
		return
	}

	if withTOTP {
		secret, err := r.keystore.LoadTOTPSecret()
		if err != nil {
			fmt.Fprintln(r.out, errorStyle.Render("login failed: "+err.Error()))
			return
		}
		if err := auth.ValidateTOTP(creds.TOTPCode, secret); err != nil {
			fmt.Fprintln(r.out, errorStyle.Render("login failed: "+err.Error()))
			return
		}
	}

	if r.keystore != nil {
		if err := r.keystore.SaveToken(creds.Token); err != nil {
			fmt.Fprintln(r.out, errorStyle.Render("could not store token: "+err.Error()))
		}
	}
	r.client.SetToken(creds.Token)
	fmt.Fprintln(r.out, "Logged in as "+r.client.TokenFingerprint()+".")
}

func (r *REPL) logout() {
	if r.keystore != nil {
		r.keystore.Clear()
	}
	r.client.SetToken("")
	fmt.Fprintln(r.out, "Logged out.")
}

// =============================================================================
// STREAMING
// =============================================================================

// send streams one message exchange, printing deltas as they arrive and
// result tables when the response completes. Ctrl+C cancels the stream
// without ending the session.
func (r *REPL) send(text string) {
	if !r.client.IsConfigured() {
		fmt.Fprintln(r.out, errorStyle.Render("not logged in, run /login first"))
		return
	}

	r.conversation.AddUserMessage(text)
	assistant := r.conversation.AddAssistantMessage()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	var payloads []api.ResultPayload
	err := r.client.StreamMessage(ctx, r.buildRequest(), func(chunk api.StreamChunk) {
		if chunk.Delta != "" {
			fmt.Fprint(r.out, chunk.Delta)
			r.conversation.AppendToLast(chunk.Delta)
		}
		payloads = append(payloads, chunk.Results...)
	})
	fmt.Fprintln(r.out)
	r.conversation.FinalizeLast()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(r.out, mutedStyle.Render("(response cancelled)"))
		} else {
			fmt.Fprintln(r.out, errorStyle.Render("request failed: "+err.Error()))
		}
		return
	}

	for _, payload := range payloads {
		var entryID string
		if payload.IsTabbed() {
			entryID = r.results.AddTabbedResult(
				toTabs(payload.Tabs), payload.Title, payload.SourceURL)
		} else {
			entryID = r.results.AddFlatResult(
				toRecords(payload.Rows), payload.Title, resultKind(payload.Type), nil)
		}
		assistant.AttachResult(entryID)

		entry := r.results.Entry(entryID)
		fmt.Fprintln(r.out, renderEntry(entry))
		r.archiveEntry(entry)
	}
}

// buildRequest converts the conversation history to the wire shape.
func (r *REPL) buildRequest() api.ChatRequest {
	history := r.conversation.GetHistory()
	messages := make([]api.ChatMessage, 0, len(history))
	for _, msg := range history {
		if msg.IsStreaming || msg.IsEmpty() {
			continue
		}
		messages = append(messages, api.ChatMessage{
			Role:    msg.Role.String(),
			Content: msg.Content,
		})
	}
	return api.ChatRequest{
		Messages: messages,
		Site:     r.conversation.Site,
		Stream:   true,
	}
}

// archiveEntry writes an entry to the archive. Failures are non-fatal; the
// table was already printed.
func (r *REPL) archiveEntry(entry *results.Entry) {
	if r.archive == nil || entry == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.archive.SaveEntry(ctx, r.conversation.ID, entry); err != nil {
		fmt.Fprintln(r.out, mutedStyle.Render("(archive write failed: "+err.Error()+")"))
	}
}

// resultKind maps a wire result type to the store kind.
func resultKind(t string) results.Kind {
	switch t {
	case "keywords":
		return results.KindKeywords
	case "rankings":
		return results.KindRankings
	case "technical_audit":
		return results.KindTechnicalAudit
	default:
		return results.KindData
	}
}

func toRecords(rows []map[string]any) []results.Record {
	out := make([]results.Record, len(rows))
	for i, row := range rows {
		out[i] = results.Record(row)
	}
	return out
}

func toTabs(tabs map[string][]map[string]any) map[string][]results.Record {
	out := make(map[string][]results.Record, len(tabs))
	for name, rows := range tabs {
		out[name] = toRecords(rows)
	}
	return out
}
