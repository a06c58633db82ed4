// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/keywordschat/kwc-tui/internal/api"
	"github.com/keywordschat/kwc-tui/internal/commands"
	"github.com/keywordschat/kwc-tui/internal/results"
	"github.com/keywordschat/kwc-tui/internal/storage"
)

func newTestREPL(t *testing.T) (*REPL, *strings.Builder) {
	t.Helper()
	history, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	out := &strings.Builder{}
	r := New(Options{
		Client:  api.NewClient("test-token"),
		History: history,
		Out:     out,
	})
	return r, out
}

// =============================================================================
// RENDERING TESTS
// =============================================================================

func TestRenderTable_AlignsAndCaps(t *testing.T) {
	rows := make([]results.Record, 0, tableRowCap+10)
	for i := 0; i < tableRowCap+10; i++ {
		rows = append(rows, results.Record{"keyword": "artisan bread", "volume": 12400.0})
	}

	out := renderTable("Keyword Research Results", rows)
	if !strings.Contains(out, "Keyword") || !strings.Contains(out, "Volume") {
		t.Error("header labels missing")
	}
	if !strings.Contains(out, "12,400") {
		t.Error("numeric cell not formatted with grouping")
	}
	if !strings.Contains(out, "showing 50 of 60 rows") {
		t.Errorf("row cap footer missing:\n%s", out)
	}
}

func TestRenderTable_Empty(t *testing.T) {
	if out := renderTable("Keyword Research Results", nil); !strings.Contains(out, "no rows") {
		t.Errorf("empty table = %q", out)
	}
}

func TestRenderEntry_TabbedSections(t *testing.T) {
	entry := &results.Entry{
		Title:     "Technical SEO Audit",
		Kind:      results.KindTechnicalAudit,
		SourceURL: "https://example.com",
		Tabs: map[string][]results.Record{
			"Broken Links": {{"issue": "404 on /pricing", "severity": "high"}},
			"Crawl Errors": {{"issue": "timeout", "severity": "low"}},
		},
	}

	out := renderEntry(entry)
	for _, want := range []string{"Technical SEO Audit", "Broken Links", "Crawl Errors", "source: https://example.com"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	// Sections print in sorted label order.
	if strings.Index(out, "Broken Links") > strings.Index(out, "Crawl Errors") {
		t.Error("sections out of order")
	}
}

func TestRenderHistoryList_Empty(t *testing.T) {
	if out := renderHistoryList(nil); !strings.Contains(out, "No saved conversations") {
		t.Errorf("empty listing = %q", out)
	}
}

func TestRenderHelp_ListsCommands(t *testing.T) {
	out := renderHelp(commands.NewRegistry())
	for _, want := range []string{"/help", "/new", "/export", "/login", "Conversation:"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q", want)
		}
	}
}

func TestResultKind(t *testing.T) {
	tests := []struct {
		wire string
		want results.Kind
	}{
		{"keywords", results.KindKeywords},
		{"rankings", results.KindRankings},
		{"technical_audit", results.KindTechnicalAudit},
		{"other", results.KindData},
	}
	for _, tc := range tests {
		if got := resultKind(tc.wire); got != tc.want {
			t.Errorf("resultKind(%q) = %v, want %v", tc.wire, got, tc.want)
		}
	}
}

// =============================================================================
// MESSAGE APPLICATION TESTS
// =============================================================================

func TestApplyMsg_Quit(t *testing.T) {
	r, _ := newTestREPL(t)
	r.applyMsg(tea.QuitMsg{})
	if !r.quit {
		t.Error("quit flag not set")
	}
}

func TestApplyMsg_SetSite(t *testing.T) {
	r, out := newTestREPL(t)
	r.applyMsg(commands.SetSiteMsg{Site: "bakery.example"})
	if r.conversation.Site != "bakery.example" {
		t.Errorf("site = %q", r.conversation.Site)
	}
	if !strings.Contains(out.String(), "bakery.example") {
		t.Error("confirmation not printed")
	}
}

func TestApplyMsg_NewConversationResets(t *testing.T) {
	r, _ := newTestREPL(t)
	r.conversation.AddUserMessage("old")
	r.results.AddFlatResult([]results.Record{{"keyword": "rye"}}, "Keyword Research Results", results.KindKeywords, nil)

	oldID := r.conversation.ID
	r.applyMsg(commands.NewConversationMsg{})
	if r.conversation.ID == oldID || !r.results.IsEmpty() {
		t.Error("session state not reset")
	}
}

func TestApplyMsg_StatusError(t *testing.T) {
	r, out := newTestREPL(t)
	r.applyMsg(commands.StatusMsg{Text: "unknown command: /bogus (try /help)", IsError: true})
	if !strings.Contains(out.String(), "unknown command") {
		t.Error("status text not printed")
	}
}

func TestApplyMsg_RecallPrintsTable(t *testing.T) {
	r, out := newTestREPL(t)
	r.applyMsg(commands.RecallResultMsg{Entry: &results.Entry{
		Title: "Keyword Research Results",
		Kind:  results.KindKeywords,
		Rows:  []results.Record{{"keyword": "artisan bread", "volume": 12400.0}},
	}})
	if r.results.Len() != 1 {
		t.Fatalf("entry not replayed, len = %d", r.results.Len())
	}
	if !strings.Contains(out.String(), "artisan bread") {
		t.Error("recalled table not printed")
	}
}

func TestRunCommand_UnknownCommand(t *testing.T) {
	r, out := newTestREPL(t)
	r.runCommand("/bogus")
	if !strings.Contains(out.String(), "unknown command") {
		t.Errorf("output = %q", out.String())
	}
}

// =============================================================================
// PERSISTENCE TESTS
// =============================================================================

func TestSaveThenLoadConversation(t *testing.T) {
	r, out := newTestREPL(t)
	r.conversation.AddUserMessage("keyword ideas for a bakery")
	r.results.AddFlatResult([]results.Record{{"keyword": "artisan bread"}}, "Keyword Research Results", results.KindKeywords, nil)

	savedID := r.conversation.ID
	r.applyMsg(commands.SaveConversationMsg{})
	if !strings.Contains(out.String(), "Saved as") {
		t.Fatalf("save output = %q", out.String())
	}

	r.applyMsg(commands.NewConversationMsg{})
	r.applyMsg(commands.LoadConversationMsg{Ref: savedID})

	if r.conversation.ID != savedID {
		t.Errorf("loaded ID = %q, want %q", r.conversation.ID, savedID)
	}
	if r.results.Len() != 1 {
		t.Errorf("results not replayed, len = %d", r.results.Len())
	}
}

func TestSaveEmptyConversation(t *testing.T) {
	r, out := newTestREPL(t)
	r.applyMsg(commands.SaveConversationMsg{})
	if !strings.Contains(out.String(), "Nothing to save") {
		t.Errorf("output = %q", out.String())
	}
}

func TestExportWithoutResults(t *testing.T) {
	r, out := newTestREPL(t)
	r.applyMsg(commands.ExportResultMsg{Format: "csv"})
	if !strings.Contains(out.String(), "no results to export") {
		t.Errorf("output = %q", out.String())
	}
}

// =============================================================================
// REQUEST BUILDING
// =============================================================================

func TestBuildRequest_SkipsStreamingMessages(t *testing.T) {
	r, _ := newTestREPL(t)
	r.conversation.Site = "example.com"
	r.conversation.AddUserMessage("how are my rankings?")
	r.conversation.AddAssistantMessage() // still streaming

	req := r.buildRequest()
	if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
		t.Errorf("messages = %+v", req.Messages)
	}
	if req.Site != "example.com" || !req.Stream {
		t.Errorf("request = %+v", req)
	}
}
