// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/keywordschat/kwc-tui/internal/api"
	"github.com/keywordschat/kwc-tui/internal/commands"
	"github.com/keywordschat/kwc-tui/internal/config"
	"github.com/keywordschat/kwc-tui/internal/results"
	"github.com/keywordschat/kwc-tui/internal/storage"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	history, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	m := New(Options{
		Client:  api.NewClient("test-token"),
		History: history,
		Config:  config.Default(),
	})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

// =============================================================================
// RESULT DISPATCH TESTS
// =============================================================================

func TestKindForType(t *testing.T) {
	tests := []struct {
		wire string
		want results.Kind
	}{
		{"keywords", results.KindKeywords},
		{"rankings", results.KindRankings},
		{"technical_audit", results.KindTechnicalAudit},
		{"something_new", results.KindData},
		{"", results.KindData},
	}
	for _, tc := range tests {
		if got := kindForType(tc.wire); got != tc.want {
			t.Errorf("kindForType(%q) = %v, want %v", tc.wire, got, tc.want)
		}
	}
}

func TestDispatchPayloads_FlatResult(t *testing.T) {
	m := newTestModel(t)
	msg := m.conversation.AddUserMessage("research bread keywords")

	m.dispatchPayloads([]api.ResultPayload{{
		Type:  "keywords",
		Title: "Keyword Research Results",
		Rows: []map[string]any{
			{"keyword": "artisan bread", "volume": 12400.0},
		},
	}}, msg)

	if m.results.Len() != 1 {
		t.Fatalf("store has %d entries, want 1", m.results.Len())
	}
	entry := m.results.Entries()[0]
	if entry.Kind != results.KindKeywords {
		t.Errorf("kind = %v", entry.Kind)
	}
	if len(msg.ResultIDs) != 1 || msg.ResultIDs[0] != entry.ID {
		t.Errorf("message not linked to entry: %v", msg.ResultIDs)
	}
}

func TestDispatchPayloads_TabbedResult(t *testing.T) {
	m := newTestModel(t)

	m.dispatchPayloads([]api.ResultPayload{{
		Type:      "technical_audit",
		Title:     "Technical SEO Audit",
		SourceURL: "https://example.com",
		Tabs: map[string][]map[string]any{
			"broken_links": {{"issue": "404 on /pricing", "severity": "high"}},
		},
	}}, nil)

	entry := m.results.Entries()[0]
	if !entry.IsTabbed() {
		t.Fatal("entry should be tabbed")
	}
	if entry.SourceURL != "https://example.com" {
		t.Errorf("source url = %q", entry.SourceURL)
	}
}

func TestDispatchPayloads_NoArchiveNoCmds(t *testing.T) {
	m := newTestModel(t)
	cmds := m.dispatchPayloads([]api.ResultPayload{{
		Type:  "keywords",
		Title: "Keyword Research Results",
		Rows:  []map[string]any{{"keyword": "rye"}},
	}}, nil)
	if len(cmds) != 0 {
		t.Errorf("archive disabled but %d cmds queued", len(cmds))
	}
}

func TestDispatchPayloads_AutoOpenDisabled(t *testing.T) {
	m := newTestModel(t)
	m.cfg.UI.PanelOpenOnResult = false

	m.dispatchPayloads([]api.ResultPayload{{
		Type:  "keywords",
		Title: "Keyword Research Results",
		Rows:  []map[string]any{{"keyword": "rye"}},
	}}, nil)

	if m.results.Len() != 1 {
		t.Fatalf("store has %d entries, want 1", m.results.Len())
	}
	if m.results.IsOpen() {
		t.Error("panel opened despite panel_open_on_result = false")
	}

	// A panel the user already opened stays open.
	m.results.Reopen()
	m.dispatchPayloads([]api.ResultPayload{{
		Type:  "keywords",
		Title: "Keyword Research Results",
		Rows:  []map[string]any{{"keyword": "spelt"}},
	}}, nil)
	if !m.results.IsOpen() {
		t.Error("already-open panel should stay open")
	}
}

// =============================================================================
// REQUEST BUILDING TESTS
// =============================================================================

func TestBuildRequest_SkipsStreamingAndEmpty(t *testing.T) {
	m := newTestModel(t)
	m.conversation.Site = "example.com"
	m.conversation.AddUserMessage("how are my rankings?")
	m.conversation.AddAssistantMessage() // still streaming

	req := m.buildRequest()
	if len(req.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(req.Messages))
	}
	if req.Messages[0].Role != "user" {
		t.Errorf("role = %q", req.Messages[0].Role)
	}
	if req.Site != "example.com" {
		t.Errorf("site = %q", req.Site)
	}
	if !req.Stream {
		t.Error("stream flag not set")
	}
}

// =============================================================================
// STREAM SESSION TESTS
// =============================================================================

func TestStreamSessionSendUnblocksOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	session := &streamSession{
		ch:     make(chan tea.Msg, 1),
		cancel: cancel,
	}
	session.send(ctx, streamDoneMsg{}) // fill the buffer

	done := make(chan bool, 1)
	go func() {
		done <- session.send(ctx, streamDoneMsg{})
	}()
	cancel()

	select {
	case sent := <-done:
		if sent {
			t.Error("send reported success on a cancelled stream")
		}
	case <-time.After(time.Second):
		t.Fatal("send still blocked after cancel")
	}
}

// =============================================================================
// COMMAND MESSAGE TESTS
// =============================================================================

func TestApplyCommandMsg_SetSite(t *testing.T) {
	m := newTestModel(t)
	_, handled := m.applyCommandMsg(commands.SetSiteMsg{Site: "bakery.example"})
	if !handled {
		t.Fatal("SetSiteMsg not handled")
	}
	if m.conversation.Site != "bakery.example" {
		t.Errorf("conversation site = %q", m.conversation.Site)
	}
	if m.statusbar.Site != "bakery.example" {
		t.Errorf("statusbar site = %q", m.statusbar.Site)
	}
}

func TestApplyCommandMsg_NewConversationResetsEverything(t *testing.T) {
	m := newTestModel(t)
	m.conversation.AddUserMessage("old message")
	m.results.AddFlatResult([]results.Record{{"keyword": "rye"}}, "Keyword Research Results", results.KindKeywords, nil)

	oldID := m.conversation.ID
	m.applyCommandMsg(commands.NewConversationMsg{})

	if m.conversation.ID == oldID || !m.conversation.IsEmpty() {
		t.Error("conversation not replaced")
	}
	if !m.results.IsEmpty() {
		t.Error("results store not reset")
	}
}

func TestApplyCommandMsg_PanelToggleCycle(t *testing.T) {
	m := newTestModel(t)
	m.results.AddFlatResult([]results.Record{{"keyword": "rye"}}, "Keyword Research Results", results.KindKeywords, nil)

	if !m.results.IsOpen() {
		t.Fatal("adding a result should open the panel")
	}
	m.applyCommandMsg(commands.PanelActionMsg{Action: commands.PanelToggle})
	if m.results.IsOpen() {
		t.Error("toggle did not close the open panel")
	}
	m.applyCommandMsg(commands.PanelActionMsg{Action: commands.PanelToggle})
	if !m.results.IsOpen() {
		t.Error("toggle did not reopen the closed panel")
	}

	m.applyCommandMsg(commands.PanelActionMsg{Action: commands.PanelMinimize})
	if !m.results.IsMinimized() {
		t.Error("minimize not applied")
	}
	m.applyCommandMsg(commands.PanelActionMsg{Action: commands.PanelToggle})
	if m.results.IsMinimized() {
		t.Error("toggle should restore a minimized panel")
	}
}

func TestApplyCommandMsg_StatusMsg(t *testing.T) {
	m := newTestModel(t)
	cmd, handled := m.applyCommandMsg(commands.StatusMsg{Text: "exported to file.csv"})
	if !handled || cmd == nil {
		t.Fatal("StatusMsg not handled")
	}
	if m.statusbar.Message != "exported to file.csv" {
		t.Errorf("statusbar message = %q", m.statusbar.Message)
	}
}

func TestApplyCommandMsg_RecallReplaysEntry(t *testing.T) {
	m := newTestModel(t)
	entry := &results.Entry{
		Title: "Keyword Research Results",
		Kind:  results.KindKeywords,
		Rows:  []results.Record{{"keyword": "rye"}},
	}
	m.applyCommandMsg(commands.RecallResultMsg{Entry: entry})

	if m.results.Len() != 1 {
		t.Fatalf("store has %d entries", m.results.Len())
	}
	replayed := m.results.Entries()[0]
	if replayed.ID == "" || replayed.Title != "Keyword Research Results" {
		t.Errorf("replayed entry = %+v", replayed)
	}
}

func TestApplyCommandMsg_UnknownMsgNotHandled(t *testing.T) {
	m := newTestModel(t)
	if _, handled := m.applyCommandMsg(struct{}{}); handled {
		t.Error("unrelated message claimed as handled")
	}
}

// =============================================================================
// LOGIN FLOW TESTS
// =============================================================================

func TestLoginFlow(t *testing.T) {
	m := newTestModel(t)
	m.client.SetToken("")

	m.applyCommandMsg(commands.LoginRequestMsg{})
	if !m.loginPending {
		t.Fatal("login mode not entered")
	}

	m.finishLogin("kwc_live_secret123")
	if m.loginPending {
		t.Error("login mode not cleared")
	}
	if !m.client.IsConfigured() {
		t.Error("client token not set")
	}
	if m.statusbar.AuthLabel == "" {
		t.Error("auth label not set")
	}
	if strings.Contains(m.statusbar.AuthLabel, "secret") {
		t.Error("auth label leaks token material")
	}
}

func TestLoginCancelledByEmptyToken(t *testing.T) {
	m := newTestModel(t)
	m.client.SetToken("")
	m.applyCommandMsg(commands.LoginRequestMsg{})
	m.finishLogin("")
	if m.client.IsConfigured() {
		t.Error("empty token should not configure the client")
	}
}

func TestLogoutClearsClient(t *testing.T) {
	m := newTestModel(t)
	m.logout()
	if m.client.IsConfigured() {
		t.Error("client still configured after logout")
	}
	if m.statusbar.AuthLabel != "" {
		t.Errorf("auth label = %q after logout", m.statusbar.AuthLabel)
	}
}

// =============================================================================
// PERSISTENCE ROUND TRIP
// =============================================================================

func TestSaveThenLoadConversation(t *testing.T) {
	m := newTestModel(t)
	userMsg := m.conversation.AddUserMessage("keyword ideas for a bakery")
	m.dispatchPayloads([]api.ResultPayload{{
		Type:  "keywords",
		Title: "Keyword Research Results",
		Rows:  []map[string]any{{"keyword": "artisan bread"}},
	}}, userMsg)

	saveCmd := m.saveConversation()
	if saveCmd == nil {
		t.Fatal("save returned no cmd")
	}
	if statusMsg, ok := saveCmd().(commands.StatusMsg); !ok || statusMsg.IsError {
		t.Fatalf("save result = %#v", saveCmd())
	}

	savedID := m.conversation.ID
	m.applyCommandMsg(commands.NewConversationMsg{})

	m.loadConversation(savedID)
	if m.conversation.ID != savedID {
		t.Fatalf("loaded ID = %q, want %q", m.conversation.ID, savedID)
	}
	if m.results.Len() != 1 {
		t.Errorf("results not replayed, len = %d", m.results.Len())
	}
	// Replayed entries have fresh IDs; the message link must follow.
	loadedMsg := m.conversation.Messages[0]
	if len(loadedMsg.ResultIDs) != 1 || m.results.Entry(loadedMsg.ResultIDs[0]) == nil {
		t.Errorf("message result link broken: %v", loadedMsg.ResultIDs)
	}
}

func TestLoadByListIndex(t *testing.T) {
	m := newTestModel(t)
	m.conversation.AddUserMessage("first conversation")
	m.saveConversation()()

	m.applyCommandMsg(commands.NewConversationMsg{})
	m.loadConversation("1")
	if m.conversation.IsEmpty() {
		t.Error("numeric ref did not load the most recent conversation")
	}
}

// =============================================================================
// VIEW TESTS
// =============================================================================

func TestHelpTextListsCommands(t *testing.T) {
	m := newTestModel(t)
	help := m.helpText()
	for _, want := range []string{"/help", "/new", "/export", "/login", "Conversation:", "Results:"} {
		if !strings.Contains(help, want) {
			t.Errorf("help missing %q", want)
		}
	}
}

func TestViewRendersAfterResize(t *testing.T) {
	m := newTestModel(t)
	m.conversation.AddUserMessage("how do I rank for sourdough?")
	m.refreshViewport()

	view := m.View()
	if !strings.Contains(view, "keywordschat") {
		t.Error("header brand missing")
	}
	if !strings.Contains(view, "sourdough") {
		t.Error("conversation content missing")
	}
}
