// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package results owns the accumulated result sets of one conversation.
package results

import (
	"reflect"
	"testing"
	"time"
)

// =============================================================================
// ACCUMULATION TESTS
// =============================================================================

func TestStore_EntryOrderMatchesCallOrder(t *testing.T) {
	s := NewStore()

	titles := []string{"First", "Second", "Third", "Fourth"}
	for i, title := range titles {
		if i%2 == 0 {
			s.AddFlatResult([]Record{{"n": i}}, title, "", nil)
		} else {
			s.AddTabbedResult(map[string][]Record{"Issues": {{"n": i}}}, title, "")
		}
	}

	entries := s.Entries()
	if len(entries) != len(titles) {
		t.Fatalf("Len = %d, want %d", len(entries), len(titles))
	}
	for i, e := range entries {
		if e.Title != titles[i] {
			t.Errorf("entry %d title = %q, want %q", i, e.Title, titles[i])
		}
	}
}

func TestStore_IDsUniqueUnderRapidInserts(t *testing.T) {
	s := NewStore()

	// Freeze the clock so every insert sees the same nanosecond tick.
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := s.AddFlatResult(nil, "Result", "", nil)
		if seen[id] {
			t.Fatalf("duplicate entry ID %q at insert %d", id, i)
		}
		seen[id] = true
	}

	// Order list must still reflect call order.
	entries := s.Entries()
	for i := 1; i < len(entries); i++ {
		if entries[i].ID <= entries[i-1].ID {
			t.Errorf("IDs not monotonic: %q after %q", entries[i].ID, entries[i-1].ID)
		}
	}
}

func TestStore_KindDefaultsToData(t *testing.T) {
	s := NewStore()
	id := s.AddFlatResult(nil, "Whatever", "", nil)

	if got := s.Entry(id).Kind; got != KindData {
		t.Errorf("Kind = %q, want %q", got, KindData)
	}
}

func TestStore_TabbedEntryShape(t *testing.T) {
	s := NewStore()
	tabs := map[string][]Record{
		"Broken Links": {{"url": "/a"}},
		"Meta Issues":  {{"page": "/b"}},
	}
	id := s.AddTabbedResult(tabs, "Technical SEO Audit", "https://site.com")

	e := s.Entry(id)
	if e.Kind != KindTechnicalAudit {
		t.Errorf("Kind = %q, want %q", e.Kind, KindTechnicalAudit)
	}
	if len(e.Rows) != 0 {
		t.Errorf("tabbed entry Rows should be empty, got %d rows", len(e.Rows))
	}
	if e.SourceURL != "https://site.com" {
		t.Errorf("SourceURL = %q", e.SourceURL)
	}
	if got := e.TabLabels(); !reflect.DeepEqual(got, []string{"Broken Links", "Meta Issues"}) {
		t.Errorf("TabLabels = %v", got)
	}

	// Sub-tables are not flattened into the derived tab mapping.
	if len(s.Labels()) != 1 {
		t.Fatalf("Labels = %v, want exactly one", s.Labels())
	}
	if rows := s.Tabs()[s.Labels()[0]]; len(rows) != 0 {
		t.Errorf("tabbed entry's derived tab should carry empty rows, got %d", len(rows))
	}
}

// =============================================================================
// DERIVED VIEW TESTS
// =============================================================================

func TestStore_SingleEntryFlatView(t *testing.T) {
	s := NewStore()
	rows := []Record{{"keyword": "seo"}}
	s.AddFlatResult(rows, "Keyword Research Results for site.com", "", nil)

	if !reflect.DeepEqual(s.FlatView(), rows) {
		t.Errorf("FlatView = %v, want %v", s.FlatView(), rows)
	}

	tabs := s.Tabs()
	if len(tabs) != 1 {
		t.Fatalf("Tabs has %d keys, want 1", len(tabs))
	}
	if _, ok := tabs["Keywords"]; !ok {
		t.Errorf("Tabs keys = %v, want key %q", s.Labels(), "Keywords")
	}
}

func TestStore_DuplicateBaseLabelsNumbered(t *testing.T) {
	s := NewStore()
	s.AddFlatResult([]Record{{"keyword": "a"}}, "Keyword Research Results A", "", nil)
	s.AddFlatResult([]Record{{"keyword": "b"}}, "Keyword Research Results B", "", nil)

	want := []string{"Keywords #1", "Keywords #2"}
	if !reflect.DeepEqual(s.Labels(), want) {
		t.Errorf("Labels = %v, want %v", s.Labels(), want)
	}
	if s.FlatView() != nil {
		t.Errorf("FlatView should be empty with two entries, got %v", s.FlatView())
	}
	if !reflect.DeepEqual(s.Tabs()["Keywords #1"], []Record{{"keyword": "a"}}) {
		t.Errorf("Keywords #1 rows = %v", s.Tabs()["Keywords #1"])
	}
	if !reflect.DeepEqual(s.Tabs()["Keywords #2"], []Record{{"keyword": "b"}}) {
		t.Errorf("Keywords #2 rows = %v", s.Tabs()["Keywords #2"])
	}
}

func TestStore_MixedLabelsOnlyDuplicatesNumbered(t *testing.T) {
	s := NewStore()
	s.AddFlatResult(nil, "Keyword Research Results A", "", nil)
	s.AddFlatResult(nil, "Ranking Report for site.com", "", nil)
	s.AddFlatResult(nil, "Keyword Research Results B", "", nil)

	want := []string{"Keywords #1", "Rankings", "Keywords #2"}
	if !reflect.DeepEqual(s.Labels(), want) {
		t.Errorf("Labels = %v, want %v", s.Labels(), want)
	}
}

// =============================================================================
// VISIBILITY TESTS
// =============================================================================

func TestStore_AddOpensPanel(t *testing.T) {
	s := NewStore()
	if s.IsOpen() {
		t.Error("new store should not be open")
	}

	s.AddFlatResult(nil, "T", "", nil)
	if !s.IsOpen() || s.IsMinimized() {
		t.Errorf("after add: open=%v minimized=%v, want open and not minimized", s.IsOpen(), s.IsMinimized())
	}
}

func TestStore_CloseThenReopenRestoresView(t *testing.T) {
	s := NewStore()
	s.AddFlatResult([]Record{{"keyword": "a", "volume": 10}}, "Keyword Research Results A", "", nil)
	s.AddFlatResult([]Record{{"keyword": "b"}}, "Ranking Report B", "", nil)

	before := map[string][]Record{}
	for label, rows := range s.Tabs() {
		before[label] = rows
	}
	orderBefore := append([]string(nil), s.Labels()...)

	s.Close()
	if s.IsOpen() {
		t.Error("Close should hide the panel")
	}
	if s.Len() != 2 {
		t.Error("Close must not discard entries")
	}

	s.Reopen()
	if !s.IsOpen() {
		t.Error("Reopen should show the panel")
	}
	if !reflect.DeepEqual(s.Tabs(), before) {
		t.Errorf("Reopen tabs = %v, want %v", s.Tabs(), before)
	}
	if !reflect.DeepEqual(s.Labels(), orderBefore) {
		t.Errorf("Reopen labels = %v, want %v", s.Labels(), orderBefore)
	}
}

func TestStore_ReopenOnEmptyStoreIsNoop(t *testing.T) {
	s := NewStore()

	notified := 0
	s.Subscribe(func() { notified++ })

	s.Reopen()
	if s.IsOpen() {
		t.Error("Reopen on empty store should not open the panel")
	}
	if notified != 0 {
		t.Errorf("Reopen on empty store notified %d times, want 0", notified)
	}
}

func TestStore_MinimizeMaximizeTouchOnlyFlag(t *testing.T) {
	s := NewStore()
	s.AddFlatResult([]Record{{"k": "v"}}, "Title", "", nil)

	entriesBefore := s.Entries()
	tabsBefore := s.Tabs()

	s.Minimize()
	if !s.IsMinimized() {
		t.Error("Minimize should set the flag")
	}
	s.Maximize()
	if s.IsMinimized() {
		t.Error("Maximize should clear the flag")
	}

	if !reflect.DeepEqual(s.Entries(), entriesBefore) {
		t.Error("minimize/maximize must not touch entries")
	}
	if !reflect.DeepEqual(s.Tabs(), tabsBefore) {
		t.Error("minimize/maximize must not touch derived tabs")
	}
}

// =============================================================================
// RESET TESTS
// =============================================================================

func TestStore_ResetClearsEverything(t *testing.T) {
	s := NewStore()
	s.AddFlatResult([]Record{{"k": "v"}}, "Keyword Research Results", "", nil)
	s.AddTabbedResult(map[string][]Record{"A": nil}, "Technical SEO Audit", "https://x")
	s.Minimize()

	s.Reset()

	if s.Len() != 0 || len(s.Entries()) != 0 {
		t.Error("Reset should clear entries")
	}
	if len(s.Tabs()) != 0 || s.Labels() != nil || s.FlatView() != nil {
		t.Error("Reset should clear derived views")
	}
	if s.IsOpen() || s.IsMinimized() {
		t.Error("Reset should clear visibility flags")
	}

	// Idempotent: reading after a second reset yields the same initial state.
	s.Reset()
	if s.Len() != 0 || s.IsOpen() {
		t.Error("second Reset should be a no-op on initial state")
	}
}

func TestStore_AddAfterResetStartsFresh(t *testing.T) {
	s := NewStore()
	s.AddFlatResult(nil, "Keyword Research Results A", "", nil)
	s.AddFlatResult(nil, "Keyword Research Results B", "", nil)
	s.Reset()

	s.AddFlatResult(nil, "Keyword Research Results C", "", nil)
	// Only one entry now, so no "#n" disambiguation.
	if !reflect.DeepEqual(s.Labels(), []string{"Keywords"}) {
		t.Errorf("Labels after reset = %v, want [Keywords]", s.Labels())
	}
}

// =============================================================================
// NOTIFICATION TESTS
// =============================================================================

func TestStore_NotifiesAfterEveryMutation(t *testing.T) {
	s := NewStore()

	notified := 0
	unsubscribe := s.Subscribe(func() { notified++ })

	s.AddFlatResult(nil, "A", "", nil)
	s.AddTabbedResult(nil, "Technical SEO Audit", "")
	s.Minimize()
	s.Maximize()
	s.Close()
	s.Reopen()
	s.Reset()

	if notified != 7 {
		t.Errorf("notified %d times, want 7", notified)
	}

	unsubscribe()
	s.AddFlatResult(nil, "B", "", nil)
	if notified != 7 {
		t.Error("unsubscribed callback must not fire")
	}
}

func TestStore_NotifyIsSynchronous(t *testing.T) {
	s := NewStore()

	// The derived view must already be updated when the callback runs.
	var labelsSeen []string
	s.Subscribe(func() {
		labelsSeen = append([]string(nil), s.Labels()...)
	})

	s.AddFlatResult(nil, "Ranking Report", "", nil)
	if !reflect.DeepEqual(labelsSeen, []string{"Rankings"}) {
		t.Errorf("labels at notify time = %v, want [Rankings]", labelsSeen)
	}
}
