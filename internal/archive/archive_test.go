// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package archive

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/keywordschat/kwc-tui/internal/results"
)

func openTestArchive(t *testing.T, maxEntries int) *Archive {
	t.Helper()
	arc, err := Open(filepath.Join(t.TempDir(), "archive.db"), maxEntries)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { arc.Close() })
	return arc
}

func flatEntry(id, title string) *results.Entry {
	return &results.Entry{
		ID:        id,
		Title:     title,
		Kind:      results.KindKeywords,
		Rows:      []results.Record{{"keyword": "seo", "volume": float64(1200)}},
		CreatedAt: time.Now(),
	}
}

func TestArchive_SaveAndRecent(t *testing.T) {
	arc := openTestArchive(t, 0)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		entry := flatEntry(fmt.Sprintf("res_%d", i), fmt.Sprintf("Keyword Research Results %d", i))
		if err := arc.SaveEntry(ctx, "conv_1", entry); err != nil {
			t.Fatalf("SaveEntry failed: %v", err)
		}
	}

	recent, err := arc.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("got %d entries", len(recent))
	}
	// Most recent first
	if recent[0].EntryID != "res_3" || recent[2].EntryID != "res_1" {
		t.Errorf("order = [%s %s %s]", recent[0].EntryID, recent[1].EntryID, recent[2].EntryID)
	}
	if recent[0].RowCount != 1 || recent[0].Kind != "keywords" {
		t.Errorf("meta = %+v", recent[0])
	}
}

func TestArchive_Search(t *testing.T) {
	arc := openTestArchive(t, 0)
	ctx := context.Background()

	arc.SaveEntry(ctx, "conv_1", flatEntry("res_1", "Keyword Research Results"))
	arc.SaveEntry(ctx, "conv_1", flatEntry("res_2", "Ranking Report"))

	matches, err := arc.Search(ctx, "ranking", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 1 || matches[0].EntryID != "res_2" {
		t.Errorf("matches = %+v", matches)
	}
}

func TestArchive_LoadEntry_RoundTrip(t *testing.T) {
	arc := openTestArchive(t, 0)
	ctx := context.Background()

	original := &results.Entry{
		ID:        "res_audit",
		Title:     "Technical SEO Audit",
		Kind:      results.KindTechnicalAudit,
		SourceURL: "https://example.com",
		Tabs: map[string][]results.Record{
			"Crawl Errors": {{"issue": "404", "page": "/old"}},
		},
		CreatedAt: time.Now(),
	}
	if err := arc.SaveEntry(ctx, "conv_1", original); err != nil {
		t.Fatalf("SaveEntry failed: %v", err)
	}

	recent, _ := arc.Recent(ctx, 1)
	loaded, err := arc.LoadEntry(ctx, recent[0].ID)
	if err != nil {
		t.Fatalf("LoadEntry failed: %v", err)
	}
	if loaded.Title != original.Title || loaded.Kind != results.KindTechnicalAudit {
		t.Errorf("loaded = %+v", loaded)
	}
	if !loaded.IsTabbed() || loaded.Tabs["Crawl Errors"][0]["issue"] != "404" {
		t.Errorf("tabs = %v", loaded.Tabs)
	}
	if loaded.SourceURL != "https://example.com" {
		t.Errorf("source url = %q", loaded.SourceURL)
	}
}

func TestArchive_LoadEntry_Missing(t *testing.T) {
	arc := openTestArchive(t, 0)
	_, err := arc.LoadEntry(context.Background(), 999)
	if !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("err = %v, want ErrEntryNotFound", err)
	}
}

func TestArchive_PruneKeepsNewest(t *testing.T) {
	arc := openTestArchive(t, 2)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		arc.SaveEntry(ctx, "conv_1", flatEntry(fmt.Sprintf("res_%d", i), "Keyword Research Results"))
	}

	count, err := arc.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	recent, _ := arc.Recent(ctx, 10)
	if recent[0].EntryID != "res_5" || recent[1].EntryID != "res_4" {
		t.Errorf("kept = [%s %s]", recent[0].EntryID, recent[1].EntryID)
	}
}
