// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversations as JSON files.
package storage

import (
	"github.com/keywordschat/kwc-tui/internal/model"
	"github.com/keywordschat/kwc-tui/internal/results"
)

// =============================================================================
// LIVE <-> STORED CONVERSION
// =============================================================================

// Snapshot captures a live conversation and its results for persistence.
func Snapshot(conv *model.Conversation, res *results.Store) *StoredConversation {
	stored := &StoredConversation{
		ID:        conv.ID,
		Title:     conv.Title,
		Site:      conv.Site,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}

	for _, msg := range conv.Messages {
		stored.Messages = append(stored.Messages, StoredMessage{
			ID:        msg.ID,
			Role:      msg.Role.String(),
			Content:   msg.GetDisplayContent(),
			Timestamp: msg.Timestamp,
			ResultIDs: msg.ResultIDs,
		})
	}

	if res != nil {
		for _, entry := range res.Entries() {
			stored.Results = append(stored.Results, StoredResult{
				ID:        entry.ID,
				Title:     entry.Title,
				Kind:      string(entry.Kind),
				Rows:      recordsToMaps(entry.Rows),
				Tabs:      tabsToMaps(entry.Tabs),
				SourceURL: entry.SourceURL,
				Metadata:  entry.Metadata,
				CreatedAt: entry.CreatedAt,
			})
		}
	}
	return stored
}

// Restore rebuilds a live conversation from its stored form and replays
// its results into the given store. Replayed entries get fresh IDs, so
// message result references are remapped to match.
func Restore(stored *StoredConversation, res *results.Store) *model.Conversation {
	idMap := make(map[string]string, len(stored.Results))
	if res != nil {
		for _, r := range stored.Results {
			var newID string
			if len(r.Tabs) > 0 {
				newID = res.AddTabbedResult(mapsToTabs(r.Tabs), r.Title, r.SourceURL)
			} else {
				newID = res.AddFlatResult(mapsToRecords(r.Rows), r.Title, results.Kind(r.Kind), r.Metadata)
			}
			idMap[r.ID] = newID
		}
	}

	conv := &model.Conversation{
		ID:        stored.ID,
		Title:     stored.Title,
		Site:      stored.Site,
		CreatedAt: stored.CreatedAt,
		UpdatedAt: stored.UpdatedAt,
	}
	for _, m := range stored.Messages {
		msg := &model.Message{
			ID:        m.ID,
			Role:      model.Role(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp,
		}
		for _, oldID := range m.ResultIDs {
			if newID, ok := idMap[oldID]; ok {
				msg.ResultIDs = append(msg.ResultIDs, newID)
			}
		}
		conv.Messages = append(conv.Messages, msg)
	}
	return conv
}

func recordsToMaps(rows []results.Record) []map[string]any {
	if rows == nil {
		return nil
	}
	out := make([]map[string]any, len(rows))
	for i, r := range rows {
		out[i] = map[string]any(r)
	}
	return out
}

func mapsToRecords(rows []map[string]any) []results.Record {
	out := make([]results.Record, len(rows))
	for i, r := range rows {
		out[i] = results.Record(r)
	}
	return out
}

func tabsToMaps(tabs map[string][]results.Record) map[string][]map[string]any {
	if tabs == nil {
		return nil
	}
	out := make(map[string][]map[string]any, len(tabs))
	for name, rows := range tabs {
		out[name] = recordsToMaps(rows)
	}
	return out
}

func mapsToTabs(tabs map[string][]map[string]any) map[string][]results.Record {
	out := make(map[string][]results.Record, len(tabs))
	for name, rows := range tabs {
		out[name] = mapsToRecords(rows)
	}
	return out
}
