// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/keywordschat/kwc-tui/internal/api"
	"github.com/keywordschat/kwc-tui/internal/model"
	"github.com/keywordschat/kwc-tui/internal/results"
)

// =============================================================================
// STREAM MESSAGES
// =============================================================================

// streamChunkMsg carries one SSE chunk into the Update loop.
type streamChunkMsg struct {
	chunk api.StreamChunk
}

// streamDoneMsg signals clean stream completion.
type streamDoneMsg struct{}

// streamFailedMsg signals a stream error. Partial content already applied
// to the conversation stays.
type streamFailedMsg struct {
	err error
}

// clearStatusMsg expires a transient status bar message.
type clearStatusMsg struct{}

// archiveSavedMsg reports a background archive write.
type archiveSavedMsg struct {
	err error
}

// =============================================================================
// STREAM SESSION
// =============================================================================

// streamSession bridges the SSE goroutine and the Bubble Tea loop. The
// goroutine only writes to the channel; all conversation and store
// mutation happens in Update.
type streamSession struct {
	ch     chan tea.Msg
	cancel context.CancelFunc
}

// send delivers a message to the Update loop, giving up once the stream
// context is cancelled. After cancelStream nothing drains the channel, so
// an unguarded send could block the goroutine forever on a full buffer.
func (s *streamSession) send(ctx context.Context, msg tea.Msg) bool {
	select {
	case s.ch <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}

// startStream begins streaming a response to the given prompt. The
// conversation must already hold the user message and a streaming
// assistant message.
func (m *Model) startStream() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	session := &streamSession{
		ch:     make(chan tea.Msg, 64),
		cancel: cancel,
	}
	m.stream = session

	req := m.buildRequest()
	client := m.client

	go func() {
		defer close(session.ch)
		err := client.StreamMessage(ctx, req, func(chunk api.StreamChunk) {
			session.send(ctx, streamChunkMsg{chunk: chunk})
		})
		if err != nil {
			session.send(ctx, streamFailedMsg{err: err})
			return
		}
		session.send(ctx, streamDoneMsg{})
	}()

	return listenStream(session)
}

// listenStream waits for the next message from the stream goroutine.
func listenStream(s *streamSession) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-s.ch
		if !ok {
			return nil
		}
		return msg
	}
}

// cancelStream aborts an in-flight stream. The assistant message keeps
// whatever content already arrived.
func (m *Model) cancelStream() {
	if m.stream != nil {
		m.stream.cancel()
		m.stream = nil
	}
}

// buildRequest converts the conversation history to the wire shape.
func (m *Model) buildRequest() api.ChatRequest {
	history := m.conversation.GetHistory()
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
		Site:     m.conversation.Site,
		Stream:   true,
	}
}

// =============================================================================
// RESULT DISPATCH
// =============================================================================

// dispatchPayloads feeds result payloads into the results store, links the
// new entries to the given message, and queues archive writes. Returns the
// follow-up commands.
func (m *Model) dispatchPayloads(payloads []api.ResultPayload, msg *model.Message) []tea.Cmd {
	var cmds []tea.Cmd
	wasOpen := m.results.IsOpen()
	for _, payload := range payloads {
		var entryID string
		if payload.IsTabbed() {
			entryID = m.results.AddTabbedResult(
				mapsToTabs(payload.Tabs), payload.Title, payload.SourceURL)
		} else {
			entryID = m.results.AddFlatResult(
				mapsToRecords(payload.Rows), payload.Title, kindForType(payload.Type), nil)
		}
		if msg != nil {
			msg.AttachResult(entryID)
		}
		if cmd := m.archiveEntry(entryID); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	// The store opens the panel on every add; with auto-open disabled the
	// panel stays as the user left it until /panel or ctrl+r.
	if len(payloads) > 0 && !wasOpen && m.cfg != nil && !m.cfg.UI.PanelOpenOnResult {
		m.results.Close()
	}
	return cmds
}

// archiveEntry queues a background archive write for a new entry.
func (m *Model) archiveEntry(entryID string) tea.Cmd {
	if m.archive == nil {
		return nil
	}
	entry := m.results.Entry(entryID)
	if entry == nil {
		return nil
	}
	conversationID := m.conversation.ID
	arch := m.archive
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		err := arch.SaveEntry(ctx, conversationID, entry)
		return archiveSavedMsg{err: err}
	}
}

// kindForType maps a wire result type to the store kind.
func kindForType(t string) results.Kind {
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

// mapsToRecords converts wire rows to store records.
func mapsToRecords(rows []map[string]any) []results.Record {
	out := make([]results.Record, len(rows))
	for i, row := range rows {
		out[i] = results.Record(row)
	}
	return out
}

// mapsToTabs converts wire sub-tables to store records.
func mapsToTabs(tabs map[string][]map[string]any) map[string][]results.Record {
	out := make(map[string][]results.Record, len(tabs))
	for name, rows := range tabs {
		out[name] = mapsToRecords(rows)
	}
	return out
}
