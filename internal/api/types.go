// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
)

// =============================================================================
// CHAT WIRE TYPES
// =============================================================================

// ChatMessage is a single role-tagged message in a conversation.
type ChatMessage struct {
	Role    string `json:"role"`    // "user", "assistant", or "system"
	Content string `json:"content"` // The message content
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) ChatMessage {
	return ChatMessage{Role: "user", Content: content}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: "assistant", Content: content}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) ChatMessage {
	return ChatMessage{Role: "system", Content: content}
}

// ChatRequest is a request to the chat endpoint. Site scopes the
// conversation to a tracked domain so keyword and ranking queries resolve
// against the right project.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
	Site     string        `json:"site,omitempty"`
	Stream   bool          `json:"stream"`
}

// ResultPayload is a structured result attached to an assistant reply.
// Flat results carry Rows; technical audits carry Tabs keyed by section
// name (one of rows/tabs is set, never both).
type ResultPayload struct {
	Type      string                      `json:"type"` // "data", "keywords", "rankings", "technical_audit"
	Title     string                      `json:"title"`
	Rows      []map[string]any            `json:"rows,omitempty"`
	Tabs      map[string][]map[string]any `json:"tabs,omitempty"`
	SourceURL string                      `json:"source_url,omitempty"`
}

// IsTabbed reports whether the payload is sectioned (a technical audit).
func (p *ResultPayload) IsTabbed() bool {
	return len(p.Tabs) > 0
}

// ChatResponse is a non-streaming reply from the chat endpoint.
type ChatResponse struct {
	ID      string          `json:"id"`
	Content string          `json:"content"`
	Results []ResultPayload `json:"results,omitempty"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// apiErrorResponse is the error envelope returned by the backend.
type apiErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotConfigured indicates the API token is not set.
	ErrNotConfigured = errors.New("API token not configured, run /login first")

	// ErrAuthFailed indicates an invalid or expired API token.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrSiteNotFound indicates the requested site is not tracked by the account.
	ErrSiteNotFound = errors.New("site not tracked")
)

// APIError is a structured error returned by the keywordschat backend.
type APIError struct {
	Code    string
	Message string
	Status  int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("API error (HTTP %d): %s", e.Status, e.Message)
}
