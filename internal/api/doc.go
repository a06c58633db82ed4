// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the keywordschat backend client.
//
// The backend speaks a chat-completions style protocol: a conversation is
// sent as a list of role-tagged messages and the assistant reply comes back
// either as a single JSON response or as a Server-Sent Events stream.
// Replies may carry structured result payloads (keyword tables, ranking
// reports, technical audits) alongside the prose answer.
//
// # Key Types
//
//   - Client: pooled HTTP client with retries and client-side rate limiting
//   - ChatRequest / ChatResponse: the chat completions wire types
//   - ResultPayload: a structured result attached to an assistant reply
//   - StreamChunk: a single SSE delta during streaming
//
// # Usage
//
//	client := api.NewClient(token).WithBaseURL(cfg.API.BaseURL)
//	resp, err := client.SendMessage(ctx, req)
package api
