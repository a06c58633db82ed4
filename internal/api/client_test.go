// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(srv *httptest.Server) *Client {
	c := NewClient("test-token").WithBaseURL(srv.URL)
	c.httpClient = srv.Client()
	c.streamClient = srv.Client()
	return c
}

// =============================================================================
// SEND TESTS
// =============================================================================

func TestSendMessage_DecodesResultPayloads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID header")
		}
		fmt.Fprint(w, `{
			"id": "resp_1",
			"content": "Here are your keywords.",
			"results": [{
				"type": "keywords",
				"title": "Keyword Research Results",
				"rows": [{"keyword": "seo tools", "volume": 12000}]
			}]
		}`)
	}))
	defer srv.Close()

	resp, err := newTestClient(srv).SendMessage(context.Background(), ChatRequest{
		Messages: []ChatMessage{NewUserMessage("find keywords")},
		Site:     "example.com",
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if resp.Content != "Here are your keywords." {
		t.Errorf("content = %q", resp.Content)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(resp.Results))
	}
	payload := resp.Results[0]
	if payload.Type != "keywords" || payload.IsTabbed() {
		t.Errorf("payload = %+v", payload)
	}
	if payload.Rows[0]["keyword"] != "seo tools" {
		t.Errorf("rows = %v", payload.Rows)
	}
}

func TestSendMessage_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error": {"message": "upstream unavailable"}}`)
			return
		}
		fmt.Fprint(w, `{"id": "resp_2", "content": "ok"}`)
	}))
	defer srv.Close()

	resp, err := newTestClient(srv).SendMessage(context.Background(), ChatRequest{
		Messages: []ChatMessage{NewUserMessage("hi")},
	})
	if err != nil {
		t.Fatalf("SendMessage failed after retries: %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("content = %q", resp.Content)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server calls = %d, want 3", got)
	}
}

func TestSendMessage_AuthFailureNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": {"message": "bad token"}}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).SendMessage(context.Background(), ChatRequest{
		Messages: []ChatMessage{NewUserMessage("hi")},
	})
	if !errors.Is(err, ErrAuthFailed) {
		t.Errorf("err = %v, want ErrAuthFailed", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server calls = %d, want 1 (no retry on 401)", got)
	}
}

func TestSendMessage_RedactsTokenInErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		// A misbehaving backend echoing the credential back
		fmt.Fprint(w, `{"error": {"message": "invalid request from test-token"}}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).SendMessage(context.Background(), ChatRequest{
		Messages: []ChatMessage{NewUserMessage("hi")},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), "test-token") {
		t.Errorf("token leaked in error: %v", err)
	}
	if !strings.Contains(err.Error(), "[REDACTED]") {
		t.Errorf("expected redaction marker, got: %v", err)
	}
}

func TestSendMessage_NotConfigured(t *testing.T) {
	c := NewClient("")
	_, err := c.SendMessage(context.Background(), ChatRequest{})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestTokenFingerprint_NeverExposesToken(t *testing.T) {
	c := NewClient("kwc_live_secret")
	fp := c.TokenFingerprint()
	if strings.Contains(fp, "secret") || len(fp) != 8 {
		t.Errorf("fingerprint = %q", fp)
	}
	if NewClient("").TokenFingerprint() != "none" {
		t.Error("empty token should fingerprint as none")
	}
}

func TestWithTimeout(t *testing.T) {
	c := NewClient("tok").WithTimeout(5 * time.Second)
	if c.httpClient.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", c.httpClient.Timeout)
	}
	// The shared pooled client must keep its own timeout.
	if sharedHTTPClient.Timeout != DefaultTimeout {
		t.Errorf("shared client timeout = %v, want %v", sharedHTTPClient.Timeout, DefaultTimeout)
	}

	// Non-positive values keep the current timeout.
	c = NewClient("tok").WithTimeout(0)
	if c.httpClient.Timeout != DefaultTimeout {
		t.Errorf("timeout after WithTimeout(0) = %v, want %v", c.httpClient.Timeout, DefaultTimeout)
	}
}

// =============================================================================
// STREAMING TESTS
// =============================================================================

func TestStreamMessage_DeliversDeltasAndResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"delta\": \"Analyzing \"}\n\n")
		fmt.Fprint(w, "data: {\"delta\": \"rankings.\"}\n\n")
		fmt.Fprint(w, "data: {\"delta\": \"\", \"results\": [{\"type\": \"rankings\", \"title\": \"Ranking Report\", \"rows\": [{\"keyword\": \"seo\", \"position\": 3}]}], \"done\": true}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	var content strings.Builder
	var results []ResultPayload
	err := newTestClient(srv).StreamMessage(context.Background(), ChatRequest{
		Messages: []ChatMessage{NewUserMessage("how are my rankings?")},
	}, func(chunk StreamChunk) {
		content.WriteString(chunk.Delta)
		results = append(results, chunk.Results...)
	})
	if err != nil {
		t.Fatalf("StreamMessage failed: %v", err)
	}
	if content.String() != "Analyzing rankings." {
		t.Errorf("content = %q", content.String())
	}
	if len(results) != 1 || results[0].Title != "Ranking Report" {
		t.Errorf("results = %+v", results)
	}
}

func TestStreamMessage_SkipsMalformedChunks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {not json}\n\n")
		fmt.Fprint(w, "data: {\"delta\": \"ok\", \"done\": true}\n\n")
	}))
	defer srv.Close()

	var content strings.Builder
	err := newTestClient(srv).StreamMessage(context.Background(), ChatRequest{
		Messages: []ChatMessage{NewUserMessage("hi")},
	}, func(chunk StreamChunk) {
		content.WriteString(chunk.Delta)
	})
	if err != nil {
		t.Fatalf("StreamMessage failed: %v", err)
	}
	if content.String() != "ok" {
		t.Errorf("content = %q", content.String())
	}
}

func TestStreamAccumulate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"delta\": \"a\"}\n\n")
		fmt.Fprint(w, "data: {\"delta\": \"b\", \"done\": true}\n\n")
	}))
	defer srv.Close()

	content, results, err := newTestClient(srv).StreamAccumulate(context.Background(), ChatRequest{
		Messages: []ChatMessage{NewUserMessage("hi")},
	})
	if err != nil {
		t.Fatalf("StreamAccumulate failed: %v", err)
	}
	if content != "ab" {
		t.Errorf("content = %q", content)
	}
	if len(results) != 0 {
		t.Errorf("results = %+v", results)
	}
}

// =============================================================================
// SSE READER TESTS
// =============================================================================

func TestSSEReader_MultiLineData(t *testing.T) {
	input := "event: message\ndata: line1\ndata: line2\n\ndata: [DONE]\n\n"
	reader := NewSSEReader(strings.NewReader(input))

	eventType, data, err := reader.ReadEvent()
	if err != nil {
		t.Fatalf("ReadEvent failed: %v", err)
	}
	if eventType != "message" {
		t.Errorf("event type = %q", eventType)
	}
	if string(data) != "line1\nline2" {
		t.Errorf("data = %q", data)
	}

	_, data, err = reader.ReadEvent()
	if err != nil {
		t.Fatalf("second ReadEvent failed: %v", err)
	}
	if string(data) != "[DONE]" {
		t.Errorf("data = %q", data)
	}
}

func TestSSEReader_IgnoresCommentsAndIDs(t *testing.T) {
	input := ": heartbeat\nid: 42\ndata: payload\n\n"
	reader := NewSSEReader(strings.NewReader(input))

	_, data, err := reader.ReadEvent()
	if err != nil {
		t.Fatalf("ReadEvent failed: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("data = %q", data)
	}
}
