package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestChatCompletionSuccess(t *testing.T) {
	t.Parallel()

	var gotReq providerChatRequest
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}

		gotAuth = r.Header.Get("Authorization")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if err := json.Unmarshal(body, &gotReq); err != nil {
			t.Fatalf("unmarshal request: %v", err)
		}

		resp := providerChatResponse{
			ID:      "chatcmpl-1",
			Object:  "chat.completion",
			Created: time.Unix(1_700_000_000, 0).Unix(),
			Model:   "qwen-plus",
			Choices: []providerChatChoice{
				{
					Index: 0,
					Message: ChatMessage{
						Role:    RoleAssistant,
						Content: `{"match_score": 80}`,
					},
					FinishReason: "stop",
				},
			},
			Usage: &providerUsage{
				PromptTokens:     3,
				CompletionTokens: 2,
				TotalTokens:      5,
			},
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		BaseURL: srv.URL,
		APIKey:  "test-key",
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer closeClient(client)

	req := &ChatRequest{
		Model: "qwen-plus",
		Messages: []ChatMessage{
			{Role: RoleUser, Content: "ping"},
		},
		Temperature: 0.1,
	}

	resp, err := client.ChatCompletion(context.Background(), req)
	if err != nil {
		t.Fatalf("ChatCompletion: %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Fatalf("unexpected Authorization header: %s", gotAuth)
	}
	if gotReq.Stream {
		t.Fatalf("request should not set stream=true")
	}
	if gotReq.Model != req.Model {
		t.Fatalf("expected model %s, got %s", req.Model, gotReq.Model)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Content != "ping" {
		t.Fatalf("unexpected request messages: %#v", gotReq.Messages)
	}

	if resp == nil || len(resp.Choices) != 1 {
		t.Fatalf("unexpected response: %#v", resp)
	}
	if resp.Choices[0].Message.Content != `{"match_score": 80}` {
		t.Fatalf("unexpected response message: %#v", resp.Choices[0].Message)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 5 {
		t.Fatalf("usage not mapped correctly: %#v", resp.Usage)
	}
}

func TestChatCompletionMissingAPIKey(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("server should not be called without an API key")
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer closeClient(client)

	_, err = client.ChatCompletion(context.Background(), &ChatRequest{
		Model:    "qwen-plus",
		Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
	})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestChatCompletionValidationError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("server should not be called for invalid request")
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		BaseURL: srv.URL,
		APIKey:  "key",
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer closeClient(client)

	_, err = client.ChatCompletion(context.Background(), &ChatRequest{})
	if err == nil || !strings.Contains(err.Error(), "invalid request") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestChatCompletionSingleAttemptByDefault(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		BaseURL: srv.URL,
		APIKey:  "key",
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer closeClient(client)

	_, err = client.ChatCompletion(context.Background(), &ChatRequest{
		Model:    "qwen-plus",
		Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
	})
	if err == nil {
		t.Fatalf("expected upstream error")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single upstream attempt, got %d", got)
	}
}

func TestChatCompletionNoChoices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","choices":[]}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		BaseURL: srv.URL,
		APIKey:  "key",
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer closeClient(client)

	_, err = client.ChatCompletion(context.Background(), &ChatRequest{
		Model:    "qwen-plus",
		Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
	})
	if err == nil || !strings.Contains(err.Error(), "no choices") {
		t.Fatalf("expected no-choices error, got %v", err)
	}
}

func closeClient(c Client) {
	if closer, ok := c.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}
