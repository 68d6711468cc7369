package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func openRouterTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func chatCompletionBody(content string) map[string]any {
	return map[string]any{
		"id":    "gen-123",
		"model": "openai/gpt-4o-mini",
		"choices": []map[string]any{
			{
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     120,
			"completion_tokens": 40,
			"total_tokens":      160,
			"cost":              0.00012,
		},
	}
}

func TestOpenRouterChat(t *testing.T) {
	var gotAuth, gotPath string
	var gotReq openRouterRequest

	srv := openRouterTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletionBody("answer: hi"))
	})

	client := NewOpenRouterClient(OpenRouterConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
	})

	result, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{
			{Role: "system", Content: "You are terse."},
			{Role: "user", Content: "Say hi."},
		},
		Model:       "openai/gpt-4o-mini",
		Temperature: 0.2,
		MaxTokens:   256,
	})
	if err != nil {
		t.Fatalf("Chat() error: %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotPath != "/chat/completions" {
		t.Errorf("path = %q", gotPath)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Errorf("request messages = %#v", gotReq.Messages)
	}
	if gotReq.Usage == nil || !gotReq.Usage.Include {
		t.Errorf("usage accounting not requested: %#v", gotReq.Usage)
	}

	if !result.Success {
		t.Fatalf("result not successful: %+v", result)
	}
	if result.Content != "answer: hi" {
		t.Errorf("Content = %q", result.Content)
	}
	if result.PromptTokens != 120 || result.CompletionTokens != 40 || result.TotalTokens != 160 {
		t.Errorf("token counts = %d/%d/%d", result.PromptTokens, result.CompletionTokens, result.TotalTokens)
	}
	if result.CostUSD != 0.00012 {
		t.Errorf("CostUSD = %v", result.CostUSD)
	}
	if result.RequestID == "" {
		t.Error("RequestID not assigned")
	}
}

func TestOpenRouterChat_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	srv := openRouterTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "upstream overloaded", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletionBody("ok"))
	})

	client := NewOpenRouterClient(OpenRouterConfig{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		RetryDelay: time.Millisecond,
	})

	result, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("Chat() error after retry: %v", err)
	}
	if result.Content != "ok" {
		t.Errorf("Content = %q", result.Content)
	}
	if calls.Load() != 2 {
		t.Errorf("server calls = %d, want 2", calls.Load())
	}
}

func TestOpenRouterChat_NonRetryableStatus(t *testing.T) {
	srv := openRouterTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	})

	client := NewOpenRouterClient(OpenRouterConfig{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		RetryDelay: time.Millisecond,
	})

	result, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})
	if err == nil {
		t.Fatal("Chat() succeeded on 400 response")
	}
	if result.Success {
		t.Error("result marked successful on error")
	}
	if result.ErrorType != "http_error" {
		t.Errorf("ErrorType = %q", result.ErrorType)
	}
}

func TestOpenRouterChat_StructuredOutputParsing(t *testing.T) {
	srv := openRouterTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletionBody("```json\n{\"answer\": \"hi\"}\n```"))
	})

	client := NewOpenRouterClient(OpenRouterConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
	})

	result, err := client.Chat(context.Background(), &ChatRequest{
		Messages:       []Message{{Role: "user", Content: "hello"}},
		ResponseFormat: StructuredResponseFormat(json.RawMessage(`{"name":"t","strict":true,"schema":{"type":"object"}}`)),
	})
	if err != nil {
		t.Fatalf("Chat() error: %v", err)
	}
	if string(result.ParsedJSON) != `{"answer":"hi"}` {
		t.Errorf("ParsedJSON = %s", result.ParsedJSON)
	}
}

func TestRateLimiter_TryConsume(t *testing.T) {
	limiter := NewRateLimiter(60)
	consumed := 0
	for limiter.TryConsume() {
		consumed++
	}
	if consumed != 60 {
		t.Fatalf("consumed %d tokens from a 60-token bucket", consumed)
	}

	status := limiter.Status()
	if status.TotalConsumed != 60 {
		t.Errorf("TotalConsumed = %d", status.TotalConsumed)
	}
	if status.TimeUntilToken <= 0 {
		t.Error("drained limiter should report a wait time")
	}
}

func TestRateLimiter_Record429Drains(t *testing.T) {
	limiter := NewRateLimiter(60)
	limiter.Record429(time.Second)
	if limiter.TryConsume() {
		t.Fatal("TryConsume succeeded immediately after Record429 drain")
	}
}
