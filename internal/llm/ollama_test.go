package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOllamaProvider_Generate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("expected path /api/chat, got %s", r.URL.Path)
		}

		var req ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("expected model test-model, got %s", req.Model)
		}
		if req.Stream {
			t.Errorf("streaming must be disabled")
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		if req.Options.NumPredict != 700 {
			t.Errorf("expected num_predict 700, got %d", req.Options.NumPredict)
		}

		resp := ollamaChatResponse{
			Model:           "test-model",
			Message:         ollamaMessage{Role: "assistant", Content: "  {\"ok\": true}  "},
			Done:            true,
			PromptEvalCount: 50,
			EvalCount:       25,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "test-model"})
	if err != nil {
		t.Fatalf("NewOllamaProvider failed: %v", err)
	}

	resp, err := provider.Generate(context.Background(), GenerateRequest{
		System: "system instruction",
		Prompt: "user payload",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.Text != `{"ok": true}` {
		t.Errorf("response not trimmed: %q", resp.Text)
	}
	if resp.TokensUsed != 75 {
		t.Errorf("expected 75 tokens, got %d", resp.TokensUsed)
	}
	if resp.Model != "test-model" {
		t.Errorf("model not carried: %q", resp.Model)
	}
}

func TestOllamaProvider_Generate_TokenEstimate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := ollamaChatResponse{
			Model:   "test-model",
			Message: ollamaMessage{Role: "assistant", Content: "four char groups here"},
			Done:    true,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, _ := NewOllamaProvider(Config{BaseURL: server.URL, Model: "test-model"})
	resp, err := provider.Generate(context.Background(), GenerateRequest{System: "sys", Prompt: "user"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.TokensUsed == 0 {
		t.Errorf("expected estimated token count when server reports none")
	}
}

func TestOllamaProvider_Generate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(ollamaError{Error: "model not found"})
	}))
	defer server.Close()

	provider, _ := NewOllamaProvider(Config{BaseURL: server.URL, Model: "missing-model"})
	_, err := provider.Generate(context.Background(), GenerateRequest{System: "s", Prompt: "u"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "model not found") {
		t.Errorf("server error not surfaced: %v", err)
	}
}

func TestOllamaProvider_Generate_RequiresModel(t *testing.T) {
	provider, _ := NewOllamaProvider(Config{})
	_, err := provider.Generate(context.Background(), GenerateRequest{System: "s", Prompt: "u"})
	if err == nil || !strings.Contains(err.Error(), "model must be specified") {
		t.Errorf("expected model requirement error, got %v", err)
	}
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("expected path /api/tags, got %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))

	provider, _ := NewOllamaProvider(Config{BaseURL: server.URL})
	if !provider.IsAvailable(context.Background()) {
		t.Errorf("expected available")
	}

	server.Close()
	if provider.IsAvailable(context.Background()) {
		t.Errorf("expected unavailable after server shutdown")
	}
}

func TestOllamaProvider_Name(t *testing.T) {
	provider, _ := NewOllamaProvider(Config{})
	if provider.Name() != "ollama" {
		t.Errorf("unexpected name %q", provider.Name())
	}
}
