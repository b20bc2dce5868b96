// internal/providers/ollama/provider_test.go
package ollama

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mwiater/coach/internal/appconfig"
	"github.com/mwiater/coach/internal/providers"
)

func newTestProvider(server *httptest.Server) *Provider {
	return New(&appconfig.Config{
		OllamaURL:      server.URL + "/",
		EmbeddingModel: "nomic-embed-text",
		ChatModel:      "llama3",
		TimeoutSeconds: 5,
	})
}

// TestEmbedBatchSendsAllInputs verifies a batch is sent in one request and returned in order.
func TestEmbedBatchSendsAllInputs(t *testing.T) {
	t.Parallel()

	var capturedBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		capturedBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"nomic-embed-text","embeddings":[[1,0],[0,1]]}`))
	}))
	defer server.Close()

	vectors, err := newTestProvider(server).EmbedBatch(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("EmbedBatch returned error: %v", err)
	}
	if len(vectors) != 2 || vectors[0][0] != 1 || vectors[1][1] != 1 {
		t.Fatalf("unexpected vectors: %v", vectors)
	}

	var payload map[string]any
	if err := json.Unmarshal(capturedBody, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload["model"] != "nomic-embed-text" {
		t.Fatalf("unexpected model: %v", payload["model"])
	}
	if input, ok := payload["input"].([]any); !ok || len(input) != 2 {
		t.Fatalf("expected two inputs, got %v", payload["input"])
	}
}

// TestEmbedBatchCountMismatch ensures a short response is an error.
func TestEmbedBatchCountMismatch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[[1,0]]}`))
	}))
	defer server.Close()

	if _, err := newTestProvider(server).EmbedBatch(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatalf("expected error for missing embedding")
	}
}

// TestEmbedBatchHTTPError checks that non-200 responses surface the status and body.
func TestEmbedBatchHTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model not found"}`))
	}))
	defer server.Close()

	_, err := newTestProvider(server).EmbedBatch(context.Background(), []string{"a"})
	if err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Fatalf("expected model not found error, got %v", err)
	}
}

// TestCompleteDisablesStreaming verifies the chat payload and response mapping.
func TestCompleteDisablesStreaming(t *testing.T) {
	t.Parallel()

	var capturedBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		capturedBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3","message":{"role":"assistant","content":"final"},"done":true,"prompt_eval_count":7,"eval_count":3}`))
	}))
	defer server.Close()

	resp, err := newTestProvider(server).Complete(context.Background(), providers.ChatRequest{
		Messages: []providers.ChatMessage{{Role: providers.RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if resp.Message.Content != "final" || resp.Model != "llama3" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.PromptTokens != 7 || resp.CompletionTokens != 3 {
		t.Fatalf("unexpected token counts: %+v", resp)
	}

	var payload map[string]any
	if err := json.Unmarshal(capturedBody, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if stream, ok := payload["stream"].(bool); !ok || stream {
		t.Fatalf("expected stream=false, got %v", payload["stream"])
	}
	if payload["model"] != "llama3" {
		t.Fatalf("expected configured model, got %v", payload["model"])
	}
}
