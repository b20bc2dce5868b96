// internal/providers/ollama/provider.go
// Package ollama provides embedding and chat providers backed by Ollama HTTP endpoints.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mwiater/coach/internal/appconfig"
	"github.com/mwiater/coach/internal/logging"
	"github.com/mwiater/coach/internal/providers"
)

var (
	_ providers.ChatProvider = (*Provider)(nil)
	_ providers.Embedder     = (*Provider)(nil)
)

// Provider implements providers.ChatProvider and providers.Embedder using Ollama HTTP APIs.
type Provider struct {
	client         *http.Client
	baseURL        string
	timeout        time.Duration
	embeddingModel string
	chatModel      string
}

// New constructs a Provider configured with the application's request timeout.
func New(cfg *appconfig.Config) *Provider {
	timeout := cfg.RequestTimeout()
	return &Provider{
		client: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{ForceAttemptHTTP2: false},
		},
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.OllamaURL), "/"),
		timeout:        timeout,
		embeddingModel: cfg.EmbeddingModel,
		chatModel:      cfg.ChatModel,
	}
}

type embedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float64 `json:"embeddings"`
}

// chatResponse is the body of a non-streamed /api/chat call.
type chatResponse struct {
	Model   string `json:"model"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done            bool  `json:"done"`
	TotalDuration   int64 `json:"total_duration"`
	PromptEvalCount int   `json:"prompt_eval_count"`
	EvalCount       int   `json:"eval_count"`
}

// EmbedBatch embeds all texts with a single /api/embed call.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}
	payload := map[string]any{
		"model": p.embeddingModel,
		"input": texts,
	}
	var result embedResponse
	if err := p.post(ctx, "/api/embed", p.embeddingModel, payload, &result); err != nil {
		return nil, err
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama: /api/embed returned %d embeddings for %d inputs", len(result.Embeddings), len(texts))
	}
	return result.Embeddings, nil
}

// Complete issues a non-streamed chat request.
func (p *Provider) Complete(ctx context.Context, req providers.ChatRequest) (providers.ChatResponse, error) {
	model := req.Model
	if strings.TrimSpace(model) == "" {
		model = p.chatModel
	}
	messages := req.Messages
	if len(messages) == 0 {
		messages = []providers.ChatMessage{}
	}
	payload := map[string]any{
		"model":    model,
		"messages": messages,
		"stream":   false,
	}

	start := time.Now()
	var result chatResponse
	if err := p.post(ctx, "/api/chat", model, payload, &result); err != nil {
		return providers.ChatResponse{}, err
	}

	modelName := result.Model
	if modelName == "" {
		modelName = model
	}
	role := result.Message.Role
	if role == "" {
		role = providers.RoleAssistant
	}
	return providers.ChatResponse{
		Message:          providers.ChatMessage{Role: role, Content: result.Message.Content},
		Model:            modelName,
		PromptTokens:     result.PromptEvalCount,
		CompletionTokens: result.EvalCount,
		Duration:         time.Since(start),
	}, nil
}

func (p *Provider) post(ctx context.Context, path, model string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	logging.LogRequest("COACH->LLM", p.baseURL, model, body)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	logging.LogRequest("LLM->COACH", p.baseURL, model, respBody)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama: %s returned %s: %s", path, resp.Status, strings.TrimSpace(string(respBody)))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("ollama: decode %s response: %w", path, err)
	}
	return nil
}

// Close releases any resources held by the provider.
func (p *Provider) Close() error {
	return nil
}
