// internal/providers/openai/provider.go
// Package openai provides embedding and chat providers backed by the OpenAI API.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mwiater/coach/internal/appconfig"
	"github.com/mwiater/coach/internal/logging"
	"github.com/mwiater/coach/internal/providers"
	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultBaseURL is used when no openAIBaseURL is configured.
const DefaultBaseURL = "https://api.openai.com/v1/"

var (
	_ providers.ChatProvider = (*Provider)(nil)
	_ providers.Embedder     = (*Provider)(nil)
)

// Provider implements providers.ChatProvider and providers.Embedder with the
// official SDK. Retries are disabled so a failing call surfaces immediately.
type Provider struct {
	client         sdk.Client
	baseURL        string
	embeddingModel string
	chatModel      string
}

// New constructs a Provider from the application configuration.
func New(cfg *appconfig.Config) (*Provider, error) {
	apiKey := strings.TrimSpace(cfg.OpenAIAPIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("openai: API key is required (set openAIAPIKey or OPENAI_API_KEY)")
	}
	baseURL := normalizeBaseURL(cfg.OpenAIBaseURL)

	client := sdk.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}),
	)
	return &Provider{
		client:         client,
		baseURL:        baseURL,
		embeddingModel: cfg.EmbeddingModel,
		chatModel:      cfg.ChatModel,
	}, nil
}

func normalizeBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

// EmbedBatch embeds texts in a single request. Results are placed by the
// index the API reports, not by response order.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}
	logging.LogRequest("COACH->EMBED", p.baseURL, p.embeddingModel, map[string]any{"inputs": len(texts)})

	resp, err := p.client.Embeddings.New(ctx, sdk.EmbeddingNewParams{
		Input:          sdk.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model:          sdk.EmbeddingModel(p.embeddingModel),
		EncodingFormat: sdk.EmbeddingNewParamsEncodingFormatFloat,
	})
	if err != nil {
		return nil, fmt.Errorf("openai: embeddings: %w", err)
	}
	logging.LogRequest("EMBED->COACH", p.baseURL, resp.Model, map[string]any{
		"vectors":       len(resp.Data),
		"prompt_tokens": resp.Usage.PromptTokens,
	})

	vectors := make([][]float64, len(texts))
	for _, item := range resp.Data {
		idx := int(item.Index)
		if idx < 0 || idx >= len(texts) {
			return nil, fmt.Errorf("openai: embedding index %d out of range for %d inputs", idx, len(texts))
		}
		if vectors[idx] != nil {
			return nil, fmt.Errorf("openai: duplicate embedding for input %d", idx)
		}
		vectors[idx] = item.Embedding
	}
	for i, vec := range vectors {
		if vec == nil {
			return nil, fmt.Errorf("openai: no embedding returned for input %d", i)
		}
	}
	return vectors, nil
}

// Complete sends a chat completion request.
func (p *Provider) Complete(ctx context.Context, req providers.ChatRequest) (providers.ChatResponse, error) {
	model := req.Model
	if strings.TrimSpace(model) == "" {
		model = p.chatModel
	}
	messages := make([]sdk.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case providers.RoleSystem:
			messages = append(messages, sdk.SystemMessage(msg.Content))
		case providers.RoleAssistant:
			messages = append(messages, sdk.AssistantMessage(msg.Content))
		case providers.RoleUser:
			messages = append(messages, sdk.UserMessage(msg.Content))
		default:
			return providers.ChatResponse{}, fmt.Errorf("openai: unsupported message role %q", msg.Role)
		}
	}
	logging.LogRequest("COACH->LLM", p.baseURL, model, req.Messages)

	start := time.Now()
	completion, err := p.client.Chat.Completions.New(ctx, sdk.ChatCompletionNewParams{
		Model:    sdk.ChatModel(model),
		Messages: messages,
	})
	if err != nil {
		return providers.ChatResponse{}, fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return providers.ChatResponse{}, fmt.Errorf("openai: no response choices returned")
	}
	content := completion.Choices[0].Message.Content
	logging.LogRequest("LLM->COACH", p.baseURL, completion.Model, content)

	return providers.ChatResponse{
		Message:          providers.ChatMessage{Role: providers.RoleAssistant, Content: content},
		Model:            completion.Model,
		PromptTokens:     int(completion.Usage.PromptTokens),
		CompletionTokens: int(completion.Usage.CompletionTokens),
		Duration:         time.Since(start),
	}, nil
}

// Close releases any resources held by the provider.
func (p *Provider) Close() error {
	return nil
}
