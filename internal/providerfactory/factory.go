// internal/providerfactory/factory.go
package providerfactory

import (
	"fmt"
	"strings"

	"github.com/mwiater/coach/internal/appconfig"
	"github.com/mwiater/coach/internal/logging"
	"github.com/mwiater/coach/internal/providers"
	"github.com/mwiater/coach/internal/providers/ollama"
	"github.com/mwiater/coach/internal/providers/openai"
)

// NewEmbedder returns the embedding provider named by embeddingProvider.
func NewEmbedder(cfg *appconfig.Config) (providers.Embedder, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config provided to provider factory")
	}
	name := normalize(cfg.EmbeddingProvider)
	switch name {
	case appconfig.ProviderOpenAI:
		provider, err := openai.New(cfg)
		if err != nil {
			return nil, err
		}
		logging.LogEvent("embedding provider ready: openai model=%s", cfg.EmbeddingModel)
		return provider, nil
	case appconfig.ProviderOllama:
		logging.LogEvent("embedding provider ready: ollama url=%s model=%s", cfg.OllamaURL, cfg.EmbeddingModel)
		return ollama.New(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported embeddingProvider %q", cfg.EmbeddingProvider)
	}
}

// NewChatProvider returns the chat-completion provider named by chatProvider.
func NewChatProvider(cfg *appconfig.Config) (providers.ChatProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config provided to provider factory")
	}
	name := normalize(cfg.ChatProvider)
	switch name {
	case appconfig.ProviderOpenAI:
		provider, err := openai.New(cfg)
		if err != nil {
			return nil, err
		}
		logging.LogEvent("chat provider ready: openai model=%s", cfg.ChatModel)
		return provider, nil
	case appconfig.ProviderOllama:
		logging.LogEvent("chat provider ready: ollama url=%s model=%s", cfg.OllamaURL, cfg.ChatModel)
		return ollama.New(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported chatProvider %q", cfg.ChatProvider)
	}
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return appconfig.ProviderOpenAI
	}
	return name
}
