// internal/providerfactory/factory_test.go
package providerfactory

import (
	"testing"

	"github.com/mwiater/coach/internal/appconfig"
	"github.com/mwiater/coach/internal/providers/ollama"
	"github.com/mwiater/coach/internal/providers/openai"
)

func TestNewChatProviderErrorsOnNilConfig(t *testing.T) {
	if _, err := NewChatProvider(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := NewEmbedder(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestNewEmbedderSelectsOllama(t *testing.T) {
	cfg := &appconfig.Config{EmbeddingProvider: " Ollama ", OllamaURL: "http://localhost:11434"}

	embedder, err := NewEmbedder(cfg)
	if err != nil {
		t.Fatalf("NewEmbedder returned error: %v", err)
	}
	if _, ok := embedder.(*ollama.Provider); !ok {
		t.Fatalf("expected *ollama.Provider, got %T", embedder)
	}
}

func TestNewChatProviderDefaultsToOpenAI(t *testing.T) {
	cfg := &appconfig.Config{OpenAIAPIKey: "test-key", ChatModel: "gpt-4o-mini"}

	provider, err := NewChatProvider(cfg)
	if err != nil {
		t.Fatalf("NewChatProvider returned error: %v", err)
	}
	if _, ok := provider.(*openai.Provider); !ok {
		t.Fatalf("expected *openai.Provider, got %T", provider)
	}
}

func TestOpenAIRequiresKey(t *testing.T) {
	cfg := &appconfig.Config{EmbeddingProvider: appconfig.ProviderOpenAI, ChatProvider: appconfig.ProviderOpenAI}

	if _, err := NewEmbedder(cfg); err == nil {
		t.Fatal("expected error without API key")
	}
	if _, err := NewChatProvider(cfg); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestUnsupportedProvider(t *testing.T) {
	cfg := &appconfig.Config{EmbeddingProvider: "llamacpp", ChatProvider: "mcp"}

	if _, err := NewEmbedder(cfg); err == nil {
		t.Fatal("expected error for unsupported embedding provider")
	}
	if _, err := NewChatProvider(cfg); err == nil {
		t.Fatal("expected error for unsupported chat provider")
	}
}
