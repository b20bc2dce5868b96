package coach

import (
	"errors"
	"fmt"

	"github.com/mwiater/coach/internal/appconfig"
	"github.com/mwiater/coach/internal/providerfactory"
	"github.com/mwiater/coach/internal/rag"
)

var (
	// newEmbedder and newChatProvider are replaced in tests to avoid network providers.
	newEmbedder     = providerfactory.NewEmbedder
	newChatProvider = providerfactory.NewChatProvider
)

// requireConfig returns the loaded configuration or an error when PersistentPreRunE did not run.
func requireConfig() (*appconfig.Config, error) {
	cfg := GetConfig()
	if cfg == nil {
		return nil, errors.New("configuration is not loaded")
	}
	return cfg, nil
}

// openEngine builds the retrieval engine for the loaded configuration.
func openEngine(cfg *appconfig.Config) (*rag.Engine, func() error, error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("embedding provider: %w", err)
	}
	return rag.NewEngineFromConfig(cfg, embedder)
}
