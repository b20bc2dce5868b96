package rag

import (
	"fmt"

	"github.com/mwiater/coach/internal/appconfig"
)

// OpenStore returns the snapshot store selected by cfg. The returned close
// function releases the store and is always safe to call.
func OpenStore(cfg *appconfig.Config) (Store, func() error, error) {
	switch cfg.Backend() {
	case appconfig.BackendFile:
		return NewFileStore(cfg.CachePath(), cfg.TimestampPath()), func() error { return nil }, nil
	case appconfig.BackendSQLite:
		store, err := NewSQLiteStore(cfg.CachePath())
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite cache %s: %w", cfg.CachePath(), err)
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported cacheBackend %q", cfg.CacheBackend)
	}
}

// NewEngineFromConfig builds an Engine over the configured corpus and cache using embedder.
func NewEngineFromConfig(cfg *appconfig.Config, embedder Embedder) (*Engine, func() error, error) {
	if embedder == nil {
		return nil, nil, fmt.Errorf("embedding provider is required")
	}
	store, closeStore, err := OpenStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	batcher := NewBatchEmbedder(embedder, cfg.BatchSize(), WithRateLimit(cfg.EmbeddingRequestsPerSecond))
	engine := NewEngine(CorpusFile{Path: cfg.CorpusFile()}, batcher, store, WithTopK(cfg.TopK()))
	return engine, closeStore, nil
}
