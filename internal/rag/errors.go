package rag

import "errors"

var (
	// ErrCorpusUnavailable means the corpus source is missing or not an array of articles.
	ErrCorpusUnavailable = errors.New("corpus unavailable")
	// ErrEmbeddingProvider wraps any failure of the external embedding call.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrCacheCorrupt means a stored snapshot exists but cannot be decoded into an aligned snapshot.
	ErrCacheCorrupt = errors.New("embedding cache corrupt")
	// ErrNoCacheAvailable means no snapshot has been built yet.
	ErrNoCacheAvailable = errors.New("no embeddings available yet")
)
