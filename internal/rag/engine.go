package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mwiater/coach/internal/logging"
	"go.uber.org/zap"
)

// Engine is the retrieval entry point for the answer generator and the CLI.
// It owns the live in-memory snapshot; the Store owns the durable copy.
type Engine struct {
	corpus   CorpusSource
	embedder *BatchEmbedder
	store    Store
	topK     int
	now      func() time.Time

	buildMu sync.Mutex
	current atomic.Pointer[Snapshot]
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithTopK sets the number of passages AnswerQuery returns.
func WithTopK(k int) EngineOption {
	return func(e *Engine) {
		if k > 0 {
			e.topK = k
		}
	}
}

// WithClock replaces the clock used to stamp new snapshots.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine wires the corpus, embedding generator and store together.
func NewEngine(corpus CorpusSource, embedder *BatchEmbedder, store Store, opts ...EngineOption) *Engine {
	e := &Engine{
		corpus:   corpus,
		embedder: embedder,
		store:    store,
		topK:     3,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot returns the current snapshot. With forceRebuild the corpus is
// re-embedded and saved before the new snapshot is published; otherwise the
// in-memory or stored snapshot is reused verbatim and ErrNoCacheAvailable is
// returned when none exists. A failed rebuild leaves the previous state untouched.
func (e *Engine) Snapshot(ctx context.Context, forceRebuild bool, progress ProgressFunc) (*Snapshot, error) {
	if forceRebuild {
		return e.Rebuild(ctx, progress)
	}
	if snap := e.current.Load(); snap != nil {
		return snap, nil
	}

	snap, ok, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoCacheAvailable
	}
	e.current.CompareAndSwap(nil, snap)
	logging.Logger().Info("embeddings loaded from cache",
		zap.Int("documents", snap.Len()),
		zap.String("as_of", snap.CreatedAt()))
	return e.current.Load(), nil
}

// Rebuild reads the corpus, embeds every document, saves and publishes the result.
func (e *Engine) Rebuild(ctx context.Context, progress ProgressFunc) (*Snapshot, error) {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	start := time.Now()
	docs, err := e.corpus.Load(ctx)
	if err != nil {
		return nil, err
	}
	logging.Logger().Info("rebuilding embeddings",
		zap.Int("documents", len(docs)),
		zap.Int("batch_size", e.embedder.BatchSize()))

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.CorpusText()
	}
	vectors, err := e.embedder.Embed(ctx, texts, progress)
	if err != nil {
		logging.Logger().Error("embedding rebuild failed", zap.Error(err))
		return nil, err
	}

	snap, err := newSnapshotFromDocuments(docs, vectors, e.now().Format(TimestampLayout))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingProvider, err)
	}
	if err := e.store.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("save embedding cache: %w", err)
	}
	e.current.Store(snap)

	logging.Logger().Info("embeddings rebuilt",
		zap.Int("documents", snap.Len()),
		zap.Int("dimensions", snap.Dimensions()),
		zap.String("as_of", snap.CreatedAt()),
		zap.Duration("elapsed", time.Since(start)))
	return snap, nil
}

// Search embeds query and ranks it against snap. The caller's snapshot
// reference is used for the whole call.
func (e *Engine) Search(ctx context.Context, snap *Snapshot, query string, topK int) ([]RetrievedPassage, error) {
	if snap == nil {
		return nil, ErrNoCacheAvailable
	}
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query is empty")
	}
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}
	queryVec, err := e.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	if dims := snap.Dimensions(); dims > 0 && len(queryVec) != dims {
		return nil, fmt.Errorf("%w: query embedded with %d dimensions, snapshot has %d", ErrEmbeddingProvider, len(queryVec), dims)
	}
	return Rank(snap, queryVec, topK), nil
}

// AnswerQuery returns the top passages for query against the current snapshot.
func (e *Engine) AnswerQuery(ctx context.Context, query string) ([]RetrievedPassage, error) {
	snap, err := e.Snapshot(ctx, false, nil)
	if err != nil {
		return nil, err
	}
	return e.Search(ctx, snap, query, e.topK)
}

// TopK returns the configured number of passages per query.
func (e *Engine) TopK() int {
	return e.topK
}

// Texts and URLs split retrieved passages into the two lists handed to the answer generator.
func Texts(passages []RetrievedPassage) []string {
	out := make([]string, len(passages))
	for i, p := range passages {
		out[i] = p.Text
	}
	return out
}

// URLs returns the source URL of each passage in rank order.
func URLs(passages []RetrievedPassage) []string {
	out := make([]string, len(passages))
	for i, p := range passages {
		out[i] = p.URL
	}
	return out
}
