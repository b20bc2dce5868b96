package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/mwiater/coach/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultBatchSize is the number of texts sent per embedding call when none is configured.
const DefaultBatchSize = 20

// Embedder is the external embedding provider. The result must hold one vector
// per input text, in input order.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// ProgressFunc receives the fraction of texts embedded so far, in [0, 1].
type ProgressFunc func(fraction float64)

// BatchEmbedder splits texts into contiguous batches and embeds them one call at a time.
type BatchEmbedder struct {
	embedder  Embedder
	batchSize int
	limiter   *rate.Limiter
}

// BatchOption configures a BatchEmbedder.
type BatchOption func(*BatchEmbedder)

// WithRateLimit spaces provider calls to at most perSecond calls per second. Zero disables pacing.
func WithRateLimit(perSecond float64) BatchOption {
	return func(b *BatchEmbedder) {
		if perSecond > 0 {
			b.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// NewBatchEmbedder wraps embedder with batching. Non-positive sizes fall back to DefaultBatchSize.
func NewBatchEmbedder(embedder Embedder, batchSize int, opts ...BatchOption) *BatchEmbedder {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	b := &BatchEmbedder{embedder: embedder, batchSize: batchSize}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BatchSize returns the configured batch size.
func (b *BatchEmbedder) BatchSize() int {
	return b.batchSize
}

// Embed returns one vector per text with result[i] belonging to texts[i].
// Any provider failure aborts the whole call; nothing is retried.
func (b *BatchEmbedder) Embed(ctx context.Context, texts []string, progress ProgressFunc) ([][]float64, error) {
	total := len(texts)
	vectors := make([][]float64, 0, total)
	batches := (total + b.batchSize - 1) / b.batchSize
	dims := 0

	for n, start := 0, 0; start < total; n, start = n+1, start+b.batchSize {
		end := min(start+b.batchSize, total)
		batch := texts[start:end]

		if b.limiter != nil {
			if err := b.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("%w: batch %d/%d: %w", ErrEmbeddingProvider, n+1, batches, err)
			}
		}

		callStart := time.Now()
		result, err := b.embedder.EmbedBatch(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("%w: batch %d/%d: %w", ErrEmbeddingProvider, n+1, batches, err)
		}
		if len(result) != len(batch) {
			return nil, fmt.Errorf("%w: batch %d/%d returned %d vectors for %d texts", ErrEmbeddingProvider, n+1, batches, len(result), len(batch))
		}
		for i, vec := range result {
			if len(vec) == 0 {
				return nil, fmt.Errorf("%w: batch %d/%d returned an empty vector for text %d", ErrEmbeddingProvider, n+1, batches, start+i)
			}
			if dims == 0 {
				dims = len(vec)
			} else if len(vec) != dims {
				return nil, fmt.Errorf("%w: text %d embedded with %d dimensions, expected %d", ErrEmbeddingProvider, start+i, len(vec), dims)
			}
		}
		vectors = append(vectors, result...)

		logging.Logger().Debug("embedded batch",
			zap.Int("batch", n+1),
			zap.Int("batches", batches),
			zap.Int("texts", len(batch)),
			zap.Duration("elapsed", time.Since(callStart)))

		if progress != nil {
			progress(min(float64(end)/float64(total), 1.0))
		}
	}

	return vectors, nil
}

// EmbedQuery embeds a single text as a one-element batch.
func (b *BatchEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	vectors, err := b.Embed(ctx, []string{text}, nil)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}
