package embedding

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultBatchSize      = 32
	DefaultConcurrency    = 4
	DefaultMaxLength      = 512
	DefaultRequestTimeout = 45 * time.Second
)

// Embedder turns texts into vectors, one vector per text, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	ModelName() string
}

type BatchOptions struct {
	BatchSize   int
	Concurrency int
}

func normalizeBatchOptions(opts BatchOptions) BatchOptions {
	normalized := opts
	if normalized.BatchSize <= 0 {
		normalized.BatchSize = DefaultBatchSize
	}
	if normalized.Concurrency <= 0 {
		normalized.Concurrency = DefaultConcurrency
	}
	return normalized
}

// EmbedAll splits texts into batches and embeds them concurrently. The result
// keeps the order of texts. The first failing batch cancels the rest.
func EmbedAll(ctx context.Context, embedder Embedder, texts []string, options BatchOptions) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is not configured")
	}

	opts := normalizeBatchOptions(options)
	vectors := make([][]float32, len(texts))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(opts.Concurrency)
	for start := 0; start < len(texts); start += opts.BatchSize {
		end := min(start+opts.BatchSize, len(texts))
		group.Go(func() error {
			batch, err := embedder.Embed(groupCtx, texts[start:end])
			if err != nil {
				return fmt.Errorf("embed batch [%d:%d]: %w", start, end, err)
			}
			if len(batch) != end-start {
				return fmt.Errorf("embedding response count mismatch: requested=%d returned=%d", end-start, len(batch))
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// EmbedOne embeds a single text.
func EmbedOne(ctx context.Context, embedder Embedder, text string) ([]float32, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is not configured")
	}
	vectors, err := embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedding response count mismatch: requested=1 returned=%d", len(vectors))
	}
	return vectors[0], nil
}

func validateVector(values []float32) error {
	if len(values) == 0 {
		return fmt.Errorf("vector is empty")
	}
	for i, value := range values {
		v := float64(value)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("vector has non-finite value at index %d", i)
		}
	}
	return nil
}
