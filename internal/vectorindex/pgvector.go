package vectorindex

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/topicsearch/internal/db"
	"horse.fit/topicsearch/internal/embedding"
	"horse.fit/topicsearch/internal/globaltime"
	"horse.fit/topicsearch/internal/topic"
)

const BackendPGVector = "pgvector"

type documentStore interface {
	InsertDocuments(ctx context.Context, modelName string, documents []db.DocumentInsert, now time.Time) (int, error)
	SearchNearestDocuments(ctx context.Context, modelName string, embedding []float32, limit int) ([]db.DocumentNeighbor, error)
	DocumentStats(ctx context.Context, modelName string) (db.DocumentStats, error)
	Close() error
}

// PGVector stores documents in topics.documents and ranks them by cosine
// distance. Rows are scoped by embedding model so vectors from different
// models never mix.
type PGVector struct {
	store    documentStore
	embedder embedding.Embedder
	batch    embedding.BatchOptions
	logger   zerolog.Logger
}

func NewPGVector(pool *db.Pool, embedder embedding.Embedder, batch embedding.BatchOptions, logger zerolog.Logger) *PGVector {
	return newPGVector(pool, embedder, batch, logger)
}

func newPGVector(store documentStore, embedder embedding.Embedder, batch embedding.BatchOptions, logger zerolog.Logger) *PGVector {
	return &PGVector{
		store:    store,
		embedder: embedder,
		batch:    batch,
		logger:   logger,
	}
}

func (p *PGVector) Upsert(ctx context.Context, documents []topic.TopicDocument) error {
	if len(documents) == 0 {
		return nil
	}

	vectors, err := embedDocuments(ctx, p.embedder, documents, p.batch)
	if err != nil {
		return err
	}

	rows := make([]db.DocumentInsert, len(documents))
	for i, document := range documents {
		rows[i] = db.DocumentInsert{
			SourceItemID: document.SourceID,
			Title:        document.Metadata.Title(),
			Description:  document.Metadata.Description(),
			URL:          document.Metadata.URL(),
			Content:      document.Content,
			Embedding:    vectors[i],
		}
	}

	inserted, err := p.store.InsertDocuments(ctx, p.embedder.ModelName(), rows, globaltime.UTC())
	if err != nil {
		return err
	}
	p.logger.Debug().
		Int("documents", inserted).
		Str("model", p.embedder.ModelName()).
		Msg("pgvector documents inserted")
	return nil
}

func (p *PGVector) Search(ctx context.Context, query string, topK int) ([]topic.RetrievedMatch, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be > 0")
	}

	vector, err := embedding.EmbedOne(ctx, p.embedder, query)
	if err != nil {
		return nil, err
	}

	neighbors, err := p.store.SearchNearestDocuments(ctx, p.embedder.ModelName(), vector, topK)
	if err != nil {
		return nil, err
	}

	matches := make([]topic.RetrievedMatch, 0, len(neighbors))
	for _, neighbor := range neighbors {
		matches = append(matches, topic.RetrievedMatch{
			Metadata:  metadataOf(neighbor.Title, neighbor.Description, neighbor.URL),
			Relevance: topic.ResolveRelevance(map[string]any{topic.FieldDistance: neighbor.Distance}),
		})
	}
	return matches, nil
}

func (p *PGVector) Stats(ctx context.Context) (Stats, error) {
	stats, err := p.store.DocumentStats(ctx, p.embedder.ModelName())
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Backend:       BackendPGVector,
		Model:         p.embedder.ModelName(),
		Documents:     stats.Documents,
		LastIndexedAt: stats.LastIndexedAt,
	}, nil
}

func (p *PGVector) Close() error {
	return p.store.Close()
}
