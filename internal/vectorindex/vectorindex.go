// Package vectorindex provides the nearest-neighbour stores behind topic
// ingestion and search: PostgreSQL with pgvector, Qdrant over REST, and an
// in-process store for local runs and tests.
package vectorindex

import (
	"context"
	"time"

	"horse.fit/topicsearch/internal/embedding"
	"horse.fit/topicsearch/internal/topic"
)

// Stats describes what an index currently holds.
type Stats struct {
	Backend       string     `json:"backend"`
	Model         string     `json:"model"`
	Documents     int64      `json:"documents"`
	LastIndexedAt *time.Time `json:"last_indexed_at,omitempty"`
}

// Index is implemented by every backend in this package.
type Index interface {
	Upsert(ctx context.Context, documents []topic.TopicDocument) error
	Search(ctx context.Context, query string, topK int) ([]topic.RetrievedMatch, error)
	Stats(ctx context.Context) (Stats, error)
	Close() error
}

func documentContents(documents []topic.TopicDocument) []string {
	contents := make([]string, len(documents))
	for i, document := range documents {
		contents[i] = document.Content
	}
	return contents
}

func metadataOf(title, description, url string) topic.Metadata {
	return topic.Metadata{
		topic.MetaTitle:       title,
		topic.MetaDescription: description,
		topic.MetaURL:         url,
	}
}

func embedDocuments(ctx context.Context, embedder embedding.Embedder, documents []topic.TopicDocument, batch embedding.BatchOptions) ([][]float32, error) {
	return embedding.EmbedAll(ctx, embedder, documentContents(documents), batch)
}
