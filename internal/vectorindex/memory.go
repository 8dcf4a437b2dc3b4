package vectorindex

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"horse.fit/topicsearch/internal/embedding"
	"horse.fit/topicsearch/internal/globaltime"
	"horse.fit/topicsearch/internal/topic"
)

const BackendMemory = "memory"

type memoryEntry struct {
	metadata topic.Metadata
	vector   []float32
}

// Memory is a brute-force cosine index held in process memory.
type Memory struct {
	embedder embedding.Embedder
	batch    embedding.BatchOptions

	mu            sync.RWMutex
	entries       []memoryEntry
	lastIndexedAt *time.Time
}

func NewMemory(embedder embedding.Embedder, batch embedding.BatchOptions) *Memory {
	return &Memory{
		embedder: embedder,
		batch:    batch,
	}
}

func (m *Memory) Upsert(ctx context.Context, documents []topic.TopicDocument) error {
	if len(documents) == 0 {
		return nil
	}

	vectors, err := embedDocuments(ctx, m.embedder, documents, m.batch)
	if err != nil {
		return err
	}

	dimension := len(vectors[0])
	for i, vector := range vectors {
		if len(vector) != dimension {
			return fmt.Errorf("vector dimension mismatch in batch: document %d has %d, expected %d", i, len(vector), dimension)
		}
	}

	entries := make([]memoryEntry, len(documents))
	for i, document := range documents {
		metadata := make(topic.Metadata, len(document.Metadata))
		for key, value := range document.Metadata {
			metadata[key] = value
		}
		entries[i] = memoryEntry{metadata: metadata, vector: vectors[i]}
	}

	now := globaltime.UTC()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) > 0 && len(m.entries[0].vector) != dimension {
		return fmt.Errorf("vector dimension mismatch: index=%d document=%d", len(m.entries[0].vector), dimension)
	}
	m.entries = append(m.entries, entries...)
	m.lastIndexedAt = &now
	return nil
}

func (m *Memory) Search(ctx context.Context, query string, topK int) ([]topic.RetrievedMatch, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be > 0")
	}

	vector, err := embedding.EmbedOne(ctx, m.embedder, query)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		index      int
		similarity float64
	}
	ranked := make([]scored, len(m.entries))
	for i, entry := range m.entries {
		ranked[i] = scored{index: i, similarity: cosineSimilarity(vector, entry.vector)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].similarity > ranked[j].similarity
	})

	limit := min(topK, len(ranked))
	matches := make([]topic.RetrievedMatch, 0, limit)
	for _, hit := range ranked[:limit] {
		matches = append(matches, topic.RetrievedMatch{
			Metadata:  m.entries[hit.index].metadata,
			Relevance: topic.Similarity(hit.similarity),
		})
	}
	return matches, nil
}

func (m *Memory) Stats(context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{
		Backend:       BackendMemory,
		Model:         m.embedder.ModelName(),
		Documents:     int64(len(m.entries)),
		LastIndexedAt: m.lastIndexedAt,
	}, nil
}

func (m *Memory) Close() error {
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	n := min(len(a), len(b))
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
