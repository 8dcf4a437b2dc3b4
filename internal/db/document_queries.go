package db

import (
	"context"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
)

// DocumentInsert is one embedded document ready to be written.
type DocumentInsert struct {
	SourceItemID string
	Title        string
	Description  string
	URL          string
	Content      string
	Embedding    []float32
}

// DocumentNeighbor is a nearest-neighbour row with its cosine distance.
type DocumentNeighbor struct {
	Title       string
	Description string
	URL         string
	Distance    float64
}

type DocumentStats struct {
	Documents     int64
	LastIndexedAt *time.Time
}

// InsertDocuments writes the whole batch in one transaction.
func (p *Pool) InsertDocuments(ctx context.Context, modelName string, documents []DocumentInsert, now time.Time) (int, error) {
	if len(documents) == 0 {
		return 0, nil
	}

	inserted := 0
	err := p.WithTx(ctx, func(tx Tx) error {
		for i, document := range documents {
			if len(document.Embedding) == 0 {
				return fmt.Errorf("document %d has an empty embedding", i)
			}
			if err := insertDocumentTx(ctx, tx, modelName, document, now); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func insertDocumentTx(ctx context.Context, tx Tx, modelName string, document DocumentInsert, now time.Time) error {
	const q = `
INSERT INTO topics.documents (
	source_item_id,
	title,
	description,
	url,
	content,
	model_name,
	embedding,
	indexed_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

	vector := pgvector.NewVector(document.Embedding)
	if _, err := tx.Exec(ctx, q,
		document.SourceItemID,
		document.Title,
		document.Description,
		document.URL,
		document.Content,
		modelName,
		vector,
		now,
	); err != nil {
		return fmt.Errorf("insert document source_item_id=%q: %w", document.SourceItemID, err)
	}
	return nil
}

// SearchNearestDocuments returns the closest documents embedded with modelName,
// best first, using pgvector cosine distance.
func (p *Pool) SearchNearestDocuments(ctx context.Context, modelName string, embedding []float32, limit int) ([]DocumentNeighbor, error) {
	const q = `
SELECT
	d.title,
	d.description,
	d.url,
	(d.embedding <=> $1)::DOUBLE PRECISION AS distance
FROM topics.documents d
WHERE d.model_name = $2
ORDER BY d.embedding <=> $1, d.document_id
LIMIT $3
`

	rows, err := p.Query(ctx, q, pgvector.NewVector(embedding), modelName, limit)
	if err != nil {
		return nil, fmt.Errorf("search nearest documents: %w", err)
	}
	defer rows.Close()

	neighbors := make([]DocumentNeighbor, 0, limit)
	for rows.Next() {
		var n DocumentNeighbor
		if err := rows.Scan(&n.Title, &n.Description, &n.URL, &n.Distance); err != nil {
			return nil, fmt.Errorf("scan nearest document: %w", err)
		}
		neighbors = append(neighbors, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nearest documents: %w", err)
	}
	return neighbors, nil
}

func (p *Pool) DocumentStats(ctx context.Context, modelName string) (DocumentStats, error) {
	const q = `
SELECT COUNT(*), MAX(indexed_at)
FROM topics.documents
WHERE model_name = $1
`

	var stats DocumentStats
	if err := p.QueryRow(ctx, q, modelName).Scan(&stats.Documents, &stats.LastIndexedAt); err != nil {
		return DocumentStats{}, fmt.Errorf("query document stats: %w", err)
	}
	return stats, nil
}
