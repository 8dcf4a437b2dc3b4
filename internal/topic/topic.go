// Package topic holds the channel item and document model shared by the
// ingestion, duplicate-check and answering flows, together with the pure
// transforms between them.
package topic

import "time"

// Metadata keys agreed between the engine and every vector index backend.
const (
	MetaTitle       = "title"
	MetaDescription = "description"
	MetaURL         = "url"
)

// ChannelItem is a raw record produced by the source collector.
type ChannelItem struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// Metadata is the flat string payload stored next to every embedded document.
type Metadata map[string]string

func (m Metadata) Title() string       { return m[MetaTitle] }
func (m Metadata) Description() string { return m[MetaDescription] }
func (m Metadata) URL() string         { return m[MetaURL] }

// TopicDocument is the canonical embeddable unit submitted to a vector index.
// Content is never empty.
type TopicDocument struct {
	SourceID string
	Content  string
	Metadata Metadata
}

// RetrievedMatch is a single search hit returned by a vector index.
type RetrievedMatch struct {
	Metadata  Metadata
	Relevance Relevance
}

// SimilarTopic is a scored search hit as exposed to callers.
type SimilarTopic struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	Similarity  float64 `json:"similarity"`
}

// DuplicateVerdict is the outcome of a duplicate check.
type DuplicateVerdict struct {
	Message       string         `json:"message"`
	SimilarTopics []SimilarTopic `json:"similar_topics"`
}

// IngestResult summarizes one ingestion run.
type IngestResult struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// Answer is a grounded answer with the topics used as context.
type Answer struct {
	Answer  string         `json:"answer"`
	Sources []SimilarTopic `json:"sources"`
}
