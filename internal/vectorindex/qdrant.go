package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"horse.fit/topicsearch/internal/embedding"
	"horse.fit/topicsearch/internal/topic"
)

const (
	BackendQdrant = "qdrant"

	QdrantDistanceCosine    = "Cosine"
	QdrantDistanceDot       = "Dot"
	QdrantDistanceEuclid    = "Euclid"
	QdrantDistanceManhattan = "Manhattan"

	defaultQdrantTimeout = 15 * time.Second
)

var errQdrantNotFound = errors.New("qdrant resource not found")

type QdrantOptions struct {
	URL        string
	APIKey     string
	Collection string
	Distance   string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Qdrant is a REST client for one Qdrant collection. The collection is
// created on first write, sized from the first embedded vector.
type Qdrant struct {
	baseURL    string
	apiKey     string
	collection string
	distance   string
	client     *http.Client
	embedder   embedding.Embedder
	batch      embedding.BatchOptions
	logger     zerolog.Logger

	ensureMu sync.Mutex
	ensured  bool
}

type qdrantPoint struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

type qdrantSearchResponse struct {
	Result []struct {
		Score   float64        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
}

type qdrantCollectionResponse struct {
	Result struct {
		PointsCount *int64 `json:"points_count"`
	} `json:"result"`
}

func NewQdrant(opts QdrantOptions, embedder embedding.Embedder, batch embedding.BatchOptions, logger zerolog.Logger) (*Qdrant, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.URL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("qdrant url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse qdrant url: %w", err)
	}
	collection := strings.TrimSpace(opts.Collection)
	if collection == "" {
		return nil, fmt.Errorf("qdrant collection is required")
	}
	distance, err := NormalizeQdrantDistance(opts.Distance)
	if err != nil {
		return nil, err
	}

	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultQdrantTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &Qdrant{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(opts.APIKey),
		collection: collection,
		distance:   distance,
		client:     client,
		embedder:   embedder,
		batch:      batch,
		logger:     logger,
	}, nil
}

// NormalizeQdrantDistance maps a case-insensitive metric name to Qdrant's spelling.
func NormalizeQdrantDistance(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "cosine":
		return QdrantDistanceCosine, nil
	case "dot":
		return QdrantDistanceDot, nil
	case "euclid", "euclidean":
		return QdrantDistanceEuclid, nil
	case "manhattan":
		return QdrantDistanceManhattan, nil
	default:
		return "", fmt.Errorf("unsupported qdrant distance %q", raw)
	}
}

func (q *Qdrant) Upsert(ctx context.Context, documents []topic.TopicDocument) error {
	if len(documents) == 0 {
		return nil
	}

	vectors, err := embedDocuments(ctx, q.embedder, documents, q.batch)
	if err != nil {
		return err
	}
	if err := q.ensureCollection(ctx, len(vectors[0])); err != nil {
		return err
	}

	points := make([]qdrantPoint, len(documents))
	for i, document := range documents {
		payload := map[string]any{
			"source_id": document.SourceID,
			"content":   document.Content,
			"model":     q.embedder.ModelName(),
		}
		for key, value := range document.Metadata {
			payload[key] = value
		}
		points[i] = qdrantPoint{
			ID:      uuid.NewString(),
			Vector:  vectors[i],
			Payload: payload,
		}
	}

	endpoint := q.collectionURL() + "/points?wait=true"
	if err := q.doJSON(ctx, http.MethodPut, endpoint, map[string]any{"points": points}, nil); err != nil {
		return fmt.Errorf("upsert qdrant points: %w", err)
	}
	q.logger.Debug().
		Int("documents", len(points)).
		Str("collection", q.collection).
		Msg("qdrant points upserted")
	return nil
}

func (q *Qdrant) Search(ctx context.Context, query string, topK int) ([]topic.RetrievedMatch, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be > 0")
	}

	vector, err := embedding.EmbedOne(ctx, q.embedder, query)
	if err != nil {
		return nil, err
	}

	request := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var response qdrantSearchResponse
	err = q.doJSON(ctx, http.MethodPost, q.collectionURL()+"/points/search", request, &response)
	if errors.Is(err, errQdrantNotFound) {
		return []topic.RetrievedMatch{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("search qdrant points: %w", err)
	}

	matches := make([]topic.RetrievedMatch, 0, len(response.Result))
	for _, hit := range response.Result {
		matches = append(matches, topic.RetrievedMatch{
			Metadata: metadataOf(
				payloadString(hit.Payload, topic.MetaTitle),
				payloadString(hit.Payload, topic.MetaDescription),
				payloadString(hit.Payload, topic.MetaURL),
			),
			Relevance: q.relevance(hit.Score),
		})
	}
	return matches, nil
}

func (q *Qdrant) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{
		Backend: BackendQdrant,
		Model:   q.embedder.ModelName(),
	}

	var response qdrantCollectionResponse
	err := q.doJSON(ctx, http.MethodGet, q.collectionURL(), nil, &response)
	if errors.Is(err, errQdrantNotFound) {
		return stats, nil
	}
	if err != nil {
		return Stats{}, fmt.Errorf("get qdrant collection: %w", err)
	}
	if response.Result.PointsCount != nil {
		stats.Documents = *response.Result.PointsCount
	}
	return stats, nil
}

func (q *Qdrant) Close() error {
	q.client.CloseIdleConnections()
	return nil
}

// relevance reports what Qdrant's score means for the configured metric.
func (q *Qdrant) relevance(score float64) topic.Relevance {
	field := topic.FieldSimilarity
	switch q.distance {
	case QdrantDistanceEuclid, QdrantDistanceManhattan:
		field = topic.FieldDistance
	}
	return topic.ResolveRelevance(map[string]any{field: score})
}

func (q *Qdrant) ensureCollection(ctx context.Context, dimension int) error {
	q.ensureMu.Lock()
	defer q.ensureMu.Unlock()
	if q.ensured {
		return nil
	}

	err := q.doJSON(ctx, http.MethodGet, q.collectionURL(), nil, nil)
	switch {
	case err == nil:
	case errors.Is(err, errQdrantNotFound):
		body := map[string]any{
			"vectors": map[string]any{
				"size":     dimension,
				"distance": q.distance,
			},
		}
		if err := q.doJSON(ctx, http.MethodPut, q.collectionURL(), body, nil); err != nil {
			return fmt.Errorf("create qdrant collection %q: %w", q.collection, err)
		}
		q.logger.Info().
			Str("collection", q.collection).
			Int("dimension", dimension).
			Str("distance", q.distance).
			Msg("qdrant collection created")
	default:
		return fmt.Errorf("get qdrant collection %q: %w", q.collection, err)
	}

	q.ensured = true
	return nil
}

func (q *Qdrant) collectionURL() string {
	return q.baseURL + "/collections/" + url.PathEscape(q.collection)
}

func (q *Qdrant) doJSON(ctx context.Context, method, endpoint string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal qdrant request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build qdrant request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read qdrant response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return errQdrantNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s status %d: %s", method, endpoint, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode qdrant response: %w", err)
	}
	return nil
}

func payloadString(payload map[string]any, key string) string {
	value, _ := payload[key].(string)
	return value
}
