package vectorindex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"horse.fit/topicsearch/internal/embedding"
	"horse.fit/topicsearch/internal/topic"
)

type fakeQdrant struct {
	mu         sync.Mutex
	exists     bool
	created    map[string]any
	points     []map[string]any
	apiKeySeen string
	hits       []map[string]any
}

func (f *fakeQdrant) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.apiKeySeen = r.Header.Get("api-key")

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/collections/topics":
			if !f.exists {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"points_count": len(f.points)}})
		case r.Method == http.MethodPut && r.URL.Path == "/collections/topics":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			f.created = body
			f.exists = true
			_ = json.NewEncoder(w).Encode(map[string]any{"result": true})
		case r.Method == http.MethodPut && r.URL.Path == "/collections/topics/points":
			assert.Equal(t, "true", r.URL.Query().Get("wait"))
			var body struct {
				Points []map[string]any `json:"points"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			f.points = append(f.points, body.Points...)
			_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"status": "completed"}})
		case r.Method == http.MethodPost && r.URL.Path == "/collections/topics/points/search":
			if !f.exists {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"result": f.hits})
		default:
			t.Errorf("unexpected qdrant call %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusBadRequest)
		}
	})
}

func newTestQdrant(t *testing.T, server *httptest.Server, distance string) *Qdrant {
	t.Helper()
	index, err := NewQdrant(QdrantOptions{
		URL:        server.URL + "/",
		APIKey:     "secret",
		Collection: "topics",
		Distance:   distance,
		HTTPClient: server.Client(),
	}, newTestEmbedder(), embedding.BatchOptions{}, zerolog.Nop())
	require.NoError(t, err)
	return index
}

func TestQdrant_UpsertCreatesCollectionOnce(t *testing.T) {
	t.Parallel()

	fake := &fakeQdrant{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	index := newTestQdrant(t, server, "cosine")
	ctx := context.Background()
	require.NoError(t, index.Upsert(ctx, []topic.TopicDocument{testDocument("a", "Spring Boot", "https://x/a")}))
	require.NoError(t, index.Upsert(ctx, []topic.TopicDocument{testDocument("b", "Virtual threads", "https://x/b")}))

	vectors := fake.created["vectors"].(map[string]any)
	assert.Equal(t, float64(3), vectors["size"])
	assert.Equal(t, "Cosine", vectors["distance"])
	require.Len(t, fake.points, 2)
	assert.NotEqual(t, fake.points[0]["id"], fake.points[1]["id"])
	payload := fake.points[0]["payload"].(map[string]any)
	assert.Equal(t, "https://x/a", payload[topic.MetaURL])
	assert.Equal(t, "a", payload["source_id"])
	assert.Equal(t, "secret", fake.apiKeySeen)

	stats, err := index.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Documents)
}

func TestQdrant_SearchMapsCosineScoresToSimilarity(t *testing.T) {
	t.Parallel()

	fake := &fakeQdrant{exists: true, hits: []map[string]any{
		{"score": 0.93, "payload": map[string]any{"title": "Virtual threads", "description": "Loom", "url": "https://x/b"}},
	}}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	matches, err := newTestQdrant(t, server, "").Search(context.Background(), "threads query", 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, topic.Similarity(0.93), matches[0].Relevance)
	assert.Equal(t, "Loom", matches[0].Metadata.Description())
}

func TestQdrant_SearchMapsEuclidScoresToDistance(t *testing.T) {
	t.Parallel()

	fake := &fakeQdrant{exists: true, hits: []map[string]any{
		{"score": 0.2, "payload": map[string]any{"title": "Virtual threads", "url": "https://x/b"}},
	}}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	matches, err := newTestQdrant(t, server, "euclid").Search(context.Background(), "threads query", 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, topic.Distance(0.2), matches[0].Relevance)
}

func TestQdrant_SearchMissingCollectionIsEmpty(t *testing.T) {
	t.Parallel()

	fake := &fakeQdrant{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	matches, err := newTestQdrant(t, server, "").Search(context.Background(), "threads query", 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestNormalizeQdrantDistance(t *testing.T) {
	t.Parallel()

	got, err := NormalizeQdrantDistance("DOT")
	require.NoError(t, err)
	assert.Equal(t, QdrantDistanceDot, got)

	_, err = NormalizeQdrantDistance("hamming")
	require.Error(t, err)
}

func TestNewQdrant_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewQdrant(QdrantOptions{Collection: "topics"}, newTestEmbedder(), embedding.BatchOptions{}, zerolog.Nop())
	require.Error(t, err)
	_, err = NewQdrant(QdrantOptions{URL: "http://q"}, newTestEmbedder(), embedding.BatchOptions{}, zerolog.Nop())
	require.Error(t, err)
}
