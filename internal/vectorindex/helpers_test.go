package vectorindex

import (
	"context"
	"fmt"

	"horse.fit/topicsearch/internal/topic"
)

// tableEmbedder returns fixed vectors keyed by text.
type tableEmbedder struct {
	vectors map[string][]float32
}

func (e tableEmbedder) ModelName() string { return "table-model" }

func (e tableEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vector, ok := e.vectors[text]
		if !ok {
			return nil, fmt.Errorf("no vector for %q", text)
		}
		out[i] = vector
	}
	return out, nil
}

func testDocument(id, title, url string) topic.TopicDocument {
	return topic.Normalize(topic.ChannelItem{ID: id, Title: title, URL: url})
}

func newTestEmbedder() tableEmbedder {
	return tableEmbedder{vectors: map[string][]float32{
		"Virtual threads": {1, 0, 0},
		"Spring Boot":     {0, 1, 0},
		"GraalVM native":  {0.7, 0.7, 0},
		"threads query":   {0.9, 0.1, 0},
	}}
}
