package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"horse.fit/topicsearch/internal/topic"
)

func TestIngest_EmptyCollectorSkipsIndex(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{}
	svc := NewService(&fakeCollector{}, index, nil, Config{}, zerolog.Nop())

	result, err := svc.Ingest(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Count != 0 || result.Message != noNewTopicsMessage {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(index.upserts) != 0 {
		t.Fatalf("expected no index writes, got %d", len(index.upserts))
	}
}

func TestIngest_UpsertsNormalizedBatchOnce(t *testing.T) {
	t.Parallel()

	collector := &fakeCollector{items: []*topic.ChannelItem{
		{ID: "a", Title: "Intro to Streams", URL: "https://x/1"},
		nil,
		{ID: "b", URL: "https://x/2"},
	}}
	index := &fakeIndex{}
	svc := NewService(collector, index, nil, Config{}, zerolog.Nop())

	result, err := svc.Ingest(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Count != 2 {
		t.Fatalf("expected count 2, got %d", result.Count)
	}
	if result.Message != "Added 2 topics to the vector index." {
		t.Fatalf("unexpected message: %q", result.Message)
	}
	if len(index.upserts) != 1 {
		t.Fatalf("expected exactly one batch upsert, got %d", len(index.upserts))
	}
	batch := index.upserts[0]
	if batch[0].Content != "Intro to Streams" || batch[1].Content != "https://x/2" {
		t.Fatalf("unexpected batch contents: %q, %q", batch[0].Content, batch[1].Content)
	}
}

func TestIngest_AllNilItemsSkipsIndex(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{}
	svc := NewService(&fakeCollector{items: []*topic.ChannelItem{nil, nil}}, index, nil, Config{}, zerolog.Nop())

	result, err := svc.Ingest(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Count != 0 {
		t.Fatalf("expected count 0, got %d", result.Count)
	}
	if len(index.upserts) != 0 {
		t.Fatalf("expected index to be skipped for empty batch")
	}
}

func TestIngest_CollectorFailurePropagates(t *testing.T) {
	t.Parallel()

	upstream := errors.New("quota exceeded")
	index := &fakeIndex{}
	svc := NewService(&fakeCollector{err: upstream}, index, nil, Config{}, zerolog.Nop())

	_, err := svc.Ingest(context.Background())
	if !errors.Is(err, upstream) || !IsCollaboratorFailure(err) {
		t.Fatalf("expected wrapped collaborator failure, got %v", err)
	}
	if len(index.upserts) != 0 {
		t.Fatalf("expected no partial commit")
	}
}

func TestIngest_IndexFailurePropagates(t *testing.T) {
	t.Parallel()

	upstream := errors.New("connection refused")
	collector := &fakeCollector{items: []*topic.ChannelItem{{Title: "x"}}}
	svc := NewService(collector, &fakeIndex{upsertErr: upstream}, nil, Config{}, zerolog.Nop())

	_, err := svc.Ingest(context.Background())
	if !errors.Is(err, upstream) || !IsCollaboratorFailure(err) {
		t.Fatalf("expected wrapped collaborator failure, got %v", err)
	}
	if collector.calls != 1 {
		t.Fatalf("expected a single collector call, got %d", collector.calls)
	}
}

func TestFetchTopics_Passthrough(t *testing.T) {
	t.Parallel()

	collector := &fakeCollector{items: []*topic.ChannelItem{{ID: "a"}, nil, {ID: "b"}}}
	svc := NewService(collector, nil, nil, Config{}, zerolog.Nop())

	items, err := svc.FetchTopics(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || items[0].ID != "a" || items[1].ID != "b" {
		t.Fatalf("unexpected items: %+v", items)
	}
}
