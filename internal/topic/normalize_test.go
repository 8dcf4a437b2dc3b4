package topic

import "testing"

func TestNormalize_JoinsTitleAndDescription(t *testing.T) {
	t.Parallel()

	doc := Normalize(ChannelItem{
		ID:          "abc",
		Title:       "Intro to Streams",
		Description: "Collectors and spliterators ",
		URL:         "https://www.youtube.com/watch?v=abc",
	})
	if doc.Content != "Intro to Streams\n\nCollectors and spliterators" {
		t.Fatalf("unexpected content: %q", doc.Content)
	}
	if doc.SourceID != "abc" {
		t.Fatalf("unexpected source id: %q", doc.SourceID)
	}
	if doc.Metadata.URL() != "https://www.youtube.com/watch?v=abc" {
		t.Fatalf("unexpected url metadata: %q", doc.Metadata.URL())
	}
}

func TestNormalize_FallsBackToURL(t *testing.T) {
	t.Parallel()

	doc := Normalize(ChannelItem{Title: "  ", Description: "\n", URL: "https://x/1"})
	if doc.Content != "https://x/1" {
		t.Fatalf("expected url fallback, got %q", doc.Content)
	}
}

func TestNormalize_EmptyFieldsNeverMissingFromMetadata(t *testing.T) {
	t.Parallel()

	doc := Normalize(ChannelItem{Title: "Only title"})
	for _, key := range []string{MetaTitle, MetaDescription, MetaURL} {
		if _, ok := doc.Metadata[key]; !ok {
			t.Fatalf("expected metadata key %q to be present", key)
		}
	}
	if doc.Content != "Only title" {
		t.Fatalf("unexpected content: %q", doc.Content)
	}
}

func TestNormalizeAll_DropsNilItems(t *testing.T) {
	t.Parallel()

	docs := NormalizeAll([]*ChannelItem{nil, {Title: "first"}, nil, {Title: "second"}})
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].Content != "first" || docs[1].Content != "second" {
		t.Fatalf("unexpected document order: %q, %q", docs[0].Content, docs[1].Content)
	}
}
