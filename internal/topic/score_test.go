package topic

import (
	"encoding/json"
	"math"
	"testing"
)

func TestScore_Distance(t *testing.T) {
	t.Parallel()

	cases := map[float64]float64{
		0:    100,
		0.1:  90,
		0.5:  50,
		1:    0,
		-0.3: 100,
		1.7:  0,
	}
	for distance, want := range cases {
		if got := Score(Distance(distance)); math.Abs(got-want) > 1e-9 {
			t.Fatalf("distance %v: got %v want %v", distance, got, want)
		}
	}
}

func TestScore_DistanceIsMonotonic(t *testing.T) {
	t.Parallel()

	previous := Score(Distance(0))
	for d := 0.05; d <= 1.0; d += 0.05 {
		current := Score(Distance(d))
		if current > previous {
			t.Fatalf("score increased from %v to %v at distance %v", previous, current, d)
		}
		previous = current
	}
}

func TestScore_SimilarityClamped(t *testing.T) {
	t.Parallel()

	if got := Score(Similarity(0.82)); math.Abs(got-82) > 1e-9 {
		t.Fatalf("unexpected similarity score: %v", got)
	}
	if got := Score(Similarity(1.4)); got != 100 {
		t.Fatalf("expected similarity above 1 to clamp to 100, got %v", got)
	}
	if got := Score(Similarity(-0.2)); got != 0 {
		t.Fatalf("expected negative similarity to clamp to 0, got %v", got)
	}
}

func TestScore_UnknownAndNaN(t *testing.T) {
	t.Parallel()

	if got := Score(Relevance{}); got != 0 {
		t.Fatalf("expected 0 for unknown relevance, got %v", got)
	}
	if got := Score(Distance(math.NaN())); got != 0 {
		t.Fatalf("expected 0 for NaN distance, got %v", got)
	}
}

func TestResolveRelevance_PrefersDistance(t *testing.T) {
	t.Parallel()

	r := ResolveRelevance(map[string]any{"distance": 0.25, "similarity": 0.9})
	if r.Kind != RelevanceDistance || r.Value != 0.25 {
		t.Fatalf("expected distance relevance, got %+v", r)
	}
}

func TestResolveRelevance_Similarity(t *testing.T) {
	t.Parallel()

	r := ResolveRelevance(map[string]any{"similarity": json.Number("0.7")})
	if r.Kind != RelevanceSimilarity || r.Value != 0.7 {
		t.Fatalf("expected similarity relevance, got %+v", r)
	}
}

func TestResolveRelevance_AllIntegerKinds(t *testing.T) {
	t.Parallel()

	values := []any{
		int(1), int8(1), int16(1), int32(1), int64(1),
		uint(1), uint8(1), uint16(1), uint32(1), uint64(1),
	}
	for _, value := range values {
		r := ResolveRelevance(map[string]any{"similarity": value})
		if r.Kind != RelevanceSimilarity || r.Value != 1 {
			t.Fatalf("expected %T to resolve as similarity 1, got %+v", value, r)
		}
	}
}

func TestResolveRelevance_NonNumericIgnored(t *testing.T) {
	t.Parallel()

	r := ResolveRelevance(map[string]any{"distance": "0.1", "similarity": nil})
	if r.Kind != RelevanceUnknown {
		t.Fatalf("expected unknown relevance for non-numeric fields, got %+v", r)
	}
	if got := Score(r); got != 0 {
		t.Fatalf("expected floor score, got %v", got)
	}
}

func TestToSimilarTopics_PreservesOrder(t *testing.T) {
	t.Parallel()

	topics := ToSimilarTopics([]RetrievedMatch{
		{Metadata: Metadata{MetaTitle: "a", MetaURL: "https://x/a"}, Relevance: Distance(0.2)},
		{Metadata: Metadata{MetaTitle: "b", MetaURL: "https://x/b"}, Relevance: Similarity(0.95)},
	})
	if len(topics) != 2 {
		t.Fatalf("expected 2 topics, got %d", len(topics))
	}
	if topics[0].Title != "a" || topics[1].Title != "b" {
		t.Fatalf("unexpected topic order: %+v", topics)
	}
	if math.Abs(topics[0].Similarity-80) > 1e-9 || math.Abs(topics[1].Similarity-95) > 1e-9 {
		t.Fatalf("unexpected similarities: %v, %v", topics[0].Similarity, topics[1].Similarity)
	}
}
