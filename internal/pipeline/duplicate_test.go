package pipeline

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"horse.fit/topicsearch/internal/topic"
)

func match(title, url string, relevance topic.Relevance) topic.RetrievedMatch {
	return topic.RetrievedMatch{
		Metadata: topic.Metadata{
			topic.MetaTitle:       title,
			topic.MetaDescription: "",
			topic.MetaURL:         url,
		},
		Relevance: relevance,
	}
}

func TestCheckDuplicate_TopMatchAboveThreshold(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{matches: []topic.RetrievedMatch{
		match("Intro to Streams", "https://x/1", topic.Distance(0.1)),
	}}
	svc := NewService(nil, index, nil, Config{SimilarityThreshold: 75}, zerolog.Nop())

	verdict, err := svc.CheckDuplicate(context.Background(), topic.Proposal{Title: "Intro to Streams"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.Message != "This topic has already been covered: https://x/1" {
		t.Fatalf("unexpected verdict: %q", verdict.Message)
	}
	if len(verdict.SimilarTopics) != 1 || verdict.SimilarTopics[0].Similarity < 89.999 || verdict.SimilarTopics[0].Similarity > 90.001 {
		t.Fatalf("unexpected similar topics: %+v", verdict.SimilarTopics)
	}
	if len(index.searchCalls) != 1 || index.searchCalls[0].query != "Intro to Streams" || index.searchCalls[0].topK != DefaultTopK {
		t.Fatalf("unexpected search calls: %+v", index.searchCalls)
	}
}

func TestCheckDuplicate_TopMatchBelowThreshold(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{matches: []topic.RetrievedMatch{
		match("Intro to Streams", "https://x/1", topic.Distance(0.5)),
	}}
	svc := NewService(nil, index, nil, Config{SimilarityThreshold: 75}, zerolog.Nop())

	verdict, err := svc.CheckDuplicate(context.Background(), topic.Proposal{Title: "Intro to Streams"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.Message != notCoveredMessage {
		t.Fatalf("unexpected verdict: %q", verdict.Message)
	}
	if len(verdict.SimilarTopics) != 1 {
		t.Fatalf("expected the match to still be reported")
	}
}

func TestCheckDuplicate_LowerRanksNeverTrigger(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{matches: []topic.RetrievedMatch{
		match("first", "https://x/1", topic.Similarity(0.5)),
		match("second", "https://x/2", topic.Similarity(0.99)),
	}}
	svc := NewService(nil, index, nil, Config{SimilarityThreshold: 75}, zerolog.Nop())

	verdict, err := svc.CheckDuplicate(context.Background(), topic.Proposal{Description: "anything"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.Message != notCoveredMessage {
		t.Fatalf("expected only the top match to count, got %q", verdict.Message)
	}
	if verdict.SimilarTopics[1].URL != "https://x/2" {
		t.Fatalf("expected index order to be preserved")
	}
}

func TestCheckDuplicate_ThresholdIsInclusive(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{matches: []topic.RetrievedMatch{
		match("same", "https://x/9", topic.Similarity(0.8)),
	}}
	svc := NewService(nil, index, nil, Config{SimilarityThreshold: 80}, zerolog.Nop())

	verdict, err := svc.CheckDuplicate(context.Background(), topic.Proposal{Title: "same"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.Message != "This topic has already been covered: https://x/9" {
		t.Fatalf("expected score equal to threshold to be a duplicate, got %q", verdict.Message)
	}
}

func TestCheckDuplicate_EmptyResults(t *testing.T) {
	t.Parallel()

	svc := NewService(nil, &fakeIndex{}, nil, Config{}, zerolog.Nop())

	verdict, err := svc.CheckDuplicate(context.Background(), topic.Proposal{Title: "New topic"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.Message != notCoveredMessage || len(verdict.SimilarTopics) != 0 {
		t.Fatalf("unexpected verdict: %+v", verdict)
	}
}

func TestCheckDuplicate_BlankProposal(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{}
	svc := NewService(nil, index, nil, Config{}, zerolog.Nop())

	_, err := svc.CheckDuplicate(context.Background(), topic.Proposal{})
	if _, ok := IsValidation(err); !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(index.searchCalls) != 0 {
		t.Fatalf("did not expect a search for a blank proposal")
	}
}

func TestCheckDuplicate_SearchFailure(t *testing.T) {
	t.Parallel()

	upstream := errors.New("index down")
	svc := NewService(nil, &fakeIndex{searchErr: upstream}, nil, Config{}, zerolog.Nop())

	_, err := svc.CheckDuplicate(context.Background(), topic.Proposal{Title: "x"})
	if !errors.Is(err, upstream) || !IsCollaboratorFailure(err) {
		t.Fatalf("expected collaborator failure, got %v", err)
	}
}

func TestCheckDuplicate_ZeroThresholdCoversAnyTopMatch(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{matches: []topic.RetrievedMatch{
		match("Records", "https://x/4", topic.Distance(0.5)),
	}}
	svc := NewService(nil, index, nil, Config{SimilarityThreshold: 0}, zerolog.Nop())

	if got := svc.Config().SimilarityThreshold; got != 0 {
		t.Fatalf("expected configured threshold 0 to be kept, got %v", got)
	}
	verdict, err := svc.CheckDuplicate(context.Background(), topic.Proposal{Title: "Pattern matching"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.Message != "This topic has already been covered: https://x/4" {
		t.Fatalf("expected a score of 50 to meet threshold 0, got %q", verdict.Message)
	}
}

func TestNewService_OutOfRangeThresholdFallsBack(t *testing.T) {
	t.Parallel()

	for _, threshold := range []float64{-1, 101, math.NaN()} {
		svc := NewService(nil, &fakeIndex{}, nil, Config{SimilarityThreshold: threshold}, zerolog.Nop())
		if got := svc.Config().SimilarityThreshold; got != DefaultSimilarityThreshold {
			t.Fatalf("threshold %v: expected fallback %v, got %v", threshold, DefaultSimilarityThreshold, got)
		}
	}
}
