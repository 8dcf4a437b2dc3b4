package pipeline

import (
	"context"
	"fmt"

	"horse.fit/topicsearch/internal/topic"
)

const notCoveredMessage = "This topic has not been covered yet."

// CheckDuplicate searches the index for the proposal and decides whether it
// repeats an already published topic. Only the best ranked match is compared
// with the similarity threshold.
func (s *Service) CheckDuplicate(ctx context.Context, proposal topic.Proposal) (topic.DuplicateVerdict, error) {
	if err := s.ready(); err != nil {
		return topic.DuplicateVerdict{}, err
	}

	query, err := topic.BuildQuery(proposal)
	if err != nil {
		return topic.DuplicateVerdict{}, err
	}
	if s.index == nil {
		return topic.DuplicateVerdict{}, fmt.Errorf("duplicate check requires a vector index")
	}

	similar, err := s.search(ctx, query)
	if err != nil {
		return topic.DuplicateVerdict{}, err
	}

	verdict := topic.DuplicateVerdict{
		Message:       notCoveredMessage,
		SimilarTopics: similar,
	}
	if best, ok := s.duplicateOf(similar); ok {
		verdict.Message = fmt.Sprintf("This topic has already been covered: %s", best.URL)
	}

	event := s.logger.Debug().Int("matches", len(similar))
	if len(similar) > 0 {
		event = event.Float64("best_similarity", similar[0].Similarity)
	}
	event.Msg("duplicate check completed")

	return verdict, nil
}

func (s *Service) duplicateOf(similar []topic.SimilarTopic) (topic.SimilarTopic, bool) {
	if len(similar) == 0 {
		return topic.SimilarTopic{}, false
	}
	best := similar[0]
	return best, best.Similarity >= s.cfg.SimilarityThreshold
}
