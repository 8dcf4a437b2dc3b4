package pipeline

import (
	"context"
	"fmt"

	"horse.fit/topicsearch/internal/globaltime"
	"horse.fit/topicsearch/internal/topic"
)

const noNewTopicsMessage = "No new topics found."

// Ingest collects every current channel item and upserts the normalized
// documents into the vector index as one batch. Existing documents are not
// consulted, so repeated runs append again.
func (s *Service) Ingest(ctx context.Context) (topic.IngestResult, error) {
	if err := s.ready(); err != nil {
		return topic.IngestResult{}, err
	}
	if s.collector == nil || s.index == nil {
		return topic.IngestResult{}, fmt.Errorf("ingest requires a collector and a vector index")
	}

	started := globaltime.UTC()
	items, err := s.collector.FetchAll(ctx)
	if err != nil {
		return topic.IngestResult{}, collaboratorError("fetch channel items", err)
	}
	if len(items) == 0 {
		s.logger.Info().Msg("collector returned no channel items")
		return topic.IngestResult{Message: noNewTopicsMessage, Count: 0}, nil
	}

	documents := topic.NormalizeAll(items)
	if len(documents) > 0 {
		if err := s.index.Upsert(ctx, documents); err != nil {
			return topic.IngestResult{}, collaboratorError("upsert documents", err)
		}
	}

	s.logger.Info().
		Int("fetched", len(items)).
		Int("indexed", len(documents)).
		Dur("took", globaltime.Since(started)).
		Msg("channel items indexed")

	return topic.IngestResult{
		Message: fmt.Sprintf("Added %d topics to the vector index.", len(documents)),
		Count:   len(documents),
	}, nil
}

// FetchTopics returns the channel items straight from the collector.
func (s *Service) FetchTopics(ctx context.Context) ([]topic.ChannelItem, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if s.collector == nil {
		return nil, fmt.Errorf("listing requires a collector")
	}

	items, err := s.collector.FetchAll(ctx)
	if err != nil {
		return nil, collaboratorError("fetch channel items", err)
	}

	topics := make([]topic.ChannelItem, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		topics = append(topics, *item)
	}
	return topics, nil
}
