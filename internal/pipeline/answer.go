package pipeline

import (
	"context"
	"fmt"
	"math"
	"strings"

	"horse.fit/topicsearch/internal/topic"
)

const noRelevantItemsMarker = "No relevant items were found in the archive."

// Answer retrieves the topics closest to the question and asks the generative
// model to answer from them only. Sources are returned even when the model
// ignores them.
func (s *Service) Answer(ctx context.Context, question string) (topic.Answer, error) {
	if err := s.ready(); err != nil {
		return topic.Answer{}, err
	}
	if strings.TrimSpace(question) == "" {
		return topic.Answer{}, topic.NewValidationError("question", "is required")
	}
	if s.index == nil || s.generator == nil {
		return topic.Answer{}, fmt.Errorf("answering requires a vector index and a generator")
	}

	sources, err := s.search(ctx, question)
	if err != nil {
		return topic.Answer{}, err
	}

	language := s.cfg.ResolveLanguage(question)
	text, err := s.generator.Complete(ctx, systemInstruction(s.cfg.ChannelName, language), userMessage(question, renderContext(sources)))
	if err != nil {
		return topic.Answer{}, collaboratorError("generate answer", err)
	}

	s.logger.Debug().
		Int("sources", len(sources)).
		Str("language", language).
		Msg("answer generated")

	return topic.Answer{
		Answer:  text,
		Sources: sources,
	}, nil
}

func systemInstruction(channelName, language string) string {
	return fmt.Sprintf(
		"You are an assistant for the %s content archive. Answer only using the provided context. Reply only in %s.",
		channelName,
		language,
	)
}

func userMessage(question, context string) string {
	return "Question: " + question + "\n\nContext:\n" + context
}

func renderContext(sources []topic.SimilarTopic) string {
	if len(sources) == 0 {
		return noRelevantItemsMarker
	}

	blocks := make([]string, 0, len(sources))
	for _, source := range sources {
		blocks = append(blocks, renderContextBlock(source))
	}
	return strings.Join(blocks, "\n\n")
}

func renderContextBlock(source topic.SimilarTopic) string {
	var builder strings.Builder
	builder.WriteString("Title: ")
	builder.WriteString(source.Title)
	builder.WriteString("\nDescription: ")
	builder.WriteString(source.Description)
	builder.WriteString("\nURL: ")
	builder.WriteString(source.URL)
	fmt.Fprintf(&builder, "\nSimilarity: %d%%", int(math.Round(source.Similarity)))
	return builder.String()
}
