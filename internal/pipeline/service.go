package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"horse.fit/topicsearch/internal/topic"
)

const (
	DefaultTopK                = 10
	DefaultSimilarityThreshold = 75.0
	DefaultChannelName         = "Lviv Java Club"
)

// ErrCollaborator marks failures of the collector, the vector index or the
// generative model. They are returned as-is and never retried here.
var ErrCollaborator = errors.New("collaborator failure")

// Collector returns the complete current item set of the channel.
type Collector interface {
	FetchAll(ctx context.Context) ([]*topic.ChannelItem, error)
}

// Index is a nearest-neighbour store over embedded topic documents.
type Index interface {
	Upsert(ctx context.Context, documents []topic.TopicDocument) error
	Search(ctx context.Context, query string, topK int) ([]topic.RetrievedMatch, error)
}

// Generator produces a completion for a system instruction and a user message.
type Generator interface {
	Complete(ctx context.Context, systemInstruction, userMessage string) (string, error)
}

// LanguageResolver names the language an answer should be written in.
type LanguageResolver func(question string) string

type Config struct {
	SimilarityThreshold float64
	TopK                int
	ChannelName         string
	ResolveLanguage     LanguageResolver
}

type Service struct {
	collector Collector
	index     Index
	generator Generator
	cfg       Config
	logger    zerolog.Logger
}

func NewService(collector Collector, index Index, generator Generator, cfg Config, logger zerolog.Logger) *Service {
	return &Service{
		collector: collector,
		index:     index,
		generator: generator,
		cfg:       normalizeConfig(cfg),
		logger:    logger,
	}
}

func (s *Service) Config() Config {
	if s == nil {
		return normalizeConfig(Config{})
	}
	return s.cfg
}

func normalizeConfig(cfg Config) Config {
	normalized := cfg
	if normalized.TopK <= 0 {
		normalized.TopK = DefaultTopK
	}
	// 0 is a valid threshold and marks every top match as covered.
	if !(normalized.SimilarityThreshold >= 0 && normalized.SimilarityThreshold <= 100) {
		normalized.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if strings.TrimSpace(normalized.ChannelName) == "" {
		normalized.ChannelName = DefaultChannelName
	}
	if normalized.ResolveLanguage == nil {
		normalized.ResolveLanguage = func(string) string { return "English" }
	}
	return normalized
}

func collaboratorError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrCollaborator, err)
}

// IsCollaboratorFailure reports whether err came from an external collaborator.
func IsCollaboratorFailure(err error) bool {
	return errors.Is(err, ErrCollaborator)
}

// IsValidation reports whether err was caused by caller input.
func IsValidation(err error) (*topic.ValidationError, bool) {
	var validationErr *topic.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr, true
	}
	return nil, false
}

func (s *Service) search(ctx context.Context, query string) ([]topic.SimilarTopic, error) {
	matches, err := s.index.Search(ctx, query, s.cfg.TopK)
	if err != nil {
		return nil, collaboratorError("search vector index", err)
	}
	return topic.ToSimilarTopics(matches), nil
}

func (s *Service) ready() error {
	if s == nil {
		return fmt.Errorf("pipeline service is not initialized")
	}
	return nil
}
