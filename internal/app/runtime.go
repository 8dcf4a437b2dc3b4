package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/topicsearch/internal/cli"
	"horse.fit/topicsearch/internal/config"
	"horse.fit/topicsearch/internal/db"
	"horse.fit/topicsearch/internal/embedding"
	"horse.fit/topicsearch/internal/langdetect"
	"horse.fit/topicsearch/internal/language"
	"horse.fit/topicsearch/internal/llm"
	"horse.fit/topicsearch/internal/logging"
	"horse.fit/topicsearch/internal/pipeline"
	"horse.fit/topicsearch/internal/vectorindex"
	"horse.fit/topicsearch/internal/youtube"
)

// needs lists which collaborators a command cannot run without. Missing
// optional collaborators are left nil and the pipeline reports them on use.
type needs struct {
	collector bool
	generator bool
}

type runtime struct {
	cfg     *config.Config
	logger  zerolog.Logger
	index   vectorindex.Index
	service *pipeline.Service
}

func (r *runtime) Close() {
	if r == nil || r.index == nil {
		return
	}
	if err := r.index.Close(); err != nil {
		r.logger.Warn().Err(err).Msg("close vector index failed")
	}
}

func loadEnvironment(envLoader *cli.EnvLoader) (*config.Config, zerolog.Logger, error) {
	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("initialize logger: %w", err)
	}
	return cfg, logger, nil
}

func buildRuntime(ctx context.Context, cfg *config.Config, logger zerolog.Logger, required needs) (*runtime, error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, fmt.Errorf("configure embeddings: %w", err)
	}

	index, err := newIndex(ctx, cfg, embedder, logger)
	if err != nil {
		return nil, fmt.Errorf("open vector index: %w", err)
	}

	var collector pipeline.Collector
	if err := cfg.RequireYouTube(); err == nil {
		youtubeCollector, err := youtube.NewCollector(ctx, youtube.Options{
			APIKey:            cfg.YouTubeAPIKey,
			ChannelID:         cfg.YouTubeChannelID,
			RequestsPerSecond: cfg.YouTubeRequestsPerSecond,
		}, logger.With().Str("component", "youtube").Logger())
		if err != nil {
			_ = index.Close()
			return nil, fmt.Errorf("configure youtube collector: %w", err)
		}
		collector = youtubeCollector
	} else if required.collector {
		_ = index.Close()
		return nil, err
	} else {
		logger.Debug().Err(err).Msg("youtube collector disabled")
	}

	var generator pipeline.Generator
	if err := cfg.RequireChat(); err == nil {
		chat, err := llm.New(llm.Options{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.ChatModel,
			Temperature: cfg.ChatTemperature,
		}, logger.With().Str("component", "llm").Logger())
		if err != nil {
			_ = index.Close()
			return nil, fmt.Errorf("configure chat model: %w", err)
		}
		logger.Debug().Str("chat_model", chat.Model()).Msg("chat model enabled")
		generator = chat
	} else if required.generator {
		_ = index.Close()
		return nil, err
	} else {
		logger.Debug().Err(err).Msg("chat model disabled")
	}

	service := pipeline.NewService(collector, index, generator, pipeline.Config{
		SimilarityThreshold: cfg.SimilarityThreshold,
		TopK:                pipeline.DefaultTopK,
		ChannelName:         cfg.ChannelName,
		ResolveLanguage:     newLanguageResolver(cfg),
	}, logger.With().Str("component", "pipeline").Logger())

	return &runtime{
		cfg:     cfg,
		logger:  logger,
		index:   index,
		service: service,
	}, nil
}

func newEmbedder(cfg *config.Config) (embedding.Embedder, error) {
	switch cfg.EmbeddingProvider {
	case config.EmbeddingProviderLocal:
		return embedding.NewLocal(embedding.LocalOptions{
			Endpoint:  cfg.EmbeddingEndpoint,
			ModelName: cfg.EmbeddingModel,
		}), nil
	case config.EmbeddingProviderOpenAI:
		return embedding.NewOpenAI(embedding.OpenAIOptions{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.EmbeddingModel,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", cfg.EmbeddingProvider)
	}
}

func newIndex(ctx context.Context, cfg *config.Config, embedder embedding.Embedder, logger zerolog.Logger) (vectorindex.Index, error) {
	batch := embedding.BatchOptions{
		BatchSize:   cfg.EmbeddingBatchSize,
		Concurrency: cfg.EmbeddingConcurrency,
	}
	indexLogger := logger.With().Str("component", "vectorindex").Str("backend", cfg.VectorStore).Logger()

	switch cfg.VectorStore {
	case config.VectorStorePGVector:
		pool, err := db.NewPool(ctx, db.Options{
			DatabaseURL: cfg.DatabaseURL,
			MinConns:    cfg.DBMinConns,
			MaxConns:    cfg.DBMaxConns,
			LogLevel:    cfg.LogLevel,
			Environment: cfg.Environment,
		})
		if err != nil {
			return nil, err
		}
		return vectorindex.NewPGVector(pool, embedder, batch, indexLogger), nil
	case config.VectorStoreQdrant:
		return vectorindex.NewQdrant(vectorindex.QdrantOptions{
			URL:        cfg.QdrantURL,
			APIKey:     cfg.QdrantAPIKey,
			Collection: cfg.QdrantCollection,
			Distance:   cfg.QdrantDistance,
		}, embedder, batch, indexLogger)
	case config.VectorStoreMemory:
		indexLogger.Warn().Msg("memory vector index is empty at start and lost on exit")
		return vectorindex.NewMemory(embedder, batch), nil
	default:
		return nil, fmt.Errorf("unsupported vector store %q", cfg.VectorStore)
	}
}

func newLanguageResolver(cfg *config.Config) pipeline.LanguageResolver {
	var detect func(string) string
	if cfg.AutoDetectAnswerLanguage() {
		detect = langdetect.DetectISO6391
	}
	return language.NewResolver(cfg.AnswerLanguage, cfg.AnswerLanguageFallback, detect)
}

// exitCodeFor maps caller mistakes to the usage exit code.
func exitCodeFor(err error) int {
	if _, ok := pipeline.IsValidation(err); ok {
		return 2
	}
	return 1
}

// startRuntime loads configuration and builds the runtime under a command
// timeout. Callers must call cancel and rt.Close.
func startRuntime(timeout time.Duration, envLoader *cli.EnvLoader, required needs) (context.Context, context.CancelFunc, *runtime, error) {
	cfg, logger, err := loadEnvironment(envLoader)
	if err != nil {
		return nil, nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	rt, err := buildRuntime(ctx, cfg, logger, required)
	if err != nil {
		cancel()
		logger.Error().Err(err).Msg("runtime initialization failed")
		return nil, nil, nil, err
	}
	return ctx, cancel, rt, nil
}
