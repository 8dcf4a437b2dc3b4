package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	VectorStorePGVector = "pgvector"
	VectorStoreQdrant   = "qdrant"
	VectorStoreMemory   = "memory"

	EmbeddingProviderOpenAI = "openai"
	EmbeddingProviderLocal  = "local"

	AnswerLanguageAuto = "auto"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	YouTubeAPIKey            string  `envconfig:"YOUTUBE_API_KEY"`
	YouTubeChannelID         string  `envconfig:"YOUTUBE_CHANNEL_ID"`
	YouTubeRequestsPerSecond float64 `envconfig:"YOUTUBE_REQUESTS_PER_SECOND" default:"5"`

	ChannelName            string  `envconfig:"CHANNEL_NAME" default:"Lviv Java Club"`
	SimilarityThreshold    float64 `envconfig:"SIMILARITY_THRESHOLD" default:"75"`
	AnswerLanguage         string  `envconfig:"ANSWER_LANGUAGE" default:"uk"`
	AnswerLanguageFallback string  `envconfig:"ANSWER_LANGUAGE_FALLBACK" default:"en"`

	VectorStore string `envconfig:"VECTOR_STORE" default:"pgvector"`

	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBMinConns  int32  `envconfig:"DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"8"`

	QdrantURL        string `envconfig:"QDRANT_URL" default:"http://127.0.0.1:6333"`
	QdrantAPIKey     string `envconfig:"QDRANT_API_KEY" default:""`
	QdrantCollection string `envconfig:"QDRANT_COLLECTION" default:"topics"`
	QdrantDistance   string `envconfig:"QDRANT_DISTANCE" default:"Cosine"`

	EmbeddingProvider    string `envconfig:"EMBEDDING_PROVIDER" default:"openai"`
	EmbeddingEndpoint    string `envconfig:"EMBEDDING_ENDPOINT" default:"http://127.0.0.1:8844/embed"`
	EmbeddingModel       string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	EmbeddingBatchSize   int    `envconfig:"EMBEDDING_BATCH_SIZE" default:"32"`
	EmbeddingConcurrency int    `envconfig:"EMBEDDING_CONCURRENCY" default:"4"`

	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY" default:""`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL" default:""`

	ChatModel       string  `envconfig:"CHAT_MODEL" default:"gpt-4o-mini"`
	ChatTemperature float32 `envconfig:"CHAT_TEMPERATURE" default:"0.2"`

	AdminTokenHash string `envconfig:"ADMIN_TOKEN_HASH" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	cfg.VectorStore = strings.ToLower(strings.TrimSpace(cfg.VectorStore))
	cfg.EmbeddingProvider = strings.ToLower(strings.TrimSpace(cfg.EmbeddingProvider))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if math.IsNaN(c.SimilarityThreshold) || c.SimilarityThreshold < 0 || c.SimilarityThreshold > 100 {
		return fmt.Errorf("SIMILARITY_THRESHOLD must be between 0 and 100")
	}
	if c.YouTubeRequestsPerSecond <= 0 {
		return fmt.Errorf("YOUTUBE_REQUESTS_PER_SECOND must be > 0")
	}
	if strings.TrimSpace(c.AnswerLanguage) == "" {
		return fmt.Errorf("ANSWER_LANGUAGE is required")
	}

	switch c.VectorStore {
	case VectorStorePGVector:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required when VECTOR_STORE=%s", VectorStorePGVector)
		}
		if c.DBMinConns < 0 {
			return fmt.Errorf("DB_MIN_CONNS must be >= 0")
		}
		if c.DBMaxConns < 1 {
			return fmt.Errorf("DB_MAX_CONNS must be >= 1")
		}
		if c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("DB_MIN_CONNS (%d) cannot exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
		}
	case VectorStoreQdrant:
		if strings.TrimSpace(c.QdrantURL) == "" {
			return fmt.Errorf("QDRANT_URL is required when VECTOR_STORE=%s", VectorStoreQdrant)
		}
		if strings.TrimSpace(c.QdrantCollection) == "" {
			return fmt.Errorf("QDRANT_COLLECTION is required")
		}
	case VectorStoreMemory:
	default:
		return fmt.Errorf("VECTOR_STORE must be one of %s, %s, %s", VectorStorePGVector, VectorStoreQdrant, VectorStoreMemory)
	}

	switch c.EmbeddingProvider {
	case EmbeddingProviderOpenAI:
		if strings.TrimSpace(c.OpenAIAPIKey) == "" && strings.TrimSpace(c.OpenAIBaseURL) == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when EMBEDDING_PROVIDER=%s", EmbeddingProviderOpenAI)
		}
	case EmbeddingProviderLocal:
		if strings.TrimSpace(c.EmbeddingEndpoint) == "" {
			return fmt.Errorf("EMBEDDING_ENDPOINT is required when EMBEDDING_PROVIDER=%s", EmbeddingProviderLocal)
		}
	default:
		return fmt.Errorf("EMBEDDING_PROVIDER must be %s or %s", EmbeddingProviderOpenAI, EmbeddingProviderLocal)
	}
	if strings.TrimSpace(c.EmbeddingModel) == "" {
		return fmt.Errorf("EMBEDDING_MODEL is required")
	}
	if c.EmbeddingBatchSize < 1 {
		return fmt.Errorf("EMBEDDING_BATCH_SIZE must be >= 1")
	}
	if c.EmbeddingConcurrency < 1 {
		return fmt.Errorf("EMBEDDING_CONCURRENCY must be >= 1")
	}
	if c.ChatTemperature < 0 || c.ChatTemperature > 2 {
		return fmt.Errorf("CHAT_TEMPERATURE must be between 0 and 2")
	}
	return nil
}

// RequireYouTube checks the settings the channel collector cannot run without.
func (c *Config) RequireYouTube() error {
	if strings.TrimSpace(c.YouTubeAPIKey) == "" {
		return fmt.Errorf("YOUTUBE_API_KEY is required")
	}
	if strings.TrimSpace(c.YouTubeChannelID) == "" {
		return fmt.Errorf("YOUTUBE_CHANNEL_ID is required")
	}
	return nil
}

// RequireChat checks the settings the answer model cannot run without.
func (c *Config) RequireChat() error {
	if strings.TrimSpace(c.OpenAIAPIKey) == "" && strings.TrimSpace(c.OpenAIBaseURL) == "" {
		return fmt.Errorf("OPENAI_API_KEY or OPENAI_BASE_URL is required for answering")
	}
	if strings.TrimSpace(c.ChatModel) == "" {
		return fmt.Errorf("CHAT_MODEL is required")
	}
	return nil
}

func (c *Config) AutoDetectAnswerLanguage() bool {
	return strings.EqualFold(strings.TrimSpace(c.AnswerLanguage), AnswerLanguageAuto)
}
