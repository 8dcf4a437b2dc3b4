package config

import (
	"math"
	"testing"
)

func validConfig() Config {
	return Config{
		Environment:              "local",
		LogLevel:                 "info",
		YouTubeRequestsPerSecond: 5,
		SimilarityThreshold:      75,
		AnswerLanguage:           "uk",
		VectorStore:              VectorStoreMemory,
		EmbeddingProvider:        EmbeddingProviderLocal,
		EmbeddingEndpoint:        "http://127.0.0.1:8844/embed",
		EmbeddingModel:           "bge-m3",
		EmbeddingBatchSize:       32,
		EmbeddingConcurrency:     4,
		ChatTemperature:          0.2,
	}
}

func TestValidate_Valid(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidate_ThresholdRange(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.SimilarityThreshold = 120
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected threshold above 100 to fail")
	}
}

func TestValidate_ThresholdZeroAndNaN(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.SimilarityThreshold = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected threshold 0 to be accepted, got %v", err)
	}

	cfg.SimilarityThreshold = math.NaN()
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected NaN threshold to fail")
	}
}

func TestValidate_PGVectorNeedsDatabaseURL(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.VectorStore = VectorStorePGVector
	cfg.DBMaxConns = 8
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing DATABASE_URL to fail")
	}
	cfg.DatabaseURL = "postgres://localhost/topics"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected config with DATABASE_URL to pass, got %v", err)
	}
}

func TestValidate_UnknownVectorStore(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.VectorStore = "chroma"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown vector store to fail")
	}
}

func TestValidate_OpenAIEmbeddingsNeedKey(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.EmbeddingProvider = EmbeddingProviderOpenAI
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing OPENAI_API_KEY to fail")
	}
}

func TestRequireYouTube(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if err := cfg.RequireYouTube(); err == nil {
		t.Fatalf("expected missing YouTube settings to fail")
	}
	cfg.YouTubeAPIKey = "key"
	cfg.YouTubeChannelID = "UC123"
	if err := cfg.RequireYouTube(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAutoDetectAnswerLanguage(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if cfg.AutoDetectAnswerLanguage() {
		t.Fatalf("did not expect auto detection for uk")
	}
	cfg.AnswerLanguage = " AUTO "
	if !cfg.AutoDetectAnswerLanguage() {
		t.Fatalf("expected auto detection")
	}
}
