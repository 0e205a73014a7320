// Package config loads application settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

type EmbeddingsConfig struct {
	Provider  string
	Model     string
	Dimension int
}

type LLMConfig struct {
	Provider    string
	Model       string
	Temperature float64
}

type Config struct {
	PostgresDSN string

	// Neo4j backs the primary retrieval path. Leaving the URI empty disables
	// it; retrieval then goes straight to the vector store.
	Neo4jURI  string
	Neo4jUser string
	Neo4jPass string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OllamaHost    string

	Embeddings EmbeddingsConfig
	LLM        LLMConfig

	ChunkSize    int
	ChunkOverlap int

	TopK               int
	RelevanceThreshold float64
	MaxHistory         int

	DataDir string
}

// Load reads settings from a .env file (when present) and the environment,
// applying defaults and validating before any component is constructed.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		PostgresDSN:   getEnv("POSTGRES_DSN", "postgres://localhost:5432/doc-chat?sslmode=disable"),
		Neo4jURI:      getEnv("NEO4J_URI", ""),
		Neo4jUser:     getEnv("NEO4J_USERNAME", "neo4j"),
		Neo4jPass:     getEnv("NEO4J_PASSWORD", ""),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		OllamaHost:    getEnv("OLLAMA_HOST", "http://localhost:11434"),
		Embeddings: EmbeddingsConfig{
			Provider: getEnv("EMBEDDINGS_PROVIDER", ProviderOpenAI),
			Model:    getEnv("EMBEDDINGS_MODEL", "text-embedding-3-small"),
		},
		LLM: LLMConfig{
			Provider: getEnv("LLM_PROVIDER", ProviderOpenAI),
			Model:    getEnv("LLM_MODEL", "gpt-4-turbo-preview"),
		},
		DataDir: getEnv("DATA_DIR", "./data"),
	}

	var err error
	if cfg.Embeddings.Dimension, err = getEnvInt("EMBEDDINGS_DIMENSION", 1536); err != nil {
		return Config{}, err
	}
	if cfg.ChunkSize, err = getEnvInt("CHUNK_SIZE", 1000); err != nil {
		return Config{}, err
	}
	if cfg.ChunkOverlap, err = getEnvInt("CHUNK_OVERLAP", 200); err != nil {
		return Config{}, err
	}
	if cfg.TopK, err = getEnvInt("TOP_K_CHUNKS", 5); err != nil {
		return Config{}, err
	}
	if cfg.MaxHistory, err = getEnvInt("MAX_HISTORY_MESSAGES", 10); err != nil {
		return Config{}, err
	}
	if cfg.RelevanceThreshold, err = getEnvFloat("RELEVANCE_THRESHOLD", 0.3); err != nil {
		return Config{}, err
	}
	if cfg.LLM.Temperature, err = getEnvFloat("TEMPERATURE", 0.7); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate rejects settings that would break chunking or retrieval at
// runtime. A chunk overlap at or above the chunk size would keep the window
// from advancing, so it is a startup error rather than a silent clamp.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("chunk overlap must not be negative, got %d", c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk overlap (%d) must be smaller than chunk size (%d)", c.ChunkOverlap, c.ChunkSize)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top-k must be positive, got %d", c.TopK)
	}
	if c.MaxHistory <= 0 {
		return fmt.Errorf("max history must be positive, got %d", c.MaxHistory)
	}
	if c.Embeddings.Dimension <= 0 {
		return fmt.Errorf("embedding dimension must be positive, got %d", c.Embeddings.Dimension)
	}
	switch c.Embeddings.Provider {
	case ProviderOpenAI, ProviderOllama:
	default:
		return fmt.Errorf("unknown embeddings provider: %s", c.Embeddings.Provider)
	}
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderOllama:
	default:
		return fmt.Errorf("unknown llm provider: %s", c.LLM.Provider)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return value, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return value, nil
}
