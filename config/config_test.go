package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		ChunkSize:    1000,
		ChunkOverlap: 200,
		TopK:         5,
		MaxHistory:   10,
		Embeddings:   EmbeddingsConfig{Provider: ProviderOpenAI, Dimension: 1536},
		LLM:          LLMConfig{Provider: ProviderOpenAI},
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"POSTGRES_DSN", "NEO4J_URI", "CHUNK_SIZE", "CHUNK_OVERLAP",
		"TOP_K_CHUNKS", "MAX_HISTORY_MESSAGES", "RELEVANCE_THRESHOLD",
		"TEMPERATURE", "EMBEDDINGS_PROVIDER", "LLM_PROVIDER",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, 10, cfg.MaxHistory)
	assert.Equal(t, 0.3, cfg.RelevanceThreshold)
	assert.Equal(t, 0.7, cfg.LLM.Temperature)
	assert.Equal(t, ProviderOpenAI, cfg.Embeddings.Provider)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Empty(t, cfg.Neo4jURI)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "500")
	t.Setenv("CHUNK_OVERLAP", "50")
	t.Setenv("TOP_K_CHUNKS", "8")
	t.Setenv("RELEVANCE_THRESHOLD", "0")
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("EMBEDDINGS_PROVIDER", "ollama")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.ChunkSize)
	assert.Equal(t, 50, cfg.ChunkOverlap)
	assert.Equal(t, 8, cfg.TopK)
	assert.Zero(t, cfg.RelevanceThreshold)
	assert.Equal(t, ProviderOllama, cfg.LLM.Provider)
	assert.Equal(t, ProviderOllama, cfg.Embeddings.Provider)
}

func TestLoadRejectsUnparsableNumbers(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "not-a-number")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHUNK_SIZE")
}

func TestValidateOverlapMustBeSmallerThanChunkSize(t *testing.T) {
	cfg := validConfig()
	cfg.ChunkOverlap = cfg.ChunkSize
	require.Error(t, cfg.Validate())

	cfg.ChunkOverlap = cfg.ChunkSize + 1
	require.Error(t, cfg.Validate())

	cfg.ChunkOverlap = cfg.ChunkSize - 1
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }},
		{"negative overlap", func(c *Config) { c.ChunkOverlap = -1 }},
		{"zero top-k", func(c *Config) { c.TopK = 0 }},
		{"zero max history", func(c *Config) { c.MaxHistory = 0 }},
		{"zero dimension", func(c *Config) { c.Embeddings.Dimension = 0 }},
		{"unknown embeddings provider", func(c *Config) { c.Embeddings.Provider = "cohere" }},
		{"unknown llm provider", func(c *Config) { c.LLM.Provider = "anthropic" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}
