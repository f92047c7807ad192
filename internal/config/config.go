// Package config loads engine configuration from an optional YAML file with
// environment-variable overrides. Defaults are defined in code so the engine
// runs with no configuration at all.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Review failure policies. fail-open preserves the original behavior of
// auto-approving a draft when the reviewer is unreachable; fail-closed
// rejects instead, which drives the ticket toward escalation.
const (
	ReviewFailOpen   = "fail-open"
	ReviewFailClosed = "fail-closed"
)

// Config is the top-level engine configuration.
type Config struct {
	// MaxRetries bounds the redraft loop. A ticket whose review is rejected
	// after MaxRetries redrafts is escalated.
	MaxRetries int `yaml:"max_retries"`

	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Review     ReviewConfig     `yaml:"review"`
	Model      ModelConfig      `yaml:"model"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Database   DatabaseConfig   `yaml:"database"`
	Server     ServerConfig     `yaml:"server"`
}

// RetrievalConfig controls the hybrid search and merge behavior.
type RetrievalConfig struct {
	InitialK     int `yaml:"initial_k"`     // results for the first retrieval
	RefineK      int `yaml:"refine_k"`      // results per refined query
	MergeLimit   int `yaml:"merge_limit"`   // cap after multi-query dedup
	ChunkSize    int `yaml:"chunk_size"`    // ingestion chunk size in chars
	ChunkOverlap int `yaml:"chunk_overlap"` // overlap between chunks
}

// ReviewConfig controls review routing.
type ReviewConfig struct {
	FailurePolicy string `yaml:"failure_policy"` // fail-open or fail-closed
}

// ModelConfig configures the language-model client.
type ModelConfig struct {
	Name               string  `yaml:"name"`
	APIKey             string  `yaml:"api_key"` // falls back to ANTHROPIC_API_KEY
	MaxTokens          int     `yaml:"max_tokens"`
	MaxConcurrentCalls int     `yaml:"max_concurrent_calls"`
	RequestsPerSecond  float64 `yaml:"requests_per_second"`
}

// EmbeddingsConfig configures how document and query embeddings are computed.
// Provider "openai" talks to an OpenAI-compatible embeddings endpoint (a local
// server works via base_url); "local" uses the built-in deterministic
// feature-hashing embedder, which needs no network.
type EmbeddingsConfig struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"` // falls back to OPENAI_API_KEY
}

// DatabaseConfig locates the SQLite database holding the knowledge index,
// run history, and escalation log.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		MaxRetries: 2,
		Retrieval: RetrievalConfig{
			InitialK:     5,
			RefineK:      3,
			MergeLimit:   10,
			ChunkSize:    1000,
			ChunkOverlap: 200,
		},
		Review: ReviewConfig{
			FailurePolicy: ReviewFailOpen,
		},
		Model: ModelConfig{
			Name:               "claude-sonnet-4-5-20250929",
			MaxTokens:          2048,
			MaxConcurrentCalls: 3,
			RequestsPerSecond:  2,
		},
		Embeddings: EmbeddingsConfig{
			Provider: "local",
			Model:    "text-embedding-3-small",
		},
		Database: DatabaseConfig{
			Path: ".resolvd/resolvd.db",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load reads configuration from path (if it exists), then applies
// environment overrides. An empty path skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays RESOLVD_* environment variables onto the config.
func (c *Config) applyEnv() {
	if v := os.Getenv("RESOLVD_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}
	if v := os.Getenv("RESOLVD_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("RESOLVD_LISTEN_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("RESOLVD_MODEL"); v != "" {
		c.Model.Name = v
	}
	if v := os.Getenv("RESOLVD_REVIEW_FAILURE_POLICY"); v != "" {
		c.Review.FailurePolicy = v
	}
	if v := os.Getenv("RESOLVD_EMBEDDINGS_PROVIDER"); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv("RESOLVD_EMBEDDINGS_BASE_URL"); v != "" {
		c.Embeddings.BaseURL = v
	}
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0, got %d", c.MaxRetries)
	}
	if c.Review.FailurePolicy != ReviewFailOpen && c.Review.FailurePolicy != ReviewFailClosed {
		return fmt.Errorf("review.failure_policy must be %q or %q, got %q",
			ReviewFailOpen, ReviewFailClosed, c.Review.FailurePolicy)
	}
	if c.Retrieval.InitialK <= 0 || c.Retrieval.RefineK <= 0 || c.Retrieval.MergeLimit <= 0 {
		return fmt.Errorf("retrieval result sizes must be positive")
	}
	if c.Retrieval.ChunkOverlap >= c.Retrieval.ChunkSize {
		return fmt.Errorf("retrieval.chunk_overlap (%d) must be smaller than chunk_size (%d)",
			c.Retrieval.ChunkOverlap, c.Retrieval.ChunkSize)
	}
	switch c.Embeddings.Provider {
	case "local", "openai":
	default:
		return fmt.Errorf("embeddings.provider must be \"local\" or \"openai\", got %q", c.Embeddings.Provider)
	}
	return nil
}
