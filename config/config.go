package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the document chat service.
type Config struct {
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Index     IndexConfig     `yaml:"index"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ChunkerConfig holds segmenting configuration, both in characters.
type ChunkerConfig struct {
	MaxLength int `yaml:"max_length"`
	Overlap   int `yaml:"overlap"`
}

// RetrievalConfig holds the retrieval and composition policy.
type RetrievalConfig struct {
	TopK               int      `yaml:"top_k"`
	MinScore           float64  `yaml:"min_score"` // cosine similarity threshold in [0,1]
	Markers            []string `yaml:"markers"`   // disclaimer phrases suppressing source disclosure
	CacheSize          int      `yaml:"cache_size"`
	CacheTTLSeconds    int      `yaml:"cache_ttl_seconds"`
	CallTimeoutSeconds int      `yaml:"call_timeout_seconds"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`    // "openai", "ollama", "mock"
	Model     string `yaml:"model"`       // e.g. "text-embedding-3-small"
	APIKeyEnv string `yaml:"api_key_env"` // environment variable for the API key
	BaseURL   string `yaml:"base_url"`
	Dimension int    `yaml:"dimension"`
}

// LLMConfig holds completion model configuration.
type LLMConfig struct {
	Provider  string `yaml:"provider"` // "openai", "mock"
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url"`
}

// IndexConfig holds vector index configuration.
type IndexConfig struct {
	// Backend selects "bolt" (persistent) or "memory".
	Backend string `yaml:"backend"`
	// Path overrides the database location; empty means the default under
	// the data directory.
	Path string `yaml:"path"`
	// IngestTimeoutSeconds bounds each external call during ingestion.
	IngestTimeoutSeconds int `yaml:"ingest_timeout_seconds"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	MaxUploadMB int64  `yaml:"max_upload_mb"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Chunker: ChunkerConfig{
			MaxLength: 500,
			Overlap:   50,
		},
		Retrieval: RetrievalConfig{
			TopK:               3,
			MinScore:           0.75,
			Markers:            nil, // engine defaults apply
			CacheSize:          100,
			CacheTTLSeconds:    300,
			CallTimeoutSeconds: 60,
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 1536,
		},
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		Index: IndexConfig{
			Backend:              "bolt",
			IngestTimeoutSeconds: 60,
		},
		Server: ServerConfig{
			Addr:        ":8080",
			MaxUploadMB: 32,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for docchat.yaml,
// then .docchat/config.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "docchat.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".docchat", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RetrievalTimeout returns the per-call timeout for retrieval.
func (c *Config) RetrievalTimeout() time.Duration {
	return time.Duration(c.Retrieval.CallTimeoutSeconds) * time.Second
}

// IngestTimeout returns the per-call timeout for ingestion.
func (c *Config) IngestTimeout() time.Duration {
	return time.Duration(c.Index.IngestTimeoutSeconds) * time.Second
}

// CacheTTL returns the answer cache TTL.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Retrieval.CacheTTLSeconds) * time.Second
}

// IndexDBPath returns the path to the vector index database.
func (c *Config) IndexDBPath(dir string) string {
	if c.Index.Path != "" {
		return c.Index.Path
	}
	return filepath.Join(dir, ".docchat", "index.db")
}

// EnsureDataDir ensures the .docchat directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".docchat"), 0755)
}
