package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/pdfagent/internal/domain"
)

// Config holds the pdfagent configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Storage    StorageConfig    `yaml:"storage"`
	Processing ProcessingConfig `yaml:"processing"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int   `yaml:"port"`
	ReadTimeoutSec  int   `yaml:"read_timeout_sec"`
	WriteTimeoutSec int   `yaml:"write_timeout_sec"`
	ShutdownSec     int   `yaml:"shutdown_timeout_sec"`
	MaxUploadBytes  int64 `yaml:"max_upload_bytes"`
}

// DatabaseConfig holds vector database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds on-disk and key-space settings.
type StorageConfig struct {
	DataDir   string `yaml:"data_dir"`
	KeyPrefix string `yaml:"key_prefix"`
}

// ProcessingConfig holds pipeline parameters.
type ProcessingConfig struct {
	MaxPages         int    `yaml:"max_pages"`
	ChunkSize        int    `yaml:"chunk_size"`
	ChunkOverlap     int    `yaml:"chunk_overlap"`
	TopK             int    `yaml:"top_k"`
	MaxSources       int    `yaml:"max_sources"`
	PreviewChars     int    `yaml:"preview_chars"`
	DirectTextLimit  int    `yaml:"direct_text_limit"`
	EmbedBatchSize   int    `yaml:"embed_batch_size"`
	EmbedConcurrency int    `yaml:"embed_concurrency"`
	IndexAlgorithm   string `yaml:"index_algorithm"` // hnsw, flat
	HNSWM            int    `yaml:"hnsw_m"`
	HNSWEFConstruct  int    `yaml:"hnsw_ef_construction"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	APIKey        string `yaml:"api_key"`
	BaseURL       string `yaml:"base_url"`
	Model         string `yaml:"model"`
	Dimensions    int    `yaml:"dimensions"`
	TimeoutSec    int    `yaml:"timeout_sec"`
	CacheTTLHours int    `yaml:"cache_ttl_hours"` // 0 disables the query cache
}

// GenerationConfig holds chat completion settings.
type GenerationConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TimeoutSec  int     `yaml:"timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML config bytes, expanding ${VAR} references.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	c.HTTP.applyDefaults()
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = domain.KeyPrefix
	}
	c.Processing.applyDefaults()
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 1536
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}
	if c.Generation.Model == "" {
		c.Generation.Model = "gpt-4o-mini"
	}
	if c.Generation.Temperature == 0 {
		c.Generation.Temperature = 0.7
	}
	if c.Generation.MaxTokens <= 0 {
		c.Generation.MaxTokens = 8192
	}
	if c.Generation.TimeoutSec <= 0 {
		c.Generation.TimeoutSec = 120
	}
}

func (h *HTTPConfig) applyDefaults() {
	if h.ReadTimeoutSec <= 0 {
		h.ReadTimeoutSec = 30
	}
	if h.WriteTimeoutSec <= 0 {
		h.WriteTimeoutSec = 300
	}
	if h.ShutdownSec <= 0 {
		h.ShutdownSec = 10
	}
	if h.MaxUploadBytes <= 0 {
		h.MaxUploadBytes = 100 << 20
	}
}

func (p *ProcessingConfig) applyDefaults() {
	if p.MaxPages <= 0 {
		p.MaxPages = 500
	}
	if p.ChunkSize <= 0 {
		p.ChunkSize = 1000
		if p.ChunkOverlap == 0 {
			p.ChunkOverlap = 200
		}
	}
	if p.TopK <= 0 {
		p.TopK = 5
	}
	if p.MaxSources <= 0 || p.MaxSources > p.TopK {
		p.MaxSources = p.TopK
	}
	if p.PreviewChars <= 0 {
		p.PreviewChars = 200
	}
	if p.DirectTextLimit <= 0 {
		p.DirectTextLimit = 30000
	}
	if p.EmbedBatchSize <= 0 {
		p.EmbedBatchSize = 64
	}
	if p.EmbedConcurrency <= 0 {
		p.EmbedConcurrency = 4
	}
	if p.IndexAlgorithm == "" {
		p.IndexAlgorithm = "hnsw"
	}
	if p.HNSWM <= 0 {
		p.HNSWM = 16
	}
	if p.HNSWEFConstruct <= 0 {
		p.HNSWEFConstruct = 200
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 0 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return errors.New("database.addrs is required")
	}
	switch c.Database.Driver {
	case "valkey", "redis":
	default:
		return fmt.Errorf("database.driver must be \"valkey\" or \"redis\", got %q", c.Database.Driver)
	}
	switch c.Processing.IndexAlgorithm {
	case "hnsw", "flat":
	default:
		return fmt.Errorf("processing.index_algorithm must be \"hnsw\" or \"flat\", got %q",
			c.Processing.IndexAlgorithm)
	}
	if c.Processing.ChunkOverlap < 0 || c.Processing.ChunkOverlap >= c.Processing.ChunkSize {
		return fmt.Errorf("%w: processing.chunk_overlap (%d) must be less than chunk_size (%d)",
			domain.ErrInvalidConfig, c.Processing.ChunkOverlap, c.Processing.ChunkSize)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := env + ".yaml"

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// relative to the source file, for tests and go run
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b)))
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
