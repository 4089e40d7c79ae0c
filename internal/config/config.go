// ABOUTME: Centralized configuration for the docqa service
// ABOUTME: Defaults, then an optional TOML file, then environment variables, with validation
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Registry backends
const (
	RegistryFile  = "file"
	RegistryCharm = "charm"
)

// Config holds all configuration for the docqa system
type Config struct {
	// OpenAI-compatible provider settings
	OpenAIKey         string
	OpenAIBaseURL     string
	ChatModel         string
	EmbeddingModel    string
	Timeout           time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
	RequestsPerSecond float64

	// Storage settings
	DataDir      string
	UploadDir    string
	VectorDBPath string
	Registry     string

	// Charm settings (used when Registry is "charm")
	CharmHost   string
	CharmDBName string
	AutoSync    bool

	// Chunking and retrieval
	ChunkSize     int
	ChunkOverlap  int
	RetrievalTopK int

	// Generation sampling
	Temperature float64
	MaxTokens   int

	// Upload limits enforced at the CLI and MCP boundary
	MaxUploadBytes int64

	// Logging
	LogLevel  string
	LogFormat string
}

// fileConfig mirrors the TOML layout. Pointers distinguish "unset" from zero values.
type fileConfig struct {
	OpenAI struct {
		APIKey            *string  `toml:"api_key"`
		BaseURL           *string  `toml:"base_url"`
		ChatModel         *string  `toml:"chat_model"`
		EmbeddingModel    *string  `toml:"embedding_model"`
		Timeout           *string  `toml:"timeout"`
		MaxRetries        *int     `toml:"max_retries"`
		RetryDelay        *string  `toml:"retry_delay"`
		RequestsPerSecond *float64 `toml:"requests_per_second"`
	} `toml:"openai"`
	Storage struct {
		DataDir   *string `toml:"data_dir"`
		UploadDir *string `toml:"upload_dir"`
		VectorDB  *string `toml:"vector_db"`
		Registry  *string `toml:"registry"`
	} `toml:"storage"`
	Charm struct {
		Host     *string `toml:"host"`
		DB       *string `toml:"db"`
		AutoSync *bool   `toml:"auto_sync"`
	} `toml:"charm"`
	Chunking struct {
		Size    *int `toml:"size"`
		Overlap *int `toml:"overlap"`
	} `toml:"chunking"`
	Retrieval struct {
		TopK *int `toml:"top_k"`
	} `toml:"retrieval"`
	Generation struct {
		Temperature *float64 `toml:"temperature"`
		MaxTokens   *int     `toml:"max_tokens"`
	} `toml:"generation"`
	Limits struct {
		MaxUploadBytes *int64 `toml:"max_upload_bytes"`
	} `toml:"limits"`
	Logging struct {
		Level  *string `toml:"level"`
		Format *string `toml:"format"`
	} `toml:"logging"`
}

// Default returns the built-in configuration
func Default() *Config {
	dataDir := DefaultDataDir()
	return &Config{
		ChatModel:      "gpt-4o-mini",
		EmbeddingModel: "text-embedding-3-small",
		Timeout:        30 * time.Second,
		MaxRetries:     3,
		RetryDelay:     2 * time.Second,
		DataDir:        dataDir,
		Registry:       RegistryFile,
		CharmHost:      "cloud.charm.sh",
		CharmDBName:    "docqa",
		AutoSync:       true,
		ChunkSize:      500,
		ChunkOverlap:   50,
		RetrievalTopK:  5,
		Temperature:    0.7,
		MaxTokens:      2000,
		MaxUploadBytes: 10 * 1024 * 1024,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// DefaultDataDir returns $XDG_DATA_HOME/docqa, falling back to ~/.local/share/docqa
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".local", "share", "docqa")
		}
		dataHome = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataHome, "docqa")
}

// Load reads configuration from DOCQA_CONFIG (if set) and environment variables
func Load() (*Config, error) {
	return LoadFile(os.Getenv("DOCQA_CONFIG"))
}

// LoadFile reads configuration from the given TOML file, then applies environment overrides.
// An empty path skips the file layer.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.resolvePaths()

	return cfg, cfg.Validate()
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	setString(&c.OpenAIKey, fc.OpenAI.APIKey)
	setString(&c.OpenAIBaseURL, fc.OpenAI.BaseURL)
	setString(&c.ChatModel, fc.OpenAI.ChatModel)
	setString(&c.EmbeddingModel, fc.OpenAI.EmbeddingModel)
	if err := setDuration(&c.Timeout, fc.OpenAI.Timeout, "openai.timeout"); err != nil {
		return err
	}
	setInt(&c.MaxRetries, fc.OpenAI.MaxRetries)
	if err := setDuration(&c.RetryDelay, fc.OpenAI.RetryDelay, "openai.retry_delay"); err != nil {
		return err
	}
	setFloat(&c.RequestsPerSecond, fc.OpenAI.RequestsPerSecond)

	setString(&c.DataDir, fc.Storage.DataDir)
	setString(&c.UploadDir, fc.Storage.UploadDir)
	setString(&c.VectorDBPath, fc.Storage.VectorDB)
	setString(&c.Registry, fc.Storage.Registry)

	setString(&c.CharmHost, fc.Charm.Host)
	setString(&c.CharmDBName, fc.Charm.DB)
	if fc.Charm.AutoSync != nil {
		c.AutoSync = *fc.Charm.AutoSync
	}

	setInt(&c.ChunkSize, fc.Chunking.Size)
	setInt(&c.ChunkOverlap, fc.Chunking.Overlap)
	setInt(&c.RetrievalTopK, fc.Retrieval.TopK)
	setFloat(&c.Temperature, fc.Generation.Temperature)
	setInt(&c.MaxTokens, fc.Generation.MaxTokens)
	if fc.Limits.MaxUploadBytes != nil {
		c.MaxUploadBytes = *fc.Limits.MaxUploadBytes
	}
	setString(&c.LogLevel, fc.Logging.Level)
	setString(&c.LogFormat, fc.Logging.Format)

	return nil
}

func (c *Config) applyEnv() {
	c.OpenAIKey = getEnv("OPENAI_API_KEY", c.OpenAIKey)
	c.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", c.OpenAIBaseURL)
	c.ChatModel = getEnv("DOCQA_CHAT_MODEL", c.ChatModel)
	c.EmbeddingModel = getEnv("DOCQA_EMBEDDING_MODEL", c.EmbeddingModel)
	c.Timeout = getEnvDuration("OPENAI_TIMEOUT", c.Timeout)
	c.MaxRetries = getEnvInt("OPENAI_MAX_RETRIES", c.MaxRetries)
	c.RetryDelay = getEnvDuration("OPENAI_RETRY_DELAY", c.RetryDelay)
	c.RequestsPerSecond = getEnvFloat("OPENAI_REQUESTS_PER_SECOND", c.RequestsPerSecond)

	c.DataDir = getEnv("DOCQA_DATA_DIR", c.DataDir)
	c.UploadDir = getEnv("DOCQA_UPLOAD_DIR", c.UploadDir)
	c.VectorDBPath = getEnv("DOCQA_VECTOR_DB", c.VectorDBPath)
	c.Registry = getEnv("DOCQA_REGISTRY", c.Registry)

	c.CharmHost = getEnv("CHARM_HOST", c.CharmHost)
	c.CharmDBName = getEnv("CHARM_DB", c.CharmDBName)
	c.AutoSync = getEnvBool("CHARM_AUTO_SYNC", c.AutoSync)

	c.ChunkSize = getEnvInt("CHUNK_SIZE", c.ChunkSize)
	c.ChunkOverlap = getEnvInt("CHUNK_OVERLAP", c.ChunkOverlap)
	c.RetrievalTopK = getEnvInt("RETRIEVAL_TOP_K", c.RetrievalTopK)
	c.Temperature = getEnvFloat("GENERATION_TEMPERATURE", c.Temperature)
	c.MaxTokens = getEnvInt("GENERATION_MAX_TOKENS", c.MaxTokens)
	c.MaxUploadBytes = int64(getEnvInt("MAX_UPLOAD_BYTES", int(c.MaxUploadBytes)))

	c.LogLevel = getEnv("DOCQA_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("DOCQA_LOG_FORMAT", c.LogFormat)
}

// resolvePaths derives the upload directory and vector database from the data directory
func (c *Config) resolvePaths() {
	if c.UploadDir == "" {
		c.UploadDir = filepath.Join(c.DataDir, "uploads")
	}
	if c.VectorDBPath == "" {
		c.VectorDBPath = filepath.Join(c.DataDir, "vectors.db")
	}
}

// Validate checks value ranges
func (c *Config) Validate() error {
	var errs []error
	if c.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize))
	}
	if c.ChunkOverlap < 0 {
		errs = append(errs, fmt.Errorf("CHUNK_OVERLAP must be non-negative, got %d", c.ChunkOverlap))
	}
	if c.RetrievalTopK <= 0 {
		errs = append(errs, fmt.Errorf("RETRIEVAL_TOP_K must be positive, got %d", c.RetrievalTopK))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		errs = append(errs, fmt.Errorf("GENERATION_TEMPERATURE must be 0-2, got %f", c.Temperature))
	}
	if c.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("GENERATION_MAX_TOKENS must be positive, got %d", c.MaxTokens))
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		errs = append(errs, fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries))
	}
	if c.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("OPENAI_REQUESTS_PER_SECOND must be non-negative, got %f", c.RequestsPerSecond))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes))
	}
	if c.Registry != RegistryFile && c.Registry != RegistryCharm {
		errs = append(errs, fmt.Errorf("DOCQA_REGISTRY must be %q or %q, got %q", RegistryFile, RegistryCharm, c.Registry))
	}
	return errors.Join(errs...)
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *string, key string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
