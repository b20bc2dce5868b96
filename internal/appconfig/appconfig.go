// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// defaultRequestTimeout is the default timeout for provider HTTP requests.
	defaultRequestTimeout = 120 * time.Second
	// defaultBatchSize is the number of texts sent to the embedding provider per call.
	defaultBatchSize = 20
	// defaultTopK is the number of passages retrieved per query.
	defaultTopK = 3

	defaultCorpusPath     = "articles.json"
	defaultFileCachePath  = "embeddings_cache.json"
	defaultSQLiteCache    = "embeddings_cache.db"
	defaultTimestampPath  = "embeddings_timestamp.txt"
	defaultEmbeddingModel = "text-embedding-ada-002"
	defaultChatModel      = "gpt-4o-mini"
	defaultOllamaURL      = "http://localhost:11434"
)

// Provider and backend identifiers accepted in the configuration.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config represents the top-level application configuration.
type Config struct {
	CorpusPath    string `json:"corpusPath,omitempty" mapstructure:"corpusPath"`
	CacheBackend  string `json:"cacheBackend,omitempty" mapstructure:"cacheBackend"`
	CacheFile     string `json:"cachePath,omitempty" mapstructure:"cachePath"`
	TimestampFile string `json:"timestampPath,omitempty" mapstructure:"timestampPath"`

	EmbeddingProvider          string  `json:"embeddingProvider,omitempty" mapstructure:"embeddingProvider"`
	EmbeddingModel             string  `json:"embeddingModel,omitempty" mapstructure:"embeddingModel"`
	EmbeddingBatchSize         int     `json:"embeddingBatchSize,omitempty" mapstructure:"embeddingBatchSize"`
	EmbeddingRequestsPerSecond float64 `json:"embeddingRequestsPerSecond,omitempty" mapstructure:"embeddingRequestsPerSecond"`

	ChatProvider string `json:"chatProvider,omitempty" mapstructure:"chatProvider"`
	ChatModel    string `json:"chatModel,omitempty" mapstructure:"chatModel"`

	OpenAIBaseURL string `json:"openAIBaseURL,omitempty" mapstructure:"openAIBaseURL"`
	OpenAIAPIKey  string `json:"-" mapstructure:"openAIAPIKey"`
	OllamaURL     string `json:"ollamaURL,omitempty" mapstructure:"ollamaURL"`

	RetrievalTopK     int `json:"topK,omitempty" mapstructure:"topK"`
	ContextTokenLimit int `json:"contextTokenLimit,omitempty" mapstructure:"contextTokenLimit"`

	TimeoutSeconds int    `json:"timeout,omitempty" mapstructure:"timeout"`
	LogFile        string `json:"logFile,omitempty" mapstructure:"logFile"`
	Debug          bool   `json:"debug" mapstructure:"debug"`
	JSONMode       bool   `json:"jsonMode" mapstructure:"jsonMode"`
	ConfigPath     string `json:"-" mapstructure:"-"`
}

// Defaults returns the configuration keys and values registered with viper before the
// config file is read.
func Defaults() map[string]any {
	return map[string]any{
		"corpusPath":         defaultCorpusPath,
		"cacheBackend":       BackendFile,
		"timestampPath":      defaultTimestampPath,
		"embeddingProvider":  ProviderOpenAI,
		"embeddingModel":     defaultEmbeddingModel,
		"embeddingBatchSize": defaultBatchSize,
		"chatProvider":       ProviderOpenAI,
		"chatModel":          defaultChatModel,
		"ollamaURL":          defaultOllamaURL,
		"topK":               defaultTopK,
		"timeout":            int(defaultRequestTimeout.Seconds()),
		"debug":              false,
		"jsonMode":           false,
	}
}

// RequestTimeout returns the timeout duration for provider requests, falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// BatchSize returns the embedding batch size, never less than one.
func (c Config) BatchSize() int {
	if c.EmbeddingBatchSize <= 0 {
		return defaultBatchSize
	}
	return c.EmbeddingBatchSize
}

// TopK returns the number of passages to retrieve per query.
func (c Config) TopK() int {
	if c.RetrievalTopK <= 0 {
		return defaultTopK
	}
	return c.RetrievalTopK
}

// Backend returns the normalized cache backend name.
func (c Config) Backend() string {
	if b := strings.ToLower(strings.TrimSpace(c.CacheBackend)); b != "" {
		return b
	}
	return BackendFile
}

// CachePath returns the snapshot location for the selected backend.
func (c Config) CachePath() string {
	if p := strings.TrimSpace(c.CacheFile); p != "" {
		return p
	}
	if c.Backend() == BackendSQLite {
		return defaultSQLiteCache
	}
	return defaultFileCachePath
}

// TimestampPath returns the path of the human-readable "as of" file.
func (c Config) TimestampPath() string {
	if p := strings.TrimSpace(c.TimestampFile); p != "" {
		return p
	}
	return defaultTimestampPath
}

// CorpusFile returns the path of the article corpus.
func (c Config) CorpusFile() string {
	if p := strings.TrimSpace(c.CorpusPath); p != "" {
		return p
	}
	return defaultCorpusPath
}

// LogFilePath returns the path to the application log file. An empty string disables logging.
func (c Config) LogFilePath() string {
	return strings.TrimSpace(c.LogFile)
}

// Validate reports configuration values that cannot be acted on.
func (c Config) Validate() error {
	var errs []error
	switch c.Backend() {
	case BackendFile, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("cacheBackend %q is not one of %q, %q", c.CacheBackend, BackendFile, BackendSQLite))
	}
	for key, value := range map[string]string{"embeddingProvider": c.EmbeddingProvider, "chatProvider": c.ChatProvider} {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case ProviderOpenAI, ProviderOllama:
		default:
			errs = append(errs, fmt.Errorf("%s %q is not one of %q, %q", key, value, ProviderOpenAI, ProviderOllama))
		}
	}
	if strings.TrimSpace(c.EmbeddingModel) == "" {
		errs = append(errs, errors.New("embeddingModel is required"))
	}
	if c.EmbeddingBatchSize < 0 {
		errs = append(errs, errors.New("embeddingBatchSize must be zero (default) or greater"))
	}
	if c.RetrievalTopK < 0 {
		errs = append(errs, errors.New("topK must be zero (default) or greater"))
	}
	if c.EmbeddingRequestsPerSecond < 0 {
		errs = append(errs, errors.New("embeddingRequestsPerSecond must be zero (unlimited) or greater"))
	}
	return errors.Join(errs...)
}
