package appconfig

import (
	"fmt"
	"io"

	"github.com/k0kubun/pp"
)

// ShowConfig prints the current configuration summary.
func ShowConfig(out io.Writer, file string, cfg *Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	if cfg == nil {
		fmt.Fprintln(out, "Configuration is not loaded.")
		return
	}

	apiKey := "not set"
	if cfg.OpenAIAPIKey != "" {
		apiKey = "set"
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Debug:             %v\n", cfg.Debug)
	fmt.Fprintf(out, "  JSON Mode:         %v\n", cfg.JSONMode)
	fmt.Fprintf(out, "  Corpus:            %s\n", cfg.CorpusFile())
	fmt.Fprintf(out, "  Cache Backend:     %s\n", cfg.Backend())
	fmt.Fprintf(out, "  Cache Path:        %s\n", cfg.CachePath())
	fmt.Fprintf(out, "  Timestamp Path:    %s\n", cfg.TimestampPath())
	fmt.Fprintf(out, "  Embedding:         %s (%s)\n", cfg.EmbeddingModel, cfg.EmbeddingProvider)
	fmt.Fprintf(out, "  Batch Size:        %d\n", cfg.BatchSize())
	if cfg.EmbeddingRequestsPerSecond > 0 {
		fmt.Fprintf(out, "  Batch Rate Limit:  %.2f/s\n", cfg.EmbeddingRequestsPerSecond)
	}
	fmt.Fprintf(out, "  Chat:              %s (%s)\n", cfg.ChatModel, cfg.ChatProvider)
	fmt.Fprintf(out, "  OpenAI API Key:    %s\n", apiKey)
	fmt.Fprintf(out, "  Ollama URL:        %s\n", cfg.OllamaURL)
	fmt.Fprintf(out, "  Top K:             %d\n", cfg.TopK())
	fmt.Fprintf(out, "  Context Tokens:    %d\n", cfg.ContextTokenLimit)
	fmt.Fprintf(out, "  Request Timeout:   %s\n", cfg.RequestTimeout())

	if cfg.Debug {
		fmt.Fprintln(out)
		redacted := *cfg
		redacted.OpenAIAPIKey = apiKey
		pp.Fprintln(out, redacted)
	}
}
