package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// corpusSchema describes the article array produced by the scraper.
const corpusSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["category", "title", "url", "content"],
    "properties": {
      "category": {"type": "string"},
      "title":    {"type": "string"},
      "url":      {"type": "string"},
      "content":  {"type": "string"}
    }
  }
}`

var corpusSchemaLoader = gojsonschema.NewStringLoader(corpusSchema)

// CorpusSource yields the ordered documents to embed.
type CorpusSource interface {
	Load(ctx context.Context) ([]Document, error)
}

// CorpusFile reads the corpus from a JSON file on disk.
type CorpusFile struct {
	Path string
}

// Load implements CorpusSource.
func (c CorpusFile) Load(ctx context.Context) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadCorpus(c.Path)
}

// LoadCorpus reads and validates the article array at path. Source order is preserved.
func LoadCorpus(path string) ([]Document, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: corpus path is empty", ErrCorpusUnavailable)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrCorpusUnavailable, path, err)
	}
	return ParseCorpus(raw)
}

// ParseCorpus validates raw JSON against the corpus schema and decodes it.
func ParseCorpus(raw []byte) ([]Document, error) {
	result, err := gojsonschema.Validate(corpusSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorpusUnavailable, err)
	}
	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, fmt.Errorf("%w: corpus failed validation: %s", ErrCorpusUnavailable, strings.Join(details, "; "))
	}

	var docs []Document
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("%w: decode corpus: %w", ErrCorpusUnavailable, err)
	}
	if docs == nil {
		docs = []Document{}
	}
	return docs, nil
}
