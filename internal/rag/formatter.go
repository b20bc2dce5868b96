package rag

import (
	"strings"

	"github.com/mwiater/coach/internal/util"
)

// FormatContext renders passages as the "Relevante Artikel" block of the prompt:
// one "- <text>" item per passage separated by blank lines. When maxTokens is
// positive the block is cut to that many whitespace-separated tokens. It returns
// the block, the tokens used, and the number of distinct source URLs included.
func FormatContext(passages []RetrievedPassage, maxTokens int) (string, int, int) {
	if len(passages) == 0 {
		return "", 0, 0
	}
	if maxTokens < 0 {
		maxTokens = 0
	}

	items := make([]string, 0, len(passages))
	contextTokens := 0
	remaining := maxTokens
	sourceSet := make(map[string]struct{})

	for _, p := range passages {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}

		if maxTokens > 0 {
			if remaining <= 0 {
				break
			}
			if tokens := util.CountWords(text); tokens > remaining {
				text = util.TruncateWords(text, remaining)
			}
		}

		usedTokens := util.CountWords(text)
		if usedTokens == 0 {
			continue
		}

		items = append(items, "- "+text)
		contextTokens += usedTokens
		if maxTokens > 0 {
			remaining -= usedTokens
		}
		sourceSet[p.URL] = struct{}{}
	}

	return strings.Join(items, "\n\n"), contextTokens, len(sourceSet)
}
