// Package chat answers questions with the career-coach persona, grounded on
// passages retrieved from the embedded article corpus.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mwiater/coach/internal/logging"
	"github.com/mwiater/coach/internal/providers"
	"github.com/mwiater/coach/internal/rag"
	"github.com/mwiater/coach/internal/util"
	"go.uber.org/zap"
)

// SystemPrompt sets the coach persona for every completion.
const SystemPrompt = "Du bist ein erfahrener Karriere-Coach im Stil von Dr. Markus Karbaum.\n" +
	"Sprich in der Sie-Form, bleibe ruhig, professionell und empathisch.\n" +
	"Gib praxisnahe, kurze und konkrete Empfehlungen.\n" +
	"Wenn du keine sichere Antwort weißt, sag das offen.\n" +
	"Beende deine Antwort optional mit passenden Blogvorschlägen (mit 2). Überprüfe bitte, dass es diese auch wirklich von Dr. Markus Karbaum in der JSON gibt und erfinde keine."

// ErrEmptyQuestion is returned for blank input; nothing is sent to any provider.
var ErrEmptyQuestion = errors.New("question is empty")

var suggestions = []string{
	"Wie gehe ich mit Arbeitsplatzverlust um?",
	"Wie entwickle ich Führungskompetenzen?",
	"Wie kann ich meine Selbstvermarktung verbessern?",
	"Wie plane ich den Wiedereinstieg nach einer Pause?",
}

// Suggestions returns the example questions offered to new users.
func Suggestions() []string {
	return append([]string(nil), suggestions...)
}

// Retriever ranks snapshot passages against a question. *rag.Engine implements it.
type Retriever interface {
	Search(ctx context.Context, snap *rag.Snapshot, query string, topK int) ([]rag.RetrievedPassage, error)
}

// Coach turns a question into a grounded answer.
type Coach struct {
	retriever    Retriever
	provider     providers.ChatProvider
	model        string
	topK         int
	contextLimit int
}

// Option configures a Coach.
type Option func(*Coach)

// WithModel overrides the provider's default chat model.
func WithModel(model string) Option {
	return func(c *Coach) { c.model = model }
}

// WithTopK sets how many passages are placed in the prompt.
func WithTopK(k int) Option {
	return func(c *Coach) {
		if k > 0 {
			c.topK = k
		}
	}
}

// WithContextTokenLimit caps the passage block at n whitespace-separated tokens. Zero means unlimited.
func WithContextTokenLimit(n int) Option {
	return func(c *Coach) { c.contextLimit = max(n, 0) }
}

// NewCoach returns a Coach using retriever for passages and provider for completions.
func NewCoach(retriever Retriever, provider providers.ChatProvider, opts ...Option) *Coach {
	c := &Coach{retriever: retriever, provider: provider, topK: 3}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BuildMessages assembles the system and user messages for one question.
func BuildMessages(previousDialogue, question, contextBlock string) []providers.ChatMessage {
	user := fmt.Sprintf("%s\n\nAktuelle Frage: %s\n\nRelevante Artikel:\n%s", previousDialogue, question, contextBlock)
	return []providers.ChatMessage{
		{Role: providers.RoleSystem, Content: SystemPrompt},
		{Role: providers.RoleUser, Content: user},
	}
}

// Ask answers question against the session's snapshot and appends the turn to the session.
func (c *Coach) Ask(ctx context.Context, session *Session, question string) (Turn, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Turn{}, ErrEmptyQuestion
	}
	snap := session.Snapshot()
	if snap == nil {
		return Turn{}, rag.ErrNoCacheAvailable
	}

	log := logging.Logger().With(zap.String("session", session.ID()))
	start := time.Now()

	passages, err := c.retriever.Search(ctx, snap, question, c.topK)
	if err != nil {
		return Turn{}, err
	}
	contextBlock, contextTokens, sources := rag.FormatContext(passages, c.contextLimit)
	messages := BuildMessages(session.PreviousDialogue(), question, contextBlock)

	resp, err := c.provider.Complete(ctx, providers.ChatRequest{Model: c.model, Messages: messages})
	if err != nil {
		log.Error("chat completion failed", zap.Error(err))
		return Turn{}, fmt.Errorf("chat completion: %w", err)
	}

	turn := Turn{
		Question: question,
		Answer:   strings.TrimSpace(resp.Message.Content),
		Sources:  rag.URLs(passages),
		AskedAt:  start,
	}
	session.record(turn)

	log.Info("question answered",
		zap.String("question", util.TruncateRunes(question, 80)),
		zap.Int("passages", len(passages)),
		zap.Int("context_tokens", contextTokens),
		zap.Int("sources", sources),
		zap.String("model", resp.Model),
		zap.Int("prompt_tokens", resp.PromptTokens),
		zap.Int("completion_tokens", resp.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))
	return turn, nil
}
