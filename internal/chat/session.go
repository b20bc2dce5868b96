package chat

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mwiater/coach/internal/rag"
)

// Turn is one answered question.
type Turn struct {
	Question string
	Answer   string
	Sources  []string
	AskedAt  time.Time
}

// Session is a conversation bound to one snapshot. The turn log only grows
// until Reset; the snapshot is swapped wholesale by Replace after a rebuild.
type Session struct {
	id string

	mu       sync.RWMutex
	snapshot *rag.Snapshot
	turns    []Turn
}

// NewSession starts an empty conversation over snap. snap may be nil until an index exists.
func NewSession(snap *rag.Snapshot) *Session {
	return &Session{id: uuid.NewString(), snapshot: snap}
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	return s.id
}

// Snapshot returns the snapshot questions are answered against.
func (s *Session) Snapshot() *rag.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Replace points the session at a newly built snapshot. The turn log is kept.
func (s *Session) Replace(snap *rag.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
}

// Turns returns a copy of the turn log, oldest first.
func (s *Session) Turns() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Turn(nil), s.turns...)
}

// Reset clears the turn log.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
}

func (s *Session) record(turn Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, turn)
}

// PreviousDialogue renders earlier turns as "User: ..." and "Coach: ..." lines.
func (s *Session) PreviousDialogue() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lines := make([]string, 0, 2*len(s.turns))
	for _, turn := range s.turns {
		lines = append(lines, "User: "+turn.Question, "Coach: "+turn.Answer)
	}
	return strings.Join(lines, "\n")
}
