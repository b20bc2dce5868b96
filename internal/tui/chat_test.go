// internal/tui/chat_test.go
package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mwiater/coach/internal/chat"
	"github.com/mwiater/coach/internal/rag"
)

type stubAsker struct {
	questions []string
}

func (s *stubAsker) Ask(_ context.Context, _ *chat.Session, question string) (chat.Turn, error) {
	s.questions = append(s.questions, question)
	return chat.Turn{Question: question, Answer: "Antwort", Sources: []string{"https://example.com/a"}}, nil
}

func testSnapshot(t *testing.T) *rag.Snapshot {
	t.Helper()
	snap, err := rag.NewSnapshot([]string{"a"}, [][]float64{{1}}, []string{"A"}, []string{"https://example.com/a"}, "2024-05-01 10:00:00")
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	return snap
}

func sendInput(t *testing.T, m *chatModel, input string) tea.Cmd {
	t.Helper()
	m.textArea.SetValue(input)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

// TestChatAskFlow covers sending a question, receiving the answer and rendering it.
func TestChatAskFlow(t *testing.T) {
	asker := &stubAsker{}
	session := chat.NewSession(testSnapshot(t))
	m := newChatModel(context.Background(), session, asker, nil)
	_, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	if !strings.Contains(m.View(), "Stand: 2024-05-01 10:00:00") {
		t.Fatalf("expected cache status in view; got: %s", m.View())
	}

	cmd := sendInput(t, m, "Wie finde ich einen Job?")
	if !m.isLoading || m.pending != "Wie finde ich einen Job?" {
		t.Fatalf("expected loading with pending question; loading=%v pending=%q", m.isLoading, m.pending)
	}
	if cmd == nil {
		t.Fatalf("expected ask command")
	}
	out := m.View()
	if !strings.Contains(out, "Sie:") || !strings.Contains(out, "Der Coach denkt nach") {
		t.Fatalf("expected pending question and spinner in view; got: %s", out)
	}

	turn, _ := asker.Ask(context.Background(), session, m.pending)
	_, _ = m.Update(answerMsg(turn))
	if m.isLoading || m.pending != "" {
		t.Fatalf("expected idle after answer")
	}
	if !strings.Contains(m.View(), "Ihre Frage") {
		t.Fatalf("expected input prompt after answer; got: %s", m.View())
	}
}

// TestChatSuggestionShortcut verifies /2 sends the second suggestion.
func TestChatSuggestionShortcut(t *testing.T) {
	m := newChatModel(context.Background(), chat.NewSession(testSnapshot(t)), &stubAsker{}, nil)
	_, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	_ = sendInput(t, m, "/2")
	if m.pending != chat.Suggestions()[1] {
		t.Fatalf("expected second suggestion pending, got %q", m.pending)
	}
}

// TestChatUnknownCommand ensures unknown slash commands only set a warning.
func TestChatUnknownCommand(t *testing.T) {
	m := newChatModel(context.Background(), chat.NewSession(testSnapshot(t)), &stubAsker{}, nil)
	_, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	if cmd := sendInput(t, m, "/9"); cmd != nil {
		t.Fatalf("expected no command for unknown shortcut")
	}
	if m.isLoading || m.statusLevel != statusWarning {
		t.Fatalf("expected warning status; loading=%v level=%v", m.isLoading, m.statusLevel)
	}
}

// TestChatWithoutSnapshot shows the empty-cache warning instead of asking.
func TestChatWithoutSnapshot(t *testing.T) {
	asker := &stubAsker{}
	m := newChatModel(context.Background(), chat.NewSession(nil), asker, nil)
	_, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	if !strings.Contains(m.View(), "Noch keine Embeddings") {
		t.Fatalf("expected missing embeddings warning; got: %s", m.View())
	}
	if cmd := sendInput(t, m, "Frage"); cmd != nil || m.isLoading {
		t.Fatalf("expected question to be refused without snapshot")
	}
	if len(asker.questions) != 0 {
		t.Fatalf("expected no questions asked")
	}
}

// TestChatClearAndRebuildMessages covers /clear and the rebuild completion messages.
func TestChatClearAndRebuildMessages(t *testing.T) {
	session := chat.NewSession(nil)
	m := newChatModel(context.Background(), session, &stubAsker{}, nil)
	_, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	if cmd := sendInput(t, m, "/rebuild"); cmd != nil || m.statusLevel != statusError {
		t.Fatalf("expected rebuild to be unavailable without a rebuild function")
	}

	m.rebuilding = true
	_, _ = m.Update(rebuildProgressMsg(0.5))
	if m.rebuildPercent != 0.5 {
		t.Fatalf("expected progress 0.5, got %v", m.rebuildPercent)
	}
	snap := testSnapshot(t)
	_, _ = m.Update(rebuildDoneMsg{snap: snap})
	if m.rebuilding || session.Snapshot() != snap || m.statusLevel != statusSuccess {
		t.Fatalf("expected session switched to new snapshot")
	}

	m.rebuilding = true
	_, _ = m.Update(rebuildDoneMsg{err: errors.New("boom")})
	if session.Snapshot() != snap || m.statusLevel != statusError {
		t.Fatalf("expected failed rebuild to keep snapshot")
	}

	_ = sendInput(t, m, "/clear")
	if len(session.Turns()) != 0 || !strings.Contains(m.status, "gelöscht") {
		t.Fatalf("expected history cleared")
	}
}

// TestRebuildModelUpdates drives the progress view through completion.
func TestRebuildModelUpdates(t *testing.T) {
	canceled := false
	m := newRebuildModel(func() { canceled = true })

	_, _ = m.Update(rebuildProgressMsg(0.25))
	if !strings.Contains(m.View(), "25%") {
		t.Fatalf("expected 25%% in view; got: %s", m.View())
	}

	_, cmd := m.Update(rebuildDoneMsg{snap: testSnapshot(t)})
	if !m.done || m.percent != 1 || cmd == nil {
		t.Fatalf("expected completed model with quit command")
	}

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !canceled {
		t.Fatalf("expected esc to cancel the rebuild")
	}
}
