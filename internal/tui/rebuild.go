// internal/tui/rebuild.go
// Package tui contains the Bubble Tea views for rebuilding the index and chatting with the coach.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/coach/internal/rag"
)

// RebuildFunc re-embeds the corpus, reporting the fraction done through progress.
type RebuildFunc func(ctx context.Context, progress rag.ProgressFunc) (*rag.Snapshot, error)

type rebuildProgressMsg float64

type rebuildDoneMsg struct {
	snap *rag.Snapshot
	err  error
}

// rebuildModel shows a progress bar while the embedding cache is rebuilt.
type rebuildModel struct {
	cancel  context.CancelFunc
	bar     progress.Model
	spinner spinner.Model
	percent float64
	started time.Time
	done    bool
	snap    *rag.Snapshot
	err     error
}

func newRebuildModel(cancel context.CancelFunc) *rebuildModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return &rebuildModel{
		cancel:  cancel,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(50)),
		spinner: s,
		started: time.Now(),
	}
}

func (m *rebuildModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *rebuildModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "esc" {
			m.cancel()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-10, 10), 80)
		return m, nil

	case rebuildProgressMsg:
		m.percent = float64(msg)
		return m, nil

	case rebuildDoneMsg:
		m.done = true
		m.snap = msg.snap
		m.err = msg.err
		if msg.err == nil {
			m.percent = 1
		}
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *rebuildModel) View() string {
	elapsed := fmt.Sprintf("%.1fs", time.Since(m.started).Seconds())
	if m.done {
		return fmt.Sprintf("\n  %s %3.0f%%  %s\n", m.bar.ViewAs(m.percent), m.percent*100, elapsed)
	}
	help := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render("(esc to cancel)")
	return fmt.Sprintf("\n  %s Die Wissensbasis wird aktualisiert ... %s\n\n  %s %3.0f%%  %s\n",
		m.spinner.View(), help, m.bar.ViewAs(m.percent), m.percent*100, elapsed)
}

// RunRebuild runs build behind a progress bar written to out. It returns only
// after build has returned, also when the user cancels with esc.
func RunRebuild(ctx context.Context, out io.Writer, build RebuildFunc) (*rag.Snapshot, error) {
	return runRebuildProgram(ctx, out, build)
}

func runRebuildProgram(ctx context.Context, out io.Writer, build RebuildFunc, opts ...tea.ProgramOption) (*rag.Snapshot, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newRebuildModel(cancel)
	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithOutput(out), tea.WithContext(ctx)}, opts...)...)

	done := make(chan struct{})
	go func() {
		defer close(done)
		snap, err := build(ctx, func(fraction float64) {
			p.Send(rebuildProgressMsg(fraction))
		})
		p.Send(rebuildDoneMsg{snap: snap, err: err})
	}()

	_, runErr := p.Run()
	cancel()
	<-done

	if runErr != nil && !m.done {
		if errors.Is(runErr, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("progress display: %w", runErr)
	}
	return m.snap, m.err
}

// RunRebuildPlain runs build and prints one percentage line per progress report.
// It is used for --jsonMode and non-interactive output.
func RunRebuildPlain(ctx context.Context, out io.Writer, build RebuildFunc) (*rag.Snapshot, error) {
	return build(ctx, func(fraction float64) {
		fmt.Fprintf(out, "%3.0f%%\n", fraction*100)
	})
}
