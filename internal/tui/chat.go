// internal/tui/chat.go
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/coach/internal/chat"
	"github.com/mwiater/coach/internal/logging"
	"github.com/mwiater/coach/internal/rag"
	"github.com/mwiater/coach/internal/util"
)

// Asker answers a question within a session. *chat.Coach implements it.
type Asker interface {
	Ask(ctx context.Context, session *chat.Session, question string) (chat.Turn, error)
}

type answerMsg chat.Turn

type answerErr struct{ error }

type statusLevel int

const (
	statusInfo statusLevel = iota
	statusSuccess
	statusWarning
	statusError
)

// chatModel is the interactive coach view.
type chatModel struct {
	ctx      context.Context
	session  *chat.Session
	asker    Asker
	rebuild  RebuildFunc
	program  *tea.Program
	textArea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	isLoading        bool
	rebuilding       bool
	rebuildPercent   float64
	pending          string
	status           string
	statusLevel      statusLevel
	width, height    int
	requestStartTime time.Time
}

func newChatModel(ctx context.Context, session *chat.Session, asker Asker, rebuild RebuildFunc) *chatModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ta := textarea.New()
	ta.Placeholder = "z. B. Wie plane ich eine Solo-Selbständigkeit?"
	ta.Focus()
	ta.Prompt = "Ihre Frage: "
	ta.ShowLineNumbers = false
	ta.CharLimit = -1
	ta.SetHeight(1)
	ta.KeyMap.InsertNewline.SetEnabled(false)

	m := &chatModel{
		ctx:      ctx,
		session:  session,
		asker:    asker,
		rebuild:  rebuild,
		textArea: ta,
		viewport: viewport.New(100, 5),
		spinner:  s,
	}
	m.setCacheStatus()
	return m
}

func (m *chatModel) setCacheStatus() {
	if snap := m.session.Snapshot(); snap != nil {
		m.setStatus(statusInfo, fmt.Sprintf("Embeddings aus Cache geladen (Stand: %s)", snap.CreatedAt()))
		return
	}
	m.setStatus(statusWarning, "Noch keine Embeddings vorhanden. Mit /rebuild erstellen.")
}

func (m *chatModel) setStatus(level statusLevel, text string) {
	m.statusLevel = level
	m.status = text
}

func askCmd(ctx context.Context, asker Asker, session *chat.Session, question string) tea.Cmd {
	return func() tea.Msg {
		turn, err := asker.Ask(ctx, session, question)
		if err != nil {
			return answerErr{err}
		}
		return answerMsg(turn)
	}
}

// rebuildCmd runs the rebuild in the background and streams progress back through the program.
func rebuildCmd(ctx context.Context, p *tea.Program, rebuild RebuildFunc) tea.Cmd {
	return func() tea.Msg {
		go func() {
			snap, err := rebuild(ctx, func(fraction float64) {
				p.Send(rebuildProgressMsg(fraction))
			})
			p.Send(rebuildDoneMsg{snap: snap, err: err})
		}()
		return nil
	}
}

func (m *chatModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

func (m *chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if m.isLoading || m.rebuilding {
				return m, nil
			}
			input := strings.TrimSpace(m.textArea.Value())
			m.textArea.Reset()
			if input == "" {
				return m, nil
			}
			return m, m.handleInput(input)
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.textArea.SetWidth(msg.Width - 3)
		headerHeight := 3
		footerHeight := 4
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerHeight-footerHeight, 3)

	case answerMsg:
		m.isLoading = false
		m.pending = ""
		m.setCacheStatus()
		m.viewport.GotoBottom()
		return m, nil

	case answerErr:
		m.isLoading = false
		m.pending = ""
		m.setStatus(statusError, describeError(msg.error))
		return m, nil

	case rebuildProgressMsg:
		m.rebuildPercent = float64(msg)
		return m, nil

	case rebuildDoneMsg:
		m.rebuilding = false
		if msg.err != nil {
			m.setStatus(statusError, describeError(msg.err))
			return m, nil
		}
		m.session.Replace(msg.snap)
		m.setStatus(statusSuccess, fmt.Sprintf("Embeddings wurden neu erstellt am %s", msg.snap.CreatedAt()))
		logging.LogEvent("session %s switched to snapshot %s", m.session.ID(), msg.snap.CreatedAt())
		return m, nil
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	m.textArea, cmd = m.textArea.Update(msg)
	cmds = append(cmds, cmd)

	if m.isLoading || m.rebuilding {
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleInput dispatches slash commands or sends a question.
func (m *chatModel) handleInput(input string) tea.Cmd {
	switch {
	case input == "/rebuild":
		if m.rebuild == nil || m.program == nil {
			m.setStatus(statusError, "Neuaufbau ist in dieser Sitzung nicht verfügbar.")
			return nil
		}
		m.rebuilding = true
		m.rebuildPercent = 0
		m.requestStartTime = time.Now()
		m.setStatus(statusInfo, "Die Wissensbasis wird aktualisiert - bitte etwas Geduld ...")
		return tea.Batch(m.spinner.Tick, rebuildCmd(m.ctx, m.program, m.rebuild))

	case input == "/clear":
		m.session.Reset()
		m.setStatus(statusInfo, "Verlauf gelöscht.")
		return nil

	case strings.HasPrefix(input, "/"):
		suggestions := chat.Suggestions()
		n, err := strconv.Atoi(strings.TrimPrefix(input, "/"))
		if err != nil || n < 1 || n > len(suggestions) {
			m.setStatus(statusWarning, fmt.Sprintf("Unbekannter Befehl %q. Verfügbar: /rebuild, /clear, /1 bis /%d", input, len(suggestions)))
			return nil
		}
		input = suggestions[n-1]
	}

	if m.session.Snapshot() == nil {
		m.setStatus(statusWarning, describeError(rag.ErrNoCacheAvailable))
		return nil
	}
	m.isLoading = true
	m.pending = input
	m.requestStartTime = time.Now()
	return tea.Batch(m.spinner.Tick, askCmd(m.ctx, m.asker, m.session, input))
}

func describeError(err error) string {
	switch {
	case errors.Is(err, rag.ErrNoCacheAvailable):
		return "Noch keine Embeddings vorhanden. Mit /rebuild erstellen."
	case errors.Is(err, context.Canceled):
		return "Abgebrochen."
	default:
		return "Fehler: " + err.Error()
	}
}

func (m *chatModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var builder strings.Builder

	headerStyle := lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	help := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render(" /rebuild  /clear  /1-/4  (esc to quit)")
	builder.WriteString(headerStyle.Render("Karriere-Coach") + help + "\n")
	builder.WriteString(m.statusLine() + "\n\n")

	m.viewport.SetContent(m.historyView())
	builder.WriteString(m.viewport.View())

	switch {
	case m.rebuilding:
		timer := fmt.Sprintf("%.1f", time.Since(m.requestStartTime).Seconds())
		builder.WriteString(fmt.Sprintf("\n%s Embeddings werden erstellt ... %3.0f%% %ss", m.spinner.View(), m.rebuildPercent*100, timer))
	case m.isLoading:
		timer := fmt.Sprintf("%.1f", time.Since(m.requestStartTime).Seconds())
		builder.WriteString(fmt.Sprintf("\n%s Der Coach denkt nach ... %ss", m.spinner.View(), timer))
	default:
		builder.WriteString("\n" + m.textArea.View())
	}
	return builder.String()
}

func (m *chatModel) statusLine() string {
	color := map[statusLevel]string{
		statusInfo:    "39",
		statusSuccess: "40",
		statusWarning: "214",
		statusError:   "9",
	}[m.statusLevel]
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(m.status)
}

// historyView renders the conversation oldest first, followed by the suggestions.
func (m *chatModel) historyView() string {
	var b strings.Builder
	userStyle := lipgloss.NewStyle().Bold(true)
	coachStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	linkStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	width := max(m.width-2, 20)

	writeEntry := func(role, content string) {
		wrapped := util.WrapToWidth(content, max(width-lipgloss.Width(role), 10))
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, role, wrapped) + "\n")
	}

	for _, turn := range m.session.Turns() {
		writeEntry(userStyle.Render("Sie: "), turn.Question)
		writeEntry(coachStyle.Render("Coach: "), turn.Answer)
		if len(turn.Sources) > 0 {
			b.WriteString(linkStyle.Render("Zur weiteren Lektüre:") + "\n")
			for _, url := range turn.Sources {
				b.WriteString(linkStyle.Render("  - "+url) + "\n")
			}
		}
		b.WriteString("\n")
	}
	if m.pending != "" {
		writeEntry(userStyle.Render("Sie: "), m.pending)
	}

	if len(m.session.Turns()) == 0 && m.pending == "" {
		b.WriteString("Themenvorschläge:\n")
		for i, s := range chat.Suggestions() {
			b.WriteString(fmt.Sprintf("  /%d  %s\n", i+1, s))
		}
	}
	return b.String()
}

// RunChat starts the interactive chat view. rebuild may be nil to disable /rebuild.
func RunChat(ctx context.Context, session *chat.Session, asker Asker, rebuild RebuildFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newChatModel(ctx, session, asker, rebuild)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	m.program = p

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat view: %w", err)
	}
	return nil
}
