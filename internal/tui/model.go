// Package tui is the interactive terminal session: paste text, generate,
// read the learning table and the explanations.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"science-helper/internal/render"
	"science-helper/internal/usecase"
)

type Processor interface {
	Process(ctx context.Context, text string) (usecase.ProcessOutput, error)
}

type state int

const (
	stateEditing state = iota
	stateRunning
	stateResults
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	chromeHeight  = 6
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	captionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// resultMsg carries a finished run back into Update.
type resultMsg struct {
	out usecase.ProcessOutput
	err error
}

type Model struct {
	processor  Processor
	runTimeout time.Duration

	textarea textarea.Model
	spinner  spinner.Model
	viewport viewport.Model

	state  state
	width  int
	height int
	cancel context.CancelFunc
	notice string
}

func New(p Processor, runTimeout time.Duration) Model {
	ta := textarea.New()
	ta.Placeholder = "Paste one or more sentences from a science book..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetWidth(defaultWidth)
	ta.SetHeight(10)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		processor:  p,
		runTimeout: runTimeout,
		textarea:   ta,
		spinner:    sp,
		viewport:   viewport.New(defaultWidth, defaultHeight-chromeHeight),
		width:      defaultWidth,
		height:     defaultHeight,
	}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.textarea.SetWidth(max(msg.Width-2, 20))
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeHeight, 5)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case resultMsg:
		m.cancel = nil
		m.state = stateResults
		m.viewport.SetContent(m.renderResult(msg.out, msg.err))
		m.viewport.GotoTop()
		return m, nil

	case spinner.TickMsg:
		if m.state != stateRunning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateChildren(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	case tea.KeyCtrlG:
		if m.state != stateEditing {
			return m, nil
		}
		if strings.TrimSpace(m.textarea.Value()) == "" {
			m.notice = "Paste some English science text first."
			return m, nil
		}
		m.notice = ""
		m.state = stateRunning
		run := m.generate()
		return m, tea.Batch(m.spinner.Tick, run)
	case tea.KeyEsc:
		switch m.state {
		case stateRunning:
			if m.cancel != nil {
				m.cancel()
			}
		case stateResults:
			m.state = stateEditing
			m.textarea.Focus()
		}
		return m, nil
	}
	return m.updateChildren(msg)
}

func (m Model) updateChildren(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.state {
	case stateEditing:
		m.textarea, cmd = m.textarea.Update(msg)
	case stateResults:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

// generate starts one run; the model keeps the cancel func so esc or ctrl+c
// can stop it.
func (m *Model) generate() tea.Cmd {
	ctx, cancel := context.WithTimeout(context.Background(), m.runTimeout)
	m.cancel = cancel
	text := m.textarea.Value()
	p := m.processor
	return func() tea.Msg {
		defer cancel()
		out, err := p.Process(ctx, text)
		return resultMsg{out: out, err: err}
	}
}

func (m Model) renderResult(out usecase.ProcessOutput, err error) string {
	var b strings.Builder

	var uerr *usecase.Error
	switch {
	case err == nil:
	case errors.As(err, &uerr) && uerr.Code == usecase.ErrorCanceled:
		b.WriteString(errorStyle.Render("Run stopped before every sentence was explained."))
		b.WriteString("\n")
	case errors.As(err, &uerr) && uerr.Code == usecase.ErrorInvalidInput:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Cannot process this text (%s).", uerr.Reason)))
		return b.String()
	default:
		b.WriteString(errorStyle.Render("Generation failed: " + err.Error()))
		return b.String()
	}

	if out.Skipped() > 0 {
		b.WriteString(errorStyle.Render(render.Summary(out)))
	} else {
		b.WriteString(okStyle.Render(render.Summary(out)))
	}
	b.WriteString("\n\n")

	if len(out.Records) == 0 {
		return b.String()
	}

	b.WriteString(render.Table(out, m.width))
	b.WriteString("\n")

	narrative, rerr := render.Markdown(render.Narrative(out), m.width-4)
	if rerr != nil {
		narrative = render.Narrative(out)
	}
	b.WriteString(narrative)
	return b.String()
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("English → Marathi Science Helper"))
	b.WriteString("\n")
	b.WriteString(captionStyle.Render("Designed for school children • Clear • Simple • Recall-friendly"))
	b.WriteString("\n\n")

	switch m.state {
	case stateEditing:
		b.WriteString(m.textarea.View())
		b.WriteString("\n")
		if m.notice != "" {
			b.WriteString(errorStyle.Render(m.notice))
			b.WriteString("\n")
		}
		b.WriteString(helpStyle.Render("ctrl+g generate learning table • ctrl+c quit"))
	case stateRunning:
		b.WriteString(m.spinner.View())
		b.WriteString(" Thinking like a teacher…\n")
		b.WriteString(helpStyle.Render("esc stop • ctrl+c quit"))
	case stateResults:
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ scroll • esc edit text • ctrl+c quit"))
	}
	return b.String()
}

// Run blocks until the user quits.
func Run(ctx context.Context, p Processor, runTimeout time.Duration) error {
	prog := tea.NewProgram(New(p, runTimeout), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
