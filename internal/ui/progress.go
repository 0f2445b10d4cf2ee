// Package ui renders repair-loop progress as a terminal UI.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"stitch/internal/repair"
)

type repairModel struct {
	title     string
	maxIter   int
	events    <-chan repair.Event
	spinner   spinner.Model
	prog      progress.Model
	items     []iterationItem
	lastState repair.State
	width     int
	done      bool
}

type iterationItem struct {
	iteration int
	status    string
	note      string
}

type eventMsg repair.Event
type doneMsg struct{}

// NewRepairModel returns a Bubble Tea model that renders repair-loop progress.
func NewRepairModel(title string, maxIter int, events <-chan repair.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76 // Default width

	if maxIter <= 0 {
		maxIter = repair.DefaultMaxIterations
	}
	return &repairModel{
		title:   title,
		maxIter: maxIter,
		events:  events,
		spinner: sp,
		prog:    prog,
		width:   80,
	}
}

func (m *repairModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *repairModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(repair.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *repairModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.lastState != repair.StateIdle {
		header = fmt.Sprintf("%s (%s)", header, m.lastState)
	}
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 12
	noteWidth := m.width - statusWidth - 14
	if noteWidth < 20 {
		noteWidth = 20
	}

	for _, item := range m.items {
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%12s", item.status))
		line := fmt.Sprintf("  iter %2d %s %s", item.iteration, statusStyled, truncate(item.note, noteWidth))
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")

	return b.String()
}

func (m *repairModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *repairModel) applyEvent(ev repair.Event) tea.Cmd {
	m.lastState = ev.State

	item := iterationItem{
		iteration: ev.Iteration,
		status:    ev.State.String(),
		note:      ev.Note,
	}
	if n := len(m.items); n > 0 && m.items[n-1].iteration == ev.Iteration {
		// одна строка на итерацию, статус перезаписывается
		if item.note == "" {
			item.note = m.items[n-1].note
		}
		m.items[n-1] = item
	} else {
		m.items = append(m.items, item)
	}

	pct := float64(ev.Iteration) / float64(m.maxIter)
	switch ev.State {
	case repair.StateDone, repair.StateAborted:
		pct = 1.0
	}
	return m.prog.SetPercent(pct)
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "aborted":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "checking", "diagnosing", "patching":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
