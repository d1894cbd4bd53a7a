package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	textStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHeader))
)

type taskResultMsg struct {
	err error
}

type spinnerModel struct {
	spinner  spinner.Model
	text     string
	task     func() error
	err      error
	quitting bool
}

func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			return taskResultMsg{err: m.task()}
		},
	)
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case taskResultMsg:
		m.err = msg.err
		m.quitting = true
		return m, tea.Quit

	default:
		return m, nil
	}
}

func (m spinnerModel) View() string {
	if m.quitting {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), textStyle.Render(m.text))
}

// Spin runs a blocking task with a spinner on stderr. When stderr is not a
// terminal the task runs without one.
func Spin(text string, task func() error) error {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return task()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	m := spinnerModel{
		spinner: s,
		text:    text,
		task:    task,
	}

	p := tea.NewProgram(m, tea.WithOutput(os.Stderr), tea.WithInput(nil))
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	fm, ok := finalModel.(spinnerModel)
	if !ok {
		return fmt.Errorf("internal error: invalid model type")
	}

	return fm.err
}
