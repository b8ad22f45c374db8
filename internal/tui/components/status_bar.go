package components

import (
	"srcmerge/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Level colors the status text.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

type StatusBar struct {
	text    string
	level   Level
	spinner spinner.Model
	loading bool
}

func NewStatusBar() *StatusBar {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Theme.Help

	return &StatusBar{
		spinner: s,
	}
}

// Init starts the spinner animation.
func (s *StatusBar) Init() tea.Cmd {
	return s.spinner.Tick
}

func (s *StatusBar) SetLoading(loading bool) {
	s.loading = loading
}

func (s *StatusBar) Loading() bool {
	return s.loading
}

func (s *StatusBar) SetText(text string) {
	s.SetMessage(LevelInfo, text)
}

// SetMessage replaces the text and its level.
func (s *StatusBar) SetMessage(level Level, text string) {
	s.level = level
	s.text = text
}

func (s *StatusBar) Text() string {
	return s.text
}

// Update advances the spinner. Ticks keep flowing while idle so the
// animation resumes immediately.
func (s *StatusBar) Update(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(spinner.TickMsg); !ok {
		return nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return cmd
}

// Spinner returns the current spinner frame.
func (s *StatusBar) Spinner() string {
	return s.spinner.View()
}

func (s *StatusBar) View() string {
	if s.text == "" && !s.loading {
		return ""
	}

	var style lipgloss.Style
	switch s.level {
	case LevelSuccess:
		style = styles.Theme.Success
	case LevelWarning:
		style = styles.Theme.Warning
	case LevelError:
		style = styles.Theme.Error
	default:
		style = styles.Theme.Help
	}

	if s.loading {
		return style.Render(s.spinner.View() + " " + s.text)
	}
	return style.Render(s.text)
}
