package styles

import "github.com/charmbracelet/lipgloss"

// Theme defines the core UI styles. Apply rebuilds it from a palette.
var Theme = build(DefaultPalette)

type theme struct {
	App          lipgloss.Style
	Title        lipgloss.Style
	Selected     lipgloss.Style
	Unselected   lipgloss.Style
	Help         lipgloss.Style
	Panel        lipgloss.Style
	FocusedPanel lipgloss.Style
	PanelTitle   lipgloss.Style
	FocusedTitle lipgloss.Style
	Cursor       lipgloss.Style
	Dim          lipgloss.Style
	Success      lipgloss.Style
	Warning      lipgloss.Style
	Error        lipgloss.Style
	Info         lipgloss.Style
	Overlay      lipgloss.Style
}

func build(p Palette) theme {
	return theme{
		App: lipgloss.NewStyle().
			Padding(0, 1),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.Primary)),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Success)).
			Bold(true),
		Unselected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Info)),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#626262")).
			Padding(0, 1),
		FocusedPanel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.Border)).
			Padding(0, 1),
		PanelTitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#959595")),
		FocusedTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.Emphasis)),
		Cursor: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color(p.Primary)),
		Dim: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#959595")),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Success)),
		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Warning)),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Error)),
		Info: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Info)),
		Overlay: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color(p.Warning)).
			Padding(1, 4).
			Bold(true),
	}
}
