package main

import (
	"srcmerge/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// Console helpers for the headless commands. They share the TUI theme.

func successText(s string) string {
	return styles.Theme.Success.Render("✓ " + s)
}

func warningText(s string) string {
	return styles.Theme.Warning.Render("! " + s)
}

func errorText(s string) string {
	return styles.Theme.Error.Render("✗ " + s)
}

func infoText(s string) string {
	return styles.Theme.Info.Render(s)
}

// drawLogo renders the banner shown above the help text.
func drawLogo() string {
	logo := `
 ___ _ __ ___ _ __ ___   ___ _ __ __ _  ___
/ __| '__/ __| '_ ` + "`" + ` _ \ / _ \ '__/ _` + "`" + ` |/ _ \
\__ \ | | (__| | | | | |  __/ | | (_| |  __/
|___/_|  \___|_| |_| |_|\___|_|  \__, |\___|
                                 |___/`
	return lipgloss.NewStyle().Foreground(lipgloss.Color(styles.DefaultPalette.Primary)).Render(logo)
}
