package views

import (
	"strings"

	"srcmerge/internal/output"
	"srcmerge/internal/tui/common"
	"srcmerge/internal/tui/styles"
	"srcmerge/pkg/types"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	// Rows taken by the banner, editors, output row, status and footer.
	chromeHeight = 15
)

// RenderMainView lays out the five panels, the status line and the footer.
func RenderMainView(m common.ModelReader) string {
	width, height := m.Width(), m.Height()
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	listHeight := height - chromeHeight
	if listHeight < 3 {
		listHeight = 3
	}

	var sb strings.Builder
	sb.WriteString(renderBanner(m.SourceRoot()) + "\n")

	sb.WriteString(m.PanelView(common.SourcePath, width, 1) + "\n")

	left := width / 3
	right := width - left
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.PanelView(common.Filters, left, listHeight),
		m.PanelView(common.SourceFiles, right, listHeight),
	) + "\n")

	if common.Visible(common.OutputFile, m.Destination()) {
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			m.PanelView(common.Output, left, 3),
			m.PanelView(common.OutputFile, right, 1),
		) + "\n")
	} else {
		sb.WriteString(m.PanelView(common.Output, width, 3) + "\n")
	}

	if m.Processing() {
		sb.WriteString(RenderProcessing(m.SpinnerView(), width) + "\n")
	} else if status := m.StatusView(); status != "" {
		sb.WriteString(status + "\n")
	}

	sb.WriteString(RenderFooter(m.Focused(), m.Destination(), m.Keys()))

	return styles.Theme.App.Render(sb.String())
}

// RenderProcessing is the overlay shown while a reload or merge runs.
func RenderProcessing(spinner string, width int) string {
	box := styles.Theme.Overlay.Render(spinner + " Processing...")
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, box)
}

// FooterBindings returns the hints for the focused panel.
func FooterBindings(p common.FocusedPanel, dest output.Destination, k *types.KeyMap) []key.Binding {
	var b []key.Binding
	switch p {
	case common.SourcePath:
		b = []key.Binding{hint(k.Confirm, "load"), k.ClearInput, hint(k.Back, "exit")}
	case common.Filters:
		b = []key.Binding{hint(k.Toggle, "toggle extension"), k.Up, k.Down, k.Confirm}
	case common.SourceFiles:
		b = []key.Binding{hint(k.Toggle, "toggle file"), hint(k.Confirm, "count tokens"), k.Up, k.Down}
	case common.Output:
		confirm := k.Confirm
		if dest == output.Clipboard {
			confirm = hint(k.Confirm, "merge")
		}
		b = []key.Binding{hint(k.Right, "destination"), confirm}
	case common.OutputFile:
		b = []key.Binding{hint(k.Confirm, "merge"), k.ClearInput}
	}
	if p != common.SourcePath {
		b = append(b, k.Back)
	}
	return append(b, k.Reload, k.Merge, k.Exit)
}

func hint(b key.Binding, desc string) key.Binding {
	b.SetHelp(b.Help().Key, desc)
	return b
}

// RenderFooter renders the key hints of the focused panel.
func RenderFooter(p common.FocusedPanel, dest output.Destination, k *types.KeyMap) string {
	h := help.New()
	h.ShortSeparator = " · "
	h.Styles.ShortKey = styles.Theme.Title
	h.Styles.ShortDesc = styles.Theme.Dim
	h.Styles.ShortSeparator = styles.Theme.Dim
	return h.ShortHelpView(FooterBindings(p, dest, k))
}

func renderBanner(root string) string {
	title := styles.Theme.Title.Render("srcmerge")
	if root == "" {
		return title + " " + styles.Theme.Dim.Render("(no source)")
	}
	return title + " " + styles.Theme.Dim.Render(root)
}
