package sysdash

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Pane represents a bordered panel on the dashboard page.
//
//	pane := NewPane("CPU Usage", 40, 10).
//	    SetContent(chart).
//	    SetNote("42.0%")
//	fmt.Println(pane.Render())
//
// Content taller than the pane is cut, never wrapped into the border.
type Pane struct {
	title       string
	note        string
	content     string
	width       int
	height      int
	borderStyle lipgloss.Style
	titleStyle  lipgloss.Style
	noteStyle   lipgloss.Style
}

// NewPane creates a new pane with default styling
func NewPane(title string, width, height int) Pane {
	return Pane{
		title:  title,
		width:  width,
		height: height,
		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")),
		titleStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true),
		noteStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Bold(true),
	}
}

// SetContent sets the pane content
func (p Pane) SetContent(content string) Pane {
	p.content = content
	return p
}

// SetNote sets a highlighted value shown after the title
func (p Pane) SetNote(note string) Pane {
	p.note = note
	return p
}

// SetBorderColor recolors the border
func (p Pane) SetBorderColor(color lipgloss.TerminalColor) Pane {
	p.borderStyle = p.borderStyle.BorderForeground(color)
	return p
}

// ContentSize returns the space available for content inside the border
// and below the title line.
func (p Pane) ContentSize() (int, int) {
	h := p.height
	if p.title != "" {
		h--
	}
	return max(0, p.width), max(0, h)
}

// Render draws the pane
func (p Pane) Render() string {
	var b strings.Builder

	// Add title if present
	if p.title != "" {
		b.WriteString(p.titleStyle.Render(p.title))
		if p.note != "" {
			b.WriteString("  " + p.noteStyle.Render(p.note))
		}
		b.WriteString("\n")
	}

	_, contentHeight := p.ContentSize()
	lines := strings.Split(p.content, "\n")
	if len(lines) > contentHeight {
		lines = lines[:contentHeight]
	}
	b.WriteString(strings.Join(lines, "\n"))

	// Apply border and dimensions
	return p.borderStyle.
		Width(p.width).
		Height(p.height).
		MaxWidth(p.width + 2).
		Render(b.String())
}

// String is a convenience method that calls Render
func (p Pane) String() string {
	return p.Render()
}
