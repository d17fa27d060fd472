package sysdash

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Panel is one chart view that can be placed in a pane or a tab
type Panel struct {
	ID    string
	Title string
	Note  string
	View  func(width, height int) string
}

// TabSet shows one panel at a time with tab navigation. The dashboard
// falls back to it when the terminal is too narrow for the chart grid.
type TabSet struct {
	panels      []Panel
	selectedTab int
	width       int
	height      int
}

// NewTabSet creates a new TabSet
func NewTabSet() *TabSet {
	return &TabSet{
		width:  40,
		height: 10,
	}
}

// SetPanels replaces the panels, keeping the selection when possible
func (ts *TabSet) SetPanels(panels ...Panel) *TabSet {
	ts.panels = panels
	if ts.selectedTab >= len(panels) {
		ts.selectedTab = max(0, len(panels)-1)
	}
	return ts
}

// SetSize sets the dimensions for rendering
func (ts *TabSet) SetSize(width, height int) *TabSet {
	ts.width = width
	ts.height = height
	return ts
}

// NextTab moves to the next tab (wraps around)
func (ts *TabSet) NextTab() *TabSet {
	if len(ts.panels) > 0 {
		ts.selectedTab = (ts.selectedTab + 1) % len(ts.panels)
	}
	return ts
}

// PrevTab moves to the previous tab (wraps around)
func (ts *TabSet) PrevTab() *TabSet {
	if len(ts.panels) > 0 {
		ts.selectedTab = (ts.selectedTab - 1 + len(ts.panels)) % len(ts.panels)
	}
	return ts
}

// GetSelectedTab returns the currently selected tab index
func (ts *TabSet) GetSelectedTab() int {
	return ts.selectedTab
}

// Render renders the tab bar and the active panel
func (ts *TabSet) Render() string {
	if len(ts.panels) == 0 {
		return "No charts available"
	}

	var b strings.Builder
	selected := ts.panels[ts.selectedTab]

	b.WriteString(ts.renderTabs())
	b.WriteString("\n")

	if selected.Note != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true).Render(selected.Note))
		b.WriteString("\n")
	}

	// tab bar is 3 lines, note 1
	contentHeight := ts.height - 4
	b.WriteString(selected.View(ts.width, contentHeight))

	return b.String()
}

// renderTabs renders the tab navigation bar
func (ts *TabSet) renderTabs() string {
	activeTabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("170")).
		Background(lipgloss.Color("235")).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("170"))

	inactiveTabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("236"))

	var renderedTabs []string
	for i, panel := range ts.panels {
		if i == ts.selectedTab {
			renderedTabs = append(renderedTabs, activeTabStyle.Render(panel.Title))
		} else {
			renderedTabs = append(renderedTabs, inactiveTabStyle.Render(panel.Title))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...)
}

// String is a convenience method that calls Render
func (ts *TabSet) String() string {
	return ts.Render()
}
