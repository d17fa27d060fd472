package sysdash

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
)

// WIDE_LAYOUT is the terminal width from which all charts fit side by side
const WIDE_LAYOUT = 100

var badgeColors = map[BadgeClass]lipgloss.Color{
	BadgeConnecting: lipgloss.Color("214"),
	BadgeLive:       lipgloss.Color("42"),
	BadgeError:      lipgloss.Color("196"),
}

func renderBadge(b StatusBadge) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("0")).
		Background(badgeColors[b.Class]).
		Bold(true).
		Padding(0, 1).
		Render(b.Text)
}

// chartPanels binds the page text and the chart adapters into panels
func chartPanels(st *DashboardState) []Panel {
	page := st.Page
	usage := func(g *GaugeChart, used, free, total string) func(int, int) string {
		return func(w, h int) string {
			summary := fmt.Sprintf("Used %s  Free %s  Total %s", page.Text(used), page.Text(free), page.Text(total))
			return g.View(w, h-1) + "\n" + summary
		}
	}

	return []Panel{
		{ID: ChartCPU, Title: "CPU Usage", Note: page.Text(ElemCPUPercent), View: st.CPU.View},
		{ID: ChartMemory, Title: st.Memory.Title(), Note: page.Text(ElemMemoryPercent),
			View: usage(st.Memory, ElemMemoryUsed, ElemMemoryFree, ElemMemoryTotal)},
		{ID: ChartDisk, Title: st.Disk.Title(), Note: page.Text(ElemDiskPercent),
			View: usage(st.Disk, ElemDiskUsed, ElemDiskFree, ElemDiskTotal)},
		{ID: ChartNetwork, Title: "Network", Note: "↑ " + page.Text(ElemNetworkSent) + "  ↓ " + page.Text(ElemNetworkRecv),
			View: st.Network.View},
	}
}

// renderSystemTree lays out the host facts with lipgloss tree
func renderSystemTree(page *Page, host string) string {
	leaf := func(label, id string) string {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(label+": ") + page.Text(id)
	}
	root := lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true).Render(host)

	return tree.New().
		Root(root).
		Child(
			leaf("OS", ElemOSInfo),
			leaf("Arch", ElemMachineInfo),
			leaf("Cores", ElemCPUCores),
			leaf("Freq", ElemCPUFrequency),
			leaf("Uptime", ElemUptimeInfo),
			leaf("Swap", ElemSwapInfo),
		).
		String()
}

func renderProcessTable(page *Page, width, height int) string {
	return NewWrapTable().
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		MaxHeight(height).
		MaxWidth(width).
		Headers("PID", "Name", "CPU %", "Memory %").
		Rows(page.ProcessTable...).
		Render()
}

// renderPage composes the whole dashboard for a terminal of width x height
func renderPage(st *DashboardState, tabs *TabSet, host string, width, height int) string {
	page := st.Page

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33")).Render("sysdash "),
		lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(host+" "),
		renderBadge(page.Status),
		"  "+page.Text(ElemLastUpdate),
	)
	helpBar := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Background(lipgloss.Color("235")).
		Width(width).
		Align(lipgloss.Center).
		Render("[]=Switch Tabs  r=Refresh  q=Quit")

	// header, help bar and two border lines per pane row
	available := height - 2
	topHeight := max(6, available*2/5-2)
	procHeight := max(3, available-(topHeight+2)-2)

	panels := chartPanels(st)
	grid := NewGrid()

	// after a failed fetch every pane shows last known data; mark it
	mark := func(p Pane) Pane {
		if page.Status.Class == BadgeError {
			return p.SetBorderColor(badgeColors[BadgeError])
		}
		return p
	}

	if width >= WIDE_LAYOUT {
		midHeight := max(6, (available-(topHeight+2))/2-2)
		procHeight = max(3, available-(topHeight+2)-(midHeight+2)-2)

		w := splitWidth(width, 2)
		grid.AddRow(
			mark(NewPane("System", w[0], topHeight).SetContent(renderSystemTree(page, host))),
			mark(chartPane(panels[0], w[1], topHeight)),
		)
		w = splitWidth(width, 3)
		grid.AddRow(
			mark(chartPane(panels[1], w[0], midHeight)),
			mark(chartPane(panels[2], w[1], midHeight)),
			mark(chartPane(panels[3], w[2], midHeight)),
		)
	} else {
		w := splitWidth(width, 1)
		tabs.SetPanels(panels...).SetSize(w[0], topHeight)
		grid.AddRow(mark(NewPane("", w[0], topHeight).SetContent(tabs.Render())))
	}

	w := splitWidth(width, 1)
	grid.AddRow(
		mark(NewPane("Processes", w[0], procHeight).
			SetContent(renderProcessTable(page, w[0], procHeight-1))),
	)

	return lipgloss.JoinVertical(lipgloss.Left, header, grid.Render(), helpBar)
}

func chartPane(p Panel, width, height int) Pane {
	pane := NewPane(p.Title, width, height).SetNote(p.Note)
	w, h := pane.ContentSize()
	return pane.SetContent(p.View(w, h))
}

// PlainView renders the page as plain text for headless output
func PlainView(st *DashboardState) string {
	page := st.Page
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s\n", page.Status.Text, page.Text(ElemLastUpdate))
	fmt.Fprintf(&b, "OS: %s  Cores: %s  Uptime: %s\n",
		page.Text(ElemOSInfo), page.Text(ElemCPUCores), page.Text(ElemUptimeInfo))
	fmt.Fprintf(&b, "CPU: %s  history: %d samples\n", page.Text(ElemCPUPercent), st.History.Len())
	fmt.Fprintf(&b, "Memory: %s  used %s  free %s  total %s\n",
		page.Text(ElemMemoryPercent), page.Text(ElemMemoryUsed), page.Text(ElemMemoryFree), page.Text(ElemMemoryTotal))
	fmt.Fprintf(&b, "Disk: %s  used %s  free %s  total %s\n",
		page.Text(ElemDiskPercent), page.Text(ElemDiskUsed), page.Text(ElemDiskFree), page.Text(ElemDiskTotal))
	fmt.Fprintf(&b, "Network: sent %s  received %s\n", page.Text(ElemNetworkSent), page.Text(ElemNetworkRecv))

	for _, row := range page.ProcessTable {
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			cells[i] = c.Text
		}
		b.WriteString("  " + strings.Join(cells, "\t") + "\n")
	}
	return b.String()
}
