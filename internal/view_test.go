package sysdash

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestWrapTablePlaceholderRow(t *testing.T) {
	out := NewWrapTable().
		Headers("PID", "Name", "CPU %", "Memory %").
		Rows(TableRow{Cells: []TableCell{{Text: "No process data available", ColSpan: 4}}}).
		MaxWidth(60).
		Render()

	for _, want := range []string{"PID", "Memory %", "No process data available"} {
		if !strings.Contains(out, want) {
			t.Errorf("table is missing %q:\n%s", want, out)
		}
	}
}

func TestWrapTableWrapsTallData(t *testing.T) {
	rows := make([]TableRow, 12)
	for i := range rows {
		rows[i] = TableRow{Cells: []TableCell{{Text: "p"}, {Text: "x"}}}
	}
	tall := NewWrapTable().Headers("A", "B").Rows(rows...).Render()
	wrapped := NewWrapTable().Headers("A", "B").Rows(rows...).MaxHeight(8).Render()

	if lipgloss.Height(wrapped) >= lipgloss.Height(tall) {
		t.Errorf("wrapped height %d not below unwrapped %d", lipgloss.Height(wrapped), lipgloss.Height(tall))
	}
	if lipgloss.Width(wrapped) <= lipgloss.Width(tall) {
		t.Errorf("wrapped width %d not above unwrapped %d", lipgloss.Width(wrapped), lipgloss.Width(tall))
	}
}

func TestCellStringsPadsSpans(t *testing.T) {
	got := cellStrings([]TableRow{{Cells: []TableCell{{Text: "a", ColSpan: 3}, {Text: "b"}}}}, 4)
	if len(got) != 1 || len(got[0]) != 4 || got[0][0] != "a" || got[0][3] != "b" {
		t.Errorf("cellStrings = %q", got)
	}
}

func TestSplitWidth(t *testing.T) {
	tests := []struct {
		total, n int
		want     []int
	}{
		{100, 1, []int{98}},
		{100, 2, []int{48, 48}},
		{100, 3, []int{31, 31, 32}},
		{3, 2, []int{1, 1}},
	}

	for _, tt := range tests {
		got := splitWidth(tt.total, tt.n)
		if len(got) != len(tt.want) {
			t.Fatalf("splitWidth(%d, %d) = %v, want %v", tt.total, tt.n, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitWidth(%d, %d) = %v, want %v", tt.total, tt.n, got, tt.want)
				break
			}
		}
	}
}

func TestTabSetNavigation(t *testing.T) {
	panels := []Panel{
		{Title: "One", View: func(w, h int) string { return "first" }},
		{Title: "Two", View: func(w, h int) string { return "second" }},
		{Title: "Three", View: func(w, h int) string { return "third" }},
	}
	ts := NewTabSet().SetPanels(panels...).SetSize(60, 12)

	ts.PrevTab()
	if ts.GetSelectedTab() != 2 {
		t.Errorf("PrevTab from 0 = %d, want 2", ts.GetSelectedTab())
	}
	ts.NextTab()
	if ts.GetSelectedTab() != 0 {
		t.Errorf("NextTab from 2 = %d, want 0", ts.GetSelectedTab())
	}
	ts.NextTab()
	if out := ts.Render(); !strings.Contains(out, "second") {
		t.Errorf("Render does not show the selected panel:\n%s", out)
	}

	// shrinking the panel list keeps the selection in range
	ts.NextTab().SetPanels(panels[:1]...)
	if ts.GetSelectedTab() != 0 {
		t.Errorf("selection after shrink = %d", ts.GetSelectedTab())
	}
	if NewTabSet().Render() != "No charts available" {
		t.Error("empty tab set rendered panels")
	}
}

func TestRenderPageLayouts(t *testing.T) {
	st := newTestState()
	Render(st, fullSnapshot())

	tests := []struct {
		name     string
		width    int
		contains []string
	}{
		{"wide", 140, []string{"System", "CPU Usage", "Memory", "Disk", "Network", "Processes", "init", "Live"}},
		{"narrow", 70, []string{"CPU Usage", "Processes", "init", "q=Quit"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := renderPage(st, NewTabSet(), "box:5000", tt.width, 40)
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("page is missing %q", want)
				}
			}
		})
	}
}

func TestPlainView(t *testing.T) {
	st := newTestState()
	out := PlainView(st)
	if !strings.Contains(out, "[Connecting]") {
		t.Errorf("initial view:\n%s", out)
	}

	Render(st, fullSnapshot())
	out = PlainView(st)
	for _, want := range []string{"[Live] Last Update: 10:00:00", "CPU: 23.4%", "Disk: 12.5%", "1\tinit\t0.50%\t1.23%"} {
		if !strings.Contains(out, want) {
			t.Errorf("plain view is missing %q:\n%s", want, out)
		}
	}
}

func TestPaneTruncatesContent(t *testing.T) {
	out := NewPane("Title", 20, 3).SetContent("1\n2\n3\n4\n5\n6").Render()
	if strings.Contains(out, "5") {
		t.Errorf("content was not cut to the pane height:\n%s", out)
	}
	if h := lipgloss.Height(out); h != 5 {
		t.Errorf("pane height = %d, want 5", h)
	}
}
