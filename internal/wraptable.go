package sysdash

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// WrapTable wraps lipgloss table to support height-based wrapping
// When data exceeds maxHeight, it creates multiple tables side-by-side.
// A row made of one cell spanning every column is drawn as a full-width
// line under the headers.
type WrapTable struct {
	headers     []string
	rows        []TableRow
	maxHeight   int
	maxWidth    int
	border      lipgloss.Border
	borderStyle lipgloss.Style
}

// NewWrapTable creates a new wrap table
func NewWrapTable() *WrapTable {
	return &WrapTable{
		border:      lipgloss.NormalBorder(),
		borderStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// Headers sets the table headers
func (wt *WrapTable) Headers(headers ...string) *WrapTable {
	wt.headers = headers
	return wt
}

// Rows sets the table rows
func (wt *WrapTable) Rows(rows ...TableRow) *WrapTable {
	wt.rows = rows
	return wt
}

// MaxHeight sets the maximum height constraint
func (wt *WrapTable) MaxHeight(height int) *WrapTable {
	wt.maxHeight = height
	return wt
}

// MaxWidth sets the maximum width constraint
func (wt *WrapTable) MaxWidth(width int) *WrapTable {
	wt.maxWidth = width
	return wt
}

// Border sets the table border style
func (wt *WrapTable) Border(border lipgloss.Border) *WrapTable {
	wt.border = border
	return wt
}

// BorderStyle sets the border styling
func (wt *WrapTable) BorderStyle(style lipgloss.Style) *WrapTable {
	wt.borderStyle = style
	return wt
}

// Render renders the table with wrapping if needed
func (wt *WrapTable) Render() string {
	if len(wt.rows) == 0 {
		return ""
	}

	if len(wt.rows) == 1 && wt.spansAll(wt.rows[0]) {
		return wt.renderSpanning(wt.rows[0].Cells[0].Text)
	}

	if wt.maxHeight <= 0 {
		return wt.newTable(wt.rows).String()
	}

	// Calculate rows per table based on maxHeight
	// Account for header (1 line) + borders (top + bottom + header separator = 3)
	rowsPerTable := wt.maxHeight - 4
	if rowsPerTable < 1 {
		rowsPerTable = 1
	}

	// If all rows fit in one table, render normally
	if len(wt.rows) <= rowsPerTable {
		return wt.newTable(wt.rows).String()
	}

	// Split rows into multiple tables
	var tables []string
	for i := 0; i < len(wt.rows); i += rowsPerTable {
		end := i + rowsPerTable
		if end > len(wt.rows) {
			end = len(wt.rows)
		}

		tables = append(tables, wt.newTable(wt.rows[i:end]).String())
	}

	// Join tables horizontally
	return lipgloss.JoinHorizontal(lipgloss.Top, tables...)
}

func (wt *WrapTable) newTable(rows []TableRow) *table.Table {
	t := table.New().
		Border(wt.border).
		BorderStyle(wt.borderStyle).
		Headers(wt.headers...).
		Rows(cellStrings(rows, len(wt.headers))...)

	if wt.maxWidth > 0 {
		t = t.Width(wt.maxWidth)
	}
	return t
}

func (wt *WrapTable) spansAll(row TableRow) bool {
	return len(row.Cells) == 1 && row.Cells[0].ColSpan >= len(wt.headers)
}

// renderSpanning draws the header row followed by one centered line
// the full width of the table.
func (wt *WrapTable) renderSpanning(text string) string {
	header := table.New().
		Border(wt.border).
		BorderStyle(wt.borderStyle).
		BorderBottom(false).
		Headers(wt.headers...)
	if wt.maxWidth > 0 {
		header = header.Width(wt.maxWidth)
	}
	top := header.String()

	inner := max(lipgloss.Width(top)-2, lipgloss.Width(text))
	body := lipgloss.NewStyle().
		Border(wt.border, false, true, true, true).
		BorderForeground(wt.borderStyle.GetForeground()).
		Width(inner).
		Align(lipgloss.Center).
		Render(text)

	return lipgloss.JoinVertical(lipgloss.Left, top, body)
}

// cellStrings flattens rows for lipgloss, padding spanned cells with blanks
func cellStrings(rows []TableRow, columns int) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, 0, columns)
		for _, c := range row.Cells {
			cells = append(cells, c.Text)
			for i := 1; i < c.ColSpan; i++ {
				cells = append(cells, "")
			}
		}
		out = append(out, cells)
	}
	return out
}

// String is a convenience method that calls Render
func (wt *WrapTable) String() string {
	return wt.Render()
}
