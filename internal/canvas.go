package sysdash

import (
	"image"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ui "github.com/gizak/termui/v3"
)

// drawWidget draws a termui widget into an off-screen buffer of the given
// size and returns the result as a lipgloss-styled string, so termui charts
// can live inside bubbletea views without termui owning the terminal.
func drawWidget(w ui.Drawable, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	w.SetRect(0, 0, width, height)
	buf := ui.NewBuffer(w.GetRect())

	w.Lock()
	w.Draw(buf)
	w.Unlock()

	return bufferString(buf)
}

// bufferString converts buffer cells row by row, grouping runs of cells
// that share a style into one lipgloss render call.
func bufferString(buf *ui.Buffer) string {
	r := buf.Rectangle
	lines := make([]string, 0, r.Dy())

	for y := r.Min.Y; y < r.Max.Y; y++ {
		var line strings.Builder
		var run strings.Builder
		runStyle := ui.StyleClear

		flush := func() {
			if run.Len() == 0 {
				return
			}
			line.WriteString(cellStyle(runStyle).Render(run.String()))
			run.Reset()
		}

		for x := r.Min.X; x < r.Max.X; x++ {
			cell := buf.GetCell(image.Pt(x, y))
			if cell.Style != runStyle {
				flush()
				runStyle = cell.Style
			}
			ch := cell.Rune
			if ch == 0 {
				ch = ' '
			}
			run.WriteRune(ch)
		}
		flush()
		lines = append(lines, line.String())
	}

	return strings.Join(lines, "\n")
}

func cellStyle(s ui.Style) lipgloss.Style {
	style := lipgloss.NewStyle()
	if s.Fg != ui.ColorClear {
		style = style.Foreground(lipgloss.Color(strconv.Itoa(int(s.Fg))))
	}
	if s.Bg != ui.ColorClear {
		style = style.Background(lipgloss.Color(strconv.Itoa(int(s.Bg))))
	}
	if s.Modifier&ui.ModifierBold != 0 {
		style = style.Bold(true)
	}
	return style
}
