package sysdash

import (
	"fmt"
	"math"
	"strings"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
)

// Chart host ids, one per chart on the page
const (
	ChartCPU     = "cpuChart"
	ChartMemory  = "memoryChart"
	ChartDisk    = "diskChart"
	ChartNetwork = "networkChart"
)

// CPUChart binds the rolling CPU history to a termui line plot with a
// fixed 0-100 range.
type CPUChart struct {
	plot *widgets.Plot
}

func NewCPUChart() *CPUChart {
	p := widgets.NewPlot()
	p.Border = false
	p.MaxVal = 100
	p.PlotType = widgets.LineChart
	p.Marker = widgets.MarkerBraille
	p.LineColors = []ui.Color{ui.ColorMagenta}
	p.AxesColor = ui.ColorWhite
	p.ShowAxes = true
	p.Data = [][]float64{{}}
	return &CPUChart{plot: p}
}

// Update replaces the chart's label and value arrays with copies of the
// given series. Values are clamped to the fixed 0-100 axis.
func (c *CPUChart) Update(labels []string, values []float64) {
	data := make([]float64, len(values))
	for i, v := range values {
		data[i] = clampPercent(v)
	}
	c.plot.DataLabels = append([]string(nil), labels...)
	c.plot.Data = [][]float64{data}
}

func (c *CPUChart) Labels() []string {
	return append([]string(nil), c.plot.DataLabels...)
}

func (c *CPUChart) Values() []float64 {
	return append([]float64(nil), c.plot.Data[0]...)
}

// View draws the plot. A line needs two points, so shorter histories show
// a waiting message instead.
func (c *CPUChart) View(width, height int) string {
	values := c.plot.Data[0]
	if len(values) < 2 || height < 6 || width < 10 {
		return "Waiting for data..."
	}

	// first and last sample time under the plot
	labels := c.plot.DataLabels
	axis := ""
	if len(labels) > 0 {
		first, last := labels[0], labels[len(labels)-1]
		gap := max(1, width-len(first)-len(last))
		axis = first + strings.Repeat(" ", gap) + last
		height--
	}

	// spread the samples over the drawable width (axes take 6 columns)
	c.plot.HorizontalScale = max(1, (width-6)/(len(values)-1))

	chart := drawWidget(c.plot, width, height)
	if axis == "" {
		return chart
	}
	return chart + "\n" + axis
}

// GaugeChart is a two-slice proportion chart: [used, 100-used]
type GaugeChart struct {
	title string
	pie   *widgets.PieChart
}

func NewGaugeChart(title string, used ui.Color) *GaugeChart {
	p := widgets.NewPieChart()
	p.Border = false
	p.Colors = []ui.Color{used, ui.ColorBlack}
	p.AngleOffset = -.5 * math.Pi
	p.Data = []float64{0, 100}
	return &GaugeChart{title: title, pie: p}
}

// Update sets the slices from a used percentage, clamped to [0,100] so the
// slices always sum to exactly 100.
func (g *GaugeChart) Update(usedPercent float64) {
	used := clampPercent(usedPercent)
	g.pie.Data = []float64{used, 100 - used}
}

func (g *GaugeChart) Title() string {
	return g.title
}

func (g *GaugeChart) Values() []float64 {
	return append([]float64(nil), g.pie.Data...)
}

func (g *GaugeChart) View(width, height int) string {
	if height < 4 || width < 4 {
		return g.legend()
	}
	return drawWidget(g.pie, width, height-1) + "\n" + g.legend()
}

func (g *GaugeChart) legend() string {
	return fmt.Sprintf("■ Used %.1f%%  □ Free %.1f%%", g.pie.Data[0], g.pie.Data[1])
}

// NetworkChart shows cumulative sent and received traffic in MB
type NetworkChart struct {
	bars *widgets.BarChart
}

func NewNetworkChart() *NetworkChart {
	b := widgets.NewBarChart()
	b.Border = false
	b.Labels = []string{"Sent", "Received"}
	b.BarColors = []ui.Color{ui.ColorMagenta, ui.ColorBlue}
	b.NumStyles = []ui.Style{ui.NewStyle(ui.ColorWhite)}
	b.LabelStyles = []ui.Style{ui.NewStyle(ui.ColorWhite)}
	b.NumFormatter = func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	}
	b.Data = []float64{0, 0}
	b.MaxVal = 1
	return &NetworkChart{bars: b}
}

// Update sets both bars in MB
func (n *NetworkChart) Update(sentMB, recvMB float64) {
	n.bars.Data = []float64{sentMB, recvMB}
	// termui divides by MaxVal; keep headroom and never zero
	n.bars.MaxVal = math.Max(1, math.Max(sentMB, recvMB)*1.1)
}

func (n *NetworkChart) Values() []float64 {
	return append([]float64(nil), n.bars.Data...)
}

func (n *NetworkChart) View(width, height int) string {
	if height < 4 || width < 12 {
		return fmt.Sprintf("Sent %s  Received %s", formatMB(n.bars.Data[0]), formatMB(n.bars.Data[1]))
	}
	// two bars with a gap, sized to the pane
	n.bars.BarGap = 2
	n.bars.BarWidth = max(3, (width-n.bars.BarGap)/2-1)
	return drawWidget(n.bars, width, height)
}
