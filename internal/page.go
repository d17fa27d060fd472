package sysdash

import (
	"fmt"
	"sort"
)

// Element ids written by the renderer
const (
	ElemOSInfo        = "osInfo"
	ElemCPUCores      = "cpuCores"
	ElemUptimeInfo    = "uptimeInfo"
	ElemCPUPercent    = "cpuPercent"
	ElemMemoryPercent = "memoryPercent"
	ElemMemoryUsed    = "memoryUsed"
	ElemMemoryFree    = "memoryFree"
	ElemMemoryTotal   = "memoryTotal"
	ElemDiskPercent   = "diskPercent"
	ElemDiskUsed      = "diskUsed"
	ElemDiskFree      = "diskFree"
	ElemDiskTotal     = "diskTotal"
	ElemNetworkSent   = "networkSent"
	ElemNetworkRecv   = "networkRecv"
	ElemLastUpdate    = "lastUpdate"
	ElemMachineInfo   = "machineInfo"
	ElemCPUFrequency  = "cpuFrequency"
	ElemSwapInfo      = "swapInfo"
	ElemProcessTable  = "processTable"
	ElemStatusBadge   = "statusBadge"
)

var textElements = []string{
	ElemOSInfo, ElemCPUCores, ElemUptimeInfo, ElemCPUPercent,
	ElemMemoryPercent, ElemMemoryUsed, ElemMemoryFree, ElemMemoryTotal,
	ElemDiskPercent, ElemDiskUsed, ElemDiskFree, ElemDiskTotal,
	ElemNetworkSent, ElemNetworkRecv, ElemLastUpdate,
	ElemMachineInfo, ElemCPUFrequency, ElemSwapInfo,
}

// BadgeClass selects how the status badge is styled
type BadgeClass string

const (
	BadgeConnecting BadgeClass = "connecting"
	BadgeLive       BadgeClass = "live"
	BadgeError      BadgeClass = "error"
)

type StatusBadge struct {
	Text  string
	Class BadgeClass
}

// TableCell is one cell of the process table. ColSpan 0 means 1.
type TableCell struct {
	Text    string
	ColSpan int
}

type TableRow struct {
	Cells []TableCell
}

// Page holds every piece of text the dashboard displays, keyed by element
// id. Only the renderer writes to it.
type Page struct {
	text         map[string]string
	ProcessTable []TableRow
	Status       StatusBadge
}

func NewPage() *Page {
	p := &Page{
		text:   make(map[string]string, len(textElements)),
		Status: StatusBadge{Text: "Connecting", Class: BadgeConnecting},
	}
	for _, id := range textElements {
		p.text[id] = "--"
	}
	return p
}

// SetText writes a text element; unknown ids are an error
func (p *Page) SetText(id, text string) error {
	if _, ok := p.text[id]; !ok {
		return fmt.Errorf("no element with id %q", id)
	}
	p.text[id] = text
	return nil
}

// Text returns the content of a text element, "" if it does not exist
func (p *Page) Text(id string) string {
	return p.text[id]
}

// IDs returns the known text element ids in sorted order
func (p *Page) IDs() []string {
	ids := make([]string, 0, len(p.text))
	for id := range p.text {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SetStatus updates the status badge
func (p *Page) SetStatus(text string, class BadgeClass) {
	p.Status = StatusBadge{Text: text, Class: class}
}
