package sysdash

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	ui "github.com/gizak/termui/v3"
)

// DashboardState is everything that outlives a single refresh: the CPU
// history, the chart bindings and the page text. It is owned by one
// Controller and only mutated by Render.
type DashboardState struct {
	History *CPUHistory
	CPU     *CPUChart
	Memory  *GaugeChart
	Disk    *GaugeChart
	Network *NetworkChart
	Page    *Page

	// Clock supplies sample labels and the last-update time
	Clock func() time.Time
}

func NewDashboardState(historySize int) *DashboardState {
	return &DashboardState{
		History: NewCPUHistory(historySize),
		CPU:     NewCPUChart(),
		Memory:  NewGaugeChart("Memory", ui.ColorMagenta),
		Disk:    NewGaugeChart("Disk", ui.ColorBlue),
		Network: NewNetworkChart(),
		Page:    NewPage(),
		Clock:   time.Now,
	}
}

type subUpdate struct {
	name string
	fn   func(*DashboardState, *Snapshot) error
}

// Each entry is independent: a failure in one never blocks the others.
var subUpdates = []subUpdate{
	{"platform", renderPlatform},
	{"cores", renderCores},
	{"uptime", renderUptime},
	{"cpu", renderCPU},
	{"memory", renderMemory},
	{"disk", renderDisk},
	{"network", renderNetwork},
	{"processes", renderProcesses},
	{"details", renderDetails},
}

// Render applies one snapshot to the dashboard state. Sub-update failures
// are logged and returned joined; the remaining sub-updates still run.
func Render(st *DashboardState, snap *Snapshot) error {
	var errs []error
	for _, u := range subUpdates {
		if err := runGuarded(u, st, snap); err != nil {
			log.Printf("render %s: %v", u.name, err)
			errs = append(errs, fmt.Errorf("%s: %w", u.name, err))
		}
	}

	// stamped at completion; a server timestamp wins when present
	updated := st.Clock()
	if snap.Timestamp != nil {
		updated = *snap.Timestamp
	} else if err := snap.SectionError("timestamp"); err != nil {
		errs = append(errs, fmt.Errorf("timestamp: %w", err))
	}
	if err := st.Page.SetText(ElemLastUpdate, "Last Update: "+formatClock(updated)); err != nil {
		errs = append(errs, err)
	}
	st.Page.SetStatus("Live", BadgeLive)

	return errors.Join(errs...)
}

func runGuarded(u subUpdate, st *DashboardState, snap *Snapshot) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return u.fn(st, snap)
}

var errMissing = errors.New("field missing from snapshot")

// missing explains why a section is absent: it was malformed or not sent
func missing(snap *Snapshot, section string) error {
	if err := snap.SectionError(section); err != nil {
		return fmt.Errorf("malformed %s: %w", section, err)
	}
	return errMissing
}

func renderPlatform(st *DashboardState, snap *Snapshot) error {
	if snap.Platform == nil {
		return missing(snap, "platform")
	}
	return st.Page.SetText(ElemOSInfo, snap.Platform.System+" "+snap.Platform.Release)
}

func renderCores(st *DashboardState, snap *Snapshot) error {
	if snap.CPU == nil {
		return missing(snap, "cpu")
	}
	return st.Page.SetText(ElemCPUCores, strconv.Itoa(snap.CPU.Count))
}

func renderUptime(st *DashboardState, snap *Snapshot) error {
	if snap.Uptime == nil {
		return missing(snap, "uptime")
	}
	return st.Page.SetText(ElemUptimeInfo, formatUptime(snap.Uptime))
}

func renderCPU(st *DashboardState, snap *Snapshot) error {
	if snap.CPU == nil {
		return missing(snap, "cpu")
	}
	percent := snap.CPU.Percent
	if err := st.Page.SetText(ElemCPUPercent, formatPercent(percent)); err != nil {
		return err
	}

	st.History.Push(formatClock(st.Clock()), percent)
	st.CPU.Update(st.History.Labels(), st.History.Percents())
	return nil
}

func renderMemory(st *DashboardState, snap *Snapshot) error {
	m := snap.Memory
	if m == nil {
		return missing(snap, "memory")
	}
	return renderUsage(st.Page, st.Memory, usageElems{
		percent: ElemMemoryPercent, used: ElemMemoryUsed, free: ElemMemoryFree, total: ElemMemoryTotal,
	}, m.Percent, m.Used, m.Free, m.Total)
}

func renderDisk(st *DashboardState, snap *Snapshot) error {
	d := snap.Disk
	if d == nil {
		return missing(snap, "disk")
	}
	return renderUsage(st.Page, st.Disk, usageElems{
		percent: ElemDiskPercent, used: ElemDiskUsed, free: ElemDiskFree, total: ElemDiskTotal,
	}, d.Percent, d.Used, d.Free, d.Total)
}

type usageElems struct {
	percent, used, free, total string
}

func renderUsage(page *Page, gauge *GaugeChart, ids usageElems, percent float64, used, free, total ByteCount) error {
	err := errors.Join(
		page.SetText(ids.percent, formatPercent(percent)),
		page.SetText(ids.used, FormatBytes(uint64(used))),
		page.SetText(ids.free, FormatBytes(uint64(free))),
		page.SetText(ids.total, FormatBytes(uint64(total))),
	)
	gauge.Update(percent)
	return err
}

func renderNetwork(st *DashboardState, snap *Snapshot) error {
	n := snap.Network
	if n == nil {
		return missing(snap, "network")
	}
	sentMB := BytesToMB(uint64(n.BytesSent))
	recvMB := BytesToMB(uint64(n.BytesRecv))
	err := errors.Join(
		st.Page.SetText(ElemNetworkSent, formatMB(sentMB)),
		st.Page.SetText(ElemNetworkRecv, formatMB(recvMB)),
	)
	st.Network.Update(sentMB, recvMB)
	return err
}

// renderProcesses rebuilds the table from scratch, keeping the snapshot's
// order. An empty list renders one placeholder row across all columns.
func renderProcesses(st *DashboardState, snap *Snapshot) error {
	if err := snap.SectionError("processes"); err != nil {
		return fmt.Errorf("malformed processes: %w", err)
	}
	if len(snap.Processes) == 0 {
		st.Page.ProcessTable = []TableRow{{
			Cells: []TableCell{{Text: "No process data available", ColSpan: PROCESS_COLUMNS}},
		}}
		return nil
	}

	rows := make([]TableRow, 0, len(snap.Processes))
	for _, p := range snap.Processes {
		rows = append(rows, TableRow{Cells: []TableCell{
			{Text: strconv.FormatInt(int64(p.PID), 10)},
			{Text: p.Name},
			{Text: formatPercent2(p.CPU)},
			{Text: formatPercent2(p.Memory)},
		}})
	}
	st.Page.ProcessTable = rows
	return nil
}

// renderDetails fills the optional fields older backends may not send
func renderDetails(st *DashboardState, snap *Snapshot) error {
	var errs []error
	if snap.Platform != nil && snap.Platform.Machine != "" {
		errs = append(errs, st.Page.SetText(ElemMachineInfo, snap.Platform.Machine))
	}
	if snap.CPU != nil && snap.CPU.Frequency != nil && snap.CPU.Frequency.Current > 0 {
		errs = append(errs, st.Page.SetText(ElemCPUFrequency, fmt.Sprintf("%.0f MHz", snap.CPU.Frequency.Current)))
	}
	if snap.Swap != nil {
		errs = append(errs, st.Page.SetText(ElemSwapInfo,
			fmt.Sprintf("%s / %s (%s)", FormatBytes(uint64(snap.Swap.Used)), FormatBytes(uint64(snap.Swap.Total)), formatPercent(snap.Swap.Percent))))
	}
	return errors.Join(errs...)
}
