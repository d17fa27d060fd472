package agent

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"

	sysdash "github.com/jondoveston/sysdash/internal"
)

const (
	defaultTopProcesses = 10
	defaultCPUSample    = time.Second
)

// Collector produces snapshots of the local host
type Collector interface {
	Collect(ctx context.Context) (*sysdash.Snapshot, error)
}

// HostCollector reads the local machine through gopsutil
type HostCollector struct {
	diskPath  string
	top       int
	cpuSample time.Duration

	// process handles survive between collections so per-process CPU is
	// measured since the previous collection rather than since start
	mu    sync.Mutex
	procs map[int32]*process.Process
}

func NewHostCollector(diskPath string, top int, cpuSample time.Duration) *HostCollector {
	if diskPath == "" {
		diskPath = DefaultDiskPath()
	}
	if top <= 0 {
		top = defaultTopProcesses
	}
	if cpuSample <= 0 {
		cpuSample = defaultCPUSample
	}
	return &HostCollector{
		diskPath:  diskPath,
		top:       top,
		cpuSample: cpuSample,
		procs:     make(map[int32]*process.Process),
	}
}

// DefaultDiskPath is the filesystem reported as "disk"
func DefaultDiskPath() string {
	if runtime.GOOS == "windows" {
		return `C:\`
	}
	return "/"
}

func (c *HostCollector) Collect(ctx context.Context) (*sysdash.Snapshot, error) {
	now := time.Now()
	snap := &sysdash.Snapshot{Timestamp: &now}

	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("host info: %w", err)
	}
	snap.Platform = &sysdash.PlatformInfo{
		System:  systemName(info.OS),
		Release: info.KernelVersion,
		Version: strings.TrimSpace(info.Platform + " " + info.PlatformVersion),
		Machine: info.KernelArch,
	}
	snap.Uptime = sysdash.UptimeFromDuration(time.Duration(info.Uptime) * time.Second)

	if snap.CPU, err = c.collectCPU(ctx); err != nil {
		return nil, err
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("virtual memory: %w", err)
	}
	snap.Memory = &sysdash.MemoryInfo{
		Total:     sysdash.ByteCount(vm.Total),
		Available: sysdash.ByteCount(vm.Available),
		Used:      sysdash.ByteCount(vm.Used),
		Free:      sysdash.ByteCount(vm.Free),
		Percent:   vm.UsedPercent,
	}

	// swap is optional; some containers do not expose it
	if sw, err := mem.SwapMemoryWithContext(ctx); err == nil {
		snap.Swap = &sysdash.SwapInfo{
			Total:   sysdash.ByteCount(sw.Total),
			Used:    sysdash.ByteCount(sw.Used),
			Free:    sysdash.ByteCount(sw.Free),
			Percent: sw.UsedPercent,
		}
	}

	du, err := disk.UsageWithContext(ctx, c.diskPath)
	if err != nil {
		return nil, fmt.Errorf("disk usage %s: %w", c.diskPath, err)
	}
	snap.Disk = &sysdash.DiskInfo{
		Total:   sysdash.ByteCount(du.Total),
		Used:    sysdash.ByteCount(du.Used),
		Free:    sysdash.ByteCount(du.Free),
		Percent: du.UsedPercent,
	}

	counters, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("network counters: %w", err)
	}
	snap.Network = &sysdash.NetworkInfo{}
	if len(counters) > 0 {
		snap.Network.BytesSent = sysdash.ByteCount(counters[0].BytesSent)
		snap.Network.BytesRecv = sysdash.ByteCount(counters[0].BytesRecv)
		snap.Network.PacketsSent = sysdash.ByteCount(counters[0].PacketsSent)
		snap.Network.PacketsRecv = sysdash.ByteCount(counters[0].PacketsRecv)
	}

	snap.Processes = c.topProcesses(ctx)
	return snap, nil
}

func (c *HostCollector) collectCPU(ctx context.Context) (*sysdash.CPUInfo, error) {
	pct, err := cpu.PercentWithContext(ctx, c.cpuSample, false)
	if err != nil {
		return nil, fmt.Errorf("cpu percent: %w", err)
	}
	if len(pct) == 0 {
		return nil, errors.New("cpu percent: no samples")
	}
	count, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("cpu count: %w", err)
	}

	out := &sysdash.CPUInfo{Count: count, Percent: pct[0]}
	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		out.Frequency = &sysdash.CPUFrequency{Current: infos[0].Mhz, Max: infos[0].Mhz}
	}
	return out, nil
}

// topProcesses returns the busiest processes by CPU, highest first.
// Processes that vanish or deny access mid-scan are skipped.
func (c *HostCollector) topProcesses(ctx context.Context) []sysdash.Process {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return []sysdash.Process{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	alive := make(map[int32]*process.Process, len(procs))
	out := make([]sysdash.Process, 0, len(procs))
	for _, p := range procs {
		if known, ok := c.procs[p.Pid]; ok {
			p = known
		}
		alive[p.Pid] = p

		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		cpuPct, err := p.PercentWithContext(ctx, 0)
		if err != nil {
			continue
		}
		memPct, err := p.MemoryPercentWithContext(ctx)
		if err != nil {
			continue
		}
		out = append(out, sysdash.Process{PID: p.Pid, Name: name, CPU: cpuPct, Memory: float64(memPct)})
	}
	c.procs = alive

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CPU > out[j].CPU
	})
	if len(out) > c.top {
		out = out[:c.top]
	}
	return out
}

// systemName turns a GOOS value into the display name sent as platform.system
func systemName(goos string) string {
	switch goos {
	case "linux":
		return "Linux"
	case "windows":
		return "Windows"
	case "darwin":
		return "Darwin"
	case "freebsd":
		return "FreeBSD"
	case "":
		return runtime.GOOS
	default:
		return strings.ToUpper(goos[:1]) + goos[1:]
	}
}
