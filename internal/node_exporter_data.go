package sysdash

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// CPU_RATE_READINGS is how many scrapes the CPU rate is averaged over
const CPU_RATE_READINGS = 30

// cpuReading is the summed idle and total CPU seconds of one scrape
type cpuReading struct {
	idle  float64
	total float64
}

// NodeExporterData scrapes a node_exporter /metrics endpoint directly.
// Like the Prometheus source it has no per-process data.
type NodeExporterData struct {
	client *http.Client
	url    *url.URL

	mu       sync.Mutex
	readings []cpuReading
}

func NewNodeExporterData(metricsURL *url.URL, timeout time.Duration) *NodeExporterData {
	if timeout <= 0 {
		timeout = RequestTimeout()
	}
	return &NodeExporterData{
		client: &http.Client{Timeout: timeout},
		url:    metricsURL,
	}
}

func (n *NodeExporterData) GetType() string {
	return "node_exporter"
}

func (n *NodeExporterData) scrape(ctx context.Context) (map[string]*dto.MetricFamily, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.url.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying node exporter: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("node exporter returned %s", resp.Status)
	}

	parser := expfmt.TextParser{}
	data, err := parser.TextToMetricFamilies(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse metrics: %w", err)
	}
	return data, nil
}

// Check verifies the endpoint exposes node_exporter CPU counters
func (n *NodeExporterData) Check(ctx context.Context) error {
	data, err := n.scrape(ctx)
	if err != nil {
		return err
	}
	if _, ok := data["node_cpu_seconds_total"]; !ok {
		return fmt.Errorf("no node_cpu_seconds_total at %s", n.url)
	}
	return nil
}

func (n *NodeExporterData) Fetch(ctx context.Context) (*Snapshot, error) {
	data, err := n.scrape(ctx)
	if err != nil {
		return nil, &FetchError{URL: n.url.String(), Err: err}
	}
	return n.snapshotFrom(data)
}

func (n *NodeExporterData) snapshotFrom(data map[string]*dto.MetricFamily) (*Snapshot, error) {
	if _, ok := data["node_cpu_seconds_total"]; !ok {
		return nil, &SoftDataError{Message: "metrics endpoint has no node_cpu_seconds_total"}
	}

	snap := &Snapshot{Processes: []Process{}}

	count, reading := cpuTimes(data["node_cpu_seconds_total"])
	snap.CPU = &CPUInfo{Count: count, Percent: n.cpuPercent(reading)}

	if total, ok := gaugeValue(data, "node_memory_MemTotal_bytes", nil); ok {
		avail, _ := gaugeValue(data, "node_memory_MemAvailable_bytes", nil)
		free, _ := gaugeValue(data, "node_memory_MemFree_bytes", nil)
		snap.Memory = memoryFromNode(total, avail, free)
	}
	if total, ok := gaugeValue(data, "node_memory_SwapTotal_bytes", nil); ok {
		free, _ := gaugeValue(data, "node_memory_SwapFree_bytes", nil)
		snap.Swap = swapFromNode(total, free)
	}

	root := map[string]string{"mountpoint": "/"}
	if size, ok := gaugeValue(data, "node_filesystem_size_bytes", root); ok {
		free, _ := gaugeValue(data, "node_filesystem_free_bytes", root)
		avail, _ := gaugeValue(data, "node_filesystem_avail_bytes", root)
		snap.Disk = diskFromNode(size, free, avail)
	}

	sent, okSent := sumCounters(data["node_network_transmit_bytes_total"])
	recv, okRecv := sumCounters(data["node_network_receive_bytes_total"])
	if okSent || okRecv {
		snap.Network = &NetworkInfo{BytesSent: ByteCount(sent), BytesRecv: ByteCount(recv)}
	}

	boot, okBoot := gaugeValue(data, "node_boot_time_seconds", nil)
	now, okNow := gaugeValue(data, "node_time_seconds", nil)
	if okBoot && okNow {
		snap.Uptime = UptimeFromDuration(time.Duration((now - boot) * float64(time.Second)))
	}

	if fam, ok := data["node_uname_info"]; ok && len(fam.GetMetric()) > 0 {
		m := fam.GetMetric()[0]
		snap.Platform = &PlatformInfo{
			System:  labelValue(m, "sysname"),
			Release: labelValue(m, "release"),
			Version: labelValue(m, "version"),
			Machine: labelValue(m, "machine"),
		}
	}

	return snap, nil
}

// cpuPercent records a reading and returns usage over the retained window.
// With a single reading the average since boot is returned.
func (n *NodeExporterData) cpuPercent(current cpuReading) float64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	// append the new reading and limit the window
	n.readings = append(n.readings, current)
	if len(n.readings) > CPU_RATE_READINGS {
		n.readings = n.readings[1:]
	}

	first := cpuReading{}
	if len(n.readings) > 1 {
		first = n.readings[0]
	}

	// counters might have been reset (reboot) so carry an offset forward
	var idleOffset, totalOffset float64
	for i := 1; i < len(n.readings); i++ {
		if n.readings[i].total < n.readings[i-1].total {
			idleOffset += n.readings[i-1].idle
			totalOffset += n.readings[i-1].total
		}
	}

	last := n.readings[len(n.readings)-1]
	idle := last.idle + idleOffset - first.idle
	total := last.total + totalOffset - first.total
	if total <= 0 {
		return 0
	}
	// the mode times add up to the elapsed time, so usage is what is not idle
	return clampPercent(100 - 100*idle/total)
}

// cpuTimes sums node_cpu_seconds_total over all CPUs and returns the CPU count
func cpuTimes(fam *dto.MetricFamily) (int, cpuReading) {
	cpus := make(map[string]bool)
	var r cpuReading
	for _, metric := range fam.GetMetric() {
		v := metric.GetCounter().GetValue()
		cpus[labelValue(metric, "cpu")] = true
		r.total += v
		if labelValue(metric, "mode") == "idle" {
			r.idle += v
		}
	}
	return len(cpus), r
}

func labelValue(metric *dto.Metric, name string) string {
	for _, label := range metric.GetLabel() {
		if label.GetName() == name {
			return label.GetValue()
		}
	}
	return ""
}

// gaugeValue returns the first sample of a gauge family whose labels
// include all of match.
func gaugeValue(data map[string]*dto.MetricFamily, name string, match map[string]string) (float64, bool) {
	fam, ok := data[name]
	if !ok {
		return 0, false
	}
	for _, metric := range fam.GetMetric() {
		matched := true
		for k, v := range match {
			if labelValue(metric, k) != v {
				matched = false
				break
			}
		}
		if matched {
			return metric.GetGauge().GetValue(), true
		}
	}
	return 0, false
}

// sumCounters adds up a counter family, skipping the loopback device
func sumCounters(fam *dto.MetricFamily) (float64, bool) {
	if fam == nil {
		return 0, false
	}
	sum := 0.0
	for _, metric := range fam.GetMetric() {
		if labelValue(metric, "device") == "lo" {
			continue
		}
		sum += metric.GetCounter().GetValue()
	}
	return sum, true
}
