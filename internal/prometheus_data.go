package sysdash

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
)

// PrometheusData builds snapshots from the node_exporter series of one
// instance scraped by a Prometheus server. Per-process data is not
// available there, so snapshots carry an empty process list.
type PrometheusData struct {
	client   api.Client
	url      *url.URL
	instance string
	cache    *nodeCache
}

func NewPrometheusData(prometheusURL *url.URL) (*PrometheusData, error) {
	client, err := api.NewClient(api.Config{
		Address: prometheusURL.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus client: %w", err)
	}

	p := &PrometheusData{
		client: client,
		url:    prometheusURL,
	}
	p.cache = &nodeCache{list: p.GetNodes}
	return p, nil
}

// SetInstance pins the node_exporter instance; by default the first healthy
// target is used.
func (p *PrometheusData) SetInstance(instance string) {
	p.instance = instance
}

func (p *PrometheusData) GetType() string {
	return "prometheus"
}

func (p *PrometheusData) Check(ctx context.Context) error {
	v1api := v1.NewAPI(p.client)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Test basic Prometheus API connectivity
	_, warnings, err := v1api.Query(ctx, "up", time.Now())
	if err != nil {
		return fmt.Errorf("prometheus API query failed: %w", err)
	}
	if len(warnings) > 0 {
		log.Printf("Prometheus warnings: %v", warnings)
	}

	// Verify node_exporter job exists
	nodes, err := p.GetNodes(ctx)
	if err != nil {
		return fmt.Errorf("node_exporter job query failed: %w", err)
	}
	if len(nodes) == 0 {
		return fmt.Errorf("no node_exporter targets found in prometheus")
	}

	return nil
}

// GetNodes lists the healthy node_exporter instances, sorted
func (p *PrometheusData) GetNodes(ctx context.Context) ([]string, error) {
	vector, err := p.query(ctx, `up{job="node_exporter"}`)
	if err != nil {
		return nil, err
	}

	nodes := make([]string, 0, vector.Len())
	for _, val := range vector {
		if val.Value == 1 {
			nodes = append(nodes, string(val.Metric["instance"]))
		}
	}
	sort.Strings(nodes)
	return nodes, nil
}

func (p *PrometheusData) query(ctx context.Context, q string) (model.Vector, error) {
	v1api := v1.NewAPI(p.client)
	result, warnings, err := v1api.Query(ctx, q, time.Now())
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", q, err)
	}
	if len(warnings) > 0 {
		log.Printf("Prometheus warnings for %q: %v", q, warnings)
	}
	vector, ok := result.(model.Vector)
	if !ok {
		return nil, fmt.Errorf("query %q: unexpected result type %s", q, result.Type())
	}
	return vector, nil
}

// scalar runs a query expected to yield one sample. ok is false when the
// series does not exist.
func (p *PrometheusData) scalar(ctx context.Context, q string) (float64, bool, error) {
	vector, err := p.query(ctx, q)
	if err != nil || len(vector) == 0 {
		return 0, false, err
	}
	return float64(vector[0].Value), true, nil
}

func (p *PrometheusData) Fetch(ctx context.Context) (*Snapshot, error) {
	instance := p.instance
	if instance == "" {
		nodes, err := p.cache.GetInstances(ctx)
		if err != nil {
			return nil, &FetchError{URL: p.url.String(), Err: err}
		}
		if len(nodes) == 0 {
			return nil, &SoftDataError{Message: "no node_exporter targets are up"}
		}
		instance = nodes[0]
	}

	sel := fmt.Sprintf(`instance=%q`, instance)
	// "/" can be reported by several filesystems (rootfs plus the real one)
	rootFS := sel + `,mountpoint="/",fstype!="rootfs"`
	queries := map[string]string{
		"cpu_percent": `100 - (avg(rate(node_cpu_seconds_total{` + sel + `,mode="idle"}[1m])) * 100)`,
		"cpu_count":   `count(node_cpu_seconds_total{` + sel + `,mode="idle"})`,
		"mem_total":   `node_memory_MemTotal_bytes{` + sel + `}`,
		"mem_avail":   `node_memory_MemAvailable_bytes{` + sel + `}`,
		"mem_free":    `node_memory_MemFree_bytes{` + sel + `}`,
		"swap_total":  `node_memory_SwapTotal_bytes{` + sel + `}`,
		"swap_free":   `node_memory_SwapFree_bytes{` + sel + `}`,
		"disk_size":   `max(node_filesystem_size_bytes{` + rootFS + `})`,
		"disk_free":   `max(node_filesystem_free_bytes{` + rootFS + `})`,
		"disk_avail":  `max(node_filesystem_avail_bytes{` + rootFS + `})`,
		"net_sent":    `sum(node_network_transmit_bytes_total{` + sel + `,device!="lo"})`,
		"net_recv":    `sum(node_network_receive_bytes_total{` + sel + `,device!="lo"})`,
		"uptime":      `node_time_seconds{` + sel + `} - node_boot_time_seconds{` + sel + `}`,
	}

	values := make(map[string]float64, len(queries))
	found := make(map[string]bool, len(queries))
	for name, q := range queries {
		v, ok, err := p.scalar(ctx, q)
		if err != nil {
			return nil, &FetchError{URL: p.url.String(), Err: err}
		}
		values[name], found[name] = v, ok
	}

	snap := &Snapshot{Processes: []Process{}}

	if found["cpu_count"] {
		snap.CPU = &CPUInfo{Count: int(values["cpu_count"]), Percent: values["cpu_percent"]}
	}
	if found["mem_total"] {
		snap.Memory = memoryFromNode(values["mem_total"], values["mem_avail"], values["mem_free"])
	}
	if found["swap_total"] {
		snap.Swap = swapFromNode(values["swap_total"], values["swap_free"])
	}
	if found["disk_size"] {
		snap.Disk = diskFromNode(values["disk_size"], values["disk_free"], values["disk_avail"])
	}
	if found["net_sent"] || found["net_recv"] {
		snap.Network = &NetworkInfo{BytesSent: ByteCount(values["net_sent"]), BytesRecv: ByteCount(values["net_recv"])}
	}
	if found["uptime"] {
		snap.Uptime = UptimeFromDuration(time.Duration(values["uptime"] * float64(time.Second)))
	}

	uname, err := p.query(ctx, `node_uname_info{`+sel+`}`)
	if err != nil {
		return nil, &FetchError{URL: p.url.String(), Err: err}
	}
	if len(uname) > 0 {
		m := uname[0].Metric
		snap.Platform = &PlatformInfo{
			System:  string(m["sysname"]),
			Release: string(m["release"]),
			Version: string(m["version"]),
			Machine: string(m["machine"]),
		}
	}

	if snap.CPU == nil && snap.Memory == nil && snap.Disk == nil {
		p.cache.clear()
		return nil, &SoftDataError{Message: "no node_exporter series for " + strings.TrimSpace(instance)}
	}
	return snap, nil
}

// memoryFromNode derives used memory the way free(1) does: total minus available
func memoryFromNode(total, avail, free float64) *MemoryInfo {
	used := total - avail
	percent := 0.0
	if total > 0 {
		percent = used / total * 100
	}
	return &MemoryInfo{
		Total:     ByteCount(total),
		Available: ByteCount(avail),
		Used:      ByteCount(used),
		Free:      ByteCount(free),
		Percent:   percent,
	}
}

func swapFromNode(total, free float64) *SwapInfo {
	percent := 0.0
	if total > 0 {
		percent = (total - free) / total * 100
	}
	return &SwapInfo{Total: ByteCount(total), Used: ByteCount(total - free), Free: ByteCount(free), Percent: percent}
}

// diskFromNode matches df: used excludes reserved blocks, percent is
// relative to what a user could fill.
func diskFromNode(size, free, avail float64) *DiskInfo {
	used := size - free
	percent := 0.0
	if used+avail > 0 {
		percent = used / (used + avail) * 100
	}
	return &DiskInfo{Total: ByteCount(size), Used: ByteCount(used), Free: ByteCount(avail), Percent: percent}
}
