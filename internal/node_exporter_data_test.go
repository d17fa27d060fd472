package sysdash

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func nodeMetrics(idle, user float64) string {
	return fmt.Sprintf(`# HELP node_cpu_seconds_total Seconds the CPUs spent in each mode.
# TYPE node_cpu_seconds_total counter
node_cpu_seconds_total{cpu="0",mode="idle"} %[1]g
node_cpu_seconds_total{cpu="0",mode="user"} %[2]g
node_cpu_seconds_total{cpu="1",mode="idle"} %[1]g
node_cpu_seconds_total{cpu="1",mode="user"} %[2]g
# HELP node_memory_MemTotal_bytes Memory information field MemTotal_bytes.
# TYPE node_memory_MemTotal_bytes gauge
node_memory_MemTotal_bytes 1000
# TYPE node_memory_MemAvailable_bytes gauge
node_memory_MemAvailable_bytes 250
# TYPE node_memory_MemFree_bytes gauge
node_memory_MemFree_bytes 100
# TYPE node_filesystem_size_bytes gauge
node_filesystem_size_bytes{mountpoint="/boot"} 10
node_filesystem_size_bytes{mountpoint="/"} 400
# TYPE node_filesystem_free_bytes gauge
node_filesystem_free_bytes{mountpoint="/boot"} 5
node_filesystem_free_bytes{mountpoint="/"} 100
# TYPE node_filesystem_avail_bytes gauge
node_filesystem_avail_bytes{mountpoint="/boot"} 5
node_filesystem_avail_bytes{mountpoint="/"} 100
# TYPE node_network_transmit_bytes_total counter
node_network_transmit_bytes_total{device="lo"} 999999
node_network_transmit_bytes_total{device="eth0"} 1048576
# TYPE node_network_receive_bytes_total counter
node_network_receive_bytes_total{device="lo"} 999999
node_network_receive_bytes_total{device="eth0"} 2097152
# TYPE node_boot_time_seconds gauge
node_boot_time_seconds 1000
# TYPE node_time_seconds gauge
node_time_seconds 91000
# TYPE node_uname_info gauge
node_uname_info{machine="x86_64",nodename="box",release="6.1.0",sysname="Linux",version="#1 SMP"} 1
`, idle, user)
}

func newTestNodeExporter(t *testing.T, body *string) *NodeExporterData {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		w.Write([]byte(*body))
	}))
	t.Cleanup(srv.Close)
	u, _ := url.Parse(srv.URL + "/metrics")
	return NewNodeExporterData(u, time.Second)
}

func TestNodeExporterFetch(t *testing.T) {
	body := nodeMetrics(300, 100)
	ne := newTestNodeExporter(t, &body)

	snap, err := ne.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if snap.CPU == nil || snap.CPU.Count != 2 {
		t.Fatalf("cpu = %+v", snap.CPU)
	}
	// first reading: average since boot, 200 of 800 seconds busy
	if snap.CPU.Percent != 25 {
		t.Errorf("cpu percent = %v, want 25", snap.CPU.Percent)
	}
	if snap.Memory == nil || snap.Memory.Used != 750 || snap.Memory.Percent != 75 {
		t.Errorf("memory = %+v", snap.Memory)
	}
	if snap.Disk == nil || snap.Disk.Total != 400 || snap.Disk.Used != 300 || snap.Disk.Percent != 75 {
		t.Errorf("disk = %+v", snap.Disk)
	}
	if snap.Network == nil || snap.Network.BytesSent != 1048576 || snap.Network.BytesRecv != 2097152 {
		t.Errorf("network = %+v", snap.Network)
	}
	if snap.Uptime == nil || *snap.Uptime != (UptimeInfo{Days: 1, Hours: 1}) {
		t.Errorf("uptime = %+v", snap.Uptime)
	}
	if snap.Platform == nil || snap.Platform.System != "Linux" || snap.Platform.Machine != "x86_64" {
		t.Errorf("platform = %+v", snap.Platform)
	}
	if snap.Processes == nil || len(snap.Processes) != 0 {
		t.Errorf("processes = %+v, want empty", snap.Processes)
	}
	if snap.Swap != nil {
		t.Errorf("swap = %+v, want nil", snap.Swap)
	}
}

func TestNodeExporterCPURate(t *testing.T) {
	body := nodeMetrics(300, 100)
	ne := newTestNodeExporter(t, &body)
	if _, err := ne.Fetch(context.Background()); err != nil {
		t.Fatal(err)
	}

	// 10s idle and 30s user per CPU since the last scrape
	body = nodeMetrics(310, 130)
	snap, err := ne.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(snap.CPU.Percent-75) > 1e-9 {
		t.Errorf("cpu percent = %v, want 75", snap.CPU.Percent)
	}
}

func TestNodeExporterCounterReset(t *testing.T) {
	ne := NewNodeExporterData(&url.URL{}, time.Second)
	ne.cpuPercent(cpuReading{idle: 100, total: 200})
	// reboot: counters restart from zero
	got := ne.cpuPercent(cpuReading{idle: 5, total: 10})
	if got < 0 || got > 100 {
		t.Errorf("cpu percent after reset = %v", got)
	}
}

func TestNodeExporterWindow(t *testing.T) {
	ne := NewNodeExporterData(&url.URL{}, time.Second)
	for i := 0; i < CPU_RATE_READINGS+10; i++ {
		ne.cpuPercent(cpuReading{idle: float64(i), total: float64(2 * i)})
	}
	if len(ne.readings) != CPU_RATE_READINGS {
		t.Errorf("kept %d readings, want %d", len(ne.readings), CPU_RATE_READINGS)
	}
}

func TestNodeExporterNotNodeMetrics(t *testing.T) {
	body := "# TYPE go_goroutines gauge\ngo_goroutines 12\n"
	ne := newTestNodeExporter(t, &body)

	_, err := ne.Fetch(context.Background())
	var soft *SoftDataError
	if !errors.As(err, &soft) {
		t.Errorf("Fetch err = %v, want *SoftDataError", err)
	}
	if err := ne.Check(context.Background()); err == nil {
		t.Error("Check passed without node_cpu_seconds_total")
	}
}

func TestNodeExporterBadPayload(t *testing.T) {
	body := "{not: prometheus text"
	ne := newTestNodeExporter(t, &body)

	_, err := ne.Fetch(context.Background())
	var fetch *FetchError
	if !errors.As(err, &fetch) {
		t.Errorf("Fetch err = %v, want *FetchError", err)
	}
}
