package sysdash

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// fakePrometheus answers instant queries by matching a fragment of the
// PromQL expression against canned vectors.
func fakePrometheus(t *testing.T, series map[string]string, upQueries *atomic.Int32) *PrometheusData {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/query" {
			http.NotFound(w, r)
			return
		}
		q := r.FormValue("query")
		if strings.HasPrefix(q, "up") && upQueries != nil {
			upQueries.Add(1)
		}

		result := ""
		for fragment, sample := range series {
			if strings.HasPrefix(q, fragment) {
				result = sample
				break
			}
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"success","data":{"resultType":"vector","result":[%s]}}`, result)
	}))
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	p, err := NewPrometheusData(u)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func sample(labels, value string) string {
	return fmt.Sprintf(`{"metric":{%s},"value":[1714557600,"%s"]}`, labels, value)
}

func nodeSeries() map[string]string {
	return map[string]string{
		`up{job="node_exporter"}`:          sample(`"instance":"b:9100"`, "1") + "," + sample(`"instance":"a:9100"`, "1"),
		`100 - (avg(rate(node_cpu_seconds`: sample(``, "42.5"),
		`count(node_cpu_seconds_total`:     sample(``, "8"),
		`node_memory_MemTotal_bytes`:       sample(``, "1000"),
		`node_memory_MemAvailable_bytes`:   sample(``, "400"),
		`node_memory_MemFree_bytes`:        sample(``, "100"),
		`max(node_filesystem_size_bytes`:   sample(``, "200"),
		`max(node_filesystem_free_bytes`:   sample(``, "50"),
		`max(node_filesystem_avail_bytes`:  sample(``, "50"),
		`sum(node_network_transmit`:        sample(``, "1048576"),
		`sum(node_network_receive`:         sample(``, "0"),
		`node_time_seconds`:                sample(``, "3700"),
		`node_uname_info`:                  sample(`"sysname":"Linux","release":"6.1.0","machine":"aarch64"`, "1"),
	}
}

func TestPrometheusGetNodes(t *testing.T) {
	p := fakePrometheus(t, nodeSeries(), nil)
	nodes, err := p.GetNodes(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 2 || nodes[0] != "a:9100" || nodes[1] != "b:9100" {
		t.Errorf("nodes = %v, want sorted [a:9100 b:9100]", nodes)
	}
	if err := p.Check(context.Background()); err != nil {
		t.Errorf("Check: %v", err)
	}
}

func TestPrometheusFetch(t *testing.T) {
	var ups atomic.Int32
	p := fakePrometheus(t, nodeSeries(), &ups)

	snap, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if snap.CPU == nil || snap.CPU.Count != 8 || snap.CPU.Percent != 42.5 {
		t.Errorf("cpu = %+v", snap.CPU)
	}
	if snap.Memory == nil || snap.Memory.Used != 600 || snap.Memory.Percent != 60 {
		t.Errorf("memory = %+v", snap.Memory)
	}
	if snap.Disk == nil || snap.Disk.Used != 150 || snap.Disk.Percent != 75 {
		t.Errorf("disk = %+v", snap.Disk)
	}
	if snap.Network == nil || snap.Network.BytesSent != 1048576 {
		t.Errorf("network = %+v", snap.Network)
	}
	if snap.Uptime == nil || snap.Uptime.Hours != 1 || snap.Uptime.Minutes != 1 {
		t.Errorf("uptime = %+v", snap.Uptime)
	}
	if snap.Platform == nil || snap.Platform.Machine != "aarch64" {
		t.Errorf("platform = %+v", snap.Platform)
	}
	if snap.Swap != nil {
		t.Errorf("swap = %+v, want nil", snap.Swap)
	}

	// the node list is cached between fetches
	if _, err := p.Fetch(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := ups.Load(); n != 1 {
		t.Errorf("listed nodes %d times, want 1", n)
	}
}

func TestPrometheusNoTargets(t *testing.T) {
	p := fakePrometheus(t, map[string]string{}, nil)
	if err := p.Check(context.Background()); err == nil {
		t.Error("Check passed with no node_exporter targets")
	}
	_, err := p.Fetch(context.Background())
	if _, ok := err.(*SoftDataError); !ok {
		t.Errorf("Fetch err = %v, want *SoftDataError", err)
	}
}

func TestPrometheusDiskQueriesPickOneFilesystem(t *testing.T) {
	var (
		mu      sync.Mutex
		queries []string
	)
	series := nodeSeries()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.FormValue("query")
		mu.Lock()
		queries = append(queries, q)
		mu.Unlock()

		result := ""
		for fragment, s := range series {
			if strings.HasPrefix(q, fragment) {
				result = s
				break
			}
		}
		// a bare selector on "/" would see rootfs and the real mount
		if strings.HasPrefix(q, "node_filesystem_") {
			result = sample(`"fstype":"rootfs"`, "1") + "," + sample(`"fstype":"ext4"`, "200")
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"success","data":{"resultType":"vector","result":[%s]}}`, result)
	}))
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	p, err := NewPrometheusData(u)
	if err != nil {
		t.Fatal(err)
	}
	p.SetInstance("a:9100")
	snap, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if snap.Disk == nil || snap.Disk.Total != 200 {
		t.Errorf("disk = %+v", snap.Disk)
	}

	mu.Lock()
	defer mu.Unlock()
	tests := []string{"node_filesystem_size_bytes", "node_filesystem_free_bytes", "node_filesystem_avail_bytes"}
	for _, metric := range tests {
		var got string
		for _, q := range queries {
			if strings.Contains(q, metric) {
				got = q
			}
		}
		if !strings.HasPrefix(got, "max("+metric) {
			t.Errorf("%s query = %q, want an aggregate", metric, got)
		}
		if !strings.Contains(got, `fstype!="rootfs"`) || !strings.Contains(got, `mountpoint="/"`) {
			t.Errorf("%s query = %q, want root mount without rootfs", metric, got)
		}
	}
}
