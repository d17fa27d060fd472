package sysdash

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"
)

// Data is a backend able to produce metric snapshots
type Data interface {
	Fetch(ctx context.Context) (*Snapshot, error)
	Check(ctx context.Context) error
	GetType() string
}

// DetectedSource holds a data source and its display name
type DetectedSource struct {
	Data Data
	Name string
}

// NewSource builds the backend named by kind for the given URL. "auto"
// tries URL variants with TryConnectWithFallbacks and takes the first hit.
// A non-positive timeout means REQUEST_TIMEOUT.
func NewSource(ctx context.Context, kind string, base *url.URL, timeout time.Duration) (DetectedSource, error) {
	if timeout <= 0 {
		timeout = RequestTimeout()
	}
	switch kind {
	case "api":
		return DetectedSource{Data: NewAPIData(base, timeout), Name: base.Host}, nil
	case "prometheus":
		pd, err := NewPrometheusData(base)
		if err != nil {
			return DetectedSource{}, err
		}
		return DetectedSource{Data: pd, Name: base.Host}, nil
	case "node_exporter":
		return DetectedSource{Data: NewNodeExporterData(base, timeout), Name: base.Host}, nil
	case "", "auto":
		detected := TryConnectWithFallbacks(ctx, base, timeout)
		if len(detected) == 0 {
			return DetectedSource{}, fmt.Errorf("no metrics backend found at %s", base)
		}
		return detected[0], nil
	default:
		return DetectedSource{}, fmt.Errorf("unknown source %q", kind)
	}
}

// TryConnectWithFallbacks tries multiple URL variants to connect to data sources.
// Returns all successful connections, sysdash API first, then Prometheus,
// then node_exporter.
func TryConnectWithFallbacks(ctx context.Context, baseURL *url.URL, timeout time.Duration) []DetectedSource {
	var detected []DetectedSource

	// Generate URL variants
	variants := generateURLVariants(baseURL)

	builders := []struct {
		kind  string
		build func(*url.URL) (Data, error)
	}{
		{"sysdash", func(u *url.URL) (Data, error) { return NewAPIData(u, timeout), nil }},
		{"Prometheus", func(u *url.URL) (Data, error) { return NewPrometheusData(u) }},
		{"node_exporter", func(u *url.URL) (Data, error) { return NewNodeExporterData(u, timeout), nil }},
	}

	for _, b := range builders {
		for _, variant := range variants {
			log.Printf("Trying %s backend: %s", b.kind, variant)
			d, err := b.build(variant)
			if err != nil {
				log.Printf("Failed to create %s client: %v", b.kind, err)
				continue
			}
			if err := d.Check(ctx); err != nil {
				log.Printf("%s check failed: %v", b.kind, err)
				continue
			}
			log.Printf("✓ Found %s backend at %s", b.kind, variant)
			detected = append(detected, DetectedSource{
				Data: d,
				Name: variant.Host,
			})
			break
		}
	}

	return detected
}

// generateURLVariants creates different URL combinations to try
func generateURLVariants(base *url.URL) []*url.URL {
	var variants []*url.URL
	hostname := base.Hostname()
	port := base.Port()
	path := base.Path

	// Schemes to try: the given one first
	schemes := []string{"http", "https"}
	if base.Scheme == "https" {
		schemes = []string{"https", "http"}
	}

	// Ports to try
	var ports []string
	if port != "" {
		// Use specified port first, then try common ports
		ports = []string{port, "5000", "9090", "9100"}
	} else {
		// 5000 (sysdash agent), 9090 (Prometheus), 9100 (node_exporter)
		ports = []string{"5000", "9090", "9100"}
	}

	// Remove duplicates
	seen := make(map[string]bool)
	uniquePorts := []string{}
	for _, p := range ports {
		if !seen[p] {
			seen[p] = true
			uniquePorts = append(uniquePorts, p)
		}
	}
	ports = uniquePorts

	// Paths to try
	paths := []string{path}
	if path == "" || path == "/" {
		// Try with and without /metrics
		paths = []string{"", "/metrics"}
	}

	// Generate all combinations
	for _, scheme := range schemes {
		for _, p := range ports {
			for _, urlPath := range paths {
				u := &url.URL{
					Scheme: scheme,
					Host:   hostname + ":" + p,
					Path:   urlPath,
				}
				variants = append(variants, u)
			}
		}
	}

	return variants
}
