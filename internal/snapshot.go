package sysdash

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// Snapshot is one complete set of system metrics returned by a single
// call to the system endpoint. Sub-objects are pointers so that a field
// missing from the payload is distinguishable from a zero reading.
type Snapshot struct {
	Platform  *PlatformInfo `json:"platform,omitempty" yaml:"platform,omitempty"`
	CPU       *CPUInfo      `json:"cpu,omitempty" yaml:"cpu,omitempty"`
	Uptime    *UptimeInfo   `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	Memory    *MemoryInfo   `json:"memory,omitempty" yaml:"memory,omitempty"`
	Swap      *SwapInfo     `json:"swap,omitempty" yaml:"swap,omitempty"`
	Disk      *DiskInfo     `json:"disk,omitempty" yaml:"disk,omitempty"`
	Network   *NetworkInfo  `json:"network,omitempty" yaml:"network,omitempty"`
	Processes []Process     `json:"processes" yaml:"processes"`

	// Error is set by the backend when collection failed
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// Timestamp is optional; older backends do not send it
	Timestamp *time.Time `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`

	// sections that were present in the payload but failed to decode
	sectionErrs map[string]error
}

// SectionError reports why a payload section could not be decoded, or nil
func (s *Snapshot) SectionError(section string) error {
	return s.sectionErrs[section]
}

type PlatformInfo struct {
	System  string `json:"system" yaml:"system"`
	Release string `json:"release" yaml:"release"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Machine string `json:"machine,omitempty" yaml:"machine,omitempty"`
}

type CPUInfo struct {
	Count     int           `json:"count" yaml:"count"`
	Percent   float64       `json:"percent" yaml:"percent"`
	Frequency *CPUFrequency `json:"frequency,omitempty" yaml:"frequency,omitempty"`
}

// CPUFrequency is in MHz
type CPUFrequency struct {
	Current float64 `json:"current" yaml:"current"`
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
}

type UptimeInfo struct {
	Days    int `json:"days" yaml:"days"`
	Hours   int `json:"hours" yaml:"hours"`
	Minutes int `json:"minutes" yaml:"minutes"`
	Seconds int `json:"seconds,omitempty" yaml:"seconds,omitempty"`
}

// MemoryInfo sizes are in bytes
type MemoryInfo struct {
	Total     ByteCount `json:"total" yaml:"total"`
	Available ByteCount `json:"available,omitempty" yaml:"available,omitempty"`
	Used      ByteCount `json:"used" yaml:"used"`
	Free      ByteCount `json:"free" yaml:"free"`
	Percent   float64   `json:"percent" yaml:"percent"`
}

type SwapInfo struct {
	Total   ByteCount `json:"total" yaml:"total"`
	Used    ByteCount `json:"used" yaml:"used"`
	Free    ByteCount `json:"free" yaml:"free"`
	Percent float64   `json:"percent" yaml:"percent"`
}

type DiskInfo struct {
	Total   ByteCount `json:"total" yaml:"total"`
	Used    ByteCount `json:"used" yaml:"used"`
	Free    ByteCount `json:"free" yaml:"free"`
	Percent float64   `json:"percent" yaml:"percent"`
}

// NetworkInfo counters are cumulative since boot
type NetworkInfo struct {
	BytesSent   ByteCount `json:"bytes_sent" yaml:"bytes_sent"`
	BytesRecv   ByteCount `json:"bytes_recv" yaml:"bytes_recv"`
	PacketsSent ByteCount `json:"packets_sent,omitempty" yaml:"packets_sent,omitempty"`
	PacketsRecv ByteCount `json:"packets_recv,omitempty" yaml:"packets_recv,omitempty"`
}

type Process struct {
	PID    int32   `json:"pid" yaml:"pid"`
	Name   string  `json:"name" yaml:"name"`
	CPU    float64 `json:"cpu" yaml:"cpu"`
	Memory float64 `json:"memory" yaml:"memory"`
}

// ByteCount is a byte or packet counter. It decodes from any JSON number,
// so backends writing 1.5e9 instead of 1500000000 are accepted.
type ByteCount uint64

func (b *ByteCount) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	switch {
	case math.IsNaN(f) || f < 0:
		return fmt.Errorf("invalid byte count %s", data)
	case f >= math.MaxUint64:
		*b = math.MaxUint64
	default:
		*b = ByteCount(f)
	}
	return nil
}

var errNoSections = errors.New("payload has no metric sections")

// decodeSnapshot decodes a system payload section by section. A payload
// error field wins over everything else and yields a *SoftDataError. A
// section that fails to decode is left nil and its error is kept on the
// snapshot, so the rest of the payload still renders.
func decodeSnapshot(body []byte) (*Snapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if msg, ok := payloadError(raw["error"]); ok {
		return nil, &SoftDataError{Message: msg}
	}

	snap := &Snapshot{}
	sections := []struct {
		key    string
		decode func(json.RawMessage) error
	}{
		{"platform", func(d json.RawMessage) error { return decodeSection(d, &snap.Platform) }},
		{"cpu", func(d json.RawMessage) error { return decodeSection(d, &snap.CPU) }},
		{"uptime", func(d json.RawMessage) error { return decodeSection(d, &snap.Uptime) }},
		{"memory", func(d json.RawMessage) error { return decodeSection(d, &snap.Memory) }},
		{"swap", func(d json.RawMessage) error { return decodeSection(d, &snap.Swap) }},
		{"disk", func(d json.RawMessage) error { return decodeSection(d, &snap.Disk) }},
		{"network", func(d json.RawMessage) error { return decodeSection(d, &snap.Network) }},
		{"processes", func(d json.RawMessage) error { return decodeSection(d, &snap.Processes) }},
		{"timestamp", func(d json.RawMessage) error { return decodeSection(d, &snap.Timestamp) }},
	}

	present := 0
	for _, sec := range sections {
		data, ok := raw[sec.key]
		if !ok || isNull(data) {
			continue
		}
		if sec.key != "timestamp" {
			present++
		}
		if err := sec.decode(data); err != nil {
			if snap.sectionErrs == nil {
				snap.sectionErrs = make(map[string]error)
			}
			snap.sectionErrs[sec.key] = err
		}
	}
	if present == 0 {
		return nil, errNoSections
	}
	return snap, nil
}

// decodeSection only assigns dst when the whole section decoded
func decodeSection[T any](data json.RawMessage, dst *T) error {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*dst = v
	return nil
}

// payloadError reports whether the error field is set. Non-string values
// are passed through as their JSON text.
func payloadError(data json.RawMessage) (string, bool) {
	if len(data) == 0 || isNull(data) {
		return "", false
	}
	var msg string
	if err := json.Unmarshal(data, &msg); err == nil {
		return msg, msg != ""
	}
	text := string(bytes.TrimSpace(data))
	return text, text != "false"
}

func isNull(data json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

// UptimeFromDuration splits an uptime into the days/hours/minutes/seconds
// shape used on the wire.
func UptimeFromDuration(d time.Duration) *UptimeInfo {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	return &UptimeInfo{
		Days:    int(secs / 86400),
		Hours:   int(secs % 86400 / 3600),
		Minutes: int(secs % 3600 / 60),
		Seconds: int(secs % 60),
	}
}

// FetchError is returned when a snapshot could not be retrieved or decoded.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// SoftDataError is returned when the backend delivered a payload that
// itself reports a collection error.
type SoftDataError struct {
	Message string
}

func (e *SoftDataError) Error() string {
	return "backend reported error: " + e.Message
}
