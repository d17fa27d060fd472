package sysdash

import (
	"time"
)

const (
	// UPDATE_INTERVAL is the time between dashboard refreshes in milliseconds
	UPDATE_INTERVAL = 2000

	// MAX_DATA_POINTS is the number of CPU samples kept for the line chart
	MAX_DATA_POINTS = 20

	// REQUEST_TIMEOUT bounds a single fetch, in seconds
	REQUEST_TIMEOUT = 5

	// SYSTEM_PATH is the endpoint serving a full metrics snapshot
	SYSTEM_PATH = "/api/system"

	// HEALTH_PATH is the liveness endpoint of the sysdash agent
	HEALTH_PATH = "/api/health"

	// STREAM_PATH is the websocket endpoint pushing snapshots
	STREAM_PATH = "/api/ws"

	// PROCESS_COLUMNS is the number of columns in the process table
	PROCESS_COLUMNS = 4
)

// UpdateDuration returns the refresh interval as a time.Duration
func UpdateDuration() time.Duration {
	return time.Duration(UPDATE_INTERVAL) * time.Millisecond
}

// RequestTimeout returns the per-request timeout as a time.Duration
func RequestTimeout() time.Duration {
	return time.Duration(REQUEST_TIMEOUT) * time.Second
}
