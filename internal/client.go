package sysdash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIData fetches snapshots from a sysdash-compatible /api/system endpoint
type APIData struct {
	client *http.Client
	url    *url.URL
}

func NewAPIData(baseURL *url.URL, timeout time.Duration) *APIData {
	return &APIData{
		client: &http.Client{Timeout: timeout},
		url:    baseURL,
	}
}

func (a *APIData) GetType() string {
	return "api"
}

func (a *APIData) endpoint(path string) string {
	u := *a.url
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	u.RawQuery = ""
	return u.String()
}

// Fetch performs one GET against the system endpoint. Transport failures
// and bodies with no usable section are reported as *FetchError; a payload
// carrying an error field is reported as *SoftDataError and no snapshot is
// returned. A malformed section is dropped and recorded on the snapshot
// (see Snapshot.SectionError) while the other sections still decode.
func (a *APIData) Fetch(ctx context.Context) (*Snapshot, error) {
	endpoint := a.endpoint(SYSTEM_PATH)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{URL: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}

	// A soft failure body is still worth decoding on a 5xx
	snap, decodeErr := decodeSnapshot(body)
	var soft *SoftDataError
	if errors.As(decodeErr, &soft) {
		return nil, soft
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: endpoint, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	if decodeErr != nil {
		return nil, &FetchError{URL: endpoint, Err: decodeErr}
	}

	return snap, nil
}

// Check verifies that the health endpoint answers like a sysdash agent
func (a *APIData) Check(ctx context.Context) error {
	endpoint := a.endpoint(HEALTH_PATH)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %s", resp.Status)
	}

	var health struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	if health.Status != "healthy" {
		return fmt.Errorf("agent status %q", health.Status)
	}
	return nil
}
