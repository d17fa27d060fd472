package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	sysdash "github.com/jondoveston/sysdash/internal"
)

// Server answers the endpoints the dashboard polls
type Server struct {
	collector Collector
	metrics   *Metrics
	interval  time.Duration
	upgrader  websocket.Upgrader
}

func NewServer(collector Collector, metrics *Metrics, interval time.Duration) *Server {
	if interval <= 0 {
		interval = sysdash.UpdateDuration()
	}
	return &Server{
		collector: collector,
		metrics:   metrics,
		interval:  interval,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc(sysdash.SYSTEM_PATH, s.handleSystem).Methods(http.MethodGet)
	r.HandleFunc(sysdash.HEALTH_PATH, s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc(sysdash.STREAM_PATH, s.handleStream)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	return r
}

// collect never fails outright: a collection error becomes a payload with
// only the error field set, which clients treat as a soft failure
func (s *Server) collect(ctx context.Context) *sysdash.Snapshot {
	snap, err := s.collector.Collect(ctx)
	if err != nil {
		log.Printf("collect: %v", err)
		s.metrics.Failed()
		return &sysdash.Snapshot{Error: err.Error()}
	}
	s.metrics.Observe(snap)
	return snap
}

func (s *Server) handleSystem(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.collect(r.Context()))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleStream pushes a snapshot every interval until the client goes away
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade: %v", err)
		return
	}
	defer conn.Close()

	// expect no messages from the client; reading notices the close
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func() error {
		return conn.WriteJSON(s.collect(r.Context()))
	}

	if err := send(); err != nil {
		log.Printf("ws write: %v", err)
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := send(); err != nil {
				log.Printf("ws write: %v", err)
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully
func Serve(ctx context.Context, addr string, s *Server) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("starting sysdash agent at %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
