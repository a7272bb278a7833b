// Package server exposes the live aggregate over HTTP: JSON endpoints for
// stats, recent records, and the flow table, plus a websocket that pushes
// snapshots on an interval.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"gosniff/internal/config"
	"gosniff/internal/model"
	"gosniff/internal/telemetry"
)

const defaultRecordLimit = 100

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The server binds to localhost by default; origin checks add nothing.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server serves the REST and websocket API.
type Server struct {
	agg    *telemetry.Aggregator
	recent *telemetry.RecentBuffer
	srv    *http.Server
	push   time.Duration
}

// New wires the router. push is the websocket snapshot interval; a
// non-positive value falls back to one second.
func New(cfg config.APIConfig, agg *telemetry.Aggregator, recent *telemetry.RecentBuffer, push time.Duration) *Server {
	if push <= 0 {
		push = time.Second
	}
	s := &Server{agg: agg, recent: recent, push: push}

	r := mux.NewRouter()
	r.HandleFunc("/api/v1/stats", s.statsHandler).Methods("GET")
	r.HandleFunc("/api/v1/records", s.recordsHandler).Methods("GET")
	r.HandleFunc("/api/v1/connections", s.connectionsHandler).Methods("GET")
	r.HandleFunc("/api/v1/live", s.liveHandler)
	r.HandleFunc("/healthz", s.healthHandler).Methods("GET")

	s.srv = &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}
	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("API server starting on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("API server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.agg.Snapshot()
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) recordsHandler(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecordLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, fmt.Sprintf("invalid limit %q", raw), http.StatusBadRequest)
			return
		}
		limit = n
	}

	recs := s.recent.Items()
	if len(recs) > limit {
		recs = recs[len(recs)-limit:]
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) connectionsHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.agg.Snapshot()

	flows := make([]model.ConnectionFlow, 0, len(snap.Connections))
	for _, f := range snap.Connections {
		flows = append(flows, f)
	}
	sort.Slice(flows, func(i, j int) bool {
		if flows[i].PacketCount != flows[j].PacketCount {
			return flows[i].PacketCount > flows[j].PacketCount
		}
		return flows[i].FirstSeen.Before(flows[j].FirstSeen)
	})
	writeJSON(w, http.StatusOK, flows)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// liveHandler upgrades to a websocket and pushes a snapshot every push
// interval until the client goes away.
func (s *Server) liveHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Warning: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Read pump: the client never sends data, but reading is what surfaces
	// close frames.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.push)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			snap := s.agg.Snapshot()
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
		}
	}
}
