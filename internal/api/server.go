// Package api exposes the processor's read interface over HTTP. The
// dashboard (an external collaborator) polls these endpoints; nothing here
// can block or slow the capture loop beyond the store's snapshot copy.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/alert"
	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/log"
	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/models"
	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/processor"
)

const defaultTopSources = 10

// Processor is the read interface the server exposes. *processor.Session
// satisfies it.
type Processor interface {
	ID() string
	StartTime() time.Time
	Uptime() time.Duration
	Count() uint64
	Snapshot() []*models.PacketRecord
	Engine() *alert.Engine
}

// Server serves the read-only API and the Prometheus metrics endpoint.
type Server struct {
	addr    string
	session Processor
	server  *http.Server
}

// NewServer creates an API server bound to the given session.
func NewServer(addr string, session Processor) *Server {
	return &Server{addr: addr, session: session}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/packets", s.handlePackets)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/alerts", s.handleAlerts)
	mux.HandleFunc("POST /api/alerts", s.handleRegisterAlert)
	mux.HandleFunc("GET /api/resolve", s.handleResolve)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// Start begins serving in the background.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.GetLogger().Infof("API server listening on %s", s.addr)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.GetLogger().WithError(err).Error("API server error")
		}
	}()
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("API server shutdown failed: %w", err)
	}
	return nil
}

// handlePackets returns the current retention window, optionally limited to
// the most recent ?limit=N records.
func (s *Server) handlePackets(w http.ResponseWriter, r *http.Request) {
	snap := s.session.Snapshot()
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		if limit < len(snap) {
			snap = snap[len(snap)-limit:]
		}
	}
	writeJSON(w, snap)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap := s.session.Snapshot()
	stats := processor.Summarize(snap, defaultTopSources)
	writeJSON(w, map[string]interface{}{
		"session_id":     s.session.ID(),
		"start_time":     s.session.StartTime(),
		"uptime_seconds": s.session.Uptime().Seconds(),
		"total_packets":  s.session.Count(),
		"retained":       len(snap),
		"protocols":      stats.Protocols,
		"top_sources":    stats.TopSources,
	})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	events := s.session.Engine().RecentAlerts()
	if events == nil {
		events = []alert.Event{}
	}
	writeJSON(w, events)
}

// handleRegisterAlert registers a declarative rule posted as JSON.
func (s *Server) handleRegisterAlert(w http.ResponseWriter, r *http.Request) {
	var raw map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	spec, err := alert.ParseSpec(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.session.Engine().RegisterSpec(spec); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "registered", "name": spec.Name})
}

// handleResolve resolves a hostname to its addresses, mirroring the
// dashboard's hostname lookup box.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	host := r.URL.Query().Get("host")
	if host == "" {
		writeError(w, http.StatusBadRequest, "host parameter is required")
		return
	}
	addrs, err := net.DefaultResolver.LookupHost(r.Context(), host)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("could not resolve %s", host))
		return
	}
	writeJSON(w, map[string]interface{}{"host": host, "addresses": addrs})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.GetLogger().WithError(err).Error("failed to encode API response")
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
