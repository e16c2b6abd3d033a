// Package api serves the engine over HTTP. GET endpoints are public
// read-only observation; POST endpoints mutate entity state and require a
// bearer token when one is configured.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/talgya/spazz-core/internal/catalog"
	"github.com/talgya/spazz-core/internal/match"
	"github.com/talgya/spazz-core/internal/notify"
	"github.com/talgya/spazz-core/internal/sim"
)

// Server exposes the proximity engine.
type Server struct {
	Svc      *match.Service
	Sim      *sim.Simulator
	Hub      *notify.Hub
	Catalog  catalog.Catalog
	Port     int
	AdminKey string // bearer token for POST endpoints; empty disables them

	httpServer *http.Server
	started    time.Time
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	s.started = time.Now().UTC()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Port),
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("HTTP API starting", "addr", s.httpServer.Addr, "admin_auth", s.AdminKey != "")
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func (s *Server) routes() *mux.Router {
	limiter := NewRateLimiter(60, time.Minute)
	r := mux.NewRouter()

	// Public observation.
	r.HandleFunc("/api/v1/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/entities", s.handleEntities).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/entity/{id}", s.handleEntity).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/pair/{a}/{b}", s.handlePair).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/coach", s.handleCoach).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/store", s.handleStore).Methods(http.MethodGet)

	// Mutations: admin-gated and rate-limited.
	post := func(path string, h http.HandlerFunc) {
		r.HandleFunc(path, limiter.Middleware(s.adminOnly(h))).Methods(http.MethodPost)
	}
	post("/api/v1/entity", s.handleCreatePlayer)
	post("/api/v1/entity/{id}/move", s.handleMove)
	post("/api/v1/entity/{id}/duty", s.handleDuty)
	post("/api/v1/entity/{id}/like", s.handleLike)
	post("/api/v1/entity/{id}/block", s.handleBlock)
	post("/api/v1/entity/{id}/checkin", s.handleCheckin)
	post("/api/v1/entity/{id}/purchase", s.handlePurchase)
	post("/api/v1/entity/{id}/credits", s.handleGrantCredits)

	// Live pulse stream.
	r.HandleFunc("/ws/pulse", s.Hub.HandleWS)

	return r
}

// Stop drains in-flight requests and shuts the listener down.
func (s *Server) Stop() {
	if s.httpServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Warn("HTTP server shutdown", "error", err)
	}
}

// adminOnly requires a bearer token on mutating endpoints. With no key
// configured the endpoints are disabled outright.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "write endpoints disabled (no SPAZZ_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.AdminKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
