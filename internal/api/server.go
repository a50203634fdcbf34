// Package api serves the agent-facing HTTP surface. Agents authenticate
// with the bearer token issued at registration; observation endpoints
// are public; admin endpoints require the admin key.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/talgya/emberwood/internal/broadcast"
	"github.com/talgya/emberwood/internal/engine"
	"github.com/talgya/emberwood/internal/persistence"
)

// Server serves the world over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Hub      *broadcast.Hub
	DB       *persistence.DB
	AdminKey string // Bearer token for admin endpoints. Empty = admin disabled.

	startedAt time.Time
	httpSrv   *http.Server
}

// Router assembles the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	registerLimiter := NewRateLimiter(10, time.Minute)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		// Agent surface.
		r.Post("/register", rateLimit(registerLimiter, s.handleRegister))
		r.Get("/me", s.handleMe)
		r.Get("/look/{id}", s.handleLook)
		r.Post("/action/{id}", s.handleAction)
		r.Get("/memories/{id}", s.handleMemories)

		// Public observation.
		r.Get("/world", s.handleWorld)
		r.Get("/status", s.handleStatus)
		r.Get("/activity", s.handleActivity)
		r.Get("/events", s.Hub.ServeHTTP)

		// Admin.
		r.Post("/admin/wipe", s.adminOnly(s.handleWipe))
	})

	return r
}

// Start begins serving on addr. Blocks until the listener fails or
// Shutdown is called.
func (s *Server) Start(addr string) error {
	s.startedAt = time.Now()
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // WebSocket endpoint holds connections open
	}
	slog.Info("http api listening", "addr", addr, "admin_auth", s.AdminKey != "")

	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// corsMiddleware allows browser viewers from configured origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowed := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowed[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken extracts the Authorization bearer credential, if any.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// adminOnly requires the admin bearer key.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no admin key set)", http.StatusForbidden)
			return
		}
		if bearerToken(r) != s.AdminKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// writeError maps engine rejections onto HTTP statuses and serializes
// the rejection body as-is, so agents see reason and error fields.
func writeError(w http.ResponseWriter, err error) {
	var rej *engine.Reject
	if !errors.As(err, &rej) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	status := http.StatusBadRequest
	switch rej.Reason {
	case engine.ReasonInvalidCharacter:
		status = http.StatusUnauthorized
	case engine.ReasonDuplicateName:
		status = http.StatusConflict
	case engine.ReasonNotYourTurn, engine.ReasonConversationCooldown:
		status = http.StatusTooManyRequests
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(rej); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}
