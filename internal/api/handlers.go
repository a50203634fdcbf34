package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"github.com/talgya/emberwood/internal/engine"
)

// registerRequest is the body for POST /api/register.
type registerRequest struct {
	Name         string   `json:"name"`
	Emoji        string   `json:"emoji"`
	Personality  string   `json:"personality"`
	OriginStory  string   `json:"origin_story"`
	Traits       []string `json:"traits"`
	TurnInterval int64    `json:"turn_interval"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	c, err := s.Sim.Register(engine.Registration{
		Name:         req.Name,
		Emoji:        req.Emoji,
		Personality:  req.Personality,
		OriginStory:  req.OriginStory,
		Traits:       req.Traits,
		TurnInterval: req.TurnInterval,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	// The token is returned exactly once, here.
	writeJSON(w, map[string]any{
		"character": c,
		"token":     c.Token,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	c, err := s.Sim.CharacterByToken(bearerToken(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, c)
}

func (s *Server) handleLook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Sim.VerifyToken(id, bearerToken(r)); err != nil {
		writeError(w, err)
		return
	}

	view, err := s.Sim.Look(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, view)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Sim.VerifyToken(id, bearerToken(r)); err != nil {
		writeError(w, err)
		return
	}

	var act engine.Action
	if err := json.NewDecoder(r.Body).Decode(&act); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	res, err := s.Sim.Submit(id, act)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleMemories(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Sim.VerifyToken(id, bearerToken(r)); err != nil {
		writeError(w, err)
		return
	}

	limit := queryLimit(r, 50, 500)

	// Prefer the durable log; the in-memory window is a fallback when no
	// store is attached.
	if s.DB != nil {
		rows, err := s.DB.MemoriesFor(id, limit)
		if err == nil {
			writeJSON(w, rows)
			return
		}
		slog.Error("memories query failed", "error", err)
	}
	writeJSON(w, s.Sim.MemoriesOf(id, limit))
}

func (s *Server) handleWorld(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Snapshot())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.Sim.Snapshot()

	phase := "day"
	if snap.World.IsNight {
		phase = "night"
	}
	writeJSON(w, map[string]any{
		"name":       "Emberwood",
		"tick":       snap.World.Tick,
		"phase":      phase,
		"characters": len(snap.Characters),
		"zones":      len(snap.Zones),
		"viewers":    s.Hub.ViewerCount(),
		"started":    humanize.Time(s.startedAt),
	})
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 50, 500)

	if s.DB != nil {
		rows, err := s.DB.RecentActivity(limit)
		if err == nil {
			writeJSON(w, rows)
			return
		}
		slog.Error("activity query failed", "error", err)
	}

	snap := s.Sim.Snapshot()
	writeJSON(w, snap.Activity)
}

func (s *Server) handleWipe(w http.ResponseWriter, r *http.Request) {
	s.Sim.Wipe()
	if s.DB != nil {
		if err := s.DB.Wipe(); err != nil {
			slog.Error("database wipe failed", "error", err)
			http.Error(w, "database wipe failed", http.StatusInternalServerError)
			return
		}
	}
	writeJSON(w, map[string]any{"wiped": true})
}

func queryLimit(r *http.Request, def, max int) int {
	limit := def
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= max {
			limit = n
		}
	}
	return limit
}
