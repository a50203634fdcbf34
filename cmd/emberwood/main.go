// Command emberwood runs the Emberwood persistent world server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/talgya/emberwood/internal/api"
	"github.com/talgya/emberwood/internal/broadcast"
	"github.com/talgya/emberwood/internal/config"
	"github.com/talgya/emberwood/internal/engine"
	"github.com/talgya/emberwood/internal/entropy"
	"github.com/talgya/emberwood/internal/persistence"
	"github.com/talgya/emberwood/internal/world"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("Emberwood — persistent agent world")

	// ── Database ──────────────────────────────────────────────────────
	if dir := filepath.Dir(cfg.World.DBPath); dir != "." {
		os.MkdirAll(dir, 0755)
	}
	db, err := persistence.Open(cfg.World.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.World.DBPath)

	// ── World map (always regenerated — deterministic from seed) ──────
	genCfg := world.DefaultGenConfig()
	if cfg.World.Seed != 0 {
		genCfg.Seed = cfg.World.Seed
	}
	worldMap := world.Generate(genCfg)

	w := &world.World{
		DayLength:   cfg.World.DayLength,
		NightLength: cfg.World.NightLength,
	}

	feats := engine.Features{
		Zones:     cfg.Features.Zones,
		Energy:    cfg.Features.Energy,
		Fatigue:   cfg.Features.Fatigue,
		ExamineXP: cfg.Features.ExamineXP,
	}
	rng := entropy.New(cfg.World.Seed)
	sim := engine.NewSimulation(w, worldMap, feats, rng)

	// ── Load saved state ──────────────────────────────────────────────
	if db.HasWorldState() {
		st, err := db.LoadState()
		if err != nil {
			slog.Error("failed to load saved world", "error", err)
			os.Exit(1)
		}
		w.Tick = st.World.Tick
		w.IsNight = st.World.IsNight
		for _, c := range st.Characters {
			sim.AddCharacter(c)
		}
		sim.RestoreRelationships(st.Relationships)
		sim.RestoreSeq(st.MaxSeq)
		slog.Info("world state restored",
			"tick", w.Tick,
			"characters", len(st.Characters),
			"relationships", len(st.Relationships),
		)
	} else {
		slog.Info("no saved state, starting fresh world", "seed", genCfg.Seed)
	}

	// ── Broadcast hub ─────────────────────────────────────────────────
	hub := broadcast.NewHub()
	go hub.Run()
	sim.AttachHub(hub)

	// ── World clock ───────────────────────────────────────────────────
	clock := engine.NewClock(sim, cfg.World.TickInterval.Std())
	go clock.Run()

	// ── Periodic save ─────────────────────────────────────────────────
	saveStop := make(chan struct{})
	var lastSeq int64 = db.LastSavedSeq()
	go func() {
		ticker := time.NewTicker(cfg.World.SaveInterval.Std())
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				st := sim.ExportState(lastSeq)
				if err := db.SaveState(st); err != nil {
					slog.Error("periodic save failed", "error", err)
					continue
				}
				lastSeq = st.MaxSeq
				sim.MarkPersisted(lastSeq)
			case <-saveStop:
				return
			}
		}
	}()

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.Server.AdminKey == "" {
		slog.Warn("no admin key set — admin endpoints disabled")
	}
	srv := &api.Server{
		Sim:      sim,
		Hub:      hub,
		DB:       db,
		AdminKey: cfg.Server.AdminKey,
	}
	go func() {
		if err := srv.Start(cfg.Addr()); err != nil {
			slog.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	fmt.Printf("Emberwood is awake at tick %d. API: http://%s/api/status\n", sim.CurrentTick(), cfg.Addr())

	// ── Shutdown ──────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)

	clock.Stop()
	close(saveStop)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("http shutdown failed", "error", err)
	}

	st := sim.ExportState(lastSeq)
	if err := db.SaveState(st); err != nil {
		slog.Error("final save failed", "error", err)
	} else {
		slog.Info("world state saved", "tick", st.World.Tick)
	}
}
