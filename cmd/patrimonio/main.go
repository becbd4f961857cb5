// Command patrimonio runs the personal-finance game server: one in-memory
// session exposed over HTTP, snapshotted to SQLite on shutdown.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dlozano/patrimonio/internal/api"
	"github.com/dlozano/patrimonio/internal/career"
	"github.com/dlozano/patrimonio/internal/config"
	"github.com/dlozano/patrimonio/internal/engine"
	"github.com/dlozano/patrimonio/internal/entropy"
	"github.com/dlozano/patrimonio/internal/game"
	"github.com/dlozano/patrimonio/internal/market"
	"github.com/dlozano/patrimonio/internal/persistence"
	"github.com/dlozano/patrimonio/internal/realestate"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// ── Random source ────────────────────────────────────────────────
	var rng entropy.Source
	if cfg.Game.Seed != 0 {
		rng = entropy.NewSeeded(cfg.Game.Seed)
		slog.Info("deterministic session", "seed", cfg.Game.Seed)
	} else {
		rng = entropy.Crypto()
	}

	// ── Database ─────────────────────────────────────────────────────
	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		os.MkdirAll(dir, 0755)
	}
	db, err := persistence.Open(cfg.Database.Path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.Database.Path)

	// ── Load or start a session ──────────────────────────────────────
	var eng *engine.Engine

	if db.HasSnapshot() {
		slog.Info("found saved session, loading...")
		snap, err := db.Load()
		if err != nil {
			slog.Error("failed to load session", "error", err)
			os.Exit(1)
		}

		track, err := career.Restore(snap.CareerPath, snap.MonthsInJob)
		if err != nil {
			slog.Error("failed to restore career", "error", err)
			os.Exit(1)
		}

		mkt := market.New(rng)
		if len(snap.Stocks) > 0 {
			mkt.Stocks = snap.Stocks
		}
		estate := realestate.New(rng)
		estate.Listings = snap.Listings

		eng = engine.New(snap.State, mkt, estate, track)
		eng.Events = snap.Events

		slog.Info("session restored",
			"month", snap.State.Month,
			"year", snap.State.Year,
			"net_worth", fmt.Sprintf("%.2f", snap.State.NetWorth),
		)
	} else {
		slog.Info("no saved session, starting fresh", "career_path", cfg.Game.CareerPath)

		track, err := career.New(cfg.Game.CareerPath)
		if err != nil {
			slog.Error("invalid career path", "error", err)
			os.Exit(1)
		}

		first := track.FirstRank()
		st := game.NewState(first.Salary, first.Title)
		eng = engine.New(st, market.New(rng), realestate.New(rng), track)

		if err := db.Save(eng); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	// ── HTTP API ─────────────────────────────────────────────────────
	if cfg.Server.AdminKey == "" {
		slog.Warn("no admin key set — snapshot endpoint disabled")
	}

	server := &api.Server{
		Eng:      eng,
		DB:       db,
		Port:     cfg.Server.Port,
		AdminKey: cfg.Server.AdminKey,
	}
	server.Start()

	fmt.Printf("Patrimonio — month %d, year %d. API: http://localhost:%d/api/v1/state\n",
		eng.State.Month, eng.State.Year, cfg.Server.Port)
	fmt.Println("Ctrl+C to stop (session is saved on exit)")

	// ── Wait for shutdown ────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)

	if err := db.Save(eng); err != nil {
		slog.Error("final save failed", "error", err)
	}
}
