// Command spazzd runs the Spazz proximity-gated notification engine.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/talgya/spazz-core/internal/api"
	"github.com/talgya/spazz-core/internal/catalog"
	"github.com/talgya/spazz-core/internal/config"
	"github.com/talgya/spazz-core/internal/match"
	"github.com/talgya/spazz-core/internal/notify"
	"github.com/talgya/spazz-core/internal/persistence"
	"github.com/talgya/spazz-core/internal/sim"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Spazz — Proximity-Gated Notification Engine")

	dbPath := envOr("SPAZZ_DB", "data/spazz.db")
	apiPort := envInt("SPAZZ_PORT", 8080)

	// ── Tuning ────────────────────────────────────────────────────────
	tun := config.Default()
	if path := os.Getenv("SPAZZ_CONFIG"); path != "" {
		var err error
		tun, err = config.Load(path)
		if err != nil {
			slog.Error("failed to load tuning", "path", path, "error", err)
			os.Exit(1)
		}
		slog.Info("tuning loaded", "path", path)
	}
	slog.Info("tuning",
		"pulse_range_km", tun.PulseRangeKm,
		"vicinity_km", tun.VicinityKm,
		"nudge_cooldown", tun.NudgeCooldown(),
		"tick_interval", tun.TickInterval(),
		"population_floor", tun.PopulationFloor,
		"seed", tun.Seed,
	)

	cat := catalog.Default()
	if path := os.Getenv("SPAZZ_CATALOG"); path != "" {
		var err error
		cat, err = catalog.Load(path)
		if err != nil {
			slog.Error("failed to load catalog", "path", path, "error", err)
			os.Exit(1)
		}
	}

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll("data", 0755)
	db, err := persistence.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", dbPath)

	// ── Roster ────────────────────────────────────────────────────────
	roster := match.NewRoster()
	if db.HasSnapshot() {
		entities, err := db.LoadEntities()
		if err != nil {
			slog.Error("failed to load entities", "error", err)
			os.Exit(1)
		}
		roster.Restore(entities)
		slog.Info("roster restored", "entities", len(entities))
	} else {
		slog.Info("no saved roster found, starting empty")
	}

	// ── Notification stack ────────────────────────────────────────────
	hub := notify.NewHub()
	deliverers := notify.Fanout{hub}
	var kafkaDeliverer *notify.KafkaDeliverer
	if brokers := os.Getenv("SPAZZ_KAFKA_BROKERS"); brokers != "" {
		kafkaDeliverer = notify.NewKafkaDeliverer(strings.Split(brokers, ","), notify.DefaultTopic)
		deliverers = append(deliverers, kafkaDeliverer)
		slog.Info("kafka deliverer enabled", "brokers", brokers, "topic", notify.DefaultTopic)
	}
	deliverers = append(deliverers, notify.LogDeliverer{})

	dispatcher := notify.NewDispatcher(deliverers, tun.DeliveryTimeout(), tun.NudgeCooldown())
	svc := match.NewService(roster, tun, dispatcher)

	// ── Presence simulator ────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	simulator := sim.NewSimulator(roster, tun)
	go simulator.Run(ctx)

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := os.Getenv("SPAZZ_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("SPAZZ_ADMIN_KEY not set — write endpoints will be disabled")
	}

	apiServer := &api.Server{
		Svc:      svc,
		Sim:      simulator,
		Hub:      hub,
		Catalog:  cat,
		Port:     apiPort,
		AdminKey: adminKey,
	}
	apiServer.Start()

	fmt.Printf("\nSpazz is live: %d entities on the roster (floor %d).\n",
		roster.Len(), tun.PopulationFloor)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", apiPort)
	fmt.Println("Running... (Ctrl+C to stop)")

	// ── Shutdown ──────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)

	cancel()
	apiServer.Stop()
	if kafkaDeliverer != nil {
		if err := kafkaDeliverer.Close(); err != nil {
			slog.Warn("kafka close failed", "error", err)
		}
	}

	slog.Info("final save...")
	if err := db.SaveEntities(roster.Snapshot()); err != nil {
		slog.Error("final save failed", "error", err)
	}
	if err := db.SetMeta("last_tick", strconv.FormatUint(simulator.Tick(), 10)); err != nil {
		slog.Warn("failed to record last tick", "error", err)
	}

	fmt.Println("Engine stopped. Roster saved.")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("bad integer env value, using fallback", "key", key, "value", v)
		return fallback
	}
	return n
}
