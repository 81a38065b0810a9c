package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"airport_sim/internal/config"
	"airport_sim/internal/daemon"
	"airport_sim/internal/scenario"
)

func initLogger(cfg *config.Config) {
	var logLevel slog.Level
	switch cfg.Log.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

func main() {
	configPath := flag.String("config", "", "Path to config file (YAML)")
	scenarioPath := flag.String("scenario", "", "Replay a scenario file (TOML) and exit")
	flag.Parse()

	// A missing .env file is fine; anything else is worth reporting
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	if *configPath != "" {
		os.Setenv("AIRPORT_SIM_CONFIG_PATH", *configPath)
	}

	cfg, err := config.Load()
	if err != nil {
		// Logger isn't initialized yet
		basicLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		basicLogger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	initLogger(cfg)

	if *scenarioPath != "" {
		os.Exit(runScenario(*scenarioPath))
	}

	d, err := daemon.New(cfg)
	if err != nil {
		slog.Error("Failed to initialize daemon", "error", err)
		os.Exit(1)
	}

	if err := d.Start(); err != nil {
		slog.Error("Failed to start daemon", "error", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	slog.Info("Received interrupt signal, shutting down...")

	if err := d.Stop(); err != nil {
		slog.Error("Error stopping daemon", "error", err)
		os.Exit(1)
	}
}

func runScenario(path string) int {
	sc, err := scenario.Load(path)
	if err != nil {
		slog.Error("Failed to load scenario", "error", err)
		return 1
	}

	report, err := scenario.Run(sc)
	if report != nil {
		for _, res := range report.Results {
			level := slog.LevelInfo
			attrs := []any{
				"step", res.Step,
				"action", res.Action,
				"plane", res.Plane,
				"expected", res.Expected,
				"got", res.Got,
			}
			if !res.Passed() {
				level = slog.LevelError
				if res.Err != nil {
					attrs = append(attrs, "error", res.Err)
				}
			}
			slog.Log(context.Background(), level, "Scenario step", attrs...)
		}
		slog.Info("Scenario finished",
			"scenario", report.Name,
			"capacity", report.Capacity,
			"steps", len(report.Results),
			"failed", len(report.Failed()),
			"on_apron", report.OnApron,
		)
	}
	if err != nil {
		slog.Error("Scenario failed", "error", err)
		return 1
	}
	return 0
}
