package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giygas/compatibility-api/compat"
	"github.com/giygas/compatibility-api/compatparser"
	"github.com/giygas/compatibility-api/config"
	"github.com/giygas/compatibility-api/data"
	"github.com/giygas/compatibility-api/health"
	"github.com/giygas/compatibility-api/logging"
	"github.com/giygas/compatibility-api/scheduler"
	"github.com/giygas/compatibility-api/server"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Configuration error:", err)
		os.Exit(1)
	}

	logging.InitLoggerWithOptions(logging.Options{
		LogDir:         cfg.LogDir,
		Level:          cfg.LogLevel,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
	})
	defer logging.Close()

	logging.Info("Configuration loaded", "env", cfg.Env.String(), "data_dir", cfg.DataDir, "flagged_classes", cfg.FlaggedClasses)

	dataContainer := data.NewDataContainer()
	dataContainer.SetServerStartTime(time.Now())

	parser := compatparser.NewCompatibilityParser(sourcesFromConfig(cfg))
	sched := scheduler.NewScheduler(dataContainer, parser, cfg.ReloadTimes, compat.WithFlaggedClasses(cfg.FlaggedClasses...))
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		logging.Close()
		os.Exit(1)
	}
	defer sched.Stop()

	srv := server.NewServer(cfg, dataContainer, health.NewHealthChecker(dataContainer, cfg.ReloadTimes))

	if cfg.Env == config.EnvDevelopment {
		startProfilingServer()
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logging.Info("Shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Graceful shutdown failed", "error", err)
	}
}

func sourcesFromConfig(cfg *config.Config) compatparser.Sources {
	return compatparser.Sources{
		DataDir:              cfg.DataDir,
		Dataset:              cfg.DatasetFile,
		ClassificationLegend: cfg.ClassificationLegendFile,
		QualifierLegend:      cfg.QualifierLegendFile,
		References:           cfg.ReferencesFile,
		DrugClasses:          cfg.DrugClassesFile,
		DatasetURL:           cfg.DatasetURL,
	}
}

// startProfilingServer serves pprof on localhost in development
func startProfilingServer() {
	go func() {
		logging.Info("Profiling server started at http://localhost:6060/debug/pprof/")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			logging.Warn("Profiling server failed", "error", err)
		}
	}()
}
