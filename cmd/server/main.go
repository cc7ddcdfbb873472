package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/me/rota/internal/config"
	"github.com/me/rota/internal/controller"
	"github.com/me/rota/internal/logging"
	"github.com/me/rota/internal/report"
	"github.com/me/rota/internal/server"
	"github.com/me/rota/internal/solver"
	"github.com/me/rota/internal/store"
)

func main() {
	cfg := config.DefaultServerConfig()

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json)")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Database path (default ~/.rota/rota.db)")
	flag.StringVar(&cfg.SolverURL, "solver-url", cfg.SolverURL, "Remote solver base URL (empty for built-in simulator)")
	flag.DurationVar(&cfg.SimPhaseDelay, "sim-phase-delay", cfg.SimPhaseDelay, "Per-phase delay of the simulated solver")
	debug := flag.Bool("debug", false, "Shorthand for --log-level=debug")

	flag.Parse()

	if *debug {
		cfg.LogLevel = "debug"
	}

	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	// Resolve database path.
	dbPath := cfg.DBPath
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot determine home directory: %v\n", err)
			os.Exit(1)
		}
		dir := filepath.Join(home, ".rota")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "cannot create %s: %v\n", dir, err)
			os.Exit(1)
		}
		dbPath = filepath.Join(dir, "rota.db")
	}

	// Open store and run migrations.
	st, err := store.NewSQLiteStore(dbPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := st.Migrate(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "migrate database: %v\n", err)
		os.Exit(1)
	}
	logger.Info("database ready", "path", dbPath)

	// Pick the solver transport.
	var transport solver.Transport
	if cfg.SolverURL != "" {
		transport = solver.NewHTTPTransport(solver.DefaultHTTPConfig(cfg.SolverURL), logger)
		logger.Info("using remote solver", "url", cfg.SolverURL)
	} else {
		transport = solver.NewSimTransport(cfg.SimPhaseDelay, logger)
		logger.Info("using simulated solver", "phase_delay", cfg.SimPhaseDelay.String())
	}

	// Graceful shutdown; cancelling this context cancels any in-flight job.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	presenter := report.NewPresenter(os.Stdout, logger)
	ctrl := controller.New(transport, logger, controller.WithSink(presenter))

	srv := server.New(cfg, st, ctrl, logger, server.WithJobContext(ctx))

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("server starting", "addr", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
