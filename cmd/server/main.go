package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bbiangul/kgqa"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (YAML or JSON)")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	flag.Parse()

	cfg := kgqa.DefaultConfig()
	if *configPath != "" {
		loaded, err := kgqa.LoadConfig(*configPath)
		if err != nil {
			slog.Error("loading config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	if *addr != "" {
		cfg.Addr = *addr
	}

	// Structured JSON logging, optionally mirrored to a rotating file.
	logger, logCloser, err := kgqa.NewLogger(cfg, os.Stdout)
	if err != nil {
		slog.Error("configuring logger", "error", err)
		os.Exit(1)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	corsOrigins := os.Getenv("KGQA_CORS_ORIGINS")

	engine, err := kgqa.New(cfg)
	if err != nil {
		slog.Error("creating engine", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      newServer(engine, corsOrigins),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // ingest of large uploads can be long
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", cfg.Addr, "store", cfg.StoreBackend, "version", kgqa.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}

// newServer wires the routes, the metrics endpoint and the middleware chain.
func newServer(engine kgqa.Engine, corsOrigins string) http.Handler {
	reg := engine.Metrics()
	mux := newHandler(engine).routes()
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Middleware chain: recovery -> cors -> logging -> mux
	var handler http.Handler = mux
	handler = newRequestMetrics(reg).logMiddleware(handler)
	handler = corsMiddleware(corsOrigins, handler)
	handler = recoveryMiddleware(handler)
	return handler
}
