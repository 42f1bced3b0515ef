// MADE server — runs the Multi-Agent Deliberation Engine's HTTP/SSE API
// and manages council, ensemble, and DxO deliberations against an
// external LLM gateway.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/made-ai/made/pkg/api"
	"github.com/made-ai/made/pkg/assembler"
	"github.com/made-ai/made/pkg/cleanup"
	"github.com/made-ai/made/pkg/config"
	"github.com/made-ai/made/pkg/database"
	"github.com/made-ai/made/pkg/gateway"
	"github.com/made-ai/made/pkg/staging"
	"github.com/made-ai/made/pkg/store"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("warning: could not load %s: %v", envPath, err)
		log.Printf("continuing with existing environment variables...")
	} else {
		log.Printf("loaded environment from %s", envPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Initialize(ctx, filepath.Join(*configDir, "made.yaml"))
	if err != nil {
		log.Fatalf("failed to initialize configuration: %v", err)
	}

	dbClient, err := database.NewClient(ctx, cfg.DB)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			slog.Error("error closing database client", "error", err)
		}
	}()

	st := store.New(dbClient)
	asm := assembler.New(st)
	stg := staging.New(cfg.Staging.TokenTTL, cfg.Staging.MaxBytes)

	apiKey := os.Getenv(cfg.Gateway.APIKeyEnv)
	httpClient := &http.Client{Timeout: cfg.Gateway.CallTimeout}
	gw := gateway.New(
		cfg.Gateway.BaseURL,
		apiKey,
		cfg.Gateway.CallTimeout,
		cfg.Gateway.CatalogTTL,
		gateway.FetchCatalog(cfg.Gateway.BaseURL, apiKey, httpClient),
	)

	cleanupSvc := cleanup.NewService(cfg.Retention, st, stg)
	cleanupSvc.Start(ctx)
	defer cleanupSvc.Stop()

	srv := api.NewServer(st, gw, asm, stg, cfg.Defaults, apiKey != "")

	go func() {
		slog.Info("made: http server listening", "addr", cfg.Server.Addr)
		if err := srv.Start(cfg.Server.Addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("made: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("made: graceful shutdown failed", "error", err)
	}
}
