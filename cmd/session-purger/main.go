package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	userpostgres "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/persistence/postgres"
	platformobservability "github.com/Apurer/pet-adoption-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/pet-adoption-api/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := platformobservability.NewLogger(os.Stdout, platformobservability.ParseLevel(os.Getenv("LOG_LEVEL")))
	db, cleanup, err := platformpostgres.ConnectConfigured(ctx, os.Getenv("POSTGRES_DSN"), logger)
	defer cleanup()
	if err != nil || db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge sessions")
	}

	removed, err := userpostgres.NewSessionStore(db).PurgeExpired(ctx)
	if err != nil {
		log.Fatalf("failed to purge sessions: %v", err)
	}
	logger.Info("session purge completed", slog.Int("removed", removed))
}
