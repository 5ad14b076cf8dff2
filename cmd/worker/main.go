package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	adoptionpostgres "github.com/Apurer/pet-adoption-api/internal/domains/adoption/adapters/persistence/postgres"
	petspostgres "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/persistence/postgres"
	platformobservability "github.com/Apurer/pet-adoption-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/pet-adoption-api/internal/platform/postgres"
	petactivities "github.com/Apurer/pet-adoption-api/internal/platform/temporal/activities/pets"
	petworkflows "github.com/Apurer/pet-adoption-api/internal/platform/temporal/workflows/pets"
)

func main() {
	ctx := context.Background()
	const serviceName = "pet-adoption-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	// Removal activities need the store shared with the API process.
	dsn := strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	if dsn == "" {
		logger.Error("POSTGRES_DSN not set; the worker needs the shared store")
		os.Exit(1)
	}
	db, err := platformpostgres.Connect(ctx, dsn, platformpostgres.WithLogger(logger))
	if err != nil {
		logger.Error("worker failed to connect to postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	petActivities := petactivities.NewActivities(petspostgres.NewRepository(db), adoptionpostgres.NewRepository(db))

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, petworkflows.PetRemovalTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(petworkflows.PetRemovalWorkflow, workflow.RegisterOptions{Name: petworkflows.PetRemovalWorkflowName})
	w.RegisterActivityWithOptions(petActivities.PurgeAdoptionRequests, activity.RegisterOptions{Name: petactivities.PurgeAdoptionRequestsActivityName})
	w.RegisterActivityWithOptions(petActivities.DeletePet, activity.RegisterOptions{Name: petactivities.DeletePetActivityName})

	logger.Info("worker listening", slog.String("taskQueue", petworkflows.PetRemovalTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
