package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	adoptionserver "github.com/Apurer/pet-adoption-api/go"

	adoptionmemory "github.com/Apurer/pet-adoption-api/internal/domains/adoption/adapters/memory"
	adoptionobs "github.com/Apurer/pet-adoption-api/internal/domains/adoption/adapters/observability"
	adoptionpostgres "github.com/Apurer/pet-adoption-api/internal/domains/adoption/adapters/persistence/postgres"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoption/adapters/petdirectory"
	adoptionapp "github.com/Apurer/pet-adoption-api/internal/domains/adoption/application"
	adoptiondomain "github.com/Apurer/pet-adoption-api/internal/domains/adoption/domain"
	adoptionports "github.com/Apurer/pet-adoption-api/internal/domains/adoption/ports"
	favoritesapp "github.com/Apurer/pet-adoption-api/internal/domains/favorites/application"
	"github.com/Apurer/pet-adoption-api/internal/domains/notifications/adapters/lookup"
	"github.com/Apurer/pet-adoption-api/internal/domains/notifications/adapters/realtime"
	notificationsapp "github.com/Apurer/pet-adoption-api/internal/domains/notifications/application"
	petsmemory "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/memory"
	petsobs "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/observability"
	petspostgres "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/persistence/postgres"
	petsworkflows "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/workflows"
	petsapp "github.com/Apurer/pet-adoption-api/internal/domains/pets/application"
	petsports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	usermemory "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/memory"
	userobs "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/observability"
	userpostgres "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/persistence/postgres"
	userapp "github.com/Apurer/pet-adoption-api/internal/domains/users/application"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/auth"
	"github.com/Apurer/pet-adoption-api/internal/platform/changefeed"
	"github.com/Apurer/pet-adoption-api/internal/platform/changefeed/pgnotify"
	"github.com/Apurer/pet-adoption-api/internal/platform/localstate"
	localstatepostgres "github.com/Apurer/pet-adoption-api/internal/platform/localstate/postgres"
	localstatesqlite "github.com/Apurer/pet-adoption-api/internal/platform/localstate/sqlite"
	"github.com/Apurer/pet-adoption-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/pet-adoption-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/pet-adoption-api/internal/platform/postgres"
)

const serviceName = "pet-adoption-api"

// stores bundles the repositories for one backing store.
type stores struct {
	pets     petsports.Repository
	requests adoptionports.Repository
	profiles userports.ProfileRepository
	sessions userports.SessionStore
}

// Run boots the adoption HTTP API with observability, repositories, the change feed,
// the notification dispatcher, and workflows wired. It returns when ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName,
		platformobservability.WithLevel(platformobservability.ParseLevel(cfg.LogLevel)),
		platformobservability.WithEnvironment(cfg.Environment),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	db, cleanupDB, err := platformpostgres.ConnectConfigured(ctx, cfg.PostgresDSN, logger,
		platformpostgres.WithVerboseSQL(cfg.Development()))
	if err != nil {
		return err
	}
	defer cleanupDB()
	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	requestFeed := changefeed.NewBus[adoptiondomain.Request]("adoption_requests",
		changefeed.WithLogger(logger),
		changefeed.WithRetry(200*time.Millisecond, cfg.ChangefeedRetryMaxElapsed),
	)
	defer requestFeed.Close()

	repos := buildStores(db, requestFeed, logger)
	stateStore, closeState, err := buildStateStore(cfg, db, logger)
	if err != nil {
		return err
	}
	defer closeState()

	corePetService := petsapp.NewService(repos.pets, petsapp.WithRequestPurger(repos.requests))
	petService := petsobs.New(
		corePetService,
		petsobs.WithLogger(logger),
		petsobs.WithTracer(instruments.Tracer("internal.pets.application")),
		petsobs.WithMeter(instruments.Meter("internal.pets.application")),
	)
	var petWorkflows petsports.WorkflowOrchestrator = petsworkflows.NewInlinePetWorkflows(petService)
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, removing pets inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		petWorkflows = petsworkflows.NewTemporalPetWorkflows(temporalClient, petService)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	coreAdoptionService := adoptionapp.NewService(
		repos.requests,
		petdirectory.New(petService),
		adoptionapp.WithApprovalPolicy(cfg.ApprovalPolicy),
		adoptionapp.WithLogger(logger),
	)
	adoptionService := adoptionobs.New(
		coreAdoptionService,
		adoptionobs.WithLogger(logger),
		adoptionobs.WithTracer(instruments.Tracer("internal.adoption.application")),
		adoptionobs.WithMeter(instruments.Meter("internal.adoption.application")),
	)

	// Lookups read owner profiles through a users service without session hooks.
	profileReader := userapp.NewService(repos.profiles, repos.sessions)
	hub := realtime.NewHub(logger)
	manager := notificationsapp.NewManager(
		requestFeed,
		stateStore,
		lookup.New(petService, profileReader),
		notificationsapp.WithLogger(logger),
		notificationsapp.WithMeter(instruments.Meter("internal.notifications.application")),
		notificationsapp.WithPusher(hub),
		notificationsapp.WithLookupTimeout(cfg.StoreTimeout),
	)
	defer manager.Close()

	coreUserService := userapp.NewService(
		repos.profiles,
		repos.sessions,
		userapp.WithSessionTTL(cfg.SessionTTL),
		userapp.WithSessionHooks(manager),
	)
	userService := userobs.New(
		coreUserService,
		userobs.WithLogger(logger),
		userobs.WithTracer(instruments.Tracer("internal.users.application")),
		userobs.WithMeter(instruments.Meter("internal.users.application")),
	)

	favorites := favoritesapp.NewService(stateStore,
		favoritesapp.WithLogger(logger),
		favoritesapp.WithScope(cfg.FavoritesScope),
	)

	verifier := auth.NewVerifier(cfg.AuthJWTSecret)
	if verifier == nil {
		logger.Warn("AUTH_JWT_SECRET not set, trusting debug identity headers",
			slog.String("header", adoptionserver.HeaderDebugUserID))
	}
	handlers := adoptionserver.ApiHandleFunctions{
		PetAPI:          adoptionserver.NewPetAPI(petService, petWorkflows),
		AdoptionAPI:     adoptionserver.NewAdoptionAPI(adoptionService),
		UserAPI:         adoptionserver.NewUserAPI(userService),
		NotificationAPI: adoptionserver.NewNotificationAPI(manager, hub, cfg.AllowedOrigins),
		FavoriteAPI:     adoptionserver.NewFavoriteAPI(favorites),
	}
	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), otelgin.Middleware(serviceName))
	router := adoptionserver.NewRouterWithGinEngine(engine, handlers,
		adoptionserver.NewAuthenticator(verifier, userService, logger))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("adoption API listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if db != nil {
		listener := pgnotify.New(cfg.PostgresDSN, migrations.AdoptionRequestsChannel, pgnotify.WithLogger(logger))
		stream := adoptionpostgres.NewChangeStream(listener, requestFeed)
		g.Go(func() error {
			return stream.Run(gctx)
		})
	}
	if cfg.SessionPurgeIntervalMinute > 0 {
		g.Go(func() error {
			purgeSessions(gctx, userService, time.Duration(cfg.SessionPurgeIntervalMinute)*time.Minute, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("adoption API exited", slog.String("error", err.Error()))
		return err
	}
	logger.Info("adoption API stopped")
	return nil
}

func buildStores(db *gorm.DB, feed changefeed.Publisher[adoptiondomain.Request], logger *slog.Logger) stores {
	if db == nil {
		logger.Warn("using in-memory repositories; data is lost on restart")
		return stores{
			pets:     petsmemory.NewRepository(),
			requests: adoptionmemory.NewRepository(feed),
			profiles: usermemory.NewProfileRepository(),
			sessions: usermemory.NewSessionStore(),
		}
	}
	logger.Info("repositories configured with postgres")
	return stores{
		pets:     petspostgres.NewRepository(db),
		requests: adoptionpostgres.NewRepository(db),
		profiles: userpostgres.NewProfileRepository(db),
		sessions: userpostgres.NewSessionStore(db),
	}
}

func buildStateStore(cfg Config, db *gorm.DB, logger *slog.Logger) (localstate.Store, func(), error) {
	switch {
	case cfg.LocalStatePath != "":
		store, err := localstatesqlite.Open(cfg.LocalStatePath)
		if err != nil {
			return nil, func() {}, fmt.Errorf("open local state %s: %w", cfg.LocalStatePath, err)
		}
		logger.Info("state slots stored in sqlite", slog.String("path", cfg.LocalStatePath))
		return store, func() { _ = store.Close() }, nil
	case db != nil:
		logger.Info("state slots stored in postgres")
		return localstatepostgres.NewStore(db), func() {}, nil
	default:
		logger.Warn("state slots kept in memory; notifications and favorites are lost on restart")
		return localstate.NewMemoryStore(), func() {}, nil
	}
}

func purgeSessions(ctx context.Context, users userports.Service, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := users.PurgeExpiredSessions(ctx)
			if err != nil {
				logger.Warn("session purge failed", slog.String("error", err.Error()))
				continue
			}
			logger.Info("expired sessions purged", slog.Int("removed", removed))
		}
	}
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
