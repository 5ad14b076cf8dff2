//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/stretchr/testify/require"

	adoptionserver "github.com/Apurer/pet-adoption-api/go"
	adoptionmemory "github.com/Apurer/pet-adoption-api/internal/domains/adoption/adapters/memory"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoption/adapters/petdirectory"
	adoptionapp "github.com/Apurer/pet-adoption-api/internal/domains/adoption/application"
	adoptiondomain "github.com/Apurer/pet-adoption-api/internal/domains/adoption/domain"
	favoritesapp "github.com/Apurer/pet-adoption-api/internal/domains/favorites/application"
	"github.com/Apurer/pet-adoption-api/internal/domains/notifications/adapters/lookup"
	"github.com/Apurer/pet-adoption-api/internal/domains/notifications/adapters/realtime"
	notificationsapp "github.com/Apurer/pet-adoption-api/internal/domains/notifications/application"
	petsmemory "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/memory"
	petsworkflows "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/workflows"
	petsapp "github.com/Apurer/pet-adoption-api/internal/domains/pets/application"
	petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	usermemory "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/memory"
	userapp "github.com/Apurer/pet-adoption-api/internal/domains/users/application"
	"github.com/Apurer/pet-adoption-api/internal/platform/changefeed"
	"github.com/Apurer/pet-adoption-api/internal/platform/localstate"
	pacttest "github.com/Apurer/pet-adoption-api/test/pact"
)

func TestAdoptionProviderPact(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StatePetListed: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedPet(t)
			}
			return nil, nil
		},
		pacttest.StateRequestPending: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedPet(t)
				app.seedRequest(t)
			}
			return nil, nil
		},
		pacttest.StatePetMissing: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
	})
	require.NoError(t, err)
}

// contractProviderApp rebuilds the in-memory wiring on every state change.
type contractProviderApp struct {
	server *httptest.Server

	mu       sync.Mutex
	handler  http.Handler
	pets     *petsmemory.Repository
	requests *adoptionmemory.Repository
	cleanup  func()
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()
	app := &contractProviderApp{}
	app.reset(t)
	app.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.mu.Lock()
		h := app.handler
		app.mu.Unlock()
		h.ServeHTTP(w, r)
	}))
	t.Cleanup(func() {
		app.server.Close()
		app.mu.Lock()
		defer app.mu.Unlock()
		app.cleanup()
	})
	return app
}

func (a *contractProviderApp) reset(t testing.TB) {
	t.Helper()
	feed := changefeed.NewBus[adoptiondomain.Request]("pact")
	petRepo := petsmemory.NewRepository()
	requestRepo := adoptionmemory.NewRepository(feed)
	profiles := usermemory.NewProfileRepository()
	sessions := usermemory.NewSessionStore()
	state := localstate.NewMemoryStore()

	petService := petsapp.NewService(petRepo, petsapp.WithRequestPurger(requestRepo))
	adoptionService := adoptionapp.NewService(requestRepo, petdirectory.New(petService))
	profileReader := userapp.NewService(profiles, sessions)
	hub := realtime.NewHub(nil)
	manager := notificationsapp.NewManager(feed, state, lookup.New(petService, profileReader),
		notificationsapp.WithPusher(hub))
	userService := userapp.NewService(profiles, sessions, userapp.WithSessionHooks(manager))

	handlers := adoptionserver.ApiHandleFunctions{
		PetAPI:          adoptionserver.NewPetAPI(petService, petsworkflows.NewInlinePetWorkflows(petService)),
		AdoptionAPI:     adoptionserver.NewAdoptionAPI(adoptionService),
		UserAPI:         adoptionserver.NewUserAPI(userService),
		NotificationAPI: adoptionserver.NewNotificationAPI(manager, hub, nil),
		FavoriteAPI:     adoptionserver.NewFavoriteAPI(favoritesapp.NewService(state)),
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router = adoptionserver.NewRouterWithGinEngine(router, handlers, adoptionserver.NewAuthenticator(nil, userService, nil))

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cleanup != nil {
		a.cleanup()
	}
	a.handler = router
	a.pets = petRepo
	a.requests = requestRepo
	a.cleanup = func() {
		manager.Close()
		feed.Close()
	}
}

func (a *contractProviderApp) seedPet(t testing.TB) {
	t.Helper()
	pet, err := petdomain.NewPet(pacttest.ExistingPetID, pacttest.OwnerID, pacttest.PetName, petdomain.SpeciesCat)
	require.NoError(t, err)
	_, err = a.pets.Save(context.Background(), pet)
	require.NoError(t, err)
}

func (a *contractProviderApp) seedRequest(t testing.TB) {
	t.Helper()
	request, err := adoptiondomain.NewRequest(
		pacttest.PendingRequestID,
		pacttest.ExistingPetID,
		pacttest.AdopterID,
		pacttest.OwnerID,
		pacttest.AdoptionMessage,
		pacttest.AdopterEmail,
		"+1234567890",
		time.Now().UTC(),
	)
	require.NoError(t, err)
	_, err = a.requests.Insert(context.Background(), request)
	require.NoError(t, err)
}
