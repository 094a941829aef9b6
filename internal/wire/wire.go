package wire

import (
	"net/http"
	"time"

	"tour-booking/internal/adaptor"
	"tour-booking/internal/data/draft"
	"tour-booking/internal/data/repository"
	"tour-booking/internal/identity"
	"tour-booking/internal/usecase"
	"tour-booking/pkg/middleware"
	"tour-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// App holds the wired dependencies.
type App struct {
	Router *chi.Mux
}

// Wiring initializes all dependencies.
func Wiring(repo *repository.Repository, cache *redis.Client, config *utils.Config, logger *zap.Logger) *App {
	drafts := draft.NewStore(cache,
		time.Duration(config.Booking.DraftTTLMinutes)*time.Minute, logger)

	provider := identity.NewLocalProvider(repo.User, logger)
	roles := identity.NewUserRoleStore(repo.User, logger)

	// Initialize services and handlers
	service := usecase.NewService(repo, drafts, provider, roles, config, logger)
	handler := adaptor.NewHandler(service, logger)

	// Setup router
	router := setupRouter(handler, repo, config, logger)

	return &App{
		Router: router,
	}
}

// setupRouter configures the chi router.
func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Metrics())
	r.Use(middleware.RateLimit(logger, 20, 40))

	// Apply routes
	wireAuth(r, handler.Auth, repo, config, logger)
	wireUser(r, handler.User, repo, config, logger)
	wirePackage(r, handler.Package, repo, config, logger)
	wireBooking(r, handler.Booking, repo, config, logger)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	return r
}
