package wire

import (
	"net/http"

	"hyperlocal-marketplace/internal/adaptor"
	"hyperlocal-marketplace/internal/data/repository"
	"hyperlocal-marketplace/internal/gateway"
	"hyperlocal-marketplace/internal/usecase"
	"hyperlocal-marketplace/pkg/middleware"
	"hyperlocal-marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the wired dependencies
type App struct {
	Router *chi.Mux
}

// Wiring initializes all dependencies
func Wiring(repo *repository.Repository, gw gateway.PaymentGateway, config *utils.Config, logger *zap.Logger) *App {
	// Initialize services and handlers
	service := usecase.NewService(repo, gw, config, logger)
	handler := adaptor.NewHandler(service, logger)

	// Setup router
	router := setupRouter(handler, config, logger)

	return &App{
		Router: router,
	}
}

// setupRouter configures the Chi router
func setupRouter(
	handler *adaptor.Handler,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	// Apply routes
	wireService(r, handler.Service, config, logger)
	wireBooking(r, handler.Booking, config, logger)
	wirePayment(r, handler.Payment, config, logger)
	wireAdmin(r, handler.Admin, config, logger)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
