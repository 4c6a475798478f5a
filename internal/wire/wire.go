package wire

import (
	"net/http"

	"legal-booking/internal/adaptor"
	"legal-booking/internal/calendar"
	"legal-booking/internal/data/repository"
	"legal-booking/internal/gateway"
	"legal-booking/internal/usecase"
	"legal-booking/pkg/middleware"
	"legal-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the wired dependencies
type App struct {
	Router *chi.Mux
}

// Wiring initializes all dependencies
func Wiring(repo *repository.Repository, config *utils.Config, logger *zap.Logger) *App {
	gatewayClient := gateway.NewClient(config.Gateway, logger)
	calendarClient := calendar.NewClient(config.Calendar, logger)

	service := usecase.NewService(repo, gatewayClient, calendarClient, config, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, repo, config, logger)

	return &App{
		Router: router,
	}
}

// setupRouter configures the chi router
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

	// Apply routes
	wireCheckout(r, handler.Checkout, repo, logger)
	wirePayment(r, handler.Payment, repo, logger)
	wireWebhook(r, handler.Webhook)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
