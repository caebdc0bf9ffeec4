package api

import (
	"crm-rep/internal/api/handler"
	"crm-rep/internal/api/handler/dto"
	mw "crm-rep/internal/api/middleware"
	"crm-rep/internal/config"
	"crm-rep/internal/domain/customer"
	"crm-rep/internal/domain/user"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles what the routes need.
type Services struct {
	Users     user.Service
	Customers customer.Service
	Tokens    *mw.TokenIssuer
	Limiter   *mw.RateLimiterMiddleware
}

func SetupRouter(svc Services, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, svc, cfg, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupAuthRoutes(router, svc, logger)
	setupCustomerRoutes(router, svc, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(dto.HealthResponse{Status: "ok"})
	})

	return router
}

func setupMiddleware(router *chi.Mux, svc Services, cfg *config.Config, logger *slog.Logger) {
	limiter := svc.Limiter
	if limiter == nil {
		limiter = mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, logger)
	}

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(limiter.Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupAuthRoutes(router *chi.Mux, svc Services, logger *slog.Logger) {
	h := handler.NewAuthHandler(svc.Users, svc.Tokens, logger)

	router.Route("/api/token", func(r chi.Router) {
		r.Post("/", h.ObtainToken)
		r.Post("/refresh/", h.RefreshToken)
	})

	router.Route("/api/users", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(svc.Tokens, logger))
		r.Get("/me/", h.CurrentUser)
	})
}

// Reference lists and customers accept anonymous callers.
func setupCustomerRoutes(router *chi.Mux, svc Services, logger *slog.Logger) {
	h := handler.NewCustomerHandler(svc.Customers, svc.Users, logger)

	router.Group(func(r chi.Router) {
		r.Use(mw.OptionalAuthMiddleware(svc.Tokens, logger))

		for _, kind := range customer.ReferenceKinds() {
			r.Get(kind.Path(), h.ListReference(kind))
		}

		r.Route("/api/customers", func(r chi.Router) {
			r.Get("/", h.ListCustomers)
			r.Post("/", h.CreateCustomer)
			r.Get("/{customerID}/", h.GetCustomer)
		})
	})
}
