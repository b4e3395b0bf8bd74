package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mealtrack/meal-tracker/internal/api/handlers"
	"github.com/mealtrack/meal-tracker/internal/api/middleware"
	"github.com/mealtrack/meal-tracker/internal/metrics"
	"github.com/mealtrack/meal-tracker/internal/service"
	"github.com/mealtrack/meal-tracker/internal/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

type Dependencies struct {
	Services *service.Services
	Hub      *websocket.Hub
	Logger   *logrus.Logger
	Metrics  metrics.Recorder
	Gatherer prometheus.Gatherer
	// HealthCheck reports whether the database is reachable.
	HealthCheck func(ctx context.Context) error
	// AuthLimiter throttles register and login. Nil disables throttling.
	AuthLimiter *middleware.RateLimiter
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger, deps.Metrics))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS)

	r.Get("/health", healthHandler(deps.HealthCheck))
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	authHandler := handlers.NewAuthHandler(deps.Services.Session, deps.Services.User, deps.Logger)
	foodHandler := handlers.NewFoodHandler(deps.Services.Food, deps.Logger)
	mealHandler := handlers.NewMealHandler(deps.Services.Meal, deps.Logger)
	shoppingListHandler := handlers.NewShoppingListHandler(deps.Services.ShoppingList, deps.Logger)
	wsHandler := handlers.NewWebSocketHandler(deps.Hub, deps.Services.Session, deps.Logger)

	requireSession := middleware.Auth(deps.Services.Session, deps.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			// Public auth routes
			r.Group(func(r chi.Router) {
				if deps.AuthLimiter != nil {
					r.Use(deps.AuthLimiter.Middleware)
				}
				r.Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireSession)
				r.Get("/me", authHandler.Me)
				r.Put("/me", authHandler.UpdateMe)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(requireSession)

			r.Route("/foods", func(r chi.Router) {
				r.Get("/", foodHandler.List)
				r.Post("/", foodHandler.Create)
				r.Put("/{id}", foodHandler.Update)
				r.Delete("/{id}", foodHandler.Delete)
			})

			r.Route("/meals", func(r chi.Router) {
				r.Get("/", mealHandler.List)
				r.Post("/", mealHandler.Create)
				r.Get("/{id}", mealHandler.Get)
				r.Delete("/{id}", mealHandler.Delete)
				r.Put("/{id}/info", mealHandler.UpdateInfo)
				r.Put("/{id}/foods", mealHandler.UpdateFoods)
			})

			r.Route("/shopping-list", func(r chi.Router) {
				r.Get("/", shoppingListHandler.List)
				r.Post("/", shoppingListHandler.Create)
				r.Get("/by-date", shoppingListHandler.ListByDate)
				r.Put("/{id}", shoppingListHandler.Update)
				r.Delete("/{id}", shoppingListHandler.Delete)
			})
		})

		// WebSocket endpoint
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.Write([]byte("OK"))
	}
}
