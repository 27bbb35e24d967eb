package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/taskloft/taskloft-be/internal/api/handlers"
	"github.com/taskloft/taskloft-be/internal/auth"
	"github.com/taskloft/taskloft-be/internal/events"
	"github.com/taskloft/taskloft-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	userService services.UserServiceProvider,
	taskService services.TaskServiceProvider,
	hub *events.Hub,
	strategy auth.TokenStrategy,
	allowedOrigins []string,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, strategy)
	taskHandler := handlers.NewTaskHandler(taskService)
	eventHandler := handlers.NewEventHandler(hub, strategy)

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		// Task event feed (token via query param for the upgrade)
		r.Get("/ws", eventHandler.Serve)

		// Public auth endpoints
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
		})

		// Everything below requires a resolved identity
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(strategy))

			r.Route("/users/me", func(r chi.Router) {
				r.Get("/", userHandler.GetMe)
				r.Put("/", userHandler.UpdateMe)
				r.Delete("/", userHandler.DeleteMe)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.List)
				r.Post("/", taskHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", taskHandler.Get)
					r.Put("/", taskHandler.Update)
					r.Delete("/", taskHandler.Delete)
				})
			})
		})
	})

	return r
}
