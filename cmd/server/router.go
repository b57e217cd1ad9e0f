package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/bookreviews-api/internal/api"
	apiMiddleware "github.com/phrazzld/bookreviews-api/internal/api/middleware"
	"github.com/phrazzld/bookreviews-api/internal/domain"
	"github.com/phrazzld/bookreviews-api/internal/platform/metrics"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(apiMiddleware.RequestLogger(app.logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.InstrumentHandler)

	authn := apiMiddleware.NewAuthMiddleware(app.jwtService)
	adminOnly := apiMiddleware.RequireRole(domain.RoleAdmin)
	limiter := apiMiddleware.NewIPRateLimiter(app.config.Auth.LoginRatePerMinute)

	authHandler := api.NewAuthHandler(app.identity, app.config.Auth.ExposeResetToken, app.logger)
	bookHandler := api.NewBookHandler(app.books, app.logger)
	categoryHandler := api.NewCategoryHandler(app.categories)
	reviewHandler := api.NewReviewHandler(app.reviews, app.logger)
	userHandler := api.NewUserHandler(app.users, app.identity)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(limiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password", authHandler.ResetPassword)
		})

		r.Route("/book", func(r chi.Router) {
			r.Use(authn.Authenticate)
			r.Get("/", bookHandler.List)
			r.Get("/{id}", bookHandler.Get)
			r.With(adminOnly).Post("/", bookHandler.Create)
			r.With(adminOnly).Put("/{id}", bookHandler.Update)
			r.With(adminOnly).Delete("/{id}", bookHandler.Delete)
		})

		r.Route("/category", func(r chi.Router) {
			r.Get("/", categoryHandler.List)
			r.Get("/{id}", categoryHandler.Get)
			r.Group(func(r chi.Router) {
				r.Use(authn.Authenticate, adminOnly)
				r.Post("/", categoryHandler.Create)
				r.Put("/{id}", categoryHandler.Update)
				r.Delete("/{id}", categoryHandler.Delete)
			})
		})

		r.Route("/review", func(r chi.Router) {
			r.Get("/book/{bookId}", reviewHandler.ListByBook)
			r.Group(func(r chi.Router) {
				r.Use(authn.Authenticate)
				r.Get("/user", reviewHandler.ListMine)
				r.Post("/", reviewHandler.Create)
				r.Put("/{id}", reviewHandler.Update)
				r.Delete("/{id}", reviewHandler.Delete)
			})
		})

		r.Route("/user", func(r chi.Router) {
			r.Use(authn.Authenticate)
			r.Get("/profile", userHandler.GetProfile)
			r.Put("/profile", userHandler.UpdateProfile)
			r.Put("/change-password", userHandler.ChangePassword)
		})
	})

	if app.staticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(app.staticDir))))
	}

	r.Handle("/metrics", metrics.Handler())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
