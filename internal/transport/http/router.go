package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"biteclub/internal/handler"
	"biteclub/internal/httputil"
	"biteclub/internal/token"
	authmw "biteclub/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	FollowHandler     *handler.FollowHandler
	ReviewHandler     *handler.ReviewHandler
	RestaurantHandler *handler.RestaurantHandler
	JWTSecret         string
	Denylist          token.Denylist
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	optionalAuth := authmw.OptionalAuthMiddleware(cfg.JWTSecret, cfg.Denylist)
	requireAuth := authmw.AuthMiddleware(cfg.JWTSecret, cfg.Denylist)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/refresh", cfg.AuthHandler.Refresh)
	})

	// Restaurant search passthrough - public
	r.Route("/restaurants", func(r chi.Router) {
		r.Get("/search", cfg.RestaurantHandler.Search)
		r.Get("/{id}", cfg.RestaurantHandler.GetByID)
		r.Get("/{id}/reviews", cfg.ReviewHandler.GetBusinessReviews)
	})

	// Public user endpoints with optional authentication
	r.Route("/users", func(r chi.Router) {
		r.With(optionalAuth).Get("/search", cfg.UserHandler.Search)
		r.With(optionalAuth).Get("/{username}", cfg.UserHandler.GetProfile)
		r.With(optionalAuth).Get("/{username}/followers", cfg.FollowHandler.GetFollowers)
		r.With(optionalAuth).Get("/{username}/following", cfg.FollowHandler.GetFollowing)
		r.Get("/{username}/reviews", cfg.ReviewHandler.GetUserReviews)
	})

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		// Current user endpoints
		r.Get("/me", cfg.AuthHandler.Me)
		r.Put("/me/bio", cfg.UserHandler.UpdateBio)
		r.Put("/me/avatar", cfg.UserHandler.UpdateAvatar)

		// Auth actions that require authentication
		r.Post("/auth/logout", cfg.AuthHandler.Logout)
		r.Post("/auth/logout-all", cfg.AuthHandler.LogoutAll)

		// Follow/unfollow actions require authentication
		r.Post("/users/{username}/follow", cfg.FollowHandler.Follow)
		r.Delete("/users/{username}/follow", cfg.FollowHandler.Unfollow)
		r.Get("/users/{username}/follow", cfg.FollowHandler.IsFollowing)

		// Review submission
		r.Post("/reviews", cfg.ReviewHandler.Create)
	})

	return r
}
