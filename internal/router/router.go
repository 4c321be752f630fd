package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/triplore/triplore/internal/api/auth"
	"github.com/triplore/triplore/internal/api/chat"
	"github.com/triplore/triplore/internal/api/place"
	"github.com/triplore/triplore/internal/api/profile"
)

// Config contains the handlers and middleware the router mounts.
type Config struct {
	AuthHandler            *auth.HandlerImpl
	PlaceHandler           *place.HandlerImpl
	ProfileHandler         *profile.HandlerImpl
	ChatHandler            *chat.HandlerImpl
	AuthenticateMiddleware func(http.Handler) http.Handler
}

// SetupRouter configures the application routes. Server-wide middleware
// (request ID, recoverer, request logging) is applied before mounting this
// router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes.
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)
			r.Post("/auth/refresh", cfg.AuthHandler.RefreshSession)
		})

		// Everything else requires a valid access token.
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Post("/map/point-info", cfg.PlaceHandler.GetPointInfo)
			r.Post("/map/reverse-geocode", cfg.PlaceHandler.ReverseGeocode)
			r.Post("/map/search-location", cfg.PlaceHandler.SearchLocation)

			r.Get("/places", cfg.PlaceHandler.ListLikedPlaces)
			r.Post("/places/like", cfg.PlaceHandler.LikePlace)
			r.Get("/places/recommendations", cfg.PlaceHandler.Recommendations)

			r.Get("/profile/places", cfg.ProfileHandler.GetLikedPlaces)
			r.Get("/profile/recommendations", cfg.ProfileHandler.GetRecommendations)

			r.Post("/chat", cfg.ChatHandler.Chat)
			r.Post("/chat/clear", cfg.ChatHandler.ClearChat)
		})
	})

	return r
}
