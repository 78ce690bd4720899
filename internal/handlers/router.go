package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	appMiddleware "github.com/cryptichearts/backend/internal/middleware"
	"github.com/cryptichearts/backend/internal/realtime"
	"github.com/cryptichearts/backend/internal/services"
)

type RouterConfig struct {
	Sessions      *services.SessionFactory
	Agents        *services.AgentService
	Hub           *realtime.Hub
	JWTSecret     string
	JWTExpiration time.Duration
	CORSOrigins   []string
}

func NewRouter(cfg RouterConfig) http.Handler {
	sessionHandler := NewSessionHandler(cfg.Agents, cfg.JWTSecret, cfg.JWTExpiration)
	profileHandler := NewProfileHandler(cfg.Sessions)
	graphHandler := NewGraphHandler(cfg.Sessions)
	postHandler := NewPostHandler(cfg.Sessions)
	messageHandler := NewMessageHandler(cfg.Sessions, cfg.Hub, nil)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/session/register", sessionHandler.Register)
		r.Post("/session/unlock", sessionHandler.Unlock)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.JWTAuth(cfg.JWTSecret))

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", profileHandler.GetProfile)
				r.Post("/", profileHandler.CreateProfile)
				r.Put("/", profileHandler.UpdateProfile)
				r.Post("/share", profileHandler.ShareProfile)
			})

			r.Route("/following", func(r chi.Router) {
				r.Get("/", graphHandler.GetFollowing)
				r.Post("/", graphHandler.Follow)
				r.Delete("/{recordId}", graphHandler.Unfollow)
			})
			r.Get("/followers", graphHandler.GetFollowers)
			r.Get("/peers/{did}", graphHandler.GetPeer)

			r.Get("/posts", postHandler.GetPosts)
			r.Post("/posts", postHandler.CreatePost)

			r.Route("/messages/{did}", func(r chi.Router) {
				r.Get("/", messageHandler.GetMessages)
				r.Post("/", messageHandler.SendMessage)
				r.Get("/stream", messageHandler.Stream)
			})
		})
	})

	return r
}
