package api

import (
	"net/http"

	"github.com/fortifiedfantasy/fein-server/internal/api/handlers"
	"github.com/fortifiedfantasy/fein-server/internal/api/middleware"
	"github.com/fortifiedfantasy/fein-server/internal/config"
	"github.com/fortifiedfantasy/fein-server/internal/espn"
	"github.com/fortifiedfantasy/fein-server/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services, espnClient *espn.Client, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)
	r.Use(middleware.Session(services.Session))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	identityHandler := handlers.NewIdentityHandler(services.Identity, services.Session, cfg)
	handleHandler := handlers.NewHandleHandler(services.Member, services.Login, services.Session, cfg)
	pageHandler := handlers.NewPageHandler(services.Bouncer)
	contactHandler := handlers.NewContactHandler(services.Contact)
	espnHandler := handlers.NewESPNHandler(services.Credential, espnClient)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/identity", func(r chi.Router) {
			r.Post("/request-code", identityHandler.RequestCode)
			r.Post("/verify-code", identityHandler.VerifyCode)
			r.Get("/handle/exists", handleHandler.Exists)
			r.Post("/handle/login", handleHandler.Login)
			r.Post("/recovery/verify", handleHandler.RecoveryVerify)
		})

		r.Get("/u/{memberID}", pageHandler.Access)

		r.Route("/contact", func(r chi.Router) {
			r.Post("/request", contactHandler.Create)
			r.Post("/request/{id}/relationship", contactHandler.Decide)
		})

		r.Get("/espn/league", espnHandler.League)
		r.Post("/espn/link", espnHandler.Link)
	})

	return r
}
