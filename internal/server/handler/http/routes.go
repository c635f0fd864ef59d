package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/atinyakov/wardrobix/internal/middleware"
	"github.com/atinyakov/wardrobix/internal/models"
	"github.com/atinyakov/wardrobix/internal/service"
)

// Banner is the liveness text served at GET /.
const Banner = "Wardrobix backend is running"

// NewRouter constructs and returns an HTTP handler that serves
// the wardrobe API.
//
// Routes:
//
//	GET    /                              → liveness banner
//	POST   /register                      → authHandler.Register
//	GET    /clothes                       → clothesHandler.List   (Basic auth)
//	POST   /clothes                       → clothesHandler.Create (Basic auth)
//	GET    /clothes/{id}                  → clothesHandler.Get    (Basic auth)
//	PUT    /clothes/{id}                  → clothesHandler.Update (Basic auth)
//	DELETE /clothes/{id}                  → clothesHandler.Delete (Basic auth)
//	GET    /recommend/{formality}/{city}  → recommendHandler.Recommend (Basic auth)
//
// Middleware chain (applied in order):
//  1. RequestID and Recoverer
//  2. CORS for browser frontends
//  3. AllowContentType("application/json") for requests with a body
//  4. WithRequestLogging(logger)
//  5. BasicAuth on the protected group
func NewRouter(
	authHandler *AuthHandler,
	clothesHandler *ClothesHandler,
	recommendHandler *RecommendHandler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.WithRequestLogging(logger))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, Banner)
	})
	r.Post("/register", authHandler.Register)

	// Protected group: requires valid Basic credentials
	r.Group(func(r chi.Router) {
		r.Use(middleware.BasicAuth(authenticator(authHandler.AuthService), logger))

		r.Route("/clothes", func(r chi.Router) {
			r.Get("/", clothesHandler.List)
			r.Post("/", clothesHandler.Create)
			r.Get("/{id}", clothesHandler.Get)
			r.Put("/{id}", clothesHandler.Update)
			r.Delete("/{id}", clothesHandler.Delete)
		})
		r.Get("/recommend/{formality}/{city}", recommendHandler.Recommend)
	})

	return r
}

// authenticator translates the service's credential error for the middleware.
func authenticator(svc AuthService) middleware.Authenticator {
	return middleware.AuthenticatorFunc(func(ctx context.Context, username, password string) (*models.User, error) {
		u, err := svc.Authenticate(ctx, username, password)
		if errors.Is(err, service.ErrInvalidCredentials) {
			return nil, middleware.ErrBadCredentials
		}
		return u, err
	})
}
