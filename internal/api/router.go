package api

import (
	"net/http"
	"time"

	"codejudge/internal/api/handler"
	"codejudge/internal/api/middleware"
	"codejudge/internal/app/service"
	"codejudge/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

// NewRouter wires the HTTP surface. requestTimeout must leave room for the
// submit endpoint, which holds the connection open for the whole polling
// window.
func NewRouter(
	tokens *security.TokenIssuer,
	authService *service.AuthService,
	userService *service.UserService,
	problemService *service.ProblemService,
	submissionService *service.SubmissionService,
	requestTimeout time.Duration,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(requestTimeout))

	// Verifies a bearer token when present and puts claims in context; the
	// Authenticator middleware decides which routes require one.
	r.Use(jwtauth.Verifier(tokens.Auth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(authService)
		v1.Group(func(publicAuth chi.Router) {
			authHandler.RegisterRoutes(publicAuth)
		})

		userHandler := handler.NewUserHandler(userService, authService)
		v1.Route("/users", userHandler.RegisterRoutes)
		v1.Route("/admins", userHandler.RegisterAdminRoutes)

		problemHandler := handler.NewProblemHandler(problemService)
		submissionHandler := handler.NewSubmissionHandler(submissionService)
		v1.Route("/problems", func(pr chi.Router) {
			pr.Use(middleware.Authenticator)
			problemHandler.RegisterRoutes(pr)
			submissionHandler.RegisterRoutes(pr)
		})
	})

	return r
}
