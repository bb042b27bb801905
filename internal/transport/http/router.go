package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"quiz-attempt-service/internal/auth"
	"quiz-attempt-service/internal/observability"
)

// RouterConfig holds what the router needs beyond the handlers.
type RouterConfig struct {
	Tokens         *auth.Issuer
	AllowedOrigins []string
	Logger         zerolog.Logger
}

// NewRouter mounts the API, the event stream and the operational endpoints.
func NewRouter(cfg RouterConfig, api *Handler, ws *WSHandler) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP, correlationID, observe(cfg.Logger), middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", correlationHeader},
		ExposedHeaders:   []string{correlationHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Handle("/metrics", observability.MetricsHandler())

	r.Route("/v1", func(v chi.Router) {
		v.Use(authenticate(cfg.Tokens))

		// the event stream is long-lived and must not be cut by the request timeout
		v.Get("/events", ws.ServeWS)

		v.Group(func(pr chi.Router) {
			pr.Use(middleware.Timeout(30 * time.Second))
			pr.Post("/attempts", api.StartAttempt)
			pr.Post("/attempts/submit", api.SubmitAttempt)
			pr.Get("/attempts/{attemptId}", api.GetAttempt)
			pr.Get("/quizzes/{quizId}", api.GetQuiz)
			pr.Post("/session", api.StartSession)
			pr.Get("/profile", api.GetProfile)
			pr.Patch("/profile", api.UpdateProfile)
		})
	})
	return r
}
