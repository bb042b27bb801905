package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"quiz-attempt-service/internal/auth"
	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/observability"
)

const correlationHeader = "X-Correlation-ID"

type correlationKey struct{}

// correlationID makes sure every request carries an id, reusing the caller's when sent.
func correlationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(correlationHeader))
		if id == "" {
			id = strings.TrimSpace(r.Header.Get("X-Request-ID"))
		}
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(correlationHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), correlationKey{}, id)))
	})
}

func correlationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// observe records request metrics and writes one log line per request.
func observe(logger zerolog.Logger) func(http.Handler) http.Handler {
	observability.RegisterMetrics()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			duration := time.Since(start)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			observability.HTTPRequests().WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
			observability.HTTPLatency().WithLabelValues(r.Method, route).Observe(duration.Seconds())

			event := logger.Info()
			switch {
			case status >= http.StatusInternalServerError:
				event = logger.Error()
			case status >= http.StatusBadRequest:
				event = logger.Warn()
			}
			event.
				Str("correlation_id", correlationIDFromContext(r.Context())).
				Str("method", r.Method).
				Str("route", route).
				Int("status", status).
				Float64("latency_ms", float64(duration)/float64(time.Millisecond)).
				Msg("request served")
		})
	}
}

// authenticate resolves the bearer token into a caller. Requests without a token
// pass through anonymously; a token that fails verification is rejected.
func authenticate(tokens *auth.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := tokens.Parse(raw)
			if err != nil {
				writeError(w, domain.ErrUnauthenticated)
				return
			}
			ctx := auth.WithCaller(r.Context(), auth.Caller{
				UserID: claims.Subject,
				Email:  claims.Email,
				Name:   claims.Name,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken reads the Authorization header, falling back to the access_token
// query parameter for websocket clients that cannot set headers.
func bearerToken(r *http.Request) string {
	const bearer = "bearer "
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		if len(header) > len(bearer) && strings.EqualFold(header[:len(bearer)], bearer) {
			return strings.TrimSpace(header[len(bearer):])
		}
		return header
	}
	return strings.TrimSpace(r.URL.Query().Get("access_token"))
}
