package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"

	"github.com/Motzart/exercises-app/internal/auth"
	"github.com/Motzart/exercises-app/internal/practice"
	"github.com/Motzart/exercises-app/internal/telemetry/metrics"
	"github.com/Motzart/exercises-app/internal/telemetry/tracing"
)

//go:generate mockgen -source=$GOFILE -destination=middleware_mocks_test.go -package=middleware_test

type tokenResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

type AuthMiddlewareHandler struct {
	tokens       tokenResolver
	metrics      *metrics.Manager
	allowedPaths map[string]bool
}

func NewAuthMiddlewareHandler(tokens tokenResolver, metrics *metrics.Manager) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		tokens:  tokens,
		metrics: metrics,
		allowedPaths: map[string]bool{
			"/":        true,
			"/health":  true,
			"/version": true,
		},
	}
}

// bearerToken reads "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// AuthCheck resolves the bearer token to a user id and puts it into the
// request context. Requests without a valid token stop here with a 401.
func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.allowedPaths[r.URL.Path] {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r)
			if token == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				h.metrics.CounterUnauthorizedRequests.Inc()
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			userID, err := h.tokens.Resolve(ctx, token)
			if err != nil {
				span.RecordError(err)
				if errors.Is(err, practice.ErrNotAuthenticated) {
					log.Tracef("[invalid token] [auth middleware] unauthorized => %s", r.URL.Path)
					h.metrics.CounterUnauthorizedRequests.Inc()
					span.SetStatus(codes.Error, "not-logged")
				} else {
					span.SetStatus(codes.Error, "resolve-token-err")
				}
				practice.HTTPError(w, err, "no can do")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}
