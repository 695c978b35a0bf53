package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"innkeeper/pkg/domain"
)

// TokenVerifier resolves a bearer token to the acting staff account.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, tokenString string) (domain.AccountID, error)
}

type contextKeyActorID struct{}

// GetActorID retrieves the authenticated staff account id from the
// context. The zero id means the request did not pass RequireAuth.
func GetActorID(ctx context.Context) domain.AccountID {
	id, ok := ctx.Value(contextKeyActorID{}).(domain.AccountID)
	if !ok {
		return domain.AccountID{}
	}
	return id
}

// WithActorID returns a context carrying the actor id. Exported for
// handler tests that bypass the middleware.
func WithActorID(ctx context.Context, id domain.AccountID) context.Context {
	return context.WithValue(ctx, contextKeyActorID{}, id)
}

// RequireAuth rejects requests without a valid, unrevoked bearer token and
// stores the resolved actor id in the request context.
func RequireAuth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const bearerPrefix = "Bearer "
			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, bearerPrefix)
			if !ok || tokenString == "" {
				logger.WarnContext(r.Context(), "unauthorized access - missing token",
					"request_id", GetRequestID(r.Context()),
				)
				writeUnauthorized(w)
				return
			}

			actorID, err := verifier.VerifyToken(r.Context(), tokenString)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(r.Context()),
				)
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActorID(r.Context(), actorID)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"NOT_AUTHENTICATED"}`))
}
