package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

type userIDKey struct{}

// WithUserID stores the authenticated user id on ctx.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey{}).(int64)
	return id, ok && id > 0
}

// AuthMiddleware rejects requests without a valid access token.
func AuthMiddleware(issuer *TokenIssuer, logger *slog.Logger) func(http.Handler) http.Handler {
	return authenticate(issuer, true, logger)
}

// OptionalAuthMiddleware lets anonymous requests through but still rejects a
// bearer token that fails verification.
func OptionalAuthMiddleware(issuer *TokenIssuer, logger *slog.Logger) func(http.Handler) http.Handler {
	return authenticate(issuer, false, logger)
}

func authenticate(issuer *TokenIssuer, required bool, logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With("component", "AuthMiddleware")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				if required {
					logger.WarnContext(r.Context(), "Missing Authorization header", "path", r.URL.Path)
					unauthorized(w)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
				logger.WarnContext(r.Context(), "Invalid Authorization header format")
				unauthorized(w)
				return
			}

			claims, err := issuer.Parse(strings.TrimSpace(parts[1]), TokenTypeAccess)
			if err != nil {
				logger.WarnContext(r.Context(), "Invalid token", "error", err)
				unauthorized(w)
				return
			}

			logger.DebugContext(r.Context(), "Authenticated request", "userID", claims.UserID)
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.UserID)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
}
