package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"timevault/internal/auth"
	"timevault/internal/domain"
	"timevault/internal/httputil"
)

// Auth returns middleware that validates Bearer tokens and injects the
// authenticated user and tenant into the request context. Every data
// route sits behind this; handlers can assume both values are present.
func Auth(verifier auth.TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenString == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims, err := verifier.VerifyToken(tokenString)
			if err != nil {
				logger.Debug("token verification failed", "error", err, "path", r.URL.Path)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			r = httputil.WithIdentity(r, claims.GetUserID(), claims.TenantID)
			r = r.WithContext(domain.WithActor(r.Context(), claims.GetUserID()))

			next.ServeHTTP(w, r)
		})
	}
}
