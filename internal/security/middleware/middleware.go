package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Ch4rC0M1n0U/osintgenerator/internal/security/audit"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/security/auth"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/security/ratelimit"
)

type ClaimsContextKey struct{}

// isPublicPath reports whether a path is reachable without a token. The
// websocket feed authenticates through a query-string token in its own
// handler since browsers cannot set headers on websocket upgrades.
func isPublicPath(path string) bool {
	return path == "/healthz" || path == "/readyz" || path == "/metrics" ||
		path == "/api/auth/register" || path == "/api/auth/login" ||
		strings.HasPrefix(path, "/ws/activity")
}

func JWTMiddleware(tm *auth.TokenManager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// CORS preflights carry no Authorization header; they must reach
			// the CORS layer unchallenged or browsers can never get past them.
			if r.Method == http.MethodOptions || isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":"missing auth"}`, http.StatusUnauthorized)
				return
			}

			tokenString, err := auth.ExtractToken(authHeader)
			if err != nil {
				http.Error(w, `{"error":"invalid auth"}`, http.StatusUnauthorized)
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			identity := ""
			if claims := GetClaimsFromContext(r.Context()); claims != nil {
				identity = strconv.FormatInt(claims.UserID, 10)
			}

			if !limiter.Allow(r.Context(), identity) {
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var userID int64
			if claims := GetClaimsFromContext(r.Context()); claims != nil {
				userID = claims.UserID
			}

			if r.Method == http.MethodPost && r.URL.Path == "/api/profiles/generate" {
				auditLog.LogAction(r.Context(), userID, "generate", "profile", "", "initiated", "")
			}
			if r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/profiles/") {
				// Runs ahead of mux matching, so the ID comes off the raw path.
				profileID := strings.TrimPrefix(r.URL.Path, "/api/profiles/")
				auditLog.LogAction(r.Context(), userID, "delete", "profile", profileID, "initiated", "")
			}

			next.ServeHTTP(w, r)
		})
	}
}

func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(ClaimsContextKey{}); c != nil {
		return c.(*auth.Claims)
	}
	return nil
}
