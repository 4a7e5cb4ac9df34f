package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Ch4rC0M1n0U/osintgenerator/internal/security/auth"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/security/ratelimit"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testTokenManager() *auth.TokenManager {
	return auth.NewTokenManager("test-secret", "osintgen", time.Hour)
}

// corsStub stands in for the CORS layer at the bottom of the chain: it
// mirrors the Origin header and answers preflights with 204.
func corsStub() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestPreflightBypassesAuth(t *testing.T) {
	handler := JWTMiddleware(testTokenManager(), testLogger())(corsStub())

	req := httptest.NewRequest(http.MethodOptions, "/api/profiles/generate", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected preflight to reach the CORS layer with 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected Access-Control-Allow-Origin to be set, got %q", got)
	}
}

type recordingCounter struct {
	incrs int
}

func (c *recordingCounter) Incr(ctx context.Context, key string) (int64, error) {
	c.incrs++
	return 1 << 20, nil
}

func (c *recordingCounter) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return nil
}

func TestPreflightBypassesRateLimit(t *testing.T) {
	counter := &recordingCounter{}
	limiter := ratelimit.NewLimiter(counter, 1, time.Minute, testLogger())
	handler := RateLimitMiddleware(limiter, testLogger())(corsStub())

	req := httptest.NewRequest(http.MethodOptions, "/api/profiles", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected preflight to skip rate limiting, got %d", rec.Code)
	}
	if counter.incrs != 0 {
		t.Fatalf("expected the limiter to stay untouched for preflights, counted %d", counter.incrs)
	}
}

func TestProtectedPathRequiresToken(t *testing.T) {
	handler := JWTMiddleware(testTokenManager(), testLogger())(corsStub())

	req := httptest.NewRequest(http.MethodGet, "/api/profiles", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}
}

func TestValidTokenReachesHandlerWithClaims(t *testing.T) {
	tm := testTokenManager()
	token, err := tm.GenerateToken(7, "anne.maes@police.belgium.eu", "fr", "Anne", "Maes")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	var seen *auth.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := JWTMiddleware(tm, testLogger())(next)

	req := httptest.NewRequest(http.MethodGet, "/api/profiles", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with a valid token, got %d", rec.Code)
	}
	if seen == nil || seen.UserID != 7 {
		t.Fatalf("expected claims for user 7 in context, got %+v", seen)
	}
}

func TestPublicPathSkipsAuth(t *testing.T) {
	handler := JWTMiddleware(testTokenManager(), testLogger())(corsStub())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected public path to skip auth, got %d", rec.Code)
	}
}
