package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yourorg/carbook/internal/security/auth"
	"github.com/yourorg/carbook/internal/security/ratelimit"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func protectedProbe(t *testing.T, tm *auth.TokenManager) (http.Handler, *bool) {
	t.Helper()
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		claims := GetClaimsFromContext(r.Context())
		if claims == nil {
			t.Error("expected claims in context")
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	return JWTMiddleware(tm, discardLogger())(next), &reached
}

func TestJWTMiddlewareMissingHeader(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", "carbook", time.Hour)
	h, reached := protectedProbe(t, tm)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if *reached {
		t.Fatalf("handler must not run without a token")
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body["success"] != false {
		t.Fatalf("expected success=false, got %v", body)
	}
}

func TestJWTMiddlewareRejectsBadTokens(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", "carbook", time.Hour)
	forged, err := auth.NewTokenManager("other-secret", "carbook", time.Hour).Generate("user-1", "alice")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	headers := map[string]string{
		"not a bearer":      "Basic abc",
		"garbage token":     "Bearer invalid-token",
		"dotted garbage":    "Bearer invalid.token.here",
		"foreign signature": "Bearer " + forged,
	}
	for name, header := range headers {
		h, reached := protectedProbe(t, tm)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
		req.Header.Set("Authorization", header)
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", name, rec.Code)
		}
		if *reached {
			t.Errorf("%s: handler must not run", name)
		}
	}
}

func TestJWTMiddlewarePassesValidToken(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", "carbook", time.Hour)
	token, err := tm.Generate("user-1", "alice")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	h, reached := protectedProbe(t, tm)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !*reached {
		t.Fatalf("handler should have run")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.NewLimiter(2, time.Minute)
	defer limiter.Stop()

	h := RateLimitMiddleware(limiter, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}

	// A different client is unaffected.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for different client, got %d", rec.Code)
	}
}
