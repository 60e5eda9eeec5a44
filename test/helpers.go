package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yourorg/carbook/internal/handler"
	"github.com/yourorg/carbook/internal/security/audit"
	"github.com/yourorg/carbook/internal/security/auth"
	"github.com/yourorg/carbook/internal/security/middleware"
	"github.com/yourorg/carbook/internal/service"

	"golang.org/x/crypto/bcrypt"

	"github.com/yourorg/carbook/internal/repository"
)

const testJWTSecret = "test-secret"

// TestServerHelper runs the full HTTP surface against in-memory stores so
// the suite exercises the same routes, middleware, and envelopes as
// production without external dependencies.
type TestServerHelper struct {
	Server *httptest.Server
	Tokens *auth.TokenManager
}

func NewTestServer(t *testing.T) *TestServerHelper {
	t.Helper()

	log := slog.New(slog.DiscardHandler)
	tokens := auth.NewTokenManager(testJWTSecret, "carbook", time.Hour)
	auditLog := audit.NewLogger(log)

	authService := service.NewAuthService(repository.NewMemoryUserRepository(), tokens, bcrypt.MinCost, log)
	bookingService := service.NewBookingService(repository.NewMemoryBookingRepository(), log)

	authHandler := handler.NewAuthHandler(authService, auditLog, log)
	bookingHandler := handler.NewBookingHandler(bookingService, auditLog, log)

	protected := middleware.JWTMiddleware(tokens, log)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /auth/login", authHandler.Login)
	mux.Handle("GET /bookings", protected(http.HandlerFunc(bookingHandler.List)))
	mux.Handle("POST /bookings", protected(http.HandlerFunc(bookingHandler.Create)))
	mux.Handle("GET /bookings/{id}", protected(http.HandlerFunc(bookingHandler.Get)))
	mux.Handle("PUT /bookings/{id}", protected(http.HandlerFunc(bookingHandler.Update)))
	mux.Handle("DELETE /bookings/{id}", protected(http.HandlerFunc(bookingHandler.Delete)))

	root := middleware.ValidateJSONContentType(log)(mux)
	server := httptest.NewServer(root)
	t.Cleanup(server.Close)

	return &TestServerHelper{Server: server, Tokens: tokens}
}

// Response holds a decoded API reply plus the raw body for substring
// assertions.
type Response struct {
	Status int
	Body   map[string]any
	Raw    string
}

// Data returns the data object of a success envelope, or nil.
func (r *Response) Data() map[string]any {
	if d, ok := r.Body["data"].(map[string]any); ok {
		return d
	}
	return nil
}

func (h *TestServerHelper) do(t *testing.T, method, path string, body any, token string) *Response {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, h.Server.URL+path, reqBody)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}

	out := &Response{Status: resp.StatusCode, Raw: string(raw)}
	json.Unmarshal(raw, &out.Body)
	return out
}

func (h *TestServerHelper) Post(t *testing.T, path string, body any, token string) *Response {
	return h.do(t, http.MethodPost, path, body, token)
}

func (h *TestServerHelper) Get(t *testing.T, path, token string) *Response {
	return h.do(t, http.MethodGet, path, nil, token)
}

func (h *TestServerHelper) Put(t *testing.T, path string, body any, token string) *Response {
	return h.do(t, http.MethodPut, path, body, token)
}

func (h *TestServerHelper) Delete(t *testing.T, path, token string) *Response {
	return h.do(t, http.MethodDelete, path, nil, token)
}

// Signup creates a user and returns its ID.
func (h *TestServerHelper) Signup(t *testing.T, username, password string) string {
	t.Helper()
	res := h.Post(t, "/auth/signup", map[string]string{"username": username, "password": password}, "")
	if res.Status != http.StatusCreated {
		t.Fatalf("signup %s failed with status %d: %s", username, res.Status, res.Raw)
	}
	userID, _ := res.Data()["userId"].(string)
	if userID == "" {
		t.Fatalf("signup %s returned no userId: %s", username, res.Raw)
	}
	return userID
}

// Login authenticates and returns the bearer token.
func (h *TestServerHelper) Login(t *testing.T, username, password string) string {
	t.Helper()
	res := h.Post(t, "/auth/login", map[string]string{"username": username, "password": password}, "")
	if res.Status != http.StatusOK {
		t.Fatalf("login %s failed with status %d: %s", username, res.Status, res.Raw)
	}
	token, _ := res.Data()["token"].(string)
	if token == "" {
		t.Fatalf("login %s returned no token: %s", username, res.Raw)
	}
	return token
}

// SignupAndLogin provisions a fresh user and returns its token.
func (h *TestServerHelper) SignupAndLogin(t *testing.T, prefix string) (username, token string) {
	t.Helper()
	username = GenerateUsername(prefix)
	h.Signup(t, username, "password123")
	return username, h.Login(t, username, "password123")
}

// GenerateUsername returns a unique username for test isolation.
func GenerateUsername(prefix string) string {
	return fmt.Sprintf("%s_%d_%04d", prefix, time.Now().UnixNano(), rand.Intn(10000))
}
