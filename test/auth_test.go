package test

import (
	"net/http"
	"regexp"
	"strings"
	"testing"
)

func TestSignupReturnsUserID(t *testing.T) {
	h := NewTestServer(t)

	username := GenerateUsername("signup")
	res := h.Post(t, "/auth/signup", map[string]string{
		"username": username,
		"password": "password123",
	}, "")

	if res.Status != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Status, res.Raw)
	}
	if res.Body["success"] != true {
		t.Fatalf("expected success=true, got %s", res.Raw)
	}
	if id, _ := res.Data()["userId"].(string); id == "" {
		t.Fatalf("expected data.userId, got %s", res.Raw)
	}
}

func TestSignupDuplicateUsernameConflicts(t *testing.T) {
	h := NewTestServer(t)

	username := GenerateUsername("dup")
	h.Signup(t, username, "password123")

	res := h.Post(t, "/auth/signup", map[string]string{
		"username": username,
		"password": "other-password",
	}, "")

	if res.Status != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", res.Status, res.Raw)
	}
	if res.Body["success"] != false {
		t.Fatalf("expected success=false, got %s", res.Raw)
	}
	if msg, _ := res.Body["error"].(string); msg == "" {
		t.Fatalf("expected error message, got %s", res.Raw)
	}
}

func TestSignupRejectsBadPayloads(t *testing.T) {
	h := NewTestServer(t)

	payloads := map[string]map[string]any{
		"missing username": {"password": "password123"},
		"missing password": {"username": GenerateUsername("bad")},
		"empty username":   {"username": "", "password": "password123"},
		"empty password":   {"username": GenerateUsername("bad"), "password": ""},
		"null username":    {"username": nil, "password": "password123"},
		"null password":    {"username": GenerateUsername("bad"), "password": nil},
		"empty body":       {},
	}
	for name, payload := range payloads {
		res := h.Post(t, "/auth/signup", payload, "")
		if res.Status != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d: %s", name, res.Status, res.Raw)
		}
		if res.Body["success"] != false {
			t.Errorf("%s: expected success=false, got %s", name, res.Raw)
		}
	}
}

func TestSignupNeverEchoesPassword(t *testing.T) {
	h := NewTestServer(t)

	password := "super-secret-password-xyz"
	res := h.Post(t, "/auth/signup", map[string]string{
		"username": GenerateUsername("leak"),
		"password": password,
	}, "")

	if res.Status != http.StatusCreated {
		t.Fatalf("signup failed: %d %s", res.Status, res.Raw)
	}
	if strings.Contains(res.Raw, password) {
		t.Fatalf("password leaked in response: %s", res.Raw)
	}
	for _, key := range []string{"password", "passwordHash", "password_hash"} {
		if strings.Contains(res.Raw, key) {
			t.Fatalf("response exposes %q: %s", key, res.Raw)
		}
	}
}

func TestLoginReturnsToken(t *testing.T) {
	h := NewTestServer(t)

	username := GenerateUsername("login")
	h.Signup(t, username, "password123")

	res := h.Post(t, "/auth/login", map[string]string{
		"username": username,
		"password": "password123",
	}, "")

	if res.Status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Status, res.Raw)
	}
	token, _ := res.Data()["token"].(string)
	if token == "" {
		t.Fatalf("expected data.token, got %s", res.Raw)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("token is not a JWT: %q", token)
	}
}

func TestLoginRejectsBadPayloads(t *testing.T) {
	h := NewTestServer(t)

	payloads := map[string]map[string]any{
		"missing username": {"password": "password123"},
		"missing password": {"username": "whoever"},
		"empty body":       {},
	}
	for name, payload := range payloads {
		res := h.Post(t, "/auth/login", payload, "")
		if res.Status != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d: %s", name, res.Status, res.Raw)
		}
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	h := NewTestServer(t)

	username := GenerateUsername("uniform")
	h.Signup(t, username, "correct-password")

	wrongPass := h.Post(t, "/auth/login", map[string]string{
		"username": username,
		"password": "wrong-password",
	}, "")
	unknownUser := h.Post(t, "/auth/login", map[string]string{
		"username": GenerateUsername("ghost"),
		"password": "wrong-password",
	}, "")

	if wrongPass.Status != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401, got %d: %s", wrongPass.Status, wrongPass.Raw)
	}
	if unknownUser.Status != http.StatusUnauthorized {
		t.Fatalf("unknown user: expected 401, got %d: %s", unknownUser.Status, unknownUser.Raw)
	}
	// Identical bodies so attackers cannot enumerate usernames.
	if wrongPass.Raw != unknownUser.Raw {
		t.Fatalf("failure responses differ: %q vs %q", wrongPass.Raw, unknownUser.Raw)
	}
}

func TestDifferentUsersGetDifferentTokens(t *testing.T) {
	h := NewTestServer(t)

	_, tokenA := h.SignupAndLogin(t, "alice")
	_, tokenB := h.SignupAndLogin(t, "bob")

	if tokenA == tokenB {
		t.Fatalf("distinct users received the same token")
	}
}

func TestErrorsNeverLeakInternals(t *testing.T) {
	h := NewTestServer(t)

	username := GenerateUsername("internals")
	h.Signup(t, username, "password123")

	responses := []*Response{
		h.Post(t, "/auth/signup", map[string]string{"username": username, "password": "x"}, ""),
		h.Post(t, "/auth/login", map[string]string{"username": username, "password": "wrong"}, ""),
		h.Post(t, "/auth/signup", map[string]any{}, ""),
		h.Get(t, "/bookings", "not-a-token"),
	}

	leaky := regexp.MustCompile(`(?i)(bcrypt|sql|goroutine|panic|stack trace|\.go:)`)
	for _, res := range responses {
		if leaky.MatchString(res.Raw) {
			t.Errorf("response leaks internals: %s", res.Raw)
		}
	}
}
