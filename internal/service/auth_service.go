package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourorg/carbook/internal/domain"
	"github.com/yourorg/carbook/internal/observability/metrics"
	"github.com/yourorg/carbook/internal/security/auth"
)

// AuthService implements signup and login on top of a user repository and
// the token manager.
type AuthService struct {
	users      domain.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
	dummyHash  []byte
	logger     *slog.Logger
}

// SignupResult carries only the new user's ID. Password material never
// appears here under any field name.
type SignupResult struct {
	UserID string `json:"userId"`
}

// LoginResult carries only the minted token.
type LoginResult struct {
	Token string `json:"token"`
}

func NewAuthService(users domain.UserRepository, tokens *auth.TokenManager, bcryptCost int, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}

	// Hash of a throwaway value, compared against when the username does
	// not exist so both login failure paths cost one bcrypt comparison.
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("carbook.dummy.credential"), bcryptCost)
	if err != nil {
		// Only reachable with an out-of-range cost, which is clamped above.
		panic(fmt.Sprintf("bcrypt dummy hash: %v", err))
	}

	return &AuthService{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		dummyHash:  dummyHash,
		logger:     logger,
	}
}

// Signup validates the credentials, enforces username uniqueness, and
// persists the user with a bcrypt password hash. Validation happens before
// any storage access; a duplicate username never triggers a password
// comparison.
func (s *AuthService) Signup(ctx context.Context, username, password string) (*SignupResult, error) {
	if username == "" || password == "" {
		metrics.ObserveSignup("invalid")
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		metrics.ObserveSignup("error")
		return nil, errors.New("failed to create user")
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			metrics.ObserveSignup("conflict")
			return nil, domain.ErrUsernameTaken
		}
		s.logger.Error("failed to create user", slog.String("error", err.Error()))
		metrics.ObserveSignup("error")
		return nil, errors.New("failed to create user")
	}

	s.logger.Info("user signed up",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)
	metrics.ObserveSignup("success")

	return &SignupResult{UserID: user.ID}, nil
}

// Login verifies the credentials and mints a bearer token. Unknown username
// and wrong password return the same sentinel; the unknown-username path
// burns a bcrypt comparison against a dummy hash so the two cases stay in
// the same timing class.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		metrics.ObserveLogin("invalid")
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrValidation)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			s.logger.Info("login attempt for unknown username", slog.String("username", username))
			metrics.ObserveLogin("rejected")
			return nil, domain.ErrInvalidCredentials
		}
		s.logger.Error("failed to look up user", slog.String("error", err.Error()))
		metrics.ObserveLogin("error")
		return nil, errors.New("login failed")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login failed with wrong password", slog.String("username", username))
		metrics.ObserveLogin("rejected")
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		s.logger.Error("failed to sign token",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		metrics.ObserveLogin("error")
		return nil, errors.New("login failed")
	}

	s.logger.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)
	metrics.ObserveLogin("success")

	return &LoginResult{Token: token}, nil
}
