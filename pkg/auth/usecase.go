package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthUseCase describes authentication/registration behavior.
type AuthUseCase interface {
	Register(ctx context.Context, in RegisterInput) (AuthResult, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
	Authenticate(ctx context.Context, token string) (Identity, error)
	GetCurrentUser(ctx context.Context, id uuid.UUID) (User, error)
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

type AuthResult struct {
	User  User
	Token string
}

// ErrValidation is returned for input the service refuses to store.
type ErrValidation string

func (e ErrValidation) Error() string { return string(e) }

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

type authService struct {
	repo   UserRepository
	tokens TokenIssuer
	cost   int
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

// Option tweaks the auth service, mostly for tests.
type Option func(*authService)

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) Option {
	return func(s *authService) { s.cost = cost }
}

// NewAuthService returns default implementation of AuthUseCase.
func NewAuthService(repo UserRepository, tokens TokenIssuer, opts ...Option) AuthUseCase {
	s := &authService{
		repo:   repo,
		tokens: tokens,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeEmail is the canonical form used as the login key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := NormalizeEmail(in.Email)
	switch {
	case name == "":
		return AuthResult{}, ErrValidation("name is required")
	case email == "":
		return AuthResult{}, ErrValidation("email is required")
	case len(in.Password) < MinPasswordLength:
		return AuthResult{}, ErrValidation("password must be at least 6 characters")
	case !in.Role.Valid():
		return AuthResult{}, ErrValidation("role must be admin or employee")
	}

	// If user exists, fail fast; the store's unique index settles races.
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return AuthResult{}, ErrUserAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         in.Role,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUserAlreadyExists) {
			return AuthResult{}, ErrUserAlreadyExists
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}
	token, err := s.tokens.Generate(ctx, user)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthResult{User: user, Token: token}, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return AuthResult{}, fmt.Errorf("lookup user: %w", err)
		}
		// Burn a comparison so unknown emails cost the same as bad passwords.
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return AuthResult{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return AuthResult{}, ErrInvalidCredentials
	}
	token, err := s.tokens.Generate(ctx, user)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthResult{User: user, Token: token}, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (Identity, error) {
	if strings.TrimSpace(token) == "" {
		return Identity{}, ErrInvalidToken
	}
	id, err := s.tokens.Verify(ctx, token)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	return id, nil
}

func (s *authService) GetCurrentUser(ctx context.Context, id uuid.UUID) (User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

func (s *authService) dummy() []byte {
	s.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.cost)
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}
