package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"hirelens/internal/domain"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/microcosm-cc/bluemonday"
)

const (
	minPasswordLen = 8
	maxNameLen     = 120
)

type authService struct {
	users     domain.UserRepository
	hasher    domain.PasswordHasher
	tokens    domain.TokenIssuer
	expiry    time.Duration
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

// NewAuthService creates an AuthService that stores users in users, hashes
// passwords with hasher and issues tokens valid for expiry.
func NewAuthService(users domain.UserRepository, hasher domain.PasswordHasher, tokens domain.TokenIssuer, expiry time.Duration) domain.AuthService {
	return &authService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		expiry:    expiry,
		sanitizer: bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, in domain.RegisterInput) (string, *domain.User, error) {
	email := normalizeEmail(in.Email)
	if err := validation.Validate(email, validation.Required, is.EmailFormat); err != nil {
		return "", nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLen {
		return "", nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}
	if !in.Role.Valid() {
		return "", nil, fmt.Errorf("%w: role must be %q or %q", domain.ErrInvalidInput, domain.RoleInterviewer, domain.RoleInterviewee)
	}
	name := s.clean(in.Name)
	if name == "" {
		return "", nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if len(name) > maxNameLen {
		return "", nil, fmt.Errorf("%w: name must be at most %d characters", domain.ErrInvalidInput, maxNameLen)
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return "", nil, err
	}
	hash, err := s.hasher.Hash(salt, in.Password)
	if err != nil {
		return "", nil, err
	}

	now := s.now().UTC()
	user := domain.NewUser(name, email, in.Role, s.clean(in.Company), s.clean(in.Position), now, now)
	user.PasswordHash = hash
	user.Salt = salt
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return "", nil, err
		}
		return "", nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(user, s.expiry)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to load user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user, s.expiry)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, user, nil
}

// clean strips markup and surrounding whitespace from free text profile fields.
// Entities escaped by the sanitizer are decoded again; output encoding happens
// at render time.
func (s *authService) clean(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(v)))
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
