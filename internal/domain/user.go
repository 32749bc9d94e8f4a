package domain

import (
	"context"
	"time"
)

// Role tags a User with the dashboard and capabilities it gets.
type Role string

const (
	RoleInterviewer Role = "interviewer"
	RoleInterviewee Role = "interviewee"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleInterviewer || r == RoleInterviewee
}

// User represents a registered user
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	Role         Role      `json:"role"`
	Company      string    `json:"company,omitempty"`
	Position     string    `json:"position,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
// Company and position are only kept for interviewers.
func NewUser(name, email string, role Role, company, position string, createdAt, updatedAt time.Time) *User {
	u := &User{
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if role == RoleInterviewer {
		u.Company = company
		u.Position = position
	}
	return u
}

// IsInterviewer reports whether the user can publish availability and be booked.
func (u *User) IsInterviewer() bool { return u.Role == RoleInterviewer }

// IsInterviewee reports whether the user can reserve slots.
func (u *User) IsInterviewee() bool { return u.Role == RoleInterviewee }

// PublicProfile returns the fields a counterpart may see.
func (u *User) PublicProfile() *PublicProfile {
	p := &PublicProfile{ID: u.ID, Name: u.Name, Role: u.Role}
	if u.IsInterviewer() {
		p.Company = u.Company
		p.Position = u.Position
	}
	return p
}

// PublicProfile is the part of a User shown to other users.
// swagger:model PublicProfile
type PublicProfile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	Company  string `json:"company,omitempty"`
	Position string `json:"position,omitempty"`
}

// Principal is the verified identity attached to an authenticated request.
type Principal struct {
	UserID string
	Role   Role
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(user *User, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated principal.
type TokenVerifier interface {
	Verify(token string) (Principal, error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	// Create stores the user and sets its ID. Returns ErrDuplicateEmail if the email is taken.
	Create(ctx context.Context, user *User) error
	// GetByEmail returns ErrNotFound when no user has the email.
	GetByEmail(ctx context.Context, email string) (*User, error)
	// GetByID returns ErrNotFound when the user does not exist.
	GetByID(ctx context.Context, id string) (*User, error)
	ListByRole(ctx context.Context, role Role) ([]*User, error)
}

// RegisterInput holds the fields accepted at sign up.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     Role
	Company  string
	Position string
}

// AuthService defines sign up and login.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (token string, user *User, err error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
}
