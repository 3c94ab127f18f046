package identity

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/cortecaja/backend/internal/domain/shared"
)

// Role is the single authorization role carried by a user
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "GERENTE"
	RoleCashier Role = "CAJERO"
)

// IsValid checks if the role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleCashier:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// ParseRole normalizes user input, defaulting to CAJERO when empty
func ParseRole(s string) (Role, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return RoleCashier, nil
	}
	role := Role(s)
	if !role.IsValid() {
		return "", shared.NewValidationError(fmt.Sprintf("invalid role %q", s))
	}
	return role, nil
}

// PasswordHasher hashes and verifies secrets. Implementations must salt.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

// CredentialVerifier verifies a presented secret for an identity.
// It returns shared.ErrUnauthorized for unknown identities and bad secrets alike.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, secret string) (*User, error)
}

// User is an operator of the system: a cashier, a manager or an administrator
type User struct {
	shared.BaseEntity
	Email        string
	Name         string
	Role         Role
	PasswordHash string
}

// NewUser validates the inputs and stores a salted hash of password
func NewUser(email, name, password string, role Role, hasher PasswordHasher) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("name is required")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("name cannot exceed 200 characters")
	}
	if !role.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("invalid role %q", role))
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return &User{
		BaseEntity:   shared.NewBaseEntity(),
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: hash,
	}, nil
}

// VerifyPassword reports whether plain matches the stored hash
func (u *User) VerifyPassword(hasher PasswordHasher, plain string) bool {
	return hasher.Compare(u.PasswordHash, plain) == nil
}

// HasAnyRole reports whether the user holds one of roles
func (u *User) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

var (
	emailRegex     = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	hasLetterRegex = regexp.MustCompile(`[a-zA-Z]`)
	hasNumberRegex = regexp.MustCompile(`[0-9]`)
)

func validateEmail(email string) error {
	if email == "" {
		return shared.NewValidationError("email is required")
	}
	if len(email) > 200 {
		return shared.NewValidationError("email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewValidationError("invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewValidationError("password must be at least 8 characters")
	}
	// bcrypt truncates beyond 72 bytes
	if len(password) > 72 {
		return shared.NewValidationError("password cannot exceed 72 characters")
	}
	if !hasLetterRegex.MatchString(password) || !hasNumberRegex.MatchString(password) {
		return shared.NewValidationError("password must contain at least one letter and one number")
	}
	return nil
}
