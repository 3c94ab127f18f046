package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cortecaja/backend/internal/domain/identity"
	"github.com/cortecaja/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher hashes passwords with bcrypt at a fixed cost
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher; cost outside bcrypt's range falls back to the default
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns a salted bcrypt hash of plain
func (h *BcryptHasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hash), nil
}

// Compare returns nil when plain matches hash
func (h *BcryptHasher) Compare(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

// BcryptCredentialVerifier checks email and password against stored bcrypt hashes
type BcryptCredentialVerifier struct {
	users  identity.UserRepository
	hasher identity.PasswordHasher
	// dummyHash keeps response time similar for unknown emails
	dummyHash string
}

// NewBcryptCredentialVerifier creates a verifier over the user repository
func NewBcryptCredentialVerifier(users identity.UserRepository, hasher *BcryptHasher) *BcryptCredentialVerifier {
	dummy, _ := hasher.Hash("not-a-real-password-0")
	return &BcryptCredentialVerifier{users: users, hasher: hasher, dummyHash: dummy}
}

// Verify returns the user when secret matches. Unknown emails and wrong
// passwords both yield shared.ErrUnauthorized.
func (v *BcryptCredentialVerifier) Verify(ctx context.Context, email, secret string) (*identity.User, error) {
	invalid := shared.NewDomainError(shared.CodeUnauthorized, "invalid email or password")

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || secret == "" {
		return nil, invalid
	}

	user, err := v.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			_ = v.hasher.Compare(v.dummyHash, secret)
			return nil, invalid
		}
		return nil, err
	}
	if !user.VerifyPassword(v.hasher, secret) {
		return nil, invalid
	}
	return user, nil
}

var (
	_ identity.PasswordHasher     = (*BcryptHasher)(nil)
	_ identity.CredentialVerifier = (*BcryptCredentialVerifier)(nil)
)
