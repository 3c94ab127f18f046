package identity

import (
	"time"

	"github.com/cortecaja/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
	IP       string
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	Tokens TokenResult
	User   UserInfo
}

// TokenResult is an issued access/refresh token pair
type TokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// UserInfo is the public view of a user
type UserInfo struct {
	ID        uuid.UUID
	Email     string
	Name      string
	Role      identity.Role
	CreatedAt time.Time
}

// LogoutInput identifies the tokens to revoke
type LogoutInput struct {
	UserID uuid.UUID
	// AccessJTI and AccessTTL come from the validated access token
	AccessJTI string
	AccessTTL time.Duration
	// RefreshToken is optional; when present and valid it is revoked too
	RefreshToken string
}

// CreateUserInput contains input for creating a user
type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	// Role defaults to CAJERO when empty
	Role string
}

// ToUserInfo converts a domain user to UserInfo
func ToUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
