package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cortecaja/backend/internal/domain/identity"
	"github.com/cortecaja/backend/internal/domain/shared"
	"github.com/cortecaja/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService handles user management operations
type UserService struct {
	userRepo  identity.UserRepository
	hasher    identity.PasswordHasher
	blacklist auth.TokenBlacklist
	// revokeTTL is how long a deleted user's tokens stay blacklisted,
	// normally the refresh token lifetime
	revokeTTL time.Duration
	logger    *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo identity.UserRepository,
	hasher identity.PasswordHasher,
	blacklist auth.TokenBlacklist,
	revokeTTL time.Duration,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		hasher:    hasher,
		blacklist: blacklist,
		revokeTTL: revokeTTL,
		logger:    logger,
	}
}

// List returns every user ordered by creation
func (s *UserService) List(ctx context.Context) ([]UserInfo, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]UserInfo, 0, len(users))
	for _, u := range users {
		result = append(result, ToUserInfo(u))
	}
	return result, nil
}

// GetByID returns one user
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	info := ToUserInfo(user)
	return &info, nil
}

// Create registers a user with a hashed password
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*UserInfo, error) {
	role, err := identity.ParseRole(input.Role)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "a user with this email already exists")
	}

	user, err := identity.NewUser(email, input.Name, input.Password, role, s.hasher)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", role.String()))

	info := ToUserInfo(user)
	return &info, nil
}

// Delete removes a user and revokes every token issued to them
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.blacklist.RevokeUser(ctx, id.String(), s.revokeTTL); err != nil {
		// the user row is already gone; refresh will fail on lookup anyway
		s.logger.Warn("Failed to revoke tokens of deleted user",
			zap.String("user_id", id.String()), zap.Error(err))
	}
	s.logger.Info("User deleted", zap.String("user_id", id.String()))
	return nil
}

// BootstrapAdmin creates an ADMIN account when no users exist yet.
// It returns false when users are already present.
func (s *UserService) BootstrapAdmin(ctx context.Context, email, name, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	_, err = s.Create(ctx, CreateUserInput{
		Email:    email,
		Name:     name,
		Password: password,
		Role:     identity.RoleAdmin.String(),
	})
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
