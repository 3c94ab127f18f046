package identity

import (
	"errors"
	"testing"

	"github.com/cortecaja/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reverseHasher is a deterministic stand-in; the real bcrypt hasher lives in infrastructure/auth.
type reverseHasher struct{}

func (reverseHasher) Hash(plain string) (string, error) {
	r := []rune(plain)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return "rev:" + string(r), nil
}

func (h reverseHasher) Compare(hash, plain string) error {
	want, _ := h.Hash(plain)
	if want != hash {
		return errors.New("mismatch")
	}
	return nil
}

func TestNewUser(t *testing.T) {
	t.Run("normalizes email and hashes password", func(t *testing.T) {
		u, err := NewUser("  Gerente@Demo.com ", "Laura", "secreto123", RoleManager, reverseHasher{})

		require.NoError(t, err)
		assert.Equal(t, "gerente@demo.com", u.Email)
		assert.Equal(t, RoleManager, u.Role)
		assert.NotEqual(t, "secreto123", u.PasswordHash)
		assert.True(t, u.VerifyPassword(reverseHasher{}, "secreto123"))
		assert.False(t, u.VerifyPassword(reverseHasher{}, "otro12345"))
	})

	tests := []struct {
		name     string
		email    string
		userName string
		password string
		role     Role
	}{
		{"empty email", "", "Ana", "secreto123", RoleCashier},
		{"bad email", "not-an-email", "Ana", "secreto123", RoleCashier},
		{"empty name", "a@b.co", " ", "secreto123", RoleCashier},
		{"short password", "a@b.co", "Ana", "abc1", RoleCashier},
		{"password without digits", "a@b.co", "Ana", "abcdefghij", RoleCashier},
		{"unknown role", "a@b.co", "Ana", "secreto123", Role("ROOT")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.email, tt.userName, tt.password, tt.role, reverseHasher{})
			assert.True(t, errors.Is(err, shared.ErrValidation), "got %v", err)
		})
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("")
	require.NoError(t, err)
	assert.Equal(t, RoleCashier, r)

	r, err = ParseRole("gerente")
	require.NoError(t, err)
	assert.Equal(t, RoleManager, r)

	_, err = ParseRole("superuser")
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestUser_HasAnyRole(t *testing.T) {
	u := &User{Role: RoleCashier}
	assert.True(t, u.HasAnyRole(RoleAdmin, RoleCashier))
	assert.False(t, u.HasAnyRole(RoleAdmin, RoleManager))
}
