package handler

import (
	"net/http"
	"testing"

	"github.com/cortecaja/backend/internal/domain/identity"
	"github.com/cortecaja/backend/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserHandler(t *testing.T) {
	app := newTestApp(t)
	admin := app.createUser(t, "admin@example.com", "Admin", identity.RoleAdmin)
	app.createUser(t, "gerente@example.com", "Gerardo", identity.RoleManager)
	adminToken := app.tokenFor(t, "admin@example.com")
	managerToken := app.tokenFor(t, "gerente@example.com")

	var created UserResponse
	t.Run("create defaults to cashier", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/v1/users", adminToken, CreateUserRequest{
			Email:    "Nuevo@Example.com",
			Name:     "Nuevo Cajero",
			Password: testPassword,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var resp APIResponse[UserResponse]
		decode(t, w, &resp)
		created = resp.Data
		assert.Equal(t, "nuevo@example.com", created.Email)
		assert.Equal(t, "CAJERO", created.Role)

		// the new account can log in
		assert.NotEmpty(t, app.tokenFor(t, "nuevo@example.com"))
	})

	t.Run("duplicate email", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/v1/users", adminToken, CreateUserRequest{
			Email:    "nuevo@example.com",
			Name:     "Otro",
			Password: testPassword,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeAlreadyExists, errorCode(t, w))
	})

	t.Run("unknown role", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/v1/users", adminToken, CreateUserRequest{
			Email:    "raro@example.com",
			Name:     "Raro",
			Password: testPassword,
			Role:     "AUDITOR",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("list", func(t *testing.T) {
		w := app.do(t, http.MethodGet, "/api/v1/users", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp APIResponse[[]UserResponse]
		decode(t, w, &resp)
		assert.Len(t, resp.Data, 3)
		assert.Equal(t, int64(3), resp.Meta.Total)
	})

	t.Run("managers cannot administer users", func(t *testing.T) {
		w := app.do(t, http.MethodGet, "/api/v1/users", managerToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admins cannot delete themselves", func(t *testing.T) {
		w := app.do(t, http.MethodDelete, "/api/v1/users/"+admin.ID.String(), adminToken, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w := app.do(t, http.MethodDelete, "/api/v1/users/"+created.ID.String(), adminToken, nil)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		w = app.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: "nuevo@example.com", Password: testPassword})
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = app.do(t, http.MethodDelete, "/api/v1/users/"+uuid.NewString(), adminToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
