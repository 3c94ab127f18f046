package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveHealth(t *testing.T, h *HealthHandler, path string) (*httptest.ResponseRecorder, APIResponse[HealthResponse]) {
	t.Helper()
	engine := gin.New()
	engine.GET("/health/live", h.Live)
	engine.GET("/health/ready", h.Ready)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var resp APIResponse[HealthResponse]
	decode(t, w, &resp)
	return w, resp
}

func TestHealthHandler_Live(t *testing.T) {
	h := NewHealthHandler("1.2.3", map[string]PingFunc{
		"database": func(context.Context) error { return errors.New("down") },
	})

	// liveness never consults dependencies
	w, resp := serveHealth(t, h, "/health/live")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", resp.Data.Status)
	assert.Equal(t, "1.2.3", resp.Data.Version)
	assert.NotEmpty(t, resp.Data.GoVersion)
}

func TestHealthHandler_Ready(t *testing.T) {
	t.Run("all dependencies up", func(t *testing.T) {
		db := newTestDB(t)
		sqlDB, err := db.DB()
		require.NoError(t, err)
		h := NewHealthHandler("1.2.3", map[string]PingFunc{"database": sqlDB.PingContext})

		w, resp := serveHealth(t, h, "/health/ready")
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, resp.Success)
		assert.Equal(t, map[string]string{"database": "ok"}, resp.Data.Checks)
	})

	t.Run("one dependency down", func(t *testing.T) {
		h := NewHealthHandler("1.2.3", map[string]PingFunc{
			"database": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		})

		w, resp := serveHealth(t, h, "/health/ready")
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.False(t, resp.Success)
		assert.Equal(t, "unhealthy", resp.Data.Status)
		assert.Equal(t, "ok", resp.Data.Checks["database"])
		assert.Equal(t, "error", resp.Data.Checks["redis"])
	})
}
