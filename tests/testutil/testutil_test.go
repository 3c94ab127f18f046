package testutil

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cortecaja/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockDB_ScriptedQuery(t *testing.T) {
	mockDB := NewMockDB(t)
	mockDB.Mock.ExpectQuery(`SELECT count\(\*\) FROM cash_sessions`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	var n int64
	require.NoError(t, mockDB.DB.Raw("SELECT count(*) FROM cash_sessions").Scan(&n).Error)
	assert.Equal(t, int64(3), n)
	mockDB.ExpectationsWereMet(t)
}

func TestMockDB_ScriptedError(t *testing.T) {
	mockDB := NewMockDB(t)
	mockDB.Mock.ExpectExec(`DELETE FROM cash_sessions`).WillReturnError(errors.New("boom"))

	err := mockDB.DB.Exec("DELETE FROM cash_sessions WHERE id = ?", NewTestUUID("s")).Error
	assert.EqualError(t, err, "boom")
	mockDB.ExpectationsWereMet(t)
}

func TestNewTestUUID(t *testing.T) {
	assert.Equal(t, NewTestUUID("a"), NewTestUUID("a"))
	assert.NotEqual(t, NewTestUUID("a"), NewTestUUID("b"))
	assert.NotEqual(t, TestCashierID(), TestManagerID())
}

func TestContext(t *testing.T) {
	ctx := Context(t, 20*time.Millisecond)
	_, ok := ctx.Deadline()
	assert.True(t, ok)

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled")
	}
}

func TestMoney(t *testing.T) {
	assert.True(t, decimal.NewFromFloat(12.5).Equal(Money(t, "12.50")))
	assert.True(t, AssertMoney(t, "10", Money(t, "10.00")))
}

func TestWaitForCondition(t *testing.T) {
	calls := 0
	ok := WaitForCondition(t, func() bool {
		calls++
		return calls == 3
	}, time.Second, time.Millisecond)
	assert.True(t, ok)
	assert.Equal(t, 3, calls)

	assert.False(t, WaitForCondition(t, func() bool { return false }, 5*time.Millisecond, time.Millisecond))
}

func TestRequireEventually(t *testing.T) {
	start := time.Now()
	RequireEventually(t, func() bool { return time.Since(start) > 5*time.Millisecond }, time.Second, time.Millisecond)
}

func TestAssertNever(t *testing.T) {
	AssertNever(t, func() bool { return false }, 10*time.Millisecond, time.Millisecond)
}

func testEngine() *gin.Engine {
	engine := gin.New()
	engine.POST("/echo", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeValidation, err.Error()))
			return
		}
		body["auth"] = c.GetHeader("Authorization")
		c.JSON(http.StatusCreated, dto.NewSuccessResponse(body))
	})
	engine.GET("/missing", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(dto.ErrCodeNotFound, "nope"))
	})
	return engine
}

func TestAPIClient_RequireData(t *testing.T) {
	client := NewAPIClient(testEngine()).As("abc")

	w := client.Do(t, http.MethodPost, "/echo", map[string]string{"label": "matutino"})
	data := RequireData[map[string]string](t, w, http.StatusCreated)
	assert.Equal(t, "matutino", data["label"])
	assert.Equal(t, "Bearer abc", data["auth"])
}

func TestAPIClient_AssertError(t *testing.T) {
	client := NewAPIClient(testEngine())

	AssertError(t, client.Do(t, http.MethodGet, "/missing", nil), http.StatusNotFound, dto.ErrCodeNotFound)

	w := client.Do(t, http.MethodPost, "/echo", nil)
	env := DecodeEnvelope(t, w)
	assert.False(t, env.Success)
}
