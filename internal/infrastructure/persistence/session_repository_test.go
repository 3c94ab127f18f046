package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/cortecaja/backend/internal/domain/cashdrawer"
	"github.com/cortecaja/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormSessionRepository_SaveAndFind(t *testing.T) {
	repo := NewGormSessionRepository(newSQLiteDB(t))
	ctx := context.Background()

	s := newSession(t, cashdrawer.SessionKindShift, "Ana López", at(9, 0))
	require.NoError(t, repo.Save(ctx, s))

	found, err := repo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, found.ID)
	assert.Equal(t, "Ana López", found.CashierName)
	assert.True(t, found.StartingFloat.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, cashdrawer.SessionStateOpen, found.State)
	assert.Equal(t, cashdrawer.DefaultNotes, found.Notes)
	assert.Nil(t, found.FinalAmount)
	assert.Nil(t, found.ClosedAt)
	assert.True(t, found.OpenedAt.Equal(at(9, 0)))

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormSessionRepository_CloseIfOpen(t *testing.T) {
	repo := NewGormSessionRepository(newSQLiteDB(t))
	ctx := context.Background()

	s := newSession(t, cashdrawer.SessionKindShift, "Ana", at(9, 0))
	require.NoError(t, repo.Save(ctx, s))

	closedAt := at(17, 0)
	ok, err := repo.CloseIfOpen(ctx, s.ID, decimal.NewFromInt(2500), closedAt)
	require.NoError(t, err)
	assert.True(t, ok)

	found, err := repo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, cashdrawer.SessionStateClosed, found.State)
	require.NotNil(t, found.FinalAmount)
	assert.True(t, found.FinalAmount.Equal(decimal.NewFromInt(2500)))
	require.NotNil(t, found.ClosedAt)
	assert.True(t, found.ClosedAt.Equal(closedAt))
	assert.NoError(t, found.CheckInvariants())

	ok, err = repo.CloseIfOpen(ctx, s.ID, decimal.NewFromInt(1), closedAt)
	require.NoError(t, err)
	assert.False(t, ok, "second close must not write")

	ok, err = repo.CloseIfOpen(ctx, uuid.New(), decimal.NewFromInt(1), closedAt)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGormSessionRepository_DeleteCascadesMovements(t *testing.T) {
	db := newSQLiteDB(t)
	sessions := NewGormSessionRepository(db)
	movements := NewGormMovementRepository(db)
	ctx := context.Background()

	s := newSession(t, cashdrawer.SessionKindShift, "Ana", at(9, 0))
	require.NoError(t, sessions.Save(ctx, s))
	for _, v := range []string{"100", "200"} {
		m, err := cashdrawer.NewMovement(s.ID, cashdrawer.DirectionInflow, cashdrawer.CategoryCashSales, amount(v))
		require.NoError(t, err)
		ok, err := movements.AppendIfSessionOpen(ctx, m)
		require.NoError(t, err)
		require.True(t, ok)
	}

	require.NoError(t, sessions.Delete(ctx, s.ID))

	_, err := sessions.FindByID(ctx, s.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	left, err := movements.FindBySession(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	assert.ErrorIs(t, sessions.Delete(ctx, s.ID), shared.ErrNotFound)
}

func TestGormSessionRepository_FindAll(t *testing.T) {
	repo := NewGormSessionRepository(newSQLiteDB(t))
	ctx := context.Background()

	early := newSession(t, cashdrawer.SessionKindShift, "Ana López", at(8, 0))
	late := newSession(t, cashdrawer.SessionKindShift, "Bruno_Díaz", at(15, 0))
	final := newSession(t, cashdrawer.SessionKindFinal, "Gerente", at(20, 0))
	nextDay := newSession(t, cashdrawer.SessionKindShift, "Ana López", at(8, 0).Add(24*time.Hour))
	for _, s := range []*cashdrawer.Session{early, late, final, nextDay} {
		require.NoError(t, repo.Save(ctx, s))
	}

	t.Run("no filter returns newest first", func(t *testing.T) {
		all, err := repo.FindAll(ctx, cashdrawer.SessionFilter{})
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, nextDay.ID, all[0].ID)
		assert.Equal(t, early.ID, all[3].ID)
	})

	t.Run("day window", func(t *testing.T) {
		from := at(0, 0)
		to := from.Add(24 * time.Hour)
		day, err := repo.FindAll(ctx, cashdrawer.SessionFilter{OpenedFrom: &from, OpenedTo: &to})
		require.NoError(t, err)
		assert.Len(t, day, 3)
	})

	t.Run("cashier substring is case-insensitive", func(t *testing.T) {
		list, err := repo.FindAll(ctx, cashdrawer.SessionFilter{Cashier: "ana"})
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("like wildcards are literal", func(t *testing.T) {
		list, err := repo.FindAll(ctx, cashdrawer.SessionFilter{Cashier: "o_d"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, late.ID, list[0].ID)

		list, err = repo.FindAll(ctx, cashdrawer.SessionFilter{Cashier: "a_l"})
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("kind filter", func(t *testing.T) {
		list, err := repo.FindAll(ctx, cashdrawer.SessionFilter{Kind: cashdrawer.SessionKindFinal})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, final.ID, list[0].ID)
	})

	t.Run("whitelisted sort column", func(t *testing.T) {
		list, err := repo.FindAll(ctx, cashdrawer.SessionFilter{SortBy: "cashier_name", SortOrder: "asc"})
		require.NoError(t, err)
		require.Len(t, list, 4)
		assert.Equal(t, "Ana López", list[0].CashierName)
		assert.Equal(t, final.ID, list[3].ID)
	})

	t.Run("unknown sort column keeps newest first", func(t *testing.T) {
		list, err := repo.FindAll(ctx, cashdrawer.SessionFilter{SortBy: "notes; DROP TABLE cash_sessions"})
		require.NoError(t, err)
		require.Len(t, list, 4)
		assert.Equal(t, nextDay.ID, list[0].ID)
	})
}

func TestGormSessionRepository_RangeQueries(t *testing.T) {
	repo := NewGormSessionRepository(newSQLiteDB(t))
	ctx := context.Background()

	morningFinal := newSession(t, cashdrawer.SessionKindFinal, "Gerente", at(10, 0))
	shiftBefore := newSession(t, cashdrawer.SessionKindShift, "Ana", at(9, 0))
	shiftAtFloor := newSession(t, cashdrawer.SessionKindShift, "Ana", at(10, 0))
	shiftInside := newSession(t, cashdrawer.SessionKindShift, "Bruno", at(12, 0))
	eveningFinal := newSession(t, cashdrawer.SessionKindFinal, "Gerente", at(14, 0))
	shiftAtCeiling := newSession(t, cashdrawer.SessionKindShift, "Carla", at(14, 0))
	shiftAfter := newSession(t, cashdrawer.SessionKindShift, "Carla", at(15, 0))
	for _, s := range []*cashdrawer.Session{morningFinal, shiftBefore, shiftAtFloor, shiftInside, eveningFinal, shiftAtCeiling, shiftAfter} {
		require.NoError(t, repo.Save(ctx, s))
	}

	prev, err := repo.FindPreviousFinal(ctx, eveningFinal)
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, morningFinal.ID, prev.ID)

	none, err := repo.FindPreviousFinal(ctx, morningFinal)
	require.NoError(t, err)
	assert.Nil(t, none)

	shifts, err := repo.FindShiftsInRange(ctx, at(10, 0), at(14, 0))
	require.NoError(t, err)
	ids := make([]uuid.UUID, len(shifts))
	for i, s := range shifts {
		ids[i] = s.ID
	}
	assert.Equal(t, []uuid.UUID{shiftInside.ID, shiftAtCeiling.ID}, ids)
}

func shiftOpenings(shifts []*cashdrawer.Session) []time.Time {
	out := make([]time.Time, len(shifts))
	for i, s := range shifts {
		out[i] = s.OpenedAt.UTC()
	}
	return out
}

func TestGormSessionRepository_RangeBetweenCheckpoints(t *testing.T) {
	repo := NewGormSessionRepository(newSQLiteDB(t))
	ctx := context.Background()
	day := func(h, m int) time.Time { return time.Date(2024, 3, 5, h, m, 0, 0, time.UTC) }

	prevFinal := newSession(t, cashdrawer.SessionKindFinal, "Gerente", day(10, 0))
	final := newSession(t, cashdrawer.SessionKindFinal, "Gerente", day(14, 0))
	stored := []*cashdrawer.Session{
		prevFinal,
		final,
		newSession(t, cashdrawer.SessionKindShift, "Ana", day(14, 30)),
		newSession(t, cashdrawer.SessionKindShift, "Ana", day(12, 0)),
		newSession(t, cashdrawer.SessionKindShift, "Bruno", day(10, 30)),
		newSession(t, cashdrawer.SessionKindShift, "Carla", day(13, 59)),
		newSession(t, cashdrawer.SessionKindShift, "Bruno", day(10, 0)),
	}
	for _, s := range stored {
		require.NoError(t, repo.Save(ctx, s))
	}

	previous, err := repo.FindPreviousFinal(ctx, final)
	require.NoError(t, err)
	require.NotNil(t, previous)
	r, err := cashdrawer.ResolveRange(final, previous, time.UTC)
	require.NoError(t, err)
	assert.True(t, r.Floor.Equal(day(10, 0)))

	shifts, err := repo.FindShiftsInRange(ctx, r.Floor, r.Ceiling)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day(10, 30), day(12, 0), day(13, 59)}, shiftOpenings(shifts))
}

func TestGormSessionRepository_RangeFromMidnight(t *testing.T) {
	repo := NewGormSessionRepository(newSQLiteDB(t))
	ctx := context.Background()
	ts := func(d, h, m, s int) time.Time { return time.Date(2024, 3, d, h, m, s, 0, time.UTC) }

	final := newSession(t, cashdrawer.SessionKindFinal, "Gerente", ts(5, 15, 0, 0))
	stored := []*cashdrawer.Session{
		final,
		newSession(t, cashdrawer.SessionKindShift, "Ana", ts(5, 0, 0, 0)),
		newSession(t, cashdrawer.SessionKindShift, "Ana", ts(5, 0, 0, 1)),
		newSession(t, cashdrawer.SessionKindShift, "Bruno", ts(5, 15, 0, 0)),
		newSession(t, cashdrawer.SessionKindShift, "Bruno", ts(4, 23, 59, 0)),
		newSession(t, cashdrawer.SessionKindShift, "Carla", ts(5, 15, 0, 1)),
	}
	for _, s := range stored {
		require.NoError(t, repo.Save(ctx, s))
	}

	previous, err := repo.FindPreviousFinal(ctx, final)
	require.NoError(t, err)
	require.Nil(t, previous)
	r, err := cashdrawer.ResolveRange(final, nil, time.UTC)
	require.NoError(t, err)

	shifts, err := repo.FindShiftsInRange(ctx, r.Floor, r.Ceiling)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{ts(5, 0, 0, 1), ts(5, 15, 0, 0)}, shiftOpenings(shifts))
}

func TestGormSessionRepository_SaveRejectsBrokenCloseFields(t *testing.T) {
	repo := NewGormSessionRepository(newSQLiteDB(t))
	ctx := context.Background()

	s := newSession(t, cashdrawer.SessionKindShift, "Ana", at(9, 0))
	s.State = cashdrawer.SessionStateClosed

	err := repo.Save(ctx, s)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = repo.FindByID(ctx, s.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
