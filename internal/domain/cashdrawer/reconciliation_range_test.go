package cashdrawer_test

import (
	"errors"
	"testing"
	"time"

	"github.com/cortecaja/backend/internal/domain/cashdrawer"
	"github.com/cortecaja/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionAt(kind cashdrawer.SessionKind, at time.Time) *cashdrawer.Session {
	s := &cashdrawer.Session{Kind: kind, OpenedAt: at, State: cashdrawer.SessionStateOpen}
	s.ID = uuid.New()
	return s
}

func TestResolveRange_BetweenCheckpoints(t *testing.T) {
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	prevFinal := sessionAt(cashdrawer.SessionKindFinal, at(10, 0))
	final := sessionAt(cashdrawer.SessionKindFinal, at(14, 0))

	r, err := cashdrawer.ResolveRange(final, prevFinal, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, at(10, 0), r.Floor)
	assert.Equal(t, at(14, 0), r.Ceiling)
	assert.True(t, r.FloorFromPrevious())
	require.NotNil(t, r.PreviousFinalID)
	assert.Equal(t, prevFinal.ID, *r.PreviousFinalID)
}

func TestResolveRange_NoPreviousUsesLocalMidnight(t *testing.T) {
	final := sessionAt(cashdrawer.SessionKindFinal, time.Date(2024, 3, 5, 15, 0, 0, 0, time.UTC))

	r, err := cashdrawer.ResolveRange(final, nil, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), r.Floor)
	assert.Equal(t, final.OpenedAt, r.Ceiling)
	assert.False(t, r.FloorFromPrevious())
	assert.Nil(t, r.PreviousFinalID)
}

func TestResolveRange_MidnightInConfiguredZone(t *testing.T) {
	loc := time.FixedZone("CST", -6*60*60)

	// 2024-03-05 03:00 UTC is still 2024-03-04 at UTC-6
	final := sessionAt(cashdrawer.SessionKindFinal, time.Date(2024, 3, 5, 3, 0, 0, 0, time.UTC))

	r, err := cashdrawer.ResolveRange(final, nil, loc)
	require.NoError(t, err)
	assert.True(t, r.Floor.Equal(time.Date(2024, 3, 4, 0, 0, 0, 0, loc)))
}

func TestResolveRange_RejectsNonFinal(t *testing.T) {
	shift := sessionAt(cashdrawer.SessionKindShift, time.Now())

	_, err := cashdrawer.ResolveRange(shift, nil, time.UTC)
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	_, err = cashdrawer.ResolveRange(nil, nil, time.UTC)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestResolveRange_RejectsLaterPrevious(t *testing.T) {
	now := time.Now()
	final := sessionAt(cashdrawer.SessionKindFinal, now)
	later := sessionAt(cashdrawer.SessionKindFinal, now.Add(time.Minute))

	_, err := cashdrawer.ResolveRange(final, later, time.UTC)
	assert.True(t, errors.Is(err, shared.ErrValidation))
}
