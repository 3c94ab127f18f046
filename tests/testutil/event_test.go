package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordingHandler(t *testing.T) {
	h := NewRecordingHandler("CashSessionOpened")
	assert.Equal(t, []string{"CashSessionOpened"}, h.EventTypes())

	event := NewTestEvent("CashSessionOpened")
	require.NoError(t, h.Handle(context.Background(), event))
	assert.Equal(t, 1, h.Count())
	assert.Equal(t, event.EventID(), h.Handled()[0].EventID())

	h.Fail(errors.New("down"))
	assert.EqualError(t, h.Handle(context.Background(), event), "down")
	assert.Equal(t, 2, h.Count())
}

func TestNewTestEvent(t *testing.T) {
	a := NewTestEvent("Probe")
	b := NewTestEvent("Probe")
	assert.Equal(t, "Probe", a.EventType())
	assert.Equal(t, "TestAggregate", a.AggregateType())
	assert.NotEqual(t, a.EventID(), b.EventID())
}

func TestWaitForEventCount(t *testing.T) {
	h := NewRecordingHandler("Probe")
	go func() {
		for i := 0; i < 3; i++ {
			_ = h.Handle(context.Background(), NewTestEvent("Probe"))
		}
	}()
	assert.True(t, WaitForEventCount(t, h, 3, time.Second))
	assert.False(t, WaitForEventCount(t, NewRecordingHandler(), 1, 10*time.Millisecond))
}
