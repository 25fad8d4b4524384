package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRecorderOrdering(t *testing.T) {
	rec := NewEventRecorder()
	rec.RecordStart("i-1")
	rec.RecordCrash("i-1", "trap")
	rec.RecordStop("i-1")
	rec.RecordStart("i-2")

	events := rec.Events()
	require.Len(t, events, 4)
	assert.Equal(t, EventStarted, events[0].EventType)
	assert.Equal(t, EventCrashed, events[1].EventType)
	assert.Equal(t, "trap", events[1].Details["error"])
	assert.Equal(t, EventStopped, events[2].EventType)

	forOne := rec.EventsForInstance("i-1")
	require.Len(t, forOne, 3)
	forTwo := rec.EventsForInstance("i-2")
	require.Len(t, forTwo, 1)

	rec.Clear()
	assert.Empty(t, rec.Events())
}

func TestEventRecorderStampsTimestamps(t *testing.T) {
	rec := NewEventRecorder()
	rec.RecordStart("i-1")
	events := rec.Events()
	require.Len(t, events, 1)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestCrashTrackerCountsFromOne(t *testing.T) {
	tracker := NewCrashTracker()

	_, ok := tracker.Get("i-1")
	assert.False(t, ok)

	info := tracker.RecordCrash("i-1")
	assert.Equal(t, uint32(1), info.CrashCount)
	assert.False(t, info.LastCrashTime.IsZero())

	info = tracker.RecordCrash("i-1")
	assert.Equal(t, uint32(2), info.CrashCount)

	// Other instances are tracked independently.
	other := tracker.RecordCrash("i-2")
	assert.Equal(t, uint32(1), other.CrashCount)

	tracker.Reset("i-1")
	_, ok = tracker.Get("i-1")
	assert.False(t, ok)
}
