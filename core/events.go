package core

import (
	"sync"
	"time"
)

// Execution event types recorded over an instance's lifetime.
const (
	EventStarted   = "started"
	EventStopped   = "stopped"
	EventCrashed   = "crashed"
	EventRestarted = "restarted"
)

// ExecutionEvent is one entry in the lifecycle history of an instance.
type ExecutionEvent struct {
	InstanceID string
	EventType  string
	Timestamp  time.Time
	Details    map[string]string
}

// EventRecorder keeps an append-only in-memory log of execution events.
type EventRecorder struct {
	mu     sync.RWMutex
	events []ExecutionEvent
}

// NewEventRecorder returns an empty recorder.
func NewEventRecorder() *EventRecorder {
	return &EventRecorder{}
}

// Record appends an event, stamping it if the timestamp is zero.
func (r *EventRecorder) Record(ev ExecutionEvent) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// RecordStart appends a started event.
func (r *EventRecorder) RecordStart(instanceID string) {
	r.Record(ExecutionEvent{InstanceID: instanceID, EventType: EventStarted})
}

// RecordStop appends a stopped event.
func (r *EventRecorder) RecordStop(instanceID string) {
	r.Record(ExecutionEvent{InstanceID: instanceID, EventType: EventStopped})
}

// RecordCrash appends a crashed event carrying the error message.
func (r *EventRecorder) RecordCrash(instanceID, errMsg string) {
	r.Record(ExecutionEvent{
		InstanceID: instanceID,
		EventType:  EventCrashed,
		Details:    map[string]string{"error": errMsg},
	})
}

// RecordRestart appends a restarted event.
func (r *EventRecorder) RecordRestart(instanceID string) {
	r.Record(ExecutionEvent{InstanceID: instanceID, EventType: EventRestarted})
}

// Events returns a copy of all recorded events in order.
func (r *EventRecorder) Events() []ExecutionEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ExecutionEvent, len(r.events))
	copy(out, r.events)
	return out
}

// EventsForInstance returns the events recorded for one instance, in order.
func (r *EventRecorder) EventsForInstance(instanceID string) []ExecutionEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []ExecutionEvent
	for _, ev := range r.events {
		if ev.InstanceID == instanceID {
			out = append(out, ev)
		}
	}
	return out
}

// Clear drops all recorded events.
func (r *EventRecorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// CrashTracker counts crashes per instance.
type CrashTracker struct {
	mu      sync.Mutex
	crashes map[string]CrashInfo
}

// NewCrashTracker returns an empty tracker.
func NewCrashTracker() *CrashTracker {
	return &CrashTracker{crashes: make(map[string]CrashInfo)}
}

// RecordCrash increments the instance's crash count, stamps the crash time
// and returns the updated info.
func (t *CrashTracker) RecordCrash(instanceID string) CrashInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	info := t.crashes[instanceID]
	info.CrashCount++
	info.LastCrashTime = time.Now().UTC()
	t.crashes[instanceID] = info
	return info
}

// Get returns the crash info for an instance, if any crash was recorded.
func (t *CrashTracker) Get(instanceID string) (CrashInfo, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	info, ok := t.crashes[instanceID]
	return info, ok
}

// Reset forgets the crash history of an instance.
func (t *CrashTracker) Reset(instanceID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.crashes, instanceID)
}
