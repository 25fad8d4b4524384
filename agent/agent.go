// Package agent implements the node agent: local instance lifecycle on a
// Wasm engine, crash detection with restart-policy evaluation, capability
// invocation and status reporting to the control plane.
package agent

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/wasmatrix/wasmatrix/core"
)

type instanceRecord struct {
	handle     Handle
	moduleHash string
	createdAt  time.Time
}

// Agent manages the Wasm instances running on one node. Status is purely
// observed: an instance is crashed if marked so, else running if live, else
// stopped.
type Agent struct {
	nodeID  string
	engine  Engine
	events  *core.EventRecorder
	crashes *core.CrashTracker

	mu        sync.RWMutex
	instances map[string]*instanceRecord
	crashed   map[string]struct{}
}

// NewAgent returns an agent hosting instances on the given engine.
func NewAgent(nodeID string, engine Engine, events *core.EventRecorder) *Agent {
	if events == nil {
		events = core.NewEventRecorder()
	}
	return &Agent{
		nodeID:    nodeID,
		engine:    engine,
		events:    events,
		crashes:   core.NewCrashTracker(),
		instances: make(map[string]*instanceRecord),
		crashed:   make(map[string]struct{}),
	}
}

// NodeID returns the agent's node id.
func (a *Agent) NodeID() string { return a.nodeID }

// Events returns the agent's event recorder.
func (a *Agent) Events() *core.EventRecorder { return a.events }

// StartInstance validates the module bytes, instantiates the module and
// records a started event.
func (a *Agent) StartInstance(ctx context.Context, spec InstanceSpec) error {
	if spec.InstanceID == "" {
		return fmt.Errorf("instance id is empty")
	}
	if err := core.ValidateModuleBytes(spec.ModuleBytes); err != nil {
		return err
	}

	// The lock is held across instantiation so a concurrent stop either runs
	// before the start (not found) or after the handle is stored.
	a.mu.Lock()
	defer a.mu.Unlock()

	handle, err := a.engine.Instantiate(ctx, spec)
	if err != nil {
		return fmt.Errorf("instantiate %s: %w", spec.InstanceID, err)
	}

	sum := md5.Sum(spec.ModuleBytes)
	a.instances[spec.InstanceID] = &instanceRecord{
		handle:     handle,
		moduleHash: hex.EncodeToString(sum[:]),
		createdAt:  time.Now().UTC(),
	}
	a.events.RecordStart(spec.InstanceID)
	return nil
}

// StopInstance tears the instance down, clears any crashed marker and
// records a stopped event. It returns core.ErrNotFound when the instance is
// not live.
func (a *Agent) StopInstance(_ context.Context, instanceID string) error {
	a.mu.Lock()
	rec, ok := a.instances[instanceID]
	if !ok {
		a.mu.Unlock()
		return fmt.Errorf("instance %q: %w", instanceID, core.ErrNotFound)
	}
	delete(a.instances, instanceID)
	delete(a.crashed, instanceID)
	a.mu.Unlock()

	a.events.RecordStop(instanceID)
	return rec.handle.Close()
}

// Status reports the observed status of an instance. Crashed takes
// precedence over running; anything unknown is stopped.
func (a *Agent) Status(instanceID string) core.InstanceStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if _, ok := a.crashed[instanceID]; ok {
		return core.StatusCrashed
	}
	if _, ok := a.instances[instanceID]; ok {
		return core.StatusRunning
	}
	return core.StatusStopped
}

// List returns the ids of all instances the agent knows about, live or
// crashed.
func (a *Agent) List() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	seen := make(map[string]struct{}, len(a.instances)+len(a.crashed))
	out := make([]string, 0, len(a.instances)+len(a.crashed))
	for id := range a.instances {
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for id := range a.crashed {
		if _, ok := seen[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// Metadata returns the metadata of a live instance.
func (a *Agent) Metadata(instanceID string) (core.InstanceMetadata, bool) {
	a.mu.RLock()
	rec, ok := a.instances[instanceID]
	a.mu.RUnlock()
	if !ok {
		return core.InstanceMetadata{}, false
	}
	return core.InstanceMetadata{
		InstanceID:    instanceID,
		ModuleHash:    rec.moduleHash,
		Status:        a.Status(instanceID),
		CreatedAt:     rec.createdAt,
		RestartPolicy: rec.handle.Spec().RestartPolicy,
		NodeID:        a.nodeID,
	}, true
}

// OnCrash records the crash (event, marker, crash count) and evaluates the
// instance's restart policy. It returns the delay before a restart attempt
// and false when the instance must stay down or is no longer known.
func (a *Agent) OnCrash(instanceID string, cause error) (time.Duration, bool) {
	msg := "unknown"
	if cause != nil {
		msg = cause.Error()
	}
	a.events.RecordCrash(instanceID, msg)

	a.mu.Lock()
	a.crashed[instanceID] = struct{}{}
	rec, ok := a.instances[instanceID]
	a.mu.Unlock()

	info := a.crashes.RecordCrash(instanceID)
	if !ok {
		return 0, false
	}
	return rec.handle.Spec().RestartPolicy.ShouldRestart(info.CrashCount)
}

// Restart stops a crashed instance and starts it again with the same
// module, policy and capabilities, recording a restarted event last.
func (a *Agent) Restart(ctx context.Context, instanceID string) error {
	a.mu.Lock()
	rec, ok := a.instances[instanceID]
	if !ok {
		a.mu.Unlock()
		return fmt.Errorf("instance %q: %w", instanceID, core.ErrNotFound)
	}
	spec := rec.handle.Spec()
	delete(a.crashed, instanceID)
	a.mu.Unlock()

	if err := a.StopInstance(ctx, instanceID); err != nil {
		return fmt.Errorf("restart stop %s: %w", instanceID, err)
	}
	if err := a.StartInstance(ctx, spec); err != nil {
		return fmt.Errorf("restart start %s: %w", instanceID, err)
	}
	a.events.RecordRestart(instanceID)
	return nil
}

// CrashInfo returns the crash history of an instance, if any.
func (a *Agent) CrashInfo(instanceID string) (core.CrashInfo, bool) {
	return a.crashes.Get(instanceID)
}
