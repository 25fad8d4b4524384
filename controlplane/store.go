// Package controlplane implements the metadata authority of the cluster:
// the instance store, node routing and dispatch, heartbeat ingestion, crash
// bookkeeping and the optional etcd presence mirror.
package controlplane

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wasmatrix/wasmatrix/core"
)

// Store is the authoritative in-memory record of every instance the control
// plane manages. Instance state deliberately never leaves process memory;
// recovery rebuilds it from the node agents.
type Store struct {
	events  *core.EventRecorder
	crashes *core.CrashTracker

	mu           sync.RWMutex
	instances    map[string]core.InstanceMetadata
	capabilities map[string][]core.CapabilityAssignment
	crashed      map[string]struct{}
}

// NewStore returns an empty store recording lifecycle events on the given
// recorder (a fresh one when nil).
func NewStore(events *core.EventRecorder) *Store {
	if events == nil {
		events = core.NewEventRecorder()
	}
	return &Store{
		events:       events,
		crashes:      core.NewCrashTracker(),
		instances:    make(map[string]core.InstanceMetadata),
		capabilities: make(map[string][]core.CapabilityAssignment),
		crashed:      make(map[string]struct{}),
	}
}

// Events returns the store's event recorder.
func (s *Store) Events() *core.EventRecorder { return s.events }

// CreateInstance validates the module, mints an instance id and records the
// instance as starting. Capabilities are stored only when non-empty.
func (s *Store) CreateInstance(moduleBytes []byte, policy core.RestartPolicy, caps []core.CapabilityAssignment) (string, error) {
	if err := core.ValidateModuleBytes(moduleBytes); err != nil {
		return "", core.NewErrorResponse(core.CodeInvalidRequest, err.Error())
	}
	if len(moduleBytes) > core.MaxModuleBytes {
		return "", core.NewErrorResponse(core.CodeInvalidRequest,
			fmt.Sprintf("module is %d bytes, limit is %d", len(moduleBytes), core.MaxModuleBytes))
	}

	instanceID := uuid.NewString()
	sum := md5.Sum(moduleBytes)
	md := core.InstanceMetadata{
		InstanceID:    instanceID,
		ModuleHash:    hex.EncodeToString(sum[:]),
		Status:        core.StatusStarting,
		CreatedAt:     time.Now().UTC(),
		RestartPolicy: policy,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances[instanceID] = md
	if len(caps) > 0 {
		stored := make([]core.CapabilityAssignment, len(caps))
		copy(stored, caps)
		for i := range stored {
			stored[i].InstanceID = instanceID
		}
		s.capabilities[instanceID] = stored
	}
	return instanceID, nil
}

// StopInstance marks an instance stopped.
func (s *Store) StopInstance(instanceID string) error {
	if instanceID == "" {
		return core.NewErrorResponse(core.CodeInvalidRequest, "instance id is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	md, ok := s.instances[instanceID]
	if !ok {
		return core.NewErrorResponse(core.CodeInstanceNotFound, fmt.Sprintf("instance %q not found", instanceID))
	}
	md.Status = core.StatusStopped
	s.instances[instanceID] = md
	return nil
}

// QueryInstance returns the stored metadata for an instance.
func (s *Store) QueryInstance(instanceID string) (core.InstanceMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	md, ok := s.instances[instanceID]
	if !ok {
		return core.InstanceMetadata{}, core.NewErrorResponse(core.CodeInstanceNotFound, fmt.Sprintf("instance %q not found", instanceID))
	}
	return md, nil
}

// Instances returns a copy of all stored instance metadata.
func (s *Store) Instances() []core.InstanceMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.InstanceMetadata, 0, len(s.instances))
	for _, md := range s.instances {
		out = append(out, md)
	}
	return out
}

// DeleteInstance removes an instance and its capabilities outright. Used
// when dispatch fails before any node accepted the instance.
func (s *Store) DeleteInstance(instanceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.instances, instanceID)
	delete(s.capabilities, instanceID)
	delete(s.crashed, instanceID)
}

// SetInstanceNode records which node an instance landed on.
func (s *Store) SetInstanceNode(instanceID, nodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	md, ok := s.instances[instanceID]
	if !ok {
		return core.NewErrorResponse(core.CodeInstanceNotFound, fmt.Sprintf("instance %q not found", instanceID))
	}
	md.NodeID = nodeID
	s.instances[instanceID] = md
	return nil
}

// UpdateStatus sets the stored status of an instance.
func (s *Store) UpdateStatus(instanceID string, status core.InstanceStatus) error {
	if !status.Valid() {
		return core.NewErrorResponse(core.CodeInvalidRequest, fmt.Sprintf("invalid status %d", status))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	md, ok := s.instances[instanceID]
	if !ok {
		return core.NewErrorResponse(core.CodeInstanceNotFound, fmt.Sprintf("instance %q not found", instanceID))
	}
	md.Status = status
	s.instances[instanceID] = md
	return nil
}

// AssignCapability attaches a capability to an existing instance. The
// capability id and permission list must be non-empty.
func (s *Store) AssignCapability(a core.CapabilityAssignment) error {
	if a.CapabilityID == "" {
		return core.NewErrorResponse(core.CodeInvalidRequest, "capability id is empty")
	}
	if len(a.Permissions) == 0 {
		return core.NewErrorResponse(core.CodeInvalidRequest, "permissions are empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.instances[a.InstanceID]; !ok {
		return core.NewErrorResponse(core.CodeInstanceNotFound, fmt.Sprintf("instance %q not found", a.InstanceID))
	}
	s.capabilities[a.InstanceID] = append(s.capabilities[a.InstanceID], a)
	return nil
}

// RevokeCapability removes a capability from an instance. It reports
// whether anything was removed; the instance's entry is dropped once empty.
func (s *Store) RevokeCapability(instanceID, capabilityID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.capabilities[instanceID]
	if !ok {
		return false
	}
	kept := existing[:0]
	removed := false
	for _, a := range existing {
		if a.CapabilityID == capabilityID {
			removed = true
			continue
		}
		kept = append(kept, a)
	}
	if len(kept) == 0 {
		delete(s.capabilities, instanceID)
	} else {
		s.capabilities[instanceID] = kept
	}
	return removed
}

// Capabilities returns a copy of the instance's stored assignments.
func (s *Store) Capabilities(instanceID string) []core.CapabilityAssignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.CapabilityAssignment, len(s.capabilities[instanceID]))
	copy(out, s.capabilities[instanceID])
	return out
}

// RecordCrash marks an instance crashed, records the event and bumps its
// crash count.
func (s *Store) RecordCrash(instanceID, errMsg string) error {
	s.mu.Lock()
	md, ok := s.instances[instanceID]
	if !ok {
		s.mu.Unlock()
		return core.NewErrorResponse(core.CodeInstanceNotFound, fmt.Sprintf("instance %q not found", instanceID))
	}
	md.Status = core.StatusCrashed
	s.instances[instanceID] = md
	s.crashed[instanceID] = struct{}{}
	s.mu.Unlock()

	s.events.RecordCrash(instanceID, errMsg)
	s.crashes.RecordCrash(instanceID)
	return nil
}

// IsCrashed reports whether the instance carries a crashed marker.
func (s *Store) IsCrashed(instanceID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.crashed[instanceID]
	return ok
}

// HandleCrashRecovery clears the crashed marker, records a restarted event
// and moves the instance back to starting. Its capabilities are preserved.
func (s *Store) HandleCrashRecovery(instanceID string) error {
	s.mu.Lock()
	md, ok := s.instances[instanceID]
	if !ok {
		s.mu.Unlock()
		return core.NewErrorResponse(core.CodeInstanceNotFound, fmt.Sprintf("instance %q not found", instanceID))
	}
	delete(s.crashed, instanceID)
	md.Status = core.StatusStarting
	s.instances[instanceID] = md
	s.mu.Unlock()

	s.events.RecordRestart(instanceID)
	return nil
}

// CrashInfoFor returns the per-instance crash history.
func (s *Store) CrashInfoFor(instanceID string) (core.CrashInfo, bool) {
	return s.crashes.Get(instanceID)
}

// RestoreInstanceState overwrites an instance record during node recovery.
// An empty capability list clears any stored capabilities.
func (s *Store) RestoreInstanceState(md core.InstanceMetadata, caps []core.CapabilityAssignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances[md.InstanceID] = md
	if len(caps) == 0 {
		delete(s.capabilities, md.InstanceID)
		return
	}
	stored := make([]core.CapabilityAssignment, len(caps))
	copy(stored, caps)
	s.capabilities[md.InstanceID] = stored
}
