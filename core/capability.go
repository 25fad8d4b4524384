package core

import (
	"fmt"
	"strings"
	"sync"
)

// Permission vocabulary per provider type. Scoped forms append a host or
// topic segment to the listed prefixes.
const (
	PermKVRead    = "kv:read"
	PermKVWrite   = "kv:write"
	PermKVDelete  = "kv:delete"
	PermHTTP      = "http:request"
	PermHTTPHost  = "http:domain:" // + host
	PermPublish   = "msg:publish"
	PermSubscribe = "msg:subscribe"
)

// ValidPermission reports whether the permission string belongs to the
// vocabulary of the given provider type.
func ValidPermission(pt ProviderType, permission string) bool {
	switch pt {
	case ProviderKV:
		return permission == PermKVRead || permission == PermKVWrite || permission == PermKVDelete
	case ProviderHTTP:
		if permission == PermHTTP {
			return true
		}
		return strings.HasPrefix(permission, PermHTTPHost) && len(permission) > len(PermHTTPHost)
	case ProviderMessaging:
		if permission == PermPublish || permission == PermSubscribe {
			return true
		}
		for _, prefix := range []string{PermPublish + ":", PermSubscribe + ":"} {
			if strings.HasPrefix(permission, prefix) && len(permission) > len(prefix) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// RequiredPermission maps a provider operation to the base permission that
// authorizes it.
func RequiredPermission(pt ProviderType, operation string) (string, error) {
	switch pt {
	case ProviderKV:
		switch operation {
		case "get", "list", "exists":
			return PermKVRead, nil
		case "set":
			return PermKVWrite, nil
		case "delete":
			return PermKVDelete, nil
		}
	case ProviderHTTP:
		if operation == "request" {
			return PermHTTP, nil
		}
	case ProviderMessaging:
		switch operation {
		case "publish":
			return PermPublish, nil
		case "subscribe", "unsubscribe":
			return PermSubscribe, nil
		}
	}
	return "", fmt.Errorf("unknown operation %q for provider %s", operation, pt)
}

// CapabilityRegistry tracks which providers exist and which capabilities
// each instance has been granted.
type CapabilityRegistry struct {
	mu          sync.RWMutex
	assignments map[string][]CapabilityAssignment
	providers   map[string]ProviderType
}

// NewCapabilityRegistry returns an empty registry.
func NewCapabilityRegistry() *CapabilityRegistry {
	return &CapabilityRegistry{
		assignments: make(map[string][]CapabilityAssignment),
		providers:   make(map[string]ProviderType),
	}
}

// RegisterProvider makes a capability id known with its provider type.
// Assignments referring to unknown capability ids are rejected.
func (r *CapabilityRegistry) RegisterProvider(capabilityID string, pt ProviderType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[capabilityID] = pt
}

// ValidateAssignment checks that the assignment refers to a known provider,
// that the declared type matches and that every permission is within the
// provider's vocabulary.
func (r *CapabilityRegistry) ValidateAssignment(a CapabilityAssignment) error {
	r.mu.RLock()
	pt, known := r.providers[a.CapabilityID]
	r.mu.RUnlock()
	if !known {
		return fmt.Errorf("unknown capability %q", a.CapabilityID)
	}
	if pt != a.ProviderType {
		return fmt.Errorf("capability %q is %s, assignment declares %s", a.CapabilityID, pt, a.ProviderType)
	}
	for _, perm := range a.Permissions {
		if !ValidPermission(a.ProviderType, perm) {
			return fmt.Errorf("permission %q not valid for provider %s", perm, a.ProviderType)
		}
	}
	return nil
}

// Assign validates and records an assignment for the instance.
func (r *CapabilityRegistry) Assign(a CapabilityAssignment) error {
	if err := r.ValidateAssignment(a); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignments[a.InstanceID] = append(r.assignments[a.InstanceID], a)
	return nil
}

// Revoke removes the named capability from the instance. It reports whether
// anything was removed; the instance entry is dropped once empty.
func (r *CapabilityRegistry) Revoke(instanceID, capabilityID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.assignments[instanceID]
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
		delete(r.assignments, instanceID)
	} else {
		r.assignments[instanceID] = kept
	}
	return removed
}

// Assignments returns a copy of the instance's assignments.
func (r *CapabilityRegistry) Assignments(instanceID string) []CapabilityAssignment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]CapabilityAssignment, len(r.assignments[instanceID]))
	copy(out, r.assignments[instanceID])
	return out
}

// Lookup returns the instance's assignment for one capability id.
func (r *CapabilityRegistry) Lookup(instanceID, capabilityID string) (CapabilityAssignment, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.assignments[instanceID] {
		if a.CapabilityID == capabilityID {
			return a, true
		}
	}
	return CapabilityAssignment{}, false
}

// HasCapability reports whether the instance holds the capability.
func (r *CapabilityRegistry) HasCapability(instanceID, capabilityID string) bool {
	_, ok := r.Lookup(instanceID, capabilityID)
	return ok
}

// HasPermission reports whether the instance's assignment for the capability
// carries the exact permission.
func (r *CapabilityRegistry) HasPermission(instanceID, capabilityID, permission string) bool {
	a, ok := r.Lookup(instanceID, capabilityID)
	return ok && a.HasPermission(permission)
}

// ClearInstance drops every assignment the instance holds.
func (r *CapabilityRegistry) ClearInstance(instanceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.assignments, instanceID)
}

// AssignmentCount returns how many assignments the instance holds.
func (r *CapabilityRegistry) AssignmentCount(instanceID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.assignments[instanceID])
}

// PermissionEnforcer answers whether a concrete provider operation is
// authorized by an instance's stored assignments.
type PermissionEnforcer struct {
	registry *CapabilityRegistry
}

// NewPermissionEnforcer returns an enforcer bound to the registry.
func NewPermissionEnforcer(registry *CapabilityRegistry) *PermissionEnforcer {
	return &PermissionEnforcer{registry: registry}
}

// Enforce authorizes one operation. The scope is the topic for messaging
// operations (empty otherwise); a scoped permission such as
// msg:publish:orders authorizes publish only on that topic, while the bare
// msg:publish authorizes any topic.
func (e *PermissionEnforcer) Enforce(instanceID, capabilityID string, pt ProviderType, operation, scope string) error {
	a, ok := e.registry.Lookup(instanceID, capabilityID)
	if !ok {
		return fmt.Errorf("instance %q has no capability %q", instanceID, capabilityID)
	}
	required, err := RequiredPermission(pt, operation)
	if err != nil {
		return err
	}
	if a.HasPermission(required) {
		return nil
	}
	if scope != "" && a.HasPermission(required+":"+scope) {
		return nil
	}
	return fmt.Errorf("instance %q missing permission %q on capability %q", instanceID, required, capabilityID)
}
