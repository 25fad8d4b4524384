// Package core holds the domain vocabulary shared by the control plane and
// the node agent: instance metadata, restart policies, crash bookkeeping,
// capability assignments and the permission model.
package core

import (
	"bytes"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when an instance, node or assignment does not
// exist. Callers test for it with errors.Is.
var ErrNotFound = errors.New("not found")

// InstanceStatus is the observed state of a Wasm instance. There is no
// desired-state reconciliation: status reflects what actually happened.
type InstanceStatus int

const (
	StatusStarting InstanceStatus = iota + 1
	StatusRunning
	StatusStopped
	StatusCrashed
)

func (s InstanceStatus) String() string {
	switch s {
	case StatusStarting:
		return "starting"
	case StatusRunning:
		return "running"
	case StatusStopped:
		return "stopped"
	case StatusCrashed:
		return "crashed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Valid reports whether s is one of the four defined statuses.
func (s InstanceStatus) Valid() bool {
	return s >= StatusStarting && s <= StatusCrashed
}

// ProviderType identifies a class of capability provider.
type ProviderType int

const (
	ProviderKV ProviderType = iota + 1
	ProviderHTTP
	ProviderMessaging
)

func (t ProviderType) String() string {
	switch t {
	case ProviderKV:
		return "kv"
	case ProviderHTTP:
		return "http"
	case ProviderMessaging:
		return "messaging"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// Valid reports whether t is one of the three defined provider types.
func (t ProviderType) Valid() bool {
	return t >= ProviderKV && t <= ProviderMessaging
}

// ParseProviderType parses the canonical string form ("kv", "http",
// "messaging").
func ParseProviderType(s string) (ProviderType, error) {
	switch s {
	case "kv":
		return ProviderKV, nil
	case "http":
		return ProviderHTTP, nil
	case "messaging":
		return ProviderMessaging, nil
	default:
		return 0, fmt.Errorf("unknown provider type %q", s)
	}
}

// RestartPolicyKind selects one of the three restart behaviors.
type RestartPolicyKind int

const (
	PolicyNever RestartPolicyKind = iota + 1
	PolicyAlways
	PolicyOnFailure
)

func (k RestartPolicyKind) String() string {
	switch k {
	case PolicyNever:
		return "never"
	case PolicyAlways:
		return "always"
	case PolicyOnFailure:
		return "on_failure"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// RestartPolicy decides whether a crashed instance is restarted and after
// what delay. MaxRetries and BackoffSeconds only apply to PolicyOnFailure;
// PolicyAlways restarts immediately.
type RestartPolicy struct {
	Kind           RestartPolicyKind
	MaxRetries     uint32
	BackoffSeconds uint64
}

// NeverRestart returns the policy that never restarts.
func NeverRestart() RestartPolicy { return RestartPolicy{Kind: PolicyNever} }

// AlwaysRestart returns the policy that restarts unconditionally and
// immediately.
func AlwaysRestart() RestartPolicy { return RestartPolicy{Kind: PolicyAlways} }

// OnFailureRestart returns the policy that restarts up to maxRetries times
// with exponential backoff starting at backoffSeconds.
func OnFailureRestart(maxRetries uint32, backoffSeconds uint64) RestartPolicy {
	return RestartPolicy{Kind: PolicyOnFailure, MaxRetries: maxRetries, BackoffSeconds: backoffSeconds}
}

const (
	// DefaultBackoffSeconds is the backoff base used when a policy does not
	// set one.
	DefaultBackoffSeconds = 5
	// MaxBackoffSeconds caps the computed restart delay.
	MaxBackoffSeconds = 300
	// maxBackoffExponent caps the doubling so the shift cannot overflow.
	maxBackoffExponent = 8
)

// BackoffDelay computes the restart delay for the given 1-based crash count:
// min(base * 2^min(crashCount-1, 8), 300) seconds. A zero base means the
// default of 5 seconds.
func BackoffDelay(crashCount uint32, baseSeconds uint64) time.Duration {
	if baseSeconds == 0 {
		baseSeconds = DefaultBackoffSeconds
	}
	exp := uint32(0)
	if crashCount > 0 {
		exp = crashCount - 1
	}
	if exp > maxBackoffExponent {
		exp = maxBackoffExponent
	}
	secs := baseSeconds << exp
	if secs > MaxBackoffSeconds {
		secs = MaxBackoffSeconds
	}
	return time.Duration(secs) * time.Second
}

// ShouldRestart evaluates the policy against the instance's 1-based crash
// count. It returns the delay before the restart attempt and false when the
// instance must stay down.
func (p RestartPolicy) ShouldRestart(crashCount uint32) (time.Duration, bool) {
	switch p.Kind {
	case PolicyAlways:
		return 0, true
	case PolicyOnFailure:
		if crashCount > p.MaxRetries {
			return 0, false
		}
		return BackoffDelay(crashCount, p.BackoffSeconds), true
	default:
		return 0, false
	}
}

// CrashInfo records how often and when an instance has crashed. CrashCount
// is 1-based: the first crash yields a count of 1.
type CrashInfo struct {
	CrashCount    uint32
	LastCrashTime time.Time
}

// InstanceMetadata is the control plane's record of an instance.
type InstanceMetadata struct {
	InstanceID    string
	ModuleHash    string
	Status        InstanceStatus
	CreatedAt     time.Time
	RestartPolicy RestartPolicy
	NodeID        string
}

// CapabilityAssignment grants an instance access to one capability provider
// with an explicit permission list.
type CapabilityAssignment struct {
	InstanceID   string
	CapabilityID string
	ProviderType ProviderType
	Permissions  []string
}

// HasPermission reports whether the assignment carries the exact permission.
func (a CapabilityAssignment) HasPermission(permission string) bool {
	for _, p := range a.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6d}

// MaxModuleBytes is the largest module the control plane accepts.
const MaxModuleBytes = 10 << 20

// ValidateModuleBytes rejects empty byte slices and anything that does not
// start with the Wasm magic number.
func ValidateModuleBytes(moduleBytes []byte) error {
	if len(moduleBytes) == 0 {
		return errors.New("module bytes are empty")
	}
	if len(moduleBytes) < len(wasmMagic) || !bytes.Equal(moduleBytes[:len(wasmMagic)], wasmMagic) {
		return errors.New("module bytes missing wasm magic number")
	}
	return nil
}

// Wire error codes carried in response messages.
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeInstanceNotFound = "INSTANCE_NOT_FOUND"
	CodeInvokeFailed     = "INVOKE_FAILED"
	CodeInternal         = "INTERNAL_ERROR"
	CodeTimeout          = "TIMEOUT"
)

// ErrorResponse is the structured error surfaced at the wire boundary.
type ErrorResponse struct {
	ErrorCode string
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// NewErrorResponse builds an ErrorResponse stamped with the current time.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{ErrorCode: code, Message: message, Timestamp: time.Now().UTC()}
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("%s: %s", e.ErrorCode, e.Message)
}
