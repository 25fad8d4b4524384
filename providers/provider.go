// Package providers implements the capability providers a node agent hosts
// (key-value, outbound HTTP, messaging) and the lifecycle registry that
// gates invocations on provider availability.
package providers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wasmatrix/wasmatrix/core"
)

// Invocation is one capability call on behalf of an instance. Permissions
// are the effective permissions of the instance's stored assignment;
// providers use them for scope checks (HTTP domains, messaging topics).
type Invocation struct {
	InstanceID  string
	Operation   string
	Params      map[string]any
	Permissions []string
}

// Provider executes capability operations of one provider type.
type Provider interface {
	Type() core.ProviderType
	Invoke(ctx context.Context, inv Invocation) (map[string]any, error)
}

// ErrProviderStopped gates invocations against providers that were shut
// down explicitly.
var ErrProviderStopped = errors.New("provider is stopped")

type providerState int

const (
	stateRunning providerState = iota + 1
	stateStopped
)

// Lifecycle tracks the running/stopped state of providers by id. Providers
// never seen before are treated as running on first use.
type Lifecycle struct {
	mu     sync.RWMutex
	states map[string]providerState
}

// NewLifecycle returns an empty lifecycle registry.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{states: make(map[string]providerState)}
}

// Start marks the provider as running.
func (l *Lifecycle) Start(providerID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states[providerID] = stateRunning
}

// Stop marks the provider as stopped. Subsequent EnsureAvailable calls fail
// until Start is called again.
func (l *Lifecycle) Stop(providerID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states[providerID] = stateStopped
}

// EnsureAvailable returns an error when the provider has been stopped. An
// unknown provider id auto-registers as running.
func (l *Lifecycle) EnsureAvailable(providerID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch l.states[providerID] {
	case stateStopped:
		return fmt.Errorf("provider %q: %w", providerID, ErrProviderStopped)
	case stateRunning:
		return nil
	default:
		l.states[providerID] = stateRunning
		return nil
	}
}

func stringParam(params map[string]any, key string) (string, error) {
	v, ok := params[key]
	if !ok {
		return "", fmt.Errorf("missing %q parameter", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%q parameter must be a string", key)
	}
	return s, nil
}
