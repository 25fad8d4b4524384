package agent

import (
	"context"

	"github.com/wasmatrix/wasmatrix/core"
)

// InstanceSpec is everything needed to bring up one Wasm instance.
type InstanceSpec struct {
	InstanceID    string
	ModuleBytes   []byte
	RestartPolicy core.RestartPolicy
	Capabilities  []core.CapabilityAssignment
}

// Handle is a live instance on the engine. The agent keeps the spec
// reachable through it so crashed instances can be restarted with the same
// module, policy and capabilities.
type Handle interface {
	Spec() InstanceSpec
	Close() error
}

// Engine hosts Wasm instances. The agent validates module bytes before
// instantiation; engine failures surface to callers as internal errors.
type Engine interface {
	Instantiate(ctx context.Context, spec InstanceSpec) (Handle, error)
}

// NopEngine admits any valid module without executing it. It stands in
// where no real Wasm runtime is wired, and backs tests.
type NopEngine struct{}

type nopHandle struct {
	spec InstanceSpec
}

func (h *nopHandle) Spec() InstanceSpec { return h.spec }
func (h *nopHandle) Close() error       { return nil }

func (NopEngine) Instantiate(_ context.Context, spec InstanceSpec) (Handle, error) {
	return &nopHandle{spec: spec}, nil
}
