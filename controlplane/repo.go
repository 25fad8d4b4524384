package controlplane

import (
	"fmt"
	"sync"
	"time"

	"github.com/wasmatrix/wasmatrix/core"
)

// NodeRecord is the control plane's view of one registered node agent.
type NodeRecord struct {
	NodeID          string
	NodeAddress     string
	Capabilities    []string
	MaxInstances    uint32
	ActiveInstances uint32
	LastHeartbeat   time.Time
	Available       bool
}

// Repo stores node records, instance-to-node assignments and provider
// metadata. The three live in separate maps; implementations must keep them
// independent.
type Repo interface {
	UpsertNode(node NodeRecord) error
	GetNode(nodeID string) (NodeRecord, error)
	ListNodes() ([]NodeRecord, error)
	UpdateHeartbeat(nodeID string, heartbeat time.Time) error
	SetAvailability(nodeID string, available bool) error
	IncrementActiveInstances(nodeID string) error
	DecrementActiveInstances(nodeID string) error
	SetActiveInstances(nodeID string, count uint32) error
	AssignInstance(instanceID, nodeID string) error
	LookupInstanceNode(instanceID string) (string, bool, error)
	RemoveInstanceAssignment(instanceID string) (string, bool, error)
	UpsertProviderMetadata(md core.ProviderMetadata) error
	ListProviderMetadata() ([]core.ProviderMetadata, error)
}

// MemoryRepo is the in-memory Repo used in production; node state is
// rebuilt from registrations and heartbeats after a restart.
type MemoryRepo struct {
	nodesMu sync.RWMutex
	nodes   map[string]NodeRecord

	assignMu    sync.RWMutex
	assignments map[string]string

	providersMu sync.RWMutex
	providers   map[string]core.ProviderMetadata
}

var _ Repo = (*MemoryRepo)(nil)

// NewMemoryRepo returns an empty repo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		nodes:       make(map[string]NodeRecord),
		assignments: make(map[string]string),
		providers:   make(map[string]core.ProviderMetadata),
	}
}

func (r *MemoryRepo) UpsertNode(node NodeRecord) error {
	r.nodesMu.Lock()
	defer r.nodesMu.Unlock()
	r.nodes[node.NodeID] = node
	return nil
}

func (r *MemoryRepo) GetNode(nodeID string) (NodeRecord, error) {
	r.nodesMu.RLock()
	defer r.nodesMu.RUnlock()
	node, ok := r.nodes[nodeID]
	if !ok {
		return NodeRecord{}, fmt.Errorf("node %q: %w", nodeID, core.ErrNotFound)
	}
	return node, nil
}

func (r *MemoryRepo) ListNodes() ([]NodeRecord, error) {
	r.nodesMu.RLock()
	defer r.nodesMu.RUnlock()
	out := make([]NodeRecord, 0, len(r.nodes))
	for _, node := range r.nodes {
		out = append(out, node)
	}
	return out, nil
}

func (r *MemoryRepo) UpdateHeartbeat(nodeID string, heartbeat time.Time) error {
	return r.mutateNode(nodeID, func(node *NodeRecord) {
		node.LastHeartbeat = heartbeat
		node.Available = true
	})
}

func (r *MemoryRepo) SetAvailability(nodeID string, available bool) error {
	return r.mutateNode(nodeID, func(node *NodeRecord) {
		node.Available = available
	})
}

func (r *MemoryRepo) IncrementActiveInstances(nodeID string) error {
	return r.mutateNode(nodeID, func(node *NodeRecord) {
		node.ActiveInstances++
	})
}

func (r *MemoryRepo) DecrementActiveInstances(nodeID string) error {
	return r.mutateNode(nodeID, func(node *NodeRecord) {
		if node.ActiveInstances > 0 {
			node.ActiveInstances--
		}
	})
}

func (r *MemoryRepo) SetActiveInstances(nodeID string, count uint32) error {
	return r.mutateNode(nodeID, func(node *NodeRecord) {
		node.ActiveInstances = count
	})
}

func (r *MemoryRepo) mutateNode(nodeID string, mutate func(*NodeRecord)) error {
	r.nodesMu.Lock()
	defer r.nodesMu.Unlock()
	node, ok := r.nodes[nodeID]
	if !ok {
		return fmt.Errorf("node %q: %w", nodeID, core.ErrNotFound)
	}
	mutate(&node)
	r.nodes[nodeID] = node
	return nil
}

func (r *MemoryRepo) AssignInstance(instanceID, nodeID string) error {
	r.assignMu.Lock()
	defer r.assignMu.Unlock()
	r.assignments[instanceID] = nodeID
	return nil
}

func (r *MemoryRepo) LookupInstanceNode(instanceID string) (string, bool, error) {
	r.assignMu.RLock()
	defer r.assignMu.RUnlock()
	nodeID, ok := r.assignments[instanceID]
	return nodeID, ok, nil
}

func (r *MemoryRepo) RemoveInstanceAssignment(instanceID string) (string, bool, error) {
	r.assignMu.Lock()
	defer r.assignMu.Unlock()
	nodeID, ok := r.assignments[instanceID]
	delete(r.assignments, instanceID)
	return nodeID, ok, nil
}

func (r *MemoryRepo) UpsertProviderMetadata(md core.ProviderMetadata) error {
	r.providersMu.Lock()
	defer r.providersMu.Unlock()
	r.providers[md.ProviderID] = md
	return nil
}

func (r *MemoryRepo) ListProviderMetadata() ([]core.ProviderMetadata, error) {
	r.providersMu.RLock()
	defer r.providersMu.RUnlock()
	out := make([]core.ProviderMetadata, 0, len(r.providers))
	for _, md := range r.providers {
		out = append(out, md)
	}
	return out, nil
}
