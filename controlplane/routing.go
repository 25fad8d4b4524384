package controlplane

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"goa.design/clue/log"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/wasmatrix/wasmatrix/core"
	"github.com/wasmatrix/wasmatrix/proto/wasmatrixpb"
	"github.com/wasmatrix/wasmatrix/protocol"
)

// AgentDialer opens a NodeAgentService client for a node address. The
// returned closer releases the connection.
type AgentDialer func(ctx context.Context, address string) (wasmatrixpb.NodeAgentServiceClient, func() error, error)

// GRPCDialer dials node agents over plaintext gRPC. Registered addresses
// may carry an http:// prefix, which gRPC does not want.
func GRPCDialer(_ context.Context, address string) (wasmatrixpb.NodeAgentServiceClient, func() error, error) {
	target := strings.TrimPrefix(strings.TrimPrefix(address, "http://"), "https://")
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", target, err)
	}
	return wasmatrixpb.NewNodeAgentServiceClient(conn), conn.Close, nil
}

// Router dispatches instance operations to node agents and keeps the repo
// and store consistent with the outcomes.
type Router struct {
	repo  Repo
	store *Store
	dial  AgentDialer
	etcd  *EtcdMirror
}

// NewRouter returns a router over the given repo and store. A nil dialer
// defaults to plaintext gRPC; etcd is optional.
func NewRouter(repo Repo, store *Store, dial AgentDialer, etcd *EtcdMirror) *Router {
	if dial == nil {
		dial = GRPCDialer
	}
	return &Router{repo: repo, store: store, dial: dial, etcd: etcd}
}

// normalizeEndpoint prefixes schemeless addresses with http://.
func normalizeEndpoint(address string) string {
	if strings.Contains(address, "://") {
		return address
	}
	return "http://" + address
}

// RegisterNode upserts a node record with a fresh heartbeat, zero active
// instances and availability on, then mirrors its presence to etcd when the
// mirror is enabled.
func (r *Router) RegisterNode(ctx context.Context, nodeID, nodeAddress string, capabilities []string, maxInstances uint32) error {
	now := time.Now().UTC()
	record := NodeRecord{
		NodeID:        nodeID,
		NodeAddress:   normalizeEndpoint(nodeAddress),
		Capabilities:  capabilities,
		MaxInstances:  maxInstances,
		LastHeartbeat: now,
		Available:     true,
	}
	if err := r.repo.UpsertNode(record); err != nil {
		return fmt.Errorf("upsert node %s: %w", nodeID, err)
	}
	if r.etcd != nil {
		if err := r.etcd.PutNodePresence(ctx, nodeID, record.NodeAddress, now); err != nil {
			log.Warn(ctx, log.KV{K: "msg", V: "etcd mirror failed"}, log.KV{K: "node_id", V: nodeID}, log.KV{K: "err", V: err.Error()})
		}
	}
	return nil
}

// RegisterProviderMetadata records a capability provider hosted on a node
// and mirrors it to etcd when enabled.
func (r *Router) RegisterProviderMetadata(ctx context.Context, providerID, providerType, nodeID string) error {
	now := time.Now().UTC()
	md := core.ProviderMetadata{
		ProviderID:   providerID,
		ProviderType: providerType,
		NodeID:       nodeID,
		LastUpdated:  now,
	}
	if err := r.repo.UpsertProviderMetadata(md); err != nil {
		return fmt.Errorf("upsert provider %s: %w", providerID, err)
	}
	if r.etcd != nil {
		if err := r.etcd.PutProviderMetadata(ctx, providerID, providerType, nodeID, now); err != nil {
			log.Warn(ctx, log.KV{K: "msg", V: "etcd mirror failed"}, log.KV{K: "provider_id", V: providerID}, log.KV{K: "err", V: err.Error()})
		}
	}
	return nil
}

// StatusUpdate is one instance status change reported by a node agent.
type StatusUpdate struct {
	InstanceID   string
	Status       core.InstanceStatus
	ErrorMessage string
}

// RecordStatusReport ingests a heartbeat: the node's heartbeat timestamp is
// refreshed (marking it available) and each instance update is applied to
// the store. Updates for unknown instances are logged and skipped.
func (r *Router) RecordStatusReport(ctx context.Context, nodeID string, updates []StatusUpdate, reportedAt time.Time) error {
	if reportedAt.IsZero() {
		reportedAt = time.Now().UTC()
	}
	if err := r.repo.UpdateHeartbeat(nodeID, reportedAt); err != nil {
		return fmt.Errorf("heartbeat for %s: %w", nodeID, err)
	}

	for _, u := range updates {
		if _, err := r.store.QueryInstance(u.InstanceID); err != nil {
			log.Warn(ctx, log.KV{K: "msg", V: "skipping update for unknown instance"}, log.KV{K: "node_id", V: nodeID}, log.KV{K: "instance_id", V: u.InstanceID})
			continue
		}
		switch {
		case u.Status == core.StatusCrashed:
			if err := r.store.RecordCrash(u.InstanceID, u.ErrorMessage); err != nil {
				log.Error(ctx, err, log.KV{K: "instance_id", V: u.InstanceID})
			}
		case r.store.IsCrashed(u.InstanceID) && (u.Status == core.StatusStarting || u.Status == core.StatusRunning):
			if err := r.store.HandleCrashRecovery(u.InstanceID); err != nil {
				log.Error(ctx, err, log.KV{K: "instance_id", V: u.InstanceID})
				continue
			}
			if err := r.store.UpdateStatus(u.InstanceID, u.Status); err != nil {
				log.Error(ctx, err, log.KV{K: "instance_id", V: u.InstanceID})
			}
		default:
			if err := r.store.UpdateStatus(u.InstanceID, u.Status); err != nil {
				log.Error(ctx, err, log.KV{K: "instance_id", V: u.InstanceID})
			}
		}
	}
	return nil
}

// requiredProviderTypes returns the sorted, deduplicated provider type
// names an instance's capabilities demand.
func requiredProviderTypes(caps []core.CapabilityAssignment) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, a := range caps {
		name := a.ProviderType.String()
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// canAcceptInstance applies the availability and capacity filter. A zero
// MaxInstances means unlimited.
func canAcceptInstance(node NodeRecord) bool {
	if !node.Available {
		return false
	}
	return node.MaxInstances == 0 || node.ActiveInstances < node.MaxInstances
}

// nodeSupportsProviders reports whether the node can host an instance that
// needs the given provider types. A node advertising no capabilities is
// treated as universal, as is an instance needing none.
func nodeSupportsProviders(nodeCaps, required []string) bool {
	if len(required) == 0 || len(nodeCaps) == 0 {
		return true
	}
	have := make(map[string]struct{}, len(nodeCaps))
	for _, c := range nodeCaps {
		have[c] = struct{}{}
	}
	for _, want := range required {
		if _, ok := have[want]; !ok {
			return false
		}
	}
	return true
}

// selectCandidates filters the nodes and orders them by load, least busy
// first. The sort is stable so equally loaded nodes keep registration
// order.
func selectCandidates(nodes []NodeRecord, required []string) []NodeRecord {
	var out []NodeRecord
	for _, node := range nodes {
		if canAcceptInstance(node) && nodeSupportsProviders(node.Capabilities, required) {
			out = append(out, node)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ActiveInstances < out[j].ActiveInstances
	})
	return out
}

// RouteStartInstance creates the instance record, walks candidate nodes in
// load order and dispatches the start to the first that accepts it. A node
// that fails at the transport level is marked unavailable; a node that
// declines logically stays available. When every candidate fails the
// instance record is removed and a TIMEOUT error carries the collected
// failures.
func (r *Router) RouteStartInstance(ctx context.Context, moduleBytes []byte, policy core.RestartPolicy, caps []core.CapabilityAssignment) (string, error) {
	instanceID, err := r.store.CreateInstance(moduleBytes, policy, caps)
	if err != nil {
		return "", err
	}

	nodes, err := r.repo.ListNodes()
	if err != nil {
		r.store.DeleteInstance(instanceID)
		return "", fmt.Errorf("list nodes: %w", err)
	}
	candidates := selectCandidates(nodes, requiredProviderTypes(caps))
	if len(candidates) == 0 {
		r.store.DeleteInstance(instanceID)
		return "", core.NewErrorResponse(core.CodeTimeout, "no node can accept the instance")
	}

	req := &wasmatrixpb.StartInstanceRequest{
		InstanceId:    instanceID,
		ModuleBytes:   moduleBytes,
		RestartPolicy: protocol.RestartPolicyToProto(policy),
	}
	for _, a := range caps {
		a.InstanceID = instanceID
		req.Capabilities = append(req.Capabilities, protocol.AssignmentToProto(a))
	}

	var failures []string
	for _, node := range candidates {
		resp, err := r.startOnNode(ctx, node, req)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", node.NodeID, err))
			if err := r.repo.SetAvailability(node.NodeID, false); err != nil {
				log.Error(ctx, err, log.KV{K: "node_id", V: node.NodeID})
			}
			continue
		}
		if !resp.GetSuccess() {
			failures = append(failures, fmt.Sprintf("%s: %s", node.NodeID, resp.GetMessage()))
			continue
		}

		if err := r.repo.AssignInstance(instanceID, node.NodeID); err != nil {
			return "", fmt.Errorf("assign instance: %w", err)
		}
		if err := r.repo.IncrementActiveInstances(node.NodeID); err != nil {
			log.Error(ctx, err, log.KV{K: "node_id", V: node.NodeID})
		}
		if err := r.repo.SetAvailability(node.NodeID, true); err != nil {
			log.Error(ctx, err, log.KV{K: "node_id", V: node.NodeID})
		}
		if err := r.store.SetInstanceNode(instanceID, node.NodeID); err != nil {
			log.Error(ctx, err, log.KV{K: "instance_id", V: instanceID})
		}
		log.Printf(ctx, "instance %s dispatched to node %s", instanceID, node.NodeID)
		return instanceID, nil
	}

	r.store.DeleteInstance(instanceID)
	return "", core.NewErrorResponse(core.CodeTimeout, strings.Join(failures, " | "))
}

func (r *Router) startOnNode(ctx context.Context, node NodeRecord, req *wasmatrixpb.StartInstanceRequest) (*wasmatrixpb.StartInstanceResponse, error) {
	client, closeConn, err := r.dial(ctx, node.NodeAddress)
	if err != nil {
		return nil, err
	}
	defer closeConn()
	return client.StartInstance(ctx, req)
}

// RouteStopInstance forwards the stop to the node the instance lives on,
// then retires the assignment and the stored record.
func (r *Router) RouteStopInstance(ctx context.Context, instanceID string) error {
	nodeID, ok, err := r.repo.LookupInstanceNode(instanceID)
	if err != nil {
		return fmt.Errorf("lookup assignment: %w", err)
	}
	if !ok {
		return core.NewErrorResponse(core.CodeInstanceNotFound, fmt.Sprintf("instance %q has no node assignment", instanceID))
	}
	node, err := r.repo.GetNode(nodeID)
	if err != nil {
		return fmt.Errorf("get node %s: %w", nodeID, err)
	}

	client, closeConn, err := r.dial(ctx, node.NodeAddress)
	if err != nil {
		return core.NewErrorResponse(core.CodeTimeout, err.Error())
	}
	defer closeConn()

	resp, err := client.StopInstance(ctx, &wasmatrixpb.StopInstanceRequest{InstanceId: instanceID})
	if err != nil {
		return core.NewErrorResponse(core.CodeTimeout, err.Error())
	}
	if !resp.GetSuccess() {
		code := resp.GetErrorCode()
		if code == "" {
			code = core.CodeInternal
		}
		return core.NewErrorResponse(code, resp.GetMessage())
	}

	if _, _, err := r.repo.RemoveInstanceAssignment(instanceID); err != nil {
		log.Error(ctx, err, log.KV{K: "instance_id", V: instanceID})
	}
	if err := r.repo.DecrementActiveInstances(nodeID); err != nil {
		log.Error(ctx, err, log.KV{K: "node_id", V: nodeID})
	}
	return r.store.StopInstance(instanceID)
}

// RouteQueryInstance asks the hosting node for live metadata, falling back
// to the stored record when the instance has no node assignment.
func (r *Router) RouteQueryInstance(ctx context.Context, instanceID string) (core.InstanceMetadata, error) {
	nodeID, ok, err := r.repo.LookupInstanceNode(instanceID)
	if err != nil {
		return core.InstanceMetadata{}, fmt.Errorf("lookup assignment: %w", err)
	}
	if !ok {
		return r.store.QueryInstance(instanceID)
	}
	node, err := r.repo.GetNode(nodeID)
	if err != nil {
		return core.InstanceMetadata{}, fmt.Errorf("get node %s: %w", nodeID, err)
	}

	client, closeConn, err := r.dial(ctx, node.NodeAddress)
	if err != nil {
		return core.InstanceMetadata{}, core.NewErrorResponse(core.CodeTimeout, err.Error())
	}
	defer closeConn()

	resp, err := client.QueryInstance(ctx, &wasmatrixpb.QueryInstanceRequest{InstanceId: instanceID})
	if err != nil {
		return core.InstanceMetadata{}, core.NewErrorResponse(core.CodeTimeout, err.Error())
	}
	if !resp.GetFound() {
		return core.InstanceMetadata{}, core.NewErrorResponse(core.CodeInstanceNotFound, fmt.Sprintf("instance %q not found on node %s", instanceID, nodeID))
	}
	md, err := protocol.MetadataFromProto(resp.GetMetadata())
	if err != nil {
		return core.InstanceMetadata{}, core.NewErrorResponse(core.CodeInternal, err.Error())
	}
	return md, nil
}

// RouteListInstances fans out across all registered nodes concurrently.
// Nodes that fail are marked unavailable and skipped.
func (r *Router) RouteListInstances(ctx context.Context) ([]core.InstanceMetadata, error) {
	nodes, err := r.repo.ListNodes()
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}

	var (
		mu  sync.Mutex
		out []core.InstanceMetadata
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, node := range nodes {
		g.Go(func() error {
			mds, err := r.listOnNode(gctx, node)
			if err != nil {
				log.Warn(ctx, log.KV{K: "msg", V: "list failed"}, log.KV{K: "node_id", V: node.NodeID}, log.KV{K: "err", V: err.Error()})
				if err := r.repo.SetAvailability(node.NodeID, false); err != nil {
					log.Error(ctx, err, log.KV{K: "node_id", V: node.NodeID})
				}
				return nil
			}
			mu.Lock()
			out = append(out, mds...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Router) listOnNode(ctx context.Context, node NodeRecord) ([]core.InstanceMetadata, error) {
	client, closeConn, err := r.dial(ctx, node.NodeAddress)
	if err != nil {
		return nil, err
	}
	defer closeConn()

	resp, err := client.ListInstances(ctx, &wasmatrixpb.ListInstancesRequest{})
	if err != nil {
		return nil, err
	}
	out := make([]core.InstanceMetadata, 0, len(resp.GetInstances()))
	for _, pbMD := range resp.GetInstances() {
		md, err := protocol.MetadataFromProto(pbMD)
		if err != nil {
			log.Warn(ctx, log.KV{K: "msg", V: "skipping invalid metadata"}, log.KV{K: "node_id", V: node.NodeID}, log.KV{K: "err", V: err.Error()})
			continue
		}
		out = append(out, md)
	}
	return out, nil
}

// RecoverNodeState rebuilds the store's view of a node after a control
// plane restart: every instance the agent reports is restored (without
// capabilities, which the agent does not return) and re-assigned, and the
// node's active count is reset to its starting-or-running instances.
func (r *Router) RecoverNodeState(ctx context.Context, nodeID string) error {
	node, err := r.repo.GetNode(nodeID)
	if err != nil {
		return fmt.Errorf("get node %s: %w", nodeID, err)
	}

	client, closeConn, err := r.dial(ctx, node.NodeAddress)
	if err != nil {
		return core.NewErrorResponse(core.CodeTimeout, err.Error())
	}
	defer closeConn()

	resp, err := client.ListInstances(ctx, &wasmatrixpb.ListInstancesRequest{})
	if err != nil {
		return core.NewErrorResponse(core.CodeTimeout, err.Error())
	}

	var active uint32
	for _, pbMD := range resp.GetInstances() {
		md, err := protocol.MetadataFromProto(pbMD)
		if err != nil {
			return core.NewErrorResponse(core.CodeInvalidRequest, err.Error())
		}
		md.NodeID = nodeID
		r.store.RestoreInstanceState(md, nil)
		if err := r.repo.AssignInstance(md.InstanceID, nodeID); err != nil {
			return fmt.Errorf("assign instance %s: %w", md.InstanceID, err)
		}
		if md.Status == core.StatusStarting || md.Status == core.StatusRunning {
			active++
		}
	}
	if err := r.repo.SetActiveInstances(nodeID, active); err != nil {
		return fmt.Errorf("set active instances: %w", err)
	}
	log.Printf(ctx, "recovered %d instances from node %s", len(resp.GetInstances()), nodeID)
	return nil
}
