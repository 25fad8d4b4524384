package controlplane

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"goa.design/clue/log"
	"google.golang.org/grpc"

	"github.com/wasmatrix/wasmatrix/core"
	"github.com/wasmatrix/wasmatrix/proto/wasmatrixpb"
	"github.com/wasmatrix/wasmatrix/protocol"
)

// fakeAgent scripts one node agent's RPC behavior for the fake dialer.
type fakeAgent struct {
	dialErr    error
	startErr   error
	startResp  *wasmatrixpb.StartInstanceResponse
	stopResp   *wasmatrixpb.StopInstanceResponse
	queryResp  *wasmatrixpb.QueryInstanceResponse
	listErr    error
	listResp   *wasmatrixpb.ListInstancesResponse
	startCalls int
}

func (a *fakeAgent) StartInstance(_ context.Context, _ *wasmatrixpb.StartInstanceRequest, _ ...grpc.CallOption) (*wasmatrixpb.StartInstanceResponse, error) {
	a.startCalls++
	if a.startErr != nil {
		return nil, a.startErr
	}
	if a.startResp != nil {
		return a.startResp, nil
	}
	return &wasmatrixpb.StartInstanceResponse{Success: true}, nil
}

func (a *fakeAgent) StopInstance(_ context.Context, _ *wasmatrixpb.StopInstanceRequest, _ ...grpc.CallOption) (*wasmatrixpb.StopInstanceResponse, error) {
	if a.stopResp != nil {
		return a.stopResp, nil
	}
	return &wasmatrixpb.StopInstanceResponse{Success: true}, nil
}

func (a *fakeAgent) QueryInstance(_ context.Context, _ *wasmatrixpb.QueryInstanceRequest, _ ...grpc.CallOption) (*wasmatrixpb.QueryInstanceResponse, error) {
	if a.queryResp != nil {
		return a.queryResp, nil
	}
	return &wasmatrixpb.QueryInstanceResponse{}, nil
}

func (a *fakeAgent) ListInstances(_ context.Context, _ *wasmatrixpb.ListInstancesRequest, _ ...grpc.CallOption) (*wasmatrixpb.ListInstancesResponse, error) {
	if a.listErr != nil {
		return nil, a.listErr
	}
	if a.listResp != nil {
		return a.listResp, nil
	}
	return &wasmatrixpb.ListInstancesResponse{}, nil
}

func (a *fakeAgent) InvokeCapability(_ context.Context, _ *wasmatrixpb.InvokeCapabilityRequest, _ ...grpc.CallOption) (*wasmatrixpb.InvokeCapabilityResponse, error) {
	return &wasmatrixpb.InvokeCapabilityResponse{Success: true}, nil
}

// fakeDialer resolves node addresses to scripted agents.
func fakeDialer(agents map[string]*fakeAgent) AgentDialer {
	return func(_ context.Context, address string) (wasmatrixpb.NodeAgentServiceClient, func() error, error) {
		agent, ok := agents[address]
		if !ok {
			return nil, nil, fmt.Errorf("unknown address %s", address)
		}
		if agent.dialErr != nil {
			return nil, nil, agent.dialErr
		}
		return agent, func() error { return nil }, nil
	}
}

func newTestRouter(t *testing.T, agents map[string]*fakeAgent) (*Router, *MemoryRepo, *Store) {
	t.Helper()
	repo := NewMemoryRepo()
	store := NewStore(nil)
	return NewRouter(repo, store, fakeDialer(agents), nil), repo, store
}

func registerTestNode(t *testing.T, router *Router, nodeID string, caps []string, maxInstances uint32) {
	t.Helper()
	require.NoError(t, router.RegisterNode(context.Background(), nodeID, nodeID+":50052", caps, maxInstances))
}

func TestRegisterNodeNormalizesAddress(t *testing.T) {
	router, repo, _ := newTestRouter(t, nil)
	registerTestNode(t, router, "node-1", []string{"kv"}, 4)

	node, err := repo.GetNode("node-1")
	require.NoError(t, err)
	assert.Equal(t, "http://node-1:50052", node.NodeAddress)
	assert.True(t, node.Available)
	assert.Zero(t, node.ActiveInstances)
	assert.False(t, node.LastHeartbeat.IsZero())
}

func TestSelectCandidatesFiltersAndSorts(t *testing.T) {
	nodes := []NodeRecord{
		{NodeID: "busy", Available: true, ActiveInstances: 5},
		{NodeID: "full", Available: true, MaxInstances: 2, ActiveInstances: 2},
		{NodeID: "down", Available: false},
		{NodeID: "idle", Available: true, ActiveInstances: 0},
		{NodeID: "no-kv", Available: true, Capabilities: []string{"http"}},
		{NodeID: "has-kv", Available: true, Capabilities: []string{"kv", "http"}, ActiveInstances: 1},
	}

	got := selectCandidates(nodes, []string{"kv"})
	var ids []string
	for _, n := range got {
		ids = append(ids, n.NodeID)
	}
	// Nodes advertising no capabilities are universal; sorted least busy
	// first.
	assert.Equal(t, []string{"idle", "has-kv", "busy"}, ids)
}

func TestSelectCandidatesProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("candidates are sorted by load and all can accept", prop.ForAll(
		func(loads []uint32) bool {
			nodes := make([]NodeRecord, len(loads))
			for i, load := range loads {
				nodes[i] = NodeRecord{
					NodeID:          fmt.Sprintf("node-%d", i),
					Available:       load%3 != 0,
					MaxInstances:    10,
					ActiveInstances: load % 15,
				}
			}
			got := selectCandidates(nodes, nil)
			for i, n := range got {
				if !canAcceptInstance(n) {
					return false
				}
				if i > 0 && got[i-1].ActiveInstances > n.ActiveInstances {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.UInt32()),
	))

	properties.TestingRun(t)
}

func TestNodeSupportsProviders(t *testing.T) {
	assert.True(t, nodeSupportsProviders(nil, []string{"kv"}))
	assert.True(t, nodeSupportsProviders([]string{"kv"}, nil))
	assert.True(t, nodeSupportsProviders([]string{"kv", "http"}, []string{"kv"}))
	assert.False(t, nodeSupportsProviders([]string{"http"}, []string{"kv"}))
	assert.False(t, nodeSupportsProviders([]string{"kv"}, []string{"kv", "messaging"}))
}

func TestRouteStartInstanceDispatches(t *testing.T) {
	agent := &fakeAgent{}
	router, repo, store := newTestRouter(t, map[string]*fakeAgent{"http://node-1:50052": agent})
	registerTestNode(t, router, "node-1", nil, 0)

	id, err := router.RouteStartInstance(context.Background(), wasmHeader, core.AlwaysRestart(), []core.CapabilityAssignment{kvCap("kv:read")})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, 1, agent.startCalls)

	md, err := store.QueryInstance(id)
	require.NoError(t, err)
	assert.Equal(t, "node-1", md.NodeID)

	nodeID, ok, err := repo.LookupInstanceNode(id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "node-1", nodeID)

	node, err := repo.GetNode("node-1")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), node.ActiveInstances)
}

func TestRouteStartInstanceNoCandidates(t *testing.T) {
	router, _, store := newTestRouter(t, nil)

	_, err := router.RouteStartInstance(context.Background(), wasmHeader, core.NeverRestart(), nil)
	requireErrorCode(t, err, core.CodeTimeout)
	assert.Empty(t, store.Instances())
}

func TestRouteStartInstanceFallsBackAcrossNodes(t *testing.T) {
	// node-1 fails at the transport level, node-2 declines logically,
	// node-3 accepts.
	unreachable := &fakeAgent{startErr: errors.New("connection refused")}
	declining := &fakeAgent{startResp: &wasmatrixpb.StartInstanceResponse{Message: "at capacity"}}
	accepting := &fakeAgent{}
	router, repo, _ := newTestRouter(t, map[string]*fakeAgent{
		"http://node-1:50052": unreachable,
		"http://node-2:50052": declining,
		"http://node-3:50052": accepting,
	})
	registerTestNode(t, router, "node-1", nil, 0)
	registerTestNode(t, router, "node-2", nil, 0)
	registerTestNode(t, router, "node-3", nil, 0)
	// Load the nodes so the walk order is node-1, node-2, node-3.
	require.NoError(t, repo.SetActiveInstances("node-2", 1))
	require.NoError(t, repo.SetActiveInstances("node-3", 2))

	id, err := router.RouteStartInstance(context.Background(), wasmHeader, core.NeverRestart(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, 1, accepting.startCalls)

	// Transport failure marks the node unavailable; a logical decline does
	// not.
	node1, err := repo.GetNode("node-1")
	require.NoError(t, err)
	assert.False(t, node1.Available)
	node2, err := repo.GetNode("node-2")
	require.NoError(t, err)
	assert.True(t, node2.Available)
}

func TestRouteStartInstanceAllNodesFail(t *testing.T) {
	failing := &fakeAgent{startErr: errors.New("connection refused")}
	router, _, store := newTestRouter(t, map[string]*fakeAgent{"http://node-1:50052": failing})
	registerTestNode(t, router, "node-1", nil, 0)

	_, err := router.RouteStartInstance(context.Background(), wasmHeader, core.NeverRestart(), nil)
	requireErrorCode(t, err, core.CodeTimeout)
	assert.Contains(t, err.Error(), "node-1")
	// The failed instance leaves no record behind.
	assert.Empty(t, store.Instances())
}

func TestRouteStopInstance(t *testing.T) {
	agent := &fakeAgent{}
	router, repo, store := newTestRouter(t, map[string]*fakeAgent{"http://node-1:50052": agent})
	registerTestNode(t, router, "node-1", nil, 0)

	id, err := router.RouteStartInstance(context.Background(), wasmHeader, core.NeverRestart(), nil)
	require.NoError(t, err)

	require.NoError(t, router.RouteStopInstance(context.Background(), id))

	md, err := store.QueryInstance(id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusStopped, md.Status)

	_, ok, err := repo.LookupInstanceNode(id)
	require.NoError(t, err)
	assert.False(t, ok)

	node, err := repo.GetNode("node-1")
	require.NoError(t, err)
	assert.Zero(t, node.ActiveInstances)
}

func TestRouteStopInstanceNoAssignment(t *testing.T) {
	router, _, _ := newTestRouter(t, nil)
	err := router.RouteStopInstance(context.Background(), "ghost")
	requireErrorCode(t, err, core.CodeInstanceNotFound)
}

func TestRouteStopInstancePassesThroughNodeError(t *testing.T) {
	agent := &fakeAgent{}
	router, _, _ := newTestRouter(t, map[string]*fakeAgent{"http://node-1:50052": agent})
	registerTestNode(t, router, "node-1", nil, 0)

	id, err := router.RouteStartInstance(context.Background(), wasmHeader, core.NeverRestart(), nil)
	require.NoError(t, err)

	agent.stopResp = &wasmatrixpb.StopInstanceResponse{
		Message:   "instance not live",
		ErrorCode: core.CodeInstanceNotFound,
	}
	err = router.RouteStopInstance(context.Background(), id)
	requireErrorCode(t, err, core.CodeInstanceNotFound)
}

func TestRouteQueryInstanceFromNode(t *testing.T) {
	agent := &fakeAgent{}
	router, _, _ := newTestRouter(t, map[string]*fakeAgent{"http://node-1:50052": agent})
	registerTestNode(t, router, "node-1", nil, 0)

	id, err := router.RouteStartInstance(context.Background(), wasmHeader, core.NeverRestart(), nil)
	require.NoError(t, err)

	agent.queryResp = &wasmatrixpb.QueryInstanceResponse{
		Found: true,
		Metadata: protocol.MetadataToProto(core.InstanceMetadata{
			InstanceID: id,
			Status:     core.StatusRunning,
			CreatedAt:  time.Now().UTC(),
			NodeID:     "node-1",
		}),
	}
	md, err := router.RouteQueryInstance(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusRunning, md.Status)

	agent.queryResp = &wasmatrixpb.QueryInstanceResponse{}
	_, err = router.RouteQueryInstance(context.Background(), id)
	requireErrorCode(t, err, core.CodeInstanceNotFound)
}

func TestRouteQueryInstanceFallsBackToStore(t *testing.T) {
	router, _, store := newTestRouter(t, nil)

	id, err := store.CreateInstance(wasmHeader, core.NeverRestart(), nil)
	require.NoError(t, err)

	md, err := router.RouteQueryInstance(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusStarting, md.Status)

	_, err = router.RouteQueryInstance(context.Background(), "ghost")
	requireErrorCode(t, err, core.CodeInstanceNotFound)
}

func TestRouteListInstancesFansOut(t *testing.T) {
	mdFor := func(id, nodeID string) *wasmatrixpb.InstanceMetadata {
		return protocol.MetadataToProto(core.InstanceMetadata{
			InstanceID: id,
			Status:     core.StatusRunning,
			CreatedAt:  time.Now().UTC(),
			NodeID:     nodeID,
		})
	}
	healthy := &fakeAgent{listResp: &wasmatrixpb.ListInstancesResponse{
		Instances: []*wasmatrixpb.InstanceMetadata{mdFor("i-1", "node-1"), mdFor("i-2", "node-1")},
	}}
	failing := &fakeAgent{listErr: errors.New("connection refused")}
	router, repo, _ := newTestRouter(t, map[string]*fakeAgent{
		"http://node-1:50052": healthy,
		"http://node-2:50052": failing,
	})
	registerTestNode(t, router, "node-1", nil, 0)
	registerTestNode(t, router, "node-2", nil, 0)

	mds, err := router.RouteListInstances(context.Background())
	require.NoError(t, err)
	assert.Len(t, mds, 2)

	// The failing node is marked unavailable but does not fail the call.
	node2, err := repo.GetNode("node-2")
	require.NoError(t, err)
	assert.False(t, node2.Available)
}

func TestRecordStatusReportAppliesUpdates(t *testing.T) {
	agent := &fakeAgent{}
	router, repo, store := newTestRouter(t, map[string]*fakeAgent{"http://node-1:50052": agent})
	registerTestNode(t, router, "node-1", nil, 0)
	require.NoError(t, repo.SetAvailability("node-1", false))

	id, err := router.RouteStartInstance(context.Background(), wasmHeader, core.AlwaysRestart(), nil)
	require.NoError(t, err)

	reportedAt := time.Now().UTC()
	err = router.RecordStatusReport(context.Background(), "node-1", []StatusUpdate{
		{InstanceID: id, Status: core.StatusRunning},
		{InstanceID: "unknown", Status: core.StatusRunning},
	}, reportedAt)
	require.NoError(t, err)

	// A heartbeat marks the node available again.
	node, err := repo.GetNode("node-1")
	require.NoError(t, err)
	assert.True(t, node.Available)
	assert.Equal(t, reportedAt, node.LastHeartbeat)

	md, err := store.QueryInstance(id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusRunning, md.Status)
}

func TestRecordStatusReportCrashAndRecovery(t *testing.T) {
	agent := &fakeAgent{}
	router, _, store := newTestRouter(t, map[string]*fakeAgent{"http://node-1:50052": agent})
	registerTestNode(t, router, "node-1", nil, 0)

	id, err := router.RouteStartInstance(context.Background(), wasmHeader, core.AlwaysRestart(), nil)
	require.NoError(t, err)

	err = router.RecordStatusReport(context.Background(), "node-1", []StatusUpdate{
		{InstanceID: id, Status: core.StatusCrashed, ErrorMessage: "trap"},
	}, time.Time{})
	require.NoError(t, err)
	assert.True(t, store.IsCrashed(id))
	info, ok := store.CrashInfoFor(id)
	require.True(t, ok)
	assert.Equal(t, uint32(1), info.CrashCount)

	// A running report after the crash is a recovery.
	err = router.RecordStatusReport(context.Background(), "node-1", []StatusUpdate{
		{InstanceID: id, Status: core.StatusRunning},
	}, time.Time{})
	require.NoError(t, err)
	assert.False(t, store.IsCrashed(id))
	md, err := store.QueryInstance(id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusRunning, md.Status)
}

func TestRecordStatusReportLogsUnknownInstances(t *testing.T) {
	var buf bytes.Buffer
	ctx := log.Context(context.Background(), log.WithOutput(&buf), log.WithDebug())

	router, _, _ := newTestRouter(t, nil)
	registerTestNode(t, router, "node-1", nil, 0)

	require.NoError(t, router.RecordStatusReport(ctx, "node-1", []StatusUpdate{
		{InstanceID: "unknown-1", Status: core.StatusRunning},
	}, time.Time{}))

	assert.Contains(t, buf.String(), "skipping update for unknown instance")
	assert.Contains(t, buf.String(), "unknown-1")
}

func TestRecordStatusReportUnknownNode(t *testing.T) {
	router, _, _ := newTestRouter(t, nil)
	err := router.RecordStatusReport(context.Background(), "ghost", nil, time.Time{})
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestRecoverNodeState(t *testing.T) {
	mdFor := func(id string, status core.InstanceStatus) *wasmatrixpb.InstanceMetadata {
		return protocol.MetadataToProto(core.InstanceMetadata{
			InstanceID: id,
			Status:     status,
			CreatedAt:  time.Now().UTC(),
		})
	}
	agent := &fakeAgent{listResp: &wasmatrixpb.ListInstancesResponse{
		Instances: []*wasmatrixpb.InstanceMetadata{
			mdFor("i-1", core.StatusRunning),
			mdFor("i-2", core.StatusStarting),
			mdFor("i-3", core.StatusStopped),
		},
	}}
	router, repo, store := newTestRouter(t, map[string]*fakeAgent{"http://node-1:50052": agent})
	registerTestNode(t, router, "node-1", nil, 0)

	require.NoError(t, router.RecoverNodeState(context.Background(), "node-1"))

	for _, id := range []string{"i-1", "i-2", "i-3"} {
		md, err := store.QueryInstance(id)
		require.NoError(t, err)
		assert.Equal(t, "node-1", md.NodeID)
		nodeID, ok, err := repo.LookupInstanceNode(id)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "node-1", nodeID)
	}

	// Only starting and running instances count as active.
	node, err := repo.GetNode("node-1")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), node.ActiveInstances)
}

func TestRecoverNodeStateUnreachable(t *testing.T) {
	agent := &fakeAgent{dialErr: errors.New("connection refused")}
	router, _, _ := newTestRouter(t, map[string]*fakeAgent{"http://node-1:50052": agent})
	registerTestNode(t, router, "node-1", nil, 0)

	err := router.RecoverNodeState(context.Background(), "node-1")
	requireErrorCode(t, err, core.CodeTimeout)
}

func TestMemoryRepoActiveInstanceCounts(t *testing.T) {
	repo := NewMemoryRepo()
	require.NoError(t, repo.UpsertNode(NodeRecord{NodeID: "node-1"}))

	require.NoError(t, repo.IncrementActiveInstances("node-1"))
	require.NoError(t, repo.IncrementActiveInstances("node-1"))
	node, err := repo.GetNode("node-1")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), node.ActiveInstances)

	require.NoError(t, repo.DecrementActiveInstances("node-1"))
	require.NoError(t, repo.DecrementActiveInstances("node-1"))
	// The count never goes below zero.
	require.NoError(t, repo.DecrementActiveInstances("node-1"))
	node, err = repo.GetNode("node-1")
	require.NoError(t, err)
	assert.Zero(t, node.ActiveInstances)

	require.ErrorIs(t, repo.IncrementActiveInstances("ghost"), core.ErrNotFound)
}
