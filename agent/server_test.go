package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"goa.design/clue/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/wasmatrix/wasmatrix/core"
	"github.com/wasmatrix/wasmatrix/proto/wasmatrixpb"
	"github.com/wasmatrix/wasmatrix/providers"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	a, _ := newTestAgent(t)
	srv, err := NewServer(ServerConfig{
		Agent: a,
		Providers: []providers.Provider{
			providers.NewKVProvider(providers.NewMemoryKV()),
			providers.NewMessagingProvider(providers.NewMemoryBroker()),
		},
	})
	require.NoError(t, err)
	return srv
}

func kvStartRequest(instanceID string, perms ...string) *wasmatrixpb.StartInstanceRequest {
	return &wasmatrixpb.StartInstanceRequest{
		InstanceId:  instanceID,
		ModuleBytes: wasmHeader,
		Capabilities: []*wasmatrixpb.CapabilityAssignment{{
			InstanceId:   instanceID,
			CapabilityId: "kv-1",
			ProviderType: wasmatrixpb.ProviderType_PROVIDER_TYPE_KV,
			Permissions:  perms,
		}},
	}
}

func TestCorrelationID(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(),
		metadata.Pairs(correlationMetadataKey, "req-42"))
	assert.Equal(t, "req-42", correlationID(ctx))

	// No incoming metadata: a fresh uuid is minted.
	require.NoError(t, uuid.Validate(correlationID(context.Background())))

	// An empty value counts as absent.
	ctx = metadata.NewIncomingContext(context.Background(),
		metadata.Pairs(correlationMetadataKey, ""))
	require.NoError(t, uuid.Validate(correlationID(ctx)))
}

func TestWithCorrelationTagsLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := log.Context(context.Background(), log.WithOutput(&buf), log.WithDebug())
	ctx = metadata.NewIncomingContext(ctx, metadata.Pairs(correlationMetadataKey, "req-42"))

	log.Printf(withCorrelation(ctx), "handling request")
	assert.Contains(t, buf.String(), "correlation_id")
	assert.Contains(t, buf.String(), "req-42")
}

func TestServerRequiresAgent(t *testing.T) {
	_, err := NewServer(ServerConfig{})
	require.Error(t, err)
}

func TestServerStartInstance(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	resp, err := srv.StartInstance(ctx, kvStartRequest("i-1", "kv:read", "kv:write"))
	require.NoError(t, err)
	assert.True(t, resp.GetSuccess())
	assert.Equal(t, "i-1", resp.GetInstanceId())
	assert.True(t, srv.Registry().HasCapability("i-1", "kv-1"))
}

func TestServerStartInstanceRejectsInvalidModule(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.StartInstance(context.Background(), &wasmatrixpb.StartInstanceRequest{
		InstanceId:  "i-1",
		ModuleBytes: []byte("not wasm"),
	})
	require.NoError(t, err)
	assert.False(t, resp.GetSuccess())
	assert.Equal(t, core.CodeInvalidRequest, resp.GetErrorCode())
}

func TestServerStartInstanceRejectsUnspecifiedProviderType(t *testing.T) {
	srv := newTestServer(t)

	req := kvStartRequest("i-1", "kv:read")
	req.Capabilities[0].ProviderType = wasmatrixpb.ProviderType_PROVIDER_TYPE_UNSPECIFIED
	resp, err := srv.StartInstance(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, resp.GetSuccess())
	assert.Equal(t, core.CodeInvalidRequest, resp.GetErrorCode())
}

func TestServerStopInstance(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	_, err := srv.StartInstance(ctx, kvStartRequest("i-1", "kv:read"))
	require.NoError(t, err)

	resp, err := srv.StopInstance(ctx, &wasmatrixpb.StopInstanceRequest{InstanceId: "i-1"})
	require.NoError(t, err)
	assert.True(t, resp.GetSuccess())
	assert.False(t, srv.Registry().HasCapability("i-1", "kv-1"))

	resp, err = srv.StopInstance(ctx, &wasmatrixpb.StopInstanceRequest{InstanceId: "i-1"})
	require.NoError(t, err)
	assert.False(t, resp.GetSuccess())
	assert.Equal(t, core.CodeInstanceNotFound, resp.GetErrorCode())
}

func TestServerQueryInstance(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	_, err := srv.StartInstance(ctx, kvStartRequest("i-1", "kv:read"))
	require.NoError(t, err)

	resp, err := srv.QueryInstance(ctx, &wasmatrixpb.QueryInstanceRequest{InstanceId: "i-1"})
	require.NoError(t, err)
	require.True(t, resp.GetFound())
	assert.Equal(t, "i-1", resp.GetMetadata().GetInstanceId())
	assert.Equal(t, wasmatrixpb.InstanceStatus_INSTANCE_STATUS_RUNNING, resp.GetMetadata().GetStatus())

	resp, err = srv.QueryInstance(ctx, &wasmatrixpb.QueryInstanceRequest{InstanceId: "ghost"})
	require.NoError(t, err)
	assert.False(t, resp.GetFound())
	assert.Equal(t, core.CodeInstanceNotFound, resp.GetErrorCode())
}

func TestServerListInstances(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	_, err := srv.StartInstance(ctx, kvStartRequest("i-1", "kv:read"))
	require.NoError(t, err)
	_, err = srv.StartInstance(ctx, kvStartRequest("i-2", "kv:read"))
	require.NoError(t, err)

	resp, err := srv.ListInstances(ctx, &wasmatrixpb.ListInstancesRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.GetInstances(), 2)
}

func TestServerInvokeCapability(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	_, err := srv.StartInstance(ctx, kvStartRequest("i-1", "kv:read", "kv:write"))
	require.NoError(t, err)

	params, _ := json.Marshal(map[string]any{"key": "a", "value": "1"})
	resp, err := srv.InvokeCapability(ctx, &wasmatrixpb.InvokeCapabilityRequest{
		InstanceId:   "i-1",
		CapabilityId: "kv-1",
		ProviderType: wasmatrixpb.ProviderType_PROVIDER_TYPE_KV,
		Operation:    "set",
		ParamsJson:   string(params),
	})
	require.NoError(t, err)
	require.True(t, resp.GetSuccess())

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.GetResultJson()), &result))
	assert.Equal(t, true, result["stored"])
}

func TestServerInvokeCapabilityDeniesMissingPermission(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	_, err := srv.StartInstance(ctx, kvStartRequest("i-1", "kv:read"))
	require.NoError(t, err)

	params, _ := json.Marshal(map[string]any{"key": "a"})
	resp, err := srv.InvokeCapability(ctx, &wasmatrixpb.InvokeCapabilityRequest{
		InstanceId:   "i-1",
		CapabilityId: "kv-1",
		ProviderType: wasmatrixpb.ProviderType_PROVIDER_TYPE_KV,
		Operation:    "delete",
		ParamsJson:   string(params),
		// Claimed permissions on the wire never override the stored
		// assignment.
		Permissions: []string{"kv:delete"},
	})
	require.NoError(t, err)
	assert.False(t, resp.GetSuccess())
	assert.Equal(t, core.CodeInvokeFailed, resp.GetErrorCode())
}

func TestServerInvokeCapabilityEnforcesTopicScope(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	_, err := srv.StartInstance(ctx, &wasmatrixpb.StartInstanceRequest{
		InstanceId:  "i-1",
		ModuleBytes: wasmHeader,
		Capabilities: []*wasmatrixpb.CapabilityAssignment{{
			InstanceId:   "i-1",
			CapabilityId: "msg-1",
			ProviderType: wasmatrixpb.ProviderType_PROVIDER_TYPE_MESSAGING,
			Permissions:  []string{"msg:publish:orders"},
		}},
	})
	require.NoError(t, err)

	publish := func(topic string) *wasmatrixpb.InvokeCapabilityResponse {
		params, _ := json.Marshal(map[string]any{"topic": topic, "message": "m1"})
		resp, err := srv.InvokeCapability(ctx, &wasmatrixpb.InvokeCapabilityRequest{
			InstanceId:   "i-1",
			CapabilityId: "msg-1",
			ProviderType: wasmatrixpb.ProviderType_PROVIDER_TYPE_MESSAGING,
			Operation:    "publish",
			ParamsJson:   string(params),
		})
		require.NoError(t, err)
		return resp
	}

	assert.True(t, publish("orders").GetSuccess())
	denied := publish("payments")
	assert.False(t, denied.GetSuccess())
	assert.Equal(t, core.CodeInvokeFailed, denied.GetErrorCode())
}

func TestServerInvokeCapabilityStoppedProvider(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	_, err := srv.StartInstance(ctx, kvStartRequest("i-1", "kv:read"))
	require.NoError(t, err)
	srv.Lifecycle().Stop("kv-1")

	_, err = srv.InvokeCapability(ctx, &wasmatrixpb.InvokeCapabilityRequest{
		InstanceId:   "i-1",
		CapabilityId: "kv-1",
		ProviderType: wasmatrixpb.ProviderType_PROVIDER_TYPE_KV,
		Operation:    "get",
		ParamsJson:   `{"key":"a"}`,
	})
	require.Error(t, err)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestServerInvokeCapabilityRejectsUnspecifiedType(t *testing.T) {
	srv := newTestServer(t)

	_, err := srv.InvokeCapability(context.Background(), &wasmatrixpb.InvokeCapabilityRequest{
		InstanceId:   "i-1",
		CapabilityId: "kv-1",
		Operation:    "get",
	})
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServerInvokeCapabilityBadParams(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	_, err := srv.StartInstance(ctx, kvStartRequest("i-1", "kv:read"))
	require.NoError(t, err)

	resp, err := srv.InvokeCapability(ctx, &wasmatrixpb.InvokeCapabilityRequest{
		InstanceId:   "i-1",
		CapabilityId: "kv-1",
		ProviderType: wasmatrixpb.ProviderType_PROVIDER_TYPE_KV,
		Operation:    "get",
		ParamsJson:   "{not json",
	})
	require.NoError(t, err)
	assert.False(t, resp.GetSuccess())
	assert.Equal(t, core.CodeInvalidRequest, resp.GetErrorCode())
}
