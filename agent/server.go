package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"goa.design/clue/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/wasmatrix/wasmatrix/core"
	"github.com/wasmatrix/wasmatrix/proto/wasmatrixpb"
	"github.com/wasmatrix/wasmatrix/protocol"
	"github.com/wasmatrix/wasmatrix/providers"
)

// correlationMetadataKey is the gRPC metadata key clients use to correlate
// a request across tiers. Absent or empty, a fresh id is minted.
const correlationMetadataKey = "x-correlation-id"

// ServerConfig configures a node agent server.
type ServerConfig struct {
	// Agent manages the local instances. Required.
	Agent *Agent
	// Providers are the capability providers this node hosts.
	Providers []providers.Provider
	// Registry holds capability assignments. A fresh one is created when
	// nil.
	Registry *core.CapabilityRegistry
	// Lifecycle gates invocations on provider availability. A fresh one is
	// created when nil.
	Lifecycle *providers.Lifecycle
	// Reporter pushes delta status reports to the control plane. Optional.
	Reporter *Reporter
}

// Server implements wasmatrixpb.NodeAgentServiceServer.
type Server struct {
	wasmatrixpb.UnimplementedNodeAgentServiceServer

	agent     *Agent
	registry  *core.CapabilityRegistry
	enforcer  *core.PermissionEnforcer
	lifecycle *providers.Lifecycle
	providers map[core.ProviderType]providers.Provider
	reporter  *Reporter
}

var _ wasmatrixpb.NodeAgentServiceServer = (*Server)(nil)

// NewServer validates the configuration and builds the server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Agent == nil {
		return nil, errors.New("agent is required")
	}
	if cfg.Registry == nil {
		cfg.Registry = core.NewCapabilityRegistry()
	}
	if cfg.Lifecycle == nil {
		cfg.Lifecycle = providers.NewLifecycle()
	}
	byType := make(map[core.ProviderType]providers.Provider, len(cfg.Providers))
	for _, p := range cfg.Providers {
		byType[p.Type()] = p
	}
	return &Server{
		agent:     cfg.Agent,
		registry:  cfg.Registry,
		enforcer:  core.NewPermissionEnforcer(cfg.Registry),
		lifecycle: cfg.Lifecycle,
		providers: byType,
		reporter:  cfg.Reporter,
	}, nil
}

// Registry returns the server's capability registry.
func (s *Server) Registry() *core.CapabilityRegistry { return s.registry }

// Lifecycle returns the server's provider lifecycle registry.
func (s *Server) Lifecycle() *providers.Lifecycle { return s.lifecycle }

// Run serves the NodeAgentService on addr until the context is canceled or
// a SIGINT/SIGTERM arrives, then drains in-flight RPCs.
func (s *Server) Run(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	grpcServer := grpc.NewServer()
	wasmatrixpb.RegisterNodeAgentServiceServer(grpcServer, s)

	errCh := make(chan error, 1)
	go func() {
		log.Printf(ctx, "node agent %s listening on %s", s.agent.NodeID(), lis.Addr())
		errCh <- grpcServer.Serve(lis)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	case sig := <-sigCh:
		log.Printf(ctx, "received %s, shutting down", sig)
	}

	grpcServer.GracefulStop()
	return nil
}

// correlationID extracts the caller's correlation id from the incoming gRPC
// metadata, minting a fresh one when the caller sent none.
func correlationID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		for _, v := range md.Get(correlationMetadataKey) {
			if v != "" {
				return v
			}
		}
	}
	return uuid.NewString()
}

// withCorrelation tags the context's logger with the request's correlation
// id.
func withCorrelation(ctx context.Context) context.Context {
	return log.With(ctx, log.KV{K: "correlation_id", V: correlationID(ctx)})
}

// StartInstance brings an instance up on the local engine and reports it
// running.
func (s *Server) StartInstance(ctx context.Context, req *wasmatrixpb.StartInstanceRequest) (*wasmatrixpb.StartInstanceResponse, error) {
	ctx = withCorrelation(ctx)

	policy, err := protocol.RestartPolicyFromProto(req.GetRestartPolicy())
	if err != nil {
		return startFailure(req.GetInstanceId(), core.CodeInvalidRequest, err), nil
	}
	caps := make([]core.CapabilityAssignment, 0, len(req.GetCapabilities()))
	for _, pbAssign := range req.GetCapabilities() {
		a, err := protocol.AssignmentFromProto(pbAssign)
		if err != nil {
			return startFailure(req.GetInstanceId(), core.CodeInvalidRequest, err), nil
		}
		caps = append(caps, a)
	}

	spec := InstanceSpec{
		InstanceID:    req.GetInstanceId(),
		ModuleBytes:   req.GetModuleBytes(),
		RestartPolicy: policy,
		Capabilities:  caps,
	}
	if err := s.agent.StartInstance(ctx, spec); err != nil {
		code := core.CodeInternal
		if core.ValidateModuleBytes(req.GetModuleBytes()) != nil || req.GetInstanceId() == "" {
			code = core.CodeInvalidRequest
		}
		return startFailure(req.GetInstanceId(), code, err), nil
	}

	// The control plane validated the assignments; the local registry
	// learns the providers from them.
	s.registry.ClearInstance(spec.InstanceID)
	for _, a := range caps {
		s.registry.RegisterProvider(a.CapabilityID, a.ProviderType)
		if err := s.registry.Assign(a); err != nil {
			log.Error(ctx, err, log.KV{K: "instance_id", V: spec.InstanceID})
		}
	}

	if s.reporter != nil {
		if err := s.reporter.ReportChange(ctx, spec.InstanceID, core.StatusRunning, ""); err != nil {
			log.Warn(ctx, log.KV{K: "msg", V: "status report failed"}, log.KV{K: "err", V: err.Error()})
		}
	}

	log.Printf(ctx, "started instance %s", spec.InstanceID)
	return &wasmatrixpb.StartInstanceResponse{
		Success:    true,
		InstanceId: spec.InstanceID,
		Message:    "instance started",
	}, nil
}

func startFailure(instanceID, code string, err error) *wasmatrixpb.StartInstanceResponse {
	return &wasmatrixpb.StartInstanceResponse{
		InstanceId: instanceID,
		Message:    err.Error(),
		ErrorCode:  code,
	}
}

// StopInstance tears an instance down and reports it stopped.
func (s *Server) StopInstance(ctx context.Context, req *wasmatrixpb.StopInstanceRequest) (*wasmatrixpb.StopInstanceResponse, error) {
	ctx = withCorrelation(ctx)

	if err := s.agent.StopInstance(ctx, req.GetInstanceId()); err != nil {
		code := core.CodeInternal
		if errors.Is(err, core.ErrNotFound) {
			code = core.CodeInstanceNotFound
		}
		return &wasmatrixpb.StopInstanceResponse{Message: err.Error(), ErrorCode: code}, nil
	}
	s.registry.ClearInstance(req.GetInstanceId())

	if s.reporter != nil {
		if err := s.reporter.ReportChange(ctx, req.GetInstanceId(), core.StatusStopped, ""); err != nil {
			log.Warn(ctx, log.KV{K: "msg", V: "status report failed"}, log.KV{K: "err", V: err.Error()})
		}
	}

	log.Printf(ctx, "stopped instance %s", req.GetInstanceId())
	return &wasmatrixpb.StopInstanceResponse{Success: true, Message: "instance stopped"}, nil
}

// QueryInstance returns the metadata of a live instance.
func (s *Server) QueryInstance(ctx context.Context, req *wasmatrixpb.QueryInstanceRequest) (*wasmatrixpb.QueryInstanceResponse, error) {
	ctx = withCorrelation(ctx)

	md, ok := s.agent.Metadata(req.GetInstanceId())
	if !ok {
		return &wasmatrixpb.QueryInstanceResponse{ErrorCode: core.CodeInstanceNotFound}, nil
	}
	return &wasmatrixpb.QueryInstanceResponse{
		Found:    true,
		Metadata: protocol.MetadataToProto(md),
	}, nil
}

// ListInstances returns metadata for every instance on this node.
func (s *Server) ListInstances(ctx context.Context, _ *wasmatrixpb.ListInstancesRequest) (*wasmatrixpb.ListInstancesResponse, error) {
	ctx = withCorrelation(ctx)

	ids := s.agent.List()
	out := make([]*wasmatrixpb.InstanceMetadata, 0, len(ids))
	for _, id := range ids {
		if md, ok := s.agent.Metadata(id); ok {
			out = append(out, protocol.MetadataToProto(md))
		}
	}
	return &wasmatrixpb.ListInstancesResponse{Instances: out}, nil
}

// InvokeCapability authorizes and dispatches one capability call. Stored
// assignments are the sole authority; the request's permission list is not
// trusted for authorization.
func (s *Server) InvokeCapability(ctx context.Context, req *wasmatrixpb.InvokeCapabilityRequest) (*wasmatrixpb.InvokeCapabilityResponse, error) {
	ctx = withCorrelation(ctx)

	if err := s.lifecycle.EnsureAvailable(req.GetCapabilityId()); err != nil {
		return nil, status.Error(codes.FailedPrecondition, err.Error())
	}

	pt, err := protocol.ProviderTypeFromProto(req.GetProviderType())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	params := map[string]any{}
	if raw := req.GetParamsJson(); raw != "" {
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			return invokeFailure(core.CodeInvalidRequest, fmt.Errorf("parse params: %w", err)), nil
		}
	}

	scope := ""
	if pt == core.ProviderMessaging {
		if topic, ok := params["topic"].(string); ok {
			scope = topic
		}
	}
	if err := s.enforcer.Enforce(req.GetInstanceId(), req.GetCapabilityId(), pt, req.GetOperation(), scope); err != nil {
		return invokeFailure(core.CodeInvokeFailed, err), nil
	}

	provider, ok := s.providers[pt]
	if !ok {
		return invokeFailure(core.CodeInvokeFailed, fmt.Errorf("no %s provider on node %s", pt, s.agent.NodeID())), nil
	}

	assignment, _ := s.registry.Lookup(req.GetInstanceId(), req.GetCapabilityId())
	result, err := provider.Invoke(ctx, providers.Invocation{
		InstanceID:  req.GetInstanceId(),
		Operation:   req.GetOperation(),
		Params:      params,
		Permissions: assignment.Permissions,
	})
	if err != nil {
		return invokeFailure(core.CodeInvokeFailed, err), nil
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return invokeFailure(core.CodeInternal, fmt.Errorf("encode result: %w", err)), nil
	}
	return &wasmatrixpb.InvokeCapabilityResponse{
		Success:    true,
		ResultJson: string(resultJSON),
	}, nil
}

func invokeFailure(code string, err error) *wasmatrixpb.InvokeCapabilityResponse {
	return &wasmatrixpb.InvokeCapabilityResponse{Message: err.Error(), ErrorCode: code}
}
