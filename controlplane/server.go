package controlplane

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"goa.design/clue/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/wasmatrix/wasmatrix/core"
	"github.com/wasmatrix/wasmatrix/proto/wasmatrixpb"
	"github.com/wasmatrix/wasmatrix/protocol"
)

// correlationMetadataKey is the gRPC metadata key clients use to correlate
// a request across tiers. Absent or empty, a fresh id is minted.
const correlationMetadataKey = "x-correlation-id"

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

// StaticNode is a node agent known at startup, before it registers itself.
type StaticNode struct {
	NodeID  string
	Address string
}

// ParseStaticNodes parses the STATIC_NODE_AGENTS format: a comma separated
// list of id=address pairs.
func ParseStaticNodes(raw string) ([]StaticNode, error) {
	var out []StaticNode
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		id, addr, ok := strings.Cut(pair, "=")
		if !ok || id == "" || addr == "" {
			return nil, fmt.Errorf("invalid static node entry %q, want id=address", pair)
		}
		out = append(out, StaticNode{NodeID: id, Address: addr})
	}
	return out, nil
}

// Config holds the dependencies and settings of a control plane server.
type Config struct {
	// Store is the instance metadata authority. A fresh one is created when
	// nil.
	Store *Store
	// Repo tracks nodes and assignments. A fresh in-memory repo is created
	// when nil.
	Repo Repo
	// Dialer opens node agent connections. Defaults to plaintext gRPC.
	Dialer AgentDialer
	// Etcd mirrors node presence and provider metadata when set.
	Etcd *EtcdMirror
	// StaticNodes are registered at construction; their instance state is
	// recovered from the agents when reachable.
	StaticNodes []StaticNode
}

// Server is the control plane gRPC server. It serves ControlPlaneService
// for node agents and NodeAgentService for clients, routing the latter to
// the owning nodes. InvokeCapability is intentionally not proxied.
type Server struct {
	wasmatrixpb.UnimplementedControlPlaneServiceServer
	wasmatrixpb.UnimplementedNodeAgentServiceServer

	store  *Store
	repo   Repo
	router *Router
	etcd   *EtcdMirror
}

var (
	_ wasmatrixpb.ControlPlaneServiceServer = (*Server)(nil)
	_ wasmatrixpb.NodeAgentServiceServer    = (*Server)(nil)
)

// New builds the server, registers any static nodes and recovers their
// instance state where reachable.
func New(ctx context.Context, cfg Config) (*Server, error) {
	if cfg.Store == nil {
		cfg.Store = NewStore(nil)
	}
	if cfg.Repo == nil {
		cfg.Repo = NewMemoryRepo()
	}
	router := NewRouter(cfg.Repo, cfg.Store, cfg.Dialer, cfg.Etcd)

	s := &Server{
		store:  cfg.Store,
		repo:   cfg.Repo,
		router: router,
		etcd:   cfg.Etcd,
	}

	for _, node := range cfg.StaticNodes {
		if err := router.RegisterNode(ctx, node.NodeID, node.Address, nil, 0); err != nil {
			return nil, fmt.Errorf("register static node %s: %w", node.NodeID, err)
		}
		if err := router.RecoverNodeState(ctx, node.NodeID); err != nil {
			log.Warn(ctx, log.KV{K: "msg", V: "state recovery failed"}, log.KV{K: "node_id", V: node.NodeID}, log.KV{K: "err", V: err.Error()})
		}
	}
	return s, nil
}

// Router returns the server's router.
func (s *Server) Router() *Router { return s.router }

// Store returns the server's instance store.
func (s *Server) Store() *Store { return s.store }

// Close releases held resources.
func (s *Server) Close() error {
	if s.etcd != nil {
		return s.etcd.Close()
	}
	return nil
}

// Run serves both gRPC services on addr until the context is canceled or a
// SIGINT/SIGTERM arrives, then drains in-flight RPCs.
func (s *Server) Run(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	grpcServer := grpc.NewServer()
	wasmatrixpb.RegisterControlPlaneServiceServer(grpcServer, s)
	wasmatrixpb.RegisterNodeAgentServiceServer(grpcServer, s)

	errCh := make(chan error, 1)
	go func() {
		log.Printf(ctx, "control plane listening on %s", lis.Addr())
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

// RegisterNode records a node announcing itself.
func (s *Server) RegisterNode(ctx context.Context, req *wasmatrixpb.RegisterNodeRequest) (*wasmatrixpb.RegisterNodeResponse, error) {
	ctx = withCorrelation(ctx)

	if req.GetNodeId() == "" || req.GetNodeAddress() == "" {
		return nil, status.Error(codes.InvalidArgument, "node id and address are required")
	}
	if err := s.router.RegisterNode(ctx, req.GetNodeId(), req.GetNodeAddress(), req.GetCapabilities(), req.GetMaxInstances()); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	// A re-registering node may carry instances started before a control
	// plane restart; pull its state back in. Failure to do so does not fail
	// the registration.
	if err := s.router.RecoverNodeState(ctx, req.GetNodeId()); err != nil {
		log.Warn(ctx, log.KV{K: "msg", V: "state recovery failed"}, log.KV{K: "node_id", V: req.GetNodeId()}, log.KV{K: "err", V: err.Error()})
	}
	log.Printf(ctx, "node %s registered at %s", req.GetNodeId(), req.GetNodeAddress())
	return &wasmatrixpb.RegisterNodeResponse{Success: true, Message: "node registered"}, nil
}

// ReportStatus ingests a node's heartbeat and instance updates.
func (s *Server) ReportStatus(ctx context.Context, req *wasmatrixpb.StatusReport) (*wasmatrixpb.ReportStatusResponse, error) {
	ctx = withCorrelation(ctx)

	if req.GetNodeId() == "" {
		return nil, status.Error(codes.InvalidArgument, "node id is required")
	}

	updates := make([]StatusUpdate, 0, len(req.GetInstanceUpdates()))
	for _, u := range req.GetInstanceUpdates() {
		st, err := protocol.StatusFromProto(u.GetStatus())
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		updates = append(updates, StatusUpdate{
			InstanceID:   u.GetInstanceId(),
			Status:       st,
			ErrorMessage: u.GetErrorMessage(),
		})
	}

	var reportedAt time.Time
	if ts := req.GetTimestamp(); ts > 0 {
		reportedAt = time.Unix(ts, 0).UTC()
	}
	if err := s.router.RecordStatusReport(ctx, req.GetNodeId(), updates, reportedAt); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, status.Error(codes.NotFound, err.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &wasmatrixpb.ReportStatusResponse{Success: true}, nil
}

// StartInstance routes a client start request to the least loaded capable
// node.
func (s *Server) StartInstance(ctx context.Context, req *wasmatrixpb.StartInstanceRequest) (*wasmatrixpb.StartInstanceResponse, error) {
	ctx = withCorrelation(ctx)

	policy, err := protocol.RestartPolicyFromProto(req.GetRestartPolicy())
	if err != nil {
		return &wasmatrixpb.StartInstanceResponse{Message: err.Error(), ErrorCode: core.CodeInvalidRequest}, nil
	}
	caps := make([]core.CapabilityAssignment, 0, len(req.GetCapabilities()))
	for _, pbAssign := range req.GetCapabilities() {
		a, err := protocol.AssignmentFromProto(pbAssign)
		if err != nil {
			return &wasmatrixpb.StartInstanceResponse{Message: err.Error(), ErrorCode: core.CodeInvalidRequest}, nil
		}
		caps = append(caps, a)
	}

	instanceID, err := s.router.RouteStartInstance(ctx, req.GetModuleBytes(), policy, caps)
	if err != nil {
		return startErrorResponse(err), nil
	}
	return &wasmatrixpb.StartInstanceResponse{
		Success:    true,
		InstanceId: instanceID,
		Message:    "instance started",
	}, nil
}

func startErrorResponse(err error) *wasmatrixpb.StartInstanceResponse {
	var resp *core.ErrorResponse
	if errors.As(err, &resp) {
		return &wasmatrixpb.StartInstanceResponse{Message: resp.Message, ErrorCode: resp.ErrorCode}
	}
	return &wasmatrixpb.StartInstanceResponse{Message: err.Error(), ErrorCode: core.CodeInternal}
}

// StopInstance routes a client stop request to the owning node.
func (s *Server) StopInstance(ctx context.Context, req *wasmatrixpb.StopInstanceRequest) (*wasmatrixpb.StopInstanceResponse, error) {
	ctx = withCorrelation(ctx)

	if req.GetInstanceId() == "" {
		return &wasmatrixpb.StopInstanceResponse{Message: "instance id is empty", ErrorCode: core.CodeInvalidRequest}, nil
	}
	if err := s.router.RouteStopInstance(ctx, req.GetInstanceId()); err != nil {
		var resp *core.ErrorResponse
		if errors.As(err, &resp) {
			return &wasmatrixpb.StopInstanceResponse{Message: resp.Message, ErrorCode: resp.ErrorCode}, nil
		}
		return &wasmatrixpb.StopInstanceResponse{Message: err.Error(), ErrorCode: core.CodeInternal}, nil
	}
	return &wasmatrixpb.StopInstanceResponse{Success: true, Message: "instance stopped"}, nil
}

// QueryInstance returns live metadata from the owning node, or the stored
// record when the instance is not assigned.
func (s *Server) QueryInstance(ctx context.Context, req *wasmatrixpb.QueryInstanceRequest) (*wasmatrixpb.QueryInstanceResponse, error) {
	ctx = withCorrelation(ctx)

	md, err := s.router.RouteQueryInstance(ctx, req.GetInstanceId())
	if err != nil {
		var resp *core.ErrorResponse
		if errors.As(err, &resp) {
			return &wasmatrixpb.QueryInstanceResponse{ErrorCode: resp.ErrorCode}, nil
		}
		return &wasmatrixpb.QueryInstanceResponse{ErrorCode: core.CodeInternal}, nil
	}
	return &wasmatrixpb.QueryInstanceResponse{Found: true, Metadata: protocol.MetadataToProto(md)}, nil
}

// ListInstances fans out across all registered nodes.
func (s *Server) ListInstances(ctx context.Context, _ *wasmatrixpb.ListInstancesRequest) (*wasmatrixpb.ListInstancesResponse, error) {
	ctx = withCorrelation(ctx)

	mds, err := s.router.RouteListInstances(ctx)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out := make([]*wasmatrixpb.InstanceMetadata, 0, len(mds))
	for _, md := range mds {
		out = append(out, protocol.MetadataToProto(md))
	}
	return &wasmatrixpb.ListInstancesResponse{Instances: out}, nil
}

// InvokeCapability is served by node agents only; the control plane does
// not proxy capability calls.
func (s *Server) InvokeCapability(context.Context, *wasmatrixpb.InvokeCapabilityRequest) (*wasmatrixpb.InvokeCapabilityResponse, error) {
	return nil, status.Error(codes.Unimplemented, "capability invocation is served by node agents")
}
