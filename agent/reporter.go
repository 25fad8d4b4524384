package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"goa.design/clue/log"

	"github.com/wasmatrix/wasmatrix/core"
	"github.com/wasmatrix/wasmatrix/proto/wasmatrixpb"
	"github.com/wasmatrix/wasmatrix/protocol"
)

// DefaultReportInterval is how often the reporter pushes a full status
// batch to the control plane.
const DefaultReportInterval = 10 * time.Second

// Reporter registers the node with the control plane and keeps it informed:
// delta reports on lifecycle changes plus a periodic heartbeat batch
// covering every instance.
type Reporter struct {
	nodeID   string
	agent    *Agent
	client   wasmatrixpb.ControlPlaneServiceClient
	interval time.Duration

	closeOnce sync.Once
	closeCh   chan struct{}
}

// ReporterOption configures a Reporter.
type ReporterOption func(*Reporter)

// WithReportInterval overrides the heartbeat interval.
func WithReportInterval(d time.Duration) ReporterOption {
	return func(r *Reporter) {
		if d > 0 {
			r.interval = d
		}
	}
}

// NewReporter returns a reporter for the agent's instances.
func NewReporter(agent *Agent, client wasmatrixpb.ControlPlaneServiceClient, opts ...ReporterOption) *Reporter {
	r := &Reporter{
		nodeID:   agent.NodeID(),
		agent:    agent,
		client:   client,
		interval: DefaultReportInterval,
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register announces the node to the control plane.
func (r *Reporter) Register(ctx context.Context, nodeAddress string, capabilities []string, maxInstances uint32) error {
	resp, err := r.client.RegisterNode(ctx, &wasmatrixpb.RegisterNodeRequest{
		NodeId:       r.nodeID,
		NodeAddress:  nodeAddress,
		Capabilities: capabilities,
		MaxInstances: maxInstances,
	})
	if err != nil {
		return fmt.Errorf("register node %s: %w", r.nodeID, err)
	}
	if !resp.GetSuccess() {
		return fmt.Errorf("register node %s rejected: %s", r.nodeID, resp.GetMessage())
	}
	return nil
}

// ReportChange pushes a single-instance delta report.
func (r *Reporter) ReportChange(ctx context.Context, instanceID string, status core.InstanceStatus, errMsg string) error {
	update := &wasmatrixpb.InstanceStatusUpdate{
		InstanceId:   instanceID,
		Status:       protocol.StatusToProto(status),
		ErrorMessage: errMsg,
	}
	return r.send(ctx, []*wasmatrixpb.InstanceStatusUpdate{update})
}

// ReportAll pushes the current status of every instance as one batch.
func (r *Reporter) ReportAll(ctx context.Context) error {
	ids := r.agent.List()
	updates := make([]*wasmatrixpb.InstanceStatusUpdate, 0, len(ids))
	for _, id := range ids {
		updates = append(updates, &wasmatrixpb.InstanceStatusUpdate{
			InstanceId: id,
			Status:     protocol.StatusToProto(r.agent.Status(id)),
		})
	}
	return r.send(ctx, updates)
}

func (r *Reporter) send(ctx context.Context, updates []*wasmatrixpb.InstanceStatusUpdate) error {
	resp, err := r.client.ReportStatus(ctx, &wasmatrixpb.StatusReport{
		NodeId:          r.nodeID,
		InstanceUpdates: updates,
		Timestamp:       time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("report status for %s: %w", r.nodeID, err)
	}
	if !resp.GetSuccess() {
		return fmt.Errorf("report status for %s rejected: %s", r.nodeID, resp.GetMessage())
	}
	return nil
}

// Run sends heartbeat batches until the context is canceled or Close is
// called. Failed reports are logged and retried on the next tick.
func (r *Reporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.closeCh:
			return
		case <-ticker.C:
			if err := r.ReportAll(ctx); err != nil {
				log.Error(ctx, err, log.KV{K: "node_id", V: r.nodeID})
			}
		}
	}
}

// Close stops the heartbeat loop. Safe to call more than once.
func (r *Reporter) Close() {
	r.closeOnce.Do(func() { close(r.closeCh) })
}
