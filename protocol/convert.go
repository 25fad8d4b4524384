// Package protocol converts between the wire messages in wasmatrixpb and the
// core domain types. Conversions from the wire are strict: unspecified or
// out-of-range enum values are rejected rather than defaulted.
package protocol

import (
	"fmt"
	"time"

	"github.com/wasmatrix/wasmatrix/core"
	"github.com/wasmatrix/wasmatrix/proto/wasmatrixpb"
)

// StatusToProto maps a core status to its wire enum value.
func StatusToProto(s core.InstanceStatus) wasmatrixpb.InstanceStatus {
	switch s {
	case core.StatusStarting:
		return wasmatrixpb.InstanceStatus_INSTANCE_STATUS_STARTING
	case core.StatusRunning:
		return wasmatrixpb.InstanceStatus_INSTANCE_STATUS_RUNNING
	case core.StatusStopped:
		return wasmatrixpb.InstanceStatus_INSTANCE_STATUS_STOPPED
	case core.StatusCrashed:
		return wasmatrixpb.InstanceStatus_INSTANCE_STATUS_CRASHED
	default:
		return wasmatrixpb.InstanceStatus_INSTANCE_STATUS_UNSPECIFIED
	}
}

// StatusFromProto maps a wire status to the core type, rejecting the
// unspecified and unknown values.
func StatusFromProto(s wasmatrixpb.InstanceStatus) (core.InstanceStatus, error) {
	switch s {
	case wasmatrixpb.InstanceStatus_INSTANCE_STATUS_STARTING:
		return core.StatusStarting, nil
	case wasmatrixpb.InstanceStatus_INSTANCE_STATUS_RUNNING:
		return core.StatusRunning, nil
	case wasmatrixpb.InstanceStatus_INSTANCE_STATUS_STOPPED:
		return core.StatusStopped, nil
	case wasmatrixpb.InstanceStatus_INSTANCE_STATUS_CRASHED:
		return core.StatusCrashed, nil
	default:
		return 0, fmt.Errorf("invalid instance status %d", s)
	}
}

// ProviderTypeToProto maps a core provider type to its wire enum value.
func ProviderTypeToProto(t core.ProviderType) wasmatrixpb.ProviderType {
	switch t {
	case core.ProviderKV:
		return wasmatrixpb.ProviderType_PROVIDER_TYPE_KV
	case core.ProviderHTTP:
		return wasmatrixpb.ProviderType_PROVIDER_TYPE_HTTP
	case core.ProviderMessaging:
		return wasmatrixpb.ProviderType_PROVIDER_TYPE_MESSAGING
	default:
		return wasmatrixpb.ProviderType_PROVIDER_TYPE_UNSPECIFIED
	}
}

// ProviderTypeFromProto maps a wire provider type to the core type,
// rejecting the unspecified and unknown values.
func ProviderTypeFromProto(t wasmatrixpb.ProviderType) (core.ProviderType, error) {
	switch t {
	case wasmatrixpb.ProviderType_PROVIDER_TYPE_KV:
		return core.ProviderKV, nil
	case wasmatrixpb.ProviderType_PROVIDER_TYPE_HTTP:
		return core.ProviderHTTP, nil
	case wasmatrixpb.ProviderType_PROVIDER_TYPE_MESSAGING:
		return core.ProviderMessaging, nil
	default:
		return 0, fmt.Errorf("invalid provider type %d", t)
	}
}

// RestartPolicyToProto maps a core restart policy to the wire shape.
func RestartPolicyToProto(p core.RestartPolicy) *wasmatrixpb.RestartPolicy {
	out := &wasmatrixpb.RestartPolicy{
		MaxRetries:     p.MaxRetries,
		BackoffSeconds: p.BackoffSeconds,
	}
	switch p.Kind {
	case core.PolicyNever:
		out.Type = wasmatrixpb.RestartPolicyType_RESTART_POLICY_TYPE_NEVER
	case core.PolicyAlways:
		out.Type = wasmatrixpb.RestartPolicyType_RESTART_POLICY_TYPE_ALWAYS
	case core.PolicyOnFailure:
		out.Type = wasmatrixpb.RestartPolicyType_RESTART_POLICY_TYPE_ON_FAILURE
	}
	return out
}

// RestartPolicyFromProto maps a wire restart policy to the core type. A nil
// policy means the instance is never restarted.
func RestartPolicyFromProto(p *wasmatrixpb.RestartPolicy) (core.RestartPolicy, error) {
	if p == nil {
		return core.NeverRestart(), nil
	}
	switch p.GetType() {
	case wasmatrixpb.RestartPolicyType_RESTART_POLICY_TYPE_NEVER:
		return core.NeverRestart(), nil
	case wasmatrixpb.RestartPolicyType_RESTART_POLICY_TYPE_ALWAYS:
		policy := core.AlwaysRestart()
		policy.BackoffSeconds = p.GetBackoffSeconds()
		return policy, nil
	case wasmatrixpb.RestartPolicyType_RESTART_POLICY_TYPE_ON_FAILURE:
		return core.OnFailureRestart(p.GetMaxRetries(), p.GetBackoffSeconds()), nil
	default:
		return core.RestartPolicy{}, fmt.Errorf("invalid restart policy type %d", p.GetType())
	}
}

// AssignmentToProto maps a core capability assignment to the wire shape.
func AssignmentToProto(a core.CapabilityAssignment) *wasmatrixpb.CapabilityAssignment {
	return &wasmatrixpb.CapabilityAssignment{
		InstanceId:   a.InstanceID,
		CapabilityId: a.CapabilityID,
		ProviderType: ProviderTypeToProto(a.ProviderType),
		Permissions:  a.Permissions,
	}
}

// AssignmentFromProto maps a wire capability assignment to the core type.
func AssignmentFromProto(a *wasmatrixpb.CapabilityAssignment) (core.CapabilityAssignment, error) {
	if a == nil {
		return core.CapabilityAssignment{}, fmt.Errorf("nil capability assignment")
	}
	pt, err := ProviderTypeFromProto(a.GetProviderType())
	if err != nil {
		return core.CapabilityAssignment{}, err
	}
	return core.CapabilityAssignment{
		InstanceID:   a.GetInstanceId(),
		CapabilityID: a.GetCapabilityId(),
		ProviderType: pt,
		Permissions:  a.GetPermissions(),
	}, nil
}

// MetadataToProto maps core instance metadata to the wire shape.
func MetadataToProto(md core.InstanceMetadata) *wasmatrixpb.InstanceMetadata {
	return &wasmatrixpb.InstanceMetadata{
		InstanceId:    md.InstanceID,
		ModuleHash:    md.ModuleHash,
		Status:        StatusToProto(md.Status),
		CreatedAt:     md.CreatedAt.Unix(),
		RestartPolicy: RestartPolicyToProto(md.RestartPolicy),
		NodeId:        md.NodeID,
	}
}

// MetadataFromProto maps wire instance metadata to the core type.
func MetadataFromProto(md *wasmatrixpb.InstanceMetadata) (core.InstanceMetadata, error) {
	if md == nil {
		return core.InstanceMetadata{}, fmt.Errorf("nil instance metadata")
	}
	status, err := StatusFromProto(md.GetStatus())
	if err != nil {
		return core.InstanceMetadata{}, err
	}
	policy, err := RestartPolicyFromProto(md.GetRestartPolicy())
	if err != nil {
		return core.InstanceMetadata{}, err
	}
	return core.InstanceMetadata{
		InstanceID:    md.GetInstanceId(),
		ModuleHash:    md.GetModuleHash(),
		Status:        status,
		CreatedAt:     time.Unix(md.GetCreatedAt(), 0).UTC(),
		RestartPolicy: policy,
		NodeID:        md.GetNodeId(),
	}, nil
}
