package controlplane

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// etcd key prefixes. Node presence and provider metadata are the only
// things ever written; instance state stays out of etcd.
const (
	etcdNodePrefix     = "/wasmatrix/nodes/"
	etcdProviderPrefix = "/wasmatrix/providers/"
)

// EtcdMetadataKind classifies an etcd key.
type EtcdMetadataKind int

const (
	EtcdKindNode EtcdMetadataKind = iota + 1
	EtcdKindProvider
)

// ClassifyEtcdKey returns the kind of an allowed key, or false for any key
// outside the two permitted prefixes.
func ClassifyEtcdKey(key string) (EtcdMetadataKind, bool) {
	switch {
	case strings.HasPrefix(key, etcdNodePrefix):
		return EtcdKindNode, true
	case strings.HasPrefix(key, etcdProviderPrefix):
		return EtcdKindProvider, true
	default:
		return 0, false
	}
}

// EtcdConfig holds the etcd connection settings.
type EtcdConfig struct {
	Endpoints []string
	Username  string
	Password  string
}

// EtcdConfigFromEnv reads ETCD_ENDPOINTS (comma separated), ETCD_USERNAME
// and ETCD_PASSWORD. It returns false when no endpoints are configured, in
// which case the mirror stays disabled.
func EtcdConfigFromEnv() (EtcdConfig, bool) {
	raw := os.Getenv("ETCD_ENDPOINTS")
	var endpoints []string
	for _, ep := range strings.Split(raw, ",") {
		if ep = strings.TrimSpace(ep); ep != "" {
			endpoints = append(endpoints, ep)
		}
	}
	if len(endpoints) == 0 {
		return EtcdConfig{}, false
	}
	return EtcdConfig{
		Endpoints: endpoints,
		Username:  os.Getenv("ETCD_USERNAME"),
		Password:  os.Getenv("ETCD_PASSWORD"),
	}, true
}

// etcdKV is the slice of the etcd client the mirror uses.
type etcdKV interface {
	Put(ctx context.Context, key, val string, opts ...clientv3.OpOption) (*clientv3.PutResponse, error)
}

// EtcdMirror mirrors node presence and provider metadata into etcd. Writes
// are limited to the two permitted key prefixes.
type EtcdMirror struct {
	kv     etcdKV
	client *clientv3.Client
}

// NewEtcdMirror connects to etcd with the given config.
func NewEtcdMirror(cfg EtcdConfig) (*EtcdMirror, error) {
	client, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		Username:    cfg.Username,
		Password:    cfg.Password,
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to etcd: %w", err)
	}
	return &EtcdMirror{kv: client.KV, client: client}, nil
}

// newEtcdMirrorWithKV is the test seam.
func newEtcdMirrorWithKV(kv etcdKV) *EtcdMirror {
	return &EtcdMirror{kv: kv}
}

// Close releases the etcd connection.
func (m *EtcdMirror) Close() error {
	if m.client == nil {
		return nil
	}
	return m.client.Close()
}

type nodePresence struct {
	NodeID      string `json:"node_id"`
	NodeAddress string `json:"node_address"`
	Heartbeat   string `json:"heartbeat"`
}

type providerPresence struct {
	ProviderID   string `json:"provider_id"`
	ProviderType string `json:"provider_type"`
	NodeID       string `json:"node_id"`
	UpdatedAt    string `json:"updated_at"`
}

// PutNodePresence writes a node's presence record.
func (m *EtcdMirror) PutNodePresence(ctx context.Context, nodeID, nodeAddress string, heartbeat time.Time) error {
	value, err := json.Marshal(nodePresence{
		NodeID:      nodeID,
		NodeAddress: nodeAddress,
		Heartbeat:   heartbeat.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return m.putLimited(ctx, etcdNodePrefix+nodeID, string(value))
}

// PutProviderMetadata writes a provider's metadata record.
func (m *EtcdMirror) PutProviderMetadata(ctx context.Context, providerID, providerType, nodeID string, updatedAt time.Time) error {
	value, err := json.Marshal(providerPresence{
		ProviderID:   providerID,
		ProviderType: providerType,
		NodeID:       nodeID,
		UpdatedAt:    updatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return m.putLimited(ctx, etcdProviderPrefix+providerID, string(value))
}

// putLimited rejects any key outside the permitted prefixes before writing.
func (m *EtcdMirror) putLimited(ctx context.Context, key, value string) error {
	if _, ok := ClassifyEtcdKey(key); !ok {
		return fmt.Errorf("disallowed etcd key %q", key)
	}
	if _, err := m.kv.Put(ctx, key, value); err != nil {
		return fmt.Errorf("etcd put %s: %w", key, err)
	}
	return nil
}
