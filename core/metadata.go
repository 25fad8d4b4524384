package core

import "time"

// ProviderMetadata describes a capability provider hosted somewhere in the
// cluster. It lives in its own map: provider records and instance records
// never share storage.
type ProviderMetadata struct {
	ProviderID   string
	ProviderType string
	NodeID       string
	LastUpdated  time.Time
}
