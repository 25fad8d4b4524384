package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleGatesStoppedProviders(t *testing.T) {
	lc := NewLifecycle()

	// Unknown providers are treated as running on first use.
	require.NoError(t, lc.EnsureAvailable("kv-1"))

	lc.Stop("kv-1")
	err := lc.EnsureAvailable("kv-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderStopped)

	lc.Start("kv-1")
	require.NoError(t, lc.EnsureAvailable("kv-1"))
}

func TestLifecycleTracksProvidersIndependently(t *testing.T) {
	lc := NewLifecycle()
	lc.Start("kv-1")
	lc.Stop("msg-1")

	require.NoError(t, lc.EnsureAvailable("kv-1"))
	require.Error(t, lc.EnsureAvailable("msg-1"))
}

func TestStringParam(t *testing.T) {
	params := map[string]any{"key": "orders", "count": 3}

	v, err := stringParam(params, "key")
	require.NoError(t, err)
	assert.Equal(t, "orders", v)

	_, err = stringParam(params, "missing")
	require.Error(t, err)

	_, err = stringParam(params, "count")
	require.Error(t, err)
}
