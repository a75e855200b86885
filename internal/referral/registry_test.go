package referral

import (
	"path/filepath"
	"testing"

	"github.com/CrossPunks/marketplace-engine/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) Registry {
	t.Helper()

	bolt, err := repository.NewBolt(filepath.Join(t.TempDir(), "referral.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = bolt.Close() })

	return NewRegistry(bolt.Referrals())
}

func TestRegister(t *testing.T) {
	registry := newRegistry(t)

	id, err := registry.Register("alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), id)

	id, err = registry.Register("bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(1001), id)
}

func TestRegister_Idempotent(t *testing.T) {
	registry := newRegistry(t)

	first, err := registry.Register("alice")
	require.NoError(t, err)

	// Re-registration returns the existing id and never burns a new one.
	second, err := registry.Register("alice")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	next, err := registry.Register("bob")
	require.NoError(t, err)
	assert.Equal(t, first+1, next)
}

func TestLookup(t *testing.T) {
	registry := newRegistry(t)

	id, err := registry.Register("alice")
	require.NoError(t, err)

	identity, err := registry.Lookup(id)
	require.NoError(t, err)
	assert.Equal(t, "alice", identity)
}

func TestLookup_Unknown(t *testing.T) {
	registry := newRegistry(t)

	_, err := registry.Lookup(9999)
	assert.ErrorIs(t, err, ErrUnknownReferral)
}
