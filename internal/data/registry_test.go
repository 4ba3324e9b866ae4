package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekefan/afitlms/internal/domain/model"
)

func TestRegistryPutAndLookup(t *testing.T) {
	reg := NewRegistry()
	reg.Put("04AB11", model.Identity{Username: "alice", UniqueID: "AF123"})

	identity, ok := reg.GetByDevice("04AB11")
	require.True(t, ok)
	assert.Equal(t, "alice", identity.Username)

	assert.True(t, reg.ContainsUniqueID("AF123"))
	assert.False(t, reg.ContainsUniqueID("AF999"))

	_, ok = reg.GetByDevice("FFFF")
	assert.False(t, ok)
}

func TestRegistryRebindDevice(t *testing.T) {
	reg := NewRegistry()
	reg.Put("04AB11", model.Identity{Username: "alice", UniqueID: "AF123"})
	reg.Put("04AB11", model.Identity{Username: "bob", UniqueID: "AF456"})

	identity, ok := reg.GetByDevice("04AB11")
	require.True(t, ok)
	assert.Equal(t, "bob", identity.Username)

	// The displaced identity no longer counts as enrolled.
	assert.False(t, reg.ContainsUniqueID("AF123"))
	assert.True(t, reg.ContainsUniqueID("AF456"))
	assert.Equal(t, 1, reg.Len())
}
