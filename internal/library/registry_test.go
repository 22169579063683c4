package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValid_KnownSlugs(t *testing.T) {
	t.Parallel()

	for _, id := range []ID{G2, G6, L7, X6, F2, S2} {
		assert.True(t, IsValid(id), "expected %q to be valid", id)
	}
}

func TestIsValid_UnknownSlugs(t *testing.T) {
	t.Parallel()

	for _, id := range []ID{"", "g3", "echarts", "G2", "antv"} {
		assert.False(t, IsValid(id), "expected %q to be invalid", id)
	}
}

func TestGet_ReturnsMatchingDescriptor(t *testing.T) {
	t.Parallel()

	for _, id := range []ID{G2, G6, L7, X6, F2, S2} {
		d, err := Get(id)
		require.NoError(t, err)
		assert.Equal(t, id, d.ID)
		assert.NotEmpty(t, d.Name)
		assert.NotEmpty(t, d.Description)
	}
}

func TestGet_UnknownReturnsError(t *testing.T) {
	t.Parallel()

	_, err := Get("d3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown library")
}

func TestKeywords_UnknownReturnsEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Keywords("nope"))
	assert.NotEmpty(t, Keywords(G2))
}

func TestAll_FixedOrder(t *testing.T) {
	t.Parallel()

	all := All()
	require.Len(t, all, 6)
	assert.Equal(t, G2, all[0].ID)
	assert.Equal(t, S2, all[5].ID)
}
