package buddy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPoolLazilyInitializes(t *testing.T) {
	defer defaultPool.Reset()

	ptr, err := Reserve(16)
	require.NoError(t, err)
	require.NotNil(t, ptr)
	assert.True(t, defaultPool.initialized)

	Release(ptr)
}

func TestDefaultPoolInitIsExplicitAndIdempotent(t *testing.T) {
	defer defaultPool.Reset()

	require.NoError(t, Init(1<<20))
	size := defaultPool.size
	require.NoError(t, Init(1<<10))
	assert.Equal(t, size, defaultPool.size)
}
