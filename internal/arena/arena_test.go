package arena

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireReturnsUsableRegion(t *testing.T) {
	const size = 1 << 16
	base, err := Acquire(size)
	require.NoError(t, err)
	require.NotZero(t, base)

	region := unsafe.Slice((*byte)(unsafe.Pointer(base)), size)
	region[0] = 0xAB
	region[size-1] = 0xCD
	assert.Equal(t, byte(0xAB), region[0])
	assert.Equal(t, byte(0xCD), region[size-1])

	require.NoError(t, Release(base, size))
}

func TestReleaseOnZeroBaseIsNoOp(t *testing.T) {
	assert.NoError(t, Release(0, 0))
}
