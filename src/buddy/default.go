package buddy

import "unsafe"

// defaultPool backs the package-level convenience functions below.
// Reserve lazily initializes it with the default arena size on first
// use, so callers who don't need more than one pool can skip Init
// entirely; Pool.Init stays explicit for callers who manage their own.
var defaultPool Pool

// Init initializes the default pool. A second call is a no-op.
func Init(size uintptr) error {
	return defaultPool.Init(size)
}

// Reserve reserves from the default pool, initializing it with the
// default arena size on first use.
func Reserve(n uintptr) (unsafe.Pointer, error) {
	return defaultPool.Reserve(n)
}

// Release releases a pointer obtained from the default pool.
func Release(ptr unsafe.Pointer) {
	defaultPool.Release(ptr)
}

// Resize resizes a pointer obtained from the default pool.
func Resize(ptr unsafe.Pointer, n uintptr) (unsafe.Pointer, error) {
	return defaultPool.Resize(ptr, n)
}

// ZeroReserve reserves a zeroed count*elem byte region from the default pool.
func ZeroReserve(count, elem uintptr) (unsafe.Pointer, error) {
	return defaultPool.ZeroReserve(count, elem)
}
