// Package arena is the allocator's external collaborator: it asks the
// operating system for a power-of-two-sized, page-backed region and
// hands back its base address for pointer arithmetic.
package arena

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Acquire extends the process address space by size bytes via an
// anonymous private mapping and returns the base address of the region.
func Acquire(size uintptr) (uintptr, error) {
	data, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return 0, fmt.Errorf("arena: mmap %d bytes: %w", size, err)
	}
	// data's backing array is the mapping itself; base is pointer arithmetic's anchor.
	return uintptr(unsafe.Pointer(&data[0])), nil
}

// Release returns the region starting at base to the operating system.
// Production callers never need this — the arena's lifetime equals the
// process's — but tests reset between cases and must not leak mappings.
func Release(base, size uintptr) error {
	if base == 0 {
		return nil
	}
	region := unsafe.Slice((*byte)(unsafe.Pointer(base)), size)
	return unix.Munmap(region)
}
