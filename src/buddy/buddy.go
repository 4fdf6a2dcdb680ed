// Package buddy implements a binary buddy memory allocator over a
// single contiguous arena obtained from the operating system. Every
// reservation is serviced by splitting a power-of-two block down to the
// smallest order that fits; every release walks the freed block's
// buddy chain upward, coalescing while a buddy of the same order is
// also free.
//
// See Knuth, The Art of Computer Programming vol. 1, Algorithm R
// (reservation) and Algorithm S (liberation), p. 442-444.
package buddy

import (
	"fmt"
	"unsafe"

	"github.com/binaryarena/buddyalloc/internal/arena"
)

// Tag values for a block header. Signed because SENTINEL is negative —
// it must never collide with a real tag and is never observed by a
// caller, only used to terminate a list walk.
const (
	TagReserved int8 = 0
	TagFree     int8 = 1
	TagSentinel int8 = -1
)

// MaxOrder bounds every order this package manages: arenas up to
// 2^(MaxOrder-1) bytes.
const MaxOrder = 37

// defaultArenaSize is used by Init(0).
const defaultArenaSize = 512 * 1024 * 1024

// header is the in-band block header prepended to every block. For a
// RESERVED block only tag and order carry meaning. For a FREE block all
// four fields participate in the circular doubly-linked list anchored
// at avail[order].
type header struct {
	tag   int8
	order uint8
	next  *header
	prev  *header
}

var headerSize = unsafe.Sizeof(header{})

// minOrder is the smallest order whose block can hold a header plus at
// least one payload byte. Splits never produce a block smaller than
// this, and Reserve never targets an order below it — a block has to
// be big enough to carry its own header before it can carry anything
// else.
var minOrder = orderOf(headerSize + 1)

// orderOf returns the smallest k such that 2^k >= n, for n >= 1.
// Callers guarantee n >= 1; order_of(0) is not defined by any caller
// here (Reserve and Resize add headerSize first, and Init passes a
// nonzero arena size).
func orderOf(n uintptr) uint {
	k := uint(0)
	for (uintptr(1) << k) < n {
		k++
	}
	return k
}

// Pool is a single buddy arena and its per-order free-list table. The
// zero value is an uninitialized pool; call Init before use, or use the
// package-level operations which lazily init a default pool.
type Pool struct {
	start       uintptr
	order       uint
	size        uintptr
	avail       [MaxOrder]header
	initialized bool
}

// Init acquires a size-byte arena (or the 512 MiB default when size is
// 0) and seeds the free-list table with the arena as a single top-order
// free block. The requested size is rounded up to the next power of
// two. A second call on an already-initialized pool is a no-op.
func (p *Pool) Init(size uintptr) error {
	if p.initialized {
		return nil
	}

	var order uint
	if size == 0 {
		order = orderOf(defaultArenaSize)
	} else {
		order = orderOf(size)
	}
	if order < minOrder {
		order = minOrder
	}
	if order >= MaxOrder {
		return fmt.Errorf("buddy: requested arena order %d exceeds architectural max: %w", order, ErrOutOfMemory)
	}

	bytes := uintptr(1) << order
	base, err := arena.Acquire(bytes)
	if err != nil {
		return fmt.Errorf("buddy: %v: %w", err, ErrOutOfMemory)
	}

	p.start = base
	p.order = order
	p.size = bytes

	for k := range p.avail {
		p.avail[k].tag = TagSentinel
		p.avail[k].order = uint8(k)
		p.avail[k].next = &p.avail[k]
		p.avail[k].prev = &p.avail[k]
	}

	first := (*header)(unsafe.Pointer(p.start))
	first.tag = TagFree
	first.order = uint8(order)
	first.next = &p.avail[order]
	first.prev = &p.avail[order]
	p.avail[order].next = first
	p.avail[order].prev = first

	p.initialized = true
	return nil
}

// Reset tears the pool down and returns its arena to the operating
// system. Production code never needs this — the arena's lifetime
// equals the process's — but it lets tests start each case from a
// clean pool without leaking mappings across cases.
func (p *Pool) Reset() error {
	if !p.initialized {
		return nil
	}
	err := arena.Release(p.start, p.size)
	*p = Pool{}
	return err
}

// detachHead unlinks and returns head's successor, or nil if the list
// is empty (head points to itself).
func detachHead(head *header) *header {
	first := head.next
	if first == head {
		return nil
	}
	first.prev.next = first.next
	first.next.prev = first.prev
	first.next = nil
	first.prev = nil
	return first
}

// insertHead links block in immediately after head: head <-> block <-> head.next.
func insertHead(head, block *header) {
	block.next = head.next
	block.prev = head
	head.next.prev = block
	head.next = block
}

// buddyOf returns the address of block's buddy at order k: the unique
// sibling produced when a block of order k+1 is split, differing from
// block only in bit k of its offset from the arena start.
func (p *Pool) buddyOf(block *header, k uint) *header {
	offset := uintptr(unsafe.Pointer(block)) - p.start
	buddyOffset := offset ^ (uintptr(1) << k)
	return (*header)(unsafe.Pointer(p.start + buddyOffset))
}

// Reserve returns a pointer to at least n usable bytes, or nil and
// ErrOutOfMemory if the arena's top order can't satisfy the request or
// no free block of sufficient order exists. Algorithm R.
func (p *Pool) Reserve(n uintptr) (unsafe.Pointer, error) {
	if !p.initialized {
		if err := p.Init(0); err != nil {
			return nil, err
		}
	}

	k := orderOf(n + headerSize)
	if k < minOrder {
		k = minOrder
	}
	if k > p.order {
		return nil, fmt.Errorf("buddy: requested order %d exceeds arena order %d: %w", k, p.order, ErrOutOfMemory)
	}

	// 1. Find the smallest j, k <= j <= m, whose free list is non-empty.
	j := k
	for j <= p.order && p.avail[j].next == &p.avail[j] {
		j++
	}
	if j > p.order {
		return nil, fmt.Errorf("buddy: no free block of order >= %d: %w", k, ErrOutOfMemory)
	}

	// 2. Detach the head and retag it for the target order.
	block := detachHead(&p.avail[j])
	block.tag = TagReserved
	block.order = uint8(k)

	// 3-4. Split down from j to k, planting one free buddy per order.
	for j > k {
		j--
		buddy := (*header)(unsafe.Pointer(uintptr(unsafe.Pointer(block)) + (uintptr(1) << j)))
		buddy.tag = TagFree
		buddy.order = uint8(j)
		insertHead(&p.avail[j], buddy)
	}

	return unsafe.Pointer(uintptr(unsafe.Pointer(block)) + headerSize), nil
}

// Release returns a block previously obtained from Reserve, ZeroReserve,
// or Resize to the free structure, coalescing with its buddy chain as
// far up as possible. Releasing nil, or releasing on an uninitialized
// pool, is a silent no-op. Releasing any other pointer is undefined
// behavior — the allocator does not validate. Algorithm S.
func (p *Pool) Release(ptr unsafe.Pointer) {
	if ptr == nil || !p.initialized {
		return
	}

	block := (*header)(unsafe.Pointer(uintptr(ptr) - headerSize))
	k := uint(block.order)

	for k < p.order {
		buddy := p.buddyOf(block, k)
		if buddy.tag != TagFree || uint(buddy.order) != k {
			break
		}
		// Buddy is free and the same order: detach it and merge.
		buddy.prev.next = buddy.next
		buddy.next.prev = buddy.prev
		buddy.next = nil
		buddy.prev = nil

		if uintptr(unsafe.Pointer(buddy)) < uintptr(unsafe.Pointer(block)) {
			block = buddy
		}
		k++
		block.order = uint8(k)
	}

	block.tag = TagFree
	insertHead(&p.avail[k], block)
}

// Resize changes the usable size of a block obtained from Reserve,
// ZeroReserve, or a prior Resize.
//
//   - (nil, 0) fails with ErrOutOfMemory.
//   - (nil, n) is equivalent to Reserve(n).
//   - (p, 0) is equivalent to Release(p) and returns nil.
//   - Otherwise, if the new size maps to the block's current order the
//     pointer is returned unchanged. Else a new block is reserved, the
//     smaller of n and the old block's payload is copied, and the old
//     block is released.
func (p *Pool) Resize(ptr unsafe.Pointer, n uintptr) (unsafe.Pointer, error) {
	if ptr == nil && n == 0 {
		return nil, fmt.Errorf("buddy: resize(nil, 0): %w", ErrOutOfMemory)
	}
	if ptr == nil {
		return p.Reserve(n)
	}
	if n == 0 {
		p.Release(ptr)
		return nil, nil
	}

	block := (*header)(unsafe.Pointer(uintptr(ptr) - headerSize))
	k := orderOf(n + headerSize)
	if k < minOrder {
		k = minOrder
	}
	if k == uint(block.order) {
		return ptr, nil
	}

	newPtr, err := p.Reserve(n)
	if err != nil {
		return nil, err
	}

	oldPayload := (uintptr(1) << block.order) - headerSize
	copyLen := n
	if oldPayload < copyLen {
		copyLen = oldPayload
	}
	src := unsafe.Slice((*byte)(ptr), copyLen)
	dst := unsafe.Slice((*byte)(newPtr), copyLen)
	copy(dst, src)

	p.Release(ptr)
	return newPtr, nil
}

// ZeroReserve reserves count*elem bytes and clears them to zero. The
// core does not check the multiplication for overflow; the caller is
// responsible for sane count and elem values.
func (p *Pool) ZeroReserve(count, elem uintptr) (unsafe.Pointer, error) {
	n := count * elem
	ptr, err := p.Reserve(n)
	if err != nil {
		return nil, err
	}
	mem := unsafe.Slice((*byte)(ptr), n)
	clear(mem)
	return ptr, nil
}
