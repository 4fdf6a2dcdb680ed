package buddy

import (
	"fmt"
	"io"
)

// DumpFreeLists is a diagnostic, non-mutating traversal of every
// per-order free list. For each order it prints the sentinel address,
// then walks the list printing each block's tag, order, and successor
// address. It finishes with the total count of FREE-tagged entries
// encountered and the order holding the most of them — useful for a
// glance at fragmentation without a debugger attached.
func (p *Pool) DumpFreeLists(w io.Writer) {
	if !p.initialized {
		fmt.Fprintln(w, "pool not initialized")
		return
	}

	freeBlocks := 0
	bestOrder, bestCount := uint(0), 0

	for k := uint(0); k <= p.order; k++ {
		head := &p.avail[k]
		fmt.Fprintf(w, "order %d: head = %p", k, head)

		count := 0
		curr := head.next
		for curr != head {
			if curr.tag == TagFree {
				freeBlocks++
				count++
			}
			fmt.Fprintf(w, " --> [tag=%d, order=%d, next=%p]", curr.tag, curr.order, curr.next)
			curr = curr.next
		}
		fmt.Fprintln(w, " --> <nil>")

		if count > bestCount {
			bestOrder, bestCount = k, count
		}
	}

	fmt.Fprintf(w, "\nfree blocks: %d\n", freeBlocks)
	if freeBlocks > 0 {
		fmt.Fprintf(w, "most prevalent order: %d (%d blocks)\n", bestOrder, bestCount)
	}
}
