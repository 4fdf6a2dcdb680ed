// Command balloc-inspect initializes a buddy pool, runs a small
// scripted sequence of reserve/release calls, and prints the resulting
// free-list state. It exists to exercise DumpFreeLists interactively
// without writing a throwaway test.
package main

import (
	"flag"
	"fmt"
	"os"
	"unsafe"

	"github.com/binaryarena/buddyalloc/src/buddy"
)

func main() {
	size := flag.Uint64("size", 0, "arena size in bytes (0 = default 512 MiB)")
	reserve := flag.Uint64("reserve", 4096, "bytes to reserve per block")
	count := flag.Int("count", 4, "number of blocks to reserve before dumping")
	releaseEvery := flag.Int("release-every", 2, "release every Nth reserved block (0 disables)")
	flag.Parse()

	var pool buddy.Pool
	if err := pool.Init(uintptr(*size)); err != nil {
		fmt.Fprintln(os.Stderr, "init:", err)
		os.Exit(1)
	}

	ptrs := make([]unsafe.Pointer, 0, *count)
	for i := 0; i < *count; i++ {
		p, err := pool.Reserve(uintptr(*reserve))
		if err != nil {
			fmt.Fprintln(os.Stderr, "reserve:", err)
			break
		}
		ptrs = append(ptrs, p)
	}

	if *releaseEvery > 0 {
		for i, p := range ptrs {
			if (i+1)%*releaseEvery == 0 {
				pool.Release(p)
			}
		}
	}

	pool.DumpFreeLists(os.Stdout)
}
