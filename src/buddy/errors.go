package buddy

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// ErrOutOfMemory is the sentinel every capacity failure wraps: the
// requested order exceeds the arena, the arena itself exceeds the
// architectural max, fragmentation leaves no satisfying block, or the
// OS denies the mapping. errors.Is(err, unix.ENOMEM) also matches.
var ErrOutOfMemory = fmt.Errorf("buddy: out of memory: %w", unix.ENOMEM)
