package testutil

import (
	"fmt"
	"sync"
)

// SequenceRunIDs generates predictable run ids: "<prefix>-1", "<prefix>-2", ...
//
// This keeps log output and golden files stable across runs.
//
// Thread-safety: SequenceRunIDs is safe for concurrent use via internal mutex.
type SequenceRunIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceRunIDs creates a generator. An empty prefix defaults to "test-run".
func NewSequenceRunIDs(prefix string) *SequenceRunIDs {
	if prefix == "" {
		prefix = "test-run"
	}
	return &SequenceRunIDs{prefix: prefix}
}

// Generate returns the next id in the sequence.
func (g *SequenceRunIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
