// Package detect runs face-landmark inference in the background and publishes
// the freshest result for the game loop to sample.
package detect

import (
	"sync/atomic"

	"github.com/andresmejia3/facepill/internal/types"
)

// Holder is the single-slot store for the latest detection snapshot. The
// detection loop writes, the game loop reads; both are a single pointer swap.
type Holder struct {
	p atomic.Pointer[types.Snapshot]
}

// Latest returns the current snapshot, never nil.
func (h *Holder) Latest() *types.Snapshot {
	if s := h.p.Load(); s != nil {
		return s
	}
	return &types.Snapshot{}
}

// Publish replaces the current snapshot.
func (h *Holder) Publish(s *types.Snapshot) {
	if s == nil {
		s = &types.Snapshot{}
	}
	h.p.Store(s)
}

// Clear drops the current snapshot.
func (h *Holder) Clear() {
	h.p.Store(nil)
}
