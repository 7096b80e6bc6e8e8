package index

import (
	"sync/atomic"

	domindex "github.com/kailas-cloud/docdex/internal/domain/index"
)

// Handle owns the live index pointer and the rebuild guard. Readers always
// see either the previous complete index or the new one, never a partial
// state, and are never blocked by a rebuild in progress.
type Handle struct {
	current    atomic.Pointer[domindex.Index]
	rebuilding atomic.Bool
}

// NewHandle creates an empty handle; Current returns nil until Swap.
func NewHandle() *Handle {
	return &Handle{}
}

// Current returns the live index, nil when none is loaded.
func (h *Handle) Current() *domindex.Index {
	return h.current.Load()
}

// Swap atomically replaces the live index.
func (h *Handle) Swap(idx *domindex.Index) {
	h.current.Store(idx)
}

// Loaded reports whether a live index is available.
func (h *Handle) Loaded() bool {
	return h.current.Load() != nil
}

// Rebuilding reports whether a rebuild is in flight.
func (h *Handle) Rebuilding() bool {
	return h.rebuilding.Load()
}

// BeginRebuild claims the rebuild slot. It returns false when another
// rebuild is already in flight; the caller must not proceed.
func (h *Handle) BeginRebuild() bool {
	return h.rebuilding.CompareAndSwap(false, true)
}

// EndRebuild releases the rebuild slot.
func (h *Handle) EndRebuild() {
	h.rebuilding.Store(false)
}
