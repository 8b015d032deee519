// internal/collab/default.go
// Purpose: a ready-made, in-package ColorAtlas for callers that don't have
// one of their own — a plain map-backed dedup table. The codec does not
// substitute it for a nil atlas; a nil atlas means no color registration.
// Grounded on the same borrowed/never-owned contract spec.md §5 describes
// for the real atlas; this default just needs to behave correctly, not be
// GPU-backed.

package collab

import "image/color"

// MemoryAtlas is a minimal in-memory ColorAtlas: first registration of a
// color wins its index, later registrations of the same color reuse it.
type MemoryAtlas struct {
	index  map[color.RGBA]int
	colors []color.RGBA
}

// NewMemoryAtlas returns an empty MemoryAtlas.
func NewMemoryAtlas() *MemoryAtlas {
	return &MemoryAtlas{index: make(map[color.RGBA]int)}
}

// Register implements ColorAtlas.
func (a *MemoryAtlas) Register(c color.RGBA) int {
	if idx, ok := a.index[c]; ok {
		return idx
	}
	idx := len(a.colors)
	a.colors = append(a.colors, c)
	a.index[c] = idx
	return idx
}

// Lookup implements ColorAtlas.
func (a *MemoryAtlas) Lookup(c color.RGBA) (int, bool) {
	idx, ok := a.index[c]
	return idx, ok
}

// Len reports how many distinct colors have been registered.
func (a *MemoryAtlas) Len() int { return len(a.colors) }

var _ ColorAtlas = (*MemoryAtlas)(nil)
