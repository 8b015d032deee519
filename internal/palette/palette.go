// internal/palette/palette.go
// Purpose: the in-memory color palette and the permutation it can produce
// to write itself in canonical order. Adapted from the teacher's
// internal/entity/machine.go, whose TODO named "MachineState" as a small
// piece of named, serializable state referenced sparsely by other data —
// which is exactly the shape-to-palette relationship spec.md describes
// (owned, shared by reference, or superseded).

package palette

import (
	"image/color"
	"sort"
)

// MaxColors is the hard ceiling spec.md places on a single palette: the
// wire count is a single byte.
const MaxColors = 255

// Palette is an ordered list of RGBA colors with a parallel emissive flag
// per entry.
type Palette struct {
	Colors   []color.RGBA
	Emissive []bool

	// LightingDirty mirrors the source's per-palette "lighting dirty" flag
	// (original_source/core/serialization_v6.c clears it right after a
	// successful parse). New starts it as true; a load clears it on every
	// shape palette it resolves, so callers that lazily recompute baked
	// lighting can tell a freshly built palette from a loaded one.
	LightingDirty bool

	// refs counts shapes currently sharing this palette by reference
	// (root-shape sharing in MULTI mode, §5). A writer must not discard a
	// shared palette while refs > 0.
	refs int
}

// --- Constructors ---

// New returns an empty palette ready to be appended to.
func New() *Palette {
	return &Palette{LightingDirty: true}
}

// --- Public methods ---

// Count returns the number of colors currently in the palette.
func (p *Palette) Count() int { return len(p.Colors) }

// ColorAt implements collab.ColorPalette.
func (p *Palette) ColorAt(i int) (color.RGBA, bool) {
	if i < 0 || i >= len(p.Colors) {
		return color.RGBA{}, false
	}
	return p.Colors[i], true
}

// IsEmissive implements collab.ColorPalette.
func (p *Palette) IsEmissive(i int) bool {
	if i < 0 || i >= len(p.Emissive) {
		return false
	}
	return p.Emissive[i]
}

// Add appends a color and its emissive flag, returning its index. Callers
// are responsible for keeping Count() at or below MaxColors.
func (p *Palette) Add(c color.RGBA, emissive bool) int {
	p.Colors = append(p.Colors, c)
	p.Emissive = append(p.Emissive, emissive)
	return len(p.Colors) - 1
}

// IndexOf returns the index of a color+emissive pair already present in
// the palette, or -1 if it isn't there.
func (p *Palette) IndexOf(c color.RGBA, emissive bool) int {
	for i, existing := range p.Colors {
		if existing == c && p.Emissive[i] == emissive {
			return i
		}
	}
	return -1
}

// Retain increments the shared-reference count (MULTI mode, root sharing).
func (p *Palette) Retain() { p.refs++ }

// Release decrements the shared-reference count. It is a no-op below zero.
func (p *Palette) Release() {
	if p.refs > 0 {
		p.refs--
	}
}

// Shared reports whether more than one holder currently references this
// palette.
func (p *Palette) Shared() bool { return p.refs > 1 }

// Clone returns a deep, unshared copy — used when SINGLE mode gives each
// shape its own copy of the file's artist palette.
func (p *Palette) Clone() *Palette {
	c := &Palette{
		Colors:   append([]color.RGBA(nil), p.Colors...),
		Emissive: append([]bool(nil), p.Emissive...),
	}
	return c
}

// CanonicalOrder returns the palette's colors and emissive flags in their
// canonical write order, plus a mapping from the current in-memory index to
// the serialized index (mapping[i] is where color i ends up on disk). The
// canonical order is a stable sort by (R, G, B, A, emissive) — any
// deterministic total order works here, since the invariant readers rely on
// is that block indices are rewritten through the same mapping, not that any
// particular order is chosen.
func (p *Palette) CanonicalOrder() (colors []color.RGBA, emissive []bool, mapping []int) {
	n := len(p.Colors)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ca, cb := p.Colors[order[a]], p.Colors[order[b]]
		if ca.R != cb.R {
			return ca.R < cb.R
		}
		if ca.G != cb.G {
			return ca.G < cb.G
		}
		if ca.B != cb.B {
			return ca.B < cb.B
		}
		if ca.A != cb.A {
			return ca.A < cb.A
		}
		return !p.Emissive[order[a]] && p.Emissive[order[b]]
	})

	colors = make([]color.RGBA, n)
	emissive = make([]bool, n)
	mapping = make([]int, n)
	for newIdx, oldIdx := range order {
		colors[newIdx] = p.Colors[oldIdx]
		emissive[newIdx] = p.Emissive[oldIdx]
		mapping[oldIdx] = newIdx
	}
	return colors, emissive, mapping
}
