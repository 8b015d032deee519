// internal/palette/legacy.go
// Purpose: the built-in legacy palettes selected by a PALETTE_ID chunk
// (or the default, when none is present at all — spec.md §13 supplement 2).
// Adapted from the teacher's internal/gen/pipeline.go + noise.go, whose
// TODOs described a "deterministic generation pipeline: chunk coord + seed
// -> same output every time." A built-in palette lookup has the same shape
// (id -> same fixed table every time) without needing actual noise.

package palette

import (
	"fmt"
	"image/color"
)

// Built-in palette ids (P3S_CHUNK_ID_PALETTE_ID payload values).
const (
	IDIOSItemEditorLegacy uint8 = 0
	ID2021                uint8 = 1
)

// DefaultBuiltinID is used when a file has no palette chunks and no
// explicit PALETTE_ID chunk either.
const DefaultBuiltinID = IDIOSItemEditorLegacy

var ErrUnknownBuiltinID = fmt.Errorf("palette: unknown builtin palette id")

func rgba(r, g, b, a uint8) color.RGBA { return color.RGBA{R: r, G: g, B: b, A: a} }

// iosItemEditorLegacyColors is a fixed 32-entry palette in the spirit of the
// early mobile item-editor's reduced, high-contrast swatch set.
var iosItemEditorLegacyColors = []color.RGBA{
	rgba(0, 0, 0, 255), rgba(29, 43, 83, 255), rgba(126, 37, 83, 255), rgba(0, 135, 81, 255),
	rgba(171, 82, 54, 255), rgba(95, 87, 79, 255), rgba(194, 195, 199, 255), rgba(255, 241, 232, 255),
	rgba(255, 0, 77, 255), rgba(255, 163, 0, 255), rgba(255, 236, 39, 255), rgba(0, 228, 54, 255),
	rgba(41, 173, 255, 255), rgba(131, 118, 156, 255), rgba(255, 119, 168, 255), rgba(255, 204, 170, 255),
	rgba(41, 24, 20, 255), rgba(17, 29, 53, 255), rgba(66, 33, 54, 255), rgba(18, 83, 89, 255),
	rgba(116, 47, 41, 255), rgba(73, 51, 59, 255), rgba(162, 136, 121, 255), rgba(243, 239, 125, 255),
	rgba(190, 18, 80, 255), rgba(255, 108, 36, 255), rgba(168, 231, 46, 255), rgba(0, 181, 67, 255),
	rgba(6, 90, 181, 255), rgba(117, 70, 101, 255), rgba(255, 110, 89, 255), rgba(255, 157, 129, 255),
}

// palette2021Colors is a distinct fixed 32-entry palette representing a
// later "2021" built-in revision.
var palette2021Colors = []color.RGBA{
	rgba(0, 0, 0, 255), rgba(34, 32, 52, 255), rgba(69, 40, 60, 255), rgba(102, 57, 49, 255),
	rgba(143, 86, 59, 255), rgba(223, 113, 38, 255), rgba(217, 160, 102, 255), rgba(238, 195, 154, 255),
	rgba(251, 242, 54, 255), rgba(153, 229, 80, 255), rgba(106, 190, 48, 255), rgba(55, 148, 110, 255),
	rgba(75, 105, 47, 255), rgba(82, 75, 36, 255), rgba(50, 60, 57, 255), rgba(63, 63, 116, 255),
	rgba(48, 96, 130, 255), rgba(91, 110, 225, 255), rgba(99, 155, 255, 255), rgba(95, 205, 228, 255),
	rgba(203, 219, 252, 255), rgba(255, 255, 255, 255), rgba(155, 173, 183, 255), rgba(132, 126, 135, 255),
	rgba(105, 106, 106, 255), rgba(89, 86, 82, 255), rgba(118, 66, 138, 255), rgba(172, 50, 50, 255),
	rgba(217, 87, 99, 255), rgba(215, 123, 186, 255), rgba(143, 151, 74, 255), rgba(138, 111, 48, 255),
}

// Builtin returns a fresh copy of one of the two hard-coded legacy
// palettes, all entries non-emissive.
func Builtin(id uint8) (*Palette, error) {
	var colors []color.RGBA
	switch id {
	case IDIOSItemEditorLegacy:
		colors = iosItemEditorLegacyColors
	case ID2021:
		colors = palette2021Colors
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownBuiltinID, id)
	}
	p := &Palette{
		Colors:   append([]color.RGBA(nil), colors...),
		Emissive: make([]bool, len(colors)),
	}
	return p, nil
}

// LegacyRemapper builds a fresh per-shape palette on demand as raw legacy
// block indices are streamed in, per spec.md §4.5 LEGACY mode: "their
// indices are looked up in that built-in and appended on-demand to a
// freshly built per-shape palette."
type LegacyRemapper struct {
	builtin *Palette
	shape   *Palette
	cache   map[uint8]uint8
}

// NewLegacyRemapper starts a remapper against a builtin legacy palette,
// filling a new empty per-shape palette as indices are seen.
func NewLegacyRemapper(builtin *Palette) *LegacyRemapper {
	return &LegacyRemapper{
		builtin: builtin,
		shape:   New(),
		cache:   make(map[uint8]uint8),
	}
}

// Remap returns the shape-local palette index for a raw legacy block index,
// appending a new shape-palette entry the first time that legacy index is
// seen.
func (r *LegacyRemapper) Remap(legacyIdx uint8) (uint8, error) {
	if mapped, ok := r.cache[legacyIdx]; ok {
		return mapped, nil
	}
	if int(legacyIdx) >= r.builtin.Count() {
		return 0, fmt.Errorf("palette: legacy index %d out of range (builtin has %d colors)", legacyIdx, r.builtin.Count())
	}
	if r.shape.Count() >= MaxColors {
		return 0, ErrTooManyColors
	}
	newIdx := r.shape.Add(r.builtin.Colors[legacyIdx], r.builtin.Emissive[legacyIdx])
	r.cache[legacyIdx] = uint8(newIdx)
	return uint8(newIdx), nil
}

// Palette returns the per-shape palette built so far.
func (r *LegacyRemapper) Palette() *Palette { return r.shape }
