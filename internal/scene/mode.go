// internal/scene/mode.go
// Purpose: dispatches the three historical palette-compatibility modes
// spec.md §4.5 describes (MULTI, SINGLE, LEGACY), resolved once per load
// after every SHAPE envelope has been decoded and every top-level palette
// chunk collected.

package scene

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/conwinds/p3s/internal/collab"
	"github.com/conwinds/p3s/internal/palette"
	"github.com/conwinds/p3s/internal/shape"
)

type paletteMode int

const (
	modeMulti paletteMode = iota
	modeSingle
	modeLegacy
)

// resolvePaletteMode implements spec.md §4.5's three-way dispatch and
// mutates each shape's Palette/Blocks in place to land in a consistent
// state: each shape's Palette indices match its Blocks. In MULTI mode a
// shape without its own palette takes the root's; when no root shape
// carries one either, such a shape keeps a nil Palette.
//
// Returns the standalone palette asset, if any (only ever populated in
// MULTI mode, where a top-level PALETTE chunk is unrelated to any shape).
func resolvePaletteMode(shapes []*shape.Shape, filePalette *palette.Palette, legacyPaletteID *uint8, atlas collab.ColorAtlas) (standalone *palette.Palette, err error) {
	anyEmbedded := false
	for _, s := range shapes {
		if s.Palette != nil {
			anyEmbedded = true
			break
		}
	}

	switch {
	case anyEmbedded:
		root := rootPaletteOf(shapes)
		for _, s := range shapes {
			if s.Palette == nil {
				s.Palette = root
				if root != nil {
					root.Retain()
				}
			}
			registerColors(s.Palette, atlas)
			if s.Palette != nil {
				s.Palette.LightingDirty = false
			}
		}
		return filePalette, nil

	case filePalette != nil:
		if err := applySinglePalette(shapes, filePalette, atlas); err != nil {
			return nil, err
		}
		return nil, nil

	default:
		id := palette.DefaultBuiltinID
		if legacyPaletteID != nil {
			id = *legacyPaletteID
		}
		builtin, err := palette.Builtin(id)
		if err != nil {
			logrus.WithFields(logrus.Fields{"id": id}).Warn("scene: unknown palette id, falling back to default")
			builtin, err = palette.Builtin(palette.DefaultBuiltinID)
			if err != nil {
				return nil, fmt.Errorf("scene: default legacy palette: %w", err)
			}
		}
		for _, s := range shapes {
			remapper := palette.NewLegacyRemapper(builtin)
			if err := remapBlocks(s, func(idx uint8) (uint8, error) { return remapper.Remap(idx) }); err != nil {
				return nil, err
			}
			s.Palette = remapper.Palette()
			s.Palette.LightingDirty = false
			registerColors(s.Palette, atlas)
		}
		return nil, nil
	}
}

// rootPaletteOf finds the palette embedded on a MULTI-mode load's root
// shape, the one non-root shapes without their own palette share by
// reference, per spec.md §5.
func rootPaletteOf(shapes []*shape.Shape) *palette.Palette {
	for _, s := range shapes {
		if s.Parent == nil && s.Palette != nil {
			return s.Palette
		}
	}
	return nil
}

// applySinglePalette gives every shape a copy of the file's artist palette.
// When the palette overflows the per-shape limit, each shape instead gets a
// fresh, on-demand-built palette containing only the colors it actually
// references (the "shrink" path).
func applySinglePalette(shapes []*shape.Shape, filePalette *palette.Palette, atlas collab.ColorAtlas) error {
	overflow := filePalette.Count() > palette.MaxColors

	for _, s := range shapes {
		if !overflow {
			s.Palette = filePalette.Clone()
			s.Palette.LightingDirty = false
			registerColors(s.Palette, atlas)
			continue
		}

		shrunk := palette.New()
		cache := make(map[uint8]uint8)
		err := remapBlocks(s, func(idx uint8) (uint8, error) {
			if newIdx, ok := cache[idx]; ok {
				return newIdx, nil
			}
			c, ok := filePalette.ColorAt(int(idx))
			if !ok {
				return 0, fmt.Errorf("scene: block index %d outside file palette: %w", idx, ErrBadChunk)
			}
			if shrunk.Count() >= palette.MaxColors {
				return 0, palette.ErrTooManyColors
			}
			newIdx := uint8(shrunk.Add(c, filePalette.IsEmissive(int(idx))))
			cache[idx] = newIdx
			return newIdx, nil
		})
		if err != nil {
			return err
		}
		s.Palette = shrunk
		s.Palette.LightingDirty = false
		registerColors(s.Palette, atlas)
	}
	return nil
}

// remapBlocks rewrites every non-Air block index in s through f, in place.
func remapBlocks(s *shape.Shape, f func(uint8) (uint8, error)) error {
	for i, v := range s.Blocks {
		if v == shape.Air {
			continue
		}
		newV, err := f(v)
		if err != nil {
			return err
		}
		s.Blocks[i] = newV
	}
	return nil
}

// releaseAll releases every materialized shape's palette reference,
// recursing into children. Used on a failed load (spec.md §7) to undo
// whatever resolvePaletteMode already retained before the error; Go's own
// garbage collector still reclaims the memory regardless, but the refcount
// bookkeeping stays consistent for anything still holding a Palette.
func releaseAll(roots []*shape.Shape) {
	var walk func(*shape.Shape)
	walk = func(s *shape.Shape) {
		if s.Palette != nil {
			s.Palette.Release()
		}
		for _, c := range s.Children {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
}

func registerColors(p *palette.Palette, atlas collab.ColorAtlas) {
	if p == nil || atlas == nil {
		return
	}
	for i := 0; i < p.Count(); i++ {
		if c, ok := p.ColorAt(i); ok {
			atlas.Register(c)
		}
	}
}
