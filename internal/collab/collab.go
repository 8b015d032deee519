// internal/collab/collab.go
// Purpose: the abstract accessor interfaces the codecs are written against,
// per spec.md's framing of everything outside the core (rendering, UI, Lua
// bindings) as "external collaborators". The core never imports a rendering
// or physics package directly; it calls these interfaces, and internal/shape
// and internal/palette satisfy them structurally without depending back on
// this package.

package collab

import (
	"image/color"

	"github.com/conwinds/p3s/internal/mathx"
	"github.com/conwinds/p3s/internal/palette"
	"github.com/conwinds/p3s/internal/shape"
)

// Shape is the read-only surface the codecs need from a materialized voxel
// shape node.
type Shape interface {
	ID() uint16
	ParentRef() uint16
	Dimensions() (w, h, d uint16)
	BlockAt(x, y, z int) uint8
	DisplayName() string
	Hidden() bool
}

// Transform is the local position/rotation/scale surface of a shape node.
type Transform interface {
	Translation() mathx.Vec3
	EulerRotation() mathx.Vec3
	LocalScale() mathx.Vec3
}

// ColorPalette is the read-only surface of a shape or scene color palette.
type ColorPalette interface {
	Count() int
	ColorAt(i int) (color.RGBA, bool)
	IsEmissive(i int) bool
}

// RigidBody is the read-only surface of a shape's collision volume.
type RigidBody interface {
	// Bounds reports the collider's min/max corners, or ok=false when the
	// shape has no custom collider (its natural block bounds apply instead).
	Bounds() (min, max mathx.Vec3, ok bool)
}

// ColorAtlas is a borrowed, externally-owned color deduplication resource
// (spec.md §5: "Externally owned ... the codec never takes ownership").
// A load may register every color it decodes into the atlas so that
// identical colors across shapes and palettes end up referencing one entry.
type ColorAtlas interface {
	Register(c color.RGBA) int
	Lookup(c color.RGBA) (int, bool)
}

var (
	_ Shape        = (*shape.Shape)(nil)
	_ Transform    = (*shape.Shape)(nil)
	_ RigidBody    = (*shape.CollisionBox)(nil)
	_ ColorPalette = (*palette.Palette)(nil)
)
