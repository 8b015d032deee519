package p3s

import (
	"io"

	"github.com/conwinds/p3s/internal/collab"
	"github.com/conwinds/p3s/internal/mathx"
	"github.com/conwinds/p3s/internal/palette"
	"github.com/conwinds/p3s/internal/scene"
	"github.com/conwinds/p3s/internal/shape"
)

// Vec3 is a plain float3: a position, a Euler rotation (radians), or a
// scale.
type Vec3 = mathx.Vec3

// Shape is one node of a voxel scene tree: a block grid plus the transform,
// parenting, and named-point metadata a SHAPE chunk carries.
type Shape = shape.Shape

// CollisionBox is an explicit, author-placed collision volume overriding a
// shape's natural block-derived bounds.
type CollisionBox = shape.CollisionBox

// Palette is an ordered list of colors (with a parallel emissive flag) a
// shape's blocks index into.
type Palette = palette.Palette

// ShapeSettings controls how a decoded SHAPE envelope is materialized.
type ShapeSettings = shape.Settings

// ColorAtlas is a borrowed, externally-owned color deduplication resource a
// load may register every decoded color into. It is never owned by this
// package; pass nil to skip registration entirely.
type ColorAtlas = collab.ColorAtlas

// Asset is one top-level result of a load: either a standalone Palette or a
// root Shape (tagged AssetObject when it has no children).
type Asset = scene.Asset

// AssetKind distinguishes the members of the Asset union.
type AssetKind = scene.AssetKind

const (
	AssetPalette = scene.AssetPalette
	AssetShape   = scene.AssetShape
	AssetObject  = scene.AssetObject
)

// AssetFilter is the bitmask LoadAssets accepts to restrict which asset
// kinds it materializes and returns.
type AssetFilter = scene.AssetFilter

const (
	FilterPalette = scene.FilterPalette
	FilterShape   = scene.FilterShape
	FilterObject  = scene.FilterObject
	FilterAny     = scene.FilterAny
)

// DefaultShapeSettings mirrors the common case: editable shapes, baked
// lighting materialized when present.
func DefaultShapeSettings() ShapeSettings {
	return shape.DefaultSettings()
}

// NewPalette returns an empty palette ready to be appended to.
func NewPalette() *Palette {
	return palette.New()
}

// NewShape returns a Shape with an identity transform and unit scale.
func NewShape() *Shape {
	return shape.New()
}

// NewColorAtlas returns a minimal in-memory ColorAtlas suitable for callers
// that don't already have one of their own.
func NewColorAtlas() *collab.MemoryAtlas {
	return collab.NewMemoryAtlas()
}

// LoadAssets reads a complete version-6 .3zh container from r and returns
// every asset filter admits: standalone palettes, and/or shape trees
// (tagged AssetObject when a root has no children). atlas may be nil; when
// non-nil, every color of every loaded shape's palette is registered into
// it. The colors of a standalone artist palette are not registered.
func LoadAssets(r io.Reader, atlas ColorAtlas, filter AssetFilter, settings ShapeSettings) ([]Asset, error) {
	return scene.LoadAssets(r, atlas, filter, settings)
}

// GetPreview scans only until the PREVIEW chunk (or the end of the stream)
// and never decompresses a SHAPE envelope while doing it.
func GetPreview(r io.Reader) ([]byte, error) {
	return scene.GetPreview(r)
}

// SaveShape serializes root's full tree (and an optional artist palette and
// preview) to w.
func SaveShape(w io.Writer, root *Shape, artistPalette *Palette, previewBytes []byte) error {
	return scene.SaveShape(w, root, artistPalette, previewBytes)
}

// SaveShapeToBuffer serializes root's full tree into a freshly allocated
// buffer: header, optional preview, optional artist palette, then one SHAPE
// frame per shape in pre-order with a monotonically incremented shapeId.
func SaveShapeToBuffer(root *Shape, artistPalette *Palette, previewBytes []byte) ([]byte, error) {
	return scene.SaveShapeToBuffer(root, artistPalette, previewBytes)
}
