// internal/shape/shape.go
// Purpose: the Shape data model and its dense block-grid indexing scheme.
// Adapted from the teacher's internal/chunk/chunk.go, which picked one
// fixed 32^3 pack/index scheme ("idx = x | (z<<5) | (y<<10)") and warned
// never to change it once persisted. A Shape's grid is variably sized
// (w,h,d come from the SHAPE_SIZE sub-chunk) so the fixed power-of-two
// shifts don't apply, but the underlying idea — one index formula, defined
// once, used everywhere reads and writes touch the grid — carries over
// directly.

package shape

import (
	"github.com/conwinds/p3s/internal/mathx"
	"github.com/conwinds/p3s/internal/palette"
)

// Air is the sentinel block value marking an empty cell.
const Air uint8 = 255

// CollisionBox is an explicit, author-placed collision volume overriding
// the shape's natural block-derived bounds.
type CollisionBox struct {
	Min, Max mathx.Vec3
}

// Shape is one node of the voxel scene tree.
type Shape struct {
	ShapeID  uint16
	ParentID uint16

	W, H, D uint16
	Blocks  []uint8 // len W*H*D, x-major then y then z; Air marks empty

	Palette *palette.Palette

	Name string

	Position mathx.Vec3
	Rotation mathx.Vec3 // Euler XYZ radians
	Scale    mathx.Vec3
	Pivot    mathx.Vec3

	CollisionBox *CollisionBox
	IsHiddenSelf bool

	// ReadOnly records the settings-time choice of whether this shape was
	// materialized as caller-editable (spec.md §6); it never affects
	// decoding itself.
	ReadOnly bool

	Points         map[string]mathx.Vec3
	PointRotations map[string]mathx.Vec3

	// Lighting holds one record per block cell, in the same order as
	// Blocks, when baked vertex lighting was present and requested.
	Lighting []LightRecord

	Parent   *Shape
	Children []*Shape
}

// --- Constructors ---

// New returns a Shape with an identity transform and unit scale, the way a
// freshly-parsed shape looks before any sub-chunk overrides it.
func New() *Shape {
	return &Shape{
		Scale:          mathx.Vec3{X: 1, Y: 1, Z: 1},
		Points:         make(map[string]mathx.Vec3),
		PointRotations: make(map[string]mathx.Vec3),
	}
}

// --- Public methods ---

// Index returns the linear offset into Blocks (and Lighting, if present)
// for a local block coordinate, per the x-major/y/z layout spec.md §4.4
// specifies for SHAPE_BLOCKS.
func (s *Shape) Index(x, y, z int) int {
	return x + y*int(s.W) + z*int(s.W)*int(s.H)
}

// BlockAt returns the palette index stored at (x,y,z), or Air if out of
// bounds of the allocated grid.
func (s *Shape) BlockAt(x, y, z int) uint8 {
	if x < 0 || y < 0 || z < 0 || x >= int(s.W) || y >= int(s.H) || z >= int(s.D) {
		return Air
	}
	return s.Blocks[s.Index(x, y, z)]
}

// AttachChild appends c as a child of s and sets c.Parent, mirroring
// spec.md §4.4's parenting step ("the codec uses the declared parentId to
// look up the previously-materialized parent shape ... and attaches the
// child with its stored local transform").
func (s *Shape) AttachChild(c *Shape) {
	c.Parent = s
	s.Children = append(s.Children, c)
}

// The methods below give Shape the shape of collab.Shape/collab.Transform
// without this package importing collab (which imports shape to assert it).

func (s *Shape) ID() uint16                        { return s.ShapeID }
func (s *Shape) ParentRef() uint16                  { return s.ParentID }
func (s *Shape) Dimensions() (w, h, d uint16)       { return s.W, s.H, s.D }
func (s *Shape) DisplayName() string                { return s.Name }
func (s *Shape) Hidden() bool                       { return s.IsHiddenSelf }
func (s *Shape) Translation() mathx.Vec3            { return s.Position }
func (s *Shape) EulerRotation() mathx.Vec3          { return s.Rotation }
func (s *Shape) LocalScale() mathx.Vec3             { return s.Scale }

// Bounds implements collab.RigidBody. A nil *CollisionBox (no custom
// collider set) reports ok=false rather than zero bounds.
func (c *CollisionBox) Bounds() (min, max mathx.Vec3, ok bool) {
	if c == nil {
		return mathx.Vec3{}, mathx.Vec3{}, false
	}
	return c.Min, c.Max, true
}
