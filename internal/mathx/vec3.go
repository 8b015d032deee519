// internal/mathx/vec3.go
// Purpose: float3 vector type shared by shape transforms, pivots, points of
// interest and collision boxes. Adapted from the teacher's hash.go, which
// mixed integer chunk coordinates; this module has no need for pseudo-random
// hashing, so the mixing functions were dropped (see DESIGN.md) and replaced
// with the float3 arithmetic every other component in this codec needs.

package mathx

// --- Types ---

// Vec3 is a plain float3: a position, a Euler rotation (radians), or a scale.
type Vec3 struct {
	X, Y, Z float32
}

// --- Constructors ---

func NewVec3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// --- Public methods ---

// Sub returns v - o component-wise.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Add returns v + o component-wise.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// IsZero reports whether every component is exactly zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}
