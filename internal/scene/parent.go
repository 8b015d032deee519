// internal/scene/parent.go
// Purpose: the shapeId → *shape.Shape registry SceneCodec threads through
// decode so each SHAPE envelope's declared parentId can resolve to an
// already-materialized shape, per spec.md §4.4/§4.5 and testable property 4
// (parent linkage).

package scene

import "github.com/conwinds/p3s/internal/shape"

type shapeRegistry struct {
	byID  map[uint16]*shape.Shape
	roots []*shape.Shape
}

func newShapeRegistry() *shapeRegistry {
	return &shapeRegistry{byID: make(map[uint16]*shape.Shape)}
}

// resolve implements the callback shape.Decode expects.
func (r *shapeRegistry) resolve(id uint16) (*shape.Shape, bool) {
	s, ok := r.byID[id]
	return s, ok
}

// record registers a freshly-decoded shape and tracks whether it stayed a
// root (parentId 0, or a parentId that resolved to nothing).
func (r *shapeRegistry) record(s *shape.Shape) {
	r.byID[s.ID()] = s
	if s.Parent == nil {
		r.roots = append(r.roots, s)
	}
}
