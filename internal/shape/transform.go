// internal/shape/transform.go
// Purpose: small wire helpers shared by several sub-chunks — float3 triples
// (transform, pivot, collision box corners) and named-point records (points
// of interest and point rotations share one payload shape, spec.md §4.4
// sub-ids 6 and 8).

package shape

import (
	"fmt"

	"github.com/conwinds/p3s/internal/bytestream"
	"github.com/conwinds/p3s/internal/mathx"
)

var ErrTruncated = fmt.Errorf("shape: truncated")
var ErrNameTooLong = fmt.Errorf("shape: name exceeds 255 bytes")

func readVec3(s *bytestream.Stream) (mathx.Vec3, error) {
	x, err := s.ReadF32()
	if err != nil {
		return mathx.Vec3{}, err
	}
	y, err := s.ReadF32()
	if err != nil {
		return mathx.Vec3{}, err
	}
	z, err := s.ReadF32()
	if err != nil {
		return mathx.Vec3{}, err
	}
	return mathx.Vec3{X: x, Y: y, Z: z}, nil
}

func writeVec3(sink *bytestream.Sink, v mathx.Vec3) {
	sink.WriteF32(v.X)
	sink.WriteF32(v.Y)
	sink.WriteF32(v.Z)
}

// namedPoint is the shared payload shape of SHAPE_POINT and
// SHAPE_POINT_ROTATION: u8 nameLen | char[nameLen] | f32 x | f32 y | f32 z.
func readNamedPoint(s *bytestream.Stream) (string, mathx.Vec3, error) {
	nameLen, err := s.ReadU8()
	if err != nil {
		return "", mathx.Vec3{}, fmt.Errorf("named point name length: %w", ErrTruncated)
	}
	nameBytes, err := s.ReadExact(int(nameLen))
	if err != nil {
		return "", mathx.Vec3{}, fmt.Errorf("named point name: %w", ErrTruncated)
	}
	v, err := readVec3(s)
	if err != nil {
		return "", mathx.Vec3{}, fmt.Errorf("named point vector: %w", ErrTruncated)
	}
	return string(nameBytes), v, nil
}

func writeNamedPoint(sink *bytestream.Sink, name string, v mathx.Vec3) error {
	if len(name) > 255 {
		return ErrNameTooLong
	}
	sink.WriteU8(uint8(len(name)))
	sink.WriteRaw([]byte(name))
	writeVec3(sink, v)
	return nil
}
