// internal/shape/grid.go
// Purpose: SHAPE_SIZE / SHAPE_BLOCKS wire encoding and the AABB-relative
// coordinate normalization spec.md §4.4 requires on write — blocks, the
// pivot, and points of interest are all re-expressed relative to the
// shape's minimum occupied corner before they hit the wire, and that
// normalization is never reversed on read.

package shape

import (
	"fmt"

	"github.com/conwinds/p3s/internal/bytestream"
	"github.com/conwinds/p3s/internal/mathx"
)

func decodeSize(payload []byte) (w, h, d uint16, err error) {
	s := bytestream.New(payload)
	w, err = s.ReadU16()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("shape: size width: %w", ErrTruncated)
	}
	h, err = s.ReadU16()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("shape: size height: %w", ErrTruncated)
	}
	d, err = s.ReadU16()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("shape: size depth: %w", ErrTruncated)
	}
	return w, h, d, nil
}

func writeSubSize(sink *bytestream.Sink, w, h, d uint16) {
	sink.WriteU8(SubSize)
	sink.WriteU32(6)
	sink.WriteU16(w)
	sink.WriteU16(h)
	sink.WriteU16(d)
}

// decodeBlocksInto copies a raw SHAPE_BLOCKS payload into an already-sized
// Shape (SHAPE_SIZE must have been seen first, so shape.Blocks is already
// allocated to the right length).
func decodeBlocksInto(shape *Shape, payload []byte) error {
	if len(payload) != len(shape.Blocks) {
		return fmt.Errorf("shape: blocks payload length %d, want %d: %w", len(payload), len(shape.Blocks), ErrBadChunk)
	}
	copy(shape.Blocks, payload)
	return nil
}

// aabb is the minimum occupied bounding box of a shape's block grid, in the
// shape's original (pre-crop) local coordinates.
type aabb struct {
	startX, startY, startZ int
	w, h, d                uint16
}

func (a aabb) startVec() mathx.Vec3 {
	return mathx.NewVec3(float32(a.startX), float32(a.startY), float32(a.startZ))
}

// occupiedAABB scans a shape's block grid for the smallest box containing
// every non-Air cell. An all-Air (or zero-sized) shape keeps its full
// original extent — there is no occupied corner to crop to.
func occupiedAABB(sh *Shape) aabb {
	w, h, d := int(sh.W), int(sh.H), int(sh.D)
	if w == 0 || h == 0 || d == 0 {
		return aabb{w: sh.W, h: sh.H, d: sh.D}
	}

	minX, minY, minZ := w, h, d
	maxX, maxY, maxZ := -1, -1, -1
	found := false

	for z := 0; z < d; z++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if sh.Blocks[sh.Index(x, y, z)] == Air {
					continue
				}
				found = true
				if x < minX {
					minX = x
				}
				if y < minY {
					minY = y
				}
				if z < minZ {
					minZ = z
				}
				if x > maxX {
					maxX = x
				}
				if y > maxY {
					maxY = y
				}
				if z > maxZ {
					maxZ = z
				}
			}
		}
	}

	if !found {
		return aabb{w: sh.W, h: sh.H, d: sh.D}
	}

	return aabb{
		startX: minX, startY: minY, startZ: minZ,
		w: uint16(maxX - minX + 1),
		h: uint16(maxY - minY + 1),
		d: uint16(maxZ - minZ + 1),
	}
}

// writeSubBlocks emits the cropped block grid described by bounds, remapping
// each non-Air index through mapping (the palette's canonical-order
// permutation) when one is supplied.
func writeSubBlocks(sink *bytestream.Sink, sh *Shape, bounds aabb, mapping []int) error {
	out := make([]uint8, int(bounds.w)*int(bounds.h)*int(bounds.d))
	idx := func(x, y, z int) int { return x + y*int(bounds.w) + z*int(bounds.w)*int(bounds.h) }

	for z := 0; z < int(bounds.d); z++ {
		for y := 0; y < int(bounds.h); y++ {
			for x := 0; x < int(bounds.w); x++ {
				v := sh.BlockAt(bounds.startX+x, bounds.startY+y, bounds.startZ+z)
				if v != Air && mapping != nil {
					if int(v) >= len(mapping) {
						return fmt.Errorf("shape: block index %d out of palette range: %w", v, ErrBadChunk)
					}
					v = uint8(mapping[v])
				}
				out[idx(x, y, z)] = v
			}
		}
	}

	sink.WriteU8(SubBlocks)
	sink.WriteU32(uint32(len(out)))
	sink.WriteRaw(out)
	return nil
}

func cropLighting(sh *Shape, bounds aabb) []LightRecord {
	out := make([]LightRecord, int(bounds.w)*int(bounds.h)*int(bounds.d))
	idx := func(x, y, z int) int { return x + y*int(bounds.w) + z*int(bounds.w)*int(bounds.h) }

	for z := 0; z < int(bounds.d); z++ {
		for y := 0; y < int(bounds.h); y++ {
			for x := 0; x < int(bounds.w); x++ {
				sx, sy, sz := bounds.startX+x, bounds.startY+y, bounds.startZ+z
				if sx < 0 || sy < 0 || sz < 0 || sx >= int(sh.W) || sy >= int(sh.H) || sz >= int(sh.D) {
					continue
				}
				out[idx(x, y, z)] = sh.Lighting[sh.Index(sx, sy, sz)]
			}
		}
	}
	return out
}

func writeSubU16(sink *bytestream.Sink, subID uint8, v uint16) {
	sink.WriteU8(subID)
	sink.WriteU32(2)
	sink.WriteU16(v)
}

func writeSubVec3(sink *bytestream.Sink, subID uint8, v mathx.Vec3) {
	sink.WriteU8(subID)
	sink.WriteU32(12)
	writeVec3(sink, v)
}

func writeSubTransform(sink *bytestream.Sink, pos, rot, scale mathx.Vec3) {
	sink.WriteU8(SubTransform)
	sink.WriteU32(36)
	writeVec3(sink, pos)
	writeVec3(sink, rot)
	writeVec3(sink, scale)
}

func writeSubCollisionBox(sink *bytestream.Sink, box CollisionBox) {
	sink.WriteU8(SubCollisionBox)
	sink.WriteU32(24)
	writeVec3(sink, box.Min)
	writeVec3(sink, box.Max)
}
