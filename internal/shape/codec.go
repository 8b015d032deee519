// internal/shape/codec.go
// Purpose: ShapeCodec — reads and writes the sub-chunk stream carried
// inside one SHAPE envelope (spec.md §4.4). This is the largest single
// component of the format: it owns the shape's own third, always-uncompressed
// framing shape, the block-grid AABB normalization on write, and the
// irregular SHAPE_NAME encoding.

package shape

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/conwinds/p3s/internal/bytestream"
	"github.com/conwinds/p3s/internal/palette"
)

// Sub-chunk ids, valid only inside a SHAPE envelope (spec.md §4.4).
const (
	SubSize           uint8 = 4
	SubBlocks         uint8 = 5
	SubPoint          uint8 = 6
	SubBakedLighting  uint8 = 7
	SubPointRotation  uint8 = 8
	SubShapeID        uint8 = 17
	SubName           uint8 = 18
	SubParentID       uint8 = 19
	SubTransform      uint8 = 20
	SubPivot          uint8 = 21
	SubPalette        uint8 = 22
	SubCollisionBox   uint8 = 23
	SubIsHidden       uint8 = 24
)

var ErrBadChunk = fmt.Errorf("shape: bad chunk")
var ErrEmptyEnvelope = fmt.Errorf("shape: empty envelope")

// Settings configures how a shape envelope is materialized, per spec.md §6.
type Settings struct {
	// MutableBlocks controls whether the resulting Shape is tagged as
	// caller-editable. Blocks are always decoded into memory either way;
	// this only affects the ReadOnly flag recorded on the Shape.
	MutableBlocks bool
	// MaterializeLighting controls whether a baked-lighting sub-chunk, if
	// present, is parsed and attached. When false it is skipped entirely
	// (its bytes are still consumed to keep the envelope cursor correct).
	MaterializeLighting bool
}

// DefaultSettings mirrors the common case: editable shapes, lighting
// materialized when present.
func DefaultSettings() Settings {
	return Settings{MutableBlocks: true, MaterializeLighting: true}
}

// --- Public methods ---

// Decode replays one SHAPE envelope's sub-chunk stream into a Shape.
// resolveParent looks up an already-materialized shape by its declared
// shapeId (SceneCodec owns that ordered list); it is only consulted once,
// after every sub-chunk has been read, per spec.md §4.4's parenting step.
func Decode(envelope []byte, settings Settings, resolveParent func(id uint16) (*Shape, bool)) (*Shape, error) {
	if len(envelope) == 0 {
		return nil, ErrEmptyEnvelope
	}

	s := bytestream.New(envelope)
	shape := New()
	shape.ReadOnly = !settings.MutableBlocks

	sizeSeen := false
	var pendingBlocks []byte

	for s.Remaining() > 0 {
		subID, err := s.ReadU8()
		if err != nil {
			break
		}

		if subID == SubName {
			// Irregular: no u32 size preamble (spec.md §4.4 open question).
			nameLen, err := s.ReadU8()
			if err != nil {
				return nil, fmt.Errorf("shape: name length: %w", ErrTruncated)
			}
			nameBytes, err := s.ReadExact(int(nameLen))
			if err != nil {
				return nil, fmt.Errorf("shape: name bytes: %w", ErrTruncated)
			}
			shape.Name = string(nameBytes)
			continue
		}

		if s.Remaining() < 4 {
			// Matches spec.md §4.4: "If fewer than 4 bytes remain, the
			// envelope terminates immediately" (applies when about to read
			// an unknown sub-chunk's u32 size, but we apply it uniformly
			// here since every remaining recognized sub-id also needs a
			// u32 length next).
			break
		}

		subSize, err := s.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("shape: sub-chunk %d size: %w", subID, ErrTruncated)
		}
		payload, err := s.ReadExact(int(subSize))
		if err != nil {
			return nil, fmt.Errorf("shape: sub-chunk %d payload: %w", subID, ErrTruncated)
		}

		switch subID {
		case SubSize:
			w, h, d, err := decodeSize(payload)
			if err != nil {
				return nil, err
			}
			shape.W, shape.H, shape.D = w, h, d
			shape.Blocks = make([]uint8, int(w)*int(h)*int(d))
			sizeSeen = true
			if pendingBlocks != nil {
				if err := decodeBlocksInto(shape, pendingBlocks); err != nil {
					return nil, err
				}
				pendingBlocks = nil
			}

		case SubBlocks:
			if !sizeSeen {
				// Recorded for processing once SIZE shows up later in the
				// envelope, per spec.md §4.4.
				pendingBlocks = payload
				continue
			}
			if err := decodeBlocksInto(shape, payload); err != nil {
				return nil, err
			}

		case SubPoint:
			name, v, err := readNamedPoint(bytestream.New(payload))
			if err != nil {
				return nil, fmt.Errorf("shape: point: %w", err)
			}
			shape.Points[name] = v

		case SubPointRotation:
			name, v, err := readNamedPoint(bytestream.New(payload))
			if err != nil {
				return nil, fmt.Errorf("shape: point rotation: %w", err)
			}
			shape.PointRotations[name] = v

		case SubBakedLighting:
			if !settings.MaterializeLighting {
				continue
			}
			expected := int(shape.W) * int(shape.H) * int(shape.D) * LightRecordSize
			if !sizeSeen || len(payload) != expected {
				logrus.WithFields(logrus.Fields{
					"got":      len(payload),
					"expected": expected,
				}).Warn("shape: baked lighting size mismatch, dropping")
				continue
			}
			shape.Lighting = decodeLighting(payload)

		case SubShapeID:
			id, err := bytestream.New(payload).ReadU16()
			if err != nil {
				return nil, fmt.Errorf("shape: shape id: %w", ErrTruncated)
			}
			shape.ShapeID = id

		case SubParentID:
			id, err := bytestream.New(payload).ReadU16()
			if err != nil {
				return nil, fmt.Errorf("shape: parent id: %w", ErrTruncated)
			}
			shape.ParentID = id

		case SubTransform:
			ps := bytestream.New(payload)
			pos, err := readVec3(ps)
			if err != nil {
				return nil, fmt.Errorf("shape: transform position: %w", err)
			}
			rot, err := readVec3(ps)
			if err != nil {
				return nil, fmt.Errorf("shape: transform rotation: %w", err)
			}
			scl, err := readVec3(ps)
			if err != nil {
				return nil, fmt.Errorf("shape: transform scale: %w", err)
			}
			shape.Position, shape.Rotation, shape.Scale = pos, rot, scl

		case SubPivot:
			v, err := readVec3(bytestream.New(payload))
			if err != nil {
				return nil, fmt.Errorf("shape: pivot: %w", err)
			}
			shape.Pivot = v

		case SubPalette:
			p, err := palette.Decode(payload)
			if err != nil {
				return nil, fmt.Errorf("shape: embedded palette: %w", err)
			}
			shape.Palette = p

		case SubCollisionBox:
			ps := bytestream.New(payload)
			min, err := readVec3(ps)
			if err != nil {
				return nil, fmt.Errorf("shape: collision box min: %w", err)
			}
			max, err := readVec3(ps)
			if err != nil {
				return nil, fmt.Errorf("shape: collision box max: %w", err)
			}
			shape.CollisionBox = &CollisionBox{Min: min, Max: max}

		case SubIsHidden:
			v, err := bytestream.New(payload).ReadU8()
			if err != nil {
				return nil, fmt.Errorf("shape: is-hidden flag: %w", ErrTruncated)
			}
			shape.IsHiddenSelf = v != 0

		default:
			// Unknown sub-chunk: already consumed via the generic u32
			// length read above, nothing further to do.
		}
	}

	if pendingBlocks != nil && !sizeSeen {
		return nil, fmt.Errorf("shape: blocks without a discoverable size: %w", ErrBadChunk)
	}

	if resolveParent != nil && shape.ParentID != 0 {
		if parent, ok := resolveParent(shape.ParentID); ok {
			parent.AttachChild(shape)
		}
	}

	return shape, nil
}

// Encode flattens a Shape into one uncompressed SHAPE envelope. mapping, if
// non-nil, remaps each block's palette index before it's written (the
// permutation PaletteCodec.Encode produced for the palette this shape's
// blocks index into). embedPalette controls whether a SHAPE_PALETTE
// sub-chunk is written for this shape at all — false when the shape shares
// the root's palette by reference (MULTI mode, spec.md §5).
func Encode(sh *Shape, mapping []int, embedPalette bool) ([]byte, error) {
	bounds := occupiedAABB(sh)
	startVec := bounds.startVec()

	sink := bytestream.NewSink(256 + len(sh.Blocks))

	writeSubU16(sink, SubShapeID, sh.ShapeID)
	writeSubU16(sink, SubParentID, sh.ParentID)

	if sh.Name != "" {
		if len(sh.Name) > 255 {
			return nil, ErrNameTooLong
		}
		sink.WriteU8(SubName)
		sink.WriteU8(uint8(len(sh.Name)))
		sink.WriteRaw([]byte(sh.Name))
	}

	writeSubTransform(sink, sh.Position, sh.Rotation, sh.Scale)
	writeSubVec3(sink, SubPivot, sh.Pivot.Sub(startVec))

	if sh.CollisionBox != nil {
		writeSubCollisionBox(sink, *sh.CollisionBox)
	}
	if sh.IsHiddenSelf {
		sink.WriteU8(SubIsHidden)
		sink.WriteU32(1)
		sink.WriteU8(1)
	}

	if embedPalette && sh.Palette != nil {
		payload, pmapping, err := palette.Encode(sh.Palette)
		if err != nil {
			return nil, fmt.Errorf("shape: encode embedded palette: %w", err)
		}
		sink.WriteU8(SubPalette)
		sink.WriteU32(uint32(len(payload)))
		sink.WriteRaw(payload)
		mapping = pmapping
	}

	writeSubSize(sink, bounds.w, bounds.h, bounds.d)
	if err := writeSubBlocks(sink, sh, bounds, mapping); err != nil {
		return nil, err
	}

	for name, v := range sh.Points {
		sink.WriteU8(SubPoint)
		buf := bytestream.NewSink(1 + len(name) + 12)
		if err := writeNamedPoint(buf, name, v.Sub(startVec)); err != nil {
			return nil, err
		}
		sink.WriteU32(uint32(buf.Len()))
		sink.WriteRaw(buf.Bytes())
	}
	for name, v := range sh.PointRotations {
		sink.WriteU8(SubPointRotation)
		buf := bytestream.NewSink(1 + len(name) + 12)
		// Point rotations are written unchanged (not AABB-offset).
		if err := writeNamedPoint(buf, name, v); err != nil {
			return nil, err
		}
		sink.WriteU32(uint32(buf.Len()))
		sink.WriteRaw(buf.Bytes())
	}

	if len(sh.Lighting) > 0 {
		cropped := cropLighting(sh, bounds)
		payload := encodeLighting(cropped)
		sink.WriteU8(SubBakedLighting)
		sink.WriteU32(uint32(len(payload)))
		sink.WriteRaw(payload)
	}

	return sink.Bytes(), nil
}
