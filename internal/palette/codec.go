// internal/palette/codec.go
// Purpose: the two on-wire palette layouts (legacy and current) spec.md
// §4.3 describes, plus the write-side canonical-order remap.

package palette

import (
	"fmt"
	"image/color"

	"github.com/conwinds/p3s/internal/bytestream"
)

var ErrTruncated = fmt.Errorf("palette: truncated")
var ErrTooManyColors = fmt.Errorf("palette: color count exceeds 255")

// --- Public methods ---

// DecodeLegacy reads the PALETTE_LEGACY wire layout:
// u8 rows | u8 cols | u16 colorCount | u8 defaultColor | u8 defaultBg |
// RGBA[colorCount] | bool[colorCount] emissive.
// rows/cols/defaultColor/defaultBg are consumed and discarded, per spec.md.
func DecodeLegacy(payload []byte) (*Palette, error) {
	s := bytestream.New(payload)

	if _, err := s.ReadU8(); err != nil { // rows
		return nil, fmt.Errorf("palette: legacy rows: %w", ErrTruncated)
	}
	if _, err := s.ReadU8(); err != nil { // cols
		return nil, fmt.Errorf("palette: legacy cols: %w", ErrTruncated)
	}
	count, err := s.ReadU16()
	if err != nil {
		return nil, fmt.Errorf("palette: legacy color count: %w", ErrTruncated)
	}
	if _, err := s.ReadU8(); err != nil { // defaultColor
		return nil, fmt.Errorf("palette: legacy default color: %w", ErrTruncated)
	}
	if _, err := s.ReadU8(); err != nil { // defaultBg
		return nil, fmt.Errorf("palette: legacy default bg: %w", ErrTruncated)
	}

	return decodeColorsAndEmissive(s, int(count))
}

// Decode reads the current wire layout: u8 colorCount | RGBA[colorCount] |
// bool[colorCount] emissive. Used both for the top-level PALETTE chunk and
// for the SHAPE_PALETTE sub-chunk.
func Decode(payload []byte) (*Palette, error) {
	s := bytestream.New(payload)
	count, err := s.ReadU8()
	if err != nil {
		return nil, fmt.Errorf("palette: color count: %w", ErrTruncated)
	}
	return decodeColorsAndEmissive(s, int(count))
}

// Encode writes the current wire layout. It returns the serialized bytes
// plus the mapping produced by CanonicalOrder, which the caller (ShapeCodec)
// must use to rewrite block indices before emitting them.
func Encode(p *Palette) (payload []byte, mapping []int, err error) {
	if p.Count() > MaxColors {
		return nil, nil, ErrTooManyColors
	}

	colors, emissive, mapping := p.CanonicalOrder()

	sink := bytestream.NewSink(1 + len(colors)*5)
	sink.WriteU8(uint8(len(colors)))
	for _, c := range colors {
		sink.WriteU8(c.R)
		sink.WriteU8(c.G)
		sink.WriteU8(c.B)
		sink.WriteU8(c.A)
	}
	for _, e := range emissive {
		if e {
			sink.WriteU8(1)
		} else {
			sink.WriteU8(0)
		}
	}
	return sink.Bytes(), mapping, nil
}

// --- Private helpers ---

func decodeColorsAndEmissive(s *bytestream.Stream, count int) (*Palette, error) {
	colors := make([]color.RGBA, count)
	for i := range colors {
		rgba, err := s.ReadExact(4)
		if err != nil {
			return nil, fmt.Errorf("palette: color %d: %w", i, ErrTruncated)
		}
		colors[i] = color.RGBA{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}
	}
	emissive := make([]bool, count)
	for i := range emissive {
		b, err := s.ReadU8()
		if err != nil {
			return nil, fmt.Errorf("palette: emissive %d: %w", i, ErrTruncated)
		}
		emissive[i] = b != 0
	}
	return &Palette{Colors: colors, Emissive: emissive}, nil
}
