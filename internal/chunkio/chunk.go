// internal/chunkio/chunk.go
// Purpose: top-level chunk ids and the two historical frame shapes that
// coexist in a P3S file. Adapted from the teacher's internal/chunk/codec.go,
// whose TODO banners ("EncodeChunkSnapshot / DecodeChunkSnapshot", "format
// version tags") named exactly this responsibility without filling it in.
//
// Two frame shapes, chosen purely by chunk id (the caller's job, not the
// stream's): the short "V5" header used only by PREVIEW, and the longer
// "V6" header used by every other recognized top-level chunk (sub-chunks
// inside a SHAPE envelope, including the embedded palette, use their own
// plain framing). Unknown ids fall back to the V5 shape,
// which is how the format skips chunks it doesn't recognize without ever
// erroring.

package chunkio

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/conwinds/p3s/internal/bytestream"
)

// Top-level chunk ids (spec.md §6).
const (
	Preview       uint8 = 1
	PaletteLegacy uint8 = 2
	Shape         uint8 = 3
	PaletteID     uint8 = 15
	Palette       uint8 = 16
)

var ErrTruncated = fmt.Errorf("chunkio: truncated")
var ErrBadCompression = fmt.Errorf("chunkio: bad compression")

// usesV6Header reports whether id uses the long (compressible) frame
// shape. PREVIEW is the only id using the short V5 shape amongst the ones
// this codec recognizes; everything unrecognized also falls back to V5.
func usesV6Header(id uint8) bool {
	switch id {
	case PaletteLegacy, Shape, PaletteID, Palette:
		return true
	default:
		return false
	}
}

// Frame is a materialized top-level chunk: its id and decompressed payload.
type Frame struct {
	ID      uint8
	Payload []byte
	// Skipped is true when id was not recognized and the frame was only
	// skipped (its payload was never decoded or returned).
	Skipped bool
}

// --- Public methods ---

// ReadFrame reads one top-level frame starting at the stream's current
// position (which must be positioned right before a chunk id byte).
func ReadFrame(s *bytestream.Stream) (*Frame, error) {
	id, err := s.ReadU8()
	if err != nil {
		return nil, fmt.Errorf("chunkio: read chunk id: %w", ErrTruncated)
	}

	if id == Preview {
		size, err := s.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("chunkio: read preview size: %w", ErrTruncated)
		}
		payload, err := s.ReadExact(int(size))
		if err != nil {
			return nil, fmt.Errorf("chunkio: read preview payload: %w", ErrTruncated)
		}
		return &Frame{ID: id, Payload: payload}, nil
	}

	if usesV6Header(id) {
		storedSize, err := s.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("chunkio: read stored size: %w", ErrTruncated)
		}
		isCompressed, err := s.ReadU8()
		if err != nil {
			return nil, fmt.Errorf("chunkio: read compression flag: %w", ErrTruncated)
		}
		uncompressedSize, err := s.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("chunkio: read uncompressed size: %w", ErrTruncated)
		}
		raw, err := s.ReadExact(int(storedSize))
		if err != nil {
			return nil, fmt.Errorf("chunkio: read chunk payload (id=%d): %w", id, ErrTruncated)
		}

		switch isCompressed {
		case 0:
			return &Frame{ID: id, Payload: raw}, nil
		case 1:
			payload, err := zlibInflate(raw, int(uncompressedSize))
			if err != nil {
				return nil, fmt.Errorf("chunkio: inflate chunk (id=%d): %w", id, err)
			}
			return &Frame{ID: id, Payload: payload}, nil
		default:
			return nil, fmt.Errorf("chunkio: compression flag %d (id=%d): %w", isCompressed, id, ErrBadCompression)
		}
	}

	// Unknown id: tolerate it via the V5 frame shape (u32 length, raw skip).
	size, err := s.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("chunkio: read unknown chunk size (id=%d): %w", id, ErrTruncated)
	}
	if err := s.Skip(int(size)); err != nil {
		return nil, fmt.Errorf("chunkio: skip unknown chunk (id=%d): %w", id, ErrTruncated)
	}
	return &Frame{ID: id, Skipped: true}, nil
}

// WriteFrame writes one top-level frame. PREVIEW is always written raw
// (previews are opaquely stored PNGs, already compressed); compress is
// honored for every other id.
func WriteFrame(sink *bytestream.Sink, id uint8, payload []byte, compress bool) error {
	if id == Preview {
		sink.WriteU8(id)
		sink.WriteU32(uint32(len(payload)))
		sink.WriteRaw(payload)
		return nil
	}

	stored := payload
	isCompressed := uint8(0)
	if compress {
		compressed, err := zlibDeflate(payload)
		if err != nil {
			return fmt.Errorf("chunkio: deflate chunk (id=%d): %w", id, err)
		}
		stored = compressed
		isCompressed = 1
	}

	sink.WriteU8(id)
	sink.WriteU32(uint32(len(stored)))
	sink.WriteU8(isCompressed)
	sink.WriteU32(uint32(len(payload)))
	sink.WriteRaw(stored)
	return nil
}

// --- Private helpers ---

func zlibInflate(data []byte, expectedSize int) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCompression, err)
	}
	defer r.Close()

	out := make([]byte, 0, expectedSize)
	buf := bytes.NewBuffer(out)
	if _, err := io.Copy(buf, r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCompression, err)
	}
	return buf.Bytes(), nil
}

func zlibDeflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
