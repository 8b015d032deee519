// internal/bytestream/stream.go
// Purpose: cursor over an in-memory byte source with typed little-endian
// reads. Adapted from the teacher's internal/chunk/access.go ("fast Get/Set
// accessors operating on packed positions"); here the packed position is
// simply the read cursor and the payload is arbitrary chunk/sub-chunk bytes
// instead of a fixed 32^3 voxel grid.
//
// Every load reads its whole source into memory first (mirroring the
// os.ReadFile + bytes.Reader approach used throughout the VOPL and rbxfile
// binary readers in the retrieved pack) so that skip/seek/remaining are
// trivial slice arithmetic rather than requiring a seekable io.Reader.

package bytestream

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ErrTruncated is returned whenever a read or skip would run past the end
// of the underlying buffer.
var ErrTruncated = fmt.Errorf("bytestream: truncated")

// Stream is a read-only cursor over a byte slice.
type Stream struct {
	buf []byte
	pos int
}

// --- Constructors ---

// New wraps buf for sequential reading starting at offset 0.
func New(buf []byte) *Stream {
	return &Stream{buf: buf}
}

// --- Public methods ---

// Position returns the current read offset.
func (s *Stream) Position() int { return s.pos }

// Remaining returns the number of unread bytes.
func (s *Stream) Remaining() int { return len(s.buf) - s.pos }

// Len returns the total length of the underlying buffer.
func (s *Stream) Len() int { return len(s.buf) }

// Seek moves the cursor to an absolute offset. It fails if pos is out of
// bounds of the buffer (seeking exactly to len(buf) is allowed, and yields
// Remaining() == 0).
func (s *Stream) Seek(pos int) error {
	if pos < 0 || pos > len(s.buf) {
		return ErrTruncated
	}
	s.pos = pos
	return nil
}

// Skip advances the cursor by n bytes without returning them.
func (s *Stream) Skip(n int) error {
	if n < 0 || n > s.Remaining() {
		return ErrTruncated
	}
	s.pos += n
	return nil
}

// ReadExact returns the next n bytes and advances the cursor. The returned
// slice aliases the underlying buffer; callers that need to keep it beyond
// the stream's lifetime should copy.
func (s *Stream) ReadExact(n int) ([]byte, error) {
	if n < 0 || n > s.Remaining() {
		return nil, ErrTruncated
	}
	b := s.buf[s.pos : s.pos+n]
	s.pos += n
	return b, nil
}

// ReadU8 reads a single unsigned byte.
func (s *Stream) ReadU8() (uint8, error) {
	b, err := s.ReadExact(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16 reads a little-endian uint16.
func (s *Stream) ReadU16() (uint16, error) {
	b, err := s.ReadExact(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32 reads a little-endian uint32.
func (s *Stream) ReadU32() (uint32, error) {
	b, err := s.ReadExact(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadF32 reads a little-endian IEEE-754 float32.
func (s *Stream) ReadF32() (float32, error) {
	v, err := s.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}
