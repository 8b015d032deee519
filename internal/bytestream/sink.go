// internal/bytestream/sink.go
// Purpose: the write-side mirror of Stream — a growable little-endian byte
// sink used by every codec's writer half.

package bytestream

import (
	"encoding/binary"
	"math"
)

// Sink accumulates written bytes in memory. The zero value is ready to use.
type Sink struct {
	buf []byte
}

// --- Constructors ---

// NewSink returns a Sink with buf pre-allocated to the given capacity hint.
func NewSink(capHint int) *Sink {
	return &Sink{buf: make([]byte, 0, capHint)}
}

// --- Public methods ---

// Bytes returns the accumulated buffer. The slice aliases the Sink's
// internal storage; callers that keep writing should copy it first.
func (s *Sink) Bytes() []byte { return s.buf }

// Len returns the number of bytes written so far.
func (s *Sink) Len() int { return len(s.buf) }

// WriteRaw appends b verbatim.
func (s *Sink) WriteRaw(b []byte) {
	s.buf = append(s.buf, b...)
}

// WriteU8 appends a single byte.
func (s *Sink) WriteU8(v uint8) {
	s.buf = append(s.buf, v)
}

// WriteU16 appends a little-endian uint16.
func (s *Sink) WriteU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	s.buf = append(s.buf, b[:]...)
}

// WriteU32 appends a little-endian uint32.
func (s *Sink) WriteU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	s.buf = append(s.buf, b[:]...)
}

// WriteF32 appends a little-endian IEEE-754 float32.
func (s *Sink) WriteF32(v float32) {
	s.WriteU32(math.Float32bits(v))
}

// PatchU32 overwrites the little-endian uint32 at byte offset pos. Used to
// back-patch a size field once the true length is known, mirroring the
// source's v6_write_size_at.
func (s *Sink) PatchU32(pos int, v uint32) {
	binary.LittleEndian.PutUint32(s.buf[pos:pos+4], v)
}
