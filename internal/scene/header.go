// internal/scene/header.go
// Purpose: the fixed 4-field container header that precedes the chunk
// region — magic bytes, format version, compression algo, and the
// total-size field that gets patched after the chunk region is written
// (spec.md §4.5, §6). Grounded on the header layout in
// original_source/core/serialization_v6.c
// (serialization_v6_save_shape_as_buffer): magic, u32 version, u8 algo,
// u32 totalSize, patched last.

package scene

import (
	"fmt"

	"github.com/conwinds/p3s/internal/bytestream"
)

// MagicBytes tags a version-6 container. The source only fixes the length
// and doesn't reproduce the exact ASCII bytes in this excerpt; P3S6 is this
// reimplementation's tag.
var MagicBytes = []byte("P3S6")

// MagicBytesLegacy is recognized only to produce a clearer error than
// BadMagic when an older-format file is handed to this reader; parsing
// versions <= 5 is explicitly out of scope (spec.md Non-goals).
var MagicBytesLegacy = []byte("P3S ")

const FormatVersion uint32 = 6

// CompressionAlgo values for the header's algo byte.
const (
	CompressionNone uint8 = 0
	CompressionZip  uint8 = 1
)

var (
	ErrBadMagic           = fmt.Errorf("scene: bad magic bytes")
	ErrUnsupportedVersion = fmt.Errorf("scene: unsupported format version")
	ErrTruncated          = fmt.Errorf("scene: truncated")
)

// readHeader parses the fixed header and returns the compression algo byte
// plus the exact chunk-region bytes it declares (length totalSize).
func readHeader(s *bytestream.Stream) (algo uint8, chunkRegion []byte, err error) {
	magic, err := s.ReadExact(len(MagicBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("scene: header magic: %w", ErrTruncated)
	}
	if !bytesEqual(magic, MagicBytes) {
		if bytesEqual(magic, MagicBytesLegacy) {
			return 0, nil, fmt.Errorf("scene: legacy (pre-6) format: %w", ErrUnsupportedVersion)
		}
		return 0, nil, ErrBadMagic
	}

	version, err := s.ReadU32()
	if err != nil {
		return 0, nil, fmt.Errorf("scene: header version: %w", ErrTruncated)
	}
	if version != FormatVersion {
		return 0, nil, fmt.Errorf("scene: version %d: %w", version, ErrUnsupportedVersion)
	}

	algo, err = s.ReadU8()
	if err != nil {
		return 0, nil, fmt.Errorf("scene: header algo: %w", ErrTruncated)
	}

	totalSize, err := s.ReadU32()
	if err != nil {
		return 0, nil, fmt.Errorf("scene: header total size: %w", ErrTruncated)
	}

	chunkRegion, err = s.ReadExact(int(totalSize))
	if err != nil {
		return 0, nil, fmt.Errorf("scene: chunk region: %w", ErrTruncated)
	}

	return algo, chunkRegion, nil
}

// writeHeader writes magic, version, and algo, plus a zero placeholder for
// totalSize, returning the sink position of that placeholder so the caller
// can patch it in once the chunk region's real length is known.
func writeHeader(sink *bytestream.Sink, algo uint8) (totalSizePos int) {
	sink.WriteRaw(MagicBytes)
	sink.WriteU32(FormatVersion)
	sink.WriteU8(algo)
	totalSizePos = sink.Len()
	sink.WriteU32(0)
	return totalSizePos
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
