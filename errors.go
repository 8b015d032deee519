package p3s

import (
	"github.com/conwinds/p3s/internal/chunkio"
	"github.com/conwinds/p3s/internal/palette"
	"github.com/conwinds/p3s/internal/scene"
	"github.com/conwinds/p3s/internal/shape"
)

// Sentinel errors, re-exported from the internal packages that declare them
// so callers can errors.Is against them without reaching into internal/.
// ErrTruncated and ErrBadChunk are the scene layer's own sentinels: they
// match truncation or a malformed chunk detected while reading the header,
// the preview or a PALETTE_ID chunk, and remapping SINGLE-mode blocks. The
// same conditions detected while decoding a frame, a palette or a shape
// envelope wrap those packages' own sentinels, which are not re-exported
// here. No code path returns ErrAllocationFailed.
var (
	ErrBadMagic           = scene.ErrBadMagic
	ErrUnsupportedVersion = scene.ErrUnsupportedVersion
	ErrTruncated          = scene.ErrTruncated
	ErrBadChunk           = scene.ErrBadChunk
	ErrEmptyShapeEnvelope = scene.ErrEmptyShapeEnvelope
	ErrAllocationFailed   = scene.ErrAllocationFailed

	ErrBadCompression = chunkio.ErrBadCompression

	ErrEmptyEnvelope = shape.ErrEmptyEnvelope
	ErrNameTooLong   = shape.ErrNameTooLong

	ErrTooManyColors    = palette.ErrTooManyColors
	ErrUnknownPaletteID = palette.ErrUnknownBuiltinID
)
