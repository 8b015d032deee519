package chunkio

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conwinds/p3s/internal/bytestream"
)

func TestWriteReadFrameRoundTrip(t *testing.T) {
	cases := []struct {
		name     string
		id       uint8
		payload  []byte
		compress bool
	}{
		{"preview_raw", Preview, []byte("fake png bytes"), false},
		{"palette_uncompressed", Palette, []byte{1, 2, 3, 4}, false},
		{"shape_compressed", Shape, []byte("some shape sub-chunk stream payload"), true},
		{"empty_compressed", PaletteLegacy, []byte{}, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sink := bytestream.NewSink(64)
			require.NoError(t, WriteFrame(sink, c.id, c.payload, c.compress))

			s := bytestream.New(sink.Bytes())
			frame, err := ReadFrame(s)
			require.NoError(t, err)
			require.Equal(t, c.id, frame.ID)
			require.False(t, frame.Skipped)
			require.Equal(t, c.payload, frame.Payload)
			require.Equal(t, sink.Len(), s.Position())
		})
	}
}

func TestReadFrameUnknownIDIsSkipped(t *testing.T) {
	sink := bytestream.NewSink(32)
	sink.WriteU8(99)
	sink.WriteU32(5)
	sink.WriteRaw([]byte("hello"))

	s := bytestream.New(sink.Bytes())
	frame, err := ReadFrame(s)
	require.NoError(t, err)
	require.True(t, frame.Skipped)
	require.Equal(t, uint8(99), frame.ID)
	require.Equal(t, 0, s.Remaining())
}

func TestReadFrameBadCompressionFlag(t *testing.T) {
	sink := bytestream.NewSink(32)
	sink.WriteU8(Palette)
	sink.WriteU32(3)
	sink.WriteU8(7) // invalid flag
	sink.WriteU32(3)
	sink.WriteRaw([]byte{1, 2, 3})

	s := bytestream.New(sink.Bytes())
	_, err := ReadFrame(s)
	require.ErrorIs(t, err, ErrBadCompression)
}

func TestReadFrameTruncated(t *testing.T) {
	s := bytestream.New([]byte{Palette, 0x05, 0x00})
	_, err := ReadFrame(s)
	require.ErrorIs(t, err, ErrTruncated)
}
