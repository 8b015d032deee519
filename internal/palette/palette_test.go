package palette

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := New()
	p.Add(color.RGBA{R: 255, G: 0, B: 0, A: 255}, false)
	p.Add(color.RGBA{R: 0, G: 255, B: 0, A: 255}, true)
	p.Add(color.RGBA{R: 10, G: 10, B: 10, A: 255}, false)

	payload, mapping, err := Encode(p)
	require.NoError(t, err)
	require.Len(t, mapping, 3)

	decoded, err := Decode(payload)
	require.NoError(t, err)
	require.Equal(t, p.Count(), decoded.Count())

	for oldIdx, newIdx := range mapping {
		require.Equal(t, p.Colors[oldIdx], decoded.Colors[newIdx])
		require.Equal(t, p.Emissive[oldIdx], decoded.Emissive[newIdx])
	}
}

func TestDecodeLegacyDiscardsHeaderBytes(t *testing.T) {
	// rows=4 cols=8 colorCount=2 defaultColor=0 defaultBg=1, then 2 colors + 2 emissive flags.
	payload := []byte{
		4, 8, 2, 0, // rows, cols, colorCount (u16 LE = 2,0)
		0, 1, // defaultColor, defaultBg
		255, 0, 0, 255, // color 0
		0, 0, 255, 200, // color 1
		0, 1, // emissive flags
	}
	p, err := DecodeLegacy(payload)
	require.NoError(t, err)
	require.Equal(t, 2, p.Count())
	require.Equal(t, color.RGBA{R: 255, A: 255}, p.Colors[0])
	require.False(t, p.Emissive[0])
	require.True(t, p.Emissive[1])
}

func TestTooManyColors(t *testing.T) {
	p := New()
	for i := 0; i < MaxColors+1; i++ {
		p.Add(color.RGBA{R: uint8(i % 255)}, false)
	}
	_, _, err := Encode(p)
	require.ErrorIs(t, err, ErrTooManyColors)
}

func TestLegacyRemapperCachesRepeatedIndices(t *testing.T) {
	builtin, err := Builtin(IDIOSItemEditorLegacy)
	require.NoError(t, err)

	r := NewLegacyRemapper(builtin)
	a, err := r.Remap(3)
	require.NoError(t, err)
	b, err := r.Remap(5)
	require.NoError(t, err)
	c, err := r.Remap(3)
	require.NoError(t, err)

	require.Equal(t, a, c)
	require.NotEqual(t, a, b)
	require.Equal(t, 2, r.Palette().Count())
}

func TestBuiltinUnknownID(t *testing.T) {
	_, err := Builtin(99)
	require.ErrorIs(t, err, ErrUnknownBuiltinID)
}
