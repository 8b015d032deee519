package p3s_test

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conwinds/p3s"
)

func makeCube(w, h, d uint16, fill func(x, y, z int) uint8) *p3s.Shape {
	s := p3s.NewShape()
	s.W, s.H, s.D = w, h, d
	s.Blocks = make([]uint8, int(w)*int(h)*int(d))
	for z := 0; z < int(d); z++ {
		for y := 0; y < int(h); y++ {
			for x := 0; x < int(w); x++ {
				s.Blocks[s.Index(x, y, z)] = fill(x, y, z)
			}
		}
	}
	return s
}

func TestFacadeRoundTrip(t *testing.T) {
	root := makeCube(1, 1, 1, func(x, y, z int) uint8 { return 0 })
	root.Name = "Root"
	root.Palette = p3s.NewPalette()
	root.Palette.Add(color.RGBA{R: 200, G: 10, B: 10, A: 255}, false)

	buf, err := p3s.SaveShapeToBuffer(root, nil, []byte{1, 2, 3, 4})
	require.NoError(t, err)

	preview, err := p3s.GetPreview(bytes.NewReader(buf))
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, preview)

	atlas := p3s.NewColorAtlas()
	assets, err := p3s.LoadAssets(bytes.NewReader(buf), atlas, p3s.FilterAny, p3s.DefaultShapeSettings())
	require.NoError(t, err)
	require.Len(t, assets, 1)
	require.Equal(t, p3s.AssetObject, assets[0].Kind)
	require.Equal(t, "Root", assets[0].Shape.Name)
	require.Equal(t, uint8(0), assets[0].Shape.BlockAt(0, 0, 0))
	require.Equal(t, 1, atlas.Len())
}

func TestFacadeSaveShapeToWriter(t *testing.T) {
	root := makeCube(1, 1, 1, func(x, y, z int) uint8 { return 0 })
	root.Palette = p3s.NewPalette()
	root.Palette.Add(color.RGBA{R: 1, G: 2, B: 3, A: 255}, false)

	var out bytes.Buffer
	require.NoError(t, p3s.SaveShape(&out, root, nil, nil))

	assets, err := p3s.LoadAssets(bytes.NewReader(out.Bytes()), nil, p3s.FilterShape|p3s.FilterObject, p3s.DefaultShapeSettings())
	require.NoError(t, err)
	require.Len(t, assets, 1)
}
