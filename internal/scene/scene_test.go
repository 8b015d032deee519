package scene

import (
	"bytes"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conwinds/p3s/internal/bytestream"
	"github.com/conwinds/p3s/internal/chunkio"
	"github.com/conwinds/p3s/internal/collab"
	"github.com/conwinds/p3s/internal/mathx"
	"github.com/conwinds/p3s/internal/palette"
	"github.com/conwinds/p3s/internal/shape"
)

func makeCube(w, h, d uint16, fill func(x, y, z int) uint8) *shape.Shape {
	s := shape.New()
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

// S1: empty scene.
func TestEmptySceneHeaderBytes(t *testing.T) {
	sink := bytestream.NewSink(16)
	totalSizePos := writeHeader(sink, CompressionZip)
	sink.PatchU32(totalSizePos, 0)

	want := append([]byte{}, MagicBytes...)
	want = append(want, 6, 0, 0, 0, 1, 0, 0, 0, 0)
	require.Equal(t, want, sink.Bytes())

	assets, err := LoadAssets(bytes.NewReader(sink.Bytes()), nil, FilterAny, shape.DefaultSettings())
	require.NoError(t, err)
	require.Empty(t, assets)
}

// S2: single 1x1x1 red block.
func TestSingleBlockShapeRoundTrip(t *testing.T) {
	root := makeCube(1, 1, 1, func(x, y, z int) uint8 { return 0 })
	p := palette.New()
	p.Add(color.RGBA{R: 255, A: 255}, false)
	root.Palette = p

	buf, err := SaveShapeToBuffer(root, nil, nil)
	require.NoError(t, err)

	assets, err := LoadAssets(bytes.NewReader(buf), nil, FilterAny, shape.DefaultSettings())
	require.NoError(t, err)
	require.Len(t, assets, 1)

	loaded := assets[0].Shape
	require.Equal(t, AssetObject, assets[0].Kind)
	require.Equal(t, uint16(1), loaded.W)
	require.Equal(t, uint16(1), loaded.H)
	require.Equal(t, uint16(1), loaded.D)
	require.Equal(t, uint16(1), loaded.ShapeID)
	require.Equal(t, uint16(0), loaded.ParentID)

	c, ok := loaded.Palette.ColorAt(int(loaded.BlockAt(0, 0, 0)))
	require.True(t, ok)
	require.Equal(t, color.RGBA{R: 255, A: 255}, c)
}

// S3: parent + child.
func TestParentChildRoundTrip(t *testing.T) {
	root := makeCube(2, 2, 2, func(x, y, z int) uint8 { return 0 })
	root.Palette = palette.New()
	root.Palette.Add(color.RGBA{R: 1, A: 255}, false)

	child := makeCube(1, 1, 1, func(x, y, z int) uint8 { return 0 })
	child.Position = mathx.NewVec3(3, 0, 0)
	child.Rotation = mathx.NewVec3(0, math.Pi/2, 0)
	root.AttachChild(child)

	buf, err := SaveShapeToBuffer(root, nil, nil)
	require.NoError(t, err)

	assets, err := LoadAssets(bytes.NewReader(buf), nil, FilterAny, shape.DefaultSettings())
	require.NoError(t, err)
	require.Len(t, assets, 1)

	loadedRoot := assets[0].Shape
	require.Len(t, loadedRoot.Children, 1)
	loadedChild := loadedRoot.Children[0]
	require.Equal(t, uint16(1), loadedRoot.ShapeID)
	require.Equal(t, uint16(1), loadedChild.ParentID)
	require.InDelta(t, math.Pi/2, float64(loadedChild.Rotation.Y), 1e-6)
}

// S4: hidden and custom collider.
func TestHiddenAndColliderRoundTrip(t *testing.T) {
	root := makeCube(1, 1, 1, func(x, y, z int) uint8 { return 0 })
	root.Palette = palette.New()
	root.Palette.Add(color.RGBA{R: 9, A: 255}, false)
	root.IsHiddenSelf = true
	root.CollisionBox = &shape.CollisionBox{Min: mathx.NewVec3(-1, -1, -1), Max: mathx.NewVec3(2, 2, 2)}

	buf, err := SaveShapeToBuffer(root, nil, nil)
	require.NoError(t, err)

	assets, err := LoadAssets(bytes.NewReader(buf), nil, FilterAny, shape.DefaultSettings())
	require.NoError(t, err)
	loaded := assets[0].Shape
	require.True(t, loaded.IsHiddenSelf)
	require.NotNil(t, loaded.CollisionBox)
	require.Equal(t, mathx.NewVec3(-1, -1, -1), loaded.CollisionBox.Min)
	require.Equal(t, mathx.NewVec3(2, 2, 2), loaded.CollisionBox.Max)

	plain := makeCube(1, 1, 1, func(x, y, z int) uint8 { return 0 })
	plain.Palette = palette.New()
	plain.Palette.Add(color.RGBA{R: 9, A: 255}, false)
	buf2, err := SaveShapeToBuffer(plain, nil, nil)
	require.NoError(t, err)
	assets2, err := LoadAssets(bytes.NewReader(buf2), nil, FilterAny, shape.DefaultSettings())
	require.NoError(t, err)
	require.False(t, assets2[0].Shape.IsHiddenSelf)
	require.Nil(t, assets2[0].Shape.CollisionBox)
}

// S5: preview-only extraction.
func TestGetPreviewDoesNotDecompressShape(t *testing.T) {
	root := makeCube(1, 1, 1, func(x, y, z int) uint8 { return 0 })
	root.Palette = palette.New()
	root.Palette.Add(color.RGBA{A: 255}, false)

	preview := bytes.Repeat([]byte{0xAB}, 1234)
	buf, err := SaveShapeToBuffer(root, nil, preview)
	require.NoError(t, err)

	got, err := GetPreview(bytes.NewReader(buf))
	require.NoError(t, err)
	require.Equal(t, preview, got)
}

// S6: unknown chunk tolerance.
func TestUnknownTopLevelChunkIsSkipped(t *testing.T) {
	root := makeCube(1, 1, 1, func(x, y, z int) uint8 { return 0 })
	root.Palette = palette.New()
	root.Palette.Add(color.RGBA{G: 9, A: 255}, false)

	buf, err := SaveShapeToBuffer(root, nil, nil)
	require.NoError(t, err)

	baseline, err := LoadAssets(bytes.NewReader(buf), nil, FilterAny, shape.DefaultSettings())
	require.NoError(t, err)

	// Splice an unknown chunk (id 99, V5 framing) right after the header.
	headerLen := len(MagicBytes) + 4 + 1 + 4
	injected := append([]byte{}, buf[:headerLen]...)
	injected = append(injected, 99, 5, 0, 0, 0)
	injected = append(injected, []byte("hello")...)
	injected = append(injected, buf[headerLen:]...)
	sink := bytestream.NewSink(len(injected))
	sink.WriteRaw(injected)
	newTotal := uint32(len(injected) - headerLen)
	sink.PatchU32(len(MagicBytes)+4+1, newTotal)

	withInjection, err := LoadAssets(bytes.NewReader(sink.Bytes()), nil, FilterAny, shape.DefaultSettings())
	require.NoError(t, err)
	require.Len(t, withInjection, len(baseline))
	require.Equal(t, baseline[0].Shape.ShapeID, withInjection[0].Shape.ShapeID)
}

// Property 5(a): LEGACY dispatch.
func TestPaletteModeLegacyDispatch(t *testing.T) {
	sh := makeCube(1, 1, 1, func(x, y, z int) uint8 { return 3 })
	envelope, err := shape.Encode(sh, nil, false)
	require.NoError(t, err)

	sink := bytestream.NewSink(256)
	totalSizePos := writeHeader(sink, CompressionNone)
	regionStart := sink.Len()
	sink.WriteU8(chunkio.PaletteID)
	sink.WriteU32(1)
	sink.WriteU8(0) // isCompressed = false
	sink.WriteU32(1)
	sink.WriteU8(palette.IDIOSItemEditorLegacy)
	require.NoError(t, chunkio.WriteFrame(sink, chunkio.Shape, envelope, false))
	sink.PatchU32(totalSizePos, uint32(sink.Len()-regionStart))

	assets, err := LoadAssets(bytes.NewReader(sink.Bytes()), nil, FilterAny, shape.DefaultSettings())
	require.NoError(t, err)
	require.Len(t, assets, 1)
	loaded := assets[0].Shape
	builtin, err := palette.Builtin(palette.IDIOSItemEditorLegacy)
	require.NoError(t, err)
	want, _ := builtin.ColorAt(3)
	got, ok := loaded.Palette.ColorAt(int(loaded.BlockAt(0, 0, 0)))
	require.True(t, ok)
	require.Equal(t, want, got)
}

// Property 5(b): SINGLE dispatch.
func TestPaletteModeSingleDispatch(t *testing.T) {
	filePalette := palette.New()
	filePalette.Add(color.RGBA{B: 77, A: 255}, false)

	root := makeCube(1, 1, 1, func(x, y, z int) uint8 { return 0 })
	buf, err := SaveShapeToBuffer(root, filePalette, nil)
	require.NoError(t, err)

	assets, err := LoadAssets(bytes.NewReader(buf), nil, FilterAny, shape.DefaultSettings())
	require.NoError(t, err)
	require.Len(t, assets, 1)
	loaded := assets[0].Shape
	require.Equal(t, filePalette.Count(), loaded.Palette.Count())
	got, _ := loaded.Palette.ColorAt(0)
	require.Equal(t, color.RGBA{B: 77, A: 255}, got)
}

// Property 5(c): MULTI dispatch returns the top-level PALETTE as standalone.
func TestPaletteModeMultiKeepsTopLevelPaletteStandalone(t *testing.T) {
	root := makeCube(1, 1, 1, func(x, y, z int) uint8 { return 0 })
	root.Palette = palette.New()
	root.Palette.Add(color.RGBA{R: 3, A: 255}, false)

	artist := palette.New()
	artist.Add(color.RGBA{G: 200, A: 255}, false)

	buf, err := SaveShapeToBuffer(root, artist, nil)
	require.NoError(t, err)

	assets, err := LoadAssets(bytes.NewReader(buf), nil, FilterAny, shape.DefaultSettings())
	require.NoError(t, err)

	var sawPalette, sawShape bool
	for _, a := range assets {
		if a.Kind == AssetPalette {
			sawPalette = true
			require.Equal(t, artist.Count(), a.Palette.Count())
		}
		if a.Kind == AssetObject || a.Kind == AssetShape {
			sawShape = true
			require.NotNil(t, a.Shape.Palette)
		}
	}
	require.True(t, sawPalette)
	require.True(t, sawShape)
}

// Property 6: coordinate framing.
func TestCoordinateFramingRelativeToOccupiedAABB(t *testing.T) {
	root := makeCube(8, 8, 8, func(x, y, z int) uint8 {
		if x == 5 && y == 2 && z == 7 {
			return 0
		}
		return shape.Air
	})
	root.Palette = palette.New()
	root.Palette.Add(color.RGBA{R: 50, A: 255}, false)
	root.Points["foo"] = mathx.NewVec3(5.5, 2.5, 7.5)

	buf, err := SaveShapeToBuffer(root, nil, nil)
	require.NoError(t, err)

	assets, err := LoadAssets(bytes.NewReader(buf), nil, FilterAny, shape.DefaultSettings())
	require.NoError(t, err)
	loaded := assets[0].Shape

	require.Equal(t, uint8(0), loaded.BlockAt(0, 0, 0))
	require.Equal(t, mathx.NewVec3(0.5, 0.5, 0.5), loaded.Points["foo"])
}

func TestLoadAssetsRespectsFilter(t *testing.T) {
	root := makeCube(1, 1, 1, func(x, y, z int) uint8 { return 0 })
	root.Palette = palette.New()
	root.Palette.Add(color.RGBA{A: 255}, false)

	buf, err := SaveShapeToBuffer(root, nil, nil)
	require.NoError(t, err)

	assets, err := LoadAssets(bytes.NewReader(buf), nil, FilterPalette, shape.DefaultSettings())
	require.NoError(t, err)
	require.Empty(t, assets)
}

func TestLoadAssetsRegistersColorsInAtlas(t *testing.T) {
	root := makeCube(1, 1, 1, func(x, y, z int) uint8 { return 0 })
	root.Palette = palette.New()
	root.Palette.Add(color.RGBA{R: 42, A: 255}, false)

	buf, err := SaveShapeToBuffer(root, nil, nil)
	require.NoError(t, err)

	atlas := collab.NewMemoryAtlas()
	_, err = LoadAssets(bytes.NewReader(buf), atlas, FilterAny, shape.DefaultSettings())
	require.NoError(t, err)
	require.Equal(t, 1, atlas.Len())
}

func TestLoadAssetsBadMagic(t *testing.T) {
	_, err := LoadAssets(bytes.NewReader([]byte("xxxxxxxxxxxx")), nil, FilterAny, shape.DefaultSettings())
	require.ErrorIs(t, err, ErrBadMagic)
}

// A child sharing the root's palette object (the shape every MULTI-mode
// load already produces) must have its blocks rewritten through the same
// canonical-order remap the root's embedded palette bytes go through, or
// the two desync on a load-mutate-save round trip whenever that remap
// isn't the identity permutation.
func TestSaveShapeRemapsBlocksOfSharedPalette(t *testing.T) {
	root := makeCube(1, 1, 1, func(x, y, z int) uint8 { return 0 })
	root.Palette = palette.New()
	root.Palette.Add(color.RGBA{R: 200, A: 255}, false) // index 0, sorts last by R
	root.Palette.Add(color.RGBA{R: 5, A: 255}, false)   // index 1, sorts first
	root.Palette.Add(color.RGBA{R: 100, A: 255}, false) // index 2, sorts middle

	child := makeCube(1, 1, 1, func(x, y, z int) uint8 { return 1 }) // R:5
	child.Palette = root.Palette
	root.AttachChild(child)

	buf, err := SaveShapeToBuffer(root, nil, nil)
	require.NoError(t, err)

	assets, err := LoadAssets(bytes.NewReader(buf), nil, FilterAny, shape.DefaultSettings())
	require.NoError(t, err)
	require.Len(t, assets, 1)

	loadedChild := assets[0].Shape.Children[0]
	got, ok := loadedChild.Palette.ColorAt(int(loadedChild.BlockAt(0, 0, 0)))
	require.True(t, ok)
	require.Equal(t, color.RGBA{R: 5, A: 255}, got)
}

// Supplement 2 (§13): an out-of-range PALETTE_ID falls back to the default
// built-in rather than failing the whole load.
func TestPaletteModeUnknownLegacyIDFallsBackToDefault(t *testing.T) {
	sh := makeCube(1, 1, 1, func(x, y, z int) uint8 { return 3 })
	envelope, err := shape.Encode(sh, nil, false)
	require.NoError(t, err)

	sink := bytestream.NewSink(256)
	totalSizePos := writeHeader(sink, CompressionNone)
	regionStart := sink.Len()
	sink.WriteU8(chunkio.PaletteID)
	sink.WriteU32(1)
	sink.WriteU8(0)
	sink.WriteU32(1)
	sink.WriteU8(99) // not a known builtin id
	require.NoError(t, chunkio.WriteFrame(sink, chunkio.Shape, envelope, false))
	sink.PatchU32(totalSizePos, uint32(sink.Len()-regionStart))

	assets, err := LoadAssets(bytes.NewReader(sink.Bytes()), nil, FilterAny, shape.DefaultSettings())
	require.NoError(t, err)
	require.Len(t, assets, 1)

	loaded := assets[0].Shape
	builtin, err := palette.Builtin(palette.DefaultBuiltinID)
	require.NoError(t, err)
	want, _ := builtin.ColorAt(3)
	got, ok := loaded.Palette.ColorAt(int(loaded.BlockAt(0, 0, 0)))
	require.True(t, ok)
	require.Equal(t, want, got)
}

// A load that fails partway through LEGACY-mode remapping (a block index
// past the builtin palette's 32 colors here) still returns a clean error
// rather than a corrupted partial result; spec.md §7's "already
// materialized shapes/palettes are released" keeps that failure's
// bookkeeping consistent even though Go's GC reclaims the memory either way.
func TestFailedLegacyRemapLoadReturnsError(t *testing.T) {
	sh := makeCube(1, 1, 1, func(x, y, z int) uint8 { return 250 }) // past the 32-entry builtin
	envelope, err := shape.Encode(sh, nil, false)
	require.NoError(t, err)

	sink := bytestream.NewSink(256)
	totalSizePos := writeHeader(sink, CompressionNone)
	regionStart := sink.Len()
	require.NoError(t, chunkio.WriteFrame(sink, chunkio.Shape, envelope, false))
	sink.PatchU32(totalSizePos, uint32(sink.Len()-regionStart))

	_, err = LoadAssets(bytes.NewReader(sink.Bytes()), nil, FilterAny, shape.DefaultSettings())
	require.Error(t, err)
}
