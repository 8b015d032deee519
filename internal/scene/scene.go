// internal/scene/scene.go
// Purpose: SceneCodec, the top-level orchestrator spec.md §4.5 describes —
// header, chunk region, shape-tree reconstruction, and palette-mode
// dispatch. Grounded on the chunked-format-with-dispatch shape of
// other_examples/RobloxAPI-rbxfile__format.go's Serializer/Decoder split,
// adapted into a straight-line load/save pair since this format has no
// plugin registry to consult.

package scene

import (
	"fmt"
	"io"

	"github.com/conwinds/p3s/internal/bytestream"
	"github.com/conwinds/p3s/internal/chunkio"
	"github.com/conwinds/p3s/internal/collab"
	"github.com/conwinds/p3s/internal/palette"
	"github.com/conwinds/p3s/internal/shape"
)

// AssetKind distinguishes the two members of the Asset union spec.md §6
// names: a standalone palette, or a materialized shape tree. AssetObject is
// the leaf-shape special case: a root shape with no children.
type AssetKind int

const (
	AssetPalette AssetKind = iota
	AssetShape
	AssetObject
)

// Asset is one top-level result of a load: either a standalone Palette or a
// root Shape (tagged AssetObject when it has no children).
type Asset struct {
	Kind    AssetKind
	Shape   *shape.Shape
	Palette *palette.Palette
}

// AssetFilter is the bitmask spec.md §6 passes to loadAssets.
type AssetFilter uint8

const (
	FilterPalette AssetFilter = 1 << iota
	FilterShape
	FilterObject
	FilterAny = FilterPalette | FilterShape | FilterObject
)

func (f AssetFilter) allows(k AssetKind) bool {
	switch k {
	case AssetPalette:
		return f&FilterPalette != 0
	case AssetShape:
		return f&FilterShape != 0
	case AssetObject:
		return f&FilterObject != 0
	default:
		return false
	}
}

// LoadAssets reads a complete version-6 container and returns every asset
// the filter admits. atlas may be nil; when non-nil, every color of every
// loaded shape's palette is registered into it per spec.md §5's
// borrowed-reference contract. The colors of a standalone artist palette
// are not registered.
func LoadAssets(r io.Reader, atlas collab.ColorAtlas, filter AssetFilter, settings shape.Settings) (assets []Asset, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("scene: read stream: %w", err)
	}

	s := bytestream.New(data)
	_, chunkRegion, err := readHeader(s)
	if err != nil {
		return nil, err
	}

	region := bytestream.New(chunkRegion)
	registry := newShapeRegistry()

	// A load that fails partway still releases any shape/palette reference
	// already materialized, per spec.md §7 ("any shapes/palettes already
	// materialized are released").
	defer func() {
		if err != nil {
			releaseAll(registry.roots)
		}
	}()

	var filePalette *palette.Palette
	var legacyPaletteID *uint8

	for region.Remaining() > 0 {
		frame, err := chunkio.ReadFrame(region)
		if err != nil {
			return nil, err
		}
		if frame.Skipped {
			continue
		}

		switch frame.ID {
		case chunkio.Preview:
			// getPreview handles this path directly; loadAssets doesn't
			// need to keep the bytes once past them.

		case chunkio.Palette:
			p, err := palette.Decode(frame.Payload)
			if err != nil {
				return nil, fmt.Errorf("scene: top-level palette: %w", err)
			}
			filePalette = p

		case chunkio.PaletteLegacy:
			p, err := palette.DecodeLegacy(frame.Payload)
			if err != nil {
				return nil, fmt.Errorf("scene: top-level legacy palette: %w", err)
			}
			filePalette = p

		case chunkio.PaletteID:
			ps := bytestream.New(frame.Payload)
			id, err := ps.ReadU8()
			if err != nil {
				return nil, fmt.Errorf("scene: palette id: %w", ErrBadChunk)
			}
			legacyPaletteID = &id

		case chunkio.Shape:
			if len(frame.Payload) == 0 {
				return nil, ErrEmptyShapeEnvelope
			}
			sh, err := shape.Decode(frame.Payload, settings, registry.resolve)
			if err != nil {
				return nil, err
			}
			registry.record(sh)
		}
	}

	standalonePalette, err := resolvePaletteMode(rootAndDescendants(registry.roots), filePalette, legacyPaletteID, atlas)
	if err != nil {
		return nil, err
	}

	if standalonePalette != nil && filter.allows(AssetPalette) {
		assets = append(assets, Asset{Kind: AssetPalette, Palette: standalonePalette})
	}
	for _, root := range registry.roots {
		kind := AssetShape
		if len(root.Children) == 0 {
			kind = AssetObject
		}
		if filter.allows(kind) {
			assets = append(assets, Asset{Kind: kind, Shape: root})
		}
	}
	return assets, nil
}

// rootAndDescendants flattens every shape reachable from the declared root
// list, since palette-mode dispatch and remapping apply to every shape in
// the file, not just its roots.
func rootAndDescendants(roots []*shape.Shape) []*shape.Shape {
	var all []*shape.Shape
	var walk func(*shape.Shape)
	walk = func(s *shape.Shape) {
		all = append(all, s)
		for _, c := range s.Children {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return all
}

// GetPreview scans only until the PREVIEW chunk (or the end of the file)
// and never decompresses a SHAPE envelope, per spec.md §6.
func GetPreview(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("scene: read stream: %w", err)
	}

	s := bytestream.New(data)
	_, chunkRegion, err := readHeader(s)
	if err != nil {
		return nil, err
	}

	region := bytestream.New(chunkRegion)
	for region.Remaining() > 0 {
		id, err := region.ReadU8()
		if err != nil {
			break
		}
		if id == chunkio.Preview {
			size, err := region.ReadU32()
			if err != nil {
				return nil, fmt.Errorf("scene: preview size: %w", ErrTruncated)
			}
			payload, err := region.ReadExact(int(size))
			if err != nil {
				return nil, fmt.Errorf("scene: preview payload: %w", ErrTruncated)
			}
			return payload, nil
		}
		// Every other top-level id, compressed or not, is skipped without
		// materializing its payload — GetPreview never decompresses a shape.
		if err := skipV6OrV5(region, id); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func skipV6OrV5(s *bytestream.Stream, id uint8) error {
	switch id {
	case chunkio.PaletteLegacy, chunkio.Shape, chunkio.PaletteID, chunkio.Palette:
		storedSize, err := s.ReadU32()
		if err != nil {
			return fmt.Errorf("scene: skip v6 chunk size: %w", ErrTruncated)
		}
		if err := s.Skip(1 + 4); err != nil { // isCompressed + uncompressedSize
			return fmt.Errorf("scene: skip v6 chunk header: %w", ErrTruncated)
		}
		if err := s.Skip(int(storedSize)); err != nil {
			return fmt.Errorf("scene: skip v6 chunk payload: %w", ErrTruncated)
		}
	default:
		size, err := s.ReadU32()
		if err != nil {
			return fmt.Errorf("scene: skip v5 chunk size: %w", ErrTruncated)
		}
		if err := s.Skip(int(size)); err != nil {
			return fmt.Errorf("scene: skip v5 chunk payload: %w", ErrTruncated)
		}
	}
	return nil
}

// SaveShape serializes root's full tree (and an optional artist palette and
// preview) to w.
func SaveShape(w io.Writer, root *shape.Shape, artistPalette *palette.Palette, previewBytes []byte) error {
	buf, err := SaveShapeToBuffer(root, artistPalette, previewBytes)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// SaveShapeToBuffer serializes root's full tree into a freshly allocated
// buffer, following the write order in spec.md §4.5: header, optional
// preview, optional artist palette, then one SHAPE frame per shape in
// pre-order DFS with a monotonically incremented shapeId starting at 1.
func SaveShapeToBuffer(root *shape.Shape, artistPalette *palette.Palette, previewBytes []byte) ([]byte, error) {
	sink := bytestream.NewSink(4096)
	totalSizePos := writeHeader(sink, CompressionZip)
	regionStart := sink.Len()

	if len(previewBytes) > 0 {
		sink.WriteU8(chunkio.Preview)
		sink.WriteU32(uint32(len(previewBytes)))
		sink.WriteRaw(previewBytes)
	}

	// A shape without its own Palette relies on one of two implicit index
	// spaces, per spec.md §4.5's three compatibility modes: the file's
	// standalone artist palette (SINGLE mode), or the root shape's embedded
	// palette shared by reference (MULTI mode). Either way, whichever
	// palette's canonical order gets written is the remap every such shape's
	// blocks must also go through, or they'll point at the wrong colors
	// after a round trip.
	var fallbackMapping []int
	if artistPalette != nil {
		payload, mapping, err := palette.Encode(artistPalette)
		if err != nil {
			return nil, fmt.Errorf("scene: encode artist palette: %w", err)
		}
		if err := chunkio.WriteFrame(sink, chunkio.Palette, payload, true); err != nil {
			return nil, fmt.Errorf("scene: write artist palette: %w", err)
		}
		fallbackMapping = mapping
	}

	var rootPalette *palette.Palette
	if root != nil {
		rootPalette = root.Palette
	}
	if rootPalette != nil {
		// The root embeds its palette, so a load runs in MULTI mode and every
		// shape without a palette of its own reads through the root's.
		_, mapping, err := palette.Encode(rootPalette)
		if err != nil {
			return nil, fmt.Errorf("scene: encode root palette: %w", err)
		}
		fallbackMapping = mapping
	}

	nextID := uint16(1)
	if root != nil {
		if err := writeShapeTree(sink, root, 0, &nextID, rootPalette, fallbackMapping); err != nil {
			return nil, err
		}
	}

	sink.PatchU32(totalSizePos, uint32(sink.Len()-regionStart))
	return sink.Bytes(), nil
}

// writeShapeTree walks s's subtree in pre-order, assigning shapeIds as it
// goes. sharedPalette is the root's Palette pointer (nil if the root has
// none): any descendant that shares it by reference gets the same remap
// applied to its blocks without re-embedding a duplicate palette chunk.
// fallbackMapping is the remap for shapes with no palette of their own: the
// root palette's when the root has one (MULTI mode), otherwise the artist
// palette's (SINGLE mode).
func writeShapeTree(sink *bytestream.Sink, s *shape.Shape, parentID uint16, nextID *uint16, sharedPalette *palette.Palette, fallbackMapping []int) error {
	shapeID := *nextID
	*nextID++
	s.ShapeID = shapeID
	s.ParentID = parentID

	var blockMapping []int
	var embedPalette bool

	switch {
	case parentID != 0 && sharedPalette != nil && s.Palette == sharedPalette:
		// A non-root shape sharing the root's palette object: the root
		// already embeds it, so this one only needs the same remap.
		_, mapping, err := palette.Encode(s.Palette)
		if err != nil {
			return fmt.Errorf("scene: encode shape %d shared palette: %w", shapeID, err)
		}
		blockMapping = mapping

	case s.Palette != nil:
		embedPalette = true
		blockMapping = nil // shape.Encode recomputes this from sh.Palette itself.

	default:
		blockMapping = fallbackMapping
	}

	envelope, err := shape.Encode(s, blockMapping, embedPalette)
	if err != nil {
		return fmt.Errorf("scene: encode shape %d: %w", shapeID, err)
	}
	if err := chunkio.WriteFrame(sink, chunkio.Shape, envelope, false); err != nil {
		return fmt.Errorf("scene: write shape %d: %w", shapeID, err)
	}

	for _, child := range s.Children {
		if err := writeShapeTree(sink, child, shapeID, nextID, sharedPalette, fallbackMapping); err != nil {
			return err
		}
	}
	return nil
}
