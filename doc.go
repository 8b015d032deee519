// Package p3s reads and writes version-6 .3zh voxel scene containers: a
// small fixed header, a run of length-prefixed (optionally zlib-compressed)
// top-level chunks, and — inside each SHAPE chunk — a nested stream of
// uncompressed sub-chunks describing one node of a voxel shape tree.
//
// The package is split by concern under internal/: bytestream (cursor
// readers/writers), chunkio (top-level chunk framing), palette (color
// tables, their wire layouts and the built-in legacy palettes), shape (the
// per-node sub-chunk codec and block grid), scene (header, tree
// orchestration and the three palette-compatibility modes),
// and collab (the accessor interfaces the codecs are written against, kept
// separate from any concrete renderer/physics/editor consumer).
//
// A typical load:
//
//	assets, err := p3s.LoadAssets(r, nil, p3s.FilterAny, p3s.DefaultShapeSettings())
//
// and a typical save:
//
//	buf, err := p3s.SaveShapeToBuffer(root, artistPalette, previewPNG)
package p3s
