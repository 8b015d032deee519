// internal/shape/lighting.go
// Purpose: the fixed-width baked vertex lighting record stored one-per-block
// in the SHAPE_BAKED_LIGHTING sub-chunk (spec.md §4.4, sub-id 7).

package shape

import "github.com/conwinds/p3s/internal/bytestream"

// LightRecordSize is sizeof(LightRecord) on the wire: three baked color
// channels plus one ambient-occlusion/sunlight channel, one byte each.
const LightRecordSize = 4

// LightRecord is one baked lighting sample for a single block cell.
type LightRecord struct {
	Red, Green, Blue, Ambient uint8
}

// decodeLighting reads len(payload)/LightRecordSize records. The caller is
// responsible for checking payload's length against w*h*d*LightRecordSize
// first — a mismatch is a dropped, logged condition per spec.md §7, not an
// error this function raises itself.
func decodeLighting(payload []byte) []LightRecord {
	n := len(payload) / LightRecordSize
	out := make([]LightRecord, n)
	for i := 0; i < n; i++ {
		off := i * LightRecordSize
		out[i] = LightRecord{
			Red:     payload[off],
			Green:   payload[off+1],
			Blue:    payload[off+2],
			Ambient: payload[off+3],
		}
	}
	return out
}

func encodeLighting(records []LightRecord) []byte {
	sink := bytestream.NewSink(len(records) * LightRecordSize)
	for _, r := range records {
		sink.WriteU8(r.Red)
		sink.WriteU8(r.Green)
		sink.WriteU8(r.Blue)
		sink.WriteU8(r.Ambient)
	}
	return sink.Bytes()
}
