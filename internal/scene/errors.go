// internal/scene/errors.go
// Purpose: the scene-level error sentinels from spec.md §7's error-kind
// table that aren't already owned by a lower package (chunkio owns
// BadCompression, shape owns BadChunk's per-envelope variant).

package scene

import "fmt"

var (
	ErrBadChunk          = fmt.Errorf("scene: bad chunk")
	ErrAllocationFailed  = fmt.Errorf("scene: allocation failed")
	ErrEmptyShapeEnvelope = fmt.Errorf("scene: shape envelope decompressed to zero bytes")
)
