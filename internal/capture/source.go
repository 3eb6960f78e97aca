// Package capture drives the timed multi-shot photobooth sequence over a
// live frame source.
package capture

import (
	"context"
	"image"
	"time"
)

// Facing identifies which camera feeds the source. Front-facing frames are
// mirrored horizontally on capture, matching what the user saw in the
// preview.
type Facing int

const (
	FacingFront Facing = iota
	FacingBack
)

// Frame is one live video frame.
type Frame struct {
	Seq       uint64
	Timestamp time.Time
	Pixels    image.Image
}

// FrameSource supplies live frames. Implementations must guarantee:
//   - Start returns immediately; frames arrive asynchronously
//   - the channel stays open until Stop
//   - Stop is idempotent
type FrameSource interface {
	Start(ctx context.Context) (<-chan Frame, error)
	Stop() error
	Facing() Facing
}
