package booth

import (
	"image"
	"sync"
	"sync/atomic"
	"time"

	"photobooth-app/internal/models"
	"photobooth-app/internal/strip"
)

// Renderer re-composites the photostrip whenever filter, frame, or
// caption options change. Each request gets a generation number; a
// render that finishes after a newer one started is discarded, so the
// latest options always win.
type Renderer struct {
	gen    atomic.Uint64
	mu     sync.Mutex
	latest *image.RGBA
	now    func() time.Time
}

func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

// Render composites the strip for the given options. It returns the
// image and whether this result is still the freshest; stale results
// are not retained.
func (r *Renderer) Render(photos []*models.Photo, filter models.FilterType, frame models.FrameType, caption models.CaptionStyle) (*image.RGBA, bool, error) {
	gen := r.gen.Add(1)

	img, err := strip.Render(photos, filter, frame, caption, r.now())
	if err != nil {
		return nil, false, err
	}

	return img, r.commit(gen, img), nil
}

// commit publishes img as the latest render only if gen is still the
// newest generation. The check and the assignment share the mutex so a
// stale render can never land after a newer one committed.
func (r *Renderer) commit(gen uint64, img *image.RGBA) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen.Load() != gen {
		return false
	}
	r.latest = img
	return true
}

// Latest returns the most recent completed render, or nil.
func (r *Renderer) Latest() *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest
}
