package capture

import (
	"context"
	"image"
	"image/color"
	"sync"
	"time"
)

// SyntheticSource generates moving test-pattern frames. It stands in for
// a real camera on machines without one, so the full countdown sequence
// can run end to end.
type SyntheticSource struct {
	facing Facing
	rate   time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewSyntheticSource(facing Facing) *SyntheticSource {
	return &SyntheticSource{facing: facing, rate: time.Second / 15}
}

func (s *SyntheticSource) Start(ctx context.Context) (<-chan Frame, error) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	frames := make(chan Frame)
	go func() {
		defer close(frames)
		ticker := time.NewTicker(s.rate)
		defer ticker.Stop()
		var seq uint64
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				seq++
				frame := Frame{Seq: seq, Timestamp: now, Pixels: testPattern(seq)}
				select {
				case frames <- frame:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return frames, nil
}

func (s *SyntheticSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return nil
}

func (s *SyntheticSource) Facing() Facing { return s.facing }

// testPattern paints a diagonal gradient that shifts with the sequence
// number, so consecutive shots are visibly different.
func testPattern(seq uint64) image.Image {
	const w, h = 640, 480
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	shift := uint8(seq * 7)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x/4) + shift,
				G: uint8(y/4) + shift,
				B: 0x90,
				A: 0xff,
			})
		}
	}
	return img
}
