package capture

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"log"
	"time"

	"github.com/nfnt/resize"

	"photobooth-app/internal/models"
)

// EventSink receives capture progress events. The websocket hub implements
// this to push countdown and flash cues to the browser.
type EventSink interface {
	CountdownTick(shot, remaining int)
	Flash(shot int)
	ShotCaptured(shot int, photo *models.Photo)
	SequenceComplete(photos []*models.Photo)
	CaptureError(err error)
}

// Engine runs the fixed 3-shot countdown sequence. Ordering between shots is
// enforced by the timer chain alone, never by waiting on camera readiness.
type Engine struct {
	source    FrameSource
	sink      EventSink
	cadence   time.Duration
	shotPause time.Duration
	nextID    int
}

// NewEngine wires an engine to a frame source and event sink.
func NewEngine(source FrameSource, sink EventSink) *Engine {
	return &Engine{
		source:    source,
		sink:      sink,
		cadence:   time.Second,
		shotPause: time.Second,
	}
}

// Run executes the full sequence: for each of the 3 shots a 3-2-1 countdown
// at 1-second cadence, then a capture with a flash cue. It returns exactly 3
// photos in order, or an error with zero photos retained; the buffer is
// never partially populated on failure.
func (e *Engine) Run(ctx context.Context) ([]*models.Photo, error) {
	frames, err := e.source.Start(ctx)
	if err != nil {
		err = fmt.Errorf("failed to start camera: %w", err)
		e.sink.CaptureError(err)
		return nil, err
	}
	defer e.source.Stop()

	// Drain frames continuously so captures always see the latest one.
	latest := make(chan Frame, 1)
	go func() {
		for f := range frames {
			select {
			case <-latest:
			default:
			}
			latest <- f
		}
	}()

	mirror := e.source.Facing() == FacingFront
	photos := make([]*models.Photo, 0, models.StripPhotoCount)

	for shot := 0; shot < models.StripPhotoCount; shot++ {
		if err := e.countdown(ctx, shot); err != nil {
			e.sink.CaptureError(err)
			return nil, err
		}

		frame, err := e.grabFrame(ctx, latest)
		if err != nil {
			err = fmt.Errorf("camera stream stalled on shot %d: %w", shot+1, err)
			e.sink.CaptureError(err)
			return nil, err
		}

		e.sink.Flash(shot)
		photo := e.rasterize(frame, mirror)
		photos = append(photos, photo)
		e.sink.ShotCaptured(shot, photo)
		log.Printf("Captured shot %d/%d (frame seq %d)", shot+1, models.StripPhotoCount, frame.Seq)

		if shot < models.StripPhotoCount-1 {
			if err := sleep(ctx, e.shotPause); err != nil {
				e.sink.CaptureError(err)
				return nil, err
			}
		}
	}

	e.sink.SequenceComplete(photos)
	return photos, nil
}

func (e *Engine) countdown(ctx context.Context, shot int) error {
	for remaining := 3; remaining > 0; remaining-- {
		e.sink.CountdownTick(shot, remaining)
		if err := sleep(ctx, e.cadence); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) grabFrame(ctx context.Context, latest <-chan Frame) (Frame, error) {
	select {
	case f := <-latest:
		return f, nil
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	}
}

// rasterize center-crops the frame to the target aspect ratio (never
// stretching), mirrors it for the front camera, and scales it to the frame
// buffer size.
func (e *Engine) rasterize(frame Frame, mirror bool) *models.Photo {
	cropped := CenterCrop(frame.Pixels, models.PhotoWidth, models.PhotoHeight)
	if mirror {
		cropped = mirrorHorizontal(cropped)
	}
	scaled := resize.Resize(models.PhotoWidth, models.PhotoHeight, cropped, resize.Lanczos3)

	id := fmt.Sprintf("photo-%d", e.nextID)
	e.nextID++
	return &models.Photo{ID: id, Pixels: scaled}
}

// CenterCrop cuts the largest centered region of img matching the target
// aspect ratio. Sources already at the target aspect pass through unchanged.
func CenterCrop(img image.Image, targetW, targetH int) image.Image {
	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()

	srcAspect := float64(srcW) / float64(srcH)
	targetAspect := float64(targetW) / float64(targetH)

	cropW, cropH := srcW, srcH
	if srcAspect > targetAspect {
		cropW = int(float64(srcH)*targetAspect + 0.5)
	} else if srcAspect < targetAspect {
		cropH = int(float64(srcW)/targetAspect + 0.5)
	}

	x0 := b.Min.X + (srcW-cropW)/2
	y0 := b.Min.Y + (srcH-cropH)/2

	dst := image.NewRGBA(image.Rect(0, 0, cropW, cropH))
	draw.Draw(dst, dst.Bounds(), img, image.Pt(x0, y0), draw.Src)
	return dst
}

func mirrorHorizontal(img image.Image) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dst.Set(b.Dx()-1-x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
