// Package crop turns arbitrary uploaded images into frame buffers. The user
// positions a fixed-aspect window over the source; the window's aspect ratio
// matches the capture engine's target exactly, so downstream compositing is
// uniform regardless of where a photo came from.
package crop

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/nfnt/resize"

	"photobooth-app/internal/models"
)

// ErrSourceTooSmall is returned for images smaller than a minimum sensible
// crop window.
var ErrSourceTooSmall = errors.New("source image too small to crop")

const minWindowWidth = 40

// Window is a draggable fixed-aspect selection over one source image.
type Window struct {
	source image.Image
	rect   image.Rectangle
}

// NewWindow creates the largest centered crop window the source admits at
// the target aspect ratio.
func NewWindow(source image.Image) (*Window, error) {
	b := source.Bounds()
	if b.Dx() < minWindowWidth || b.Dy() < minWindowWidth*models.PhotoHeight/models.PhotoWidth {
		return nil, fmt.Errorf("%w: %dx%d", ErrSourceTooSmall, b.Dx(), b.Dy())
	}

	aspect := float64(models.PhotoWidth) / float64(models.PhotoHeight)
	w, h := b.Dx(), b.Dy()
	if float64(w)/float64(h) > aspect {
		w = int(float64(h)*aspect + 0.5)
	} else {
		h = int(float64(w)/aspect + 0.5)
	}

	x0 := b.Min.X + (b.Dx()-w)/2
	y0 := b.Min.Y + (b.Dy()-h)/2
	return &Window{source: source, rect: image.Rect(x0, y0, x0+w, y0+h)}, nil
}

// Rect returns the current selection in source coordinates.
func (w *Window) Rect() image.Rectangle { return w.rect }

// Drag moves the window by (dx, dy), clamped so it never leaves the source
// bounds.
func (w *Window) Drag(dx, dy int) {
	w.rect = clampRect(w.rect.Add(image.Pt(dx, dy)), w.source.Bounds())
}

// SetWidth resizes the window to the given width, preserving the aspect
// ratio and keeping the selection inside the source. The window center is
// held where possible.
func (w *Window) SetWidth(width int) {
	b := w.source.Bounds()
	if width < minWindowWidth {
		width = minWindowWidth
	}
	if width > b.Dx() {
		width = b.Dx()
	}
	height := int(float64(width)*float64(models.PhotoHeight)/float64(models.PhotoWidth) + 0.5)
	if height > b.Dy() {
		height = b.Dy()
		width = int(float64(height) * float64(models.PhotoWidth) / float64(models.PhotoHeight))
	}

	cx := w.rect.Min.X + w.rect.Dx()/2
	cy := w.rect.Min.Y + w.rect.Dy()/2
	r := image.Rect(cx-width/2, cy-height/2, cx-width/2+width, cy-height/2+height)
	w.rect = clampRect(r, b)
}

// Rasterize cuts the current selection and scales it into the standard
// frame buffer size.
func (w *Window) Rasterize(id string) *models.Photo {
	cut := image.NewRGBA(image.Rect(0, 0, w.rect.Dx(), w.rect.Dy()))
	draw.Draw(cut, cut.Bounds(), w.source, w.rect.Min, draw.Src)

	scaled := resize.Resize(models.PhotoWidth, models.PhotoHeight, cut, resize.Lanczos3)
	return &models.Photo{ID: id, Pixels: scaled}
}

// clampRect shifts r so it lies within bounds; r is assumed no larger than
// bounds in either dimension.
func clampRect(r, bounds image.Rectangle) image.Rectangle {
	if r.Min.X < bounds.Min.X {
		r = r.Add(image.Pt(bounds.Min.X-r.Min.X, 0))
	}
	if r.Min.Y < bounds.Min.Y {
		r = r.Add(image.Pt(0, bounds.Min.Y-r.Min.Y))
	}
	if r.Max.X > bounds.Max.X {
		r = r.Add(image.Pt(bounds.Max.X-r.Max.X, 0))
	}
	if r.Max.Y > bounds.Max.Y {
		r = r.Add(image.Pt(0, bounds.Max.Y-r.Max.Y))
	}
	return r
}
