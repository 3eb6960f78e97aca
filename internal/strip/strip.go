// Package strip composites three frame buffers, a frame style, a caption and
// a date stamp into a single photostrip image. Render is a pure function of
// its inputs plus the supplied clock time, which makes golden-image testing
// possible.
package strip

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"time"

	"github.com/nfnt/resize"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"photobooth-app/internal/effects"
	"photobooth-app/internal/models"
)

// Canvas geometry, 9:16 smartphone aspect ratio.
const (
	Width  = 450
	Height = 800

	topMargin       = 30
	captionAreaH    = 110
	innerMargin     = 2
	captionBaseline = Height - 55
	dateBaseline    = Height - 20
	lineHeight      = 26

	holeRadius = 6
	holeMargin = 8
)

var (
	paperColor = color.RGBA{0xf9, 0xf5, 0xe7, 0xff}
	dateColor  = color.RGBA{0x8b, 0x45, 0x13, 0xff}
	errorColor = color.RGBA{0xa5, 0x2a, 0x2a, 0xff}
)

// ErrIncompleteStrip is returned when fewer than 3 loadable photos are given.
var ErrIncompleteStrip = errors.New("photostrip requires exactly 3 photos")

// Render composites the photostrip. The filter applies to photo pixels only,
// never to frames, caption or date. Any missing photo aborts the render; the
// caller should fall back to Placeholder instead of showing partial output.
func Render(photos []*models.Photo, filter models.FilterType, frame models.FrameType, caption models.CaptionStyle, now time.Time) (*image.RGBA, error) {
	if len(photos) != models.StripPhotoCount {
		return nil, fmt.Errorf("%w: got %d", ErrIncompleteStrip, len(photos))
	}
	for i, p := range photos {
		if p == nil || p.Pixels == nil {
			return nil, fmt.Errorf("%w: photo %d failed to load", ErrIncompleteStrip, i)
		}
	}

	canvas := image.NewRGBA(image.Rect(0, 0, Width, Height))
	fillRect(canvas, canvas.Bounds(), paperColor)

	// Slot layout: three equal slots above the caption band, gaps split
	// evenly (top, between photos, before the band). The gap can come out
	// slightly negative, matching the reference layout.
	photoW, photoH := models.PhotoWidth, models.PhotoHeight
	marginX := (Width - photoW) / 2
	photoArea := float64(Height - captionAreaH - topMargin)
	gap := (photoArea - float64(3*photoH)) / 4

	style := frame.Style()
	for i := 0; i < models.StripPhotoCount; i++ {
		y := topMargin + int(gap+0.5) + i*(photoH+int(gap+0.5))
		slot := image.Rect(marginX, y, marginX+photoW, y+photoH)

		if frame != models.FrameNone {
			border := slot.Inset(-style.BorderWidth)
			fillRect(canvas, border, style.BorderColor)
			if style.Holes {
				drawPunchHoles(canvas, slot, style.BorderWidth)
			}
		}

		drawPhotoInSlot(canvas, photos[i].Pixels, slot, filter)
	}

	// Filters must never touch text legibility; photos were filtered
	// individually above, the canvas itself carries no filter state.
	if caption.Text != "" {
		drawCaption(canvas, caption)
	}
	drawDateStamp(canvas, now)

	return canvas, nil
}

// Placeholder renders the error composite shown when one of the frame
// buffers cannot be loaded. It is clearly distinguishable from any real
// photostrip and replaces, never accompanies, partial output.
func Placeholder() *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, Width, Height))
	fillRect(canvas, canvas.Bounds(), paperColor)

	bold := newFace(fontBold, 24)
	defer bold.Close()
	drawCenteredString(canvas, bold, "Error loading images", Width/2, Height/2-20, errorColor)

	italic := newFace(fontItalic, 18)
	defer italic.Close()
	drawCenteredString(canvas, italic, "Please try again", Width/2, Height/2+20, errorColor)

	return canvas
}

// EncodeJPEG serializes a composite for storage or download.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to encode photostrip: %w", err)
	}
	return buf.Bytes(), nil
}

func drawPhotoInSlot(canvas *image.RGBA, img image.Image, slot image.Rectangle, filter models.FilterType) {
	filtered := effects.Apply(img, filter)

	effW := slot.Dx() - 2*innerMargin
	effH := slot.Dy() - 2*innerMargin
	imgW, imgH := filtered.Bounds().Dx(), filtered.Bounds().Dy()

	// Fit inside the slot without cropping or distortion; letterbox gaps
	// center the image.
	imgAspect := float64(imgW) / float64(imgH)
	slotAspect := float64(effW) / float64(effH)

	var drawW, drawH int
	if imgAspect > slotAspect {
		drawW = effW
		drawH = int(float64(effW)/imgAspect + 0.5)
	} else {
		drawH = effH
		drawW = int(float64(effH)*imgAspect + 0.5)
	}

	var scaled image.Image = filtered
	if drawW != imgW || drawH != imgH {
		scaled = resize.Resize(uint(drawW), uint(drawH), filtered, resize.Lanczos3)
	}

	offsetX := slot.Min.X + innerMargin + (effW-drawW)/2
	offsetY := slot.Min.Y + innerMargin + (effH-drawH)/2
	dst := image.Rect(offsetX, offsetY, offsetX+drawW, offsetY+drawH)
	draw.Draw(canvas, dst, scaled, scaled.Bounds().Min, draw.Src)
}

// drawPunchHoles draws the filmstrip perforations: two per side at 25% and
// 75% of the slot height.
func drawPunchHoles(canvas *image.RGBA, slot image.Rectangle, borderWidth int) {
	leftX := slot.Min.X - borderWidth + holeMargin + holeRadius
	rightX := slot.Max.X + borderWidth - holeMargin - holeRadius
	black := color.RGBA{A: 0xff}

	for _, frac := range []float64{0.25, 0.75} {
		cy := slot.Min.Y + int(float64(slot.Dy())*frac)
		fillCircle(canvas, leftX, cy, holeRadius, black)
		fillCircle(canvas, rightX, cy, holeRadius, black)
	}
}

func drawCaption(canvas *image.RGBA, caption models.CaptionStyle) {
	face := captionFace(caption.Font)
	defer face.Close()

	maxWidth := fixed.I(models.PhotoWidth * 9 / 10)
	lines := wrapText(face, caption.Text, maxWidth)

	for i, line := range lines {
		y := captionBaseline + i*lineHeight
		drawTextPlate(canvas, face, line, Width/2, y)
		drawCenteredString(canvas, face, line, Width/2, y, caption.TextColor)
	}
}

// drawTextPlate lays a translucent paper-toned plate behind a text line so
// the caption stays legible over photo content.
func drawTextPlate(canvas *image.RGBA, face font.Face, line string, cx, baseline int) {
	w := font.MeasureString(face, line).Ceil()
	m := face.Metrics()
	plate := image.Rect(
		cx-w/2-4,
		baseline-m.Ascent.Ceil()-2,
		cx+w/2+4,
		baseline+m.Descent.Ceil()+2,
	)
	plateColor := color.RGBA{0xff, 0xff, 0xff, 0x80}
	draw.Draw(canvas, plate.Intersect(canvas.Bounds()), image.NewUniform(plateColor), image.Point{}, draw.Over)
}

func drawDateStamp(canvas *image.RGBA, now time.Time) {
	face := dateFace()
	defer face.Close()
	drawCenteredString(canvas, face, now.Format("January 2, 2006"), Width/2, dateBaseline, dateColor)
}

func drawCenteredString(canvas *image.RGBA, face font.Face, s string, cx, baseline int, c color.RGBA) {
	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(c),
		Face: face,
	}
	w := d.MeasureString(s)
	d.Dot = fixed.Point26_6{X: fixed.I(cx) - w/2, Y: fixed.I(baseline)}
	d.DrawString(s)
}

func fillRect(canvas *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(canvas, r.Intersect(canvas.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
}

func fillCircle(canvas *image.RGBA, cx, cy, r int, c color.RGBA) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				canvas.SetRGBA(cx+dx, cy+dy, c)
			}
		}
	}
}
