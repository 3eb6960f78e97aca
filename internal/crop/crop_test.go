package crop

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photobooth-app/internal/models"
)

func source(w, h int) image.Image {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func aspect(r image.Rectangle) float64 {
	return float64(r.Dx()) / float64(r.Dy())
}

var targetAspect = float64(models.PhotoWidth) / float64(models.PhotoHeight)

func TestNewWindowMatchesCaptureAspect(t *testing.T) {
	for _, size := range []struct{ w, h int }{
		{800, 600}, {600, 800}, {1920, 1080}, {500, 500},
	} {
		w, err := NewWindow(source(size.w, size.h))
		require.NoError(t, err)
		assert.InDelta(t, targetAspect, aspect(w.Rect()), 0.02,
			"crop window aspect must match the capture target for %dx%d", size.w, size.h)
	}
}

func TestNewWindowCentered(t *testing.T) {
	w, err := NewWindow(source(1000, 600))
	require.NoError(t, err)
	r := w.Rect()
	leftGap := r.Min.X
	rightGap := 1000 - r.Max.X
	assert.InDelta(t, leftGap, rightGap, 1)
}

func TestNewWindowRejectsTinySource(t *testing.T) {
	_, err := NewWindow(source(10, 10))
	assert.ErrorIs(t, err, ErrSourceTooSmall)
}

func TestDragClampedToBounds(t *testing.T) {
	w, err := NewWindow(source(1000, 600))
	require.NoError(t, err)

	w.Drag(-5000, -5000)
	r := w.Rect()
	assert.Equal(t, 0, r.Min.X)
	assert.Equal(t, 0, r.Min.Y)

	w.Drag(9999, 9999)
	r = w.Rect()
	assert.Equal(t, 1000, r.Max.X)
	assert.Equal(t, 600, r.Max.Y)

	assert.InDelta(t, targetAspect, aspect(r), 0.02, "clamping must not change the aspect")
}

func TestSetWidthKeepsAspectAndBounds(t *testing.T) {
	w, err := NewWindow(source(1000, 600))
	require.NoError(t, err)

	w.SetWidth(200)
	assert.Equal(t, 200, w.Rect().Dx())
	assert.InDelta(t, targetAspect, aspect(w.Rect()), 0.02)

	w.SetWidth(99999)
	r := w.Rect()
	assert.True(t, r.In(image.Rect(0, 0, 1000, 600)))
	assert.InDelta(t, targetAspect, aspect(r), 0.02)
}

func TestRasterizeProducesStandardFrame(t *testing.T) {
	w, err := NewWindow(source(1000, 600))
	require.NoError(t, err)

	photo := w.Rasterize("upload-1")
	assert.Equal(t, "upload-1", photo.ID)
	assert.Equal(t, models.PhotoWidth, photo.Pixels.Bounds().Dx())
	assert.Equal(t, models.PhotoHeight, photo.Pixels.Bounds().Dy())
}
