package strip

import (
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"golang.org/x/image/math/fixed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photobooth-app/internal/models"
)

func solidPhoto(id string, w, h int, c color.RGBA) *models.Photo {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return &models.Photo{ID: id, Pixels: img}
}

func threePhotos(w, h int) []*models.Photo {
	return []*models.Photo{
		solidPhoto("a", w, h, color.RGBA{200, 60, 60, 255}),
		solidPhoto("b", w, h, color.RGBA{60, 200, 60, 255}),
		solidPhoto("c", w, h, color.RGBA{60, 60, 200, 255}),
	}
}

var renderTime = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func TestRenderCanvasDimensionsConstant(t *testing.T) {
	for _, size := range []struct{ w, h int }{
		{382, 229}, {1280, 720}, {720, 1280}, {50, 50},
	} {
		got, err := Render(threePhotos(size.w, size.h), models.FilterRaw, models.FrameClassic,
			models.CaptionStyle{}, renderTime)
		require.NoError(t, err)
		assert.Equal(t, Width, got.Bounds().Dx())
		assert.Equal(t, Height, got.Bounds().Dy())
	}
}

func TestRenderRequiresThreePhotos(t *testing.T) {
	_, err := Render(threePhotos(100, 60)[:2], models.FilterRaw, models.FrameNone,
		models.CaptionStyle{}, renderTime)
	assert.ErrorIs(t, err, ErrIncompleteStrip)

	photos := threePhotos(100, 60)
	photos[1] = nil
	_, err = Render(photos, models.FilterRaw, models.FrameNone, models.CaptionStyle{}, renderTime)
	assert.ErrorIs(t, err, ErrIncompleteStrip)

	photos = threePhotos(100, 60)
	photos[2] = &models.Photo{ID: "broken"}
	_, err = Render(photos, models.FilterRaw, models.FrameNone, models.CaptionStyle{}, renderTime)
	assert.ErrorIs(t, err, ErrIncompleteStrip)
}

func TestRenderDeterministicForFixedTime(t *testing.T) {
	caption := models.CaptionStyle{Text: "Family Day", Font: models.FontVintage, TextColor: models.DefaultTextColor}
	a, err := Render(threePhotos(382, 229), models.FilterSepia, models.FrameFilmstrip, caption, renderTime)
	require.NoError(t, err)
	b, err := Render(threePhotos(382, 229), models.FilterSepia, models.FrameFilmstrip, caption, renderTime)
	require.NoError(t, err)
	assert.Equal(t, a.Pix, b.Pix)
}

// A solid-color photo of any aspect ratio must stay solid after placement:
// anisotropic scaling would be invisible here, but letterboxing proves the
// aspect ratio survived, so we check the drawn region's extents instead.
func TestRenderNeverDistortsAspectRatio(t *testing.T) {
	// Very wide source: 4:1 into a 382:229 slot must letterbox vertically.
	wide := []*models.Photo{
		solidPhoto("a", 400, 100, color.RGBA{255, 0, 0, 255}),
		solidPhoto("b", 400, 100, color.RGBA{255, 0, 0, 255}),
		solidPhoto("c", 400, 100, color.RGBA{255, 0, 0, 255}),
	}
	got, err := Render(wide, models.FilterRaw, models.FrameNone, models.CaptionStyle{}, renderTime)
	require.NoError(t, err)

	// Count red rows in the first slot column band; a 4:1 image drawn
	// undistorted at width 378 is ~95 rows tall, far less than the slot's
	// 225 rows.
	redRows := 0
	for y := 0; y < Height-captionAreaH; y++ {
		c := got.RGBAAt(Width/2, y)
		if c.R > 200 && c.G < 60 && c.B < 60 {
			redRows++
		}
	}
	perSlot := redRows / 3
	assert.InDelta(t, 95, perSlot, 3, "wide photo must letterbox, not stretch to fill the slot")
}

func TestRenderFrameBorderDrawn(t *testing.T) {
	got, err := Render(threePhotos(382, 229), models.FilterRaw, models.FrameClassic,
		models.CaptionStyle{}, renderTime)
	require.NoError(t, err)

	style := models.FrameClassic.Style()
	marginX := (Width - models.PhotoWidth) / 2
	// A pixel inside the left border band of the first slot.
	c := got.RGBAAt(marginX-style.BorderWidth/2, 120)
	assert.Equal(t, style.BorderColor, c)
}

func TestRenderFilmstripPunchHoles(t *testing.T) {
	got, err := Render(threePhotos(382, 229), models.FilterRaw, models.FrameFilmstrip,
		models.CaptionStyle{}, renderTime)
	require.NoError(t, err)

	// Somewhere in the first slot's border there must be pure black hole
	// pixels; the border itself is #222222.
	style := models.FrameFilmstrip.Style()
	marginX := (Width - models.PhotoWidth) / 2
	holeX := marginX - style.BorderWidth + holeMargin + holeRadius

	foundBlack := false
	for y := 0; y < Height; y++ {
		c := got.RGBAAt(holeX, y)
		if c.R == 0 && c.G == 0 && c.B == 0 {
			foundBlack = true
			break
		}
	}
	assert.True(t, foundBlack, "filmstrip frame must have punch holes")
}

func TestRenderDateStampAlwaysPresent(t *testing.T) {
	noCaption, err := Render(threePhotos(382, 229), models.FilterRaw, models.FrameNone,
		models.CaptionStyle{}, renderTime)
	require.NoError(t, err)

	// The date band must contain brown text pixels even without a caption.
	found := false
	for x := 0; x < Width; x++ {
		for y := dateBaseline - 20; y <= dateBaseline+5; y++ {
			if noCaption.RGBAAt(x, y) == dateColor {
				found = true
			}
		}
	}
	assert.True(t, found, "date stamp must always be drawn")
}

func TestPlaceholderDistinguishable(t *testing.T) {
	p := Placeholder()
	assert.Equal(t, Width, p.Bounds().Dx())
	assert.Equal(t, Height, p.Bounds().Dy())

	found := false
	for x := 0; x < Width && !found; x++ {
		for y := 0; y < Height && !found; y++ {
			if p.RGBAAt(x, y) == errorColor {
				found = true
			}
		}
	}
	assert.True(t, found, "placeholder must carry the error message")
}

func TestEncodeJPEG(t *testing.T) {
	got, err := Render(threePhotos(382, 229), models.FilterRaw, models.FrameNone,
		models.CaptionStyle{}, renderTime)
	require.NoError(t, err)

	data, err := EncodeJPEG(got)
	require.NoError(t, err)
	assert.True(t, len(data) > 0)
	// JPEG SOI marker.
	assert.Equal(t, []byte{0xff, 0xd8}, data[:2])
}

func TestWrapTextSingleLineWhenFits(t *testing.T) {
	face := captionFace(models.FontModern)
	defer face.Close()

	lines := wrapText(face, "Family Day", fixed.I(models.PhotoWidth*9/10))
	require.Len(t, lines, 1)
	assert.Equal(t, "Family Day", lines[0])
}

func TestWrapTextBreaksAtWordBoundaries(t *testing.T) {
	face := captionFace(models.FontModern)
	defer face.Close()

	text := "a genuinely long caption that cannot possibly fit on one line"
	lines := wrapText(face, text, fixed.I(models.PhotoWidth*9/10))
	require.Greater(t, len(lines), 1)

	// Re-joining the lines reproduces the words in order; no word was
	// split mid-word.
	assert.Equal(t, strings.Fields(text), strings.Fields(strings.Join(lines, " ")))
	for _, line := range lines {
		for _, w := range strings.Fields(line) {
			assert.Contains(t, strings.Fields(text), w)
		}
	}
}

func TestWrapTextNarrowWidthOneWordPerLine(t *testing.T) {
	face := captionFace(models.FontModern)
	defer face.Close()

	lines := wrapText(face, "one two three", fixed.I(10))
	// Width 10px fits nothing, but breaks must still happen only between
	// words, leaving one word per line.
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"one", "two", "three"}, lines)
}
