package effects

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photobooth-app/internal/models"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x * 30),
				G: uint8(y * 40),
				B: uint8((x + y) * 15),
				A: 0xff,
			})
		}
	}
	return img
}

func TestApplyRawIsIdentity(t *testing.T) {
	src := testImage()
	got := Apply(src, models.FilterRaw)
	assert.Equal(t, src.Pix, got.Pix)

	// Output is a copy, not the same backing array.
	got.Pix[0] ^= 0xff
	assert.NotEqual(t, src.Pix[0], got.Pix[0])
}

func TestApplyDeterministic(t *testing.T) {
	for _, f := range models.Filters {
		f := f
		t.Run(string(f), func(t *testing.T) {
			a := Apply(testImage(), f)
			b := Apply(testImage(), f)
			assert.Equal(t, a.Pix, b.Pix, "same input and filter must give byte-identical output")
		})
	}
}

func TestSepiaMatrix(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 100, G: 150, B: 200, A: 0xff})

	got := Apply(img, models.FilterSepia)
	c := got.RGBAAt(0, 0)

	// 100*0.393 + 150*0.769 + 200*0.189 = 192.45 and so on, rounded.
	require.Equal(t, uint8(192), c.R)
	require.Equal(t, uint8(171), c.G)
	require.Equal(t, uint8(134), c.B)
	require.Equal(t, uint8(0xff), c.A)
}

func TestSepiaClampsAtWhite(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 0xff})

	c := Apply(img, models.FilterSepia).RGBAAt(0, 0)
	assert.Equal(t, uint8(255), c.R)
	assert.True(t, c.G <= 255 && c.B <= 255)
}

func TestGrayscaleCollapsesChannels(t *testing.T) {
	got := Apply(testImage(), models.FilterBlackAndWhite)
	for i := 0; i < len(got.Pix); i += 4 {
		assert.Equal(t, got.Pix[i], got.Pix[i+1])
		assert.Equal(t, got.Pix[i], got.Pix[i+2])
	}
}

func TestVintageVariantsDiffer(t *testing.T) {
	v1 := Apply(testImage(), models.FilterVintage1)
	v2 := Apply(testImage(), models.FilterVintage2)
	raw := Apply(testImage(), models.FilterRaw)

	assert.NotEqual(t, raw.Pix, v1.Pix)
	assert.NotEqual(t, raw.Pix, v2.Pix)
	assert.NotEqual(t, v1.Pix, v2.Pix)
}

func TestApplyPreservesBounds(t *testing.T) {
	src := testImage()
	got := Apply(src, models.FilterVintage1)
	assert.Equal(t, src.Bounds().Size(), got.Bounds().Size())
}
