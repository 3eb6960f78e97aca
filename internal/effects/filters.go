// Package effects applies the photobooth palette transforms. Every filter is
// a pure, deterministic per-pixel function; the same code path serves live
// previews and final composites so a frame is never filtered twice.
package effects

import (
	"image"
	"image/draw"
	"math"

	"photobooth-app/internal/models"
)

// Apply returns a filtered copy of img. FilterRaw is the identity transform
// (a fresh, pixel-equal copy). Unknown filters fall back to raw.
func Apply(img image.Image, filter models.FilterType) *image.RGBA {
	dst := toRGBA(img)
	switch filter {
	case models.FilterSepia:
		eachPixel(dst, sepia(1.0))
	case models.FilterBlackAndWhite:
		eachPixel(dst, grayscale)
	case models.FilterVintage1:
		// Warm vintage: half-strength sepia, a touch more contrast,
		// slightly darker and desaturated.
		eachPixel(dst, sepia(0.5))
		eachPixel(dst, contrast(1.1))
		eachPixel(dst, brightness(0.9))
		eachPixel(dst, saturation(0.8))
	case models.FilterVintage2:
		// Cool vintage: light sepia, hue shifted toward red, punchier
		// saturation.
		eachPixel(dst, sepia(0.2))
		eachPixel(dst, hueRotate(-20))
		eachPixel(dst, saturation(1.3))
	}
	return dst
}

func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

func eachPixel(img *image.RGBA, fn func(r, g, b float64) (float64, float64, float64)) {
	for i := 0; i < len(img.Pix); i += 4 {
		r, g, b := float64(img.Pix[i]), float64(img.Pix[i+1]), float64(img.Pix[i+2])
		nr, ng, nb := fn(r, g, b)
		img.Pix[i] = clamp(nr)
		img.Pix[i+1] = clamp(ng)
		img.Pix[i+2] = clamp(nb)
	}
}

func clamp(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// sepia returns the standard sepia matrix blended with the identity at the
// given strength (1.0 = full sepia).
func sepia(strength float64) func(r, g, b float64) (float64, float64, float64) {
	return func(r, g, b float64) (float64, float64, float64) {
		sr := r*0.393 + g*0.769 + b*0.189
		sg := r*0.349 + g*0.686 + b*0.168
		sb := r*0.272 + g*0.534 + b*0.131
		return r + (sr-r)*strength, g + (sg-g)*strength, b + (sb-b)*strength
	}
}

func grayscale(r, g, b float64) (float64, float64, float64) {
	l := r*0.299 + g*0.587 + b*0.114
	return l, l, l
}

func contrast(factor float64) func(r, g, b float64) (float64, float64, float64) {
	return func(r, g, b float64) (float64, float64, float64) {
		return (r-128)*factor + 128, (g-128)*factor + 128, (b-128)*factor + 128
	}
}

func brightness(factor float64) func(r, g, b float64) (float64, float64, float64) {
	return func(r, g, b float64) (float64, float64, float64) {
		return r * factor, g * factor, b * factor
	}
}

func saturation(factor float64) func(r, g, b float64) (float64, float64, float64) {
	return func(r, g, b float64) (float64, float64, float64) {
		l := r*0.299 + g*0.587 + b*0.114
		return l + (r-l)*factor, l + (g-l)*factor, l + (b-l)*factor
	}
}

// hueRotate applies the SVG/CSS hue-rotation matrix for the given angle in
// degrees.
func hueRotate(degrees float64) func(r, g, b float64) (float64, float64, float64) {
	rad := degrees * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	m := [9]float64{
		0.213 + cos*0.787 - sin*0.213, 0.715 - cos*0.715 - sin*0.715, 0.072 - cos*0.072 + sin*0.928,
		0.213 - cos*0.213 + sin*0.143, 0.715 + cos*0.285 + sin*0.140, 0.072 - cos*0.072 - sin*0.283,
		0.213 - cos*0.213 - sin*0.787, 0.715 - cos*0.715 + sin*0.715, 0.072 + cos*0.928 + sin*0.072,
	}
	return func(r, g, b float64) (float64, float64, float64) {
		return r*m[0] + g*m[1] + b*m[2],
			r*m[3] + g*m[4] + b*m[5],
			r*m[6] + g*m[7] + b*m[8]
	}
}
