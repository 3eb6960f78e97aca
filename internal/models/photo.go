package models

import "image"

// Target frame dimensions. Every captured or imported photo is rasterized
// to this size before compositing, so the strip layout never depends on the
// source resolution.
const (
	PhotoWidth  = 382
	PhotoHeight = 229 // PhotoWidth * 0.6
)

// StripPhotoCount is the number of photos that make one photostrip.
const StripPhotoCount = 3

// Photo is one frame buffer ready for compositing. Pixels hold raw
// (unfiltered) image data; filters are applied at render time only.
type Photo struct {
	ID     string
	Pixels image.Image
}

// TargetBounds returns the frame rectangle every photo is rasterized into.
func TargetBounds() image.Rectangle {
	return image.Rect(0, 0, PhotoWidth, PhotoHeight)
}
