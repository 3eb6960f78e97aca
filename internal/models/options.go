package models

import (
	"fmt"
	"image/color"
)

// FilterType selects a palette transform applied at render time.
type FilterType string

const (
	FilterRaw           FilterType = "raw"
	FilterSepia         FilterType = "sepia"
	FilterBlackAndWhite FilterType = "blackAndWhite"
	FilterVintage1      FilterType = "vintage1"
	FilterVintage2      FilterType = "vintage2"
)

// Filters lists the selectable filter values in display order.
var Filters = []FilterType{FilterRaw, FilterSepia, FilterBlackAndWhite, FilterVintage1, FilterVintage2}

func ParseFilter(s string) (FilterType, error) {
	for _, f := range Filters {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

// FrameType selects a border style for the photo slots.
type FrameType string

const (
	FrameNone      FrameType = "none"
	FrameClassic   FrameType = "classic"
	FramePolaroid  FrameType = "polaroid"
	FrameFilmstrip FrameType = "filmstrip"
	FrameScalloped FrameType = "scalloped"
)

var Frames = []FrameType{FrameNone, FrameClassic, FramePolaroid, FrameFilmstrip, FrameScalloped}

func ParseFrame(s string) (FrameType, error) {
	for _, f := range Frames {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown frame %q", s)
}

// FrameStyle is the concrete border description a FrameType maps to.
type FrameStyle struct {
	BorderWidth int
	BorderColor color.RGBA
	Holes       bool
}

var frameStyles = map[FrameType]FrameStyle{
	FrameClassic:   {BorderWidth: 15, BorderColor: color.RGBA{0xd2, 0xbd, 0x9e, 0xff}},
	FramePolaroid:  {BorderWidth: 15, BorderColor: color.RGBA{0xf5, 0xf5, 0xf0, 0xff}},
	FrameFilmstrip: {BorderWidth: 15, BorderColor: color.RGBA{0x22, 0x22, 0x22, 0xff}, Holes: true},
	FrameScalloped: {BorderWidth: 15, BorderColor: color.RGBA{0xe8, 0xd8, 0xc3, 0xff}},
}

// Style returns the border description for the frame. FrameNone yields the
// zero style (no border drawn).
func (f FrameType) Style() FrameStyle {
	return frameStyles[f]
}

// FontStyle selects the caption typeface.
type FontStyle string

const (
	FontVintage     FontStyle = "vintage"
	FontHandwritten FontStyle = "handwritten"
	FontModern      FontStyle = "modern"
	FontFancy       FontStyle = "fancy"
)

var FontStyles = []FontStyle{FontVintage, FontHandwritten, FontModern, FontFancy}

func ParseFontStyle(s string) (FontStyle, error) {
	for _, f := range FontStyles {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown font style %q", s)
}

// MaxCaptionLen bounds caption text; handlers truncate longer input to
// this length, mirroring the capture form's own input limit.
const MaxCaptionLen = 50

// CaptionStyle carries the user's caption and how to draw it. The caption is
// burned into the composite pixels at render time, not stored as overlay
// metadata.
type CaptionStyle struct {
	Text      string
	Font      FontStyle
	TextColor color.RGBA
}

// DefaultTextColor is the brown the customization view starts with.
var DefaultTextColor = color.RGBA{0x5e, 0x50, 0x3f, 0xff}

// ParseHexColor parses #rgb or #rrggbb color values.
func ParseHexColor(s string) (color.RGBA, error) {
	c := color.RGBA{A: 0xff}
	var err error
	switch len(s) {
	case 7:
		_, err = fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B)
	case 4:
		_, err = fmt.Sscanf(s, "#%1x%1x%1x", &c.R, &c.G, &c.B)
		c.R *= 17
		c.G *= 17
		c.B *= 17
	default:
		err = fmt.Errorf("invalid length %d", len(s))
	}
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}
