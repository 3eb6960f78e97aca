package strip

import (
	"log"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/opentype"

	"photobooth-app/internal/models"
)

// Parsed fonts are shared; faces are created per render because a font.Face
// is not safe for concurrent use.
var (
	fontItalic        *opentype.Font
	fontMediumItalic  *opentype.Font
	fontBold          *opentype.Font
	fontSmallCaps     *opentype.Font
	fontRegular       *opentype.Font
)

func init() {
	fontItalic = mustParse(goitalic.TTF)
	fontMediumItalic = mustParse(gomediumitalic.TTF)
	fontBold = mustParse(gobold.TTF)
	fontSmallCaps = mustParse(gosmallcaps.TTF)
	fontRegular = mustParse(goregular.TTF)
}

func mustParse(ttf []byte) *opentype.Font {
	f, err := opentype.Parse(ttf)
	if err != nil {
		log.Fatalf("Failed to parse embedded font: %v", err)
	}
	return f
}

func newFace(f *opentype.Font, size float64) font.Face {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		log.Fatalf("Failed to create font face: %v", err)
	}
	return face
}

// captionFace maps a FontStyle to its typeface.
func captionFace(style models.FontStyle) font.Face {
	switch style {
	case models.FontVintage:
		return newFace(fontItalic, 22)
	case models.FontHandwritten:
		return newFace(fontMediumItalic, 22)
	case models.FontModern:
		return newFace(fontBold, 22)
	case models.FontFancy:
		return newFace(fontSmallCaps, 24)
	default:
		return newFace(fontRegular, 22)
	}
}

func dateFace() font.Face {
	return newFace(fontItalic, 20)
}
