package tools

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/staticmap-app/staticmap"
	"github.com/paulmach/osm"
)

const (
	attributionFontSize  = 10.0
	attributionBarHeight = 14
)

// Attribution draws a translucent banner with the tile provider's copyright
// notice along the bottom edge of the canvas.
type Attribution struct {
	text string
	font *truetype.Font
}

func NewAttribution(text string, font *truetype.Font) *Attribution {
	return &Attribution{text, font}
}

// Extent returns nil: the banner is pinned to the canvas and places no
// constraint on the view.
func (a *Attribution) Extent(zoomLevel staticmap.ZoomLevel, tileSize float64) *osm.Bounds {
	return nil
}

func (a *Attribution) Draw(bounds *staticmap.Bounds, img *image.RGBA) errorsx.Error {
	imgBounds := img.Bounds()
	barTop := imgBounds.Max.Y - attributionBarHeight

	// NRGBA: the banner color is straight alpha, not premultiplied
	bar := image.Rect(imgBounds.Min.X, barTop, imgBounds.Max.X, imgBounds.Max.Y)
	draw.Draw(img, bar, image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: 180}), image.Point{}, draw.Over)

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(a.font)
	ctx.SetFontSize(attributionFontSize)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetSrc(image.NewUniform(color.RGBA{R: 60, G: 60, B: 60, A: 255}))

	_, err := ctx.DrawString(a.text, freetype.Pt(imgBounds.Min.X+4, imgBounds.Max.Y-4))
	if err != nil {
		return errorsx.Wrap(err)
	}

	return nil
}
