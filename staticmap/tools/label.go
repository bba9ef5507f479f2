package tools

import (
	"image"
	"image/color"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/staticmap-app/staticmap"
	"github.com/paulmach/osm"
)

// Label draws a text string with its baseline starting at a geographic
// coordinate.
type Label struct {
	lat       float64
	lng       float64
	text      string
	font      *truetype.Font
	fontSize  float64
	textColor color.Color
}

func NewLabel(lat, lng float64, text string, font *truetype.Font, fontSize float64, textColor color.Color) (*Label, errorsx.Error) {
	err := staticmap.ValidateLatLng(lat, lng)
	if err != nil {
		return nil, err
	}

	if text == "" {
		return nil, errorsx.Errorf("label text must not be empty")
	}

	return &Label{lat, lng, text, font, fontSize, textColor}, nil
}

func (l *Label) Extent(zoomLevel staticmap.ZoomLevel, tileSize float64) *osm.Bounds {
	return pointExtent(l.lat, l.lng)
}

func (l *Label) Draw(bounds *staticmap.Bounds, img *image.RGBA) errorsx.Error {
	x, y := projectPoint(bounds, staticmap.LatLng{Lat: l.lat, Lng: l.lng})

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(l.font)
	ctx.SetFontSize(l.fontSize)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetSrc(image.NewUniform(l.textColor))

	_, err := ctx.DrawString(l.text, freetype.Pt(int(x), int(y)))
	if err != nil {
		return errorsx.Wrap(err)
	}

	return nil
}
