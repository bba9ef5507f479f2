package tools

import (
	"image"
	"image/color"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/staticmap-app/staticmap"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
	"github.com/paulmach/osm"
)

// Circle is a round marker with a fixed pixel radius, anchored at a
// geographic coordinate.
type Circle struct {
	lat         float64
	lng         float64
	fillColor   color.Color
	strokeColor color.Color
	strokeWidth float64
	radius      float64 // pixels
}

func NewCircle(lat, lng float64, fillColor, strokeColor color.Color, strokeWidth, radius float64) (*Circle, errorsx.Error) {
	err := staticmap.ValidateLatLng(lat, lng)
	if err != nil {
		return nil, err
	}

	if radius <= 0 {
		return nil, errorsx.Errorf("circle radius must be positive, got %f", radius)
	}

	return &Circle{lat, lng, fillColor, strokeColor, strokeWidth, radius}, nil
}

func (c *Circle) Extent(zoomLevel staticmap.ZoomLevel, tileSize float64) *osm.Bounds {
	return pointExtent(c.lat, c.lng)
}

func (c *Circle) Draw(bounds *staticmap.Bounds, img *image.RGBA) errorsx.Error {
	x, y := projectPoint(bounds, staticmap.LatLng{Lat: c.lat, Lng: c.lng})

	gc := draw2dimg.NewGraphicContext(img)
	defer gc.Close()

	if c.fillColor != nil {
		gc.SetFillColor(c.fillColor)
	}
	if c.strokeColor != nil {
		gc.SetStrokeColor(c.strokeColor)
	}
	if c.strokeWidth != 0 {
		gc.SetLineWidth(c.strokeWidth)
	}

	gc.BeginPath()
	draw2dkit.Circle(gc, x, y, c.radius)

	switch {
	case c.fillColor != nil && c.strokeColor != nil:
		gc.FillStroke()
	case c.fillColor != nil:
		gc.Fill()
	default:
		gc.Stroke()
	}

	return nil
}
