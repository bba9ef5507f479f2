package tools

import (
	"image"
	"image/color"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/staticmap-app/staticmap"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/paulmach/osm"
)

// Polygon is a closed, filled shape. The edge back from the last point to the
// first is implicit.
type Polygon struct {
	points      []staticmap.LatLng
	fillColor   color.Color
	strokeColor color.Color
	strokeWidth float64
}

func NewPolygon(points []staticmap.LatLng, fillColor, strokeColor color.Color, strokeWidth float64) (*Polygon, errorsx.Error) {
	if len(points) < 3 {
		return nil, errorsx.Errorf("a polygon needs at least 3 points, but got %d", len(points))
	}

	for _, point := range points {
		err := staticmap.ValidateLatLng(point.Lat, point.Lng)
		if err != nil {
			return nil, err
		}
	}

	return &Polygon{points, fillColor, strokeColor, strokeWidth}, nil
}

func (p *Polygon) Extent(zoomLevel staticmap.ZoomLevel, tileSize float64) *osm.Bounds {
	return latLngListExtent(p.points)
}

func (p *Polygon) Draw(bounds *staticmap.Bounds, img *image.RGBA) errorsx.Error {
	gc := draw2dimg.NewGraphicContext(img)

	if p.fillColor != nil {
		gc.SetFillColor(p.fillColor)
	}
	if p.strokeColor != nil {
		gc.SetStrokeColor(p.strokeColor)
	}
	if p.strokeWidth != 0 {
		gc.SetLineWidth(p.strokeWidth)
	}

	gc.BeginPath()

	for i, point := range p.points {
		x, y := projectPoint(bounds, point)

		if i == 0 {
			gc.MoveTo(x, y)
		} else {
			gc.LineTo(x, y)
		}
	}

	// close the ring back to the first point
	gc.Close()

	switch {
	case p.fillColor != nil && p.strokeColor != nil:
		gc.FillStroke()
	case p.fillColor != nil:
		gc.Fill()
	default:
		gc.Stroke()
	}

	return nil
}
