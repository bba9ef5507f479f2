package tools

import (
	"image"
	"image/color"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/staticmap-app/staticmap"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/paulmach/osm"
)

// Line is an open polyline along a list of geographic coordinates.
type Line struct {
	points     []staticmap.LatLng
	color      color.Color
	width      float64
	dashPolicy []float64
}

func NewLine(points []staticmap.LatLng, lineColor color.Color, width float64) (*Line, errorsx.Error) {
	if len(points) < 2 {
		return nil, errorsx.Errorf("a line needs at least 2 points, but got %d", len(points))
	}

	for _, point := range points {
		err := staticmap.ValidateLatLng(point.Lat, point.Lng)
		if err != nil {
			return nil, err
		}
	}

	return &Line{points, lineColor, width, nil}, nil
}

// SetDashPolicy makes the line dashed. The policy alternates between drawn
// and skipped segment lengths, in pixels.
func (l *Line) SetDashPolicy(dashPolicy []float64) {
	l.dashPolicy = dashPolicy
}

func (l *Line) Extent(zoomLevel staticmap.ZoomLevel, tileSize float64) *osm.Bounds {
	return latLngListExtent(l.points)
}

func (l *Line) Draw(bounds *staticmap.Bounds, img *image.RGBA) errorsx.Error {
	gc := draw2dimg.NewGraphicContext(img)
	defer gc.Close()

	gc.SetStrokeColor(l.color)
	gc.SetLineWidth(l.width)
	if l.dashPolicy != nil {
		gc.SetLineDash(l.dashPolicy, 0)
	}

	gc.BeginPath()

	for i, point := range l.points {
		x, y := projectPoint(bounds, point)

		if i == 0 {
			gc.MoveTo(x, y)
		} else {
			gc.LineTo(x, y)
		}
	}

	gc.Stroke()

	return nil
}
