// Package tools provides the drawable map overlays: markers, lines,
// polygons, labels and attribution banners. Each tool reports the geographic
// extent it needs visible and knows how to draw itself onto a resolved view.
package tools

import (
	"github.com/jamesrr39/staticmap-app/staticmap"
	"github.com/paulmach/osm"
)

func pointExtent(lat, lng float64) *osm.Bounds {
	return &osm.Bounds{
		MinLat: lat,
		MaxLat: lat,
		MinLon: lng,
		MaxLon: lng,
	}
}

func latLngListExtent(points []staticmap.LatLng) *osm.Bounds {
	if len(points) == 0 {
		return nil
	}

	extent := *pointExtent(points[0].Lat, points[0].Lng)
	for _, point := range points[1:] {
		extent = staticmap.MergeBounds(extent, *pointExtent(point.Lat, point.Lng))
	}

	return &extent
}

// projectPoint converts a geographic coordinate to canvas pixels.
func projectPoint(bounds *staticmap.Bounds, point staticmap.LatLng) (x, y float64) {
	x = bounds.XToPx(staticmap.LonToX(point.Lng, bounds.Zoom))
	y = bounds.YToPx(staticmap.LatToY(point.Lat, bounds.Zoom))

	return x, y
}
