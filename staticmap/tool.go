package staticmap

import (
	"image"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/osm"
)

// Tool is a drawable overlay on a map: a marker, a path, a label.
type Tool interface {
	// Extent reports the geographic box that must stay visible for the tool
	// to be fully shown. Extents that depend on the pixel size of the tool
	// (icons, for example) need the zoom level and tile size to convert.
	// Tools that place no constraint on the view return nil.
	Extent(zoomLevel ZoomLevel, tileSize float64) *osm.Bounds

	// Draw paints the tool onto img, using bounds to project its
	// coordinates into canvas pixels.
	Draw(bounds *Bounds, img *image.RGBA) errorsx.Error
}
