package staticmap

import "errors"

// ZoomLevel is a slippy-map zoom level. The world is 2^zoom tiles wide
// and 2^zoom tiles high at a given level.
type ZoomLevel uint

const (
	MinZoomLevel ZoomLevel = 0
	MaxZoomLevel ZoomLevel = 20
	// MaxInferableZoomLevel is the finest zoom level tried when no explicit
	// zoom has been set and the zoom is derived from the tool extents.
	MaxInferableZoomLevel ZoomLevel = 17
)

var (
	ErrInvalidSize        = errors.New("invalid canvas size")
	ErrMissingZoom        = errors.New("no zoom level set, and no tools to derive one from")
	ErrMissingCenter      = errors.New("no center set, and no tools to derive one from")
	ErrInvalidCoordinate  = errors.New("coordinate outside the mercator-projectable range")
	ErrInvalidURLTemplate = errors.New("invalid tile URL template")
)

// LatLng is a geographic coordinate in degrees.
type LatLng struct {
	Lat float64
	Lng float64
}
