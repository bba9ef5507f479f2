package staticmap

import (
	"math"

	"github.com/jamesrr39/goutil/errorsx"
)

// MaxLatitude is the northernmost latitude the web mercator projection can
// represent. Latitudes beyond it (towards the poles) have no tile coverage.
const MaxLatitude = 85.0511287798066

// MinLatitude is the southernmost projectable latitude.
const MinLatitude = -MaxLatitude

// LonToX converts a longitude to a (fractional) tile number at the given zoom level.
func LonToX(lon float64, zoomLevel ZoomLevel) float64 {
	if lon < -180 || lon > 180 {
		lon = math.Mod(lon+180, 360) - 180
	}

	return (lon + 180.0) / 360.0 * math.Exp2(float64(zoomLevel))
}

// LatToY converts a latitude to a (fractional) tile number at the given zoom level.
// The latitude is clamped to the projectable range, so y is always finite.
func LatToY(lat float64, zoomLevel ZoomLevel) float64 {
	if lat < MinLatitude {
		lat = MinLatitude
	} else if lat > MaxLatitude {
		lat = MaxLatitude
	}

	latRad := lat * math.Pi / 180.0

	return (1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * math.Exp2(float64(zoomLevel))
}

// XToLon converts a (fractional) tile number back to a longitude.
func XToLon(x float64, zoomLevel ZoomLevel) float64 {
	return x/math.Exp2(float64(zoomLevel))*360.0 - 180.0
}

// YToLat converts a (fractional) tile number back to a latitude.
func YToLat(y float64, zoomLevel ZoomLevel) float64 {
	n := math.Pi - 2.0*math.Pi*y/math.Exp2(float64(zoomLevel))

	return 180.0 / math.Pi * math.Atan(math.Sinh(n))
}

// ValidateLatLng checks that a coordinate can be projected. Latitudes outside
// the mercator range would project to pixels off the top or bottom of the
// world, so they are rejected rather than clamped silently.
func ValidateLatLng(lat, lng float64) errorsx.Error {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return errorsx.Wrap(ErrInvalidCoordinate, "lat", lat, "lng", lng)
	}

	if lat < MinLatitude || lat > MaxLatitude {
		return errorsx.Wrap(ErrInvalidCoordinate, "lat", lat)
	}

	if lng < -180 || lng > 180 {
		return errorsx.Wrap(ErrInvalidCoordinate, "lng", lng)
	}

	return nil
}
