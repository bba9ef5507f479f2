package tools

import (
	"encoding/hex"
	"image/color"
	"strconv"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/staticmap-app/staticmap"
)

// ParseColor parses a hex color of the form #RRGGBB or #RRGGBBAA.
func ParseColor(s string) (color.RGBA, errorsx.Error) {
	if !strings.HasPrefix(s, "#") {
		return color.RGBA{}, errorsx.Errorf("couldn't parse color %q: expected a leading '#'", s)
	}

	hexPart := s[1:]
	if len(hexPart) != 6 && len(hexPart) != 8 {
		return color.RGBA{}, errorsx.Errorf("couldn't parse color %q: expected 6 or 8 hex digits", s)
	}

	decoded, err := hex.DecodeString(hexPart)
	if err != nil {
		return color.RGBA{}, errorsx.Wrap(err, "color", s)
	}

	alpha := uint8(0xff)
	if len(decoded) == 4 {
		alpha = decoded[3]
	}

	return color.RGBA{R: decoded[0], G: decoded[1], B: decoded[2], A: alpha}, nil
}

// ParseLatLng parses a "lat,lng" pair in degrees.
func ParseLatLng(s string) (staticmap.LatLng, errorsx.Error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return staticmap.LatLng{}, errorsx.Errorf(`expected a "lat,lng" pair, but got %q`, s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return staticmap.LatLng{}, errorsx.Wrap(err, "latLng", s)
	}

	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return staticmap.LatLng{}, errorsx.Wrap(err, "latLng", s)
	}

	validationErr := staticmap.ValidateLatLng(lat, lng)
	if validationErr != nil {
		return staticmap.LatLng{}, validationErr
	}

	return staticmap.LatLng{Lat: lat, Lng: lng}, nil
}

// ParseLatLngList parses a semicolon-separated list of "lat,lng" pairs.
func ParseLatLngList(s string) ([]staticmap.LatLng, errorsx.Error) {
	var points []staticmap.LatLng

	for _, part := range strings.Split(s, ";") {
		if part == "" {
			continue
		}

		point, err := ParseLatLng(part)
		if err != nil {
			return nil, err
		}

		points = append(points, point)
	}

	return points, nil
}
