package tools

import (
	"bytes"
	"image"
	"image/draw"

	// icon decode formats
	_ "image/jpeg"
	_ "image/png"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/staticmap-app/staticmap"
	"github.com/paulmach/osm"
)

// IconMarker draws an arbitrary image at a geographic coordinate. The offsets
// pick the anchor point within the icon, in pixels from its top-left corner,
// so a pin icon can anchor at its tip rather than its corner.
type IconMarker struct {
	lat     float64
	lng     float64
	icon    image.Image
	offsetX float64
	offsetY float64
}

func NewIconMarker(lat, lng float64, icon image.Image, offsetX, offsetY float64) (*IconMarker, errorsx.Error) {
	err := staticmap.ValidateLatLng(lat, lng)
	if err != nil {
		return nil, err
	}

	return &IconMarker{lat, lng, icon, offsetX, offsetY}, nil
}

// NewIconMarkerFromBytes decodes iconBytes (PNG or JPEG) into the marker icon.
func NewIconMarkerFromBytes(lat, lng float64, iconBytes []byte, offsetX, offsetY float64) (*IconMarker, errorsx.Error) {
	icon, _, err := image.Decode(bytes.NewReader(iconBytes))
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return NewIconMarker(lat, lng, icon, offsetX, offsetY)
}

// Extent accounts for the icon's pixel size, converted to geographic degrees
// at the given zoom level, so the whole icon stays on the canvas.
func (m *IconMarker) Extent(zoomLevel staticmap.ZoomLevel, tileSize float64) *osm.Bounds {
	iconBounds := m.icon.Bounds()

	x := staticmap.LonToX(m.lng, zoomLevel)
	y := staticmap.LatToY(m.lat, zoomLevel)

	return &osm.Bounds{
		MinLon: staticmap.XToLon(x-m.offsetX/tileSize, zoomLevel),
		MaxLon: staticmap.XToLon(x+(float64(iconBounds.Dx())-m.offsetX)/tileSize, zoomLevel),
		MaxLat: staticmap.YToLat(y-m.offsetY/tileSize, zoomLevel),
		MinLat: staticmap.YToLat(y+(float64(iconBounds.Dy())-m.offsetY)/tileSize, zoomLevel),
	}
}

func (m *IconMarker) Draw(bounds *staticmap.Bounds, img *image.RGBA) errorsx.Error {
	x := bounds.XToPx(staticmap.LonToX(m.lng, bounds.Zoom)) - m.offsetX
	y := bounds.YToPx(staticmap.LatToY(m.lat, bounds.Zoom)) - m.offsetY

	iconBounds := m.icon.Bounds()
	target := image.Rect(int(x), int(y), int(x)+iconBounds.Dx(), int(y)+iconBounds.Dy())

	draw.Draw(img, target, m.icon, iconBounds.Min, draw.Over)

	return nil
}
