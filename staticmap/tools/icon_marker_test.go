package tools

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/staticmap-app/staticmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIconMarker(t *testing.T) {
	icon := staticmap.NewImageWithBackground(image.Rect(0, 0, 8, 8), color.Black)

	_, err := NewIconMarker(52.6, 13.4, icon, 4, 4)
	assert.NoError(t, err)

	_, err = NewIconMarker(-91, 13.4, icon, 4, 4)
	require.Error(t, err)
	assert.Equal(t, staticmap.ErrInvalidCoordinate, errorsx.Cause(err))
}

func TestNewIconMarkerFromBytes(t *testing.T) {
	icon := staticmap.NewImageWithBackground(image.Rect(0, 0, 8, 8), color.Black)
	buf := bytes.NewBuffer(nil)
	require.NoError(t, png.Encode(buf, icon))

	marker, err := NewIconMarkerFromBytes(52.6, 13.4, buf.Bytes(), 4, 4)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 8), marker.icon.Bounds())

	_, err = NewIconMarkerFromBytes(52.6, 13.4, []byte("not an image"), 4, 4)
	assert.Error(t, err)
}

func TestIconMarker_Extent(t *testing.T) {
	icon := staticmap.NewImageWithBackground(image.Rect(0, 0, 16, 16), color.Black)

	marker, err := NewIconMarker(52.6, 13.4, icon, 8, 8)
	require.NoError(t, err)

	extent := marker.Extent(10, 256)
	require.NotNil(t, extent)

	// the extent surrounds the anchor on all sides
	assert.Less(t, extent.MinLon, 13.4)
	assert.Greater(t, extent.MaxLon, 13.4)
	assert.Less(t, extent.MinLat, 52.6)
	assert.Greater(t, extent.MaxLat, 52.6)

	// the same icon needs more degrees at a coarser zoom level
	coarseExtent := marker.Extent(5, 256)
	assert.Greater(t, coarseExtent.MaxLon-coarseExtent.MinLon, extent.MaxLon-extent.MinLon)
}

func TestIconMarker_Draw(t *testing.T) {
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	blue := color.RGBA{R: 26, G: 95, B: 180, A: 255}

	icon := staticmap.NewImageWithBackground(image.Rect(0, 0, 8, 8), blue)

	marker, err := NewIconMarker(52.6, 13.4, icon, 4, 4)
	require.NoError(t, err)

	img := staticmap.NewImageWithBackground(image.Rect(0, 0, 200, 200), white)
	require.NoError(t, marker.Draw(testBounds(t), img))

	// the icon is centered on its anchor point
	assert.Equal(t, blue, img.RGBAAt(100, 100))
	assert.Equal(t, blue, img.RGBAAt(96, 96))
	assert.Equal(t, blue, img.RGBAAt(103, 103))
	assert.Equal(t, white, img.RGBAAt(104, 104))
	assert.Equal(t, white, img.RGBAAt(95, 95))
	assert.Equal(t, white, img.RGBAAt(150, 150))
}
