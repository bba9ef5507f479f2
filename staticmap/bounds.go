package staticmap

import (
	"math"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/osm"
)

// Bounds is the resolved view window for one render: which zoom level the map
// is drawn at, where the canvas center sits in tile coordinates, and which
// tile indexes are needed to cover every canvas pixel. It is built once per
// render call and not modified afterwards.
type Bounds struct {
	Zoom ZoomLevel

	// XCenter and YCenter are the fractional tile coordinates of the
	// canvas center point at Zoom.
	XCenter float64
	YCenter float64

	// Width and Height are the canvas size in pixels.
	Width  int
	Height int

	// TileSize is the edge length in pixels a tile is drawn at.
	TileSize int

	// XMin..XMax and YMin..YMax is the inclusive tile index range covering
	// the canvas, with one tile of slack on each edge. X indexes may lie
	// outside [0, 2^Zoom) and wrap around the antimeridian; Y indexes
	// outside that range address rows beyond the poles and have no tiles.
	XMin int
	XMax int
	YMin int
	YMax int
}

// XToPx converts a (fractional) tile x coordinate to a canvas x pixel.
func (b *Bounds) XToPx(x float64) float64 {
	px := (x-b.XCenter)*float64(b.TileSize) + float64(b.Width)/2.0

	return math.Round(px)
}

// YToPx converts a (fractional) tile y coordinate to a canvas y pixel.
func (b *Bounds) YToPx(y float64) float64 {
	px := (y-b.YCenter)*float64(b.TileSize) + float64(b.Height)/2.0

	return math.Round(px)
}

// MergeBounds returns the smallest bounds containing both a and b.
func MergeBounds(a, b osm.Bounds) osm.Bounds {
	return osm.Bounds{
		MinLat: math.Min(a.MinLat, b.MinLat),
		MaxLat: math.Max(a.MaxLat, b.MaxLat),
		MinLon: math.Min(a.MinLon, b.MinLon),
		MaxLon: math.Max(a.MaxLon, b.MaxLon),
	}
}

// BoundsBuilder resolves an (possibly incomplete) view configuration plus the
// extents of the tools into a concrete Bounds.
type BoundsBuilder struct {
	width     int
	height    int
	paddingX  int
	paddingY  int
	tileSize  int
	zoom      *ZoomLevel
	centerLat *float64
	centerLng *float64
}

func NewBoundsBuilder() *BoundsBuilder {
	return &BoundsBuilder{
		width:    DefaultWidth,
		height:   DefaultHeight,
		tileSize: DefaultTileSize,
	}
}

func (b *BoundsBuilder) Width(width int) *BoundsBuilder {
	b.width = width
	return b
}

func (b *BoundsBuilder) Height(height int) *BoundsBuilder {
	b.height = height
	return b
}

// Padding sets the minimum pixel distance kept between the canvas edges and
// the tool extents when the zoom level is inferred.
func (b *BoundsBuilder) Padding(x, y int) *BoundsBuilder {
	b.paddingX = x
	b.paddingY = y
	return b
}

func (b *BoundsBuilder) TileSize(tileSize int) *BoundsBuilder {
	b.tileSize = tileSize
	return b
}

func (b *BoundsBuilder) Zoom(zoomLevel ZoomLevel) *BoundsBuilder {
	b.zoom = &zoomLevel
	return b
}

func (b *BoundsBuilder) Center(lat, lng float64) *BoundsBuilder {
	b.centerLat = &lat
	b.centerLng = &lng
	return b
}

// Build produces the view window.
//
// With an explicit zoom and center, both are used directly. A missing center
// becomes the midpoint of the merged tool extents; a missing zoom becomes the
// finest level at which the merged extents, plus padding, still fit the
// canvas. Tools reporting no extent are ignored. If a value is missing and
// there are no extents to derive it from, Build fails with ErrMissingZoom or
// ErrMissingCenter.
func (b *BoundsBuilder) Build(tools []Tool) (*Bounds, errorsx.Error) {
	if b.width < 1 || b.height < 1 {
		return nil, errorsx.Wrap(ErrInvalidSize, "width", b.width, "height", b.height)
	}

	if b.paddingX < 0 || b.paddingY < 0 {
		return nil, errorsx.Wrap(ErrInvalidSize, "paddingX", b.paddingX, "paddingY", b.paddingY)
	}

	if b.tileSize < 1 {
		return nil, errorsx.Wrap(ErrInvalidSize, "tileSize", b.tileSize)
	}

	if b.centerLat != nil {
		err := ValidateLatLng(*b.centerLat, *b.centerLng)
		if err != nil {
			return nil, err
		}
	}

	var zoomLevel ZoomLevel
	if b.zoom != nil {
		zoomLevel = *b.zoom
		if zoomLevel > MaxZoomLevel {
			return nil, errorsx.Errorf("zoom level %d is above the maximum supported level %d", zoomLevel, MaxZoomLevel)
		}
	} else {
		extent := determineExtent(tools, MaxInferableZoomLevel, float64(b.tileSize))
		if extent == nil {
			return nil, errorsx.Wrap(ErrMissingZoom)
		}

		zoomLevel = b.inferZoom(tools)
	}

	var xCenter, yCenter float64
	if b.centerLat != nil {
		xCenter = LonToX(*b.centerLng, zoomLevel)
		yCenter = LatToY(*b.centerLat, zoomLevel)
	} else {
		extent := determineExtent(tools, zoomLevel, float64(b.tileSize))
		if extent == nil {
			return nil, errorsx.Wrap(ErrMissingCenter)
		}

		xCenter = LonToX((extent.MinLon+extent.MaxLon)/2, zoomLevel)
		yCenter = LatToY((extent.MinLat+extent.MaxLat)/2, zoomLevel)
	}

	halfSpanX := 0.5 * float64(b.width) / float64(b.tileSize)
	halfSpanY := 0.5 * float64(b.height) / float64(b.tileSize)

	return &Bounds{
		Zoom:     zoomLevel,
		XCenter:  xCenter,
		YCenter:  yCenter,
		Width:    b.width,
		Height:   b.height,
		TileSize: b.tileSize,
		XMin:     int(math.Floor(xCenter - halfSpanX)),
		XMax:     int(math.Ceil(xCenter + halfSpanX)),
		YMin:     int(math.Floor(yCenter - halfSpanY)),
		YMax:     int(math.Ceil(yCenter + halfSpanY)),
	}, nil
}

// inferZoom finds the finest zoom level at which the merged tool extents fit
// the canvas minus padding. If nothing fits even at the coarsest level, the
// coarsest level is used.
func (b *BoundsBuilder) inferZoom(tools []Tool) ZoomLevel {
	targetWidth := float64(b.width - 2*b.paddingX)
	targetHeight := float64(b.height - 2*b.paddingY)

	for zoomInt := int(MaxInferableZoomLevel); zoomInt > 0; zoomInt-- {
		zoomLevel := ZoomLevel(zoomInt)

		extent := determineExtent(tools, zoomLevel, float64(b.tileSize))

		extentWidth := (LonToX(extent.MaxLon, zoomLevel) - LonToX(extent.MinLon, zoomLevel)) * float64(b.tileSize)
		extentHeight := (LatToY(extent.MinLat, zoomLevel) - LatToY(extent.MaxLat, zoomLevel)) * float64(b.tileSize)

		if extentWidth <= targetWidth && extentHeight <= targetHeight {
			return zoomLevel
		}
	}

	return MinZoomLevel
}

// determineExtent merges the extents of all tools at the given zoom level.
// It returns nil if no tool reports an extent.
func determineExtent(tools []Tool, zoomLevel ZoomLevel, tileSize float64) *osm.Bounds {
	var extent *osm.Bounds

	for _, tool := range tools {
		toolExtent := tool.Extent(zoomLevel, tileSize)
		if toolExtent == nil {
			continue
		}

		if extent == nil {
			merged := *toolExtent
			extent = &merged
			continue
		}

		merged := MergeBounds(*extent, *toolExtent)
		extent = &merged
	}

	return extent
}
