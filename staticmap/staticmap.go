package staticmap

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"

	tracing "github.com/jamesrr39/go-tracing"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/staticmap-app/staticmapdal"
	xdraw "golang.org/x/image/draw"
)

const (
	DefaultWidth       = 300
	DefaultHeight      = 300
	DefaultTileSize    = 256
	DefaultURLTemplate = "https://a.tile.osm.org/{z}/{x}/{y}.png"
)

// TileFetcher resolves tile URLs to decoded tile images. Implementations
// must return one image per URL, in the same order as the URLs.
type TileFetcher interface {
	FetchTiles(ctx context.Context, urls []string) ([]image.Image, errorsx.Error)
}

// StaticMap renders a map region into a single raster image: a base layer
// stitched from provider tiles, with the added tools drawn on top.
//
// The view window is recomputed on every render call; the tile cache behind
// the fetcher is kept, so repeated renders only fetch a given tile once.
type StaticMap struct {
	width       int
	height      int
	paddingX    int
	paddingY    int
	tileSize    int
	urlTemplate string
	zoom        *ZoomLevel
	centerLat   *float64
	centerLng   *float64
	background  color.Color
	fetcher     TileFetcher
	tools       []Tool
}

// StaticMapBuilder assembles a StaticMap. The zero configuration renders a
// 300x300 view from the default OpenStreetMap tile server, with a fresh tile
// cache.
type StaticMapBuilder struct {
	width       int
	height      int
	paddingX    int
	paddingY    int
	tileSize    int
	urlTemplate string
	zoom        *ZoomLevel
	centerLat   *float64
	centerLng   *float64
	background  color.Color
	cache       *staticmapdal.TileCache
	fetcher     TileFetcher
}

func NewStaticMapBuilder() *StaticMapBuilder {
	return &StaticMapBuilder{
		width:       DefaultWidth,
		height:      DefaultHeight,
		tileSize:    DefaultTileSize,
		urlTemplate: DefaultURLTemplate,
		background:  color.Transparent,
	}
}

func (b *StaticMapBuilder) Width(width int) *StaticMapBuilder {
	b.width = width
	return b
}

func (b *StaticMapBuilder) Height(height int) *StaticMapBuilder {
	b.height = height
	return b
}

func (b *StaticMapBuilder) Padding(x, y int) *StaticMapBuilder {
	b.paddingX = x
	b.paddingY = y
	return b
}

func (b *StaticMapBuilder) TileSize(tileSize int) *StaticMapBuilder {
	b.tileSize = tileSize
	return b
}

// URLTemplate sets the tile URL template. It must contain the {z}, {x} and
// {y} placeholders.
func (b *StaticMapBuilder) URLTemplate(template string) *StaticMapBuilder {
	b.urlTemplate = template
	return b
}

func (b *StaticMapBuilder) Zoom(zoomLevel ZoomLevel) *StaticMapBuilder {
	b.zoom = &zoomLevel
	return b
}

func (b *StaticMapBuilder) Center(lat, lng float64) *StaticMapBuilder {
	b.centerLat = &lat
	b.centerLng = &lng
	return b
}

func (b *StaticMapBuilder) Background(c color.Color) *StaticMapBuilder {
	b.background = c
	return b
}

// Cache sets the tile cache the map fetches through. Passing the same cache
// handle to several maps shares their fetched tiles. Ignored if a custom
// fetcher is set.
func (b *StaticMapBuilder) Cache(cache *staticmapdal.TileCache) *StaticMapBuilder {
	b.cache = cache
	return b
}

// Fetcher replaces the default HTTP tile fetcher.
func (b *StaticMapBuilder) Fetcher(fetcher TileFetcher) *StaticMapBuilder {
	b.fetcher = fetcher
	return b
}

func (b *StaticMapBuilder) Build() (*StaticMap, errorsx.Error) {
	err := ValidateURLTemplate(b.urlTemplate)
	if err != nil {
		return nil, err
	}

	if b.width < 1 || b.height < 1 {
		return nil, errorsx.Wrap(ErrInvalidSize, "width", b.width, "height", b.height)
	}

	if b.centerLat != nil {
		err = ValidateLatLng(*b.centerLat, *b.centerLng)
		if err != nil {
			return nil, err
		}
	}

	if b.zoom != nil && *b.zoom > MaxZoomLevel {
		return nil, errorsx.Errorf("zoom level %d is above the maximum supported level %d", *b.zoom, MaxZoomLevel)
	}

	fetcher := b.fetcher
	if fetcher == nil {
		cache := b.cache
		if cache == nil {
			cache = staticmapdal.NewTileCache()
		}

		// the default fetcher only logs at debug level, so keep it quiet
		fetcher = staticmapdal.NewTileFetcher(logpkg.NewLogger(os.Stderr, logpkg.LogLevelError), cache)
	}

	return &StaticMap{
		width:       b.width,
		height:      b.height,
		paddingX:    b.paddingX,
		paddingY:    b.paddingY,
		tileSize:    b.tileSize,
		urlTemplate: b.urlTemplate,
		zoom:        b.zoom,
		centerLat:   b.centerLat,
		centerLng:   b.centerLng,
		background:  b.background,
		fetcher:     fetcher,
	}, nil
}

// AddTool appends a tool to the draw list. Tools are drawn in the order they
// were added, so later tools paint over earlier ones.
func (sm *StaticMap) AddTool(tool Tool) {
	sm.tools = append(sm.tools, tool)
}

// Render resolves the view window, fetches the base layer tiles and draws
// every tool on top. It either returns the finished canvas or the first
// error; there is no partial output.
func (sm *StaticMap) Render(ctx context.Context) (*image.RGBA, errorsx.Error) {
	span := startSpan(ctx, "resolve view window")

	bounds, err := sm.determineBounds()
	if err != nil {
		return nil, err
	}

	endSpan(ctx, span)

	img := NewImageWithBackground(image.Rect(0, 0, bounds.Width, bounds.Height), sm.background)

	err = sm.drawBaseLayer(ctx, bounds, img)
	if err != nil {
		return nil, err
	}

	span = startSpan(ctx, "draw tools")
	defer endSpan(ctx, span)

	for _, tool := range sm.tools {
		err = tool.Draw(bounds, img)
		if err != nil {
			return nil, errorsx.Wrap(err)
		}
	}

	return img, nil
}

// EncodePNG renders the map and writes it PNG-encoded to w.
func (sm *StaticMap) EncodePNG(ctx context.Context, w io.Writer) errorsx.Error {
	img, err := sm.Render(ctx)
	if err != nil {
		return err
	}

	encodeErr := png.Encode(w, img)
	if encodeErr != nil {
		return errorsx.Wrap(encodeErr)
	}

	return nil
}

// SavePNG renders the map and writes the PNG to filePath.
func (sm *StaticMap) SavePNG(ctx context.Context, fs gofs.Fs, filePath string) errorsx.Error {
	img, err := sm.Render(ctx)
	if err != nil {
		return err
	}

	file, createErr := fs.Create(filePath)
	if createErr != nil {
		return errorsx.Wrap(createErr, "filePath", filePath)
	}
	defer file.Close()

	encodeErr := png.Encode(file, img)
	if encodeErr != nil {
		return errorsx.Wrap(encodeErr)
	}

	return nil
}

func (sm *StaticMap) determineBounds() (*Bounds, errorsx.Error) {
	builder := NewBoundsBuilder().
		Width(sm.width).
		Height(sm.height).
		Padding(sm.paddingX, sm.paddingY).
		TileSize(sm.tileSize)

	if sm.zoom != nil {
		builder.Zoom(*sm.zoom)
	}

	if sm.centerLat != nil {
		builder.Center(*sm.centerLat, *sm.centerLng)
	}

	return builder.Build(sm.tools)
}

// drawBaseLayer stitches the provider tiles covering bounds onto img. Tile x
// indexes wrap around the antimeridian; tile rows beyond the poles do not
// exist and are left showing the background.
func (sm *StaticMap) drawBaseLayer(ctx context.Context, bounds *Bounds, img *image.RGBA) errorsx.Error {
	span := startSpan(ctx, "fetch base layer tiles")

	maxTile := 1 << bounds.Zoom

	type tilePlacement struct {
		px int
		py int
	}

	var urls []string
	var placements []tilePlacement

	for x := bounds.XMin; x <= bounds.XMax; x++ {
		for y := bounds.YMin; y <= bounds.YMax; y++ {
			if y < 0 || y >= maxTile {
				continue
			}

			urls = append(urls, BuildTileURL(sm.urlTemplate, bounds.Zoom, wrapTileX(x, bounds.Zoom), y))
			placements = append(placements, tilePlacement{
				px: int(bounds.XToPx(float64(x))),
				py: int(bounds.YToPx(float64(y))),
			})
		}
	}

	tiles, err := sm.fetcher.FetchTiles(ctx, urls)
	if err != nil {
		return errorsx.Wrap(err)
	}

	endSpan(ctx, span)

	span = startSpan(ctx, "composite base layer")
	defer endSpan(ctx, span)

	for idx, tile := range tiles {
		placement := placements[idx]
		drawTile(img, bounds, tile, placement.px, placement.py)
	}

	return nil
}

// drawTile blits one tile at its pixel offset, clipped against the canvas
// edges. Tiles whose native size differs from the configured tile size are
// rescaled first.
func drawTile(img *image.RGBA, bounds *Bounds, tile image.Image, px, py int) {
	tileBounds := tile.Bounds()
	if tileBounds.Dx() != bounds.TileSize || tileBounds.Dy() != bounds.TileSize {
		scaled := image.NewRGBA(image.Rect(0, 0, bounds.TileSize, bounds.TileSize))
		xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), tile, tileBounds, xdraw.Src, nil)

		tile = scaled
		tileBounds = scaled.Bounds()
	}

	target := image.Rect(px, py, px+bounds.TileSize, py+bounds.TileSize)

	draw.Draw(img, target, tile, tileBounds.Min, draw.Over)
}

func NewImageWithBackground(r image.Rectangle, c color.Color) *image.RGBA {
	img := image.NewRGBA(r)

	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.ZP, draw.Src)

	return img
}

// startSpan opens a tracing span if the context carries a tracer (it does
// under the tracing HTTP middleware). Without a tracer it returns nil and
// endSpan does nothing, so library callers don't need tracing set up.
func startSpan(ctx context.Context, name string) *tracing.Span {
	if ctx.Value(tracing.TracerCtxKey) == nil {
		return nil
	}

	return tracing.StartSpan(ctx, name)
}

func endSpan(ctx context.Context, span *tracing.Span) {
	if span == nil {
		return
	}

	span.End(ctx)
}
