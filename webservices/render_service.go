package webservices

import (
	"image/color"
	"image/png"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/semaphore"
	"github.com/jamesrr39/staticmap-app/fonts"
	"github.com/jamesrr39/staticmap-app/staticmap"
	"github.com/jamesrr39/staticmap-app/staticmap/tools"
	"github.com/jamesrr39/staticmap-app/staticmapdal"
	"github.com/pkg/profile"
)

var (
	markerFillColor   = color.RGBA{R: 0xd3, G: 0x2f, B: 0x2f, A: 0xff}
	markerStrokeColor = color.RGBA{R: 0x7f, G: 0x1d, B: 0x1d, A: 0xff}
	pathColor         = color.RGBA{R: 0x1a, G: 0x5f, B: 0xb4, A: 0xff}
)

type RenderService struct {
	logger        *logpkg.Logger
	providerSet   *staticmapdal.TileProviderSet
	fetcher       *staticmapdal.TileFetcher
	sema          *semaphore.Semaphore
	shouldProfile bool
	chi.Router
}

func NewRenderService(logger *logpkg.Logger, providerSet *staticmapdal.TileProviderSet, fetcher *staticmapdal.TileFetcher, shouldProfile bool) *RenderService {
	rs := &RenderService{logger, providerSet, fetcher, semaphore.NewSemaphore(4), shouldProfile, chi.NewRouter()}

	rs.Get("/", rs.handleRender)

	return rs
}

func (rs *RenderService) getProvider(providerID string) (*staticmapdal.TileProvider, errorsx.Error) {
	if providerID == "" {
		return rs.providerSet.GetDefaultProvider(), nil
	}

	provider := rs.providerSet.GetProviderByID(providerID)
	if provider == nil {
		return nil, errorsx.Errorf("couldn't get requested tile provider %q (provider not loaded)", providerID)
	}

	return provider, nil
}

func (rs *RenderService) handleRender(w http.ResponseWriter, r *http.Request) {
	if rs.shouldProfile {
		defer profile.Start().Stop()
	}

	query := r.URL.Query()

	provider, err := rs.getProvider(query.Get("provider"))
	if err != nil {
		errorsx.HTTPError(w, rs.logger, err, 400)
		return
	}

	builder := staticmap.NewStaticMapBuilder().
		URLTemplate(provider.URLTemplate).
		Fetcher(rs.fetcher)

	widthStr := query.Get("width")
	if widthStr != "" {
		width, parseErr := strconv.Atoi(widthStr)
		if parseErr != nil {
			errorsx.HTTPError(w, rs.logger, errorsx.Wrap(parseErr), 400)
			return
		}

		builder.Width(width)
	}

	heightStr := query.Get("height")
	if heightStr != "" {
		height, parseErr := strconv.Atoi(heightStr)
		if parseErr != nil {
			errorsx.HTTPError(w, rs.logger, errorsx.Wrap(parseErr), 400)
			return
		}

		builder.Height(height)
	}

	zoomStr := query.Get("zoom")
	if zoomStr != "" {
		zoom, parseErr := strconv.Atoi(zoomStr)
		if parseErr != nil {
			errorsx.HTTPError(w, rs.logger, errorsx.Wrap(parseErr), 400)
			return
		}

		if zoom < 0 || uint(zoom) > provider.MaxZoom {
			errorsx.HTTPError(w, rs.logger, errorsx.Errorf("zoom level %d is outside provider %q's supported range [0, %d]", zoom, provider.ID, provider.MaxZoom), 400)
			return
		}

		builder.Zoom(staticmap.ZoomLevel(zoom))
	}

	centerStr := query.Get("center")
	if centerStr != "" {
		center, err := tools.ParseLatLng(centerStr)
		if err != nil {
			errorsx.HTTPError(w, rs.logger, err, 400)
			return
		}

		builder.Center(center.Lat, center.Lng)
	}

	var mapTools []staticmap.Tool

	for _, markerStr := range query["marker"] {
		point, err := tools.ParseLatLng(markerStr)
		if err != nil {
			errorsx.HTTPError(w, rs.logger, err, 400)
			return
		}

		marker, err := tools.NewCircle(point.Lat, point.Lng, markerFillColor, markerStrokeColor, 1, 6)
		if err != nil {
			errorsx.HTTPError(w, rs.logger, err, 400)
			return
		}

		mapTools = append(mapTools, marker)
	}

	for _, pathStr := range query["path"] {
		points, err := tools.ParseLatLngList(pathStr)
		if err != nil {
			errorsx.HTTPError(w, rs.logger, err, 400)
			return
		}

		path, err := tools.NewLine(points, pathColor, 3)
		if err != nil {
			errorsx.HTTPError(w, rs.logger, err, 400)
			return
		}

		mapTools = append(mapTools, path)
	}

	sm, err := builder.Build()
	if err != nil {
		errorsx.HTTPError(w, rs.logger, err, statusCodeForRenderError(err))
		return
	}

	for _, tool := range mapTools {
		sm.AddTool(tool)
	}

	if provider.Attribution != "" {
		sm.AddTool(tools.NewAttribution(provider.Attribution, fonts.DefaultFont()))
	}

	rs.sema.Add()
	defer rs.sema.Done()

	img, err := sm.Render(r.Context())
	if err != nil {
		errorsx.HTTPError(w, rs.logger, err, statusCodeForRenderError(err))
		return
	}

	w.Header().Set("Content-Type", "image/png")

	encodeErr := png.Encode(w, img)
	if encodeErr != nil {
		switch encodeErr.(type) {
		case *net.OpError:
			// broken pipe (request cancelled). Do nothing
		default:
			errorsx.HTTPError(w, rs.logger, errorsx.Wrap(encodeErr), 500)
		}
		return
	}
}

// statusCodeForRenderError distinguishes bad view parameters (the caller's
// fault) from tile server failures and everything else.
func statusCodeForRenderError(err errorsx.Error) int {
	cause := errorsx.Cause(err)

	switch cause {
	case staticmap.ErrInvalidSize,
		staticmap.ErrMissingZoom,
		staticmap.ErrMissingCenter,
		staticmap.ErrInvalidCoordinate,
		staticmap.ErrInvalidURLTemplate:
		return http.StatusBadRequest
	}

	_, isTileFetchError := cause.(*staticmapdal.TileFetchError)
	if isTileFetchError {
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}
