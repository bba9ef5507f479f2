package main

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	tracing "github.com/jamesrr39/go-tracing"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/httpextra"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/goutil/userextra"
	"github.com/jamesrr39/staticmap-app/fonts"
	"github.com/jamesrr39/staticmap-app/staticmap"
	"github.com/jamesrr39/staticmap-app/staticmap/tools"
	"github.com/jamesrr39/staticmap-app/staticmapdal"
	"github.com/jamesrr39/staticmap-app/webservices"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/pkg/profile"
)

const (
	DEFAULT_PORT = 9000
)

var logger *logpkg.Logger

var verbose = kingpin.Flag("v", "verbose logging").Bool()

func main() {
	setupRender()
	setupServe()

	kingpin.Parse()
}

// setupLogger builds the global logger. It must run inside a command action,
// after kingpin has parsed the flag values.
func setupLogger() {
	logLevel := logpkg.LogLevelInfo
	if *verbose {
		logLevel = logpkg.LogLevelDebug
	}
	logger = logpkg.NewLogger(os.Stderr, logLevel)
}

func buildProviderSet(defaultProviderID string) (*staticmapdal.TileProviderSet, errorsx.Error) {
	return staticmapdal.NewTileProviderSet(staticmapdal.BuiltinProviders(), defaultProviderID)
}

func buildFetcher(userAgent string, maxConcurrentFetches uint) *staticmapdal.TileFetcher {
	fetcher := staticmapdal.NewTileFetcher(logger, staticmapdal.NewTileCache())
	fetcher.UserAgent = userAgent
	fetcher.MaxConcurrentFetches = maxConcurrentFetches

	return fetcher
}

func setupRender() {
	cmd := kingpin.Command("render", "render a map to a PNG file")
	width := cmd.Flag("width", "image width in pixels").Default(fmt.Sprintf("%d", staticmap.DefaultWidth)).Int()
	height := cmd.Flag("height", "image height in pixels").Default(fmt.Sprintf("%d", staticmap.DefaultHeight)).Int()
	paddingX := cmd.Flag("padding-x", "minimum pixels between markers/paths and the left/right edges (only used when the zoom is derived)").Default("0").Int()
	paddingY := cmd.Flag("padding-y", "minimum pixels between markers/paths and the top/bottom edges (only used when the zoom is derived)").Default("0").Int()
	zoom := cmd.Flag("zoom", "zoom level. Derived from the markers and paths if not set").Default("-1").Int()
	center := cmd.Flag("center", `map center as "lat,lng". Derived from the markers and paths if not set`).String()
	tileSize := cmd.Flag("tile-size", "tile edge length in pixels").Default(fmt.Sprintf("%d", staticmap.DefaultTileSize)).Int()
	providerID := cmd.Flag("provider", "tile provider ID (see the serve command's /api/info/providers)").Default(staticmapdal.DefaultProviderID).String()
	urlTemplate := cmd.Flag("url-template", "custom tile URL template containing {z}, {x} and {y}. Overrides --provider").String()
	markerStrs := cmd.Flag("marker", `add a marker at "lat,lng". May be repeated`).Strings()
	pathStrs := cmd.Flag("path", `add a path along "lat1,lng1;lat2,lng2;...". May be repeated`).Strings()
	markerColorStr := cmd.Flag("marker-color", "marker color, #RRGGBB or #RRGGBBAA").Default("#d32f2f").String()
	pathColorStr := cmd.Flag("path-color", "path color, #RRGGBB or #RRGGBBAA").Default("#1a5fb4").String()
	pathWidth := cmd.Flag("path-width", "path stroke width in pixels").Default("3").Float64()
	noAttribution := cmd.Flag("no-attribution", "don't draw the provider attribution banner").Bool()
	userAgent := cmd.Flag("user-agent", "User-Agent header sent to the tile server").Default(staticmapdal.DefaultUserAgent).String()
	maxConcurrentFetches := cmd.Flag("max-concurrent-fetches", "maximum amount of tiles fetched at once").Default(fmt.Sprintf("%d", staticmapdal.DefaultMaxConcurrentFetches)).Uint()
	shouldProfile := cmd.Flag("profile", "profile the render performance").Bool()
	outputPath := cmd.Arg("output", "file path to write the PNG to").Required().String()
	cmd.Action(func(ctx *kingpin.ParseContext) error {
		setupLogger()

		run := func() errorsx.Error {
			if *shouldProfile {
				defer profile.Start(profile.CPUProfile).Stop()
			}

			startTime := time.Now()

			providerSet, err := buildProviderSet(staticmapdal.DefaultProviderID)
			if err != nil {
				return errorsx.Wrap(err)
			}

			builder := staticmap.NewStaticMapBuilder().
				Width(*width).
				Height(*height).
				Padding(*paddingX, *paddingY).
				TileSize(*tileSize).
				Fetcher(buildFetcher(*userAgent, *maxConcurrentFetches))

			var attribution string
			if *urlTemplate != "" {
				builder.URLTemplate(*urlTemplate)
			} else {
				provider := providerSet.GetProviderByID(*providerID)
				if provider == nil {
					return errorsx.Errorf("couldn't get requested tile provider %q (provider not loaded)", *providerID)
				}

				if *zoom >= 0 && uint(*zoom) > provider.MaxZoom {
					return errorsx.Errorf("zoom level %d is outside provider %q's supported range [0, %d]", *zoom, provider.ID, provider.MaxZoom)
				}

				builder.URLTemplate(provider.URLTemplate)
				attribution = provider.Attribution
			}

			if *zoom >= 0 {
				builder.Zoom(staticmap.ZoomLevel(*zoom))
			}

			if *center != "" {
				centerPoint, err := tools.ParseLatLng(*center)
				if err != nil {
					return err
				}

				builder.Center(centerPoint.Lat, centerPoint.Lng)
			}

			sm, err := builder.Build()
			if err != nil {
				return err
			}

			markerColor, err := tools.ParseColor(*markerColorStr)
			if err != nil {
				return err
			}

			pathColor, err := tools.ParseColor(*pathColorStr)
			if err != nil {
				return err
			}

			for _, markerStr := range *markerStrs {
				point, err := tools.ParseLatLng(markerStr)
				if err != nil {
					return err
				}

				marker, err := tools.NewCircle(point.Lat, point.Lng, markerColor, markerColor, 1, 6)
				if err != nil {
					return err
				}

				sm.AddTool(marker)
			}

			for _, pathStr := range *pathStrs {
				points, err := tools.ParseLatLngList(pathStr)
				if err != nil {
					return err
				}

				path, err := tools.NewLine(points, pathColor, *pathWidth)
				if err != nil {
					return err
				}

				sm.AddTool(path)
			}

			if attribution != "" && !*noAttribution {
				sm.AddTool(tools.NewAttribution(attribution, fonts.DefaultFont()))
			}

			expandedOutputPath, expandErr := userextra.ExpandUser(*outputPath)
			if expandErr != nil {
				return errorsx.Wrap(expandErr, "outputPath", *outputPath)
			}

			err = sm.SavePNG(context.Background(), gofs.NewOsFs(), expandedOutputPath)
			if err != nil {
				return err
			}

			logger.Info("map rendered to %q in %s", expandedOutputPath, time.Since(startTime))

			return nil
		}

		err := run()
		if err != nil {
			return fmt.Errorf("error: %q\nStack trace:\n%s", err.Error(), err.Stack())
		}
		return nil
	})
}

var addrHelp = fmt.Sprintf(
	`address to serve on. Ex: ':%d' listen on port %d to traffic from anywhere. 'localhost:%d' listen on port %d to traffic from localhost`,
	DEFAULT_PORT, DEFAULT_PORT, DEFAULT_PORT, DEFAULT_PORT,
)

func setupServe() {
	cmd := kingpin.Command("serve", "serve the map renderer over HTTP")
	addr := cmd.Flag("addr", addrHelp).Default(fmt.Sprintf(":%d", DEFAULT_PORT)).String()
	defaultProviderID := cmd.Flag("default-provider-id", "provider to render from when the request doesn't name one").Default(staticmapdal.DefaultProviderID).String()
	userAgent := cmd.Flag("user-agent", "User-Agent header sent to the tile servers").Default(staticmapdal.DefaultUserAgent).String()
	maxConcurrentFetches := cmd.Flag("max-concurrent-fetches", "maximum amount of tiles fetched at once").Default(fmt.Sprintf("%d", staticmapdal.DefaultMaxConcurrentFetches)).Uint()
	traceDir := cmd.Flag("trace-dir", "directory to write trace files to. Uses a temporary directory if not set").String()
	shouldProfile := cmd.Flag("profile", "profile the request performance").Bool()
	cmd.Action(func(ctx *kingpin.ParseContext) error {
		setupLogger()

		run := func() errorsx.Error {
			providerSet, err := buildProviderSet(*defaultProviderID)
			if err != nil {
				return errorsx.Wrap(err)
			}

			fetcher := buildFetcher(*userAgent, *maxConcurrentFetches)

			router, err := createServer(providerSet, fetcher, *traceDir, *shouldProfile)
			if err != nil {
				return errorsx.Wrap(err)
			}

			server := httpextra.NewServerWithTimeouts()
			server.Addr = *addr
			server.Handler = router

			logger.Info("about to start serving on %q", *addr)

			listenErr := server.ListenAndServe()
			if listenErr != nil {
				return errorsx.Wrap(listenErr)
			}
			return nil
		}

		err := run()
		if err != nil {
			return fmt.Errorf("error: %q\nStack trace:\n%s", err.Error(), err.Stack())
		}
		return nil
	})
}

func createServer(providerSet *staticmapdal.TileProviderSet, fetcher *staticmapdal.TileFetcher, traceDirPath string, shouldProfile bool) (chi.Router, errorsx.Error) {
	var err error

	if traceDirPath == "" {
		traceDirPath, err = ioutil.TempDir("", "")
		if err != nil {
			return nil, errorsx.Wrap(err)
		}
	}

	traceFilePath := filepath.Join(traceDirPath, fmt.Sprintf("trace_%s.pbf", time.Now().Format("2006-01-02__03_04_05")))
	logger.Info("tracing at %q", traceFilePath)

	traceFile, err := os.Create(traceFilePath)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	tracer := tracing.NewTracer(traceFile)

	router := chi.NewRouter()
	router.Use(middleware.DefaultLogger)
	router.Use(tracing.Middleware(tracer))
	router.Route("/api/", func(r chi.Router) {
		r.Mount("/maps/render", webservices.NewRenderService(logger, providerSet, fetcher, shouldProfile))
		r.Mount("/info/providers", webservices.NewInfoService(logger, providerSet))
	})

	return router, nil
}
