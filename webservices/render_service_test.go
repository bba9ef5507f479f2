package webservices

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/staticmap-app/staticmap"
	"github.com/jamesrr39/staticmap-app/staticmapdal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logpkg.Logger {
	return logpkg.NewLogger(os.Stderr, logpkg.LogLevelError)
}

// newTileServer serves the same single-colored tile for every request.
func newTileServer(t *testing.T, c color.Color) *httptest.Server {
	buf := bytes.NewBuffer(nil)
	err := png.Encode(buf, staticmap.NewImageWithBackground(image.Rect(0, 0, 256, 256), c))
	require.NoError(t, err)
	tileBytes := buf.Bytes()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(tileBytes)
	}))
	t.Cleanup(server.Close)

	return server
}

func newTestProviderSet(t *testing.T, urlTemplate string) *staticmapdal.TileProviderSet {
	providerSet, err := staticmapdal.NewTileProviderSet([]*staticmapdal.TileProvider{
		{
			ID:          "test",
			Name:        "Test Provider",
			URLTemplate: urlTemplate,
			Attribution: "© test data",
			MaxZoom:     19,
		},
	}, "test")
	require.NoError(t, err)

	return providerSet
}

func newTestFetcher() *staticmapdal.TileFetcher {
	fetcher := staticmapdal.NewTileFetcher(testLogger(), staticmapdal.NewTileCache())
	fetcher.RetryDelay = time.Millisecond

	return fetcher
}

func newTestRenderServer(t *testing.T, urlTemplate string) *httptest.Server {
	service := NewRenderService(testLogger(), newTestProviderSet(t, urlTemplate), newTestFetcher(), false)

	server := httptest.NewServer(service)
	t.Cleanup(server.Close)

	return server
}

func TestRenderService_handleRender(t *testing.T) {
	tileServer := newTileServer(t, color.White)
	server := newTestRenderServer(t, tileServer.URL+"/{z}/{x}/{y}.png")

	resp, err := http.Get(server.URL + "/?width=300&height=300&zoom=4&center=52.6,13.4")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	img, err := png.Decode(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())

	// base layer away from the attribution banner is the tile color
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	assert.Equal(t, white, color.RGBAModel.Convert(img.At(10, 10)))
	assert.Equal(t, white, color.RGBAModel.Convert(img.At(150, 150)))
}

func TestRenderService_handleRender_drawsMarkers(t *testing.T) {
	tileServer := newTileServer(t, color.White)
	server := newTestRenderServer(t, tileServer.URL+"/{z}/{x}/{y}.png")

	resp, err := http.Get(server.URL + "/?width=300&height=300&zoom=4&center=52.6,13.4&marker=52.6,13.4")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	img, err := png.Decode(resp.Body)
	require.NoError(t, err)

	// the marker sits on the requested center, which is the canvas center
	assert.Equal(t, markerFillColor, color.RGBAModel.Convert(img.At(150, 150)))

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	assert.Equal(t, white, color.RGBAModel.Convert(img.At(10, 10)))
}

func TestRenderService_handleRender_drawsPaths(t *testing.T) {
	tileServer := newTileServer(t, color.White)
	server := newTestRenderServer(t, tileServer.URL+"/{z}/{x}/{y}.png")

	resp, err := http.Get(server.URL + "/?width=300&height=300&zoom=10&center=52.6,13.4&path=52.6,13.3;52.6,13.5")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	img, err := png.Decode(resp.Body)
	require.NoError(t, err)

	// the path runs horizontally through the canvas center
	assert.Equal(t, pathColor, color.RGBAModel.Convert(img.At(150, 150)))

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	assert.Equal(t, white, color.RGBAModel.Convert(img.At(150, 100)))
}

func TestRenderService_handleRender_badRequests(t *testing.T) {
	tileServer := newTileServer(t, color.White)
	server := newTestRenderServer(t, tileServer.URL+"/{z}/{x}/{y}.png")

	tests := []struct {
		name  string
		query string
	}{
		{"unknown provider", "?provider=unknown&zoom=4&center=52.6,13.4"},
		{"unparseable width", "?width=abc&zoom=4&center=52.6,13.4"},
		{"zero width", "?width=0&zoom=4&center=52.6,13.4"},
		{"unparseable zoom", "?zoom=abc&center=52.6,13.4"},
		{"negative zoom", "?zoom=-1&center=52.6,13.4"},
		{"zoom above provider maximum", "?zoom=20&center=52.6,13.4"},
		{"out of range center", "?zoom=4&center=91,0"},
		{"malformed marker", "?zoom=4&center=52.6,13.4&marker=bad"},
		{"path with a single point", "?zoom=4&center=52.6,13.4&path=52.6,13.4"},
		{"no zoom and nothing to infer it from", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(server.URL + "/" + tt.query)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestRenderService_handleRender_tileServerFailure(t *testing.T) {
	tileServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "tile backend down", http.StatusInternalServerError)
	}))
	t.Cleanup(tileServer.Close)

	server := newTestRenderServer(t, tileServer.URL+"/{z}/{x}/{y}.png")

	resp, err := http.Get(server.URL + "/?zoom=4&center=52.6,13.4")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func Test_statusCodeForRenderError(t *testing.T) {
	type args struct {
		err errorsx.Error
	}
	tests := []struct {
		name string
		args args
		want int
	}{
		{
			name: "invalid size",
			args: args{errorsx.Wrap(staticmap.ErrInvalidSize)},
			want: http.StatusBadRequest,
		}, {
			name: "missing zoom",
			args: args{errorsx.Wrap(staticmap.ErrMissingZoom)},
			want: http.StatusBadRequest,
		}, {
			name: "missing center",
			args: args{errorsx.Wrap(staticmap.ErrMissingCenter)},
			want: http.StatusBadRequest,
		}, {
			name: "invalid coordinate",
			args: args{errorsx.Wrap(staticmap.ErrInvalidCoordinate)},
			want: http.StatusBadRequest,
		}, {
			name: "invalid URL template",
			args: args{errorsx.Wrap(staticmap.ErrInvalidURLTemplate)},
			want: http.StatusBadRequest,
		}, {
			name: "tile fetch failure",
			args: args{errorsx.Wrap(&staticmapdal.TileFetchError{URL: "https://example.com/4/8/5.png", Cause: errors.New("connection refused")})},
			want: http.StatusBadGateway,
		}, {
			name: "anything else",
			args: args{errorsx.Errorf("unexpected failure")},
			want: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusCodeForRenderError(tt.args.err))
		})
	}
}
