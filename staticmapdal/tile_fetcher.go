package staticmapdal

import (
	"context"
	"image"
	"net/http"
	"sync"
	"time"

	// tile servers commonly serve PNG, but JPEG and WebP tiles exist too
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/semaphore"
	"golang.org/x/exp/errors/fmt"
)

const (
	DefaultUserAgent            = "staticmap-app/1.0"
	DefaultMaxConcurrentFetches = 24
	DefaultMaxFetchAttempts     = 5
	DefaultRetryDelay           = time.Second
)

// TileFetchError reports a tile that could not be fetched and decoded within
// the retry budget. Cause holds the error from the last attempt.
type TileFetchError struct {
	URL   string
	Cause error
}

func (e *TileFetchError) Error() string {
	return fmt.Sprintf("failed to fetch tile %q: %s", e.URL, e.Cause)
}

func (e *TileFetchError) Unwrap() error {
	return e.Cause
}

// TileFetcher downloads and decodes map tiles over HTTP, backed by a
// TileCache. The zero value is not usable; create it with NewTileFetcher and
// adjust the exported fields before the first fetch if needed.
type TileFetcher struct {
	Logger *logpkg.Logger
	Cache  *TileCache

	HTTPClient *http.Client
	UserAgent  string

	// MaxConcurrentFetches caps the number of in-flight tile requests,
	// independent of how many tiles a render needs.
	MaxConcurrentFetches uint

	// MaxAttempts and RetryDelay control the retry budget per tile. Every
	// transport error, non-200 status and decode failure counts as one
	// failed attempt.
	MaxAttempts int
	RetryDelay  time.Duration
}

func NewTileFetcher(logger *logpkg.Logger, cache *TileCache) *TileFetcher {
	return &TileFetcher{
		Logger:               logger,
		Cache:                cache,
		HTTPClient:           &http.Client{Timeout: time.Second * 20},
		UserAgent:            DefaultUserAgent,
		MaxConcurrentFetches: DefaultMaxConcurrentFetches,
		MaxAttempts:          DefaultMaxFetchAttempts,
		RetryDelay:           DefaultRetryDelay,
	}
}

// FetchTiles resolves every URL to a decoded tile image, returned in the same
// order as urls. Cached tiles are used directly; the rest are fetched in
// parallel and inserted into the cache on success. If any tile cannot be
// fetched within the retry budget the whole call fails with a TileFetchError,
// no matter how many other tiles succeeded.
func (tf *TileFetcher) FetchTiles(ctx context.Context, urls []string) ([]image.Image, errorsx.Error) {
	tiles := make([]image.Image, len(urls))

	var missingIdxs []int
	for idx, url := range urls {
		tile, ok := tf.Cache.Get(url)
		if ok {
			tiles[idx] = tile
			continue
		}

		missingIdxs = append(missingIdxs, idx)
	}

	if len(missingIdxs) == 0 {
		return tiles, nil
	}

	tf.Logger.Debug("fetching %d of %d tiles (%d cached)", len(missingIdxs), len(urls), len(urls)-len(missingIdxs))

	var mu sync.Mutex
	var firstErr errorsx.Error

	sema := semaphore.NewSemaphore(tf.MaxConcurrentFetches)
	for _, missingIdx := range missingIdxs {
		idx := missingIdx
		sema.Add()
		go func() {
			defer sema.Done()

			tile, err := tf.fetchTile(ctx, urls[idx])
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}

			tf.Cache.Set(urls[idx], tile)

			tiles[idx] = tile
		}()
	}
	sema.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	return tiles, nil
}

func (tf *TileFetcher) fetchTile(ctx context.Context, url string) (image.Image, errorsx.Error) {
	var lastErr error

	for attempt := 0; attempt < tf.MaxAttempts; attempt++ {
		if attempt > 0 {
			tf.Logger.Debug("retrying tile fetch (attempt %d of %d): %s", attempt+1, tf.MaxAttempts, url)
			time.Sleep(tf.RetryDelay)
		}

		tile, err := tf.fetchTileOnce(ctx, url)
		if err != nil {
			lastErr = err
			continue
		}

		return tile, nil
	}

	return nil, errorsx.Wrap(&TileFetchError{URL: url, Cause: lastErr})
}

func (tf *TileFetcher) fetchTileOnce(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", tf.UserAgent)

	resp, err := tf.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected response status %q from tile server", resp.Status)
	}

	tile, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, err
	}

	return tile, nil
}
