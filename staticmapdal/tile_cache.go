package staticmapdal

import (
	"image"
	"sync"
)

// TileCache is a shared mapping from tile URL to decoded tile image. One
// cache handle may back any number of maps and render calls at once; entries
// are kept for the lifetime of the handle and never evicted.
//
// There is no per-key locking: two renders missing the same tile at the same
// time may both fetch it, and the later Set simply replaces the earlier one.
// Get returns the stored image itself, not a copy; tile images are only ever
// read after insertion.
type TileCache struct {
	tiles map[string]image.Image
	mu    *sync.RWMutex
}

func NewTileCache() *TileCache {
	return &TileCache{make(map[string]image.Image), new(sync.RWMutex)}
}

func (tc *TileCache) Get(url string) (image.Image, bool) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	img, ok := tc.tiles[url]
	return img, ok
}

func (tc *TileCache) Set(url string, img image.Image) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	tc.tiles[url] = img
}

// Len returns the number of cached tiles.
func (tc *TileCache) Len() int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	return len(tc.tiles)
}
