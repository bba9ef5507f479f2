package staticmap

import (
	"strconv"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
)

const (
	zoomPlaceholder = "{z}"
	xPlaceholder    = "{x}"
	yPlaceholder    = "{y}"
)

// ValidateURLTemplate checks that template contains the {z}, {x} and {y}
// placeholders a tile URL is built from.
func ValidateURLTemplate(template string) errorsx.Error {
	for _, placeholder := range []string{zoomPlaceholder, xPlaceholder, yPlaceholder} {
		if !strings.Contains(template, placeholder) {
			return errorsx.Wrap(ErrInvalidURLTemplate, "template", template, "missingPlaceholder", placeholder)
		}
	}

	return nil
}

// BuildTileURL substitutes the tile address into template. Substitution is
// plain text replacement.
func BuildTileURL(template string, zoomLevel ZoomLevel, x, y int) string {
	url := strings.ReplaceAll(template, zoomPlaceholder, strconv.Itoa(int(zoomLevel)))
	url = strings.ReplaceAll(url, xPlaceholder, strconv.Itoa(x))
	url = strings.ReplaceAll(url, yPlaceholder, strconv.Itoa(y))

	return url
}

// wrapTileX wraps a tile x index into [0, 2^zoom). The world is cyclic in
// longitude, so x and x+2^zoom address the same tile.
func wrapTileX(x int, zoomLevel ZoomLevel) int {
	maxTile := 1 << zoomLevel

	wrapped := x % maxTile
	if wrapped < 0 {
		wrapped += maxTile
	}

	return wrapped
}
