// Package board holds the tile layout engine of the dashboard: the
// url-to-tile synchronizer, the pointer interaction state machine and the
// grid arranger. Everything here is pure and single-goroutine; the caller
// owns a Board and feeds it events in order.
package board

// Geometry limits shared by the synchronizer, the state machine and the
// arranger.
const (
	MinTileWidth  = 200
	MinTileHeight = 112

	DefaultTileWidth  = 400
	DefaultTileHeight = 225

	MinViewportHeight     = 300
	DefaultViewportHeight = 600
	// FallbackViewportWidth is used until the render surface reports a
	// measured width.
	FallbackViewportWidth = 1200

	// AspectRatio is width / height for every tile.
	AspectRatio = 16.0 / 9.0
)

// Tile is one player window bound to a single video id.
type Tile struct {
	ID     string `json:"id"`
	Key    int    `json:"key"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Z      int    `json:"zIndex"`
}

// Rect returns the tile geometry.
func (t Tile) Rect() Rect {
	return Rect{X: t.X, Y: t.Y, Width: t.Width, Height: t.Height}
}

// Rect is an axis aligned box in viewport pixels.
type Rect struct {
	X, Y, Width, Height int
}

// Point is a pointer position in client pixels.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Viewport is the container holding every tile. Only the height is owned by
// the board; the width comes from layout.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// EffectiveWidth returns the measured width, or FallbackViewportWidth when
// the surface has not been laid out yet.
func (v Viewport) EffectiveWidth() int {
	if v.Width <= 0 {
		return FallbackViewportWidth
	}
	return v.Width
}

// EffectiveHeight returns the height, never below MinViewportHeight.
func (v Viewport) EffectiveHeight() int {
	if v.Height < MinViewportHeight {
		return MinViewportHeight
	}
	return v.Height
}

func maxZ(tiles []Tile) int {
	z := 0
	for _, t := range tiles {
		if t.Z > z {
			z = t.Z
		}
	}
	return z
}

// SameKeys reports whether a and b hold the same keys in the same order.
func SameKeys(a, b []Tile) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Key != b[i].Key {
			return false
		}
	}
	return true
}

func cloneTiles(tiles []Tile) []Tile {
	out := make([]Tile, len(tiles))
	copy(out, tiles)
	return out
}
