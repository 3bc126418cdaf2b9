package board

import "math"

// GridSpacing is the gap between arranged tiles and around the grid.
const GridSpacing = 15

// GridSize returns the near-square grid used for n tiles.
func GridSize(n int) (cols, rows int) {
	if n <= 0 {
		return 0, 0
	}
	cols = int(math.Ceil(math.Sqrt(float64(n))))
	rows = int(math.Ceil(float64(n) / float64(cols)))
	return cols, rows
}

// Arrange repacks tiles into a row-major grid of equal 16:9 cells sized to
// fill the viewport, and resets every stacking order to 1. The input slice
// is not modified; an empty list is returned as is.
func Arrange(tiles []Tile, vp Viewport) []Tile {
	if len(tiles) == 0 {
		return tiles
	}
	cols, rows := GridSize(len(tiles))

	cellW := float64(vp.EffectiveWidth()-GridSpacing*(cols+1)) / float64(cols)
	cellH := float64(vp.EffectiveHeight()-GridSpacing*(rows+1)) / float64(rows)

	w, h := cellW, cellW/AspectRatio
	if h > cellH {
		w, h = cellH*AspectRatio, cellH
	}
	tw := max(MinTileWidth, int(math.Floor(w)))
	th := max(MinTileHeight, int(math.Floor(h)))

	out := cloneTiles(tiles)
	for i := range out {
		row, col := i/cols, i%cols
		out[i].X = GridSpacing + col*(tw+GridSpacing)
		out[i].Y = GridSpacing + row*(th+GridSpacing)
		out[i].Width = tw
		out[i].Height = th
		out[i].Z = 1
	}
	return out
}
