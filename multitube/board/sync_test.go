package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	idA = "AAAAAAAAAAA"
	idB = "BBBBBBBBBBB"
	idC = "CCCCCCCCCCC"
)

func urls(ids ...string) string {
	s := ""
	for _, id := range ids {
		s += "https://www.youtube.com/watch?v=" + id + "\n"
	}
	return s
}

var testViewport = Viewport{Width: 1200, Height: 600}

func TestSyncCreatesTiles(t *testing.T) {
	tiles, next := Sync(urls(idA, idB), nil, 0, testViewport)
	require.Len(t, tiles, 2)
	assert.Equal(t, 2, next)

	assert.Equal(t, Tile{ID: idA, Key: 0, X: 0, Y: 0, Width: 400, Height: 225, Z: 1}, tiles[0])
	assert.Equal(t, Tile{ID: idB, Key: 1, X: 50, Y: 50, Width: 400, Height: 225, Z: 2}, tiles[1])
}

func TestSyncFixedPoint(t *testing.T) {
	text := urls(idA, idB, idC)
	first, next := Sync(text, nil, 0, testViewport)
	second, next2 := Sync(text, first, next, testViewport)

	assert.Equal(t, next, next2)
	require.True(t, SameKeys(first, second))
	assert.Same(t, &first[0], &second[0], "unchanged result must reuse the current list")
}

func TestSyncPreservesIdentityOnReorder(t *testing.T) {
	tiles, next := Sync(urls(idA, idB), nil, 0, testViewport)
	tiles[0].X, tiles[0].Y, tiles[0].Z = 300, 120, 9
	tiles[1].Width, tiles[1].Height = 640, 360

	reordered, next2 := Sync(urls(idB, idA), tiles, next, testViewport)
	require.Len(t, reordered, 2)
	assert.Equal(t, next, next2)
	assert.Equal(t, tiles[1], reordered[0])
	assert.Equal(t, tiles[0], reordered[1])
}

func TestSyncNewTileOnTop(t *testing.T) {
	tiles, next := Sync(urls(idA, idB), nil, 0, testViewport)
	tiles[0].Z = 7

	grown, _ := Sync(urls(idA, idB, idC), tiles, next, testViewport)
	require.Len(t, grown, 3)
	c := grown[2]
	assert.Equal(t, idC, c.ID)
	assert.Greater(t, c.Key, grown[0].Key)
	assert.Greater(t, c.Key, grown[1].Key)
	assert.Greater(t, c.Z, grown[0].Z)
	assert.Greater(t, c.Z, grown[1].Z)
	assert.Equal(t, 100, c.X)
	assert.Equal(t, 100, c.Y)
}

func TestSyncDropsRemovedIDs(t *testing.T) {
	tiles, next := Sync(urls(idA, idB, idC), nil, 0, testViewport)
	kept, next2 := Sync(urls(idA, idC), tiles, next, testViewport)

	require.Len(t, kept, 2)
	assert.Equal(t, next, next2, "dropping tiles never consumes keys")
	assert.Equal(t, tiles[0], kept[0])
	assert.Equal(t, tiles[2], kept[1])
}

func TestSyncKeysNotReused(t *testing.T) {
	tiles, next := Sync(urls(idA), nil, 0, testViewport)
	tiles, next = Sync("", tiles, next, testViewport)
	assert.Empty(t, tiles)

	tiles, _ = Sync(urls(idA), tiles, next, testViewport)
	require.Len(t, tiles, 1)
	assert.Equal(t, 1, tiles[0].Key)
}

func TestSyncCascadeWraps(t *testing.T) {
	// width span 500-400-50 = 50, so every x offset wraps to 0
	vp := Viewport{Width: 500, Height: 600}
	tiles, _ := Sync(urls(idA, idB, idC), nil, 0, vp)
	for _, tile := range tiles {
		assert.Equal(t, 0, tile.X)
	}
	assert.Equal(t, []int{0, 50, 100}, []int{tiles[0].Y, tiles[1].Y, tiles[2].Y})
}

func TestSyncCascadeNegativeSpan(t *testing.T) {
	// width span 420-400-50 = -30: the remainder keeps the sign of n*50
	vp := Viewport{Width: 420, Height: 600}
	tiles, _ := Sync(urls(idA, idB, idC), nil, 0, vp)
	require.Len(t, tiles, 3)
	assert.Equal(t, []int{0, 20, 10}, []int{tiles[0].X, tiles[1].X, tiles[2].X})

	// a 450 wide viewport leaves no span at all
	assert.Equal(t, 0, cascade(3, 0))
}

func TestSyncUnmeasuredWidthFallsBack(t *testing.T) {
	ids := []string{"AAAAAAAAAA1", "AAAAAAAAAA2", "AAAAAAAAAA3", "AAAAAAAAAA4", "AAAAAAAAAA5",
		"AAAAAAAAAA6", "AAAAAAAAAA7", "AAAAAAAAAA8", "AAAAAAAAAA9", "AAAAAAAAAB0",
		"AAAAAAAAAB1", "AAAAAAAAAB2", "AAAAAAAAAB3", "AAAAAAAAAB4", "AAAAAAAAAB5"}
	tiles, _ := Sync(urls(ids...), nil, 0, Viewport{Height: 600})
	require.Len(t, tiles, 15)
	// span 1200-450 = 750; 14*50 = 700 stays below it
	assert.Equal(t, 700, tiles[14].X)
	// span 600-275 = 325; 14*50 = 700 % 325 = 50
	assert.Equal(t, 50, tiles[14].Y)
}

func TestRemoveFromInput(t *testing.T) {
	text := "https://youtu.be/" + idA + "\n\n   \nhttps://www.youtube.com/watch?v=" + idB + "\nhttps://youtu.be/" + idA + "?t=3"
	assert.Equal(t, "https://www.youtube.com/watch?v="+idB, RemoveFromInput(text, idA))
	assert.Equal(t, "", RemoveFromInput("", idA))
}
