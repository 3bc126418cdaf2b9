package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoTiles() State {
	return State{
		Tiles: []Tile{
			{ID: idA, Key: 0, X: 100, Y: 100, Width: 400, Height: 225, Z: 1},
			{ID: idB, Key: 1, X: 0, Y: 0, Width: 400, Height: 225, Z: 2},
		},
		Viewport: testViewport,
	}
}

func TestMoveClampsToViewport(t *testing.T) {
	s := twoTiles()
	s = PressTile(s, 1, Point{X: 10, Y: 10})
	require.Equal(t, ModeMovingTile, s.Session.Mode)

	s = Move(s, Point{X: 2010, Y: 2010})
	assert.Equal(t, 800, s.Tiles[1].X)
	assert.Equal(t, 375, s.Tiles[1].Y)

	s = Move(s, Point{X: -5000, Y: -5000})
	assert.Equal(t, 0, s.Tiles[1].X)
	assert.Equal(t, 0, s.Tiles[1].Y)
}

func TestMoveIsAnchored(t *testing.T) {
	s := PressTile(twoTiles(), 0, Point{X: 50, Y: 50})
	for i := 0; i < 10; i++ {
		s = Move(s, Point{X: 50 + i, Y: 50 + i})
	}
	s = Move(s, Point{X: 60, Y: 45})
	assert.Equal(t, 110, s.Tiles[0].X)
	assert.Equal(t, 95, s.Tiles[0].Y)
}

func TestPressRaisesTile(t *testing.T) {
	s := PressTile(twoTiles(), 0, Point{})
	assert.Equal(t, 3, s.Tiles[0].Z)
	assert.Equal(t, 2, s.Tiles[1].Z)

	s = Release(s)
	s = PressHandle(s, 1, HandleE, Point{})
	assert.Equal(t, 4, s.Tiles[1].Z)
}

func TestResize(t *testing.T) {
	tests := []struct {
		name   string
		handle Handle
		anchor Rect
		delta  Point
		want   Rect
	}{
		{"east grows width, height follows", HandleE, Rect{100, 100, 400, 225}, Point{100, 0}, Rect{100, 100, 500, 281}},
		{"south-east is width driven", HandleSE, Rect{100, 100, 400, 225}, Point{100, 37}, Rect{100, 100, 500, 281}},
		{"north-east is width driven", HandleNE, Rect{100, 100, 400, 225}, Point{100, 0}, Rect{100, 44, 500, 281}},
		{"west floors at minimum", HandleW, Rect{100, 100, 400, 225}, Point{500, 0}, Rect{300, 100, 200, 112}},
		{"south drives height", HandleS, Rect{100, 100, 400, 225}, Point{0, 100}, Rect{100, 100, 578, 325}},
		{"north keeps bottom edge", HandleN, Rect{100, 100, 400, 225}, Point{0, -100}, Rect{100, 0, 578, 325}},
		{"north floors at minimum", HandleN, Rect{100, 100, 400, 225}, Point{0, 300}, Rect{100, 213, 200, 112}},
		{"east clipped by far edge", HandleE, Rect{700, 0, 400, 225}, Point{300, 0}, Rect{700, 0, 500, 394}},
		{"north-west clamps both ways", HandleNW, Rect{100, 100, 400, 225}, Point{-1000, -1000}, Rect{0, 0, 1200, 600}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := State{
				Tiles:    []Tile{{ID: idA, X: tt.anchor.X, Y: tt.anchor.Y, Width: tt.anchor.Width, Height: tt.anchor.Height, Z: 1}},
				Viewport: testViewport,
			}
			s = PressHandle(s, 0, tt.handle, Point{X: 500, Y: 500})
			require.Equal(t, ModeResizingTile, s.Session.Mode)

			s = Move(s, Point{X: 500 + tt.delta.X, Y: 500 + tt.delta.Y})
			assert.Equal(t, tt.want, s.Tiles[0].Rect())
		})
	}
}

func TestResizeKeepsMinimum(t *testing.T) {
	for _, h := range Handles {
		t.Run(string(h), func(t *testing.T) {
			s := twoTiles()
			s = PressHandle(s, 0, h, Point{X: 300, Y: 300})
			for _, p := range []Point{{0, 0}, {900, 900}, {-900, 900}, {900, -900}, {300, 300}} {
				s = Move(s, p)
				tile := s.Tiles[0]
				assert.GreaterOrEqual(t, tile.Width, MinTileWidth)
				assert.GreaterOrEqual(t, tile.Height, MinTileHeight)
				assert.GreaterOrEqual(t, tile.X, 0)
				assert.GreaterOrEqual(t, tile.Y, 0)
				assert.LessOrEqual(t, tile.X+tile.Width, testViewport.Width)
				assert.LessOrEqual(t, tile.Y+tile.Height, testViewport.Height)
			}
			s = Move(s, Point{X: 300, Y: 300})
			assert.Equal(t, Rect{100, 100, 400, 225}, s.Tiles[0].Rect(), "returning to the anchor restores the anchor rect")
		})
	}
}

func TestResizeViewport(t *testing.T) {
	s := PressViewport(twoTiles(), Point{X: 0, Y: 700})
	require.Equal(t, ModeResizingViewport, s.Session.Mode)

	s = Move(s, Point{X: 40, Y: 200})
	assert.Equal(t, MinViewportHeight, s.Viewport.Height)

	s = Move(s, Point{X: 0, Y: 950})
	assert.Equal(t, 850, s.Viewport.Height)
	assert.Equal(t, twoTiles().Tiles, s.Tiles)
}

func TestPressIgnoredWhileActive(t *testing.T) {
	s := PressTile(twoTiles(), 0, Point{X: 1, Y: 1})
	s = Move(s, Point{X: 21, Y: 21})
	before := s

	assert.Equal(t, before, PressTile(s, 1, Point{X: 5, Y: 5}))
	assert.Equal(t, before, PressHandle(s, 1, HandleS, Point{X: 5, Y: 5}))
	assert.Equal(t, before, PressViewport(s, Point{X: 5, Y: 5}))
}

func TestPressRejectsBadTargets(t *testing.T) {
	s := twoTiles()
	assert.Equal(t, s, PressTile(s, 2, Point{}))
	assert.Equal(t, s, PressTile(s, -1, Point{}))
	assert.Equal(t, s, PressHandle(s, 0, Handle("x"), Point{}))
}

func TestReleaseFromEveryMode(t *testing.T) {
	presses := map[string]func(State) State{
		"move":     func(s State) State { return PressTile(s, 0, Point{}) },
		"resize":   func(s State) State { return PressHandle(s, 0, HandleSW, Point{}) },
		"viewport": func(s State) State { return PressViewport(s, Point{}) },
		"idle":     func(s State) State { return s },
	}
	for name, press := range presses {
		t.Run(name, func(t *testing.T) {
			s := Release(press(twoTiles()))
			assert.Equal(t, ModeIdle, s.Session.Mode)
			assert.False(t, s.Session.Active())

			moved := Move(s, Point{X: 400, Y: 400})
			assert.Equal(t, s, moved, "moves after release change nothing")
		})
	}
}

func TestMoveTouchesOnlyTarget(t *testing.T) {
	orig := twoTiles()
	s := PressTile(orig, 0, Point{})
	pressed := s.Tiles
	s = Move(s, Point{X: 30, Y: 40})

	assert.Equal(t, pressed[1], s.Tiles[1])
	assert.Equal(t, 100, pressed[0].X, "earlier tile lists are never mutated")
	assert.Equal(t, 1, orig.Tiles[0].Z)
	assert.Equal(t, 130, s.Tiles[0].X)
	assert.Equal(t, 140, s.Tiles[0].Y)
}

func TestParseHandle(t *testing.T) {
	for _, h := range Handles {
		got, ok := ParseHandle(string(h))
		assert.True(t, ok)
		assert.Equal(t, h, got)
	}
	_, ok := ParseHandle("north")
	assert.False(t, ok)
}
