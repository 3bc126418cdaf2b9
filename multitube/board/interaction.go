package board

import (
	"math"
	"strings"
)

// Mode is the state of the pointer interaction machine.
type Mode int

const (
	ModeIdle Mode = iota
	ModeMovingTile
	ModeResizingTile
	ModeResizingViewport
)

func (m Mode) String() string {
	switch m {
	case ModeMovingTile:
		return "moving-tile"
	case ModeResizingTile:
		return "resizing-tile"
	case ModeResizingViewport:
		return "resizing-viewport"
	default:
		return "idle"
	}
}

// Handle is one of the eight compass resize handles of a tile.
type Handle string

const (
	HandleN  Handle = "n"
	HandleE  Handle = "e"
	HandleS  Handle = "s"
	HandleW  Handle = "w"
	HandleNE Handle = "ne"
	HandleNW Handle = "nw"
	HandleSE Handle = "se"
	HandleSW Handle = "sw"
)

// Handles lists every handle in the order the surface draws them.
var Handles = []Handle{HandleN, HandleE, HandleS, HandleW, HandleNE, HandleNW, HandleSE, HandleSW}

// ParseHandle validates a handle name.
func ParseHandle(s string) (Handle, bool) {
	for _, h := range Handles {
		if string(h) == s {
			return h, true
		}
	}
	return "", false
}

func (h Handle) has(dir string) bool { return strings.Contains(string(h), dir) }

// widthLeads reports whether width is the authoritative dimension when
// restoring the aspect ratio.
func (h Handle) widthLeads() bool {
	return h.has("e") || h.has("w") || (len(h) == 2 && !h.has("n") && !h.has("s"))
}

// Session is the record of one in-progress gesture. The zero value is idle.
type Session struct {
	Mode         Mode
	Target       int
	TargetKey    int
	Handle       Handle
	Anchor       Point
	AnchorRect   Rect
	AnchorHeight int
}

// Active reports whether a gesture is in progress.
func (s Session) Active() bool { return s.Mode != ModeIdle }

func (s Session) targetsTile() bool {
	return s.Mode == ModeMovingTile || s.Mode == ModeResizingTile
}

// targetIndex finds the pressed tile by key, since re-syncs may shift
// positions mid gesture. It returns -1 once the tile is gone.
func (s State) targetIndex() int {
	i := s.Session.Target
	if i >= 0 && i < len(s.Tiles) && s.Tiles[i].Key == s.Session.TargetKey {
		return i
	}
	for i, t := range s.Tiles {
		if t.Key == s.Session.TargetKey {
			return i
		}
	}
	return -1
}

// State is everything the interaction machine reads and writes.
type State struct {
	Tiles    []Tile
	Viewport Viewport
	Session  Session
}

// PressTile starts moving the tile at index. It is ignored while another
// gesture is active or when index is out of range.
func PressTile(s State, index int, p Point) State {
	if s.Session.Active() || index < 0 || index >= len(s.Tiles) {
		return s
	}
	s.Tiles = raise(s.Tiles, index)
	s.Session = Session{
		Mode:       ModeMovingTile,
		Target:     index,
		TargetKey:  s.Tiles[index].Key,
		Anchor:     p,
		AnchorRect: s.Tiles[index].Rect(),
	}
	return s
}

// PressHandle starts resizing the tile at index from handle h.
func PressHandle(s State, index int, h Handle, p Point) State {
	if s.Session.Active() || index < 0 || index >= len(s.Tiles) {
		return s
	}
	if _, ok := ParseHandle(string(h)); !ok {
		return s
	}
	s.Tiles = raise(s.Tiles, index)
	s.Session = Session{
		Mode:       ModeResizingTile,
		Target:     index,
		TargetKey:  s.Tiles[index].Key,
		Handle:     h,
		Anchor:     p,
		AnchorRect: s.Tiles[index].Rect(),
	}
	return s
}

// PressViewport starts resizing the viewport height.
func PressViewport(s State, p Point) State {
	if s.Session.Active() {
		return s
	}
	s.Session = Session{
		Mode:         ModeResizingViewport,
		Target:       -1,
		Anchor:       p,
		AnchorHeight: s.Viewport.EffectiveHeight(),
	}
	return s
}

// Release ends whatever gesture is active.
func Release(s State) State {
	s.Session = Session{}
	return s
}

// Move applies the pointer position p to the active gesture. Deltas are
// always taken against the anchor recorded at press time.
func Move(s State, p Point) State {
	sess := s.Session
	dx := p.X - sess.Anchor.X
	dy := p.Y - sess.Anchor.Y

	switch sess.Mode {
	case ModeResizingViewport:
		s.Viewport.Height = max(MinViewportHeight, sess.AnchorHeight+dy)
		return s
	case ModeMovingTile, ModeResizingTile:
	default:
		return s
	}
	target := s.targetIndex()
	if target < 0 {
		return s
	}

	vw, vh := s.Viewport.EffectiveWidth(), s.Viewport.EffectiveHeight()
	t := s.Tiles[target]
	if sess.Mode == ModeMovingTile {
		t.X = clamp(sess.AnchorRect.X+dx, vw-t.Width)
		t.Y = clamp(sess.AnchorRect.Y+dy, vh-t.Height)
	} else {
		r := resize(sess.AnchorRect, sess.Handle, dx, dy, vw, vh)
		t.X, t.Y, t.Width, t.Height = r.X, r.Y, r.Width, r.Height
	}

	tiles := cloneTiles(s.Tiles)
	tiles[target] = t
	s.Tiles = tiles
	return s
}

// resize computes the new geometry of a tile dragged by handle h.
func resize(a Rect, h Handle, dx, dy, vw, vh int) Rect {
	w, ht := a.Width, a.Height
	if h.has("e") {
		w = a.Width + dx
	}
	if h.has("w") {
		w = a.Width - dx
	}
	if h.has("s") {
		ht = a.Height + dy
	}
	if h.has("n") {
		ht = a.Height - dy
	}
	w = max(MinTileWidth, w)
	ht = max(MinTileHeight, ht)

	if h.widthLeads() {
		ht = heightFor(w)
		if ht < MinTileHeight {
			ht = MinTileHeight
			w = widthFor(ht)
		}
	} else {
		w = widthFor(ht)
		if w < MinTileWidth {
			w = MinTileWidth
			ht = heightFor(w)
		}
	}

	x, y := a.X, a.Y
	if h.has("w") {
		x = a.X + (a.Width - w)
	}
	if h.has("n") {
		y = a.Y + (a.Height - ht)
	}

	// Position first, then the far edge, then pull west/north origins back
	// inside if the far-edge clamp left them past the container.
	x = max(0, x)
	y = max(0, y)
	w = min(w, vw-x)
	ht = min(ht, vh-y)
	if h.has("w") {
		x = min(x, vw-w)
	}
	if h.has("n") {
		y = min(y, vh-ht)
	}
	return Rect{X: x, Y: y, Width: w, Height: ht}
}

func heightFor(w int) int { return int(math.RoundToEven(float64(w) / AspectRatio)) }

func widthFor(h int) int { return int(math.RoundToEven(float64(h) * AspectRatio)) }

// clamp bounds v to [0, limit], preferring 0 when limit is negative.
func clamp(v, limit int) int {
	return max(0, min(v, limit))
}

// raise returns a copy of tiles with tiles[index] stacked above the rest.
func raise(tiles []Tile, index int) []Tile {
	out := cloneTiles(tiles)
	out[index].Z = maxZ(tiles) + 1
	return out
}
