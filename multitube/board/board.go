package board

// Capture is the move/release routing a Board holds for the duration of one
// gesture. It is acquired on press and released exactly once, on release or
// when the owner of the board goes away, whichever comes first.
type Capture struct {
	released bool
	release  func()
}

// Held reports whether the capture is still active.
func (c *Capture) Held() bool { return c != nil && !c.released }

// Release ends the capture. Calling it more than once is a no-op.
func (c *Capture) Release() {
	if c == nil || c.released {
		return
	}
	c.released = true
	if c.release != nil {
		c.release()
	}
}

// Option configures a Board.
type Option func(*Board)

// WithViewportHeight sets the initial viewport height.
func WithViewportHeight(h int) Option {
	return func(b *Board) { b.state.Viewport.Height = max(MinViewportHeight, h) }
}

// WithViewportWidth sets the initial measured viewport width.
func WithViewportWidth(w int) Option {
	return func(b *Board) { b.state.Viewport.Width = max(0, w) }
}

// WithCaptureHook registers fn to be told when a gesture capture is taken
// (true) and dropped (false).
func WithCaptureHook(fn func(held bool)) Option {
	return func(b *Board) { b.onCapture = fn }
}

// Board is the whole state of one dashboard: the url text, the tiles derived
// from it, the viewport and the active gesture. A Board is not safe for
// concurrent use; one goroutine owns it and feeds it events in order.
type Board struct {
	input    string
	autoplay bool
	nextKey  int
	state    State
	capture  *Capture
	rev      uint64

	onCapture func(held bool)
}

// New returns an empty board.
func New(opts ...Option) *Board {
	b := &Board{state: State{Viewport: Viewport{Height: DefaultViewportHeight}}}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Snapshot is a read-only copy of a board for rendering.
type Snapshot struct {
	Tiles    []Tile   `json:"tiles"`
	Viewport Viewport `json:"viewport"`
	Input    string   `json:"input"`
	Autoplay bool     `json:"autoplay"`
	Mode     string   `json:"mode"`
	Handle   Handle   `json:"handle,omitempty"`
	Rev      uint64   `json:"rev"`
}

// Snapshot returns the current board contents.
func (b *Board) Snapshot() Snapshot {
	return Snapshot{
		Tiles:    cloneTiles(b.state.Tiles),
		Viewport: Viewport{Width: b.state.Viewport.Width, Height: b.state.Viewport.EffectiveHeight()},
		Input:    b.input,
		Autoplay: b.autoplay,
		Mode:     b.state.Session.Mode.String(),
		Handle:   b.state.Session.Handle,
		Rev:      b.rev,
	}
}

// Tiles returns the current tile list. Callers must not modify it.
func (b *Board) Tiles() []Tile { return b.state.Tiles }

// Viewport returns the current viewport.
func (b *Board) Viewport() Viewport { return b.state.Viewport }

// Input returns the url text.
func (b *Board) Input() string { return b.input }

// Mode returns the active gesture mode.
func (b *Board) Mode() Mode { return b.state.Session.Mode }

// NextKey returns the key the next new tile will receive.
func (b *Board) NextKey() int { return b.nextKey }

// Rev increases every time the board changes in a way a renderer can see.
func (b *Board) Rev() uint64 { return b.rev }

// Capture returns the capture of the active gesture, or nil when idle.
func (b *Board) Capture() *Capture {
	if !b.capture.Held() {
		return nil
	}
	return b.capture
}

func (b *Board) bump() { b.rev++ }

// resync re-derives the tile list after the text, the viewport height or
// the key counter changed. A tile gesture follows its tile to its new
// position and ends when the tile is gone.
func (b *Board) resync() {
	tiles, next := Sync(b.input, b.state.Tiles, b.nextKey, b.state.Viewport)
	b.nextKey = next
	if sameList(tiles, b.state.Tiles) {
		return
	}
	b.state.Tiles = tiles
	b.bump()
	if !b.state.Session.targetsTile() {
		return
	}
	if i := b.state.targetIndex(); i >= 0 {
		b.state.Session.Target = i
	} else {
		b.capture.Release()
	}
}

func sameList(a, b []Tile) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

// SetInput replaces the url text.
func (b *Board) SetInput(text string) {
	if text == b.input {
		return
	}
	b.input = text
	b.bump()
	b.resync()
}

// SetViewportWidth records the measured width of the viewport.
func (b *Board) SetViewportWidth(w int) {
	w = max(0, w)
	if w == b.state.Viewport.Width {
		return
	}
	b.state.Viewport.Width = w
	b.bump()
}

// SetAutoplay toggles the flag forwarded to every embedded player.
func (b *Board) SetAutoplay(on bool) {
	if on == b.autoplay {
		return
	}
	b.autoplay = on
	b.bump()
}

// Autoplay returns the autoplay flag.
func (b *Board) Autoplay() bool { return b.autoplay }

// ClearAll empties the text and the tiles and restarts keys at zero.
func (b *Board) ClearAll() {
	b.capture.Release()
	b.input = ""
	b.state.Tiles = nil
	b.nextKey = 0
	b.bump()
}

// Arrange lays every tile out on a grid.
func (b *Board) Arrange() {
	if len(b.state.Tiles) == 0 || b.state.Session.Active() {
		return
	}
	b.state.Tiles = Arrange(b.state.Tiles, b.state.Viewport)
	b.bump()
}

// Remove deletes the tile with key from the url text and re-syncs.
// It reports whether such a tile existed.
func (b *Board) Remove(key int) bool {
	for _, t := range b.state.Tiles {
		if t.Key == key {
			b.SetInput(RemoveFromInput(b.input, t.ID))
			return true
		}
	}
	return false
}

// PressTile starts dragging the tile at index.
func (b *Board) PressTile(index int, p Point) bool {
	return b.press(PressTile(b.state, index, p))
}

// PressHandle starts resizing the tile at index from handle h.
func (b *Board) PressHandle(index int, h Handle, p Point) bool {
	return b.press(PressHandle(b.state, index, h, p))
}

// PressViewport starts resizing the viewport.
func (b *Board) PressViewport(p Point) bool {
	return b.press(PressViewport(b.state, p))
}

func (b *Board) press(next State) bool {
	if b.state.Session.Active() || !next.Session.Active() {
		return false
	}
	b.state = next
	b.bump()
	c := &Capture{}
	c.release = func() {
		b.state = Release(b.state)
		b.bump()
		if b.onCapture != nil {
			b.onCapture(false)
		}
	}
	b.capture = c
	if b.onCapture != nil {
		b.onCapture(true)
	}
	return true
}

// Move feeds a pointer position to the active gesture. Without a held
// capture it does nothing.
func (b *Board) Move(p Point) {
	if !b.capture.Held() {
		return
	}
	prevHeight := b.state.Viewport.Height
	next := Move(b.state, p)
	b.state = next
	b.bump()
	if next.Viewport.Height != prevHeight {
		b.resync()
	}
}

// Release ends the active gesture, if any.
func (b *Board) Release() {
	b.capture.Release()
}

// Close drops any gesture still in progress. Owners call it when the event
// source goes away.
func (b *Board) Close() {
	b.capture.Release()
}
