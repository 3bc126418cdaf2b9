package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/portal-multitube/multitube/board"
)

const (
	readLimit    = 1 << 20
	pongWait     = 120 * time.Second
	pingInterval = 25 * time.Second
	writeWait    = 10 * time.Second
	sendBuffer   = 16
)

// clientMessage is every frame the page sends. Fields not used by a type
// are left zero.
type clientMessage struct {
	Type   string  `json:"type"`
	Text   string  `json:"text"`
	Width  float64 `json:"width"`
	On     bool    `json:"on"`
	Key    int     `json:"key"`
	Index  int     `json:"index"`
	Handle string  `json:"handle"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

func (m clientMessage) point() board.Point {
	return board.Point{X: int(math.Round(m.X)), Y: int(math.Round(m.Y))}
}

type stateFrame struct {
	Type           string       `json:"type"`
	Tiles          []board.Tile `json:"tiles"`
	ViewportHeight int          `json:"viewportHeight"`
	ViewportWidth  int          `json:"viewportWidth"`
	Input          string       `json:"input"`
	Autoplay       bool         `json:"autoplay"`
	Mode           string       `json:"mode"`
	Handle         board.Handle `json:"handle,omitempty"`
	Rev            uint64       `json:"rev"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

var errUnknownType = errors.New("unknown message type")

// applyMessage feeds one client frame to b.
func applyMessage(b *board.Board, m clientMessage) error {
	switch m.Type {
	case "ka":
	case "input":
		b.SetInput(m.Text)
	case "viewport":
		b.SetViewportWidth(int(math.Round(m.Width)))
	case "autoplay":
		b.SetAutoplay(m.On)
	case "clear":
		b.ClearAll()
	case "arrange":
		b.Arrange()
	case "remove":
		b.Remove(m.Key)
	case "press-tile":
		b.PressTile(m.Index, m.point())
	case "press-handle":
		h, ok := board.ParseHandle(m.Handle)
		if !ok {
			return fmt.Errorf("invalid handle %q", m.Handle)
		}
		b.PressHandle(m.Index, h, m.point())
	case "press-viewport":
		b.PressViewport(m.point())
	case "move":
		b.Move(m.point())
	case "release":
		b.Release()
	default:
		return fmt.Errorf("%w: %q", errUnknownType, m.Type)
	}
	return nil
}

func newStateFrame(s board.Snapshot) stateFrame {
	tiles := s.Tiles
	if tiles == nil {
		tiles = []board.Tile{}
	}
	return stateFrame{
		Type:           "state",
		Tiles:          tiles,
		ViewportHeight: s.Viewport.Height,
		ViewportWidth:  s.Viewport.Width,
		Input:          s.Input,
		Autoplay:       s.Autoplay,
		Mode:           s.Mode,
		Handle:         s.Handle,
		Rev:            s.Rev,
	}
}

// session is one websocket connection and the board it owns. The read loop
// is the only goroutine touching the board.
type session struct {
	id    string
	hub   *hub
	conn  *websocket.Conn
	board *board.Board
	send  chan []byte

	sentRev uint64
	sentAny bool
}

// hub tracks live sessions so shutdown can close and wait for them.
type hub struct {
	mu       sync.Mutex
	sessions map[*session]struct{}
	wg       sync.WaitGroup
	upgrader websocket.Upgrader
}

func newHub(checkOrigin func(*http.Request) bool) *hub {
	return &hub{
		sessions: make(map[*session]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

func (h *hub) add(s *session) {
	h.mu.Lock()
	h.sessions[s] = struct{}{}
	h.mu.Unlock()
}

func (h *hub) remove(s *session) {
	h.mu.Lock()
	delete(h.sessions, s)
	h.mu.Unlock()
}

// Len returns the number of live sessions.
func (h *hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// closeAll asks every session to go away.
func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for s := range h.sessions {
		_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_ = s.conn.Close()
	}
}

// wait blocks until every session goroutine returned or timeout passed.
func (h *hub) wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (h *hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("[multitube] websocket upgrade failed")
		return
	}
	s := &session{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	s.board = board.New(board.WithCaptureHook(func(held bool) {
		log.Debug().Str("session", s.id).Bool("held", held).Msg("[multitube] pointer capture")
	}))

	h.add(s)
	h.wg.Add(2)
	log.Info().Str("session", s.id).Str("remote", r.RemoteAddr).Msg("[multitube] session opened")

	go s.writePump()
	go s.readPump()
}

func (s *session) readPump() {
	defer func() {
		s.board.Close()
		s.hub.remove(s)
		close(s.send)
		_ = s.conn.Close()
		log.Info().Str("session", s.id).Msg("[multitube] session closed")
		s.hub.wg.Done()
	}()
	s.conn.SetReadLimit(readLimit)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	s.flush()
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("session", s.id).Msg("[multitube] read failed")
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))

		var m clientMessage
		if err := json.Unmarshal(data, &m); err != nil {
			s.reportError(fmt.Errorf("decode message: %w", err))
			continue
		}
		if err := applyMessage(s.board, m); err != nil {
			s.reportError(err)
			continue
		}
		s.flush()
	}
}

// flush sends a state frame when the board changed since the last one.
func (s *session) flush() {
	rev := s.board.Rev()
	if s.sentAny && rev == s.sentRev {
		return
	}
	b, err := json.Marshal(newStateFrame(s.board.Snapshot()))
	if err != nil {
		log.Error().Err(err).Str("session", s.id).Msg("[multitube] encode state")
		return
	}
	s.sentRev, s.sentAny = rev, true
	s.enqueue(b)
}

func (s *session) reportError(err error) {
	log.Warn().Err(err).Str("session", s.id).Msg("[multitube] bad frame")
	b, _ := json.Marshal(errorFrame{Type: "error", Error: err.Error()})
	s.enqueue(b)
}

// enqueue hands msg to the writer. A full buffer drops the oldest frame;
// state frames are complete snapshots, so only the newest matters.
func (s *session) enqueue(msg []byte) {
	select {
	case s.send <- msg:
		return
	default:
	}
	select {
	case <-s.send:
	default:
	}
	select {
	case s.send <- msg:
	default:
	}
}

func (s *session) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
		s.hub.wg.Done()
	}()
	for {
		select {
		case msg, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
