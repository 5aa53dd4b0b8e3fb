package service

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/benbeisheim/boardview-backend/internal/model"
	"github.com/benbeisheim/boardview-backend/internal/ws"
)

// Conn is the part of a websocket connection a session writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// viewerConn serializes writes to one connection; a websocket allows a single
// writer at a time and the ticker, other viewers and the read loop all write.
type viewerConn struct {
	conn Conn
	mu   sync.Mutex
}

func (v *viewerConn) write(msg ws.Message) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.conn.WriteJSON(msg)
}

func (v *viewerConn) close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.conn.Close()
}

// The connections watching a specific board
type BoardConnections struct {
	connections map[string]*viewerConn // viewerID -> connection
	mu          sync.RWMutex
}

func NewBoardConnections() *BoardConnections {
	return &BoardConnections{
		connections: make(map[string]*viewerConn),
	}
}

// Session is one live board: a position model, its drag controller and the
// viewers watching it. Every exported method takes the session lock, so the
// model underneath only ever sees one caller at a time and events apply in
// arrival order. A drag belongs to the viewer who started it.
type Session struct {
	ID          string
	mu          sync.Mutex
	fen         string
	model       *model.PositionModel
	drag        *model.DragController
	dragOwner   string
	clock       *model.FrameClock
	scene       *clientScene
	frame       *frameRecorder
	orbit       bool
	lastActive  time.Time
	onLoad      func(fen string)
	connections *BoardConnections
}

func NewSession(id string, geo model.BoardGeometry, maxFrameDelta time.Duration) *Session {
	s := &Session{
		ID:          id,
		model:       model.NewPositionModel(geo, rand.New(rand.NewSource(time.Now().UnixNano()))),
		clock:       model.NewFrameClock(maxFrameDelta),
		scene:       &clientScene{},
		frame:       newFrameRecorder(),
		orbit:       true,
		lastActive:  time.Now(),
		connections: NewBoardConnections(),
	}
	s.scene.model = s.model
	s.model.SetObserver(s.frame)
	s.drag = model.NewDragController(s.model, s.scene, s)
	return s
}

// SetOrbitEnabled implements model.Orbit. The client owns the camera, so the
// change is forwarded in the next frame.
func (s *Session) SetOrbitEnabled(enabled bool) {
	if s.orbit == enabled {
		return
	}
	s.orbit = enabled
	s.frame.controls(enabled)
}

// Load replaces the position. A malformed line is rejected before anything
// changes, including any drag in progress.
func (s *Session) Load(fen string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(fen)
}

// ApplyEditor loads the editor's placement, keeping the current trailing
// fields. It returns the merged notation line.
func (s *Session) ApplyEditor(placement string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := model.MergePlacement(placement, s.fen)
	if err := s.loadLocked(merged); err != nil {
		return "", err
	}
	return merged, nil
}

func (s *Session) loadLocked(fen string) error {
	fen = model.NormalizeFEN(fen)
	records, err := model.ParseNotation(fen)
	if err != nil {
		return err
	}
	s.touch()
	s.drag.Cancel()
	s.dragOwner = ""
	if err := s.model.Load(records); err != nil {
		return err
	}
	s.fen = fen
	s.frame.reset()
	if s.onLoad != nil {
		s.onLoad(fen)
	}
	s.broadcast(ws.MessageTypeSnapshot, s.snapshot())
	return nil
}

// FEN is the last notation line that loaded successfully.
func (s *Session) FEN() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fen
}

// EditorPlacement is what the 2D editor opens with: the board as it stands
// now, including pieces moved by dragging.
func (s *Session) EditorPlacement() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.PlacementString()
}

// PointerDown starts a drag owned by viewerID if the hits name a piece.
func (s *Session) PointerDown(viewerID string, ray model.Ray, hits []ws.Hit) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	s.scene.hits = hits
	picked := s.drag.PointerDown(ray)
	s.scene.hits = nil
	if picked {
		s.dragOwner = viewerID
	}
	s.flush()
	return picked
}

// PointerMove, PointerUp and CancelDrag only act on a drag viewerID owns.
func (s *Session) PointerMove(viewerID string, ray model.Ray) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	if !s.ownsDrag(viewerID) {
		return
	}
	s.drag.PointerMove(ray)
	s.flush()
}

func (s *Session) PointerUp(viewerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	if !s.ownsDrag(viewerID) {
		return nil
	}
	err := s.drag.PointerUp()
	s.dragOwner = ""
	s.flush()
	return err
}

func (s *Session) CancelDrag(viewerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	if !s.ownsDrag(viewerID) {
		return
	}
	s.cancelLocked()
}

func (s *Session) ownsDrag(viewerID string) bool {
	return s.drag.State() == model.Dragging && s.dragOwner == viewerID
}

func (s *Session) cancelLocked() {
	s.drag.Cancel()
	s.dragOwner = ""
	s.flush()
}

// Tick advances animations by the time since the last tick and pushes the
// resulting frame to viewers.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.model.Advance(s.clock.Tick())
	s.flush()
}

func (s *Session) Snapshot() ws.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// SquareInfo reports who stands on sq.
func (s *Session) SquareInfo(sq model.Square) (ws.PieceView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.model.PieceAt(sq)
	if !ok {
		return ws.PieceView{}, false
	}
	return ws.NewPieceView(p), true
}

// Idle reports whether nobody has watched or touched the board for at
// least after.
func (s *Session) Idle(now time.Time, after time.Duration) bool {
	if s.Viewers() > 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActive) >= after
}

// touch records activity. Callers hold mu.
func (s *Session) touch() { s.lastActive = time.Now() }

func (s *Session) snapshot() ws.Snapshot {
	pieces := s.model.Pieces()
	views := make([]ws.PieceView, 0, len(pieces))
	for _, p := range pieces {
		views = append(views, ws.NewPieceView(p))
	}
	return ws.Snapshot{
		BoardID:         s.ID,
		FEN:             s.fen,
		Placement:       s.model.PlacementString(),
		ControlsEnabled: s.orbit,
		Dragging:        s.drag.State() == model.Dragging,
		Pieces:          views,
	}
}

// flush sends whatever the model reported since the last flush. Callers hold mu.
func (s *Session) flush() {
	f := s.frame.take()
	if f.Empty() {
		return
	}
	s.broadcast(ws.MessageTypeFrame, f)
}

// RegisterConnection adds a viewer and sends it the current snapshot before
// any frame.
func (s *Session) RegisterConnection(viewerID string, conn Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	vc := &viewerConn{conn: conn}
	s.connections.mu.Lock()
	if _, exists := s.connections.connections[viewerID]; exists {
		s.connections.mu.Unlock()
		return fmt.Errorf("%w: viewer %s already connected", ErrNotAuthorized, viewerID)
	}
	s.connections.connections[viewerID] = vc
	s.connections.mu.Unlock()
	s.touch()
	log.Printf("board %s: registered connection %p for viewer %s", s.ID, conn, viewerID)

	msg, err := ws.NewMessage(ws.MessageTypeSnapshot, s.snapshot())
	if err != nil {
		return err
	}
	return vc.write(msg)
}

// UnregisterConnection drops the viewer and cancels a drag it left behind.
func (s *Session) UnregisterConnection(viewerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connections.mu.Lock()
	if _, exists := s.connections.connections[viewerID]; exists {
		log.Printf("board %s: unregistering viewer %s", s.ID, viewerID)
		delete(s.connections.connections, viewerID)
	}
	s.connections.mu.Unlock()

	s.touch()
	if s.ownsDrag(viewerID) {
		s.cancelLocked()
	}
}

// Close disconnects every viewer.
func (s *Session) Close() {
	s.connections.mu.Lock()
	conns := s.connections.connections
	s.connections.connections = make(map[string]*viewerConn)
	s.connections.mu.Unlock()

	for _, vc := range conns {
		vc.close()
	}
}

func (s *Session) Viewers() int {
	s.connections.mu.RLock()
	defer s.connections.mu.RUnlock()
	return len(s.connections.connections)
}

// Send writes one message to a single viewer.
func (s *Session) Send(viewerID string, t ws.MessageType, payload interface{}) error {
	s.connections.mu.RLock()
	vc, ok := s.connections.connections[viewerID]
	s.connections.mu.RUnlock()
	if !ok {
		return nil
	}
	msg, err := ws.NewMessage(t, payload)
	if err != nil {
		return err
	}
	return vc.write(msg)
}

func (s *Session) broadcast(t ws.MessageType, payload interface{}) {
	msg, err := ws.NewMessage(t, payload)
	if err != nil {
		log.Printf("board %s: failed to marshal %s: %v", s.ID, t, err)
		return
	}

	s.connections.mu.RLock()
	targets := make(map[string]*viewerConn, len(s.connections.connections))
	for viewerID, vc := range s.connections.connections {
		targets[viewerID] = vc
	}
	s.connections.mu.RUnlock()

	for viewerID, vc := range targets {
		if err := vc.write(msg); err != nil {
			log.Printf("board %s: failed to send %s to viewer %s: %v", s.ID, t, viewerID, err)
			s.connections.mu.Lock()
			if s.connections.connections[viewerID] == vc {
				delete(s.connections.connections, viewerID)
			}
			s.connections.mu.Unlock()
		}
	}
}

// clientScene answers pick queries with the hits the client reported for
// the current pointer-down.
type clientScene struct {
	model *model.PositionModel
	hits  []ws.Hit
}

func (c *clientScene) Intersect(model.Ray) []model.Node {
	nodes := make([]model.Node, 0, len(c.hits))
	for _, h := range c.hits {
		p, ok := c.model.Piece(h.PieceID)
		switch {
		case !ok:
			nodes = append(nodes, model.Part{Name: h.Part})
		case h.Part == "":
			nodes = append(nodes, p)
		default:
			nodes = append(nodes, model.Part{Name: h.Part, Owner: p})
		}
	}
	return nodes
}

// frameRecorder collects model events between flushes.
type frameRecorder struct {
	added   []*model.Piece
	removed []uuid.UUID
	moved   map[uuid.UUID]*model.Piece
	order   []uuid.UUID
	orbit   *bool
}

func newFrameRecorder() *frameRecorder {
	return &frameRecorder{moved: make(map[uuid.UUID]*model.Piece)}
}

func (r *frameRecorder) PieceAdded(p *model.Piece) { r.added = append(r.added, p) }

func (r *frameRecorder) PieceRemoved(p *model.Piece) {
	r.removed = append(r.removed, p.ID)
	delete(r.moved, p.ID)
}

func (r *frameRecorder) PieceMoved(p *model.Piece) {
	if _, seen := r.moved[p.ID]; !seen {
		r.order = append(r.order, p.ID)
	}
	r.moved[p.ID] = p
}

func (r *frameRecorder) controls(enabled bool) { r.orbit = &enabled }

func (r *frameRecorder) take() ws.Frame {
	var f ws.Frame
	for _, p := range r.added {
		f.Added = append(f.Added, ws.NewPieceView(p))
	}
	f.Removed = r.removed
	for _, id := range r.order {
		if p, ok := r.moved[id]; ok {
			f.Moved = append(f.Moved, ws.NewPieceView(p))
		}
	}
	f.ControlsEnabled = r.orbit
	r.reset()
	return f
}

func (r *frameRecorder) reset() {
	r.added = nil
	r.removed = nil
	r.moved = make(map[uuid.UUID]*model.Piece)
	r.order = nil
	r.orbit = nil
}
