package model

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/exp/maps"
)

// Observer hears about scene-visible changes. Callbacks run synchronously on
// the goroutine mutating the model.
type Observer interface {
	PieceAdded(p *Piece)
	PieceRemoved(p *Piece)
	PieceMoved(p *Piece)
}

type nopObserver struct{}

func (nopObserver) PieceAdded(*Piece)   {}
func (nopObserver) PieceRemoved(*Piece) {}
func (nopObserver) PieceMoved(*Piece)   {}

// DropOptions controls how a piece travels to an off-board spot.
type DropOptions struct {
	Animate  bool
	Duration float64
}

// PositionModel owns every piece in the scene and the square -> piece
// occupancy. A piece is stored under at most one square, and a piece reports
// a square only while it is stored under it. It is not safe for concurrent
// use.
type PositionModel struct {
	geo      BoardGeometry
	squares  *SquareMap
	table    *TablePolicy
	anim     *Animator
	observer Observer

	bySquare [64]*Piece
	pieces   map[uuid.UUID]*Piece
}

func NewPositionModel(g BoardGeometry, rng Random) *PositionModel {
	return &PositionModel{
		geo:      g,
		squares:  NewSquareMap(g),
		table:    NewTablePolicy(g, rng),
		anim:     NewAnimator(),
		observer: nopObserver{},
		pieces:   make(map[uuid.UUID]*Piece),
	}
}

func (m *PositionModel) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	m.observer = o
}

func (m *PositionModel) Geometry() BoardGeometry { return m.geo }
func (m *PositionModel) Squares() *SquareMap     { return m.squares }
func (m *PositionModel) Table() *TablePolicy     { return m.table }
func (m *PositionModel) Animator() *Animator     { return m.anim }

// LoadNotation parses text and rebuilds the position from it. On a parse
// error nothing changes.
func (m *PositionModel) LoadNotation(text string) error {
	records, err := ParseNotation(text)
	if err != nil {
		return err
	}
	return m.Load(records)
}

// Load replaces every piece with fresh ones built from records, placed in
// input order.
func (m *PositionModel) Load(records []Placement) error {
	for _, r := range records {
		if !r.Square.Valid() {
			return fmt.Errorf("%w: %d", ErrSquareOutOfRange, r.Square)
		}
	}
	m.Clear()
	for _, r := range records {
		p := newPiece(r.Type, r.Color, m.geo.PieceBaseY())
		m.pieces[p.ID] = p
		m.observer.PieceAdded(p)
		if _, err := m.Place(p, r.Square); err != nil {
			return err
		}
	}
	return nil
}

// Clear drops every piece and pending animation.
func (m *PositionModel) Clear() {
	m.anim.Clear()
	for _, p := range m.sortedPieces() {
		p.square = NoSquare
		m.observer.PieceRemoved(p)
	}
	m.bySquare = [64]*Piece{}
	m.pieces = make(map[uuid.UUID]*Piece)
}

// Place stands p on sq. A previous occupant is unbound from the square and
// returned; it stays in the scene where it was and the caller decides where
// it goes.
func (m *PositionModel) Place(p *Piece, sq Square) (*Piece, error) {
	center, ok := m.squares.ToWorld(sq)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrSquareOutOfRange, sq)
	}
	m.adopt(p)
	m.unbind(p)
	evicted := m.bySquare[sq]
	if evicted != nil {
		evicted.square = NoSquare
	}
	m.anim.Stop(p)
	p.baseY = m.geo.PieceBaseY()
	p.square = sq
	m.bySquare[sq] = p
	m.setPosition(p, Vec3{X: center.X, Y: p.baseY, Z: center.Z})
	return evicted, nil
}

// MoveToSquare is Place for an interactive move. NoSquare leaves p alone.
// Whatever stood on sq is sent off the board with an arc animation.
func (m *PositionModel) MoveToSquare(p *Piece, sq Square) error {
	if sq == NoSquare {
		return nil
	}
	if !sq.Valid() {
		return fmt.Errorf("%w: %d", ErrSquareOutOfRange, sq)
	}
	if occupant := m.bySquare[sq]; occupant != nil && occupant != p {
		m.DropOffBoard(occupant, m.table.RandomPoint(), DropOptions{Animate: true})
	}
	_, err := m.Place(p, sq)
	return err
}

// DropOffBoard unbinds p from its square and sends it to point, snapped onto
// the table clear of the board.
func (m *PositionModel) DropOffBoard(p *Piece, point Vec3, opts DropOptions) {
	m.adopt(p)
	m.unbind(p)
	dest := m.table.Snap(point)
	if opts.Animate {
		d := opts.Duration
		if d == 0 {
			d = DefaultAnimationDuration
		}
		m.anim.Start(p, dest, d, DefaultArcHeight)
		return
	}
	m.anim.Stop(p)
	p.baseY = dest.Y
	m.setPosition(p, dest)
}

// RemoveFromSquare unbinds and returns the occupant of sq. The piece stays
// in the scene off the board.
func (m *PositionModel) RemoveFromSquare(sq Square) (*Piece, bool) {
	if !sq.Valid() {
		return nil, false
	}
	p := m.bySquare[sq]
	if p == nil {
		return nil, false
	}
	m.unbind(p)
	return p, true
}

// Advance steps pending animations by dt seconds.
func (m *PositionModel) Advance(dt float64) {
	for _, p := range m.anim.Advance(dt) {
		m.observer.PieceMoved(p)
	}
}

func (m *PositionModel) PieceAt(sq Square) (*Piece, bool) {
	if !sq.Valid() {
		return nil, false
	}
	p := m.bySquare[sq]
	return p, p != nil
}

func (m *PositionModel) Piece(id uuid.UUID) (*Piece, bool) {
	p, ok := m.pieces[id]
	return p, ok
}

// Pieces lists every piece in the scene, on-board pieces first in square
// order, then off-board pieces by id.
func (m *PositionModel) Pieces() []*Piece {
	return m.sortedPieces()
}

func (m *PositionModel) Len() int { return len(m.pieces) }

// Placements describes the on-board pieces in square order.
func (m *PositionModel) Placements() []Placement {
	var out []Placement
	for sq, p := range m.bySquare {
		if p != nil {
			out = append(out, Placement{Square: Square(sq), Type: p.Type, Color: p.Color})
		}
	}
	return out
}

// PlacementString serializes the current on-board occupancy.
func (m *PositionModel) PlacementString() string {
	s, err := SerializePlacement(m.Placements())
	if err != nil {
		// Placements only yields valid squares and known types.
		panic(err)
	}
	return s
}

func (m *PositionModel) adopt(p *Piece) {
	if _, ok := m.pieces[p.ID]; ok {
		return
	}
	m.pieces[p.ID] = p
	m.observer.PieceAdded(p)
}

func (m *PositionModel) unbind(p *Piece) {
	if sq, ok := p.Square(); ok && m.bySquare[sq] == p {
		m.bySquare[sq] = nil
	}
	p.square = NoSquare
}

func (m *PositionModel) setPosition(p *Piece, pos Vec3) {
	p.position = pos
	m.observer.PieceMoved(p)
}

func (m *PositionModel) sortedPieces() []*Piece {
	out := maps.Values(m.pieces)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.square != b.square {
			return a.square < b.square
		}
		return a.ID.String() < b.ID.String()
	})
	return out
}
