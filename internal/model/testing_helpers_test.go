package model

import (
	"math/rand"
	"testing"
)

// fixedRandom replays the same values forever.
type fixedRandom struct {
	values []float64
	next   int
}

func (f *fixedRandom) Float64() float64 {
	v := f.values[f.next%len(f.values)]
	f.next++
	return v
}

type recordingObserver struct {
	added, removed, moved []*Piece
}

func (r *recordingObserver) PieceAdded(p *Piece)   { r.added = append(r.added, p) }
func (r *recordingObserver) PieceRemoved(p *Piece) { r.removed = append(r.removed, p) }
func (r *recordingObserver) PieceMoved(p *Piece)   { r.moved = append(r.moved, p) }

func newTestModel(t *testing.T, fen string) *PositionModel {
	t.Helper()
	m := NewPositionModel(DefaultGeometry(), rand.New(rand.NewSource(7)))
	if fen != "" {
		if err := m.LoadNotation(fen); err != nil {
			t.Fatalf("load %q: %v", fen, err)
		}
	}
	return m
}

func mustPieceAt(t *testing.T, m *PositionModel, s string) *Piece {
	t.Helper()
	p, ok := m.PieceAt(mustSquare(t, s))
	if !ok {
		t.Fatalf("no piece on %s", s)
	}
	return p
}

// checkOccupancy fails the test if the square table and the pieces disagree.
func checkOccupancy(t *testing.T, m *PositionModel) {
	t.Helper()
	seen := make(map[*Piece]Square)
	for i, p := range m.bySquare {
		if p == nil {
			continue
		}
		sq := Square(i)
		if prev, dup := seen[p]; dup {
			t.Fatalf("piece %s stored under %s and %s", p.ID, prev, sq)
		}
		seen[p] = sq
		if p.square != sq {
			t.Fatalf("piece under %s believes it is on %s", sq, p.square)
		}
		if _, ok := m.pieces[p.ID]; !ok {
			t.Fatalf("piece on %s is not registered", sq)
		}
	}
	for _, p := range m.pieces {
		if p.OnBoard() && m.bySquare[p.square] != p {
			t.Fatalf("piece %s claims %s but the square holds something else", p.ID, p.square)
		}
	}
}
