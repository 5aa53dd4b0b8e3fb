package model

import (
	"fmt"

	"github.com/google/uuid"
)

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

// letter returns the lowercase notation letter for the type.
func (t PieceType) letter() byte {
	switch t {
	case King:
		return 'k'
	case Queen:
		return 'q'
	case Rook:
		return 'r'
	case Bishop:
		return 'b'
	case Knight:
		return 'n'
	case Pawn:
		return 'p'
	}
	return 0
}

var pieceTypeByLetter = map[byte]PieceType{
	'k': King,
	'q': Queen,
	'r': Rook,
	'b': Bishop,
	'n': Knight,
	'p': Pawn,
}

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Letter encodes type and color the way placement text does: white is
// uppercase, black lowercase.
func Letter(t PieceType, c Color) (byte, error) {
	l := t.letter()
	if l == 0 {
		return 0, fmt.Errorf("%w: unknown piece type %q", ErrInvalidNotation, t)
	}
	switch c {
	case White:
		return l - 'a' + 'A', nil
	case Black:
		return l, nil
	}
	return 0, fmt.Errorf("%w: unknown color %q", ErrInvalidNotation, c)
}

// Piece is one physical piece in the scene. Type and color never change;
// placement is owned by the PositionModel that created it.
type Piece struct {
	ID    uuid.UUID
	Type  PieceType
	Color Color

	square   Square
	position Vec3
	// baseY is the height the piece rests at when not lifted or animating.
	baseY float64
}

func newPiece(t PieceType, c Color, baseY float64) *Piece {
	return &Piece{
		ID:     uuid.New(),
		Type:   t,
		Color:  c,
		square: NoSquare,
		baseY:  baseY,
	}
}

// Square reports the square the piece occupies, if it is on the board.
func (p *Piece) Square() (Square, bool) {
	return p.square, p.square.Valid()
}

func (p *Piece) OnBoard() bool { return p.square.Valid() }

// Position is the displayed world position, including lift and arc offsets.
func (p *Piece) Position() Vec3 { return p.position }

func (p *Piece) RestingHeight() float64 { return p.baseY }

// Parent makes a piece the top-level node of its own pick hierarchy.
func (p *Piece) Parent() Node { return nil }

func (p *Piece) String() string {
	return fmt.Sprintf("%s %s@%s", p.Color, p.Type, p.square)
}
