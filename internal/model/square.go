package model

import "fmt"

const files = "abcdefgh"

// Square indexes one of the 64 board cells, a1 = 0, h1 = 7, a8 = 56, h8 = 63.
type Square uint8

// NoSquare marks an absent square. MoveToSquare treats it as "snap back".
const NoSquare Square = 0xFF

func NewSquare(file, rank int) (Square, bool) {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare, false
	}
	return Square(rank*8 + file), true
}

// ParseSquare converts algebraic notation such as "e4".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, fmt.Errorf("%w: %q", ErrSquareOutOfRange, s)
	}
	sq, _ := NewSquare(int(s[0]-'a'), int(s[1]-'1'))
	return sq, nil
}

func (s Square) Valid() bool { return s < 64 }

// File is 0 for the a-file.
func (s Square) File() int { return int(s) % 8 }

// Rank is 0 for the first rank.
func (s Square) Rank() int { return int(s) / 8 }

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return fmt.Sprintf("%c%d", files[s.File()], s.Rank()+1)
}

func (s Square) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrSquareOutOfRange, s)
	}
	return []byte(s.String()), nil
}

func (s *Square) UnmarshalText(b []byte) error {
	sq, err := ParseSquare(string(b))
	if err != nil {
		return err
	}
	*s = sq
	return nil
}

// AllSquares lists a1..h8 in index order.
func AllSquares() []Square {
	out := make([]Square, 64)
	for i := range out {
		out[i] = Square(i)
	}
	return out
}
