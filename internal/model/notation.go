package model

import (
	"fmt"
	"strings"
)

const (
	StartPlacement = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR"
	EmptyPlacement = "8/8/8/8/8/8/8/8"
	DefaultFEN     = StartPlacement + " w KQkq - 0 1"
)

// trailing field defaults: side to move, castling, en passant, half-move, full-move.
var defaultTrailing = [5]string{"w", "-", "-", "0", "1"}

// Placement is one occupied square read from placement text.
type Placement struct {
	Square Square    `json:"square"`
	Type   PieceType `json:"type"`
	Color  Color     `json:"color"`
}

// ParseNotation reads the placement field of a notation line. Records come
// out row-major: rank 8 first, a-file to h-file within a rank. Trailing
// fields are ignored here; see MergePlacement for how they are kept.
func ParseNotation(text string) ([]Placement, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: missing piece placement", ErrInvalidNotation)
	}
	rows := strings.Split(fields[0], "/")
	if len(rows) != 8 {
		return nil, fmt.Errorf("%w: expected 8 ranks, got %d", ErrInvalidNotation, len(rows))
	}

	out := make([]Placement, 0, 32)
	for rowIndex, row := range rows {
		rank := 7 - rowIndex
		file := 0
		for i := 0; i < len(row); i++ {
			c := row[i]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				if file > 8 {
					return nil, fmt.Errorf("%w: rank %d has more than 8 files", ErrInvalidNotation, rank+1)
				}
				continue
			}
			lower := c | 0x20
			pt, ok := pieceTypeByLetter[lower]
			if !ok {
				return nil, fmt.Errorf("%w: unexpected symbol %q", ErrInvalidNotation, c)
			}
			if file > 7 {
				return nil, fmt.Errorf("%w: rank %d has more than 8 files", ErrInvalidNotation, rank+1)
			}
			color := Black
			if c != lower {
				color = White
			}
			sq, _ := NewSquare(file, rank)
			out = append(out, Placement{Square: sq, Type: pt, Color: color})
			file++
		}
		if file != 8 {
			return nil, fmt.Errorf("%w: rank %d does not have 8 files", ErrInvalidNotation, rank+1)
		}
	}
	return out, nil
}

// SerializePlacement writes records back as placement text with run-length
// empty files. Later records win when two share a square.
func SerializePlacement(records []Placement) (string, error) {
	var grid [64]byte
	for _, r := range records {
		if !r.Square.Valid() {
			return "", fmt.Errorf("%w: %d", ErrSquareOutOfRange, r.Square)
		}
		l, err := Letter(r.Type, r.Color)
		if err != nil {
			return "", err
		}
		grid[r.Square] = l
	}

	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			l := grid[rank*8+file]
			if l == 0 {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(l)
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	return sb.String(), nil
}

// ExtractPlacement returns the placement field for the editor, or "start"
// when the line is blank or already says start.
func ExtractPlacement(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) == 0 || fields[0] == "start" {
		return "start"
	}
	return fields[0]
}

// MergePlacement builds a full notation line from an editor placement and
// the trailing fields of the current line. Missing trailing fields take
// their defaults, an empty placement means an empty board and "start" means
// the start position. It never fails.
func MergePlacement(placement, currentFEN string) string {
	switch placement = strings.TrimSpace(placement); placement {
	case "":
		placement = EmptyPlacement
	case "start":
		placement = StartPlacement
	}
	var rest []string
	if fields := strings.Fields(currentFEN); len(fields) > 1 {
		rest = fields[1:]
	}
	parts := []string{placement}
	for i, def := range defaultTrailing {
		if i < len(rest) {
			parts = append(parts, rest[i])
		} else {
			parts = append(parts, def)
		}
	}
	return strings.Join(parts, " ")
}

// NormalizeFEN trims a notation line and substitutes the start position for
// a blank one.
func NormalizeFEN(fen string) string {
	fen = strings.TrimSpace(fen)
	if fen == "" {
		return DefaultFEN
	}
	return fen
}
