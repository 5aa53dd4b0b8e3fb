package model

import "errors"

var (
	// ErrInvalidNotation is returned for malformed placement text. A load that
	// fails with it leaves the current position untouched.
	ErrInvalidNotation = errors.New("invalid notation")
	// ErrSquareOutOfRange means a caller produced a square outside the board.
	// Every square producer in this package validates, so seeing it is a bug.
	ErrSquareOutOfRange = errors.New("square out of range")
)
