// Package game contains the pure board engines for the supported variants.
// Engines hold no state and perform no I/O; the room managers own all rooms
// and call into this package while holding their own locks.
package game

import "errors"

// Variant identifiers. Room registries and broadcast groups are namespaced
// by these values.
const (
	VariantTicTacToe = "tictactoe"
	VariantConnect4  = "connect4"
)

// ErrIllegalMove is returned by Apply when the position is out of range or the
// target cell (or column) cannot take a mark.
var ErrIllegalMove = errors.New("illegal move")

// Outcome describes a terminal board: a winning mark with the cells that form
// the line, or the variant's draw sentinel with no line.
type Outcome struct {
	Winner string `json:"winner"`
	Line   []int  `json:"line"`
}

// Engine is a pure rules engine for one game variant. Boards are flat slices
// of cell values; the empty string marks a free cell.
type Engine interface {
	// Variant returns the variant identifier.
	Variant() string
	// NewBoard returns a fresh all-empty board.
	NewBoard() []string
	// Marks returns the two player marks in join order: the first joiner
	// receives Marks()[0].
	Marks() [2]string
	// DrawMark returns the sentinel reported as the winner of a drawn round.
	DrawMark() string
	// IsLegal reports whether a mark may be placed at pos.
	IsLegal(board []string, pos int) bool
	// Apply places mark at pos, mutating board, and returns the index of the
	// cell the mark landed in.
	Apply(board []string, pos int, mark string) (int, error)
	// Outcome scans the board in the variant's fixed order and reports the
	// terminal state, if any.
	Outcome(board []string) (Outcome, bool)
	// Next returns the other mark.
	Next(mark string) string
	// TimedTurns reports whether turns in this variant are held against a
	// timeout.
	TimedTurns() bool
}

// ByVariant returns the engine for the given variant identifier.
func ByVariant(variant string) (Engine, bool) {
	switch variant {
	case VariantTicTacToe:
		return TicTacToe{}, true
	case VariantConnect4:
		return Connect4{}, true
	default:
		return nil, false
	}
}
