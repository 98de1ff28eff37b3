package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect4Gravity(t *testing.T) {
	e := Connect4{}
	board := e.NewBoard()

	cell, err := e.Apply(board, 3, MarkRed)
	require.NoError(t, err)
	assert.Equal(t, CellIndex(5, 3), cell)

	cell, err = e.Apply(board, 3, MarkYellow)
	require.NoError(t, err)
	assert.Equal(t, CellIndex(4, 3), cell)

	assert.Equal(t, MarkRed, board[CellIndex(5, 3)])
	assert.Equal(t, MarkYellow, board[CellIndex(4, 3)])
}

func TestConnect4ColumnFull(t *testing.T) {
	e := Connect4{}
	board := e.NewBoard()
	for i := 0; i < Connect4Rows; i++ {
		_, err := e.Apply(board, 0, MarkRed)
		require.NoError(t, err)
	}

	assert.False(t, e.IsLegal(board, 0))
	_, err := e.Apply(board, 0, MarkYellow)
	assert.ErrorIs(t, err, ErrIllegalMove)

	_, err = e.Apply(board, -1, MarkYellow)
	assert.ErrorIs(t, err, ErrIllegalMove)
	_, err = e.Apply(board, Connect4Cols, MarkYellow)
	assert.ErrorIs(t, err, ErrIllegalMove)
}

func TestConnect4VerticalWin(t *testing.T) {
	e := Connect4{}
	board := e.NewBoard()

	// Red stacks column 2; yellow answers in column 5.
	for i := 0; i < 3; i++ {
		_, err := e.Apply(board, 2, MarkRed)
		require.NoError(t, err)
		_, err = e.Apply(board, 5, MarkYellow)
		require.NoError(t, err)
		_, done := e.Outcome(board)
		require.False(t, done)
	}
	_, err := e.Apply(board, 2, MarkRed)
	require.NoError(t, err)

	outcome, done := e.Outcome(board)
	require.True(t, done)
	assert.Equal(t, MarkRed, outcome.Winner)
	assert.Equal(t, []int{CellIndex(2, 2), CellIndex(3, 2), CellIndex(4, 2), CellIndex(5, 2)}, outcome.Line)
}

func TestConnect4HorizontalWin(t *testing.T) {
	e := Connect4{}
	board := e.NewBoard()
	for col := 1; col <= 4; col++ {
		_, err := e.Apply(board, col, MarkYellow)
		require.NoError(t, err)
	}

	outcome, done := e.Outcome(board)
	require.True(t, done)
	assert.Equal(t, MarkYellow, outcome.Winner)
	assert.Equal(t, []int{CellIndex(5, 1), CellIndex(5, 2), CellIndex(5, 3), CellIndex(5, 4)}, outcome.Line)
}

func TestConnect4DiagonalWin(t *testing.T) {
	e := Connect4{}
	board := e.NewBoard()
	// Staircase: red discs at (5,0) (4,1) (3,2) (2,3) on yellow scaffolding.
	board[CellIndex(5, 0)] = MarkRed
	board[CellIndex(5, 1)] = MarkYellow
	board[CellIndex(4, 1)] = MarkRed
	board[CellIndex(5, 2)] = MarkYellow
	board[CellIndex(4, 2)] = MarkYellow
	board[CellIndex(3, 2)] = MarkRed
	board[CellIndex(5, 3)] = MarkYellow
	board[CellIndex(4, 3)] = MarkYellow
	board[CellIndex(3, 3)] = MarkYellow
	board[CellIndex(2, 3)] = MarkRed

	outcome, done := e.Outcome(board)
	require.True(t, done)
	assert.Equal(t, MarkRed, outcome.Winner)
	assert.ElementsMatch(t, []int{CellIndex(2, 3), CellIndex(3, 2), CellIndex(4, 1), CellIndex(5, 0)}, outcome.Line)
}

// drawBoard fills the grid with a pattern that holds no four-in-a-row: even
// columns stack red,red,yellow,yellow,red,red bottom-up, odd columns the
// inverse.
func drawBoard() []string {
	evenCol := []string{MarkRed, MarkRed, MarkYellow, MarkYellow, MarkRed, MarkRed}
	oddCol := []string{MarkYellow, MarkYellow, MarkRed, MarkRed, MarkYellow, MarkYellow}
	board := make([]string, Connect4Rows*Connect4Cols)
	for col := 0; col < Connect4Cols; col++ {
		pattern := evenCol
		if col%2 == 1 {
			pattern = oddCol
		}
		for row := 0; row < Connect4Rows; row++ {
			board[CellIndex(row, col)] = pattern[row]
		}
	}
	return board
}

func TestConnect4Draw(t *testing.T) {
	e := Connect4{}
	board := drawBoard()

	assert.Empty(t, e.AvailableColumns(board))
	outcome, done := e.Outcome(board)
	require.True(t, done)
	assert.Equal(t, DrawSentinel, outcome.Winner)
	assert.Equal(t, []int{}, outcome.Line)
}

func TestConnect4AvailableColumns(t *testing.T) {
	e := Connect4{}
	board := e.NewBoard()
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, e.AvailableColumns(board))

	for i := 0; i < Connect4Rows; i++ {
		_, err := e.Apply(board, 3, MarkRed)
		require.NoError(t, err)
	}
	assert.Equal(t, []int{0, 1, 2, 4, 5, 6}, e.AvailableColumns(board))
}

func TestConnect4CellRowCol(t *testing.T) {
	row, col := CellRowCol(CellIndex(2, 5))
	assert.Equal(t, 2, row)
	assert.Equal(t, 5, col)
}
