package game

// Connect4 is the 6x7 gravity engine. Boards are row-major with row 0 on top;
// a move names a column and the disc falls to the lowest empty cell. Marks
// are "red" and "yellow"; a drawn round reports the "draw" sentinel.
type Connect4 struct{}

const (
	MarkRed    = "red"
	MarkYellow = "yellow"

	// DrawSentinel is reported as the winner of a drawn connect-4 round.
	DrawSentinel = "draw"

	Connect4Rows = 6
	Connect4Cols = 7
)

// connect4Dirs is the fixed direction scan order: right, down, down-right,
// down-left.
var connect4Dirs = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

// CellIndex converts a (row, col) pair to a flat board index.
func CellIndex(row, col int) int { return row*Connect4Cols + col }

// CellRowCol converts a flat board index back to its (row, col) pair.
func CellRowCol(index int) (int, int) { return index / Connect4Cols, index % Connect4Cols }

func (Connect4) Variant() string { return VariantConnect4 }

func (Connect4) NewBoard() []string { return make([]string, Connect4Rows*Connect4Cols) }

func (Connect4) Marks() [2]string { return [2]string{MarkRed, MarkYellow} }

func (Connect4) DrawMark() string { return DrawSentinel }

func (Connect4) TimedTurns() bool { return true }

// IsLegal reports whether col is in range with its top cell still empty.
func (Connect4) IsLegal(board []string, col int) bool {
	return col >= 0 && col < Connect4Cols && board[CellIndex(0, col)] == ""
}

// Apply drops a disc into col and returns the index it landed at.
func (c Connect4) Apply(board []string, col int, mark string) (int, error) {
	if !c.IsLegal(board, col) {
		return 0, ErrIllegalMove
	}
	for row := Connect4Rows - 1; row >= 0; row-- {
		idx := CellIndex(row, col)
		if board[idx] == "" {
			board[idx] = mark
			return idx, nil
		}
	}
	return 0, ErrIllegalMove
}

func (c Connect4) Outcome(board []string) (Outcome, bool) {
	for row := 0; row < Connect4Rows; row++ {
		for col := 0; col < Connect4Cols; col++ {
			mark := board[CellIndex(row, col)]
			if mark == "" {
				continue
			}
			for _, d := range connect4Dirs {
				if line, ok := runOfFour(board, row, col, d[0], d[1], mark); ok {
					return Outcome{Winner: mark, Line: line}, true
				}
			}
		}
	}
	if len(c.AvailableColumns(board)) == 0 {
		return Outcome{Winner: DrawSentinel, Line: []int{}}, true
	}
	return Outcome{}, false
}

func runOfFour(board []string, row, col, dRow, dCol int, mark string) ([]int, bool) {
	line := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		r, c := row+i*dRow, col+i*dCol
		if r < 0 || r >= Connect4Rows || c < 0 || c >= Connect4Cols {
			return nil, false
		}
		if board[CellIndex(r, c)] != mark {
			return nil, false
		}
		line = append(line, CellIndex(r, c))
	}
	return line, true
}

// AvailableColumns returns the columns that can still take a disc.
func (c Connect4) AvailableColumns(board []string) []int {
	var cols []int
	for col := 0; col < Connect4Cols; col++ {
		if c.IsLegal(board, col) {
			cols = append(cols, col)
		}
	}
	return cols
}

func (Connect4) Next(mark string) string {
	if mark == MarkRed {
		return MarkYellow
	}
	return MarkRed
}
