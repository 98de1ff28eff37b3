package game

// TicTacToe is the 3x3 engine. Marks are "X" and "O"; a drawn round reports
// the "tie" sentinel.
type TicTacToe struct{}

const (
	MarkX = "X"
	MarkO = "O"

	// TieSentinel is reported as the winner of a drawn tic-tac-toe round.
	TieSentinel = "tie"

	ticTacToeCells = 9
)

// winPatterns lists every 3-in-a-row line in scan order: rows, columns,
// then the two diagonals. Outcome reports the first matching pattern.
var winPatterns = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

func (TicTacToe) Variant() string { return VariantTicTacToe }

func (TicTacToe) NewBoard() []string { return make([]string, ticTacToeCells) }

func (TicTacToe) Marks() [2]string { return [2]string{MarkX, MarkO} }

func (TicTacToe) DrawMark() string { return TieSentinel }

func (TicTacToe) TimedTurns() bool { return false }

func (TicTacToe) IsLegal(board []string, pos int) bool {
	return pos >= 0 && pos < len(board) && board[pos] == ""
}

func (t TicTacToe) Apply(board []string, pos int, mark string) (int, error) {
	if !t.IsLegal(board, pos) {
		return 0, ErrIllegalMove
	}
	board[pos] = mark
	return pos, nil
}

func (TicTacToe) Outcome(board []string) (Outcome, bool) {
	for _, p := range winPatterns {
		if board[p[0]] != "" && board[p[0]] == board[p[1]] && board[p[0]] == board[p[2]] {
			return Outcome{Winner: board[p[0]], Line: []int{p[0], p[1], p[2]}}, true
		}
	}
	for _, cell := range board {
		if cell == "" {
			return Outcome{}, false
		}
	}
	return Outcome{Winner: TieSentinel, Line: []int{}}, true
}

func (TicTacToe) Next(mark string) string {
	if mark == MarkX {
		return MarkO
	}
	return MarkX
}
