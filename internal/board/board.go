package board

import (
	"errors"
	"fmt"
	"strings"
)

// Cells is the number of cells on the 3x3 board, indexed 0..8:
//
//	0 | 1 | 2
//	---------
//	3 | 4 | 5
//	---------
//	6 | 7 | 8
const Cells = 9

// Center and the corner/edge groups drive the positional features of the
// heuristic policy.
const Center = 4

var (
	Corners = [4]int{0, 2, 6, 8}
	Edges   = [4]int{1, 3, 5, 7}
)

// Mark is the content of one cell.
type Mark uint8

const (
	Empty Mark = iota
	X
	O
)

func (m Mark) String() string {
	switch m {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return " "
	}
}

// Opponent returns the opposing mark. Empty has no opponent and maps to Empty.
func (m Mark) Opponent() Mark {
	switch m {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

// Status is the terminal state of a board.
type Status uint8

const (
	StatusOngoing Status = iota
	StatusWin
	StatusDraw
)

// winningLines enumerates the 8 lines: three rows, three columns, two diagonals.
var winningLines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

var ErrIllegalMove = errors.New("illegal move")

// Board is the mutable 3x3 game state. The zero value is an empty board.
type Board struct {
	cells [Cells]Mark
}

func New() *Board {
	return &Board{}
}

// Clone returns an independent copy for move simulation.
func (b *Board) Clone() *Board {
	copied := *b
	return &copied
}

func (b *Board) Cell(i int) Mark {
	if i < 0 || i >= Cells {
		return Empty
	}
	return b.cells[i]
}

// Apply places mark on the given cell. Out-of-range or occupied cells fail
// with ErrIllegalMove; the board is left unchanged on failure.
func (b *Board) Apply(mark Mark, cell int) error {
	if mark != X && mark != O {
		return fmt.Errorf("%w: mark %q cannot be placed", ErrIllegalMove, mark)
	}
	if cell < 0 || cell >= Cells {
		return fmt.Errorf("%w: cell %d out of range", ErrIllegalMove, cell)
	}
	if b.cells[cell] != Empty {
		return fmt.Errorf("%w: cell %d is occupied by %s", ErrIllegalMove, cell, b.cells[cell])
	}
	b.cells[cell] = mark
	return nil
}

// LegalMoves lists the empty cells in ascending index order. The result is
// empty when the board is terminal.
func (b *Board) LegalMoves() []int {
	status, _ := b.Status()
	if status != StatusOngoing {
		return nil
	}
	moves := make([]int, 0, Cells)
	for i, cell := range b.cells {
		if cell == Empty {
			moves = append(moves, i)
		}
	}
	return moves
}

// Full reports whether every cell is occupied.
func (b *Board) Full() bool {
	for _, cell := range b.cells {
		if cell == Empty {
			return false
		}
	}
	return true
}

// Status scans the 8 lines for uniform non-empty ownership. The winning mark
// is returned alongside StatusWin and is Empty otherwise.
func (b *Board) Status() (Status, Mark) {
	for _, line := range winningLines {
		first := b.cells[line[0]]
		if first != Empty && first == b.cells[line[1]] && first == b.cells[line[2]] {
			return StatusWin, first
		}
	}
	if b.Full() {
		return StatusDraw, Empty
	}
	return StatusOngoing, Empty
}

// Threats counts lines holding two of mark and one empty cell: positions
// where mark would win on its next move.
func (b *Board) Threats(mark Mark) int {
	threats := 0
	for _, line := range winningLines {
		own, empty := 0, 0
		for _, idx := range line {
			switch b.cells[idx] {
			case mark:
				own++
			case Empty:
				empty++
			}
		}
		if own == 2 && empty == 1 {
			threats++
		}
	}
	return threats
}

// WinsAt reports whether placing mark on cell completes a line. The cell must
// be empty; occupied cells never win.
func (b *Board) WinsAt(mark Mark, cell int) bool {
	if cell < 0 || cell >= Cells || b.cells[cell] != Empty {
		return false
	}
	probe := b.Clone()
	probe.cells[cell] = mark
	status, winner := probe.Status()
	return status == StatusWin && winner == mark
}

func (b *Board) String() string {
	var sb strings.Builder
	for row := 0; row < 3; row++ {
		if row > 0 {
			sb.WriteString("\n---------\n")
		}
		for col := 0; col < 3; col++ {
			if col > 0 {
				sb.WriteString(" | ")
			}
			sb.WriteString(b.cells[row*3+col].String())
		}
	}
	return sb.String()
}
