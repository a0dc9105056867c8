// Package board implements the playfield: a fixed grid of settled cells with
// a hidden buffer above the visible area.
//
// Row 0 is the top of the buffer. The visible playfield is rows
// Buffer()..Height()-1. Cells only change through LockPiece and ClearLines.
package board

import (
	apperrors "github.com/tatianab/falliant/internal/errors"
	"github.com/tatianab/falliant/internal/piece"
)

const (
	DefaultWidth   = 10
	DefaultVisible = 20
	DefaultBuffer  = 2
)

// Pos is an absolute board coordinate.
type Pos struct {
	Row int
	Col int
}

// Cell is one grid square. Kind is meaningful only when Filled is set.
type Cell struct {
	Filled bool
	Kind   piece.Kind
}

// Board is the settled-cell grid.
type Board struct {
	width   int
	visible int
	buffer  int
	cells   [][]Cell
}

// New creates an empty board. Non-positive dimensions fall back to the
// defaults; a negative buffer is treated as zero.
func New(width, visible, buffer int) *Board {
	if width <= 0 {
		width = DefaultWidth
	}
	if visible <= 0 {
		visible = DefaultVisible
	}
	if buffer < 0 {
		buffer = 0
	}
	b := &Board{width: width, visible: visible, buffer: buffer}
	b.cells = make([][]Cell, visible+buffer)
	for r := range b.cells {
		b.cells[r] = make([]Cell, width)
	}
	return b
}

// NewDefault creates a 10x20 board with a two row buffer.
func NewDefault() *Board {
	return New(DefaultWidth, DefaultVisible, DefaultBuffer)
}

func (b *Board) Width() int   { return b.width }
func (b *Board) Height() int  { return len(b.cells) }
func (b *Board) Visible() int { return b.visible }
func (b *Board) Buffer() int  { return b.buffer }

// InBounds reports whether p lies inside the grid, buffer included.
func (b *Board) InBounds(p Pos) bool {
	return p.Row >= 0 && p.Row < len(b.cells) && p.Col >= 0 && p.Col < b.width
}

// Cell returns the cell at p. Out of range positions read as empty.
func (b *Board) Cell(p Pos) Cell {
	if !b.InBounds(p) {
		return Cell{}
	}
	return b.cells[p.Row][p.Col]
}

// Occupied reports whether p is inside the grid and filled.
func (b *Board) Occupied(p Pos) bool {
	return b.InBounds(p) && b.cells[p.Row][p.Col].Filled
}

// IsValidPosition reports whether every cell is inside the grid and empty.
func (b *Board) IsValidPosition(cells []Pos) bool {
	for _, p := range cells {
		if !b.InBounds(p) || b.cells[p.Row][p.Col].Filled {
			return false
		}
	}
	return true
}

// IsTopOut reports whether a piece spawned on cells could not be placed.
func (b *Board) IsTopOut(spawnCells []Pos) bool {
	return !b.IsValidPosition(spawnCells)
}

// LockPiece fills cells with kind. The whole set is validated before any
// cell is written, so a failed call leaves the board untouched.
func (b *Board) LockPiece(cells []Pos, kind piece.Kind) error {
	if !kind.Valid() {
		return apperrors.InvalidArgument("lock with unknown kind %d", kind)
	}
	seen := make(map[Pos]bool, len(cells))
	for _, p := range cells {
		if !b.InBounds(p) {
			return apperrors.InvalidArgument("lock cell (%d,%d) out of range", p.Row, p.Col)
		}
		if b.cells[p.Row][p.Col].Filled || seen[p] {
			return apperrors.InvalidArgument("lock cell (%d,%d) already occupied", p.Row, p.Col)
		}
		seen[p] = true
	}
	for _, p := range cells {
		b.cells[p.Row][p.Col] = Cell{Filled: true, Kind: kind}
	}
	return nil
}

// ClearLines removes every full row and returns how many were removed.
// Remaining rows keep their relative order and drop by the number of
// cleared rows beneath them; fresh empty rows enter at the top.
func (b *Board) ClearLines() int {
	write := len(b.cells) - 1
	cleared := 0
	for read := len(b.cells) - 1; read >= 0; read-- {
		if b.rowFull(read) {
			cleared++
			continue
		}
		if write != read {
			copy(b.cells[write], b.cells[read])
		}
		write--
	}
	for ; write >= 0; write-- {
		clear(b.cells[write])
	}
	return cleared
}

func (b *Board) rowFull(r int) bool {
	for _, c := range b.cells[r] {
		if !c.Filled {
			return false
		}
	}
	return true
}

// FilledCount returns the number of occupied cells.
func (b *Board) FilledCount() int {
	n := 0
	for _, row := range b.cells {
		for _, c := range row {
			if c.Filled {
				n++
			}
		}
	}
	return n
}

// Rows returns a deep copy of the grid, buffer rows first.
func (b *Board) Rows() [][]Cell {
	out := make([][]Cell, len(b.cells))
	for r, row := range b.cells {
		out[r] = make([]Cell, len(row))
		copy(out[r], row)
	}
	return out
}

// Clone returns an independent copy of the board.
func (b *Board) Clone() *Board {
	return &Board{width: b.width, visible: b.visible, buffer: b.buffer, cells: b.Rows()}
}
