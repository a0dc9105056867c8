// Package piece defines the seven tetromino kinds, their rotation states and
// the wall-kick table used when a rotation is blocked.
//
// Offsets use board orientation: DRow grows downward, DCol grows rightward,
// both relative to the top-left corner of the kind's bounding box. Rotation
// states follow the Super Rotation System: state 0 is the spawn orientation,
// 1 is one clockwise turn (R), 2 is two turns, 3 is one counter-clockwise
// turn (L). Every state is the spawn state rotated inside the bounding box,
// so the SRS kick tables apply unchanged.
//
// The catalog is built once at package init and never mutated.
package piece

import (
	"cmp"
	"slices"

	apperrors "github.com/tatianab/falliant/internal/errors"
)

// Kind is one of the seven canonical tetromino shapes.
type Kind uint8

const (
	I Kind = iota
	O
	T
	S
	Z
	J
	L
)

// KindCount is the number of piece kinds.
const KindCount = 7

// RotationStates is the number of orientations every kind cycles through.
const RotationStates = 4

// Offset is a cell position relative to a piece anchor.
type Offset struct {
	DRow int
	DCol int
}

// Cells is the fixed set of four cells occupied by a piece in one state.
type Cells [4]Offset

type shape struct {
	box    int
	states [RotationStates]Cells
}

var names = [KindCount]string{"I", "O", "T", "S", "Z", "J", "L"}

// Spawn orientations, state 0.
var spawnCells = [KindCount]struct {
	box   int
	cells Cells
}{
	I: {4, Cells{{1, 0}, {1, 1}, {1, 2}, {1, 3}}},
	O: {2, Cells{{0, 0}, {0, 1}, {1, 0}, {1, 1}}},
	T: {3, Cells{{0, 1}, {1, 0}, {1, 1}, {1, 2}}},
	S: {3, Cells{{0, 1}, {0, 2}, {1, 0}, {1, 1}}},
	Z: {3, Cells{{0, 0}, {0, 1}, {1, 1}, {1, 2}}},
	J: {3, Cells{{0, 0}, {1, 0}, {1, 1}, {1, 2}}},
	L: {3, Cells{{0, 2}, {1, 0}, {1, 1}, {1, 2}}},
}

var catalog = buildCatalog()

func buildCatalog() [KindCount]shape {
	var out [KindCount]shape
	for k, spawn := range spawnCells {
		s := shape{box: spawn.box}
		s.states[0] = sorted(spawn.cells)
		for r := 1; r < RotationStates; r++ {
			s.states[r] = sorted(rotateCW(s.states[r-1], spawn.box))
		}
		out[k] = s
	}
	return out
}

func rotateCW(c Cells, box int) Cells {
	var out Cells
	for i, o := range c {
		out[i] = Offset{DRow: o.DCol, DCol: box - 1 - o.DRow}
	}
	return out
}

func sorted(c Cells) Cells {
	slices.SortFunc(c[:], func(a, b Offset) int {
		if n := cmp.Compare(a.DRow, b.DRow); n != 0 {
			return n
		}
		return cmp.Compare(a.DCol, b.DCol)
	})
	return c
}

// Kinds returns every kind in catalog order.
func Kinds() []Kind {
	return []Kind{I, O, T, S, Z, J, L}
}

// Valid reports whether k names a catalog kind.
func (k Kind) Valid() bool {
	return k < KindCount
}

func (k Kind) String() string {
	if !k.Valid() {
		return "?"
	}
	return names[k]
}

// BoxSize returns the side of the kind's square bounding box, or 0 for an
// unknown kind.
func BoxSize(k Kind) int {
	if !k.Valid() {
		return 0
	}
	return catalog[k].box
}

// RotationCount returns how many rotation states k has.
func RotationCount(k Kind) int {
	if !k.Valid() {
		return 0
	}
	return RotationStates
}

// Offsets returns the cells of kind k in rotation state rot.
func Offsets(k Kind, rot int) (Cells, error) {
	if !k.Valid() {
		return Cells{}, apperrors.InvalidArgument("unknown piece kind %d", k)
	}
	if rot < 0 || rot >= RotationStates {
		return Cells{}, apperrors.InvalidArgument("rotation %d out of range for %s", rot, k)
	}
	return catalog[k].states[rot], nil
}

// Rotate returns the rotation index reached by one clockwise (cw) or
// counter-clockwise turn from rot.
func Rotate(rot int, cw bool) int {
	if cw {
		return (rot + 1) % RotationStates
	}
	return (rot + RotationStates - 1) % RotationStates
}

// TopRow returns the smallest DRow of kind k in rotation 0.
func TopRow(k Kind) int {
	c, err := Offsets(k, 0)
	if err != nil {
		return 0
	}
	return c[0].DRow
}
