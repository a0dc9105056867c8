package piece

// SRS wall-kick tests as published in the Tetris Guideline, written as
// (x, y) with y pointing up. Index: [from][0] is the clockwise turn out of
// state from, [from][1] the counter-clockwise turn.
type kickSet [RotationStates][2][5][2]int

var jlstzKicks = kickSet{
	0: {
		{{0, 0}, {-1, 0}, {-1, 1}, {0, -2}, {-1, -2}}, // 0->R
		{{0, 0}, {1, 0}, {1, 1}, {0, -2}, {1, -2}},    // 0->L
	},
	1: {
		{{0, 0}, {1, 0}, {1, -1}, {0, 2}, {1, 2}}, // R->2
		{{0, 0}, {1, 0}, {1, -1}, {0, 2}, {1, 2}}, // R->0
	},
	2: {
		{{0, 0}, {1, 0}, {1, 1}, {0, -2}, {1, -2}},    // 2->L
		{{0, 0}, {-1, 0}, {-1, 1}, {0, -2}, {-1, -2}}, // 2->R
	},
	3: {
		{{0, 0}, {-1, 0}, {-1, -1}, {0, 2}, {-1, 2}}, // L->0
		{{0, 0}, {-1, 0}, {-1, -1}, {0, 2}, {-1, 2}}, // L->2
	},
}

var iKicks = kickSet{
	0: {
		{{0, 0}, {-2, 0}, {1, 0}, {-2, -1}, {1, 2}}, // 0->R
		{{0, 0}, {-1, 0}, {2, 0}, {-1, 2}, {2, -1}}, // 0->L
	},
	1: {
		{{0, 0}, {-1, 0}, {2, 0}, {-1, 2}, {2, -1}}, // R->2
		{{0, 0}, {2, 0}, {-1, 0}, {2, 1}, {-1, -2}}, // R->0
	},
	2: {
		{{0, 0}, {2, 0}, {-1, 0}, {2, 1}, {-1, -2}}, // 2->L
		{{0, 0}, {1, 0}, {-2, 0}, {1, -2}, {-2, 1}}, // 2->R
	},
	3: {
		{{0, 0}, {1, 0}, {-2, 0}, {1, -2}, {-2, 1}}, // L->0
		{{0, 0}, {-2, 0}, {1, 0}, {-2, -1}, {1, 2}}, // L->2
	},
}

// Kicks returns the ordered anchor adjustments to try when kind k rotates
// from state from to state to. The first entry is always the unshifted
// placement. O never kicks. It returns nil for an unknown kind or for a
// transition that is not a single quarter turn.
func Kicks(k Kind, from, to int) []Offset {
	if !k.Valid() || from < 0 || from >= RotationStates {
		return nil
	}
	var dir int
	switch to {
	case Rotate(from, true):
		dir = 0
	case Rotate(from, false):
		dir = 1
	default:
		return nil
	}

	if k == O {
		return []Offset{{0, 0}}
	}
	table := &jlstzKicks
	if k == I {
		table = &iKicks
	}

	tests := table[from][dir]
	out := make([]Offset, len(tests))
	for i, xy := range tests {
		out[i] = Offset{DRow: -xy[1], DCol: xy[0]}
	}
	return out
}
