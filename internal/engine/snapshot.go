package engine

import (
	"time"

	"github.com/tatianab/falliant/internal/board"
	"github.com/tatianab/falliant/internal/piece"
)

// Snapshot is a read-only copy of everything a renderer needs. Mutating it
// has no effect on the session.
type Snapshot struct {
	Width   int
	Visible int
	Buffer  int
	Rows    [][]board.Cell // buffer rows first

	HasActive   bool
	ActiveKind  piece.Kind
	ActiveCells []board.Pos
	GhostCells  []board.Pos

	Next    []piece.Kind
	Hold    piece.Kind
	HasHold bool
	CanHold bool

	Score   int
	Level   int
	Lines   int
	Gravity time.Duration

	State  State
	Reason EndReason
}

// Snapshot captures the current session state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Width:   s.board.Width(),
		Visible: s.board.Visible(),
		Buffer:  s.board.Buffer(),
		Rows:    s.board.Rows(),
		Next:    s.ctrl.Preview(),
		CanHold: s.ctrl.CanHold(),
		Score:   s.score.Score,
		Level:   s.score.Level,
		Lines:   s.score.Lines,
		Gravity: s.score.Gravity(),
		State:   s.state,
		Reason:  s.reason,
	}
	snap.Hold, snap.HasHold = s.ctrl.HoldKind()
	if p, ok := s.ctrl.Active(); ok {
		snap.HasActive = true
		snap.ActiveKind = p.Kind
		snap.ActiveCells = s.ctrl.Cells()
		snap.GhostCells = s.ctrl.GhostCells()
	}
	return snap
}
