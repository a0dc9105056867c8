package engine

import (
	"fmt"

	"github.com/tatianab/falliant/internal/board"
	"github.com/tatianab/falliant/internal/piece"
	"github.com/tatianab/falliant/internal/queue"
	"github.com/tatianab/falliant/internal/scoring"
)

// Direction is a translation request for the active piece.
type Direction int

const (
	Left Direction = iota
	Right
	Down
)

func (d Direction) delta() board.Pos {
	switch d {
	case Left:
		return board.Pos{Col: -1}
	case Right:
		return board.Pos{Col: 1}
	default:
		return board.Pos{Row: 1}
	}
}

// MoveOutcome reports what a Move did.
type MoveOutcome int

const (
	Moved MoveOutcome = iota
	Blocked
	Locked
)

// ActivePiece is the falling piece: kind, rotation state and the board
// position of its bounding box's top-left corner.
type ActivePiece struct {
	Kind     piece.Kind
	Rotation int
	Anchor   board.Pos
}

// LockResult describes a lock and the spawn that followed it.
type LockResult struct {
	Cleared   int
	Points    int
	LevelUps  int
	ToppedOut bool
}

// Controller owns the active piece, the hold slot and the piece queue, and
// applies movement rules against the board.
type Controller struct {
	board *board.Board
	queue *queue.Queue
	score *scoring.Tracker

	active    ActivePiece
	hasActive bool

	hold    piece.Kind
	hasHold bool
	canHold bool
}

// NewController wires a controller to its collaborators. No piece is active
// until Spawn is called.
func NewController(b *board.Board, q *queue.Queue, t *scoring.Tracker) *Controller {
	return &Controller{board: b, queue: q, score: t, canHold: true}
}

// cells maps p onto board coordinates. Rotation indices are only ever
// produced by piece.Rotate, so a catalog error here is a broken invariant.
func cells(p ActivePiece) []board.Pos {
	offsets, err := piece.Offsets(p.Kind, p.Rotation)
	if err != nil {
		panic(fmt.Sprintf("active piece: %v", err))
	}
	out := make([]board.Pos, len(offsets))
	for i, o := range offsets {
		out[i] = board.Pos{Row: p.Anchor.Row + o.DRow, Col: p.Anchor.Col + o.DCol}
	}
	return out
}

// spawnPiece places k at the top-centre spawn point in rotation 0, with its
// top cell on the first visible row.
func (c *Controller) spawnPiece(k piece.Kind) ActivePiece {
	return ActivePiece{
		Kind: k,
		Anchor: board.Pos{
			Row: c.board.Buffer() - piece.TopRow(k),
			Col: (c.board.Width() - piece.BoxSize(k)) / 2,
		},
	}
}

// place makes k the active piece at spawn. It reports false on top-out, in
// which case no piece is active and the board is untouched.
func (c *Controller) place(k piece.Kind) bool {
	p := c.spawnPiece(k)
	if c.board.IsTopOut(cells(p)) {
		c.hasActive = false
		return false
	}
	c.active = p
	c.hasActive = true
	return true
}

// Spawn dequeues the next kind and places it. It reports false on top-out.
func (c *Controller) Spawn() bool {
	return c.place(c.queue.Pop())
}

// Active returns the falling piece and whether there is one.
func (c *Controller) Active() (ActivePiece, bool) {
	return c.active, c.hasActive
}

// Cells returns the board cells of the active piece.
func (c *Controller) Cells() []board.Pos {
	if !c.hasActive {
		return nil
	}
	return cells(c.active)
}

// GhostCells returns where the active piece would land on a hard drop.
func (c *Controller) GhostCells() []board.Pos {
	if !c.hasActive {
		return nil
	}
	p := c.active
	for {
		next := p
		next.Anchor.Row++
		if !c.board.IsValidPosition(cells(next)) {
			return cells(p)
		}
		p = next
	}
}

// HoldKind returns the held kind and whether the slot is occupied.
func (c *Controller) HoldKind() (piece.Kind, bool) {
	return c.hold, c.hasHold
}

// CanHold reports whether Hold is available for the current piece.
func (c *Controller) CanHold() bool {
	return c.canHold
}

// Preview returns the upcoming kinds.
func (c *Controller) Preview() []piece.Kind {
	return c.queue.Peek()
}

func (c *Controller) try(p ActivePiece) bool {
	if !c.board.IsValidPosition(cells(p)) {
		return false
	}
	c.active = p
	return true
}

// Move shifts the active piece one cell. A blocked Left or Right is a no-op;
// a blocked Down locks the piece.
func (c *Controller) Move(d Direction) (MoveOutcome, LockResult, error) {
	if !c.hasActive {
		return Blocked, LockResult{}, nil
	}
	p := c.active
	delta := d.delta()
	p.Anchor.Row += delta.Row
	p.Anchor.Col += delta.Col
	if c.try(p) {
		return Moved, LockResult{}, nil
	}
	if d != Down {
		return Blocked, LockResult{}, nil
	}
	res, err := c.Lock()
	return Locked, res, err
}

// Rotate turns the active piece a quarter clockwise (cw) or
// counter-clockwise, trying each wall kick in order. When every placement
// is blocked the piece is left exactly as it was.
func (c *Controller) Rotate(cw bool) bool {
	if !c.hasActive {
		return false
	}
	from := c.active.Rotation
	to := piece.Rotate(from, cw)
	for _, k := range piece.Kicks(c.active.Kind, from, to) {
		p := ActivePiece{
			Kind:     c.active.Kind,
			Rotation: to,
			Anchor:   board.Pos{Row: c.active.Anchor.Row + k.DRow, Col: c.active.Anchor.Col + k.DCol},
		}
		if c.try(p) {
			return true
		}
	}
	return false
}

// HardDrop drops the active piece as far as it goes and locks it. It returns
// the number of rows dropped.
func (c *Controller) HardDrop() (int, LockResult, error) {
	if !c.hasActive {
		return 0, LockResult{}, nil
	}
	rows := 0
	for {
		p := c.active
		p.Anchor.Row++
		if !c.try(p) {
			break
		}
		rows++
	}
	res, err := c.Lock()
	return rows, res, err
}

// Lock commits the active piece to the board, clears lines, scores them,
// re-arms hold and spawns the next piece.
func (c *Controller) Lock() (LockResult, error) {
	if !c.hasActive {
		return LockResult{}, nil
	}
	if err := c.board.LockPiece(cells(c.active), c.active.Kind); err != nil {
		return LockResult{}, fmt.Errorf("lock %s: %w", c.active.Kind, err)
	}
	c.hasActive = false

	var res LockResult
	res.Cleared = c.board.ClearLines()
	sr, err := c.score.OnLinesCleared(res.Cleared)
	if err != nil {
		return res, err
	}
	res.Points = sr.Points
	res.LevelUps = sr.LevelUps

	c.canHold = true
	res.ToppedOut = !c.Spawn()
	return res, nil
}

// Hold swaps the active piece with the hold slot, or stashes it and takes
// the next queued kind when the slot is empty. The incoming piece restarts
// at spawn. Only one hold is allowed between locks; a second call is
// rejected. toppedOut is set when the incoming piece cannot be placed.
func (c *Controller) Hold() (accepted, toppedOut bool) {
	if !c.hasActive || !c.canHold {
		return false, false
	}
	current := c.active.Kind
	var next piece.Kind
	if c.hasHold {
		next = c.hold
	} else {
		next = c.queue.Pop()
	}
	c.hold, c.hasHold = current, true
	c.canHold = false
	return true, !c.place(next)
}
