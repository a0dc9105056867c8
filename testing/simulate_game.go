package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/tatianab/falliant/internal/board"
	"github.com/tatianab/falliant/internal/config"
	"github.com/tatianab/falliant/internal/engine"
	"github.com/tatianab/falliant/internal/piece"
	"github.com/tatianab/falliant/internal/queue"
)

const maxPieces = 500

// placement is a target rotation and anchor column for the active piece.
type placement struct {
	rotation int
	col      int
	score    float64
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = 1
	}

	gen, err := queue.NewGenerator(cfg.Randomizer, seed)
	if err != nil {
		log.Fatalf("Failed to create generator: %v", err)
	}
	session, err := engine.NewSession(engine.Options{
		StartLevel: cfg.StartLevel,
		Generator:  gen,
		Preview:    cfg.Preview,
		DropBonus:  cfg.DropBonus,
	})
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	session.Start()

	fmt.Printf("--- Self-play: seed=%d randomizer=%s level=%d ---\n", seed, cfg.Randomizer, cfg.StartLevel)

	pieces := 0
	for ; pieces < maxPieces && session.State() == engine.Running; pieces++ {
		active, ok := session.Controller().Active()
		if !ok {
			break
		}
		target := choose(session.Board(), active)
		res, err := play(session, target)
		if err != nil {
			log.Fatalf("Step failed: %v", err)
		}
		if res.Events.Cleared > 0 {
			fmt.Printf("Piece %d (%s): cleared %d, +%d points\n", pieces+1, active.Kind, res.Events.Cleared, res.Events.Points)
		}
		if res.Events.LevelUps > 0 {
			fmt.Printf("Level up: %d\n", session.Score().Level)
		}
	}

	snap := session.Snapshot()
	fmt.Println()
	fmt.Println(render(snap))
	fmt.Printf("Pieces: %d\n", pieces)
	fmt.Printf("Score: %d  Level: %d  Lines: %d\n", snap.Score, snap.Level, snap.Lines)
	if snap.State == engine.GameOver {
		fmt.Printf("Game ended: %s\n", snap.Reason)
	}
}

// play steers the active piece to target and hard-drops it, one input per
// step as the UI would.
func play(s *engine.Session, target placement) (engine.StepResult, error) {
	var res engine.StepResult
	var err error
	for i := 0; i < target.rotation; i++ {
		if res, err = s.Step(0, []engine.Input{engine.RotateCW}); err != nil {
			return res, err
		}
	}
	for tries := 0; tries < 2*board.DefaultWidth; tries++ {
		p, ok := s.Controller().Active()
		if !ok || p.Anchor.Col == target.col {
			break
		}
		in := engine.MoveRight
		if p.Anchor.Col > target.col {
			in = engine.MoveLeft
		}
		if res, err = s.Step(0, []engine.Input{in}); err != nil {
			return res, err
		}
		if !res.Events.Moved {
			break
		}
	}
	return s.Step(0, []engine.Input{engine.HardDrop})
}

// choose tries every rotation and column from the spawn row and keeps the
// placement with the best resulting board.
func choose(b *board.Board, active engine.ActivePiece) placement {
	best := placement{score: -1e18}
	for rot := 0; rot < piece.RotationCount(active.Kind); rot++ {
		offsets, err := piece.Offsets(active.Kind, rot)
		if err != nil {
			continue
		}
		for col := -piece.BoxSize(active.Kind); col < b.Width(); col++ {
			cells, ok := drop(b, offsets, board.Pos{Row: active.Anchor.Row, Col: col})
			if !ok {
				continue
			}
			trial := b.Clone()
			if err := trial.LockPiece(cells, active.Kind); err != nil {
				continue
			}
			cleared := trial.ClearLines()
			if s := evaluate(trial, cleared); s > best.score {
				best = placement{rotation: rot, col: col, score: s}
			}
		}
	}
	return best
}

func drop(b *board.Board, offsets piece.Cells, anchor board.Pos) ([]board.Pos, bool) {
	at := func(a board.Pos) []board.Pos {
		out := make([]board.Pos, len(offsets))
		for i, o := range offsets {
			out[i] = board.Pos{Row: a.Row + o.DRow, Col: a.Col + o.DCol}
		}
		return out
	}
	if !b.IsValidPosition(at(anchor)) {
		return nil, false
	}
	for {
		next := anchor
		next.Row++
		if !b.IsValidPosition(at(next)) {
			return at(anchor), true
		}
		anchor = next
	}
}

// evaluate scores a board: fewer holes, a lower and flatter stack and more
// cleared lines are better.
func evaluate(b *board.Board, cleared int) float64 {
	heights := make([]int, b.Width())
	holes := 0
	for c := 0; c < b.Width(); c++ {
		seen := false
		for r := 0; r < b.Height(); r++ {
			filled := b.Occupied(board.Pos{Row: r, Col: c})
			if filled && !seen {
				heights[c] = b.Height() - r
				seen = true
			} else if !filled && seen {
				holes++
			}
		}
	}
	aggregate, bumpiness := 0, 0
	for c, h := range heights {
		aggregate += h
		if c > 0 {
			bumpiness += abs(h - heights[c-1])
		}
	}
	return 0.76*float64(cleared) - 0.51*float64(aggregate) - 0.36*float64(holes) - 0.18*float64(bumpiness)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func render(snap engine.Snapshot) string {
	var sb strings.Builder
	for r := snap.Buffer; r < len(snap.Rows); r++ {
		sb.WriteString("|")
		for _, cell := range snap.Rows[r] {
			if cell.Filled {
				sb.WriteString(cell.Kind.String())
			} else {
				sb.WriteString(".")
			}
		}
		sb.WriteString("|\n")
	}
	sb.WriteString("+" + strings.Repeat("-", snap.Width) + "+")
	return sb.String()
}
