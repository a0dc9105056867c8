// Package scoring maps line clears to points, tracks level progression and
// derives the gravity interval for a level.
package scoring

import (
	"time"

	apperrors "github.com/tatianab/falliant/internal/errors"
)

const (
	// LinesPerLevel is how many cleared lines raise the level by one.
	LinesPerLevel = 10

	// Frame is one display frame; gravity is counted in frames.
	Frame = time.Second / 60

	baseGravityFrames = 20
	gravityStepFrames = 2
	minGravityFrames  = 3
)

var linePoints = [5]int{0, 40, 100, 300, 1200}

// Points returns the score for clearing count lines at level.
func Points(count, level int) (int, error) {
	if count < 0 || count >= len(linePoints) {
		return 0, apperrors.InvalidArgument("cleared line count %d outside [0,4]", count)
	}
	return linePoints[count] * level, nil
}

// GravityInterval is the time between automatic down moves at level. It
// never increases with level and never drops below MinGravity.
func GravityInterval(level int) time.Duration {
	if level < 1 {
		level = 1
	}
	frames := baseGravityFrames - gravityStepFrames*(level-1)
	if frames < minGravityFrames {
		frames = minGravityFrames
	}
	return time.Duration(frames) * Frame
}

// MinGravity is the gravity floor.
var MinGravity = time.Duration(minGravityFrames) * Frame

// Result describes one scoring update.
type Result struct {
	Points   int
	LevelUps int
}

// Tracker holds the score and level for one session. Score never decreases.
type Tracker struct {
	Score          int
	Level          int
	Lines          int
	LinesThisLevel int

	dropBonus bool
}

// NewTracker starts a tracker at startLevel (at least 1). With dropBonus
// set, soft and hard drops earn points per row.
func NewTracker(startLevel int, dropBonus bool) *Tracker {
	if startLevel < 1 {
		startLevel = 1
	}
	return &Tracker{Level: startLevel, dropBonus: dropBonus}
}

// OnLinesCleared scores count cleared lines at the current level, then
// applies level progression. Excess lines carry into the next level.
func (t *Tracker) OnLinesCleared(count int) (Result, error) {
	pts, err := Points(count, t.Level)
	if err != nil {
		return Result{}, err
	}
	if count == 0 {
		return Result{}, nil
	}

	t.Score += pts
	t.Lines += count
	t.LinesThisLevel += count

	var res Result
	res.Points = pts
	for t.LinesThisLevel >= LinesPerLevel {
		t.LinesThisLevel -= LinesPerLevel
		t.Level++
		res.LevelUps++
	}
	return res, nil
}

// OnDrop awards the optional drop bonus: one point per soft-dropped row,
// two per hard-dropped row. It returns the points added.
func (t *Tracker) OnDrop(rows int, hard bool) int {
	if !t.dropBonus || rows <= 0 {
		return 0
	}
	pts := rows
	if hard {
		pts = 2 * rows
	}
	t.Score += pts
	return pts
}

// Gravity returns the gravity interval for the current level.
func (t *Tracker) Gravity() time.Duration {
	return GravityInterval(t.Level)
}
