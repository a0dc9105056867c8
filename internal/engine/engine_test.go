package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatianab/falliant/internal/board"
	apperrors "github.com/tatianab/falliant/internal/errors"
	"github.com/tatianab/falliant/internal/models"
	"github.com/tatianab/falliant/internal/piece"
	"github.com/tatianab/falliant/internal/queue"
)

var fixedNow = time.Date(2024, 3, 9, 18, 30, 0, 0, time.UTC)

func newSession(t *testing.T, level int, kinds ...piece.Kind) *Session {
	t.Helper()
	s, err := NewSession(Options{
		StartLevel: level,
		Generator:  &script{kinds: kinds},
		Preview:    3,
		Now:        func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return s
}

// play applies each input in its own zero-length step.
func play(t *testing.T, s *Session, inputs ...Input) StepResult {
	t.Helper()
	var res StepResult
	for _, in := range inputs {
		var err error
		res, err = s.Step(0, []Input{in})
		require.NoError(t, err)
	}
	return res
}

func anchor(t *testing.T, s *Session) board.Pos {
	t.Helper()
	p, ok := s.Controller().Active()
	require.True(t, ok)
	return p.Anchor
}

func lock(t *testing.T, b *board.Board, cells ...board.Pos) {
	t.Helper()
	require.NoError(t, b.LockPiece(cells, piece.J))
}

func TestNewSessionNeedsGenerator(t *testing.T) {
	_, err := NewSession(Options{})
	assert.True(t, apperrors.IsInvalidArgument(err))
}

func TestFirstStepStartsSession(t *testing.T) {
	s := newSession(t, 1, piece.T)
	assert.Equal(t, Ready, s.State())

	res, err := s.Step(0, nil)
	require.NoError(t, err)
	assert.Equal(t, Running, res.State)
	assert.Equal(t, board.Pos{Row: 2, Col: 3}, anchor(t, s))
}

func TestGravityAccumulates(t *testing.T) {
	s := newSession(t, 1, piece.T)
	interval := s.Score().Gravity()

	_, err := s.Step(interval-time.Millisecond, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, anchor(t, s).Row)

	_, err = s.Step(time.Millisecond, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, anchor(t, s).Row)
}

func TestGravityBacklogIsBounded(t *testing.T) {
	s := newSession(t, 1, piece.T)
	interval := s.Score().Gravity()

	// A long stall moves the piece once, and leaves at most one more
	// interval banked.
	_, err := s.Step(time.Minute, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, anchor(t, s).Row)

	_, err = s.Step(0, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, anchor(t, s).Row)

	_, err = s.Step(time.Nanosecond, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, anchor(t, s).Row)
	_, err = s.Step(interval/2, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, anchor(t, s).Row)
}

func TestStepAppliesOneInput(t *testing.T) {
	s := newSession(t, 1, piece.T)

	res, err := s.Step(0, []Input{MoveLeft, MoveLeft, RotateCW})
	require.NoError(t, err)
	require.NotNil(t, res.Events.Input)
	assert.Equal(t, MoveLeft, *res.Events.Input)
	assert.True(t, res.Events.Moved)
	assert.Equal(t, []Input{MoveLeft, RotateCW}, res.Pending)
	assert.Equal(t, 2, anchor(t, s).Col)

	res, err = s.Step(0, res.Pending)
	require.NoError(t, err)
	assert.Equal(t, []Input{RotateCW}, res.Pending)
	assert.Equal(t, 1, anchor(t, s).Col)
}

func TestInputAppliedBeforeGravityLock(t *testing.T) {
	s := newSession(t, 1, piece.T, piece.O)
	s.Start()
	for i := 0; i < 18; i++ {
		outcome, _, err := s.Controller().Move(Down)
		require.NoError(t, err)
		require.Equal(t, Moved, outcome)
	}

	res, err := s.Step(s.Score().Gravity(), []Input{MoveLeft})
	require.NoError(t, err)
	assert.True(t, res.Events.Moved)
	assert.True(t, res.Events.Locked)

	b := s.Board()
	assert.True(t, b.Occupied(board.Pos{Row: 21, Col: 2}))
	assert.True(t, b.Occupied(board.Pos{Row: 20, Col: 3}))
	assert.False(t, b.Occupied(board.Pos{Row: 21, Col: 5}))

	p, ok := s.Controller().Active()
	require.True(t, ok)
	assert.Equal(t, piece.O, p.Kind)
}

func TestSingleLineClear(t *testing.T) {
	s := newSession(t, 2, piece.I, piece.O)
	b := s.Board()
	for col := 0; col < 9; col++ {
		lock(t, b, board.Pos{Row: 21, Col: col})
	}
	lock(t, b, board.Pos{Row: 20, Col: 0})

	play(t, s, RotateCW, MoveRight, MoveRight, MoveRight, MoveRight)
	require.Equal(t, board.Pos{Row: 1, Col: 7}, anchor(t, s))

	res := play(t, s, HardDrop)
	assert.True(t, res.Events.Locked)
	assert.Equal(t, 17, res.Events.Dropped)
	assert.Equal(t, 1, res.Events.Cleared)
	assert.Equal(t, 80, res.Events.Points)
	assert.Equal(t, 80, s.Score().Score)
	assert.Equal(t, 1, s.Score().Lines)

	// The marker above the cleared row and the rest of the I shift down.
	assert.Equal(t, 4, b.FilledCount())
	for _, p := range []board.Pos{{Row: 21, Col: 0}, {Row: 21, Col: 9}, {Row: 20, Col: 9}, {Row: 19, Col: 9}} {
		assert.True(t, b.Occupied(p), "%v", p)
	}
}

func TestDropBonus(t *testing.T) {
	s, err := NewSession(Options{Generator: &script{kinds: []piece.Kind{piece.T}}, DropBonus: true})
	require.NoError(t, err)

	res := play(t, s, SoftDrop)
	assert.Equal(t, 1, res.Events.Points)
	res = play(t, s, HardDrop)
	assert.Equal(t, 17, res.Events.Dropped)
	assert.Equal(t, 34, res.Events.Points)
	assert.Equal(t, 35, s.Score().Score)
}

func TestTopOutAtStart(t *testing.T) {
	s := newSession(t, 1, piece.T)
	lock(t, s.Board(), board.Pos{Row: 3, Col: 4})
	before := s.Board().Rows()

	res, err := s.Step(0, []Input{MoveLeft})
	require.NoError(t, err)
	assert.Equal(t, GameOver, res.State)
	assert.Equal(t, ToppedOut, s.Reason())
	assert.Nil(t, res.Pending)
	assert.Equal(t, before, s.Board().Rows())

	_, ok := s.Controller().Active()
	assert.False(t, ok)
}

func TestTopOutAfterLock(t *testing.T) {
	s := newSession(t, 1, piece.O)
	for row := 4; row < 22; row++ {
		lock(t, s.Board(), board.Pos{Row: row, Col: 4})
	}

	res := play(t, s, HardDrop)
	assert.True(t, res.Events.Locked)
	assert.True(t, res.Events.ToppedOut)
	assert.True(t, res.Events.Ended)
	assert.Equal(t, GameOver, s.State())
	assert.Equal(t, ToppedOut, s.Reason())
	assert.Equal(t, 18+4, s.Board().FilledCount())
}

func TestHoldTopOut(t *testing.T) {
	s := newSession(t, 1, piece.T, piece.I)
	_, err := s.Step(0, nil)
	require.NoError(t, err)
	// The I spawns across row 2, columns 3 to 6. The active T does not
	// reach column 6.
	lock(t, s.Board(), board.Pos{Row: 2, Col: 6})
	before := s.Board().Rows()

	res := play(t, s, Hold)
	assert.True(t, res.Events.Held)
	assert.True(t, res.Events.ToppedOut)
	assert.True(t, res.Events.Ended)
	assert.False(t, res.Events.Locked)
	assert.Equal(t, GameOver, s.State())
	assert.Equal(t, ToppedOut, s.Reason())
	assert.Equal(t, before, s.Board().Rows())

	_, ok := s.Controller().Active()
	assert.False(t, ok)
}

func TestLockingInputSkipsGravity(t *testing.T) {
	s := newSession(t, 10, piece.T, piece.O)
	interval := s.Score().Gravity()
	_, err := s.Step(0, nil)
	require.NoError(t, err)

	res, err := s.Step(time.Second, []Input{HardDrop})
	require.NoError(t, err)
	assert.True(t, res.Events.Locked)
	assert.Equal(t, 4, s.Board().FilledCount())

	spawn := board.Pos{Row: 2 - piece.TopRow(piece.O), Col: (10 - piece.BoxSize(piece.O)) / 2}
	assert.Equal(t, spawn, anchor(t, s))

	// Gravity for the new piece starts from zero.
	_, err = s.Step(interval-time.Millisecond, nil)
	require.NoError(t, err)
	assert.Equal(t, spawn, anchor(t, s))
	_, err = s.Step(time.Millisecond, nil)
	require.NoError(t, err)
	assert.Equal(t, spawn.Row+1, anchor(t, s).Row)
}

func TestLockingInputOnStackKeepsNextPiece(t *testing.T) {
	s := newSession(t, 10, piece.O, piece.O)
	// Column 4 is filled from row 4 down, so a fresh O rests on it at spawn.
	for row := 4; row < 22; row++ {
		lock(t, s.Board(), board.Pos{Row: row, Col: 4})
	}
	play(t, s, MoveLeft, MoveLeft, MoveLeft, MoveLeft)
	require.Equal(t, 0, anchor(t, s).Col)

	res, err := s.Step(time.Minute, []Input{HardDrop})
	require.NoError(t, err)
	assert.True(t, res.Events.Locked)
	assert.False(t, res.Events.ToppedOut)
	assert.Equal(t, Running, res.State)
	assert.Equal(t, 18+4, s.Board().FilledCount())
	assert.Equal(t, board.Pos{Row: 2, Col: 4}, anchor(t, s))
}

func TestPauseFreezesGravityAndInput(t *testing.T) {
	s := newSession(t, 1, piece.T)
	interval := s.Score().Gravity()

	res := play(t, s, Pause)
	require.Equal(t, Paused, res.State)

	res, err := s.Step(10*interval, []Input{MoveLeft})
	require.NoError(t, err)
	assert.Equal(t, Paused, res.State)
	assert.False(t, res.Events.Moved)
	assert.Equal(t, board.Pos{Row: 2, Col: 3}, anchor(t, s))

	res = play(t, s, Pause)
	require.Equal(t, Running, res.State)
	_, err = s.Step(interval, nil)
	require.NoError(t, err)
	assert.Equal(t, board.Pos{Row: 3, Col: 3}, anchor(t, s))
}

func TestQuit(t *testing.T) {
	t.Run("running", func(t *testing.T) {
		s := newSession(t, 1, piece.T)
		res, err := s.Step(0, []Input{Quit, MoveLeft})
		require.NoError(t, err)
		assert.Equal(t, GameOver, res.State)
		assert.Equal(t, QuitByPlayer, s.Reason())
		assert.Nil(t, res.Pending)
		assert.True(t, res.Events.Ended)
		assert.False(t, res.Events.ToppedOut)
	})
	t.Run("paused", func(t *testing.T) {
		s := newSession(t, 1, piece.T)
		play(t, s, Pause)
		res := play(t, s, Quit)
		assert.Equal(t, GameOver, res.State)
		assert.Equal(t, QuitByPlayer, s.Reason())
	})
}

func TestGameOverIgnoresInput(t *testing.T) {
	s := newSession(t, 1, piece.T)
	play(t, s, Quit)
	snap := s.Snapshot()

	res, err := s.Step(time.Minute, []Input{HardDrop, Pause})
	require.NoError(t, err)
	assert.Equal(t, GameOver, res.State)
	assert.Equal(t, Events{Input: res.Events.Input}, res.Events)
	assert.Equal(t, snap, s.Snapshot())
	assert.Zero(t, s.Board().FilledCount())
}

func TestSameSeedReplays(t *testing.T) {
	run := func() Snapshot {
		gen, err := queue.NewGenerator("bag", 42)
		require.NoError(t, err)
		s, err := NewSession(Options{Generator: gen, Preview: 3})
		require.NoError(t, err)
		inputs := []Input{MoveLeft, RotateCW, HardDrop, MoveRight, MoveRight, Hold, SoftDrop, HardDrop, RotateCCW}
		for i := 0; i < 400 && s.State() != GameOver; i++ {
			_, err := s.Step(40*time.Millisecond, []Input{inputs[i%len(inputs)]})
			require.NoError(t, err)
		}
		return s.Snapshot()
	}
	assert.Equal(t, run(), run())
}

func TestSnapshotIsACopy(t *testing.T) {
	s := newSession(t, 1, piece.T, piece.S, piece.Z)
	_, err := s.Step(0, nil)
	require.NoError(t, err)

	snap := s.Snapshot()
	require.True(t, snap.HasActive)
	assert.Equal(t, piece.T, snap.ActiveKind)
	assert.Equal(t, []piece.Kind{piece.S, piece.Z, piece.T}, snap.Next)
	assert.Equal(t, 22, len(snap.Rows))

	snap.Rows[21][0].Filled = true
	snap.Next[0] = piece.I
	snap.ActiveCells[0] = board.Pos{}

	assert.False(t, s.Board().Occupied(board.Pos{Row: 21, Col: 0}))
	assert.Equal(t, piece.S, s.Controller().Preview()[0])
	assert.Equal(t, board.Pos{Row: 2, Col: 4}, s.Controller().Cells()[0])
}

type memStore struct {
	entries []models.ScoreEntry
	saved   int
	err     error
}

func (m *memStore) Load() ([]models.ScoreEntry, error) {
	return m.entries, m.err
}

func (m *memStore) Save(e models.ScoreEntry) error {
	m.saved++
	m.entries = models.Insert(m.entries, e)
	return nil
}

func TestRecordHighScore(t *testing.T) {
	t.Run("before game over", func(t *testing.T) {
		s := newSession(t, 1, piece.T)
		store := &memStore{}
		_, err := s.RecordHighScore(store, "abc")
		assert.True(t, apperrors.IsInvalidArgument(err))
		assert.Zero(t, store.saved)
	})
	t.Run("qualifies", func(t *testing.T) {
		s := newSession(t, 3, piece.T)
		play(t, s, Quit)
		store := &memStore{}

		ok, err := s.RecordHighScore(store, "jo")
		require.NoError(t, err)
		assert.True(t, ok)
		require.Len(t, store.entries, 1)
		assert.Equal(t, models.ScoreEntry{
			Initials: "JOA",
			Score:    0,
			Level:    3,
			Date:     "2024-03-09 18:30",
		}, store.entries[0])

		ok, err = s.RecordHighScore(store, "jo")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 1, store.saved)
		assert.Len(t, store.entries, 1)
	})
	t.Run("table full", func(t *testing.T) {
		s := newSession(t, 1, piece.T)
		play(t, s, Quit)
		store := &memStore{}
		for i := 0; i < models.MaxEntries; i++ {
			store.entries = append(store.entries, models.ScoreEntry{Initials: "ZZZ", Score: 100})
		}

		qualifies, err := s.Qualifies(store)
		require.NoError(t, err)
		assert.False(t, qualifies)
		ok, err := s.RecordHighScore(store, "abc")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, store.saved)
	})
	t.Run("load error", func(t *testing.T) {
		s := newSession(t, 1, piece.T)
		play(t, s, Quit)
		boom := errors.New("disk on fire")
		_, err := s.RecordHighScore(&memStore{err: boom}, "abc")
		assert.ErrorIs(t, err, boom)
	})
}
