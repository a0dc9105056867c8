// Package engine runs one play session: the active piece controller and the
// tick-driven state machine that feeds it gravity and player input.
//
// Session.Step is the whole game loop. It takes the time elapsed since the
// previous call and the inputs that arrived meanwhile, and never reads a
// clock, so a recorded sequence of steps replays exactly.
package engine

import (
	"log/slog"
	"time"

	"github.com/tatianab/falliant/internal/board"
	apperrors "github.com/tatianab/falliant/internal/errors"
	"github.com/tatianab/falliant/internal/models"
	"github.com/tatianab/falliant/internal/queue"
	"github.com/tatianab/falliant/internal/scoring"
)

// Options configures a session.
type Options struct {
	Width, Visible, Buffer int

	StartLevel int
	Generator  queue.Generator
	Preview    int
	DropBonus  bool

	// Now stamps high-score entries. Defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// Events reports what happened during one Step.
type Events struct {
	Input     *Input
	Moved     bool
	Rotated   bool
	Held      bool
	Dropped   int
	Locked    bool
	Cleared   int
	Points    int
	LevelUps  int
	ToppedOut bool
	Ended     bool // the session reached GameOver during this step
}

// StepResult is the outcome of one loop iteration.
type StepResult struct {
	State   State
	Events  Events
	Pending []Input // inputs left for later iterations
}

// Session owns the board, queue, scoring and controller for one game.
type Session struct {
	board *board.Board
	queue *queue.Queue
	score *scoring.Tracker
	ctrl  *Controller

	state    State
	reason   EndReason
	gravity  time.Duration
	recorded bool

	now func() time.Time
	log *slog.Logger
}

// NewSession builds a session in the Ready state.
func NewSession(opts Options) (*Session, error) {
	if opts.Generator == nil {
		return nil, apperrors.InvalidArgument("session needs a piece generator")
	}
	if opts.Width == 0 && opts.Visible == 0 {
		opts.Width, opts.Visible, opts.Buffer = board.DefaultWidth, board.DefaultVisible, board.DefaultBuffer
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	b := board.New(opts.Width, opts.Visible, opts.Buffer)
	q := queue.New(opts.Generator, opts.Preview)
	t := scoring.NewTracker(opts.StartLevel, opts.DropBonus)
	return &Session{
		board: b,
		queue: q,
		score: t,
		ctrl:  NewController(b, q, t),
		state: Ready,
		now:   opts.Now,
		log:   opts.Logger,
	}, nil
}

// State returns the lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Reason returns why the session ended, or NotEnded.
func (s *Session) Reason() EndReason {
	return s.reason
}

// Board exposes the playfield for read-only inspection.
func (s *Session) Board() *board.Board {
	return s.board
}

// Controller exposes the active piece controller.
func (s *Session) Controller() *Controller {
	return s.ctrl
}

// Score returns the scoring tracker.
func (s *Session) Score() *scoring.Tracker {
	return s.score
}

// Start moves a Ready session to Running by spawning the first piece. A
// board that cannot take it ends the session immediately.
func (s *Session) Start() {
	if s.state != Ready {
		return
	}
	s.state = Running
	s.log.Info("session started", "level", s.score.Level)
	if !s.ctrl.Spawn() {
		s.end(ToppedOut)
	}
}

func (s *Session) end(reason EndReason) {
	s.state = GameOver
	s.reason = reason
	s.log.Info("game over",
		"reason", reason.String(),
		"score", s.score.Score,
		"level", s.score.Level,
		"lines", s.score.Lines,
	)
}

// Step runs one loop iteration. A Ready session is started first. Then at
// most one pending input is applied, followed by at most one gravity tick
// if enough running time has accumulated. Applying the input first means a
// last-moment shift or rotation is honoured before gravity locks the piece.
// Inputs beyond the first are returned in StepResult.Pending. A step whose
// input locked a piece takes no gravity tick, so the next piece is always
// seen at its spawn position first.
func (s *Session) Step(elapsed time.Duration, pending []Input) (StepResult, error) {
	var ev Events
	over := s.state == GameOver
	if s.state == Ready {
		s.Start()
	}

	rest := pending
	if len(pending) > 0 {
		in := pending[0]
		rest = pending[1:]
		ev.Input = &in
		if err := s.apply(in, &ev); err != nil {
			return StepResult{State: s.state, Events: ev, Pending: rest}, err
		}
	}

	if s.state == Running && elapsed > 0 && !ev.Locked {
		if err := s.advance(elapsed, &ev); err != nil {
			return StepResult{State: s.state, Events: ev, Pending: rest}, err
		}
	}

	if s.state == GameOver {
		ev.Ended = !over
		rest = nil
	}
	return StepResult{State: s.state, Events: ev, Pending: rest}, nil
}

func (s *Session) advance(elapsed time.Duration, ev *Events) error {
	interval := s.score.Gravity()
	s.gravity += elapsed
	if s.gravity < interval {
		return nil
	}
	s.gravity -= interval
	if s.gravity > interval {
		s.gravity = interval
	}

	outcome, res, err := s.ctrl.Move(Down)
	if err != nil {
		return err
	}
	if outcome == Locked {
		s.afterLock(res, ev)
	}
	return nil
}

func (s *Session) apply(in Input, ev *Events) error {
	switch s.state {
	case GameOver:
		return nil
	case Paused:
		switch in {
		case Pause:
			s.state = Running
		case Quit:
			s.end(QuitByPlayer)
		}
		return nil
	}

	switch in {
	case Pause:
		s.state = Paused
	case Quit:
		s.end(QuitByPlayer)
	case MoveLeft, MoveRight:
		dir := Left
		if in == MoveRight {
			dir = Right
		}
		outcome, _, err := s.ctrl.Move(dir)
		if err != nil {
			return err
		}
		ev.Moved = outcome == Moved
	case SoftDrop:
		outcome, res, err := s.ctrl.Move(Down)
		if err != nil {
			return err
		}
		switch outcome {
		case Moved:
			ev.Moved = true
			ev.Points += s.score.OnDrop(1, false)
		case Locked:
			s.afterLock(res, ev)
		}
	case HardDrop:
		rows, res, err := s.ctrl.HardDrop()
		if err != nil {
			return err
		}
		ev.Dropped = rows
		ev.Points += s.score.OnDrop(rows, true)
		s.afterLock(res, ev)
	case RotateCW, RotateCCW:
		ev.Rotated = s.ctrl.Rotate(in == RotateCW)
	case Hold:
		accepted, toppedOut := s.ctrl.Hold()
		ev.Held = accepted
		if toppedOut {
			ev.ToppedOut = true
			s.end(ToppedOut)
		}
	}
	return nil
}

func (s *Session) afterLock(res LockResult, ev *Events) {
	s.gravity = 0
	ev.Locked = true
	ev.Cleared += res.Cleared
	ev.Points += res.Points
	ev.LevelUps += res.LevelUps
	if res.LevelUps > 0 {
		s.log.Info("level up", "level", s.score.Level, "gravity", s.score.Gravity())
	}
	if res.ToppedOut {
		ev.ToppedOut = true
		s.end(ToppedOut)
	}
}

// RecordHighScore saves the final score to store when it earns a place in
// the table. It may only be called once the session is over, and reports
// whether an entry was written. A session's score is written at most once.
func (s *Session) RecordHighScore(store models.ScoreStore, initials string) (bool, error) {
	if s.state != GameOver {
		return false, apperrors.InvalidArgument("high score recorded in state %s", s.state)
	}
	if s.recorded {
		return false, nil
	}
	entries, err := store.Load()
	if err != nil {
		return false, err
	}
	if !models.Qualifies(entries, s.score.Score) {
		return false, nil
	}
	entry := models.ScoreEntry{
		Initials: models.NormalizeInitials(initials),
		Score:    s.score.Score,
		Level:    s.score.Level,
		Lines:    s.score.Lines,
		Date:     s.now().Format("2006-01-02 15:04"),
	}
	if err := store.Save(entry); err != nil {
		s.log.Error("save high score", "err", err)
		return false, err
	}
	s.recorded = true
	return true, nil
}

// Qualifies reports whether the current score would enter the table.
func (s *Session) Qualifies(store models.ScoreStore) (bool, error) {
	entries, err := store.Load()
	if err != nil {
		return false, err
	}
	return models.Qualifies(entries, s.score.Score), nil
}
