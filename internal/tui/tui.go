package tui

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tatianab/falliant/internal/config"
	"github.com/tatianab/falliant/internal/engine"
	"github.com/tatianab/falliant/internal/models"
	"github.com/tatianab/falliant/internal/queue"
	"github.com/tatianab/falliant/internal/scoring"
	"github.com/tatianab/falliant/internal/sound"
)

type sessionState int

const (
	stateMenu sessionState = iota
	stateLevelSelect
	statePlaying
	stateConfirmQuit
	stateGameOver
	stateInitials
	stateHighScores
	stateError
)

const (
	menuStart = iota
	menuLevel
	menuScores
	menuQuit
)

var menuItems = []string{"Start", "Level Select", "High Scores", "Quit"}

const (
	minLevel   = 1
	maxLevel   = 10
	maxPending = 16
)

// Options are the collaborators the UI drives.
type Options struct {
	Config *config.Config
	Store  models.ScoreStore
	Player *sound.Player
	Logger *slog.Logger
}

type model struct {
	state  sessionState
	cfg    *config.Config
	store  models.ScoreStore
	player *sound.Player
	log    *slog.Logger
	keys   keyMap
	help   help.Model

	menuIndex int
	level     int

	session  *engine.Session
	pending  []engine.Input
	lastTick time.Time
	tickGen  int

	confirmYes bool
	resumeOnNo bool

	initials  textinput.Model
	saving    bool
	scores    []models.ScoreEntry
	highlight int
	notice    string

	err    error
	width  int
	height int
}

func NewModel(opts Options) model {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Player == nil {
		opts.Player, _ = sound.New(false)
	}

	ti := textinput.New()
	ti.Placeholder = "AAA"
	ti.CharLimit = 3
	ti.Width = 5

	return model{
		state:     stateMenu,
		cfg:       opts.Config,
		store:     opts.Store,
		player:    opts.Player,
		log:       opts.Logger,
		keys:      gameKeys,
		help:      help.New(),
		level:     opts.Config.StartLevel,
		initials:  ti,
		highlight: -1,
	}
}

func (m model) Init() tea.Cmd {
	return tea.SetWindowTitle("falliant")
}

type tickMsg struct {
	at  time.Time
	gen int
}

type qualifiesMsg struct {
	ok  bool
	err error
}

type savedMsg struct {
	entry models.ScoreEntry
	saved bool
	err   error
}

type scoresMsg struct {
	entries   []models.ScoreEntry
	highlight int
	err       error
}

func tick(gen int) tea.Cmd {
	return tea.Tick(scoring.Frame, func(t time.Time) tea.Msg {
		return tickMsg{at: t, gen: gen}
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, navKeys.ForceQuit) {
			return m, tea.Quit
		}
		switch m.state {
		case stateMenu:
			return m.updateMenu(msg)
		case stateLevelSelect:
			return m.updateLevelSelect(msg)
		case statePlaying:
			return m.updatePlaying(msg)
		case stateConfirmQuit:
			return m.updateConfirmQuit(msg)
		case stateGameOver:
			if key.Matches(msg, navKeys.Select) {
				return m, m.checkQualifies()
			}
			return m, nil
		case stateInitials:
			switch {
			case m.saving:
				return m, nil
			case key.Matches(msg, navKeys.Select):
				m.saving = true
				m.initials.Blur()
				return m, m.recordScore(m.initials.Value())
			case key.Matches(msg, navKeys.Back):
				m.state = stateMenu
				return m, nil
			}
		case stateHighScores, stateError:
			if key.Matches(msg, navKeys.Select) || key.Matches(msg, navKeys.Back) {
				m.state = stateMenu
				m.err = nil
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		if msg.gen != m.tickGen {
			return m, nil
		}
		return m.step(msg.at)

	case qualifiesMsg:
		if msg.err != nil {
			m.log.Error("load high scores", "err", msg.err)
			m.state = stateMenu
			return m, nil
		}
		if !msg.ok {
			m.state = stateMenu
			return m, nil
		}
		m.state = stateInitials
		m.saving = false
		m.initials.Reset()
		return m, m.initials.Focus()

	case savedMsg:
		m.saving = false
		m.initials.Blur()
		m.highlight = -1
		m.notice = ""
		if msg.err != nil {
			m.log.Error("save high score", "err", msg.err)
			m.notice = "Could not save score: " + msg.err.Error()
		}
		m.state = stateHighScores
		return m, m.loadScores(msg.entry, msg.saved)

	case scoresMsg:
		if msg.err != nil {
			m.log.Error("load high scores", "err", msg.err)
			m.notice = "Could not load scores: " + msg.err.Error()
		}
		m.scores = msg.entries
		m.highlight = msg.highlight
		return m, nil
	}

	if m.state == stateInitials {
		m.initials, cmd = m.initials.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, navKeys.Up):
		m.menuIndex = (m.menuIndex + len(menuItems) - 1) % len(menuItems)
	case key.Matches(msg, navKeys.Down):
		m.menuIndex = (m.menuIndex + 1) % len(menuItems)
	case key.Matches(msg, navKeys.Back):
		return m, tea.Quit
	case key.Matches(msg, navKeys.Select):
		switch m.menuIndex {
		case menuStart:
			return m.startGame()
		case menuLevel:
			m.state = stateLevelSelect
		case menuScores:
			m.state = stateHighScores
			m.highlight = -1
			m.notice = ""
			return m, m.loadScores(models.ScoreEntry{}, false)
		case menuQuit:
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) updateLevelSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, navKeys.Left):
		m.level--
	case key.Matches(msg, navKeys.Right):
		m.level++
	case key.Matches(msg, navKeys.Down):
		m.level -= 5
	case key.Matches(msg, navKeys.Up):
		m.level += 5
	case key.Matches(msg, navKeys.Select):
		return m.startGame()
	case key.Matches(msg, navKeys.Back):
		m.state = stateMenu
	}
	m.level = max(minLevel, min(maxLevel, m.level))
	return m, nil
}

func (m model) updatePlaying(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m.openConfirm()
	}
	if in, ok := m.keys.input(msg); ok && len(m.pending) < maxPending {
		m.pending = append(m.pending, in)
	}
	return m, nil
}

// openConfirm pauses a running game behind the quit dialog.
func (m model) openConfirm() (tea.Model, tea.Cmd) {
	m.pending = nil
	m.resumeOnNo = false
	if m.session.State() == engine.Running {
		if _, err := m.session.Step(0, []engine.Input{engine.Pause}); err != nil {
			return m.fail(err)
		}
		m.resumeOnNo = true
	}
	m.confirmYes = false
	m.state = stateConfirmQuit
	m.tickGen++
	return m, nil
}

func (m model) updateConfirmQuit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, navKeys.Left), key.Matches(msg, navKeys.Right):
		m.confirmYes = !m.confirmYes
		return m, nil
	case key.Matches(msg, navKeys.Yes):
		m.confirmYes = true
	case key.Matches(msg, navKeys.No), key.Matches(msg, navKeys.Back):
		m.confirmYes = false
	case key.Matches(msg, navKeys.Select):
	default:
		return m, nil
	}

	if m.confirmYes {
		res, err := m.session.Step(0, []engine.Input{engine.Quit})
		if err != nil {
			return m.fail(err)
		}
		m.state = stateGameOver
		m.player.PlayAll(sound.EventsFor(res.Events))
		return m, nil
	}
	if m.resumeOnNo {
		if _, err := m.session.Step(0, []engine.Input{engine.Pause}); err != nil {
			return m.fail(err)
		}
	}
	m.state = statePlaying
	return m.resume()
}

func (m model) startGame() (tea.Model, tea.Cmd) {
	seed := m.cfg.Seed
	if seed == 0 {
		s, err := queue.NewSeed()
		if err != nil {
			return m.fail(err)
		}
		seed = s
	}
	gen, err := queue.NewGenerator(m.cfg.Randomizer, seed)
	if err != nil {
		return m.fail(err)
	}
	sess, err := engine.NewSession(engine.Options{
		StartLevel: m.level,
		Generator:  gen,
		Preview:    m.cfg.Preview,
		DropBonus:  m.cfg.DropBonus,
		Logger:     m.log,
	})
	if err != nil {
		return m.fail(err)
	}
	m.log.Debug("new game", "seed", seed, "randomizer", m.cfg.Randomizer, "level", m.level)

	m.session = sess
	m.pending = nil
	m.state = statePlaying
	return m.resume()
}

// resume starts a fresh tick chain. Ticks from an older chain are dropped.
func (m model) resume() (tea.Model, tea.Cmd) {
	m.tickGen++
	m.lastTick = time.Time{}
	return m, tick(m.tickGen)
}

// step runs one loop iteration: queued inputs and the time since the last
// tick go to the session, then the view is redrawn by bubbletea.
func (m model) step(now time.Time) (tea.Model, tea.Cmd) {
	if m.state != statePlaying || m.session == nil {
		return m, nil
	}
	var elapsed time.Duration
	if !m.lastTick.IsZero() {
		elapsed = now.Sub(m.lastTick)
	}
	m.lastTick = now

	res, err := m.session.Step(elapsed, m.pending)
	if err != nil {
		return m.fail(err)
	}
	m.pending = res.Pending
	m.player.PlayAll(sound.EventsFor(res.Events))

	if res.State == engine.GameOver {
		m.state = stateGameOver
		return m, nil
	}
	return m, tick(m.tickGen)
}

func (m model) fail(err error) (tea.Model, tea.Cmd) {
	m.log.Error("game error", "err", err)
	m.err = err
	m.state = stateError
	return m, nil
}

func (m model) checkQualifies() tea.Cmd {
	sess, store := m.session, m.store
	return func() tea.Msg {
		ok, err := sess.Qualifies(store)
		return qualifiesMsg{ok: ok, err: err}
	}
}

func (m model) recordScore(initials string) tea.Cmd {
	sess, store := m.session, m.store
	return func() tea.Msg {
		score := sess.Score()
		entry := models.ScoreEntry{
			Initials: models.NormalizeInitials(initials),
			Score:    score.Score,
			Level:    score.Level,
			Lines:    score.Lines,
		}
		saved, err := sess.RecordHighScore(store, initials)
		return savedMsg{entry: entry, saved: saved, err: err}
	}
}

// loadScores reads the table. When saved is set, the row holding entry is
// highlighted.
func (m model) loadScores(entry models.ScoreEntry, saved bool) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		entries, err := store.Load()
		msg := scoresMsg{entries: entries, err: err}
		if saved {
			msg.highlight = highlightIndex(entries, entry)
		} else {
			msg.highlight = -1
		}
		return msg
	}
}

func highlightIndex(entries []models.ScoreEntry, entry models.ScoreEntry) int {
	for i, e := range entries {
		if e.Initials == entry.Initials && e.Score == entry.Score && e.Level == entry.Level {
			return i
		}
	}
	return -1
}

func Run(opts Options) error {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
