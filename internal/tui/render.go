package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/tatianab/falliant/internal/board"
	"github.com/tatianab/falliant/internal/engine"
	"github.com/tatianab/falliant/internal/piece"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	boardStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#5F5F87"))

	sideStyle = lipgloss.NewStyle().
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			Padding(0, 1)

	itemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#AF005F")).
			Bold(true).
			Padding(0, 2)

	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#3C3C3C"))
	ghostStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#D75F5F"))
)

var kindColors = [piece.KindCount]lipgloss.Color{
	piece.I: "#00D7D7",
	piece.O: "#D7D700",
	piece.T: "#AF5FD7",
	piece.S: "#5FD75F",
	piece.Z: "#D75F5F",
	piece.J: "#5F87FF",
	piece.L: "#FF8700",
}

const (
	blockGlyph = "[]"
	ghostGlyph = "::"
	emptyGlyph = " ."
)

// Cells are rendered once; the board redraws every frame.
var (
	blocks = func() (out [piece.KindCount]string) {
		for k, c := range kindColors {
			out[k] = lipgloss.NewStyle().Foreground(c).Bold(true).Render(blockGlyph)
		}
		return out
	}()
	ghostCell = ghostStyle.Render(ghostGlyph)
	emptyCell = dimStyle.Render(emptyGlyph)
)

func (m model) View() string {
	var s string

	switch m.state {
	case stateMenu:
		s = m.renderMenu()

	case stateLevelSelect:
		s = fmt.Sprintf(
			"%s\n\n  Start level:  ◀ %2d ▶\n\n%s",
			titleStyle.Render("LEVEL SELECT"),
			m.level,
			helpStyle.Render("←/→ ±1   ↑/↓ ±5   enter start   esc back"),
		)

	case statePlaying:
		s = lipgloss.JoinVertical(lipgloss.Left,
			m.renderGame(),
			"",
			m.help.View(m.keys),
		)

	case stateConfirmQuit:
		s = lipgloss.JoinVertical(lipgloss.Left,
			m.renderGame(),
			"",
			"Quit this game?  "+renderChoice("Yes", m.confirmYes)+" "+renderChoice("No", !m.confirmYes),
		)

	case stateGameOver:
		s = lipgloss.JoinVertical(lipgloss.Left,
			m.renderGame(),
			"",
			helpStyle.Render("Press enter to continue."),
		)

	case stateInitials:
		s = fmt.Sprintf(
			"%s\n\n  Score %d earns a place in the table.\n\n  Initials: %s\n\n%s",
			titleStyle.Render("NEW HIGH SCORE"),
			m.session.Score().Score,
			m.initials.View(),
			helpStyle.Render("enter save   esc skip"),
		)

	case stateHighScores:
		s = lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("HIGH SCORES"),
			"",
			renderScores(m),
			"",
			helpStyle.Render("enter back"),
		)
		if m.notice != "" {
			s += "\n" + errorStyle.Render(m.notice)
		}

	case stateError:
		s = fmt.Sprintf("\n  Error: %v\n\nPress enter to return to the menu.", m.err)
	}

	return "\n" + s + "\n"
}

func (m model) renderMenu() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("FALLIANT"))
	b.WriteString("\n\n")
	for i, item := range menuItems {
		if i == m.menuIndex {
			b.WriteString(selectedStyle.Render(item))
		} else {
			b.WriteString(itemStyle.Render(item))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("level %d   ↑/↓ move   enter select   esc quit", m.level)))
	return b.String()
}

func renderChoice(label string, selected bool) string {
	if selected {
		return selectedStyle.Render(label)
	}
	return itemStyle.Render(label)
}

func (m model) renderGame() string {
	snap := m.session.Snapshot()
	game := lipgloss.JoinHorizontal(lipgloss.Top,
		renderBoard(snap, m.cfg.Ghost),
		renderSidebar(snap),
	)
	switch {
	case snap.State == engine.Paused && m.state == statePlaying:
		return lipgloss.JoinVertical(lipgloss.Left, game, bannerStyle.Render("PAUSED"))
	case snap.State == engine.GameOver:
		return lipgloss.JoinVertical(lipgloss.Left, game, bannerStyle.Render("GAME OVER"))
	}
	return game
}

// renderBoard draws the visible rows. The buffer above them is hidden.
func renderBoard(snap engine.Snapshot, showGhost bool) string {
	active := make(map[board.Pos]bool, len(snap.ActiveCells))
	for _, p := range snap.ActiveCells {
		active[p] = true
	}
	ghost := make(map[board.Pos]bool, len(snap.GhostCells))
	if showGhost {
		for _, p := range snap.GhostCells {
			ghost[p] = true
		}
	}

	var b strings.Builder
	for r := snap.Buffer; r < len(snap.Rows); r++ {
		if r > snap.Buffer {
			b.WriteByte('\n')
		}
		for c, cell := range snap.Rows[r] {
			p := board.Pos{Row: r, Col: c}
			switch {
			case active[p]:
				b.WriteString(blocks[snap.ActiveKind])
			case cell.Filled:
				b.WriteString(blocks[cell.Kind])
			case ghost[p]:
				b.WriteString(ghostCell)
			default:
				b.WriteString(emptyCell)
			}
		}
	}
	return boardStyle.Render(b.String())
}

func renderSidebar(snap engine.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%d\n\n", titleStyle.Render("SCORE"), snap.Score)
	fmt.Fprintf(&b, "%s\n%d\n\n", titleStyle.Render("LEVEL"), snap.Level)
	fmt.Fprintf(&b, "%s\n%d\n\n", titleStyle.Render("LINES"), snap.Lines)

	b.WriteString(titleStyle.Render("NEXT"))
	b.WriteString("\n")
	for _, k := range snap.Next {
		b.WriteString(renderMini(k, false))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("HOLD"))
	b.WriteString("\n")
	if snap.HasHold {
		b.WriteString(renderMini(snap.Hold, !snap.CanHold))
	} else {
		b.WriteString(dimStyle.Render("(empty)"))
	}
	return sideStyle.Render(b.String())
}

// renderMini draws k in its spawn orientation, two rows high.
func renderMini(k piece.Kind, dim bool) string {
	cells, err := piece.Offsets(k, 0)
	if err != nil {
		return ""
	}
	var grid [2][4]bool
	top := piece.TopRow(k)
	for _, o := range cells {
		grid[o.DRow-top][o.DCol] = true
	}

	block := blocks[k]
	if dim {
		block = dimStyle.Render(blockGlyph)
	}
	var b strings.Builder
	for r, row := range grid {
		if r > 0 {
			b.WriteByte('\n')
		}
		for _, filled := range row {
			if filled {
				b.WriteString(block)
			} else {
				b.WriteString("  ")
			}
		}
	}
	return b.String()
}

func renderScores(m model) string {
	if len(m.scores) == 0 {
		return dimStyle.Render("No scores yet.")
	}
	rows := make([][]string, len(m.scores))
	for i, e := range m.scores {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			e.Initials,
			strconv.Itoa(e.Score),
			strconv.Itoa(e.Level),
			strconv.Itoa(e.Lines),
			e.Date,
		}
	}
	highlight := m.highlight
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#5F5F87"))).
		Headers("#", "NAME", "SCORE", "LEVEL", "LINES", "DATE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return itemStyle.Bold(true)
			case row == highlight:
				return selectedStyle
			}
			return itemStyle
		}).
		String()
}
