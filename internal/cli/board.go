package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/coach/internal/cli/formatter"
	"github.com/alexanderramin/coach/internal/domain"
	"github.com/alexanderramin/coach/internal/service"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newBoardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Interactive goal board: browse goals and complete routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return fmt.Errorf("board needs a terminal; use `coach goal list` instead")
			}
			p := tea.NewProgram(newBoardModel(cmd.Context(), app),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
				tea.WithAltScreen(),
			)
			final, err := p.Run()
			if err != nil {
				return err
			}
			if m, ok := final.(boardModel); ok && m.err != nil {
				return m.err
			}
			return nil
		},
	}
}

type boardLoadedMsg struct {
	board *service.GoalBoard
	err   error
}

type routeToggledMsg struct {
	outcome service.ToggleOutcome
	err     error
}

type goalDeletedMsg struct {
	err error
}

type rowKind int

const (
	rowGoal rowKind = iota
	rowPhase
	rowRoute
)

// boardRow is one line of the flattened goal/phase/route tree.
type boardRow struct {
	kind     rowKind
	goalID   domain.ID
	phase    int
	route    int
	title    string
	done     bool
	weight   float64
	progress int
}

type boardKeys struct {
	Up, Down, Complete, Delete, Reload, Yes, No, Quit key.Binding
}

func newBoardKeys() boardKeys {
	return boardKeys{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Complete: key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "complete route")),
		Delete:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete goal")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Yes:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		No:       key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k boardKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Complete, k.Delete, k.Reload, k.Quit}
}

func (k boardKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// pendingAction is a destructive action waiting for y/n.
type pendingAction struct {
	prompt string
	run    tea.Cmd
}

// boardModel shows the active goals as a navigable tree. Completing a route
// or deleting a goal asks inline first; the list updates optimistically.
type boardModel struct {
	ctx   context.Context
	app   *App
	board *service.GoalBoard

	rows    []boardRow
	cursor  int
	offset  int
	height  int
	loading bool
	busy    bool
	pending *pendingAction
	status  string
	err     error

	keys boardKeys
	help help.Model
}

func newBoardModel(ctx context.Context, app *App) boardModel {
	return boardModel{
		ctx:     ctx,
		app:     app,
		loading: true,
		keys:    newBoardKeys(),
		help:    help.New(),
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.load()
}

func (m boardModel) load() tea.Cmd {
	app, ctx, board := m.app, m.ctx, m.board
	return func() tea.Msg {
		if board == nil {
			me, err := app.Account.Current(ctx)
			if err != nil {
				return boardLoadedMsg{err: failure(err, "Failed to load your account")}
			}
			board = app.newBoard(me.ID)
		}
		if err := board.Load(ctx); err != nil {
			return boardLoadedMsg{err: failure(err, "Failed to load goals")}
		}
		return boardLoadedMsg{board: board}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case boardLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.board = msg.board
		m.refresh()
		return m, nil

	case routeToggledMsg:
		m.busy = false
		m.refresh()
		switch {
		case msg.err != nil:
			m.status = formatter.StyleRed.Render(failure(msg.err, "Update failed").Error())
		case msg.outcome == service.ToggleApplied:
			m.status = formatter.Success("Route completed.")
		case msg.outcome == service.ToggleAlreadyDone:
			m.status = formatter.Dim("Route is already completed.")
		}
		return m, nil

	case goalDeletedMsg:
		m.busy = false
		m.refresh()
		if msg.err != nil {
			m.status = formatter.StyleRed.Render(failure(msg.err, "Delete failed").Error())
		} else {
			m.status = formatter.Success("Goal deleted.")
		}
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			if key.Matches(msg, m.keys.Quit) {
				return m, tea.Quit
			}
			return m, nil
		}
		if m.pending != nil {
			return m.updateConfirm(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m boardModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Yes):
		run := m.pending.run
		m.pending = nil
		m.busy = true
		m.status = formatter.Dim("Saving...")
		return m, run
	case key.Matches(msg, m.keys.No):
		m.pending = nil
		m.status = formatter.Dim("Cancelled.")
	}
	return m, nil
}

func (m boardModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case m.busy:
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		m.status = ""
		return m, m.load()
	case key.Matches(msg, m.keys.Complete):
		return m.askComplete()
	case key.Matches(msg, m.keys.Delete):
		return m.askDelete()
	}
	m.scroll()
	return m, nil
}

func (m boardModel) askComplete() (tea.Model, tea.Cmd) {
	row, ok := m.selected()
	if !ok || row.kind != rowRoute {
		m.status = formatter.Dim("Select a route to complete it.")
		return m, nil
	}
	if row.done {
		m.status = formatter.Dim("Route is already completed.")
		return m, nil
	}
	board, ctx := m.board, m.ctx
	m.pending = &pendingAction{
		prompt: fmt.Sprintf("Complete %q? It cannot be reopened.", row.title),
		run: func() tea.Msg {
			outcome, err := board.ToggleDone(ctx, row.goalID, row.phase, row.route, nil)
			return routeToggledMsg{outcome: outcome, err: err}
		},
	}
	return m, nil
}

func (m boardModel) askDelete() (tea.Model, tea.Cmd) {
	row, ok := m.selected()
	if !ok {
		return m, nil
	}
	g, found := m.board.Goal(row.goalID)
	if !found {
		return m, nil
	}
	board, ctx := m.board, m.ctx
	m.pending = &pendingAction{
		prompt: fmt.Sprintf("Delete goal %q?", domain.CoalesceStr(g.Summary(), g.ID.String())),
		run: func() tea.Msg {
			return goalDeletedMsg{err: board.Delete(ctx, row.goalID)}
		},
	}
	return m, nil
}

func (m boardModel) selected() (boardRow, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return boardRow{}, false
	}
	return m.rows[m.cursor], true
}

// refresh rebuilds rows from the board and keeps the cursor in range.
func (m *boardModel) refresh() {
	var rows []boardRow
	for _, g := range m.board.Goals() {
		rows = append(rows, boardRow{
			kind:     rowGoal,
			goalID:   g.ID,
			title:    domain.CoalesceStr(g.Summary(), "(untitled)"),
			progress: g.Progress(),
		})
		for pi, p := range g.Metadata {
			rows = append(rows, boardRow{kind: rowPhase, goalID: g.ID, phase: pi, title: domain.CoalesceStr(p.BigTitle, "(untitled phase)")})
			for ri, r := range p.Routes {
				rows = append(rows, boardRow{
					kind:   rowRoute,
					goalID: g.ID,
					phase:  pi,
					route:  ri,
					title:  domain.CoalesceStr(r.SmallTitle, "(untitled route)"),
					done:   r.Done,
					weight: float64(r.Percentage),
				})
			}
		}
	}
	m.rows = rows
	m.cursor = min(m.cursor, max(0, len(m.rows)-1))
	m.scroll()
}

// visibleRows is how many rows fit between the header and the footer.
func (m boardModel) visibleRows() int {
	if m.height <= 0 {
		return len(m.rows)
	}
	return max(1, m.height-6)
}

func (m *boardModel) scroll() {
	n := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+n {
		m.offset = m.cursor - n + 1
	}
}

func (m boardModel) View() string {
	var b strings.Builder
	b.WriteString("\n  " + formatter.StyleHeader.Render("GOAL BOARD") + "\n\n")

	switch {
	case m.loading:
		b.WriteString("  " + formatter.Dim("Loading goals...") + "\n")
		return b.String()
	case m.err != nil:
		b.WriteString("  " + formatter.StyleRed.Render("Error: "+m.err.Error()) + "\n")
		return b.String()
	case len(m.rows) == 0:
		b.WriteString("  " + formatter.Dim("No goals yet. Run `coach plan generate` to draft one.") + "\n")
	}

	end := min(len(m.rows), m.offset+m.visibleRows())
	for i := m.offset; i < end; i++ {
		row := m.rows[i]
		cursor := "  "
		if i == m.cursor {
			cursor = formatter.StyleGreen.Render("▸ ")
		}
		var line string
		switch row.kind {
		case rowGoal:
			line = formatter.Bold(row.title) + "  " + formatter.RenderProgress(row.progress, 12)
		case rowPhase:
			line = "  " + formatter.StyleBlue.Render(row.title)
		case rowRoute:
			title := row.title
			if row.done {
				title = formatter.Dim(title)
			} else if i == m.cursor {
				title = formatter.StyleBold.Render(title)
			}
			line = fmt.Sprintf("    %s %s %s", formatter.DoneMark(row.done), title,
				formatter.Dim(domain.FormatPercentage(row.weight)+"%"))
		}
		b.WriteString("  " + cursor + line + "\n")
	}

	b.WriteString("\n")
	if m.pending != nil {
		b.WriteString("  " + formatter.StyleYellowBold.Render(m.pending.prompt) + " " + formatter.Dim("[y/n]") + "\n")
	} else if m.status != "" {
		b.WriteString("  " + m.status + "\n")
	}
	b.WriteString("  " + m.help.View(m.keys) + "\n")
	return b.String()
}
