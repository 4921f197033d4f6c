/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Seednode/yokaiquiz/i18n"
	"github.com/Seednode/yokaiquiz/quiz"
	"github.com/Seednode/yokaiquiz/roster"
)

const groupSize = 12

type Options struct {
	Roster     *roster.Roster
	Text       *i18n.Catalog
	Mode       string
	Lang       string
	Exclusions []string
	Tick       time.Duration
	Logf       func(format string, args ...any)
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))

	foundStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true)

	hiddenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3C3C3C"))

	victoryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FFA500")).
			Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	cellStyle = lipgloss.NewStyle().Width(18)
)

// frameMsg carries the sequence number of the frame it was scheduled for.
type frameMsg struct {
	seq uint64
}

// frames adapts quiz.Scheduler to the bubbletea update loop. At most one
// frame is pending; a cancelled or superseded frame is dropped when its tick
// arrives.
type frames struct {
	tick    time.Duration
	seq     uint64
	pending func()
	armed   bool
}

func (f *frames) schedule(frame func()) func() {
	f.seq++
	seq := f.seq

	f.pending = frame
	f.armed = true

	return func() {
		if f.seq == seq {
			f.pending = nil
			f.armed = false
		}
	}
}

// cmd returns the tick for the most recently scheduled frame, if any.
func (f *frames) cmd() tea.Cmd {
	if !f.armed {
		return nil
	}
	f.armed = false

	seq := f.seq
	return tea.Tick(f.tick, func(time.Time) tea.Msg {
		return frameMsg{seq: seq}
	})
}

func (f *frames) run(msg frameMsg) {
	if msg.seq != f.seq || f.pending == nil {
		return
	}

	frame := f.pending
	f.pending = nil
	frame()
}

// board is the quiz.Renderer for the terminal.
type board struct {
	names   map[int]string
	total   int
	found   int
	elapsed string
	victory *quiz.Victory
}

func newBoard() *board {
	return &board{
		names:   make(map[int]string),
		elapsed: quiz.FormatElapsed(0),
	}
}

func (b *board) Reveal(e *roster.Entity, lang string) {
	b.names[e.ID] = e.Names[lang].Display
}

func (b *board) UpdateScore(total, found int) {
	b.total = total
	b.found = found
}

func (b *board) ResetScore(total int) {
	b.total = total
	b.found = 0
	b.names = make(map[int]string)
	b.victory = nil
}

func (b *board) ShowTime(elapsed string) {
	b.elapsed = elapsed
}

func (b *board) Victory(v quiz.Victory) {
	b.victory = &v
}

type model struct {
	opts Options

	session *quiz.Session
	board   *board
	frames  *frames

	pool  []roster.Entity
	label string

	textInput textinput.Model
	viewport  viewport.Model
	ready     bool
	lastInput string

	width  int
	height int
}

func newModel(opts Options) (model, error) {
	if opts.Roster == nil || opts.Text == nil {
		return model{}, fmt.Errorf("%w: roster and translations are required", quiz.ErrConfiguration)
	}
	if opts.Tick <= 0 {
		opts.Tick = 100 * time.Millisecond
	}
	if opts.Lang == "" {
		opts.Lang = roster.DefaultLanguage
	}
	if opts.Mode == "" {
		opts.Mode = roster.ModeAll
	}
	if opts.Logf == nil {
		opts.Logf = func(string, ...any) {}
	}

	pool, err := opts.Roster.Pool(opts.Mode)
	if err != nil {
		return model{}, err
	}

	m := model{
		opts:   opts,
		board:  newBoard(),
		frames: &frames{tick: opts.Tick},
		pool:   pool,
		label:  opts.Roster.Label(opts.Mode, opts.Lang, opts.Text.T(opts.Lang, "quiz.modeAll")),
	}

	exclusions := opts.Exclusions
	if exclusions == nil {
		exclusions = quiz.DefaultExclusions
	}

	m.session = quiz.NewSession(m.board, m.frames.schedule,
		quiz.WithLanguage(opts.Lang),
		quiz.WithExclusions(exclusions),
		quiz.WithDiagnostics(opts.Logf),
	)

	ti := textinput.New()
	ti.Placeholder = opts.Text.T(opts.Lang, "quiz.placeholder")
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 40
	m.textInput = ti

	if err := m.session.Start(m.pool, m.label); err != nil {
		return model{}, err
	}

	return m, nil
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.frames.cmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyCtrlR:
			if err := m.session.Start(m.pool, m.label); err != nil {
				m.opts.Logf("TUI: Failed to restart: %v", err)
			}
			m.textInput.Reset()
			m.lastInput = ""
			m.refresh()
			return m, m.frames.cmd()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, max(msg.Height-8, 1))
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = max(msg.Height-8, 1)
		}
		m.refresh()

	case frameMsg:
		m.frames.run(msg)
		return m, m.frames.cmd()
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	cmds = append(cmds, cmd)

	if value := m.textInput.Value(); value != m.lastInput {
		m.lastInput = value

		added, err := m.session.HandleInput(value)
		if err != nil && !errors.Is(err, quiz.ErrInvalidState) {
			m.opts.Logf("TUI: Failed to handle input: %v", err)
		}
		if added > 0 {
			m.textInput.Reset()
			m.lastInput = ""
		}
		m.refresh()
	}

	cmds = append(cmds, m.frames.cmd())

	return m, tea.Batch(cmds...)
}

func (m *model) refresh() {
	if m.ready {
		m.viewport.SetContent(m.renderGrid())
	}
}

func (m model) View() string {
	header := titleStyle.Render(m.label)

	status := statusStyle.Render(fmt.Sprintf("%s %s    %s %d/%d",
		m.opts.Text.T(m.opts.Lang, "quiz.time"), m.board.elapsed,
		m.opts.Text.T(m.opts.Lang, "quiz.found"), m.board.found, m.board.total,
	))

	grid := m.renderGrid()
	if m.ready {
		grid = m.viewport.View()
	}

	parts := []string{header, status, "", m.textInput.View(), "", grid}

	if v := m.board.victory; v != nil {
		msg := strings.Replace(m.opts.Text.T(m.opts.Lang, "quiz.victory"), "%s", v.Label, 1)
		parts = append(parts, victoryStyle.Render(
			m.opts.Text.T(m.opts.Lang, "quiz.congrats")+"\n"+msg+"\n"+
				m.opts.Text.T(m.opts.Lang, "quiz.time")+" "+v.Elapsed,
		))
	}

	parts = append(parts, helpStyle.Render(m.opts.Text.T(m.opts.Lang, "play.help")))

	return "\n" + lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}

// renderGrid lays the pool out in groups of twelve, four to a row.
func (m model) renderGrid() string {
	var groups []string

	for start := 0; start < len(m.pool); start += groupSize {
		end := min(start+groupSize, len(m.pool))

		var rows []string
		var row []string
		for i := start; i < end; i++ {
			row = append(row, m.renderCell(&m.pool[i]))
			if len(row) == 4 {
				rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
				row = nil
			}
		}
		if len(row) > 0 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
		}

		groups = append(groups, lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	return strings.Join(groups, "\n\n")
}

func (m model) renderCell(e *roster.Entity) string {
	if name, ok := m.board.names[e.ID]; ok {
		return cellStyle.Render(foundStyle.Render(name))
	}
	return cellStyle.Render(hiddenStyle.Render("???"))
}

// Run plays one pool in the terminal until the player quits or ctx is done.
func Run(ctx context.Context, opts Options, programOpts ...tea.ProgramOption) error {
	m, err := newModel(opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, programOpts...)...)

	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}
