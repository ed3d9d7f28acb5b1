// Package tui is the interactive todo list: filter tabs, a create form and
// an animated list that reconciles every refresh against what is on screen.
package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tada/internal/animate"
	"github.com/Makepad-fr/tada/internal/log"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/service"
	"github.com/Makepad-fr/tada/internal/ui"
	"github.com/Makepad-fr/tada/internal/view"
)

const frameInterval = time.Second / 30

type Options struct {
	Filter model.Filter
	Policy animate.Policy
	// Timeout bounds each service call; zero means none.
	Timeout time.Duration
}

type (
	fetchedMsg struct {
		ticket view.Ticket
		todos  []model.Todo
		err    error
	}
	actionMsg struct {
		op   view.Op
		todo model.Todo
		err  error
	}
	createdMsg struct {
		todo model.Todo
		err  error
	}
	frameMsg time.Time
)

type ghost struct {
	todo model.Todo
	at   int
}

type Model struct {
	ctx   context.Context
	opts  Options
	theme ui.Theme

	list *view.ListView
	tabs *view.Tabs
	form *view.Form

	keys   keyMap
	help   help.Model
	input  textinput.Model
	rows   list.Model
	spin   spinner.Spinner
	motion *motion

	// shown is the rendered set the rows were last built from.
	shown  []model.Todo
	ghosts []ghost

	adding    bool
	busySince time.Time
	status    string
	statusErr bool
	width     int
	height    int

	now      func() time.Time
	schedule func(time.Duration, func(time.Time) tea.Msg) tea.Cmd
}

// New builds the model. Nothing is fetched until Init runs.
func New(ctx context.Context, svc service.TodoService, opts Options) Model {
	if opts.Policy.Duration == 0 {
		opts.Policy = animate.DefaultPolicy
	}
	theme := ui.Current()
	tabs := view.NewTabs(opts.Filter)
	mo := &motion{}

	rows := list.New(nil, delegate{theme: theme, motion: mo}, 76, 14)
	rows.SetShowTitle(false)
	rows.SetShowHelp(false)
	rows.SetShowStatusBar(false)
	rows.SetFilteringEnabled(false)
	rows.SetShowPagination(true)
	rows.SetStatusBarItemName("todo", "todos")
	rows.Styles.PaginationStyle = theme.Help
	rows.Styles.NoItems = theme.Muted

	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "What needs doing?"
	in.CharLimit = service.MaxBodyLength
	in.Cursor.SetMode(cursor.CursorStatic)

	h := help.New()
	h.Styles.ShortKey = theme.Accent
	h.Styles.ShortDesc = theme.Help
	h.Styles.ShortSeparator = theme.Help

	return Model{
		ctx:      ctx,
		opts:     opts,
		theme:    theme,
		list:     view.New(svc, tabs.Selected()),
		tabs:     tabs,
		form:     &view.Form{},
		keys:     defaultKeys(),
		help:     h,
		input:    in,
		rows:     rows,
		spin:     spinner.MiniDot,
		motion:   mo,
		width:    80,
		height:   24,
		now:      time.Now,
		schedule: tea.Tick,
	}
}

// Run starts the program and blocks until the user quits or ctx ends.
func Run(ctx context.Context, svc service.TodoService, opts Options) error {
	p := tea.NewProgram(New(ctx, svc, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return m.fetch()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case fetchedMsg:
		if msg.err != nil {
			if m.list.Current(msg.ticket) {
				m.setError(msg.err)
			}
			return m, nil
		}
		tr, ok := m.list.ApplyFetch(msg.ticket, msg.todos)
		if !ok {
			return m, nil
		}
		cmd := m.play(tr)
		return m, cmd

	case actionMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		verb := "toggled"
		if msg.op == view.OpDelete {
			verb = "deleted"
		}
		m.setStatus(fmt.Sprintf("%s #%d", verb, msg.todo.ID))
		return m, m.fetch()

	case createdMsg:
		m.form.End()
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.form.Reset()
		m.input.Reset()
		m.closeForm()
		m.setStatus(fmt.Sprintf("added #%d", msg.todo.ID))
		return m, m.fetch()

	case frameMsg:
		now := time.Time(msg)
		m.motion.ticking = false
		m.motion.now = now
		if m.motion.timeline != nil && m.motion.timeline.Done(now) {
			m.motion.timeline = nil
			m.ghosts = nil
			m.syncRows()
		}
		cmd := m.ensureTicking()
		return m, cmd

	case tea.KeyMsg:
		if m.adding {
			return m.updateForm(msg)
		}
		return m.updateList(msg)
	}

	var cmd tea.Cmd
	m.rows, cmd = m.rows.Update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		cmd := m.start(view.OpToggle)
		return m, cmd
	case key.Matches(msg, m.keys.Delete):
		cmd := m.start(view.OpDelete)
		return m, cmd
	case key.Matches(msg, m.keys.Add):
		m.adding = true
		m.input.SetValue(m.form.Draft())
		m.input.CursorEnd()
		cmd := m.input.Focus()
		m.resize()
		return m, cmd
	case key.Matches(msg, m.keys.NextTab):
		cmd := m.selectFilter(m.tabs.Next())
		return m, cmd
	case key.Matches(msg, m.keys.PrevTab):
		cmd := m.selectFilter(m.tabs.Prev())
		return m, cmd
	case key.Matches(msg, m.keys.Refresh):
		return m, m.fetch()
	}

	var cmd tea.Cmd
	m.rows, cmd = m.rows.Update(msg)
	m.skipGhost()
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.Cancel):
		m.form.SetDraft(m.input.Value())
		m.closeForm()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		body, err := m.form.Begin(m.input.Value())
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.busySince = m.now()
		m.status = ""
		submit := func() tea.Msg {
			ctx, cancel := m.callContext()
			defer cancel()
			td, err := m.list.Submit(ctx, body)
			return createdMsg{todo: td, err: err}
		}
		tick := m.ensureTicking()
		return m, tea.Batch(submit, tick)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.form.SetDraft(m.input.Value())
	return m, cmd
}

func (m *Model) closeForm() {
	m.adding = false
	m.input.Blur()
	m.resize()
}

func (m *Model) selectFilter(f model.Filter) tea.Cmd {
	m.list.SelectFilter(f)
	m.status = ""
	return m.fetch()
}

// fetch issues a ticket now and runs the query off the update loop.
func (m *Model) fetch() tea.Cmd {
	t := m.list.BeginFetch()
	return func() tea.Msg {
		ctx, cancel := m.callContext()
		defer cancel()
		todos, err := m.list.Fetch(ctx, t)
		return fetchedMsg{ticket: t, todos: todos, err: err}
	}
}

func (m *Model) start(op view.Op) tea.Cmd {
	td, ok := m.selected()
	if !ok {
		return nil
	}
	run, err := m.list.Start(op, td.ID)
	if err != nil {
		m.setError(err)
		return nil
	}
	m.busySince = m.now()
	m.status = ""
	return tea.Batch(func() tea.Msg {
		ctx, cancel := m.callContext()
		defer cancel()
		return actionMsg{op: op, todo: td, err: run(ctx)}
	}, m.ensureTicking())
}

func (m *Model) callContext() (context.Context, context.CancelFunc) {
	if m.opts.Timeout > 0 {
		return context.WithTimeout(m.ctx, m.opts.Timeout)
	}
	return context.WithCancel(m.ctx)
}

// play starts animating tr. Rows that exited stay on screen as ghosts, at
// their old position, until the timeline ends.
func (m *Model) play(tr view.Transition) tea.Cmd {
	var ghosts []ghost
	for _, c := range tr.Exiting {
		if c.From >= 0 && c.From < len(m.shown) {
			ghosts = append(ghosts, ghost{todo: m.shown[c.From], at: c.From})
		}
	}
	m.shown = m.list.Todos()

	now := m.now()
	m.motion.now = now
	if tr.Empty() {
		m.motion.timeline = nil
		m.ghosts = nil
	} else {
		m.motion.timeline = animate.NewTimeline(tr, m.opts.Policy, now)
		m.ghosts = ghosts
	}
	m.syncRows()
	return m.ensureTicking()
}

func (m *Model) busy() bool {
	return m.list.InFlight() || m.form.Submitting()
}

// ensureTicking keeps one frame tick outstanding while anything moves.
func (m *Model) ensureTicking() tea.Cmd {
	if m.schedule == nil || m.motion.ticking {
		return nil
	}
	if m.motion.timeline == nil && !m.busy() {
		return nil
	}
	m.motion.ticking = true
	return m.schedule(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m *Model) syncRows() {
	selected, hadSel := m.selected()

	items := make([]list.Item, 0, len(m.shown)+len(m.ghosts))
	for _, td := range m.shown {
		items = append(items, row{todo: td})
	}
	for _, g := range m.ghosts {
		items = slices.Insert(items, min(g.at, len(items)), list.Item(row{todo: g.todo, ghost: true}))
	}
	m.rows.SetItems(items)

	if hadSel {
		for i, it := range items {
			if r := it.(row); !r.ghost && r.todo.ID == selected.ID {
				m.rows.Select(i)
				return
			}
		}
	}
	m.skipGhost()
}

// skipGhost moves the cursor off a ghost row, preferring the next live one.
func (m *Model) skipGhost() {
	items := m.rows.Items()
	i := m.rows.Index()
	if i < 0 || i >= len(items) || !items[i].(row).ghost {
		return
	}
	for j := i + 1; j < len(items); j++ {
		if !items[j].(row).ghost {
			m.rows.Select(j)
			return
		}
	}
	for j := i - 1; j >= 0; j-- {
		if !items[j].(row).ghost {
			m.rows.Select(j)
			return
		}
	}
}

func (m *Model) selected() (model.Todo, bool) {
	r, ok := m.rows.SelectedItem().(row)
	if !ok || r.ghost {
		return model.Todo{}, false
	}
	return r.todo, true
}

func (m *Model) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) setError(err error) {
	l := log.With("tui")
	l.Debug().Err(err).Msg("action failed")
	m.status, m.statusErr = errMessage(err), true
}

func errMessage(err error) string {
	switch {
	case errors.Is(err, view.ErrBusy):
		return "busy: wait for the last change to finish"
	case errors.Is(err, service.ErrEmptyBody):
		return "a todo needs some text"
	case errors.Is(err, service.ErrBodyTooLong):
		return fmt.Sprintf("a todo is at most %d characters", service.MaxBodyLength)
	case errors.Is(err, service.ErrNotFound):
		return "that todo no longer exists; press r to refresh"
	case errors.Is(err, service.ErrUnauthorized):
		return "not authorized; run tada auth login"
	}
	return err.Error()
}

// chrome is the number of lines around the list.
func (m *Model) chrome() int {
	n := 7
	if m.adding {
		n += 4
	}
	return n
}

func (m *Model) resize() {
	m.rows.SetSize(max(m.width-4, 20), max(m.height-m.chrome(), 3))
	m.input.Width = max(m.width-12, 10)
}

func (m Model) View() string {
	t := m.theme
	var b strings.Builder

	b.WriteString(t.Title.Render("Todos") + "   " + ui.Summary(m.shown, 16))
	b.WriteString("\n")
	b.WriteString(m.tabsView())
	b.WriteString("\n\n")

	if m.list.Loaded() {
		b.WriteString(m.rows.View())
	} else if !m.statusErr {
		b.WriteString(t.Muted.Render("Loading…"))
	}

	if m.adding {
		box := lipgloss.NewStyle().
			Border(t.Border).
			BorderForeground(t.BorderColor).
			Padding(0, 1)
		b.WriteString("\n" + box.Render(t.Title.Render("New todo")+"\n"+m.input.View()))
	}

	b.WriteString("\n" + m.statusView() + "\n")
	if m.adding {
		b.WriteString(m.help.View(formKeys{m.keys}))
	} else {
		b.WriteString(m.help.View(m.keys))
	}

	frame := lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1)
	return frame.Render(b.String())
}

func (m Model) tabsView() string {
	tabs := make([]string, 0, len(model.Filters))
	for _, f := range model.Filters {
		if f == m.tabs.Selected() {
			tabs = append(tabs, m.theme.ActiveTab.Render(f.Title()))
		} else {
			tabs = append(tabs, m.theme.Tab.Render(f.Title()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) statusView() string {
	if m.busy() {
		frames := m.spin.Frames
		i := 0
		if elapsed := m.motion.now.Sub(m.busySince); elapsed > 0 && m.spin.FPS > 0 {
			i = int(elapsed/m.spin.FPS) % len(frames)
		}
		return m.theme.Accent.Render(frames[i]) + " " + m.theme.Muted.Render("saving…")
	}
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return m.theme.Error.Render(m.theme.SymFail + " " + m.status)
	}
	return m.theme.Muted.Render(m.status)
}
