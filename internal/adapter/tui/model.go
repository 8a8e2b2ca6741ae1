package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	domain "user-console/internal/domain/user"
	"user-console/internal/usecase/console"
)

// Mode is the active screen.
type Mode int

const (
	ModeTable Mode = iota
	ModeForm
)

// noticeRefresh re-renders so that expired notices disappear.
const noticeRefresh = 500 * time.Millisecond

// formFields are the form inputs, in focus order.
var formFields = []string{console.FieldName, console.FieldEmail, console.FieldDepartment}

// Options tunes the terminal console.
type Options struct {
	RequestTimeout time.Duration
}

// Model is the terminal console. It renders the Store's Snapshot and turns
// key presses into Store commands; remote work runs in tea.Cmds.
type Model struct {
	ctx     context.Context
	store   *console.Store
	timeout time.Duration
	log     *zap.Logger

	mode   Mode
	busy   bool
	table  table.Model
	inputs []textinput.Model
	focus  int
	snap   console.Snapshot

	width  int
	height int
}

// Messages delivered back to Update when a tea.Cmd finishes.
type (
	loadedMsg    struct{ err error }
	dispatchMsg  struct{ err error }
	submittedMsg struct{ err error }
	tickMsg      time.Time
)

// New creates a Model over store. ctx bounds every remote call.
func New(ctx context.Context, store *console.Store, opts Options, log *zap.Logger) Model {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 4},
			{Title: "First Name", Width: 14},
			{Title: "Last Name", Width: 16},
			{Title: "Email", Width: 28},
			{Title: "Department", Width: 22},
		}),
		table.WithFocused(true),
		table.WithHeight(domain.PageSize),
	)
	t.SetStyles(tableStyles())

	inputs := make([]textinput.Model, len(formFields))
	for i, field := range formFields {
		ti := textinput.New()
		ti.Placeholder = field
		ti.Prompt = ""
		ti.CharLimit = 100
		inputs[i] = ti
	}

	m := Model{
		ctx:     ctx,
		store:   store,
		timeout: opts.RequestTimeout,
		log:     log,
		mode:    ModeTable,
		table:   t,
		inputs:  inputs,
	}
	m.refresh()
	return m
}

// Init starts the initial load and the notice refresh loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), tick())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tick()

	case loadedMsg:
		m.busy = false
		if msg.err != nil {
			m.log.Debug("load failed", zap.Error(msg.err))
		}
		m.refresh()
		return m, nil

	case dispatchMsg:
		m.busy = false
		if msg.err != nil {
			m.log.Debug("command failed", zap.Error(msg.err))
		}
		m.refresh()
		return m, nil

	case submittedMsg:
		m.busy = false
		m.refresh()
		if m.mode == ModeForm {
			m.syncInputs()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.mode == ModeForm {
			return m.handleFormKeys(msg)
		}
		return m.handleTableKeys(msg)
	}

	return m, nil
}

// refresh re-reads the Store and rebuilds the table rows.
func (m *Model) refresh() {
	m.snap = m.store.Snapshot()

	rows := make([]table.Row, 0, len(m.snap.Rows))
	for _, r := range m.snap.Rows {
		rows = append(rows, table.Row{
			formatID(r.ID),
			r.FirstName,
			r.LastName,
			r.Email,
			r.Department,
		})
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}

	if m.snap.Form == nil && m.mode == ModeForm {
		m.closeForm()
	}
}

// selectedRow returns the row under the table cursor.
func (m Model) selectedRow() (console.Row, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.snap.Rows) {
		return console.Row{}, false
	}
	return m.snap.Rows[c], true
}

func (m Model) callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(m.ctx, m.timeout)
}

func (m Model) load() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := m.callContext()
		defer cancel()
		return loadedMsg{err: store.EnsureLoaded(ctx)}
	}
}

func (m Model) dispatch(cmd console.Command) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := m.callContext()
		defer cancel()
		return dispatchMsg{err: store.Dispatch(ctx, cmd)}
	}
}

func (m Model) submit(form *console.Form) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.callContext()
		defer cancel()
		return submittedMsg{err: form.Submit(ctx)}
	}
}

func tick() tea.Cmd {
	return tea.Tick(noticeRefresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
