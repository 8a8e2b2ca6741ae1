package tui

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"user-console/internal/usecase/console"
)

// handleTableKeys handles keyboard input while the table is shown.
func (m Model) handleTableKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "left", "p":
		m.store.Paginate(m.snap.Pagination.Page - 1)
		m.refresh()
		return m, nil

	case "right", "n":
		m.store.Paginate(m.snap.Pagination.Page + 1)
		m.refresh()
		return m, nil

	case "r":
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.dispatch(console.Load{})

	case "a":
		if err := m.store.BeginAdd(); err != nil {
			return m, nil
		}
		return m.openForm()

	case "e", "enter":
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		if err := m.store.Dispatch(m.ctx, row.Edit()); err != nil {
			return m, nil
		}
		return m.openForm()

	case "d":
		row, ok := m.selectedRow()
		if !ok || m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.dispatch(row.Delete())
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// handleFormKeys handles keyboard input while the form is open.
func (m Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form := m.store.Form()
	if form == nil {
		m.closeForm()
		return m, nil
	}

	switch msg.String() {
	case "esc":
		if err := form.Cancel(m.ctx); err != nil {
			m.log.Debug("cancel failed", zap.Error(err))
		}
		m.refresh()
		m.closeForm()
		return m, nil

	case "tab", "down":
		return m, m.focusInput((m.focus + 1) % len(m.inputs))

	case "shift+tab", "up":
		return m, m.focusInput((m.focus + len(m.inputs) - 1) % len(m.inputs))

	case "enter":
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.submit(form)
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if err := form.Change(formFields[m.focus], m.inputs[m.focus].Value()); err != nil {
		m.log.Debug("form change rejected", zap.Error(err))
	}
	m.refresh()
	return m, cmd
}

func (m Model) openForm() (tea.Model, tea.Cmd) {
	m.mode = ModeForm
	m.refresh()
	m.syncInputs()
	m.table.Blur()
	return m, m.focusInput(0)
}

func (m *Model) closeForm() {
	m.mode = ModeTable
	m.focus = 0
	for i := range m.inputs {
		m.inputs[i].Blur()
		m.inputs[i].SetValue("")
	}
	m.table.Focus()
}

// syncInputs copies the form draft into the inputs.
func (m *Model) syncInputs() {
	if m.snap.Form == nil {
		return
	}
	d := m.snap.Form.Draft
	m.inputs[0].SetValue(d.Name)
	m.inputs[1].SetValue(d.Email)
	m.inputs[2].SetValue(d.Company.Name)
}

func (m *Model) focusInput(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[i].Focus()
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
