package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"user-console/internal/usecase/console"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	helpStyle    = lipgloss.NewStyle().Faint(true)
	labelStyle   = lipgloss.NewStyle().Width(12)
	tableBox     = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240"))
	formBox      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).BorderForeground(lipgloss.Color("12"))
)

var formLabels = []string{"Name", "Email", "Department"}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	return s
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Users"))
	b.WriteString("\n")

	switch {
	case m.snap.Error != "":
		b.WriteString(errorStyle.Render(m.snap.Error))
	case !m.snap.Loaded:
		b.WriteString(helpStyle.Render("Loading..."))
	}
	b.WriteString("\n")

	b.WriteString(tableBox.Render(m.table.View()))
	b.WriteString("\n")

	p := m.snap.Pagination
	b.WriteString(fmt.Sprintf("%s  Page %d of %d  %s\n",
		pagerLabel("< Prev", p.HasPrev()), p.Page, p.TotalPages, pagerLabel("Next >", p.HasNext())))

	if m.mode == ModeForm && m.snap.Form != nil {
		b.WriteString(m.formView(m.snap.Form))
		b.WriteString("\n")
	}

	for _, n := range m.snap.Notices {
		b.WriteString(noticeView(n))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(m.help()))
	return b.String()
}

func (m Model) formView(f *console.FormState) string {
	var b strings.Builder
	if f.Editing {
		b.WriteString(titleStyle.Render(fmt.Sprintf("Edit user %d", f.ID)))
	} else {
		b.WriteString(titleStyle.Render("New user"))
	}
	b.WriteString("\n")

	for i, in := range m.inputs {
		b.WriteString(labelStyle.Render(formLabels[i]))
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	if f.Error != "" {
		b.WriteString(errorStyle.Render(f.Error))
		b.WriteString("\n")
	}
	if m.busy {
		b.WriteString(helpStyle.Render("Saving..."))
	}
	return formBox.Render(strings.TrimRight(b.String(), "\n"))
}

func noticeView(n console.Notice) string {
	if n.Kind == console.NoticeError {
		return errorStyle.Render("✗ " + n.Message)
	}
	return successStyle.Render("✓ " + n.Message)
}

func pagerLabel(label string, enabled bool) string {
	if enabled {
		return label
	}
	return helpStyle.Render(label)
}

func (m Model) help() string {
	if m.mode == ModeForm {
		return "tab: next field • enter: save • esc: cancel"
	}
	return "↑/↓: select • ←/→: page • a: add • e: edit • d: delete • r: reload • q: quit"
}
