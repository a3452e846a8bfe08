package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/adanyl0v/todo-planner/internal/models"
	"github.com/adanyl0v/todo-planner/internal/tasklist"
)

const dateFormat = "Jan 2"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			MarginBottom(1)

	filterStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("250")).Background(lipgloss.Color("238"))
	activeFilterStyle = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("27"))

	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	selectedStyle = lipgloss.NewStyle().Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)

	notificationStyles = map[notificationKind]lipgloss.Style{
		notifySuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		notifyInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		notifyError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
)

// statusColor mirrors the card borders: grey, yellow and green.
func statusColor(s models.Status) lipgloss.Color {
	switch s {
	case models.StatusInProgress:
		return lipgloss.Color("220")
	case models.StatusCompleted:
		return lipgloss.Color("42")
	default:
		return lipgloss.Color("244")
	}
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("My Project Planner"))
	b.WriteString("\n")

	if m.mode == modeForm {
		m.writeForm(&b)
	} else {
		m.writeFilters(&b)
		m.writeTasks(&b)
	}

	if m.notification != nil {
		b.WriteString("\n")
		b.WriteString(notificationStyles[m.notification.kind].Render(m.notification.text))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(m.help()))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) writeFilters(b *strings.Builder) {
	counts := m.tasks.Counts()
	tabs := make([]string, 0, len(tasklist.Filters))
	for i, f := range tasklist.Filters {
		label := fmt.Sprintf("%d %s", i, f)
		if f != tasklist.FilterAll {
			label = fmt.Sprintf("%s (%d)", label, counts[models.Status(f)])
		}

		style := filterStyle
		if f == m.tasks.Filter() {
			style = activeFilterStyle
		}
		tabs = append(tabs, style.Render(label))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")
}

func (m *Model) writeTasks(b *strings.Builder) {
	if m.loading {
		b.WriteString(mutedStyle.Render("Loading tasks..."))
		b.WriteString("\n")
		return
	}

	visible := m.tasks.Visible()
	if len(visible) == 0 {
		b.WriteString(mutedStyle.Render("No tasks found for this status."))
		b.WriteString("\n")
		return
	}

	for i, task := range visible {
		b.WriteString(renderTask(task, i == m.cursor))
		b.WriteString("\n")
	}
}

func renderTask(task *models.Task, selected bool) string {
	completed := task.Status == models.StatusCompleted

	title := lipgloss.NewStyle().Bold(true).Strikethrough(completed)
	if completed {
		title = title.Foreground(lipgloss.Color("245"))
	}
	if selected {
		title = title.Inherit(selectedStyle).Underline(true)
	}

	lines := []string{
		title.Render(task.Title),
	}
	if task.Description != "" {
		lines = append(lines, mutedStyle.Strikethrough(completed).Render(task.Description))
	}
	lines = append(lines, mutedStyle.Render(fmt.Sprintf("Due: %s  ", task.DueDate.Format(dateFormat)))+
		lipgloss.NewStyle().Foreground(statusColor(task.Status)).Render(string(task.Status)))

	marker := "  "
	if selected {
		marker = "> "
	}

	card := lipgloss.NewStyle().
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(statusColor(task.Status)).
		PaddingLeft(1).
		Render(strings.Join(lines, "\n"))
	return lipgloss.JoinHorizontal(lipgloss.Center, marker, card)
}

func (m *Model) writeForm(b *strings.Builder) {
	b.WriteString("New task\n\n")
	for _, input := range m.inputs {
		b.WriteString(input.View())
		b.WriteString("\n")
	}
}

func (m *Model) help() string {
	if m.mode == modeForm {
		return "enter next/submit • tab switch field • esc cancel"
	}
	return "tab/0-3 filter • ↑/↓ select • n new • s status • d delete • r refresh • q quit"
}
