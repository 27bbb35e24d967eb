// Package cli provides the single-session, in-memory task list. Nothing
// here touches the network or the durable store; state lives exactly as
// long as the program.
package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/taskloft/taskloft-be/internal/models"
	"github.com/taskloft/taskloft-be/internal/services"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170")).Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
)

// Model is the bubbletea model for the session task list.
type Model struct {
	svc     services.TaskServiceProvider
	ownerID int64

	tasks  []models.Task
	cursor int
	mode   mode
	input  string
	editID int64
	err    error
}

// NewModel builds the TUI over a task service scoped to one local owner.
func NewModel(svc services.TaskServiceProvider, ownerID int64) *Model {
	m := &Model{svc: svc, ownerID: ownerID}
	m.refresh()
	return m
}

// Run starts the interactive program.
func Run(svc services.TaskServiceProvider, ownerID int64) error {
	program := tea.NewProgram(NewModel(svc, ownerID), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func (m *Model) Init() tea.Cmd { return nil }

// Update handles key input for both the list and the text-entry modes.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.mode == modeAdd || m.mode == modeEdit {
		return m.updateInput(keyMsg)
	}
	return m.updateList(keyMsg)
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case "a":
		m.mode = modeAdd
		m.input = ""
	case "e":
		if t, ok := m.current(); ok {
			m.mode = modeEdit
			m.editID = t.ID
			m.input = t.Title
		}
	case "d":
		if t, ok := m.current(); ok {
			if _, err := m.svc.Delete(context.Background(), m.ownerID, t.ID); err != nil {
				m.err = err
			}
			m.refresh()
			if m.cursor >= len(m.tasks) && m.cursor > 0 {
				m.cursor--
			}
		}
	case " ", "enter":
		if t, ok := m.current(); ok {
			status := models.StatusCompleted
			if t.Status == models.StatusCompleted {
				status = models.StatusPending
			}
			if _, err := m.svc.Update(context.Background(), m.ownerID, t.ID, models.TaskUpdate{Status: &status}); err != nil {
				m.err = err
			}
			m.refresh()
		}
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeList
		m.input = ""
	case tea.KeyEnter:
		m.commitInput()
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			runes := []rune(m.input)
			m.input = string(runes[:len(runes)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	case tea.KeyCtrlC:
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) commitInput() {
	title := strings.TrimSpace(m.input)
	var err error
	if m.mode == modeAdd {
		_, err = m.svc.Create(context.Background(), m.ownerID, services.TaskCreateInput{Title: title})
	} else {
		_, err = m.svc.Update(context.Background(), m.ownerID, m.editID, models.TaskUpdate{Title: &title})
	}
	m.err = err
	m.mode = modeList
	m.input = ""
	m.refresh()
}

// View renders the task list.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("taskloft") + "\n\n")

	if len(m.tasks) == 0 {
		b.WriteString(helpStyle.Render("  no tasks yet") + "\n")
	}
	for i, t := range m.tasks {
		check := "[ ]"
		line := t.Title
		if t.Status == models.StatusCompleted {
			check = "[x]"
			line = doneStyle.Render(line)
		}
		row := fmt.Sprintf("  %s %s", check, line)
		if i == m.cursor && m.mode == modeList {
			row = selectedStyle.Render("> " + strings.TrimPrefix(row, "  "))
		}
		b.WriteString(row + "\n")
	}

	switch m.mode {
	case modeAdd:
		b.WriteString("\n" + promptStyle.Render("new task: ") + m.input + "█\n")
	case modeEdit:
		b.WriteString("\n" + promptStyle.Render("edit task: ") + m.input + "█\n")
	default:
		b.WriteString("\n" + helpStyle.Render("a add · e edit · d delete · space toggle · q quit") + "\n")
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render("error: "+m.err.Error()) + "\n")
	}
	return b.String()
}

func (m *Model) current() (models.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return models.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func (m *Model) refresh() {
	tasks, err := m.svc.ListByOwner(context.Background(), m.ownerID)
	if err != nil {
		m.err = err
		return
	}
	m.tasks = tasks
}

// Tasks exposes the current snapshot for tests.
func (m *Model) Tasks() []models.Task { return m.tasks }
