// Package tui is the terminal front end of the todo planner.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/todo-planner/internal/client"
	"github.com/adanyl0v/todo-planner/internal/models"
	"github.com/adanyl0v/todo-planner/internal/tasklist"
)

const (
	defaultNotificationTTL = 3 * time.Second
	defaultRequestTimeout  = 10 * time.Second
)

// TaskAPI is the subset of the REST client the UI needs.
type TaskAPI interface {
	List(ctx context.Context) ([]*models.Task, error)
	Create(ctx context.Context, input client.CreateInput) (*models.Task, error)
	SetStatus(ctx context.Context, id string, status models.Status) (*models.Task, error)
	Delete(ctx context.Context, id string) error
}

type Option func(*Model)

func WithLogger(logger zerolog.Logger) Option {
	return func(m *Model) {
		m.logger = logger
	}
}

func WithNotificationTTL(ttl time.Duration) Option {
	return func(m *Model) {
		m.notificationTTL = ttl
	}
}

// WithClock overrides the clock used to reject due dates in the past.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		m.now = now
	}
}

// Run starts the UI and blocks until the user quits or ctx is done.
func Run(ctx context.Context, api TaskAPI, opts ...Option) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	program := tea.NewProgram(New(api, opts...), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

type mode int

const (
	modeList mode = iota
	modeForm
)

const (
	fieldTitle = iota
	fieldDescription
	fieldDueDate
	fieldCount
)

type notificationKind int

const (
	notifySuccess notificationKind = iota
	notifyInfo
	notifyError
)

type notification struct {
	id   int
	kind notificationKind
	text string
}

type Model struct {
	api    TaskAPI
	logger zerolog.Logger
	now    func() time.Time

	tasks   *tasklist.List
	cursor  int
	loading bool
	busy    bool

	mode   mode
	inputs []textinput.Model
	focus  int

	notificationTTL time.Duration
	notificationSeq int
	notification    *notification

	width int
}

type (
	tasksLoadedMsg struct {
		tasks []*models.Task
		err   error
	}
	taskCreatedMsg struct {
		task *models.Task
		err  error
	}
	taskUpdatedMsg struct {
		task *models.Task
		err  error
	}
	taskDeletedMsg struct {
		id  string
		err error
	}
	notificationExpiredMsg struct {
		id int
	}
)

func New(api TaskAPI, opts ...Option) *Model {
	m := &Model{
		api:             api,
		logger:          zerolog.Nop(),
		now:             time.Now,
		tasks:           tasklist.New(),
		notificationTTL: defaultNotificationTTL,
		inputs:          newInputs(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func newInputs() []textinput.Model {
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Cursor.SetMode(cursor.CursorStatic)
		ti.CharLimit = 200
		ti.Width = 48
		switch i {
		case fieldTitle:
			ti.Prompt = "Title:       "
			ti.Placeholder = "New task title..."
		case fieldDescription:
			ti.Prompt = "Description: "
			ti.Placeholder = "Description..."
			ti.CharLimit = 1000
		case fieldDueDate:
			ti.Prompt = "Due date:    "
			ti.Placeholder = models.DueDateLayout
			ti.CharLimit = len(models.DueDateLayout)
		}
		inputs[i] = ti
	}
	return inputs
}

func (m *Model) Init() tea.Cmd {
	m.loading = true
	return m.fetchTasks()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.mode == modeForm {
			return m.updateForm(msg)
		}
		return m.updateList(msg)
	case tasksLoadedMsg:
		return m, m.handleTasksLoaded(msg)
	case taskCreatedMsg:
		return m, m.handleTaskCreated(msg)
	case taskUpdatedMsg:
		return m, m.handleTaskUpdated(msg)
	case taskDeletedMsg:
		return m, m.handleTaskDeleted(msg)
	case notificationExpiredMsg:
		if m.notification != nil && m.notification.id == msg.id {
			m.notification = nil
		}
		return m, nil
	}

	if m.mode == modeForm {
		return m, m.updateFocusedInput(msg)
	}
	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q":
		return m, tea.Quit
	case "tab":
		m.setFilter(m.tasks.Filter().Next())
	case "0", "1", "2", "3":
		m.setFilter(tasklist.Filters[key[0]-'0'])
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.tasks.Visible())-1 {
			m.cursor++
		}
	case "n":
		return m, m.openForm()
	case "r":
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, m.fetchTasks()
	case "s":
		task := m.selected()
		if task == nil || m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.setStatus(task.ID, task.Status.Next())
	case "d", "delete":
		task := m.selected()
		if task == nil || m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.deleteTask(task.ID)
	}
	return m, nil
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeForm()
		return m, nil
	case "tab", "down":
		return m, m.focusInput((m.focus + 1) % fieldCount)
	case "shift+tab", "up":
		return m, m.focusInput((m.focus + fieldCount - 1) % fieldCount)
	case "enter":
		if m.focus < fieldDueDate {
			return m, m.focusInput(m.focus + 1)
		}
		return m, m.submitForm()
	}
	return m, m.updateFocusedInput(msg)
}

func (m *Model) updateFocusedInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return cmd
}

func (m *Model) openForm() tea.Cmd {
	m.mode = modeForm
	for i := range m.inputs {
		m.inputs[i].Reset()
	}
	return m.focusInput(fieldTitle)
}

func (m *Model) closeForm() {
	m.mode = modeList
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

func (m *Model) focusInput(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[i].Focus()
}

func (m *Model) submitForm() tea.Cmd {
	if m.busy {
		return nil
	}

	title := strings.TrimSpace(m.inputs[fieldTitle].Value())
	if title == "" {
		return m.notify(notifyError, "Task title is required.")
	}

	rawDueDate := strings.TrimSpace(m.inputs[fieldDueDate].Value())
	if rawDueDate == "" {
		return m.notify(notifyError, "Due date is required.")
	}
	dueDate, err := time.Parse(models.DueDateLayout, rawDueDate)
	if err != nil {
		return m.notify(notifyError, "Due date must look like "+models.DueDateLayout+".")
	}
	if dueDate.Before(today(m.now())) {
		return m.notify(notifyError, "Due date cannot be in the past.")
	}

	m.busy = true
	return m.createTask(client.CreateInput{
		Title:       title,
		Description: strings.TrimSpace(m.inputs[fieldDescription].Value()),
		DueDate:     rawDueDate,
	})
}

func (m *Model) handleTasksLoaded(msg tasksLoadedMsg) tea.Cmd {
	m.loading = false
	if msg.err != nil {
		m.logger.Error().
			Err(msg.err).
			Msg("failed to fetch tasks")
		m.tasks.Replace(nil)
		m.clampCursor()
		return m.notify(notifyError, errorMessage(msg.err, "Failed to fetch tasks."))
	}

	m.tasks.Replace(msg.tasks)
	m.clampCursor()
	return nil
}

func (m *Model) handleTaskCreated(msg taskCreatedMsg) tea.Cmd {
	m.busy = false
	if msg.err != nil {
		m.logger.Error().
			Err(msg.err).
			Msg("failed to create task")
		return m.notify(notifyError, errorMessage(msg.err, "Failed to add task."))
	}

	m.tasks.Insert(msg.task)
	m.closeForm()
	return m.notify(notifySuccess, "Task added successfully!")
}

func (m *Model) handleTaskUpdated(msg taskUpdatedMsg) tea.Cmd {
	m.busy = false
	if msg.err != nil {
		m.logger.Error().
			Err(msg.err).
			Msg("failed to update task status")
		return m.notify(notifyError, errorMessage(msg.err, "Failed to update status."))
	}

	m.tasks.Patch(msg.task)
	m.clampCursor()
	return m.notify(notifyInfo, fmt.Sprintf("Status set to %s.", msg.task.Status))
}

func (m *Model) handleTaskDeleted(msg taskDeletedMsg) tea.Cmd {
	m.busy = false
	if msg.err != nil {
		m.logger.Error().
			Err(msg.err).
			Str("id", msg.id).
			Msg("failed to delete task")
		return m.notify(notifyError, errorMessage(msg.err, "Failed to delete task."))
	}

	m.tasks.Remove(msg.id)
	m.clampCursor()
	return m.notify(notifyInfo, "Task deleted.")
}

// notify replaces the current notification and schedules its expiry.
func (m *Model) notify(kind notificationKind, text string) tea.Cmd {
	m.notificationSeq++
	id := m.notificationSeq
	m.notification = &notification{id: id, kind: kind, text: text}
	return tea.Tick(m.notificationTTL, func(time.Time) tea.Msg {
		return notificationExpiredMsg{id: id}
	})
}

func (m *Model) setFilter(f tasklist.Filter) {
	m.tasks.SetFilter(f)
	m.cursor = 0
}

func (m *Model) selected() *models.Task {
	visible := m.tasks.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return nil
	}
	return visible[m.cursor]
}

func (m *Model) clampCursor() {
	n := len(m.tasks.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) fetchTasks() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), defaultRequestTimeout)
		defer cancel()

		tasks, err := api.List(ctx)
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
}

func (m *Model) createTask(input client.CreateInput) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), defaultRequestTimeout)
		defer cancel()

		task, err := api.Create(ctx, input)
		return taskCreatedMsg{task: task, err: err}
	}
}

func (m *Model) setStatus(id string, status models.Status) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), defaultRequestTimeout)
		defer cancel()

		task, err := api.SetStatus(ctx, id, status)
		return taskUpdatedMsg{task: task, err: err}
	}
}

func (m *Model) deleteTask(id string) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), defaultRequestTimeout)
		defer cancel()

		return taskDeletedMsg{id: id, err: api.Delete(ctx, id)}
	}
}

// errorMessage prefers the message sent by the server.
func errorMessage(err error, fallback string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func today(now time.Time) time.Time {
	y, mo, d := now.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
