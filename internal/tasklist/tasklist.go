// Package tasklist holds the client-side copy of the task list together with
// the status filter the user is looking through.
package tasklist

import (
	"slices"

	"github.com/adanyl0v/todo-planner/internal/models"
)

type Filter string

const (
	FilterAll        Filter = "All"
	FilterNotStarted Filter = Filter(models.StatusNotStarted)
	FilterInProgress Filter = Filter(models.StatusInProgress)
	FilterCompleted  Filter = Filter(models.StatusCompleted)
)

// Filters lists every filter in tab order.
var Filters = []Filter{
	FilterAll,
	FilterNotStarted,
	FilterInProgress,
	FilterCompleted,
}

func (f Filter) Next() Filter {
	i := slices.Index(Filters, f)
	return Filters[(i+1)%len(Filters)]
}

func (f Filter) Match(task *models.Task) bool {
	return f == FilterAll || models.Status(f) == task.Status
}

// List is not safe for concurrent use.
type List struct {
	tasks  []*models.Task
	filter Filter
}

func New() *List {
	return &List{filter: FilterAll}
}

func (l *List) Filter() Filter {
	return l.filter
}

func (l *List) SetFilter(f Filter) {
	if !slices.Contains(Filters, f) {
		f = FilterAll
	}
	l.filter = f
}

// Replace discards the current tasks in favour of all, keeping their order.
func (l *List) Replace(all []*models.Task) {
	l.tasks = slices.Clone(all)
}

// Insert adds task and keeps the list ordered by due date.
func (l *List) Insert(task *models.Task) {
	l.tasks = append(l.tasks, task)
	slices.SortStableFunc(l.tasks, func(a, b *models.Task) int {
		return a.DueDate.Compare(b.DueDate)
	})
}

// Patch replaces the task with the same id. It reports whether one was found.
func (l *List) Patch(task *models.Task) bool {
	i := l.index(task.ID)
	if i < 0 {
		return false
	}
	l.tasks[i] = task
	return true
}

func (l *List) Remove(id string) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.tasks = slices.Delete(l.tasks, i, i+1)
	return true
}

func (l *List) Get(id string) (*models.Task, bool) {
	i := l.index(id)
	if i < 0 {
		return nil, false
	}
	return l.tasks[i], true
}

func (l *List) Len() int {
	return len(l.tasks)
}

// All returns every task regardless of the filter.
func (l *List) All() []*models.Task {
	return slices.Clone(l.tasks)
}

// Visible returns the tasks matching the current filter.
func (l *List) Visible() []*models.Task {
	visible := make([]*models.Task, 0, len(l.tasks))
	for _, task := range l.tasks {
		if l.filter.Match(task) {
			visible = append(visible, task)
		}
	}
	return visible
}

// Counts returns the number of tasks per status.
func (l *List) Counts() map[models.Status]int {
	counts := make(map[models.Status]int, len(models.Statuses))
	for _, status := range models.Statuses {
		counts[status] = 0
	}
	for _, task := range l.tasks {
		counts[task.Status]++
	}
	return counts
}

func (l *List) index(id string) int {
	return slices.IndexFunc(l.tasks, func(t *models.Task) bool {
		return t.ID == id
	})
}
