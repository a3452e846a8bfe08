package tasklist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/todo-planner/internal/models"
)

func task(id string, status models.Status, due string) *models.Task {
	d, err := time.Parse(time.DateOnly, due)
	if err != nil {
		panic(err)
	}
	return &models.Task{ID: id, Title: "task " + id, Status: status, DueDate: d}
}

func ids(tasks []*models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestFilter_Next(t *testing.T) {
	assert.Equal(t, FilterNotStarted, FilterAll.Next())
	assert.Equal(t, FilterInProgress, FilterNotStarted.Next())
	assert.Equal(t, FilterCompleted, FilterInProgress.Next())
	assert.Equal(t, FilterAll, FilterCompleted.Next())
	assert.Equal(t, FilterAll, Filter("bogus").Next())
}

func TestVisible_FilterIsViewOnly(t *testing.T) {
	l := New()
	l.Replace([]*models.Task{
		task("1", models.StatusNotStarted, "2025-01-01"),
		task("2", models.StatusCompleted, "2025-01-02"),
		task("3", models.StatusInProgress, "2025-01-03"),
		task("4", models.StatusCompleted, "2025-01-04"),
	})
	before := l.All()

	l.SetFilter(FilterCompleted)
	assert.Equal(t, []string{"2", "4"}, ids(l.Visible()))

	l.SetFilter(FilterInProgress)
	assert.Equal(t, []string{"3"}, ids(l.Visible()))

	l.SetFilter(FilterAll)
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(l.Visible()))
	assert.Equal(t, before, l.All())
}

func TestSetFilter_UnknownFallsBackToAll(t *testing.T) {
	l := New()
	l.SetFilter(FilterCompleted)
	l.SetFilter("Archived")
	assert.Equal(t, FilterAll, l.Filter())
}

func TestInsert_SortsByDueDateStably(t *testing.T) {
	l := New()
	l.Insert(task("b", models.StatusNotStarted, "2025-03-01"))
	l.Insert(task("a", models.StatusNotStarted, "2025-01-01"))
	l.Insert(task("c", models.StatusNotStarted, "2025-03-01"))

	assert.Equal(t, []string{"a", "b", "c"}, ids(l.All()))
}

func TestPatchAndRemove(t *testing.T) {
	l := New()
	l.Replace([]*models.Task{
		task("1", models.StatusNotStarted, "2025-01-01"),
		task("2", models.StatusNotStarted, "2025-01-02"),
	})

	require.True(t, l.Patch(task("2", models.StatusCompleted, "2025-01-02")))
	got, ok := l.Get("2")
	require.True(t, ok)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.False(t, l.Patch(task("9", models.StatusCompleted, "2025-01-02")))

	require.True(t, l.Remove("1"))
	assert.False(t, l.Remove("1"))
	assert.Equal(t, []string{"2"}, ids(l.All()))
	assert.Equal(t, 1, l.Len())
}

func TestCounts(t *testing.T) {
	l := New()
	l.Replace([]*models.Task{
		task("1", models.StatusNotStarted, "2025-01-01"),
		task("2", models.StatusCompleted, "2025-01-02"),
		task("3", models.StatusCompleted, "2025-01-03"),
	})

	assert.Equal(t, map[models.Status]int{
		models.StatusNotStarted: 1,
		models.StatusInProgress: 0,
		models.StatusCompleted:  2,
	}, l.Counts())
}
