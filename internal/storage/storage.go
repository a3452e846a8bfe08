// Package storage persists tasks in a document store.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/adanyl0v/todo-planner/internal/models"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// ErrNotFound is returned when no task matches the given id, including ids
// that are malformed for the backing store.
var ErrNotFound = errors.New("task not found")

// TaskUpdate holds the fields to overwrite. Nil fields are left unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *models.Status
	DueDate     *time.Time
}

func (u TaskUpdate) Empty() bool {
	return u.Title == nil &&
		u.Description == nil &&
		u.Status == nil &&
		u.DueDate == nil
}

type TaskStore interface {
	// Create assigns an id and timestamps to the task and persists it.
	Create(ctx context.Context, task *models.Task) (*models.Task, error)

	// List returns every task ordered ascending by due date.
	List(ctx context.Context) ([]*models.Task, error)

	Get(ctx context.Context, id string) (*models.Task, error)

	// Update applies the non-nil fields of the update, bumps updatedAt and
	// returns the stored task.
	Update(ctx context.Context, id string, update TaskUpdate) (*models.Task, error)

	Delete(ctx context.Context, id string) error

	Ping(ctx context.Context) error
}
