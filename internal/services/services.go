package services

import (
	"context"
	"errors"

	"github.com/adanyl0v/todo-planner/internal/models"
)

var ErrTaskNotFound = errors.New("task not found")

// ValidationError reports a request field that breaks a task invariant.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StoreError wraps a failure of the underlying task store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

type TaskService interface {
	// CreateTask validates and persists a new task.
	//
	// The title is required and trimmed, the due date is required and
	// may be either a calendar date or an RFC 3339 timestamp. An empty
	// status defaults to models.StatusNotStarted.
	//
	// It returns a *ValidationError if any of these rules is broken
	// or a *StoreError if the task could not be persisted.
	CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error)

	// ListTasks returns every task ordered ascending by due date.
	// The result is never nil.
	ListTasks(ctx context.Context) ([]*models.Task, error)

	// UpdateTask overwrites the fields that are present in params and
	// keeps the others. A present description may be empty, a present
	// title may not.
	//
	// It returns ErrTaskNotFound if no task has the given id.
	UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error)

	// DeleteTask permanently removes the task.
	//
	// It returns ErrTaskNotFound if no task has the given id.
	DeleteTask(ctx context.Context, id string) error

	// Ping checks that the task store is reachable.
	Ping(ctx context.Context) error
}

type CreateTaskParams struct {
	Title       string
	Description string
	Status      string
	DueDate     string
}

type UpdateTaskParams struct {
	ID          string
	Title       *string
	Description *string
	Status      *string
	DueDate     *string
}
