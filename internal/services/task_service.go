package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/todo-planner/internal/events"
	"github.com/adanyl0v/todo-planner/internal/models"
	"github.com/adanyl0v/todo-planner/internal/storage"
)

var taskOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "todo_task_operations_total",
		Help: "Total number of task service operations by outcome",
	},
	[]string{"operation", "result"},
)

const (
	resultOK       = "ok"
	resultInvalid  = "invalid"
	resultNotFound = "not_found"
	resultError    = "error"
)

type taskServiceImpl struct {
	logger    zerolog.Logger
	store     storage.TaskStore
	publisher events.Publisher
}

func NewTaskService(
	logger zerolog.Logger,
	store storage.TaskStore,
	publisher events.Publisher,
) TaskService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &taskServiceImpl{
		logger:    logger,
		store:     store,
		publisher: publisher,
	}
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	const op = "create"

	task := &models.Task{
		Title:       strings.TrimSpace(params.Title),
		Description: strings.TrimSpace(params.Description),
		Status:      models.StatusNotStarted,
	}

	if task.Title == "" {
		s.logger.Error().Msg("task title is empty")
		observe(op, resultInvalid)
		return nil, &ValidationError{Field: "title", Message: "Title is required"}
	}

	dueDate, verr := validateDueDate(params.DueDate)
	if verr != nil {
		s.logger.Error().
			Str("due_date", params.DueDate).
			Msg("invalid task due date")
		observe(op, resultInvalid)
		return nil, verr
	}
	task.DueDate = dueDate

	if params.Status != "" {
		status, verr := validateStatus(params.Status)
		if verr != nil {
			s.logger.Error().
				Str("status", params.Status).
				Msg("invalid task status")
			observe(op, resultInvalid)
			return nil, verr
		}
		task.Status = status
	}

	created, err := s.store.Create(ctx, task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to create task")
		observe(op, resultError)
		return nil, &StoreError{Op: "create task", Err: err}
	}
	s.logger.Info().
		Str("task_id", created.ID).
		Msg("created task")
	observe(op, resultOK)

	s.publish(ctx, events.Event{
		Type: events.TypeCreated,
		ID:   created.ID,
		Todo: created,
	})
	return created, nil
}

func (s *taskServiceImpl) ListTasks(ctx context.Context) ([]*models.Task, error) {
	const op = "list"

	tasks, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		observe(op, resultError)
		return nil, &StoreError{Op: "list tasks", Err: err}
	}
	if tasks == nil {
		tasks = make([]*models.Task, 0)
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Msg("listed tasks")
	observe(op, resultOK)
	return tasks, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error) {
	const op = "update"

	update, verr := buildTaskUpdate(params)
	if verr != nil {
		// An unknown id wins over a bad field.
		_, err := s.store.Get(ctx, params.ID)
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Str("task_id", params.ID).
				Msg("task not found")
			observe(op, resultNotFound)
			return nil, ErrTaskNotFound
		}
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("task_id", params.ID).
				Msg("failed to get task")
			observe(op, resultError)
			return nil, &StoreError{Op: "update task", Err: err}
		}

		s.logger.Error().
			Str("task_id", params.ID).
			Str("field", verr.Field).
			Msg("invalid task update")
		observe(op, resultInvalid)
		return nil, verr
	}

	var (
		task *models.Task
		err  error
	)
	if update.Empty() {
		task, err = s.store.Get(ctx, params.ID)
	} else {
		task, err = s.store.Update(ctx, params.ID, update)
	}
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Str("task_id", params.ID).
				Msg("task not found")
			observe(op, resultNotFound)
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", params.ID).
			Msg("failed to update task")
		observe(op, resultError)
		return nil, &StoreError{Op: "update task", Err: err}
	}
	s.logger.Info().
		Str("task_id", task.ID).
		Msg("updated task")
	observe(op, resultOK)

	if !update.Empty() {
		s.publish(ctx, events.Event{
			Type: events.TypeUpdated,
			ID:   task.ID,
			Todo: task,
		})
	}
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, id string) error {
	const op = "delete"

	err := s.store.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Str("task_id", id).
				Msg("task not found")
			observe(op, resultNotFound)
			return ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to delete task")
		observe(op, resultError)
		return &StoreError{Op: "delete task", Err: err}
	}
	s.logger.Info().
		Str("task_id", id).
		Msg("deleted task")
	observe(op, resultOK)

	s.publish(ctx, events.Event{
		Type: events.TypeDeleted,
		ID:   id,
	})
	return nil
}

func (s *taskServiceImpl) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// publish never fails the operation that triggered it.
func (s *taskServiceImpl) publish(ctx context.Context, event events.Event) {
	event.At = time.Now().UTC()
	err := s.publisher.Publish(ctx, event)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("type", event.Type).
			Str("task_id", event.ID).
			Msg("failed to publish task event")
	}
}

func buildTaskUpdate(params UpdateTaskParams) (storage.TaskUpdate, *ValidationError) {
	var update storage.TaskUpdate

	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		if title == "" {
			return update, &ValidationError{Field: "title", Message: "Title cannot be empty"}
		}
		update.Title = &title
	}

	if params.Description != nil {
		description := strings.TrimSpace(*params.Description)
		update.Description = &description
	}

	if params.Status != nil {
		status, verr := validateStatus(*params.Status)
		if verr != nil {
			return update, verr
		}
		update.Status = &status
	}

	if params.DueDate != nil {
		dueDate, verr := validateDueDate(*params.DueDate)
		if verr != nil {
			return update, verr
		}
		update.DueDate = &dueDate
	}

	return update, nil
}

func validateStatus(s string) (models.Status, *ValidationError) {
	status, err := models.ParseStatus(s)
	if err != nil {
		return "", &ValidationError{
			Field:   "status",
			Message: "Status must be one of Not Started, In Progress, Completed",
		}
	}
	return status, nil
}

func validateDueDate(s string) (time.Time, *ValidationError) {
	dueDate, err := models.ParseDueDate(s)
	if err != nil {
		if errors.Is(err, models.ErrEmptyDueDate) {
			return time.Time{}, &ValidationError{Field: "dueDate", Message: "Due date is required"}
		}
		return time.Time{}, &ValidationError{Field: "dueDate", Message: "Due date is invalid"}
	}
	return dueDate, nil
}

func observe(op, result string) {
	taskOperationsTotal.WithLabelValues(op, result).Inc()
}
