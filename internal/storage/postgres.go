package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/todo-planner/internal/models"
)

// pgTaskDocument is the JSONB body stored next to the id column.
type pgTaskDocument struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	DueDate     time.Time `json:"dueDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (d *pgTaskDocument) task(id string) *models.Task {
	return &models.Task{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Status:      models.Status(d.Status),
		DueDate:     d.DueDate.UTC(),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// PgPool is the part of *pgxpool.Pool the store uses.
type PgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresTaskStore keeps each task as a JSONB document keyed by a UUID.
type PostgresTaskStore struct {
	logger zerolog.Logger
	pgPool PgPool
}

func NewPostgresTaskStore(
	logger zerolog.Logger,
	pgPool PgPool,
) *PostgresTaskStore {
	return &PostgresTaskStore{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *PostgresTaskStore) EnsureTable(ctx context.Context) error {
	const createTableQuery = `
CREATE TABLE IF NOT EXISTS todos (
    id  UUID PRIMARY KEY,
    doc JSONB NOT NULL
)
`
	_, err := s.pgPool.Exec(ctx, createTableQuery)
	if err != nil {
		return fmt.Errorf("failed to create todos table: %w", err)
	}

	const createIndexQuery = `
CREATE INDEX IF NOT EXISTS idx_todos_due_date
ON todos ((doc->>'dueDate'))
`
	_, err = s.pgPool.Exec(ctx, createIndexQuery)
	if err != nil {
		return fmt.Errorf("failed to create todos index: %w", err)
	}
	return nil
}

func (s *PostgresTaskStore) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	taskUUID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate task uuid: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	doc := pgTaskDocument{
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		DueDate:     task.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal todo: %w", err)
	}

	const insertTaskQuery = `
INSERT INTO todos (id, doc)
VALUES ($1, $2::jsonb)
`
	_, err = s.pgPool.Exec(
		ctx,
		insertTaskQuery,
		taskUUID.String(),
		string(docBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert todo: %w", err)
	}
	s.logger.Debug().
		Str("task_id", taskUUID.String()).
		Msg("inserted todo")

	return doc.task(taskUUID.String()), nil
}

func (s *PostgresTaskStore) List(ctx context.Context) ([]*models.Task, error) {
	const selectTasksQuery = `
SELECT id::text,
       doc
FROM todos
ORDER BY (doc->>'dueDate')::timestamptz ASC
`
	rows, err := s.pgPool.Query(ctx, selectTasksQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to select todos: %w", err)
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Msg("selected todos")
	return tasks, nil
}

func (s *PostgresTaskStore) Get(ctx context.Context, id string) (*models.Task, error) {
	// The id is cast server-side so a malformed uuid surfaces as a PgError.
	const selectTaskQuery = `
SELECT id::text,
       doc
FROM todos
WHERE id = CAST($1::text AS uuid)
`
	task, err := scanTask(s.pgPool.QueryRow(ctx, selectTaskQuery, id))
	if err != nil {
		if isMissingRow(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return task, nil
}

func (s *PostgresTaskStore) Update(ctx context.Context, id string, update TaskUpdate) (*models.Task, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	patchBytes, err := json.Marshal(pgUpdatePatch(update, now))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal todo patch: %w", err)
	}

	const updateTaskQuery = `
UPDATE todos
SET doc = doc || $1::jsonb
WHERE id = CAST($2::text AS uuid)
RETURNING id::text, doc
`
	task, err := scanTask(s.pgPool.QueryRow(
		ctx,
		updateTaskQuery,
		string(patchBytes),
		id,
	))
	if err != nil {
		if isMissingRow(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.logger.Debug().
		Str("task_id", id).
		Msg("updated todo")
	return task, nil
}

func pgUpdatePatch(update TaskUpdate, now time.Time) map[string]any {
	patch := map[string]any{"updatedAt": now}
	if update.Title != nil {
		patch["title"] = *update.Title
	}
	if update.Description != nil {
		patch["description"] = *update.Description
	}
	if update.Status != nil {
		patch["status"] = string(*update.Status)
	}
	if update.DueDate != nil {
		patch["dueDate"] = *update.DueDate
	}
	return patch
}

func (s *PostgresTaskStore) Delete(ctx context.Context, id string) error {
	const deleteTaskQuery = `
DELETE FROM todos
WHERE id = CAST($1::text AS uuid)
`
	tag, err := s.pgPool.Exec(ctx, deleteTaskQuery, id)
	if err != nil {
		if isMissingRow(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	s.logger.Debug().
		Str("task_id", id).
		Msg("deleted todo")
	return nil
}

func (s *PostgresTaskStore) Ping(ctx context.Context) error {
	return s.pgPool.Ping(ctx)
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var (
		id       string
		docBytes []byte
	)
	err := row.Scan(&id, &docBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to scan todo: %w", err)
	}

	var doc pgTaskDocument
	err = json.Unmarshal(docBytes, &doc)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal todo %s: %w", id, err)
	}
	return doc.task(id), nil
}

// isMissingRow reports whether err means the id matched nothing, either
// because no row exists or because the id is not a valid uuid.
func isMissingRow(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.InvalidTextRepresentation
	}
	return false
}
