package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/todo-planner/internal/models"
)

type pgRow struct {
	id  string
	doc []byte
	err error
}

func (r pgRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*string) = r.id
	*dest[1].(*[]byte) = r.doc
	return nil
}

type pgRows struct {
	rows []pgRow
	pos  int
}

func (r *pgRows) Close()                                       {}
func (r *pgRows) Err() error                                   { return nil }
func (r *pgRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *pgRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *pgRows) Values() ([]any, error)                       { return nil, nil }
func (r *pgRows) RawValues() [][]byte                          { return nil }
func (r *pgRows) Conn() *pgx.Conn                              { return nil }

func (r *pgRows) Next() bool {
	r.pos++
	return r.pos <= len(r.rows)
}

func (r *pgRows) Scan(dest ...any) error {
	return r.rows[r.pos-1].Scan(dest...)
}

// scriptedPool answers every call with the canned values and records the
// arguments it was given.
type scriptedPool struct {
	tag     pgconn.CommandTag
	execErr error
	row     pgRow
	rows    []pgRow

	sql  []string
	args [][]any
}

func (p *scriptedPool) record(sql string, args []any) {
	p.sql = append(p.sql, sql)
	p.args = append(p.args, args)
}

func (p *scriptedPool) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	p.record(sql, args)
	return p.tag, p.execErr
}

func (p *scriptedPool) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	p.record(sql, args)
	return &pgRows{rows: p.rows}, nil
}

func (p *scriptedPool) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	p.record(sql, args)
	return p.row
}

func (p *scriptedPool) Ping(context.Context) error { return nil }

func pgDoc(t *testing.T, title string, status models.Status, due time.Time) []byte {
	t.Helper()
	b, err := json.Marshal(pgTaskDocument{
		Title:     title,
		Status:    string(status),
		DueDate:   due,
		CreatedAt: due,
		UpdatedAt: due,
	})
	require.NoError(t, err)
	return b
}

var errInvalidUUID = &pgconn.PgError{Code: pgerrcode.InvalidTextRepresentation}

func TestPostgresTaskStore_Create(t *testing.T) {
	pool := &scriptedPool{tag: pgconn.NewCommandTag("INSERT 0 1")}
	store := NewPostgresTaskStore(zerolog.Nop(), pool)

	due := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	task, err := store.Create(context.Background(), &models.Task{
		Title:   "Buy milk",
		Status:  models.StatusNotStarted,
		DueDate: due,
	})
	require.NoError(t, err)

	id, err := uuid.Parse(task.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.Equal(t, due, task.DueDate)

	require.Len(t, pool.args, 1)
	assert.Equal(t, task.ID, pool.args[0][0])
	var stored pgTaskDocument
	require.NoError(t, json.Unmarshal([]byte(pool.args[0][1].(string)), &stored))
	assert.Equal(t, "Buy milk", stored.Title)
	assert.Equal(t, "Not Started", stored.Status)
}

func TestPostgresTaskStore_List(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	pool := &scriptedPool{rows: []pgRow{
		{id: "a", doc: pgDoc(t, "sooner", models.StatusNotStarted, jan)},
		{id: "b", doc: pgDoc(t, "later", models.StatusCompleted, mar)},
	}}
	store := NewPostgresTaskStore(zerolog.Nop(), pool)

	tasks, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "a", tasks[0].ID)
	assert.Equal(t, jan, tasks[0].DueDate)
	assert.Equal(t, models.StatusCompleted, tasks[1].Status)
	assert.Contains(t, pool.sql[0], "ORDER BY (doc->>'dueDate')::timestamptz ASC")

	tasks, err = NewPostgresTaskStore(zerolog.Nop(), &scriptedPool{}).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestPostgresTaskStore_GetAndUpdate(t *testing.T) {
	due := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	pool := &scriptedPool{row: pgRow{id: "a", doc: pgDoc(t, "Buy milk", models.StatusCompleted, due)}}
	store := NewPostgresTaskStore(zerolog.Nop(), pool)

	task, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", task.Title)

	status := models.StatusCompleted
	task, err = store.Update(ctx, "a", TaskUpdate{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, task.Status)
	require.Len(t, pool.args, 2)
	assert.Contains(t, pool.sql[1], "RETURNING id::text, doc")
	var patch map[string]any
	require.NoError(t, json.Unmarshal([]byte(pool.args[1][0].(string)), &patch))
	assert.Equal(t, "Completed", patch["status"])
	assert.NotContains(t, patch, "title")

	tests := []struct {
		name string
		err  error
	}{
		{name: "no rows", err: pgx.ErrNoRows},
		{name: "malformed uuid", err: errInvalidUUID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewPostgresTaskStore(zerolog.Nop(), &scriptedPool{row: pgRow{err: tt.err}})

			_, err := store.Get(ctx, "nope")
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = store.Update(ctx, "nope", TaskUpdate{Status: &status})
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}

	store = NewPostgresTaskStore(zerolog.Nop(), &scriptedPool{row: pgRow{err: errors.New("conn closed")}})
	_, err = store.Get(ctx, "a")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestPostgresTaskStore_Delete(t *testing.T) {
	ctx := context.Background()

	store := NewPostgresTaskStore(zerolog.Nop(), &scriptedPool{tag: pgconn.NewCommandTag("DELETE 1")})
	assert.NoError(t, store.Delete(ctx, "a"))

	store = NewPostgresTaskStore(zerolog.Nop(), &scriptedPool{tag: pgconn.NewCommandTag("DELETE 0")})
	assert.ErrorIs(t, store.Delete(ctx, "a"), ErrNotFound)

	store = NewPostgresTaskStore(zerolog.Nop(), &scriptedPool{execErr: errInvalidUUID})
	assert.ErrorIs(t, store.Delete(ctx, "nope"), ErrNotFound)

	store = NewPostgresTaskStore(zerolog.Nop(), &scriptedPool{execErr: errors.New("conn closed")})
	err := store.Delete(ctx, "a")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
