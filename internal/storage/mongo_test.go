package storage

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/adanyl0v/todo-planner/internal/models"
)

const (
	testMongoDatabase   = "todo"
	testMongoCollection = "todos"
	testMongoNamespace  = testMongoDatabase + "." + testMongoCollection
)

func newMockMongo(t *testing.T) *mtest.T {
	t.Helper()
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func newTestMongoStore(mt *mtest.T) *MongoTaskStore {
	return NewMongoTaskStore(zerolog.Nop(), mt.Client, testMongoDatabase, testMongoCollection)
}

func mongoTodoDoc(oid primitive.ObjectID, title string, status models.Status, due time.Time) bson.D {
	created := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	return bson.D{
		{Key: "_id", Value: oid},
		{Key: "title", Value: title},
		{Key: "status", Value: string(status)},
		{Key: "dueDate", Value: due},
		{Key: "createdAt", Value: created},
		{Key: "updatedAt", Value: created},
	}
}

func TestMongoTaskStore_Create(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("assigns object id", func(mt *mtest.T) {
		store := newTestMongoStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		due := time.Date(2025, 2, 1, 10, 0, 0, 123456789, time.UTC)
		task, err := store.Create(context.Background(), &models.Task{
			Title:   "Buy milk",
			Status:  models.StatusNotStarted,
			DueDate: due,
		})
		require.NoError(mt, err)

		_, err = primitive.ObjectIDFromHex(task.ID)
		assert.NoError(mt, err)
		assert.Equal(mt, time.Date(2025, 2, 1, 10, 0, 0, 123000000, time.UTC), task.DueDate)
		assert.Equal(mt, task.CreatedAt, task.UpdatedAt)
		assert.Equal(mt, task.CreatedAt, task.CreatedAt.Truncate(time.Millisecond))

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "insert", started.CommandName)
	})
}

func TestMongoTaskStore_List(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("sorted by due date", func(mt *mtest.T) {
		store := newTestMongoStore(mt)
		first := primitive.NewObjectID()
		second := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testMongoNamespace, mtest.FirstBatch,
			mongoTodoDoc(first, "sooner", models.StatusNotStarted, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
			mongoTodoDoc(second, "later", models.StatusCompleted, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)),
		))

		tasks, err := store.List(context.Background())
		require.NoError(mt, err)
		require.Len(mt, tasks, 2)
		assert.Equal(mt, first.Hex(), tasks[0].ID)
		assert.Equal(mt, "sooner", tasks[0].Title)
		assert.Equal(mt, models.StatusCompleted, tasks[1].Status)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "find", started.CommandName)
		sort, ok := started.Command.Lookup("sort").DocumentOK()
		require.True(mt, ok)
		assert.Equal(mt, int32(1), sort.Lookup("dueDate").Int32())
	})

	mt.Run("empty collection", func(mt *mtest.T) {
		store := newTestMongoStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testMongoNamespace, mtest.FirstBatch))

		tasks, err := store.List(context.Background())
		require.NoError(mt, err)
		assert.NotNil(mt, tasks)
		assert.Empty(mt, tasks)
	})
}

func TestMongoTaskStore_Get(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("found", func(mt *mtest.T) {
		store := newTestMongoStore(mt)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testMongoNamespace, mtest.FirstBatch,
			mongoTodoDoc(oid, "Buy milk", models.StatusInProgress, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		))

		task, err := store.Get(context.Background(), oid.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, oid.Hex(), task.ID)
		assert.Equal(mt, models.StatusInProgress, task.Status)
	})

	mt.Run("no documents", func(mt *mtest.T) {
		store := newTestMongoStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testMongoNamespace, mtest.FirstBatch))

		_, err := store.Get(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		store := newTestMongoStore(mt)

		_, err := store.Get(context.Background(), "nope")
		assert.ErrorIs(mt, err, ErrNotFound)
		assert.Nil(mt, mt.GetStartedEvent())
	})
}

func TestMongoTaskStore_Update(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("returns updated document", func(mt *mtest.T) {
		store := newTestMongoStore(mt)
		oid := primitive.NewObjectID()
		after := mongoTodoDoc(oid, "Buy milk", models.StatusCompleted, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: after},
		})

		status := models.StatusCompleted
		task, err := store.Update(context.Background(), oid.Hex(), TaskUpdate{Status: &status})
		require.NoError(mt, err)
		assert.Equal(mt, oid.Hex(), task.ID)
		assert.Equal(mt, models.StatusCompleted, task.Status)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "findAndModify", started.CommandName)
		assert.True(mt, started.Command.Lookup("new").Boolean())
		set := started.Command.Lookup("update", "$set").Document()
		assert.Equal(mt, "Completed", set.Lookup("status").StringValue())
		_, hasTitle := set.Lookup("title").StringValueOK()
		assert.False(mt, hasTitle)
	})

	mt.Run("no documents", func(mt *mtest.T) {
		store := newTestMongoStore(mt)
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: nil},
		})

		title := "x"
		_, err := store.Update(context.Background(), primitive.NewObjectID().Hex(), TaskUpdate{Title: &title})
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		store := newTestMongoStore(mt)

		title := "x"
		_, err := store.Update(context.Background(), "nope", TaskUpdate{Title: &title})
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestMongoTaskStore_Delete(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("deleted", func(mt *mtest.T) {
		store := newTestMongoStore(mt)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}})

		assert.NoError(mt, store.Delete(context.Background(), primitive.NewObjectID().Hex()))
	})

	mt.Run("nothing deleted", func(mt *mtest.T) {
		store := newTestMongoStore(mt)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}})

		err := store.Delete(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("server error", func(mt *mtest.T) {
		store := newTestMongoStore(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11600,
			Name:    "InterruptedAtShutdown",
			Message: "interrupted at shutdown",
		}))

		err := store.Delete(context.Background(), primitive.NewObjectID().Hex())
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, ErrNotFound)
	})
}
