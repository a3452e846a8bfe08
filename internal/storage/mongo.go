package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/adanyl0v/todo-planner/internal/models"
)

type mongoTaskDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	Status      string             `bson:"status"`
	DueDate     time.Time          `bson:"dueDate"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func newMongoTaskDocument(task *models.Task) mongoTaskDocument {
	return mongoTaskDocument{
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func (d *mongoTaskDocument) task() *models.Task {
	return &models.Task{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Status:      models.Status(d.Status),
		DueDate:     d.DueDate.UTC(),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

type MongoTaskStore struct {
	logger     zerolog.Logger
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoTaskStore(
	logger zerolog.Logger,
	client *mongo.Client,
	database string,
	collection string,
) *MongoTaskStore {
	return &MongoTaskStore{
		logger:     logger,
		client:     client,
		collection: client.Database(database).Collection(collection),
	}
}

// EnsureIndexes creates the due date index used by List.
func (s *MongoTaskStore) EnsureIndexes(ctx context.Context) error {
	name, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "dueDate", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create due date index: %w", err)
	}
	s.logger.Debug().
		Str("index", name).
		Msg("ensured todos index")
	return nil
}

func (s *MongoTaskStore) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	// BSON dates have millisecond precision.
	now := time.Now().UTC().Truncate(time.Millisecond)
	task.CreatedAt = now
	task.UpdatedAt = now
	task.DueDate = task.DueDate.Truncate(time.Millisecond)

	doc := newMongoTaskDocument(task)
	res, err := s.collection.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to insert todo: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	doc.ID = oid
	s.logger.Debug().
		Str("task_id", oid.Hex()).
		Msg("inserted todo")

	return doc.task(), nil
}

func (s *MongoTaskStore) List(ctx context.Context) ([]*models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "dueDate", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find todos: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var docs []mongoTaskDocument
	err = cursor.All(ctx, &docs)
	if err != nil {
		return nil, fmt.Errorf("failed to decode todos: %w", err)
	}

	tasks := make([]*models.Task, 0, len(docs))
	for i := range docs {
		tasks = append(tasks, docs[i].task())
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Msg("found todos")
	return tasks, nil
}

func (s *MongoTaskStore) Get(ctx context.Context, id string) (*models.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc mongoTaskDocument
	err = s.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}
	return doc.task(), nil
}

func (s *MongoTaskStore) Update(ctx context.Context, id string, update TaskUpdate) (*models.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc mongoTaskDocument
	err = s.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": mongoUpdateSet(update, now)},
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}
	s.logger.Debug().
		Str("task_id", id).
		Msg("updated todo")

	return doc.task(), nil
}

func mongoUpdateSet(update TaskUpdate, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Status != nil {
		set["status"] = string(*update.Status)
	}
	if update.DueDate != nil {
		set["dueDate"] = *update.DueDate
	}
	return set
}

func (s *MongoTaskStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	s.logger.Debug().
		Str("task_id", id).
		Msg("deleted todo")
	return nil
}

func (s *MongoTaskStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}
