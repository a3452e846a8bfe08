// Package storagetest provides an in-memory storage.TaskStore for tests.
package storagetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/adanyl0v/todo-planner/internal/models"
	"github.com/adanyl0v/todo-planner/internal/storage"
)

// MemoryTaskStore is a thread-safe storage.TaskStore backed by a map.
type MemoryTaskStore struct {
	mu     sync.Mutex
	tasks  map[string]models.Task
	nextID int
	err    error
}

func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{tasks: make(map[string]models.Task)}
}

func (s *MemoryTaskStore) Create(_ context.Context, task *models.Task) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	s.nextID++
	now := time.Now().UTC()
	stored := *task
	stored.ID = fmt.Sprintf("task-%d", s.nextID)
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.tasks[stored.ID] = stored

	out := stored
	return &out, nil
}

func (s *MemoryTaskStore) List(_ context.Context) ([]*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	tasks := make([]*models.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		t := task
		tasks = append(tasks, &t)
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].DueDate.Equal(tasks[j].DueDate) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].DueDate.Before(tasks[j].DueDate)
	})
	return tasks, nil
}

func (s *MemoryTaskStore) Get(_ context.Context, id string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	task, ok := s.tasks[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &task, nil
}

func (s *MemoryTaskStore) Update(_ context.Context, id string, update storage.TaskUpdate) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	task, ok := s.tasks[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.Status != nil {
		task.Status = *update.Status
	}
	if update.DueDate != nil {
		task.DueDate = *update.DueDate
	}
	task.UpdatedAt = time.Now().UTC()
	s.tasks[id] = task

	out := task
	return &out, nil
}

func (s *MemoryTaskStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}

	if _, ok := s.tasks[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *MemoryTaskStore) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// SetErr makes every following call fail with err until it is reset to nil.
func (s *MemoryTaskStore) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Len returns the number of stored tasks.
func (s *MemoryTaskStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}
