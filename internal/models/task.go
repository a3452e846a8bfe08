package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusNotStarted Status = "Not Started"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Statuses lists every status in display order.
var Statuses = []Status{
	StatusNotStarted,
	StatusInProgress,
	StatusCompleted,
}

var (
	ErrUnknownStatus = errors.New("unknown status")
	ErrEmptyDueDate  = errors.New("empty due date")
)

func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// Next returns the status that follows s in display order, wrapping around.
func (s Status) Next() Status {
	for i, status := range Statuses {
		if status == s {
			return Statuses[(i+1)%len(Statuses)]
		}
	}
	return StatusNotStarted
}

func ParseStatus(s string) (Status, error) {
	status := Status(strings.TrimSpace(s))
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return status, nil
}

type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	DueDate     time.Time `json:"dueDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

const DueDateLayout = time.DateOnly

// ParseDueDate accepts either a calendar date (2006-01-02) or an RFC 3339
// timestamp and returns it in UTC at millisecond precision, the finest a
// stored due date keeps.
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrEmptyDueDate
	}

	if t, err := time.Parse(DueDateLayout, s); err == nil {
		return t.UTC(), nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q: %w", s, err)
	}
	return t.UTC().Truncate(time.Millisecond), nil
}
