package models

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidStatus   = errors.New("invalid task status")
	ErrInvalidPriority = errors.New("invalid task priority")
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// ParseStatus returns StatusPending for an empty string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case "":
		return StatusPending, nil
	case StatusPending, StatusInProgress, StatusCompleted:
		return Status(s), nil
	}
	return "", ErrInvalidStatus
}

// Label returns the status as shown on a badge.
func (s Status) Label() string {
	return strings.ReplaceAll(string(s), "-", " ")
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority returns PriorityMedium for an empty string.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(s), nil
	}
	return "", ErrInvalidPriority
}

type Task struct {
	ID          string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Edited reports whether the task was updated after creation.
func (t Task) Edited() bool {
	return !t.UpdatedAt.Equal(t.CreatedAt)
}
