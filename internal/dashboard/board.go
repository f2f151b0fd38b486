// Package dashboard holds the task collection of a single dashboard.
//
// Board is a value: every transition returns a new Board and leaves the
// receiver untouched, so callers can swap the current board atomically
// and keep older snapshots safe to read.
package dashboard

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/adanyl0v/taskflow/internal/models"
)

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrNotEditing    = errors.New("task is not being edited")
	ErrTitleRequired = errors.New("title must be provided")
	ErrDuplicateID   = errors.New("duplicate task id")
)

// Draft is the input of the creation form.
type Draft struct {
	Title       string
	Description string
	Status      models.Status
	Priority    models.Priority
}

// Patch is the input of the edit form. Nil fields are left unchanged.
type Patch struct {
	Title       *string
	Description *string
	Status      *models.Status
	Priority    *models.Priority
}

type Stats struct {
	Total      int
	Pending    int
	InProgress int
	Completed  int
}

type Board struct {
	tasks   []models.Task
	editing string
}

// New returns a board holding tasks in the given order.
func New(tasks ...models.Task) Board {
	return Board{tasks: slices.Clone(tasks)}
}

// Demo returns the board a new dashboard starts with.
func Demo() Board {
	return New(
		models.Task{
			ID:          "1",
			Title:       "Complete Nest.js Assignment",
			Description: "Build a REST API with CRUD operations, authentication, and database integration",
			Status:      models.StatusInProgress,
			Priority:    models.PriorityHigh,
			CreatedAt:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
		},
		models.Task{
			ID:          "2",
			Title:       "Write Unit Tests",
			Description: "Ensure comprehensive test coverage for all API endpoints",
			Status:      models.StatusPending,
			Priority:    models.PriorityMedium,
			CreatedAt:   time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
		},
	)
}

// Tasks returns a copy of the collection, most recent first.
func (b Board) Tasks() []models.Task {
	return slices.Clone(b.tasks)
}

func (b Board) Len() int {
	return len(b.tasks)
}

func (b Board) Task(id string) (models.Task, bool) {
	i := b.index(id)
	if i < 0 {
		return models.Task{}, false
	}
	return b.tasks[i], true
}

// Editing returns the task currently targeted by the edit form.
func (b Board) Editing() (models.Task, bool) {
	if b.editing == "" {
		return models.Task{}, false
	}
	return b.Task(b.editing)
}

// Create prepends a new task with the given id.
func (b Board) Create(d Draft, id string, now time.Time) (Board, models.Task, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return b, models.Task{}, ErrTitleRequired
	}
	if _, err := models.ParseStatus(string(d.Status)); err != nil {
		return b, models.Task{}, err
	}
	if _, err := models.ParsePriority(string(d.Priority)); err != nil {
		return b, models.Task{}, err
	}
	if b.index(id) >= 0 {
		return b, models.Task{}, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}

	task := models.Task{
		ID:          id,
		Title:       title,
		Description: d.Description,
		Status:      d.Status,
		Priority:    d.Priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Status == "" {
		task.Status = models.StatusPending
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}

	tasks := make([]models.Task, 0, len(b.tasks)+1)
	tasks = append(tasks, task)
	tasks = append(tasks, b.tasks...)
	return Board{tasks: tasks, editing: b.editing}, task, nil
}

func (b Board) BeginEdit(id string) (Board, error) {
	if b.index(id) < 0 {
		return b, ErrTaskNotFound
	}
	return Board{tasks: b.tasks, editing: id}, nil
}

func (b Board) CancelEdit() Board {
	return Board{tasks: b.tasks}
}

// Update applies p to the task being edited and ends the edit. It fails with
// ErrNotEditing unless id is the current edit target.
func (b Board) Update(id string, p Patch, now time.Time) (Board, models.Task, error) {
	if b.editing == "" || b.editing != id {
		return b, models.Task{}, ErrNotEditing
	}
	i := b.index(id)
	if i < 0 {
		return b, models.Task{}, ErrTaskNotFound
	}

	task := b.tasks[i]
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return b, models.Task{}, ErrTitleRequired
		}
		task.Title = title
	}
	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.Status != nil {
		if _, err := models.ParseStatus(string(*p.Status)); err != nil || *p.Status == "" {
			return b, models.Task{}, models.ErrInvalidStatus
		}
		task.Status = *p.Status
	}
	if p.Priority != nil {
		if _, err := models.ParsePriority(string(*p.Priority)); err != nil || *p.Priority == "" {
			return b, models.Task{}, models.ErrInvalidPriority
		}
		task.Priority = *p.Priority
	}

	task.UpdatedAt = now
	if task.UpdatedAt.Before(task.CreatedAt) {
		task.UpdatedAt = task.CreatedAt
	}

	tasks := slices.Clone(b.tasks)
	tasks[i] = task
	return Board{tasks: tasks}, task, nil
}

// Delete removes the task with the given id. A missing id leaves the board
// unchanged and reports ok == false.
func (b Board) Delete(id string) (Board, models.Task, bool) {
	i := b.index(id)
	if i < 0 {
		return b, models.Task{}, false
	}

	removed := b.tasks[i]
	tasks := slices.Delete(slices.Clone(b.tasks), i, i+1)
	editing := b.editing
	if editing == id {
		editing = ""
	}
	return Board{tasks: tasks, editing: editing}, removed, true
}

func (b Board) Stats() Stats {
	s := Stats{Total: len(b.tasks)}
	for _, t := range b.tasks {
		switch t.Status {
		case models.StatusPending:
			s.Pending++
		case models.StatusInProgress:
			s.InProgress++
		case models.StatusCompleted:
			s.Completed++
		}
	}
	return s
}

func (b Board) index(id string) int {
	return slices.IndexFunc(b.tasks, func(t models.Task) bool {
		return t.ID == id
	})
}
