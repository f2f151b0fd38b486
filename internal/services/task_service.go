package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/taskflow/internal/dashboard"
	"github.com/adanyl0v/taskflow/internal/models"
	"github.com/adanyl0v/taskflow/internal/store"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	store  *store.Store
	now    func() time.Time
}

func NewTaskService(
	logger zerolog.Logger,
	sessionStore *store.Store,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		store:  sessionStore,
		now:    time.Now,
	}
}

func (s *taskServiceImpl) GetDashboard(ctx context.Context, sessionID string) (*DashboardView, error) {
	var view DashboardView
	err := s.withBoard(sessionID, func(e *store.Entry) error {
		view = DashboardView{
			User:  *e.User,
			Tasks: e.Board.Tasks(),
			Stats: e.Board.Stats(),
		}
		if task, ok := e.Board.Editing(); ok {
			view.Editing = &task
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("session_id", sessionID).
		Int("count", view.Stats.Total).
		Msg("rendered dashboard")
	return &view, nil
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, sessionID string, draft dashboard.Draft) (*models.Task, error) {
	taskUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task uuid")
		return nil, err
	}

	var task models.Task
	err = s.withBoard(sessionID, func(e *store.Entry) error {
		board, created, err := e.Board.Create(draft, taskUUID.String(), s.now())
		if err != nil {
			return err
		}
		e.Board, task = board, created
		return nil
	})
	if err != nil {
		s.failureEvent(err).
			Err(err).
			Str("session_id", sessionID).
			Msg("failed to create task")
		return nil, err
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Str("task_id", task.ID).
		Msg("created task")
	return &task, nil
}

func (s *taskServiceImpl) BeginEdit(ctx context.Context, sessionID, taskID string) (*models.Task, error) {
	var task models.Task
	err := s.withBoard(sessionID, func(e *store.Entry) error {
		board, err := e.Board.BeginEdit(taskID)
		if err != nil {
			return err
		}
		e.Board = board
		task, _ = board.Editing()
		return nil
	})
	if err != nil {
		s.failureEvent(err).
			Err(err).
			Str("session_id", sessionID).
			Str("task_id", taskID).
			Msg("failed to begin edit")
		return nil, err
	}

	s.logger.Debug().
		Str("task_id", taskID).
		Msg("editing task")
	return &task, nil
}

func (s *taskServiceImpl) CancelEdit(ctx context.Context, sessionID string) error {
	return s.withBoard(sessionID, func(e *store.Entry) error {
		e.Board = e.Board.CancelEdit()
		return nil
	})
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error) {
	var task models.Task
	err := s.withBoard(params.SessionID, func(e *store.Entry) error {
		board, updated, err := e.Board.Update(params.TaskID, params.Patch, s.now())
		if err != nil {
			return err
		}
		e.Board, task = board, updated
		return nil
	})
	if err != nil {
		s.failureEvent(err).
			Err(err).
			Str("session_id", params.SessionID).
			Str("task_id", params.TaskID).
			Msg("failed to update task")
		return nil, err
	}

	s.logger.Info().
		Str("session_id", params.SessionID).
		Str("task_id", task.ID).
		Msg("updated task")
	return &task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, params DeleteTaskParams) (*models.Task, error) {
	var (
		removed models.Task
		found   bool
	)
	err := s.withBoard(params.SessionID, func(e *store.Entry) error {
		e.Board, removed, found = e.Board.Delete(params.TaskID)
		return nil
	})
	if err != nil {
		s.failureEvent(err).
			Err(err).
			Str("session_id", params.SessionID).
			Str("task_id", params.TaskID).
			Msg("failed to delete task")
		return nil, err
	}

	if !found {
		s.logger.Debug().
			Str("task_id", params.TaskID).
			Msg("task to delete not found")
		return nil, nil
	}

	s.logger.Info().
		Str("session_id", params.SessionID).
		Str("task_id", removed.ID).
		Msg("deleted task")
	return &removed, nil
}

// withBoard runs fn for an authenticated session.
// failureEvent logs rejected user input at debug level and everything
// else at error level.
func (s *taskServiceImpl) failureEvent(err error) *zerolog.Event {
	switch {
	case errors.Is(err, dashboard.ErrTitleRequired),
		errors.Is(err, dashboard.ErrTaskNotFound),
		errors.Is(err, dashboard.ErrNotEditing),
		errors.Is(err, models.ErrInvalidStatus),
		errors.Is(err, models.ErrInvalidPriority),
		errors.Is(err, ErrNotSignedIn),
		errors.Is(err, ErrSessionNotFound):
		return s.logger.Debug()
	default:
		return s.logger.Error()
	}
}

func (s *taskServiceImpl) withBoard(sessionID string, fn func(e *store.Entry) error) error {
	err := s.store.With(sessionID, func(e *store.Entry) error {
		if e.User == nil {
			return ErrNotSignedIn
		}
		return fn(e)
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrSessionNotFound
	}
	return err
}
