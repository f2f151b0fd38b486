package services

import (
	"context"
	"errors"

	"github.com/adanyl0v/taskflow/internal/dashboard"
	"github.com/adanyl0v/taskflow/internal/models"
)

var (
	ErrMissingFields     = errors.New("required fields are missing")
	ErrPasswordTooShort  = errors.New("password must be at least 6 characters long")
	ErrInvalidAuthMode   = errors.New("invalid authentication mode")
	ErrAuthPending       = errors.New("authentication already in progress")
	ErrAuthSuperseded    = errors.New("authentication superseded by logout")
	ErrAlreadySignedIn   = errors.New("already signed in")
	ErrNotSignedIn       = errors.New("not signed in")
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidSessionJWT = errors.New("invalid session token")
)

type AuthMode string

const (
	AuthModeLogin    AuthMode = "login"
	AuthModeRegister AuthMode = "register"
)

type AuthService interface {
	// Authenticate validates the credentials and, after the simulated
	// delay, returns the user they describe. Nothing is stored or checked
	// against stored credentials.
	//
	// It returns ErrMissingFields or ErrPasswordTooShort when validation
	// fails, and ctx.Err() if ctx is done before the delay elapses.
	Authenticate(ctx context.Context, params AuthParams) (*models.User, error)
}

type SessionService interface {
	// Start creates an anonymous session and a signed token naming it.
	Start(ctx context.Context) (*StartResult, error)

	// Resolve parses a session token and returns the session it names.
	//
	// It returns ErrInvalidSessionJWT for a malformed or forged token and
	// ErrSessionNotFound when the session is gone.
	Resolve(ctx context.Context, token string) (*models.Session, error)

	// Login runs the credential form for the session and, on success,
	// moves it to the authenticated state with a fresh dashboard.
	//
	// It returns ErrAuthPending if another submission is in flight and
	// ErrAlreadySignedIn if the session is authenticated. A logout that
	// lands while the delay runs wins, and Login returns ErrAuthSuperseded.
	Login(ctx context.Context, sessionID string, params AuthParams) (*models.User, error)

	// Logout moves the session back to the unauthenticated state and
	// drops its dashboard. Logging out twice is not an error.
	Logout(ctx context.Context, sessionID string) error

	Notify(ctx context.Context, sessionID string, notices ...models.Notice) error
	TakeNotices(ctx context.Context, sessionID string) ([]models.Notice, error)
}

type TaskService interface {
	GetDashboard(ctx context.Context, sessionID string) (*DashboardView, error)
	CreateTask(ctx context.Context, sessionID string, draft dashboard.Draft) (*models.Task, error)

	// BeginEdit marks the task as the target of the edit form.
	BeginEdit(ctx context.Context, sessionID, taskID string) (*models.Task, error)
	CancelEdit(ctx context.Context, sessionID string) error

	// UpdateTask applies the patch to the task being edited.
	UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error)

	// DeleteTask removes the task and returns it, or nil if there was
	// no such task.
	DeleteTask(ctx context.Context, params DeleteTaskParams) (*models.Task, error)
}

type AuthParams struct {
	Mode     AuthMode
	Email    string
	Password string
	Name     string
}

type StartResult struct {
	Session models.Session
	Token   string
}

type DashboardView struct {
	User    models.User
	Tasks   []models.Task
	Stats   dashboard.Stats
	Editing *models.Task
}

type UpdateTaskParams struct {
	SessionID string
	TaskID    string
	Patch     dashboard.Patch
}

type DeleteTaskParams struct {
	SessionID string
	TaskID    string
}
