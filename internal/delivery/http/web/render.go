package web

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/taskflow/internal/models"
	"github.com/adanyl0v/taskflow/internal/services"
)

const (
	authTemplate      = "auth.html"
	dashboardTemplate = "dashboard.html"
	errorTemplate     = "error.html"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the page templates. Load them into the router with
// SetHTMLTemplate before serving.
func Templates() *template.Template {
	funcs := template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

type page struct {
	Title   string
	Notices []models.Notice
	User    *models.User

	// Auth page.
	Tab   string
	Email string
	Name  string

	// Dashboard page.
	Dashboard     *services.DashboardView
	Form          *taskForm
	ConfirmDelete *models.Task
	Statuses      []models.Status
	Priorities    []models.Priority

	// Error page.
	Code    int
	Message string
}

// taskForm is the state of the create/edit form.
type taskForm struct {
	TaskID      string
	Title       string
	Description string
	Status      models.Status
	Priority    models.Priority
}

func (f *taskForm) Editing() bool {
	return f.TaskID != ""
}

func newTaskFormFor(task models.Task) *taskForm {
	return &taskForm{
		TaskID:      task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
	}
}

// render prepends the notices queued on the session to p.Notices.
func (h *handlerImpl) render(c *gin.Context, status int, name string, p page) {
	if session := getSession(c); session != nil {
		queued, err := h.sessions.TakeNotices(c, session.ID)
		if err != nil {
			h.logger.Warn().
				Err(err).
				Str("session_id", session.ID).
				Msg("failed to take notices")
		}
		p.Notices = append(queued, p.Notices...)
	}
	c.HTML(status, name, p)
}

func (h *handlerImpl) notify(c *gin.Context, notices ...models.Notice) {
	session := getSession(c)
	if session == nil {
		return
	}
	err := h.sessions.Notify(c, session.ID, notices...)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("session_id", session.ID).
			Msg("failed to queue notice")
	}
}

func (h *handlerImpl) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": h.opts.Version,
	})
}

func (h *handlerImpl) HandleNotFound(c *gin.Context) {
	abort(c, newStatusTextError(http.StatusNotFound))
}
