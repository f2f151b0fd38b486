package web

import (
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/taskflow/internal/dashboard"
	"github.com/adanyl0v/taskflow/internal/models"
	"github.com/adanyl0v/taskflow/internal/services"
)

type createTaskRequest struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	Status      string `form:"status"`
	Priority    string `form:"priority"`
}

func (h *handlerImpl) HandleDashboard(c *gin.Context) {
	h.renderDashboard(c, http.StatusOK, nil)
}

func (h *handlerImpl) HandleNewTask(c *gin.Context) {
	h.renderDashboard(c, http.StatusOK, &taskForm{
		Status:   models.StatusPending,
		Priority: models.PriorityMedium,
	})
}

func (h *handlerImpl) HandleEditTask(c *gin.Context) {
	session := getSession(c)
	taskID := c.Param("id")

	task, err := h.tasks.BeginEdit(c, session.ID, taskID)
	if err != nil {
		if errors.Is(err, dashboard.ErrTaskNotFound) {
			h.notify(c, destructiveNotice("Task not found", "The task you tried to edit no longer exists"))
			c.Redirect(http.StatusSeeOther, "/dashboard")
			return
		}
		h.handleTaskError(c, err, "failed to begin edit")
		return
	}

	h.renderDashboard(c, http.StatusOK, newTaskFormFor(*task))
}

func (h *handlerImpl) HandleCancelEdit(c *gin.Context) {
	session := getSession(c)

	err := h.tasks.CancelEdit(c, session.ID)
	if err != nil {
		h.handleTaskError(c, err, "failed to cancel edit")
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	session := getSession(c)

	var req createTaskRequest
	err := c.ShouldBind(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind request body")
		abort(c, newStatusTextError(http.StatusBadRequest))
		return
	}

	form := &taskForm{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.Status(req.Status),
		Priority:    models.Priority(req.Priority),
	}
	draft := dashboard.Draft{
		Title:       req.Title,
		Description: req.Description,
		Status:      form.Status,
		Priority:    form.Priority,
	}

	task, err := h.tasks.CreateTask(c, session.ID, draft)
	if err != nil {
		if notice, ok := validationNotice(err); ok {
			h.renderDashboard(c, http.StatusUnprocessableEntity, form, notice)
			return
		}
		h.handleTaskError(c, err, "failed to create task")
		return
	}

	h.notify(c, successNotice("Task Created", fmt.Sprintf("\"%s\" has been successfully created", task.Title)))
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// HandleUpdateTask changes only the fields present in the submitted form.
func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	session := getSession(c)
	taskID := c.Param("id")

	var patch dashboard.Patch
	if v, ok := c.GetPostForm("title"); ok {
		patch.Title = &v
	}
	if v, ok := c.GetPostForm("description"); ok {
		patch.Description = &v
	}
	if v, ok := c.GetPostForm("status"); ok {
		status := models.Status(v)
		patch.Status = &status
	}
	if v, ok := c.GetPostForm("priority"); ok {
		priority := models.Priority(v)
		patch.Priority = &priority
	}

	task, err := h.tasks.UpdateTask(c, services.UpdateTaskParams{
		SessionID: session.ID,
		TaskID:    taskID,
		Patch:     patch,
	})
	if err != nil {
		if notice, ok := validationNotice(err); ok {
			form := &taskForm{TaskID: taskID}
			if view, viewErr := h.tasks.GetDashboard(c, session.ID); viewErr == nil && view.Editing != nil {
				form = newTaskFormFor(*view.Editing)
			}
			applyPatch(form, patch)
			h.renderDashboard(c, http.StatusUnprocessableEntity, form, notice)
			return
		}
		if errors.Is(err, dashboard.ErrNotEditing) || errors.Is(err, dashboard.ErrTaskNotFound) {
			h.notify(c, destructiveNotice("Update failed", "This task is not being edited anymore"))
			c.Redirect(http.StatusSeeOther, "/dashboard")
			return
		}
		h.handleTaskError(c, err, "failed to update task")
		return
	}

	h.notify(c, successNotice("Task Updated", fmt.Sprintf("\"%s\" has been successfully updated", task.Title)))
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// HandleConfirmDelete asks before HandleDeleteTask removes the task.
func (h *handlerImpl) HandleConfirmDelete(c *gin.Context) {
	session := getSession(c)
	taskID := c.Param("id")

	view, err := h.tasks.GetDashboard(c, session.ID)
	if err != nil {
		h.handleTaskError(c, err, "failed to get dashboard")
		return
	}

	i := slices.IndexFunc(view.Tasks, func(t models.Task) bool {
		return t.ID == taskID
	})
	if i < 0 {
		h.notify(c, destructiveNotice("Task not found", "The task you tried to delete no longer exists"))
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}

	h.renderDashboardView(c, http.StatusOK, view, nil, &view.Tasks[i])
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	session := getSession(c)

	removed, err := h.tasks.DeleteTask(c, services.DeleteTaskParams{
		SessionID: session.ID,
		TaskID:    c.Param("id"),
	})
	if err != nil {
		h.handleTaskError(c, err, "failed to delete task")
		return
	}

	description := "Task has been successfully deleted"
	if removed != nil {
		description = fmt.Sprintf("\"%s\" has been successfully deleted", removed.Title)
	}
	h.notify(c, successNotice("Task Deleted", description))
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// renderDashboard renders the dashboard with form open. A pending edit
// target takes precedence over form == nil.
func (h *handlerImpl) renderDashboard(c *gin.Context, status int, form *taskForm, notices ...models.Notice) {
	session := getSession(c)

	view, err := h.tasks.GetDashboard(c, session.ID)
	if err != nil {
		h.handleTaskError(c, err, "failed to get dashboard")
		return
	}
	h.renderDashboardView(c, status, view, form, nil, notices...)
}

func (h *handlerImpl) renderDashboardView(
	c *gin.Context,
	status int,
	view *services.DashboardView,
	form *taskForm,
	confirmDelete *models.Task,
	notices ...models.Notice,
) {
	if form == nil && view.Editing != nil {
		form = newTaskFormFor(*view.Editing)
	}

	h.render(c, status, dashboardTemplate, page{
		Title:         "Dashboard",
		Notices:       notices,
		User:          &view.User,
		Dashboard:     view,
		Form:          form,
		ConfirmDelete: confirmDelete,
		Statuses:      models.Statuses,
		Priorities:    models.Priorities,
	})
}

func (h *handlerImpl) handleTaskError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, services.ErrNotSignedIn), errors.Is(err, services.ErrSessionNotFound):
		c.Redirect(http.StatusSeeOther, "/")
		c.Abort()
	default:
		h.logger.Error().
			Err(err).
			Msg(msg)
		abort(c, newStatusTextError(http.StatusInternalServerError))
	}
}

func applyPatch(form *taskForm, p dashboard.Patch) {
	if p.Title != nil {
		form.Title = *p.Title
	}
	if p.Description != nil {
		form.Description = *p.Description
	}
	if p.Status != nil {
		form.Status = *p.Status
	}
	if p.Priority != nil {
		form.Priority = *p.Priority
	}
}
