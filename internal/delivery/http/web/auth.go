package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/taskflow/internal/models"
	"github.com/adanyl0v/taskflow/internal/services"
)

type authRequest struct {
	Email    string `form:"email"`
	Password string `form:"password"`
	Name     string `form:"name"`
}

func (h *handlerImpl) HandleIndex(c *gin.Context) {
	session := getSession(c)
	if session.Authenticated() {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	tab := c.Query("tab")
	if tab != string(services.AuthModeRegister) {
		tab = string(services.AuthModeLogin)
	}
	h.render(c, http.StatusOK, authTemplate, page{
		Title: "Sign in",
		Tab:   tab,
	})
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	h.handleAuth(c, services.AuthModeLogin)
}

func (h *handlerImpl) HandleRegister(c *gin.Context) {
	h.handleAuth(c, services.AuthModeRegister)
}

func (h *handlerImpl) handleAuth(c *gin.Context, mode services.AuthMode) {
	var req authRequest
	err := c.ShouldBind(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind request body")
		abort(c, newStatusTextError(http.StatusBadRequest))
		return
	}

	session := getSession(c)
	user, err := h.sessions.Login(c.Request.Context(), session.ID, services.AuthParams{
		Mode:     mode,
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		if notice, ok := validationNotice(err); ok {
			h.render(c, http.StatusUnprocessableEntity, authTemplate, page{
				Title:   "Sign in",
				Notices: []models.Notice{notice},
				Tab:     string(mode),
				Email:   req.Email,
				Name:    req.Name,
			})
			return
		}

		switch {
		case errors.Is(err, services.ErrAlreadySignedIn):
			c.Redirect(http.StatusSeeOther, "/dashboard")
		case errors.Is(err, services.ErrAuthPending):
			h.render(c, http.StatusConflict, authTemplate, page{
				Title:   "Sign in",
				Notices: []models.Notice{destructiveNotice("Please wait", "Authentication is already in progress")},
				Tab:     string(mode),
				Email:   req.Email,
				Name:    req.Name,
			})
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			h.logger.Warn().
				Err(err).
				Str("session_id", session.ID).
				Msg("client left before authentication finished")
			c.Abort()
		case errors.Is(err, services.ErrSessionNotFound), errors.Is(err, services.ErrAuthSuperseded):
			c.Redirect(http.StatusSeeOther, "/")
		default:
			h.logger.Error().
				Err(err).
				Msg("failed to authenticate")
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	h.notify(c, successNotice("Welcome!", "Successfully logged in as "+user.Name))
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *handlerImpl) HandleLogout(c *gin.Context) {
	session := getSession(c)

	err := h.sessions.Logout(c, session.ID)
	if err != nil && !errors.Is(err, services.ErrSessionNotFound) {
		h.logger.Error().
			Err(err).
			Msg("failed to logout")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	if session.Authenticated() {
		h.notify(c, successNotice("Logged out", "You have been successfully logged out"))
	}
	c.Redirect(http.StatusSeeOther, "/")
}
