package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/taskflow/internal/dashboard"
	"github.com/adanyl0v/taskflow/internal/models"
	"github.com/adanyl0v/taskflow/internal/services"
)

type apiError struct {
	Code    int
	Message string
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

// abort renders the error page and stops the handler chain.
func abort(c *gin.Context, err apiError) {
	c.HTML(err.Code, errorTemplate, page{
		Title:   http.StatusText(err.Code),
		Code:    err.Code,
		Message: err.Message,
	})
	c.Abort()
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

// validationMessages holds the user-facing text for errors caused by what
// the user typed.
var validationMessages = []struct {
	err     error
	message string
}{
	{services.ErrMissingFields, "Please fill in all required fields"},
	{services.ErrPasswordTooShort, "Password must be at least 6 characters long"},
	{services.ErrInvalidAuthMode, "Unknown authentication mode"},
	{dashboard.ErrTitleRequired, "Please give the task a title"},
	{models.ErrInvalidStatus, "Please choose a valid status"},
	{models.ErrInvalidPriority, "Please choose a valid priority"},
}

// validationNotice returns the notice for a validation error, or false if
// err is not one.
func validationNotice(err error) (models.Notice, bool) {
	for _, v := range validationMessages {
		if errors.Is(err, v.err) {
			return models.Notice{
				Kind:        models.NoticeDestructive,
				Title:       "Validation Error",
				Description: v.message,
			}, true
		}
	}
	return models.Notice{}, false
}

func destructiveNotice(title, description string) models.Notice {
	return models.Notice{
		Kind:        models.NoticeDestructive,
		Title:       title,
		Description: description,
	}
}

func successNotice(title, description string) models.Notice {
	return models.Notice{
		Kind:        models.NoticeSuccess,
		Title:       title,
		Description: description,
	}
}
