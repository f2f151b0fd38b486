package web

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/taskflow/internal/services"
)

type Handler interface {
	HandleRequestLog(c *gin.Context)
	HandleSessionMiddleware(c *gin.Context)
	HandleRequireSignIn(c *gin.Context)
	HandleRateLimit(c *gin.Context)

	HandleIndex(c *gin.Context)
	HandleLogin(c *gin.Context)
	HandleRegister(c *gin.Context)
	HandleLogout(c *gin.Context)

	HandleDashboard(c *gin.Context)
	HandleNewTask(c *gin.Context)
	HandleEditTask(c *gin.Context)
	HandleCancelEdit(c *gin.Context)
	HandleConfirmDelete(c *gin.Context)
	HandleCreateTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)

	HandleHealth(c *gin.Context)
	HandleNotFound(c *gin.Context)
}

type Options struct {
	Version      string
	SecureCookie bool
	RateLimit    RateLimitOptions
}

type handlerImpl struct {
	logger   zerolog.Logger
	sessions services.SessionService
	tasks    services.TaskService
	limiter  *rateLimiter
	opts     Options
}

func New(
	logger zerolog.Logger,
	sessionService services.SessionService,
	taskService services.TaskService,
	opts Options,
) Handler {
	return &handlerImpl{
		logger:   logger,
		sessions: sessionService,
		tasks:    taskService,
		limiter:  newRateLimiter(opts.RateLimit),
		opts:     opts,
	}
}

// Register mounts every route of the UI on router. The router must have
// the templates from Templates loaded.
func Register(router *gin.Engine, h Handler) {
	router.Use(h.HandleRequestLog)
	router.GET("/healthz", h.HandleHealth)
	router.NoRoute(h.HandleNotFound)

	ui := router.Group("/", h.HandleSessionMiddleware)
	ui.GET("/", h.HandleIndex)

	auth := ui.Group("/auth", h.HandleRateLimit)
	auth.POST("/login", h.HandleLogin)
	auth.POST("/register", h.HandleRegister)
	auth.POST("/logout", h.HandleLogout)

	board := ui.Group("/dashboard", h.HandleRequireSignIn)
	board.GET("", h.HandleDashboard)
	board.GET("/tasks/new", h.HandleNewTask)
	board.GET("/tasks/:id/edit", h.HandleEditTask)
	board.GET("/tasks/:id/delete", h.HandleConfirmDelete)

	mutations := board.Group("/tasks", h.HandleRateLimit)
	mutations.POST("", h.HandleCreateTask)
	mutations.POST("/cancel", h.HandleCancelEdit)
	mutations.POST("/:id", h.HandleUpdateTask)
	mutations.POST("/:id/delete", h.HandleDeleteTask)
}
