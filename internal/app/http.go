package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/taskflow/internal/config"
	"github.com/adanyl0v/taskflow/internal/delivery/http/web"
	"github.com/adanyl0v/taskflow/internal/services"
)

// Version is set at build time with -ldflags "-X".
var Version = "dev"

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	router := gin.New()
	router.Use(gin.Recovery())
	router.SetHTMLTemplate(web.Templates())
	registerRoutes(router)

	server := &http.Server{
		Addr:              net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler:           router,
		ReadHeaderTimeout: httpCfg.ReadHeaderTimeout,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Str("version", Version).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// kill (no params) sends SIGTERM, kill -2 sends SIGINT.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func registerRoutes(router *gin.Engine) {
	cfg := config.Global()

	authService := services.NewAuthService(
		componentLogger("auth"),
		cfg.Auth.SimulatedDelay,
	)
	sessionService := services.NewSessionService(
		componentLogger("sessions"),
		globalStore,
		authService,
		cfg.Session.Issuer,
		[]byte(cfg.Session.SigningKey),
		cfg.Dashboard.SeedDemo,
	)
	taskService := services.NewTaskService(
		componentLogger("tasks"),
		globalStore,
	)

	handler := web.New(
		componentLogger("http"),
		sessionService,
		taskService,
		web.Options{
			Version:      Version,
			SecureCookie: cfg.Env == config.EnvProd,
			RateLimit: web.RateLimitOptions{
				Enabled: cfg.RateLimit.Enabled,
				RPS:     cfg.RateLimit.RPS,
				Burst:   cfg.RateLimit.Burst,
			},
		},
	)
	web.Register(router, handler)
}
