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

	"github.com/adanyl0v/todo-planner/internal/config"
	"github.com/adanyl0v/todo-planner/internal/delivery/http/api"
	"github.com/adanyl0v/todo-planner/internal/services"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	taskService := services.NewTaskService(
		globalLogger.With().Str("component", "task_service").Logger(),
		globalTaskStore,
		globalPublisher,
	)
	router := api.NewRouter(
		globalLogger.With().Str("component", "http").Logger(),
		taskService,
		api.RouterOptions{
			AllowedOrigins: httpCfg.AllowedOrigins,
			HealthTimeout:  httpCfg.HealthTimeout,
		},
	)

	server := &http.Server{
		Addr:              net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler:           router,
		ReadHeaderTimeout: httpCfg.ReadHeaderTimeout,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Strs("cors_allowed_origins", httpCfg.AllowedOrigins).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

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
		return
	}
	globalLogger.Info().Msg("shut down http server")
}
