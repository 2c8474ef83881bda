// Package app assembles the long-running process: the HTTP surface, the
// conversation consumer loop and the reminder scheduler, with one shared
// shutdown path.
package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"zapis/internal/api"
	"zapis/internal/conversation"
	"zapis/internal/reminder"
	"zapis/pkg/config"
	"zapis/pkg/contracts"
	"zapis/pkg/kafka"
	"zapis/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

type Application struct {
	cfg            *config.Config
	server         *http.Server
	consumer       *kafka.Consumer
	manager        *conversation.Manager
	scheduler      *reminder.Scheduler
	healthHandler  *http.Handler
	appHTTPHandler *http.Handler
}

func NewApplication() *Application {
	return &Application{}
}

func (a *Application) SetApp(
	cfg *config.Config,
	appHandler contracts.Handler,
	consumer *kafka.Consumer,
	manager *conversation.Manager,
	scheduler *reminder.Scheduler,
) {
	a.cfg = cfg
	a.consumer = consumer
	a.manager = manager
	a.scheduler = scheduler

	a.setHealthHandler(cfg)
	a.setAppHandler(cfg, appHandler)
	a.setAppServer()
}

func (a *Application) setHealthHandler(cfg *config.Config) {
	healthRouter := httprouter.New()
	healthHandler := api.NewHealthHandler(cfg.Client.Mongo, cfg.Log)
	healthHandler.RegisterRoutes(healthRouter)

	var healthHTTPHandler http.Handler = healthRouter
	healthHTTPHandler = middleware.RequestLogging(cfg.Log)(healthHTTPHandler)
	healthHTTPHandler = middleware.Recovery(cfg.Log)(healthHTTPHandler)
	a.healthHandler = &healthHTTPHandler
}

func (a *Application) setAppHandler(cfg *config.Config, appHandler contracts.Handler) {
	appRouter := httprouter.New()
	appHandler.RegisterRoutes(appRouter)

	var appHTTPHandler http.Handler = appRouter
	appHTTPHandler = middleware.RequestTimeout(cfg.RequestTimeout)(appHTTPHandler)
	appHTTPHandler = middleware.RequestLogging(cfg.Log)(appHTTPHandler)
	appHTTPHandler = middleware.Recovery(cfg.Log)(appHTTPHandler)
	a.appHTTPHandler = &appHTTPHandler
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", *a.healthHandler)
	mux.Handle("/ready", *a.healthHandler)
	mux.Handle("/", *a.appHTTPHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

// Run starts the three loops and blocks until one of them fails or a
// shutdown signal arrives. The consumer loop and the scheduler loop are
// independent; a fault in one never starves the other.
func (a *Application) Run() {
	serverErrors := make(chan error, 1)
	consumerErrors := make(chan error, 1)

	loopCtx, cancelLoops := context.WithCancel(context.Background())
	defer cancelLoops()

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	go func() {
		a.cfg.Log.Info("Starting conversation consumer", "topic", a.cfg.ChatInboundTopic)
		consumerErrors <- a.consumer.Start(loopCtx)
	}()

	go a.scheduler.Run(loopCtx)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case err := <-consumerErrors:
		a.cfg.Log.Fatal("Conversation consumer failed", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown(cancelLoops)
	}
}

func (a *Application) gracefulShutdown(cancelLoops context.CancelFunc) {
	a.cfg.Log.Info("Starting graceful shutdown...")

	cancelLoops()
	a.manager.Stop()

	if err := a.consumer.Close(); err != nil {
		a.cfg.Log.Error("Consumer close failed", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.Log.Info("Server stopped gracefully")
}
