package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	xhttp "FinDash/pkg/http"
	pkgkafka "FinDash/pkg/kafka"
	applogger "FinDash/pkg/logger"
)

// Resource is a named infrastructure handle released on shutdown.
type Resource struct {
	Name   string
	Closer io.Closer
}

// App encapsulates the entire application lifecycle.
type App struct {
	logger          *applogger.Logger
	httpServer      *xhttp.Server
	consumer        *pkgkafka.Consumer
	handler         pkgkafka.MessageHandler
	resources       []Resource
	shutdownTimeout time.Duration
}

// New creates a new App instance with all dependencies. consumer and
// handler are optional; resources are closed in reverse order on shutdown.
func New(
	logger *applogger.Logger,
	httpServer *xhttp.Server,
	consumer *pkgkafka.Consumer,
	handler pkgkafka.MessageHandler,
	shutdownTimeout time.Duration,
	resources ...Resource,
) *App {
	if logger == nil {
		logger = applogger.Nop()
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &App{
		logger:          logger,
		httpServer:      httpServer,
		consumer:        consumer,
		handler:         handler,
		resources:       resources,
		shutdownTimeout: shutdownTimeout,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts the application and blocks until ctx is done.
func (a *App) RunContext(ctx context.Context) error {
	consumerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.consumer != nil && a.handler != nil {
		a.consumer.RegisterHandler(a.handler)
		if err := a.consumer.Start(consumerCtx); err != nil {
			a.logger.Error("kafka consumer start error", applogger.Error(err))
			return err
		}
	}

	if a.httpServer != nil {
		if err := a.httpServer.Start(); err != nil {
			a.logger.Error("http server start error", applogger.Error(err))
			return err
		}
	}

	<-ctx.Done()
	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.logger.Error("http shutdown error", applogger.Error(err))
		}
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.logger.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	for i := len(a.resources) - 1; i >= 0; i-- {
		r := a.resources[i]
		if r.Closer == nil {
			continue
		}
		if err := r.Closer.Close(); err != nil {
			a.logger.Warn("close error", applogger.String("resource", r.Name), applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
