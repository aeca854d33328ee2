package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uranium24/Fresh-Price/internal/service/ratelimit"
	"github.com/uranium24/Fresh-Price/pkg/config"
	xhttp "github.com/uranium24/Fresh-Price/pkg/http"
	pkgkafka "github.com/uranium24/Fresh-Price/pkg/kafka"
	applogger "github.com/uranium24/Fresh-Price/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	httpServer *xhttp.Server
	consumer   *pkgkafka.Consumer
	limiter    *ratelimit.Limiter
}

// New creates an App. consumer and limiter may be nil.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	consumer *pkgkafka.Consumer,
	limiter *ratelimit.Limiter,
) *App {
	return &App{cfg: cfg, l: l, httpServer: httpServer, consumer: consumer, limiter: limiter}
}

// Run starts the application and blocks until SIGINT/SIGTERM or a fatal
// server error.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext is Run with the stop condition supplied by the caller.
func (a *App) RunContext(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.consumer != nil {
		if err := a.consumer.Start(runCtx); err != nil {
			return fmt.Errorf("kafka consumer start: %w", err)
		}
		a.l.Info("kafka consumer started", applogger.String("topic", a.cfg.Kafka.Topic))
	}

	if a.limiter != nil {
		go a.limiter.SweepEvery(runCtx, time.Minute)
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		a.shutdown()
		return err
	}
	a.l.Info("fresh-price started",
		applogger.String("source", a.cfg.Source.Type),
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Bool("ingest", a.consumer != nil),
	)

	var runErr error
	select {
	case <-ctx.Done():
		a.l.Info("shutdown signal received")
	case runErr = <-a.httpServer.Errors():
		a.l.Error("http server failed", applogger.Error(runErr))
	}
	cancel()
	a.shutdown()
	return runErr
}

// shutdown gracefully stops all services.
func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
}
