// Package app wires the core and transport layers together.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/netchat-server/internal/config"
	"github.com/vovakirdan/netchat-server/internal/core"
	"github.com/vovakirdan/netchat-server/internal/transport/tcp"
)

// App owns the server's object graph for one run.
type App struct {
	server          *tcp.Server
	shutdownTimeout time.Duration
	log             *zerolog.Logger
}

// New constructs the application with the provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) *App {
	reg := core.NewRegistry()
	router := core.NewRouter(reg, logger)

	return &App{
		server:          tcp.NewServer(cfg.Addr, reg, router, logger),
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}
}

// Run starts the accept loop and blocks until context cancellation or a
// listener failure. On cancellation the server disconnects every
// session; the wait for that is bounded by the shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	if err := a.server.Listen(); err != nil {
		return err
	}
	a.log.Info().Str("addr", a.server.Addr().String()).Msg("listening")

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.server.Serve(ctx)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		a.log.Info().Msg("shutting down, disconnecting all sessions")
		select {
		case err := <-serverErr:
			return err
		case <-time.After(a.shutdownTimeout):
			return errors.New("shutdown timed out")
		}
	}
}
